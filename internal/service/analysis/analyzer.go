// internal/service/analysis/analyzer.go

package analysis

import (
	"context"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"octopal/internal/domain/feed"
)

// Aggregation caps for the session summary.
const (
	maxSummaryPatterns        = 5
	maxSummaryHashtagInsights = 3
	maxSummaryLanguage        = 5
	maxSummaryPassiveExamples = 3
	maxSummaryAccountAges     = 3
	maxSummarySources         = 5

	maxItemPatterns        = 3
	maxItemPassiveExamples = 3
)

// defaultFactCheckMessage is kept when the oracle is absent or times out.
const defaultFactCheckMessage = "No fact-check available"

// Noise produces a bounded score jitter for an item. It must be a pure
// function of the item id so cached results stay stable.
type Noise func(itemID string) int

// NoJitter disables score jitter.
func NoJitter(string) int { return 0 }

// DeterministicJitter hashes the item id into [0,15].
func DeterministicJitter(itemID string) int {
	h := fnv.New32a()
	h.Write([]byte(itemID))
	return int(h.Sum32() % 16)
}

// AnalyzerConfig contains configuration for the analyzer
type AnalyzerConfig struct {
	Noise         Noise
	Oracle        feed.FactCheckOracle
	OracleTimeout time.Duration
	Clock         func() time.Time
}

// Analyzer implements feed.Analyzer. It owns the session-scoped author
// profiles and score cache; create one per session.
type Analyzer struct {
	config   AnalyzerConfig
	mu       sync.Mutex
	profiles map[string]*feed.AuthorProfile
	cache    map[string]feed.ScoreResult
}

// NewAnalyzer creates a new analyzer with an empty session.
func NewAnalyzer(config AnalyzerConfig) *Analyzer {
	if config.Noise == nil {
		config.Noise = NoJitter
	}
	if config.OracleTimeout <= 0 {
		config.OracleTimeout = 1500 * time.Millisecond
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}
	return &Analyzer{
		config:   config,
		profiles: make(map[string]*feed.AuthorProfile),
		cache:    make(map[string]feed.ScoreResult),
	}
}

// clamp bounds a score to [0,100].
func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// AnalyzeItem computes the score result for a single item. Results are cached
// by item id for the rest of the session.
func (a *Analyzer) AnalyzeItem(ctx context.Context, item feed.Item) (feed.ScoreResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if cached, ok := a.cache[item.ID]; ok {
		return cached, nil
	}

	now := a.config.Clock()
	profile := a.observeItem(item, now)

	result := a.scoreItem(item, profile, now)
	a.cache[item.ID] = result
	return result, nil
}

// scoreItem runs every primitive and combines the contributions. Callers must
// hold the mutex.
func (a *Analyzer) scoreItem(item feed.Item, profile *feed.AuthorProfile, now time.Time) feed.ScoreResult {
	var result feed.ScoreResult
	var patterns []string

	botScore := 0

	s, p := scoreUsername(item.AuthorHandle)
	botScore += s
	patterns = append(patterns, p...)

	s, p = scoreVerification(item.IsVerified)
	botScore += s
	patterns = append(patterns, p...)

	s, p = scoreAvatar(item.HasAvatar, item.AvatarURL)
	botScore += s
	patterns = append(patterns, p...)

	s, age := scoreAccountAge(item.AccountJoined, now)
	botScore += s
	result.AccountAge = age

	freqScore, freqPattern := scorePostingFrequency(profile, now)
	if freqPattern != "" {
		patterns = append(patterns, freqPattern)
	}

	tagScore, insights := scoreHashtagPatterns(item, profile)

	mis := scoreMisinformation(item)

	credibility, hasLinks, details := scoreSourceCredibility(item.Links)

	jitter := a.config.Noise(item.ID)

	result.BotScore = clamp(botScore + jitter)
	result.MisinfoScore = clamp(mis.Score + jitter)
	result.PostingFrequencyScore = clamp(freqScore)
	result.HashtagPatternScore = clamp(tagScore)
	result.SourceCredibility = credibility
	result.HasLinks = hasLinks
	result.SourceDetails = details
	result.HashtagInsights = insights
	result.LanguagePatterns = mis.Patterns
	result.DetectedPatterns = truncate(patterns, maxItemPatterns)
	result.PassiveVoiceExamples = truncate(mis.PassiveExamples, maxItemPassiveExamples)

	return result
}

// AnalyzeBatch profiles the whole visible batch first, then scores each item,
// so frequency and hashtag checks see profile data from every item in the
// batch regardless of iteration order.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, items []feed.Item) (feed.SessionSummary, error) {
	if len(items) == 0 {
		return feed.SessionSummary{SourceCredibility: neutralCredibility, FactCheck: defaultFactCheckMessage}, nil
	}

	a.mu.Lock()
	now := a.config.Clock()

	// First pass: build author profiles.
	for _, item := range items {
		if _, cached := a.cache[item.ID]; cached {
			continue
		}
		a.observeItem(item, now)
	}

	// Second pass: score each item.
	results := make([]feed.ScoreResult, 0, len(items))
	for _, item := range items {
		if cached, ok := a.cache[item.ID]; ok {
			results = append(results, cached)
			continue
		}
		r := a.scoreItem(item, a.profiles[item.AuthorHandle], now)
		a.cache[item.ID] = r
		results = append(results, r)
	}
	a.mu.Unlock()

	summary := aggregate(results)
	summary.FactCheck = a.factCheck(ctx, items)
	return summary, nil
}

// factCheck consults the optional oracle with a bounded timeout. Absence or
// failure leaves the default message unchanged.
func (a *Analyzer) factCheck(ctx context.Context, items []feed.Item) string {
	if a.config.Oracle == nil {
		return defaultFactCheckMessage
	}

	oracleCtx, cancel := context.WithTimeout(ctx, a.config.OracleTimeout)
	defer cancel()

	for _, item := range items {
		if item.Text == "" {
			continue
		}
		msg, err := a.config.Oracle.CheckClaim(oracleCtx, item.Text)
		if err == nil && msg != "" {
			return msg
		}
		if oracleCtx.Err() != nil {
			break
		}
	}
	return defaultFactCheckMessage
}

// aggregate folds per-item results into a session summary with the documented
// caps and deduplication.
func aggregate(results []feed.ScoreResult) feed.SessionSummary {
	summary := feed.SessionSummary{ItemCount: len(results)}
	if len(results) == 0 {
		summary.SourceCredibility = neutralCredibility
		return summary
	}

	botTotal, misTotal, freqTotal, tagTotal := 0, 0, 0, 0
	credTotal, credCount := 0, 0
	seenDomains := make(map[string]bool)

	for _, r := range results {
		botTotal += r.BotScore
		misTotal += r.MisinfoScore
		freqTotal += r.PostingFrequencyScore
		tagTotal += r.HashtagPatternScore

		if r.HasLinks {
			credTotal += r.SourceCredibility
			credCount++
		}

		summary.DetectedPatterns = appendUnique(summary.DetectedPatterns, r.DetectedPatterns)
		summary.HashtagInsights = appendUnique(summary.HashtagInsights, r.HashtagInsights)
		summary.LanguagePatterns = appendUnique(summary.LanguagePatterns, r.LanguagePatterns)
		summary.PassiveVoiceExamples = appendUnique(summary.PassiveVoiceExamples, r.PassiveVoiceExamples)
		if r.AccountAge != "" {
			summary.AccountAgeData = appendUnique(summary.AccountAgeData, []string{r.AccountAge})
		}

		for _, d := range r.SourceDetails {
			if !seenDomains[d.Domain] {
				seenDomains[d.Domain] = true
				summary.SourceDetails = append(summary.SourceDetails, d)
			}
		}
	}

	n := len(results)
	summary.BotScore = clamp(roundDiv(botTotal, n))
	summary.MisinfoScore = clamp(roundDiv(misTotal, n))
	summary.PostingFrequencyScore = clamp(roundDiv(freqTotal, n))
	summary.HashtagPatternScore = clamp(roundDiv(tagTotal, n))

	if credCount > 0 {
		summary.SourceCredibility = clamp(roundDiv(credTotal, credCount))
	} else {
		summary.SourceCredibility = neutralCredibility
	}

	sort.SliceStable(summary.SourceDetails, func(i, j int) bool {
		return summary.SourceDetails[i].Score > summary.SourceDetails[j].Score
	})

	summary.DetectedPatterns = truncate(summary.DetectedPatterns, maxSummaryPatterns)
	summary.HashtagInsights = truncate(summary.HashtagInsights, maxSummaryHashtagInsights)
	summary.LanguagePatterns = truncate(summary.LanguagePatterns, maxSummaryLanguage)
	summary.PassiveVoiceExamples = truncate(summary.PassiveVoiceExamples, maxSummaryPassiveExamples)
	summary.AccountAgeData = truncate(summary.AccountAgeData, maxSummaryAccountAges)
	if len(summary.SourceDetails) > maxSummarySources {
		summary.SourceDetails = summary.SourceDetails[:maxSummarySources]
	}

	return summary
}

func roundDiv(total, n int) int {
	if n == 0 {
		return 0
	}
	return int(float64(total)/float64(n) + 0.5)
}

func appendUnique(dst []string, src []string) []string {
	for _, s := range src {
		found := false
		for _, existing := range dst {
			if existing == s {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, s)
		}
	}
	return dst
}

func truncate(s []string, max int) []string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
