// internal/service/analysis/analyzer_test.go

package analysis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"octopal/internal/domain/feed"
)

// Compile-time interface checks.
var (
	_ feed.Analyzer        = (*Analyzer)(nil)
	_ feed.FactCheckOracle = (*FactCheckClient)(nil)
)

func fixedClock() time.Time {
	return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
}

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(AnalyzerConfig{Clock: fixedClock})
}

func TestAnalyzeItemFlagsBotLikeAccount(t *testing.T) {
	a := newTestAnalyzer()

	item := feed.Item{
		ID:           "item-1",
		AuthorHandle: "bot12345678",
		Text:         "Check this out",
		IsVerified:   false,
		HasAvatar:    false,
	}

	result, err := a.AnalyzeItem(context.Background(), item)
	if err != nil {
		t.Fatalf("AnalyzeItem returned error: %v", err)
	}

	if result.BotScore < 65 {
		t.Errorf("BotScore = %d, want >= 65", result.BotScore)
	}
	if len(result.DetectedPatterns) == 0 {
		t.Error("expected detected patterns for bot-like account")
	}
}

func TestAnalyzeItemFlagsConspiracyLanguage(t *testing.T) {
	a := newTestAnalyzer()

	item := feed.Item{
		ID:           "item-2",
		AuthorHandle: "regularuser",
		Text:         "wake up sheeple #truth #freedom #redpill #wakeup #nwo #resist",
		IsVerified:   true,
		HasAvatar:    true,
		AvatarURL:    "https://example.com/avatar.jpg",
	}

	result, err := a.AnalyzeItem(context.Background(), item)
	if err != nil {
		t.Fatalf("AnalyzeItem returned error: %v", err)
	}

	if result.MisinfoScore < 35 {
		t.Errorf("MisinfoScore = %d, want >= 35", result.MisinfoScore)
	}
	if len(result.LanguagePatterns) == 0 {
		t.Error("expected language patterns for conspiracy keywords")
	}
}

func TestAnalyzeItemScoresStayInBounds(t *testing.T) {
	a := NewAnalyzer(AnalyzerConfig{
		Clock: fixedClock,
		Noise: func(string) int { return 100 },
	})

	item := feed.Item{
		ID:            "item-3",
		AuthorHandle:  "spambot99887766",
		Text:          "WAKE UP SHEEPLE!!! THEY don't want you to know!!! #a #b #c #d #e #f #g",
		IsVerified:    false,
		HasAvatar:     false,
		AccountJoined: "Joined June 2025",
	}

	result, err := a.AnalyzeItem(context.Background(), item)
	if err != nil {
		t.Fatalf("AnalyzeItem returned error: %v", err)
	}

	for name, score := range map[string]int{
		"BotScore":              result.BotScore,
		"MisinfoScore":          result.MisinfoScore,
		"PostingFrequencyScore": result.PostingFrequencyScore,
		"HashtagPatternScore":   result.HashtagPatternScore,
	} {
		if score < 0 || score > 100 {
			t.Errorf("%s = %d, want within [0,100]", name, score)
		}
	}
}

func TestAnalyzeItemResultIsCached(t *testing.T) {
	a := newTestAnalyzer()

	item := feed.Item{
		ID:           "item-4",
		AuthorHandle: "someone4455",
		Text:         "hello world",
	}

	first, err := a.AnalyzeItem(context.Background(), item)
	if err != nil {
		t.Fatalf("first AnalyzeItem returned error: %v", err)
	}

	// A second call for the same id must return the identical result even if
	// the profile has since accumulated more posts.
	for i := 0; i < 5; i++ {
		a.AnalyzeItem(context.Background(), feed.Item{
			ID:           fmt.Sprintf("other-%d", i),
			AuthorHandle: "someone4455",
			Text:         "more posts",
		})
	}

	second, err := a.AnalyzeItem(context.Background(), item)
	if err != nil {
		t.Fatalf("second AnalyzeItem returned error: %v", err)
	}

	if first.BotScore != second.BotScore || first.PostingFrequencyScore != second.PostingFrequencyScore {
		t.Errorf("cached result changed: first %+v, second %+v", first, second)
	}
}

func TestAnalyzeItemAccumulatesAuthorProfile(t *testing.T) {
	a := newTestAnalyzer()

	// Seven posts by the same author at exact 30-second intervals, scored one
	// at a time. The profile must grow with each call so the last item sees
	// high volume (+20), zero interval variance (+30), and a high rate (+25).
	base := fixedClock().Add(-3 * time.Minute)
	var last feed.ScoreResult
	for i := 0; i < 7; i++ {
		ts := base.Add(time.Duration(i) * 30 * time.Second)
		result, err := a.AnalyzeItem(context.Background(), feed.Item{
			ID:           fmt.Sprintf("seq-%d", i),
			AuthorHandle: "burstposter",
			Text:         fmt.Sprintf("update number %d", i),
			PostedAt:     &ts,
		})
		if err != nil {
			t.Fatalf("AnalyzeItem %d returned error: %v", i, err)
		}
		last = result
	}

	if last.PostingFrequencyScore != 75 {
		t.Errorf("PostingFrequencyScore = %d, want 75", last.PostingFrequencyScore)
	}

	a.mu.Lock()
	profile := a.profiles["burstposter"]
	a.mu.Unlock()
	if profile == nil || profile.PostCount != 7 {
		t.Fatalf("profile PostCount = %+v, want 7", profile)
	}
}

func TestAnalyzeBatchEmpty(t *testing.T) {
	a := newTestAnalyzer()

	summary, err := a.AnalyzeBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("AnalyzeBatch returned error: %v", err)
	}

	if summary.ItemCount != 0 {
		t.Errorf("ItemCount = %d, want 0", summary.ItemCount)
	}
	if summary.SourceCredibility != neutralCredibility {
		t.Errorf("SourceCredibility = %d, want %d", summary.SourceCredibility, neutralCredibility)
	}
	if summary.FactCheck != defaultFactCheckMessage {
		t.Errorf("FactCheck = %q, want %q", summary.FactCheck, defaultFactCheckMessage)
	}
}

func TestAnalyzeBatchAggregates(t *testing.T) {
	a := newTestAnalyzer()

	items := []feed.Item{
		{ID: "b-1", AuthorHandle: "bot11112222", Text: "first post", Links: []string{"https://www.reuters.com/article"}},
		{ID: "b-2", AuthorHandle: "bot11112222", Text: "second post"},
		{ID: "b-3", AuthorHandle: "normal", Text: "a calm observation", IsVerified: true, HasAvatar: true, AvatarURL: "https://x.test/pic.png"},
	}

	summary, err := a.AnalyzeBatch(context.Background(), items)
	if err != nil {
		t.Fatalf("AnalyzeBatch returned error: %v", err)
	}

	if summary.ItemCount != 3 {
		t.Errorf("ItemCount = %d, want 3", summary.ItemCount)
	}
	if summary.BotScore < 0 || summary.BotScore > 100 {
		t.Errorf("BotScore = %d, want within [0,100]", summary.BotScore)
	}

	// One item carries a link; credibility must come from it alone, not from
	// the neutral link-free items.
	if len(summary.SourceDetails) != 1 {
		t.Fatalf("SourceDetails count = %d, want 1", len(summary.SourceDetails))
	}
	if summary.SourceDetails[0].Domain != "reuters.com" {
		t.Errorf("SourceDetails domain = %q, want %q", summary.SourceDetails[0].Domain, "reuters.com")
	}
	if summary.SourceCredibility != summary.SourceDetails[0].Score {
		t.Errorf("SourceCredibility = %d, want %d", summary.SourceCredibility, summary.SourceDetails[0].Score)
	}
}

func TestAnalyzeBatchCapsSummaryLists(t *testing.T) {
	a := newTestAnalyzer()

	// Many distinct authors with bot-like traits generate more unique patterns
	// than the summary caps allow.
	var items []feed.Item
	for i := 0; i < 12; i++ {
		items = append(items, feed.Item{
			ID:           fmt.Sprintf("cap-%d", i),
			AuthorHandle: fmt.Sprintf("acct%04d", i),
			Text:         fmt.Sprintf("post number %d #one #two #three #four #five #six #seven", i),
			Links:        []string{fmt.Sprintf("https://site%d.example.com", i)},
		})
	}

	summary, err := a.AnalyzeBatch(context.Background(), items)
	if err != nil {
		t.Fatalf("AnalyzeBatch returned error: %v", err)
	}

	if len(summary.DetectedPatterns) > maxSummaryPatterns {
		t.Errorf("DetectedPatterns length = %d, want <= %d", len(summary.DetectedPatterns), maxSummaryPatterns)
	}
	if len(summary.HashtagInsights) > maxSummaryHashtagInsights {
		t.Errorf("HashtagInsights length = %d, want <= %d", len(summary.HashtagInsights), maxSummaryHashtagInsights)
	}
	if len(summary.SourceDetails) > maxSummarySources {
		t.Errorf("SourceDetails length = %d, want <= %d", len(summary.SourceDetails), maxSummarySources)
	}

	// Remaining source details must be sorted by score descending.
	for i := 1; i < len(summary.SourceDetails); i++ {
		if summary.SourceDetails[i].Score > summary.SourceDetails[i-1].Score {
			t.Errorf("SourceDetails not sorted at %d: %d > %d", i, summary.SourceDetails[i].Score, summary.SourceDetails[i-1].Score)
		}
	}
}

type stubOracle struct {
	msg string
	err error
}

func (s stubOracle) CheckClaim(ctx context.Context, text string) (string, error) {
	return s.msg, s.err
}

func TestFactCheckUsesOracle(t *testing.T) {
	a := NewAnalyzer(AnalyzerConfig{
		Clock:  fixedClock,
		Oracle: stubOracle{msg: "Claim rated false by reviewers"},
	})

	summary, err := a.AnalyzeBatch(context.Background(), []feed.Item{
		{ID: "fc-1", AuthorHandle: "user", Text: "the moon landing was staged"},
	})
	if err != nil {
		t.Fatalf("AnalyzeBatch returned error: %v", err)
	}

	if summary.FactCheck != "Claim rated false by reviewers" {
		t.Errorf("FactCheck = %q, want oracle answer", summary.FactCheck)
	}
}

func TestFactCheckOracleFailureIsNonFatal(t *testing.T) {
	a := NewAnalyzer(AnalyzerConfig{
		Clock:  fixedClock,
		Oracle: stubOracle{err: errors.New("service unavailable")},
	})

	summary, err := a.AnalyzeBatch(context.Background(), []feed.Item{
		{ID: "fc-2", AuthorHandle: "user", Text: "some claim"},
	})
	if err != nil {
		t.Fatalf("AnalyzeBatch returned error: %v", err)
	}

	if summary.FactCheck != defaultFactCheckMessage {
		t.Errorf("FactCheck = %q, want %q", summary.FactCheck, defaultFactCheckMessage)
	}
}

func TestDeterministicJitterIsStableAndBounded(t *testing.T) {
	for _, id := range []string{"a", "b", "item-123", ""} {
		first := DeterministicJitter(id)
		second := DeterministicJitter(id)
		if first != second {
			t.Errorf("jitter for %q not stable: %d != %d", id, first, second)
		}
		if first < 0 || first > 15 {
			t.Errorf("jitter for %q = %d, want within [0,15]", id, first)
		}
	}
}

func TestResetClearsSession(t *testing.T) {
	a := newTestAnalyzer()

	item := feed.Item{ID: "r-1", AuthorHandle: "resetuser", Text: "hello"}
	if _, err := a.AnalyzeItem(context.Background(), item); err != nil {
		t.Fatalf("AnalyzeItem returned error: %v", err)
	}

	a.Reset()

	a.mu.Lock()
	profiles, cached := len(a.profiles), len(a.cache)
	a.mu.Unlock()

	if profiles != 0 || cached != 0 {
		t.Errorf("Reset left %d profiles and %d cached results", profiles, cached)
	}
}
