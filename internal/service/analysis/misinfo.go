// internal/service/analysis/misinfo.go

package analysis

import (
	"regexp"
	"strings"

	"octopal/internal/domain/feed"
)

// conspiracyLexicon is the fixed keyword table for misinformation-adjacent
// phrasing. Only the first match contributes.
var conspiracyLexicon = []string{
	"they don't want you to know",
	"wake up sheeple",
	"wake up",
	"the truth",
	"do your research",
	"they're hiding",
	"they are hiding",
	"conspiracy",
	"hoax",
	"fake news",
	"cover-up",
	"cover up",
	"deep state",
	"mainstream media won't",
	"the elites",
	"new world order",
	"false flag",
	"plandemic",
	"sheeple",
	"mind control",
	"big pharma",
	"what they're not telling you",
	"hidden agenda",
	"open your eyes",
}

// suspiciousDomains are substrings whose presence in the text suggests links
// to low-quality outlets. Only the first match contributes.
var suspiciousDomains = []string{
	"naturalnews",
	"infowars",
	"beforeitsnews",
	"worldtruth",
	"realfarmacy",
	"newspunch",
	"yournewswire",
	"collective-evolution",
}

// sensationalistPhrases are clickbait framings. Only the first match contributes.
var sensationalistPhrases = []string{
	"you won't believe",
	"shocking truth",
	"doctors hate",
	"this one trick",
	"what happens next",
	"mind-blowing",
	"jaw-dropping",
	"will change your life",
}

// overgeneralizations are absolute framings. Only the first match contributes.
var overgeneralizations = []string{
	"everyone knows",
	"nobody is talking about",
	"no one is talking about",
	"all of them are",
	"they always",
	"they never",
	"100% proof",
	"always lies",
}

var (
	conspiracyFramingRe = regexp.MustCompile(`(?i)\b(they|the government|the media|the elites)\b.{0,40}\b(hiding|hid|covering|covered|suppress\w*|silenc\w*)\b`)
	falseAuthorityRe    = regexp.MustCompile(`(?i)\b(experts|scientists|doctors|insiders|studies)\s+(say|agree|confirm|prove|show)\b`)
	fearInducingRe      = regexp.MustCompile(`(?i)\b(before it'?s too late|act now|be afraid|terrifying|deadly threat|you are in danger|destroy\w* (us|you|everything))\b`)
	falseDichotomyRe    = regexp.MustCompile(`(?i)\b(either\b.{0,60}\bor\b|you'?re (either )?with us or)`)
	passiveVoiceRe      = regexp.MustCompile(`(?i)\b(is|are|was|were|been|being|be)\s+(\w+(?:ed|en))\b(\s+by\b)?`)
	rhetoricalCueRe     = regexp.MustCompile(`(?i)\b(coincidence|makes you (think|wonder)|why won'?t they|what are they|who benefits|don'?t you think|ask yourself)\b`)
	uppercaseRe         = regexp.MustCompile(`[A-Z]`)
	letterRe            = regexp.MustCompile(`[A-Za-z]`)
	sentenceSplitRe     = regexp.MustCompile(`[.!?]+`)
)

// misinfoResult bundles the contributions of the misinformation checks.
type misinfoResult struct {
	Score           int
	Patterns        []string
	PassiveExamples []string
}

// scoreMisinformation runs the lexical and structural misinformation checks
// over an item's text. Each check is independent and fires at most once.
func scoreMisinformation(item feed.Item) misinfoResult {
	var res misinfoResult
	text := item.Text
	lower := strings.ToLower(text)

	// Excessive uppercase
	letters := len(letterRe.FindAllString(text, -1))
	uppers := len(uppercaseRe.FindAllString(text, -1))
	if letters > 0 && float64(uppers)/float64(letters) > 0.3 {
		res.Score += 20
		res.Patterns = append(res.Patterns, "Excessive capitalization")
	}

	// Exclamation marks
	if strings.Count(text, "!") > 2 {
		res.Score += 15
		res.Patterns = append(res.Patterns, "Excessive exclamation marks")
	}

	// Conspiracy lexicon, first match only
	for _, kw := range conspiracyLexicon {
		if strings.Contains(lower, kw) {
			res.Score += 15
			res.Patterns = append(res.Patterns, "Conspiracy-associated keyword: "+kw)
			break
		}
	}

	// Hashtag count
	tagCount := len(ExtractHashtags(text))
	if tagCount > 5 {
		res.Score += 20
		res.Patterns = append(res.Patterns, "Hashtag flooding")
	} else if tagCount > 3 {
		res.Score += 10
		res.Patterns = append(res.Patterns, "Many hashtags")
	}

	// Suspicious domain substrings
	for _, domain := range suspiciousDomains {
		if strings.Contains(lower, domain) {
			res.Score += 15
			res.Patterns = append(res.Patterns, "Link to known low-quality outlet")
			break
		}
	}

	// Sensationalist phrasing
	for _, phrase := range sensationalistPhrases {
		if strings.Contains(lower, phrase) {
			res.Score += 10
			res.Patterns = append(res.Patterns, "Sensationalist phrasing")
			break
		}
	}

	// Overgeneralization
	for _, phrase := range overgeneralizations {
		if strings.Contains(lower, phrase) {
			res.Score += 10
			res.Patterns = append(res.Patterns, "Sweeping overgeneralization")
			break
		}
	}

	// Structural sentence patterns
	if conspiracyFramingRe.MatchString(text) {
		res.Score += 20
		res.Patterns = append(res.Patterns, "Conspiracy framing")
	}
	if falseAuthorityRe.MatchString(text) {
		res.Score += 15
		res.Patterns = append(res.Patterns, "Appeal to unnamed authority")
	}
	if fearInducingRe.MatchString(text) {
		res.Score += 15
		res.Patterns = append(res.Patterns, "Fear-inducing language")
	}
	if falseDichotomyRe.MatchString(text) {
		res.Score += 10
		res.Patterns = append(res.Patterns, "False dichotomy")
	}

	// Passive voice hiding agency
	passiveScore, examples := scorePassiveVoice(text)
	if passiveScore > 0 {
		res.Score += passiveScore
		res.Patterns = append(res.Patterns, "Passive voice hiding agency")
		res.PassiveExamples = examples
	}

	// Rhetorical question manipulation
	if n := countRhetoricalQuestions(text); n >= 2 {
		res.Score += 20
		res.Patterns = append(res.Patterns, "Repeated rhetorical questions")
	} else if n == 1 {
		res.Score += 10
		res.Patterns = append(res.Patterns, "Rhetorical question")
	}

	return res
}

// splitSentences returns the non-empty sentences of text.
func splitSentences(text string) []string {
	parts := sentenceSplitRe.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// scorePassiveVoice scores passive constructions by count and by share of
// sentences, returning up to 3 literal example sentences.
func scorePassiveVoice(text string) (int, []string) {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return 0, nil
	}

	instances := 0
	var examples []string
	for _, s := range sentences {
		if passiveVoiceRe.MatchString(s) {
			instances++
			if len(examples) < 3 {
				examples = append(examples, s)
			}
		}
	}
	if instances == 0 {
		return 0, nil
	}

	share := float64(instances) / float64(len(sentences))
	switch {
	case instances >= 3 || share >= 0.5:
		return 25, examples
	case instances >= 2 || share >= 0.3:
		return 15, examples
	case instances == 1 && len(sentences) <= 3:
		return 10, examples
	}
	return 0, nil
}

// countRhetoricalQuestions counts question sentences with manipulative cues.
func countRhetoricalQuestions(text string) int {
	count := 0
	rest := text
	for {
		idx := strings.IndexByte(rest, '?')
		if idx < 0 {
			break
		}
		sentence := rest[:idx]
		if cut := strings.LastIndexAny(sentence, ".!"); cut >= 0 {
			sentence = sentence[cut+1:]
		}
		if rhetoricalCueRe.MatchString(sentence) {
			count++
		}
		rest = rest[idx+1:]
	}
	return count
}
