// internal/service/analysis/session.go

package analysis

import (
	"regexp"
	"strings"
	"time"

	"octopal/internal/domain/feed"
)

var hashtagRe = regexp.MustCompile(`#(\w+)`)

// ExtractHashtags returns the normalized lowercase hashtags in text, in order
// of appearance.
func ExtractHashtags(text string) []string {
	matches := hashtagRe.FindAllStringSubmatch(text, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, strings.ToLower(m[1]))
	}
	return tags
}

// classifyTagPositions buckets the hashtag tokens of an item by where they sit
// in the token stream. A run of 3 or more consecutive hashtag tokens counts as
// one grouped occurrence in addition to the per-tag buckets.
func classifyTagPositions(text string) map[feed.HashtagPosition]int {
	positions := make(map[feed.HashtagPosition]int)
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return positions
	}

	run := 0
	for i, tok := range tokens {
		if !strings.HasPrefix(tok, "#") {
			if run >= 3 {
				positions[feed.PositionGrouped]++
			}
			run = 0
			continue
		}
		run++

		switch {
		case i < len(tokens)/3:
			positions[feed.PositionBeginning]++
		case i >= (2*len(tokens))/3:
			positions[feed.PositionEnd]++
		default:
			positions[feed.PositionMiddle]++
		}
	}
	if run >= 3 {
		positions[feed.PositionGrouped]++
	}

	return positions
}

// observeItem folds one item into its author's session profile, creating the
// profile on first sight.
func (a *Analyzer) observeItem(item feed.Item, now time.Time) *feed.AuthorProfile {
	profile, ok := a.profiles[item.AuthorHandle]
	if !ok {
		profile = &feed.AuthorProfile{
			Handle:       item.AuthorHandle,
			FirstSeenAt:  now,
			HashtagUses:  make(map[string]int),
			TagPositions: make(map[feed.HashtagPosition]int),
		}
		a.profiles[item.AuthorHandle] = profile
	}

	profile.PostCount++
	if item.PostedAt != nil {
		profile.Timestamps = append(profile.Timestamps, *item.PostedAt)
	}
	for _, tag := range ExtractHashtags(item.Text) {
		profile.HashtagUses[tag]++
	}
	for pos, n := range classifyTagPositions(item.Text) {
		profile.TagPositions[pos] += n
	}

	return profile
}

// Reset clears all session-scoped state: author profiles and the score cache.
func (a *Analyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.profiles = make(map[string]*feed.AuthorProfile)
	a.cache = make(map[string]feed.ScoreResult)
}
