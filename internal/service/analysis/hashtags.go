// internal/service/analysis/hashtags.go

package analysis

import (
	"fmt"
	"strings"

	"octopal/internal/domain/feed"
)

// topicCategories is the fixed keyword table used to detect hashtag spraying
// across unrelated topics.
var topicCategories = map[string][]string{
	"politics":      {"election", "vote", "president", "congress", "senate", "democrat", "republican", "policy"},
	"health":        {"covid", "vaccine", "cure", "health", "doctor", "medicine", "virus", "wellness"},
	"finance":       {"crypto", "bitcoin", "stock", "invest", "money", "trading", "nft", "forex"},
	"entertainment": {"movie", "music", "celebrity", "film", "concert", "streaming", "viral", "trending"},
	"sports":        {"football", "soccer", "basketball", "game", "match", "team", "league", "championship"},
}

// scoreHashtagPatterns checks an item's hashtag usage against its author's
// session profile for spam-like patterns. Each matching check appends its own
// insight label.
func scoreHashtagPatterns(item feed.Item, profile *feed.AuthorProfile) (int, []string) {
	score := 0
	var insights []string

	tags := ExtractHashtags(item.Text)
	words := len(strings.Fields(item.Text))

	// Density within this item
	if words > 0 {
		density := float64(len(tags)) / float64(words)
		if density > 0.4 {
			score += 25
			insights = append(insights, "Very high hashtag density")
		} else if density > 0.25 {
			score += 15
			insights = append(insights, "High hashtag density")
		}
	}

	if profile != nil {
		// Repetition across the author's session items
		total, unique := 0, len(profile.HashtagUses)
		maxUses := 0
		for _, n := range profile.HashtagUses {
			total += n
			if n > maxUses {
				maxUses = n
			}
		}
		if unique > 0 {
			ratio := float64(total) / float64(unique)
			if ratio > 3 {
				score += 20
				insights = append(insights, "Heavy hashtag repetition across posts")
			} else if ratio > 2 {
				score += 10
				insights = append(insights, "Repeated hashtags across posts")
			}
		}
		if maxUses >= 3 {
			score += 15
			insights = append(insights, "Same hashtag repeated 3+ times")
		}

		if profile.TagPositions[feed.PositionGrouped] > 0 {
			score += 15
			insights = append(insights, "Hashtags posted in consecutive blocks")
		}

		endUses := profile.TagPositions[feed.PositionEnd]
		offEnd := profile.TagPositions[feed.PositionBeginning] + profile.TagPositions[feed.PositionMiddle]
		if endUses >= 3 && offEnd == 0 {
			score += 20
			insights = append(insights, "Hashtags exclusively appended at post end")
		}
	}

	// Raw count within this item
	if len(tags) > 6 {
		score += 25
		insights = append(insights, fmt.Sprintf("Excessive hashtag count (%d)", len(tags)))
	} else if len(tags) > 4 {
		score += 15
		insights = append(insights, fmt.Sprintf("High hashtag count (%d)", len(tags)))
	}

	// Topical spread across unrelated categories
	if n := countTopicCategories(tags); n >= 3 {
		score += 20
		insights = append(insights, "Hashtags span unrelated topics")
	}

	return score, insights
}

// countTopicCategories returns how many distinct topic categories the tags
// touch, using the fixed keyword table.
func countTopicCategories(tags []string) int {
	seen := make(map[string]bool)
	for _, tag := range tags {
		for category, keywords := range topicCategories {
			if seen[category] {
				continue
			}
			for _, kw := range keywords {
				if strings.Contains(tag, kw) {
					seen[category] = true
					break
				}
			}
		}
	}
	return len(seen)
}
