// internal/service/analysis/frequency.go

package analysis

import (
	"sort"
	"time"

	"octopal/internal/domain/feed"
)

// scorePostingFrequency checks an author's session profile for automation-like
// posting behavior. A single shared pattern label is kept: each matching branch
// overwrites it, so the last match wins.
func scorePostingFrequency(profile *feed.AuthorProfile, now time.Time) (int, string) {
	if profile == nil {
		return 0, ""
	}

	score := 0
	pattern := ""

	if profile.PostCount > 5 {
		score += 20
		pattern = "High posting volume this session"
	}

	if variance, ok := intervalVariance(profile.Timestamps); ok {
		if variance < 60000 {
			score += 30
			pattern = "Regular intervals, possible automation"
		} else if variance < 300000 {
			score += 15
			pattern = "Tightly spaced posting intervals"
		}
	}

	if rate, ok := postsPerMinute(profile, now); ok {
		if rate > 0.5 {
			score += 25
			pattern = "Very high posting rate"
		} else if rate > 0.2 {
			score += 10
			pattern = "Elevated posting rate"
		}
	}

	return score, pattern
}

// intervalVariance computes the population variance of the gaps between
// consecutive post timestamps, in milliseconds.
func intervalVariance(timestamps []time.Time) (float64, bool) {
	if len(timestamps) < 3 {
		return 0, false
	}

	sorted := make([]time.Time, len(timestamps))
	copy(sorted, timestamps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	intervals := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		intervals = append(intervals, float64(sorted[i].Sub(sorted[i-1]).Milliseconds()))
	}

	mean := 0.0
	for _, v := range intervals {
		mean += v
	}
	mean /= float64(len(intervals))

	variance := 0.0
	for _, v := range intervals {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(intervals))

	return variance, true
}

// postsPerMinute computes the author's observed posting rate over the span of
// their session timestamps.
func postsPerMinute(profile *feed.AuthorProfile, now time.Time) (float64, bool) {
	if len(profile.Timestamps) < 2 {
		return 0, false
	}

	earliest, latest := profile.Timestamps[0], profile.Timestamps[0]
	for _, ts := range profile.Timestamps[1:] {
		if ts.Before(earliest) {
			earliest = ts
		}
		if ts.After(latest) {
			latest = ts
		}
	}

	minutes := latest.Sub(earliest).Minutes()
	if minutes <= 0 {
		return 0, false
	}

	return float64(profile.PostCount) / minutes, true
}
