// internal/service/analysis/heuristics.go

package analysis

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	trailingDigits4 = regexp.MustCompile(`\d{4,}$`)
	trailingDigits6 = regexp.MustCompile(`\d{6,}$`)
	defaultAvatarRe = regexp.MustCompile(`default`)
)

// monthNames is the fixed table used to parse "Joined <Month> <Year>" strings.
var monthNames = map[string]time.Month{
	"january":   time.January,
	"february":  time.February,
	"march":     time.March,
	"april":     time.April,
	"may":       time.May,
	"june":      time.June,
	"july":      time.July,
	"august":    time.August,
	"september": time.September,
	"october":   time.October,
	"november":  time.November,
	"december":  time.December,
}

// scoreUsername checks the handle for trailing digit runs. Both thresholds may
// fire on the same handle.
func scoreUsername(handle string) (int, []string) {
	score := 0
	var patterns []string

	if trailingDigits4.MatchString(handle) {
		score += 25
		patterns = append(patterns, "Username ends in a long digit run")
	}
	if trailingDigits6.MatchString(handle) {
		score += 15
		patterns = append(patterns, "Username ends in a very long digit run")
	}

	return score, patterns
}

// scoreVerification contributes when no verified badge is present.
func scoreVerification(isVerified bool) (int, []string) {
	if isVerified {
		return 0, nil
	}
	return 10, []string{"Account is not verified"}
}

// scoreAvatar contributes when the avatar is missing or a platform default.
func scoreAvatar(hasAvatar bool, avatarURL string) (int, []string) {
	if hasAvatar && !defaultAvatarRe.MatchString(strings.ToLower(avatarURL)) {
		return 0, nil
	}
	return 15, []string{"Default or missing profile image"}
}

// parseJoinDate parses a free-text "Joined <Month> <Year>" string. It returns
// the zero time when the string is missing or unparsable.
func parseJoinDate(joined string) time.Time {
	fields := strings.Fields(joined)
	if len(fields) < 2 {
		return time.Time{}
	}

	// Tolerate a leading "Joined"
	if strings.EqualFold(fields[0], "joined") {
		fields = fields[1:]
	}
	if len(fields) < 2 {
		return time.Time{}
	}

	month, ok := monthNames[strings.ToLower(fields[0])]
	if !ok {
		return time.Time{}
	}

	var year int
	if _, err := fmt.Sscanf(fields[1], "%d", &year); err != nil || year < 1900 {
		return time.Time{}
	}

	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

// scoreAccountAge buckets the account age into a decaying contribution. A
// missing or unparsable join date contributes nothing.
func scoreAccountAge(joined string, now time.Time) (int, string) {
	joinDate := parseJoinDate(joined)
	if joinDate.IsZero() {
		return 0, ""
	}

	days := int(now.Sub(joinDate).Hours() / 24)
	if days < 0 {
		days = 0
	}

	var score int
	switch {
	case days < 30:
		score = 25
	case days < 90:
		score = 20
	case days < 180:
		score = 15
	case days < 365:
		score = 10
	case days < 730:
		score = 5
	default:
		score = 0
	}

	age := fmt.Sprintf("Account created %s (%d days ago)", joinDate.Format("January 2006"), days)
	return score, age
}
