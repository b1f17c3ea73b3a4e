package progression

import (
	"time"
)

// PointKind identifies the action a point award is for.
type PointKind string

const (
	PointBotDetected          PointKind = "BOT_DETECTED"
	PointReportSubmitted      PointKind = "REPORT_SUBMITTED"
	PointMisinfoFlagged       PointKind = "MISINFO_FLAGGED"
	PointSourceValidated      PointKind = "SOURCE_VALIDATED"
	PointPassiveVoiceDetected PointKind = "PASSIVE_VOICE_DETECTED"
	PointLowCredibilitySource PointKind = "LOW_CREDIBILITY_SOURCE_IDENTIFIED"
	PointConsecutiveDaysBonus PointKind = "CONSECUTIVE_DAYS_BONUS"
	PointChallengeCompleted   PointKind = "CHALLENGE_COMPLETED"
	PointBadgeEarned          PointKind = "BADGE_EARNED"
	PointSharedResult         PointKind = "SHARED_RESULT"
)

// Category names the counter a badge or challenge tracks.
type Category string

const (
	CategoryBotDetection        Category = "bot_detection"
	CategorySpamDetection       Category = "spam_detection"
	CategoryMisinfoFlagged      Category = "misinfo_flagged"
	CategorySourceValidation    Category = "source_validation"
	CategoryPassiveDetected     Category = "passive_detected"
	CategoryLowCredibility      Category = "low_credibility_sources"
	CategoryDailyUsage          Category = "daily_usage"
	CategoryChallengesCompleted Category = "challenges_completed"
	CategoryReportSubmitted     Category = "report_submitted"
	CategoryLoginStreak         Category = "login_streak"

	// CategoryCombined is the wildcard challenge type matched by any update.
	CategoryCombined Category = "combined"
)

// Difficulty tiers a challenge and fixes its reward multiplier.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyExpert Difficulty = "expert"
)

// Multiplier returns the fixed reward multiplier for the difficulty tier.
func (d Difficulty) Multiplier() float64 {
	switch d {
	case DifficultyMedium:
		return 1.5
	case DifficultyHard:
		return 2.0
	case DifficultyExpert:
		return 3.0
	default:
		return 1.0
	}
}

// Badge is a permanent achievement definition.
type Badge struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Requirement int      `json:"requirement"`
	Type        Category `json:"type"`
}

// EarnedBadge records a badge unlock.
type EarnedBadge struct {
	Badge
	EarnedDate time.Time `json:"earnedDate"`
}

// Tier identifies which active challenge slot a definition belongs to.
type Tier string

const (
	TierDaily   Tier = "daily"
	TierWeekly  Tier = "weekly"
	TierSpecial Tier = "special"
)

// Challenge is a time-boxed goal definition.
type Challenge struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Reward      int        `json:"reward"`
	Requirement int        `json:"requirement"`
	Type        Category   `json:"type"`
	Tier        Tier       `json:"tier"`
	Difficulty  Difficulty `json:"difficulty"`
}

// Level is one row of the static level threshold table.
type Level struct {
	Level     int    `json:"level"`
	Threshold int    `json:"threshold"`
	Title     string `json:"title"`
}

// UserStats is the persisted counter record.
type UserStats struct {
	ReportsSubmitted   int    `json:"reportsSubmitted"`
	BotsDetected       int    `json:"botsDetected"`
	MisinfoFlagged     int    `json:"misinfoFlagged"`
	SourcesValidated   int    `json:"sourcesValidated"`
	PassiveDetected    int    `json:"passiveDetected"`
	LowCredibilitySrcs int    `json:"lowCredibilitySources"`
	LastActiveDate     string `json:"lastActiveDate"` // YYYY-MM-DD
	ConsecutiveDays    int    `json:"consecutiveDays"`
}

// PointEntry is one append-only ledger row.
type PointEntry struct {
	Kind      PointKind      `json:"type"`
	Amount    int            `json:"amount"`
	Timestamp time.Time      `json:"timestamp"`
	Details   map[string]any `json:"details,omitempty"`
}

// PointsLedger is the persisted points record. Total always equals the sum of
// history amounts.
type PointsLedger struct {
	Total       int          `json:"total"`
	History     []PointEntry `json:"history"`
	LastUpdated time.Time    `json:"lastUpdated"`
}

// BadgeState is the persisted badge record. Earned badges are append-only.
type BadgeState struct {
	Earned   []EarnedBadge    `json:"earned"`
	Progress map[Category]int `json:"progress"`
}

// ActiveChallenges holds the up-to-three concurrently active slots.
type ActiveChallenges struct {
	Daily   *Challenge `json:"daily,omitempty"`
	Weekly  *Challenge `json:"weekly,omitempty"`
	Special *Challenge `json:"special,omitempty"`
}

// Streaks tracks consecutive challenge completions per tier.
type Streaks struct {
	Daily          int        `json:"dailyChallengeCompleted"`
	Weekly         int        `json:"weeklyChallengeCompleted"`
	LastDailyDone  *time.Time `json:"lastDailyCompleted,omitempty"`
	LastWeeklyDone *time.Time `json:"lastWeeklyCompleted,omitempty"`
}

// ChallengeState is the persisted challenge record.
type ChallengeState struct {
	Active          ActiveChallenges  `json:"active"`
	History         []string          `json:"history"`
	DailyProgress   map[string]int    `json:"dailyProgress"`
	WeeklyProgress  map[string]int    `json:"weeklyProgress"`
	SpecialProgress map[string]int    `json:"specialProgress"`
	LastDailyReset  string            `json:"lastDailyReset"`  // YYYY-MM-DD
	LastWeeklyReset string            `json:"lastWeeklyReset"` // week-start YYYY-MM-DD
	SpecialExpiry   *time.Time        `json:"specialExpiry,omitempty"`
	// PeriodCompleted tracks completions within the current reset period per
	// tier. Only consulted under the per-period reuse policy.
	PeriodCompleted map[Tier][]string `json:"periodCompleted,omitempty"`
	Streaks         Streaks           `json:"streaks"`
}

// LevelState is the persisted level record, recomputed from the ledger total.
type LevelState struct {
	Current       int    `json:"current"`
	Title         string `json:"title"`
	Progress      int    `json:"progress"`
	NextThreshold int    `json:"nextThreshold"` // 0 means max level reached
}

// Report is one submitted content report.
type Report struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
}

// LeaderboardEntry is one row of the local mock leaderboard.
type LeaderboardEntry struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
	Rank   int    `json:"rank"`
	IsYou  bool   `json:"isYou,omitempty"`
}
