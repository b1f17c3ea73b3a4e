// internal/domain/progression/engine.go

package progression

import (
	"context"
	"errors"
)

// ErrInvalidPointType is returned when an award names an unknown point kind.
// No state is mutated in that case.
var ErrInvalidPointType = errors.New("invalid point type")

// AwardResult is the response to a point award.
type AwardResult struct {
	PointsAwarded int       `json:"pointsAwarded"`
	TotalPoints   int       `json:"totalPoints"`
	UserStats     UserStats `json:"userStats"`
}

// ReportResult is the response to a report submission.
type ReportResult struct {
	PointsAwarded int `json:"pointsAwarded"`
	TotalPoints   int `json:"totalPoints"`
}

// StatsResult bundles the full user-facing state.
type StatsResult struct {
	UserStats  UserStats      `json:"userStats"`
	Points     PointsLedger   `json:"points"`
	Level      LevelState     `json:"level"`
	Badges     BadgeState     `json:"badges"`
	Challenges ChallengeState `json:"challenges"`
}

// BadgesResult lists earned badges alongside all definitions.
type BadgesResult struct {
	Earned []EarnedBadge `json:"earnedBadges"`
	All    []Badge       `json:"allBadges"`
}

// BadgeProgressResult maps categories to current counters and earned dates.
type BadgeProgressResult struct {
	Progress    map[Category]int  `json:"badgeProgress"`
	EarnedDates map[string]string `json:"earnedDates"`
}

// ChallengesResult describes the active challenge slots.
type ChallengesResult struct {
	Daily           *Challenge     `json:"activeDaily,omitempty"`
	Weekly          *Challenge     `json:"activeWeekly,omitempty"`
	Special         *Challenge     `json:"activeSpecial,omitempty"`
	DailyProgress   map[string]int `json:"dailyProgress"`
	WeeklyProgress  map[string]int `json:"weeklyProgress"`
	SpecialProgress map[string]int `json:"specialProgress"`
	Streaks         Streaks        `json:"streaks"`
}

// ChallengeUpdateResult reports completions triggered by a progress update.
type ChallengeUpdateResult struct {
	Completed     []Challenge `json:"challengesCompleted"`
	PointsAwarded int         `json:"pointsAwarded"`
}

// LevelResult describes the current level and the full threshold table.
type LevelResult struct {
	Level  LevelState `json:"level"`
	Points int        `json:"points"`
	All    []Level    `json:"allLevels"`
}

// Engine defines the progression command surface. Implementations are
// single-writer: each call performs a full read-modify-write of the persisted
// state and must be serialized.
type Engine interface {
	// SubmitReport records a content report and awards report points
	SubmitReport(ctx context.Context, url, title string) (ReportResult, error)

	// AwardPoints applies a point award of the given kind. A zero amount uses
	// the kind's base value. Unknown kinds return ErrInvalidPointType.
	AwardPoints(ctx context.Context, kind PointKind, amount int, details map[string]any) (AwardResult, error)

	// GetUserStats returns the combined state, applying daily rollover first
	GetUserStats(ctx context.Context) (StatsResult, error)

	// GetBadges returns earned badges and all definitions
	GetBadges(ctx context.Context) (BadgesResult, error)

	// GetBadgeProgress returns per-category counters and earned dates
	GetBadgeProgress(ctx context.Context) (BadgeProgressResult, error)

	// GetChallenges returns the active slots, rotating expired ones first
	GetChallenges(ctx context.Context) (ChallengesResult, error)

	// UpdateChallengeProgress accumulates progress toward matching challenges
	UpdateChallengeProgress(ctx context.Context, category Category, amount int) (ChallengeUpdateResult, error)

	// GetLevelDetails returns the current level and the threshold table
	GetLevelDetails(ctx context.Context) (LevelResult, error)

	// GetLeaderboard returns the local mock leaderboard, sorted by points
	GetLeaderboard(ctx context.Context) ([]LeaderboardEntry, error)
}
