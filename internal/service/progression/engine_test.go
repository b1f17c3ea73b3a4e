// internal/service/progression/engine_test.go

package progression

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"octopal/internal/adapter/storage"
	"octopal/internal/domain/progression"
	"octopal/internal/metrics"
)

// Compile-time interface checks.
var (
	_ progression.Engine = (*Engine)(nil)
	_ StateStore         = (*storage.MemoryStateStore)(nil)
)

// testDay is a Sunday, so the daily and weekly periods start together.
var testDay = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) (*Engine, *storage.MemoryStateStore) {
	t.Helper()
	store := storage.NewMemoryStateStore()
	engine := NewEngine(store, nil, EngineConfig{
		Clock: func() time.Time { return testDay },
		Seed:  1,
	})
	return engine, store
}

// seedChallenges installs a known challenge state so selection randomness
// cannot interfere with point accounting.
func seedChallenges(t *testing.T, store *storage.MemoryStateStore, st progression.ChallengeState) {
	t.Helper()
	if st.DailyProgress == nil {
		st.DailyProgress = map[string]int{}
	}
	if st.WeeklyProgress == nil {
		st.WeeklyProgress = map[string]int{}
	}
	if st.SpecialProgress == nil {
		st.SpecialProgress = map[string]int{}
	}
	if st.LastDailyReset == "" {
		st.LastDailyReset = testDay.Format("2006-01-02")
	}
	if st.LastWeeklyReset == "" {
		st.LastWeeklyReset = weekStartOf(testDay)
	}
	if err := store.SetAll(context.Background(), map[string]any{"challenges": st}); err != nil {
		t.Fatalf("seeding challenges: %v", err)
	}
}

// inertChallenges returns a state whose active slots never match detection
// categories.
func inertChallenges() progression.ChallengeState {
	daily := progression.Challenge{
		ID: "daily_inert", Name: "Inert", Reward: 50, Requirement: 100,
		Type: progression.CategoryReportSubmitted, Tier: progression.TierDaily,
		Difficulty: progression.DifficultyEasy,
	}
	weekly := progression.Challenge{
		ID: "weekly_inert", Name: "Inert Weekly", Reward: 200, Requirement: 100,
		Type: progression.CategoryLoginStreak, Tier: progression.TierWeekly,
		Difficulty: progression.DifficultyMedium,
	}
	return progression.ChallengeState{
		Active: progression.ActiveChallenges{Daily: &daily, Weekly: &weekly},
	}
}

func TestAwardPointsFirstBotDetection(t *testing.T) {
	engine, store := newTestEngine(t)
	seedChallenges(t, store, inertChallenges())

	result, err := engine.AwardPoints(context.Background(), progression.PointBotDetected, 0, nil)
	if err != nil {
		t.Fatalf("AwardPoints returned error: %v", err)
	}

	if result.PointsAwarded != 10 {
		t.Errorf("PointsAwarded = %d, want 10", result.PointsAwarded)
	}
	if result.TotalPoints != 10 {
		t.Errorf("TotalPoints = %d, want 10", result.TotalPoints)
	}
	if result.UserStats.BotsDetected != 1 {
		t.Errorf("BotsDetected = %d, want 1", result.UserStats.BotsDetected)
	}
}

func TestAwardPointsExplicitAmount(t *testing.T) {
	engine, store := newTestEngine(t)
	seedChallenges(t, store, inertChallenges())

	result, err := engine.AwardPoints(context.Background(), progression.PointSharedResult, 33, nil)
	if err != nil {
		t.Fatalf("AwardPoints returned error: %v", err)
	}

	if result.PointsAwarded != 33 {
		t.Errorf("PointsAwarded = %d, want 33", result.PointsAwarded)
	}
}

func TestAwardPointsInvalidKind(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.AwardPoints(context.Background(), progression.PointKind("NOT_A_KIND"), 0, nil)
	if !errors.Is(err, progression.ErrInvalidPointType) {
		t.Fatalf("err = %v, want ErrInvalidPointType", err)
	}

	// No state may have been written.
	stats, err := engine.GetLevelDetails(context.Background())
	if err != nil {
		t.Fatalf("GetLevelDetails returned error: %v", err)
	}
	if stats.Points != 0 {
		t.Errorf("Points = %d, want 0 after rejected award", stats.Points)
	}
}

func TestLedgerTotalMatchesHistory(t *testing.T) {
	engine, store := newTestEngine(t)
	seedChallenges(t, store, inertChallenges())

	ctx := context.Background()
	engine.AwardPoints(ctx, progression.PointBotDetected, 0, nil)
	engine.AwardPoints(ctx, progression.PointMisinfoFlagged, 0, nil)
	engine.AwardPoints(ctx, progression.PointSourceValidated, 0, nil)
	engine.SubmitReport(ctx, "https://example.com/post", "Suspicious post")

	stats, err := engine.GetUserStats(ctx)
	if err != nil {
		t.Fatalf("GetUserStats returned error: %v", err)
	}

	sum := 0
	for _, entry := range stats.Points.History {
		sum += entry.Amount
	}
	if sum != stats.Points.Total {
		t.Errorf("history sum = %d, ledger total = %d", sum, stats.Points.Total)
	}
}

func TestBadgeEarnedOnceWithBonus(t *testing.T) {
	engine, store := newTestEngine(t)
	seedChallenges(t, store, inertChallenges())

	ctx := context.Background()

	// bot_buster requires 10 detections.
	for i := 0; i < 10; i++ {
		if _, err := engine.AwardPoints(ctx, progression.PointBotDetected, 0, nil); err != nil {
			t.Fatalf("award %d returned error: %v", i, err)
		}
	}

	badges, err := engine.GetBadges(ctx)
	if err != nil {
		t.Fatalf("GetBadges returned error: %v", err)
	}

	earnedBotBuster := 0
	for _, b := range badges.Earned {
		if b.ID == "bot_buster" {
			earnedBotBuster++
		}
	}
	if earnedBotBuster != 1 {
		t.Fatalf("bot_buster earned %d times, want exactly once", earnedBotBuster)
	}

	// 10 detections at 10 points plus the one-time 50 point badge bonus.
	level, err := engine.GetLevelDetails(ctx)
	if err != nil {
		t.Fatalf("GetLevelDetails returned error: %v", err)
	}
	if level.Points != 150 {
		t.Errorf("Points = %d, want 150", level.Points)
	}

	// Further detections must not re-earn the badge.
	engine.AwardPoints(ctx, progression.PointBotDetected, 0, nil)
	badges, _ = engine.GetBadges(ctx)
	count := 0
	for _, b := range badges.Earned {
		if b.ID == "bot_buster" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("bot_buster earned %d times after extra detection, want 1", count)
	}
}

func TestBadgeEarnIncrementsCounter(t *testing.T) {
	engine, store := newTestEngine(t)
	seedChallenges(t, store, inertChallenges())

	ctx := context.Background()
	before := testutil.ToFloat64(metrics.BadgesEarned)

	for i := 0; i < 10; i++ {
		if _, err := engine.AwardPoints(ctx, progression.PointBotDetected, 0, nil); err != nil {
			t.Fatalf("award %d returned error: %v", i, err)
		}
	}

	if got := testutil.ToFloat64(metrics.BadgesEarned) - before; got != 1 {
		t.Errorf("badges_earned_total moved by %v, want 1", got)
	}
}

func TestChallengeCompletionWithStreakBonus(t *testing.T) {
	engine, store := newTestEngine(t)

	st := inertChallenges()
	daily := progression.Challenge{
		ID: "daily_single", Name: "Single Detection", Reward: 50, Requirement: 1,
		Type: progression.CategoryBotDetection, Tier: progression.TierDaily,
		Difficulty: progression.DifficultyEasy,
	}
	st.Active.Daily = &daily
	st.Streaks.Daily = 5
	seedChallenges(t, store, st)

	result, err := engine.UpdateChallengeProgress(context.Background(), progression.CategoryBotDetection, 1)
	if err != nil {
		t.Fatalf("UpdateChallengeProgress returned error: %v", err)
	}

	if len(result.Completed) != 1 || result.Completed[0].ID != "daily_single" {
		t.Fatalf("Completed = %+v, want daily_single", result.Completed)
	}

	// Base 50, easy multiplier 1.0, streak bonus capped at 1.5.
	if result.PointsAwarded != 75 {
		t.Errorf("PointsAwarded = %d, want 75", result.PointsAwarded)
	}

	challenges, err := engine.GetChallenges(context.Background())
	if err != nil {
		t.Fatalf("GetChallenges returned error: %v", err)
	}
	if challenges.Streaks.Daily != 6 {
		t.Errorf("daily streak = %d, want 6", challenges.Streaks.Daily)
	}
	if challenges.Daily != nil && challenges.Daily.ID == "daily_single" {
		t.Error("completed challenge still active, want rotation")
	}
}

func TestChallengeNeverReused(t *testing.T) {
	engine, store := newTestEngine(t)

	st := inertChallenges()
	daily := progression.Challenge{
		ID: "daily_repeat", Name: "Repeat", Reward: 50, Requirement: 1,
		Type: progression.CategoryBotDetection, Tier: progression.TierDaily,
		Difficulty: progression.DifficultyEasy,
	}
	st.Active.Daily = &daily
	st.History = []string{"daily_repeat"}
	seedChallenges(t, store, st)

	result, err := engine.UpdateChallengeProgress(context.Background(), progression.CategoryBotDetection, 1)
	if err != nil {
		t.Fatalf("UpdateChallengeProgress returned error: %v", err)
	}

	if len(result.Completed) != 0 {
		t.Errorf("Completed = %+v, want none under the never-reuse policy", result.Completed)
	}
	if result.PointsAwarded != 0 {
		t.Errorf("PointsAwarded = %d, want 0", result.PointsAwarded)
	}
}

func TestChallengeReusePerPeriod(t *testing.T) {
	store := storage.NewMemoryStateStore()
	engine := NewEngine(store, nil, EngineConfig{
		Clock:       func() time.Time { return testDay },
		Seed:        1,
		ReusePolicy: ReusePerPeriod,
	})

	st := inertChallenges()
	daily := progression.Challenge{
		ID: "daily_cycle", Name: "Cycle", Reward: 50, Requirement: 1,
		Type: progression.CategoryBotDetection, Tier: progression.TierDaily,
		Difficulty: progression.DifficultyEasy,
	}
	st.Active.Daily = &daily
	// Completed in an earlier period: eligible again now.
	st.History = []string{"daily_cycle"}
	seedChallenges(t, store, st)

	result, err := engine.UpdateChallengeProgress(context.Background(), progression.CategoryBotDetection, 1)
	if err != nil {
		t.Fatalf("UpdateChallengeProgress returned error: %v", err)
	}
	if len(result.Completed) != 1 {
		t.Fatalf("Completed = %+v, want the recycled challenge to pay out", result.Completed)
	}

	// Within the same period a second completion of the same id is blocked.
	st2 := inertChallenges()
	st2.Active.Daily = &daily
	st2.PeriodCompleted = map[progression.Tier][]string{
		progression.TierDaily: {"daily_cycle"},
	}
	seedChallenges(t, store, st2)

	result, err = engine.UpdateChallengeProgress(context.Background(), progression.CategoryBotDetection, 1)
	if err != nil {
		t.Fatalf("UpdateChallengeProgress returned error: %v", err)
	}
	if len(result.Completed) != 0 {
		t.Errorf("Completed = %+v, want none within the same period", result.Completed)
	}
}

func TestCombinedChallengeMatchesAnyCategory(t *testing.T) {
	engine, store := newTestEngine(t)

	st := inertChallenges()
	daily := progression.Challenge{
		ID: "daily_any", Name: "Any Detection", Reward: 60, Requirement: 2,
		Type: progression.CategoryCombined, Tier: progression.TierDaily,
		Difficulty: progression.DifficultyMedium,
	}
	st.Active.Daily = &daily
	seedChallenges(t, store, st)

	ctx := context.Background()
	first, err := engine.UpdateChallengeProgress(ctx, progression.CategoryMisinfoFlagged, 1)
	if err != nil {
		t.Fatalf("first update returned error: %v", err)
	}
	if len(first.Completed) != 0 {
		t.Fatalf("completed after 1 of 2, want none")
	}

	second, err := engine.UpdateChallengeProgress(ctx, progression.CategoryPassiveDetected, 1)
	if err != nil {
		t.Fatalf("second update returned error: %v", err)
	}
	if len(second.Completed) != 1 {
		t.Fatalf("Completed = %+v, want combined challenge done", second.Completed)
	}

	// Base 60, medium multiplier 1.5, no streak.
	if second.PointsAwarded != 90 {
		t.Errorf("PointsAwarded = %d, want 90", second.PointsAwarded)
	}
}

func TestConsecutiveDayTracking(t *testing.T) {
	store := storage.NewMemoryStateStore()
	current := testDay
	engine := NewEngine(store, nil, EngineConfig{
		Clock: func() time.Time { return current },
		Seed:  1,
	})
	ctx := context.Background()

	stats, err := engine.GetUserStats(ctx)
	if err != nil {
		t.Fatalf("GetUserStats returned error: %v", err)
	}
	if stats.UserStats.ConsecutiveDays != 1 {
		t.Fatalf("ConsecutiveDays = %d, want 1 on first visit", stats.UserStats.ConsecutiveDays)
	}

	// Next day: streak grows and the bonus is paid.
	current = testDay.AddDate(0, 0, 1)
	stats, err = engine.GetUserStats(ctx)
	if err != nil {
		t.Fatalf("GetUserStats returned error: %v", err)
	}
	if stats.UserStats.ConsecutiveDays != 2 {
		t.Errorf("ConsecutiveDays = %d, want 2", stats.UserStats.ConsecutiveDays)
	}

	bonusSeen := false
	for _, entry := range stats.Points.History {
		if entry.Kind == progression.PointConsecutiveDaysBonus {
			bonusSeen = true
		}
	}
	if !bonusSeen {
		t.Error("no consecutive-days bonus in the ledger")
	}

	// Same day again: no change.
	stats, _ = engine.GetUserStats(ctx)
	if stats.UserStats.ConsecutiveDays != 2 {
		t.Errorf("ConsecutiveDays = %d after same-day revisit, want 2", stats.UserStats.ConsecutiveDays)
	}

	// A gap resets the streak without a bonus.
	total := stats.Points.Total
	current = testDay.AddDate(0, 0, 5)
	stats, err = engine.GetUserStats(ctx)
	if err != nil {
		t.Fatalf("GetUserStats returned error: %v", err)
	}
	if stats.UserStats.ConsecutiveDays != 1 {
		t.Errorf("ConsecutiveDays = %d after gap, want 1", stats.UserStats.ConsecutiveDays)
	}
	if stats.Points.Total != total {
		t.Errorf("Total = %d after gap, want unchanged %d", stats.Points.Total, total)
	}
}

func TestDailyChallengeRotatesAcrossDays(t *testing.T) {
	store := storage.NewMemoryStateStore()
	current := testDay
	engine := NewEngine(store, nil, EngineConfig{
		Clock: func() time.Time { return current },
		Seed:  1,
	})
	ctx := context.Background()

	first, err := engine.GetChallenges(ctx)
	if err != nil {
		t.Fatalf("GetChallenges returned error: %v", err)
	}
	if first.Daily == nil {
		t.Fatal("no daily challenge selected on first run")
	}

	current = testDay.AddDate(0, 0, 1)
	second, err := engine.GetChallenges(ctx)
	if err != nil {
		t.Fatalf("GetChallenges returned error: %v", err)
	}
	if second.Daily == nil {
		t.Fatal("no daily challenge after rollover")
	}
	if second.Daily.ID == first.Daily.ID {
		t.Errorf("daily challenge %q repeated immediately after rollover", second.Daily.ID)
	}
}

func TestSpecialChallengeRewardIgnoresStreaks(t *testing.T) {
	engine, store := newTestEngine(t)

	st := inertChallenges()
	special := progression.Challenge{
		ID: "special_single", Name: "Single Validation", Reward: 100, Requirement: 1,
		Type: progression.CategorySourceValidation, Tier: progression.TierSpecial,
		Difficulty: progression.DifficultyExpert,
	}
	expiry := testDay.Add(48 * time.Hour)
	st.Active.Special = &special
	st.SpecialExpiry = &expiry
	st.Streaks.Daily = 5
	st.Streaks.Weekly = 5
	seedChallenges(t, store, st)

	ctx := context.Background()
	result, err := engine.UpdateChallengeProgress(ctx, progression.CategorySourceValidation, 1)
	if err != nil {
		t.Fatalf("UpdateChallengeProgress returned error: %v", err)
	}

	if len(result.Completed) != 1 || result.Completed[0].ID != "special_single" {
		t.Fatalf("Completed = %+v, want special_single", result.Completed)
	}

	// Base 100 at the expert multiplier 3.0. The streak bonus applies to the
	// daily and weekly tiers only; with it this would pay 450.
	if result.PointsAwarded != 300 {
		t.Errorf("PointsAwarded = %d, want 300", result.PointsAwarded)
	}

	// The slot empties on completion rather than rotating.
	var after progression.ChallengeState
	if ok, err := store.Get(ctx, "challenges", &after); err != nil || !ok {
		t.Fatalf("loading challenge state: ok=%v err=%v", ok, err)
	}
	if after.Active.Special != nil {
		t.Errorf("special slot = %+v after completion, want empty", after.Active.Special)
	}
	if after.SpecialExpiry != nil {
		t.Error("special expiry survived completion")
	}
	if len(after.SpecialProgress) != 0 {
		t.Errorf("special progress = %v after completion, want cleared", after.SpecialProgress)
	}
}

func TestSpecialChallengeExpires(t *testing.T) {
	engine, store := newTestEngine(t)

	st := inertChallenges()
	stale := progression.Challenge{
		ID: "special_stale", Name: "Stale", Reward: 250, Requirement: 40,
		Type: progression.CategoryCombined, Tier: progression.TierSpecial,
		Difficulty: progression.DifficultyHard,
	}
	expired := testDay.Add(-time.Hour)
	st.Active.Special = &stale
	st.SpecialExpiry = &expired
	st.SpecialProgress = map[string]int{"special_stale": 12}
	seedChallenges(t, store, st)

	challenges, err := engine.GetChallenges(context.Background())
	if err != nil {
		t.Fatalf("GetChallenges returned error: %v", err)
	}

	// The slot may repopulate from the selection pool, but never with the
	// expired challenge, and its progress must be gone.
	if challenges.Special != nil && challenges.Special.ID == "special_stale" {
		t.Error("expired special challenge still active")
	}
	if _, ok := challenges.SpecialProgress["special_stale"]; ok {
		t.Errorf("progress for expired challenge survived: %v", challenges.SpecialProgress)
	}
}

func TestSpecialSlotPopulatesOccasionally(t *testing.T) {
	ctx := context.Background()
	populated, empty := 0, 0

	for seed := int64(0); seed < 100; seed++ {
		store := storage.NewMemoryStateStore()
		engine := NewEngine(store, nil, EngineConfig{
			Clock: func() time.Time { return testDay },
			Seed:  seed,
		})
		seedChallenges(t, store, inertChallenges())

		challenges, err := engine.GetChallenges(ctx)
		if err != nil {
			t.Fatalf("GetChallenges(seed %d) returned error: %v", seed, err)
		}
		if challenges.Special == nil {
			empty++
			continue
		}
		populated++

		inPool := false
		for _, def := range SpecialChallenges {
			if def.ID == challenges.Special.ID {
				inPool = true
			}
		}
		if !inPool {
			t.Errorf("seed %d populated special %q, not in the selection pool", seed, challenges.Special.ID)
		}

		var after progression.ChallengeState
		if ok, err := store.Get(ctx, "challenges", &after); err != nil || !ok {
			t.Fatalf("loading challenge state (seed %d): ok=%v err=%v", seed, ok, err)
		}
		want := testDay.Add(specialSlotTTL)
		if after.SpecialExpiry == nil || !after.SpecialExpiry.Equal(want) {
			t.Errorf("seed %d special expiry = %v, want %v", seed, after.SpecialExpiry, want)
		}
	}

	if populated == 0 {
		t.Error("special slot never populated across 100 seeds")
	}
	if empty == 0 {
		t.Error("special slot populated on every seed, want an occasional slot")
	}
}

func TestGetLeaderboard(t *testing.T) {
	engine, store := newTestEngine(t)
	seedChallenges(t, store, inertChallenges())

	ctx := context.Background()
	engine.AwardPoints(ctx, progression.PointReportSubmitted, 0, nil)

	entries, err := engine.GetLeaderboard(ctx)
	if err != nil {
		t.Fatalf("GetLeaderboard returned error: %v", err)
	}

	if len(entries) != 5 {
		t.Fatalf("entries = %d, want 5", len(entries))
	}

	youCount := 0
	for i, e := range entries {
		if e.Rank != i+1 {
			t.Errorf("entry %d has rank %d, want %d", i, e.Rank, i+1)
		}
		if i > 0 && e.Points > entries[i-1].Points {
			t.Errorf("entries not sorted: %d > %d at index %d", e.Points, entries[i-1].Points, i)
		}
		if e.IsYou {
			youCount++
			if e.Points != 20 {
				t.Errorf("user points = %d, want 20", e.Points)
			}
		}
	}
	if youCount != 1 {
		t.Errorf("IsYou entries = %d, want exactly 1", youCount)
	}
}

func TestLevelForTotal(t *testing.T) {
	tests := []struct {
		total         int
		wantLevel     int
		wantNext      int
		wantProgress  int
		checkProgress bool
	}{
		{0, 1, 100, 0, true},
		{50, 1, 100, 50, true},
		{100, 2, 300, 0, true},
		{450, 3, 600, 50, true},
		{9999, 9, 10000, 0, false},
		{10000, 10, 0, 100, true},
		{50000, 10, 0, 100, true},
	}

	for _, tt := range tests {
		got := LevelForTotal(tt.total)
		if got.Current != tt.wantLevel {
			t.Errorf("LevelForTotal(%d).Current = %d, want %d", tt.total, got.Current, tt.wantLevel)
		}
		if got.NextThreshold != tt.wantNext {
			t.Errorf("LevelForTotal(%d).NextThreshold = %d, want %d", tt.total, got.NextThreshold, tt.wantNext)
		}
		if tt.checkProgress && got.Progress != tt.wantProgress {
			t.Errorf("LevelForTotal(%d).Progress = %d, want %d", tt.total, got.Progress, tt.wantProgress)
		}
		if got.Progress < 0 || got.Progress > 100 {
			t.Errorf("LevelForTotal(%d).Progress = %d, out of bounds", tt.total, got.Progress)
		}
		if got.Title == "" {
			t.Errorf("LevelForTotal(%d).Title is empty", tt.total)
		}
	}
}

func TestGetBadgeProgressMergesStats(t *testing.T) {
	engine, store := newTestEngine(t)
	seedChallenges(t, store, inertChallenges())

	ctx := context.Background()
	engine.AwardPoints(ctx, progression.PointBotDetected, 0, nil)
	engine.AwardPoints(ctx, progression.PointBotDetected, 0, nil)
	engine.AwardPoints(ctx, progression.PointMisinfoFlagged, 0, nil)

	progress, err := engine.GetBadgeProgress(ctx)
	if err != nil {
		t.Fatalf("GetBadgeProgress returned error: %v", err)
	}

	if progress.Progress[progression.CategoryBotDetection] != 2 {
		t.Errorf("bot detection progress = %d, want 2", progress.Progress[progression.CategoryBotDetection])
	}
	if progress.Progress[progression.CategoryMisinfoFlagged] != 1 {
		t.Errorf("misinfo progress = %d, want 1", progress.Progress[progression.CategoryMisinfoFlagged])
	}
}

func TestSubmitReport(t *testing.T) {
	engine, store := newTestEngine(t)
	seedChallenges(t, store, inertChallenges())

	ctx := context.Background()
	result, err := engine.SubmitReport(ctx, "https://example.com/misleading", "Misleading article")
	if err != nil {
		t.Fatalf("SubmitReport returned error: %v", err)
	}

	if result.PointsAwarded != 20 {
		t.Errorf("PointsAwarded = %d, want 20", result.PointsAwarded)
	}

	reports, err := store.ListReports(ctx, 10)
	if err != nil {
		t.Fatalf("ListReports returned error: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("reports = %d, want 1", len(reports))
	}
	if reports[0].URL != "https://example.com/misleading" {
		t.Errorf("report URL = %q", reports[0].URL)
	}
	if reports[0].ID == "" {
		t.Error("report ID is empty")
	}
}
