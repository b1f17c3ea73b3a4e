// internal/service/progression/definitions_test.go

package progression

import (
	"testing"
	"time"

	"octopal/internal/domain/progression"
)

func TestPointValuesCoverAllKinds(t *testing.T) {
	kinds := []progression.PointKind{
		progression.PointBotDetected,
		progression.PointReportSubmitted,
		progression.PointMisinfoFlagged,
		progression.PointSourceValidated,
		progression.PointPassiveVoiceDetected,
		progression.PointLowCredibilitySource,
		progression.PointConsecutiveDaysBonus,
		progression.PointChallengeCompleted,
		progression.PointBadgeEarned,
		progression.PointSharedResult,
	}

	for _, kind := range kinds {
		if v, ok := PointValues[kind]; !ok || v <= 0 {
			t.Errorf("PointValues[%s] = %d, %v; want positive value", kind, v, ok)
		}
	}
}

func TestDifficultyMultiplier(t *testing.T) {
	tests := []struct {
		difficulty progression.Difficulty
		want       float64
	}{
		{progression.DifficultyEasy, 1.0},
		{progression.DifficultyMedium, 1.5},
		{progression.DifficultyHard, 2.0},
		{progression.DifficultyExpert, 3.0},
	}

	for _, tt := range tests {
		if got := tt.difficulty.Multiplier(); got != tt.want {
			t.Errorf("%s multiplier = %v, want %v", tt.difficulty, got, tt.want)
		}
	}
}

func TestLevelsAreOrderedAndUnique(t *testing.T) {
	for i := 1; i < len(Levels); i++ {
		if Levels[i].Threshold <= Levels[i-1].Threshold {
			t.Errorf("level %d threshold %d not above previous %d", Levels[i].Level, Levels[i].Threshold, Levels[i-1].Threshold)
		}
		if Levels[i].Level != Levels[i-1].Level+1 {
			t.Errorf("level numbering gap at index %d", i)
		}
	}
	if Levels[0].Threshold != 0 {
		t.Errorf("first level threshold = %d, want 0", Levels[0].Threshold)
	}
}

func TestBadgeDefinitionsAreWellFormed(t *testing.T) {
	seen := make(map[string]bool)
	for _, b := range Badges {
		if b.ID == "" || b.Name == "" {
			t.Errorf("badge %+v missing id or name", b)
		}
		if seen[b.ID] {
			t.Errorf("duplicate badge id %q", b.ID)
		}
		seen[b.ID] = true
		if b.Requirement <= 0 {
			t.Errorf("badge %s requirement = %d, want positive", b.ID, b.Requirement)
		}
	}
}

func TestWeekStartIsSunday(t *testing.T) {
	tests := []struct {
		name string
		day  time.Time
		want string
	}{
		{"sunday", time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC), "2025-06-15"},
		{"wednesday", time.Date(2025, time.June, 18, 10, 0, 0, 0, time.UTC), "2025-06-15"},
		{"saturday", time.Date(2025, time.June, 21, 23, 0, 0, 0, time.UTC), "2025-06-15"},
		{"next sunday", time.Date(2025, time.June, 22, 0, 0, 0, 0, time.UTC), "2025-06-22"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := weekStartOf(tt.day); got != tt.want {
				t.Errorf("weekStartOf(%s) = %s, want %s", tt.day.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}
