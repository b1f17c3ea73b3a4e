// internal/service/progression/leaderboard.go

package progression

import (
	"context"
	"sort"

	"octopal/internal/domain/progression"
)

// rival is a synthetic leaderboard competitor. Points are randomized per call
// within a fixed band above the base.
type rival struct {
	name string
	base int
}

var rivals = []rival{
	{"Bot Buster", 800},
	{"Truth Seeker", 600},
	{"Fact Checker", 400},
	{"Info Guardian", 200},
}

// rivalSpread is the randomized band added to each rival's base score.
const rivalSpread = 200

// GetLeaderboard builds the local leaderboard: the user's real total plus
// synthetic competitors, sorted by points descending with contiguous ranks.
func (e *Engine) GetLeaderboard(ctx context.Context) ([]progression.LeaderboardEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, err := e.load(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]progression.LeaderboardEntry, 0, len(rivals)+1)
	for _, r := range rivals {
		entries = append(entries, progression.LeaderboardEntry{
			Name:   r.name,
			Points: r.base + e.rng.Intn(rivalSpread),
		})
	}
	entries = append(entries, progression.LeaderboardEntry{
		Name:   "You",
		Points: st.Points.Total,
		IsYou:  true,
	})

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Points > entries[j].Points
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return entries, nil
}
