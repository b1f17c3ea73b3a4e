// internal/service/progression/engine.go

package progression

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"octopal/internal/domain/progression"
	"octopal/internal/metrics"
)

// ChallengeReusePolicy decides whether a completed challenge id can ever pay
// out again.
type ChallengeReusePolicy string

const (
	// ReuseNever keeps the permanent-history semantics: an id in the
	// completion history never pays out again, even after its slot cycles
	// back to it.
	ReuseNever ChallengeReusePolicy = "never"

	// ReusePerPeriod scopes completions to the current reset period, so a
	// reselected challenge is payable again after its slot rolls over.
	ReusePerPeriod ChallengeReusePolicy = "per_period"
)

// maxEffectDepth bounds the event cascade (award -> badge -> bonus award ...)
// so a future event type cannot loop the dispatcher.
const maxEffectDepth = 8

// specialSlotChance is the probability of populating an empty special slot.
const specialSlotChance = 0.2

// specialSlotTTL expires a special challenge after selection.
const specialSlotTTL = 7 * 24 * time.Hour

// streakBonusCap limits the challenge streak multiplier.
const streakBonusCap = 1.5

// StateStore persists the progression records. Implementations must make
// SetAll atomic across the affected keys.
type StateStore interface {
	Get(ctx context.Context, key string, v any) (bool, error)
	SetAll(ctx context.Context, records map[string]any) error
	AppendReport(ctx context.Context, r progression.Report) error
}

// Storage keys, one per persisted record.
const (
	keyUserStats  = "userStats"
	keyPoints     = "points"
	keyBadges     = "badges"
	keyChallenges = "challenges"
	keyLevel      = "level"
)

// EngineConfig contains configuration for the progression engine
type EngineConfig struct {
	EventsTopic string
	ReusePolicy ChallengeReusePolicy
	Clock       func() time.Time
	Seed        int64
}

// Engine implements progression.Engine as a single-writer reducer over the
// persisted state records. Every operation reads the full state, computes in
// memory, and writes back once.
type Engine struct {
	store    StateStore
	eventBus *nats.Conn
	config   EngineConfig
	mu       sync.Mutex
	rng      *rand.Rand
}

// state is the full in-memory working copy of the persisted records.
type state struct {
	Stats      progression.UserStats
	Points     progression.PointsLedger
	Badges     progression.BadgeState
	Challenges progression.ChallengeState
	Level      progression.LevelState
}

// notification is one outbound event published after a successful write.
type notification struct {
	subject string
	payload any
}

// NewEngine creates a new progression engine. eventBus may be nil, in which
// case notifications are dropped.
func NewEngine(store StateStore, eventBus *nats.Conn, config EngineConfig) *Engine {
	if config.Clock == nil {
		config.Clock = time.Now
	}
	if config.ReusePolicy == "" {
		config.ReusePolicy = ReuseNever
	}
	if config.EventsTopic == "" {
		config.EventsTopic = "progression"
	}
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Engine{
		store:    store,
		eventBus: eventBus,
		config:   config,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// dateOf formats a calendar date the way the stored records expect.
func dateOf(t time.Time) string {
	return t.Format("2006-01-02")
}

// weekStartOf returns the date of the Sunday beginning t's week.
func weekStartOf(t time.Time) string {
	return dateOf(t.AddDate(0, 0, -int(t.Weekday())))
}

// load reads every record, substituting install defaults for missing keys.
func (e *Engine) load(ctx context.Context) (*state, error) {
	now := e.config.Clock()
	st := &state{
		Stats: progression.UserStats{
			LastActiveDate:  dateOf(now),
			ConsecutiveDays: 1,
		},
		Points: progression.PointsLedger{LastUpdated: now},
		Badges: progression.BadgeState{Progress: make(map[progression.Category]int)},
		Challenges: progression.ChallengeState{
			DailyProgress:   make(map[string]int),
			WeeklyProgress:  make(map[string]int),
			SpecialProgress: make(map[string]int),
			LastDailyReset:  dateOf(now),
			LastWeeklyReset: weekStartOf(now),
		},
		Level: LevelForTotal(0),
	}

	if _, err := e.store.Get(ctx, keyUserStats, &st.Stats); err != nil {
		return nil, fmt.Errorf("loading user stats: %w", err)
	}
	if _, err := e.store.Get(ctx, keyPoints, &st.Points); err != nil {
		return nil, fmt.Errorf("loading points: %w", err)
	}
	if _, err := e.store.Get(ctx, keyBadges, &st.Badges); err != nil {
		return nil, fmt.Errorf("loading badges: %w", err)
	}
	found, err := e.store.Get(ctx, keyChallenges, &st.Challenges)
	if err != nil {
		return nil, fmt.Errorf("loading challenges: %w", err)
	}
	if _, err := e.store.Get(ctx, keyLevel, &st.Level); err != nil {
		return nil, fmt.Errorf("loading level: %w", err)
	}

	if st.Badges.Progress == nil {
		st.Badges.Progress = make(map[progression.Category]int)
	}
	if st.Challenges.DailyProgress == nil {
		st.Challenges.DailyProgress = make(map[string]int)
	}
	if st.Challenges.WeeklyProgress == nil {
		st.Challenges.WeeklyProgress = make(map[string]int)
	}
	if st.Challenges.SpecialProgress == nil {
		st.Challenges.SpecialProgress = make(map[string]int)
	}

	// First run: populate the active slots.
	if !found || (st.Challenges.Active.Daily == nil && st.Challenges.Active.Weekly == nil) {
		st.Challenges.Active.Daily = e.selectDaily("")
		st.Challenges.Active.Weekly = e.selectWeekly("")
	}

	return st, nil
}

// save writes the full state back in one atomic batch.
func (e *Engine) save(ctx context.Context, st *state) error {
	return e.store.SetAll(ctx, map[string]any{
		keyUserStats:  st.Stats,
		keyPoints:     st.Points,
		keyBadges:     st.Badges,
		keyChallenges: st.Challenges,
		keyLevel:      st.Level,
	})
}

// publish sends queued notifications. Best effort: failures are logged only.
func (e *Engine) publish(notes []notification) {
	if e.eventBus == nil {
		return
	}
	for _, n := range notes {
		data, err := json.Marshal(n.payload)
		if err != nil {
			log.Printf("Failed to marshal %s notification: %v", n.subject, err)
			continue
		}
		if err := e.eventBus.Publish(e.config.EventsTopic+"."+n.subject, data); err != nil {
			log.Printf("Failed to publish %s notification: %v", n.subject, err)
			metrics.NatsMessagesPublished.WithLabelValues(n.subject, "error").Inc()
			continue
		}
		metrics.NatsMessagesPublished.WithLabelValues(n.subject, "success").Inc()
	}
}

// effect is one queued point award inside an operation.
type effect struct {
	kind    progression.PointKind
	amount  int
	details map[string]any
}

// applyEffects drains the effect queue, collecting notifications. Each pass
// may enqueue follow-up effects (badge bonuses, challenge rewards); the depth
// guard stops a runaway cascade.
func (e *Engine) applyEffects(st *state, queue []effect) (int, []notification, error) {
	totalAwarded := 0
	var notes []notification

	for depth := 0; len(queue) > 0; depth++ {
		if depth >= maxEffectDepth {
			return totalAwarded, notes, fmt.Errorf("effect cascade exceeded depth %d", maxEffectDepth)
		}

		current := queue
		queue = nil
		for _, ef := range current {
			awarded, followups, efNotes, err := e.applyAward(st, ef)
			if err != nil {
				return totalAwarded, notes, err
			}
			totalAwarded += awarded
			queue = append(queue, followups...)
			notes = append(notes, efNotes...)
		}
	}

	return totalAwarded, notes, nil
}

// applyAward applies one point award: ledger append, stats counter, badge and
// challenge progress, level recompute. Returns any follow-up effects.
func (e *Engine) applyAward(st *state, ef effect) (int, []effect, []notification, error) {
	base, ok := PointValues[ef.kind]
	if !ok {
		return 0, nil, nil, progression.ErrInvalidPointType
	}

	amount := ef.amount
	if amount == 0 {
		amount = base
	}

	now := e.config.Clock()
	st.Points.History = append(st.Points.History, progression.PointEntry{
		Kind:      ef.kind,
		Amount:    amount,
		Timestamp: now,
		Details:   ef.details,
	})
	st.Points.Total += amount
	st.Points.LastUpdated = now

	var followups []effect
	var notes []notification

	// Advance the stats counter and the matching badge/challenge categories.
	if category, ok := statsCategory[ef.kind]; ok {
		switch ef.kind {
		case progression.PointBotDetected:
			st.Stats.BotsDetected++
		case progression.PointMisinfoFlagged:
			st.Stats.MisinfoFlagged++
		case progression.PointSourceValidated:
			st.Stats.SourcesValidated++
		case progression.PointPassiveVoiceDetected:
			st.Stats.PassiveDetected++
		case progression.PointLowCredibilitySource:
			st.Stats.LowCredibilitySrcs++
		case progression.PointReportSubmitted:
			st.Stats.ReportsSubmitted++
		}

		badgeFollowups, badgeNotes := e.advanceBadges(st, category, 0)
		followups = append(followups, badgeFollowups...)
		notes = append(notes, badgeNotes...)

		challengeFollowups, challengeNotes, _ := e.advanceChallenges(st, category, 1)
		followups = append(followups, challengeFollowups...)
		notes = append(notes, challengeNotes...)
	}

	// Recompute the level and detect a level-up.
	oldLevel := st.Level.Current
	st.Level = LevelForTotal(st.Points.Total)
	if st.Level.Current > oldLevel {
		notes = append(notes, notification{subject: "level", payload: map[string]any{
			"oldLevel": oldLevel,
			"newLevel": st.Level.Current,
			"title":    st.Level.Title,
		}})
	}

	notes = append(notes, notification{subject: "points", payload: map[string]any{
		"totalPoints":   st.Points.Total,
		"pointsAwarded": amount,
		"reason":        ef.kind,
	}})

	return amount, followups, notes, nil
}

// advanceBadges increments (or, with explicit > 0, sets) the category counter
// and earns every eligible badge. Newly earned badges produce one batched
// bonus award.
func (e *Engine) advanceBadges(st *state, category progression.Category, explicit int) ([]effect, []notification) {
	if explicit > 0 {
		st.Badges.Progress[category] = explicit
	} else {
		st.Badges.Progress[category]++
	}

	var newBadges []progression.EarnedBadge
	var notes []notification
	now := e.config.Clock()

	for _, badge := range Badges {
		if badge.Type != category {
			continue
		}
		if st.Badges.Progress[category] < badge.Requirement {
			continue
		}
		if hasBadge(st.Badges.Earned, badge.ID) {
			continue
		}
		earned := progression.EarnedBadge{Badge: badge, EarnedDate: now}
		st.Badges.Earned = append(st.Badges.Earned, earned)
		newBadges = append(newBadges, earned)
		notes = append(notes, notification{subject: "badge", payload: earned})
		metrics.BadgesEarned.Inc()
	}

	if len(newBadges) == 0 {
		return nil, notes
	}

	ids := make([]string, len(newBadges))
	for i, b := range newBadges {
		ids[i] = b.ID
	}
	bonus := effect{
		kind:    progression.PointBadgeEarned,
		amount:  len(newBadges) * badgePointBonus,
		details: map[string]any{"badges": ids},
	}
	return []effect{bonus}, notes
}

func hasBadge(earned []progression.EarnedBadge, id string) bool {
	for _, b := range earned {
		if b.ID == id {
			return true
		}
	}
	return false
}

// advanceChallenges accumulates progress toward every active slot whose type
// matches the category (or is the combined wildcard). Completions enqueue the
// reward award and rotate the slot.
func (e *Engine) advanceChallenges(st *state, category progression.Category, amount int) ([]effect, []notification, []progression.Challenge) {
	var completed []progression.Challenge
	var notes []notification
	totalReward := 0

	tiers := []struct {
		tier     progression.Tier
		active   **progression.Challenge
		progress map[string]int
	}{
		{progression.TierDaily, &st.Challenges.Active.Daily, st.Challenges.DailyProgress},
		{progression.TierWeekly, &st.Challenges.Active.Weekly, st.Challenges.WeeklyProgress},
		{progression.TierSpecial, &st.Challenges.Active.Special, st.Challenges.SpecialProgress},
	}

	for _, slot := range tiers {
		ch := *slot.active
		if ch == nil {
			continue
		}
		if ch.Type != category && ch.Type != progression.CategoryCombined {
			continue
		}

		slot.progress[ch.ID] += amount
		if slot.progress[ch.ID] < ch.Requirement {
			continue
		}
		if !e.challengePayable(st, ch.ID, slot.tier) {
			continue
		}

		reward := e.challengeReward(st, *ch)
		totalReward += reward
		completed = append(completed, *ch)

		st.Challenges.History = append(st.Challenges.History, ch.ID)
		if st.Challenges.PeriodCompleted == nil {
			st.Challenges.PeriodCompleted = make(map[progression.Tier][]string)
		}
		st.Challenges.PeriodCompleted[slot.tier] = append(st.Challenges.PeriodCompleted[slot.tier], ch.ID)

		now := e.config.Clock()
		switch slot.tier {
		case progression.TierDaily:
			st.Challenges.Streaks.Daily++
			st.Challenges.Streaks.LastDailyDone = &now
			st.Challenges.Active.Daily = e.selectDaily(ch.ID)
			clearMap(st.Challenges.DailyProgress)
		case progression.TierWeekly:
			st.Challenges.Streaks.Weekly++
			st.Challenges.Streaks.LastWeeklyDone = &now
			st.Challenges.Active.Weekly = e.selectWeekly(ch.ID)
			clearMap(st.Challenges.WeeklyProgress)
		case progression.TierSpecial:
			st.Challenges.Active.Special = nil
			st.Challenges.SpecialExpiry = nil
			clearMap(st.Challenges.SpecialProgress)
		}

		notes = append(notes, notification{subject: "challenge", payload: map[string]any{
			"id":     ch.ID,
			"name":   ch.Name,
			"reward": reward,
		}})
	}

	if len(completed) == 0 {
		return nil, notes, nil
	}

	// Any completion this pass advances the challenges-completed badge once.
	badgeFollowups, badgeNotes := e.advanceBadges(st, progression.CategoryChallengesCompleted, 0)
	notes = append(notes, badgeNotes...)

	ids := make([]string, len(completed))
	for i, c := range completed {
		ids[i] = c.ID
	}
	followups := append([]effect{{
		kind:    progression.PointChallengeCompleted,
		amount:  totalReward,
		details: map[string]any{"challenges": ids},
	}}, badgeFollowups...)

	return followups, notes, completed
}

// challengePayable applies the reuse policy.
func (e *Engine) challengePayable(st *state, id string, tier progression.Tier) bool {
	switch e.config.ReusePolicy {
	case ReusePerPeriod:
		for _, done := range st.Challenges.PeriodCompleted[tier] {
			if done == id {
				return false
			}
		}
		return true
	default:
		for _, done := range st.Challenges.History {
			if done == id {
				return false
			}
		}
		return true
	}
}

// challengeReward computes round(base * difficulty * streakBonus). The streak
// bonus applies to the daily and weekly tiers only.
func (e *Engine) challengeReward(st *state, ch progression.Challenge) int {
	bonus := 1.0
	switch ch.Tier {
	case progression.TierDaily:
		bonus = math.Min(1+0.1*float64(st.Challenges.Streaks.Daily), streakBonusCap)
	case progression.TierWeekly:
		bonus = math.Min(1+0.1*float64(st.Challenges.Streaks.Weekly), streakBonusCap)
	}
	return int(math.Round(float64(ch.Reward) * ch.Difficulty.Multiplier() * bonus))
}

// selectDaily picks a fresh daily challenge, excluding the one just completed.
// Selection is weighted 4:2:1 easy:medium:hard; expert is never selected.
func (e *Engine) selectDaily(excludeID string) *progression.Challenge {
	var pool []progression.Challenge
	var weights []int
	for _, ch := range DailyChallenges {
		if ch.ID == excludeID || ch.Difficulty == progression.DifficultyExpert {
			continue
		}
		w := 1
		switch ch.Difficulty {
		case progression.DifficultyEasy:
			w = 4
		case progression.DifficultyMedium:
			w = 2
		}
		pool = append(pool, ch)
		weights = append(weights, w)
	}
	if len(pool) == 0 {
		return nil
	}

	total := 0
	for _, w := range weights {
		total += w
	}
	pick := e.rng.Intn(total)
	for i, w := range weights {
		if pick < w {
			ch := pool[i]
			return &ch
		}
		pick -= w
	}
	ch := pool[len(pool)-1]
	return &ch
}

// selectWeekly picks a fresh weekly challenge uniformly at random.
func (e *Engine) selectWeekly(excludeID string) *progression.Challenge {
	return pickUniform(e.rng, WeeklyChallenges, excludeID)
}

// selectSpecial picks a special challenge uniformly at random.
func (e *Engine) selectSpecial(excludeID string) *progression.Challenge {
	return pickUniform(e.rng, SpecialChallenges, excludeID)
}

func pickUniform(rng *rand.Rand, defs []progression.Challenge, excludeID string) *progression.Challenge {
	var pool []progression.Challenge
	for _, ch := range defs {
		if ch.ID != excludeID {
			pool = append(pool, ch)
		}
	}
	if len(pool) == 0 {
		return nil
	}
	ch := pool[rng.Intn(len(pool))]
	return &ch
}

func clearMap(m map[string]int) {
	for k := range m {
		delete(m, k)
	}
}

// rollover applies daily and weekly resets plus special-slot maintenance.
func (e *Engine) rollover(st *state) {
	now := e.config.Clock()
	today := dateOf(now)

	if st.Challenges.LastDailyReset != today {
		// Break the daily streak unless yesterday's challenge was completed.
		yesterday := dateOf(now.AddDate(0, 0, -1))
		done := st.Challenges.Streaks.LastDailyDone
		if done == nil || (dateOf(*done) != yesterday && dateOf(*done) != today) {
			st.Challenges.Streaks.Daily = 0
		}

		prev := ""
		if st.Challenges.Active.Daily != nil {
			prev = st.Challenges.Active.Daily.ID
		}
		st.Challenges.Active.Daily = e.selectDaily(prev)
		clearMap(st.Challenges.DailyProgress)
		delete(st.Challenges.PeriodCompleted, progression.TierDaily)
		st.Challenges.LastDailyReset = today
	}

	weekStart := weekStartOf(now)
	if st.Challenges.LastWeeklyReset != weekStart {
		lastWeekStart := weekStartOf(now.AddDate(0, 0, -7))
		done := st.Challenges.Streaks.LastWeeklyDone
		if done == nil || weekStartOf(*done) != lastWeekStart {
			st.Challenges.Streaks.Weekly = 0
		}

		prev := ""
		if st.Challenges.Active.Weekly != nil {
			prev = st.Challenges.Active.Weekly.ID
		}
		st.Challenges.Active.Weekly = e.selectWeekly(prev)
		clearMap(st.Challenges.WeeklyProgress)
		delete(st.Challenges.PeriodCompleted, progression.TierWeekly)
		st.Challenges.LastWeeklyReset = weekStart
	}

	// Expire a stale special challenge; checked lazily on read.
	if st.Challenges.Active.Special != nil && st.Challenges.SpecialExpiry != nil && now.After(*st.Challenges.SpecialExpiry) {
		st.Challenges.Active.Special = nil
		st.Challenges.SpecialExpiry = nil
		clearMap(st.Challenges.SpecialProgress)
		delete(st.Challenges.PeriodCompleted, progression.TierSpecial)
	}

	// Occasionally populate an empty special slot.
	if st.Challenges.Active.Special == nil && e.rng.Float64() < specialSlotChance {
		st.Challenges.Active.Special = e.selectSpecial("")
		expiry := now.Add(specialSlotTTL)
		st.Challenges.SpecialExpiry = &expiry
	}
}

// touchActivity applies consecutive-day tracking. A one-day gap increments the
// streak and enqueues the per-day bonus; the bonus award never re-enters this
// path, which keeps the cascade finite.
func (e *Engine) touchActivity(st *state) []effect {
	now := e.config.Clock()
	today := dateOf(now)
	if st.Stats.LastActiveDate == today {
		return nil
	}

	var effects []effect
	yesterday := dateOf(now.AddDate(0, 0, -1))
	if st.Stats.LastActiveDate == yesterday {
		st.Stats.ConsecutiveDays++
		effects = append(effects, effect{
			kind:    progression.PointConsecutiveDaysBonus,
			details: map[string]any{"days": st.Stats.ConsecutiveDays},
		})
		if st.Stats.ConsecutiveDays >= 7 {
			badgeFollowups, _ := e.advanceBadges(st, progression.CategoryDailyUsage, st.Stats.ConsecutiveDays)
			effects = append(effects, badgeFollowups...)
		}
	} else {
		st.Stats.ConsecutiveDays = 1
	}
	st.Stats.LastActiveDate = today

	return effects
}

// SubmitReport records a content report and awards report points.
func (e *Engine) SubmitReport(ctx context.Context, url, title string) (progression.ReportResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, err := e.load(ctx)
	if err != nil {
		return progression.ReportResult{}, err
	}

	e.rollover(st)
	queue := e.touchActivity(st)
	queue = append(queue, effect{
		kind:    progression.PointReportSubmitted,
		details: map[string]any{"url": url},
	})

	_, notes, err := e.applyEffects(st, queue)
	if err != nil {
		return progression.ReportResult{}, err
	}

	report := progression.Report{
		ID:        uuid.New().String(),
		URL:       url,
		Title:     title,
		Timestamp: e.config.Clock(),
	}
	if err := e.store.AppendReport(ctx, report); err != nil {
		return progression.ReportResult{}, fmt.Errorf("saving report: %w", err)
	}
	if err := e.save(ctx, st); err != nil {
		return progression.ReportResult{}, err
	}
	e.publish(notes)

	return progression.ReportResult{
		PointsAwarded: PointValues[progression.PointReportSubmitted],
		TotalPoints:   st.Points.Total,
	}, nil
}

// AwardPoints applies a point award of the given kind. Unknown kinds are
// rejected before any state is read or mutated.
func (e *Engine) AwardPoints(ctx context.Context, kind progression.PointKind, amount int, details map[string]any) (progression.AwardResult, error) {
	if _, ok := PointValues[kind]; !ok {
		return progression.AwardResult{}, progression.ErrInvalidPointType
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	st, err := e.load(ctx)
	if err != nil {
		return progression.AwardResult{}, err
	}

	e.rollover(st)
	queue := []effect{{kind: kind, amount: amount, details: details}}

	awarded := amount
	if awarded == 0 {
		awarded = PointValues[kind]
	}

	_, notes, err := e.applyEffects(st, queue)
	if err != nil {
		return progression.AwardResult{}, err
	}

	if err := e.save(ctx, st); err != nil {
		return progression.AwardResult{}, err
	}
	e.publish(notes)

	return progression.AwardResult{
		PointsAwarded: awarded,
		TotalPoints:   st.Points.Total,
		UserStats:     st.Stats,
	}, nil
}

// GetUserStats returns the combined state, applying rollover and consecutive-
// day tracking first.
func (e *Engine) GetUserStats(ctx context.Context) (progression.StatsResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, err := e.load(ctx)
	if err != nil {
		return progression.StatsResult{}, err
	}

	e.rollover(st)
	queue := e.touchActivity(st)
	_, notes, err := e.applyEffects(st, queue)
	if err != nil {
		return progression.StatsResult{}, err
	}

	if err := e.save(ctx, st); err != nil {
		return progression.StatsResult{}, err
	}
	e.publish(notes)

	return progression.StatsResult{
		UserStats:  st.Stats,
		Points:     st.Points,
		Level:      st.Level,
		Badges:     st.Badges,
		Challenges: st.Challenges,
	}, nil
}

// GetBadges returns earned badges and all definitions.
func (e *Engine) GetBadges(ctx context.Context) (progression.BadgesResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, err := e.load(ctx)
	if err != nil {
		return progression.BadgesResult{}, err
	}

	earned := st.Badges.Earned
	if earned == nil {
		earned = []progression.EarnedBadge{}
	}
	return progression.BadgesResult{Earned: earned, All: Badges}, nil
}

// GetBadgeProgress returns per-category counters merged with the stats
// counters, plus earned dates.
func (e *Engine) GetBadgeProgress(ctx context.Context) (progression.BadgeProgressResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, err := e.load(ctx)
	if err != nil {
		return progression.BadgeProgressResult{}, err
	}

	progress := make(map[progression.Category]int, len(st.Badges.Progress))
	for k, v := range st.Badges.Progress {
		progress[k] = v
	}
	// Stats counters are authoritative for their categories.
	if st.Stats.BotsDetected > 0 {
		progress[progression.CategoryBotDetection] = st.Stats.BotsDetected
	}
	if st.Stats.MisinfoFlagged > 0 {
		progress[progression.CategoryMisinfoFlagged] = st.Stats.MisinfoFlagged
	}
	if st.Stats.SourcesValidated > 0 {
		progress[progression.CategorySourceValidation] = st.Stats.SourcesValidated
	}
	if st.Stats.PassiveDetected > 0 {
		progress[progression.CategoryPassiveDetected] = st.Stats.PassiveDetected
	}
	if st.Stats.LowCredibilitySrcs > 0 {
		progress[progression.CategoryLowCredibility] = st.Stats.LowCredibilitySrcs
	}
	if st.Stats.ReportsSubmitted > 0 {
		progress[progression.CategoryReportSubmitted] = st.Stats.ReportsSubmitted
	}
	if st.Stats.ConsecutiveDays > 0 {
		progress[progression.CategoryDailyUsage] = st.Stats.ConsecutiveDays
	}

	dates := make(map[string]string, len(st.Badges.Earned))
	for _, b := range st.Badges.Earned {
		dates[b.ID] = b.EarnedDate.Format(time.RFC3339)
	}

	return progression.BadgeProgressResult{Progress: progress, EarnedDates: dates}, nil
}

// GetChallenges returns the active slots, applying rollover first.
func (e *Engine) GetChallenges(ctx context.Context) (progression.ChallengesResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, err := e.load(ctx)
	if err != nil {
		return progression.ChallengesResult{}, err
	}

	e.rollover(st)
	if err := e.save(ctx, st); err != nil {
		return progression.ChallengesResult{}, err
	}

	return progression.ChallengesResult{
		Daily:           st.Challenges.Active.Daily,
		Weekly:          st.Challenges.Active.Weekly,
		Special:         st.Challenges.Active.Special,
		DailyProgress:   st.Challenges.DailyProgress,
		WeeklyProgress:  st.Challenges.WeeklyProgress,
		SpecialProgress: st.Challenges.SpecialProgress,
		Streaks:         st.Challenges.Streaks,
	}, nil
}

// UpdateChallengeProgress accumulates progress toward the matching active
// challenges and pays out completions.
func (e *Engine) UpdateChallengeProgress(ctx context.Context, category progression.Category, amount int) (progression.ChallengeUpdateResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, err := e.load(ctx)
	if err != nil {
		return progression.ChallengeUpdateResult{}, err
	}

	e.rollover(st)
	followups, notes, completed := e.advanceChallenges(st, category, amount)

	pointsAwarded := 0
	for _, ef := range followups {
		if ef.kind == progression.PointChallengeCompleted {
			pointsAwarded += ef.amount
		}
	}

	_, moreNotes, err := e.applyEffects(st, followups)
	if err != nil {
		return progression.ChallengeUpdateResult{}, err
	}
	notes = append(notes, moreNotes...)

	if err := e.save(ctx, st); err != nil {
		return progression.ChallengeUpdateResult{}, err
	}
	e.publish(notes)

	if completed == nil {
		completed = []progression.Challenge{}
	}
	return progression.ChallengeUpdateResult{
		Completed:     completed,
		PointsAwarded: pointsAwarded,
	}, nil
}

// GetLevelDetails returns the current level and the full threshold table.
func (e *Engine) GetLevelDetails(ctx context.Context) (progression.LevelResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, err := e.load(ctx)
	if err != nil {
		return progression.LevelResult{}, err
	}

	return progression.LevelResult{
		Level:  LevelForTotal(st.Points.Total),
		Points: st.Points.Total,
		All:    Levels,
	}, nil
}

// Verify Engine implements the domain interface at compile time.
var _ progression.Engine = (*Engine)(nil)
