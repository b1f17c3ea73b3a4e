// internal/service/progression/definitions.go

package progression

import (
	"octopal/internal/domain/progression"
)

// PointValues is the fixed base amount per point kind. Unknown kinds are
// rejected without touching state.
var PointValues = map[progression.PointKind]int{
	progression.PointBotDetected:          10,
	progression.PointReportSubmitted:      20,
	progression.PointMisinfoFlagged:       15,
	progression.PointSourceValidated:      5,
	progression.PointPassiveVoiceDetected: 5,
	progression.PointLowCredibilitySource: 5,
	progression.PointConsecutiveDaysBonus: 10,
	progression.PointChallengeCompleted:   50,
	progression.PointBadgeEarned:          50,
	progression.PointSharedResult:         15,
}

// badgePointBonus is awarded per newly earned badge.
const badgePointBonus = 50

// Badges is the full badge definition table.
var Badges = []progression.Badge{
	{ID: "bot_buster", Name: "Bot Buster", Description: "Detect 10 bot accounts", Icon: "🤖", Requirement: 10, Type: progression.CategoryBotDetection},
	{ID: "spam_slayer", Name: "Spam Slayer", Description: "Identify 10 accounts with high spamming behavior", Icon: "🗑️", Requirement: 10, Type: progression.CategorySpamDetection},
	{ID: "truth_seeker", Name: "Truth Seeker", Description: "Flag 20 pieces of misinformation", Icon: "🔍", Requirement: 20, Type: progression.CategoryMisinfoFlagged},
	{ID: "source_master", Name: "Source Master", Description: "Validate 15 pieces of content with reliable sources", Icon: "📚", Requirement: 15, Type: progression.CategorySourceValidation},
	{ID: "daily_detective", Name: "Daily Detective", Description: "Stay active for 7 consecutive days", Icon: "📅", Requirement: 7, Type: progression.CategoryDailyUsage},
	{ID: "consistency_king", Name: "Consistency King", Description: "Stay active for 30 consecutive days", Icon: "👑", Requirement: 30, Type: progression.CategoryDailyUsage},
	{ID: "challenge_champion", Name: "Challenge Champion", Description: "Complete 5 daily challenges", Icon: "🏆", Requirement: 5, Type: progression.CategoryChallengesCompleted},
	{ID: "passive_detector", Name: "Passive Voice Detector", Description: "Detect 20 instances of passive voice", Icon: "💬", Requirement: 20, Type: progression.CategoryPassiveDetected},
	{ID: "source_critic", Name: "Source Critic", Description: "Identify 15 low-credibility sources", Icon: "⚠️", Requirement: 15, Type: progression.CategoryLowCredibility},
}

// DailyChallenges is the selection pool for the daily slot.
var DailyChallenges = []progression.Challenge{
	{ID: "daily_bot_hunting", Name: "Bot Hunting", Description: "Detect 5 potential bot accounts today", Reward: 50, Requirement: 5, Type: progression.CategoryBotDetection, Tier: progression.TierDaily, Difficulty: progression.DifficultyEasy},
	{ID: "daily_misinfo_flagging", Name: "Misinformation Patrol", Description: "Flag 5 pieces of potential misinformation today", Reward: 50, Requirement: 5, Type: progression.CategoryMisinfoFlagged, Tier: progression.TierDaily, Difficulty: progression.DifficultyEasy},
	{ID: "daily_source_checking", Name: "Source Check", Description: "Check 5 sources for credibility today", Reward: 50, Requirement: 5, Type: progression.CategorySourceValidation, Tier: progression.TierDaily, Difficulty: progression.DifficultyEasy},
	{ID: "daily_passive_hunting", Name: "Passive Voice Hunter", Description: "Find 5 examples of passive voice hiding responsibility", Reward: 50, Requirement: 5, Type: progression.CategoryPassiveDetected, Tier: progression.TierDaily, Difficulty: progression.DifficultyMedium},
	{ID: "daily_combined_sweep", Name: "Feed Sweep", Description: "Log 10 detections of any kind today", Reward: 60, Requirement: 10, Type: progression.CategoryCombined, Tier: progression.TierDaily, Difficulty: progression.DifficultyMedium},
	{ID: "daily_full_patrol", Name: "Full Patrol", Description: "Log 20 detections of any kind today", Reward: 75, Requirement: 20, Type: progression.CategoryCombined, Tier: progression.TierDaily, Difficulty: progression.DifficultyHard},
}

// WeeklyChallenges is the selection pool for the weekly slot.
var WeeklyChallenges = []progression.Challenge{
	{ID: "weekly_bot_network", Name: "Bot Network Hunter", Description: "Identify 20 potential bot accounts this week", Reward: 200, Requirement: 20, Type: progression.CategoryBotDetection, Tier: progression.TierWeekly, Difficulty: progression.DifficultyMedium},
	{ID: "weekly_misinfo_campaign", Name: "Misinformation Campaign Detector", Description: "Flag 25 pieces of misinformation this week", Reward: 200, Requirement: 25, Type: progression.CategoryMisinfoFlagged, Tier: progression.TierWeekly, Difficulty: progression.DifficultyHard},
	{ID: "weekly_daily_streak", Name: "Daily Detector", Description: "Stay active for 7 consecutive days", Reward: 150, Requirement: 7, Type: progression.CategoryLoginStreak, Tier: progression.TierWeekly, Difficulty: progression.DifficultyMedium},
}

// SpecialChallenges is the selection pool for the occasional special slot.
var SpecialChallenges = []progression.Challenge{
	{ID: "special_network_takedown", Name: "Network Takedown", Description: "Identify 50 potential bot accounts", Reward: 500, Requirement: 50, Type: progression.CategoryBotDetection, Tier: progression.TierSpecial, Difficulty: progression.DifficultyExpert},
	{ID: "special_source_deep_dive", Name: "Source Deep Dive", Description: "Validate 30 sources", Reward: 300, Requirement: 30, Type: progression.CategorySourceValidation, Tier: progression.TierSpecial, Difficulty: progression.DifficultyExpert},
	{ID: "special_marathon", Name: "Detection Marathon", Description: "Log 40 detections of any kind", Reward: 250, Requirement: 40, Type: progression.CategoryCombined, Tier: progression.TierSpecial, Difficulty: progression.DifficultyHard},
}

// Levels is the fixed level threshold table, ascending.
var Levels = []progression.Level{
	{Level: 1, Threshold: 0, Title: "Novice Detective"},
	{Level: 2, Threshold: 100, Title: "Apprentice Detective"},
	{Level: 3, Threshold: 300, Title: "Skilled Detective"},
	{Level: 4, Threshold: 600, Title: "Expert Detective"},
	{Level: 5, Threshold: 1000, Title: "Master Detective"},
	{Level: 6, Threshold: 1500, Title: "Legendary Detective"},
	{Level: 7, Threshold: 2500, Title: "Supreme Detective"},
	{Level: 8, Threshold: 4000, Title: "Mythical Detective"},
	{Level: 9, Threshold: 6000, Title: "Divine Detective"},
	{Level: 10, Threshold: 10000, Title: "Omniscient Detective"},
}

// statsCategory maps a point kind to the badge/challenge category it advances.
// Kinds without a category only touch the ledger.
var statsCategory = map[progression.PointKind]progression.Category{
	progression.PointBotDetected:          progression.CategoryBotDetection,
	progression.PointMisinfoFlagged:       progression.CategoryMisinfoFlagged,
	progression.PointSourceValidated:      progression.CategorySourceValidation,
	progression.PointPassiveVoiceDetected: progression.CategoryPassiveDetected,
	progression.PointLowCredibilitySource: progression.CategoryLowCredibility,
	progression.PointReportSubmitted:      progression.CategoryReportSubmitted,
}

// LevelForTotal scans the threshold table from highest to lowest and derives
// the level state for a points total.
func LevelForTotal(total int) progression.LevelState {
	state := progression.LevelState{Current: 1, Title: Levels[0].Title}
	for i := len(Levels) - 1; i >= 0; i-- {
		if total >= Levels[i].Threshold {
			state.Current = Levels[i].Level
			state.Title = Levels[i].Title
			if i < len(Levels)-1 {
				next := Levels[i+1].Threshold
				state.NextThreshold = next
				span := next - Levels[i].Threshold
				state.Progress = (total - Levels[i].Threshold) * 100 / span
				if state.Progress > 100 {
					state.Progress = 100
				}
			} else {
				state.NextThreshold = 0
				state.Progress = 100
			}
			break
		}
	}
	return state
}
