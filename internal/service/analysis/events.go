// internal/service/analysis/events.go

package analysis

import (
	"octopal/internal/domain/feed"
	"octopal/internal/domain/progression"
)

// Event thresholds for converting a session summary into progression events.
// The high-risk bands match the popup's color coding.
const (
	botDetectedThreshold     = 70
	misinfoFlaggedThreshold  = 60
	sourceValidatedThreshold = 70
	lowCredibilityThreshold  = 30
)

// Event is one discrete progression event derived from a session summary.
type Event struct {
	Kind    progression.PointKind
	Details map[string]any
}

// MapEvents converts a session summary into the progression events it implies.
// An empty batch maps to no events.
func MapEvents(summary feed.SessionSummary) []Event {
	if summary.ItemCount == 0 {
		return nil
	}

	var events []Event

	if summary.BotScore >= botDetectedThreshold {
		events = append(events, Event{
			Kind:    progression.PointBotDetected,
			Details: map[string]any{"botScore": summary.BotScore},
		})
	}

	if summary.MisinfoScore >= misinfoFlaggedThreshold {
		events = append(events, Event{
			Kind:    progression.PointMisinfoFlagged,
			Details: map[string]any{"misinfoScore": summary.MisinfoScore},
		})
	}

	if len(summary.SourceDetails) > 0 {
		if summary.SourceCredibility >= sourceValidatedThreshold {
			events = append(events, Event{
				Kind:    progression.PointSourceValidated,
				Details: map[string]any{"credibility": summary.SourceCredibility},
			})
		} else if summary.SourceCredibility <= lowCredibilityThreshold {
			events = append(events, Event{
				Kind:    progression.PointLowCredibilitySource,
				Details: map[string]any{"credibility": summary.SourceCredibility},
			})
		}
	}

	if len(summary.PassiveVoiceExamples) > 0 {
		events = append(events, Event{
			Kind:    progression.PointPassiveVoiceDetected,
			Details: map[string]any{"examples": len(summary.PassiveVoiceExamples)},
		})
	}

	return events
}
