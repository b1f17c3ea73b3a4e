// internal/service/analysis/events_test.go

package analysis

import (
	"testing"

	"octopal/internal/domain/feed"
	"octopal/internal/domain/progression"
)

func kinds(events []Event) []progression.PointKind {
	out := make([]progression.PointKind, 0, len(events))
	for _, e := range events {
		out = append(out, e.Kind)
	}
	return out
}

func hasKind(events []Event, kind progression.PointKind) bool {
	for _, e := range events {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

func TestMapEvents(t *testing.T) {
	tests := []struct {
		name     string
		summary  feed.SessionSummary
		want     []progression.PointKind
		wantNone []progression.PointKind
	}{
		{
			name:    "empty batch maps to nothing",
			summary: feed.SessionSummary{},
			want:    nil,
		},
		{
			name: "high bot score",
			summary: feed.SessionSummary{
				ItemCount: 3,
				BotScore:  80,
			},
			want: []progression.PointKind{progression.PointBotDetected},
		},
		{
			name: "below thresholds",
			summary: feed.SessionSummary{
				ItemCount:    3,
				BotScore:     69,
				MisinfoScore: 59,
			},
			wantNone: []progression.PointKind{
				progression.PointBotDetected,
				progression.PointMisinfoFlagged,
			},
		},
		{
			name: "credible sources validated",
			summary: feed.SessionSummary{
				ItemCount:         2,
				SourceCredibility: 85,
				SourceDetails:     []feed.SourceDetail{{Domain: "reuters.com", Score: 85}},
			},
			want: []progression.PointKind{progression.PointSourceValidated},
		},
		{
			name: "low credibility sources",
			summary: feed.SessionSummary{
				ItemCount:         2,
				SourceCredibility: 25,
				SourceDetails:     []feed.SourceDetail{{Domain: "shadyblog.net", Score: 25}},
			},
			want:     []progression.PointKind{progression.PointLowCredibilitySource},
			wantNone: []progression.PointKind{progression.PointSourceValidated},
		},
		{
			name: "high credibility without any links",
			summary: feed.SessionSummary{
				ItemCount:         2,
				SourceCredibility: 85,
			},
			wantNone: []progression.PointKind{progression.PointSourceValidated},
		},
		{
			name: "passive voice present",
			summary: feed.SessionSummary{
				ItemCount:            1,
				PassiveVoiceExamples: []string{"Mistakes were made"},
			},
			want: []progression.PointKind{progression.PointPassiveVoiceDetected},
		},
		{
			name: "combined signals",
			summary: feed.SessionSummary{
				ItemCount:            4,
				BotScore:             75,
				MisinfoScore:         65,
				SourceCredibility:    20,
				SourceDetails:        []feed.SourceDetail{{Domain: "shadyblog.net", Score: 20}},
				PassiveVoiceExamples: []string{"It was decided"},
			},
			want: []progression.PointKind{
				progression.PointBotDetected,
				progression.PointMisinfoFlagged,
				progression.PointLowCredibilitySource,
				progression.PointPassiveVoiceDetected,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := MapEvents(tt.summary)

			for _, kind := range tt.want {
				if !hasKind(events, kind) {
					t.Errorf("events %v missing %s", kinds(events), kind)
				}
			}
			for _, kind := range tt.wantNone {
				if hasKind(events, kind) {
					t.Errorf("events %v unexpectedly contain %s", kinds(events), kind)
				}
			}
			if tt.want == nil && tt.wantNone == nil && len(events) != 0 {
				t.Errorf("events = %v, want none", kinds(events))
			}
		})
	}
}
