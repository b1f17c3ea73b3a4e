package feed

import (
	"time"
)

// Item is the normalized representation of one observed feed post.
// Constructed once per observed item and never mutated afterwards.
type Item struct {
	ID            string     `json:"id"`
	AuthorHandle  string     `json:"authorHandle"`
	Text          string     `json:"text"`
	Links         []string   `json:"links,omitempty"`
	IsVerified    bool       `json:"isVerified"`
	HasAvatar     bool       `json:"hasAvatar"`
	AvatarURL     string     `json:"avatarUrl,omitempty"`
	PostedAt      *time.Time `json:"postedAt,omitempty"`
	AccountJoined string     `json:"accountJoined,omitempty"` // free-text "Joined <Month> <Year>", may be empty
}

// HashtagPosition classifies where a hashtag appears within an item's text.
type HashtagPosition string

const (
	PositionBeginning HashtagPosition = "beginning"
	PositionMiddle    HashtagPosition = "middle"
	PositionEnd       HashtagPosition = "end"
	PositionGrouped   HashtagPosition = "grouped"
)

// AuthorProfile accumulates per-author activity across the items observed in
// one session. It is session-scoped and never persisted.
type AuthorProfile struct {
	Handle       string
	PostCount    int
	Timestamps   []time.Time
	FirstSeenAt  time.Time
	HashtagUses  map[string]int
	TagPositions map[HashtagPosition]int
}

// ScoreResult holds the per-item analysis output. Immutable once computed.
type ScoreResult struct {
	BotScore              int            `json:"botScore"`
	MisinfoScore          int            `json:"misinfoScore"`
	PostingFrequencyScore int            `json:"postingFrequencyScore"`
	HashtagPatternScore   int            `json:"hashtagPatternScore"`
	SourceCredibility     int            `json:"sourceCredibility"`
	HasLinks              bool           `json:"hasLinks"`
	DetectedPatterns      []string       `json:"detectedPatterns,omitempty"`
	HashtagInsights       []string       `json:"hashtagInsights,omitempty"`
	LanguagePatterns      []string       `json:"languagePatterns,omitempty"`
	PassiveVoiceExamples  []string       `json:"passiveVoiceExamples,omitempty"`
	AccountAge            string         `json:"accountAge,omitempty"`
	SourceDetails         []SourceDetail `json:"sourceDetails,omitempty"`
}

// SourceDetail describes the credibility assessment of one linked domain.
type SourceDetail struct {
	Domain      string `json:"domain"`
	Score       int    `json:"score"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// SessionSummary aggregates score results across a batch of visible items.
type SessionSummary struct {
	ItemCount             int            `json:"itemCount"`
	BotScore              int            `json:"botScore"`
	MisinfoScore          int            `json:"misinfoScore"`
	PostingFrequencyScore int            `json:"postingFrequencyScore"`
	HashtagPatternScore   int            `json:"hashtagPatternScore"`
	SourceCredibility     int            `json:"sourceCredibility"`
	DetectedPatterns      []string       `json:"detectedPatterns,omitempty"`
	HashtagInsights       []string       `json:"hashtagInsights,omitempty"`
	LanguagePatterns      []string       `json:"languagePatterns,omitempty"`
	PassiveVoiceExamples  []string       `json:"passiveVoiceExamples,omitempty"`
	AccountAgeData        []string       `json:"accountAgeData,omitempty"`
	SourceDetails         []SourceDetail `json:"sourceDetails,omitempty"`
	FactCheck             string         `json:"factCheck"`
}
