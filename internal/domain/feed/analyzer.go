// internal/domain/feed/analyzer.go

package feed

import (
	"context"
)

// Analyzer defines the interface for heuristic feed-item analysis
type Analyzer interface {
	// AnalyzeItem computes the score result for a single item, consulting the
	// author profiles collected so far in the session
	AnalyzeItem(ctx context.Context, item Item) (ScoreResult, error)

	// AnalyzeBatch profiles and scores an ordered batch of visible items and
	// aggregates the results into a session summary
	AnalyzeBatch(ctx context.Context, items []Item) (SessionSummary, error)
}

// FactCheckOracle is an optional external claim-review service. It may be
// unavailable; callers must treat failures as non-fatal.
type FactCheckOracle interface {
	// CheckClaim returns a human-readable review for the given text
	CheckClaim(ctx context.Context, text string) (string, error)
}

// Fetcher retrieves recent posts from an external platform for analysis
type Fetcher interface {
	// FetchRecent returns up to maxResults items matching the query
	FetchRecent(ctx context.Context, query string, maxResults int) ([]Item, error)
}
