// internal/server/handlers/analysis.go

package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"octopal/internal/domain/feed"
	"octopal/internal/domain/progression"
	"octopal/internal/metrics"
	"octopal/internal/service/analysis"
)

// botScoreAlertThreshold marks an analysis as a likely bot for metrics.
const botScoreAlertThreshold = 70

// AnalysisHandler handles feed-analysis HTTP requests
type AnalysisHandler struct {
	analyzer feed.Analyzer
	fetcher  feed.Fetcher
	engine   progression.Engine
}

// NewAnalysisHandler creates a new analysis handler. fetcher may be nil when
// no platform credentials are configured.
func NewAnalysisHandler(analyzer feed.Analyzer, fetcher feed.Fetcher, engine progression.Engine) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer: analyzer,
		fetcher:  fetcher,
		engine:   engine,
	}
}

// analyzeRequest is the body of an analysis request. Award controls whether
// high-signal results also feed the progression engine.
type analyzeRequest struct {
	Items []feed.Item `json:"items"`
	Award bool        `json:"award"`
}

// analyzeResponse wraps the summary with any points granted from it.
type analyzeResponse struct {
	Summary       feed.SessionSummary `json:"summary"`
	PointsAwarded int                 `json:"pointsAwarded"`
}

// AnalyzeBatch scores a batch of feed items and returns the session summary
func (h *AnalysisHandler) AnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	summary, err := h.analyzer.AnalyzeBatch(r.Context(), req.Items)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to analyze items", err)
		return
	}

	metrics.ItemsAnalyzed.WithLabelValues("batch").Add(float64(len(req.Items)))
	if summary.BotScore >= botScoreAlertThreshold {
		metrics.HighBotScores.Inc()
	}

	resp := analyzeResponse{Summary: summary}
	if req.Award {
		resp.PointsAwarded = h.awardFromSummary(r, summary)
	}

	respondWithJSON(w, http.StatusOK, resp)
}

// AnalyzeItem scores a single feed item
func (h *AnalysisHandler) AnalyzeItem(w http.ResponseWriter, r *http.Request) {
	var item feed.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.analyzer.AnalyzeItem(r.Context(), item)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to analyze item", err)
		return
	}

	metrics.ItemsAnalyzed.WithLabelValues("single").Inc()
	if result.BotScore >= botScoreAlertThreshold {
		metrics.HighBotScores.Inc()
	}

	respondWithJSON(w, http.StatusOK, result)
}

// AnalyzeFeed fetches recent posts matching a query and analyzes them
func (h *AnalysisHandler) AnalyzeFeed(w http.ResponseWriter, r *http.Request) {
	if h.fetcher == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Feed fetching is not configured", nil)
		return
	}

	query := r.URL.Query().Get("query")
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "Missing query parameter", nil)
		return
	}

	maxResults, _ := strconv.Atoi(r.URL.Query().Get("max_results"))

	items, err := h.fetcher.FetchRecent(r.Context(), query, maxResults)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Failed to fetch feed", err)
		return
	}

	summary, err := h.analyzer.AnalyzeBatch(r.Context(), items)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to analyze items", err)
		return
	}

	metrics.ItemsAnalyzed.WithLabelValues("feed").Add(float64(len(items)))
	if summary.BotScore >= botScoreAlertThreshold {
		metrics.HighBotScores.Inc()
	}

	respondWithJSON(w, http.StatusOK, analyzeResponse{Summary: summary})
}

// awardFromSummary maps the summary to progression events and applies them.
// Award failures are non-fatal; the analysis result is returned regardless.
func (h *AnalysisHandler) awardFromSummary(r *http.Request, summary feed.SessionSummary) int {
	if h.engine == nil {
		return 0
	}

	total := 0
	for _, ev := range analysis.MapEvents(summary) {
		result, err := h.engine.AwardPoints(r.Context(), ev.Kind, 0, ev.Details)
		if err != nil {
			continue
		}
		total += result.PointsAwarded
		metrics.PointsAwarded.WithLabelValues(string(ev.Kind)).Add(float64(result.PointsAwarded))
	}
	return total
}

// Helper for JSON responses
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper for error responses
func respondWithError(w http.ResponseWriter, code int, message string, err error) {
	response := map[string]string{"error": message}

	jsonResponse, _ := json.Marshal(response)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(jsonResponse)
}
