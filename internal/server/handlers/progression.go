// internal/server/handlers/progression.go

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"octopal/internal/domain/progression"
	"octopal/internal/metrics"
)

// ProgressionHandler handles gamification HTTP requests
type ProgressionHandler struct {
	engine progression.Engine
}

// NewProgressionHandler creates a new progression handler
func NewProgressionHandler(engine progression.Engine) *ProgressionHandler {
	return &ProgressionHandler{
		engine: engine,
	}
}

// reportRequest is the body of a report submission.
type reportRequest struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// SubmitReport records a content report and awards report points
func (h *ProgressionHandler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.URL == "" {
		respondWithError(w, http.StatusBadRequest, "Missing report URL", nil)
		return
	}

	result, err := h.engine.SubmitReport(r.Context(), req.URL, req.Title)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to submit report", err)
		return
	}

	metrics.PointsAwarded.WithLabelValues(string(progression.PointReportSubmitted)).Add(float64(result.PointsAwarded))
	respondWithJSON(w, http.StatusOK, result)
}

// awardRequest is the body of a point award.
type awardRequest struct {
	Type    progression.PointKind `json:"type"`
	Amount  int                   `json:"amount"`
	Details map[string]any        `json:"details"`
}

// AwardPoints applies a point award of the given kind
func (h *ProgressionHandler) AwardPoints(w http.ResponseWriter, r *http.Request) {
	var req awardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.engine.AwardPoints(r.Context(), req.Type, req.Amount, req.Details)
	if err != nil {
		if errors.Is(err, progression.ErrInvalidPointType) {
			respondWithError(w, http.StatusBadRequest, "Invalid point type", nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to award points", err)
		}
		return
	}

	metrics.PointsAwarded.WithLabelValues(string(req.Type)).Add(float64(result.PointsAwarded))
	respondWithJSON(w, http.StatusOK, result)
}

// GetStats returns the combined user state
func (h *ProgressionHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.GetUserStats(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to get stats", err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// GetBadges returns earned badges and all definitions
func (h *ProgressionHandler) GetBadges(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.GetBadges(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to get badges", err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// GetBadgeProgress returns per-category counters and earned dates
func (h *ProgressionHandler) GetBadgeProgress(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.GetBadgeProgress(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to get badge progress", err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// GetChallenges returns the active challenge slots
func (h *ProgressionHandler) GetChallenges(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.GetChallenges(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to get challenges", err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// challengeProgressRequest is the body of a challenge progress update.
type challengeProgressRequest struct {
	Category progression.Category `json:"category"`
	Amount   int                  `json:"amount"`
}

// UpdateChallengeProgress accumulates progress toward matching challenges
func (h *ProgressionHandler) UpdateChallengeProgress(w http.ResponseWriter, r *http.Request) {
	var req challengeProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Category == "" {
		respondWithError(w, http.StatusBadRequest, "Missing category", nil)
		return
	}
	if req.Amount <= 0 {
		req.Amount = 1
	}

	result, err := h.engine.UpdateChallengeProgress(r.Context(), req.Category, req.Amount)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to update challenge progress", err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// GetLevel returns the current level and the threshold table
func (h *ProgressionHandler) GetLevel(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.GetLevelDetails(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to get level", err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// GetLeaderboard returns the local leaderboard
func (h *ProgressionHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.engine.GetLeaderboard(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to get leaderboard", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"leaderboard": entries})
}
