package handlers

import (
	"encoding/json"
	"net/http"

	"omcounter/internal/service"
)

// InsightHandler serves the AI-assisted features. Every endpoint
// degrades to fallback content instead of failing when the model is
// unavailable.
type InsightHandler struct {
	insightService  *service.InsightService
	practiceService *service.PracticeService
}

// NewInsightHandler creates a new insight handler
func NewInsightHandler(insightService *service.InsightService, practiceService *service.PracticeService) *InsightHandler {
	return &InsightHandler{
		insightService:  insightService,
		practiceService: practiceService,
	}
}

// SuggestMantras handles POST /api/insights/mantras
func (h *InsightHandler) SuggestMantras(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Intention string `json:"intention"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", nil)
		return
	}

	suggestions := h.insightService.SuggestMantras(r.Context(), req.Intention)
	respondJSON(w, http.StatusOK, suggestions)
}

// SuggestGroupDescription handles POST /api/insights/group-description
func (h *InsightHandler) SuggestGroupDescription(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Intention string `json:"intention"`
		Mantra    string `json:"mantra"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", nil)
		return
	}

	description := h.insightService.SuggestGroupDescription(r.Context(), req.Intention, req.Mantra)
	respondJSON(w, http.StatusOK, map[string]string{"description": description})
}

// MantraInsight handles GET /api/insights/mantra?text=...
func (h *InsightHandler) MantraInsight(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	if text == "" {
		respondWithError(w, http.StatusBadRequest, "Missing mantra text", "", nil)
		return
	}

	insight := h.insightService.MantraInsight(r.Context(), text)
	respondJSON(w, http.StatusOK, map[string]string{"insight": insight})
}

// SharePoster handles GET /api/insights/poster, streaming a generated
// milestone image for sharing
func (h *InsightHandler) SharePoster(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	stats, err := h.practiceService.GetStats(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	data, mimeType, err := h.insightService.SharePoster(r.Context(), user.Name, stats)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Poster generation unavailable", "", nil)
		return
	}

	w.Header().Set("Content-Type", mimeType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// AnalyzeHabits handles GET /api/insights/habits
func (h *InsightHandler) AnalyzeHabits(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	stats, err := h.practiceService.GetStats(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	analysis := h.insightService.AnalyzeHabits(r.Context(), stats)
	respondJSON(w, http.StatusOK, map[string]string{"analysis": analysis})
}
