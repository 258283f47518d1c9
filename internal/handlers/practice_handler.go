package handlers

import (
	"encoding/json"
	"net/http"

	"omcounter/internal/models"
	"omcounter/internal/service"
)

// PracticeHandler handles the tap counter, the mantra library and
// practice preferences
type PracticeHandler struct {
	practiceService *service.PracticeService
}

// NewPracticeHandler creates a new practice handler
func NewPracticeHandler(practiceService *service.PracticeService) *PracticeHandler {
	return &PracticeHandler{practiceService: practiceService}
}

type statsResponse struct {
	TotalChants     int64               `json:"totalChants"`
	StreakDays      int                 `json:"streakDays"`
	LastChantedDate string              `json:"lastChantedDate,omitempty"`
	MantraBreakdown []models.MantraStat `json:"mantraBreakdown"`
	IsPremium       bool                `json:"isPremium"`
}

func toStatsResponse(stats *models.UserStats) statsResponse {
	breakdown := stats.MantraBreakdown
	if breakdown == nil {
		breakdown = []models.MantraStat{}
	}
	return statsResponse{
		TotalChants:     stats.TotalChants,
		StreakDays:      stats.StreakDays,
		LastChantedDate: stats.LastChantedDate,
		MantraBreakdown: breakdown,
		IsPremium:       stats.IsPremium,
	}
}

// Increment handles POST /api/practice/increment
func (h *PracticeHandler) Increment(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		MantraText string `json:"mantraText"`
		Amount     *int64 `json:"amount"`
		GroupID    string `json:"groupId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", nil)
		return
	}

	// A plain tap omits the amount and counts one. An explicit amount,
	// zero included, is validated as sent.
	amount := int64(1)
	if req.Amount != nil {
		amount = *req.Amount
	}

	stats, err := h.practiceService.RecordIncrement(user.ID, user.Name, req.MantraText, amount, req.GroupID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toStatsResponse(stats))
}

// Stats handles GET /api/practice/stats
func (h *PracticeHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	stats, err := h.practiceService.GetStats(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toStatsResponse(stats))
}

// ListMantras handles GET /api/practice/mantras
func (h *PracticeHandler) ListMantras(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	mantras, err := h.practiceService.ListMantras(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if mantras == nil {
		mantras = []models.PersonalMantra{}
	}

	respondJSON(w, http.StatusOK, mantras)
}

// AddMantra handles POST /api/practice/mantras
func (h *PracticeHandler) AddMantra(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		Text        string `json:"text"`
		Meaning     string `json:"meaning"`
		TargetCount int    `json:"targetCount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", nil)
		return
	}

	mantra, err := h.practiceService.AddMantra(user.ID, req.Text, req.Meaning, req.TargetCount)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, mantra)
}

// RemoveMantra handles DELETE /api/practice/mantras/{id}
func (h *PracticeHandler) RemoveMantra(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if err := h.practiceService.RemoveMantra(user.ID, r.PathValue("id")); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// GetPreferences handles GET /api/practice/preferences
func (h *PracticeHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	prefs, err := h.practiceService.GetPreferences(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toPreferencesResponse(prefs))
}

// SavePreferences handles PUT /api/practice/preferences
func (h *PracticeHandler) SavePreferences(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req preferencesPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", nil)
		return
	}

	prefs := models.PracticePreferences{
		UserID:         user.ID,
		Sound:          req.Sound,
		AmbianceSound:  req.AmbianceSound,
		HapticStrength: req.HapticStrength,
		LowLightMode:   req.LowLightMode,
		ZenMode:        req.ZenMode,
	}
	if err := h.practiceService.SavePreferences(prefs); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toPreferencesResponse(prefs))
}

type preferencesPayload struct {
	Sound          string `json:"sound"`
	AmbianceSound  string `json:"ambianceSound"`
	HapticStrength string `json:"hapticStrength"`
	LowLightMode   bool   `json:"lowLightMode"`
	ZenMode        bool   `json:"zenMode"`
}

func toPreferencesResponse(prefs models.PracticePreferences) preferencesPayload {
	return preferencesPayload{
		Sound:          prefs.Sound,
		AmbianceSound:  prefs.AmbianceSound,
		HapticStrength: prefs.HapticStrength,
		LowLightMode:   prefs.LowLightMode,
		ZenMode:        prefs.ZenMode,
	}
}
