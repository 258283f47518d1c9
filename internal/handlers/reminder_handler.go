package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"omcounter/internal/models"
	"omcounter/internal/service"
)

// ReminderHandler handles reminder settings and in-app notifications
type ReminderHandler struct {
	reminderService *service.ReminderService
}

// NewReminderHandler creates a new reminder handler
func NewReminderHandler(reminderService *service.ReminderService) *ReminderHandler {
	return &ReminderHandler{reminderService: reminderService}
}

type reminderSettingsPayload struct {
	Enabled      bool   `json:"enabled"`
	TimeOfDay    string `json:"timeOfDay"`
	EmailEnabled bool   `json:"emailEnabled"`
}

func toReminderSettingsPayload(settings *models.ReminderSettings) reminderSettingsPayload {
	return reminderSettingsPayload{
		Enabled:      settings.Enabled,
		TimeOfDay:    settings.TimeOfDay,
		EmailEnabled: settings.EmailEnabled,
	}
}

// GetSettings handles GET /api/reminders/settings
func (h *ReminderHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	settings, err := h.reminderService.GetSettings(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toReminderSettingsPayload(settings))
}

// UpdateSettings handles PUT /api/reminders/settings
func (h *ReminderHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req reminderSettingsPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", nil)
		return
	}

	settings, err := h.reminderService.UpdateSettings(user.ID, req.Enabled, req.TimeOfDay, req.EmailEnabled)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toReminderSettingsPayload(settings))
}

type notificationResponse struct {
	ID        int64  `json:"id"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
}

// ListNotifications handles GET /api/notifications
func (h *ReminderHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	notifications, err := h.reminderService.ListNotifications(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	payload := make([]notificationResponse, 0, len(notifications))
	for _, n := range notifications {
		payload = append(payload, notificationResponse{
			ID:        n.ID,
			Kind:      n.Kind,
			Message:   n.Message,
			CreatedAt: n.CreatedAt.Format(time.RFC3339),
		})
	}

	respondJSON(w, http.StatusOK, payload)
}

// MarkNotificationsRead handles POST /api/notifications/read
func (h *ReminderHandler) MarkNotificationsRead(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if err := h.reminderService.MarkNotificationsRead(user.ID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"read": true})
}
