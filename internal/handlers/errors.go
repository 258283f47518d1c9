package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"omcounter/internal/service"
	"omcounter/internal/validation"
)

// errorResponse is the JSON body for every failed request.
// UpgradeRequired marks free-tier limit violations so clients can show
// the upgrade prompt instead of a plain error.
type errorResponse struct {
	Error           string `json:"error"`
	UpgradeRequired bool   `json:"upgradeRequired,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	respondJSON(w, status, errorResponse{
		Error:           userMsg,
		UpgradeRequired: status == http.StatusPaymentRequired,
	})
}

// respondServiceError maps service sentinel errors to HTTP statuses.
// Free-tier violations become 402 with the upgrade flag; permission
// problems are 403, distinct from the 404 of missing resources.
func respondServiceError(w http.ResponseWriter, err error) {
	var validationErr validation.ValidationError
	switch {
	case errors.As(err, &validationErr):
		respondWithError(w, http.StatusBadRequest, validationErr.Error(), "", nil)
	case errors.Is(err, service.ErrUpgradeRequired):
		respondWithError(w, http.StatusPaymentRequired, "This feature needs OmCounter Premium", "", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		respondWithError(w, http.StatusUnauthorized, "Invalid email or password", "", nil)
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrSessionExpired):
		respondWithError(w, http.StatusUnauthorized, "Please sign in", "", nil)
	case errors.Is(err, service.ErrEmailTaken):
		respondWithError(w, http.StatusConflict, "An account with this email already exists", "", nil)
	case errors.Is(err, service.ErrGroupNotFound):
		respondWithError(w, http.StatusNotFound, "Group not found", "", nil)
	case errors.Is(err, service.ErrAlreadyMember):
		respondWithError(w, http.StatusConflict, "You are already a member of this group", "", nil)
	case errors.Is(err, service.ErrGroupFull):
		respondWithError(w, http.StatusConflict, "This group has reached its member limit", "", nil)
	case errors.Is(err, service.ErrNotGroupAdmin):
		respondWithError(w, http.StatusForbidden, "Only the group admin may do this", "", nil)
	case errors.Is(err, service.ErrNotGroupMember):
		respondWithError(w, http.StatusForbidden, "You are not a member of this group", "", nil)
	case errors.Is(err, service.ErrPaymentNotFound):
		respondWithError(w, http.StatusNotFound, "Payment not found", "", nil)
	case errors.Is(err, service.ErrPaymentWrongUser):
		respondWithError(w, http.StatusForbidden, "This payment belongs to a different account", "", nil)
	case errors.Is(err, service.ErrPaymentNotVerified):
		respondWithError(w, http.StatusBadRequest, "Payment could not be verified", "", nil)
	case errors.Is(err, service.ErrWebhookSignatureError):
		respondWithError(w, http.StatusBadRequest, "Webhook signature could not be verified", "", nil)
	case errors.Is(err, service.ErrPaymentsUnavailable):
		respondWithError(w, http.StatusServiceUnavailable, "Payments are not available right now", "", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, "Something went wrong", "request failed", err)
	}
}
