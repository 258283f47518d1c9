package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http/httptest"
	"strings"
	"testing"

	"omcounter/internal/service"
	"omcounter/internal/validation"
)

func TestRespondWithErrorWritesStatusAndBody(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondWithError(recorder, 418, "Teapot", "", nil)

	if recorder.Code != 418 {
		t.Fatalf("expected status 418, got %d", recorder.Code)
	}

	var body errorResponse
	if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Error != "Teapot" {
		t.Fatalf("expected error 'Teapot', got %q", body.Error)
	}
}

func TestRespondWithErrorLogsMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := log.Default()
	originalOutput := logger.Writer()
	logger.SetOutput(&buf)
	defer logger.SetOutput(originalOutput)

	recorder := httptest.NewRecorder()
	err := errors.New("boom")

	respondWithError(recorder, 500, "Internal server error", "", err)

	logOutput := buf.String()
	if !strings.Contains(logOutput, "Internal server error") {
		t.Fatalf("expected log to include user message, got %q", logOutput)
	}
	if !strings.Contains(logOutput, "boom") {
		t.Fatalf("expected log to include error, got %q", logOutput)
	}
}

func TestRespondServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectUpgrade  bool
	}{
		{"upgrade required", service.ErrUpgradeRequired, 402, true},
		{"invalid credentials", service.ErrInvalidCredentials, 401, false},
		{"email taken", service.ErrEmailTaken, 409, false},
		{"group not found", service.ErrGroupNotFound, 404, false},
		{"already member", service.ErrAlreadyMember, 409, false},
		{"group full", service.ErrGroupFull, 409, false},
		{"not admin", service.ErrNotGroupAdmin, 403, false},
		{"not member", service.ErrNotGroupMember, 403, false},
		{"validation error", validation.ValidationError{Field: "email", Message: "email is required"}, 400, false},
		{"unknown error", errors.New("boom"), 500, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respondServiceError(recorder, tt.err)

			if recorder.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, recorder.Code)
			}

			var body errorResponse
			if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body.UpgradeRequired != tt.expectUpgrade {
				t.Errorf("expected upgradeRequired %v, got %v", tt.expectUpgrade, body.UpgradeRequired)
			}
			if body.Error == "" {
				t.Error("expected a user-facing error message")
			}
		})
	}
}
