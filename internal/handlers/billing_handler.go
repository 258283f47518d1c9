package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"omcounter/internal/service"
)

// BillingHandler handles the premium upgrade flow
type BillingHandler struct {
	billingService *service.BillingService
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billingService *service.BillingService) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

// CreateCheckout handles POST /api/billing/checkout
func (h *BillingHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	checkout, err := h.billingService.CreateCheckout(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, checkout)
}

// Verify handles POST /api/billing/verify. The checkout widget's
// success callback posts the order, payment and signature here; only a
// server-verified signature activates premium.
func (h *BillingHandler) Verify(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		OrderID   string `json:"orderId"`
		PaymentID string `json:"paymentId"`
		Signature string `json:"signature"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", nil)
		return
	}

	if err := h.billingService.VerifyAndActivate(r.Context(), user.ID, req.OrderID, req.PaymentID, req.Signature); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"premium": true})
}

// Webhook handles POST /webhooks/razorpay. Unauthenticated; the
// request is trusted only through its signature header.
func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to read webhook body", "", nil)
		return
	}

	signature := r.Header.Get("X-Razorpay-Signature")
	if err := h.billingService.HandleWebhook(r.Context(), body, signature); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"received": true})
}
