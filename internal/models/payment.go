package models

import "time"

// Payment statuses move created -> verified (or stay created if the
// checkout is abandoned). Webhook-confirmed payments become verified too.
const (
	PaymentStatusCreated  = "created"
	PaymentStatusVerified = "verified"
	PaymentStatusFailed   = "failed"
)

// Payment records one premium checkout attempt
type Payment struct {
	ID                string
	UserID            string
	ProviderOrderID   string
	ProviderPaymentID string
	AmountPaise       int64
	Currency          string
	Status            string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
