package repository

import (
	"database/sql"
	"fmt"

	"omcounter/internal/database"
	"omcounter/internal/models"
)

// PaymentRepository handles premium checkout records
type PaymentRepository struct {
	db *database.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *database.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// CreatePayment inserts a newly created checkout order
func (r *PaymentRepository) CreatePayment(payment *models.Payment) error {
	query := `
		INSERT INTO payments (id, user_id, provider_order_id, amount_paise, currency, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, payment.ID, payment.UserID, payment.ProviderOrderID, payment.AmountPaise, payment.Currency, payment.Status)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// GetPaymentByOrderID retrieves a payment by provider order ID, or nil
func (r *PaymentRepository) GetPaymentByOrderID(orderID string) (*models.Payment, error) {
	query := `
		SELECT id, user_id, provider_order_id, provider_payment_id, amount_paise, currency, status, created_at, updated_at
		FROM payments WHERE provider_order_id = ?
	`
	payment := &models.Payment{}
	err := r.db.QueryRow(query, orderID).Scan(
		&payment.ID,
		&payment.UserID,
		&payment.ProviderOrderID,
		&payment.ProviderPaymentID,
		&payment.AmountPaise,
		&payment.Currency,
		&payment.Status,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return payment, nil
}

// MarkVerified records the provider payment ID and flips the status
func (r *PaymentRepository) MarkVerified(paymentID, providerPaymentID string) error {
	query := `
		UPDATE payments SET provider_payment_id = ?, status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.Exec(query, providerPaymentID, models.PaymentStatusVerified, paymentID)
	if err != nil {
		return fmt.Errorf("failed to mark payment verified: %w", err)
	}
	return nil
}

// MarkFailed records a failed checkout
func (r *PaymentRepository) MarkFailed(paymentID string) error {
	query := "UPDATE payments SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	_, err := r.db.Exec(query, models.PaymentStatusFailed, paymentID)
	if err != nil {
		return fmt.Errorf("failed to mark payment failed: %w", err)
	}
	return nil
}
