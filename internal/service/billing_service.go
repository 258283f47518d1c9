package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"omcounter/internal/models"
	"omcounter/internal/payments"
	"omcounter/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrPaymentsUnavailable   = errors.New("payments are not configured")
	ErrPaymentNotFound       = errors.New("payment not found")
	ErrPaymentNotVerified    = errors.New("payment signature could not be verified")
	ErrPaymentWrongUser      = errors.New("payment belongs to a different user")
	ErrWebhookSignatureError = errors.New("webhook signature could not be verified")
)

// BillingService runs the premium upgrade flow. The entitlement flips
// only after a payment signature verifies server side; the checkout
// widget's success callback alone is never trusted.
type BillingService struct {
	provider     *payments.Client
	paymentRepo  *repository.PaymentRepository
	statsRepo    *repository.StatsRepository
	userRepo     *repository.UserRepository
	emailService *EmailService
	pricePaise   int64
}

// NewBillingService creates a new billing service
func NewBillingService(provider *payments.Client, paymentRepo *repository.PaymentRepository, statsRepo *repository.StatsRepository, userRepo *repository.UserRepository, emailService *EmailService, pricePaise int64) *BillingService {
	return &BillingService{
		provider:     provider,
		paymentRepo:  paymentRepo,
		statsRepo:    statsRepo,
		userRepo:     userRepo,
		emailService: emailService,
		pricePaise:   pricePaise,
	}
}

// Checkout is what the client needs to open the payment widget
type Checkout struct {
	OrderID     string `json:"orderId"`
	AmountPaise int64  `json:"amountPaise"`
	Currency    string `json:"currency"`
}

// CreateCheckout creates a provider order for the premium price and
// records the pending payment
func (s *BillingService) CreateCheckout(ctx context.Context, userID string) (*Checkout, error) {
	if !s.provider.Enabled() {
		return nil, ErrPaymentsUnavailable
	}

	order, err := s.provider.CreateOrder(ctx, s.pricePaise, "INR", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	payment := &models.Payment{
		ID:              uuid.New().String(),
		UserID:          userID,
		ProviderOrderID: order.ID,
		AmountPaise:     order.Amount,
		Currency:        order.Currency,
		Status:          models.PaymentStatusCreated,
	}
	if err := s.paymentRepo.CreatePayment(payment); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	return &Checkout{
		OrderID:     order.ID,
		AmountPaise: order.Amount,
		Currency:    order.Currency,
	}, nil
}

// VerifyAndActivate checks the checkout signature for a completed
// payment and, only on success, flips the caller's entitlement
func (s *BillingService) VerifyAndActivate(ctx context.Context, userID, orderID, paymentID, signature string) error {
	payment, err := s.paymentRepo.GetPaymentByOrderID(orderID)
	if err != nil {
		return fmt.Errorf("failed to load payment: %w", err)
	}
	if payment == nil {
		return ErrPaymentNotFound
	}
	if payment.UserID != userID {
		return ErrPaymentWrongUser
	}

	if !s.provider.VerifyCheckoutSignature(orderID, paymentID, signature) {
		if err := s.paymentRepo.MarkFailed(payment.ID); err != nil {
			log.Printf("Warning: failed to mark payment %s failed: %v", payment.ID, err)
		}
		return ErrPaymentNotVerified
	}

	return s.activate(ctx, payment, paymentID)
}

// webhookEvent is the slice of the provider webhook payload we use
type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// HandleWebhook processes a provider webhook. Captured payments
// activate premium exactly like a verified checkout; other events are
// acknowledged and ignored.
func (s *BillingService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !s.provider.VerifyWebhookSignature(body, signature) {
		return ErrWebhookSignatureError
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("failed to decode webhook: %w", err)
	}
	if event.Event != "payment.captured" {
		return nil
	}

	payment, err := s.paymentRepo.GetPaymentByOrderID(event.Payload.Payment.Entity.OrderID)
	if err != nil {
		return fmt.Errorf("failed to load payment: %w", err)
	}
	if payment == nil {
		return ErrPaymentNotFound
	}

	return s.activate(ctx, payment, event.Payload.Payment.Entity.ID)
}

// activate marks the payment verified, flips the entitlement and sends
// the receipt. Safe to call twice for the same payment.
func (s *BillingService) activate(ctx context.Context, payment *models.Payment, providerPaymentID string) error {
	alreadyVerified := payment.Status == models.PaymentStatusVerified

	if err := s.paymentRepo.MarkVerified(payment.ID, providerPaymentID); err != nil {
		return fmt.Errorf("failed to mark payment verified: %w", err)
	}
	// The payer may never have chanted, so the profile row can be
	// missing; a bare UPDATE would silently flip nothing.
	if _, err := s.statsRepo.EnsureStats(payment.UserID); err != nil {
		return fmt.Errorf("failed to activate premium: %w", err)
	}
	if err := s.statsRepo.SetPremium(payment.UserID, true); err != nil {
		return fmt.Errorf("failed to activate premium: %w", err)
	}

	if alreadyVerified || s.emailService == nil || !s.emailService.IsEnabled() {
		return nil
	}
	user, err := s.userRepo.GetUserByID(payment.UserID)
	if err != nil || user == nil {
		log.Printf("Warning: failed to load user %s for receipt email: %v", payment.UserID, err)
		return nil
	}
	if err := s.emailService.SendReceiptEmail(ctx, user.Email, user.Name, payment.ProviderOrderID, payment.AmountPaise, payment.Currency); err != nil {
		log.Printf("Warning: failed to send receipt email to %s: %v", user.Email, err)
	}
	return nil
}
