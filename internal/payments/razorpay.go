// Package payments wraps the Razorpay Orders API and the signature
// checks that gate premium activation. Premium only flips after a
// signature verifies server side.
package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.razorpay.com"

// Order is a provider-side order created ahead of checkout
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// Client calls the Razorpay REST API
type Client struct {
	keyID         string
	keySecret     string
	webhookSecret string
	baseURL       string
	httpClient    *http.Client
}

// NewClient creates a Razorpay client. Empty credentials produce a
// disabled client so local setups run without a payment account.
func NewClient(keyID, keySecret, webhookSecret string) *Client {
	return &Client{
		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
		baseURL:       defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Enabled reports whether API credentials are configured
func (c *Client) Enabled() bool {
	return c.keyID != "" && c.keySecret != ""
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// CreateOrder creates an order for the given amount in paise
func (c *Client) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (*Order, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("razorpay credentials not configured")
	}

	payload, err := json.Marshal(createOrderRequest{
		Amount:   amountPaise,
		Currency: currency,
		Receipt:  receipt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach razorpay: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, body)
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("failed to decode order: %w", err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("order response missing id")
	}

	return &order, nil
}

// VerifyCheckoutSignature checks the signature the checkout widget
// returns for a completed payment. The signed message is
// "<order_id>|<payment_id>" keyed with the API secret.
func (c *Client) VerifyCheckoutSignature(orderID, paymentID, signature string) bool {
	if c.keySecret == "" {
		return false
	}
	return verifyHMAC(c.keySecret, orderID+"|"+paymentID, signature)
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header
// against the raw webhook body
func (c *Client) VerifyWebhookSignature(body []byte, signature string) bool {
	if c.webhookSecret == "" {
		return false
	}
	return verifyHMAC(c.webhookSecret, string(body), signature)
}

func verifyHMAC(secret, message, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	expected := hex.EncodeToString(mac.Sum(nil))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}
