package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// CSRFGenerator derives per-session CSRF tokens with HMAC-SHA256.
// A token is a pure function of the session ID and the server secret,
// so every replica can validate tokens without shared state.
type CSRFGenerator struct {
	secret []byte
}

// NewCSRFGenerator creates a generator keyed with the given secret
func NewCSRFGenerator(secret string) *CSRFGenerator {
	return &CSRFGenerator{secret: []byte(secret)}
}

// GenerateToken returns the CSRF token bound to the given session
func (g *CSRFGenerator) GenerateToken(sessionID string) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("session ID is required")
	}
	return g.sign(sessionID), nil
}

// ValidateToken reports whether token belongs to sessionID
func (g *CSRFGenerator) ValidateToken(sessionID, token string) bool {
	if sessionID == "" || token == "" {
		return false
	}
	return hmac.Equal([]byte(g.sign(sessionID)), []byte(token))
}

func (g *CSRFGenerator) sign(sessionID string) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(sessionID))
	return hex.EncodeToString(mac.Sum(nil))
}
