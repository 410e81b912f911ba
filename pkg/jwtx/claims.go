package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the default lifetime for session tokens. Payroll
// admin sessions are interactive, so a working-day lifetime is plenty.
const DefaultSessionTTL = 12 * time.Hour

// Claims are the session-token claims. The expiry is embedded so clients can
// invalidate a stored session locally, without a network round-trip.
type Claims struct {
	jwt.RegisteredClaims

	// SID is the session ID minted at login.
	SID string `json:"sid,omitempty"`

	// Email of the authenticated account.
	Email string `json:"email,omitempty"`

	// AMR lists the authentication methods used:
	//	"pwd": password
	//	"mfa": a second factor (TOTP, email code or backup code)
	AMR []string `json:"amr,omitempty"`
}

// NewSessionClaims builds minimally-correct claims for a full session.
func NewSessionClaims(
	subject, sid, email string,
	amr []string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		SID:   sid,
		Email: email,
		AMR:   amr,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks the issuer when an expected value is configured.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't used
// before it is valid (nbf).
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}
