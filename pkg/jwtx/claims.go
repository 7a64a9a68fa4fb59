package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultPassTTL is how long a home pass stays valid.
const DefaultPassTTL = 15 * time.Minute

// Authentication Methods Reference values carried in the amr claim.
const (
	AMRPassword = "pwd"
	AMRSMS      = "sms"
)

// Claims are the home pass claims. The subject is the username.
type Claims struct {
	jwt.RegisteredClaims

	// AttemptID is the login attempt that produced the pass.
	AttemptID string `json:"aid,omitempty"`

	// AMR lists how the holder authenticated, e.g. ["pwd","sms"].
	AMR []string `json:"amr,omitempty"`
}

// NewPassClaims builds claims for a pass valid from now for ttl.
func NewPassClaims(username, attemptID string, amr []string, ttl time.Duration, issuer string, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		AttemptID: attemptID,
		AMR:       amr,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// Username is the pass holder.
func (c *Claims) Username() string { return c.Subject }

// ValidateIssuer checks the issuer if one is expected.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateExpiryAt checks exp and nbf against now with leeway for clock skew.
func (c *Claims) ValidateExpiryAt(now time.Time, leeway time.Duration) error {
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}
