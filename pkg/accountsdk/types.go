package accountsdk

import (
	"time"

	"github.com/aussiebroadwan/accounts/pkg/jwtx"
)

// ============================================================================
// Registration Types
// ============================================================================

// RegisterRequest creates a user. All fields are required.
type RegisterRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"pw1"`
	Phone    string `json:"phone" example:"+15550001111"`
}

// RegisterResponse describes the created user. The password is never echoed.
type RegisterResponse struct {
	Username  string    `json:"username" example:"alice"`
	Phone     string    `json:"phone" example:"+1******1111"`
	CreatedAt time.Time `json:"created_at"`
}

// ============================================================================
// Login Types
// ============================================================================

// LoginRequest starts a login. Phone is where the code is sent when the
// server uses the "login" destination policy; otherwise the phone on record
// is used.
type LoginRequest struct {
	Username string `json:"username" example:"bob"`
	Password string `json:"password" example:"pw2"`
	Phone    string `json:"phone" example:"+15550002222"`
}

// LoginResponse is returned once the password matched and a code was sent.
type LoginResponse struct {
	AttemptID   string `json:"attempt_id" example:"01J9Z7Q4D8X2Y6N5K3M1P0R9ST"`
	Destination string `json:"destination" example:"+1******2222"`
	State       string `json:"state" example:"awaiting_code"`
}

// VerifyRequest submits the SMS code for an attempt.
type VerifyRequest struct {
	Code string `json:"code" example:"123456"`
}

// VerifyResponse carries the home pass for an approved login.
type VerifyResponse struct {
	State     string `json:"state" example:"approved"`
	Pass      string `json:"pass"`
	TokenType string `json:"token_type" example:"Bearer"`
	ExpiresIn int    `json:"expires_in" example:"900"`
	Username  string `json:"username" example:"bob"`
}

// ============================================================================
// Home Types
// ============================================================================

// HomeResponse is the authenticated landing view.
type HomeResponse struct {
	Message  string `json:"message" example:"Good Job! You Logged In!"`
	Username string `json:"username" example:"bob"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains individual component health checks (only present in /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Store indicates the user directory status
	Store string `json:"store"`

	// Signer indicates whether passes can be signed
	Signer string `json:"signer"`
}

// ============================================================================
// JWKS Types
// ============================================================================

// JWKSResponse contains the public keys home passes are signed with.
type JWKSResponse jwtx.JWKS
