package accountsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/accounts/pkg/httpx"
)

// ============================================================================
// Error Codes
// ============================================================================

const (
	ErrorCodeInvalidRequest     = "invalid_request"
	ErrorCodeMissingField       = "missing_field"
	ErrorCodeDuplicateUsername  = "duplicate_username"
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeLoginInProgress    = "login_in_progress"
	ErrorCodeIssueFailed        = "issue_failed"
	ErrorCodeInvalidCode        = "invalid_code"
	ErrorCodeAttemptNotFound    = "attempt_not_found"
	ErrorCodeInvalidState       = "invalid_state"
	ErrorCodeTooManyAttempts    = "too_many_attempts"
	ErrorCodeCheckFailed        = "check_failed"
	ErrorCodeInvalidToken       = "invalid_token"
	ErrorCodeServerError        = "server_error"
)

// ============================================================================
// APIError
// ============================================================================

// APIError is the JSON error body every endpoint returns. It is written by
// the server and returned by the client.
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is the machine-readable error code (e.g., "invalid_code")
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is matches on status and code so that a server-specific description still
// compares equal to the predefined error.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return e.StatusCode == t.StatusCode && e.Code == t.Code
}

// WriteError writes the error as a JSON response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             e.Code,
		"error_description": e.Description,
	})
}

// WithDescription returns a copy of e with a different description.
func (e *APIError) WithDescription(desc string) *APIError {
	return &APIError{StatusCode: e.StatusCode, Code: e.Code, Description: desc}
}

// ============================================================================
// Predefined Errors
// ============================================================================

var (
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request body is malformed",
	}

	// ErrMissingField is returned by registration when any field is blank.
	ErrMissingField = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeMissingField,
		Description: "please fill in all fields",
	}

	ErrDuplicateUsername = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeDuplicateUsername,
		Description: "username already exists",
	}

	// ErrInvalidCredentials does not distinguish an unknown username from a
	// wrong password.
	ErrInvalidCredentials = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidCredentials,
		Description: "invalid username or password",
	}

	// ErrLoginInProgress is returned while another login for the same
	// username is still waiting for its code.
	ErrLoginInProgress = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeLoginInProgress,
		Description: "a login is already awaiting a verification code",
	}

	// ErrIssueFailed means the code could not be sent. The login is over and
	// must be started again.
	ErrIssueFailed = &APIError{
		StatusCode:  http.StatusBadGateway,
		Code:        ErrorCodeIssueFailed,
		Description: "failed to send verification code",
	}

	ErrInvalidCode = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidCode,
		Description: "Invalid verification code",
	}

	ErrAttemptNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeAttemptNotFound,
		Description: "login attempt not found",
	}

	ErrInvalidState = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeInvalidState,
		Description: "login attempt is not awaiting a code",
	}

	ErrTooManyAttempts = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeTooManyAttempts,
		Description: "too many invalid verification codes",
	}

	// ErrCheckFailed means the provider could not be asked. The attempt is
	// still open and the same code may be submitted again.
	ErrCheckFailed = &APIError{
		StatusCode:  http.StatusServiceUnavailable,
		Code:        ErrorCodeCheckFailed,
		Description: "failed to check verification code",
	}

	ErrInvalidToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidToken,
		Description: "the pass is missing, invalid, expired or signed out",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)

// ============================================================================
// Error Parsing Helpers
// ============================================================================

// parseErrorResponse turns a non-2xx response into an *APIError. Returns nil
// for 2xx responses.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	// Bearer failures may only carry the WWW-Authenticate header.
	if resp.StatusCode == http.StatusUnauthorized && resp.Header.Get("WWW-Authenticate") != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        ErrorCodeInvalidToken,
			Description: resp.Header.Get("WWW-Authenticate"),
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
