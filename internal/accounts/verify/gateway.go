// Package verify talks to SMS verification providers. A Gateway issues a
// one-time code to a destination and later checks a submitted code. It keeps
// no session state; the provider decides which code is live.
package verify

import (
	"context"
	"errors"
	"strings"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
)

// Gateway is the boundary to an SMS verification provider.
type Gateway interface {
	// IssueCode asks the provider to send a code to destination. Failures are
	// returned as *IssueError.
	IssueCode(ctx context.Context, destination string) error

	// CheckCode asks the provider to verify code for destination. A wrong code
	// is a Denied outcome, not an error. Failures talking to the provider are
	// returned as *CheckError.
	CheckCode(ctx context.Context, destination, code string) (domain.Outcome, error)
}

var (
	ErrNotConfigured       = errors.New("verify: provider not configured")
	ErrProviderUnavailable = errors.New("verify: provider unavailable")
	ErrProviderRejected    = errors.New("verify: provider rejected request")
)

// IssueError reports a failed code issuance. The login flow cannot continue.
type IssueError struct {
	Destination string
	Reason      string
	Err         error
}

func (e *IssueError) Error() string {
	return "failed to send verification code: " + e.Reason
}

func (e *IssueError) Unwrap() error { return e.Err }

// CheckError reports a failure to reach a verdict on a code. The caller may
// retry the same step.
type CheckError struct {
	Destination string
	Reason      string
	Err         error
}

func (e *CheckError) Error() string {
	return "failed to check verification code: " + e.Reason
}

func (e *CheckError) Unwrap() error { return e.Err }

// MaskDestination hides all but the country prefix and the last four digits
// of a phone number so it can be logged or echoed back.
func MaskDestination(phone string) string {
	phone = strings.TrimSpace(phone)
	if len(phone) <= 6 {
		return strings.Repeat("*", len(phone))
	}
	return phone[:2] + strings.Repeat("*", len(phone)-6) + phone[len(phone)-4:]
}
