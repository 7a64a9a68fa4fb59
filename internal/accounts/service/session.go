package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/verify"
)

var (
	ErrInvalidState    = errors.New("two-factor session is not awaiting a code")
	ErrTooManyAttempts = errors.New("too many invalid verification codes")
)

// SessionOptions tunes a Session. The zero value allows unlimited retries.
type SessionOptions struct {
	// MaxAttempts abandons the session after this many denied codes.
	// Zero means unbounded.
	MaxAttempts int
}

// Session is one two-factor verification attempt bound to a single
// destination. It moves PENDING_ISSUE -> AWAITING_CODE -> APPROVED or
// ABANDONED and never leaves a terminal state. A Session is not safe for
// concurrent use; LoginAttempt serialises access.
type Session struct {
	gateway     verify.Gateway
	destination string
	maxAttempts int

	state  domain.SessionState
	trail  []domain.SessionState
	denied int
	issued bool

	// cause is why the session was abandoned, nil when the user cancelled.
	cause error
}

// NewSession creates a session and immediately issues a code to destination.
// When issuance fails the returned session is already ABANDONED and the
// *verify.IssueError is returned alongside it.
func NewSession(ctx context.Context, gw verify.Gateway, destination string, opts SessionOptions) (*Session, error) {
	s := &Session{
		gateway:     gw,
		destination: destination,
		maxAttempts: opts.MaxAttempts,
	}
	s.enter(domain.StatePendingIssue)

	if err := gw.IssueCode(ctx, destination); err != nil {
		s.abandon(err)
		return s, err
	}

	s.issued = true
	s.enter(domain.StateAwaitingCode)
	return s, nil
}

// SubmitCode checks code with the provider. A Denied outcome keeps the
// session awaiting another code. Provider failures are returned as-is and
// leave the state unchanged so the caller may retry.
func (s *Session) SubmitCode(ctx context.Context, code string) (domain.Outcome, error) {
	if s.state != domain.StateAwaitingCode {
		return domain.Outcome{}, fmt.Errorf("%w: state=%s", ErrInvalidState, s.state)
	}

	outcome, err := s.gateway.CheckCode(ctx, s.destination, code)
	if err != nil {
		return domain.Outcome{}, err
	}

	if outcome.Approved() {
		s.enter(domain.StateApproved)
		return outcome, nil
	}

	s.denied++
	if s.maxAttempts > 0 && s.denied >= s.maxAttempts {
		s.abandon(ErrTooManyAttempts)
		return outcome, ErrTooManyAttempts
	}

	s.enter(domain.StateAwaitingCode)
	return outcome, nil
}

// Cancel abandons a live session. Cancelling a terminal session does nothing.
func (s *Session) Cancel() {
	if s.state.Terminal() {
		return
	}
	s.abandon(nil)
}

func (s *Session) State() domain.SessionState { return s.state }
func (s *Session) Destination() string        { return s.destination }
func (s *Session) Issued() bool               { return s.issued }

// DeniedAttempts is the number of codes the provider has rejected.
func (s *Session) DeniedAttempts() int { return s.denied }

// Cause returns why the session was abandoned, or nil.
func (s *Session) Cause() error { return s.cause }

// Trail returns every state entered, in order, including re-entries of
// AWAITING_CODE after a denied code.
func (s *Session) Trail() []domain.SessionState {
	out := make([]domain.SessionState, len(s.trail))
	copy(out, s.trail)
	return out
}

func (s *Session) enter(state domain.SessionState) {
	s.state = state
	s.trail = append(s.trail, state)
}

func (s *Session) abandon(cause error) {
	s.cause = cause
	s.enter(domain.StateAbandoned)
}
