package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/internal/accounts/verify"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// NoticeInvalidCode is shown when the provider denies a submitted code.
const NoticeInvalidCode = "Invalid verification code"

// Prompt is what the shell shows in the verification dialog.
type Prompt struct {
	Destination string // masked
	Notice      string // feedback from the previous submission, if any
}

// CodePrompter is the shell's modal verification prompt. ok is false when
// the user closed the prompt without submitting.
type CodePrompter interface {
	PromptCode(ctx context.Context, p Prompt) (code string, ok bool)
}

// PromptFunc adapts a function to CodePrompter.
type PromptFunc func(ctx context.Context, p Prompt) (string, bool)

func (f PromptFunc) PromptCode(ctx context.Context, p Prompt) (string, bool) { return f(ctx, p) }

type LoginService struct {
	Store   store.Store
	Gateway verify.Gateway

	// Policy picks the verification destination. Defaults to the phone on
	// the user's record.
	Policy domain.DestinationPolicy

	// MaxAttempts bounds denied codes per login; zero is unbounded.
	MaxAttempts int
}

// Begin checks the credentials and starts the second factor. The gateway is
// only contacted once the password matches. If issuing the code fails the
// abandoned attempt is returned with the *verify.IssueError.
func (s *LoginService) Begin(ctx context.Context, username, password, phone string) (*LoginAttempt, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return s.StartVerification(ctx, user, phone)
}

// Authenticate checks username and password against the user store.
// Passwords are compared byte for byte.
func (s *LoginService) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		log.Info("login rejected", "username", username, "reason", "unknown user")
		return domain.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to look up user: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(user.Password), []byte(password)) != 1 {
		log.Info("login rejected", "username", username, "reason", "password mismatch")
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// StartVerification opens a two-factor session for an authenticated user.
// phone is only consulted under DestinationLogin.
func (s *LoginService) StartVerification(ctx context.Context, user domain.User, phone string) (*LoginAttempt, error) {
	log := slogx.FromContext(ctx)

	destination := s.destination(user, phone)
	session, err := NewSession(ctx, s.Gateway, destination, SessionOptions{MaxAttempts: s.MaxAttempts})
	attempt := &LoginAttempt{user: user, session: session}
	if err != nil {
		log.Warn("verification code not issued", "username", user.Username, "to", verify.MaskDestination(destination), "err", err)
		return attempt, err
	}

	log.Info("verification code issued", "username", user.Username, "to", verify.MaskDestination(destination))
	return attempt, nil
}

// AttemptLogin runs a whole login: credentials, code issuance, then prompts
// until the session is terminal. The returned error is reserved for
// failures outside the login flow itself, such as an unreachable user store.
func (s *LoginService) AttemptLogin(ctx context.Context, username, password, phone string, prompter CodePrompter) (domain.LoginResult, error) {
	attempt, err := s.Begin(ctx, username, password, phone)
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return domain.LoginResult{Kind: domain.ResultInvalidCredentials, Reason: ErrInvalidCredentials.Error()}, nil
	case attempt == nil:
		return domain.LoginResult{}, err
	}

	if err := s.promptUntilTerminal(ctx, attempt, prompter); err != nil {
		return domain.LoginResult{}, err
	}

	result, _ := attempt.Result()
	return result, nil
}

// promptUntilTerminal feeds codes from prompter into attempt. An error the
// session cannot classify cancels the attempt before it is returned.
func (s *LoginService) promptUntilTerminal(ctx context.Context, attempt *LoginAttempt, prompter CodePrompter) error {
	prompt := Prompt{Destination: verify.MaskDestination(attempt.Destination())}
	for !attempt.State().Terminal() {
		if ctx.Err() != nil {
			attempt.Cancel()
			return nil
		}

		code, ok := prompter.PromptCode(ctx, prompt)
		if !ok {
			attempt.Cancel()
			return nil
		}

		outcome, err := attempt.Submit(ctx, code)
		var checkErr *verify.CheckError
		switch {
		case errors.Is(err, ErrTooManyAttempts):
			// terminal; loop exits
		case errors.As(err, &checkErr):
			prompt.Notice = checkErr.Error()
		case err != nil:
			attempt.Cancel()
			return err
		case !outcome.Approved():
			prompt.Notice = NoticeInvalidCode
		}
	}
	return nil
}

func (s *LoginService) destination(user domain.User, phone string) string {
	if s.Policy == domain.DestinationLogin {
		if phone = strings.TrimSpace(phone); phone != "" {
			return phone
		}
	}
	return user.Phone
}

// LoginAttempt is one in-flight login whose password has matched. Methods
// are safe for concurrent use; calls are serialised.
type LoginAttempt struct {
	mu      sync.Mutex
	user    domain.User
	session *Session
}

// Submit forwards code to the session.
func (a *LoginAttempt) Submit(ctx context.Context, code string) (domain.Outcome, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	outcome, err := a.session.SubmitCode(ctx, code)
	if err == nil {
		slogx.FromContext(ctx).Info("verification code checked",
			"username", a.user.Username,
			"verdict", outcome.Verdict.String(),
			"status", outcome.Status,
		)
	}
	return outcome, err
}

// Cancel abandons the attempt, as when the user closes the prompt.
func (a *LoginAttempt) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session.Cancel()
}

func (a *LoginAttempt) State() domain.SessionState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session.State()
}

func (a *LoginAttempt) Username() string    { return a.user.Username }
func (a *LoginAttempt) Destination() string { return a.session.Destination() }

// Trail returns the session's state history.
func (a *LoginAttempt) Trail() []domain.SessionState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session.Trail()
}

// Result returns the final outcome once the session is terminal. ok is
// false while a code is still awaited.
func (a *LoginAttempt) Result() (domain.LoginResult, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch a.session.State() {
	case domain.StateApproved:
		return domain.LoginResult{Kind: domain.ResultAuthenticated, User: a.user}, true
	case domain.StateAbandoned:
		if cause := a.session.Cause(); cause != nil {
			return domain.LoginResult{Kind: domain.ResultTwoFactorFailed, Reason: cause.Error()}, true
		}
		return domain.LoginResult{Kind: domain.ResultCancelled}, true
	default:
		return domain.LoginResult{}, false
	}
}
