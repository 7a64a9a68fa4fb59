package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/pkg/idx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

// DefaultAttemptTTL matches the provider's code lifetime.
const DefaultAttemptTTL = 10 * time.Minute

var (
	ErrLoginInProgress = errors.New("a login is already awaiting a verification code")
	ErrAttemptNotFound = errors.New("login attempt not found")
)

// AttemptRegistry keeps in-flight logins between HTTP requests. A user has at
// most one live attempt: a second login for the same username is refused
// until the first is approved, cancelled or expires.
type AttemptRegistry struct {
	Logins *LoginService
	TTL    time.Duration

	mu       sync.Mutex
	attempts map[idx.ID]*attemptEntry
	byUser   map[string]idx.ID
	now      func() time.Time
}

type attemptEntry struct {
	attempt   *LoginAttempt // nil while the code is being issued
	expiresAt time.Time
}

func NewAttemptRegistry(logins *LoginService, ttl time.Duration) *AttemptRegistry {
	if ttl <= 0 {
		ttl = DefaultAttemptTTL
	}
	return &AttemptRegistry{
		Logins:   logins,
		TTL:      ttl,
		attempts: make(map[idx.ID]*attemptEntry),
		byUser:   make(map[string]idx.ID),
		now:      time.Now,
	}
}

// Start authenticates the user and issues a code. The attempt is only kept
// when the code was issued; an issue failure returns the abandoned attempt
// and the *verify.IssueError with a zero ID.
func (r *AttemptRegistry) Start(ctx context.Context, username, password, phone string) (idx.ID, *LoginAttempt, error) {
	user, err := r.Logins.Authenticate(ctx, username, password)
	if err != nil {
		return idx.Zero, nil, err
	}

	id, err := r.reserve(user.Username)
	if err != nil {
		return idx.Zero, nil, err
	}

	ctx = slogx.With(ctx, "attempt_id", id.String())
	attempt, err := r.Logins.StartVerification(ctx, user, phone)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil || attempt.State().Terminal() {
		r.drop(id)
		return idx.Zero, attempt, err
	}
	r.attempts[id].attempt = attempt
	return id, attempt, nil
}

// Get returns a live attempt.
func (r *AttemptRegistry) Get(id idx.ID) (*LoginAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookup(id)
}

// Submit checks code for attempt id. Attempts that reach a terminal state
// are removed, so the returned attempt is the only handle left on them.
func (r *AttemptRegistry) Submit(ctx context.Context, id idx.ID, code string) (*LoginAttempt, domain.Outcome, error) {
	attempt, err := r.Get(id)
	if err != nil {
		return nil, domain.Outcome{}, err
	}

	ctx = slogx.With(ctx, "attempt_id", id.String())
	outcome, err := attempt.Submit(ctx, code)

	if attempt.State().Terminal() {
		r.mu.Lock()
		r.drop(id)
		r.mu.Unlock()
	}
	return attempt, outcome, err
}

// Cancel abandons and forgets attempt id.
func (r *AttemptRegistry) Cancel(id idx.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	attempt, err := r.lookup(id)
	if err != nil {
		return err
	}
	attempt.Cancel()
	r.drop(id)
	return nil
}

// Sweep cancels and drops every attempt that expired at or before now and
// reports how many were removed.
func (r *AttemptRegistry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, e := range r.attempts {
		if e.attempt == nil || now.Before(e.expiresAt) {
			continue
		}
		e.attempt.Cancel()
		r.drop(id)
		removed++
	}
	return removed
}

// Len is the number of tracked attempts.
func (r *AttemptRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.attempts)
}

func (r *AttemptRegistry) reserve(username string) (idx.ID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if existing, ok := r.byUser[username]; ok {
		e := r.attempts[existing]
		switch {
		case e.attempt == nil:
			return idx.Zero, ErrLoginInProgress
		case !e.attempt.State().Terminal() && now.Before(e.expiresAt):
			return idx.Zero, ErrLoginInProgress
		}
		e.attempt.Cancel()
		r.drop(existing)
	}

	id := idx.NewAt(now.UTC())
	r.attempts[id] = &attemptEntry{expiresAt: now.Add(r.TTL)}
	r.byUser[username] = id
	return id, nil
}

// lookup must be called with r.mu held.
func (r *AttemptRegistry) lookup(id idx.ID) (*LoginAttempt, error) {
	e, ok := r.attempts[id]
	if !ok || e.attempt == nil {
		return nil, ErrAttemptNotFound
	}
	if !r.now().Before(e.expiresAt) {
		e.attempt.Cancel()
		r.drop(id)
		return nil, ErrAttemptNotFound
	}
	return e.attempt, nil
}

// drop must be called with r.mu held.
func (r *AttemptRegistry) drop(id idx.ID) {
	e, ok := r.attempts[id]
	if !ok {
		return
	}
	delete(r.attempts, id)
	if e.attempt != nil {
		if r.byUser[e.attempt.Username()] == id {
			delete(r.byUser, e.attempt.Username())
		}
		return
	}
	for name, owner := range r.byUser {
		if owner == id {
			delete(r.byUser, name)
		}
	}
}
