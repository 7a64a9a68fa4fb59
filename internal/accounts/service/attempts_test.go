package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/verify"
	"github.com/aussiebroadwan/accounts/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T, gw *stubGateway) (*AttemptRegistry, *time.Time) {
	t.Helper()

	r := NewAttemptRegistry(newLoginService(t, gw), time.Minute)
	now := time.Unix(1700000000, 0)
	r.now = func() time.Time { return now }
	return r, &now
}

func TestRegistryStartAndApprove(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r, _ := newRegistry(t, newStubGateway("123456"))

	id, attempt, err := r.Start(ctx, "bob", "secret", "")
	require.NoError(t, err)
	require.False(t, id.IsZero())
	require.Equal(t, domain.StateAwaitingCode, attempt.State())

	got, err := r.Get(id)
	require.NoError(t, err)
	require.Same(t, attempt, got)

	_, outcome, err := r.Submit(ctx, id, "000000")
	require.NoError(t, err)
	require.False(t, outcome.Approved())
	require.Equal(t, 1, r.Len())

	attempt, outcome, err = r.Submit(ctx, id, "123456")
	require.NoError(t, err)
	require.True(t, outcome.Approved())

	result, done := attempt.Result()
	require.True(t, done)
	require.True(t, result.Authenticated())

	_, err = r.Get(id)
	require.ErrorIs(t, err, ErrAttemptNotFound)
	require.Zero(t, r.Len())
}

func TestRegistryOneLiveAttemptPerUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	gw := newStubGateway("123456")
	r, _ := newRegistry(t, gw)

	id, _, err := r.Start(ctx, "bob", "secret", "")
	require.NoError(t, err)

	_, _, err = r.Start(ctx, "bob", "secret", "")
	require.ErrorIs(t, err, ErrLoginInProgress)

	// Credentials are checked before the in-progress rule.
	_, _, err = r.Start(ctx, "bob", "wrong", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// Other users are unaffected.
	_, _, err = r.Start(ctx, "alice", "pw1", "")
	require.NoError(t, err)

	require.NoError(t, r.Cancel(id))
	_, _, err = r.Start(ctx, "bob", "secret", "")
	require.NoError(t, err)

	issued, _ := gw.calls()
	require.Equal(t, 3, issued)
}

func TestRegistryCancel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r, _ := newRegistry(t, newStubGateway("123456"))

	id, attempt, err := r.Start(ctx, "bob", "secret", "")
	require.NoError(t, err)

	require.NoError(t, r.Cancel(id))
	result, done := attempt.Result()
	require.True(t, done)
	require.Equal(t, domain.ResultCancelled, result.Kind)

	require.ErrorIs(t, r.Cancel(id), ErrAttemptNotFound)
	_, _, err = r.Submit(ctx, id, "123456")
	require.ErrorIs(t, err, ErrAttemptNotFound)
}

func TestRegistryIssueFailureNotTracked(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	gw := newStubGateway("123456")
	gw.issueErr = issueFailure()
	r, _ := newRegistry(t, gw)

	id, attempt, err := r.Start(ctx, "bob", "secret", "")
	var issueErr *verify.IssueError
	require.ErrorAs(t, err, &issueErr)
	require.True(t, id.IsZero())
	require.Equal(t, domain.StateAbandoned, attempt.State())
	require.Zero(t, r.Len())

	gw.issueErr = nil
	_, _, err = r.Start(ctx, "bob", "secret", "")
	require.NoError(t, err, "a failed issue must not block the next login")
}

func TestRegistryTooManyAttemptsRemoves(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r, _ := newRegistry(t, newStubGateway("123456"))
	r.Logins.MaxAttempts = 1

	id, _, err := r.Start(ctx, "bob", "secret", "")
	require.NoError(t, err)

	attempt, _, err := r.Submit(ctx, id, "000000")
	require.ErrorIs(t, err, ErrTooManyAttempts)
	result, _ := attempt.Result()
	require.Equal(t, domain.ResultTwoFactorFailed, result.Kind)
	require.Zero(t, r.Len())
}

func TestRegistryExpiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r, now := newRegistry(t, newStubGateway("123456"))

	id, attempt, err := r.Start(ctx, "bob", "secret", "")
	require.NoError(t, err)

	*now = now.Add(r.TTL)
	_, err = r.Get(id)
	require.ErrorIs(t, err, ErrAttemptNotFound)
	require.Equal(t, domain.StateAbandoned, attempt.State())

	// An expired attempt no longer blocks the user.
	_, _, err = r.Start(ctx, "bob", "secret", "")
	require.NoError(t, err)
}

func TestRegistrySweep(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r, now := newRegistry(t, newStubGateway("123456"))

	_, old, err := r.Start(ctx, "bob", "secret", "")
	require.NoError(t, err)

	*now = now.Add(30 * time.Second)
	fresh, _, err := r.Start(ctx, "alice", "pw1", "")
	require.NoError(t, err)

	require.Zero(t, r.Sweep(now.Add(29*time.Second)))
	require.Equal(t, 1, r.Sweep(now.Add(30*time.Second)))
	require.Equal(t, domain.StateAbandoned, old.State())

	_, err = r.Get(fresh)
	require.NoError(t, err)
}

func TestRegistryUnknownID(t *testing.T) {
	t.Parallel()
	r, _ := newRegistry(t, newStubGateway())

	_, err := r.Get(idx.New())
	require.ErrorIs(t, err, ErrAttemptNotFound)
}
