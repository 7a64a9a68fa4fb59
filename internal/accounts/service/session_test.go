package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/verify"
	"github.com/stretchr/testify/require"
)

const bobPhone = "+15550000001"

func TestSessionIssueFailureAbandons(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	gw := newStubGateway("123456")
	gw.issueErr = issueFailure()

	s, err := NewSession(ctx, gw, bobPhone, SessionOptions{})
	var issueErr *verify.IssueError
	require.ErrorAs(t, err, &issueErr)
	require.Equal(t, domain.StateAbandoned, s.State())
	require.False(t, s.Issued())
	require.Equal(t, []domain.SessionState{domain.StatePendingIssue, domain.StateAbandoned}, s.Trail())
	require.ErrorAs(t, s.Cause(), &issueErr)

	_, err = s.SubmitCode(ctx, "123456")
	require.ErrorIs(t, err, ErrInvalidState)

	_, checked := gw.calls()
	require.Zero(t, checked, "abandoned session must not reach the gateway")
}

func TestSessionDeniedThenApproved(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	gw := newStubGateway("123456")

	s, err := NewSession(ctx, gw, bobPhone, SessionOptions{})
	require.NoError(t, err)
	require.Equal(t, domain.StateAwaitingCode, s.State())

	outcome, err := s.SubmitCode(ctx, "000000")
	require.NoError(t, err)
	require.Equal(t, domain.Denied, outcome.Verdict)
	require.Equal(t, domain.StateAwaitingCode, s.State())
	require.Equal(t, 1, s.DeniedAttempts())

	outcome, err = s.SubmitCode(ctx, "123456")
	require.NoError(t, err)
	require.True(t, outcome.Approved())

	require.Equal(t, []domain.SessionState{
		domain.StatePendingIssue,
		domain.StateAwaitingCode,
		domain.StateAwaitingCode,
		domain.StateApproved,
	}, s.Trail())
}

func TestSessionApprovedIsTerminal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	gw := newStubGateway("123456")

	s, err := NewSession(ctx, gw, bobPhone, SessionOptions{})
	require.NoError(t, err)

	_, err = s.SubmitCode(ctx, "123456")
	require.NoError(t, err)

	_, err = s.SubmitCode(ctx, "123456")
	require.ErrorIs(t, err, ErrInvalidState)

	_, checked := gw.calls()
	require.Equal(t, 1, checked)

	s.Cancel()
	require.Equal(t, domain.StateApproved, s.State(), "cancel after approval is a no-op")
}

func TestSessionCheckErrorKeepsAwaiting(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	gw := newStubGateway("123456")

	s, err := NewSession(ctx, gw, bobPhone, SessionOptions{})
	require.NoError(t, err)

	gw.setCheckErr(checkFailure())
	_, err = s.SubmitCode(ctx, "123456")
	var checkErr *verify.CheckError
	require.ErrorAs(t, err, &checkErr)
	require.Equal(t, domain.StateAwaitingCode, s.State())
	require.Equal(t, 0, s.DeniedAttempts())
	require.Equal(t, []domain.SessionState{domain.StatePendingIssue, domain.StateAwaitingCode}, s.Trail())

	gw.setCheckErr(nil)
	outcome, err := s.SubmitCode(ctx, "123456")
	require.NoError(t, err)
	require.True(t, outcome.Approved())
}

func TestSessionMaxAttempts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	gw := newStubGateway("123456")

	s, err := NewSession(ctx, gw, bobPhone, SessionOptions{MaxAttempts: 2})
	require.NoError(t, err)

	_, err = s.SubmitCode(ctx, "000000")
	require.NoError(t, err)

	outcome, err := s.SubmitCode(ctx, "111111")
	require.ErrorIs(t, err, ErrTooManyAttempts)
	require.False(t, outcome.Approved())
	require.Equal(t, domain.StateAbandoned, s.State())
	require.ErrorIs(t, s.Cause(), ErrTooManyAttempts)

	_, err = s.SubmitCode(ctx, "123456")
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestSessionUnboundedByDefault(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	gw := newStubGateway()

	s, err := NewSession(ctx, gw, bobPhone, SessionOptions{})
	require.NoError(t, err)

	for range 25 {
		_, err := s.SubmitCode(ctx, "000000")
		require.NoError(t, err)
	}
	require.Equal(t, domain.StateAwaitingCode, s.State())
}

func TestSessionCancel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	gw := newStubGateway("123456")

	s, err := NewSession(ctx, gw, bobPhone, SessionOptions{})
	require.NoError(t, err)

	s.Cancel()
	require.Equal(t, domain.StateAbandoned, s.State())
	require.NoError(t, s.Cause())

	s.Cancel()
	require.Len(t, s.Trail(), 3)

	_, err = s.SubmitCode(ctx, "123456")
	require.ErrorIs(t, err, ErrInvalidState)
}
