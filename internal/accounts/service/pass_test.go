package service

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestPassService(t *testing.T) {
	t.Parallel()

	passes, err := NewPassService("accounts-test", time.Minute)
	require.NoError(t, err)
	require.Len(t, passes.PublicKeys().Keys, 1)

	token, exp, err := passes.Mint(domain.User{Username: "bob"}, "01ATTEMPT")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Minute), exp, 5*time.Second)

	claims, err := passes.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "bob", claims.Username())
	require.Equal(t, "01ATTEMPT", claims.AttemptID)
	require.Equal(t, []string{jwtx.AMRPassword, jwtx.AMRSMS}, claims.AMR)

	passes.Revoke(claims)
	_, err = passes.Verify(token)
	require.ErrorIs(t, err, ErrPassRevoked)

	require.Zero(t, passes.Sweep(time.Now()))
	require.Equal(t, 1, passes.Sweep(exp.Add(time.Second)))
}

func TestPassServiceRejectsOtherKeys(t *testing.T) {
	t.Parallel()

	a, err := NewPassService("accounts-test", time.Minute)
	require.NoError(t, err)
	b, err := NewPassService("accounts-test", time.Minute)
	require.NoError(t, err)

	token, _, err := a.Mint(domain.User{Username: "bob"}, "")
	require.NoError(t, err)

	_, err = b.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrUnknownKID)
}
