package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
)

var ErrPassRevoked = errors.New("home pass has been signed out")

// PassService mints the short-lived signed pass the HTTP API hands out once
// a login is approved. Passes are not stored; signing out records the pass
// ID until it would have expired anyway.
type PassService struct {
	Issuer string
	TTL    time.Duration

	signer   jwtx.Signer
	keys     *jwtx.KeySet
	verifier *jwtx.Verifier

	mu      sync.Mutex
	revoked map[string]time.Time // jti -> exp
	now     func() time.Time
}

// NewPassService generates a fresh Ed25519 signing key. Passes do not
// survive a restart.
func NewPassService(issuer string, ttl time.Duration) (*PassService, error) {
	if ttl <= 0 {
		ttl = jwtx.DefaultPassTTL
	}

	key, err := cryptox.GeneratePassKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate pass key: %w", err)
	}
	signer, err := jwtx.NewSignerEdDSA(key.KID, key.PEM)
	if err != nil {
		return nil, fmt.Errorf("failed to load pass key: %w", err)
	}

	keys := jwtx.NewKeySet()
	if err := keys.AddSigner(signer); err != nil {
		return nil, fmt.Errorf("failed to register pass key: %w", err)
	}

	return &PassService{
		Issuer:   issuer,
		TTL:      ttl,
		signer:   signer,
		keys:     keys,
		verifier: jwtx.NewVerifier(keys, issuer, 5*time.Second),
		revoked:  make(map[string]time.Time),
		now:      time.Now,
	}, nil
}

// Mint issues a pass for an approved login.
func (s *PassService) Mint(user domain.User, attemptID string) (string, time.Time, error) {
	now := s.now().UTC()
	claims := jwtx.NewPassClaims(user.Username, attemptID, []string{jwtx.AMRPassword, jwtx.AMRSMS}, s.TTL, s.Issuer, now)

	token, err := s.signer.Sign(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign pass: %w", err)
	}
	return token, claims.ExpiresAt.Time, nil
}

// Verify checks a presented pass.
func (s *PassService) Verify(token string) (jwtx.Claims, error) {
	claims, err := s.verifier.Verify(token)
	if err != nil {
		return jwtx.Claims{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.revoked[claims.ID]; ok {
		return jwtx.Claims{}, ErrPassRevoked
	}
	return claims, nil
}

// Revoke signs the pass out.
func (s *PassService) Revoke(claims jwtx.Claims) {
	var exp time.Time
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	} else {
		exp = s.now().Add(s.TTL)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[claims.ID] = exp
}

// Sweep forgets revocations for passes that have expired.
func (s *PassService) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for jti, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, jti)
			removed++
		}
	}
	return removed
}

// Ready reports whether a signing key is loaded.
func (s *PassService) Ready() bool { return s.keys.IsReady() }

// PublicKeys is the key set passes verify against.
func (s *PassService) PublicKeys() jwtx.JWKS { return s.keys.PublicJWKS() }
