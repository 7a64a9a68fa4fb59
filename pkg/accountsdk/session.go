package accountsdk

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"
)

// ErrSignedOut is returned by Session methods after SignOut.
var ErrSignedOut = errors.New("session has been signed out")

// Session holds a home pass. Passes are not refreshed; once one expires the
// user logs in again.
type Session struct {
	client   *Client
	username string

	mu        sync.RWMutex
	pass      string
	expiresAt time.Time
}

func newSession(client *Client, resp *VerifyResponse) *Session {
	return &Session{
		client:    client,
		username:  resp.Username,
		pass:      resp.Pass,
		expiresAt: time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}
}

func (s *Session) Username() string { return s.username }

// Pass returns the bearer pass, or "" after SignOut.
func (s *Session) Pass() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pass
}

// ExpiresAt is the client-side estimate of when the pass stops working.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// Home fetches the authenticated landing view.
func (s *Session) Home(ctx context.Context) (*HomeResponse, error) {
	pass := s.Pass()
	if pass == "" {
		return nil, ErrSignedOut
	}

	resp, err := s.client.doRequest(ctx, http.MethodGet, "/v1/home", nil, pass)
	if err != nil {
		return nil, err
	}

	var out HomeResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out, nil
}

// SignOut revokes the pass on the server and forgets it locally.
func (s *Session) SignOut(ctx context.Context) error {
	pass := s.Pass()
	if pass == "" {
		return ErrSignedOut
	}

	resp, err := s.client.doRequest(ctx, http.MethodPost, "/v1/signout", nil, pass)
	if err != nil {
		return err
	}
	if err := checkStatusNoContent(resp); err != nil {
		return err
	}

	s.mu.Lock()
	s.pass = ""
	s.mu.Unlock()
	return nil
}
