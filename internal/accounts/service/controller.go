package service

import (
	"context"
	"errors"
	"sync"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

var ErrAlreadyLoggedIn = errors.New("already logged in")

// Controller owns the application state for a single-user front end such as
// the terminal shell. Screens ask it what to show instead of holding
// references to each other.
type Controller struct {
	Logins *LoginService

	mu    sync.Mutex
	state domain.AppState
	busy  bool
}

func NewController(logins *LoginService) *Controller {
	return &Controller{Logins: logins, state: domain.LoggedOut()}
}

func (c *Controller) State() domain.AppState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Login runs a full login from the LoggedOut state. Only an authenticated
// result changes the state. While one login is prompting for a code another
// is refused with ErrLoginInProgress.
func (c *Controller) Login(ctx context.Context, username, password, phone string, prompter CodePrompter) (domain.LoginResult, error) {
	c.mu.Lock()
	switch {
	case c.state.LoggedIn():
		c.mu.Unlock()
		return domain.LoginResult{}, ErrAlreadyLoggedIn
	case c.busy:
		c.mu.Unlock()
		return domain.LoginResult{}, ErrLoginInProgress
	}
	c.busy = true
	c.mu.Unlock()

	result, err := c.Logins.AttemptLogin(ctx, username, password, phone, prompter)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if err == nil && result.Authenticated() {
		c.state = domain.AuthenticatedAs(result.User)
	}
	return result, err
}

// SignOut returns to the login screen. Signing out while logged out is a
// no-op.
func (c *Controller) SignOut(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if u, ok := c.state.User(); ok {
		slogx.FromContext(ctx).Info("signed out", "username", u.Username)
	}
	c.state = domain.LoggedOut()
}
