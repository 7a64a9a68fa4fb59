package accountsdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a client for the accounts service's public endpoints.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new accounts service client.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Register creates a user.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/register", req, "")
	if err != nil {
		return nil, err
	}

	var out RegisterResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}

	return &out, nil
}

// Login checks the credentials and has a code sent. The returned attempt is
// completed with Verify or dropped with CancelLogin.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/login", req, "")
	if err != nil {
		return nil, err
	}

	var out LoginResponse
	if err := decodeJSON(resp, &out, http.StatusAccepted); err != nil {
		return nil, err
	}

	return &out, nil
}

// Verify submits code for attemptID. A denied code returns ErrInvalidCode and
// the attempt stays open.
func (c *Client) Verify(ctx context.Context, attemptID, code string) (*Session, error) {
	path := "/v1/login/" + url.PathEscape(attemptID) + "/verify"
	resp, err := c.doRequest(ctx, http.MethodPost, path, VerifyRequest{Code: code}, "")
	if err != nil {
		return nil, err
	}

	var out VerifyResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return newSession(c, &out), nil
}

// CancelLogin abandons attemptID, as when the user closes the code prompt.
func (c *Client) CancelLogin(ctx context.Context, attemptID string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, "/v1/login/"+url.PathEscape(attemptID), nil, "")
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// NewSessionFromPass wraps a pass obtained earlier.
func (c *Client) NewSessionFromPass(username, pass string, expiresAt time.Time) *Session {
	return &Session{client: c, username: username, pass: pass, expiresAt: expiresAt}
}
