package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	accountshttp "github.com/aussiebroadwan/accounts/internal/accounts/http"
	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/internal/accounts/store/drivers/sqlite"
	"github.com/aussiebroadwan/accounts/internal/accounts/verify"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
	"github.com/stretchr/testify/require"
)

// outbox records the last code sent to each destination.
type outbox struct {
	mu    sync.Mutex
	codes map[string]string
	sent  int
}

func (o *outbox) Dispatch(_ context.Context, req domain.VerificationRequest, code string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.codes[req.Destination] = code
	o.sent++
	return nil
}

func (o *outbox) code(t *testing.T, destination string) string {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	code, ok := o.codes[destination]
	require.True(t, ok, "no code sent to %s", destination)
	return code
}

func (o *outbox) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sent
}

type testServer struct {
	client *accountsdk.Client
	outbox *outbox
}

func setupServer(t *testing.T, maxAttempts int) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	box := &outbox{codes: make(map[string]string)}
	logins := &service.LoginService{
		Store:       st,
		Gateway:     verify.NewLocalGateway(box),
		MaxAttempts: maxAttempts,
	}
	passes, err := service.NewPassService("accounts-test", 0)
	require.NoError(t, err)

	router := accountshttp.NewRouter("test", st, slogx.Discard())
	router.RegistrationService = &service.RegistrationService{Store: st}
	router.Attempts = service.NewAttemptRegistry(logins, 0)
	router.PassService = passes
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{client: accountsdk.NewClient(srv.URL), outbox: box}
}

func (s *testServer) register(t *testing.T, username, password, phone string) {
	t.Helper()
	_, err := s.client.Register(t.Context(), accountsdk.RegisterRequest{
		Username: username,
		Password: password,
		Phone:    phone,
	})
	require.NoError(t, err)
}

func wrongCode(code string) string {
	if code[len(code)-1] == '0' {
		return code[:len(code)-1] + "1"
	}
	return code[:len(code)-1] + "0"
}

func TestRegister(t *testing.T) {
	s := setupServer(t, 0)

	resp, err := s.client.Register(t.Context(), accountsdk.RegisterRequest{
		Username: "alice",
		Password: "pw1",
		Phone:    "+15550001111",
	})
	require.NoError(t, err)
	require.Equal(t, "alice", resp.Username)
	require.Equal(t, "+1******1111", resp.Phone)
	require.False(t, resp.CreatedAt.IsZero())

	_, err = s.client.Register(t.Context(), accountsdk.RegisterRequest{
		Username: "alice",
		Password: "other",
		Phone:    "+15559999999",
	})
	require.ErrorIs(t, err, accountsdk.ErrDuplicateUsername)

	_, err = s.client.Register(t.Context(), accountsdk.RegisterRequest{
		Username: "carol",
		Password: "",
		Phone:    "+15553333333",
	})
	require.ErrorIs(t, err, accountsdk.ErrMissingField)

	require.Zero(t, s.outbox.count(), "registration must not send codes")
}

func TestLoginFlow(t *testing.T) {
	s := setupServer(t, 0)
	s.register(t, "bob", "pw2", "+15550002222")

	attempt, err := s.client.Login(t.Context(), accountsdk.LoginRequest{
		Username: "bob",
		Password: "pw2",
		Phone:    "+15550002222",
	})
	require.NoError(t, err)
	require.NotEmpty(t, attempt.AttemptID)
	require.Equal(t, "+1******2222", attempt.Destination)
	require.Equal(t, "awaiting_code", attempt.State)

	code := s.outbox.code(t, "+15550002222")

	_, err = s.client.Verify(t.Context(), attempt.AttemptID, wrongCode(code))
	require.ErrorIs(t, err, accountsdk.ErrInvalidCode)

	session, err := s.client.Verify(t.Context(), attempt.AttemptID, code)
	require.NoError(t, err)
	require.Equal(t, "bob", session.Username())
	require.NotEmpty(t, session.Pass())

	home, err := session.Home(t.Context())
	require.NoError(t, err)
	require.Equal(t, accountshttp.HomeMessage, home.Message)
	require.Equal(t, "bob", home.Username)

	// The attempt is gone once approved.
	_, err = s.client.Verify(t.Context(), attempt.AttemptID, code)
	require.ErrorIs(t, err, accountsdk.ErrAttemptNotFound)

	pass := session.Pass()
	require.NoError(t, session.SignOut(t.Context()))

	stale := s.client.NewSessionFromPass("bob", pass, session.ExpiresAt())
	_, err = stale.Home(t.Context())
	require.ErrorIs(t, err, accountsdk.ErrInvalidToken)
}

func TestLoginInvalidCredentials(t *testing.T) {
	s := setupServer(t, 0)
	s.register(t, "bob", "pw2", "+15550002222")

	_, err := s.client.Login(t.Context(), accountsdk.LoginRequest{Username: "bob", Password: "wrong", Phone: "+15550002222"})
	require.ErrorIs(t, err, accountsdk.ErrInvalidCredentials)

	_, err = s.client.Login(t.Context(), accountsdk.LoginRequest{Username: "nobody", Password: "pw2", Phone: "+15550002222"})
	require.ErrorIs(t, err, accountsdk.ErrInvalidCredentials)

	require.Zero(t, s.outbox.count(), "no code may be sent before the password matches")
}

func TestLoginInProgressAndCancel(t *testing.T) {
	s := setupServer(t, 0)
	s.register(t, "bob", "pw2", "+15550002222")

	req := accountsdk.LoginRequest{Username: "bob", Password: "pw2", Phone: "+15550002222"}
	first, err := s.client.Login(t.Context(), req)
	require.NoError(t, err)

	_, err = s.client.Login(t.Context(), req)
	require.ErrorIs(t, err, accountsdk.ErrLoginInProgress)

	require.NoError(t, s.client.CancelLogin(t.Context(), first.AttemptID))
	require.ErrorIs(t, s.client.CancelLogin(t.Context(), first.AttemptID), accountsdk.ErrAttemptNotFound)

	_, err = s.client.Verify(t.Context(), first.AttemptID, "123456")
	require.ErrorIs(t, err, accountsdk.ErrAttemptNotFound)

	second, err := s.client.Login(t.Context(), req)
	require.NoError(t, err)
	require.NotEqual(t, first.AttemptID, second.AttemptID)
}

func TestVerifyTooManyAttempts(t *testing.T) {
	s := setupServer(t, 2)
	s.register(t, "bob", "pw2", "+15550002222")

	attempt, err := s.client.Login(t.Context(), accountsdk.LoginRequest{Username: "bob", Password: "pw2", Phone: "+15550002222"})
	require.NoError(t, err)
	bad := wrongCode(s.outbox.code(t, "+15550002222"))

	_, err = s.client.Verify(t.Context(), attempt.AttemptID, bad)
	require.ErrorIs(t, err, accountsdk.ErrInvalidCode)

	_, err = s.client.Verify(t.Context(), attempt.AttemptID, bad)
	require.ErrorIs(t, err, accountsdk.ErrTooManyAttempts)

	_, err = s.client.Verify(t.Context(), attempt.AttemptID, bad)
	require.ErrorIs(t, err, accountsdk.ErrAttemptNotFound)
}

func TestVerifyUnknownAttempt(t *testing.T) {
	s := setupServer(t, 0)

	_, err := s.client.Verify(t.Context(), "not-an-id", "123456")
	require.ErrorIs(t, err, accountsdk.ErrAttemptNotFound)

	_, err = s.client.Verify(t.Context(), "01J9Z7Q4D8X2Y6N5K3M1P0R9ST", "123456")
	require.ErrorIs(t, err, accountsdk.ErrAttemptNotFound)
}

func TestHomeRequiresPass(t *testing.T) {
	s := setupServer(t, 0)

	session := s.client.NewSessionFromPass("mallory", "not-a-pass", time.Now().Add(time.Minute))
	_, err := session.Home(t.Context())
	require.ErrorIs(t, err, accountsdk.ErrInvalidToken)
}

func TestHealthAndJWKS(t *testing.T) {
	s := setupServer(t, 0)

	live, err := s.client.GetLiveness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	ready, err := s.client.GetReadiness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Store)
	require.Equal(t, "ok", ready.Checks.Signer)

	jwks, err := s.client.GetJWKS(t.Context())
	require.NoError(t, err)
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, "EdDSA", jwks.Keys[0].Alg)
}

func TestRequestIDEchoed(t *testing.T) {
	s := setupServer(t, 0)

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, s.client.BaseURL+"/livez", nil)
	require.NoError(t, err)
	req.Header.Set(slogx.RequestIDHeader, "req-123")

	resp, err := s.client.HTTPClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "req-123", resp.Header.Get(slogx.RequestIDHeader))
}
