package app

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/verify"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, driver string) Config {
	t.Helper()
	dir := t.TempDir()
	return Config{
		Env:                  "test",
		LogLevel:             "error",
		LogFormat:            "text",
		Port:                 8080,
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Minute,
		StoreDriver:          driver,
		DatabaseFile:         filepath.Join(dir, "accounts.db"),
		UsersCSVFile:         filepath.Join(dir, "users.csv"),
		VerifyProvider:       ProviderLocal,
		VerifyDestination:    "record",
		LoginAttemptTTL:      10 * time.Minute,
		PassTTL:              15 * time.Minute,
		PassIssuer:           "accounts-test",
		LogOutput:            &bytes.Buffer{},
	}
}

func TestNewWiresStoreDrivers(t *testing.T) {
	for _, driver := range []string{StoreDriverSQLite, StoreDriverCSV} {
		t.Run(driver, func(t *testing.T) {
			a, err := New(testConfig(t, driver))
			require.NoError(t, err)
			t.Cleanup(func() { _ = a.db.Close() })

			srv := httptest.NewServer(a.Handler())
			t.Cleanup(srv.Close)

			client := accountsdk.NewClient(srv.URL)
			ready, err := client.GetReadiness(t.Context())
			require.NoError(t, err)
			require.Equal(t, "ok", ready.Status)

			_, err = client.Register(t.Context(), accountsdk.RegisterRequest{
				Username: "alice",
				Password: "pw1",
				Phone:    "+15550001111",
			})
			require.NoError(t, err)

			n, err := a.db.Users().CountUsers(t.Context())
			require.NoError(t, err)
			require.EqualValues(t, 1, n)
		})
	}
}

func TestNewSelectsGateway(t *testing.T) {
	cfg := testConfig(t, StoreDriverSQLite)
	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.db.Close() })
	require.IsType(t, &verify.LocalGateway{}, a.gateway)

	cfg = testConfig(t, StoreDriverSQLite)
	cfg.VerifyProvider = ProviderTwilio
	b, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.db.Close() })
	require.IsType(t, &verify.TwilioGateway{}, b.gateway)
}

func TestRunShellQuits(t *testing.T) {
	a, err := New(testConfig(t, StoreDriverCSV))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, a.RunShell(t.Context(), strings.NewReader("r\ncarol\npw3\n+15550003333\nq\n"), &out))
	require.Contains(t, out.String(), "Registration successful!")
}

func TestSwaggerMounted(t *testing.T) {
	a, err := New(testConfig(t, StoreDriverSQLite))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.db.Close() })

	req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "/v1/login/{id}/verify")
}
