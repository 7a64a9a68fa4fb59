package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)

	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 10*time.Second, cfg.ShutdownGracePeriod)
	require.Equal(t, time.Minute, cfg.HousekeepingInterval)
	require.Equal(t, StoreDriverSQLite, cfg.StoreDriver)
	require.Equal(t, "accounts.db", cfg.DatabaseFile)
	require.Equal(t, "users.csv", cfg.UsersCSVFile)
	require.Equal(t, ProviderTwilio, cfg.VerifyProvider)
	require.Equal(t, "https://verify.twilio.com", cfg.TwilioBaseURL)
	require.Equal(t, domain.DestinationRecord, cfg.DestinationPolicy())
	require.Zero(t, cfg.VerifyMaxAttempts)
	require.Equal(t, 10*time.Minute, cfg.LoginAttemptTTL)
	require.Equal(t, uint32(5), cfg.BreakerMaxFailures)
	require.Equal(t, 30*time.Second, cfg.BreakerOpenTimeout)
	require.Equal(t, 15*time.Minute, cfg.PassTTL)
	require.Equal(t, "accounts", cfg.PassIssuer)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("USER_STORE_DRIVER", "csv")
	t.Setenv("VERIFY_PROVIDER", "local")
	t.Setenv("VERIFY_DESTINATION", "login")
	t.Setenv("VERIFY_MAX_ATTEMPTS", "3")
	t.Setenv("PASS_TTL", "5m")

	cfg, err := loadConfig(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, StoreDriverCSV, cfg.StoreDriver)
	require.Equal(t, ProviderLocal, cfg.VerifyProvider)
	require.Equal(t, domain.DestinationLogin, cfg.DestinationPolicy())
	require.Equal(t, 3, cfg.VerifyMaxAttempts)
	require.Equal(t, 5*time.Minute, cfg.PassTTL)
}

func TestLoadConfigEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("TWILIO_ACCOUNT_SID=AC123\nLOG_LEVEL=debug\n"), 0o600))

	cfg, err := loadConfig(envFile)
	require.NoError(t, err)
	require.Equal(t, "AC123", cfg.TwilioAccountSID)
	require.Equal(t, "debug", cfg.LogLevel)

	// The environment wins over the file.
	t.Setenv("LOG_LEVEL", "warn")
	cfg, err = loadConfig(envFile)
	require.NoError(t, err)
	require.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"USER_STORE_DRIVER": "postgres"}},
		{"unknown provider", map[string]string{"VERIFY_PROVIDER": "carrier-pigeon"}},
		{"local provider in prod", map[string]string{"VERIFY_PROVIDER": "local", "ENV": "prod"}},
		{"unknown destination", map[string]string{"VERIFY_DESTINATION": "anywhere"}},
		{"port out of range", map[string]string{"PORT": "70000"}},
		{"negative attempts", map[string]string{"VERIFY_MAX_ATTEMPTS": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := loadConfig(filepath.Join(t.TempDir(), ".env"))
			require.Error(t, err)
		})
	}
}
