package app

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/spf13/viper"
)

const (
	StoreDriverSQLite = "sqlite"
	StoreDriverCSV    = "csv"

	ProviderTwilio = "twilio"
	ProviderLocal  = "local"
)

type Config struct {
	Env                  string        `mapstructure:"ENV"`                   // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        `mapstructure:"LOG_LEVEL"`             // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        `mapstructure:"LOG_FORMAT"`            // Log format (json, text) (default: json)
	Port                 int           `mapstructure:"PORT"`                  // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration `mapstructure:"SHUTDOWN_GRACE_PERIOD"` // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration `mapstructure:"HOUSEKEEPING_INTERVAL"` // Attempt sweep interval (default: 1m)

	StoreDriver  string `mapstructure:"USER_STORE_DRIVER"` // sqlite or csv (default: sqlite)
	DatabaseFile string `mapstructure:"DATABASE_FILE"`     // SQLite database path (default: ./accounts.db)
	UsersCSVFile string `mapstructure:"USERS_CSV_FILE"`    // CSV user file path (default: ./users.csv)

	VerifyProvider     string        `mapstructure:"VERIFY_PROVIDER"`          // twilio or local (default: twilio)
	TwilioAccountSID   string        `mapstructure:"TWILIO_ACCOUNT_SID"`       // Required for twilio
	TwilioAuthToken    string        `mapstructure:"TWILIO_AUTH_TOKEN"`        // Required for twilio
	TwilioServiceSID   string        `mapstructure:"TWILIO_VERIFY_SERVICE_ID"` // Required for twilio
	TwilioBaseURL      string        `mapstructure:"TWILIO_BASE_URL"`          // Optional: API base URL override
	VerifyDestination  string        `mapstructure:"VERIFY_DESTINATION"`       // record or login (default: record)
	VerifyMaxAttempts  int           `mapstructure:"VERIFY_MAX_ATTEMPTS"`      // Denied codes per login, 0 is unbounded (default: 0)
	LoginAttemptTTL    time.Duration `mapstructure:"LOGIN_ATTEMPT_TTL"`        // How long an HTTP login waits for its code (default: 10m)
	BreakerMaxFailures uint32        `mapstructure:"BREAKER_MAX_FAILURES"`     // Consecutive provider failures before failing fast (default: 5)
	BreakerOpenTimeout time.Duration `mapstructure:"BREAKER_OPEN_TIMEOUT"`     // How long the breaker stays open (default: 30s)

	PassTTL    time.Duration `mapstructure:"PASS_TTL"`    // Home pass lifetime (default: 15m)
	PassIssuer string        `mapstructure:"PASS_ISSUER"` // iss claim on home passes (default: accounts)

	// LogOutput overrides where logs go. Not read from the environment.
	LogOutput io.Writer `mapstructure:"-"`
}

// LoadConfig reads .env (if present), then the environment. Environment
// variables override .env.
func LoadConfig() (Config, error) {
	return loadConfig(".env")
}

func loadConfig(envFile string) (Config, error) {
	v := viper.New()

	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	_ = v.ReadInConfig() // a missing .env is fine

	v.AutomaticEnv()

	v.SetDefault("ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("PORT", 8080)
	v.SetDefault("SHUTDOWN_GRACE_PERIOD", "10s")
	v.SetDefault("HOUSEKEEPING_INTERVAL", "1m")
	v.SetDefault("USER_STORE_DRIVER", StoreDriverSQLite)
	v.SetDefault("DATABASE_FILE", "accounts.db")
	v.SetDefault("USERS_CSV_FILE", "users.csv")
	v.SetDefault("VERIFY_PROVIDER", ProviderTwilio)
	v.SetDefault("TWILIO_ACCOUNT_SID", "")
	v.SetDefault("TWILIO_AUTH_TOKEN", "")
	v.SetDefault("TWILIO_VERIFY_SERVICE_ID", "")
	v.SetDefault("TWILIO_BASE_URL", "https://verify.twilio.com")
	v.SetDefault("VERIFY_DESTINATION", string(domain.DestinationRecord))
	v.SetDefault("VERIFY_MAX_ATTEMPTS", 0)
	v.SetDefault("LOGIN_ATTEMPT_TTL", "10m")
	v.SetDefault("BREAKER_MAX_FAILURES", 5)
	v.SetDefault("BREAKER_OPEN_TIMEOUT", "30s")
	v.SetDefault("PASS_TTL", "15m")
	v.SetDefault("PASS_ISSUER", "accounts")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the application cannot start with.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverSQLite, StoreDriverCSV:
	default:
		return fmt.Errorf("config: USER_STORE_DRIVER must be %q or %q, got %q", StoreDriverSQLite, StoreDriverCSV, c.StoreDriver)
	}

	switch c.VerifyProvider {
	case ProviderTwilio, ProviderLocal:
	default:
		return fmt.Errorf("config: VERIFY_PROVIDER must be %q or %q, got %q", ProviderTwilio, ProviderLocal, c.VerifyProvider)
	}

	if c.VerifyProvider == ProviderLocal && c.Env == "prod" {
		return errors.New("config: VERIFY_PROVIDER=local must not be used when ENV=prod")
	}

	switch domain.DestinationPolicy(c.VerifyDestination) {
	case domain.DestinationRecord, domain.DestinationLogin:
	default:
		return fmt.Errorf("config: VERIFY_DESTINATION must be %q or %q, got %q", domain.DestinationRecord, domain.DestinationLogin, c.VerifyDestination)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: PORT out of range: %d", c.Port)
	}
	if c.VerifyMaxAttempts < 0 {
		return errors.New("config: VERIFY_MAX_ATTEMPTS must not be negative")
	}
	return nil
}

// DestinationPolicy is the parsed VERIFY_DESTINATION.
func (c Config) DestinationPolicy() domain.DestinationPolicy {
	return domain.ParseDestinationPolicy(c.VerifyDestination)
}
