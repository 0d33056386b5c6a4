package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
)

// Settings holds the environment-sourced application configuration.
// It is populated once at startup and read-only afterwards.
type Settings struct {
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	SecretKey   string `env:"SECRET_KEY,required,notEmpty"`
	Algorithm   string `env:"ALGORITHM" envDefault:"HS256"`

	AccessTokenExpireMinutes int `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"30"`
	RefreshTokenExpireDays   int `env:"REFRESH_TOKEN_EXPIRE_DAYS" envDefault:"30"`

	AppName  string `env:"APP_NAME" envDefault:"User Authentication API"`
	Debug    bool   `env:"DEBUG" envDefault:"false"`
	Port     string `env:"PORT" envDefault:"8000"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	SentryDSN string `env:"SENTRY_DSN"`

	// Optional bootstrap admin account, created at startup when all three are set
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminUsername string `env:"ADMIN_USERNAME"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// AccessTokenTTL returns the access token lifetime
func (s *Settings) AccessTokenTTL() time.Duration {
	return time.Duration(s.AccessTokenExpireMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token lifetime
func (s *Settings) RefreshTokenTTL() time.Duration {
	return time.Duration(s.RefreshTokenExpireDays) * 24 * time.Hour
}

var (
	once    sync.Once
	cached  *Settings
	loadErr error
)

// Get returns the process-wide settings, parsing the environment on first
// call. Safe for unsynchronized reads afterwards because it is write-once.
func Get() (*Settings, error) {
	once.Do(func() {
		cached, loadErr = Parse()
	})
	return cached, loadErr
}

// Parse reads the settings from the environment without caching
func Parse() (*Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	switch s.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", s.Algorithm)
	}
	return &s, nil
}
