package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/starsys/internal/archive"
	"github.com/starford/starsys/internal/repository"
	"github.com/starford/starsys/internal/store"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// DefaultAdminSecret is used when no admin secret is configured.
const DefaultAdminSecret = "changeme"

// RenderDBPath is the database location on ephemeral Render deployments.
const RenderDBPath = "/tmp/star_systems.db"

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	SQLite    SQLiteConfig      `yaml:"sqlite"`
	Auth      AuthConfig        `yaml:"auth"`
	Archive   ArchiveConfig     `yaml:"archive"`
	Sync      SyncConfig        `yaml:"sync"`
	Inbox     InboxConfig       `yaml:"inbox"`
	CORS      CORSConfig        `yaml:"cors"`
	RateLimit RateLimitConfig   `yaml:"rate_limit"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validators := []interface{ Validate() error }{
		&c.App, &c.SQLite, &c.Auth, &c.Archive, &c.Sync, &c.Inbox, &c.RateLimit,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ApplyOverrides applies command-line and environment overrides on top of
// the loaded file. Empty values leave the config untouched; render moves the
// database to RenderDBPath unless db is also set.
func (c *Config) ApplyOverrides(db, adminSecret string, render bool) {
	switch {
	case db != "":
		c.SQLite.Path = db
	case render:
		c.SQLite.Path = RenderDBPath
	}
	if adminSecret != "" {
		c.Auth.Mode = AuthModeToken
		c.Auth.Token = adminSecret
	}
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
	// Driver is store.DriverCGO (default) or store.DriverPureGo.
	Driver string `yaml:"driver"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	if c.Driver == "" {
		c.Driver = store.DriverCGO
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Driver, validation.In(store.DriverCGO, store.DriverPureGo)),
	)
}

// AuthConfig holds authentication configuration for the admin endpoints.
//
// Mode controls how authentication is enforced:
//   - "disabled": admin endpoints are open, suitable for local dev.
//   - "token" (default): the shared admin secret is required; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeToken
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// UsesDefaultSecret reports whether the admin secret was never changed.
func (c *AuthConfig) UsesDefaultSecret() bool {
	return c.AuthEnabled() && c.Token == DefaultAdminSecret
}

// ArchiveConfig points at the upstream exoplanet archive.
type ArchiveConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Validate validates the archive configuration.
func (c *ArchiveConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URL, validation.Required),
		validation.Field(&c.Timeout, validation.Required, validation.Min(time.Second)),
	)
}

// SyncConfig controls archive synchronisation.
type SyncConfig struct {
	// AutoSyncWhenEmpty starts a background sync at startup when the
	// catalog holds no systems.
	AutoSyncWhenEmpty bool `yaml:"auto_sync_when_empty"`
	CommitEvery       int  `yaml:"commit_every"`
}

// Validate validates the sync configuration.
func (c *SyncConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.CommitEvery, validation.Min(1)),
	)
}

// InboxConfig enables the CSV drop folder.
type InboxConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Validate validates the inbox configuration.
func (c *InboxConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.When(c.Enabled, validation.Required)),
	)
}

// CORSConfig lists origins allowed to call the JSON API. Empty allows all.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// RateLimitConfig configures the per-client API rate limiter.
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	TrustProxy bool `yaml:"trust_proxy"`
}

// Validate validates the rate limit configuration.
func (c *RateLimitConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.RequestsPerSecond, validation.When(c.Enabled, validation.Required, validation.Min(0.01))),
		validation.Field(&c.Burst, validation.When(c.Enabled, validation.Required, validation.Min(1))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		SQLite: SQLiteConfig{
			Path:   "./data/star_systems.db",
			Driver: store.DriverCGO,
		},
		Auth: AuthConfig{
			Mode:  AuthModeToken,
			Token: DefaultAdminSecret,
		},
		Archive: ArchiveConfig{
			URL:     archive.DefaultURL,
			Timeout: archive.DefaultTimeout,
		},
		Sync: SyncConfig{
			AutoSyncWhenEmpty: true,
			CommitEvery:       repository.DefaultCommitEvery,
		},
		Inbox: InboxConfig{
			Enabled: false,
			Path:    "./data/inbox",
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 10,
			Burst:             20,
		},
	}
}
