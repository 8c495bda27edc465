package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/echonotes/internal/dashboard"
	"github.com/starford/echonotes/internal/models"
	"github.com/starford/echonotes/internal/theme"
	"github.com/starford/echonotes/internal/vault"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Vault     VaultConfig       `yaml:"vault"`
	SQLite    SQLiteConfig      `yaml:"sqlite"`
	Auth      AuthConfig        `yaml:"auth"`
	Dashboard DashboardConfig   `yaml:"dashboard"`
	Graph     GraphConfig       `yaml:"graph"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Dashboard.Validate(); err != nil {
		return err
	}
	return c.Graph.Validate()
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

// VaultConfig holds the path to the Markdown vault directory.
type VaultConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
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

// DashboardConfig tunes the dashboard state and its persistence.
type DashboardConfig struct {
	// SaveDelay is the pause before an editor save is applied.
	SaveDelay time.Duration `yaml:"save_delay"`
	// SaveTimeout bounds one write to the vault, retries included.
	SaveTimeout time.Duration `yaml:"save_timeout"`
	// SaveRetries is the number of extra attempts after a failed write.
	SaveRetries int `yaml:"save_retries"`
	// SeedSamples writes the sample notes into an empty vault on start.
	SeedSamples bool `yaml:"seed_samples"`
	// DefaultColor is the theme base used when custom colors are off.
	DefaultColor string          `yaml:"default_color"`
	Folders      []models.Folder `yaml:"folders"`
}

// Validate validates the dashboard configuration.
func (c *DashboardConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.SaveDelay, validation.Min(time.Duration(0))),
		validation.Field(&c.SaveTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.SaveRetries, validation.Min(0), validation.Max(10)),
		validation.Field(&c.DefaultColor, validation.Required),
	); err != nil {
		return err
	}
	if _, err := theme.Resolve(c.DefaultColor); err != nil {
		return fmt.Errorf("dashboard: default_color: %w", err)
	}
	seen := make(map[string]struct{}, len(c.Folders))
	for _, f := range c.Folders {
		if f.ID == "" || f.Name == "" {
			return fmt.Errorf("dashboard: folders need an id and a name")
		}
		if _, dup := seen[f.ID]; dup {
			return fmt.Errorf("dashboard: duplicate folder id %q", f.ID)
		}
		seen[f.ID] = struct{}{}
	}
	return nil
}

// ShellConfig combines the dashboard and graph sections into the Shell tuning.
func (c *DashboardConfig) ShellConfig(g GraphConfig) dashboard.Config {
	return dashboard.Config{
		SaveDelay:      c.SaveDelay,
		SaveTimeout:    c.SaveTimeout,
		SaveRetries:    c.SaveRetries,
		DefaultColor:   c.DefaultColor,
		IndexThreshold: g.IndexThreshold,
	}
}

// GraphConfig tunes graph derivation and its change notifications.
type GraphConfig struct {
	// IndexThreshold switches link extraction to the inverted index above
	// this many active notes. Zero always scans.
	IndexThreshold int `yaml:"index_threshold"`
	// SSEThrottle is the minimum gap between graph.updated events.
	SSEThrottle time.Duration `yaml:"sse_throttle"`
}

// Validate validates the graph configuration.
func (c *GraphConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.IndexThreshold, validation.Min(0)),
		validation.Field(&c.SSEThrottle, validation.Required, validation.Min(10*time.Millisecond)),
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
		Vault: VaultConfig{
			Path: "./vault",
		},
		SQLite: SQLiteConfig{
			Path: "./echonotes.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Dashboard: DashboardConfig{
			SaveDelay:    500 * time.Millisecond,
			SaveTimeout:  5 * time.Second,
			SaveRetries:  2,
			SeedSamples:  true,
			DefaultColor: theme.DefaultColor,
			Folders:      vault.SampleFolders(),
		},
		Graph: GraphConfig{
			IndexThreshold: 200,
			SSEThrottle:    2 * time.Second,
		},
	}
}
