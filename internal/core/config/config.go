// Package config handles configuration loading and validation for tally.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/tally/internal/core/access"
	"github.com/colonyops/tally/internal/core/styles"
)

// Backend kinds.
const (
	BackendSQLite   = "sqlite"
	BackendDynamoDB = "dynamodb"
)

// DefaultRole is used when no --role is given.
const DefaultRole = "admin"

// Config holds the application configuration.
type Config struct {
	Backend  BackendConfig             `yaml:"backend"`
	Database DatabaseConfig            `yaml:"database"`
	Roles    map[string][]access.Grant `yaml:"roles"`
	Entities map[string]EntityConfig   `yaml:"entities"`
	TUI      TUIConfig                 `yaml:"tui"`
	// Notifications controls the persisted notification history.
	Notifications NotificationsConfig `yaml:"notifications"`
	DataDir       string              `yaml:"-"` // set by caller, not from config file
}

// BackendConfig selects where records live.
type BackendConfig struct {
	Kind     string         `yaml:"kind"` // sqlite or dynamodb
	DynamoDB DynamoDBConfig `yaml:"dynamodb"`
}

// DynamoDBConfig configures the DynamoDB backend. Endpoint overrides the
// AWS endpoint, for DynamoDB Local.
type DynamoDBConfig struct {
	Table    string `yaml:"table"`
	Region   string `yaml:"region"`
	Profile  string `yaml:"profile"`
	Endpoint string `yaml:"endpoint"`
}

// DatabaseConfig holds SQLite connection pool settings.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"` // milliseconds
}

// EntityConfig overrides the built-in presentation of one entity.
type EntityConfig struct {
	Title  string `yaml:"title"`
	Dialog *bool  `yaml:"dialog"` // nil keeps the entity default
	Hidden bool   `yaml:"hidden"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme          string        `yaml:"theme"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	ToastDuration  time.Duration `yaml:"toast_duration"`
}

// NotificationsConfig holds notification history settings. Entries older
// than Retention are pruned on startup.
type NotificationsConfig struct {
	Retention time.Duration `yaml:"retention"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend: BackendConfig{Kind: BackendSQLite},
		Database: DatabaseConfig{
			MaxOpenConns: 2,
			MaxIdleConns: 2,
			BusyTimeout:  5000,
		},
		Roles: map[string][]access.Grant{
			"admin":  {{Entities: []string{"*"}, Add: true, Edit: true, Delete: true}},
			"viewer": {{Entities: []string{"*"}}},
		},
		Entities: map[string]EntityConfig{},
		TUI: TUIConfig{
			Theme:          styles.DefaultTheme,
			RequestTimeout: 10 * time.Second,
			ToastDuration:  4 * time.Second,
		},
		Notifications: NotificationsConfig{Retention: 30 * 24 * time.Hour},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Backend.Kind == "" {
		c.Backend.Kind = defaults.Backend.Kind
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
	if len(c.Roles) == 0 {
		c.Roles = defaults.Roles
	}
	if c.Entities == nil {
		c.Entities = map[string]EntityConfig{}
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
	if c.TUI.RequestTimeout == 0 {
		c.TUI.RequestTimeout = defaults.TUI.RequestTimeout
	}
	if c.TUI.ToastDuration == 0 {
		c.TUI.ToastDuration = defaults.TUI.ToastDuration
	}
	if c.Notifications.Retention == 0 {
		c.Notifications.Retention = defaults.Notifications.Retention
	}
}

// Policy builds the access policy from the configured roles.
func (c *Config) Policy() *access.Policy {
	return access.NewPolicy(c.Roles)
}

// Entity returns the override for kind, or the zero value.
func (c *Config) Entity(kind string) EntityConfig {
	return c.Entities[kind]
}
