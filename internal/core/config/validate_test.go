package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tally/internal/core/access"
)

// validConfig returns a Config with all required fields set for testing.
func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	return &cfg
}

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	names := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		names[i] = fe.Field
	}
	return names
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig(t).Validate())
}

func TestValidate_EmptyDataDir(t *testing.T) {
	cfg := validConfig(t)
	cfg.DataDir = ""
	require.Error(t, cfg.Validate())
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{
			name:   "unknown backend",
			mutate: func(c *Config) { c.Backend.Kind = "mysql" },
			field:  "backend.kind",
		},
		{
			name:   "dynamodb without table",
			mutate: func(c *Config) { c.Backend.Kind = BackendDynamoDB },
			field:  "backend.dynamodb.table",
		},
		{
			name:   "zero open conns",
			mutate: func(c *Config) { c.Database.MaxOpenConns = 0 },
			field:  "database.max_open_conns",
		},
		{
			name:   "idle above open",
			mutate: func(c *Config) { c.Database.MaxIdleConns = 9 },
			field:  "database.max_idle_conns",
		},
		{
			name: "grant without patterns",
			mutate: func(c *Config) {
				c.Roles = map[string][]access.Grant{"ops": {{Edit: true}}}
			},
			field: `roles["ops"][0].entities`,
		},
		{
			name: "bad pattern",
			mutate: func(c *Config) {
				c.Roles = map[string][]access.Grant{"ops": {{Entities: []string{"[x"}}}}
			},
			field: "roles",
		},
		{
			name:   "unknown entity override",
			mutate: func(c *Config) { c.Entities = map[string]EntityConfig{"unicorns": {Hidden: true}} },
			field:  `entities["unicorns"]`,
		},
		{
			name:   "unknown theme",
			mutate: func(c *Config) { c.TUI.Theme = "neon" },
			field:  "tui.theme",
		},
		{
			name:   "zero timeout",
			mutate: func(c *Config) { c.TUI.RequestTimeout = 0 },
			field:  "tui.request_timeout",
		},
		{
			name:   "short retention",
			mutate: func(c *Config) { c.Notifications.Retention = time.Minute },
			field:  "notifications.retention",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, fieldNames(t, err), tt.field)
		})
	}
}

func TestValidateDeep_ConfigFileIsDirectory(t *testing.T) {
	cfg := validConfig(t)

	err := cfg.ValidateDeep(t.TempDir())
	assert.Contains(t, fieldNames(t, err), "config_file")
}

func TestValidateDeep_DataDirIsFile(t *testing.T) {
	cfg := validConfig(t)
	file := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	cfg.DataDir = file

	err := cfg.ValidateDeep("")
	assert.Contains(t, fieldNames(t, err), "data_dir")
}

func TestValidateDeep_MissingConfigFileIsFine(t *testing.T) {
	cfg := validConfig(t)
	assert.NoError(t, cfg.ValidateDeep(filepath.Join(t.TempDir(), "nope.yaml")))
}

func TestWarnings(t *testing.T) {
	cfg := validConfig(t)
	cfg.Roles["empty"] = nil
	cfg.Backend = BackendConfig{Kind: BackendDynamoDB, DynamoDB: DynamoDBConfig{Table: "t"}}
	cfg.TUI.RequestTimeout = time.Second

	warnings := cfg.Warnings()
	require.Len(t, warnings, 2)
	assert.Equal(t, "Roles", warnings[0].Category)
	assert.Equal(t, "empty", warnings[0].Item)
	assert.Equal(t, "Backend", warnings[1].Category)
}
