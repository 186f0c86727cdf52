package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tally/internal/core/access"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	dataDir := t.TempDir()
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), dataDir)
	require.NoError(t, err)

	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, BackendSQLite, cfg.Backend.Kind)
	assert.Equal(t, 10*time.Second, cfg.TUI.RequestTimeout)
	assert.Equal(t, access.Permissions{View: true, Add: true, Edit: true, Delete: true},
		cfg.Policy().Resolve("admin", "prices"))
	assert.Equal(t, access.Permissions{View: true}, cfg.Policy().Resolve("viewer", "prices"))
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
backend:
  kind: dynamodb
  dynamodb:
    table: tally-records
    region: eu-west-1
roles:
  sales:
    - entities: ["customers", "inv*"]
      add: true
      edit: true
entities:
  invoices:
    dialog: false
  drivers:
    hidden: true
tui:
  request_timeout: 3s
`)

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "tally-records", cfg.Backend.DynamoDB.Table)
	assert.Equal(t, 3*time.Second, cfg.TUI.RequestTimeout)
	assert.Equal(t, 4*time.Second, cfg.TUI.ToastDuration, "unset durations keep defaults")
	require.NotNil(t, cfg.Entity("invoices").Dialog)
	assert.False(t, *cfg.Entity("invoices").Dialog)
	assert.True(t, cfg.Entity("drivers").Hidden)
	assert.Equal(t, access.Permissions{View: true, Add: true, Edit: true}, cfg.Policy().Resolve("sales", "invoices"))
	assert.False(t, cfg.Policy().HasRole("admin"), "configured roles replace the defaults")
}

func TestLoad_Invalid(t *testing.T) {
	path := writeConfig(t, `
backend:
  kind: postgres
`)

	_, err := Load(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend.kind")
}

func TestLoad_Malformed(t *testing.T) {
	path := writeConfig(t, "backend: [")

	_, err := Load(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}
