package initcmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tally/internal/core/config"
)

func TestWriteConfig_RoundTripsThroughLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tally", "config.yaml")

	answers := DefaultAnswers()
	answers.Backend = config.BackendDynamoDB
	answers.Region = "eu-west-1"
	require.NoError(t, WriteConfig(GenerateConfig(answers), path))

	cfg, err := config.Load(path, dir)
	require.NoError(t, err)
	assert.Equal(t, config.BackendDynamoDB, cfg.Backend.Kind)
	assert.Equal(t, "tally-records", cfg.Backend.DynamoDB.Table)
	assert.Equal(t, "eu-west-1", cfg.Backend.DynamoDB.Region)
	assert.Contains(t, cfg.Roles, "admin")
	assert.Equal(t, config.DefaultConfig().TUI.RequestTimeout, cfg.TUI.RequestTimeout)
}

func TestBackupConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	backup, err := BackupConfig(path)
	require.NoError(t, err)
	assert.Empty(t, backup, "missing config needs no backup")

	require.NoError(t, os.WriteFile(path, []byte("tui:\n  theme: tokyo-night\n"), 0o644))
	backup, err = BackupConfig(path)
	require.NoError(t, err)
	require.NotEmpty(t, backup)

	got, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Contains(t, string(got), "tokyo-night")
}

func TestInitCheck(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	result := NewInitCheck(path, dir).Run()
	require.NotEmpty(t, result.Items)
	assert.Equal(t, StatusFail, result.Items[0].Status, "config file is missing")

	require.NoError(t, WriteConfig(GenerateConfig(DefaultAnswers()), path))
	result = NewInitCheck(path, dir).Run()
	for _, item := range result.Items {
		assert.Equal(t, StatusPass, item.Status, item.Label)
	}
}
