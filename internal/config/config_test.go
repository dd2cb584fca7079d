package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "data/runs.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "https://hn.algolia.com/api/v1", cfg.HN.AlgoliaBaseURL)
	assert.Equal(t, "https://hacker-news.firebaseio.com/v0", cfg.HN.FirebaseBaseURL)
	assert.Equal(t, 365, cfg.HN.SearchWindowDays)
	assert.Equal(t, 4, cfg.HN.FetchConcurrency)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, 1024, cfg.Anthropic.MaxTokens)
	assert.Equal(t, 3500, cfg.Extract.MaxChars)
	assert.Equal(t, 10, cfg.Extract.PaceSecs)
	assert.Equal(t, 500000, cfg.Extract.DailyTokenBudget)
	assert.Equal(t, "data/processed/jobs.csv", cfg.Dataset.Path)
	assert.Equal(t, "data/raw", cfg.Dataset.SnapshotDir)
	assert.Equal(t, 10, cfg.Dataset.FlushEvery)
	assert.Equal(t, 8080, cfg.Dashboard.Port)
	assert.Equal(t, 50, cfg.Dashboard.TeaserRows)
	assert.True(t, cfg.Dashboard.MaskContacts)
	assert.Equal(t, "rules.yaml", cfg.Rules.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/hiring
extract:
  pace_secs: 0
dashboard:
  teaser_rows: 25
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/hiring", cfg.Store.DatabaseURL)
	assert.Equal(t, 0, cfg.Extract.PaceSecs)
	assert.Equal(t, 25, cfg.Dashboard.TeaserRows)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Defaults still apply where the file is silent.
	assert.Equal(t, 3500, cfg.Extract.MaxChars)
}

func TestLoadFromEnv(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("HIRING_ANTHROPIC_KEY", "sk-test-key")
	t.Setenv("HIRING_DASHBOARD_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test-key", cfg.Anthropic.Key)
	assert.Equal(t, 9090, cfg.Dashboard.Port)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())

	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "not-a-level", Format: "json"})
	assert.Error(t, err)
}
