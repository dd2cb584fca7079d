package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRules_MissingFileUsesDefaults(t *testing.T) {
	rules, err := LoadRules(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), rules)
}

func TestLoadRules_EmptyPathUsesDefaults(t *testing.T) {
	rules, err := LoadRules("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), rules)
}

func TestLoadRules_OverlayReplacesOnlyGivenLists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := "junk_keywords:\n  - custom\nmonthly_keywords:\n  - mensal\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rules, err := LoadRules(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"custom"}, rules.JunkKeywords)
	assert.Equal(t, []string{"mensal"}, rules.MonthlyKeywords)
	// Untouched lists keep their defaults.
	assert.Equal(t, DefaultRules().GlobalKeywords, rules.GlobalKeywords)
	assert.Equal(t, DefaultRules().TechBlacklist, rules.TechBlacklist)
}

func TestLoadRules_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("junk_keywords: {broken"), 0o644))

	_, err := LoadRules(path)
	assert.Error(t, err)
}
