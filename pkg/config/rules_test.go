package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValidationRules(t *testing.T) {
	raw := []byte(`
ignoredResources:
  - free
  - " lunch "
  - ""
requiredActivities: [lunch]
clustering: pairwise
`)
	rules, err := ParseValidationRules(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"free", "lunch"}, rules.IgnoredResources)
	assert.Equal(t, []string{"lunch"}, rules.RequiredActivities)
	assert.Equal(t, "pairwise", rules.Clustering)
}

func TestParseValidationRulesInvalid(t *testing.T) {
	_, err := ParseValidationRules([]byte("ignoredResources: [unterminated"))
	require.Error(t, err)
}

func TestValidationRulesApplyKeepsUnsetFields(t *testing.T) {
	cfg := ValidationConfig{
		IgnoredResources:   []string{"free"},
		RequiredActivities: []string{"lunch"},
		Clustering:         "sweep",
	}
	rules := &ValidationRules{RequiredActivities: []string{"lunch", "snack"}}
	rules.Apply(&cfg)

	assert.Equal(t, []string{"free"}, cfg.IgnoredResources)
	assert.Equal(t, []string{"lunch", "snack"}, cfg.RequiredActivities)
	assert.Equal(t, "sweep", cfg.Clustering)
}

func TestLoadValidationRulesFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("clustering: sweep\n"), 0o600))

	rules, err := LoadValidationRules(path)
	require.NoError(t, err)
	assert.Equal(t, "sweep", rules.Clustering)

	_, err = LoadValidationRules(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim(""))
	assert.Equal(t, []string{"free", "lunch"}, splitAndTrim(" free, ,lunch "))
}
