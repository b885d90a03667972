package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateJSONToYAML(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	jsonPath := filepath.Join(tmp, "config.json")
	yamlPath := filepath.Join(tmp, "sub", "config.yml")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"view_limit": 9, "lint": {"jobs": 2}}`), 0o644))

	result, err := MigrateJSONToYAML(jsonPath, yamlPath, false)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Contains(t, result.Message, "Migrated")

	content, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "# relnotes configuration")
	assert.Contains(t, string(content), "view_limit: 9")
	assert.Contains(t, string(content), "jobs: 2")
}

func TestMigrateJSONToYAML_DryRun(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	jsonPath := filepath.Join(tmp, "config.json")
	yamlPath := filepath.Join(tmp, "config.yml")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"view_limit": 9}`), 0o644))

	result, err := MigrateJSONToYAML(jsonPath, yamlPath, true)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Contains(t, result.Message, "Would migrate")
	assert.NoFileExists(t, yamlPath)
}

func TestMigrateJSONToYAML_ExistingYAMLSkipped(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	jsonPath := filepath.Join(tmp, "config.json")
	yamlPath := filepath.Join(tmp, "config.yml")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"view_limit": 9}`), 0o644))
	require.NoError(t, os.WriteFile(yamlPath, []byte("view_limit: 3\n"), 0o644))

	result, err := MigrateJSONToYAML(jsonPath, yamlPath, false)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "already exists")

	content, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "view_limit: 3\n", string(content))
}

func TestMigrateJSONToYAML_MissingJSON(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	result, err := MigrateJSONToYAML(filepath.Join(tmp, "config.json"), filepath.Join(tmp, "config.yml"), false)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "No JSON config found")
}

func TestRemoveLegacyConfig(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	jsonPath := filepath.Join(tmp, "config.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{}`), 0o644))

	require.NoError(t, RemoveLegacyConfig(jsonPath, false))
	assert.NoFileExists(t, jsonPath)
	assert.FileExists(t, jsonPath+".bak")

	// Missing file is not an error
	require.NoError(t, RemoveLegacyConfig(filepath.Join(tmp, "nope.json"), false))
}
