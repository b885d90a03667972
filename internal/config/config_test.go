package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfigEnv points HOME and XDG_CONFIG_HOME at empty temp
// directories so user-level configs on the machine running the tests
// cannot leak in. Tests using it must not run in parallel.
func testConfigEnv(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("HOME", filepath.Join(tmp, "home"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "xdg"))
	return tmp
}

func writeProjectConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	tmp := testConfigEnv(t)

	cfg, err := Load(filepath.Join(tmp, "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, "doc/changes", cfg.ChangesDir)
	assert.Equal(t, "devel.inc", cfg.DevelFile)
	assert.Equal(t, "doc/changes/devel.md", cfg.RenderedFile)
	assert.Equal(t, 500, cfg.MaxHistoryEntries)
	assert.Equal(t, 5, cfg.ViewLimit)
	assert.Equal(t, 4, cfg.Lint.Jobs)
	assert.False(t, cfg.Lint.Strict)
	assert.False(t, cfg.Offline)
	assert.Equal(t, "250ms", cfg.Watch.Debounce)

	// state_dir must be ~-expanded against the test HOME
	assert.Equal(t, filepath.Join(tmp, "home", ".relnotes", "state"), cfg.StateDir)
}

func TestLoad_ProjectOverridesDefaults(t *testing.T) {
	tmp := testConfigEnv(t)
	path := writeProjectConfig(t, tmp, `
changes_dir: notes/changelog
lint:
  jobs: 8
  strict: true
render:
  docs_url: https://docs.example.org/stable
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "notes/changelog", cfg.ChangesDir)
	assert.Equal(t, 8, cfg.Lint.Jobs)
	assert.True(t, cfg.Lint.Strict)
	assert.Equal(t, "https://docs.example.org/stable", cfg.Render.DocsURL)

	// Derived paths follow the overridden changes dir
	assert.Equal(t, filepath.Join("notes/changelog", "devel.inc"), cfg.DevelPath())
	assert.Equal(t, filepath.Join("notes/changelog", "names.inc"), cfg.NamesPath())
}

func TestLoad_UserConfigApplies(t *testing.T) {
	tmp := testConfigEnv(t)
	userPath, err := UserConfigPath()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(userPath), 0o755))
	require.NoError(t, os.WriteFile(userPath, []byte("view_limit: 9\n"), 0o644))

	cfg, err := Load(filepath.Join(tmp, "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.ViewLimit)

	// Project config wins over user config
	projectPath := writeProjectConfig(t, tmp, "view_limit: 3\n")
	cfg, err = Load(projectPath)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.ViewLimit)
}

func TestLoad_EnvOverridesProject(t *testing.T) {
	tmp := testConfigEnv(t)
	path := writeProjectConfig(t, tmp, "changes_dir: notes\nlint:\n  jobs: 8\n")

	t.Setenv("RELNOTES_LINT_JOBS", "2")
	t.Setenv("RELNOTES_CHANGES_DIR", "elsewhere")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Lint.Jobs)
	assert.Equal(t, "elsewhere", cfg.ChangesDir)
}

func TestLoad_UnknownKeyWarns(t *testing.T) {
	tmp := testConfigEnv(t)
	path := writeProjectConfig(t, tmp, "colour_scheme: dark\nlint:\n  jobs: 8\n")

	var warnings bytes.Buffer
	cfg, err := LoadWithOptions(LoadOptions{ProjectConfigPath: path, WarningWriter: &warnings})
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Lint.Jobs)
	assert.Contains(t, warnings.String(), `unknown configuration key "colour_scheme"`)
	assert.Contains(t, warnings.String(), "relnotes config keys")
}

func TestLoad_InvalidYAMLSyntax(t *testing.T) {
	tmp := testConfigEnv(t)
	path := writeProjectConfig(t, tmp, "lint: [\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project config")
}

func TestLoad_ValidationFailure(t *testing.T) {
	tmp := testConfigEnv(t)
	path := writeProjectConfig(t, tmp, "lint:\n  jobs: 0\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lint.jobs")
	assert.Contains(t, err.Error(), "must be at least 1")
}

func TestLoad_AliasValidation(t *testing.T) {
	tmp := testConfigEnv(t)
	path := writeProjectConfig(t, tmp, "contributors:\n  aliases:\n    - \"no separator here\"\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contributors.aliases")
	assert.Contains(t, err.Error(), "invalid alias")
}

func TestLoad_LegacyUserJSONWarns(t *testing.T) {
	tmp := testConfigEnv(t)
	legacyPath, err := LegacyUserConfigPath()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(legacyPath), 0o755))
	require.NoError(t, os.WriteFile(legacyPath, []byte(`{"view_limit": 9}`), 0o644))

	var warnings bytes.Buffer
	cfg, err := LoadWithOptions(LoadOptions{
		ProjectConfigPath: filepath.Join(tmp, "missing.yml"),
		WarningWriter:     &warnings,
	})
	require.NoError(t, err)

	assert.Equal(t, 9, cfg.ViewLimit)
	assert.Contains(t, warnings.String(), "deprecated JSON config")
	assert.Contains(t, warnings.String(), "relnotes config migrate")
}

func TestEnvTransform(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "lint.jobs", envTransform("RELNOTES_LINT_JOBS"))
	assert.Equal(t, "max_history_entries", envTransform("RELNOTES_MAX_HISTORY_ENTRIES"))
	assert.Equal(t, "forge.repo_url", envTransform("RELNOTES_FORGE_REPO_URL"))
	assert.Equal(t, "watch.debounce", envTransform("RELNOTES_WATCH_DEBOUNCE"))
	assert.Equal(t, "inventory.cache_file", envTransform("RELNOTES_INVENTORY_CACHE_FILE"))
	// Names without a schema entry pass through flattened
	assert.Equal(t, "something_else", envTransform("RELNOTES_SOMETHING_ELSE"))
}

func TestValidateValue(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		key        string
		value      string
		wantParsed interface{}
		wantErr    string
	}{
		"int":              {key: "lint.jobs", value: "4", wantParsed: 4},
		"bool":             {key: "offline", value: "true", wantParsed: true},
		"enum ok":          {key: "forge.kind", value: "github", wantParsed: "github"},
		"enum rejected":    {key: "forge.kind", value: "bitbucket", wantErr: "valid options"},
		"duration ok":      {key: "watch.debounce", value: "2s", wantParsed: "2s"},
		"duration invalid": {key: "watch.debounce", value: "fast", wantErr: "invalid duration"},
		"int invalid":      {key: "max_history_entries", value: "many", wantErr: "invalid integer"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			parsed, err := ValidateValue(tc.key, tc.value)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantParsed, parsed.Parsed)
		})
	}
}

func TestValidateValue_UnknownKey(t *testing.T) {
	t.Parallel()

	_, err := ValidateValue("nope", "x")
	require.Error(t, err)

	var unknown ErrUnknownKey
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "nope", unknown.Key)
}

func TestKeyNames_SortedAndComplete(t *testing.T) {
	t.Parallel()

	names := KeyNames()
	assert.Len(t, names, len(KnownKeys))
	assert.IsIncreasing(t, names)
	assert.Contains(t, names, "changes_dir")
	assert.Contains(t, names, "watch.render")
}

func TestConfiguration_Accessors(t *testing.T) {
	t.Parallel()

	cfg := &Configuration{ChangesDir: "doc/changes", DevelFile: "devel.inc", StateDir: "/state"}

	assert.Equal(t, filepath.Join("doc/changes", "devel.inc"), cfg.DevelPath())
	assert.Equal(t, filepath.Join("doc/changes", "names.inc"), cfg.NamesPath())
	assert.Equal(t, filepath.Join("/state", "inventory.txt"), cfg.InventoryCachePath())
	assert.Equal(t, filepath.Join("/state", "history.jsonl"), cfg.HistoryPath())

	cfg.Contributors.NamesFile = "people/names.inc"
	cfg.Inventory.CacheFile = "/cache/inv.txt"
	assert.Equal(t, "people/names.inc", cfg.NamesPath())
	assert.Equal(t, "/cache/inv.txt", cfg.InventoryCachePath())
}

func TestConfiguration_InventorySource(t *testing.T) {
	t.Parallel()

	cfg := &Configuration{StateDir: "/state"}
	cfg.Inventory.Path = "local.txt"
	cfg.Inventory.URL = "https://example.org/inventory.txt"

	src := cfg.InventorySource(false)
	assert.Equal(t, "local.txt", src.Path)
	assert.Equal(t, "https://example.org/inventory.txt", src.URL)
	assert.Equal(t, filepath.Join("/state", "inventory.txt"), src.CachePath)
	assert.False(t, src.Offline)

	// The flag and the config key both force offline
	assert.True(t, cfg.InventorySource(true).Offline)
	cfg.Offline = true
	assert.True(t, cfg.InventorySource(false).Offline)
}

func TestConfiguration_ForgeOptions(t *testing.T) {
	t.Setenv("RELNOTES_FORGE_TOKEN", "tok")

	cfg := &Configuration{}
	cfg.Forge.Kind = "github"
	cfg.Forge.Project = "mne-tools/mne-python"

	opts, err := cfg.ForgeOptions()
	require.NoError(t, err)
	assert.Equal(t, "github", string(opts.Kind))
	assert.Equal(t, "mne-tools/mne-python", opts.Project)
	assert.Equal(t, "tok", opts.Token)
}

func TestConfiguration_ForgeOptionsDetectsFromRepoURL(t *testing.T) {
	t.Setenv("RELNOTES_FORGE_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GH_TOKEN", "")

	cfg := &Configuration{}
	cfg.Forge.RepoURL = "https://github.com/mne-tools/mne-python"

	opts, err := cfg.ForgeOptions()
	require.NoError(t, err)
	assert.Equal(t, "github", string(opts.Kind))
	assert.Equal(t, "mne-tools/mne-python", opts.Project)
}

func TestConfiguration_ForgeOptionsUnconfigured(t *testing.T) {
	t.Parallel()

	cfg := &Configuration{}
	_, err := cfg.ForgeOptions()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forge is not configured")
}

func TestConfiguration_AliasMap(t *testing.T) {
	t.Parallel()

	cfg := &Configuration{}
	cfg.Contributors.Aliases = []string{
		"J. Smith = John Smith",
		" jane@example.com =  Jane Doe ",
		"malformed",
	}

	aliases := cfg.AliasMap()
	assert.Equal(t, map[string]string{
		"J. Smith":         "John Smith",
		"jane@example.com": "Jane Doe",
	}, aliases)
}

func TestConfiguration_DebounceInterval(t *testing.T) {
	t.Parallel()

	cfg := &Configuration{}
	assert.Equal(t, 250*time.Millisecond, cfg.DebounceInterval())

	cfg.Watch.Debounce = "2s"
	assert.Equal(t, 2*time.Second, cfg.DebounceInterval())

	cfg.Watch.Debounce = "garbage"
	assert.Equal(t, 250*time.Millisecond, cfg.DebounceInterval())
}

func TestToSnakeCase(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "max_history_entries", toSnakeCase("MaxHistoryEntries"))
	assert.Equal(t, "docs_url", toSnakeCase("DocsURL"))
	assert.Equal(t, "base_url", toSnakeCase("BaseURL"))
	assert.Equal(t, "jobs", toSnakeCase("Jobs"))
	assert.Equal(t, "url", toSnakeCase("URL"))
}
