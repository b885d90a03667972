// Package config provides layered configuration for relnotes using koanf.
// Values are merged with priority: environment variables > project config
// (.relnotes/config.yml) > user config (~/.config/relnotes/config.yml) >
// defaults. YAML is the native format; legacy JSON configs are still read
// and can be converted with `relnotes config migrate`. Unknown keys warn
// instead of failing the load.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/relnotes-tools/relnotes/internal/forge"
	"github.com/relnotes-tools/relnotes/internal/inventory"
	"github.com/relnotes-tools/relnotes/internal/notes"
)

// Configuration is the effective relnotes configuration after all
// sources are merged.
type Configuration struct {
	// ChangesDir is the directory holding the release-note fragments.
	// The devel fragment lives at <changes_dir>/<devel_file>; released
	// fragments sit alongside it as v<version>.inc files.
	ChangesDir string `koanf:"changes_dir" validate:"required"`

	// DevelFile is the file name of the unreleased fragment inside ChangesDir.
	DevelFile string `koanf:"devel_file" validate:"required"`

	// RenderedFile is the committed markdown rendering of the unreleased
	// fragment, written by 'relnotes sync' and compared by 'relnotes check'.
	RenderedFile string `koanf:"rendered_file"`

	// StateDir holds mutable state: the run history log and the cached
	// symbol inventory. Supports ~ expansion.
	StateDir string `koanf:"state_dir" validate:"required"`

	// Offline disables network access. Remote inventories fall back to
	// their cached copy and forge verification is refused.
	// Can be set via RELNOTES_OFFLINE env var.
	Offline bool `koanf:"offline"`

	// MaxHistoryEntries caps the run history log. Oldest entries are
	// pruned when the limit is exceeded.
	// Default: 500. Can be set via RELNOTES_MAX_HISTORY_ENTRIES env var.
	MaxHistoryEntries int `koanf:"max_history_entries" validate:"min=0"`

	// ViewLimit is the number of entries per section shown by
	// 'relnotes view'. Overridden by the --last flag.
	ViewLimit int `koanf:"view_limit" validate:"min=1"`

	Inventory    InventoryConfig    `koanf:"inventory"`
	Contributors ContributorsConfig `koanf:"contributors"`
	Lint         LintConfig         `koanf:"lint"`
	Forge        ForgeConfig        `koanf:"forge"`
	Render       RenderConfig       `koanf:"render"`
	Watch        WatchConfig        `koanf:"watch"`
}

// InventoryConfig locates the documented-symbol inventory that
// cross-reference roles resolve against.
type InventoryConfig struct {
	// Path is a local inventory file. Takes precedence over URL.
	Path string `koanf:"path"`
	// URL is a remote inventory location, fetched with retries and
	// cached under the state dir.
	URL string `koanf:"url" validate:"omitempty,url"`
	// CacheFile overrides where remote inventories are cached
	// (default: <state_dir>/inventory.txt).
	CacheFile string `koanf:"cache_file"`
}

// ContributorsConfig locates the contributor registry.
type ContributorsConfig struct {
	// NamesFile is the registry of contributor link targets
	// (default: <changes_dir>/names.inc).
	NamesFile string `koanf:"names_file"`
	// Aliases maps alternate git identities to registered names, one
	// "Alias = Canonical Name" entry per element. Both commit author
	// names and emails are matched.
	Aliases []string `koanf:"aliases"`
}

// LintConfig tunes the lint engine.
type LintConfig struct {
	// Jobs bounds concurrent fragment checks.
	// Can be set via RELNOTES_LINT_JOBS env var.
	Jobs int `koanf:"jobs" validate:"min=1,max=64"`
	// Strict promotes warnings to errors.
	Strict bool `koanf:"strict"`
}

// ForgeConfig selects the code host used to verify issue references.
type ForgeConfig struct {
	// Kind is the forge implementation: github or gitlab. Detected from
	// RepoURL when empty.
	Kind string `koanf:"kind" validate:"omitempty,oneof=github gitlab"`
	// Project is the project path on the forge, e.g. "mne-tools/mne-python".
	// Detected from RepoURL when empty.
	Project string `koanf:"project"`
	// BaseURL points at a self-hosted instance. Empty means the public host.
	BaseURL string `koanf:"base_url" validate:"omitempty,url"`
	// RepoURL is the canonical repository URL. Also used for issue
	// links in rendered output.
	RepoURL string `koanf:"repo_url" validate:"omitempty,url"`
}

// RenderConfig controls hyperlinks in rendered markdown.
type RenderConfig struct {
	// DocsURL is the documentation site base URL that cross-references
	// link into.
	DocsURL string `koanf:"docs_url" validate:"omitempty,url"`
}

// WatchConfig tunes the watch command.
type WatchConfig struct {
	// Debounce is the quiet window after a filesystem event before
	// re-linting, e.g. "250ms", "2s".
	Debounce string `koanf:"debounce"`
	// Render also refreshes the rendered markdown file after each
	// clean lint pass.
	Render bool `koanf:"render"`
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// ProjectConfigPath overrides the project config path (default: .relnotes/config.yml)
	ProjectConfigPath string
	// WarningWriter receives configuration warnings (default: os.Stderr)
	WarningWriter io.Writer
	// SkipWarnings suppresses configuration warnings
	SkipWarnings bool
}

// Load loads configuration from user, project, and environment sources.
// Priority: Environment variables > Project config > User config > Defaults
//
// YAML config paths:
//   - User config: ~/.config/relnotes/config.yml (XDG compliant)
//   - Project config: .relnotes/config.yml
//
// Legacy JSON config paths (deprecated, triggers migration warning):
//   - User config: ~/.relnotes/config.json
//   - Project config: .relnotes/config.json
func Load(projectConfigPath string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ProjectConfigPath: projectConfigPath})
}

// LoadWithOptions loads configuration with custom options
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")
	warningWriter := getWarningWriter(opts.WarningWriter)

	loadDefaults(k)

	if err := loadUserConfig(k, warningWriter, opts.SkipWarnings); err != nil {
		return nil, err
	}

	if err := loadProjectConfig(k, opts.ProjectConfigPath, warningWriter, opts.SkipWarnings); err != nil {
		return nil, err
	}

	if err := loadEnvironmentConfig(k); err != nil {
		return nil, err
	}

	return finalizeConfig(k)
}

// getWarningWriter returns the warning writer or defaults to stderr
func getWarningWriter(w io.Writer) io.Writer {
	if w == nil {
		return os.Stderr
	}
	return w
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf) {
	defaults := GetDefaults()
	for key, value := range defaults {
		k.Set(key, value)
	}
}

// loadUserConfig loads user-level config (YAML preferred, legacy JSON supported).
// Priority: YAML (~/.config/relnotes/config.yml) > JSON (~/.relnotes/config.json).
// Warns if both exist (YAML used, JSON ignored) or if only legacy JSON exists.
func loadUserConfig(k *koanf.Koanf, warningWriter io.Writer, skipWarnings bool) error {
	userYAMLPath, _ := UserConfigPath()
	legacyUserPath, _ := LegacyUserConfigPath()

	userYAMLExists := fileExists(userYAMLPath)
	legacyUserExists := fileExists(legacyUserPath)

	if userYAMLExists {
		if err := loadYAMLConfig(k, userYAMLPath, "user", warningWriter, skipWarnings); err != nil {
			return fmt.Errorf("loading user YAML config: %w", err)
		}
		warnLegacyExists(warningWriter, legacyUserPath, userYAMLPath, legacyUserExists, skipWarnings, "--user")
	} else if legacyUserExists {
		if err := loadLegacyJSONConfig(k, legacyUserPath, "user", warningWriter, skipWarnings, "--user"); err != nil {
			return fmt.Errorf("loading legacy user JSON config: %w", err)
		}
	}
	return nil
}

// loadProjectConfig loads project-level config (YAML preferred, legacy JSON supported).
// Supports custom path override (--config flag, tests). Falls back to legacy
// JSON with a warning. Same priority/warning logic as loadUserConfig.
func loadProjectConfig(k *koanf.Koanf, customPath string, warningWriter io.Writer, skipWarnings bool) error {
	projectYAMLPath := ProjectConfigPath()
	if customPath != "" {
		projectYAMLPath = customPath
	}
	legacyProjectPath := LegacyProjectConfigPath()

	projectYAMLExists := fileExists(projectYAMLPath)
	legacyProjectExists := fileExists(legacyProjectPath)

	if projectYAMLExists {
		if err := loadYAMLConfig(k, projectYAMLPath, "project", warningWriter, skipWarnings); err != nil {
			return fmt.Errorf("loading project YAML config: %w", err)
		}
		warnLegacyExists(warningWriter, legacyProjectPath, projectYAMLPath, legacyProjectExists, skipWarnings, "--project")
	} else if legacyProjectExists {
		if err := loadLegacyJSONConfig(k, legacyProjectPath, "project", warningWriter, skipWarnings, "--project"); err != nil {
			return fmt.Errorf("loading legacy project JSON config: %w", err)
		}
	}
	return nil
}

// loadYAMLConfig validates and loads a YAML config file
func loadYAMLConfig(k *koanf.Koanf, path, configType string, warningWriter io.Writer, skipWarnings bool) error {
	if err := ValidateYAMLSyntax(path); err != nil {
		return fmt.Errorf("validating YAML syntax for %s config: %w", configType, err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load %s config %s: %w", configType, path, err)
	}
	warnUnknownKeys(path, yaml.Parser(), warningWriter, skipWarnings)
	return nil
}

// loadLegacyJSONConfig loads legacy JSON and warns about migration
func loadLegacyJSONConfig(k *koanf.Koanf, path, configType string, warningWriter io.Writer, skipWarnings bool, migrateFlag string) error {
	if err := k.Load(file.Provider(path), json.Parser()); err != nil {
		return fmt.Errorf("failed to load legacy %s config %s: %w", configType, path, err)
	}
	warnUnknownKeys(path, json.Parser(), warningWriter, skipWarnings)
	if !skipWarnings {
		fmt.Fprintf(warningWriter, "Warning: Using deprecated JSON config at %s\n", path)
		fmt.Fprintf(warningWriter, "  Run 'relnotes config migrate %s' to migrate to YAML format.\n\n", migrateFlag)
	}
	return nil
}

// warnLegacyExists warns if legacy JSON exists alongside new YAML
func warnLegacyExists(warningWriter io.Writer, legacyPath, yamlPath string, legacyExists, skipWarnings bool, migrateFlag string) {
	if legacyExists && !skipWarnings {
		fmt.Fprintf(warningWriter, "Warning: Legacy JSON config found at %s (ignored, using %s)\n", legacyPath, yamlPath)
		fmt.Fprintf(warningWriter, "  Run 'relnotes config migrate %s' to remove the legacy file.\n\n", migrateFlag)
	}
}

// warnUnknownKeys reports config keys missing from the known-key
// registry. Loading continues; keys without a matching struct field are
// ignored by Unmarshal, so a typo would otherwise vanish silently.
func warnUnknownKeys(path string, parser koanf.Parser, w io.Writer, skip bool) {
	if skip {
		return
	}
	probe := koanf.New(".")
	if err := probe.Load(file.Provider(path), parser); err != nil {
		return
	}
	for _, key := range probe.Keys() {
		if _, known := KnownKeys[key]; !known {
			fmt.Fprintf(w, "Warning: unknown configuration key %q in %s\n", key, path)
			fmt.Fprintf(w, "  Run 'relnotes config keys' to list the known keys.\n\n")
		}
	}
}

// loadEnvironmentConfig loads environment variable overrides
func loadEnvironmentConfig(k *koanf.Koanf) error {
	if err := k.Load(env.Provider("RELNOTES_", ".", envTransform), nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	return nil
}

// finalizeConfig unmarshals, validates, and applies final transformations
func finalizeConfig(k *koanf.Koanf) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := ValidateConfigValues(&cfg, "config"); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.StateDir = expandHomePath(cfg.StateDir)
	cfg.ChangesDir = expandHomePath(cfg.ChangesDir)
	cfg.Inventory.Path = expandHomePath(cfg.Inventory.Path)
	cfg.Inventory.CacheFile = expandHomePath(cfg.Inventory.CacheFile)
	cfg.Contributors.NamesFile = expandHomePath(cfg.Contributors.NamesFile)

	return &cfg, nil
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// envKeyIndex maps flattened env-style names to dotted config paths, so
// RELNOTES_LINT_JOBS resolves to lint.jobs rather than lint_jobs.
var envKeyIndex = buildEnvKeyIndex()

func buildEnvKeyIndex() map[string]string {
	index := make(map[string]string, len(KnownKeys))
	for path := range KnownKeys {
		index[strings.ReplaceAll(path, ".", "_")] = path
	}
	return index
}

// envTransform converts environment variable names to config keys
// Example: RELNOTES_MAX_HISTORY_ENTRIES -> max_history_entries,
// RELNOTES_LINT_JOBS -> lint.jobs
func envTransform(s string) string {
	name := strings.ToLower(strings.TrimPrefix(s, "RELNOTES_"))
	if path, ok := envKeyIndex[name]; ok {
		return path
	}
	return name
}

// EnvValue reports the RELNOTES_* variable overriding a config key, if
// one is set in the environment.
func EnvValue(key string) (value, envName string, ok bool) {
	envName = "RELNOTES_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	if v, set := os.LookupEnv(envName); set {
		return v, envName, true
	}
	return "", "", false
}

// expandHomePath expands ~ to the user's home directory
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}

// DevelPath returns the path of the unreleased fragment.
func (c *Configuration) DevelPath() string {
	return filepath.Join(c.ChangesDir, c.DevelFile)
}

// NamesPath returns the contributor registry path.
func (c *Configuration) NamesPath() string {
	if c.Contributors.NamesFile != "" {
		return c.Contributors.NamesFile
	}
	return filepath.Join(c.ChangesDir, "names.inc")
}

// HistoryPath returns the run history log path.
func (c *Configuration) HistoryPath() string {
	return filepath.Join(c.StateDir, "history.jsonl")
}

// InventoryCachePath returns where remote inventories are cached.
func (c *Configuration) InventoryCachePath() string {
	if c.Inventory.CacheFile != "" {
		return c.Inventory.CacheFile
	}
	return filepath.Join(c.StateDir, "inventory.txt")
}

// InventorySource assembles the symbol inventory source. The offline
// argument (the --offline flag) ORs with the offline config key.
func (c *Configuration) InventorySource(offline bool) inventory.Source {
	return inventory.Source{
		Path:      c.Inventory.Path,
		URL:       c.Inventory.URL,
		CachePath: c.InventoryCachePath(),
		Offline:   offline || c.Offline,
	}
}

// RenderLinks returns the link targets for markdown rendering. The
// contributor URL resolver is attached by the caller once the registry
// is loaded.
func (c *Configuration) RenderLinks() notes.Links {
	return notes.Links{
		DocsURL: c.Render.DocsURL,
		RepoURL: c.Forge.RepoURL,
	}
}

// ForgeOptions resolves the forge client options. Kind and project are
// detected from forge.repo_url unless set explicitly. The API token
// comes from the environment, never from config files.
func (c *Configuration) ForgeOptions() (forge.Options, error) {
	kind := forge.Kind(c.Forge.Kind)
	project := c.Forge.Project

	if kind == "" || project == "" {
		if c.Forge.RepoURL == "" {
			return forge.Options{}, fmt.Errorf("forge is not configured: set forge.repo_url or forge.kind and forge.project")
		}
		detectedKind, detectedProject, err := forge.DetectFromURL(c.Forge.RepoURL)
		if err != nil {
			return forge.Options{}, err
		}
		if kind == "" {
			kind = detectedKind
		}
		if project == "" {
			project = detectedProject
		}
	}

	return forge.Options{
		Kind:    kind,
		Project: project,
		BaseURL: c.Forge.BaseURL,
		Token:   forge.TokenFromEnv(kind),
	}, nil
}

// AliasMap parses the contributors.aliases entries into a lookup from
// git identity (commit author name or email) to registered name.
// Malformed entries were rejected at load time.
func (c *Configuration) AliasMap() map[string]string {
	aliases := make(map[string]string, len(c.Contributors.Aliases))
	for _, entry := range c.Contributors.Aliases {
		alias, canonical, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		alias, canonical = strings.TrimSpace(alias), strings.TrimSpace(canonical)
		if alias == "" || canonical == "" {
			continue
		}
		aliases[alias] = canonical
	}
	return aliases
}

// defaultDebounce is used when watch.debounce is empty.
const defaultDebounce = 250 * time.Millisecond

// DebounceInterval returns the parsed watch debounce window.
func (c *Configuration) DebounceInterval() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return defaultDebounce
	}
	return d
}
