package errors

import "fmt"

// Common error messages for the relnotes CLI.
// These templates ensure consistent, actionable error messages.

// MissingChangesDir creates an error for a missing changes directory.
func MissingChangesDir(path string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("changes directory not found: %s", path),
		"Run 'relnotes init' to scaffold the changelog layout",
		"Or point changes_dir at the right place in .relnotes/config.yml",
	)
}

// MissingDevelFragment creates an error for a missing unreleased fragment.
func MissingDevelFragment(path string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("devel fragment not found: %s", path),
		"Run 'relnotes init' to create an empty fragment",
		"Or check changes_dir and devel_file in your configuration",
	)
}

// MissingNamesFile creates an error for a missing contributor registry.
func MissingNamesFile(path string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("contributor registry not found: %s", path),
		"Run 'relnotes init' to create names.inc",
		"Add contributors with: relnotes contributors add \"Full Name\" <url>",
	)
}

// InventoryNotConfigured creates an error when no symbol inventory source is set.
func InventoryNotConfigured() *CLIError {
	return NewConfigError(
		"no symbol inventory configured",
		"Set inventory.path to a local symbol listing",
		"Or set inventory.url to fetch one from your documentation site",
		"List the known keys with: relnotes config keys",
	)
}

// InventoryUnavailable creates an error when the inventory cannot be fetched.
func InventoryUnavailable(source string, err error) *CLIError {
	return WrapWithMessage(err, Network,
		fmt.Sprintf("fetching symbol inventory from %s", source),
		"Check your network connection",
		"Re-run with --offline to use the cached inventory",
		"Or set inventory.path to a local file",
	)
}

// InventoryCacheMissing creates an error when offline mode has no cached inventory.
func InventoryCacheMissing(path string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("no cached inventory at %s", path),
		"Run 'relnotes inventory fetch' while online to warm the cache",
		"Or set inventory.path to a local file",
	)
}

// ForgeNotConfigured creates an error when issue checks need a forge but none is set.
func ForgeNotConfigured() *CLIError {
	return NewConfigError(
		"forge is not configured",
		"Set forge.repo_url in .relnotes/config.yml",
		"Or set forge.kind and forge.project explicitly",
	)
}

// ForgeUnavailable creates an error when the forge API cannot be reached.
func ForgeUnavailable(name string, err error) *CLIError {
	return WrapWithMessage(err, Network,
		fmt.Sprintf("querying %s", name),
		"Check your network connection",
		"Re-run without --forge to skip issue verification",
		"Private projects need RELNOTES_FORGE_TOKEN set",
	)
}

// OfflineForgeCheck creates an error for --offline combined with --forge.
func OfflineForgeCheck() *CLIError {
	return NewArgumentError(
		"cannot verify issue references while offline",
		"Drop --offline to reach the forge",
		"Or drop --forge for a local-only lint",
	)
}

// GitNotRepository creates an error when not in a git repository.
func GitNotRepository() *CLIError {
	return NewPrerequisiteError(
		"not inside a git repository",
		"Run relnotes from your project checkout",
		"Or pass --author to skip the git identity lookup",
	)
}

// GitIdentityUnset creates an error when git has no configured user name.
func GitIdentityUnset() *CLIError {
	return NewPrerequisiteError(
		"git user.name is not configured",
		"Set it with: git config user.name \"Your Name\"",
		"Or pass --author \"Your Name\" explicitly",
	)
}

// UnknownSection creates an error for an unrecognized section argument.
func UnknownSection(provided string) *CLIError {
	return NewArgumentErrorWithUsage(
		fmt.Sprintf("unknown section: %s", provided),
		"relnotes add <section> <text>",
		"Valid sections: enhancements, bugs, api",
		"Section names are case-insensitive",
	)
}

// InvalidVersion creates an error for a malformed release version argument.
func InvalidVersion(provided string, err error) *CLIError {
	return &CLIError{
		Category: Argument,
		Message:  fmt.Sprintf("invalid version %q: %v", provided, err),
		Usage:    "relnotes release <version>",
		Remediation: []string{
			"Versions follow semantic versioning, e.g. 1.8.0 or 0.24.1",
		},
		Err: err,
	}
}

// NothingToRelease creates an error when the devel fragment has no entries.
func NothingToRelease(path string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("no unreleased entries in %s", path),
		"Add entries with: relnotes add",
		"Inspect the fragment with: relnotes view",
	)
}

// ConfigFileNotFound creates an error for a missing explicit config file.
func ConfigFileNotFound(path string) *CLIError {
	return NewConfigError(
		fmt.Sprintf("config file not found: %s", path),
		"Check the --config path",
		"Run 'relnotes init' to scaffold .relnotes/config.yml",
	)
}

// ConfigLoadFailed creates an error when configuration cannot be loaded.
func ConfigLoadFailed(err error) *CLIError {
	return Wrap(err, Configuration,
		"Check the file for YAML syntax errors",
		"List the known keys with: relnotes config keys",
	)
}

// InvalidFlagCombination creates an error for incompatible flag combinations.
func InvalidFlagCombination(flags string, reason string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("invalid flag combination: %s", flags),
		reason,
		"Use 'relnotes <command> --help' to see valid options",
	)
}

// FileNotWritable creates an error when a file cannot be written.
func FileNotWritable(path string, err error) *CLIError {
	return WrapWithMessage(err, Runtime,
		fmt.Sprintf("cannot write %s", path),
		"Check file permissions: ls -la "+path,
		"Ensure the parent directory exists and is writable",
	)
}
