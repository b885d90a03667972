package config

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		// Fragment layout: the devel fragment lives at
		// <changes_dir>/<devel_file>, released fragments alongside it as
		// v<version>.inc, the committed markdown rendering at rendered_file.
		"changes_dir":   "doc/changes",
		"devel_file":    "devel.inc",
		"rendered_file": "doc/changes/devel.md",
		// state_dir: Mutable state (run history, cached inventory).
		"state_dir": "~/.relnotes/state",
		// offline: Disable network access; cached data only.
		"offline": false,
		// max_history_entries: Maximum number of run history entries to retain.
		// Oldest entries are pruned when this limit is exceeded.
		"max_history_entries": 500,
		// view_limit: Entries per section shown by the view command.
		// Can be overridden with the --last flag.
		"view_limit": 5,
		"inventory": map[string]interface{}{
			"path":       "", // Local inventory file (takes precedence over url)
			"url":        "", // Remote inventory location
			"cache_file": "", // Cache override (default: <state_dir>/inventory.txt)
		},
		"contributors": map[string]interface{}{
			"names_file": "",         // Registry path (default: <changes_dir>/names.inc)
			"aliases":    []string{}, // "Alias = Canonical Name" git identity mappings
		},
		"lint": map[string]interface{}{
			"jobs":   4,     // Concurrent fragment checks
			"strict": false, // Promote warnings to errors
		},
		"forge": map[string]interface{}{
			"kind":     "", // github | gitlab (detected from repo_url when empty)
			"project":  "", // Project path, e.g. mne-tools/mne-python (detected from repo_url)
			"base_url": "", // Self-hosted instance API
			"repo_url": "", // Canonical repository URL, also used for issue links
		},
		"render": map[string]interface{}{
			"docs_url": "", // Documentation site base URL for cross-reference links
		},
		"watch": map[string]interface{}{
			"debounce": "250ms", // Quiet window before re-linting
			"render":   false,   // Also refresh the rendered file on change
		},
	}
}
