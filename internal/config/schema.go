package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ConfigValueType defines the expected type for a configuration value.
type ConfigValueType int

const (
	TypeBool ConfigValueType = iota
	TypeInt
	TypeDuration
	TypeString
	TypeEnum
)

// String returns the string representation of ConfigValueType.
func (t ConfigValueType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeDuration:
		return "duration"
	case TypeString:
		return "string"
	case TypeEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// ConfigKeySchema defines a known configuration key with its expected type and validation rules.
type ConfigKeySchema struct {
	Path          string          // Dotted key path (e.g., "lint.jobs")
	Type          ConfigValueType // Expected value type for validation
	AllowedValues []string        // Valid values for enum types (empty for non-enums)
	Description   string          // Human-readable description for help text
	Default       interface{}     // Default value
}

// KnownKeys is the registry of all known configuration keys with their schemas.
var KnownKeys = map[string]ConfigKeySchema{
	"changes_dir": {
		Path:        "changes_dir",
		Type:        TypeString,
		Description: "Directory holding the release-note fragments",
		Default:     "doc/changes",
	},
	"devel_file": {
		Path:        "devel_file",
		Type:        TypeString,
		Description: "File name of the unreleased fragment inside changes_dir",
		Default:     "devel.inc",
	},
	"rendered_file": {
		Path:        "rendered_file",
		Type:        TypeString,
		Description: "Committed markdown rendering kept in sync with the devel fragment",
		Default:     "doc/changes/devel.md",
	},
	"state_dir": {
		Path:        "state_dir",
		Type:        TypeString,
		Description: "Directory for mutable state (run history, cached inventory)",
		Default:     "~/.relnotes/state",
	},
	"offline": {
		Path:        "offline",
		Type:        TypeBool,
		Description: "Disable network access; use cached data only",
		Default:     false,
	},
	"max_history_entries": {
		Path:        "max_history_entries",
		Type:        TypeInt,
		Description: "Maximum number of run history entries to retain",
		Default:     500,
	},
	"view_limit": {
		Path:        "view_limit",
		Type:        TypeInt,
		Description: "Entries per section shown by the view command",
		Default:     5,
	},
	"inventory.path": {
		Path:        "inventory.path",
		Type:        TypeString,
		Description: "Local documented-symbol inventory file",
		Default:     "",
	},
	"inventory.url": {
		Path:        "inventory.url",
		Type:        TypeString,
		Description: "Remote inventory location, cached under the state dir",
		Default:     "",
	},
	"inventory.cache_file": {
		Path:        "inventory.cache_file",
		Type:        TypeString,
		Description: "Override for the inventory cache location",
		Default:     "",
	},
	"contributors.names_file": {
		Path:        "contributors.names_file",
		Type:        TypeString,
		Description: "Contributor registry file of RST link targets",
		Default:     "",
	},
	"contributors.aliases": {
		Path:        "contributors.aliases",
		Type:        TypeString, // Actually a list, but we handle as string for simplicity
		Description: "Git identity mappings, one \"Alias = Canonical Name\" per entry",
		Default:     "",
	},
	"lint.jobs": {
		Path:        "lint.jobs",
		Type:        TypeInt,
		Description: "Concurrent fragment checks during lint",
		Default:     4,
	},
	"lint.strict": {
		Path:        "lint.strict",
		Type:        TypeBool,
		Description: "Promote lint warnings to errors",
		Default:     false,
	},
	"forge.kind": {
		Path:          "forge.kind",
		Type:          TypeEnum,
		AllowedValues: []string{"", "github", "gitlab"},
		Description:   "Code host used to verify issue references",
		Default:       "",
	},
	"forge.project": {
		Path:        "forge.project",
		Type:        TypeString,
		Description: "Project path on the forge (e.g. mne-tools/mne-python)",
		Default:     "",
	},
	"forge.base_url": {
		Path:        "forge.base_url",
		Type:        TypeString,
		Description: "Self-hosted forge instance API URL",
		Default:     "",
	},
	"forge.repo_url": {
		Path:        "forge.repo_url",
		Type:        TypeString,
		Description: "Canonical repository URL; forge kind and project are detected from it",
		Default:     "",
	},
	"render.docs_url": {
		Path:        "render.docs_url",
		Type:        TypeString,
		Description: "Documentation site base URL for cross-reference links",
		Default:     "",
	},
	"watch.debounce": {
		Path:        "watch.debounce",
		Type:        TypeDuration,
		Description: "Quiet window after a file change before re-linting (e.g., 250ms, 2s)",
		Default:     "250ms",
	},
	"watch.render": {
		Path:        "watch.render",
		Type:        TypeBool,
		Description: "Also refresh the rendered markdown file while watching",
		Default:     false,
	},
}

// KeyNames returns the known key paths in sorted order, for listings.
func KeyNames() []string {
	names := make([]string, 0, len(KnownKeys))
	for path := range KnownKeys {
		names = append(names, path)
	}
	sort.Strings(names)
	return names
}

// ErrUnknownKey is returned when trying to access an unknown configuration key.
type ErrUnknownKey struct {
	Key string
}

func (e ErrUnknownKey) Error() string {
	return "unknown configuration key: " + e.Key
}

// GetKeySchema returns the schema for a known configuration key.
// Returns ErrUnknownKey if the key is not in the registry.
func GetKeySchema(path string) (ConfigKeySchema, error) {
	schema, ok := KnownKeys[path]
	if !ok {
		return ConfigKeySchema{}, ErrUnknownKey{Key: path}
	}
	return schema, nil
}

// ParsedValue represents a configuration value after type inference and validation.
type ParsedValue struct {
	Raw    string      // Original string input from user
	Parsed interface{} // Value converted to correct type
	Type   ConfigValueType
}

// ValidateValue validates a value against the schema for a given key.
// Returns the parsed value or an error with details about what's wrong.
func ValidateValue(key, value string) (ParsedValue, error) {
	schema, err := GetKeySchema(key)
	if err != nil {
		return ParsedValue{}, err
	}
	return validateAgainstSchema(schema, value)
}

// validateAgainstSchema validates a value against a specific schema.
func validateAgainstSchema(schema ConfigKeySchema, value string) (ParsedValue, error) {
	switch schema.Type {
	case TypeBool:
		return parseBoolValue(value)
	case TypeInt:
		return parseIntValue(value)
	case TypeDuration:
		return parseDurationValue(value)
	case TypeEnum:
		return parseEnumValue(schema, value)
	case TypeString:
		return ParsedValue{Raw: value, Parsed: value, Type: TypeString}, nil
	default:
		return ParsedValue{}, fmt.Errorf("unsupported type: %v", schema.Type)
	}
}

// parseBoolValue parses and validates a boolean value.
func parseBoolValue(value string) (ParsedValue, error) {
	switch strings.ToLower(value) {
	case "true":
		return ParsedValue{Raw: value, Parsed: true, Type: TypeBool}, nil
	case "false":
		return ParsedValue{Raw: value, Parsed: false, Type: TypeBool}, nil
	default:
		return ParsedValue{}, fmt.Errorf("invalid boolean: %q (expected true or false)", value)
	}
}

// parseIntValue parses and validates an integer value.
func parseIntValue(value string) (ParsedValue, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return ParsedValue{}, fmt.Errorf("invalid integer: %q", value)
	}
	return ParsedValue{Raw: value, Parsed: n, Type: TypeInt}, nil
}

// parseDurationValue parses and validates a duration value.
func parseDurationValue(value string) (ParsedValue, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return ParsedValue{}, fmt.Errorf("invalid duration: %q (examples: 250ms, 5m, 1h30m)", value)
	}
	return ParsedValue{Raw: value, Parsed: d.String(), Type: TypeDuration}, nil
}

// parseEnumValue validates a value against allowed enum options.
func parseEnumValue(schema ConfigKeySchema, value string) (ParsedValue, error) {
	for _, allowed := range schema.AllowedValues {
		if value == allowed {
			return ParsedValue{Raw: value, Parsed: value, Type: TypeEnum}, nil
		}
	}
	return ParsedValue{}, fmt.Errorf(
		"invalid value: %q (valid options: %s)",
		value,
		strings.Join(schema.AllowedValues, ", "),
	)
}
