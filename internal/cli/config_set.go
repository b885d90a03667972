package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/relnotes-tools/relnotes/internal/config"
	errs "github.com/relnotes-tools/relnotes/internal/errors"
)

var configSetUser bool

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the project config (or the user config
with --user). The value is validated against the key's type before
anything is written; list the known keys with 'relnotes config keys'.`,
	Example: `  relnotes config set lint.jobs 8
  relnotes config set inventory.url https://docs.example.org/objects.inv.txt
  relnotes config set offline true --user`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Show a configuration value and where it comes from",
	Example: `  relnotes config get changes_dir
  relnotes config get lint.jobs`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configSetCmd.Flags().BoolVar(&configSetUser, "user", false, "write to the user config instead of the project config")
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	path := configFlag
	label := "project"
	switch {
	case configSetUser:
		if path != "" {
			return errs.InvalidFlagCombination("--user with --config",
				"--config already names the file to write")
		}
		userPath, err := config.UserConfigPath()
		if err != nil {
			return errs.Wrap(err, errs.Runtime)
		}
		path = userPath
		label = "user"
	case path == "":
		if fileMissing(config.ProjectConfigDir()) {
			return errs.NewConfigError("not in a project directory (no .relnotes/ found)",
				"Run 'relnotes init' to create the project layout",
				"Or pass --user to write the user config")
		}
		path = config.ProjectConfigPath()
	}

	if err := config.SetConfigValue(path, key, value); err != nil {
		return errs.Wrap(err, errs.Argument,
			"List the known keys with: relnotes config keys")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s config\n", key, value, label)
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	schema, err := config.GetKeySchema(key)
	if err != nil {
		return errs.NewArgumentError(err.Error(),
			"List the known keys with: relnotes config keys")
	}
	keyPath, err := config.ParseKeyPath(key)
	if err != nil {
		return errs.NewArgumentError(err.Error())
	}

	out := cmd.OutOrStdout()
	if value, envName, ok := config.EnvValue(key); ok {
		fmt.Fprintf(out, "%s: %s (environment: %s)\n", key, value, envName)
		return nil
	}
	projectPath := configFlag
	if projectPath == "" {
		projectPath = config.ProjectConfigPath()
	}
	if node := lookupYAMLValue(projectPath, keyPath); node != nil {
		fmt.Fprintf(out, "%s: %s (project config)\n", key, nodeString(node))
		return nil
	}
	if userPath, err := config.UserConfigPath(); err == nil {
		if node := lookupYAMLValue(userPath, keyPath); node != nil {
			fmt.Fprintf(out, "%s: %s (user config)\n", key, nodeString(node))
			return nil
		}
	}
	if schema.Default != nil {
		fmt.Fprintf(out, "%s: %v (default)\n", key, schema.Default)
		return nil
	}
	fmt.Fprintf(out, "%s: not set\n", key)
	return nil
}

// lookupYAMLValue reads a config file and returns the node at keyPath,
// or nil when the file or key is absent.
func lookupYAMLValue(path string, keyPath []string) *yaml.Node {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil
	}
	return config.GetNestedValue(&root, keyPath)
}

func nodeString(node *yaml.Node) string {
	if node.Kind == yaml.ScalarNode {
		return node.Value
	}
	out, err := yaml.Marshal(node)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
