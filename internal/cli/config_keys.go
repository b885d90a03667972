package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/relnotes-tools/relnotes/internal/config"
)

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List all known configuration keys",
	Long: `List every configuration key relnotes understands, with its type,
default value, and description. These are the keys 'config set' and
'config get' accept.`,
	Example: `  relnotes config keys`,
	Args:    cobra.NoArgs,
	RunE:    runConfigKeys,
}

func init() {
	configCmd.AddCommand(configKeysCmd)
}

func runConfigKeys(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	faint := color.New(color.Faint).SprintFunc()

	widest := 0
	for _, name := range config.KeyNames() {
		if len(name) > widest {
			widest = len(name)
		}
	}
	for _, name := range config.KeyNames() {
		schema := config.KnownKeys[name]
		def := ""
		if schema.Default != nil {
			def = fmt.Sprintf(" (default: %v)", schema.Default)
		}
		fmt.Fprintf(out, "%-*s  %-8s  %s%s\n",
			widest, name, schema.Type, schema.Description, faint(def))
	}
	return nil
}
