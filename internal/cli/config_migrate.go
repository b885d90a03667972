package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/relnotes-tools/relnotes/internal/config"
)

var (
	migrateDryRun bool
	migrateRemove bool
)

var configMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate legacy JSON configs to YAML",
	Long: `Convert legacy JSON configuration files to the current YAML format.
Both the user config (~/.relnotes/config.json) and the project config
(.relnotes/config.json) are migrated when present. Existing YAML
configs are never overwritten.

With --remove the legacy JSON file is renamed to .bak after a
successful migration.`,
	Example: `  relnotes config migrate --dry-run
  relnotes config migrate --remove`,
	Args: cobra.NoArgs,
	RunE: runConfigMigrate,
}

func init() {
	configCmd.AddCommand(configMigrateCmd)
	configMigrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "report planned actions without writing")
	configMigrateCmd.Flags().BoolVar(&migrateRemove, "remove", false, "rename the legacy JSON to .bak after migrating")
}

func runConfigMigrate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	migrated := 0

	results := []*config.MigrationResult{}
	if result, err := config.MigrateUserConfig(migrateDryRun); err == nil {
		results = append(results, result)
	} else {
		return fmt.Errorf("migrating user config: %w", err)
	}
	if result, err := config.MigrateProjectConfig(migrateDryRun); err == nil {
		results = append(results, result)
	} else {
		return fmt.Errorf("migrating project config: %w", err)
	}

	for _, result := range results {
		if result.Success || strings.Contains(result.Message, "skipped") {
			fmt.Fprintln(out, result.Message)
		}
		if !result.Success {
			continue
		}
		migrated++
		if migrateRemove {
			if err := config.RemoveLegacyConfig(result.SourcePath, migrateDryRun); err != nil {
				return err
			}
			if !migrateDryRun {
				fmt.Fprintf(out, "  Legacy config backed up to %s.bak\n", result.SourcePath)
			}
		}
	}

	if migrated == 0 {
		fmt.Fprintln(out, "No legacy configs found; nothing to migrate.")
	}
	return nil
}
