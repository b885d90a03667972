package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	errs "github.com/relnotes-tools/relnotes/internal/errors"
	"github.com/relnotes-tools/relnotes/internal/inventory"
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Inspect the documented-symbol inventory",
	Long: `Show what the configured symbol inventory contains. Cross-reference
roles such as :func:` + "`pkg.load`" + ` only lint clean when their target is
listed here.

The inventory comes from inventory.path (a local file) or
inventory.url (fetched and cached under the state directory).`,
	Example: `  relnotes inventory
  relnotes inventory fetch
  relnotes inventory lookup pkg.load`,
	Args: cobra.NoArgs,
	RunE: runInventoryStats,
}

func init() {
	inventoryCmd.GroupID = GroupRegistries
	rootCmd.AddCommand(inventoryCmd)
}

func runInventoryStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	src := cfg.InventorySource(cfg.Offline)
	if src.Path == "" && src.URL == "" {
		return errs.InventoryNotConfigured()
	}
	inv, err := inventory.Resolve(cmd.Context(), src)
	if err != nil {
		if cfg.Offline {
			return errs.InventoryCacheMissing(src.CachePath)
		}
		return errs.InventoryUnavailable(inventorySourceName(src), err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d symbols from %s\n", inv.Len(), inv.Source)
	stats := inv.Stats()
	for _, kind := range inv.Kinds() {
		fmt.Fprintf(out, "  %-8s %d\n", kind, stats[kind])
	}
	return nil
}
