package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	errs "github.com/relnotes-tools/relnotes/internal/errors"
	"github.com/relnotes-tools/relnotes/internal/inventory"
	"github.com/relnotes-tools/relnotes/internal/progress"
)

var inventoryFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the remote inventory and warm the cache",
	Long: `Download the inventory from inventory.url and write it to the cache
file under the state directory. Later offline runs lint against the
cached copy.`,
	Example: `  relnotes inventory fetch`,
	Args:    cobra.NoArgs,
	RunE:    runInventoryFetch,
}

func init() {
	inventoryCmd.AddCommand(inventoryFetchCmd)
}

func runInventoryFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Offline {
		return errs.InvalidFlagCombination("--offline with inventory fetch",
			"fetching the inventory requires network access")
	}
	url := cfg.Inventory.URL
	if url == "" {
		return errs.InventoryNotConfigured()
	}
	cachePath := cfg.InventoryCachePath()

	display := progress.NewDisplay(cmd.OutOrStdout())
	display.Start(fmt.Sprintf("Fetching inventory from %s...", url))
	inv, err := inventory.FetchToFile(cmd.Context(), url, cachePath)
	display.Stop()
	if err != nil {
		return errs.InventoryUnavailable(url, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Cached %d symbols at %s\n", inv.Len(), cachePath)
	return nil
}
