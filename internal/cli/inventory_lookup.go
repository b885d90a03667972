package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	errs "github.com/relnotes-tools/relnotes/internal/errors"
	"github.com/relnotes-tools/relnotes/internal/inventory"
	"github.com/relnotes-tools/relnotes/internal/output"
)

var inventoryLookupCmd = &cobra.Command{
	Use:   "lookup <symbol>",
	Short: "Check whether a symbol is documented",
	Long: `Look a symbol up in the inventory the way the lint cross-reference
rule does, and suggest near matches when it is missing. Useful for
debugging a failing :func:/:class:/:meth: reference.`,
	Example: `  relnotes inventory lookup pkg.load
  relnotes inventory lookup pkg.Raw.crop`,
	Args: cobra.ExactArgs(1),
	RunE: runInventoryLookup,
}

func init() {
	inventoryCmd.AddCommand(inventoryLookupCmd)
}

func runInventoryLookup(cmd *cobra.Command, args []string) error {
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
	symbol := args[0]
	if kind, ok := inv.Lookup(symbol); ok {
		output.PrintSuccess(out, fmt.Sprintf("%s is documented as a %s", symbol, kind))
		return nil
	}

	output.PrintFailure(out, fmt.Sprintf("%s is not in the inventory", symbol))
	if suggestions := inv.Suggest(symbol); len(suggestions) > 0 {
		fmt.Fprintln(out, "\nDid you mean:")
		for _, s := range suggestions {
			fmt.Fprintf(out, "  %s\n", s)
		}
	}
	return NewExitError(ExitFindings)
}
