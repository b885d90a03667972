package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/relnotes-tools/relnotes/internal/config"
	errs "github.com/relnotes-tools/relnotes/internal/errors"
	"github.com/relnotes-tools/relnotes/internal/lint"
	"github.com/relnotes-tools/relnotes/internal/notes"
	"github.com/relnotes-tools/relnotes/internal/output"
	"github.com/relnotes-tools/relnotes/internal/watch"
)

var watchRender bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-lint fragments whenever they change",
	Long: `Watch the changes directory and re-lint fragments as they are edited.
Rapid saves are debounced into one pass; editor swap and backup files
are ignored.

With --render (or watch.render in the config) a clean pass also
refreshes the rendered markdown file, so the committed page tracks the
fragment while you write.`,
	Example: `  relnotes watch
  relnotes watch --render`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.GroupID = GroupChangelog
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchRender, "render", false, "refresh the rendered markdown after each clean pass")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	index, err := scanChanges(cfg)
	if err != nil {
		return err
	}
	linter, err := buildLinter(cmd, cfg)
	if err != nil {
		return err
	}
	linter.Strict = cfg.Lint.Strict
	render := watchRender || cfg.Watch.Render

	watcher, err := watch.New(cfg.ChangesDir, watch.WithDebounce(cfg.DebounceInterval()))
	if err != nil {
		return errs.Wrap(err, errs.Runtime)
	}
	defer watcher.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// In raw mode Ctrl-C arrives as a key press, not SIGINT, so the
	// listener handles both exits.
	keys := watch.ListenKeys(os.Stdin)
	defer keys.Restore()
	go func() {
		for {
			select {
			case key := <-keys.Keys():
				if watch.IsQuitKey(key) {
					cancel()
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	out := cmd.OutOrStdout()
	runner := lint.NewRunner(linter, lintRunnerOptions(cfg)...)
	pass := func(paths []string) {
		report, err := runner.Run(ctx, paths)
		if err != nil {
			output.PrintFailure(out, err.Error())
			return
		}
		if err := report.WriteText(out); err != nil {
			return
		}
		if render && !report.HasErrors() && cfg.RenderedFile != "" {
			refreshRendered(cfg, out)
		}
	}

	fmt.Fprintf(out, "Watching %s (debounce %s). Press 'q' or Ctrl-C to stop.\n\n",
		cfg.ChangesDir, cfg.DebounceInterval())
	pass(fragmentPaths(index))

	err = watcher.Run(ctx, func(event watch.Event) {
		fmt.Fprintln(out)
		output.PrintRule(out, time.Now().Format("15:04:05"))
		pass(event.Paths)
	})
	keys.Restore()
	if stderrors.Is(err, context.Canceled) {
		fmt.Fprintln(out, "\nStopped.")
		return nil
	}
	return err
}

// lintRunnerOptions translates config into runner options.
func lintRunnerOptions(cfg *config.Configuration) []lint.RunnerOption {
	if cfg.Lint.Jobs > 0 {
		return []lint.RunnerOption{lint.WithJobs(cfg.Lint.Jobs)}
	}
	return nil
}

// refreshRendered rewrites the rendered markdown from the current
// unreleased fragment, reporting rather than failing on errors.
func refreshRendered(cfg *config.Configuration, out io.Writer) {
	doc, err := notes.Load(cfg.DevelPath())
	if err != nil {
		output.PrintWarning(out, fmt.Sprintf("render skipped: %v", err))
		return
	}
	content, err := notes.RenderMarkdownString(doc, renderLinks(cfg))
	if err != nil {
		output.PrintWarning(out, fmt.Sprintf("render skipped: %v", err))
		return
	}
	if err := os.WriteFile(cfg.RenderedFile, []byte(content), 0o644); err != nil {
		output.PrintWarning(out, fmt.Sprintf("render skipped: %v", err))
		return
	}
	output.PrintSuccess(out, fmt.Sprintf("Refreshed %s", cfg.RenderedFile))
}
