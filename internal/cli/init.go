package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/relnotes-tools/relnotes/internal/config"
	"github.com/relnotes-tools/relnotes/internal/gitutil"
	"github.com/relnotes-tools/relnotes/internal/templates"
)

var (
	initForce   bool
	initDocsURL string
	initVersion string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold the changelog layout",
	Long: `Create everything a project needs to start keeping release notes.

This command:
  1. Creates the changes directory
  2. Writes a starter unreleased fragment with empty sections
  3. Writes a starter contributor registry (names file)
  4. Writes the project configuration to .relnotes/config.yml

Existing files are left alone unless --force is given. The repository
URL for the config is detected from the git remote when possible.`,
	Example: `  relnotes init
  relnotes init --docs-url https://docs.example.org/stable
  relnotes init --force      # rewrite the starter files`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.GroupID = GroupGettingStarted
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing starter files")
	initCmd.Flags().StringVar(&initDocsURL, "docs-url", "", "documentation base URL written to the project config")
	initCmd.Flags().StringVar(&initVersion, "release", "0.1", "version label for the starter unreleased fragment")
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	// Step 1: changes directory
	if _, err := os.Stat(cfg.ChangesDir); err == nil {
		fmt.Fprintf(out, "✓ Changes directory: already present at %s/\n", cfg.ChangesDir)
	} else {
		if err := os.MkdirAll(cfg.ChangesDir, 0o755); err != nil {
			return fmt.Errorf("failed to create changes directory: %w", err)
		}
		fmt.Fprintf(out, "✓ Changes directory: created %s/\n", cfg.ChangesDir)
	}

	// Step 2: unreleased fragment
	develPath := cfg.DevelPath()
	if fileMissing(develPath) || initForce {
		content, err := templates.DevelFragment(initVersion)
		if err != nil {
			return fmt.Errorf("failed to render starter fragment: %w", err)
		}
		if err := os.WriteFile(develPath, content, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", develPath, err)
		}
		fmt.Fprintf(out, "✓ Unreleased fragment: created %s\n", develPath)
	} else {
		fmt.Fprintf(out, "✓ Unreleased fragment: already present\n")
	}

	// Step 3: contributor registry
	namesPath := cfg.NamesPath()
	if fileMissing(namesPath) || initForce {
		content, err := templates.ContributorSeed()
		if err != nil {
			return fmt.Errorf("failed to render contributor registry: %w", err)
		}
		if err := os.WriteFile(namesPath, content, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", namesPath, err)
		}
		fmt.Fprintf(out, "✓ Contributor registry: created %s\n", namesPath)
	} else {
		fmt.Fprintf(out, "✓ Contributor registry: already present\n")
	}

	// Step 4: project configuration
	configPath := configFlag
	if configPath == "" {
		configPath = config.ProjectConfigPath()
	}
	if fileMissing(configPath) || initForce {
		docsURL := initDocsURL
		if docsURL == "" {
			docsURL = cfg.Render.DocsURL
		}
		repoURL := cfg.Forge.RepoURL
		if repoURL == "" {
			if remote, err := gitutil.RemoteURL("."); err == nil {
				repoURL = gitutil.NormalizeRemoteURL(remote)
			}
		}
		content, err := templates.ProjectConfig(templates.ConfigContext{
			ChangesDir: cfg.ChangesDir,
			DevelFile:  cfg.DevelFile,
			NamesFile:  cfg.Contributors.NamesFile,
			DocsURL:    docsURL,
			RepoURL:    repoURL,
		})
		if err != nil {
			return fmt.Errorf("failed to render project config: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := os.WriteFile(configPath, content, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", configPath, err)
		}
		fmt.Fprintf(out, "✓ Config: created %s\n", configPath)
	} else {
		fmt.Fprintf(out, "✓ Config: already present at %s\n", configPath)
	}

	fmt.Fprintf(out, "\nRecord your first entry with: relnotes add bugs \"...\"\n")
	return nil
}

func fileMissing(path string) bool {
	_, err := os.Stat(path)
	return os.IsNotExist(err)
}
