//go:build e2e

// Package e2e provides end-to-end tests for the relnotes CLI.
// These tests build the real binary and exercise it against throwaway
// project directories with a sanitized environment.
//
// To run these tests:
//
//	go test -tags=e2e ./tests/e2e/...
package e2e

import (
	"strings"
	"testing"

	"github.com/relnotes-tools/relnotes/internal/testutil"
	"github.com/stretchr/testify/require"
)

func TestE2E_Smoke(t *testing.T) {
	tests := map[string]struct {
		args          []string
		setupFunc     func(*testutil.E2EEnv)
		wantExitCode  int
		wantStdoutSub string
		wantStderrSub string
	}{
		"help lists the command groups": {
			args:          []string{"--help"},
			wantExitCode:  0,
			wantStdoutSub: "Changelog:",
		},
		"version prints the binary identity": {
			args:          []string{"version"},
			wantExitCode:  0,
			wantStdoutSub: "relnotes",
		},
		"config get works without a project": {
			args:          []string{"config", "get", "view_limit"},
			wantExitCode:  0,
			wantStdoutSub: "view_limit: 5",
		},
		"init scaffolds the changelog layout": {
			args:          []string{"init"},
			wantExitCode:  0,
			wantStdoutSub: "Changes directory: created doc/changes/",
		},
		"lint reports a clean scaffold": {
			args: []string{"lint"},
			setupFunc: func(env *testutil.E2EEnv) {
				env.Run("init")
			},
			wantExitCode:  0,
			wantStdoutSub: "1 file clean",
		},
		"history is empty on a fresh environment": {
			args:          []string{"history"},
			wantExitCode:  0,
			wantStdoutSub: "No history available.",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			env := testutil.NewE2EEnv(t)

			if tt.setupFunc != nil {
				tt.setupFunc(env)
			}

			result := env.Run(tt.args...)

			require.Equal(t, tt.wantExitCode, result.ExitCode,
				"unexpected exit code\nstdout: %s\nstderr: %s",
				result.Stdout, result.Stderr)

			if tt.wantStdoutSub != "" {
				require.Contains(t, result.Stdout, tt.wantStdoutSub,
					"stdout should contain expected substring")
			}
			if tt.wantStderrSub != "" {
				require.Contains(t, result.Stderr, tt.wantStderrSub,
					"stderr should contain expected substring")
			}
		})
	}
}

// TestE2E_EnvIsolation verifies that commands run against the throwaway
// home directory rather than the developer's real one: state written by
// a command must land inside the temp dir.
func TestE2E_EnvIsolation(t *testing.T) {
	env := testutil.NewE2EEnv(t)
	env.Run("init")

	result := env.Run("lint")
	require.Equal(t, 0, result.ExitCode,
		"lint should pass on a fresh scaffold\nstdout: %s\nstderr: %s",
		result.Stdout, result.Stderr)

	// The run log defaults to ~/.relnotes/state; HOME points at the
	// temp dir, so the log must appear there.
	require.True(t, env.FileExists(".relnotes/state/history.jsonl"),
		"history log should be written under the isolated HOME")
}

// TestE2E_EnvOverride verifies that RELNOTES_* variables reach the
// binary through the sanitized environment.
func TestE2E_EnvOverride(t *testing.T) {
	env := testutil.NewE2EEnv(t)
	env.Run("init")
	env.SetEnv("RELNOTES_VIEW_LIMIT", "2")

	result := env.Run("config", "get", "view_limit")
	require.Equal(t, 0, result.ExitCode)
	require.Contains(t, result.Stdout, "view_limit: 2",
		"environment override should win over defaults")
	require.Contains(t, result.Stdout, "environment",
		"config get should name the environment as the source")
}

// TestE2E_UnknownCommand verifies unknown subcommands fail with a
// diagnostic rather than silently succeeding.
func TestE2E_UnknownCommand(t *testing.T) {
	env := testutil.NewE2EEnv(t)

	result := env.Run("frobnicate")

	require.NotEqual(t, 0, result.ExitCode,
		"unknown command should fail")
	combined := strings.ToLower(result.Stdout + result.Stderr)
	require.Contains(t, combined, "unknown command",
		"output should name the problem")
}
