// Package cli tests the registry commands: contributors and inventory.
// Related: internal/cli/contributors.go, internal/cli/contributors_add.go,
//
//	internal/cli/contributors_check.go, internal/cli/inventory.go,
//	internal/cli/inventory_lookup.go
//
// Tags: cli, contributors, inventory, registries
package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContributorsListCommand(t *testing.T) {
	writeProject(t, testFragment)
	cmd, stdout, _ := newTestCmd()

	err := runContributorsList(cmd, []string{})
	require.NoError(t, err)

	out := stdout.String()
	assert.Contains(t, out, "Jane Doe")
	assert.Contains(t, out, "https://github.com/janedoe")
	assert.Contains(t, out, "3 contributors in")
}

func TestContributorsAddCommand(t *testing.T) {
	t.Run("registers a new name alphabetically", func(t *testing.T) {
		p := writeProject(t, testFragment)
		cmd, stdout, _ := newTestCmd()

		err := runContributorsAdd(cmd, []string{"Ada Lovelace", "https://github.com/ada"})
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Registered Ada Lovelace")

		content, readErr := os.ReadFile(filepath.Join(p.changesDir, "names.inc"))
		require.NoError(t, readErr)
		text := string(content)
		assert.Contains(t, text, ".. _Ada Lovelace: https://github.com/ada")
		assert.Less(t, strings.Index(text, "Ada Lovelace"), strings.Index(text, "Jane Doe"),
			"names should stay alphabetized")
	})

	t.Run("rejects duplicate names case insensitively", func(t *testing.T) {
		writeProject(t, testFragment)
		cmd, _, _ := newTestCmd()

		err := runContributorsAdd(cmd, []string{"jane doe", "https://example.org/jane"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already registered")
	})

	t.Run("rejects names with markup characters", func(t *testing.T) {
		writeProject(t, testFragment)
		cmd, _, _ := newTestCmd()

		err := runContributorsAdd(cmd, []string{"Bad:Name", "https://example.org"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must not contain")
	})
}

func TestContributorsCheckCommand(t *testing.T) {
	t.Run("passes when every credit is registered", func(t *testing.T) {
		writeProject(t, testFragment)
		cmd, stdout, _ := newTestCmd()

		err := runContributorsCheck(cmd, []string{})
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "All credited contributors are registered (3 names)")
	})

	t.Run("flags unregistered credits", func(t *testing.T) {
		writeProject(t, unregisteredFragment)
		cmd, stdout, _ := newTestCmd()

		err := runContributorsCheck(cmd, []string{})
		require.Error(t, err)

		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, ExitFindings, exitErr.Code)

		out := stdout.String()
		assert.Contains(t, out, `contributor "Ghost" is not registered`)
		assert.Contains(t, out, "1 problem. Register missing names")
	})

	t.Run("hints at case mismatches", func(t *testing.T) {
		fragment := `:orphan:

.. _current:

Version 1.8 (unreleased)
------------------------

Bugs
~~~~

- Fix crash on empty selections (:gh:` + "`1198`" + ` by ` + "`jane doe`_" + `)
`
		writeProject(t, fragment)
		cmd, stdout, _ := newTestCmd()

		err := runContributorsCheck(cmd, []string{})
		require.Error(t, err)
		assert.Contains(t, stdout.String(), "case mismatch with a registered name")
	})
}

func TestInventoryStatsCommand(t *testing.T) {
	t.Run("summarizes symbols by kind", func(t *testing.T) {
		p := writeProject(t, testFragment)
		withInventory(t, p, "neuro.read_raw function\nneuro.Epochs class\nneuro.concatenate_raws function\n")

		cmd, stdout, _ := newTestCmd()
		err := runInventoryStats(cmd, []string{})
		require.NoError(t, err)

		out := stdout.String()
		assert.Contains(t, out, "3 symbols from")
		assert.Contains(t, out, "function")
		assert.Contains(t, out, "class")
	})

	t.Run("requires a configured inventory", func(t *testing.T) {
		writeProject(t, testFragment)
		cmd, _, _ := newTestCmd()

		err := runInventoryStats(cmd, []string{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "inventory")
	})
}

func TestInventoryLookupCommand(t *testing.T) {
	t.Run("finds documented symbols", func(t *testing.T) {
		p := writeProject(t, testFragment)
		withInventory(t, p, "neuro.read_raw function\n")

		cmd, stdout, _ := newTestCmd()
		err := runInventoryLookup(cmd, []string{"neuro.read_raw"})
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "neuro.read_raw is documented as a function")
	})

	t.Run("misses exit with findings", func(t *testing.T) {
		p := writeProject(t, testFragment)
		withInventory(t, p, "neuro.read_raw function\n")

		cmd, stdout, _ := newTestCmd()
		err := runInventoryLookup(cmd, []string{"neuro.io.read_raw"})
		require.Error(t, err)

		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, ExitFindings, exitErr.Code)

		out := stdout.String()
		assert.Contains(t, out, "neuro.io.read_raw is not in the inventory")
		assert.Contains(t, out, "Did you mean:")
		assert.Contains(t, out, "neuro.read_raw")
	})
}
