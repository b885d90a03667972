// Package inventory loads the documented library's symbol inventory,
// the registry that cross-reference roles resolve against.
//
// The inventory is a plain-text file with one symbol per line:
//
//	neuro.io.read_raw_edf function
//	neuro.Epochs class
//	neuro.Epochs.average method
//
// Blank lines and # comments are allowed. The kind column is free-form;
// it feeds statistics and error messages, not resolution.
package inventory

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Inventory is a loaded symbol inventory.
type Inventory struct {
	// Source records where the inventory came from (file path or URL),
	// for findings and error messages.
	Source string

	kinds map[string]string
	names []string
}

// Load reads an inventory file from disk.
func Load(path string) (*Inventory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening inventory: %w", err)
	}
	defer f.Close()
	return Parse(f, path)
}

// Parse reads an inventory from a reader. The source is used in error
// messages only.
func Parse(r io.Reader, source string) (*Inventory, error) {
	inv := &Inventory{
		Source: source,
		kinds:  make(map[string]string),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s:%d: invalid inventory line %q (expected \"name kind\")", source, lineNo, line)
		}

		name, kind := fields[0], fields[1]
		if _, dup := inv.kinds[name]; !dup {
			inv.names = append(inv.names, name)
		}
		inv.kinds[name] = kind
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading inventory %s: %w", source, err)
	}
	return inv, nil
}

// Lookup resolves a symbol name to its kind.
func (inv *Inventory) Lookup(name string) (string, bool) {
	kind, ok := inv.kinds[name]
	return kind, ok
}

// Len returns the number of distinct symbols.
func (inv *Inventory) Len() int {
	return len(inv.names)
}

// Stats returns the symbol count per kind.
func (inv *Inventory) Stats() map[string]int {
	stats := make(map[string]int)
	for _, name := range inv.names {
		stats[inv.kinds[name]]++
	}
	return stats
}

// Kinds returns the kinds present in the inventory, sorted.
func (inv *Inventory) Kinds() []string {
	stats := inv.Stats()
	kinds := make([]string, 0, len(stats))
	for kind := range stats {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// Suggest returns up to three symbols sharing the unresolved name's last
// dotted component, for did-you-mean remediation.
func (inv *Inventory) Suggest(name string) []string {
	leaf := name
	if i := strings.LastIndex(name, "."); i >= 0 {
		leaf = name[i+1:]
	}

	var matches []string
	for _, candidate := range inv.names {
		if candidate == name {
			continue
		}
		if strings.HasSuffix(candidate, "."+leaf) || candidate == leaf {
			matches = append(matches, candidate)
		}
	}
	sort.Strings(matches)
	if len(matches) > 3 {
		matches = matches[:3]
	}
	return matches
}
