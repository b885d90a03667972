// Package contributors maintains the contributor registry: the file of
// RST hyperlink targets that `Name`_ references and :newcontrib: tags
// resolve against, one contributor per line:
//
//	.. _Jane Doe: https://github.com/janedoe
//
// The registry is edited in place, so comments and blank lines are
// preserved across loads and saves.
package contributors

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
)

var targetRe = regexp.MustCompile(`^\.\. _(.+?):\s+(\S+)$`)

// Entry is one registered contributor.
type Entry struct {
	Name string
	URL  string
	// Line is the 1-based line number in the registry file.
	Line int
}

// Problem is a registry defect reported by the check command.
type Problem struct {
	Line    int
	Message string
}

// Registry is a loaded contributor registry.
type Registry struct {
	Path string

	lines         []string
	entries       []Entry
	index         map[string]int
	fold          map[string]string
	parseProblems []Problem
}

// Load reads a registry file from disk.
func Load(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening contributor registry: %w", err)
	}
	defer f.Close()
	return Parse(f, path)
}

// Parse reads a registry from a reader. Malformed lines are recorded as
// problems rather than failing the load, so lint can still run against
// the valid entries.
func Parse(r io.Reader, path string) (*Registry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading contributor registry %s: %w", path, err)
	}

	reg := &Registry{Path: path}
	reg.rebuild(lines)
	return reg, nil
}

// rebuild re-derives the entry index from raw lines.
func (reg *Registry) rebuild(lines []string) {
	reg.lines = lines
	reg.entries = nil
	reg.index = make(map[string]int)
	reg.fold = make(map[string]string)
	reg.parseProblems = nil

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
		case targetRe.MatchString(trimmed):
			m := targetRe.FindStringSubmatch(trimmed)
			entry := Entry{Name: strings.TrimSpace(m[1]), URL: m[2], Line: i + 1}
			if _, dup := reg.index[entry.Name]; !dup {
				reg.index[entry.Name] = len(reg.entries)
			}
			if _, dup := reg.fold[strings.ToLower(entry.Name)]; !dup {
				reg.fold[strings.ToLower(entry.Name)] = entry.Name
			}
			reg.entries = append(reg.entries, entry)
		case strings.HasPrefix(trimmed, ".. _"):
			reg.parseProblems = append(reg.parseProblems, Problem{
				Line:    i + 1,
				Message: fmt.Sprintf("malformed link target %q (expected \".. _Name: url\")", trimmed),
			})
		case strings.HasPrefix(trimmed, ".."):
			// Comment.
		default:
			reg.parseProblems = append(reg.parseProblems, Problem{
				Line:    i + 1,
				Message: fmt.Sprintf("unexpected line %q in contributor registry", trimmed),
			})
		}
	}
}

// Lookup resolves a contributor name to their URL.
func (reg *Registry) Lookup(name string) (string, bool) {
	i, ok := reg.index[name]
	if !ok {
		return "", false
	}
	return reg.entries[i].URL, true
}

// LookupFold resolves a name case-insensitively and returns the
// registered spelling, for did-you-mean remediation.
func (reg *Registry) LookupFold(name string) (string, bool) {
	canonical, ok := reg.fold[strings.ToLower(name)]
	return canonical, ok
}

// Names returns the registered names in file order.
func (reg *Registry) Names() []string {
	names := make([]string, len(reg.entries))
	for i, entry := range reg.entries {
		names[i] = entry.Name
	}
	return names
}

// Entries returns the registered contributors in file order.
func (reg *Registry) Entries() []Entry {
	return reg.entries
}

// Len returns the number of registered contributors.
func (reg *Registry) Len() int {
	return len(reg.entries)
}

// Add registers a new contributor, inserting the target line at its
// alphabetical position among the existing targets.
func (reg *Registry) Add(name, url string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("contributor name must not be empty")
	}
	if strings.Contains(name, ":") || strings.Contains(name, "`") {
		return fmt.Errorf("contributor name %q must not contain ':' or '`'", name)
	}
	if url == "" {
		return fmt.Errorf("contributor URL must not be empty")
	}
	if existing, ok := reg.LookupFold(name); ok {
		return fmt.Errorf("contributor %q is already registered as %q", name, existing)
	}

	newLine := fmt.Sprintf(".. _%s: %s", name, url)

	at := -1
	for _, entry := range reg.entries {
		if strings.ToLower(entry.Name) > strings.ToLower(name) {
			at = entry.Line - 1
			break
		}
	}

	var lines []string
	switch {
	case at >= 0:
		lines = append(lines, reg.lines[:at]...)
		lines = append(lines, newLine)
		lines = append(lines, reg.lines[at:]...)
	case len(reg.entries) > 0:
		last := reg.entries[len(reg.entries)-1].Line
		lines = append(lines, reg.lines[:last]...)
		lines = append(lines, newLine)
		lines = append(lines, reg.lines[last:]...)
	default:
		lines = append(lines, reg.lines...)
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, newLine)
	}

	reg.rebuild(lines)
	return nil
}

// Render returns the registry file content.
func (reg *Registry) Render() string {
	if len(reg.lines) == 0 {
		return ""
	}
	return strings.Join(reg.lines, "\n") + "\n"
}

// Save writes the registry back to path.
func (reg *Registry) Save(path string) error {
	if err := os.WriteFile(path, []byte(reg.Render()), 0o644); err != nil {
		return fmt.Errorf("writing contributor registry: %w", err)
	}
	return nil
}

// Problems reports registry defects: malformed lines, duplicate names,
// non-http URLs, and out-of-order entries.
func (reg *Registry) Problems() []Problem {
	problems := append([]Problem(nil), reg.parseProblems...)

	seen := make(map[string]Entry)
	for _, entry := range reg.entries {
		key := strings.ToLower(entry.Name)
		if prev, dup := seen[key]; dup {
			problems = append(problems, Problem{
				Line:    entry.Line,
				Message: fmt.Sprintf("duplicate contributor %q (already registered at line %d)", entry.Name, prev.Line),
			})
			continue
		}
		seen[key] = entry

		if !strings.HasPrefix(entry.URL, "http://") && !strings.HasPrefix(entry.URL, "https://") {
			problems = append(problems, Problem{
				Line:    entry.Line,
				Message: fmt.Sprintf("contributor %q has a non-http URL %q", entry.Name, entry.URL),
			})
		}
	}

	for i := 1; i < len(reg.entries); i++ {
		prev, cur := reg.entries[i-1], reg.entries[i]
		if strings.ToLower(prev.Name) > strings.ToLower(cur.Name) {
			problems = append(problems, Problem{
				Line:    cur.Line,
				Message: fmt.Sprintf("contributor %q is out of alphabetical order (after %q)", cur.Name, prev.Name),
			})
		}
	}

	sort.Slice(problems, func(i, j int) bool { return problems[i].Line < problems[j].Line })
	return problems
}
