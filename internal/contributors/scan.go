package contributors

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/relnotes-tools/relnotes/internal/gitutil"
)

// Unregistered is a commit author missing from the registry.
type Unregistered struct {
	Name    string
	Email   string
	Commits int
	Last    time.Time
}

// ScanOptions tunes the repository scan.
type ScanOptions struct {
	// Aliases maps commit author names or emails to registered names,
	// for contributors whose git identity differs from their registry
	// entry.
	Aliases map[string]string
	// MaxCommits bounds the history walk. Zero walks the full history.
	MaxCommits int
}

// ScanRepository walks the commit history of the repository containing
// path and reports authors that are not in the registry, most active
// first. Bot accounts are skipped.
func ScanRepository(path string, reg *Registry, opts ScanOptions) ([]Unregistered, error) {
	repo, err := gitutil.Open(path)
	if err != nil {
		return nil, err
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("getting HEAD reference: %w", err)
	}

	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("reading commit history: %w", err)
	}
	defer iter.Close()

	missing := make(map[string]*Unregistered)
	walked := 0
	err = iter.ForEach(func(commit *object.Commit) error {
		walked++
		if opts.MaxCommits > 0 && walked > opts.MaxCommits {
			return storer.ErrStop
		}

		name := strings.TrimSpace(commit.Author.Name)
		email := strings.TrimSpace(commit.Author.Email)
		name = resolveAlias(opts.Aliases, name, email)
		if name == "" || isBot(name) {
			return nil
		}
		if _, registered := reg.LookupFold(name); registered {
			return nil
		}

		key := strings.ToLower(name)
		entry, ok := missing[key]
		if !ok {
			entry = &Unregistered{Name: name, Email: email}
			missing[key] = entry
		}
		entry.Commits++
		if commit.Author.When.After(entry.Last) {
			entry.Last = commit.Author.When
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking commit history: %w", err)
	}

	result := make([]Unregistered, 0, len(missing))
	for _, entry := range missing {
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Commits != result[j].Commits {
			return result[i].Commits > result[j].Commits
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func resolveAlias(aliases map[string]string, name, email string) string {
	if alias, ok := aliases[email]; ok {
		return alias
	}
	if alias, ok := aliases[name]; ok {
		return alias
	}
	return name
}

func isBot(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, "[bot]") || strings.HasSuffix(lower, " bot")
}
