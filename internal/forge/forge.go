// Package forge verifies issue and pull-request references against the
// project's code host. It is the optional deep check behind
// `relnotes lint --forge` and `relnotes forge verify`: every :gh:
// number in a fragment must exist upstream.
package forge

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Kind selects the forge implementation.
type Kind string

const (
	KindGitHub Kind = "github"
	KindGitLab Kind = "gitlab"
)

// verifyConcurrency bounds parallel issue lookups. The per-client rate
// limiter is the real throttle; this only caps in-flight requests.
const verifyConcurrency = 4

// Client checks issue numbers against one forge project.
type Client interface {
	// Name identifies the forge and project for messages.
	Name() string
	// IssueExists reports whether the number refers to an existing
	// issue or pull request.
	IssueExists(ctx context.Context, number int) (bool, error)
	// Verify checks many numbers and returns existence per number.
	Verify(ctx context.Context, numbers []int) (map[int]bool, error)
}

// Options configures a forge client.
type Options struct {
	Kind Kind
	// Project is the project path on the forge, e.g. "neuro/neuro".
	Project string
	// BaseURL points at a self-hosted instance. Empty means the public
	// host.
	BaseURL string
	// Token authenticates requests. Optional for public projects.
	Token string
}

// New creates a client for the configured forge.
func New(opts Options) (Client, error) {
	if opts.Project == "" {
		return nil, fmt.Errorf("forge project is not configured: set forge.project or forge.repo_url")
	}

	switch opts.Kind {
	case KindGitHub:
		return newGitHubClient(opts)
	case KindGitLab:
		return newGitLabClient(opts)
	default:
		return nil, fmt.Errorf("unknown forge kind %q (expected github or gitlab)", opts.Kind)
	}
}

// TokenFromEnv returns the forge API token from the environment.
// RELNOTES_FORGE_TOKEN wins over the host-specific variables.
func TokenFromEnv(kind Kind) string {
	if token := os.Getenv("RELNOTES_FORGE_TOKEN"); token != "" {
		return token
	}
	switch kind {
	case KindGitHub:
		if token := os.Getenv("GITHUB_TOKEN"); token != "" {
			return token
		}
		return os.Getenv("GH_TOKEN")
	case KindGitLab:
		return os.Getenv("GITLAB_TOKEN")
	default:
		return ""
	}
}

// DetectFromURL derives the forge kind and project path from a
// repository URL like https://github.com/neuro/neuro. Self-hosted
// instances are not guessed; configure them explicitly.
func DetectFromURL(repoURL string) (Kind, string, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(repoURL), "/")
	trimmed = strings.TrimSuffix(trimmed, ".git")

	for _, candidate := range []struct {
		prefix string
		kind   Kind
	}{
		{"https://github.com/", KindGitHub},
		{"http://github.com/", KindGitHub},
		{"https://gitlab.com/", KindGitLab},
		{"http://gitlab.com/", KindGitLab},
	} {
		if strings.HasPrefix(trimmed, candidate.prefix) {
			project := strings.TrimPrefix(trimmed, candidate.prefix)
			if project == "" || !strings.Contains(project, "/") {
				return "", "", fmt.Errorf("repository URL %q has no project path", repoURL)
			}
			return candidate.kind, project, nil
		}
	}
	return "", "", fmt.Errorf("cannot detect forge from %q: set forge.kind and forge.project", repoURL)
}

// verifyAll fans out existence checks with bounded concurrency.
func verifyAll(ctx context.Context, numbers []int, check func(context.Context, int) (bool, error)) (map[int]bool, error) {
	result := make(map[int]bool, len(numbers))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(verifyConcurrency)
	for _, number := range numbers {
		g.Go(func() error {
			exists, err := check(gctx, number)
			if err != nil {
				return err
			}
			mu.Lock()
			result[number] = exists
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
