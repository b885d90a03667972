// Package gitutil provides the git repository helpers relnotes needs:
// repository detection, identity lookup for default attributions, and
// remote-URL discovery for forge configuration. It uses the go-git
// library throughout; no git binary is required.
package gitutil

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
)

// debugLogger logs debug messages when debug mode is enabled. By
// default it is a no-op; set it via SetDebugLogger.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for git operations. Pass
// nil to disable debug logging.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// Open opens the git repository containing path, traversing up the
// directory tree to find it. An empty path means the current working
// directory.
func Open(path string) (*git.Repository, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	logDebug("[git] opening repository at %s", path)

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}
	return repo, nil
}

// IsRepository checks whether path is within a git repository.
func IsRepository(path string) bool {
	_, err := Open(path)
	result := err == nil
	logDebug("[git] IsRepository: %v", result)
	return result
}

// RepositoryRoot returns the absolute path of the repository root
// containing path.
func RepositoryRoot(path string) (string, error) {
	repo, err := Open(path)
	if err != nil {
		return "", err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("getting worktree: %w", err)
	}

	root := worktree.Filesystem.Root()
	logDebug("[git] RepositoryRoot: %s", root)
	return root, nil
}

// CurrentBranch returns the checked-out branch name, or an empty string
// in detached HEAD state.
func CurrentBranch(path string) (string, error) {
	repo, err := Open(path)
	if err != nil {
		return "", err
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD reference: %w", err)
	}
	if !head.Name().IsBranch() {
		logDebug("[git] CurrentBranch: detached HEAD state")
		return "", nil
	}
	return head.Name().Short(), nil
}

// Identity is the configured git user, used as the default entry
// attribution.
type Identity struct {
	Name  string
	Email string
}

// UserIdentity returns the git user for the repository containing path,
// honoring local, global, and system config in that order.
func UserIdentity(path string) (Identity, error) {
	repo, err := Open(path)
	if err != nil {
		return Identity{}, err
	}

	cfg, err := repo.ConfigScoped(config.SystemScope)
	if err != nil {
		return Identity{}, fmt.Errorf("reading git config: %w", err)
	}

	id := Identity{
		Name:  strings.TrimSpace(cfg.User.Name),
		Email: strings.TrimSpace(cfg.User.Email),
	}
	if id.Name == "" {
		return id, fmt.Errorf("git user.name is not configured")
	}
	logDebug("[git] UserIdentity: %s <%s>", id.Name, id.Email)
	return id, nil
}

// RemoteURL returns the fetch URL of the origin remote, normalized to
// https form so it can seed forge configuration.
func RemoteURL(path string) (string, error) {
	repo, err := Open(path)
	if err != nil {
		return "", err
	}

	remote, err := repo.Remote("origin")
	if err != nil {
		return "", fmt.Errorf("getting origin remote: %w", err)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("origin remote has no URL")
	}
	return NormalizeRemoteURL(urls[0]), nil
}

// NormalizeRemoteURL converts scp-style and ssh remotes to https and
// strips the .git suffix, so git@github.com:org/repo.git becomes
// https://github.com/org/repo.
func NormalizeRemoteURL(url string) string {
	url = strings.TrimSuffix(strings.TrimSpace(url), ".git")
	switch {
	case strings.HasPrefix(url, "git@"):
		rest := strings.TrimPrefix(url, "git@")
		rest = strings.Replace(rest, ":", "/", 1)
		return "https://" + rest
	case strings.HasPrefix(url, "ssh://git@"):
		return "https://" + strings.TrimPrefix(url, "ssh://git@")
	default:
		return url
	}
}
