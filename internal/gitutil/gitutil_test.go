package gitutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initRepo creates a repository with one commit in a temp directory.
func initRepo(t *testing.T) (string, *git.Repository) {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	path := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(path, []byte("# neuro\n"), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("README.md")
	require.NoError(t, err)
	_, err = wt.Commit("initial commit", &git.CommitOptions{
		Author: &object.Signature{Name: "Jane Doe", Email: "jane@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	return dir, repo
}

func TestOpen_NotARepository(t *testing.T) {
	t.Parallel()

	_, err := Open(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening repository")
}

func TestIsRepository(t *testing.T) {
	t.Parallel()

	dir, _ := initRepo(t)
	assert.True(t, IsRepository(dir))
	assert.False(t, IsRepository(t.TempDir()))
}

func TestRepositoryRoot_FromSubdirectory(t *testing.T) {
	t.Parallel()

	dir, _ := initRepo(t)
	sub := filepath.Join(dir, "doc", "changes")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	root, err := RepositoryRoot(sub)
	require.NoError(t, err)

	wantRoot, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	gotRoot, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	assert.Equal(t, wantRoot, gotRoot)
}

func TestCurrentBranch(t *testing.T) {
	t.Parallel()

	dir, _ := initRepo(t)
	branch, err := CurrentBranch(dir)
	require.NoError(t, err)
	assert.Equal(t, "master", branch)
}

func TestUserIdentity(t *testing.T) {
	t.Parallel()

	dir, repo := initRepo(t)

	cfg, err := repo.Config()
	require.NoError(t, err)
	cfg.User.Name = "Jane Doe"
	cfg.User.Email = "jane@example.com"
	require.NoError(t, repo.SetConfig(cfg))

	id, err := UserIdentity(dir)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", id.Name)
	assert.Equal(t, "jane@example.com", id.Email)
}

func TestRemoteURL(t *testing.T) {
	t.Parallel()

	dir, repo := initRepo(t)
	_, err := repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{"git@github.com:neuro/neuro.git"},
	})
	require.NoError(t, err)

	url, err := RemoteURL(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/neuro/neuro", url)
}

func TestRemoteURL_NoOrigin(t *testing.T) {
	t.Parallel()

	dir, _ := initRepo(t)
	_, err := RemoteURL(dir)
	require.Error(t, err)
}

func TestNormalizeRemoteURL(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		url  string
		want string
	}{
		"scp style":     {url: "git@github.com:neuro/neuro.git", want: "https://github.com/neuro/neuro"},
		"ssh scheme":    {url: "ssh://git@gitlab.com/neuro/neuro.git", want: "https://gitlab.com/neuro/neuro"},
		"https":         {url: "https://github.com/neuro/neuro", want: "https://github.com/neuro/neuro"},
		"https dot git": {url: "https://github.com/neuro/neuro.git", want: "https://github.com/neuro/neuro"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, NormalizeRemoteURL(tc.url))
		})
	}
}
