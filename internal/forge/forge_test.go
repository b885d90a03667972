package forge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		opts Options
		want string
	}{
		"missing project": {
			opts: Options{Kind: KindGitHub},
			want: "forge project is not configured",
		},
		"unknown kind": {
			opts: Options{Kind: "sourcehut", Project: "neuro/neuro"},
			want: "unknown forge kind",
		},
		"github project shape": {
			opts: Options{Kind: KindGitHub, Project: "neuro"},
			want: "must be owner/repo",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := New(tc.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestDetectFromURL(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		url         string
		wantKind    Kind
		wantProject string
		wantErr     bool
	}{
		"github":          {url: "https://github.com/neuro/neuro", wantKind: KindGitHub, wantProject: "neuro/neuro"},
		"github trailing": {url: "https://github.com/neuro/neuro/", wantKind: KindGitHub, wantProject: "neuro/neuro"},
		"github dot git":  {url: "https://github.com/neuro/neuro.git", wantKind: KindGitHub, wantProject: "neuro/neuro"},
		"gitlab subgroup": {url: "https://gitlab.com/lab/group/neuro", wantKind: KindGitLab, wantProject: "lab/group/neuro"},
		"self hosted":     {url: "https://git.internal.example/neuro/neuro", wantErr: true},
		"no project path": {url: "https://github.com/neuro", wantErr: true},
		"not a repo url":  {url: "neuro/neuro", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			kind, project, err := DetectFromURL(tc.url)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantKind, kind)
			assert.Equal(t, tc.wantProject, project)
		})
	}
}

func TestTokenFromEnv(t *testing.T) {
	t.Setenv("RELNOTES_FORGE_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "gh-token")
	t.Setenv("GH_TOKEN", "")
	t.Setenv("GITLAB_TOKEN", "gl-token")

	assert.Equal(t, "gh-token", TokenFromEnv(KindGitHub))
	assert.Equal(t, "gl-token", TokenFromEnv(KindGitLab))

	t.Setenv("RELNOTES_FORGE_TOKEN", "override")
	assert.Equal(t, "override", TokenFromEnv(KindGitHub))
	assert.Equal(t, "override", TokenFromEnv(KindGitLab))
}

func newGitHubTestServer(t *testing.T, existing map[string]bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/repos/neuro/neuro/issues/") {
			http.NotFound(w, r)
			return
		}
		number := strings.TrimPrefix(r.URL.Path, "/repos/neuro/neuro/issues/")
		if existing[number] {
			_ = json.NewEncoder(w).Encode(map[string]any{"number": number})
			return
		}
		http.NotFound(w, r)
	}))
}

func TestGitHubClient_IssueExists(t *testing.T) {
	t.Parallel()

	server := newGitHubTestServer(t, map[string]bool{"100": true})
	defer server.Close()

	client, err := New(Options{Kind: KindGitHub, Project: "neuro/neuro", BaseURL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, "github:neuro/neuro", client.Name())

	exists, err := client.IssueExists(context.Background(), 100)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = client.IssueExists(context.Background(), 999)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGitHubClient_SendsToken(t *testing.T) {
	t.Parallel()

	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{"number": 1})
	}))
	defer server.Close()

	client, err := New(Options{Kind: KindGitHub, Project: "neuro/neuro", BaseURL: server.URL, Token: "secret"})
	require.NoError(t, err)

	_, err = client.IssueExists(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", gotAuth)
}

func TestGitHubClient_UnexpectedStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	client, err := New(Options{Kind: KindGitHub, Project: "neuro/neuro", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.IssueExists(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}

func TestGitHubClient_Verify(t *testing.T) {
	t.Parallel()

	server := newGitHubTestServer(t, map[string]bool{"100": true, "101": true})
	defer server.Close()

	client, err := New(Options{Kind: KindGitHub, Project: "neuro/neuro", BaseURL: server.URL})
	require.NoError(t, err)

	result, err := client.Verify(context.Background(), []int{100, 101, 999})
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{100: true, 101: true, 999: false}, result)
}

func TestGitLabClient_IssueExists(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/issues/100"):
			_ = json.NewEncoder(w).Encode(map[string]any{"iid": 100})
		case strings.HasSuffix(r.URL.Path, "/merge_requests/200"):
			_ = json.NewEncoder(w).Encode(map[string]any{"iid": 200})
		default:
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"404 Not Found"}`))
		}
	}))
	defer server.Close()

	client, err := New(Options{Kind: KindGitLab, Project: "neuro/neuro", BaseURL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, "gitlab:neuro/neuro", client.Name())

	exists, err := client.IssueExists(context.Background(), 100)
	require.NoError(t, err)
	assert.True(t, exists, "issue number resolves")

	exists, err = client.IssueExists(context.Background(), 200)
	require.NoError(t, err)
	assert.True(t, exists, "merge request number resolves")

	exists, err = client.IssueExists(context.Background(), 999)
	require.NoError(t, err)
	assert.False(t, exists)
}
