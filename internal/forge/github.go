package forge

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// githubClient checks references through the GitHub REST API. The
// issues endpoint also resolves pull-request numbers, so one lookup
// covers both meanings of :gh:.
type githubClient struct {
	project string
	baseURL string
	token   string
	http    *retryablehttp.Client
	limiter *rate.Limiter
}

func newGitHubClient(opts Options) (*githubClient, error) {
	if strings.Count(opts.Project, "/") != 1 {
		return nil, fmt.Errorf("github project %q must be owner/repo", opts.Project)
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil

	return &githubClient{
		project: opts.Project,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   opts.Token,
		http:    client,
		// Unauthenticated GitHub allows 60 requests/hour; keep bursts
		// polite either way.
		limiter: rate.NewLimiter(rate.Limit(5), 5),
	}, nil
}

func (c *githubClient) Name() string {
	return "github:" + c.project
}

func (c *githubClient) IssueExists(ctx context.Context, number int) (bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	url := fmt.Sprintf("%s/repos/%s/issues/%d", c.baseURL, c.project, number)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("building issue request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("checking issue #%d: %w", number, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound, http.StatusGone:
		return false, nil
	default:
		return false, fmt.Errorf("checking issue #%d: unexpected status %s", number, resp.Status)
	}
}

func (c *githubClient) Verify(ctx context.Context, numbers []int) (map[int]bool, error) {
	return verifyAll(ctx, numbers, c.IssueExists)
}
