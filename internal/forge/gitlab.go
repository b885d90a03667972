package forge

import (
	"context"
	"fmt"
	"net/http"

	"github.com/xanzy/go-gitlab"
	"golang.org/x/time/rate"
)

// gitlabClient checks references through the GitLab API. A :gh: number
// may name either an issue or a merge request, so both are consulted.
type gitlabClient struct {
	project string
	api     *gitlab.Client
	limiter *rate.Limiter
}

func newGitLabClient(opts Options) (*gitlabClient, error) {
	var clientOpts []gitlab.ClientOptionFunc
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, gitlab.WithBaseURL(opts.BaseURL))
	}

	api, err := gitlab.NewClient(opts.Token, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating gitlab client: %w", err)
	}

	return &gitlabClient{
		project: opts.Project,
		api:     api,
		limiter: rate.NewLimiter(rate.Limit(5), 5),
	}, nil
}

func (c *gitlabClient) Name() string {
	return "gitlab:" + c.project
}

func (c *gitlabClient) IssueExists(ctx context.Context, number int) (bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	_, resp, err := c.api.Issues.GetIssue(c.project, number, gitlab.WithContext(ctx))
	if err == nil {
		return true, nil
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		return false, fmt.Errorf("checking issue #%d: %w", number, err)
	}

	_, resp, err = c.api.MergeRequests.GetMergeRequest(c.project, number, nil, gitlab.WithContext(ctx))
	if err == nil {
		return true, nil
	}
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	return false, fmt.Errorf("checking merge request !%d: %w", number, err)
}

func (c *gitlabClient) Verify(ctx context.Context, numbers []int) (map[int]bool, error) {
	return verifyAll(ctx, numbers, c.IssueExists)
}
