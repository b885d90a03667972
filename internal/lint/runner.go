package lint

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/relnotes-tools/relnotes/internal/notes"
)

// IssueVerifier reports which issue numbers exist upstream. The forge
// package provides implementations.
type IssueVerifier interface {
	Verify(ctx context.Context, numbers []int) (map[int]bool, error)
}

// Runner lints many fragments concurrently.
type Runner struct {
	linter   *Linter
	jobs     int
	verifier IssueVerifier
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithJobs sets the maximum number of fragments linted concurrently.
func WithJobs(n int) RunnerOption {
	return func(r *Runner) {
		if n >= 1 {
			r.jobs = n
		}
	}
}

// WithIssueVerifier enables the forge deep check on issue references.
func WithIssueVerifier(v IssueVerifier) RunnerOption {
	return func(r *Runner) {
		r.verifier = v
	}
}

// NewRunner creates a Runner. Default concurrency is 4.
func NewRunner(linter *Linter, opts ...RunnerOption) *Runner {
	r := &Runner{
		linter: linter,
		jobs:   4,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Jobs returns the configured concurrency limit.
func (r *Runner) Jobs() int {
	return r.jobs
}

// Run lints the given fragment files and returns the combined report.
// Findings are ordered by file, then line.
func (r *Runner) Run(ctx context.Context, paths []string) (*Report, error) {
	report := NewReport()
	report.FilesChecked = len(paths)

	docs := make([]*notes.Document, len(paths))
	perFile := make([][]Finding, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.jobs)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, findings, err := r.linter.CheckFile(path)
			if err != nil {
				return err
			}
			docs[i] = doc
			perFile[i] = findings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, findings := range perFile {
		report.Add(findings...)
	}

	if r.verifier != nil {
		findings, err := r.verifyIssues(ctx, docs)
		if err != nil {
			return nil, err
		}
		report.Add(findings...)
	}

	report.Sort()
	report.DurationMS = time.Since(report.StartedAt).Milliseconds()
	return report, nil
}

// verifyIssues checks every referenced issue number against the forge in
// one batch and maps missing numbers back to their entries.
func (r *Runner) verifyIssues(ctx context.Context, docs []*notes.Document) ([]Finding, error) {
	seen := make(map[int]struct{})
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		for _, entry := range doc.Entries() {
			for _, n := range entry.Issues {
				seen[n] = struct{}{}
			}
		}
	}
	if len(seen) == 0 {
		return nil, nil
	}

	numbers := make([]int, 0, len(seen))
	for n := range seen {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	exists, err := r.verifier.Verify(ctx, numbers)
	if err != nil {
		return nil, fmt.Errorf("verifying issue references: %w", err)
	}

	var findings []Finding
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		for _, entry := range doc.Entries() {
			for _, n := range entry.Issues {
				if ok, checked := exists[n]; checked && !ok {
					findings = append(findings, r.linter.finding(doc.Path, entry.Line, RuleUnknownIssue, SeverityError,
						fmt.Sprintf("issue :gh:`%d` does not exist on the forge", n), ""))
				}
			}
		}
	}
	return findings, nil
}
