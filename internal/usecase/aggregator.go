// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/naka-gawa/site-stats/internal/domain"
	"github.com/naka-gawa/site-stats/internal/gateway"
)

// Aggregator is the use case for aggregating GitHub stats.
// It orchestrates the fetching and combining of data.
type Aggregator struct {
	fetcher gateway.Fetcher
	logger  *log.Logger
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(fetcher gateway.Fetcher, logger *log.Logger) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Aggregate counts commits, closed issues and releases of every repository
// inside window and sums them into report totals.
// Repositories are processed one at a time, in order, one request at a time,
// to stay under the API rate limit. The first error aborts the run and no
// partial report is returned.
func (a *Aggregator) Aggregate(ctx context.Context, repos []string, window domain.DateWindow) (*domain.Report, error) {
	a.logger.Println("Usecase: Starting data aggregation...")

	report := &domain.Report{
		Window: window,
		Repos:  make([]*domain.RepoStats, 0, len(repos)),
	}
	for i, repo := range repos {
		a.logger.Printf("[%d/%d] Aggregating %s...", i+1, len(repos), repo)

		commits, err := a.fetcher.CountCommits(ctx, repo, window)
		if err != nil {
			return nil, err
		}
		issues, err := a.fetcher.CountClosedIssues(ctx, repo, window)
		if err != nil {
			return nil, err
		}
		releases, err := a.fetcher.CountReleases(ctx, repo, window)
		if err != nil {
			return nil, err
		}

		stats := &domain.RepoStats{
			Name:         repo,
			Commits:      commits,
			ClosedIssues: issues,
			Releases:     releases,
		}
		report.Repos = append(report.Repos, stats)
		report.Totals.Add(*stats)
	}

	a.logger.Println("Usecase: Aggregation complete.")
	return report, nil
}

// WriteReport prints one line per repository followed by the totals.
func WriteReport(w io.Writer, report *domain.Report) error {
	for _, s := range report.Repos {
		if _, err := fmt.Fprintf(w, "%s: %d commits, %d issues, %d releases\n",
			s.Name, s.Commits, s.ClosedIssues, s.Releases); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Totals: %d commits, %d issues, %d releases\n",
		report.Totals.Commits, report.Totals.ClosedIssues, report.Totals.Releases)
	return err
}

// WriteReportSummary prints per-repository averages of the report.
func WriteReportSummary(w io.Writer, report *domain.Report) error {
	commits := make([]int, 0, len(report.Repos))
	releases := make([]int, 0, len(report.Repos))
	for _, s := range report.Repos {
		commits = append(commits, s.Commits)
		releases = append(releases, s.Releases)
	}
	commitSummary, err := Summarize(commits)
	if err != nil {
		return err
	}
	releaseSummary, err := Summarize(releases)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Per repo: %.1f mean / %.1f median commits, %.1f mean / %.1f median releases\n",
		commitSummary.Mean, commitSummary.Median, releaseSummary.Mean, releaseSummary.Median)
	return err
}
