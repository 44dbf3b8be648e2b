package usecase

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/naka-gawa/site-stats/internal/domain"
	"golang.org/x/sync/errgroup"
)

// siteViewsPeriod is how far back site page views are counted.
const siteViewsPeriod = 365 * 24 * time.Hour

// PageViewSource returns site views per path.
type PageViewSource interface {
	PageViews(ctx context.Context, start, end time.Time) (map[string]int, error)
}

// DevtoSource returns the engagement of a blogging platform article.
type DevtoSource interface {
	Stats(ctx context.Context, articleURL string) (domain.DevtoStats, error)
}

// MediumSource returns the views of a publishing platform post.
type MediumSource interface {
	Views(ctx context.Context, postURL string) (int, error)
}

// BlogAggregator combines the views of every post across the site and the
// platforms it was cross-posted to.
type BlogAggregator struct {
	site   PageViewSource
	devto  DevtoSource
	medium MediumSource
	logger *log.Logger
	now    func() time.Time
}

// NewBlogAggregator creates a new BlogAggregator instance.
func NewBlogAggregator(site PageViewSource, devto DevtoSource, medium MediumSource, logger *log.Logger) *BlogAggregator {
	return &BlogAggregator{
		site:   site,
		devto:  devto,
		medium: medium,
		logger: logger,
		now:    time.Now,
	}
}

// Aggregate returns the views of posts, in order. Site views cover the last
// year. A post without a platform link has zero views there.
func (a *BlogAggregator) Aggregate(ctx context.Context, posts []domain.Post) ([]domain.PostStats, error) {
	end := a.now().Truncate(time.Second)
	siteViews, err := a.site.PageViews(ctx, end.Add(-siteViewsPeriod), end)
	if err != nil {
		return nil, err
	}

	results := make([]domain.PostStats, 0, len(posts))
	for _, post := range posts {
		a.logger.Printf("Aggregating views of %s...", post.Slug)
		stats := domain.PostStats{
			Slug: post.Slug,
			Site: siteViews["/"+post.Slug],
		}

		// Platform lookups run one at a time, blog platform first. The first
		// error skips the remaining lookups.
		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(1)
		if post.DevtoURL != "" {
			eg.Go(func() error {
				devto, err := a.devto.Stats(egCtx, post.DevtoURL)
				if err != nil {
					return fmt.Errorf("post %s: %w", post.Slug, err)
				}
				stats.Devto = devto.Views
				return nil
			})
		}
		if post.MediumURL != "" {
			eg.Go(func() error {
				if err := egCtx.Err(); err != nil {
					return err
				}
				views, err := a.medium.Views(egCtx, post.MediumURL)
				if err != nil {
					return fmt.Errorf("post %s: %w", post.Slug, err)
				}
				stats.Medium = views
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}
		results = append(results, stats)
	}
	return results, nil
}

// WriteBlogReport prints one tab separated row per post:
// slug, total, site, medium and blog platform views.
func WriteBlogReport(w io.Writer, posts []domain.PostStats) error {
	for _, p := range posts {
		if _, err := fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", p.Slug, p.Total(), p.Site, p.Medium, p.Devto); err != nil {
			return err
		}
	}
	return nil
}

// WriteBlogSummary prints the total and typical views per post.
func WriteBlogSummary(w io.Writer, posts []domain.PostStats) error {
	totals := make([]int, 0, len(posts))
	for _, p := range posts {
		totals = append(totals, p.Total())
	}
	summary, err := Summarize(totals)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Posts: %d, views: %.0f total, %.1f mean, %.1f median, %.0f max\n",
		summary.Count, summary.Sum, summary.Mean, summary.Median, summary.Max)
	return err
}
