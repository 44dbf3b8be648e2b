package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/naka-gawa/site-stats/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPageViews struct {
	mock.Mock
}

func (m *mockPageViews) PageViews(ctx context.Context, start, end time.Time) (map[string]int, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

type mockDevto struct {
	mock.Mock
}

func (m *mockDevto) Stats(ctx context.Context, articleURL string) (domain.DevtoStats, error) {
	args := m.Called(ctx, articleURL)
	return args.Get(0).(domain.DevtoStats), args.Error(1)
}

type mockMedium struct {
	mock.Mock
}

func (m *mockMedium) Views(ctx context.Context, postURL string) (int, error) {
	args := m.Called(ctx, postURL)
	return args.Int(0), args.Error(1)
}

func TestBlogAggregator_Aggregate(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	posts := []domain.Post{
		{File: "2024-01-a.md", Slug: "a", MediumURL: "https://medium.com/p/aaa", DevtoURL: "https://dev.to/me/a"},
		{File: "2024-02-b.md", Slug: "b"},
		{File: "2024-03-c.md", Slug: "c", DevtoURL: "https://dev.to/me/c"},
	}

	site := new(mockPageViews)
	site.On("PageViews", mock.Anything, now.Add(-siteViewsPeriod), now).
		Return(map[string]int{"/a": 100, "/c": 7, "/unrelated": 9}, nil)

	devto := new(mockDevto)
	devto.On("Stats", mock.Anything, "https://dev.to/me/a").Return(domain.DevtoStats{Views: 40, Comments: 2}, nil)
	devto.On("Stats", mock.Anything, "https://dev.to/me/c").Return(domain.DevtoStats{Views: 3}, nil)

	medium := new(mockMedium)
	medium.On("Views", mock.Anything, "https://medium.com/p/aaa").Return(25, nil)

	aggregator := NewBlogAggregator(site, devto, medium, log.New(io.Discard, "", 0))
	aggregator.now = func() time.Time { return now }

	results, err := aggregator.Aggregate(context.Background(), posts)
	require.NoError(t, err)
	assert.Equal(t, []domain.PostStats{
		{Slug: "a", Site: 100, Medium: 25, Devto: 40},
		{Slug: "b", Site: 0, Medium: 0, Devto: 0},
		{Slug: "c", Site: 7, Medium: 0, Devto: 3},
	}, results)

	site.AssertExpectations(t)
	devto.AssertExpectations(t)
	medium.AssertExpectations(t)

	var buf bytes.Buffer
	require.NoError(t, WriteBlogReport(&buf, results))
	assert.Equal(t, "a\t165\t100\t25\t40\nb\t0\t0\t0\t0\nc\t10\t7\t0\t3\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteBlogSummary(&buf, results))
	assert.Equal(t, "Posts: 3, views: 175 total, 58.3 mean, 10.0 median, 165 max\n", buf.String())
}

func TestBlogAggregator_Aggregate_Errors(t *testing.T) {
	posts := []domain.Post{{Slug: "a", MediumURL: "https://medium.com/p/aaa"}}

	t.Run("site analytics fails", func(t *testing.T) {
		site := new(mockPageViews)
		site.On("PageViews", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("unauthorized"))
		medium := new(mockMedium)

		aggregator := NewBlogAggregator(site, new(mockDevto), medium, log.New(io.Discard, "", 0))
		results, err := aggregator.Aggregate(context.Background(), posts)
		assert.Error(t, err)
		assert.Nil(t, results)
		medium.AssertNotCalled(t, "Views", mock.Anything, mock.Anything)
	})

	t.Run("platform lookup fails", func(t *testing.T) {
		site := new(mockPageViews)
		site.On("PageViews", mock.Anything, mock.Anything, mock.Anything).Return(map[string]int{}, nil)
		medium := new(mockMedium)
		medium.On("Views", mock.Anything, "https://medium.com/p/aaa").Return(0, errors.New("session expired"))

		aggregator := NewBlogAggregator(site, new(mockDevto), medium, log.New(io.Discard, "", 0))
		results, err := aggregator.Aggregate(context.Background(), posts)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "post a")
		assert.Nil(t, results)
	})

	t.Run("blog platform error stops the medium lookup", func(t *testing.T) {
		site := new(mockPageViews)
		site.On("PageViews", mock.Anything, mock.Anything, mock.Anything).Return(map[string]int{}, nil)
		devto := new(mockDevto)
		devto.On("Stats", mock.Anything, "https://dev.to/me/a").Return(domain.DevtoStats{}, errors.New("bad api key"))
		medium := new(mockMedium)

		both := []domain.Post{{Slug: "a", DevtoURL: "https://dev.to/me/a", MediumURL: "https://medium.com/p/aaa"}}
		aggregator := NewBlogAggregator(site, devto, medium, log.New(io.Discard, "", 0))
		results, err := aggregator.Aggregate(context.Background(), both)
		assert.EqualError(t, err, "post a: bad api key")
		assert.Nil(t, results)
		medium.AssertNotCalled(t, "Views", mock.Anything, mock.Anything)
	})
}
