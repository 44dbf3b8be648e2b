package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateWindow(t *testing.T) {
	testCases := []struct {
		name        string
		since       string
		until       string
		expectError bool
	}{
		{name: "valid window", since: "2024-01-01", until: "2025-01-01"},
		{name: "bad since", since: "2024/01/01", until: "2025-01-01", expectError: true},
		{name: "bad until", since: "2024-01-01", until: "tomorrow", expectError: true},
		{name: "empty window", since: "2024-01-01", until: "2024-01-01", expectError: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w, err := ParseDateWindow(tc.since, tc.until)
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), w.Since)
			assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), w.Until)
		})
	}
}

func TestDateWindow_Bounds(t *testing.T) {
	w, err := ParseDateWindow("2024-01-01", "2025-01-01")
	require.NoError(t, err)

	before := time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC)
	start := w.Since
	end := w.Until

	assert.False(t, w.StartsBy(before))
	assert.True(t, w.StartsBy(start))
	assert.True(t, w.StartsBy(end))

	assert.True(t, w.Contains(start))
	assert.False(t, w.Contains(end))
}

func TestTotals_Add(t *testing.T) {
	var totals Totals
	totals.Add(RepoStats{Name: "a/b", Commits: 3, ClosedIssues: 1, Releases: 2})
	totals.Add(RepoStats{Name: "a/c", Commits: 4})
	assert.Equal(t, Totals{Commits: 7, ClosedIssues: 1, Releases: 2}, totals)
}

func TestPostStats_Total(t *testing.T) {
	assert.Equal(t, 6, PostStats{Site: 1, Medium: 2, Devto: 3}.Total())
}
