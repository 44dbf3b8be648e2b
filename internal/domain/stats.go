// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format accepted for date windows.
const DateLayout = "2006-01-02"

// DateWindow is the range of calendar dates that scopes every per-repository
// query of a single run. Since is inclusive, Until is exclusive.
type DateWindow struct {
	Since time.Time
	Until time.Time
}

// ParseDateWindow builds a DateWindow from two YYYY-MM-DD dates in UTC.
func ParseDateWindow(since, until string) (DateWindow, error) {
	s, err := time.Parse(DateLayout, since)
	if err != nil {
		return DateWindow{}, fmt.Errorf("invalid since date %q: %w", since, err)
	}
	u, err := time.Parse(DateLayout, until)
	if err != nil {
		return DateWindow{}, fmt.Errorf("invalid until date %q: %w", until, err)
	}
	if !u.After(s) {
		return DateWindow{}, fmt.Errorf("until date %s must be after since date %s", until, since)
	}
	return DateWindow{Since: s, Until: u}, nil
}

// StartsBy reports whether t is not earlier than the start of the window.
func (w DateWindow) StartsBy(t time.Time) bool {
	return !t.Before(w.Since)
}

// Contains reports whether t falls in [Since, Until).
func (w DateWindow) Contains(t time.Time) bool {
	return w.StartsBy(t) && t.Before(w.Until)
}

// RepoStats holds the activity counts for a single repository.
// It is the core domain entity of the GitHub report.
type RepoStats struct {
	Name         string `json:"name"`
	Commits      int    `json:"commits"`
	ClosedIssues int    `json:"closed_issues"`
	Releases     int    `json:"releases"`
}

// Totals accumulates RepoStats across every configured repository.
type Totals struct {
	Commits      int `json:"commits"`
	ClosedIssues int `json:"closed_issues"`
	Releases     int `json:"releases"`
}

// Add folds the counts of one repository into the totals.
func (t *Totals) Add(s RepoStats) {
	t.Commits += s.Commits
	t.ClosedIssues += s.ClosedIssues
	t.Releases += s.Releases
}

// Report is the result of one aggregation run.
type Report struct {
	Window DateWindow   `json:"-"`
	Repos  []*RepoStats `json:"repos"`
	Totals Totals       `json:"totals"`
}
