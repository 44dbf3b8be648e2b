package usecase

import (
	"context"
	"log"
	"sort"

	"github.com/naka-gawa/site-stats/internal/domain"
	"github.com/naka-gawa/site-stats/internal/projects"
)

// StarSource returns star counts keyed by project name.
type StarSource interface {
	Stars(ctx context.Context) (map[string]int, error)
}

// StarSourceFunc adapts a function to a StarSource.
type StarSourceFunc func(ctx context.Context) (map[string]int, error)

func (f StarSourceFunc) Stars(ctx context.Context) (map[string]int, error) {
	return f(ctx)
}

// PatchStars sets the stars of every project from stars, by name.
// Projects the source does not know get zero. Nothing else changes.
func PatchStars(list []domain.Project, stars map[string]int) {
	for i := range list {
		list[i].Stars = stars[list[i].Name]
	}
}

// SortByStars orders projects by stars descending, keeping the file order of ties.
func SortByStars(list []domain.Project) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Stars > list[j].Stars
	})
}

// ProjectUpdater refreshes the star counts of a projects file.
type ProjectUpdater struct {
	source      StarSource
	sortByStars bool
	logger      *log.Logger
}

// NewProjectUpdater creates a new ProjectUpdater. With sortByStars the
// rewritten file is ordered by stars; otherwise the file order is kept.
func NewProjectUpdater(source StarSource, sortByStars bool, logger *log.Logger) *ProjectUpdater {
	return &ProjectUpdater{
		source:      source,
		sortByStars: sortByStars,
		logger:      logger,
	}
}

// Update fetches current stars, patches the projects file at path in place
// and returns the written list.
func (u *ProjectUpdater) Update(ctx context.Context, path string) ([]domain.Project, error) {
	stars, err := u.source.Stars(ctx)
	if err != nil {
		return nil, err
	}
	list, err := projects.Load(path)
	if err != nil {
		return nil, err
	}

	PatchStars(list, stars)
	if u.sortByStars {
		SortByStars(list)
	}
	if err := projects.Save(path, list); err != nil {
		return nil, err
	}
	u.logger.Printf("Updated stars of %d projects in %s", len(list), path)
	return list, nil
}
