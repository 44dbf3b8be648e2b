// Package content discovers blog posts on disk and reads their front matter.
package content

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/naka-gawa/site-stats/internal/domain"
)

// ErrNoFrontmatter is returned for content files without a front matter block.
var ErrNoFrontmatter = errors.New("no front matter")

// matter is the subset of a post's front matter the reports need. Posts may
// use TOML (+++) or YAML (---) front matter.
type matter struct {
	Slug  string `yaml:"slug" toml:"slug"`
	Title string `yaml:"title" toml:"title"`
	Extra struct {
		Medium string `yaml:"medium" toml:"medium"`
		Devto  string `yaml:"devto" toml:"devto"`
	} `yaml:"extra" toml:"extra"`
}

// Discover returns the regular files in dir whose names start with prefix,
// sorted by name.
func Discover(dir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list content directory: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	return files, nil
}

// Load reads the post at path. The slug is required; platform links are optional.
func Load(path string) (domain.Post, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Post{}, fmt.Errorf("failed to open post: %w", err)
	}
	defer f.Close()

	var m matter
	if _, err := frontmatter.MustParse(f, &m); err != nil {
		if errors.Is(err, frontmatter.ErrNotFound) {
			return domain.Post{}, fmt.Errorf("%s: %w", path, ErrNoFrontmatter)
		}
		return domain.Post{}, fmt.Errorf("failed to parse front matter of %s: %w", path, err)
	}
	if m.Slug == "" {
		return domain.Post{}, fmt.Errorf("%s: front matter has no slug", path)
	}
	return domain.Post{
		File:      filepath.Base(path),
		Slug:      m.Slug,
		MediumURL: m.Extra.Medium,
		DevtoURL:  m.Extra.Devto,
	}, nil
}

// LoadAll discovers and loads every post in dir whose file name starts with prefix.
func LoadAll(dir, prefix string) ([]domain.Post, error) {
	files, err := Discover(dir, prefix)
	if err != nil {
		return nil, err
	}
	posts := make([]domain.Post, 0, len(files))
	for _, file := range files {
		post, err := Load(filepath.Join(dir, file))
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}
