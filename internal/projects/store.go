// Package projects reads and writes the site's projects list.
package projects

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/naka-gawa/site-stats/internal/domain"
)

const indent = "  "

// scalarArray matches an indented JSON array whose elements are all strings
// or numbers, each on its own line.
var scalarArray = regexp.MustCompile(`\[\n(?:[ ]*(?:"(?:[^"\\\n]|\\.)*"|-?[0-9][0-9.eE+-]*),?\n)+[ ]*\]`)

var scalarElement = regexp.MustCompile(`"(?:[^"\\\n]|\\.)*"|-?[0-9][0-9.eE+-]*`)

// Load reads a projects file.
func Load(path string) ([]domain.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read projects file: %w", err)
	}
	var projects []domain.Project
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, fmt.Errorf("failed to unmarshal projects file %s: %w", path, err)
	}
	return projects, nil
}

// Save writes projects to path as indented JSON with scalar arrays kept on
// a single line, followed by a newline.
func Save(path string, projects []domain.Project) error {
	data, err := Marshal(projects)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write projects file: %w", err)
	}
	return nil
}

// Marshal renders projects the way Save writes them.
func Marshal(projects []domain.Project) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(projects); err != nil {
		return nil, fmt.Errorf("failed to marshal projects: %w", err)
	}
	return compactScalarArrays(buf.Bytes()), nil
}

// compactScalarArrays rewrites
//
//	"languages": [
//	  "Go",
//	  "Rust"
//	]
//
// as "languages": ["Go", "Rust"].
func compactScalarArrays(data []byte) []byte {
	return scalarArray.ReplaceAllFunc(data, func(match []byte) []byte {
		elements := scalarElement.FindAll(match, -1)
		parts := make([]string, 0, len(elements))
		for _, e := range elements {
			parts = append(parts, string(e))
		}
		return []byte("[" + strings.Join(parts, ", ") + "]")
	})
}
