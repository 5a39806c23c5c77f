package content

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/cogniquiz/internal/quiz"
)

// Manifest describes a course assembled from several files.
type Manifest struct {
	ID    string   `yaml:"id"`
	Title string   `yaml:"title"`
	Files []string `yaml:"files"`

	// dir is the manifest's directory; relative file paths resolve against it.
	dir string
}

// LoadManifest parses a YAML course manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if m.ID == "" {
		return nil, fmt.Errorf("manifest %s: id is required", path)
	}
	if len(m.Files) == 0 {
		return nil, fmt.Errorf("manifest %s: no files listed", path)
	}
	if m.Title == "" {
		m.Title = m.ID
	}
	m.dir = filepath.Dir(path)
	return &m, nil
}

// Course returns the course the manifest describes.
func (m *Manifest) Course() quiz.Course {
	return quiz.Course{ID: m.ID, Title: m.Title}
}

// Text loads every listed file and joins them with paragraph breaks.
func (m *Manifest) Text() (string, error) {
	parts := make([]string, 0, len(m.Files))
	for _, f := range m.Files {
		if !filepath.IsAbs(f) {
			f = filepath.Join(m.dir, f)
		}
		text, err := LoadFile(f)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// IsManifest reports whether path names a YAML manifest.
func IsManifest(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
