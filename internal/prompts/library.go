package prompts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Library persists named summary prompt templates in a single JSON file.
// Lookups degrade to empty content; only explicit saves mutate the file.
// Concurrent saves are read-modify-write with last-writer-wins semantics.
type Library struct {
	path string
}

// NewLibrary creates a library backed by the given JSON file path.
func NewLibrary(path string) *Library {
	return &Library{path: path}
}

// Path returns the backing file location.
func (l *Library) Path() string {
	return l.path
}

// Ensure returns the full name-to-template mapping, seeding the file with
// the default templates when it does not exist yet.
func (l *Library) Ensure() (map[string]string, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read prompt library: %w", err)
		}

		seeded := defaultTemplates()
		if err := l.write(seeded); err != nil {
			return nil, err
		}
		return seeded, nil
	}

	var templates map[string]string
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("parse prompt library %s: %w", l.path, err)
	}
	if templates == nil {
		templates = map[string]string{}
	}

	return templates, nil
}

// Load returns the template for name, or an empty string when absent.
// A missing name is not an error.
func (l *Library) Load(name string) (string, error) {
	templates, err := l.Ensure()
	if err != nil {
		return "", err
	}
	return templates[name], nil
}

// Save upserts one template and rewrites the whole library file.
func (l *Library) Save(name, text string) error {
	templates, err := l.Ensure()
	if err != nil {
		return err
	}

	templates[name] = text
	return l.write(templates)
}

// Names returns all template names in sorted order for stable UI listings.
func (l *Library) Names() ([]string, error) {
	templates, err := l.Ensure()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// write persists the mapping as indented JSON, creating parent directories.
func (l *Library) write(templates map[string]string) error {
	if dir := filepath.Dir(l.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create prompt library directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(templates, "", "  ")
	if err != nil {
		return fmt.Errorf("encode prompt library: %w", err)
	}

	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		return fmt.Errorf("write prompt library: %w", err)
	}
	return nil
}
