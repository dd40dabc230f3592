package query

import (
	"fmt"
	"io/fs"
	"maps"
	"path"
	"slices"
	"strings"
)

// Registry is an immutable set of named queries for one language.
type Registry struct {
	language string
	queries  map[string]string
}

// NewRegistry validates every query and returns the registry. The input map is copied.
func NewRegistry(language string, queries map[string]string) (*Registry, error) {
	r := &Registry{
		language: language,
		queries:  make(map[string]string, len(queries)),
	}
	for _, name := range slices.Sorted(maps.Keys(queries)) {
		text := queries[name]
		if err := Validate(text); err != nil {
			qe := err.(*Error)
			qe.Language = language
			qe.Name = name
			return nil, qe
		}
		r.queries[name] = text
	}
	return r, nil
}

// MustRegistry is like NewRegistry but panics on invalid queries. It is meant for
// queries compiled into the binary.
func MustRegistry(language string, queries map[string]string) *Registry {
	r, err := NewRegistry(language, queries)
	if err != nil {
		panic(err)
	}
	return r
}

// LoadFS builds a registry from every *.scm file in dir. The file name without
// extension becomes the query name.
func LoadFS(fsys fs.FS, dir, language string) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read queries for %s: %w", language, err)
	}

	queries := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".scm" {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read query %s: %w", entry.Name(), err)
		}
		queries[strings.TrimSuffix(entry.Name(), ".scm")] = string(data)
	}
	return NewRegistry(language, queries)
}

// Language returns the language the queries are written for.
func (r *Registry) Language() string {
	return r.language
}

// Get returns the query text registered under name.
func (r *Registry) Get(name string) (string, bool) {
	q, ok := r.queries[name]
	return q, ok
}

// Names returns the registered query names in sorted order.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.queries))
}

// All returns a copy of the name → query text mapping.
func (r *Registry) All() map[string]string {
	return maps.Clone(r.queries)
}
