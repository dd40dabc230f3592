package lang

import (
	"bytes"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/arjunmahishi/treeinv/extract"
)

// Registry maps language names and file extensions to plugins. It is built once and
// never mutated, so concurrent reads need no locking.
type Registry struct {
	plugins []Plugin
	byName  map[string]Plugin
	byExt   map[string]Plugin
}

// NewRegistry indexes plugins by name and extension. Two plugins claiming the same
// name or extension is an error.
func NewRegistry(plugins ...Plugin) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]Plugin, len(plugins)),
		byExt:  make(map[string]Plugin),
	}
	for _, p := range plugins {
		if _, ok := r.byName[p.Name()]; ok {
			return nil, fmt.Errorf("duplicate language %q", p.Name())
		}
		r.byName[p.Name()] = p
		for _, ext := range p.Extensions() {
			if other, ok := r.byExt[ext]; ok {
				return nil, fmt.Errorf("extension %s claimed by both %s and %s", ext, other.Name(), p.Name())
			}
			r.byExt[ext] = p
		}
		r.plugins = append(r.plugins, p)
	}
	return r, nil
}

// Default returns the registry of built-in plugins.
var Default = sync.OnceValue(func() *Registry {
	r, err := NewRegistry(Builtins()...)
	if err != nil {
		panic(err)
	}
	return r
})

var aliases = map[string]string{
	"golang":     "go",
	"py":         "python",
	"js":         "javascript",
	"jsx":        "javascript",
	"ts":         "typescript",
	"c++":        "cpp",
	"cxx":        "cpp",
	"cs":         "csharp",
	"c#":         "csharp",
	"kt":         "kotlin",
	"rb":         "ruby",
	"sh":         "bash",
	"shell":      "bash",
	"yml":        "yaml",
	"md":         "markdown",
	"postgresql": "sql",
}

// Plugins returns the registered plugins in registration order.
func (r *Registry) Plugins() []Plugin {
	return slices.Clone(r.plugins)
}

// Names returns the registered language names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.plugins))
	for _, p := range r.plugins {
		names = append(names, p.Name())
	}
	slices.Sort(names)
	return names
}

// ForName resolves a language name or a common alias, case-insensitively.
func (r *Registry) ForName(name string) (Plugin, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := aliases[name]; ok {
		name = canonical
	}
	p, ok := r.byName[name]
	return p, ok
}

// Lookup is ForName with an error naming the available languages.
func (r *Registry) Lookup(name string) (Plugin, error) {
	p, ok := r.ForName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnsupported, name, strings.Join(r.Names(), ", "))
	}
	return p, nil
}

// ForExtension resolves a dot-prefixed extension, case-insensitively.
func (r *Registry) ForExtension(ext string) (Plugin, bool) {
	p, ok := r.byExt[strings.ToLower(ext)]
	return p, ok
}

// ForPath resolves a file path by extension, then by well-known file names.
func (r *Registry) ForPath(path string) (Plugin, bool) {
	if p, ok := r.ForExtension(filepath.Ext(path)); ok {
		return p, true
	}
	for _, p := range r.plugins {
		if p.IsApplicable(path) {
			return p, true
		}
	}
	return nil, false
}

var interpreters = map[string]string{
	"python":  "python",
	"python3": "python",
	"python2": "python",
	"bash":    "bash",
	"sh":      "bash",
	"zsh":     "bash",
	"ruby":    "ruby",
	"node":    "javascript",
	"deno":    "typescript",
	"php":     "php",
}

// Detect resolves path like ForPath and, when the path says nothing, sniffs content:
// a shebang line, an HTML doctype, or a leading YAML document marker.
func (r *Registry) Detect(path string, content []byte) (Plugin, bool) {
	if p, ok := r.ForPath(path); ok {
		return p, true
	}

	if name := sniff(content); name != "" {
		return r.ForName(name)
	}
	return nil, false
}

func sniff(content []byte) string {
	head := content
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	head = bytes.TrimSpace(head)

	if interp, ok := bytes.CutPrefix(head, []byte("#!")); ok {
		fields := strings.Fields(string(interp))
		if len(fields) == 0 {
			return ""
		}
		prog := filepath.Base(fields[0])
		// #!/usr/bin/env [-S] python3
		if prog == "env" {
			prog = ""
			for _, f := range fields[1:] {
				if !strings.HasPrefix(f, "-") {
					prog = f
					break
				}
			}
		}
		return interpreters[prog]
	}

	lower := strings.ToLower(string(head))
	switch {
	case strings.HasPrefix(lower, "<!doctype html"), strings.HasPrefix(lower, "<html"):
		return "html"
	case strings.HasPrefix(lower, "<?php"):
		return "php"
	case lower == "---" || lower == "%yaml" || strings.HasPrefix(lower, "%yaml "):
		return "yaml"
	}
	return ""
}

// ExtractorFor returns a fresh extractor for path. Files no plugin handles get the
// generic extractor tagged with the extension-derived language name.
func (r *Registry) ExtractorFor(path string) extract.Extractor {
	if p, ok := r.ForPath(path); ok {
		return p.NewExtractor()
	}
	name := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if name == "" {
		name = "unknown"
	}
	return extract.NewGeneric(name)
}
