// Package lang binds languages to their tree-sitter grammar, element extractor and
// named queries, and resolves files to languages.
package lang

import (
	"embed"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/arjunmahishi/treeinv/extract"
	"github.com/arjunmahishi/treeinv/query"
	"github.com/arjunmahishi/treeinv/types"
)

//go:embed queries
var queryFS embed.FS

// ErrUnsupported is returned when no plugin handles a language or file.
var ErrUnsupported = errors.New("unsupported language")

// Plugin defines the interface for a supported language.
type Plugin interface {
	// Name returns the language identifier (e.g., "go", "python").
	Name() string

	// Extensions returns the lowercase, dot-prefixed file extensions for this language.
	Extensions() []string

	// IsApplicable reports whether path belongs to this language.
	IsApplicable(path string) bool

	// TreeSitterLang returns the tree-sitter language grammar.
	TreeSitterLang() *sitter.Language

	// NewExtractor returns a new extractor. Extractors are not shared between goroutines.
	NewExtractor() extract.Extractor

	// Queries returns the language's named queries.
	Queries() *query.Registry

	// QueryStrategy returns the named query only when language is this plugin's
	// language, so a query is never run against a tree of another grammar.
	QueryStrategy(key, language string) (string, bool)

	// ElementTypes lists the element types the extractor can produce.
	ElementTypes() []types.ElementType

	// QueryNames lists the named queries in sorted order.
	QueryNames() []string
}

// plugin is the table-driven Plugin shared by every built-in language.
type plugin struct {
	name         string
	extensions   []string
	filenames    []string
	grammar      *sitter.Language
	newExtractor func() extract.Extractor
	queries      *query.Registry
	elementTypes []types.ElementType
}

var codeElements = []types.ElementType{
	types.ElementImport,
	types.ElementClass,
	types.ElementFunction,
	types.ElementVariable,
}

// newPlugin loads the plugin's queries from queries/<name>. The grammar is fetched
// once here: GetLanguage allocates a new handle on every call.
func newPlugin(name string, grammar *sitter.Language, extensions []string, newExtractor func() extract.Extractor, elementTypes ...types.ElementType) *plugin {
	return &plugin{
		name:         name,
		extensions:   extensions,
		grammar:      grammar,
		newExtractor: newExtractor,
		queries:      mustLoadQueries(name),
		elementTypes: elementTypes,
	}
}

func (p *plugin) withFilenames(names ...string) *plugin {
	p.filenames = names
	return p
}

func mustLoadQueries(name string) *query.Registry {
	r, err := query.LoadFS(queryFS, "queries/"+name, name)
	if err != nil {
		panic(fmt.Sprintf("lang: embedded queries for %s: %v", name, err))
	}
	return r
}

func (p *plugin) Name() string {
	return p.name
}

func (p *plugin) Extensions() []string {
	return slices.Clone(p.extensions)
}

func (p *plugin) IsApplicable(path string) bool {
	if ext := strings.ToLower(filepath.Ext(path)); ext != "" && slices.Contains(p.extensions, ext) {
		return true
	}
	return slices.Contains(p.filenames, filepath.Base(path))
}

func (p *plugin) TreeSitterLang() *sitter.Language {
	return p.grammar
}

func (p *plugin) NewExtractor() extract.Extractor {
	return p.newExtractor()
}

func (p *plugin) Queries() *query.Registry {
	return p.queries
}

func (p *plugin) QueryStrategy(key, language string) (string, bool) {
	if language != p.name {
		return "", false
	}
	return p.queries.Get(key)
}

func (p *plugin) ElementTypes() []types.ElementType {
	return slices.Clone(p.elementTypes)
}

func (p *plugin) QueryNames() []string {
	return p.queries.Names()
}

// Builtins returns a fresh instance of every built-in plugin.
func Builtins() []Plugin {
	return []Plugin{
		Go(),
		Python(),
		Java(),
		Kotlin(),
		CSharp(),
		JavaScript(),
		TypeScript(),
		TSX(),
		CSS(),
		HTML(),
		Rust(),
		C(),
		Cpp(),
		SQL(),
		YAML(),
		Markdown(),
		Ruby(),
		PHP(),
		Bash(),
	}
}
