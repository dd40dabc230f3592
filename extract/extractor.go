// Package extract turns syntax trees into typed element inventories.
//
// Every extraction method takes the parse tree (nil when parsing failed outright)
// and the full source, and returns an empty result rather than an error when there
// is nothing to work with. Each call builds its own scope, so an extractor holds no
// state between files; it is still not meant for concurrent use.
package extract

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/arjunmahishi/treeinv/types"
)

// Extractor is the capability every language provides.
type Extractor interface {
	Language() string
	Functions(tree *sitter.Tree, source []byte) []types.Function
	Classes(tree *sitter.Tree, source []byte) []types.Class
	Variables(tree *sitter.Tree, source []byte) []types.Variable
	Imports(tree *sitter.Tree, source []byte) []types.Import
}

// PackageExtractor is implemented by languages with package or namespace declarations.
type PackageExtractor interface {
	Packages(tree *sitter.Tree, source []byte) []types.Package
}

// AnnotationExtractor is implemented by languages with annotations, decorators or attributes.
type AnnotationExtractor interface {
	Annotations(tree *sitter.Tree, source []byte) []types.Annotation
}

type HTMLExtractor interface {
	HTMLElements(tree *sitter.Tree, source []byte) []types.HTMLElement
}

type CSSExtractor interface {
	CSSRules(tree *sitter.Tree, source []byte) []types.StyleElement
}

// SQLExtractor returns DDL statements as their concrete SQL variants.
type SQLExtractor interface {
	SQLElements(tree *sitter.Tree, source []byte) []types.Element
}

type YAMLExtractor interface {
	YAMLElements(tree *sitter.Tree, source []byte) []types.YAMLElement
}

type MarkdownExtractor interface {
	MarkdownElements(tree *sitter.Tree, source []byte) []types.MarkdownElement
}

var (
	_ Extractor           = (*Generic)(nil)
	_ PackageExtractor    = (*Generic)(nil)
	_ AnnotationExtractor = (*Generic)(nil)
	_ Extractor           = (*Python)(nil)
	_ Extractor           = (*Golang)(nil)
	_ Extractor           = (*Java)(nil)
	_ Extractor           = (*JavaScript)(nil)
	_ Extractor           = (*Rust)(nil)
	_ Extractor           = (*CFamily)(nil)
	_ SQLExtractor        = (*SQL)(nil)
	_ YAMLExtractor       = (*YAML)(nil)
	_ CSSExtractor        = (*CSS)(nil)
	_ HTMLExtractor       = (*HTML)(nil)
	_ MarkdownExtractor   = (*Markdown)(nil)
)

// Packages returns e's packages, or nothing when e has no such concept.
func Packages(e Extractor, tree *sitter.Tree, source []byte) []types.Package {
	if pe, ok := e.(PackageExtractor); ok {
		return pe.Packages(tree, source)
	}
	return nil
}

// Annotations returns e's annotations, or nothing when e has no such concept.
func Annotations(e Extractor, tree *sitter.Tree, source []byte) []types.Annotation {
	if ae, ok := e.(AnnotationExtractor); ok {
		return ae.Annotations(tree, source)
	}
	return nil
}

func HTMLElements(e Extractor, tree *sitter.Tree, source []byte) []types.HTMLElement {
	if he, ok := e.(HTMLExtractor); ok {
		return he.HTMLElements(tree, source)
	}
	return nil
}

func CSSRules(e Extractor, tree *sitter.Tree, source []byte) []types.StyleElement {
	if ce, ok := e.(CSSExtractor); ok {
		return ce.CSSRules(tree, source)
	}
	return nil
}

// All runs every capability e has and merges the results in source order.
func All(e Extractor, tree *sitter.Tree, source []byte) []types.Element {
	var out []types.Element
	out = appendAll(out, Packages(e, tree, source))
	out = appendAll(out, e.Imports(tree, source))
	out = appendAll(out, e.Classes(tree, source))
	out = appendAll(out, e.Functions(tree, source))
	out = appendAll(out, e.Variables(tree, source))
	out = appendAll(out, Annotations(e, tree, source))
	out = appendAll(out, HTMLElements(e, tree, source))
	out = appendAll(out, CSSRules(e, tree, source))
	if se, ok := e.(SQLExtractor); ok {
		out = append(out, se.SQLElements(tree, source)...)
	}
	if ye, ok := e.(YAMLExtractor); ok {
		out = appendAll(out, ye.YAMLElements(tree, source))
	}
	if me, ok := e.(MarkdownExtractor); ok {
		out = appendAll(out, me.MarkdownElements(tree, source))
	}
	types.SortBySource(out)
	return out
}

func appendAll[E types.Element](dst []types.Element, elems []E) []types.Element {
	for _, e := range elems {
		dst = append(dst, e)
	}
	return dst
}
