// Package parser turns source bytes into tree-sitter syntax trees.
package parser

import (
	"context"
	"errors"
	"fmt"
	"os"

	sitter "github.com/smacker/go-tree-sitter"
)

// ErrNoGrammar is returned when a parser is created without a grammar.
var ErrNoGrammar = errors.New("parser: no grammar")

// Parser wraps a tree-sitter parser for a specific grammar.
// A Parser is not safe for concurrent use; give each goroutine its own.
type Parser struct {
	parser  *sitter.Parser
	grammar *sitter.Language
}

// New creates a new Parser for the given grammar.
func New(grammar *sitter.Language) (*Parser, error) {
	if grammar == nil {
		return nil, ErrNoGrammar
	}
	p := sitter.NewParser()
	p.SetLanguage(grammar)
	return &Parser{
		parser:  p,
		grammar: grammar,
	}, nil
}

// Parse parses source code and returns the syntax tree. The tree may contain
// ERROR and MISSING nodes for malformed input.
func (p *Parser) Parse(ctx context.Context, source []byte) (*sitter.Tree, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return tree, nil
}

// ParseFile reads and parses a file.
func (p *Parser) ParseFile(ctx context.Context, path string) (*sitter.Tree, []byte, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read file: %w", err)
	}
	tree, err := p.Parse(ctx, source)
	if err != nil {
		return nil, source, err
	}
	return tree, source, nil
}

// Grammar returns the grammar this parser was created with.
func (p *Parser) Grammar() *sitter.Language {
	return p.grammar
}

// Pool hands out one Parser per grammar. It is meant to be owned by a single
// worker goroutine.
type Pool struct {
	parsers map[*sitter.Language]*Parser
}

// NewPool creates an empty parser pool.
func NewPool() *Pool {
	return &Pool{parsers: make(map[*sitter.Language]*Parser)}
}

// Get returns the pooled parser for grammar, creating it on first use.
func (p *Pool) Get(grammar *sitter.Language) (*Parser, error) {
	if ps, ok := p.parsers[grammar]; ok {
		return ps, nil
	}
	ps, err := New(grammar)
	if err != nil {
		return nil, err
	}
	p.parsers[grammar] = ps
	return ps, nil
}
