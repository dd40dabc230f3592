package query

import (
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/arjunmahishi/treeinv/types"
)

// DefaultCacheSize is the number of compiled queries an Executor keeps.
const DefaultCacheSize = 256

// Grammar is the part of a language plugin the executor needs: its identity, its
// tree-sitter grammar and the language-checked lookup of named queries.
type Grammar interface {
	Name() string
	TreeSitterLang() *sitter.Language
	QueryStrategy(key, language string) (string, bool)
}

type cacheKey struct {
	language string
	text     string
}

// compiled is a cached compile result. A nil query means the text references node
// types or fields the grammar does not have; such queries match nothing.
type compiled struct {
	query        *sitter.Query
	captureNames []string
}

// Executor compiles and runs queries against syntax trees. Compiled queries are
// shared through a bounded LRU cache, so one Executor can serve many goroutines.
type Executor struct {
	cache *lru.Cache[cacheKey, *compiled]
}

// NewExecutor creates an Executor caching up to size compiled queries.
// A non-positive size selects DefaultCacheSize.
func NewExecutor(size int) *Executor {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[cacheKey, *compiled](size)
	if err != nil {
		// lru.New only fails for non-positive sizes.
		panic(err)
	}
	return &Executor{cache: cache}
}

// Execute runs raw query text against tree. Captures are returned match by match in
// the order the cursor yields them. A nil tree yields no captures. A tree parsed
// with another grammar than g's is a KindLanguageMismatch error.
func (e *Executor) Execute(tree *sitter.Tree, source []byte, g Grammar, text string) ([]types.Capture, error) {
	if err := Validate(text); err != nil {
		var qe *Error
		if errors.As(err, &qe) {
			qe.Language = g.Name()
		}
		return nil, err
	}
	if tree != nil && !sameGrammar(tree, g.TreeSitterLang()) {
		return nil, &Error{
			Kind:     KindLanguageMismatch,
			Language: g.Name(),
			Offset:   -1,
			Message:  fmt.Sprintf("tree was not parsed with the %s grammar", g.Name()),
		}
	}

	c, err := e.compile(g, text)
	if err != nil {
		return nil, err
	}
	if tree == nil || c.query == nil {
		return []types.Capture{}, nil
	}
	return c.run(tree, source), nil
}

// sameGrammar reports whether tree was parsed with grammar. Trees do not expose
// their language, so the root's symbol id is resolved in grammar and compared with
// the root's type: symbol ids are private to each grammar.
func sameGrammar(tree *sitter.Tree, grammar *sitter.Language) bool {
	root := tree.RootNode()
	return grammar.SymbolName(root.Symbol()) == root.Type()
}

// ExecuteNamed looks up a named query through the grammar's language-checked strategy
// and runs it. language is the language of the tree being queried.
func (e *Executor) ExecuteNamed(tree *sitter.Tree, source []byte, g Grammar, language, name string) ([]types.Capture, error) {
	text, err := e.lookup(g, language, name)
	if err != nil {
		return nil, err
	}
	caps, err := e.Execute(tree, source, g, text)
	if err != nil {
		var qe *Error
		if errors.As(err, &qe) {
			qe.Name = name
		}
		return nil, err
	}
	return caps, nil
}

// ExecuteBatch runs several named queries against the same tree.
func (e *Executor) ExecuteBatch(tree *sitter.Tree, source []byte, g Grammar, language string, names []string) (map[string][]types.Capture, error) {
	results := make(map[string][]types.Capture, len(names))
	for _, name := range names {
		caps, err := e.ExecuteNamed(tree, source, g, language, name)
		if err != nil {
			return nil, err
		}
		results[name] = caps
	}
	return results, nil
}

func (e *Executor) lookup(g Grammar, language, name string) (string, error) {
	text, ok := g.QueryStrategy(name, language)
	if ok {
		return text, nil
	}
	if language != g.Name() {
		return "", &Error{
			Kind:     KindLanguageMismatch,
			Language: g.Name(),
			Name:     name,
			Offset:   -1,
			Message:  fmt.Sprintf("tree language %q does not match plugin language %q", language, g.Name()),
		}
	}
	return "", &Error{
		Kind:     KindUnknownQuery,
		Language: g.Name(),
		Name:     name,
		Offset:   -1,
		Message:  "no such query",
	}
}

func (e *Executor) compile(g Grammar, text string) (*compiled, error) {
	key := cacheKey{language: g.Name(), text: text}
	if c, ok := e.cache.Get(key); ok {
		return c, nil
	}

	grammar := g.TreeSitterLang()
	if grammar == nil {
		return nil, fmt.Errorf("compile query: language %q has no grammar", g.Name())
	}

	q, err := sitter.NewQuery([]byte(text), grammar)
	if err != nil {
		var se *sitter.QueryError
		if !errors.As(err, &se) {
			return nil, fmt.Errorf("compile query: %w", err)
		}
		switch se.Type {
		case sitter.QueryErrorNodeType, sitter.QueryErrorField:
			slog.Debug("query references constructs missing from grammar",
				"language", g.Name(), "offset", se.Offset, "error", se.Message)
			c := &compiled{}
			e.cache.Add(key, c)
			return c, nil
		}
		return nil, &Error{
			Kind:     KindSyntax,
			Language: g.Name(),
			Offset:   int(se.Offset),
			Message:  se.Message,
		}
	}

	captureCount := int(q.CaptureCount())
	captureNames := make([]string, captureCount)
	for i := 0; i < captureCount; i++ {
		captureNames[i] = q.CaptureNameForId(uint32(i))
	}

	c := &compiled{query: q, captureNames: captureNames}
	e.cache.Add(key, c)
	return c, nil
}

func (c *compiled) run(tree *sitter.Tree, source []byte) []types.Capture {
	cursor := sitter.NewQueryCursor()
	cursor.Exec(c.query, tree.RootNode())

	captures := []types.Capture{}
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		match = cursor.FilterPredicates(match, source)

		for _, capture := range match.Captures {
			node := capture.Node
			start := node.StartPoint()
			end := node.EndPoint()

			captures = append(captures, types.Capture{
				CaptureName: c.captureName(capture.Index),
				NodeType:    node.Type(),
				Content:     nodeContent(node, source),
				StartLine:   int(start.Row) + 1,
				EndLine:     int(end.Row) + 1,
				StartColumn: int(start.Column) + 1,
				EndColumn:   int(end.Column) + 1,
			})
		}
	}
	return captures
}

func (c *compiled) captureName(index uint32) string {
	if int(index) >= len(c.captureNames) {
		return fmt.Sprintf("capture_%d", index)
	}
	return c.captureNames[index]
}

func nodeContent(node *sitter.Node, source []byte) string {
	start, end := int(node.StartByte()), int(node.EndByte())
	if start > end || end > len(source) {
		return ""
	}
	b := source[start:end]
	if !utf8.Valid(b) {
		return ""
	}
	return string(b)
}
