package query

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjunmahishi/treeinv/parser"
	"github.com/arjunmahishi/treeinv/types"
)

type testGrammar struct {
	name     string
	grammar  *sitter.Language
	registry *Registry
}

func (g *testGrammar) Name() string                     { return g.name }
func (g *testGrammar) TreeSitterLang() *sitter.Language { return g.grammar }

func (g *testGrammar) QueryStrategy(key, language string) (string, bool) {
	if language != g.name {
		return "", false
	}
	return g.registry.Get(key)
}

var goQueries = map[string]string{
	"functions": `(function_declaration name: (identifier) @name) @function`,
	"methods":   `(method_declaration name: (field_identifier) @name) @method`,
	"lambdas":   `(lambda_expression) @lambda`,
}

func goGrammar(t *testing.T) *testGrammar {
	t.Helper()
	return &testGrammar{
		name:     "go",
		grammar:  golang.GetLanguage(),
		registry: MustRegistry("go", goQueries),
	}
}

const goSource = `package shapes

type Circle struct{ r float64 }

func (c Circle) Area() float64 { return 3.14 * c.r * c.r }

func NewCircle(r float64) Circle {
	return Circle{r: r}
}

func helper() {}
`

func parseGo(t *testing.T, src string) *sitter.Tree {
	t.Helper()
	p, err := parser.New(golang.GetLanguage())
	require.NoError(t, err)
	tree, err := p.Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	return tree
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		query  string
		offset int // -1 when valid or unknown
		msg    string
	}{
		{query: `(identifier) @id`},
		{query: `[(identifier) (field_identifier)] @id`},
		{query: `((identifier) @id (#eq? @id "(not a bracket"))`},
		{query: "; comment with ( unbalanced\n(identifier) @id"},
		{query: `(call (identifier) @fn {})`},
		{query: "", offset: -1, msg: "empty query"},
		{query: "   \n\t", offset: -1, msg: "empty query"},
		{query: `(identifier)`, offset: -1, msg: "no @capture"},
		{query: `(identifier @id`, offset: 0, msg: "unclosed bracket"},
		{query: `(identifier)) @id`, offset: 12, msg: "unexpected"},
		{query: `(call [(identifier)) @id`, offset: 19, msg: "expected ']'"},
		{query: `((identifier) @id (#eq? @id "open))`, offset: 35, msg: "unterminated string"},
		{query: `(identifier) @`, offset: -1, msg: "no @capture"},
	}
	for _, tt := range tests {
		err := Validate(tt.query)
		if tt.msg == "" {
			assert.NoError(t, err, tt.query)
			continue
		}
		var qe *Error
		require.ErrorAs(t, err, &qe, tt.query)
		assert.Equal(t, KindSyntax, qe.Kind, tt.query)
		assert.Equal(t, tt.offset, qe.Offset, tt.query)
		assert.Contains(t, qe.Message, tt.msg, tt.query)
	}
}

func TestErrorMatching(t *testing.T) {
	t.Parallel()

	err := error(&Error{Kind: KindUnknownQuery, Language: "go", Name: "x", Offset: -1, Message: "no such query"})
	assert.True(t, errors.Is(err, &Error{Kind: KindUnknownQuery}))
	assert.False(t, errors.Is(err, &Error{Kind: KindSyntax}))
	assert.Equal(t, `query "x" (go): unknown_query: no such query`, err.Error())

	err = &Error{Kind: KindSyntax, Offset: 4, Message: "unexpected ')'"}
	assert.Equal(t, "query: syntax error at offset 4: unexpected ')'", err.Error())
	assert.Equal(t, "kind(9)", Kind(9).String())
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	src := map[string]string{"b": `(identifier) @b`, "a": `(identifier) @a`}
	r, err := NewRegistry("go", src)
	require.NoError(t, err)
	src["c"] = `(identifier) @c`

	assert.Equal(t, "go", r.Language())
	assert.Equal(t, []string{"a", "b"}, r.Names())
	text, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, `(identifier) @a`, text)
	_, ok = r.Get("c")
	assert.False(t, ok, "registry copies its input")

	all := r.All()
	delete(all, "a")
	_, ok = r.Get("a")
	assert.True(t, ok, "All returns a copy")
}

func TestRegistryRejectsInvalidQueries(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry("python", map[string]string{
		"good": `(identifier) @id`,
		"bad":  `(function_definition`,
	})
	var qe *Error
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, KindSyntax, qe.Kind)
	assert.Equal(t, "python", qe.Language)
	assert.Equal(t, "bad", qe.Name)

	assert.Panics(t, func() { MustRegistry("python", map[string]string{"x": ""}) })
}

func TestLoadFS(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"queries/go/functions.scm": {Data: []byte(goQueries["functions"])},
		"queries/go/README.md":     {Data: []byte("not a query")},
		"queries/go/nested/x.scm":  {Data: []byte(`(identifier) @x`)},
		"queries/bad/broken.scm":   {Data: []byte(`(identifier`)},
	}

	r, err := LoadFS(fsys, "queries/go", "go")
	require.NoError(t, err)
	assert.Equal(t, []string{"functions"}, r.Names())

	_, err = LoadFS(fsys, "queries/bad", "bad")
	assert.True(t, errors.Is(err, &Error{Kind: KindSyntax}))

	_, err = LoadFS(fsys, "queries/missing", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read queries for missing")
}

func TestExecuteNamed(t *testing.T) {
	t.Parallel()

	g := goGrammar(t)
	tree := parseGo(t, goSource)
	exec := NewExecutor(8)

	caps, err := exec.ExecuteNamed(tree, []byte(goSource), g, "go", "functions")
	require.NoError(t, err)
	require.Len(t, caps, 4)

	assert.Equal(t, types.Capture{
		CaptureName: "function",
		NodeType:    "function_declaration",
		Content:     "func NewCircle(r float64) Circle {\n\treturn Circle{r: r}\n}",
		StartLine:   7,
		EndLine:     9,
		StartColumn: 1,
		EndColumn:   2,
	}, caps[0])
	assert.Equal(t, types.Capture{
		CaptureName: "name",
		NodeType:    "identifier",
		Content:     "NewCircle",
		StartLine:   7,
		EndLine:     7,
		StartColumn: 6,
		EndColumn:   15,
	}, caps[1])
	assert.Equal(t, "helper", caps[3].Content)
}

func TestExecuteIsDeterministic(t *testing.T) {
	t.Parallel()

	g := goGrammar(t)
	tree := parseGo(t, goSource)
	exec := NewExecutor(8)

	first, err := exec.ExecuteNamed(tree, []byte(goSource), g, "go", "methods")
	require.NoError(t, err)
	second, err := exec.ExecuteNamed(tree, []byte(goSource), g, "go", "methods")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, exec.cache.Len(), "compiled query is reused")
}

func TestExecuteBatch(t *testing.T) {
	t.Parallel()

	g := goGrammar(t)
	tree := parseGo(t, goSource)
	exec := NewExecutor(0)

	results, err := exec.ExecuteBatch(tree, []byte(goSource), g, "go", []string{"functions", "methods"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Len(t, results["functions"], 4)
	require.Len(t, results["methods"], 2)
	assert.Equal(t, "Area", results["methods"][1].Content)

	_, err = exec.ExecuteBatch(tree, []byte(goSource), g, "go", []string{"functions", "missing"})
	assert.True(t, errors.Is(err, &Error{Kind: KindUnknownQuery}))
}

func TestExecuteNamedErrors(t *testing.T) {
	t.Parallel()

	g := goGrammar(t)
	tree := parseGo(t, goSource)
	exec := NewExecutor(8)

	_, err := exec.ExecuteNamed(tree, []byte(goSource), g, "python", "functions")
	var qe *Error
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, KindLanguageMismatch, qe.Kind)
	assert.Equal(t, "functions", qe.Name)

	_, err = exec.ExecuteNamed(tree, []byte(goSource), g, "go", "classes")
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, KindUnknownQuery, qe.Kind)
}

func TestExecuteRaw(t *testing.T) {
	t.Parallel()

	g := goGrammar(t)
	tree := parseGo(t, goSource)
	src := []byte(goSource)
	exec := NewExecutor(8)

	t.Run("syntax error fails before execution", func(t *testing.T) {
		_, err := exec.Execute(tree, src, g, `(function_declaration name: (identifier) @name`)
		var qe *Error
		require.ErrorAs(t, err, &qe)
		assert.Equal(t, KindSyntax, qe.Kind)
		assert.Equal(t, "go", qe.Language)
	})

	t.Run("grammar-level syntax error", func(t *testing.T) {
		_, err := exec.Execute(tree, src, g, `(function_declaration name: @name)`)
		assert.True(t, errors.Is(err, &Error{Kind: KindSyntax}))
	})

	t.Run("absent node type matches nothing", func(t *testing.T) {
		caps, err := exec.ExecuteNamed(tree, src, g, "go", "lambdas")
		require.NoError(t, err)
		assert.NotNil(t, caps)
		assert.Empty(t, caps)
	})

	t.Run("absent field matches nothing", func(t *testing.T) {
		caps, err := exec.Execute(tree, src, g, `(function_declaration flavour: (identifier) @r)`)
		require.NoError(t, err)
		assert.Empty(t, caps)
	})

	t.Run("predicates filter matches", func(t *testing.T) {
		caps, err := exec.Execute(tree, src, g,
			`((function_declaration name: (identifier) @name) (#match? @name "^New"))`)
		require.NoError(t, err)
		require.Len(t, caps, 1)
		assert.Equal(t, "NewCircle", caps[0].Content)

		caps, err = exec.Execute(tree, src, g,
			`((function_declaration name: (identifier) @name) (#eq? @name "helper"))`)
		require.NoError(t, err)
		require.Len(t, caps, 1)
		assert.Equal(t, 11, caps[0].StartLine)
	})

	t.Run("nil tree", func(t *testing.T) {
		caps, err := exec.Execute(nil, nil, g, `(identifier) @id`)
		require.NoError(t, err)
		assert.Empty(t, caps)
	})
}

func TestInvalidUTF8Content(t *testing.T) {
	t.Parallel()

	src := "package p\n\nvar s = \"\xff\xfe\"\n"
	tree := parseGo(t, src)

	caps, err := NewExecutor(1).Execute(tree, []byte(src), goGrammar(t), `(interpreted_string_literal) @s`)
	require.NoError(t, err)
	require.Len(t, caps, 1)
	assert.Equal(t, "", caps[0].Content)
}

func TestExecuteOnTreeOfAnotherGrammar(t *testing.T) {
	t.Parallel()

	src := []byte("def f():\n    pass\n")
	p, err := parser.New(python.GetLanguage())
	require.NoError(t, err)
	tree, err := p.Parse(context.Background(), src)
	require.NoError(t, err)

	_, err = NewExecutor(4).Execute(tree, src, goGrammar(t), `(identifier) @id`)
	var qe *Error
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, KindLanguageMismatch, qe.Kind)
	assert.Equal(t, "go", qe.Language)

	// The same tree is accepted by its own grammar.
	g := &testGrammar{name: "python", grammar: python.GetLanguage(), registry: MustRegistry("python", nil)}
	caps, err := NewExecutor(4).Execute(tree, src, g, `(identifier) @id`)
	require.NoError(t, err)
	require.Len(t, caps, 1)
	assert.Equal(t, "f", caps[0].Content)
}

func TestCacheEviction(t *testing.T) {
	t.Parallel()

	g := goGrammar(t)
	tree := parseGo(t, goSource)
	exec := NewExecutor(2)

	for _, q := range []string{`(identifier) @a`, `(identifier) @b`, `(identifier) @c`} {
		_, err := exec.Execute(tree, []byte(goSource), g, q)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, exec.cache.Len())
}
