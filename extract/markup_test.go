package extract

import (
	"testing"

	"github.com/smacker/go-tree-sitter/css"
	"github.com/smacker/go-tree-sitter/html"
	tree_sitter_markdown "github.com/smacker/go-tree-sitter/markdown/tree-sitter-markdown"
	"github.com/stretchr/testify/require"

	"github.com/arjunmahishi/treeinv/types"
)

func TestCSSRules(t *testing.T) {
	t.Parallel()

	src := `@import url("reset.css");

.nav, .menu {
  display: flex;
  justify-content: space-between;
  color: red;
}

h1 {
  font-size: 2em;
  line-height: 1.2;
}

@media (max-width: 600px) {
  .nav { width: 100%; }
}

@keyframes spin {
  from { transform: rotate(0deg); }
}

@font-face {
  font-family: "Inter";
}
`
	tree, source := parse(t, css.GetLanguage(), src)
	e := NewCSS()

	imports := e.Imports(tree, source)
	require.Len(t, imports, 1)
	require.Equal(t, "reset.css", imports[0].Module)

	rules := e.CSSRules(tree, source)
	nav := rules[0]
	require.Equal(t, ".nav, .menu", nav.Selector)
	require.Equal(t, "flexbox", nav.ElementClass)
	require.Equal(t, map[string]string{
		"display":         "flex",
		"justify-content": "space-between",
		"color":           "red",
	}, nav.Properties)
	require.Equal(t, 3, nav.StartLine)
	require.Equal(t, 7, nav.EndLine)

	require.Equal(t, "typography", find(t, rules, "h1").ElementClass)

	var atRules []string
	for _, r := range rules {
		if r.ElementClass == "at_rule" {
			atRules = append(atRules, r.Name)
		}
	}
	require.Equal(t, []string{"@media (max-width: 600px)", "@keyframes spin", "@font-face"}, atRules)

	font := find(t, rules, "@font-face")
	require.Equal(t, `"Inter"`, font.Properties["font-family"])

	// The rule nested in @media is reported on its own.
	var navs int
	for _, r := range rules {
		if r.Selector == ".nav" {
			navs++
			require.Equal(t, "layout", r.ElementClass)
		}
	}
	require.Equal(t, 1, navs)
}

func TestCSSClassify(t *testing.T) {
	t.Parallel()

	require.Equal(t, "other", cssClassify(nil))
	require.Equal(t, "grid", cssClassify(map[string]string{"grid-template-columns": "1fr", "gap": "1em"}))
	require.Equal(t, "animation", cssClassify(map[string]string{"transition": "all 1s"}))
	require.Equal(t, "color", cssClassify(map[string]string{"background-color": "red", "border-color": "blue"}))
	require.Equal(t, "flexbox", cssClassify(map[string]string{"flex": "1", "color": "red"}), "ties go to the first family")
}

func TestHTMLElements(t *testing.T) {
	t.Parallel()

	src := `<!DOCTYPE html>
<html>
<head>
  <link rel="stylesheet" href="site.css">
  <script src="app.js"></script>
</head>
<body>
  <h1 class="title">Hello</h1>
  <form action="/send"><input type="text" disabled></form>
</body>
</html>
`
	tree, source := parse(t, html.GetLanguage(), src)
	e := NewHTML()

	elems := e.HTMLElements(tree, source)
	require.Equal(t, []string{"html", "head", "link", "script", "body", "h1", "form", "input"}, names(elems))

	h1 := find(t, elems, "h1")
	require.Equal(t, "heading", h1.ElementClass)
	require.Equal(t, "body", h1.ParentTag)
	require.Equal(t, map[string]string{"class": "title"}, h1.Attributes)
	require.Equal(t, 8, h1.StartLine)

	input := find(t, elems, "input")
	require.Equal(t, "form", input.ParentTag)
	require.Equal(t, "form", input.ElementClass)
	require.Equal(t, map[string]string{"type": "text", "disabled": ""}, input.Attributes)

	require.Equal(t, "script", find(t, elems, "script").ElementClass)
	require.Empty(t, find(t, elems, "html").ParentTag)

	imports := e.Imports(tree, source)
	require.Equal(t, []string{"site.css", "app.js"}, names(imports))
	require.Equal(t, types.ElementImport, imports[0].Type)
	require.Equal(t, 4, imports[0].StartLine)
}

func TestMarkdownElements(t *testing.T) {
	t.Parallel()

	src := "# Guide\n" +
		"\n" +
		"Read the [docs](https://example.com/docs \"Docs\") and the [faq][f].\n" +
		"\n" +
		"Setup\n" +
		"-----\n" +
		"\n" +
		"```go\n" +
		"fmt.Println(\"[not](a-link)\")\n" +
		"```\n" +
		"\n" +
		"    indented code\n" +
		"\n" +
		"[f]: https://example.com/faq\n"
	tree, source := parse(t, tree_sitter_markdown.GetLanguage(), src)
	elems := NewMarkdown().MarkdownElements(tree, source)

	var headings, blocks, links []types.MarkdownElement
	for _, e := range elems {
		switch e.Type {
		case types.ElementHeading:
			headings = append(headings, e)
		case types.ElementCodeBlock:
			blocks = append(blocks, e)
		case types.ElementLink:
			links = append(links, e)
		}
	}

	require.Equal(t, []string{"Guide", "Setup"}, names(headings))
	require.Equal(t, 1, headings[0].Level)
	require.Equal(t, 2, headings[1].Level)
	require.Equal(t, 5, headings[1].StartLine)
	require.Equal(t, 6, headings[1].EndLine)

	require.Len(t, blocks, 2)
	require.Equal(t, "go", blocks[0].Info)
	require.Equal(t, "go", blocks[0].Name)
	require.Equal(t, 8, blocks[0].StartLine)
	require.Equal(t, 10, blocks[0].EndLine)
	require.Empty(t, blocks[1].Info)
	require.Equal(t, 12, blocks[1].StartLine)

	require.Equal(t, []string{"docs", "faq", "f"}, names(links))
	require.Equal(t, "https://example.com/docs", links[0].URL)
	require.Equal(t, 3, links[0].StartLine)
	require.Equal(t, "https://example.com/faq", links[1].URL)
	require.Equal(t, 14, links[2].StartLine)
}
