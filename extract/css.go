package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/arjunmahishi/treeinv/types"
)

// CSS extracts rule sets and at-rules. @import statements are reported as imports.
type CSS struct {
	language string
}

func NewCSS() *CSS {
	return &CSS{language: "css"}
}

func (c *CSS) Language() string {
	return c.language
}

func (c *CSS) Functions(tree *sitter.Tree, source []byte) []types.Function { return nil }
func (c *CSS) Classes(tree *sitter.Tree, source []byte) []types.Class      { return nil }
func (c *CSS) Variables(tree *sitter.Tree, source []byte) []types.Variable { return nil }

func (c *CSS) Imports(tree *sitter.Tree, source []byte) []types.Import {
	s := newScope(tree, source, c.language)
	if s == nil {
		return nil
	}
	var out []types.Import
	walk(s.root, func(n *sitter.Node) bool {
		if n.Type() != "import_statement" {
			return true
		}
		module := ""
		if n.NamedChildCount() > 0 {
			module = cssURL(s.text(n.NamedChild(0)))
		}
		if module == "" {
			module = fallbackName(n)
		}
		out = append(out, types.Import{
			CodeElement: s.element(n, module, types.ElementImport),
			Module:      module,
			Names:       []string{},
			Statement:   collapse(s.text(n)),
		})
		return false
	})
	return out
}

// cssURL unwraps url("x") and quoted strings.
func cssURL(t string) string {
	t = strings.TrimSpace(t)
	if strings.HasPrefix(t, "url(") && strings.HasSuffix(t, ")") {
		t = t[len("url(") : len(t)-1]
	}
	return trimQuotes(t)
}

func (c *CSS) CSSRules(tree *sitter.Tree, source []byte) []types.StyleElement {
	s := newScope(tree, source, c.language)
	if s == nil {
		return nil
	}
	return cssRules(s)
}

var cssAtRules = map[string]string{
	"media_statement":     "@media",
	"keyframes_statement": "@keyframes",
	"supports_statement":  "@supports",
	"charset_statement":   "@charset",
	"namespace_statement": "@namespace",
	"at_rule":             "",
}

// cssRules returns rule sets and at-rules in source order. Rule sets nested in
// @media or @supports blocks are reported on their own.
func cssRules(s *scope) []types.StyleElement {
	var out []types.StyleElement
	walk(s.root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "rule_set":
			selector := ""
			if sel := childByType(n, "selectors", "selector_list"); sel != nil {
				selector = collapse(s.text(sel))
			}
			if selector == "" {
				selector = fallbackName(n)
			}
			props := cssProperties(s, childByType(n, "block"))
			out = append(out, types.StyleElement{
				CodeElement:  s.element(n, selector, types.ElementStyleRule),
				Selector:     selector,
				Properties:   props,
				ElementClass: cssClassify(props),
			})
			return false
		case "import_statement":
			return false
		}

		keyword, ok := cssAtRules[n.Type()]
		if !ok {
			return true
		}
		text := collapse(s.text(n))
		if keyword == "" {
			keyword = strings.Fields(text + " ")[0]
		}
		prelude := text
		if i := strings.IndexAny(prelude, "{;"); i >= 0 {
			prelude = prelude[:i]
		}
		prelude = strings.TrimSpace(prelude)
		out = append(out, types.StyleElement{
			CodeElement:  s.element(n, prelude, types.ElementStyleRule),
			Selector:     strings.TrimSpace(strings.TrimPrefix(prelude, keyword)),
			Properties:   cssProperties(s, childByType(n, "block")),
			ElementClass: "at_rule",
		})
		return true
	})
	return out
}

// cssProperties maps the declarations directly inside block.
func cssProperties(s *scope, block *sitter.Node) map[string]string {
	props := map[string]string{}
	for _, d := range childrenByType(block, "declaration") {
		text := strings.TrimSuffix(strings.TrimSpace(s.text(d)), ";")
		name, value, ok := strings.Cut(text, ":")
		if !ok {
			continue
		}
		props[strings.TrimSpace(name)] = collapse(value)
	}
	return props
}

var cssFamilies = []struct {
	class string
	match func(prop string) bool
}{
	{"flexbox", func(p string) bool {
		return strings.HasPrefix(p, "flex") || isOneOf(p, []string{"justify-content", "align-items", "align-self", "align-content", "order"})
	}},
	{"grid", func(p string) bool {
		return strings.HasPrefix(p, "grid") || p == "gap" || p == "row-gap" || p == "column-gap"
	}},
	{"animation", func(p string) bool {
		return strings.HasPrefix(p, "animation") || strings.HasPrefix(p, "transition") || strings.HasPrefix(p, "transform")
	}},
	{"typography", func(p string) bool {
		return strings.HasPrefix(p, "font") || strings.HasPrefix(p, "text-") ||
			isOneOf(p, []string{"line-height", "letter-spacing", "word-spacing", "white-space"})
	}},
	{"color", func(p string) bool {
		return p == "color" || strings.HasPrefix(p, "background") || strings.HasSuffix(p, "-color") ||
			isOneOf(p, []string{"opacity", "fill", "stroke"})
	}},
	{"layout", func(p string) bool {
		return strings.HasPrefix(p, "margin") || strings.HasPrefix(p, "padding") ||
			strings.HasPrefix(p, "min-") || strings.HasPrefix(p, "max-") ||
			isOneOf(p, []string{"display", "position", "top", "left", "right", "bottom", "width", "height",
				"float", "clear", "overflow", "z-index", "box-sizing"})
	}},
}

// cssClassify names the property family a rule mostly deals with. Ties go to the
// family listed first.
func cssClassify(props map[string]string) string {
	best, bestCount := "other", 0
	for _, f := range cssFamilies {
		count := 0
		for p := range props {
			if f.match(strings.ToLower(p)) {
				count++
			}
		}
		if count > bestCount {
			best, bestCount = f.class, count
		}
	}
	return best
}
