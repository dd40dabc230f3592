package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/arjunmahishi/treeinv/types"
)

// HTML extracts elements with their attributes. Script sources and linked
// resources are reported as imports.
type HTML struct {
	language string
}

func NewHTML() *HTML {
	return &HTML{language: "html"}
}

func (h *HTML) Language() string {
	return h.language
}

func (h *HTML) Functions(tree *sitter.Tree, source []byte) []types.Function { return nil }
func (h *HTML) Classes(tree *sitter.Tree, source []byte) []types.Class      { return nil }
func (h *HTML) Variables(tree *sitter.Tree, source []byte) []types.Variable { return nil }

// Imports returns <script src> and <link href> references.
func (h *HTML) Imports(tree *sitter.Tree, source []byte) []types.Import {
	s := newScope(tree, source, h.language)
	if s == nil {
		return nil
	}
	var out []types.Import
	for _, el := range htmlElements(s) {
		var ref string
		switch el.TagName {
		case "script":
			ref = el.Attributes["src"]
		case "link":
			ref = el.Attributes["href"]
		}
		if ref == "" {
			continue
		}
		code := el.CodeElement
		code.Name = ref
		code.Type = types.ElementImport
		out = append(out, types.Import{
			CodeElement: code,
			Module:      ref,
			Names:       []string{},
			Statement:   collapse(firstLine(el.RawText)),
		})
	}
	return out
}

func (h *HTML) HTMLElements(tree *sitter.Tree, source []byte) []types.HTMLElement {
	s := newScope(tree, source, h.language)
	if s == nil {
		return nil
	}
	return htmlElements(s)
}

func firstLine(t string) string {
	if i := strings.IndexByte(t, '\n'); i >= 0 {
		return t[:i]
	}
	return t
}

var htmlElementTypes = []string{"element", "script_element", "style_element"}

// htmlElements returns every element in document order. An element is any node
// opened by a start or self-closing tag.
func htmlElements(s *scope) []types.HTMLElement {
	var out []types.HTMLElement
	walk(s.root, func(n *sitter.Node) bool {
		if !isOneOf(n.Type(), htmlElementTypes) {
			return true
		}
		tag := childByType(n, "start_tag", "self_closing_tag")
		if tag == nil {
			return true
		}
		name := strings.ToLower(s.text(childByType(tag, "tag_name")))
		if name == "" {
			name = fallbackName(n)
		}
		out = append(out, types.HTMLElement{
			CodeElement:  s.element(n, name, types.ElementHTML),
			TagName:      name,
			Attributes:   htmlAttributes(s, tag),
			ElementClass: htmlClassify(name),
			ParentTag:    htmlParentTag(s, n),
		})
		return true
	})
	return out
}

func htmlAttributes(s *scope, tag *sitter.Node) map[string]string {
	attrs := map[string]string{}
	for _, a := range childrenByType(tag, "attribute") {
		name := strings.ToLower(s.text(childByType(a, "attribute_name")))
		if name == "" {
			continue
		}
		value := ""
		if v := childByType(a, "quoted_attribute_value", "attribute_value"); v != nil {
			value = trimQuotes(s.text(v))
		}
		attrs[name] = value
	}
	return attrs
}

func htmlParentTag(s *scope, n *sitter.Node) string {
	p := ancestor(n, htmlElementTypes...)
	if p == nil {
		return ""
	}
	tag := childByType(p, "start_tag", "self_closing_tag")
	return strings.ToLower(s.text(childByType(tag, "tag_name")))
}

var htmlClasses = map[string][]string{
	"structure": {"html", "head", "body", "header", "footer", "nav", "main", "section", "article", "aside", "div", "span"},
	"heading":   {"h1", "h2", "h3", "h4", "h5", "h6"},
	"text":      {"p", "strong", "em", "b", "i", "u", "small", "code", "pre", "blockquote", "br", "hr"},
	"form":      {"form", "input", "button", "select", "option", "textarea", "label", "fieldset", "legend"},
	"media":     {"img", "video", "audio", "source", "picture", "svg", "canvas", "iframe"},
	"link":      {"a", "link"},
	"list":      {"ul", "ol", "li", "dl", "dt", "dd"},
	"table":     {"table", "thead", "tbody", "tfoot", "tr", "td", "th", "caption"},
	"metadata":  {"meta", "title", "base"},
	"script":    {"script", "noscript"},
	"style":     {"style"},
}

func htmlClassify(tag string) string {
	for class, tags := range htmlClasses {
		if isOneOf(tag, tags) {
			return class
		}
	}
	return "other"
}
