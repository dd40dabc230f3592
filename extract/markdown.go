package extract

import (
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/arjunmahishi/treeinv/types"
)

// Markdown extracts headings, code blocks and links from the block structure of a
// document. Links are found in inline text; reference links resolve through the
// document's link reference definitions.
type Markdown struct {
	language string
}

func NewMarkdown() *Markdown {
	return &Markdown{language: "markdown"}
}

func (m *Markdown) Language() string {
	return m.language
}

func (m *Markdown) Functions(tree *sitter.Tree, source []byte) []types.Function { return nil }
func (m *Markdown) Classes(tree *sitter.Tree, source []byte) []types.Class      { return nil }
func (m *Markdown) Variables(tree *sitter.Tree, source []byte) []types.Variable { return nil }
func (m *Markdown) Imports(tree *sitter.Tree, source []byte) []types.Import     { return nil }

var (
	mdInlineLink = regexp.MustCompile(`!?\[([^\]]*)\]\(\s*<?([^)\s>]+)>?(?:\s+["'(][^)]*)?\)`)
	mdRefLink    = regexp.MustCompile(`\[([^\]]+)\]\[([^\]]*)\]`)
	mdAtxMarker  = regexp.MustCompile(`^atx_h([1-6])_marker$`)
)

func (m *Markdown) MarkdownElements(tree *sitter.Tree, source []byte) []types.MarkdownElement {
	s := newScope(tree, source, m.language)
	if s == nil {
		return nil
	}

	refs := make(map[string]string)
	var out []types.MarkdownElement
	var inlines []*sitter.Node
	walk(s.root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "atx_heading":
			out = append(out, mdAtxHeading(s, n))
		case "setext_heading":
			out = append(out, mdSetextHeading(s, n))
			return false
		case "fenced_code_block", "indented_code_block":
			out = append(out, mdCodeBlock(s, n))
			return false
		case "link_reference_definition":
			label := strings.ToLower(collapse(strings.Trim(s.text(childByType(n, "link_label")), "[]")))
			dest := trimQuotes(s.text(childByType(n, "link_destination")))
			if label != "" {
				if _, seen := refs[label]; !seen {
					refs[label] = dest
				}
			}
			out = append(out, types.MarkdownElement{
				CodeElement: s.element(n, label, types.ElementLink),
				URL:         dest,
			})
			return false
		case "inline":
			inlines = append(inlines, n)
			return false
		}
		return true
	})

	// Reference links may precede their definition, so inline text is scanned last.
	for _, n := range inlines {
		out = append(out, mdLinks(s, n, refs)...)
	}
	types.SortBySource(out)
	return out
}

func mdAtxHeading(s *scope, n *sitter.Node) types.MarkdownElement {
	level := 1
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		if m := mdAtxMarker.FindStringSubmatch(n.Child(i).Type()); m != nil {
			level = int(m[1][0] - '0')
			break
		}
	}
	title := collapse(s.text(n.ChildByFieldName("heading_content")))
	if title == "" {
		title = strings.TrimSpace(strings.Trim(collapse(s.text(n)), "#"))
	}
	if title == "" {
		title = fallbackName(n)
	}
	return types.MarkdownElement{
		CodeElement: s.element(n, title, types.ElementHeading),
		Level:       level,
	}
}

func mdSetextHeading(s *scope, n *sitter.Node) types.MarkdownElement {
	level := 1
	if hasChildType(n, "setext_h2_underline") {
		level = 2
	}
	title := collapse(s.text(childByType(n, "paragraph")))
	if title == "" {
		title = fallbackName(n)
	}
	return types.MarkdownElement{
		CodeElement: s.element(n, title, types.ElementHeading),
		Level:       level,
	}
}

// mdCodeBlock names a block after its info string language, when it has one.
func mdCodeBlock(s *scope, n *sitter.Node) types.MarkdownElement {
	info := ""
	if is := childByType(n, "info_string"); is != nil {
		if fields := strings.Fields(s.text(is)); len(fields) > 0 {
			info = fields[0]
		}
	}
	name := info
	if name == "" {
		name = fallbackName(n)
	}
	return types.MarkdownElement{
		CodeElement: s.element(n, name, types.ElementCodeBlock),
		Info:        info,
	}
}

// mdLinks scans inline text for [text](url) and [text][ref] links. Each link
// element covers the line it starts on.
func mdLinks(s *scope, n *sitter.Node, refs map[string]string) []types.MarkdownElement {
	text := s.text(n)
	base := int(n.StartByte())
	var out []types.MarkdownElement

	add := func(at, end int, label, url string) {
		line := s.lineAt(base + at)
		raw := text[at:end]
		if label == "" {
			label = url
		}
		out = append(out, types.MarkdownElement{
			CodeElement: types.CodeElement{
				Name:      collapse(label),
				Type:      types.ElementLink,
				StartLine: line,
				EndLine:   s.lineAt(base + end - 1),
				RawText:   raw,
				Language:  s.language,
			},
			URL: url,
		})
	}

	for _, m := range mdInlineLink.FindAllStringSubmatchIndex(text, -1) {
		add(m[0], m[1], text[m[2]:m[3]], text[m[4]:m[5]])
	}
	for _, m := range mdRefLink.FindAllStringSubmatchIndex(text, -1) {
		label := text[m[2]:m[3]]
		ref := text[m[4]:m[5]]
		if ref == "" {
			ref = label
		}
		url, ok := refs[strings.ToLower(collapse(ref))]
		if !ok {
			continue
		}
		add(m[0], m[1], label, url)
	}
	return out
}
