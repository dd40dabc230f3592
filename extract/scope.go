package extract

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/arjunmahishi/treeinv/types"
)

type span struct {
	start, end uint32
}

// scope is the request context of one top-level extraction call. It owns the
// node-text memo, so nothing survives from one call to the next.
type scope struct {
	root     *sitter.Node
	source   []byte
	language string
	lines    int
	texts    map[span]string
}

// newScope returns nil when there is nothing to extract from.
func newScope(tree *sitter.Tree, source []byte, language string) *scope {
	if tree == nil || len(source) == 0 {
		return nil
	}
	root := tree.RootNode()
	if root == nil {
		return nil
	}
	return &scope{
		root:     root,
		source:   source,
		language: language,
		lines:    bytes.Count(source, []byte("\n")) + 1,
		texts:    make(map[span]string),
	}
}

// text returns the source text of n. Results are memoized by byte range; a range
// that is out of bounds or not valid UTF-8 yields "".
func (s *scope) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	key := span{start: n.StartByte(), end: n.EndByte()}
	if t, ok := s.texts[key]; ok {
		return t
	}
	t := s.slice(key.start, key.end)
	s.texts[key] = t
	return t
}

func (s *scope) slice(start, end uint32) string {
	if start > end || int(end) > len(s.source) {
		return ""
	}
	b := s.source[start:end]
	if !utf8.Valid(b) {
		return ""
	}
	return string(b)
}

func (s *scope) clamp(line int) int {
	if line < 1 {
		return 1
	}
	if line > s.lines {
		return s.lines
	}
	return line
}

// lineAt returns the line holding the byte at offset.
func (s *scope) lineAt(offset int) int {
	if offset > len(s.source) {
		offset = len(s.source)
	}
	return s.clamp(bytes.Count(s.source[:offset], []byte("\n")) + 1)
}

func (s *scope) startLine(n *sitter.Node) int {
	return s.clamp(int(n.StartPoint().Row) + 1)
}

// endLine returns the last line n covers. A node that stops at column 0 of a later
// row ends on the previous line.
func (s *scope) endLine(n *sitter.Node) int {
	start, end := n.StartPoint(), n.EndPoint()
	line := int(end.Row) + 1
	if end.Column == 0 && end.Row > start.Row {
		line--
	}
	line = s.clamp(line)
	if first := s.startLine(n); line < first {
		return first
	}
	return line
}

// element builds the common fields for an element spanning n.
func (s *scope) element(n *sitter.Node, name string, t types.ElementType) types.CodeElement {
	return types.CodeElement{
		Name:      name,
		Type:      t,
		StartLine: s.startLine(n),
		EndLine:   s.endLine(n),
		RawText:   s.text(n),
		Language:  s.language,
	}
}

// name resolves the identifying name of n, falling back to a synthesized
// element_<line>_<col> for anonymous constructs.
func (s *scope) name(n *sitter.Node) string {
	if name := s.findName(n, 0); name != "" {
		return name
	}
	return fallbackName(n)
}

func fallbackName(n *sitter.Node) string {
	p := n.StartPoint()
	return fmt.Sprintf("element_%d_%d", p.Row+1, p.Column+1)
}

func (s *scope) findName(n *sitter.Node, depth int) string {
	if n == nil || depth > 3 {
		return ""
	}
	if named := n.ChildByFieldName("name"); named != nil && isIdentifierType(named.Type()) {
		if t := s.text(named); t != "" {
			return t
		}
	}
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		if isIdentifierType(child.Type()) {
			if t := s.text(child); t != "" {
				return t
			}
		}
	}
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		if isNameContainer(child.Type()) {
			if t := s.findName(child, depth+1); t != "" {
				return t
			}
		}
	}
	return ""
}

func isIdentifierType(t string) bool {
	switch t {
	case "name", "constant", "word", "simple_identifier", "tag_name", "key_name":
		return true
	}
	return strings.HasSuffix(t, "identifier")
}

func isNameContainer(t string) bool {
	return strings.Contains(t, "declarator") ||
		strings.HasSuffix(t, "_spec") ||
		strings.HasSuffix(t, "_declaration") ||
		strings.HasSuffix(t, "_pattern")
}

// walk visits n and its descendants in source order. Returning false from visit
// skips the children of the visited node.
func walk(n *sitter.Node, visit func(*sitter.Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		walk(n.Child(i), visit)
	}
}

func childByType(n *sitter.Node, kinds ...string) *sitter.Node {
	if n == nil {
		return nil
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		child := n.Child(i)
		for _, t := range kinds {
			if child.Type() == t {
				return child
			}
		}
	}
	return nil
}

func childrenByType(n *sitter.Node, kinds ...string) []*sitter.Node {
	var out []*sitter.Node
	if n == nil {
		return out
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		child := n.Child(i)
		for _, t := range kinds {
			if child.Type() == t {
				out = append(out, child)
				break
			}
		}
	}
	return out
}

func hasChildType(n *sitter.Node, t string) bool {
	return childByType(n, t) != nil
}

// ancestor returns the closest ancestor of n whose type is one of kinds.
func ancestor(n *sitter.Node, kinds ...string) *sitter.Node {
	for p := n.Parent(); p != nil; p = p.Parent() {
		for _, t := range kinds {
			if p.Type() == t {
				return p
			}
		}
	}
	return nil
}

func namedTexts(s *scope, n *sitter.Node) []string {
	if n == nil {
		return nil
	}
	count := int(n.NamedChildCount())
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		out = append(out, collapse(s.text(child)))
	}
	return out
}

func collapse(t string) string {
	return strings.Join(strings.Fields(t), " ")
}

func trimQuotes(t string) string {
	t = strings.TrimSpace(t)
	return strings.Trim(t, "\"'`<>")
}

// isConstantName reports whether name follows the ALL_CAPS constant convention.
func isConstantName(name string) bool {
	letters := 0
	for _, ch := range name {
		switch {
		case ch >= 'a' && ch <= 'z':
			return false
		case ch >= 'A' && ch <= 'Z':
			letters++
		}
	}
	return letters > 0
}
