package extract

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/arjunmahishi/treeinv/types"
)

// YAML segments a stream into documents and reports mappings, sequences and
// comments tagged with the index of their document. Indices start at 0 and follow
// document order, so every element's index names the document containing it.
type YAML struct {
	language string
}

func NewYAML() *YAML {
	return &YAML{language: "yaml"}
}

func (y *YAML) Language() string {
	return y.language
}

// Functions, Classes, Variables and Imports are empty; YAML content is reported
// through YAMLElements.
func (y *YAML) Functions(tree *sitter.Tree, source []byte) []types.Function { return nil }
func (y *YAML) Classes(tree *sitter.Tree, source []byte) []types.Class      { return nil }
func (y *YAML) Variables(tree *sitter.Tree, source []byte) []types.Variable { return nil }
func (y *YAML) Imports(tree *sitter.Tree, source []byte) []types.Import     { return nil }

// YAMLElements returns the documents of the stream followed, in source order, by
// their contents. Comments outside every document are not reported.
func (y *YAML) YAMLElements(tree *sitter.Tree, source []byte) []types.YAMLElement {
	s := newScope(tree, source, y.language)
	if s == nil {
		return nil
	}

	var out []types.YAMLElement
	var docs []*sitter.Node
	walk(s.root, func(n *sitter.Node) bool {
		if n.Type() == "document" {
			docs = append(docs, n)
			return false
		}
		return true
	})

	for idx, doc := range docs {
		d := types.YAMLElement{
			CodeElement:   s.element(doc, fmt.Sprintf("document_%d", idx), types.ElementYAMLDocument),
			ValueType:     "document",
			DocumentIndex: idx,
		}
		if root := yamlRootCollection(doc); root != nil {
			d.ChildCount = intPtr(yamlChildCount(root))
		}
		out = append(out, d)
		out = append(out, yamlContents(s, doc, idx)...)
	}
	types.SortBySource(out)
	return out
}

func yamlContents(s *scope, doc *sitter.Node, idx int) []types.YAMLElement {
	var out []types.YAMLElement
	walk(doc, func(n *sitter.Node) bool {
		switch n.Type() {
		case "block_mapping_pair", "flow_pair":
			out = append(out, yamlPair(s, n, idx))
		case "block_sequence", "flow_sequence":
			out = append(out, yamlSequence(s, n, idx))
		case "comment":
			text := s.text(n)
			out = append(out, types.YAMLElement{
				CodeElement:   s.element(n, fallbackName(n), types.ElementYAMLComment),
				Value:         strings.TrimSpace(strings.TrimPrefix(text, "#")),
				ValueType:     "comment",
				NestingLevel:  yamlDepth(n),
				DocumentIndex: idx,
			})
		}
		return true
	})
	return out
}

func yamlPair(s *scope, n *sitter.Node, idx int) types.YAMLElement {
	key := ""
	if k := n.ChildByFieldName("key"); k != nil {
		key = trimQuotes(s.text(k))
	}
	name := key
	if name == "" {
		name = fallbackName(n)
	}
	e := types.YAMLElement{
		CodeElement:   s.element(n, name, types.ElementYAMLMapping),
		Key:           key,
		ValueType:     "null",
		NestingLevel:  yamlDepth(n),
		DocumentIndex: idx,
	}

	value := n.ChildByFieldName("value")
	if value == nil {
		return e
	}
	content, anchor := yamlContent(value)
	if anchor != nil {
		e.AnchorName = strings.TrimPrefix(s.text(anchor), "&")
	}
	if content == nil {
		return e
	}
	e.ValueType = yamlValueType(content)
	switch e.ValueType {
	case "mapping", "sequence":
		e.ChildCount = intPtr(yamlChildCount(content))
	case "alias":
		e.AliasTarget = strings.TrimPrefix(s.text(content), "*")
	default:
		e.Value = trimQuotes(s.text(content))
	}
	return e
}

func yamlSequence(s *scope, n *sitter.Node, idx int) types.YAMLElement {
	name := ""
	// The sequence is the value of a pair: name it after the key.
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Type() == "block_node" || p.Type() == "flow_node" {
			continue
		}
		if p.Type() == "block_mapping_pair" || p.Type() == "flow_pair" {
			if k := p.ChildByFieldName("key"); k != nil {
				name = trimQuotes(s.text(k))
			}
		}
		break
	}
	if name == "" {
		name = fallbackName(n)
	}
	return types.YAMLElement{
		CodeElement:   s.element(n, name, types.ElementYAMLSequence),
		Key:           name,
		ValueType:     "sequence",
		NestingLevel:  yamlDepth(n),
		DocumentIndex: idx,
		ChildCount:    intPtr(yamlChildCount(n)),
	}
}

// yamlContent unwraps block and flow nodes down to the value itself, returning
// the anchor declared on the way.
func yamlContent(n *sitter.Node) (content, anchor *sitter.Node) {
	for n != nil {
		switch n.Type() {
		case "block_node", "flow_node":
			var next *sitter.Node
			count := int(n.NamedChildCount())
			for i := 0; i < count; i++ {
				child := n.NamedChild(i)
				switch child.Type() {
				case "anchor":
					anchor = child
				case "tag", "comment":
				default:
					if next == nil {
						next = child
					}
				}
			}
			n = next
		case "plain_scalar":
			if n.NamedChildCount() > 0 {
				return n.NamedChild(0), anchor
			}
			return n, anchor
		default:
			return n, anchor
		}
	}
	return nil, anchor
}

func yamlValueType(n *sitter.Node) string {
	switch n.Type() {
	case "block_mapping", "flow_mapping":
		return "mapping"
	case "block_sequence", "flow_sequence":
		return "sequence"
	case "alias":
		return "alias"
	case "integer_scalar":
		return "integer"
	case "float_scalar":
		return "float"
	case "boolean_scalar":
		return "boolean"
	case "null_scalar":
		return "null"
	}
	return "string"
}

func yamlChildCount(n *sitter.Node) int {
	count := 0
	total := int(n.NamedChildCount())
	for i := 0; i < total; i++ {
		switch n.NamedChild(i).Type() {
		case "block_mapping_pair", "flow_pair", "block_sequence_item", "flow_node":
			count++
		}
	}
	return count
}

// yamlRootCollection returns the mapping or sequence at the top of a document.
func yamlRootCollection(doc *sitter.Node) *sitter.Node {
	count := int(doc.NamedChildCount())
	for i := 0; i < count; i++ {
		child := doc.NamedChild(i)
		if child.Type() != "block_node" && child.Type() != "flow_node" {
			continue
		}
		content, _ := yamlContent(child)
		if content != nil {
			switch yamlValueType(content) {
			case "mapping", "sequence":
				return content
			}
		}
	}
	return nil
}

// yamlDepth counts the collections enclosing n within its document.
func yamlDepth(n *sitter.Node) int {
	depth := 0
	for p := n.Parent(); p != nil && p.Type() != "document"; p = p.Parent() {
		switch p.Type() {
		case "block_mapping_pair", "flow_pair", "block_sequence_item", "flow_sequence":
			depth++
		}
	}
	return depth
}

func intPtr(v int) *int {
	return &v
}
