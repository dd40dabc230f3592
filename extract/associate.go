package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/arjunmahishi/treeinv/types"
)

// classNode and friends keep the syntax node next to the element built from it
// until nesting and association are resolved.
type classNode struct {
	node  *sitter.Node
	class types.Class
}

type funcNode struct {
	node *sitter.Node
	fn   types.Function
}

type varNode struct {
	node *sitter.Node
	v    types.Variable
}

type annotationNode struct {
	node *sitter.Node
	ann  types.Annotation
}

// contains reports whether inner lies within outer's byte range. A node does not
// contain itself.
func contains(outer, inner *sitter.Node) bool {
	if sameNode(outer, inner) {
		return false
	}
	return outer.StartByte() <= inner.StartByte() && inner.EndByte() <= outer.EndByte()
}

// innermost returns the narrowest class whose range contains n.
func innermost(classes []classNode, n *sitter.Node) *classNode {
	var best *classNode
	for i := range classes {
		c := &classes[i]
		if !contains(c.node, n) {
			continue
		}
		if best == nil || contains(best.node, c.node) {
			best = c
		}
	}
	return best
}

// nestClasses marks every class contained in another one. The parent is recorded
// by name only.
func nestClasses(classes []classNode) {
	for i := range classes {
		if p := innermost(classes, classes[i].node); p != nil {
			classes[i].class.IsNested = true
			classes[i].class.ParentClass = p.class.Name
		}
	}
}

// bindMethods marks functions declared directly in a class body as methods of
// that class. Functions nested in another function stay plain functions.
func bindMethods(funcs []funcNode, classes []classNode) {
	for i := range funcs {
		c := innermost(classes, funcs[i].node)
		if c == nil || enclosedByFunction(funcs, i, c.node) {
			continue
		}
		funcs[i].fn.IsMethod = true
		if funcs[i].fn.ClassName == "" {
			funcs[i].fn.ClassName = c.class.Name
		}
	}
}

func enclosedByFunction(funcs []funcNode, i int, within *sitter.Node) bool {
	for j := range funcs {
		if j != i && contains(funcs[j].node, funcs[i].node) && contains(within, funcs[j].node) {
			return true
		}
	}
	return false
}

// bindFields records the enclosing class of variables declared in a class body.
func bindFields(vars []varNode, classes []classNode) {
	for i := range vars {
		if c := innermost(classes, vars[i].node); c != nil {
			vars[i].v.ClassName = c.class.Name
		}
	}
}

// collectAnnotations finds every annotation, decorator and attribute node.
func collectAnnotations(s *scope) []annotationNode {
	var out []annotationNode
	walk(s.root, func(n *sitter.Node) bool {
		if !n.IsNamed() || !isAnnotationType(n.Type()) {
			return true
		}
		text := collapse(s.text(n))
		ann := types.Annotation{
			CodeElement: s.element(n, annotationName(text), types.ElementAnnotation),
			Arguments:   annotationArguments(text),
			Target:      s.annotationTarget(n),
		}
		if ann.Name == "" {
			ann.Name = fallbackName(n)
		}
		out = append(out, annotationNode{node: n, ann: ann})
		return false
	})
	return out
}

// annotationName strips the sigils and arguments from an annotation's text:
// "@app.route('/')" gives "app.route", "#[derive(Debug)]" gives "derive".
func annotationName(text string) string {
	text = strings.TrimSpace(text)
	for _, p := range []string{"#![", "#[", "@", "["} {
		if strings.HasPrefix(text, p) {
			text = text[len(p):]
			break
		}
	}
	text = strings.TrimSuffix(text, "]")
	if i := strings.IndexAny(text, "(]"); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

func annotationArguments(text string) string {
	open := strings.Index(text, "(")
	close := strings.LastIndex(text, ")")
	if open < 0 || close <= open {
		return ""
	}
	return strings.TrimSpace(text[open+1 : close])
}

// annotationTarget names the declaration an annotation applies to: the owner of
// the modifier list or decorated definition it sits in, or else the next sibling.
func (s *scope) annotationTarget(n *sitter.Node) string {
	p := n.Parent()
	for p != nil && isModifierContainer(p.Type()) {
		p = p.Parent()
	}
	if p == nil {
		return ""
	}
	if p.Type() == "decorated_definition" {
		if def := p.ChildByFieldName("definition"); def != nil {
			return s.findName(def, 0)
		}
	}
	if !sameNode(p, n.Parent()) || isFunctionType(p.Type()) || isClassNode(s.root, p) {
		return s.findName(p, 0)
	}
	for sib := n.NextNamedSibling(); sib != nil; sib = sib.NextNamedSibling() {
		t := sib.Type()
		if isAnnotationType(t) || strings.Contains(t, "comment") {
			continue
		}
		return s.findName(sib, 0)
	}
	return ""
}

func isModifierContainer(t string) bool {
	return strings.Contains(t, "modifier") || t == "attribute_list" || t == "attributes"
}

// annotationsFor returns the texts of the annotations attached to decl: those
// written in its own modifier lists, then those on the lines directly above it.
// The upward scan follows a contiguous run of annotated lines, since several
// grammars place decorators as siblings of the declaration.
func annotationsFor(anns []annotationNode, decl *sitter.Node, startLine int) []string {
	out := []string{}
	for _, a := range anns {
		if ownedBy(a.node, decl) {
			out = append(out, a.ann.RawText)
		}
	}

	var above []string
	for line := startLine - 1; line >= 1; {
		var run []annotationNode
		for _, a := range anns {
			if a.ann.EndLine == line && !ownedByAny(a.node) {
				run = append(run, a)
			}
		}
		if len(run) == 0 {
			break
		}
		first := line
		texts := make([]string, 0, len(run))
		for _, a := range run {
			texts = append(texts, a.ann.RawText)
			if a.ann.StartLine < first {
				first = a.ann.StartLine
			}
		}
		above = append(texts, above...)
		line = first - 1
	}
	for i := range out {
		out[i] = collapse(out[i])
	}
	for _, t := range above {
		out = append(out, collapse(t))
	}
	return out
}

// ownedBy reports whether annotation a belongs to decl through modifier lists only.
func ownedBy(a, decl *sitter.Node) bool {
	for p := a.Parent(); p != nil; p = p.Parent() {
		if sameNode(p, decl) {
			return true
		}
		if !isModifierContainer(p.Type()) {
			return false
		}
	}
	return false
}

// ownedByAny reports whether a sits in some declaration's modifier list, in which
// case proximity must not hand it to another declaration.
func ownedByAny(a *sitter.Node) bool {
	p := a.Parent()
	return p != nil && isModifierContainer(p.Type())
}
