package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/arjunmahishi/treeinv/types"
)

// Python extracts Python modules. Decorators attach by proximity, visibility follows
// the underscore conventions and ALL_CAPS assignments are constants.
type Python struct {
	*Generic
}

func NewPython() *Python {
	return &Python{Generic: NewGeneric("python")}
}

func (p *Python) Functions(tree *sitter.Tree, source []byte) []types.Function {
	s := newScope(tree, source, p.language)
	if s == nil {
		return nil
	}
	anns := collectAnnotations(s)
	classes := pyClasses(s, anns)

	var funcs []funcNode
	walk(s.root, func(n *sitter.Node) bool {
		if n.Type() == "function_definition" {
			funcs = append(funcs, funcNode{node: n, fn: pyFunction(s, n, anns)})
		}
		return true
	})
	bindMethods(funcs, classes)
	for i := range funcs {
		fn := &funcs[i].fn
		fn.IsConstructor = fn.IsMethod && fn.Name == "__init__"
	}
	return funcElements(funcs)
}

func pyFunction(s *scope, n *sitter.Node, anns []annotationNode) types.Function {
	name := s.name(n)
	fn := types.Function{
		CodeElement: s.element(n, name, types.ElementFunction),
		Visibility:  pyVisibility(name),
		Parameters:  s.parameters(n),
		ReturnType:  s.returnType(n),
		Modifiers:   []string{},
		Annotations: annotationsFor(anns, n, s.startLine(n)),
		IsAsync:     hasChildType(n, "async"),
		Docstring:   pyDocstring(s, n),
	}
	if fn.IsAsync {
		fn.Modifiers = append(fn.Modifiers, "async")
	}
	for _, a := range fn.Annotations {
		switch annotationName(a) {
		case "staticmethod":
			fn.IsStatic = true
			fn.Modifiers = append(fn.Modifiers, "static")
		case "classmethod":
			fn.Modifiers = append(fn.Modifiers, "classmethod")
		case "property":
			fn.Modifiers = append(fn.Modifiers, "property")
		case "abstractmethod", "abc.abstractmethod":
			fn.Modifiers = append(fn.Modifiers, "abstract")
		}
	}
	return fn
}

// pyVisibility: dunder names are public, a double underscore prefix is private
// (name mangled) and a single underscore is protected.
func pyVisibility(name string) string {
	switch {
	case strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__"):
		return types.VisibilityPublic
	case strings.HasPrefix(name, "__"):
		return types.VisibilityPrivate
	case strings.HasPrefix(name, "_"):
		return types.VisibilityProtected
	}
	return types.VisibilityPublic
}

func pyDocstring(s *scope, n *sitter.Node) string {
	body := n.ChildByFieldName("body")
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first.Type() != "expression_statement" || first.NamedChildCount() == 0 {
		return ""
	}
	str := first.NamedChild(0)
	if str.Type() != "string" {
		return ""
	}
	doc := s.text(str)
	doc = strings.TrimLeft(doc, "rRuUbBfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(doc, q) && strings.HasSuffix(doc, q) && len(doc) >= 2*len(q) {
			doc = doc[len(q) : len(doc)-len(q)]
			break
		}
	}
	return strings.TrimSpace(doc)
}

func (p *Python) Classes(tree *sitter.Tree, source []byte) []types.Class {
	s := newScope(tree, source, p.language)
	if s == nil {
		return nil
	}
	return classElements(pyClasses(s, collectAnnotations(s)))
}

func pyClasses(s *scope, anns []annotationNode) []classNode {
	var classes []classNode
	walk(s.root, func(n *sitter.Node) bool {
		if n.Type() != "class_definition" {
			return true
		}
		name := s.name(n)
		c := types.Class{
			CodeElement: s.element(n, name, types.ElementClass),
			ClassType:   types.ClassTypeClass,
			Interfaces:  []string{},
			Modifiers:   []string{},
			Annotations: annotationsFor(anns, n, s.startLine(n)),
			Visibility:  pyVisibility(name),
		}
		if bases := n.ChildByFieldName("superclasses"); bases != nil {
			count := int(bases.NamedChildCount())
			for i := 0; i < count; i++ {
				base := bases.NamedChild(i)
				if base.Type() == "keyword_argument" || base.Type() == "comment" {
					continue
				}
				if c.Superclass == "" {
					c.Superclass = s.text(base)
				} else {
					c.Interfaces = append(c.Interfaces, s.text(base))
				}
			}
		}
		classes = append(classes, classNode{node: n, class: c})
		return true
	})
	nestClasses(classes)
	return classes
}

// Variables returns module and class level assignments. Assignments inside
// functions are locals and are skipped.
func (p *Python) Variables(tree *sitter.Tree, source []byte) []types.Variable {
	s := newScope(tree, source, p.language)
	if s == nil {
		return nil
	}

	var vars []varNode
	walk(s.root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "function_definition", "lambda":
			return false
		case "assignment":
			stmt := n.Parent()
			if stmt == nil || stmt.Type() != "expression_statement" {
				return false
			}
			vars = append(vars, pyAssignment(s, n)...)
			return false
		}
		return true
	})
	bindFields(vars, pyClasses(s, nil))
	return varElements(vars)
}

func pyAssignment(s *scope, n *sitter.Node) []varNode {
	left := n.ChildByFieldName("left")
	if left == nil {
		return nil
	}
	var names []*sitter.Node
	switch left.Type() {
	case "identifier":
		names = append(names, left)
	case "pattern_list", "tuple_pattern", "list_pattern":
		names = childrenByType(left, "identifier")
	default:
		return nil
	}

	value := ""
	if right := n.ChildByFieldName("right"); right != nil {
		value = collapse(s.text(right))
	}
	varType := ""
	if t := n.ChildByFieldName("type"); t != nil {
		varType = collapse(s.text(t))
	}

	out := make([]varNode, 0, len(names))
	for _, id := range names {
		name := s.text(id)
		out = append(out, varNode{node: n, v: types.Variable{
			CodeElement: s.element(n, name, types.ElementVariable),
			VarType:     varType,
			Value:       value,
			Visibility:  pyVisibility(name),
			IsConstant:  isConstantName(name),
		}})
	}
	return out
}

func (p *Python) Imports(tree *sitter.Tree, source []byte) []types.Import {
	s := newScope(tree, source, p.language)
	if s == nil {
		return nil
	}

	var out []types.Import
	walk(s.root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "import_statement":
			out = append(out, pyImport(s, n)...)
			return false
		case "import_from_statement", "future_import_statement":
			out = append(out, pyFromImport(s, n))
			return false
		}
		return true
	})
	return out
}

// pyImport splits `import a, b as c` into one import per module.
func pyImport(s *scope, n *sitter.Node) []types.Import {
	stmt := collapse(s.text(n))
	var out []types.Import
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		imp := types.Import{Names: []string{}, Statement: stmt}
		switch child.Type() {
		case "dotted_name":
			imp.Module = s.text(child)
		case "aliased_import":
			imp.Module = s.text(child.ChildByFieldName("name"))
			imp.Alias = s.text(child.ChildByFieldName("alias"))
		default:
			continue
		}
		imp.CodeElement = s.element(n, imp.Module, types.ElementImport)
		out = append(out, imp)
	}
	return out
}

func pyFromImport(s *scope, n *sitter.Node) types.Import {
	module := "__future__"
	if m := n.ChildByFieldName("module_name"); m != nil {
		module = s.text(m)
	}
	imp := types.Import{
		CodeElement: s.element(n, module, types.ElementImport),
		Module:      module,
		Names:       []string{},
		Statement:   collapse(s.text(n)),
	}

	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		if sameNode(child, n.ChildByFieldName("module_name")) {
			continue
		}
		switch child.Type() {
		case "dotted_name":
			imp.Names = append(imp.Names, s.text(child))
		case "aliased_import":
			imp.Names = append(imp.Names, s.text(child.ChildByFieldName("name")))
			if imp.Alias == "" {
				imp.Alias = s.text(child.ChildByFieldName("alias"))
			}
		case "wildcard_import":
			imp.Names = append(imp.Names, "*")
		}
	}
	return imp
}

// Packages is empty: Python has no package declarations.
func (p *Python) Packages(tree *sitter.Tree, source []byte) []types.Package {
	return nil
}
