package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/arjunmahishi/treeinv/types"
)

// Golang extracts Go source files. Methods are recognised by their receiver, and
// visibility follows the export rule.
type Golang struct {
	*Generic
}

func NewGolang() *Golang {
	return &Golang{Generic: NewGeneric("go")}
}

func (g *Golang) Functions(tree *sitter.Tree, source []byte) []types.Function {
	s := newScope(tree, source, g.language)
	if s == nil {
		return nil
	}

	structs := make(map[string]bool)
	for _, c := range goClasses(s) {
		if c.class.ClassType == types.ClassTypeStruct {
			structs[c.class.Name] = true
		}
	}

	var out []types.Function
	walk(s.root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "function_declaration", "method_declaration":
		default:
			return true
		}

		name := s.name(n)
		fn := types.Function{
			CodeElement: s.element(n, name, types.ElementFunction),
			Visibility:  goVisibility(name),
			Parameters:  s.parameters(n),
			ReturnType:  s.returnType(n),
			Modifiers:   []string{},
			Annotations: []string{},
		}
		if recv := n.ChildByFieldName("receiver"); recv != nil {
			fn.IsMethod = true
			fn.ReceiverType = receiverType(s.text(recv))
			fn.ClassName = fn.ReceiverType
		} else if strings.HasPrefix(name, "New") {
			fn.IsConstructor = name == "New" || structs[strings.TrimPrefix(name, "New")]
		}
		out = append(out, fn)
		return false
	})
	types.SortBySource(out)
	return out
}

// receiverType extracts the type from a receiver like "(r *MyType)" -> "MyType".
// Type parameters are dropped: "(s *Stack[T])" -> "Stack".
func receiverType(receiver string) string {
	receiver = strings.TrimPrefix(receiver, "(")
	receiver = strings.TrimSuffix(receiver, ")")
	// Type arguments may hold spaces ("Map[K, V]"), so cut them before splitting.
	if i := strings.Index(receiver, "["); i >= 0 {
		receiver = receiver[:i]
	}
	parts := strings.Fields(receiver)
	t := receiver
	if len(parts) > 0 {
		t = parts[len(parts)-1]
	}
	return strings.TrimPrefix(t, "*")
}

func goVisibility(name string) string {
	r, _ := utf8.DecodeRuneInString(name)
	if unicode.IsUpper(r) {
		return types.VisibilityPublic
	}
	return types.VisibilityPrivate
}

func (g *Golang) Classes(tree *sitter.Tree, source []byte) []types.Class {
	s := newScope(tree, source, g.language)
	if s == nil {
		return nil
	}
	return classElements(goClasses(s))
}

// goClasses returns the struct and interface type declarations. Other named types
// are not class-like and are skipped.
func goClasses(s *scope) []classNode {
	var classes []classNode
	walk(s.root, func(n *sitter.Node) bool {
		if n.Type() != "type_spec" {
			return true
		}
		typ := n.ChildByFieldName("type")
		if typ == nil {
			return false
		}
		var kind string
		switch typ.Type() {
		case "struct_type":
			kind = types.ClassTypeStruct
		case "interface_type":
			kind = types.ClassTypeInterface
		default:
			return false
		}

		span := n
		if decl := n.Parent(); decl != nil && decl.Type() == "type_declaration" && decl.NamedChildCount() == 1 {
			span = decl
		}
		name := s.text(n.ChildByFieldName("name"))
		if name == "" {
			name = fallbackName(n)
		}
		classes = append(classes, classNode{node: span, class: types.Class{
			CodeElement: s.element(span, name, types.ElementClass),
			ClassType:   kind,
			Interfaces:  goEmbedded(s, typ),
			Modifiers:   []string{},
			Annotations: []string{},
			Visibility:  goVisibility(name),
		}})
		return false
	})
	nestClasses(classes)
	return classes
}

// goEmbedded lists embedded types: anonymous struct fields and embedded interfaces.
func goEmbedded(s *scope, typ *sitter.Node) []string {
	out := []string{}
	walk(typ, func(n *sitter.Node) bool {
		switch n.Type() {
		case "struct_type", "interface_type", "field_declaration_list":
			return true
		case "field_declaration":
			if n.ChildByFieldName("name") == nil {
				if t := n.ChildByFieldName("type"); t != nil {
					out = append(out, strings.TrimPrefix(s.text(t), "*"))
				}
			}
		case "type_elem", "constraint_elem":
			out = append(out, collapse(s.text(n)))
		}
		return false
	})
	return out
}

// Variables returns package level var and const specs, one per declared name.
func (g *Golang) Variables(tree *sitter.Tree, source []byte) []types.Variable {
	s := newScope(tree, source, g.language)
	if s == nil {
		return nil
	}

	var out []types.Variable
	walk(s.root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "function_declaration", "method_declaration", "func_literal", "type_declaration":
			return false
		case "var_spec", "const_spec":
			out = append(out, goSpec(s, n)...)
			return false
		}
		return true
	})
	types.SortBySource(out)
	return out
}

func goSpec(s *scope, n *sitter.Node) []types.Variable {
	constant := n.Type() == "const_spec"
	varType := ""
	if t := n.ChildByFieldName("type"); t != nil {
		varType = collapse(s.text(t))
	}
	var values []string
	if v := n.ChildByFieldName("value"); v != nil {
		values = namedTexts(s, v)
	}

	var out []types.Variable
	for i, id := range childrenByType(n, "identifier") {
		name := s.text(id)
		v := types.Variable{
			CodeElement: s.element(n, name, types.ElementVariable),
			VarType:     varType,
			Visibility:  goVisibility(name),
			IsConstant:  constant,
		}
		if i < len(values) {
			v.Value = values[i]
		}
		out = append(out, v)
	}
	return out
}

func (g *Golang) Imports(tree *sitter.Tree, source []byte) []types.Import {
	s := newScope(tree, source, g.language)
	if s == nil {
		return nil
	}

	var out []types.Import
	walk(s.root, func(n *sitter.Node) bool {
		if n.Type() != "import_spec" {
			return true
		}
		path := trimQuotes(s.text(n.ChildByFieldName("path")))
		imp := types.Import{
			CodeElement: s.element(n, path, types.ElementImport),
			Module:      path,
			Names:       []string{},
			Statement:   collapse(s.text(n)),
		}
		if alias := n.ChildByFieldName("name"); alias != nil {
			imp.Alias = s.text(alias)
		}
		if decl := ancestor(n, "import_declaration"); decl != nil && !hasChildType(decl, "import_spec_list") {
			imp.Statement = collapse(s.text(decl))
		}
		out = append(out, imp)
		return false
	})
	return out
}

// Annotations is empty: Go has no annotation syntax.
func (g *Golang) Annotations(tree *sitter.Tree, source []byte) []types.Annotation {
	return nil
}
