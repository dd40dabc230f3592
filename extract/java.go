package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/arjunmahishi/treeinv/types"
)

// Java extracts Java compilation units. Members without an access modifier have
// package visibility.
type Java struct {
	*Generic
}

func NewJava() *Java {
	return &Java{Generic: NewGeneric("java")}
}

var javaClassTypes = map[string]string{
	"class_declaration":           types.ClassTypeClass,
	"interface_declaration":       types.ClassTypeInterface,
	"enum_declaration":            types.ClassTypeEnum,
	"record_declaration":          types.ClassTypeStruct,
	"annotation_type_declaration": types.ClassTypeInterface,
}

func (j *Java) Functions(tree *sitter.Tree, source []byte) []types.Function {
	s := newScope(tree, source, j.language)
	if s == nil {
		return nil
	}
	anns := collectAnnotations(s)
	classes := javaClasses(s, anns)

	var funcs []funcNode
	walk(s.root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "method_declaration", "constructor_declaration", "compact_constructor_declaration":
		default:
			return true
		}
		name := s.name(n)
		mods := s.modifiers(n)
		fn := types.Function{
			CodeElement:   s.element(n, name, types.ElementFunction),
			Visibility:    visibilityOf(mods, types.VisibilityPackage),
			Parameters:    s.parameters(n),
			Modifiers:     mods,
			Annotations:   annotationsFor(anns, n, s.startLine(n)),
			IsConstructor: n.Type() != "method_declaration",
			IsStatic:      hasModifier(mods, "static"),
		}
		if t := n.ChildByFieldName("type"); t != nil && !fn.IsConstructor {
			fn.ReturnType = collapse(s.text(t))
		}
		if c := innermost(classes, n); c != nil && c.class.ClassType == types.ClassTypeInterface && !hasModifier(mods, "private") {
			fn.Visibility = types.VisibilityPublic
		}
		funcs = append(funcs, funcNode{node: n, fn: fn})
		return true
	})
	bindMethods(funcs, classes)
	return funcElements(funcs)
}

func (j *Java) Classes(tree *sitter.Tree, source []byte) []types.Class {
	s := newScope(tree, source, j.language)
	if s == nil {
		return nil
	}
	return classElements(javaClasses(s, collectAnnotations(s)))
}

func javaClasses(s *scope, anns []annotationNode) []classNode {
	var classes []classNode
	walk(s.root, func(n *sitter.Node) bool {
		kind, ok := javaClassTypes[n.Type()]
		if !ok {
			return true
		}
		mods := s.modifiers(n)
		c := types.Class{
			CodeElement: s.element(n, s.name(n), types.ElementClass),
			ClassType:   kind,
			Interfaces:  []string{},
			Modifiers:   mods,
			Annotations: annotationsFor(anns, n, s.startLine(n)),
			Visibility:  visibilityOf(mods, types.VisibilityPackage),
		}
		if sc := n.ChildByFieldName("superclass"); sc != nil {
			c.Superclass = stripKeyword(s.text(sc), "extends")
		}
		if ifs := n.ChildByFieldName("interfaces"); ifs != nil {
			c.Interfaces = javaTypeList(s, ifs)
		}
		// interface Foo extends Bar, Baz
		if ext := childByType(n, "extends_interfaces"); ext != nil {
			c.Interfaces = append(c.Interfaces, javaTypeList(s, ext)...)
		}
		classes = append(classes, classNode{node: n, class: c})
		return true
	})
	nestClasses(classes)
	return classes
}

func javaTypeList(s *scope, n *sitter.Node) []string {
	if list := childByType(n, "type_list"); list != nil {
		return namedTexts(s, list)
	}
	return splitList(stripKeyword(stripKeyword(s.text(n), "implements"), "extends"))
}

// Variables returns fields and interface constants. Local variables are skipped.
func (j *Java) Variables(tree *sitter.Tree, source []byte) []types.Variable {
	s := newScope(tree, source, j.language)
	if s == nil {
		return nil
	}
	classes := javaClasses(s, nil)

	var vars []varNode
	walk(s.root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "method_declaration", "constructor_declaration", "lambda_expression":
			return false
		case "field_declaration", "constant_declaration":
		default:
			return true
		}
		mods := s.modifiers(n)
		inInterface := false
		if c := innermost(classes, n); c != nil {
			inInterface = c.class.ClassType == types.ClassTypeInterface
		}
		varType := collapse(s.text(n.ChildByFieldName("type")))
		for _, d := range childrenByType(n, "variable_declarator") {
			name := s.text(d.ChildByFieldName("name"))
			v := types.Variable{
				CodeElement: s.element(n, name, types.ElementVariable),
				VarType:     varType,
				Visibility:  visibilityOf(mods, types.VisibilityPackage),
				IsConstant:  n.Type() == "constant_declaration" || inInterface || (hasModifier(mods, "static") && hasModifier(mods, "final")),
			}
			if inInterface {
				v.Visibility = types.VisibilityPublic
			}
			if val := d.ChildByFieldName("value"); val != nil {
				v.Value = collapse(s.text(val))
			}
			vars = append(vars, varNode{node: n, v: v})
		}
		return false
	})
	bindFields(vars, classes)
	return varElements(vars)
}

func (j *Java) Imports(tree *sitter.Tree, source []byte) []types.Import {
	s := newScope(tree, source, j.language)
	if s == nil {
		return nil
	}

	var out []types.Import
	walk(s.root, func(n *sitter.Node) bool {
		if n.Type() != "import_declaration" {
			return true
		}
		stmt := collapse(s.text(n))
		module := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(stmt, "import"), ";"))
		module = strings.TrimSpace(strings.TrimPrefix(module, "static "))
		imp := types.Import{
			CodeElement: s.element(n, module, types.ElementImport),
			Module:      module,
			Names:       []string{},
			Statement:   stmt,
		}
		if i := strings.LastIndex(module, "."); i >= 0 {
			imp.Names = append(imp.Names, module[i+1:])
		}
		out = append(out, imp)
		return false
	})
	return out
}
