package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/arjunmahishi/treeinv/types"
)

// CFamily extracts C and C++ translation units. Functions are named through their
// declarator chain; a qualified name such as A::b marks a method defined out of line.
type CFamily struct {
	*Generic
}

// NewCFamily returns an extractor for language "c" or "cpp".
func NewCFamily(language string) *CFamily {
	return &CFamily{Generic: NewGeneric(language)}
}

var cClassTypes = map[string]string{
	"class_specifier":  types.ClassTypeClass,
	"struct_specifier": types.ClassTypeStruct,
	"union_specifier":  types.ClassTypeStruct,
	"enum_specifier":   types.ClassTypeEnum,
}

func (c *CFamily) Functions(tree *sitter.Tree, source []byte) []types.Function {
	s := newScope(tree, source, c.language)
	if s == nil {
		return nil
	}
	classes := typesOnly(cClasses(s))

	var funcs []funcNode
	walk(s.root, func(n *sitter.Node) bool {
		if n.Type() != "function_definition" {
			return true
		}
		declarator := cFunctionDeclarator(n)
		name := fallbackName(n)
		if declarator != nil {
			if inner := declarator.ChildByFieldName("declarator"); inner != nil {
				name = s.text(inner)
			}
		}
		mods := cModifiers(s, n)
		fn := types.Function{
			CodeElement: s.element(n, name, types.ElementFunction),
			Visibility:  types.VisibilityPublic,
			Parameters:  []string{},
			ReturnType:  collapse(s.text(n.ChildByFieldName("type"))),
			Modifiers:   mods,
			Annotations: []string{},
			IsStatic:    hasModifier(mods, "static"),
		}
		if declarator != nil {
			fn.Parameters = namedTexts(s, declarator.ChildByFieldName("parameters"))
		}
		if ptr := cPointerPrefix(n); ptr != "" && fn.ReturnType != "" {
			fn.ReturnType += " " + ptr
		}
		if i := strings.LastIndex(name, "::"); i >= 0 {
			fn.IsMethod = true
			fn.ClassName = name[:i]
			fn.Name = name[i+2:]
		}
		if fn.IsStatic && !fn.IsMethod && ancestor(n, "field_declaration_list") == nil {
			// File-local linkage.
			fn.Visibility = types.VisibilityPrivate
		}
		funcs = append(funcs, funcNode{node: n, fn: fn})
		return true
	})
	bindMethods(funcs, classes)
	for i := range funcs {
		fn := &funcs[i].fn
		if !fn.IsMethod {
			continue
		}
		if innerClass := innermost(classes, funcs[i].node); innerClass != nil {
			fn.Visibility = cAccess(s, funcs[i].node, innerClass.class.ClassType)
		}
		base := fn.ClassName
		if j := strings.LastIndex(base, "::"); j >= 0 {
			base = base[j+2:]
		}
		fn.IsConstructor = fn.Name == base
	}
	return funcElements(funcs)
}

// cFunctionDeclarator unwraps pointer and reference declarators down to the
// function_declarator.
func cFunctionDeclarator(n *sitter.Node) *sitter.Node {
	d := n.ChildByFieldName("declarator")
	for d != nil && d.Type() != "function_declarator" {
		d = d.ChildByFieldName("declarator")
	}
	return d
}

func cPointerPrefix(n *sitter.Node) string {
	var ptr string
	for d := n.ChildByFieldName("declarator"); d != nil && d.Type() != "function_declarator"; d = d.ChildByFieldName("declarator") {
		switch d.Type() {
		case "pointer_declarator":
			ptr += "*"
		case "reference_declarator":
			ptr += "&"
		}
	}
	return ptr
}

func cModifiers(s *scope, n *sitter.Node) []string {
	mods := []string{}
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "storage_class_specifier", "type_qualifier", "virtual", "virtual_function_specifier", "explicit_function_specifier":
			mods = appendUnique(mods, s.text(child))
		}
	}
	return mods
}

// cAccess resolves a member's visibility from the nearest preceding access
// specifier in the class body. Class members default to private, struct members
// to public.
func cAccess(s *scope, member *sitter.Node, classType string) string {
	for sib := member.PrevSibling(); sib != nil; sib = sib.PrevSibling() {
		if sib.Type() == "access_specifier" {
			switch strings.TrimSpace(s.text(sib)) {
			case "private":
				return types.VisibilityPrivate
			case "protected":
				return types.VisibilityProtected
			}
			return types.VisibilityPublic
		}
	}
	if classType == types.ClassTypeClass {
		return types.VisibilityPrivate
	}
	return types.VisibilityPublic
}

// typesOnly drops namespaces: their members are not methods or fields.
func typesOnly(classes []classNode) []classNode {
	out := make([]classNode, 0, len(classes))
	for _, c := range classes {
		if c.class.ClassType != types.ClassTypeNamespace {
			out = append(out, c)
		}
	}
	return out
}

func (c *CFamily) Classes(tree *sitter.Tree, source []byte) []types.Class {
	s := newScope(tree, source, c.language)
	if s == nil {
		return nil
	}
	return classElements(cClasses(s))
}

// cClasses returns type definitions with a body and C++ namespaces. An anonymous
// struct in a typedef takes the typedef's name.
func cClasses(s *scope) []classNode {
	var classes []classNode
	walk(s.root, func(n *sitter.Node) bool {
		kind, ok := cClassTypes[n.Type()]
		if n.Type() == "namespace_definition" {
			kind, ok = types.ClassTypeNamespace, true
		}
		if !ok {
			return true
		}
		if kind != types.ClassTypeNamespace && n.ChildByFieldName("body") == nil {
			return true
		}

		name := s.text(n.ChildByFieldName("name"))
		if name == "" {
			if p := n.Parent(); p != nil && p.Type() == "type_definition" {
				name = s.text(p.ChildByFieldName("declarator"))
			}
		}
		if name == "" {
			name = fallbackName(n)
		}
		cls := types.Class{
			CodeElement: s.element(n, name, types.ElementClass),
			ClassType:   kind,
			Interfaces:  []string{},
			Modifiers:   []string{},
			Annotations: []string{},
			Visibility:  types.VisibilityPublic,
		}
		if bases := childByType(n, "base_class_clause"); bases != nil {
			var list []string
			count := int(bases.NamedChildCount())
			for i := 0; i < count; i++ {
				b := bases.NamedChild(i)
				if b.Type() == "access_specifier" {
					continue
				}
				list = append(list, s.text(b))
			}
			if len(list) > 0 {
				cls.Superclass = list[0]
				cls.Interfaces = append(cls.Interfaces, list[1:]...)
			}
		}
		classes = append(classes, classNode{node: n, class: cls})
		return true
	})
	nestClasses(classes)
	return classes
}

// Variables returns file and namespace scope declarations, class fields and
// object-like #define constants. Function prototypes are not variables.
func (c *CFamily) Variables(tree *sitter.Tree, source []byte) []types.Variable {
	s := newScope(tree, source, c.language)
	if s == nil {
		return nil
	}
	classes := typesOnly(cClasses(s))

	var vars []varNode
	walk(s.root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "function_definition", "lambda_expression":
			return false
		case "preproc_def":
			name := s.text(n.ChildByFieldName("name"))
			vars = append(vars, varNode{node: n, v: types.Variable{
				CodeElement: s.element(n, name, types.ElementVariable),
				Value:       collapse(s.text(n.ChildByFieldName("value"))),
				Visibility:  types.VisibilityPublic,
				IsConstant:  true,
			}})
			return false
		case "declaration", "field_declaration":
			vars = append(vars, cDeclaration(s, n, classes)...)
			return false
		}
		return true
	})
	bindFields(vars, classes)
	return varElements(vars)
}

func cDeclaration(s *scope, n *sitter.Node, classes []classNode) []varNode {
	mods := cModifiers(s, n)
	varType := collapse(s.text(n.ChildByFieldName("type")))
	visibility := types.VisibilityPublic
	if n.Type() == "field_declaration" {
		if cls := innermost(classes, n); cls != nil {
			visibility = cAccess(s, n, cls.class.ClassType)
		}
	} else if hasModifier(mods, "static") {
		visibility = types.VisibilityPrivate
	}

	var out []varNode
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		if n.FieldNameForChild(i) != "declarator" {
			continue
		}
		d := n.Child(i)
		value := ""
		if d.Type() == "init_declarator" {
			if v := d.ChildByFieldName("value"); v != nil {
				value = collapse(s.text(v))
			}
			d = d.ChildByFieldName("declarator")
		}
		if d == nil || cIsFunction(d) {
			continue
		}
		name := cDeclaredName(s, d)
		out = append(out, varNode{node: n, v: types.Variable{
			CodeElement: s.element(n, name, types.ElementVariable),
			VarType:     varType,
			Value:       value,
			Visibility:  visibility,
			IsConstant:  hasModifier(mods, "const") || hasModifier(mods, "constexpr"),
		}})
	}
	return out
}

func cIsFunction(d *sitter.Node) bool {
	for ; d != nil; d = d.ChildByFieldName("declarator") {
		if d.Type() == "function_declarator" {
			return true
		}
	}
	return false
}

func cDeclaredName(s *scope, d *sitter.Node) string {
	for d.ChildByFieldName("declarator") != nil {
		d = d.ChildByFieldName("declarator")
	}
	if name := s.text(d); name != "" {
		return name
	}
	return fallbackName(d)
}

func (c *CFamily) Imports(tree *sitter.Tree, source []byte) []types.Import {
	s := newScope(tree, source, c.language)
	if s == nil {
		return nil
	}

	var out []types.Import
	walk(s.root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "preproc_include":
			path := trimQuotes(s.text(n.ChildByFieldName("path")))
			out = append(out, types.Import{
				CodeElement: s.element(n, path, types.ElementImport),
				Module:      path,
				Names:       []string{},
				Statement:   collapse(s.text(n)),
			})
			return false
		case "using_declaration":
			module := strings.TrimSuffix(strings.TrimSpace(strings.TrimPrefix(collapse(s.text(n)), "using")), ";")
			module = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(module), "namespace "))
			out = append(out, types.Import{
				CodeElement: s.element(n, module, types.ElementImport),
				Module:      module,
				Names:       []string{},
				Statement:   collapse(s.text(n)),
			})
			return false
		}
		return true
	})
	return out
}

// Packages returns C++ namespaces.
func (c *CFamily) Packages(tree *sitter.Tree, source []byte) []types.Package {
	s := newScope(tree, source, c.language)
	if s == nil {
		return nil
	}
	var out []types.Package
	walk(s.root, func(n *sitter.Node) bool {
		if n.Type() == "namespace_definition" {
			name := s.text(n.ChildByFieldName("name"))
			if name == "" {
				name = fallbackName(n)
			}
			out = append(out, types.Package{
				CodeElement: s.element(n, name, types.ElementPackage),
				Namespace:   name,
			})
		}
		return true
	})
	return out
}
