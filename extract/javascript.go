package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/arjunmahishi/treeinv/types"
)

// JavaScript extracts JavaScript and TypeScript (including JSX and TSX). Arrow
// functions and function expressions bound to a variable count as functions named
// after the variable.
type JavaScript struct {
	*Generic
}

// NewJavaScript returns an extractor tagging elements with language, one of
// javascript, typescript or tsx.
func NewJavaScript(language string) *JavaScript {
	return &JavaScript{Generic: NewGeneric(language)}
}

var jsFunctionValues = []string{"arrow_function", "function_expression", "function", "generator_function"}

func (j *JavaScript) Functions(tree *sitter.Tree, source []byte) []types.Function {
	s := newScope(tree, source, j.language)
	if s == nil {
		return nil
	}
	anns := collectAnnotations(s)
	classes := jsClasses(s, anns)

	var funcs []funcNode
	walk(s.root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "function_declaration", "generator_function_declaration", "method_definition":
			funcs = append(funcs, funcNode{node: n, fn: jsFunction(s, n, s.name(n), n, anns)})
		case "variable_declarator":
			value := n.ChildByFieldName("value")
			if value != nil && isOneOf(value.Type(), jsFunctionValues) {
				name := s.text(n.ChildByFieldName("name"))
				decl := n.Parent()
				fn := jsFunction(s, value, name, decl, anns)
				fn.CodeElement = s.element(decl, name, types.ElementFunction)
				if decl != nil && jsConst(decl) {
					fn.Modifiers = appendUnique(fn.Modifiers, "const")
				}
				funcs = append(funcs, funcNode{node: decl, fn: fn})
			}
		}
		return true
	})
	bindMethods(funcs, classes)
	return funcElements(funcs)
}

// jsFunction builds a function from fn, the node carrying parameters and body.
// decl is the statement it was declared in, used for modifiers and decorators.
func jsFunction(s *scope, fn *sitter.Node, name string, decl *sitter.Node, anns []annotationNode) types.Function {
	mods := s.modifiers(fn)
	if decl != nil && !sameNode(decl, fn) {
		for _, m := range s.modifiers(decl) {
			mods = appendUnique(mods, m)
		}
	}
	if exported(decl) {
		mods = appendUnique(mods, "export")
	}
	f := types.Function{
		CodeElement:   s.element(fn, name, types.ElementFunction),
		Visibility:    jsVisibility(name, mods),
		Parameters:    s.parameters(fn),
		ReturnType:    s.returnType(fn),
		Modifiers:     mods,
		Annotations:   annotationsFor(anns, fn, s.startLine(fn)),
		IsConstructor: fn.Type() == "method_definition" && name == "constructor",
		IsStatic:      hasModifier(mods, "static"),
		IsAsync:       hasModifier(mods, "async"),
	}
	if len(f.Parameters) == 0 {
		// x => x + 1
		if p := fn.ChildByFieldName("parameter"); p != nil {
			f.Parameters = []string{s.text(p)}
		}
	}
	return f
}

func jsVisibility(name string, mods []string) string {
	if strings.HasPrefix(name, "#") {
		return types.VisibilityPrivate
	}
	return visibilityOf(mods, types.VisibilityPublic)
}

func exported(n *sitter.Node) bool {
	if n == nil {
		return false
	}
	p := n.Parent()
	return p != nil && p.Type() == "export_statement"
}

func jsConst(decl *sitter.Node) bool {
	return decl.Type() == "lexical_declaration" && hasChildType(decl, "const")
}

func appendUnique(list []string, item string) []string {
	if isOneOf(item, list) {
		return list
	}
	return append(list, item)
}

func (j *JavaScript) Classes(tree *sitter.Tree, source []byte) []types.Class {
	s := newScope(tree, source, j.language)
	if s == nil {
		return nil
	}
	return classElements(jsClasses(s, collectAnnotations(s)))
}

func jsClasses(s *scope, anns []annotationNode) []classNode {
	var classes []classNode
	walk(s.root, func(n *sitter.Node) bool {
		var kind string
		switch n.Type() {
		case "class_declaration", "abstract_class_declaration", "class":
			kind = types.ClassTypeClass
		case "interface_declaration":
			kind = types.ClassTypeInterface
		case "enum_declaration":
			kind = types.ClassTypeEnum
		case "internal_module", "module":
			kind = types.ClassTypeNamespace
		default:
			return true
		}
		if n.Type() == "class" && n.ChildByFieldName("name") == nil {
			// Anonymous class expressions take the name of the variable they are bound to.
			if d := n.Parent(); d == nil || d.Type() != "variable_declarator" {
				return true
			}
		}

		name := s.name(n)
		if n.Type() == "class" && n.ChildByFieldName("name") == nil {
			name = s.text(n.Parent().ChildByFieldName("name"))
		}
		mods := s.modifiers(n)
		if n.Type() == "abstract_class_declaration" {
			mods = appendUnique(mods, "abstract")
		}
		if exported(n) {
			mods = appendUnique(mods, "export")
		}
		c := types.Class{
			CodeElement: s.element(n, name, types.ElementClass),
			ClassType:   kind,
			Interfaces:  []string{},
			Modifiers:   mods,
			Annotations: annotationsFor(anns, n, s.startLine(n)),
			Visibility:  types.VisibilityPublic,
		}
		jsHeritage(s, n, &c)
		classes = append(classes, classNode{node: n, class: c})
		return true
	})
	nestClasses(classes)
	return classes
}

// jsHeritage fills superclass and interfaces from extends/implements clauses.
func jsHeritage(s *scope, n *sitter.Node, c *types.Class) {
	heritage := childByType(n, "class_heritage")
	if heritage == nil {
		heritage = n
	}
	if ext := childByType(heritage, "extends_clause"); ext != nil {
		if v := ext.ChildByFieldName("value"); v != nil {
			c.Superclass = collapse(s.text(v))
		} else {
			c.Superclass = stripKeyword(s.text(ext), "extends")
		}
	} else if heritage != n && childByType(heritage, "implements_clause") == nil {
		// Plain JavaScript: class_heritage is "extends <expr>".
		c.Superclass = stripKeyword(s.text(heritage), "extends")
	}
	if impl := childByType(heritage, "implements_clause"); impl != nil {
		c.Interfaces = namedTexts(s, impl)
	}
	// interface A extends B, C
	if ext := childByType(n, "extends_type_clause"); ext != nil {
		c.Interfaces = append(c.Interfaces, namedTexts(s, ext)...)
	}
}

// Variables returns top level bindings that are not functions, plus class fields.
func (j *JavaScript) Variables(tree *sitter.Tree, source []byte) []types.Variable {
	s := newScope(tree, source, j.language)
	if s == nil {
		return nil
	}
	classes := jsClasses(s, nil)

	var vars []varNode
	walk(s.root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "function_declaration", "generator_function_declaration", "method_definition",
			"arrow_function", "function_expression", "function", "generator_function":
			return false
		case "lexical_declaration", "variable_declaration":
			vars = append(vars, jsDeclaration(s, n)...)
			return false
		case "field_definition", "public_field_definition":
			vars = append(vars, jsField(s, n))
			return false
		}
		return true
	})
	bindFields(vars, classes)
	return varElements(vars)
}

func jsDeclaration(s *scope, n *sitter.Node) []varNode {
	constant := jsConst(n)
	var out []varNode
	for _, d := range childrenByType(n, "variable_declarator") {
		value := d.ChildByFieldName("value")
		if value != nil && (isOneOf(value.Type(), jsFunctionValues) || jsRequire(s, value) != "") {
			continue
		}
		nameNode := d.ChildByFieldName("name")
		names := []*sitter.Node{nameNode}
		if nameNode != nil && strings.HasSuffix(nameNode.Type(), "_pattern") {
			// const { a, b } = obj
			names = nil
			walk(nameNode, func(c *sitter.Node) bool {
				switch c.Type() {
				case "identifier", "shorthand_property_identifier_pattern":
					names = append(names, c)
				}
				return true
			})
		}
		for _, id := range names {
			name := s.text(id)
			if name == "" {
				name = fallbackName(d)
			}
			v := types.Variable{
				CodeElement: s.element(n, name, types.ElementVariable),
				Visibility:  types.VisibilityPublic,
				IsConstant:  constant,
			}
			if t := d.ChildByFieldName("type"); t != nil {
				v.VarType = cleanType(s.text(t))
			}
			if value != nil {
				v.Value = collapse(s.text(value))
			}
			out = append(out, varNode{node: n, v: v})
		}
	}
	return out
}

func jsField(s *scope, n *sitter.Node) varNode {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		nameNode = n.ChildByFieldName("property")
	}
	name := s.text(nameNode)
	if name == "" {
		name = fallbackName(n)
	}
	mods := s.modifiers(n)
	v := types.Variable{
		CodeElement: s.element(n, name, types.ElementVariable),
		Visibility:  jsVisibility(name, mods),
		IsConstant:  hasModifier(mods, "readonly"),
	}
	if t := n.ChildByFieldName("type"); t != nil {
		v.VarType = cleanType(s.text(t))
	}
	if val := n.ChildByFieldName("value"); val != nil {
		v.Value = collapse(s.text(val))
	}
	return varNode{node: n, v: v}
}

// jsRequire returns the module of a require("x") call, or "".
func jsRequire(s *scope, n *sitter.Node) string {
	if n.Type() == "await_expression" && n.NamedChildCount() > 0 {
		n = n.NamedChild(0)
	}
	if n.Type() != "call_expression" {
		return ""
	}
	fn := n.ChildByFieldName("function")
	if fn == nil || s.text(fn) != "require" {
		return ""
	}
	args := n.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return ""
	}
	arg := args.NamedChild(0)
	if arg.Type() != "string" {
		return ""
	}
	return trimQuotes(s.text(arg))
}

// Imports returns ES module imports and CommonJS require bindings.
func (j *JavaScript) Imports(tree *sitter.Tree, source []byte) []types.Import {
	s := newScope(tree, source, j.language)
	if s == nil {
		return nil
	}

	var out []types.Import
	walk(s.root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "import_statement":
			out = append(out, jsImport(s, n))
			return false
		case "variable_declarator":
			value := n.ChildByFieldName("value")
			if value == nil {
				return false
			}
			if module := jsRequire(s, value); module != "" {
				decl := n.Parent()
				imp := types.Import{
					CodeElement: s.element(decl, module, types.ElementImport),
					Module:      module,
					Names:       []string{},
					Statement:   collapse(s.text(decl)),
				}
				name := n.ChildByFieldName("name")
				if name != nil && name.Type() == "identifier" {
					imp.Alias = s.text(name)
				} else if name != nil {
					imp.Names = jsPatternNames(s, name)
				}
				out = append(out, imp)
			}
			return false
		}
		return true
	})
	return out
}

func jsImport(s *scope, n *sitter.Node) types.Import {
	module := trimQuotes(s.text(n.ChildByFieldName("source")))
	imp := types.Import{
		CodeElement: s.element(n, module, types.ElementImport),
		Module:      module,
		Names:       []string{},
		Statement:   collapse(s.text(n)),
	}
	clause := childByType(n, "import_clause")
	if clause == nil {
		return imp
	}
	count := int(clause.NamedChildCount())
	for i := 0; i < count; i++ {
		child := clause.NamedChild(i)
		switch child.Type() {
		case "identifier":
			// default import
			imp.Alias = s.text(child)
		case "namespace_import":
			if id := childByType(child, "identifier"); id != nil {
				imp.Alias = s.text(id)
			}
			imp.Names = append(imp.Names, "*")
		case "named_imports":
			for _, spec := range childrenByType(child, "import_specifier") {
				imp.Names = append(imp.Names, s.text(spec.ChildByFieldName("name")))
			}
		}
	}
	return imp
}

func jsPatternNames(s *scope, pattern *sitter.Node) []string {
	names := []string{}
	walk(pattern, func(n *sitter.Node) bool {
		switch n.Type() {
		case "shorthand_property_identifier_pattern", "identifier":
			names = append(names, s.text(n))
			return false
		case "pair_pattern":
			if k := n.ChildByFieldName("key"); k != nil {
				names = append(names, s.text(k))
			}
			return false
		}
		return true
	})
	return names
}

// Packages is empty: modules are files.
func (j *JavaScript) Packages(tree *sitter.Tree, source []byte) []types.Package {
	return nil
}
