package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/arjunmahishi/treeinv/types"
)

// Generic extracts elements with the node-type heuristics alone. It serves languages
// without a dedicated extractor and is embedded by the dedicated ones, which
// override only the methods where their grammar needs special handling.
type Generic struct {
	language string
}

// NewGeneric returns a generic extractor tagging elements with language.
func NewGeneric(language string) *Generic {
	return &Generic{language: language}
}

func (g *Generic) Language() string {
	return g.language
}

func (g *Generic) Functions(tree *sitter.Tree, source []byte) []types.Function {
	s := newScope(tree, source, g.language)
	if s == nil {
		return nil
	}
	anns := collectAnnotations(s)
	return funcElements(genericFunctions(s, genericClasses(s, anns), anns))
}

func (g *Generic) Classes(tree *sitter.Tree, source []byte) []types.Class {
	s := newScope(tree, source, g.language)
	if s == nil {
		return nil
	}
	return classElements(genericClasses(s, collectAnnotations(s)))
}

func (g *Generic) Variables(tree *sitter.Tree, source []byte) []types.Variable {
	s := newScope(tree, source, g.language)
	if s == nil {
		return nil
	}
	vars := genericVariables(s)
	bindFields(vars, genericClasses(s, nil))
	return varElements(vars)
}

func (g *Generic) Imports(tree *sitter.Tree, source []byte) []types.Import {
	s := newScope(tree, source, g.language)
	if s == nil {
		return nil
	}
	return genericImports(s)
}

func (g *Generic) Packages(tree *sitter.Tree, source []byte) []types.Package {
	s := newScope(tree, source, g.language)
	if s == nil {
		return nil
	}
	var out []types.Package
	walk(s.root, func(n *sitter.Node) bool {
		if !n.IsNamed() || !isPackageType(n.Type()) {
			return true
		}
		name := s.packageName(n)
		out = append(out, types.Package{
			CodeElement: s.element(n, name, types.ElementPackage),
			Namespace:   name,
		})
		return false
	})
	return out
}

func (g *Generic) Annotations(tree *sitter.Tree, source []byte) []types.Annotation {
	s := newScope(tree, source, g.language)
	if s == nil {
		return nil
	}
	anns := collectAnnotations(s)
	out := make([]types.Annotation, 0, len(anns))
	for _, a := range anns {
		out = append(out, a.ann)
	}
	return out
}

func (g *Generic) HTMLElements(tree *sitter.Tree, source []byte) []types.HTMLElement {
	s := newScope(tree, source, g.language)
	if s == nil {
		return nil
	}
	return htmlElements(s)
}

func (g *Generic) CSSRules(tree *sitter.Tree, source []byte) []types.StyleElement {
	s := newScope(tree, source, g.language)
	if s == nil {
		return nil
	}
	return cssRules(s)
}

func genericFunctions(s *scope, classes []classNode, anns []annotationNode) []funcNode {
	var funcs []funcNode
	walk(s.root, func(n *sitter.Node) bool {
		if n.IsNamed() && isFunctionType(n.Type()) {
			fn := s.genericFunction(n)
			fn.Annotations = annotationsFor(anns, n, fn.StartLine)
			funcs = append(funcs, funcNode{node: n, fn: fn})
		}
		return true
	})
	bindMethods(funcs, classes)
	return funcs
}

func (s *scope) genericFunction(n *sitter.Node) types.Function {
	name := s.name(n)
	mods := s.modifiers(n)
	return types.Function{
		CodeElement:   s.element(n, name, types.ElementFunction),
		Visibility:    visibilityOf(mods, types.VisibilityPublic),
		Parameters:    s.parameters(n),
		ReturnType:    s.returnType(n),
		Modifiers:     mods,
		Annotations:   []string{},
		IsConstructor: isConstructor(n.Type(), name),
		IsStatic:      hasModifier(mods, "static"),
		IsAsync:       hasModifier(mods, "async"),
	}
}

func isConstructor(nodeType, name string) bool {
	if strings.Contains(nodeType, "constructor") {
		return true
	}
	switch name {
	case "constructor", "__init__", "__construct", "initialize":
		return true
	}
	return false
}

// parameters returns the parameter texts of a function, looking through C-style
// declarator chains when the function has no parameters field of its own.
func (s *scope) parameters(n *sitter.Node) []string {
	if p := paramsNode(n, 0); p != nil {
		return namedTexts(s, p)
	}
	return []string{}
}

func paramsNode(n *sitter.Node, depth int) *sitter.Node {
	if n == nil || depth > 3 {
		return nil
	}
	if p := n.ChildByFieldName("parameters"); p != nil {
		return p
	}
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		t := child.Type()
		if strings.HasSuffix(t, "parameters") || strings.HasSuffix(t, "parameter_list") {
			return child
		}
	}
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		if strings.Contains(child.Type(), "declarator") {
			if p := paramsNode(child, depth+1); p != nil {
				return p
			}
		}
	}
	return nil
}

func (s *scope) returnType(n *sitter.Node) string {
	for _, field := range []string{"return_type", "result", "type"} {
		if r := n.ChildByFieldName(field); r != nil {
			return cleanType(s.text(r))
		}
	}
	return ""
}

// cleanType drops the punctuation some grammars keep in type annotations.
func cleanType(t string) string {
	t = strings.TrimSpace(t)
	t = strings.TrimPrefix(t, "->")
	t = strings.TrimPrefix(t, ":")
	return collapse(t)
}

func genericClasses(s *scope, anns []annotationNode) []classNode {
	var classes []classNode
	walk(s.root, func(n *sitter.Node) bool {
		if isClassNode(s.root, n) {
			c := s.genericClass(n)
			c.Annotations = annotationsFor(anns, n, c.StartLine)
			classes = append(classes, classNode{node: n, class: c})
		}
		return true
	})
	nestClasses(classes)
	return classes
}

func (s *scope) genericClass(n *sitter.Node) types.Class {
	mods := s.modifiers(n)
	c := types.Class{
		CodeElement: s.element(n, s.name(n), types.ElementClass),
		ClassType:   classTypeOf(n.Type()),
		Interfaces:  []string{},
		Modifiers:   mods,
		Annotations: []string{},
		Visibility:  visibilityOf(mods, types.VisibilityPublic),
	}
	if sc := n.ChildByFieldName("superclass"); sc != nil {
		c.Superclass = stripKeyword(s.text(sc), "extends", "<", ":")
	}
	if ifs := n.ChildByFieldName("interfaces"); ifs != nil {
		c.Interfaces = splitList(stripKeyword(s.text(ifs), "implements"))
	}
	return c
}

// stripKeyword removes the first matching leading keyword or sigil from t.
func stripKeyword(t string, prefixes ...string) string {
	t = strings.TrimSpace(t)
	for _, p := range prefixes {
		if strings.HasPrefix(t, p) {
			return collapse(t[len(p):])
		}
	}
	return collapse(t)
}

// splitList splits a comma separated list, ignoring commas inside brackets.
func splitList(t string) []string {
	out := []string{}
	depth, start := 0, 0
	flush := func(end int) {
		if item := collapse(t[start:end]); item != "" {
			out = append(out, item)
		}
	}
	for i, ch := range t {
		switch ch {
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}', '>':
			depth--
		case ',':
			if depth == 0 {
				flush(i)
				start = i + 1
			}
		}
	}
	flush(len(t))
	return out
}

func genericVariables(s *scope) []varNode {
	var vars []varNode
	walk(s.root, func(n *sitter.Node) bool {
		if !n.IsNamed() || !isVariableType(n.Type()) {
			return true
		}
		if !insideFunction(n) {
			vars = append(vars, s.declarationVariables(n)...)
		}
		return false
	})
	return vars
}

// declarationVariables splits a declaration into one variable per declarator.
func (s *scope) declarationVariables(n *sitter.Node) []varNode {
	mods := s.modifiers(n)
	constant := strings.Contains(strings.ToLower(n.Type()), "const") ||
		hasChildType(n, "const") ||
		hasModifier(mods, "const") ||
		(hasModifier(mods, "static") && hasModifier(mods, "final"))
	varType := ""
	if t := n.ChildByFieldName("type"); t != nil {
		varType = collapse(s.text(t))
	}

	build := func(decl *sitter.Node, name string) varNode {
		v := types.Variable{
			CodeElement: s.element(n, name, types.ElementVariable),
			VarType:     varType,
			Visibility:  visibilityOf(mods, types.VisibilityPublic),
			IsConstant:  constant || isConstantName(name),
		}
		if decl != nil {
			if val := decl.ChildByFieldName("value"); val != nil {
				v.Value = collapse(s.text(val))
			}
			if t := decl.ChildByFieldName("type"); t != nil && v.VarType == "" {
				v.VarType = cleanType(s.text(t))
			}
		}
		return varNode{node: n, v: v}
	}

	var out []varNode
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		t := child.Type()
		if strings.Contains(t, "declarator") || strings.HasSuffix(t, "_spec") {
			out = append(out, build(child, s.name(child)))
		}
	}
	if len(out) == 0 {
		out = append(out, build(n, s.name(n)))
	}
	return out
}

func genericImports(s *scope) []types.Import {
	var out []types.Import
	walk(s.root, func(n *sitter.Node) bool {
		if !n.IsNamed() || !isImportType(n.Type()) {
			return true
		}
		module := s.importModule(n)
		out = append(out, types.Import{
			CodeElement: s.element(n, module, types.ElementImport),
			Module:      module,
			Names:       []string{},
			Statement:   collapse(s.text(n)),
		})
		return false
	})
	return out
}

func (s *scope) importModule(n *sitter.Node) string {
	for _, field := range []string{"source", "path", "module_name", "name", "argument"} {
		if f := n.ChildByFieldName(field); f != nil {
			return trimQuotes(s.text(f))
		}
	}
	if n.NamedChildCount() > 0 {
		return trimQuotes(s.text(n.NamedChild(0)))
	}
	return fallbackName(n)
}

func (s *scope) packageName(n *sitter.Node) string {
	if f := n.ChildByFieldName("name"); f != nil {
		return s.text(f)
	}
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		if isIdentifierType(child.Type()) || strings.HasSuffix(child.Type(), "name") {
			return s.text(child)
		}
	}
	return s.name(n)
}

func funcElements(funcs []funcNode) []types.Function {
	out := make([]types.Function, 0, len(funcs))
	for _, f := range funcs {
		out = append(out, f.fn)
	}
	types.SortBySource(out)
	return out
}

func classElements(classes []classNode) []types.Class {
	out := make([]types.Class, 0, len(classes))
	for _, c := range classes {
		out = append(out, c.class)
	}
	types.SortBySource(out)
	return out
}

func varElements(vars []varNode) []types.Variable {
	out := make([]types.Variable, 0, len(vars))
	for _, v := range vars {
		out = append(out, v.v)
	}
	types.SortBySource(out)
	return out
}
