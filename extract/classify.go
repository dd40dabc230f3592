package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/arjunmahishi/treeinv/types"
)

// Node type families. Grammars name the same construct differently, so types are
// matched by suffix after lowercasing.
var (
	functionSuffixes = []string{
		"function_definition",
		"function_declaration",
		"function_item",
		"method_declaration",
		"method_definition",
		"constructor_declaration",
	}
	functionExact = []string{"method", "singleton_method"}

	classSuffixes = []string{
		"class_definition",
		"class_declaration",
		"class_specifier",
		"struct_specifier",
		"union_specifier",
		"enum_specifier",
		"interface_declaration",
		"enum_declaration",
		"struct_declaration",
		"record_declaration",
		"object_declaration",
		"trait_declaration",
		"protocol_declaration",
		"struct_item",
		"enum_item",
		"trait_item",
		"union_item",
		"mod_item",
	}
	classExact = []string{"class", "module"}

	variableSuffixes = []string{
		"variable_declaration",
		"lexical_declaration",
		"var_declaration",
		"const_declaration",
		"field_declaration",
		"property_declaration",
		"const_item",
		"static_item",
		"let_declaration",
		"variable_assignment",
	}

	importSuffixes = []string{
		"import_statement",
		"import_declaration",
		"import_from_statement",
		"future_import_statement",
		"import_header",
		"use_declaration",
		"using_directive",
		"namespace_use_declaration",
		"preproc_include",
	}

	packageSuffixes = []string{
		"package_clause",
		"package_declaration",
		"package_header",
		"namespace_declaration",
		"namespace_definition",
	}

	annotationSuffixes = []string{
		"annotation",
		"decorator",
		"attribute_item",
		"attribute_list",
	}

	// Anonymous functions. Declarations inside them are local.
	callableTypes = []string{
		"arrow_function",
		"function_expression",
		"function",
		"generator_function",
		"lambda",
		"lambda_expression",
		"closure_expression",
		"func_literal",
		"anonymous_function",
		"do_block",
	}
)

func hasSuffix(t string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(t, s) {
			return true
		}
	}
	return false
}

func isOneOf(t string, set []string) bool {
	for _, s := range set {
		if t == s {
			return true
		}
	}
	return false
}

func isFunctionType(t string) bool {
	t = strings.ToLower(t)
	return hasSuffix(t, functionSuffixes) || isOneOf(t, functionExact)
}

// isClassNode reports whether n declares a class-like type. C-family specifiers only
// count when they carry a body, so `struct foo x;` is a use, not a declaration.
func isClassNode(root, n *sitter.Node) bool {
	if !n.IsNamed() || sameNode(root, n) {
		return false
	}
	t := strings.ToLower(n.Type())
	if isOneOf(t, classExact) {
		return true
	}
	if !hasSuffix(t, classSuffixes) {
		return false
	}
	if strings.HasSuffix(t, "_specifier") {
		return n.ChildByFieldName("body") != nil
	}
	return true
}

func isVariableType(t string) bool {
	return hasSuffix(strings.ToLower(t), variableSuffixes)
}

func isImportType(t string) bool {
	return hasSuffix(strings.ToLower(t), importSuffixes)
}

func isPackageType(t string) bool {
	return hasSuffix(strings.ToLower(t), packageSuffixes)
}

func isAnnotationType(t string) bool {
	t = strings.ToLower(t)
	if strings.Contains(t, "type_annotation") {
		return false
	}
	return hasSuffix(t, annotationSuffixes)
}

// insideFunction reports whether n sits in the body of a function or closure.
func insideFunction(n *sitter.Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if t := p.Type(); isFunctionType(t) || isOneOf(t, callableTypes) {
			return true
		}
	}
	return false
}

// classTypeOf infers the class kind from the grammar's node type.
func classTypeOf(nodeType string) string {
	t := strings.ToLower(nodeType)
	switch {
	case strings.Contains(t, "interface"):
		return types.ClassTypeInterface
	case strings.Contains(t, "enum"):
		return types.ClassTypeEnum
	case strings.Contains(t, "struct"), strings.Contains(t, "union"), strings.Contains(t, "record"):
		return types.ClassTypeStruct
	case strings.Contains(t, "trait"), strings.Contains(t, "protocol"):
		return types.ClassTypeTrait
	case strings.Contains(t, "namespace"):
		return types.ClassTypeNamespace
	case t == "module", strings.HasPrefix(t, "mod_"):
		return types.ClassTypeModule
	}
	return types.ClassTypeClass
}

var modifierKeywords = []string{
	"public", "private", "protected", "internal",
	"static", "final", "abstract", "async", "const", "readonly",
	"export", "default", "override", "virtual", "sealed", "open",
	"pub", "unsafe", "extern", "inline", "declare",
}

// modifiers collects the modifier keywords written on a declaration, in source
// order and without duplicates. Annotations inside modifier lists are skipped.
func (s *scope) modifiers(n *sitter.Node) []string {
	out := []string{}
	add := func(word string) {
		word = strings.TrimSpace(word)
		if word == "" {
			return
		}
		for _, w := range out {
			if w == word {
				return
			}
		}
		out = append(out, word)
	}

	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		child := n.Child(i)
		t := child.Type()
		switch {
		case !child.IsNamed() && isOneOf(t, modifierKeywords):
			add(t)
		case strings.Contains(t, "modifier"):
			s.modifierWords(child, add)
		}
	}
	return out
}

func (s *scope) modifierWords(n *sitter.Node, add func(string)) {
	if isAnnotationType(n.Type()) {
		return
	}
	if n.ChildCount() == 0 {
		add(s.text(n))
		return
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		child := n.Child(i)
		if isAnnotationType(child.Type()) {
			continue
		}
		if child.ChildCount() == 0 || strings.Contains(child.Type(), "modifier") {
			for _, w := range strings.Fields(s.text(child)) {
				add(w)
			}
			continue
		}
		s.modifierWords(child, add)
	}
}

// visibilityOf maps written modifiers to a visibility, or returns def.
func visibilityOf(mods []string, def string) string {
	for _, m := range mods {
		switch {
		case m == "private":
			return types.VisibilityPrivate
		case m == "protected":
			return types.VisibilityProtected
		case m == "public", strings.HasPrefix(m, "pub"):
			return types.VisibilityPublic
		case m == "internal":
			return types.VisibilityPackage
		}
	}
	return def
}

func hasModifier(mods []string, want string) bool {
	return isOneOf(want, mods)
}

func sameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}
