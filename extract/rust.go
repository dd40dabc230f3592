package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/arjunmahishi/treeinv/types"
)

// Rust extracts Rust crates. Methods come from impl blocks; a method without a self
// parameter is an associated (static) function.
type Rust struct {
	*Generic
}

func NewRust() *Rust {
	return &Rust{Generic: NewGeneric("rust")}
}

var rustClassTypes = map[string]string{
	"struct_item": types.ClassTypeStruct,
	"union_item":  types.ClassTypeStruct,
	"enum_item":   types.ClassTypeEnum,
	"trait_item":  types.ClassTypeTrait,
	"mod_item":    types.ClassTypeModule,
}

func (r *Rust) Functions(tree *sitter.Tree, source []byte) []types.Function {
	s := newScope(tree, source, r.language)
	if s == nil {
		return nil
	}
	anns := collectAnnotations(s)

	var out []types.Function
	walk(s.root, func(n *sitter.Node) bool {
		if n.Type() != "function_item" && n.Type() != "function_signature_item" {
			return true
		}
		name := s.name(n)
		mods := rustModifiers(s, n)
		fn := types.Function{
			CodeElement: s.element(n, name, types.ElementFunction),
			Visibility:  rustVisibility(s, n),
			Parameters:  s.parameters(n),
			ReturnType:  s.returnType(n),
			Modifiers:   mods,
			Annotations: annotationsFor(anns, n, s.startLine(n)),
			IsAsync:     hasModifier(mods, "async"),
		}
		if owner := rustOwner(n); owner != nil {
			fn.IsMethod = true
			fn.ReceiverType = rustOwnerName(s, owner)
			fn.ClassName = fn.ReceiverType
			fn.IsStatic = !rustHasSelf(n)
			fn.IsConstructor = fn.IsStatic && name == "new"
			if owner.Type() == "trait_item" || rustTraitImpl(owner) {
				// Trait items and trait impls inherit the trait's visibility.
				fn.Visibility = types.VisibilityPublic
			}
		}
		out = append(out, fn)
		return true
	})
	types.SortBySource(out)
	return out
}

// rustOwner returns the impl or trait block a function is declared in.
func rustOwner(n *sitter.Node) *sitter.Node {
	p := n.Parent()
	if p == nil || p.Type() != "declaration_list" {
		return nil
	}
	owner := p.Parent()
	if owner == nil {
		return nil
	}
	switch owner.Type() {
	case "impl_item", "trait_item":
		return owner
	}
	return nil
}

func rustOwnerName(s *scope, owner *sitter.Node) string {
	if owner.Type() == "trait_item" {
		return s.name(owner)
	}
	t := s.text(owner.ChildByFieldName("type"))
	if i := strings.Index(t, "<"); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(t)
}

func rustTraitImpl(owner *sitter.Node) bool {
	return owner.Type() == "impl_item" && owner.ChildByFieldName("trait") != nil
}

func rustHasSelf(fn *sitter.Node) bool {
	params := fn.ChildByFieldName("parameters")
	return params != nil && hasChildType(params, "self_parameter")
}

func rustVisibility(s *scope, n *sitter.Node) string {
	vis := childByType(n, "visibility_modifier")
	if vis == nil {
		return types.VisibilityPrivate
	}
	if strings.Contains(s.text(vis), "(") {
		// pub(crate), pub(super), pub(in path)
		return types.VisibilityPackage
	}
	return types.VisibilityPublic
}

func rustModifiers(s *scope, n *sitter.Node) []string {
	mods := []string{}
	if vis := childByType(n, "visibility_modifier"); vis != nil {
		mods = append(mods, collapse(s.text(vis)))
	}
	if fm := childByType(n, "function_modifiers"); fm != nil {
		for _, w := range strings.Fields(s.text(fm)) {
			mods = appendUnique(mods, w)
		}
	}
	return mods
}

func (r *Rust) Classes(tree *sitter.Tree, source []byte) []types.Class {
	s := newScope(tree, source, r.language)
	if s == nil {
		return nil
	}
	anns := collectAnnotations(s)

	// Traits implemented per type, collected from `impl Trait for Type`.
	impls := make(map[string][]string)
	walk(s.root, func(n *sitter.Node) bool {
		if n.Type() == "impl_item" {
			if trait := n.ChildByFieldName("trait"); trait != nil {
				owner := rustOwnerName(s, n)
				impls[owner] = append(impls[owner], s.text(trait))
			}
			return false
		}
		return true
	})

	var classes []classNode
	walk(s.root, func(n *sitter.Node) bool {
		kind, ok := rustClassTypes[n.Type()]
		if !ok {
			return true
		}
		name := s.name(n)
		c := types.Class{
			CodeElement: s.element(n, name, types.ElementClass),
			ClassType:   kind,
			Interfaces:  []string{},
			Modifiers:   rustModifiers(s, n),
			Annotations: annotationsFor(anns, n, s.startLine(n)),
			Visibility:  rustVisibility(s, n),
		}
		c.Interfaces = append(c.Interfaces, impls[name]...)
		if bounds := n.ChildByFieldName("bounds"); bounds != nil {
			// trait A: B + C
			for _, b := range strings.Split(strings.TrimPrefix(s.text(bounds), ":"), "+") {
				if b = strings.TrimSpace(b); b != "" {
					c.Interfaces = append(c.Interfaces, b)
				}
			}
		}
		classes = append(classes, classNode{node: n, class: c})
		return true
	})
	nestClasses(classes)
	return classElements(classes)
}

// Variables returns const and static items outside function bodies.
func (r *Rust) Variables(tree *sitter.Tree, source []byte) []types.Variable {
	s := newScope(tree, source, r.language)
	if s == nil {
		return nil
	}

	var out []types.Variable
	walk(s.root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "function_item", "closure_expression":
			return false
		case "const_item", "static_item":
		default:
			return true
		}
		name := s.name(n)
		v := types.Variable{
			CodeElement: s.element(n, name, types.ElementVariable),
			Visibility:  rustVisibility(s, n),
			IsConstant:  n.Type() == "const_item" || !hasChildType(n, "mutable_specifier"),
		}
		if t := n.ChildByFieldName("type"); t != nil {
			v.VarType = collapse(s.text(t))
		}
		if val := n.ChildByFieldName("value"); val != nil {
			v.Value = collapse(s.text(val))
		}
		if owner := rustOwner(n); owner != nil {
			v.ClassName = rustOwnerName(s, owner)
		}
		out = append(out, v)
		return false
	})
	types.SortBySource(out)
	return out
}

// Imports returns one import per use declaration. Grouped paths list their
// leaves as names: `use std::io::{Read, Write}` imports Read and Write from std::io.
func (r *Rust) Imports(tree *sitter.Tree, source []byte) []types.Import {
	s := newScope(tree, source, r.language)
	if s == nil {
		return nil
	}

	var out []types.Import
	walk(s.root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "use_declaration":
			out = append(out, rustUse(s, n))
			return false
		case "extern_crate_declaration":
			name := s.text(n.ChildByFieldName("name"))
			imp := types.Import{
				CodeElement: s.element(n, name, types.ElementImport),
				Module:      name,
				Names:       []string{},
				Statement:   collapse(s.text(n)),
			}
			if alias := n.ChildByFieldName("alias"); alias != nil {
				imp.Alias = s.text(alias)
			}
			out = append(out, imp)
			return false
		}
		return true
	})
	return out
}

func rustUse(s *scope, n *sitter.Node) types.Import {
	imp := types.Import{
		Names:     []string{},
		Statement: collapse(s.text(n)),
	}
	arg := n.ChildByFieldName("argument")
	switch {
	case arg == nil:
	case arg.Type() == "scoped_use_list":
		imp.Module = s.text(arg.ChildByFieldName("path"))
		if list := arg.ChildByFieldName("list"); list != nil {
			imp.Names = namedTexts(s, list)
		}
	case arg.Type() == "use_as_clause":
		imp.Module = s.text(arg.ChildByFieldName("path"))
		imp.Alias = s.text(arg.ChildByFieldName("alias"))
	case arg.Type() == "use_wildcard":
		imp.Module = strings.TrimSuffix(s.text(arg), "::*")
		imp.Names = []string{"*"}
	default:
		imp.Module = s.text(arg)
	}
	if imp.Module == "" {
		imp.Module = strings.TrimSuffix(strings.TrimPrefix(imp.Statement, "use "), ";")
	}
	imp.CodeElement = s.element(n, imp.Module, types.ElementImport)
	return imp
}

// Packages is empty: crates and modules are not declared in source.
func (r *Rust) Packages(tree *sitter.Tree, source []byte) []types.Package {
	return nil
}
