package lang

import (
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/rust"

	"github.com/arjunmahishi/treeinv/extract"
	"github.com/arjunmahishi/treeinv/types"
)

func Rust() Plugin {
	return newPlugin("rust", rust.GetLanguage(), []string{".rs"},
		func() extract.Extractor { return extract.NewRust() },
		append(codeElements, types.ElementAnnotation)...)
}

// C claims .h headers; C++ headers use the C++ extensions.
func C() Plugin {
	return newPlugin("c", c.GetLanguage(), []string{".c", ".h"},
		func() extract.Extractor { return extract.NewCFamily("c") },
		codeElements...)
}

func Cpp() Plugin {
	return newPlugin("cpp", cpp.GetLanguage(), []string{".cpp", ".cc", ".cxx", ".hpp", ".hh", ".hxx"},
		func() extract.Extractor { return extract.NewCFamily("cpp") },
		append(codeElements, types.ElementPackage)...)
}
