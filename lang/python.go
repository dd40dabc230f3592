package lang

import (
	"github.com/smacker/go-tree-sitter/python"

	"github.com/arjunmahishi/treeinv/extract"
	"github.com/arjunmahishi/treeinv/types"
)

func Python() Plugin {
	return newPlugin("python", python.GetLanguage(), []string{".py", ".pyi", ".pyw"},
		func() extract.Extractor { return extract.NewPython() },
		append(codeElements, types.ElementAnnotation)...)
}
