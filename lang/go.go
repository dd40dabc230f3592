package lang

import (
	golang "github.com/smacker/go-tree-sitter/golang"

	"github.com/arjunmahishi/treeinv/extract"
	"github.com/arjunmahishi/treeinv/types"
)

// Go returns the plugin for Go source code.
func Go() Plugin {
	return newPlugin("go", golang.GetLanguage(), []string{".go"},
		func() extract.Extractor { return extract.NewGolang() },
		types.ElementPackage, types.ElementImport, types.ElementClass,
		types.ElementFunction, types.ElementVariable)
}
