package lang

import (
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/kotlin"

	"github.com/arjunmahishi/treeinv/extract"
	"github.com/arjunmahishi/treeinv/types"
)

var annotatedElements = []types.ElementType{
	types.ElementPackage,
	types.ElementImport,
	types.ElementClass,
	types.ElementFunction,
	types.ElementVariable,
	types.ElementAnnotation,
}

func Java() Plugin {
	return newPlugin("java", java.GetLanguage(), []string{".java"},
		func() extract.Extractor { return extract.NewJava() },
		annotatedElements...)
}

// Kotlin and C# use the generic extractor.
func Kotlin() Plugin {
	return newPlugin("kotlin", kotlin.GetLanguage(), []string{".kt", ".kts"},
		func() extract.Extractor { return extract.NewGeneric("kotlin") },
		annotatedElements...)
}

func CSharp() Plugin {
	return newPlugin("csharp", csharp.GetLanguage(), []string{".cs"},
		func() extract.Extractor { return extract.NewGeneric("csharp") },
		annotatedElements...)
}
