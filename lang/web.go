package lang

import (
	"github.com/smacker/go-tree-sitter/css"
	"github.com/smacker/go-tree-sitter/html"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/arjunmahishi/treeinv/extract"
	"github.com/arjunmahishi/treeinv/types"
)

var scriptElements = append(codeElements, types.ElementAnnotation)

func JavaScript() Plugin {
	return newPlugin("javascript", javascript.GetLanguage(), []string{".js", ".mjs", ".cjs", ".jsx"},
		func() extract.Extractor { return extract.NewJavaScript("javascript") },
		scriptElements...)
}

func TypeScript() Plugin {
	return newPlugin("typescript", typescript.GetLanguage(), []string{".ts", ".mts", ".cts"},
		func() extract.Extractor { return extract.NewJavaScript("typescript") },
		scriptElements...)
}

func TSX() Plugin {
	return newPlugin("tsx", tsx.GetLanguage(), []string{".tsx"},
		func() extract.Extractor { return extract.NewJavaScript("tsx") },
		scriptElements...)
}

func CSS() Plugin {
	return newPlugin("css", css.GetLanguage(), []string{".css"},
		func() extract.Extractor { return extract.NewCSS() },
		types.ElementImport, types.ElementStyleRule)
}

func HTML() Plugin {
	return newPlugin("html", html.GetLanguage(), []string{".html", ".htm", ".xhtml"},
		func() extract.Extractor { return extract.NewHTML() },
		types.ElementImport, types.ElementHTML)
}
