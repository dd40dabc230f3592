package lang

import (
	tree_sitter_markdown "github.com/smacker/go-tree-sitter/markdown/tree-sitter-markdown"
	"github.com/smacker/go-tree-sitter/sql"
	"github.com/smacker/go-tree-sitter/yaml"

	"github.com/arjunmahishi/treeinv/extract"
	"github.com/arjunmahishi/treeinv/types"
)

func SQL() Plugin {
	return newPlugin("sql", sql.GetLanguage(), []string{".sql", ".ddl"},
		func() extract.Extractor { return extract.NewSQL() },
		types.ElementTable, types.ElementView, types.ElementSQLFunction,
		types.ElementProcedure, types.ElementTrigger, types.ElementIndex)
}

func YAML() Plugin {
	return newPlugin("yaml", yaml.GetLanguage(), []string{".yaml", ".yml"},
		func() extract.Extractor { return extract.NewYAML() },
		types.ElementYAMLDocument, types.ElementYAMLMapping,
		types.ElementYAMLSequence, types.ElementYAMLComment)
}

func Markdown() Plugin {
	return newPlugin("markdown", tree_sitter_markdown.GetLanguage(), []string{".md", ".markdown"},
		func() extract.Extractor { return extract.NewMarkdown() },
		types.ElementHeading, types.ElementCodeBlock, types.ElementLink)
}
