package lang

import (
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/ruby"

	"github.com/arjunmahishi/treeinv/extract"
	"github.com/arjunmahishi/treeinv/types"
)

func Ruby() Plugin {
	return newPlugin("ruby", ruby.GetLanguage(), []string{".rb", ".rake", ".gemspec"},
		func() extract.Extractor { return extract.NewGeneric("ruby") },
		codeElements...).
		withFilenames("Rakefile", "Gemfile")
}

func PHP() Plugin {
	return newPlugin("php", php.GetLanguage(), []string{".php"},
		func() extract.Extractor { return extract.NewGeneric("php") },
		append(codeElements, types.ElementPackage, types.ElementAnnotation)...)
}

func Bash() Plugin {
	return newPlugin("bash", bash.GetLanguage(), []string{".sh", ".bash"},
		func() extract.Extractor { return extract.NewGeneric("bash") },
		types.ElementFunction, types.ElementVariable).
		withFilenames(".bashrc", ".bash_profile", ".profile")
}
