package treeinv

import (
	"github.com/arjunmahishi/treeinv/lang"
	"github.com/arjunmahishi/treeinv/types"
)

// AnalyzeOptions configures the Analyze function.
type AnalyzeOptions struct {
	// Path is the root directory to scan for files.
	// If empty, current directory is used.
	Path string

	// File is a single file to analyze.
	// If set, Path is ignored.
	File string

	// Languages restricts analysis to these languages. Empty means all.
	Languages []string

	// Types keeps only elements of these types. Empty keeps everything.
	Types []types.ElementType

	// Include and Exclude are glob patterns over paths relative to Path.
	Include []string
	Exclude []string

	// Gitignore skips files matched by Path/.gitignore.
	Gitignore bool

	// Jobs is the number of parallel workers.
	// If 0, defaults to number of CPUs.
	Jobs int

	// MaxBytes skips files larger than this size.
	// If 0, defaults to 2 MiB.
	MaxBytes int64

	// Registry resolves languages. Nil means lang.Default().
	Registry *lang.Registry
}

// QueryOptions configures the Query function. Exactly one of Query and Name is set.
type QueryOptions struct {
	// Query is the tree-sitter query string to execute.
	Query string

	// Name selects one of the language's named queries instead of Query.
	Name string

	// Language specifies which language to query (required).
	Language string

	// Path is the root directory to scan for files.
	// If empty, current directory is used.
	Path string

	// File is a single file to query.
	// If set, Path is ignored.
	File string

	Include   []string
	Exclude   []string
	Gitignore bool

	// Jobs is the number of parallel workers.
	// If 0, defaults to number of CPUs.
	Jobs int

	// MaxBytes skips files larger than this size.
	// If 0, defaults to 2 MiB.
	MaxBytes int64

	// CacheSize bounds the compiled-query cache. If 0, the executor default is used.
	CacheSize int

	Registry *lang.Registry
}
