// Package treeinv builds structured inventories of source trees: it discovers
// files, parses them with the matching tree-sitter grammar, and either extracts
// typed code elements or runs structural queries over them.
package treeinv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"slices"
	"strings"

	"github.com/arjunmahishi/treeinv/extract"
	"github.com/arjunmahishi/treeinv/lang"
	"github.com/arjunmahishi/treeinv/parser"
	"github.com/arjunmahishi/treeinv/query"
	"github.com/arjunmahishi/treeinv/scanner"
	"github.com/arjunmahishi/treeinv/types"
)

const defaultMaxBytes = 2 * 1024 * 1024

// FileResult is the element inventory of one file.
type FileResult struct {
	File     string          `json:"file" yaml:"file"`
	Language string          `json:"language" yaml:"language"`
	Elements []types.Element `json:"elements" yaml:"elements"`
}

// QueryResult holds the captures one query produced in one file.
type QueryResult struct {
	File     string          `json:"file" yaml:"file"`
	Language string          `json:"language" yaml:"language"`
	Captures []types.Capture `json:"captures" yaml:"captures"`
}

// ExtractSource parses source with the plugin's grammar and returns every element
// its extractor finds, in source order.
func ExtractSource(p lang.Plugin, source []byte) (*FileResult, error) {
	ps, err := parser.New(p.TreeSitterLang())
	if err != nil {
		return nil, err
	}
	return extractWith(context.Background(), ps, p, "", source)
}

func extractWith(ctx context.Context, ps *parser.Parser, p lang.Plugin, file string, source []byte) (*FileResult, error) {
	tree, err := ps.Parse(ctx, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	elems := extract.All(p.NewExtractor(), tree, source)
	if elems == nil {
		elems = []types.Element{}
	}
	return &FileResult{File: file, Language: p.Name(), Elements: elems}, nil
}

// Analyze extracts elements from every matching file. Results are sorted by file
// path; files that cannot be read or parsed are logged and skipped.
func Analyze(ctx context.Context, opts AnalyzeOptions) ([]FileResult, error) {
	if opts.Path == "" {
		opts.Path = "."
	}
	if opts.Jobs == 0 {
		opts.Jobs = runtime.NumCPU()
	}
	if opts.MaxBytes == 0 {
		opts.MaxBytes = defaultMaxBytes
	}
	if opts.Registry == nil {
		opts.Registry = lang.Default()
	}

	files, err := collect(scanner.Config{
		Root:         opts.Path,
		Registry:     opts.Registry,
		Languages:    opts.Languages,
		MaxBytes:     opts.MaxBytes,
		Include:      opts.Include,
		Exclude:      opts.Exclude,
		UseGitignore: opts.Gitignore,
	}, opts.File)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return []FileResult{}, nil
	}

	keep := typeFilter(opts.Types)
	results := runWorkers(ctx, files, opts.Jobs, func(pool *parser.Pool, job scanner.FileJob) (FileResult, bool) {
		p, ok := opts.Registry.ForName(job.Language)
		if !ok {
			return FileResult{}, false
		}
		source, err := os.ReadFile(job.AbsPath)
		if err != nil {
			slog.Warn("skipping unreadable file", "file", job.DisplayPath, "error", err)
			return FileResult{}, false
		}
		ps, err := pool.Get(p.TreeSitterLang())
		if err != nil {
			slog.Warn("no parser", "file", job.DisplayPath, "language", p.Name(), "error", err)
			return FileResult{}, false
		}
		res, err := extractWith(ctx, ps, p, job.DisplayPath, source)
		if err != nil {
			slog.Warn("skipping unparsable file", "file", job.DisplayPath, "error", err)
			return FileResult{}, false
		}
		res.Elements = slices.DeleteFunc(res.Elements, func(e types.Element) bool {
			return !keep(e.Base().Type)
		})
		return *res, true
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b FileResult) int { return strings.Compare(a.File, b.File) })
	return results, nil
}

// Query runs a raw or named query against every file of one language. Query errors
// are reported before any file is read. Files without captures are omitted.
func Query(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	if opts.Language == "" {
		return nil, errors.New("language is required")
	}
	if (opts.Query == "") == (opts.Name == "") {
		return nil, errors.New("exactly one of query and name is required")
	}
	if opts.Path == "" {
		opts.Path = "."
	}
	if opts.Jobs == 0 {
		opts.Jobs = runtime.NumCPU()
	}
	if opts.MaxBytes == 0 {
		opts.MaxBytes = defaultMaxBytes
	}
	if opts.Registry == nil {
		opts.Registry = lang.Default()
	}

	p, err := opts.Registry.Lookup(opts.Language)
	if err != nil {
		return nil, err
	}

	text := opts.Query
	if opts.Name != "" {
		var ok bool
		if text, ok = p.QueryStrategy(opts.Name, p.Name()); !ok {
			return nil, &query.Error{
				Kind:     query.KindUnknownQuery,
				Language: p.Name(),
				Name:     opts.Name,
				Offset:   -1,
				Message:  fmt.Sprintf("no such query (available: %s)", strings.Join(p.QueryNames(), ", ")),
			}
		}
	}

	exec := query.NewExecutor(opts.CacheSize)
	// Compile once up front so malformed queries fail before the walk.
	if _, err := exec.Execute(nil, nil, p, text); err != nil {
		return nil, err
	}

	files, err := collect(scanner.Config{
		Root:         opts.Path,
		Registry:     opts.Registry,
		Languages:    []string{p.Name()},
		MaxBytes:     opts.MaxBytes,
		Include:      opts.Include,
		Exclude:      opts.Exclude,
		UseGitignore: opts.Gitignore,
	}, opts.File)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return []QueryResult{}, nil
	}

	results := runWorkers(ctx, files, opts.Jobs, func(pool *parser.Pool, job scanner.FileJob) (QueryResult, bool) {
		ps, err := pool.Get(p.TreeSitterLang())
		if err != nil {
			return QueryResult{}, false
		}
		tree, source, err := ps.ParseFile(ctx, job.AbsPath)
		if err != nil {
			slog.Warn("skipping file", "file", job.DisplayPath, "error", err)
			return QueryResult{}, false
		}
		defer tree.Close()

		var caps []types.Capture
		if opts.Name != "" {
			caps, err = exec.ExecuteNamed(tree, source, p, job.Language, opts.Name)
		} else {
			caps, err = exec.Execute(tree, source, p, text)
		}
		if err != nil {
			slog.Warn("query failed", "file", job.DisplayPath, "error", err)
			return QueryResult{}, false
		}
		if len(caps) == 0 {
			return QueryResult{}, false
		}
		return QueryResult{File: job.DisplayPath, Language: p.Name(), Captures: caps}, true
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b QueryResult) int { return strings.Compare(a.File, b.File) })
	return results, nil
}

func collect(cfg scanner.Config, file string) ([]scanner.FileJob, error) {
	sc, err := scanner.New(cfg)
	if err != nil {
		return nil, err
	}
	if file != "" {
		job, err := sc.CollectSingle(file)
		if err != nil {
			return nil, err
		}
		return []scanner.FileJob{job}, nil
	}
	return sc.Collect()
}

func typeFilter(want []types.ElementType) func(types.ElementType) bool {
	if len(want) == 0 {
		return func(types.ElementType) bool { return true }
	}
	return func(t types.ElementType) bool { return slices.Contains(want, t) }
}
