// Package scanner provides file discovery for treeinv.
package scanner

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/arjunmahishi/treeinv/lang"
)

// DefaultIgnoreDirs returns the default list of directories to ignore.
func DefaultIgnoreDirs() map[string]struct{} {
	return map[string]struct{}{
		".git":          {},
		".hg":           {},
		".svn":          {},
		".jj":           {},
		"node_modules":  {},
		"vendor":        {},
		"dist":          {},
		"build":         {},
		"target":        {},
		".venv":         {},
		"__pycache__":   {},
		".mypy_cache":   {},
		".pytest_cache": {},
		".next":         {},
		".cache":        {},
		".turbo":        {},
		"coverage":      {},
	}
}

// sniffBytes is how much of a file CollectSingle reads to detect its language.
const sniffBytes = 512

// FileJob is one file to analyze.
type FileJob struct {
	AbsPath     string
	DisplayPath string
	Language    string
}

// Config holds scanner configuration.
type Config struct {
	Root string

	// Registry resolves files to languages. Nil means lang.Default().
	Registry *lang.Registry

	// Languages restricts discovery to these language names or aliases.
	// Empty means every registered language.
	Languages []string

	IgnoreDirs map[string]struct{}

	// MaxBytes skips files larger than this size. Zero means no limit.
	MaxBytes int64

	// Include and Exclude are glob patterns matched against the slash-separated
	// path relative to Root. When Include is set a file must match one of them.
	Include []string
	Exclude []string

	// UseGitignore skips files matched by Root/.gitignore.
	UseGitignore bool
}

// Scanner discovers files for processing.
type Scanner struct {
	cfg       Config
	languages map[string]struct{}
	include   []glob.Glob
	exclude   []glob.Glob
}

// New creates a new Scanner with the given configuration.
func New(cfg Config) (*Scanner, error) {
	if cfg.IgnoreDirs == nil {
		cfg.IgnoreDirs = DefaultIgnoreDirs()
	}
	if cfg.Registry == nil {
		cfg.Registry = lang.Default()
	}
	if cfg.Root == "" {
		cfg.Root = "."
	}

	s := &Scanner{cfg: cfg}

	if len(cfg.Languages) > 0 {
		s.languages = make(map[string]struct{}, len(cfg.Languages))
		for _, name := range cfg.Languages {
			p, err := cfg.Registry.Lookup(name)
			if err != nil {
				return nil, err
			}
			s.languages[p.Name()] = struct{}{}
		}
	}

	var err error
	if s.include, err = compileGlobs(cfg.Include); err != nil {
		return nil, err
	}
	if s.exclude, err = compileGlobs(cfg.Exclude); err != nil {
		return nil, err
	}
	return s, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// Collect finds all matching files and returns them as FileJobs, sorted by
// display path.
func (s *Scanner) Collect() ([]FileJob, error) {
	absRoot, err := filepath.Abs(s.cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	var gi *ignore.GitIgnore
	if s.cfg.UseGitignore {
		gi = loadGitignore(absRoot)
	}

	var jobs []FileJob
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == absRoot {
				return nil
			}
			if s.shouldIgnoreDir(d.Name()) {
				return filepath.SkipDir
			}
			if gi != nil {
				if rel, err := filepath.Rel(absRoot, path); err == nil && gi.MatchesPath(filepath.ToSlash(rel)+"/") {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}
		if !s.matchesPatterns(rel) {
			return nil
		}

		plugin, ok := s.cfg.Registry.ForPath(d.Name())
		if !ok || !s.wantLanguage(plugin.Name()) {
			return nil
		}

		if s.cfg.MaxBytes > 0 {
			info, err := d.Info()
			if err != nil {
				// Skip files we can't stat
				return nil
			}
			if info.Size() > s.cfg.MaxBytes {
				return nil
			}
		}

		jobs = append(jobs, FileJob{
			AbsPath:     path,
			DisplayPath: rel,
			Language:    plugin.Name(),
		})
		return nil
	})

	if err != nil {
		return nil, err
	}

	slices.SortFunc(jobs, func(a, b FileJob) int {
		switch {
		case a.DisplayPath < b.DisplayPath:
			return -1
		case a.DisplayPath > b.DisplayPath:
			return 1
		}
		return 0
	})
	return jobs, nil
}

// CollectSingle returns a single file as a FileJob. Files without a known
// extension are identified from their first bytes.
func (s *Scanner) CollectSingle(filePath string) (FileJob, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return FileJob{}, fmt.Errorf("resolve path: %w", err)
	}

	plugin, ok := s.cfg.Registry.ForPath(absPath)
	if !ok {
		head, err := readHead(absPath)
		if err != nil {
			return FileJob{}, err
		}
		plugin, ok = s.cfg.Registry.Detect(absPath, head)
	}
	if !ok {
		return FileJob{}, fmt.Errorf("%w: %s", lang.ErrUnsupported, filepath.Base(absPath))
	}
	if !s.wantLanguage(plugin.Name()) {
		return FileJob{}, fmt.Errorf("%s is %s, not one of the requested languages", filepath.Base(absPath), plugin.Name())
	}

	return FileJob{
		AbsPath:     absPath,
		DisplayPath: filepath.Base(absPath),
		Language:    plugin.Name(),
	}, nil
}

func readHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	buf := make([]byte, sniffBytes)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return buf[:n], nil
}

func (s *Scanner) shouldIgnoreDir(name string) bool {
	_, ok := s.cfg.IgnoreDirs[name]
	return ok
}

func (s *Scanner) wantLanguage(name string) bool {
	if s.languages == nil {
		return true
	}
	_, ok := s.languages[name]
	return ok
}

func (s *Scanner) matchesPatterns(rel string) bool {
	for _, g := range s.exclude {
		if g.Match(rel) {
			return false
		}
	}
	if len(s.include) == 0 {
		return true
	}
	for _, g := range s.include {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
