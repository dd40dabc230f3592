package scanner

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjunmahishi/treeinv/lang"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func displayPaths(jobs []FileJob) []string {
	out := make([]string, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.DisplayPath+":"+j.Language)
	}
	return out
}

var project = map[string]string{
	"main.go":                  "package main\n",
	"internal/db/schema.sql":   "CREATE TABLE t (id int);\n",
	"internal/db/db_test.go":   "package db\n",
	"web/app.tsx":              "export const A = () => null;\n",
	"web/node_modules/x/i.js":  "module.exports = 1;\n",
	"docs/README.md":           "# Docs\n",
	"scripts/Rakefile":         "task :default\n",
	"scripts/run":              "#!/bin/sh\necho hi\n",
	"notes.txt":                "plain\n",
	"generated/big.py":         "x = 1\n",
	".github/workflows/ci.yml": "on: push\n",
}

func TestCollect(t *testing.T) {
	t.Parallel()

	root := writeTree(t, project)
	s, err := New(Config{Root: root})
	require.NoError(t, err)

	jobs, err := s.Collect()
	require.NoError(t, err)
	assert.Equal(t, []string{
		".github/workflows/ci.yml:yaml",
		"docs/README.md:markdown",
		"generated/big.py:python",
		"internal/db/db_test.go:go",
		"internal/db/schema.sql:sql",
		"main.go:go",
		"scripts/Rakefile:ruby",
		"web/app.tsx:tsx",
	}, displayPaths(jobs))

	for _, j := range jobs {
		assert.True(t, filepath.IsAbs(j.AbsPath), j.AbsPath)
	}
}

func TestCollectFilters(t *testing.T) {
	t.Parallel()

	root := writeTree(t, project)

	tests := []struct {
		name string
		cfg  Config
		want []string
	}{
		{
			name: "languages",
			cfg:  Config{Languages: []string{"golang", "sql"}},
			want: []string{"internal/db/db_test.go:go", "internal/db/schema.sql:sql", "main.go:go"},
		},
		{
			name: "include",
			cfg:  Config{Include: []string{"internal/**"}},
			want: []string{"internal/db/db_test.go:go", "internal/db/schema.sql:sql"},
		},
		{
			name: "exclude",
			cfg:  Config{Languages: []string{"go"}, Exclude: []string{"**_test.go"}},
			want: []string{"main.go:go"},
		},
		{
			name: "ignore dirs",
			cfg:  Config{Languages: []string{"python", "go"}, IgnoreDirs: map[string]struct{}{"generated": {}, "internal": {}}},
			want: []string{"main.go:go"},
		},
		{
			name: "max bytes",
			cfg:  Config{Languages: []string{"sql", "go"}, MaxBytes: 15},
			want: []string{"internal/db/db_test.go:go", "main.go:go"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := tt.cfg
			cfg.Root = root
			s, err := New(cfg)
			require.NoError(t, err)
			jobs, err := s.Collect()
			require.NoError(t, err)
			assert.Equal(t, tt.want, displayPaths(jobs))
		})
	}
}

func TestCollectGitignore(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		".gitignore":       "generated/\n*.sql\n",
		"main.go":          "package main\n",
		"schema.sql":       "CREATE TABLE t (id int);\n",
		"generated/gen.go": "package generated\n",
	}
	root := writeTree(t, files)

	s, err := New(Config{Root: root, UseGitignore: true})
	require.NoError(t, err)
	jobs, err := s.Collect()
	require.NoError(t, err)
	assert.Equal(t, []string{"main.go:go"}, displayPaths(jobs))

	s, err = New(Config{Root: root})
	require.NoError(t, err)
	jobs, err = s.Collect()
	require.NoError(t, err)
	assert.Len(t, jobs, 3)
}

func TestNewErrors(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Languages: []string{"cobol"}})
	assert.True(t, errors.Is(err, lang.ErrUnsupported))

	_, err = New(Config{Include: []string{"[unclosed"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `compile pattern "[unclosed"`)
}

func TestCollectSingle(t *testing.T) {
	t.Parallel()

	root := writeTree(t, project)
	s, err := New(Config{})
	require.NoError(t, err)

	job, err := s.CollectSingle(filepath.Join(root, "internal/db/schema.sql"))
	require.NoError(t, err)
	assert.Equal(t, "schema.sql", job.DisplayPath)
	assert.Equal(t, "sql", job.Language)

	job, err = s.CollectSingle(filepath.Join(root, "scripts/run"))
	require.NoError(t, err)
	assert.Equal(t, "bash", job.Language)

	_, err = s.CollectSingle(filepath.Join(root, "notes.txt"))
	assert.True(t, errors.Is(err, lang.ErrUnsupported))

	_, err = s.CollectSingle(filepath.Join(root, "missing"))
	require.Error(t, err)

	only, err := New(Config{Languages: []string{"go"}})
	require.NoError(t, err)
	_, err = only.CollectSingle(filepath.Join(root, "docs/README.md"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "README.md is markdown")
}
