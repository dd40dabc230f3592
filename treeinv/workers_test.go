package treeinv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjunmahishi/treeinv/lang"
	"github.com/arjunmahishi/treeinv/parser"
	"github.com/arjunmahishi/treeinv/scanner"
	"github.com/arjunmahishi/treeinv/types"
)

// TestRunWorkers tests the generic worker pool for concurrency correctness.
// Run with -race flag to detect race conditions: go test -race
func TestRunWorkers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		fileCount int
		jobs      int
	}{
		{"single_file_single_worker", 1, 1},
		{"multiple_files_single_worker", 5, 1},
		{"multiple_files_multiple_workers", 10, 4},
		{"more_workers_than_files", 3, 10},
		{"many_files_high_concurrency", 50, 16},
		{"zero_jobs_defaults_to_one", 5, 0},
		{"empty_files", 0, 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tmpDir := t.TempDir()
			expectedFuncs := generateTestFiles(t, tmpDir, tc.fileCount)

			sc, err := scanner.New(scanner.Config{Root: tmpDir, Languages: []string{"go"}})
			require.NoError(t, err)
			files, err := sc.Collect()
			require.NoError(t, err)
			require.Len(t, files, tc.fileCount)

			results := runWorkers(context.Background(), files, tc.jobs, extractFunctionName)
			require.Len(t, results, tc.fileCount, "should have one result per file")

			// Order varies with concurrency
			sort.Strings(results)
			sort.Strings(expectedFuncs)
			require.Equal(t, expectedFuncs, results, "all functions should be found exactly once")
		})
	}
}

func TestRunWorkersCancelled(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	generateTestFiles(t, tmpDir, 20)
	sc, err := scanner.New(scanner.Config{Root: tmpDir})
	require.NoError(t, err)
	files, err := sc.Collect()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := runWorkers(ctx, files, 4, extractFunctionName)
	assert.Empty(t, results)

	_, err = Analyze(ctx, AnalyzeOptions{Path: tmpDir})
	assert.ErrorIs(t, err, context.Canceled)
}

// generateTestFiles creates N Go files, each with a unique function.
// Returns the expected function names.
func generateTestFiles(t *testing.T, dir string, count int) []string {
	t.Helper()

	var expected []string
	for i := range count {
		funcName := fmt.Sprintf("Func%d", i)
		content := fmt.Sprintf("package testpkg\n\nfunc %s() {}\n", funcName)
		err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("file_%d.go", i)), []byte(content), 0644)
		require.NoError(t, err)
		expected = append(expected, funcName)
	}
	return expected
}

// extractFunctionName parses one generated file and returns its only function.
func extractFunctionName(pool *parser.Pool, job scanner.FileJob) (string, bool) {
	p, ok := lang.Default().ForName(job.Language)
	if !ok {
		return "", false
	}
	ps, err := pool.Get(p.TreeSitterLang())
	if err != nil {
		return "", false
	}
	tree, source, err := ps.ParseFile(context.Background(), job.AbsPath)
	if err != nil {
		return "", false
	}
	funcs := p.NewExtractor().Functions(tree, source)
	if len(funcs) != 1 {
		return "", false
	}
	return funcs[0].Name, true
}

func TestExtractSource(t *testing.T) {
	t.Parallel()

	src := []byte("CREATE TABLE users (id INT, email TEXT);\nCREATE VIEW active AS SELECT id FROM users;\n")
	res, err := ExtractSource(lang.SQL(), src)
	require.NoError(t, err)
	assert.Equal(t, "sql", res.Language)
	require.Len(t, res.Elements, 2)

	table, ok := res.Elements[0].(types.Table)
	require.True(t, ok, "got %T", res.Elements[0])
	assert.Equal(t, "users", table.Name)
	assert.Equal(t, []string{"id", "email"}, table.Columns)

	view, ok := res.Elements[1].(types.View)
	require.True(t, ok, "got %T", res.Elements[1])
	assert.Equal(t, "active", view.Name)
	assert.Equal(t, 2, view.StartLine)

	empty, err := ExtractSource(lang.YAML(), nil)
	require.NoError(t, err)
	assert.NotNil(t, empty.Elements)
	assert.Empty(t, empty.Elements)
}

func TestQueryOptionsValidation(t *testing.T) {
	t.Parallel()

	_, err := Query(context.Background(), QueryOptions{Query: "(identifier) @id"})
	assert.EqualError(t, err, "language is required")

	_, err = Query(context.Background(), QueryOptions{Language: "go"})
	assert.EqualError(t, err, "exactly one of query and name is required")

	_, err = Query(context.Background(), QueryOptions{Language: "go", Query: "(identifier) @id", Name: "functions"})
	assert.EqualError(t, err, "exactly one of query and name is required")

	_, err = Query(context.Background(), QueryOptions{Language: "cobol", Name: "functions"})
	assert.ErrorIs(t, err, lang.ErrUnsupported)
}
