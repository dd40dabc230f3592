package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjunmahishi/treeinv/lang"
)

// run executes the CLI with args against an empty config dir and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	full := append([]string{"treeinv", "--config-dir", t.TempDir()}, args...)
	err := app.Run(context.Background(), full)
	return stdout.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLanguagesCommand(t *testing.T) {
	out, err := run(t, "languages")
	require.NoError(t, err)

	var infos []languageInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.NotEmpty(t, infos)

	byName := make(map[string]languageInfo, len(infos))
	for _, info := range infos {
		byName[info.Name] = info
	}
	goInfo, ok := byName["go"]
	require.True(t, ok)
	assert.Equal(t, []string{".go"}, goInfo.Extensions)
	assert.Contains(t, goInfo.Queries, "functions")
	assert.Contains(t, byName["sql"].Extensions, ".sql")
}

func TestQueriesCommand(t *testing.T) {
	goLang, err := lang.Default().Lookup("go")
	require.NoError(t, err)
	functions, ok := goLang.Queries().Get("functions")
	require.True(t, ok)

	out, err := run(t, "queries", "--lang", "go", "functions")
	require.NoError(t, err)
	assert.Equal(t, ";; functions\n"+functions, out)
	assert.NotContains(t, out, ";; imports")

	out, err = run(t, "queries", "-l", "golang")
	require.NoError(t, err)
	assert.Contains(t, out, ";; imports")
	assert.Contains(t, out, ";; types")

	_, err = run(t, "queries", "-l", "go", "nope")
	assert.EqualError(t, err, `go has no query "nope"`)

	_, err = run(t, "queries", "-l", "cobol")
	assert.Error(t, err)
}

func TestExtractCommand(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "main.go", "package main\n\nfunc main() {}\n\nfunc helper() int { return 1 }\n")

	out, err := run(t, "--compact", "extract", "-f", file, "--type", "function")
	require.NoError(t, err)

	var results []struct {
		File     string           `json:"file"`
		Language string           `json:"language"`
		Elements []map[string]any `json:"elements"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "go", results[0].Language)
	require.Len(t, results[0].Elements, 2)
	assert.Equal(t, "main", results[0].Elements[0]["name"])
	assert.Equal(t, "helper", results[0].Elements[1]["name"])
}

func TestExtractCommandYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "schema.sql", "CREATE TABLE users (id INT);\n")

	out, err := run(t, "--format", "yaml", "extract", "--path", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "file: schema.sql")
	assert.Contains(t, out, "language: sql")
	assert.Contains(t, out, "name: users")
}

func TestQueryCommand(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "main.go", "package main\n\nfunc main() {}\n")

	out, err := run(t, "--compact", "query", "-f", file, "-n", "functions")
	require.NoError(t, err)
	assert.Contains(t, out, `"language":"go"`)
	assert.Contains(t, out, `"content":"main"`)

	qf := writeFile(t, dir, "q.scm", "(package_identifier) @pkg")
	out, err = run(t, "--compact", "query", "-l", "go", "--query-file", qf, "--path", dir)
	require.NoError(t, err)
	assert.Contains(t, out, `"content":"main"`)
}

func TestQueryCommandErrors(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "main.go", "package main\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "no query",
			args: []string{"query", "-l", "go"},
			want: "--query, --query-file or --name is required",
		},
		{
			name: "query and file",
			args: []string{"query", "-l", "go", "-q", "(identifier) @id", "--query-file", "x.scm"},
			want: "use --query or --query-file, not both",
		},
		{
			name: "name and query",
			args: []string{"query", "-l", "go", "-n", "functions", "-q", "(identifier) @id"},
			want: "use --name or --query/--query-file, not both",
		},
		{
			name: "no language",
			args: []string{"query", "-q", "(identifier) @id"},
			want: "--lang is required unless --file is given",
		},
		{
			name: "undetectable file",
			args: []string{"query", "-q", "(identifier) @id", "-f", filepath.Join(dir, "notes.txt")},
			want: "cannot detect the language of " + filepath.Join(dir, "notes.txt") + "; pass --lang",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := run(t, tc.args...)
			assert.EqualError(t, err, tc.want)
		})
	}

	_, err := run(t, "query", "-f", file, "-q", "(identifier")
	assert.Error(t, err)
}

func TestBadFormat(t *testing.T) {
	_, err := run(t, "--format", "xml", "languages")
	assert.EqualError(t, err, `unknown output format "xml" (want json or yaml)`)
}
