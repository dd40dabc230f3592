package extract

import (
	"bytes"
	"log/slog"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/arjunmahishi/treeinv/types"
)

// SQL extracts DDL statements. The grammar covers only part of the dialects in the
// wild, so a second pass recovers CREATE statements from the raw text. Parsed
// statements always win over recovered ones.
type SQL struct {
	language string
}

func NewSQL() *SQL {
	return &SQL{language: "sql"}
}

func (q *SQL) Language() string {
	return q.language
}

// Functions, Classes, Variables and Imports are empty; DDL is reported through
// SQLElements.
func (q *SQL) Functions(tree *sitter.Tree, source []byte) []types.Function { return nil }
func (q *SQL) Classes(tree *sitter.Tree, source []byte) []types.Class      { return nil }
func (q *SQL) Variables(tree *sitter.Tree, source []byte) []types.Variable { return nil }
func (q *SQL) Imports(tree *sitter.Tree, source []byte) []types.Import     { return nil }

var sqlNodeKinds = []struct {
	marker string
	kind   types.ElementType
}{
	{"create_table", types.ElementTable},
	{"create_materialized_view", types.ElementView},
	{"create_view", types.ElementView},
	{"create_function", types.ElementSQLFunction},
	{"create_procedure", types.ElementProcedure},
	{"create_trigger", types.ElementTrigger},
	{"create_index", types.ElementIndex},
}

var sqlHeaderKinds = map[string]types.ElementType{
	"TABLE":     types.ElementTable,
	"VIEW":      types.ElementView,
	"FUNCTION":  types.ElementSQLFunction,
	"PROCEDURE": types.ElementProcedure,
	"TRIGGER":   types.ElementTrigger,
	"INDEX":     types.ElementIndex,
}

const sqlIdent = "(?:[\\w$]+|\"[^\"]+\"|`[^`]+`|\\[[^\\]]+\\])"

var (
	sqlHeader = regexp.MustCompile(`(?is)\bCREATE\s+(?:OR\s+REPLACE\s+)?` +
		`(?:(?:GLOBAL|LOCAL|TEMP|TEMPORARY|UNLOGGED|MATERIALIZED|UNIQUE|DEFINER\s*=\s*\S+)\s+)*` +
		`(TABLE|VIEW|FUNCTION|PROCEDURE|TRIGGER|INDEX)\s+` +
		`(?:CONCURRENTLY\s+)?(?:IF\s+NOT\s+EXISTS\s+)?` +
		`(` + sqlIdent + `(?:\s*\.\s*` + sqlIdent + `)*)`)

	sqlTrigger = regexp.MustCompile(`(?is)\b(BEFORE|AFTER|INSTEAD\s+OF)\s+` +
		`((?:INSERT|UPDATE|DELETE|TRUNCATE)(?:\s+OR\s+(?:INSERT|UPDATE|DELETE|TRUNCATE))*)` +
		`(?:\s+OF\s+[\w\s,]+?)?\s+ON\s+(` + sqlIdent + `(?:\.` + sqlIdent + `)*)`)
	sqlIndexOn   = regexp.MustCompile(`(?is)\bON\s+(` + sqlIdent + `(?:\.` + sqlIdent + `)*)\s*(?:USING\s+\w+\s*)?\(([^)]*)\)`)
	sqlReturns   = regexp.MustCompile(`(?is)\bRETURNS\s+(.+?)(?:\s+(?:AS|LANGUAGE|BEGIN|IMMUTABLE|STABLE|VOLATILE|RETURN|DETERMINISTIC)\b|\$\$|;|$)`)
	sqlSources   = regexp.MustCompile(`(?i)\b(?:FROM|JOIN)\s+(` + sqlIdent + `(?:\.` + sqlIdent + `)*)`)
	sqlUnique    = regexp.MustCompile(`(?i)\bUNIQUE\b`)
	sqlNotColumn = regexp.MustCompile(`(?i)^(?:PRIMARY|FOREIGN|UNIQUE|CONSTRAINT|CHECK|KEY|INDEX|EXCLUDE|FULLTEXT|SPATIAL)\b`)
)

// ddl is one CREATE statement, parsed or recovered, before it becomes an element.
type ddl struct {
	kind       types.ElementType
	name       string
	start, end int
	startLine  int
	endLine    int
	text       string
	node       *sitter.Node
	recovered  bool
}

// SQLElements returns the tables, views, functions, procedures, triggers and
// indexes declared in source, in source order.
func (q *SQL) SQLElements(tree *sitter.Tree, source []byte) []types.Element {
	s := newScope(tree, source, q.language)
	if s == nil {
		return nil
	}

	parsed := sqlParsed(s)
	stmts := append(parsed, sqlRecover(s, parsed)...)

	out := make([]types.Element, 0, len(stmts))
	for _, st := range stmts {
		out = append(out, st.element(s))
	}
	types.SortBySource(out)
	return out
}

func sqlParsed(s *scope) []ddl {
	var out []ddl
	walk(s.root, func(n *sitter.Node) bool {
		t := strings.ToLower(n.Type())
		for _, k := range sqlNodeKinds {
			if !strings.Contains(t, k.marker) {
				continue
			}
			text := s.text(n)
			st := ddl{
				kind:      k.kind,
				start:     int(n.StartByte()),
				end:       int(n.EndByte()),
				startLine: s.startLine(n),
				endLine:   s.endLine(n),
				text:      text,
				node:      n,
			}
			// A header of another kind can precede the statement's own when the
			// grammar folded a broken statement into this node. That prefix is
			// left to recovery.
			if at, name, ok := sqlOwnHeader(text, k.kind); ok {
				st.name = name
				if at > 0 {
					st.start += at
					st.startLine = s.lineAt(st.start)
					st.text = text[at:]
				}
			}
			if st.name == "" {
				if ref := childByType(n, "object_reference", "identifier"); ref != nil {
					st.name = sqlName(s.text(ref))
				}
			}
			if st.name == "" {
				st.name = fallbackName(n)
			}
			out = append(out, st)
			return false
		}
		return true
	})
	return out
}

// sqlOwnHeader finds the first CREATE header of kind in text and returns its
// offset and unquoted name.
func sqlOwnHeader(text string, kind types.ElementType) (int, string, bool) {
	for _, loc := range sqlHeader.FindAllStringSubmatchIndex(text, -1) {
		if sqlHeaderKinds[strings.ToUpper(text[loc[2]:loc[3]])] != kind {
			continue
		}
		if raw := text[loc[4]:loc[5]]; !strings.EqualFold(raw, "ON") {
			return loc[0], sqlName(raw), true
		}
	}
	return 0, "", false
}

// sqlRecover scans the raw source for CREATE statements the tree did not yield.
// A recovered statement is skipped when it lies inside a parsed one, or when a
// statement of the same kind already has its name; the latter case is logged when
// the line ranges disagree. A recovered statement never runs into the next parsed
// one.
func sqlRecover(s *scope, parsed []ddl) []ddl {
	src := s.source
	inert := sqlInertSpans(src)
	var out []ddl
	for _, loc := range sqlHeader.FindAllSubmatchIndex(src, -1) {
		start := loc[0]
		if sqlCovered(parsed, start) || sqlInSpan(inert, start) {
			continue
		}
		kind := sqlHeaderKinds[strings.ToUpper(string(src[loc[2]:loc[3]]))]
		rawName := string(src[loc[4]:loc[5]])
		if strings.EqualFold(rawName, "ON") {
			continue
		}
		end := sqlStatementEnd(src, loc[1])
		for _, p := range parsed {
			if p.start > start && p.start < end {
				end = p.start
			}
		}
		text := s.slice(uint32(start), uint32(end))
		if text == "" {
			continue
		}
		st := ddl{
			kind:      kind,
			name:      sqlName(rawName),
			start:     start,
			end:       end,
			startLine: s.lineAt(start),
			endLine:   s.lineAt(max(start, end-1)),
			text:      strings.TrimRight(text, " \t\r\n"),
			recovered: true,
		}
		if st.kind == types.ElementTrigger && sqlRestatesHeader(st.text[loc[1]-start:]) {
			slog.Debug("dropping recovered trigger that restates another statement",
				"name", st.name, "line", st.startLine)
			continue
		}
		if dup, ok := sqlDuplicate(parsed, st); ok {
			if dup.startLine != st.startLine || dup.endLine != st.endLine {
				slog.Warn("recovered statement conflicts with parsed statement, keeping parsed",
					"kind", st.kind, "name", st.name,
					"parsed_lines", []int{dup.startLine, dup.endLine},
					"recovered_lines", []int{st.startLine, st.endLine})
			}
			continue
		}
		if dup, ok := sqlDuplicate(out, st); ok {
			slog.Warn("statement recovered twice, keeping the first",
				"kind", st.kind, "name", st.name,
				"first_lines", []int{dup.startLine, dup.endLine},
				"dropped_lines", []int{st.startLine, st.endLine})
			continue
		}
		out = append(out, st)
	}
	return out
}

func sqlCovered(parsed []ddl, offset int) bool {
	for _, p := range parsed {
		if p.start <= offset && offset < p.end {
			return true
		}
	}
	return false
}

func sqlDuplicate(parsed []ddl, st ddl) (ddl, bool) {
	for _, p := range parsed {
		if p.kind == st.kind && strings.EqualFold(p.name, st.name) {
			return p, true
		}
	}
	return ddl{}, false
}

// sqlRestatesHeader reports whether a trigger body carries the header of a
// different kind of statement, a sign the recovery ran past the trigger's end.
func sqlRestatesHeader(body string) bool {
	for _, m := range sqlHeader.FindAllStringSubmatch(body, -1) {
		if !strings.EqualFold(m[1], "TRIGGER") {
			return true
		}
	}
	return false
}

// sqlInertSpans returns the [start, end) byte ranges of comments and string
// literals, where a CREATE keyword is text rather than a statement. Quoted
// identifiers and dollar-quoted bodies are stepped over but not reported.
func sqlInertSpans(src []byte) [][2]int {
	var spans [][2]int
	for i := 0; i < len(src); i++ {
		c := src[i]
		next := byte(0)
		if i+1 < len(src) {
			next = src[i+1]
		}
		switch {
		case c == '\'' || c == '"':
			end := len(src)
			if j := bytes.IndexByte(src[i+1:], c); j >= 0 {
				end = i + 1 + j + 1
			}
			if c == '\'' {
				spans = append(spans, [2]int{i, end})
			}
			i = end - 1
		case c == '$' && next == '$':
			if j := bytes.Index(src[i+2:], []byte("$$")); j >= 0 {
				i += j + 3
			} else {
				i = len(src)
			}
		case c == '-' && next == '-':
			end := len(src)
			if j := bytes.IndexByte(src[i:], '\n'); j >= 0 {
				end = i + j
			}
			spans = append(spans, [2]int{i, end})
			i = end
		case c == '/' && next == '*':
			end := len(src)
			if j := bytes.Index(src[i+2:], []byte("*/")); j >= 0 {
				end = i + 2 + j + 2
			}
			spans = append(spans, [2]int{i, end})
			i = end - 1
		}
	}
	return spans
}

func sqlInSpan(spans [][2]int, offset int) bool {
	for _, sp := range spans {
		if sp[0] <= offset && offset < sp[1] {
			return true
		}
	}
	return false
}

// sqlStatementEnd returns the offset just past the statement's terminating
// semicolon. Quoted strings, dollar-quoted bodies, comments and BEGIN/END
// blocks do not terminate a statement.
func sqlStatementEnd(src []byte, from int) int {
	depth := 0
	var quote byte
	dollar := false
	for i := from; i < len(src); i++ {
		c := src[i]
		next := byte(0)
		if i+1 < len(src) {
			next = src[i+1]
		}
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case dollar:
			if c == '$' && next == '$' {
				dollar = false
				i++
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '$' && next == '$':
			dollar = true
			i++
		case c == '-' && next == '-':
			if nl := bytes.IndexByte(src[i:], '\n'); nl >= 0 {
				i += nl
			} else {
				return len(src)
			}
		case c == '/' && next == '*':
			if j := bytes.Index(src[i+2:], []byte("*/")); j >= 0 {
				i += j + 3
			} else {
				return len(src)
			}
		case c == ';' && depth == 0:
			return i + 1
		case sqlWordAt(src, i, "BEGIN"), sqlWordAt(src, i, "CASE"):
			depth++
		case sqlWordAt(src, i, "END"):
			rest := bytes.TrimLeft(src[i+3:], " \t\r\n")
			block := false
			for _, w := range []string{"IF", "LOOP", "WHILE", "REPEAT", "FOR"} {
				if sqlWordAt(rest, 0, w) {
					block = true
				}
			}
			if !block && depth > 0 {
				depth--
			}
			i += 2
		}
	}
	return len(src)
}

func sqlWordAt(src []byte, i int, word string) bool {
	if i+len(word) > len(src) || !strings.EqualFold(string(src[i:i+len(word)]), word) {
		return false
	}
	if i > 0 && isWordByte(src[i-1]) {
		return false
	}
	return i+len(word) == len(src) || !isWordByte(src[i+len(word)])
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// sqlName strips identifier quoting: "public"."users" gives public.users.
func sqlName(raw string) string {
	parts := strings.Split(raw, ".")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		parts[i] = strings.Trim(p, "\"`[]")
	}
	return strings.Join(parts, ".")
}

func (st ddl) element(s *scope) types.Element {
	base := types.CodeElement{
		Name:      st.name,
		Type:      st.kind,
		StartLine: st.startLine,
		EndLine:   st.endLine,
		RawText:   st.text,
		Language:  s.language,
	}
	switch st.kind {
	case types.ElementTable:
		return types.Table{CodeElement: base, Columns: st.columns(s), Recovered: st.recovered}
	case types.ElementView:
		return types.View{CodeElement: base, SourceTables: sqlSourceTables(st.text, st.name), Recovered: st.recovered}
	case types.ElementProcedure:
		return types.Procedure{CodeElement: base, Parameters: sqlParameters(st.text), Recovered: st.recovered}
	case types.ElementSQLFunction:
		f := types.SQLFunction{CodeElement: base, Parameters: sqlParameters(st.text), Recovered: st.recovered}
		if m := sqlReturns.FindStringSubmatch(st.text); m != nil {
			f.ReturnType = collapse(m[1])
		}
		return f
	case types.ElementTrigger:
		t := types.Trigger{CodeElement: base, Recovered: st.recovered}
		if m := sqlTrigger.FindStringSubmatch(st.text); m != nil {
			t.Timing = strings.ToUpper(collapse(m[1]))
			t.Event = strings.ToUpper(collapse(m[2]))
			t.TableName = sqlName(m[3])
		}
		return t
	default:
		idx := types.Index{CodeElement: base, Columns: []string{}, Recovered: st.recovered}
		if m := sqlHeader.FindStringSubmatch(st.text); m != nil {
			idx.Unique = sqlUnique.MatchString(m[0])
		}
		if m := sqlIndexOn.FindStringSubmatch(st.text); m != nil {
			idx.TableName = sqlName(m[1])
			idx.Columns = splitList(m[2])
		}
		return idx
	}
}

// columns prefers the grammar's column definitions and falls back to splitting
// the parenthesised body.
func (st ddl) columns(s *scope) []string {
	cols := []string{}
	if st.node != nil {
		walk(st.node, func(n *sitter.Node) bool {
			if n.Type() != "column_definition" {
				return true
			}
			if name := n.ChildByFieldName("name"); name != nil {
				cols = append(cols, sqlName(s.text(name)))
			} else if id := childByType(n, "identifier"); id != nil {
				cols = append(cols, sqlName(s.text(id)))
			}
			return false
		})
		if len(cols) > 0 {
			return cols
		}
	}
	for _, item := range splitList(sqlParenBody(st.text)) {
		if sqlNotColumn.MatchString(item) {
			continue
		}
		if f := strings.Fields(item); len(f) > 0 {
			cols = append(cols, sqlName(f[0]))
		}
	}
	return cols
}

func sqlParameters(text string) []string {
	return splitList(sqlParenBody(text))
}

// sqlParenBody returns the text inside the first balanced parentheses.
func sqlParenBody(text string) string {
	open := strings.Index(text, "(")
	if open < 0 {
		return ""
	}
	depth := 0
	for i := open; i < len(text); i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return text[open+1 : i]
			}
		}
	}
	return text[open+1:]
}

func sqlSourceTables(text, self string) []string {
	tables := []string{}
	for _, m := range sqlSources.FindAllStringSubmatch(text, -1) {
		name := sqlName(m[1])
		if strings.EqualFold(name, self) || isOneOf(name, tables) {
			continue
		}
		tables = append(tables, name)
	}
	return tables
}
