package query

import (
	"fmt"
	"strings"
)

var closers = map[rune]rune{'(': ')', '[': ']', '{': '}'}

// Validate performs the structural checks every stored or ad-hoc query must pass:
// brackets are balanced outside string literals and comments, and at least one
// @capture is present. Grammar-level checks happen when the query is compiled.
func Validate(text string) error {
	if strings.TrimSpace(text) == "" {
		return &Error{Kind: KindSyntax, Offset: -1, Message: "empty query"}
	}

	var (
		stack    []rune
		offsets  []int
		inString bool
		escaped  bool
		comment  bool
		captures int
	)

	runes := []rune(text)
	for i, r := range runes {
		switch {
		case comment:
			if r == '\n' {
				comment = false
			}
		case inString:
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
		case r == ';':
			comment = true
		case r == '"':
			inString = true
		case r == '@':
			if i+1 < len(runes) && isCaptureRune(runes[i+1]) {
				captures++
			}
		case r == '(' || r == '[' || r == '{':
			stack = append(stack, closers[r])
			offsets = append(offsets, i)
		case r == ')' || r == ']' || r == '}':
			if len(stack) == 0 {
				return &Error{Kind: KindSyntax, Offset: i, Message: fmt.Sprintf("unexpected %q", r)}
			}
			if want := stack[len(stack)-1]; want != r {
				return &Error{Kind: KindSyntax, Offset: i, Message: fmt.Sprintf("expected %q, found %q", want, r)}
			}
			stack = stack[:len(stack)-1]
			offsets = offsets[:len(offsets)-1]
		}
	}

	if inString {
		return &Error{Kind: KindSyntax, Offset: len(runes), Message: "unterminated string literal"}
	}
	if len(stack) > 0 {
		return &Error{Kind: KindSyntax, Offset: offsets[len(offsets)-1], Message: fmt.Sprintf("unclosed bracket, expected %q", stack[len(stack)-1])}
	}
	if captures == 0 {
		return &Error{Kind: KindSyntax, Offset: -1, Message: "query has no @capture"}
	}
	return nil
}

func isCaptureRune(r rune) bool {
	return r == '_' || r == '.' || r == '-' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
