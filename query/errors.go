// Package query validates, stores and runs tree-sitter queries.
package query

import "fmt"

// Kind classifies query failures.
type Kind int

const (
	// KindSyntax marks a query whose text is malformed.
	KindSyntax Kind = iota + 1
	// KindUnknownQuery marks a lookup of a query name the language does not define.
	KindUnknownQuery
	// KindLanguageMismatch marks a query requested for a tree of another language.
	KindLanguageMismatch
)

func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "syntax"
	case KindUnknownQuery:
		return "unknown_query"
	case KindLanguageMismatch:
		return "language_mismatch"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is returned for every component-level query failure.
type Error struct {
	Kind     Kind
	Language string
	Name     string // query name, empty for raw queries
	Offset   int    // offset of a syntax error, -1 when unknown
	Message  string
}

func (e *Error) Error() string {
	subject := "query"
	if e.Name != "" {
		subject = fmt.Sprintf("query %q", e.Name)
	}
	if e.Language != "" {
		subject += " (" + e.Language + ")"
	}
	if e.Offset >= 0 && e.Kind == KindSyntax {
		return fmt.Sprintf("%s: %s error at offset %d: %s", subject, e.Kind, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", subject, e.Kind, e.Message)
}

// Is reports whether target is a *Error of the same kind, so callers can write
// errors.Is(err, &query.Error{Kind: query.KindSyntax}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}
