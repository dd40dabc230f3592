// Package types defines the element data model shared by extractors, queries and formatters.
package types

import "sort"

// ElementType tags the variant of an extracted element.
type ElementType string

const (
	ElementFunction   ElementType = "function"
	ElementClass      ElementType = "class"
	ElementVariable   ElementType = "variable"
	ElementImport     ElementType = "import"
	ElementPackage    ElementType = "package"
	ElementAnnotation ElementType = "annotation"

	ElementStyleRule ElementType = "style_rule"
	ElementHTML      ElementType = "html_element"

	ElementTable       ElementType = "table"
	ElementView        ElementType = "view"
	ElementProcedure   ElementType = "procedure"
	ElementSQLFunction ElementType = "sql_function"
	ElementTrigger     ElementType = "trigger"
	ElementIndex       ElementType = "index"

	ElementYAMLDocument ElementType = "yaml_document"
	ElementYAMLMapping  ElementType = "yaml_mapping"
	ElementYAMLSequence ElementType = "yaml_sequence"
	ElementYAMLComment  ElementType = "yaml_comment"

	ElementHeading   ElementType = "heading"
	ElementCodeBlock ElementType = "code_block"
	ElementLink      ElementType = "link"
)

// Visibility values used across languages.
const (
	VisibilityPublic    = "public"
	VisibilityPrivate   = "private"
	VisibilityProtected = "protected"
	VisibilityPackage   = "package"
)

// Class kinds.
const (
	ClassTypeClass     = "class"
	ClassTypeInterface = "interface"
	ClassTypeStruct    = "struct"
	ClassTypeModule    = "module"
	ClassTypeEnum      = "enum"
	ClassTypeNamespace = "namespace"
	ClassTypeTrait     = "trait"
)

// Element is implemented by every element variant through the embedded CodeElement.
type Element interface {
	Base() CodeElement
}

// CodeElement holds the fields common to every extracted construct.
// Lines are 1-based and StartLine <= EndLine.
type CodeElement struct {
	Name      string      `json:"name" yaml:"name"`
	Type      ElementType `json:"element_type" yaml:"element_type"`
	StartLine int         `json:"start_line" yaml:"start_line"`
	EndLine   int         `json:"end_line" yaml:"end_line"`
	RawText   string      `json:"raw_text" yaml:"raw_text"`
	Language  string      `json:"language" yaml:"language"`
}

// Base returns the common fields.
func (e CodeElement) Base() CodeElement { return e }

// Function represents a function, method or constructor.
type Function struct {
	CodeElement   `yaml:",inline"`
	Visibility    string   `json:"visibility" yaml:"visibility"`
	Parameters    []string `json:"parameters" yaml:"parameters"`
	ReturnType    string   `json:"return_type,omitempty" yaml:"return_type,omitempty"`
	Modifiers     []string `json:"modifiers" yaml:"modifiers"`
	Annotations   []string `json:"annotations" yaml:"annotations"`
	IsConstructor bool     `json:"is_constructor" yaml:"is_constructor"`
	IsStatic      bool     `json:"is_static" yaml:"is_static"`
	IsMethod      bool     `json:"is_method" yaml:"is_method"`
	IsAsync       bool     `json:"is_async" yaml:"is_async"`
	ReceiverType  string   `json:"receiver_type,omitempty" yaml:"receiver_type,omitempty"`
	ClassName     string   `json:"class_name,omitempty" yaml:"class_name,omitempty"`
	Docstring     string   `json:"docstring,omitempty" yaml:"docstring,omitempty"`
}

// Class represents a class-like declaration (class, interface, struct, enum, ...).
// ParentClass is a lookup key, not a pointer: classes are independent elements.
type Class struct {
	CodeElement `yaml:",inline"`
	ClassType   string   `json:"class_type" yaml:"class_type"`
	Superclass  string   `json:"superclass,omitempty" yaml:"superclass,omitempty"`
	Interfaces  []string `json:"interfaces" yaml:"interfaces"`
	Modifiers   []string `json:"modifiers" yaml:"modifiers"`
	Annotations []string `json:"annotations" yaml:"annotations"`
	Visibility  string   `json:"visibility" yaml:"visibility"`
	IsNested    bool     `json:"is_nested" yaml:"is_nested"`
	ParentClass string   `json:"parent_class,omitempty" yaml:"parent_class,omitempty"`
}

// Variable represents a variable, field or constant declaration.
type Variable struct {
	CodeElement `yaml:",inline"`
	VarType     string `json:"var_type,omitempty" yaml:"var_type,omitempty"`
	Value       string `json:"value,omitempty" yaml:"value,omitempty"`
	Visibility  string `json:"visibility" yaml:"visibility"`
	IsConstant  bool   `json:"is_constant" yaml:"is_constant"`
	ClassName   string `json:"class_name,omitempty" yaml:"class_name,omitempty"`
}

// Import represents an import/include/use statement.
type Import struct {
	CodeElement `yaml:",inline"`
	Module      string   `json:"module" yaml:"module"`
	Alias       string   `json:"alias,omitempty" yaml:"alias,omitempty"`
	Names       []string `json:"names" yaml:"names"`
	Statement   string   `json:"statement" yaml:"statement"`
}

// Package represents a package or namespace declaration.
type Package struct {
	CodeElement `yaml:",inline"`
	Namespace   string `json:"namespace" yaml:"namespace"`
}

// Annotation represents a decorator, annotation or attribute.
type Annotation struct {
	CodeElement `yaml:",inline"`
	Arguments   string `json:"arguments,omitempty" yaml:"arguments,omitempty"`
	Target      string `json:"target,omitempty" yaml:"target,omitempty"`
}

// StyleElement represents a CSS rule set or at-rule.
type StyleElement struct {
	CodeElement  `yaml:",inline"`
	Selector     string            `json:"selector" yaml:"selector"`
	Properties   map[string]string `json:"properties" yaml:"properties"`
	ElementClass string            `json:"element_class" yaml:"element_class"`
}

// HTMLElement represents one HTML element.
type HTMLElement struct {
	CodeElement  `yaml:",inline"`
	TagName      string            `json:"tag_name" yaml:"tag_name"`
	Attributes   map[string]string `json:"attributes" yaml:"attributes"`
	ElementClass string            `json:"element_class" yaml:"element_class"`
	ParentTag    string            `json:"parent_tag,omitempty" yaml:"parent_tag,omitempty"`
}

// Table is a CREATE TABLE statement.
type Table struct {
	CodeElement `yaml:",inline"`
	Columns     []string `json:"columns" yaml:"columns"`
	Recovered   bool     `json:"recovered" yaml:"recovered"`
}

// View is a CREATE VIEW statement.
type View struct {
	CodeElement  `yaml:",inline"`
	SourceTables []string `json:"source_tables" yaml:"source_tables"`
	Recovered    bool     `json:"recovered" yaml:"recovered"`
}

// Procedure is a CREATE PROCEDURE statement.
type Procedure struct {
	CodeElement `yaml:",inline"`
	Parameters  []string `json:"parameters" yaml:"parameters"`
	Recovered   bool     `json:"recovered" yaml:"recovered"`
}

// SQLFunction is a CREATE FUNCTION statement.
type SQLFunction struct {
	CodeElement `yaml:",inline"`
	Parameters  []string `json:"parameters" yaml:"parameters"`
	ReturnType  string   `json:"return_type,omitempty" yaml:"return_type,omitempty"`
	Recovered   bool     `json:"recovered" yaml:"recovered"`
}

// Trigger is a CREATE TRIGGER statement.
type Trigger struct {
	CodeElement `yaml:",inline"`
	Timing      string `json:"timing,omitempty" yaml:"timing,omitempty"`
	Event       string `json:"event,omitempty" yaml:"event,omitempty"`
	TableName   string `json:"table_name,omitempty" yaml:"table_name,omitempty"`
	Recovered   bool   `json:"recovered" yaml:"recovered"`
}

// Index is a CREATE INDEX statement.
type Index struct {
	CodeElement `yaml:",inline"`
	TableName   string   `json:"table_name,omitempty" yaml:"table_name,omitempty"`
	Columns     []string `json:"columns" yaml:"columns"`
	Unique      bool     `json:"unique" yaml:"unique"`
	Recovered   bool     `json:"recovered" yaml:"recovered"`
}

// YAMLElement represents a document, mapping, sequence or comment in a YAML stream.
// DocumentIndex is the index of the enclosing document, starting at 0.
type YAMLElement struct {
	CodeElement   `yaml:",inline"`
	Key           string `json:"key,omitempty" yaml:"key,omitempty"`
	Value         string `json:"value,omitempty" yaml:"value,omitempty"`
	ValueType     string `json:"value_type,omitempty" yaml:"value_type,omitempty"`
	AnchorName    string `json:"anchor_name,omitempty" yaml:"anchor_name,omitempty"`
	AliasTarget   string `json:"alias_target,omitempty" yaml:"alias_target,omitempty"`
	NestingLevel  int    `json:"nesting_level" yaml:"nesting_level"`
	DocumentIndex int    `json:"document_index" yaml:"document_index"`
	ChildCount    *int   `json:"child_count,omitempty" yaml:"child_count,omitempty"`
}

// MarkdownElement represents a heading, code block or link.
type MarkdownElement struct {
	CodeElement `yaml:",inline"`
	Level       int    `json:"level,omitempty" yaml:"level,omitempty"`
	Info        string `json:"info,omitempty" yaml:"info,omitempty"`
	URL         string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Capture is a single named node produced by running a query.
type Capture struct {
	CaptureName string `json:"capture_name" yaml:"capture_name"`
	NodeType    string `json:"node_type" yaml:"node_type"`
	Content     string `json:"content" yaml:"content"`
	StartLine   int    `json:"start_line" yaml:"start_line"`
	EndLine     int    `json:"end_line" yaml:"end_line"`
	StartColumn int    `json:"start_column" yaml:"start_column"`
	EndColumn   int    `json:"end_column" yaml:"end_column"`
}

// SortBySource orders elements by start line; on the same start line the wider
// element comes first. The sort is stable so ties keep their discovery order.
func SortBySource[E Element](elems []E) {
	sort.SliceStable(elems, func(i, j int) bool {
		a, b := elems[i].Base(), elems[j].Base()
		if a.StartLine != b.StartLine {
			return a.StartLine < b.StartLine
		}
		return a.EndLine > b.EndLine
	})
}
