package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSummaryRoundTrip(t *testing.T) {
	t.Parallel()

	children := 2
	elems := []Element{
		Function{
			CodeElement:   CodeElement{Name: "Start", Type: ElementFunction, StartLine: 3, EndLine: 5, RawText: "func (s *Service) Start() {}", Language: "go"},
			Visibility:    VisibilityPublic,
			Parameters:    []string{"a int", "a int"},
			ReturnType:    "error",
			Modifiers:     []string{"async"},
			Annotations:   []string{"@cached"},
			IsMethod:      true,
			ReceiverType:  "Service",
			ClassName:     "Service",
			IsConstructor: false,
		},
		Class{
			CodeElement: CodeElement{Name: "Inner", Type: ElementClass, StartLine: 2, EndLine: 4, RawText: "class Inner {}", Language: "java"},
			ClassType:   ClassTypeClass,
			Superclass:  "Base",
			Interfaces:  []string{"Runnable"},
			Modifiers:   []string{"static"},
			Visibility:  VisibilityPrivate,
			IsNested:    true,
			ParentClass: "Outer",
		},
		Variable{
			CodeElement: CodeElement{Name: "MAX", Type: ElementVariable, StartLine: 1, EndLine: 1, RawText: "MAX = 3", Language: "python"},
			Value:       "3",
			Visibility:  VisibilityPublic,
			IsConstant:  true,
		},
		Import{
			CodeElement: CodeElement{Name: "os", Type: ElementImport, StartLine: 1, EndLine: 1, RawText: "import os", Language: "python"},
			Module:      "os",
			Names:       []string{"path"},
			Statement:   "import os",
		},
		Package{
			CodeElement: CodeElement{Name: "main", Type: ElementPackage, StartLine: 1, EndLine: 1, RawText: "package main", Language: "go"},
			Namespace:   "main",
		},
		StyleElement{
			CodeElement:  CodeElement{Name: ".a", Type: ElementStyleRule, StartLine: 1, EndLine: 1, RawText: ".a { color: red; }", Language: "css"},
			Selector:     ".a",
			Properties:   map[string]string{"color": "red"},
			ElementClass: "color",
		},
		View{
			CodeElement:  CodeElement{Name: "v", Type: ElementView, StartLine: 1, EndLine: 1, RawText: "CREATE VIEW v AS SELECT 1", Language: "sql"},
			SourceTables: []string{"users"},
			Recovered:    true,
		},
		Trigger{
			CodeElement: CodeElement{Name: "trg", Type: ElementTrigger, StartLine: 2, EndLine: 6, RawText: "CREATE TRIGGER trg", Language: "sql"},
			Timing:      "BEFORE",
			Event:       "INSERT",
			TableName:   "users",
		},
		YAMLElement{
			CodeElement:   CodeElement{Name: "a", Type: ElementYAMLMapping, StartLine: 1, EndLine: 2, RawText: "a:\n  b: 1", Language: "yaml"},
			Key:           "a",
			ValueType:     "mapping",
			NestingLevel:  0,
			DocumentIndex: 1,
			ChildCount:    &children,
		},
		MarkdownElement{
			CodeElement: CodeElement{Name: "Title", Type: ElementHeading, StartLine: 1, EndLine: 1, RawText: "# Title", Language: "markdown"},
			Level:       1,
		},
	}

	data, err := MarshalSummary(elems)
	require.NoError(t, err)

	decoded, err := UnmarshalSummary(data)
	require.NoError(t, err)
	require.Equal(t, elems, decoded)
}

func TestSummaryEmptyAndUnknown(t *testing.T) {
	t.Parallel()

	data, err := MarshalSummary(nil)
	require.NoError(t, err)
	require.JSONEq(t, `[]`, string(data))

	decoded, err := UnmarshalSummary(data)
	require.NoError(t, err)
	require.Empty(t, decoded)

	_, err = UnmarshalSummary([]byte(`[{"element_type":"widget","name":"x"}]`))
	require.ErrorContains(t, err, `unknown element type "widget"`)
}

func TestSortBySource(t *testing.T) {
	t.Parallel()

	elems := []Function{
		{CodeElement: CodeElement{Name: "c", StartLine: 4, EndLine: 4}},
		{CodeElement: CodeElement{Name: "b", StartLine: 2, EndLine: 2}},
		{CodeElement: CodeElement{Name: "outer", StartLine: 2, EndLine: 9}},
	}
	SortBySource(elems)

	names := make([]string, len(elems))
	for i, e := range elems {
		names[i] = e.Name
	}
	require.Equal(t, []string{"outer", "b", "c"}, names)
}
