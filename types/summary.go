package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MarshalSummary encodes a heterogeneous element list as a JSON array. Every object
// carries its element_type so UnmarshalSummary can restore the concrete variant.
func MarshalSummary(elems []Element) ([]byte, error) {
	if elems == nil {
		elems = []Element{}
	}
	return json.Marshal(elems)
}

// UnmarshalSummary decodes the output of MarshalSummary back into concrete variants.
func UnmarshalSummary(data []byte) ([]Element, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}

	elems := make([]Element, 0, len(raw))
	for i, msg := range raw {
		var head struct {
			Type ElementType `json:"element_type"`
		}
		if err := json.Unmarshal(msg, &head); err != nil {
			return nil, fmt.Errorf("decode element %d: %w", i, err)
		}

		elem, err := decodeElement(head.Type, msg)
		if err != nil {
			return nil, fmt.Errorf("decode element %d (%s): %w", i, head.Type, err)
		}
		elems = append(elems, elem)
	}
	return elems, nil
}

func decodeElement(t ElementType, msg json.RawMessage) (Element, error) {
	switch {
	case t == ElementFunction:
		return decodeAs[Function](msg)
	case t == ElementClass:
		return decodeAs[Class](msg)
	case t == ElementVariable:
		return decodeAs[Variable](msg)
	case t == ElementImport:
		return decodeAs[Import](msg)
	case t == ElementPackage:
		return decodeAs[Package](msg)
	case t == ElementAnnotation:
		return decodeAs[Annotation](msg)
	case t == ElementStyleRule:
		return decodeAs[StyleElement](msg)
	case t == ElementHTML:
		return decodeAs[HTMLElement](msg)
	case t == ElementTable:
		return decodeAs[Table](msg)
	case t == ElementView:
		return decodeAs[View](msg)
	case t == ElementProcedure:
		return decodeAs[Procedure](msg)
	case t == ElementSQLFunction:
		return decodeAs[SQLFunction](msg)
	case t == ElementTrigger:
		return decodeAs[Trigger](msg)
	case t == ElementIndex:
		return decodeAs[Index](msg)
	case strings.HasPrefix(string(t), "yaml_"):
		return decodeAs[YAMLElement](msg)
	case t == ElementHeading, t == ElementCodeBlock, t == ElementLink:
		return decodeAs[MarkdownElement](msg)
	}
	return nil, fmt.Errorf("unknown element type %q", t)
}

func decodeAs[T Element](msg json.RawMessage) (Element, error) {
	var v T
	if err := json.Unmarshal(msg, &v); err != nil {
		return nil, err
	}
	return v, nil
}
