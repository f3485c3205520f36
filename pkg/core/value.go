package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the shape of a Value.
type Kind uint8

const (
	Scalar Kind = iota
	List
	Map
)

// Value is an attribute value exactly as the server sent it. Scalars hold
// a string, bool, json.Number or nil. Nothing is stringified until the
// value is rendered.
type Value struct {
	Kind   Kind
	Scalar interface{}
	Items  []Value
	Fields map[string]Value
}

// ValueOf converts a value produced by encoding/json (decoded with
// UseNumber) into a Value.
func ValueOf(raw interface{}) Value {
	switch v := raw.(type) {
	case []interface{}:
		items := make([]Value, len(v))
		for i, item := range v {
			items[i] = ValueOf(item)
		}
		return Value{Kind: List, Items: items}
	case map[string]interface{}:
		fields := make(map[string]Value, len(v))
		for key, item := range v {
			fields[key] = ValueOf(item)
		}
		return Value{Kind: Map, Fields: fields}
	default:
		return Value{Kind: Scalar, Scalar: v}
	}
}

// Text returns a scalar string value.
func Text(s string) Value {
	return Value{Kind: Scalar, Scalar: s}
}

// Interface converts the value back into its generic decoded form.
func (v Value) Interface() interface{} {
	switch v.Kind {
	case List:
		items := make([]interface{}, len(v.Items))
		for i, item := range v.Items {
			items[i] = item.Interface()
		}
		return items
	case Map:
		fields := make(map[string]interface{}, len(v.Fields))
		for key, item := range v.Fields {
			fields[key] = item.Interface()
		}
		return fields
	default:
		return v.Scalar
	}
}

// String renders the value for display. Lists are joined with ", " and
// mappings become compact JSON.
func (v Value) String() string {
	switch v.Kind {
	case List:
		parts := make([]string, len(v.Items))
		for i, item := range v.Items {
			parts[i] = item.String()
		}
		return strings.Join(parts, ", ")
	case Map:
		b, err := json.Marshal(v.Interface())
		if err != nil {
			return fmt.Sprint(v.Interface())
		}
		return string(b)
	}

	switch s := v.Scalar.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	case bool:
		return strconv.FormatBool(s)
	default:
		return fmt.Sprint(s)
	}
}

// Cell returns the value in a form suitable for a spreadsheet cell.
// Numbers stay numeric, everything else is rendered with String.
func (v Value) Cell() interface{} {
	if v.Kind != Scalar {
		return v.String()
	}
	switch s := v.Scalar.(type) {
	case nil:
		return ""
	case json.Number:
		if i, err := s.Int64(); err == nil {
			return i
		}
		if f, err := s.Float64(); err == nil {
			return f
		}
		return s.String()
	default:
		return s
	}
}
