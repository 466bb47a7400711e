// Package jsonpath models decoded JSON as a tagged value and resolves dotted or
// indexed field paths against it ("data.url", "data.links[0].href", "files.0").
package jsonpath

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// Kind is the JSON type held by a Value.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "null"
	}
}

// Value is one node of a JSON document. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	num  json.Number
	str  string
	arr  []Value
	obj  map[string]Value
}

// Parse decodes a single JSON document. Numbers keep their textual form.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Value{}, fmt.Errorf("decode json: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Value{}, fmt.Errorf("decode json: trailing data after document")
	}
	return FromAny(raw), nil
}

// FromAny converts the output of encoding/json (decoded into any) to a Value.
func FromAny(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return Value{}
	case bool:
		return Value{kind: Bool, b: t}
	case json.Number:
		return Value{kind: Number, num: t}
	case float64:
		return Value{kind: Number, num: json.Number(strconv.FormatFloat(t, 'f', -1, 64))}
	case string:
		return Value{kind: String, str: t}
	case []any:
		arr := make([]Value, len(t))
		for i, item := range t {
			arr[i] = FromAny(item)
		}
		return Value{kind: Array, arr: arr}
	case map[string]any:
		obj := make(map[string]Value, len(t))
		for k, item := range t {
			obj[k] = FromAny(item)
		}
		return Value{kind: Object, obj: obj}
	default:
		return Value{}
	}
}

// Kind returns the JSON type of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is JSON null.
func (v Value) IsNull() bool { return v.kind == Null }

// Len returns the element count for arrays and objects, zero otherwise.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.arr)
	case Object:
		return len(v.obj)
	default:
		return 0
	}
}

// Field returns the member key of an object.
func (v Value) Field(key string) (Value, bool) {
	if v.kind != Object {
		return Value{}, false
	}
	item, ok := v.obj[key]
	return item, ok
}

// Index returns element i of an array.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != Array || i < 0 || i >= len(v.arr) {
		return Value{}, false
	}
	return v.arr[i], true
}

// String renders a leaf as plain text: strings unquoted, numbers in their source
// form, booleans as true/false, null as "". Arrays and objects render as JSON.
func (v Value) String() string {
	switch v.kind {
	case String:
		return v.str
	case Number:
		return v.num.String()
	case Bool:
		return strconv.FormatBool(v.b)
	case Array, Object:
		data, err := json.Marshal(v.toAny())
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return ""
	}
}

func (v Value) toAny() any {
	switch v.kind {
	case Bool:
		return v.b
	case Number:
		return v.num
	case String:
		return v.str
	case Array:
		out := make([]any, len(v.arr))
		for i, item := range v.arr {
			out[i] = item.toAny()
		}
		return out
	case Object:
		out := make(map[string]any, len(v.obj))
		for k, item := range v.obj {
			out[k] = item.toAny()
		}
		return out
	default:
		return nil
	}
}
