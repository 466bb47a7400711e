package upload

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"git.home.luguber.info/inful/imgup/internal/foundation/errors"
)

// FileSentinel marks the template field that receives the image bytes.
const FileSentinel = "$FILE"

// DefaultBody is the template used when none is configured.
const DefaultBody = `{"image": "$FILE"}`

// Field is one entry of a body template.
type Field struct {
	Name  string
	Value string
	// File is set when Value is the file sentinel.
	File bool
}

// Template is an ordered list of multipart fields.
type Template struct {
	Fields []Field
}

// ParseTemplate parses a JSON object into a Template, keeping member order.
func ParseTemplate(raw string) (Template, error) {
	if strings.TrimSpace(raw) == "" {
		raw = DefaultBody
	}
	pairs, err := parseObject(raw)
	if err != nil {
		return Template{}, errors.ParseError("invalid upload body template").
			WithCause(err).
			Build()
	}
	t := Template{Fields: make([]Field, 0, len(pairs))}
	for _, p := range pairs {
		t.Fields = append(t.Fields, Field{Name: p.key, Value: p.value, File: p.value == FileSentinel})
	}
	return t, nil
}

// HasFile reports whether at least one field receives the file.
func (t Template) HasFile() bool {
	for _, f := range t.Fields {
		if f.File {
			return true
		}
	}
	return false
}

// ParseHeaders parses a JSON object of request headers. Non-string values are
// kept as their JSON text. An empty input yields no headers.
func ParseHeaders(raw string) (map[string]string, error) {
	out := make(map[string]string)
	if strings.TrimSpace(raw) == "" {
		return out, nil
	}
	pairs, err := parseObject(raw)
	if err != nil {
		return nil, errors.ParseError("invalid upload headers").
			WithCause(err).
			Build()
	}
	for _, p := range pairs {
		out[p.key] = p.value
	}
	return out, nil
}

type pair struct {
	key   string
	value string
}

// parseObject reads a flat view of a JSON object in source order. Nested
// values are flattened to compact JSON text. A repeated key keeps its first
// position and its last value.
func parseObject(raw string) ([]pair, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.ParseError("expected a JSON object").Build()
	}

	var out []pair
	seen := make(map[string]int)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyTok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		text, err := scalarText(value)
		if err != nil {
			return nil, err
		}
		if i, ok := seen[key]; ok {
			out[i].value = text
			continue
		}
		seen[key] = len(out)
		out = append(out, pair{key: key, value: text})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.ParseError("unexpected data after JSON object").Build()
	}
	return out, nil
}

func scalarText(raw json.RawMessage) (string, error) {
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", err
	}
	return buf.String(), nil
}
