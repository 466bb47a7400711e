package jsonpath

import (
	"fmt"
	"strconv"
	"strings"
)

// Path is a parsed field path. Each segment is a member name or an array index.
type Path []string

// ParsePath splits expr on dots and bracket indexes: "a.b[0].c" and "a.b.0.c" are
// equivalent. An empty expression addresses the root.
func ParsePath(expr string) (Path, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Path{}, nil
	}

	var out Path
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}

	for i := 0; i < len(expr); i++ {
		switch c := expr[i]; c {
		case '.':
			flush()
		case '\\':
			if i+1 < len(expr) {
				i++
				cur.WriteByte(expr[i])
			}
		case '[':
			flush()
			end := strings.IndexByte(expr[i:], ']')
			if end == -1 {
				return nil, fmt.Errorf("field path %q: unclosed '['", expr)
			}
			key := strings.Trim(expr[i+1:i+end], `"'`)
			if key == "" {
				return nil, fmt.Errorf("field path %q: empty index", expr)
			}
			out = append(out, key)
			i += end
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return out, nil
}

// String joins the path back into dotted form.
func (p Path) String() string { return strings.Join(p, ".") }

// Get walks the path from v. Object segments match member names; array
// segments must be decimal indexes.
func (p Path) Get(v Value) (Value, bool) {
	cur := v
	for _, seg := range p {
		switch cur.Kind() {
		case Object:
			next, ok := cur.Field(seg)
			if !ok {
				return Value{}, false
			}
			cur = next
		case Array:
			i, err := strconv.Atoi(seg)
			if err != nil {
				return Value{}, false
			}
			next, ok := cur.Index(i)
			if !ok {
				return Value{}, false
			}
			cur = next
		default:
			return Value{}, false
		}
	}
	return cur, true
}

// Lookup parses expr and resolves it against v. An invalid expression never
// resolves.
func Lookup(v Value, expr string) (Value, bool) {
	p, err := ParsePath(expr)
	if err != nil {
		return Value{}, false
	}
	return p.Get(v)
}
