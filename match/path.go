package match

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// PathElement is one step of a Path: either an object key or an array index.
type PathElement struct {
	Key     string
	Index   int
	IsIndex bool
}

// Path is a parsed path expression such as "data[0].id".
type Path []PathElement

// ParsePath parses a dotted/bracket path expression. A leading "$" or "$." is optional, and
// "", "." and "$" all select the whole document. Keys that contain dots can be written in
// brackets with quotes, as in `headers["x.y"]`. Negative indexes count from the end of an array.
func ParsePath(expr string) (Path, error) {
	rest := strings.TrimSpace(expr)
	rest = strings.TrimPrefix(rest, "$")
	if rest == "" || rest == "." {
		return Path{}, nil
	}
	rest = strings.TrimPrefix(rest, ".")

	var path Path
	for len(rest) > 0 {
		switch rest[0] {
		case '[':
			end := strings.Index(rest, "]")
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated bracket in %q", ErrInvalidPath, expr)
			}
			inner := rest[1:end]
			rest = rest[end+1:]
			if unquoted, ok := unquoteKey(inner); ok {
				path = append(path, PathElement{Key: unquoted})
			} else {
				n, err := strconv.Atoi(inner)
				if err != nil {
					return nil, fmt.Errorf("%w: bad array index %q in %q", ErrInvalidPath, inner, expr)
				}
				path = append(path, PathElement{Index: n, IsIndex: true})
			}
			if rest != "" && rest[0] != '.' && rest[0] != '[' {
				return nil, fmt.Errorf("%w: unexpected %q after bracket in %q", ErrInvalidPath, rest, expr)
			}
			if strings.HasPrefix(rest, ".") {
				rest = rest[1:]
				if rest == "" {
					return nil, fmt.Errorf("%w: trailing dot in %q", ErrInvalidPath, expr)
				}
			}
		default:
			end := strings.IndexAny(rest, ".[")
			var key string
			if end < 0 {
				key, rest = rest, ""
			} else {
				key, rest = rest[:end], rest[end:]
			}
			if key == "" {
				return nil, fmt.Errorf("%w: empty key in %q", ErrInvalidPath, expr)
			}
			path = append(path, PathElement{Key: key})
			if strings.HasPrefix(rest, ".") {
				rest = rest[1:]
				if rest == "" {
					return nil, fmt.Errorf("%w: trailing dot in %q", ErrInvalidPath, expr)
				}
			}
		}
	}
	return path, nil
}

func unquoteKey(s string) (string, bool) {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1], true
	}
	return "", false
}

func (p Path) String() string {
	var b strings.Builder
	for i, e := range p {
		switch {
		case e.IsIndex:
			fmt.Fprintf(&b, "[%d]", e.Index)
		case strings.ContainsAny(e.Key, ".[]"):
			fmt.Fprintf(&b, "[%q]", e.Key)
		default:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(e.Key)
		}
	}
	return b.String()
}

// Get selects the value at the path. If some element does not exist, the error wraps
// ErrPathNotFound and names the deepest element that did.
func (p Path) Get(doc ldvalue.Value) (ldvalue.Value, error) {
	current := doc
	for i, e := range p {
		if e.IsIndex {
			if current.Type() != ldvalue.ArrayType {
				return ldvalue.Null(), p.notFound(i, fmt.Sprintf("expected an array but found %s", current.Type()))
			}
			idx := e.Index
			if idx < 0 {
				idx += current.Count()
			}
			if idx < 0 || idx >= current.Count() {
				return ldvalue.Null(), p.notFound(i, fmt.Sprintf("index %d out of range for array of length %d", e.Index, current.Count()))
			}
			current = current.GetByIndex(idx)
			continue
		}
		if current.Type() != ldvalue.ObjectType {
			return ldvalue.Null(), p.notFound(i, fmt.Sprintf("expected an object but found %s", current.Type()))
		}
		if !hasKey(current, e.Key) {
			return ldvalue.Null(), p.notFound(i, fmt.Sprintf("no key %q", e.Key))
		}
		current = current.GetByKey(e.Key)
	}
	return current, nil
}

func (p Path) notFound(failedAt int, reason string) error {
	return fmt.Errorf("%w: %s (%s at %s)", ErrPathNotFound, displayPath(p.String()), reason, displayPath(p[:failedAt].String()))
}

// Lookup parses expr and selects the value it refers to in doc.
func Lookup(doc ldvalue.Value, expr string) (ldvalue.Value, error) {
	p, err := ParsePath(expr)
	if err != nil {
		return ldvalue.Null(), err
	}
	return p.Get(doc)
}
