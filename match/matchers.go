package match

import (
	"fmt"
	"regexp"
	"sort"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Matcher can be embedded anywhere in a pattern passed to Match to change how that part of
// the actual value is compared.
type Matcher interface {
	MatchValue(actual ldvalue.Value, path string) error
	String() string
}

type partialMatcher struct {
	pattern ldvalue.Value
}

// Partially matches the subtree with Like semantics.
func Partially(pattern interface{}) Matcher {
	return partialMatcher{pattern: MustFromGo(pattern)}
}

func (m partialMatcher) MatchValue(actual ldvalue.Value, path string) error {
	return like(actual, m.pattern, path)
}

func (m partialMatcher) String() string { return "like(" + m.pattern.JSONString() + ")" }

type typeMatcher struct {
	valueType ldvalue.ValueType
}

// TypeOf matches any value with the same JSON type as example.
func TypeOf(example interface{}) Matcher {
	return typeMatcher{valueType: MustFromGo(example).Type()}
}

func (m typeMatcher) MatchValue(actual ldvalue.Value, path string) error {
	if actual.Type() != m.valueType {
		return &Mismatch{
			Path:    displayPath(path),
			Message: fmt.Sprintf("expected any %s, got %s %s", m.valueType, actual.Type(), actual.JSONString()),
		}
	}
	return nil
}

func (m typeMatcher) String() string { return "typeOf(" + m.valueType.String() + ")" }

type regexMatcher struct {
	rx *regexp.Regexp
}

// Regex matches a string value against a regular expression. It panics if expr does not
// compile, since patterns are written as literals in test code.
func Regex(expr string) Matcher {
	return regexMatcher{rx: regexp.MustCompile(expr)}
}

func (m regexMatcher) MatchValue(actual ldvalue.Value, path string) error {
	if actual.Type() != ldvalue.StringType || !m.rx.MatchString(actual.StringValue()) {
		return &Mismatch{
			Path:    displayPath(path),
			Message: fmt.Sprintf("expected a string matching /%s/, got %s", m.rx, actual.JSONString()),
		}
	}
	return nil
}

func (m regexMatcher) String() string { return "regex(" + m.rx.String() + ")" }

type anyMatcher struct{}

// Anything matches every value, including null.
func Anything() Matcher { return anyMatcher{} }

func (anyMatcher) MatchValue(ldvalue.Value, string) error { return nil }

func (anyMatcher) String() string { return "any" }

// Match compares actual against a pattern made of Go maps, slices, scalar values and Matchers.
// Outside of Matchers the comparison is exact, as with Equals: objects must have the same key
// set and arrays the same length and order.
func Match(actual ldvalue.Value, pattern interface{}) error {
	return matchPattern(actual, pattern, "")
}

func matchPattern(actual ldvalue.Value, pattern interface{}, path string) error {
	switch p := pattern.(type) {
	case Matcher:
		return p.MatchValue(actual, path)

	case map[string]interface{}:
		if actual.Type() != ldvalue.ObjectType {
			return typeMismatch(path, ldvalue.ObjectBuild().Build(), actual)
		}
		keys := make([]string, 0, len(p))
		for k := range p {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			keyPath := childPath(path, k)
			if !hasKey(actual, k) {
				return &Mismatch{Path: keyPath, Message: "key is missing"}
			}
			if err := matchPattern(actual.GetByKey(k), p[k], keyPath); err != nil {
				return err
			}
		}
		for _, k := range sortedKeys(actual) {
			if _, ok := p[k]; !ok {
				return &Mismatch{Path: childPath(path, k), Message: "unexpected key"}
			}
		}
		return nil

	case []interface{}:
		if actual.Type() != ldvalue.ArrayType {
			return typeMismatch(path, ldvalue.ArrayOf(), actual)
		}
		if actual.Count() != len(p) {
			return &Mismatch{
				Path:    displayPath(path),
				Message: fmt.Sprintf("expected array of length %d, got length %d", len(p), actual.Count()),
			}
		}
		for i, element := range p {
			if err := matchPattern(actual.GetByIndex(i), element, indexPath(path, i)); err != nil {
				return err
			}
		}
		return nil

	default:
		expected, err := FromGo(pattern)
		if err != nil {
			return err
		}
		if err := Equals(actual, expected); err != nil {
			return &Mismatch{
				Path:    displayPath(path),
				Message: fmt.Sprintf("expected %s, got %s", expected.JSONString(), actual.JSONString()),
			}
		}
		return nil
	}
}
