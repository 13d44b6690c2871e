// Package match compares JSON values against expectations.
//
// All comparisons operate on ldvalue.Value, an immutable JSON value, and return nil on success
// or an error describing the first difference. None of them have side effects, so evaluating
// the same comparison against the same value always gives the same answer.
package match

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

var (
	// ErrNotJSON means a JSON comparison was attempted against a body that was not JSON.
	ErrNotJSON = errors.New("body is not JSON")

	// ErrPathNotFound means a path expression did not select anything.
	ErrPathNotFound = errors.New("path not found")

	// ErrInvalidPath means a path expression could not be parsed.
	ErrInvalidPath = errors.New("invalid path expression")

	// ErrInvalidPredicate means a textual predicate could not be parsed.
	ErrInvalidPredicate = errors.New("invalid predicate expression")
)

// Mismatch describes why an actual value did not satisfy an expectation.
type Mismatch struct {
	// Path locates the offending value, in the notation of the comparison that failed.
	Path string

	Message string

	// Diff is a multi-line "-expected +actual" rendering, if one is available.
	Diff string
}

func (m *Mismatch) Error() string {
	s := m.Message
	if m.Path != "" {
		s = fmt.Sprintf("at %s: %s", m.Path, m.Message)
	}
	if m.Diff != "" {
		s += "\n" + m.Diff
	}
	return s
}

// FromGo converts any JSON-serializable Go value into an ldvalue.Value.
func FromGo(v interface{}) (ldvalue.Value, error) {
	if lv, ok := v.(ldvalue.Value); ok {
		return lv, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ldvalue.Null(), fmt.Errorf("value of type %T is not JSON-serializable: %w", v, err)
	}
	return ldvalue.Parse(data), nil
}

// MustFromGo is like FromGo but panics on error. It is meant for literals in test code.
func MustFromGo(v interface{}) ldvalue.Value {
	lv, err := FromGo(v)
	if err != nil {
		panic(err)
	}
	return lv
}

func hasKey(v ldvalue.Value, key string) bool {
	for _, k := range v.Keys() {
		if k == key {
			return true
		}
	}
	return false
}

func sortedKeys(v ldvalue.Value) []string {
	keys := v.Keys()
	sort.Strings(keys)
	return keys
}

func childPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func indexPath(parent string, i int) string {
	return fmt.Sprintf("%s[%d]", parent, i)
}

func displayPath(path string) string {
	if path == "" {
		return "$"
	}
	return path
}
