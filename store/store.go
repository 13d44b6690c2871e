// Package store holds the variables that specs capture from responses and reference in later
// requests with $S{name} placeholders.
package store

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/rafafrassetto/http-contract-tests/match"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// ErrUndefinedVariable is matched by errors.Is for any UndefinedVariableError.
var ErrUndefinedVariable = errors.New("undefined variable")

// UndefinedVariableError is returned when a placeholder refers to a name that was never set.
type UndefinedVariableError struct {
	Name string
}

func (e UndefinedVariableError) Error() string {
	return fmt.Sprintf("undefined variable %q", e.Name)
}

func (e UndefinedVariableError) Is(target error) bool {
	return target == ErrUndefinedVariable
}

var placeholderRegex = regexp.MustCompile(`\$S\{([^}]+)\}`)

// Store is a set of named JSON values. It is safe for concurrent use; a value written by Set is
// visible to every Get that starts after Set returns.
type Store struct {
	values map[string]ldvalue.Value
	lock   sync.RWMutex
}

// New returns an empty store.
func New() *Store {
	return &Store{values: make(map[string]ldvalue.Value)}
}

// Set stores a value, replacing any previous value for the same name.
func (s *Store) Set(name string, value ldvalue.Value) {
	s.lock.Lock()
	s.values[name] = value
	s.lock.Unlock()
}

// Get returns a stored value. If there is no value with exactly this name and the name contains
// dots, the part before the first dot is looked up and the rest is treated as a path inside it,
// so "user.id" can refer to the "id" property of a captured "user" object.
func (s *Store) Get(name string) (ldvalue.Value, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.getLocked(name)
}

func (s *Store) getLocked(name string) (ldvalue.Value, error) {
	if v, ok := s.values[name]; ok {
		return v, nil
	}
	if root, rest, found := strings.Cut(name, "."); found {
		if v, ok := s.values[root]; ok {
			if inner, err := match.Lookup(v, rest); err == nil {
				return inner, nil
			}
		}
	}
	return ldvalue.Null(), UndefinedVariableError{Name: name}
}

// Has reports whether Get would succeed for the name.
func (s *Store) Has(name string) bool {
	_, err := s.Get(name)
	return err == nil
}

// Delete removes a value. Deleting a name that was never set is not an error.
func (s *Store) Delete(name string) {
	s.lock.Lock()
	delete(s.values, name)
	s.lock.Unlock()
}

// Clear removes all values.
func (s *Store) Clear() {
	s.lock.Lock()
	s.values = make(map[string]ldvalue.Value)
	s.lock.Unlock()
}

// Keys returns the names of all stored values in sorted order.
func (s *Store) Keys() []string {
	s.lock.RLock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	s.lock.RUnlock()
	sort.Strings(keys)
	return keys
}

// Resolve replaces every $S{name} placeholder in the template. String values are substituted
// verbatim and other values as compact JSON. If any placeholder cannot be resolved, the first
// such name is reported.
func (s *Store) Resolve(template string) (string, error) {
	if !strings.Contains(template, "$S{") {
		return template, nil
	}
	s.lock.RLock()
	defer s.lock.RUnlock()

	var firstErr error
	out := placeholderRegex.ReplaceAllStringFunc(template, func(token string) string {
		name := placeholderRegex.FindStringSubmatch(token)[1]
		v, err := s.getLocked(name)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return token
		}
		return Stringify(v)
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// ResolveValue resolves placeholders everywhere in a JSON value, including object keys. A string
// consisting of a single placeholder is replaced by the stored value itself, so that a captured
// number stays a number.
func (s *Store) ResolveValue(v ldvalue.Value) (ldvalue.Value, error) {
	switch v.Type() {
	case ldvalue.StringType:
		str := v.StringValue()
		if m := placeholderRegex.FindStringSubmatch(str); m != nil && m[0] == str {
			return s.Get(m[1])
		}
		resolved, err := s.Resolve(str)
		if err != nil {
			return ldvalue.Null(), err
		}
		return ldvalue.String(resolved), nil

	case ldvalue.ArrayType:
		builder := ldvalue.ArrayBuildWithCapacity(v.Count())
		for i := 0; i < v.Count(); i++ {
			element, err := s.ResolveValue(v.GetByIndex(i))
			if err != nil {
				return ldvalue.Null(), err
			}
			builder.Add(element)
		}
		return builder.Build(), nil

	case ldvalue.ObjectType:
		keys := v.Keys()
		sort.Strings(keys)
		builder := ldvalue.ObjectBuildWithCapacity(len(keys))
		for _, k := range keys {
			resolvedKey, err := s.Resolve(k)
			if err != nil {
				return ldvalue.Null(), err
			}
			element, err := s.ResolveValue(v.GetByKey(k))
			if err != nil {
				return ldvalue.Null(), err
			}
			builder.Set(resolvedKey, element)
		}
		return builder.Build(), nil

	default:
		return v, nil
	}
}

// Placeholder returns the placeholder text that refers to a name.
func Placeholder(name string) string {
	return "$S{" + name + "}"
}

// Stringify renders a value the way it is substituted into text.
func Stringify(v ldvalue.Value) string {
	if v.IsString() {
		return v.StringValue()
	}
	return v.JSONString()
}
