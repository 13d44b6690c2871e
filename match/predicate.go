package match

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Predicate is a named test applied to the value selected by a path expression.
type Predicate struct {
	Description string
	test        func(ldvalue.Value) bool
}

// NewPredicate wraps an arbitrary test function. The description is used in failure messages.
func NewPredicate(description string, test func(ldvalue.Value) bool) Predicate {
	return Predicate{Description: description, test: test}
}

// Check returns nil if the predicate holds for v.
func (p Predicate) Check(v ldvalue.Value) error {
	if p.test != nil && p.test(v) {
		return nil
	}
	return &Mismatch{
		Path:    "$",
		Message: fmt.Sprintf("expected value to satisfy %q, got %s", p.Description, v.JSONString()),
	}
}

func (p Predicate) String() string { return p.Description }

// Exists holds for any value, including null. Its only effect is to require that the path exists.
func Exists() Predicate {
	return NewPredicate("exists", func(ldvalue.Value) bool { return true })
}

// NotEmpty holds for non-empty arrays, strings and objects, and for any other non-null value.
func NotEmpty() Predicate {
	return NewPredicate("not empty", func(v ldvalue.Value) bool {
		if v.IsNull() {
			return false
		}
		n, ok := LengthOf(v)
		return !ok || n > 0
	})
}

// Empty is the negation of NotEmpty.
func Empty() Predicate {
	notEmpty := NotEmpty()
	return NewPredicate("empty", func(v ldvalue.Value) bool { return !notEmpty.test(v) })
}

// LengthCompare compares the length of an array, string or object using one of the operators
// ==, !=, >, >=, < or <=.
func LengthCompare(op string, n int) Predicate {
	return NewPredicate(fmt.Sprintf("length %s %d", op, n), func(v ldvalue.Value) bool {
		got, ok := LengthOf(v)
		return ok && compareNumbers(op, float64(got), float64(n))
	})
}

// LengthGreaterThan is shorthand for LengthCompare(">", n).
func LengthGreaterThan(n int) Predicate { return LengthCompare(">", n) }

// NumberCompare compares a numeric value using one of the operators ==, !=, >, >=, < or <=.
func NumberCompare(op string, n float64) Predicate {
	return NewPredicate(fmt.Sprintf("%s %s", op, formatNumber(n)), func(v ldvalue.Value) bool {
		return v.IsNumber() && compareNumbers(op, v.Float64Value(), n)
	})
}

// GreaterThan holds for numbers strictly greater than n.
func GreaterThan(n float64) Predicate {
	return NumberCompare(">", n)
}

// AtLeast holds for numbers greater than or equal to n.
func AtLeast(n float64) Predicate {
	return NumberCompare(">=", n)
}

// LessThan holds for numbers strictly less than n.
func LessThan(n float64) Predicate {
	return NumberCompare("<", n)
}

// AtMost holds for numbers less than or equal to n.
func AtMost(n float64) Predicate {
	return NumberCompare("<=", n)
}

// EqualTo holds if the value equals expected exactly.
func EqualTo(expected interface{}) Predicate {
	want := MustFromGo(expected)
	return NewPredicate("== "+want.JSONString(), func(v ldvalue.Value) bool { return v.Equal(want) })
}

// NotEqualTo is the negation of EqualTo.
func NotEqualTo(expected interface{}) Predicate {
	want := MustFromGo(expected)
	return NewPredicate("!= "+want.JSONString(), func(v ldvalue.Value) bool { return !v.Equal(want) })
}

// IsType holds if the value has the given JSON type.
func IsType(t ldvalue.ValueType) Predicate {
	return NewPredicate("type == "+t.String(), func(v ldvalue.Value) bool { return v.Type() == t })
}

// MatchesRegex holds for strings that match rx.
func MatchesRegex(rx *regexp.Regexp) Predicate {
	return NewPredicate("matches "+rx.String(), func(v ldvalue.Value) bool {
		return v.IsString() && rx.MatchString(v.StringValue())
	})
}

// ContainsString holds for strings containing s, and for arrays with an element equal to s.
func ContainsString(s string) Predicate {
	return NewPredicate(fmt.Sprintf("contains %q", s), func(v ldvalue.Value) bool {
		switch v.Type() {
		case ldvalue.StringType:
			return strings.Contains(v.StringValue(), s)
		case ldvalue.ArrayType:
			for i := 0; i < v.Count(); i++ {
				if e := v.GetByIndex(i); e.IsString() && e.StringValue() == s {
					return true
				}
			}
		}
		return false
	})
}

// OneOf holds if the value equals any of the candidates.
func OneOf(candidates ...interface{}) Predicate {
	values := make([]ldvalue.Value, 0, len(candidates))
	descs := make([]string, 0, len(candidates))
	for _, c := range candidates {
		v := MustFromGo(c)
		values = append(values, v)
		descs = append(descs, v.JSONString())
	}
	return NewPredicate("one of ["+strings.Join(descs, ", ")+"]", func(v ldvalue.Value) bool {
		for _, c := range values {
			if v.Equal(c) {
				return true
			}
		}
		return false
	})
}

var comparisonOps = []string{">=", "<=", "==", "!=", ">", "<"} // two-character operators first

// ParsePredicate parses the textual predicate forms:
//
//	exists
//	empty | not empty
//	length OP N
//	OP N              (numeric comparison)
//	== VALUE | != VALUE  (VALUE is a JSON literal, or a bare word taken as a string)
//	type == string|number|boolean|array|object|null
//	matches REGEX     (REGEX may be wrapped in slashes)
//	contains TEXT     (TEXT may be quoted)
//
// OP is one of ==, !=, >, >=, < or <=.
func ParsePredicate(expr string) (Predicate, error) {
	s := strings.TrimSpace(expr)
	lower := strings.ToLower(s)
	switch lower {
	case "exists":
		return Exists(), nil
	case "empty":
		return Empty(), nil
	case "not empty", "notempty", "!empty":
		return NotEmpty(), nil
	}

	if rest, ok := cutWord(s, "length"); ok {
		op, operand, err := splitOperator(rest, expr)
		if err != nil {
			return Predicate{}, err
		}
		n, err := strconv.Atoi(operand)
		if err != nil {
			return Predicate{}, fmt.Errorf("%w: length must be compared to an integer in %q", ErrInvalidPredicate, expr)
		}
		return LengthCompare(op, n), nil
	}

	if rest, ok := cutWord(s, "type"); ok {
		op, operand, err := splitOperator(rest, expr)
		if err != nil {
			return Predicate{}, err
		}
		t, ok := parseValueType(operand)
		if !ok || (op != "==" && op != "!=") {
			return Predicate{}, fmt.Errorf("%w: bad type comparison %q", ErrInvalidPredicate, expr)
		}
		if op == "!=" {
			return NewPredicate("type != "+t.String(), func(v ldvalue.Value) bool { return v.Type() != t }), nil
		}
		return IsType(t), nil
	}

	if rest, ok := cutWord(s, "matches"); ok {
		pattern := rest
		if len(pattern) >= 2 && strings.HasPrefix(pattern, "/") && strings.HasSuffix(pattern, "/") {
			pattern = pattern[1 : len(pattern)-1]
		}
		rx, err := regexp.Compile(pattern)
		if err != nil {
			return Predicate{}, fmt.Errorf("%w: %s", ErrInvalidPredicate, err)
		}
		return MatchesRegex(rx), nil
	}

	if rest, ok := cutWord(s, "contains"); ok {
		if unquoted, err := strconv.Unquote(rest); err == nil {
			rest = unquoted
		}
		if rest == "" {
			return Predicate{}, fmt.Errorf("%w: nothing to look for in %q", ErrInvalidPredicate, expr)
		}
		return ContainsString(rest), nil
	}

	op, operand, err := splitOperator(s, expr)
	if err != nil {
		return Predicate{}, err
	}
	if n, err := strconv.ParseFloat(operand, 64); err == nil {
		return NumberCompare(op, n), nil
	}
	if op != "==" && op != "!=" {
		return Predicate{}, fmt.Errorf("%w: %s needs a numeric operand in %q", ErrInvalidPredicate, op, expr)
	}
	var literal interface{} = operand
	if json.Valid([]byte(operand)) {
		literal = ldvalue.Parse([]byte(operand))
	}
	if op == "!=" {
		return NotEqualTo(literal), nil
	}
	return EqualTo(literal), nil
}

// MustParsePredicate is like ParsePredicate but panics on error.
func MustParsePredicate(expr string) Predicate {
	p, err := ParsePredicate(expr)
	if err != nil {
		panic(err)
	}
	return p
}

func cutWord(s, word string) (string, bool) {
	if len(s) <= len(word) || !strings.EqualFold(s[:len(word)], word) {
		return "", false
	}
	rest := s[len(word):]
	if rest[0] != ' ' && rest[0] != '\t' {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

func splitOperator(s, expr string) (op, operand string, err error) {
	for _, candidate := range comparisonOps {
		if strings.HasPrefix(s, candidate) {
			operand = strings.TrimSpace(s[len(candidate):])
			if operand == "" {
				return "", "", fmt.Errorf("%w: missing operand in %q", ErrInvalidPredicate, expr)
			}
			return candidate, operand, nil
		}
	}
	return "", "", fmt.Errorf("%w: unrecognized expression %q", ErrInvalidPredicate, expr)
}

func compareNumbers(op string, a, b float64) bool {
	switch op {
	case "==":
		return a == b
	case "!=":
		return a != b
	case ">":
		return a > b
	case ">=":
		return a >= b
	case "<":
		return a < b
	case "<=":
		return a <= b
	}
	return false
}

func parseValueType(name string) (ldvalue.ValueType, bool) {
	for _, t := range []ldvalue.ValueType{
		ldvalue.NullType, ldvalue.BoolType, ldvalue.NumberType,
		ldvalue.StringType, ldvalue.ArrayType, ldvalue.ObjectType,
	} {
		if strings.EqualFold(t.String(), name) {
			return t, true
		}
	}
	if strings.EqualFold(name, "boolean") {
		return ldvalue.BoolType, true
	}
	return ldvalue.NullType, false
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
