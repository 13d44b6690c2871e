package match

import (
	"fmt"
	"unicode/utf8"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// LengthOf returns the element count of an array, the number of characters in a string, or the
// number of keys in an object. Other types have no length.
func LengthOf(v ldvalue.Value) (int, bool) {
	switch v.Type() {
	case ldvalue.ArrayType:
		return v.Count(), true
	case ldvalue.ObjectType:
		return len(v.Keys()), true
	case ldvalue.StringType:
		return utf8.RuneCountInString(v.StringValue()), true
	default:
		return 0, false
	}
}

// Length requires actual to have exactly n elements, characters, or keys.
func Length(actual ldvalue.Value, n int) error {
	got, ok := LengthOf(actual)
	if !ok {
		return &Mismatch{
			Path:    "$",
			Message: fmt.Sprintf("expected a value with length %d, got %s which has no length", n, actual.Type()),
		}
	}
	if got != n {
		return &Mismatch{
			Path:    "$",
			Message: fmt.Sprintf("expected length %d, got %d", n, got),
		}
	}
	return nil
}
