package match

import (
	"fmt"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Equals requires deep equality: objects must have exactly the same keys, arrays must have the
// same elements in the same order, and numbers are compared numerically.
func Equals(actual, expected ldvalue.Value) error {
	if actual.Equal(expected) {
		return nil
	}
	return &Mismatch{
		Message: fmt.Sprintf("expected %s, got %s", expected.JSONString(), actual.JSONString()),
		Diff:    diff(expected, actual),
	}
}

func diff(expected, actual ldvalue.Value) string {
	return "(-expected +actual)\n" + cmp.Diff(expected.AsArbitraryValue(), actual.AsArbitraryValue())
}

func typeMismatch(path string, expected, actual ldvalue.Value) error {
	return &Mismatch{
		Path:    displayPath(path),
		Message: fmt.Sprintf("expected %s, got %s %s", expected.Type(), actual.Type(), actual.JSONString()),
	}
}
