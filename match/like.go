package match

import (
	"fmt"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Like is a partial match. For objects, only the keys present in the pattern are checked and
// extra keys in the actual value are ignored. For arrays, every element of the pattern must be
// like at least one element of the actual array, in any position. Scalars must be equal.
func Like(actual, pattern ldvalue.Value) error {
	return like(actual, pattern, "")
}

func like(actual, pattern ldvalue.Value, path string) error {
	switch pattern.Type() {
	case ldvalue.ObjectType:
		if actual.Type() != ldvalue.ObjectType {
			return typeMismatch(path, pattern, actual)
		}
		for _, key := range sortedKeys(pattern) {
			keyPath := childPath(path, key)
			if !hasKey(actual, key) {
				return &Mismatch{Path: keyPath, Message: "key is missing"}
			}
			if err := like(actual.GetByKey(key), pattern.GetByKey(key), keyPath); err != nil {
				return err
			}
		}
		return nil

	case ldvalue.ArrayType:
		if actual.Type() != ldvalue.ArrayType {
			return typeMismatch(path, pattern, actual)
		}
		for i := 0; i < pattern.Count(); i++ {
			element := pattern.GetByIndex(i)
			if !anyElementLike(actual, element, path) {
				return &Mismatch{
					Path:    indexPath(displayPath(path), i),
					Message: fmt.Sprintf("no element of the actual array is like %s", element.JSONString()),
				}
			}
		}
		return nil

	default:
		if actual.Equal(pattern) {
			return nil
		}
		return &Mismatch{
			Path:    displayPath(path),
			Message: fmt.Sprintf("expected %s, got %s", pattern.JSONString(), actual.JSONString()),
		}
	}
}

func anyElementLike(actual, element ldvalue.Value, path string) bool {
	for j := 0; j < actual.Count(); j++ {
		if like(actual.GetByIndex(j), element, indexPath(path, j)) == nil {
			return true
		}
	}
	return false
}
