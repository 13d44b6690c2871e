package contract

import (
	"fmt"

	"github.com/rafafrassetto/http-contract-tests/store"
)

// Capture copies a value from a response body into the store. A Path of "." or "$" captures the
// whole body.
type Capture struct {
	Path string
	Name string
}

func (c Capture) String() string {
	return fmt.Sprintf("capture %s as %s", c.Path, c.Name)
}

// Apply performs the capture. The store is not changed if the value cannot be extracted.
func (c Capture) Apply(record *ResponseRecord, vars *store.Store) error {
	if record == nil {
		return fmt.Errorf("%s: %w", c, ErrNotDispatched)
	}
	v, err := record.Lookup(c.Path)
	if err != nil {
		return fmt.Errorf("%s: %w", c, err)
	}
	vars.Set(c.Name, v)
	return nil
}

// ApplyCaptures applies every capture in order, continuing past failures, and returns the
// errors of those that failed.
func ApplyCaptures(captures []Capture, record *ResponseRecord, vars *store.Store) []error {
	var errs []error
	for _, c := range captures {
		if err := c.Apply(record, vars); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
