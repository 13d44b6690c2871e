package match

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// ParseSchema reads a JSON Schema document in the OpenAPI 3 dialect.
func ParseSchema(data []byte) (*openapi3.Schema, error) {
	var schema openapi3.Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return &schema, nil
}

// SchemaFromGo builds a schema from a Go literal such as a map, by way of its JSON encoding.
func SchemaFromGo(v interface{}) (*openapi3.Schema, error) {
	if s, ok := v.(*openapi3.Schema); ok {
		return s, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return ParseSchema(data)
}

// Schema validates actual against a schema. The first violation found is reported, located by
// its JSON pointer within the document.
func Schema(actual ldvalue.Value, schema *openapi3.Schema) error {
	if schema == nil {
		return errors.New("no schema was provided")
	}
	err := schema.VisitJSON(actual.AsArbitraryValue())
	if err == nil {
		return nil
	}
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		pointer := schemaErr.JSONPointer()
		path := "$"
		if len(pointer) > 0 {
			path = "/" + strings.Join(pointer, "/")
		}
		reason := schemaErr.Reason
		if reason == "" {
			reason = schemaErr.Error()
		}
		return &Mismatch{Path: path, Message: "schema violation: " + reason}
	}
	return &Mismatch{Path: "$", Message: "schema violation: " + err.Error()}
}
