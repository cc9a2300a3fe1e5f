package prediction

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const payloadSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["home_points", "away_points"],
  "properties": {
    "home_points":   {"type": "array", "items": {"type": ["number", "string", "boolean", "null"]}},
    "away_points":   {"type": "array", "items": {"type": ["number", "string", "boolean", "null"]}},
    "scatter_color": {"type": "array", "items": {"type": "string"}},
    "est_win_pct":   {"type": ["number", "string"]},
    "spread":        {"type": ["number", "string"]},
    "over_under":    {"type": ["number", "string"]}
  }
}`

var (
	schemaOnce     sync.Once
	schemaCompiled *jsonschema.Schema
	schemaErr      error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("prediction_payload.json", strings.NewReader(payloadSchema)); err != nil {
			schemaErr = err
			return
		}
		schemaCompiled, schemaErr = compiler.Compile("prediction_payload.json")
	})
	return schemaCompiled, schemaErr
}

// validateShape checks the payload structure; element-level numeric checks
// happen while parsing so the error can name the offending index.
func validateShape(raw []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return payloadErr("", -1, "schema unavailable", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return payloadErr("", -1, "invalid json", err)
	}
	if err := schema.Validate(doc); err != nil {
		field, index := schemaLocation(err)
		return payloadErr(field, index, "schema violation", err)
	}
	return nil
}

// schemaLocation turns the deepest instance location ("/home_points/3") into field and index.
func schemaLocation(err error) (string, int) {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return "", -1
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	parts := strings.Split(strings.TrimPrefix(ve.InstanceLocation, "/"), "/")
	field := parts[0]
	index := -1
	if len(parts) > 1 {
		n := 0
		for _, r := range parts[1] {
			if r < '0' || r > '9' {
				return field, -1
			}
			n = n*10 + int(r-'0')
		}
		index = n
	}
	return field, index
}
