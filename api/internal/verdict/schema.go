package verdict

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed assessment.schema.json
var schemaJSON string

var schemaLoader = gojsonschema.NewStringLoader(schemaJSON)

// Schema returns a fresh copy of the record JSON schema, e.g. for an upstream
// structured-output request. Callers may mutate the result.
func Schema() map[string]any {
	var m map[string]any
	if err := json.Unmarshal([]byte(schemaJSON), &m); err != nil {
		panic("verdict: embedded schema is invalid: " + err.Error())
	}
	return m
}

// Conforms checks an outgoing record against the record schema.
func Conforms(r Record) error {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("verdict: encode record: %w", err)
	}
	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(b))
	if err != nil {
		return fmt.Errorf("verdict: schema check: %w", err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, d := range res.Errors() {
		msgs = append(msgs, d.String())
	}
	return fmt.Errorf("verdict: record violates schema: %s", strings.Join(msgs, "; "))
}
