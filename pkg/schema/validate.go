// Package schema validates run reports against the JSON Schema shipped
// inside the binary.
package schema

import (
	_ "embed"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed run_report.schema.json
var runReportSchema []byte

// RunReport returns the embedded run report schema.
func RunReport() []byte { return runReportSchema }

// Validate checks doc against a schema document and returns one message
// per violation. A nil slice means the document is valid; err is set
// only when the schema itself cannot be loaded.
func Validate(schema []byte, doc any) ([]string, error) {
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}
	errs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, e.String())
	}
	return errs, nil
}

// ValidateRunReport validates doc against the embedded run report schema.
func ValidateRunReport(doc any) ([]string, error) {
	return Validate(runReportSchema, doc)
}
