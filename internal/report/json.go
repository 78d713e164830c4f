package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ogulcanaydogan/gqlrecover/pkg/schema"
)

// Validate checks r against the embedded run report schema.
func Validate(r Report) error {
	// Round-trip through JSON so the schema sees the serialized shape.
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode report: %w", err)
	}
	errs, err := schema.ValidateRunReport(doc)
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		return fmt.Errorf("report does not match schema: %s", strings.Join(errs, "; "))
	}
	return nil
}

// MarshalJSON validates r and returns it indented.
func MarshalJSON(r Report) ([]byte, error) {
	if err := Validate(r); err != nil {
		return nil, err
	}
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(raw, '\n'), nil
}

func WriteJSON(path string, r Report) error {
	raw, err := MarshalJSON(r)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

// ReadJSON loads and validates a report written by WriteJSON.
func ReadJSON(path string) (Report, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Report{}, err
	}
	var r Report
	if err := json.Unmarshal(raw, &r); err != nil {
		return Report{}, fmt.Errorf("parse report %s: %w", path, err)
	}
	if err := Validate(r); err != nil {
		return Report{}, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}
