package schema

import (
	"encoding/json"
	"strings"
	"testing"
)

const digest = "sha256:e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

func validReport() map[string]any {
	return map[string]any{
		"schema_version": "1",
		"run_id":         "0b8f4a8e-5a1c-4f7e-9b9a-2f1d3c4b5a69",
		"generated_at":   "2026-10-14T09:30:00Z",
		"generator":      map[string]any{"name": "gqlrecover", "version": "dev"},
		"source": map[string]any{
			"base_url":     "https://voidpet.com",
			"build_id":     "Xy9_build",
			"chunk_id":     "5308",
			"chunk_url":    "https://voidpet.com/_next/static/chunks/5308-3c4d5e.js",
			"chunk_digest": digest,
			"offline":      false,
		},
		"index": map[string]any{"manifest_keys": 2, "chunk_ids": 4, "collision_policy": "first-wins", "collisions": []any{}},
		"operations": map[string]any{
			"count":     1,
			"by_kind":   map[string]any{"query": 1},
			"documents": []any{map[string]any{"kind": "query", "name": "Pet"}},
		},
		"types":       map[string]any{"count": 2, "by_kind": map[string]any{"OBJECT": 2}},
		"artifacts":   []any{map[string]any{"name": "schema.graphql", "path": "out/schema.graphql", "digest": digest, "size_bytes": 0}},
		"determinism": map[string]any{"runs": 1, "digest": digest},
	}
}

func TestEmbeddedSchemaIsJSON(t *testing.T) {
	var v map[string]any
	if err := json.Unmarshal(RunReport(), &v); err != nil {
		t.Fatalf("embedded schema is not valid JSON: %v", err)
	}
}

func TestValidateRunReport(t *testing.T) {
	errs, err := ValidateRunReport(validReport())
	if err != nil {
		t.Fatal(err)
	}
	if len(errs) != 0 {
		t.Fatalf("report should pass: %v", errs)
	}
}

func TestValidateRunReportViolations(t *testing.T) {
	doc := validReport()
	doc["run_id"] = "not-a-uuid"
	doc["determinism"] = map[string]any{"runs": 0, "digest": "md5:abc"}
	delete(doc, "artifacts")

	errs, err := ValidateRunReport(doc)
	if err != nil {
		t.Fatal(err)
	}
	joined := strings.Join(errs, "\n")
	for _, want := range []string{"run_id", "determinism.runs", "determinism.digest", "artifacts"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected a violation mentioning %s, got:\n%s", want, joined)
		}
	}
}

func TestValidateBrokenSchema(t *testing.T) {
	_, err := Validate([]byte("{"), map[string]any{})
	if err == nil || !strings.Contains(err.Error(), "validate") {
		t.Fatalf("expected schema loader error, got %v", err)
	}
}
