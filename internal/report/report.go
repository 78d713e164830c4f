// Package report summarizes one recovery run as JSON and Markdown.
package report

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ogulcanaydogan/gqlrecover/internal/pipeline"
	"github.com/ogulcanaydogan/gqlrecover/pkg/types"
)

const SchemaVersion = "1"

type Report struct {
	SchemaVersion string      `json:"schema_version"`
	RunID         string      `json:"run_id"`
	GeneratedAt   string      `json:"generated_at"`
	Generator     Generator   `json:"generator"`
	Source        Source      `json:"source"`
	Index         *Index      `json:"index,omitempty"`
	Operations    Operations  `json:"operations"`
	Types         Types       `json:"types"`
	Artifacts     []Artifact  `json:"artifacts"`
	Determinism   Determinism `json:"determinism"`
}

type Generator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type Source struct {
	BaseURL     string `json:"base_url,omitempty"`
	BuildID     string `json:"build_id,omitempty"`
	ChunkID     string `json:"chunk_id"`
	ChunkURL    string `json:"chunk_url"`
	ChunkDigest string `json:"chunk_digest"`
	Offline     bool   `json:"offline"`
}

type Index struct {
	ManifestKeys    int               `json:"manifest_keys"`
	ChunkIDs        int               `json:"chunk_ids"`
	CollisionPolicy string            `json:"collision_policy,omitempty"`
	Collisions      []types.Collision `json:"collisions"`
}

type Operations struct {
	Count     int                       `json:"count"`
	ByKind    map[string]int            `json:"by_kind"`
	Documents []types.OperationDocument `json:"documents"`
}

type Types struct {
	Count  int            `json:"count"`
	ByKind map[string]int `json:"by_kind"`
}

// Artifact is one written output file.
type Artifact struct {
	Name   string `json:"name"`
	Path   string `json:"path,omitempty"`
	Digest string `json:"digest"`
	Size   int64  `json:"size_bytes"`
}

type Determinism struct {
	Runs   int    `json:"runs"`
	Digest string `json:"digest"`
}

// Meta is run context that the pipeline result does not carry.
type Meta struct {
	BaseURL         string
	CollisionPolicy types.CollisionPolicy
	DeterminismRuns int
	Version         string
	Now             time.Time
}

// Build assembles the report of a finished run. A result without a
// build id came from an offline chunk and has no index section.
func Build(res *pipeline.Result, artifacts []Artifact, meta Meta) Report {
	now := meta.Now
	if now.IsZero() {
		now = time.Now()
	}
	version := meta.Version
	if version == "" {
		version = "dev"
	}
	runs := meta.DeterminismRuns
	if runs < 1 {
		runs = 1
	}
	offline := res.BuildID == ""

	r := Report{
		SchemaVersion: SchemaVersion,
		RunID:         uuid.NewString(),
		GeneratedAt:   now.UTC().Format(time.RFC3339),
		Generator:     Generator{Name: "gqlrecover", Version: version},
		Source: Source{
			ChunkID:     res.ChunkID,
			ChunkURL:    res.ChunkURL,
			ChunkDigest: res.ChunkDigest,
			Offline:     offline,
		},
		Operations: Operations{
			Count:     len(res.Operations),
			ByKind:    map[string]int{},
			Documents: res.Operations,
		},
		Types:       Types{Count: len(res.Types), ByKind: map[string]int{}},
		Artifacts:   artifacts,
		Determinism: Determinism{Runs: runs, Digest: res.Digest},
	}
	if r.Operations.Documents == nil {
		r.Operations.Documents = []types.OperationDocument{}
	}
	if r.Artifacts == nil {
		r.Artifacts = []Artifact{}
	}
	if !offline {
		r.Source.BaseURL = meta.BaseURL
		r.Source.BuildID = string(res.BuildID)
		collisions := res.Index.Collisions
		if collisions == nil {
			collisions = []types.Collision{}
		}
		r.Index = &Index{
			ManifestKeys:    len(res.Manifest),
			ChunkIDs:        len(res.Index.Paths),
			CollisionPolicy: string(meta.CollisionPolicy),
			Collisions:      collisions,
		}
	}
	for _, d := range res.Operations {
		r.Operations.ByKind[d.Kind]++
	}
	for kind, n := range res.Types.CountByKind() {
		r.Types.ByKind[string(kind)] = n
	}
	return r
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
