package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ogulcanaydogan/gqlrecover/internal/hash"
	"github.com/ogulcanaydogan/gqlrecover/internal/introspect"
	"github.com/ogulcanaydogan/gqlrecover/internal/jsast"
	"github.com/ogulcanaydogan/gqlrecover/internal/navigate"
	"github.com/ogulcanaydogan/gqlrecover/internal/operations"
	"github.com/ogulcanaydogan/gqlrecover/internal/sdl"
	"github.com/ogulcanaydogan/gqlrecover/pkg/types"
)

// parseStage names syntax failures of the chunk module.
const parseStage = "extract"

// ErrNondeterministic is returned when repeated extraction of the same
// chunk renders different text.
var ErrNondeterministic = errors.New("determinism check failed")

type ExtractOptions struct {
	IncludeAllKinds bool
	ScalarNames     bool
	// DeterminismCheck > 1 repeats the extraction that many times in
	// total and requires identical digests.
	DeterminismCheck int
	Logger           *slog.Logger
}

// Extraction is the data recovered from one chunk and its rendering.
type Extraction struct {
	ChunkURL    string                    `json:"chunk_url"`
	ChunkDigest string                    `json:"chunk_digest"`
	Operations  []types.OperationDocument `json:"operations"`
	Types       types.SchemaTypes         `json:"-"`
	Queries     string                    `json:"-"`
	Schema      string                    `json:"-"`
	// Digest covers both rendered texts; repeated runs must agree on it.
	Digest string `json:"digest"`
}

// Extract parses the chunk, walks the fixed paths and renders both
// artifacts.
func Extract(ctx context.Context, src types.ModuleSource, opts ExtractOptions) (*Extraction, error) {
	first, err := extractOnce(ctx, src, opts)
	if err != nil {
		return nil, err
	}
	quiet := opts
	quiet.Logger = slog.New(slog.DiscardHandler)
	for i := 1; i < opts.DeterminismCheck; i++ {
		again, err := extractOnce(ctx, src, quiet)
		if err != nil {
			return nil, err
		}
		if again.Digest != first.Digest {
			return nil, fmt.Errorf("%w: run %d: %s != %s", ErrNondeterministic, i+1, again.Digest, first.Digest)
		}
	}
	return first, nil
}

func extractOnce(ctx context.Context, src types.ModuleSource, opts ExtractOptions) (*Extraction, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tree, err := jsast.Parse(ctx, parseStage, src.Text)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	sections, err := navigate.Locate(tree.Root())
	if err != nil {
		return nil, err
	}
	docs, err := operations.Extract(sections.Operations, logger)
	if err != nil {
		return nil, err
	}
	decls, err := introspect.Parse(sections.Types, introspect.Options{IncludeAllKinds: opts.IncludeAllKinds, Logger: logger})
	if err != nil {
		return nil, err
	}

	ex := &Extraction{
		ChunkURL:    src.URL,
		ChunkDigest: hash.String(src.Text),
		Operations:  docs,
		Types:       decls,
		Queries:     operations.Join(docs),
		Schema:      sdl.Render(decls, sdl.Options{ScalarNames: opts.ScalarNames}),
	}
	ex.Digest, err = hash.CanonicalDigest(map[string]string{
		"queries": ex.Queries,
		"schema":  ex.Schema,
	})
	if err != nil {
		return nil, err
	}
	return ex, nil
}
