// Package pipeline runs the recovery stages in order: build id, manifest,
// asset index, chunk download, then extraction.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/ogulcanaydogan/gqlrecover/internal/buildid"
	"github.com/ogulcanaydogan/gqlrecover/internal/chunk"
	"github.com/ogulcanaydogan/gqlrecover/internal/fetch"
	"github.com/ogulcanaydogan/gqlrecover/internal/manifest"
	"github.com/ogulcanaydogan/gqlrecover/pkg/types"
)

type Options struct {
	BaseURL         string
	ChunkID         string
	BuildIDMarker   string
	CollisionPolicy types.CollisionPolicy
	Extract         ExtractOptions
	Logger          *slog.Logger
}

// Pipeline holds one explicitly constructed object per network stage.
// Memoization belongs to the Getter it is built with.
type Pipeline struct {
	opts     Options
	buildID  *buildid.Resolver
	manifest *manifest.Resolver
	chunks   *chunk.Fetcher
	logger   *slog.Logger
}

func New(getter fetch.Getter, opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ChunkID == "" {
		opts.ChunkID = chunk.DefaultID
	}
	if opts.CollisionPolicy == "" {
		opts.CollisionPolicy = types.FirstWins
	}
	if opts.Extract.Logger == nil {
		opts.Extract.Logger = logger
	}
	return &Pipeline{
		opts:     opts,
		buildID:  buildid.NewResolver(getter, opts.BaseURL, opts.BuildIDMarker, logger),
		manifest: manifest.NewResolver(getter, opts.BaseURL, logger),
		chunks:   chunk.NewFetcher(getter, opts.BaseURL, logger),
		logger:   logger,
	}
}

// Located is everything known before the chunk is parsed.
type Located struct {
	BuildID  types.BuildID       `json:"build_id"`
	Manifest types.AssetManifest `json:"manifest"`
	Index    types.AssetIndex    `json:"index"`
}

// Locate resolves the build id, the manifest and the asset index.
func (p *Pipeline) Locate(ctx context.Context) (Located, error) {
	id, err := p.buildID.Resolve(ctx)
	if err != nil {
		return Located{}, err
	}
	m, err := p.manifest.Resolve(ctx, id)
	if err != nil {
		return Located{}, err
	}
	ix, err := manifest.BuildIndex(m, p.opts.CollisionPolicy)
	if err != nil {
		return Located{}, err
	}
	for _, c := range ix.Collisions {
		p.logger.Warn("chunk id collision", "stage", "asset-index", "id", c.ID, "kept", c.Kept, "dropped", c.Dropped)
	}
	p.logger.Info("indexed assets", "stage", "asset-index", "ids", len(ix.Paths), "collisions", len(ix.Collisions))
	return Located{BuildID: id, Manifest: m, Index: ix}, nil
}

// FetchChunk downloads the configured chunk from a located build.
func (p *Pipeline) FetchChunk(ctx context.Context, loc Located) (types.ModuleSource, error) {
	return p.chunks.Fetch(ctx, loc.Index, p.opts.ChunkID)
}

// Result is the outcome of a full run.
type Result struct {
	Located
	ChunkID string `json:"chunk_id"`
	*Extraction
}

// Run executes every stage. The first failure aborts the run.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	loc, err := p.Locate(ctx)
	if err != nil {
		return nil, err
	}
	src, err := p.FetchChunk(ctx, loc)
	if err != nil {
		return nil, err
	}
	ex, err := Extract(ctx, src, p.opts.Extract)
	if err != nil {
		return nil, err
	}
	return &Result{Located: loc, ChunkID: p.opts.ChunkID, Extraction: ex}, nil
}

// RunOffline extracts from a chunk obtained earlier; the network stages
// are skipped and Located is left empty.
func RunOffline(ctx context.Context, src types.ModuleSource, chunkID string, opts ExtractOptions) (*Result, error) {
	ex, err := Extract(ctx, src, opts)
	if err != nil {
		return nil, err
	}
	return &Result{ChunkID: chunkID, Extraction: ex}, nil
}
