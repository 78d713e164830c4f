// Package chunk downloads the bundled module that carries the embedded
// GraphQL documents and introspection data.
package chunk

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ogulcanaydogan/gqlrecover/internal/fetch"
	"github.com/ogulcanaydogan/gqlrecover/internal/stageerr"
	"github.com/ogulcanaydogan/gqlrecover/pkg/types"
)

const stage = "chunk"

// DefaultID is the chunk id the data has lived under so far.
const DefaultID = "5308"

type Fetcher struct {
	getter  fetch.Getter
	baseURL string
	logger  *slog.Logger
}

func NewFetcher(getter fetch.Getter, baseURL string, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{getter: getter, baseURL: baseURL, logger: logger}
}

// URL returns the download location of an indexed chunk path.
func URL(baseURL, path string) string {
	return fetch.URL(baseURL, "_next/"+path)
}

func (f *Fetcher) Fetch(ctx context.Context, ix types.AssetIndex, id string) (types.ModuleSource, error) {
	if id == "" {
		id = DefaultID
	}
	path, ok := ix.Lookup(id)
	if !ok {
		return types.ModuleSource{}, stageerr.New(stage, stageerr.KindNotFound, "chunk id %q not in asset index (%d ids)", id, len(ix.Paths))
	}
	url := URL(f.baseURL, path)
	text, err := f.getter.Get(ctx, url)
	if err != nil {
		return types.ModuleSource{}, err
	}
	f.logger.Info("fetched chunk", "stage", stage, "id", id, "url", url, "bytes", len(text))
	return types.ModuleSource{URL: url, Text: text}, nil
}

// ReadFile loads a chunk saved earlier, for offline runs.
func ReadFile(path string) (types.ModuleSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.ModuleSource{}, stageerr.Wrap(stage, stageerr.KindNotFound, err, "read chunk file")
		}
		return types.ModuleSource{}, fmt.Errorf("read chunk file: %w", err)
	}
	return types.ModuleSource{URL: "file://" + path, Text: string(raw)}, nil
}
