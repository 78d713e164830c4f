package buildid

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ogulcanaydogan/gqlrecover/internal/fetch"
	"github.com/ogulcanaydogan/gqlrecover/internal/stageerr"
	"github.com/ogulcanaydogan/gqlrecover/pkg/types"
)

const stage = "build-id"

// DefaultMarker is the key Next.js writes into __NEXT_DATA__.
const DefaultMarker = "buildId"

// Resolver reads the build id of the current deployment from the site's
// root document.
type Resolver struct {
	getter  fetch.Getter
	rootURL string
	marker  string
	logger  *slog.Logger
}

func NewResolver(getter fetch.Getter, rootURL, marker string, logger *slog.Logger) *Resolver {
	if marker == "" {
		marker = DefaultMarker
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{getter: getter, rootURL: rootURL, marker: marker, logger: logger}
}

func (r *Resolver) Resolve(ctx context.Context) (types.BuildID, error) {
	doc, err := r.getter.Get(ctx, r.rootURL)
	if err != nil {
		return "", err
	}
	id, err := Scan(doc, r.marker)
	if err != nil {
		return "", err
	}
	r.logger.Info("resolved build id", "stage", stage, "build_id", string(id))
	return id, nil
}

// Scan finds the first marker, then the next ':', then returns the text
// between the next pair of double quotes. It is a textual scan, not a
// parse: `"buildId":"abc"` and `buildId: "abc"` both yield abc.
func Scan(doc, marker string) (types.BuildID, error) {
	at := strings.Index(doc, marker)
	if at < 0 {
		return "", stageerr.New(stage, stageerr.KindNotFound, "marker %q not in document", marker)
	}
	rest := doc[at+len(marker):]
	colon := strings.IndexByte(rest, ':')
	if colon < 0 {
		return "", stageerr.New(stage, stageerr.KindParse, "no ':' after marker %q", marker)
	}
	rest = rest[colon+1:]
	open := strings.IndexByte(rest, '"')
	if open < 0 {
		return "", stageerr.New(stage, stageerr.KindParse, "no opening quote after marker %q", marker)
	}
	rest = rest[open+1:]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return "", stageerr.New(stage, stageerr.KindParse, "unterminated build id after marker %q", marker)
	}
	if end == 0 {
		return "", stageerr.New(stage, stageerr.KindParse, "empty build id after marker %q", marker)
	}
	return types.BuildID(rest[:end]), nil
}
