package manifest

import (
	"strings"

	"github.com/ogulcanaydogan/gqlrecover/internal/stageerr"
	"github.com/ogulcanaydogan/gqlrecover/pkg/types"
)

const indexStage = "asset-index"

// DeriveID returns the part of the final path segment before its last '-':
// "static/chunks/5308-1f2e3d.js" yields "5308".
func DeriveID(path string) (string, error) {
	slash := strings.LastIndexByte(path, '/')
	if slash < 0 {
		return "", stageerr.New(indexStage, stageerr.KindUnexpectedShape, "path %q has no '/'", path)
	}
	name := path[slash+1:]
	dash := strings.LastIndexByte(name, '-')
	if dash < 0 {
		return "", stageerr.New(indexStage, stageerr.KindUnexpectedShape, "file name %q has no '-'", name)
	}
	if dash == 0 {
		return "", stageerr.New(indexStage, stageerr.KindUnexpectedShape, "file name %q has an empty id", name)
	}
	return name[:dash], nil
}

// BuildIndex flattens the manifest in a fixed order (keys sorted, paths in
// source order, repeats dropped) and keys every path by DeriveID. When two
// distinct paths derive the same id the policy picks the survivor and the
// collision is recorded.
func BuildIndex(m types.AssetManifest, policy types.CollisionPolicy) (types.AssetIndex, error) {
	if policy == "" {
		policy = types.FirstWins
	}
	if !policy.Valid() {
		return types.AssetIndex{}, stageerr.New(indexStage, stageerr.KindUnexpectedShape, "unknown collision policy %q", policy)
	}
	ix := types.AssetIndex{Paths: make(map[string]string)}
	seen := make(map[string]struct{})
	for _, key := range m.Keys() {
		for _, p := range m[key] {
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}

			id, err := DeriveID(p)
			if err != nil {
				return types.AssetIndex{}, err
			}
			existing, taken := ix.Paths[id]
			if !taken {
				ix.Paths[id] = p
				continue
			}
			if policy == types.LastWins {
				ix.Paths[id] = p
				ix.Collisions = append(ix.Collisions, types.Collision{ID: id, Kept: p, Dropped: existing})
			} else {
				ix.Collisions = append(ix.Collisions, types.Collision{ID: id, Kept: existing, Dropped: p})
			}
		}
	}
	return ix, nil
}
