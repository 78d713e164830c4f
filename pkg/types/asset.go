package types

import "sort"

// BuildID identifies one deployment of the target site.
type BuildID string

// AssetManifest maps a logical page key to the chunk paths it loads.
type AssetManifest map[string][]string

// Keys returns the manifest keys in lexicographic order.
func (m AssetManifest) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CollisionPolicy decides which path keeps an id when two paths derive it.
type CollisionPolicy string

const (
	FirstWins CollisionPolicy = "first-wins"
	LastWins  CollisionPolicy = "last-wins"
)

func (p CollisionPolicy) Valid() bool {
	return p == FirstWins || p == LastWins
}

// Collision records two distinct paths that derived the same id.
type Collision struct {
	ID      string `json:"id"`
	Kept    string `json:"kept"`
	Dropped string `json:"dropped"`
}

// AssetIndex maps a chunk id to its canonical asset path.
type AssetIndex struct {
	Paths      map[string]string `json:"paths"`
	Collisions []Collision       `json:"collisions,omitempty"`
}

func (ix AssetIndex) Lookup(id string) (string, bool) {
	p, ok := ix.Paths[id]
	return p, ok
}

// IDs returns the indexed ids in lexicographic order.
func (ix AssetIndex) IDs() []string {
	ids := make([]string, 0, len(ix.Paths))
	for id := range ix.Paths {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ModuleSource is the raw text of one fetched chunk.
type ModuleSource struct {
	URL  string
	Text string
}
