package types

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestAssetManifestKeysSorted(t *testing.T) {
	m := AssetManifest{"/pet/[id]": nil, "/": {"a.js"}, "/about": nil}
	want := []string{"/", "/about", "/pet/[id]"}
	if got := m.Keys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
}

func TestCollisionPolicyValid(t *testing.T) {
	for _, p := range []CollisionPolicy{FirstWins, LastWins} {
		if !p.Valid() {
			t.Fatalf("%q should be valid", p)
		}
	}
	for _, p := range []CollisionPolicy{"", "first", "LAST-WINS"} {
		if p.Valid() {
			t.Fatalf("%q should be invalid", p)
		}
	}
}

func TestAssetIndexLookupAndIDs(t *testing.T) {
	ix := AssetIndex{Paths: map[string]string{
		"index": "static/chunks/pages/index-0a.js",
		"5308":  "static/chunks/5308-3c.js",
		"675":   "static/chunks/675-aa.js",
	}}
	if p, ok := ix.Lookup("5308"); !ok || p != "static/chunks/5308-3c.js" {
		t.Fatalf("Lookup(5308) = %q, %v", p, ok)
	}
	if _, ok := ix.Lookup("missing"); ok {
		t.Fatal("missing id should not resolve")
	}
	want := []string{"5308", "675", "index"}
	if got := ix.IDs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("IDs() = %v, want %v", got, want)
	}
}

func TestTypeKindPredicates(t *testing.T) {
	cases := []struct {
		kind      TypeKind
		wrapper   bool
		namedLeaf bool
	}{
		{KindNonNull, true, false},
		{KindList, true, false},
		{KindObject, false, true},
		{KindUnion, false, true},
		{KindScalar, false, false},
		{KindEnum, false, false},
		{KindInterface, false, false},
		{KindInputObject, false, false},
	}
	for _, tc := range cases {
		if got := tc.kind.Wrapper(); got != tc.wrapper {
			t.Errorf("%s.Wrapper() = %v", tc.kind, got)
		}
		if got := tc.kind.NamedLeaf(); got != tc.namedLeaf {
			t.Errorf("%s.NamedLeaf() = %v", tc.kind, got)
		}
	}
}

func TestTypeModifierConstructors(t *testing.T) {
	got := NonNull(List(Named(KindUnion, "SearchResult")))
	if got.Kind != KindNonNull || got.Inner.Kind != KindList || got.Inner.Inner.Name != "SearchResult" {
		t.Fatalf("unexpected modifier %+v", got)
	}
	if got.Inner.Inner.Inner != nil {
		t.Fatal("leaf must not carry an inner modifier")
	}
	raw, err := json.Marshal(got)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"kind":"NON_NULL","of_type":{"kind":"LIST","of_type":{"kind":"UNION","name":"SearchResult"}}}`
	if string(raw) != want {
		t.Fatalf("json = %s", raw)
	}
}

func TestSchemaTypesCountByKind(t *testing.T) {
	s := SchemaTypes{
		ObjectType{Name: "Query"},
		ObjectType{Name: "Pet"},
		UnionType{Name: "SearchResult"},
		EnumType{Name: "Mood"},
		ScalarType{Name: "ID"},
		InputObjectType{Name: "FeedInput"},
		InterfaceType{Name: "Node"},
	}
	want := map[TypeKind]int{
		KindObject:      2,
		KindUnion:       1,
		KindEnum:        1,
		KindScalar:      1,
		KindInputObject: 1,
		KindInterface:   1,
	}
	if got := s.CountByKind(); !reflect.DeepEqual(got, want) {
		t.Fatalf("CountByKind() = %v", got)
	}
	if s[2].TypeName() != "SearchResult" || s[2].TypeKind() != KindUnion {
		t.Fatalf("unexpected union accessors")
	}
}
