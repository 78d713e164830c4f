package introspect

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/gqlrecover/internal/jsast"
	"github.com/ogulcanaydogan/gqlrecover/internal/navigate"
	"github.com/ogulcanaydogan/gqlrecover/internal/stageerr"
	"github.com/ogulcanaydogan/gqlrecover/pkg/types"
)

func expr(t *testing.T, src string) jsast.Node {
	t.Helper()
	tree, err := jsast.Parse(context.Background(), stage, "x = "+src)
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	stmt, ok := tree.Root().NamedChild(0)
	require.True(t, ok)
	assign, ok := stmt.NamedChild(0)
	require.True(t, ok)
	right, ok := assign.Field("right")
	require.True(t, ok)
	return right
}

func TestResolveTypeModifier(t *testing.T) {
	cases := map[string]struct {
		src  string
		want types.TypeModifier
	}{
		"non-null list of object": {
			src:  `{kind:"NON_NULL",name:null,ofType:{kind:"LIST",name:null,ofType:{kind:"OBJECT",name:"Foo",ofType:null}}}`,
			want: types.NonNull(types.List(types.Named(types.KindObject, "Foo"))),
		},
		"scalar keeps its name": {
			src:  `{kind:"SCALAR",name:"ID",ofType:null}`,
			want: types.Named(types.KindScalar, "ID"),
		},
		"unnamed scalar": {
			src:  `{kind:"SCALAR"}`,
			want: types.Named(types.KindScalar, ""),
		},
		"string keys": {
			src:  `{"kind":"UNION","name":"Result"}`,
			want: types.Named(types.KindUnion, "Result"),
		},
		"first kind wins": {
			src:  `{kind:"ENUM",kind:"OBJECT",name:"Mood"}`,
			want: types.Named(types.KindEnum, "Mood"),
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := ResolveTypeModifier(expr(t, tc.src))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveTypeModifierMalformed(t *testing.T) {
	cases := map[string]string{
		"missing ofType":      `{kind:"NON_NULL",name:null}`,
		"null ofType":         `{kind:"LIST",ofType:null}`,
		"missing kind":        `{name:"Foo"}`,
		"identifier kind":     `{kind:K,name:"Foo"}`,
		"object without name": `{kind:"OBJECT",name:null}`,
		"union without name":  `{kind:"UNION"}`,
		"too deep":            strings.Repeat(`{kind:"LIST",ofType:`, MaxTypeDepth) + `{kind:"SCALAR"}` + strings.Repeat(`}`, MaxTypeDepth),
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ResolveTypeModifier(expr(t, src))
			require.Error(t, err)
			assert.ErrorIs(t, err, stageerr.ErrMalformedType)
		})
	}
}

func TestResolveTypeModifierAtDepthLimit(t *testing.T) {
	src := strings.Repeat(`{kind:"LIST",ofType:`, MaxTypeDepth-1) + `{kind:"SCALAR"}` + strings.Repeat(`}`, MaxTypeDepth-1)
	got, err := ResolveTypeModifier(expr(t, src))
	require.NoError(t, err)
	depth := 0
	for cur := &got; cur.Inner != nil; cur = cur.Inner {
		depth++
	}
	assert.Equal(t, MaxTypeDepth-1, depth)
}

func TestParseKeepsObjectsAndUnions(t *testing.T) {
	src := `[
		{kind:"UNION",name:"U",possibleTypes:[{kind:"OBJECT",name:"A"},{kind:"OBJECT",name:"B"}]},
		{kind:"ENUM",name:"E",enumValues:[{name:"X"}]},
		"not an object",
		{kind:"OBJECT",name:"User",fields:[{name:"id",type:{kind:"NON_NULL",ofType:{kind:"SCALAR",name:"ID"}}}]}
	]`
	got, err := Parse(expr(t, src), Options{})
	require.NoError(t, err)
	assert.Equal(t, types.SchemaTypes{
		types.UnionType{Name: "U", PossibleTypes: []string{"A", "B"}},
		types.ObjectType{Name: "User", Fields: []types.Field{
			{Name: "id", Type: types.NonNull(types.Named(types.KindScalar, "ID"))},
		}},
	}, got)
}

func TestParseAllKinds(t *testing.T) {
	src := `[
		{kind:"SCALAR",name:"DateTime"},
		{kind:"ENUM",name:"Mood",enumValues:[{name:"HAPPY"},{name:"SAD"}]},
		{kind:"INTERFACE",name:"Node",fields:[{name:"id",type:{kind:"SCALAR",name:"ID"}}]},
		{kind:"INPUT_OBJECT",name:"FeedInput",inputFields:[{name:"food",type:{kind:"SCALAR",name:"String"}}],fields:null},
		{kind:"ENUM",name:"Empty",enumValues:null},
		{kind:"SOMETHING_NEW",name:"Later"}
	]`
	got, err := Parse(expr(t, src), Options{IncludeAllKinds: true})
	require.NoError(t, err)
	assert.Equal(t, types.SchemaTypes{
		types.ScalarType{Name: "DateTime"},
		types.EnumType{Name: "Mood", Values: []string{"HAPPY", "SAD"}},
		types.InterfaceType{Name: "Node", Fields: []types.Field{{Name: "id", Type: types.Named(types.KindScalar, "ID")}}},
		types.InputObjectType{Name: "FeedInput", Fields: []types.Field{{Name: "food", Type: types.Named(types.KindScalar, "String")}}},
		types.EnumType{Name: "Empty", Values: []string{}},
	}, got)
}

func TestParseUnexpectedShape(t *testing.T) {
	cases := map[string]string{
		"missing kind":             `[{name:"User"}]`,
		"non-literal kind":         `[{kind:k,name:"User"}]`,
		"object without name":      `[{kind:"OBJECT",fields:[]}]`,
		"object without fields":    `[{kind:"OBJECT",name:"User"}]`,
		"fields not an array":      `[{kind:"OBJECT",name:"User",fields:{}}]`,
		"field without type":       `[{kind:"OBJECT",name:"User",fields:[{name:"id"}]}]`,
		"possible type not object": `[{kind:"UNION",name:"U",possibleTypes:["A"]}]`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(expr(t, src), Options{})
			require.Error(t, err)
			assert.ErrorIs(t, err, stageerr.ErrUnexpectedShape)
		})
	}
}

func TestParsePropagatesMalformedType(t *testing.T) {
	_, err := Parse(expr(t, `[{kind:"OBJECT",name:"User",fields:[{name:"id",type:{kind:"NON_NULL"}}]}]`), Options{})
	assert.ErrorIs(t, err, stageerr.ErrMalformedType)
}

func TestParseFixtureChunk(t *testing.T) {
	raw, err := os.ReadFile("../../testdata/chunk_5308.js")
	require.NoError(t, err)
	tree, err := jsast.Parse(context.Background(), stage, string(raw))
	require.NoError(t, err)
	defer tree.Close()
	sections, err := navigate.Locate(tree.Root())
	require.NoError(t, err)

	got, err := Parse(sections.Types, Options{})
	require.NoError(t, err)
	names := make([]string, len(got))
	for i, st := range got {
		names[i] = st.TypeName()
	}
	assert.Equal(t, []string{"Query", "Pet", "SearchResult", "Plant"}, names)

	all, err := Parse(sections.Types, Options{IncludeAllKinds: true})
	require.NoError(t, err)
	assert.Len(t, all, 7)
	assert.Equal(t, 1, all.CountByKind()[types.KindEnum])
}
