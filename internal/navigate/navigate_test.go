package navigate

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/gqlrecover/internal/jsast"
	"github.com/ogulcanaydogan/gqlrecover/internal/stageerr"
)

func parse(t *testing.T, src string) jsast.Node {
	t.Helper()
	tree, err := jsast.Parse(context.Background(), stage, src)
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree.Root()
}

func TestLocateFixtureChunk(t *testing.T) {
	raw, err := os.ReadFile("../../testdata/chunk_5308.js")
	require.NoError(t, err)

	sections, err := Locate(parse(t, string(raw)))
	require.NoError(t, err)

	require.Len(t, sections.Operations, 6)
	assert.Equal(t, jsast.KindFunctionDeclaration, sections.Operations[0].Kind())
	assert.Equal(t, "!", sections.Operations[2].FirstToken())

	assert.Equal(t, jsast.KindArray, sections.Types.Kind())
	assert.Len(t, sections.Types.NamedChildren(), 7)
}

func TestLocateShortBody(t *testing.T) {
	src := `(self.c=self.c||[]).push([[1],{1:function(e,t,n){let o={__schema:{queryType:null,mutationType:null,subscriptionType:null,types:[]}}}}]);`
	sections, err := Locate(parse(t, src))
	require.NoError(t, err)
	assert.Empty(t, sections.Operations)
	assert.Empty(t, sections.Types.NamedChildren())
}

func TestLocateArrowFactory(t *testing.T) {
	src := `(self.c=self.c||[]).push([[1],{1:(e,t,n)=>{n.d(t,{});var a=n(2);var o={__schema:{a:1,b:2,c:3,types:[{kind:"SCALAR",name:"ID"}]}}}}]);`
	sections, err := Locate(parse(t, src))
	require.NoError(t, err)
	assert.Len(t, sections.Operations, 1)
	assert.Len(t, sections.Types.NamedChildren(), 1)
}

func TestLocateStructuralMismatch(t *testing.T) {
	cases := map[string]struct {
		src  string
		step string
	}{
		"not a push call": {
			src:  `var x = 1;`,
			step: "module body step 1 (push statement)",
		},
		"factory not a function": {
			src:  `(self.c=self.c||[]).push([[1],{1:42}]);`,
			step: "module body step 6 (module factory)",
		},
		"schema key renamed": {
			src:  `(self.c=self.c||[]).push([[1],{1:function(){let o={schema:{}}}}]);`,
			step: "types step 3 (__schema)",
		},
		"types moved": {
			src:  `(self.c=self.c||[]).push([[1],{1:function(){let o={__schema:{types:[]}}}}]);`,
			step: "types step 4 (types)",
		},
		"trailing statement is not a declaration": {
			src:  `(self.c=self.c||[]).push([[1],{1:function(){let o={};o.x=1}}]);`,
			step: "types step 0 (schema declaration)",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Locate(parse(t, tc.src))
			require.Error(t, err)
			assert.ErrorIs(t, err, stageerr.ErrStructuralMismatch)
			assert.Contains(t, err.Error(), tc.step)
		})
	}
}
