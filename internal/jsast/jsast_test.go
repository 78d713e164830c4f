package jsast

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/gqlrecover/internal/stageerr"
)

func parse(t *testing.T, src string) *Tree {
	t.Helper()
	tree, err := Parse(context.Background(), "test", src)
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree
}

func firstExpression(t *testing.T, tree *Tree) Node {
	t.Helper()
	stmt, ok := tree.Root().NamedChild(0)
	require.True(t, ok)
	require.Equal(t, KindExpressionStatement, stmt.Kind())
	expr, ok := stmt.NamedChild(0)
	require.True(t, ok)
	return Unparen(expr)
}

func TestParseRejectsSyntaxErrors(t *testing.T) {
	_, err := Parse(context.Background(), "chunk", "let = = ;")
	require.Error(t, err)
	assert.ErrorIs(t, err, stageerr.ErrParse)
	var se *stageerr.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "chunk", se.Stage)
}

func TestNamedChildrenSkipComments(t *testing.T) {
	tree := parse(t, "[1, /* two */ 2, // three\n 3]")
	arr := firstExpression(t, tree)
	require.Equal(t, KindArray, arr.Kind())
	children := arr.NamedChildren()
	require.Len(t, children, 3)
	assert.Equal(t, "3", children[2].Text())
	last, ok := arr.LastNamedChild()
	require.True(t, ok)
	assert.Equal(t, "3", last.Text())
	_, ok = arr.NamedChild(3)
	assert.False(t, ok)
}

func TestStringValueDecodesEscapes(t *testing.T) {
	tree := parse(t, `["static/chunks\/a-1.js", 'it\'s', "tab\there", "\x41\u{1F600}"]`)
	arr := firstExpression(t, tree)
	want := []string{"static/chunks/a-1.js", "it's", "tab\there", "A\U0001F600"}
	for i, c := range arr.NamedChildren() {
		v, ok := c.StringValue()
		require.True(t, ok, "element %d", i)
		assert.Equal(t, want[i], v)
	}
}

func TestStringValueJoinsSurrogatePairs(t *testing.T) {
	tree := parse(t, `["\uD83D\uDE00", "a\uD83Db", "\uDE00"]`)
	arr := firstExpression(t, tree)
	want := []string{"\U0001F600", "a\uFFFDb", "\uFFFD"}
	for i, c := range arr.NamedChildren() {
		v, ok := c.StringValue()
		require.True(t, ok, "element %d", i)
		assert.Equal(t, want[i], v, "element %d", i)
	}
}

func TestTemplateStringValue(t *testing.T) {
	tree := parse(t, "[`plain\\ntext`, `with ${x}`]")
	arr := firstExpression(t, tree)
	children := arr.NamedChildren()
	v, ok := children[0].StringValue()
	require.True(t, ok)
	assert.Equal(t, "plain\ntext", v)
	_, ok = children[1].StringValue()
	assert.False(t, ok, "substitution is not a literal")
}

func TestRawStringContentKeepsEscapes(t *testing.T) {
	tree := parse(t, `["\n  query A {\n    a\n  }\n"]`)
	arr := firstExpression(t, tree)
	s, ok := arr.NamedChild(0)
	require.True(t, ok)
	assert.Equal(t, `\n  query A {\n    a\n  }\n`, s.RawStringContent())
}

func TestPropertiesFirstValueWins(t *testing.T) {
	tree := parse(t, `({kind: "OBJECT", "name": "User", kind: "UNION", 7: 1, [k]: 2, ...rest})`)
	obj := firstExpression(t, tree)
	require.Equal(t, KindObject, obj.Kind())
	props := obj.Properties()
	require.Len(t, props, 3)
	kind, ok := props["kind"].StringValue()
	require.True(t, ok)
	assert.Equal(t, "OBJECT", kind)
	name, _ := props["name"].StringValue()
	assert.Equal(t, "User", name)
	num, ok := props["7"].LiteralValue()
	require.True(t, ok)
	assert.Equal(t, "1", num)
}

func TestFirstToken(t *testing.T) {
	tree := parse(t, "!function(){}();\nfunction a(){}")
	stmts := tree.Root().NamedChildren()
	require.Len(t, stmts, 2)
	assert.Equal(t, "!", stmts[0].FirstToken())
	assert.Equal(t, "function", stmts[1].FirstToken())
}

func TestPathWalk(t *testing.T) {
	tree := parse(t, `x = {__schema: {a: 1, b: 2, c: 3, types: [{kind: "OBJECT"}]}}`)
	path := Path{Name: "schema", Steps: []Step{
		{Name: "statement", Select: Child(0), Kinds: []string{KindExpressionStatement}},
		{Name: "assignment", Select: Child(0), Kinds: []string{KindAssignment}},
		{Name: "value", Select: Field("right"), Kinds: []string{KindObject}},
		{Name: "schema", Select: Property(0, "__schema"), Kinds: []string{KindObject}},
		{Name: "types", Select: Property(3, "types"), Kinds: []string{KindArray}},
	}}
	got, err := path.Walk("test", tree.Root())
	require.NoError(t, err)
	assert.Equal(t, KindArray, got.Kind())
	assert.Len(t, got.NamedChildren(), 1)
}

func TestPathWalkReportsFailingStep(t *testing.T) {
	tree := parse(t, `x = {__schema: {types: []}}`)
	path := Path{Name: "schema", Steps: []Step{
		{Name: "statement", Select: Child(0), Kinds: []string{KindExpressionStatement}},
		{Name: "assignment", Select: Child(0), Kinds: []string{KindAssignment}},
		{Name: "value", Select: Field("right"), Kinds: []string{KindObject}},
		{Name: "schema", Select: Property(0, "__schema"), Kinds: []string{KindObject}},
		{Name: "types", Select: Property(3, "types"), Kinds: []string{KindArray}},
	}}
	_, err := path.Walk("navigate", tree.Root())
	require.Error(t, err)
	assert.ErrorIs(t, err, stageerr.ErrStructuralMismatch)
	assert.Contains(t, err.Error(), "step 4 (types)")

	wrongKind := Path{Name: "kind", Steps: []Step{
		{Name: "statement", Select: Child(0), Kinds: []string{KindReturnStatement}},
	}}
	_, err = wrongKind.Walk("navigate", tree.Root())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want return_statement")
}

func TestDecodeEscape(t *testing.T) {
	cases := map[string]string{
		`\n`:     "\n",
		`\"`:     `"`,
		`\\`:     `\`,
		`\/`:     "/",
		`\x2d`:   "-",
		`\u{41}`: "A",
		"\\\n":   "",
		`\0`:     "\x00",
		`plain`:  "plain",
	}
	for in, want := range cases {
		assert.Equal(t, want, DecodeEscape(in), "escape %q", in)
	}
}
