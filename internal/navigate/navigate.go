// Package navigate locates the operations list and the introspection
// types array inside a webpack chunk. The step tables below are the only
// code that knows the bundle layout; when the upstream build changes
// shape, the failing step is named in the error.
package navigate

import (
	"github.com/ogulcanaydogan/gqlrecover/internal/jsast"
)

const stage = "navigate"

// OperationsOffset is the index of the first operations element in the
// module body. The two statements before it are the export table and the
// tag helper import.
const OperationsOffset = 2

var declarationKinds = []string{jsast.KindLexicalDeclaration, jsast.KindVariableDeclaration}

// ModuleBody descends from the program to the body of the first module
// factory of a chunk shaped like
//
//	(self.webpackChunk_N_E = ...).push([[5308], {75308: function(e, t, n) { ... }}])
var ModuleBody = jsast.Path{
	Name: "module body",
	Steps: []jsast.Step{
		{Name: "program", Select: jsast.Self(), Kinds: []string{jsast.KindProgram}},
		{Name: "push statement", Select: jsast.LastChild(), Kinds: []string{jsast.KindExpressionStatement}},
		{Name: "push call", Select: jsast.Child(0), Kinds: []string{jsast.KindCallExpression}},
		{Name: "push arguments", Select: jsast.Field("arguments"), Kinds: []string{jsast.KindArguments}},
		{Name: "chunk entry", Select: jsast.Child(0), Kinds: []string{jsast.KindArray}},
		{Name: "module table", Select: jsast.Child(1), Kinds: []string{jsast.KindObject}},
		{Name: "module factory", Select: jsast.Property(0, ""), Kinds: jsast.FunctionKinds},
		{Name: "factory body", Select: jsast.Field("body"), Kinds: []string{jsast.KindStatementBlock}},
	},
}

// Types descends from the module body to the introspection types array
// of the trailing `let o = {__schema: {...}}` declaration.
var Types = jsast.Path{
	Name: "types",
	Steps: []jsast.Step{
		{Name: "schema declaration", Select: jsast.LastChild(), Kinds: declarationKinds},
		{Name: "schema declarator", Select: jsast.Child(0), Kinds: []string{jsast.KindVariableDeclarator}},
		{Name: "schema object", Select: jsast.Field("value"), Kinds: []string{jsast.KindObject}},
		{Name: "__schema", Select: jsast.Property(0, "__schema"), Kinds: []string{jsast.KindObject}},
		{Name: "types", Select: jsast.Property(3, "types"), Kinds: []string{jsast.KindArray}},
	},
}

// Sections are the two regions of the chunk the extractors read. The
// nodes borrow the parsed tree and are valid until it is closed.
type Sections struct {
	// Operations holds the body statements from OperationsOffset on,
	// including the sentinel and anything after it.
	Operations []jsast.Node
	Types      jsast.Node
}

// Locate walks the fixed paths from the root of a parsed chunk.
func Locate(root jsast.Node) (Sections, error) {
	body, err := ModuleBody.Walk(stage, root)
	if err != nil {
		return Sections{}, err
	}
	typesNode, err := Types.Walk(stage, body)
	if err != nil {
		return Sections{}, err
	}
	stmts := body.NamedChildren()
	var ops []jsast.Node
	if len(stmts) > OperationsOffset {
		ops = stmts[OperationsOffset:]
	}
	return Sections{Operations: ops, Types: typesNode}, nil
}
