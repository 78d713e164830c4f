// Package jsast wraps the tree-sitter JavaScript grammar behind the small
// surface the extractors need: kinds, named children, fields, leading
// tokens and literal values.
package jsast

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"github.com/ogulcanaydogan/gqlrecover/internal/stageerr"
)

// Tree is a parsed module. Close releases the native tree.
type Tree struct {
	tree *sitter.Tree
	src  []byte
}

// Parse parses src as JavaScript. A tree containing syntax errors is
// rejected: every extractor runs on exact positions. Failures are
// reported under stage.
func Parse(ctx context.Context, stage, src string) (*Tree, error) {
	content := []byte(src)
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(javascript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, stageerr.Wrap(stage, stageerr.KindParse, err, "tree-sitter")
	}
	root := tree.RootNode()
	if root == nil || root.IsNull() {
		tree.Close()
		return nil, stageerr.New(stage, stageerr.KindParse, "empty tree")
	}
	if root.HasError() {
		pos := firstError(root)
		tree.Close()
		return nil, stageerr.New(stage, stageerr.KindParse, "syntax error near line %d column %d", pos.Row+1, pos.Column+1)
	}
	return &Tree{tree: tree, src: content}, nil
}

func (t *Tree) Root() Node {
	return Node{n: t.tree.RootNode(), src: t.src}
}

func (t *Tree) Close() {
	if t != nil && t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

func firstError(n *sitter.Node) sitter.Point {
	if n.IsError() || n.IsMissing() {
		return n.StartPoint()
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c != nil && c.HasError() {
			return firstError(c)
		}
	}
	return n.StartPoint()
}
