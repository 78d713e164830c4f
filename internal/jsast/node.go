package jsast

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Node kinds used by the extractors.
const (
	KindProgram             = "program"
	KindExpressionStatement = "expression_statement"
	KindCallExpression      = "call_expression"
	KindArguments           = "arguments"
	KindParenthesized       = "parenthesized_expression"
	KindAssignment          = "assignment_expression"
	KindFunctionExpression  = "function_expression"
	KindFunctionLegacy      = "function"
	KindArrowFunction       = "arrow_function"
	KindFunctionDeclaration = "function_declaration"
	KindFormalParameters    = "formal_parameters"
	KindStatementBlock      = "statement_block"
	KindReturnStatement     = "return_statement"
	KindLexicalDeclaration  = "lexical_declaration"
	KindVariableDeclaration = "variable_declaration"
	KindVariableDeclarator  = "variable_declarator"
	KindObject              = "object"
	KindPair                = "pair"
	KindArray               = "array"
	KindString              = "string"
	KindTemplateString      = "template_string"
	KindNumber              = "number"
	KindIdentifier          = "identifier"
	KindPropertyIdentifier  = "property_identifier"
	KindNull                = "null"
	KindComment             = "comment"
	KindStringFragment      = "string_fragment"
	KindEscapeSequence      = "escape_sequence"
	KindSubstitution        = "template_substitution"
	KindAssignmentPattern   = "assignment_pattern"
)

// FunctionKinds are the node kinds of a function literal. Older grammar
// releases call function expressions "function".
var FunctionKinds = []string{KindFunctionExpression, KindFunctionLegacy, KindArrowFunction}

// Node is a syntax node bound to its source text. The zero Node is null.
type Node struct {
	n   *sitter.Node
	src []byte
}

func (n Node) IsNull() bool { return n.n == nil || n.n.IsNull() }

func (n Node) Kind() string {
	if n.IsNull() {
		return ""
	}
	return n.n.Type()
}

func (n Node) Is(kinds ...string) bool {
	k := n.Kind()
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

func (n Node) Text() string {
	if n.IsNull() {
		return ""
	}
	return n.n.Content(n.src)
}

// Line is the 1-based line the node starts on.
func (n Node) Line() int {
	if n.IsNull() {
		return 0
	}
	return int(n.n.StartPoint().Row) + 1
}

func (n Node) wrap(c *sitter.Node) Node {
	if c == nil || c.IsNull() {
		return Node{}
	}
	return Node{n: c, src: n.src}
}

// NamedChildren returns the named children, skipping comments.
func (n Node) NamedChildren() []Node {
	if n.IsNull() {
		return nil
	}
	count := int(n.n.NamedChildCount())
	out := make([]Node, 0, count)
	for i := 0; i < count; i++ {
		c := n.wrap(n.n.NamedChild(i))
		if c.IsNull() || c.Kind() == KindComment {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (n Node) NamedChild(i int) (Node, bool) {
	children := n.NamedChildren()
	if i < 0 || i >= len(children) {
		return Node{}, false
	}
	return children[i], true
}

func (n Node) LastNamedChild() (Node, bool) {
	children := n.NamedChildren()
	if len(children) == 0 {
		return Node{}, false
	}
	return children[len(children)-1], true
}

func (n Node) Field(name string) (Node, bool) {
	if n.IsNull() {
		return Node{}, false
	}
	c := n.wrap(n.n.ChildByFieldName(name))
	return c, !c.IsNull()
}

// FirstToken returns the kind of the leftmost leaf, e.g. "!" for
// `!function(){}()`.
func (n Node) FirstToken() string {
	cur := n.n
	for cur != nil && !cur.IsNull() && cur.ChildCount() > 0 {
		next := cur.Child(0)
		if next == nil || next.IsNull() {
			break
		}
		cur = next
	}
	if cur == nil || cur.IsNull() {
		return ""
	}
	return cur.Type()
}

// Unparen strips any number of enclosing parentheses.
func Unparen(n Node) Node {
	for n.Kind() == KindParenthesized {
		inner, ok := n.NamedChild(0)
		if !ok {
			return n
		}
		n = inner
	}
	return n
}
