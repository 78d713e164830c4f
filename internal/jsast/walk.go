package jsast

import (
	"fmt"
	"strings"

	"github.com/ogulcanaydogan/gqlrecover/internal/stageerr"
)

// Selector picks one node relative to the current one.
type Selector struct {
	desc string
	pick func(Node) (Node, bool)
}

func (s Selector) String() string { return s.desc }

// Self keeps the current node; used to assert the starting kind.
func Self() Selector {
	return Selector{desc: "self", pick: func(n Node) (Node, bool) { return n, true }}
}

func Child(i int) Selector {
	return Selector{desc: fmt.Sprintf("child[%d]", i), pick: func(n Node) (Node, bool) { return n.NamedChild(i) }}
}

func LastChild() Selector {
	return Selector{desc: "child[last]", pick: Node.LastNamedChild}
}

func Field(name string) Selector {
	return Selector{desc: "." + name, pick: func(n Node) (Node, bool) { return n.Field(name) }}
}

// Property selects the value of the i-th pair of an object literal. A
// non-empty key also asserts the pair's key.
func Property(i int, key string) Selector {
	desc := fmt.Sprintf("property[%d]", i)
	if key != "" {
		desc = fmt.Sprintf("property[%d]=%q", i, key)
	}
	return Selector{desc: desc, pick: func(n Node) (Node, bool) {
		if n.Kind() != KindObject {
			return Node{}, false
		}
		pair, ok := n.NamedChild(i)
		if !ok || pair.Kind() != KindPair {
			return Node{}, false
		}
		if key != "" {
			k, ok := pair.PropertyKey()
			if !ok || k != key {
				return Node{}, false
			}
		}
		return pair.Field("value")
	}}
}

// Unparenthesized strips parentheses around the current node.
func Unparenthesized() Selector {
	return Selector{desc: "unparen", pick: func(n Node) (Node, bool) { return Unparen(n), true }}
}

// Step is one hop of a fixed descent: select a node, then require it to be
// one of Kinds.
type Step struct {
	Name   string
	Select Selector
	Kinds  []string
}

// Path is a named, ordered descent through a syntax tree.
type Path struct {
	Name  string
	Steps []Step
}

// Walk evaluates the path from start. The first step that fails to select
// a node, or selects a node of the wrong kind, ends the walk with a
// structural mismatch naming the path and the step.
func (p Path) Walk(stage string, start Node) (Node, error) {
	cur := start
	for i, step := range p.Steps {
		next, ok := step.Select.pick(cur)
		if !ok || next.IsNull() {
			return Node{}, stageerr.New(stage, stageerr.KindStructuralMismatch,
				"%s step %d (%s): %s not present on %s at line %d", p.Name, i, step.Name, step.Select, cur.Kind(), cur.Line())
		}
		if len(step.Kinds) > 0 && !next.Is(step.Kinds...) {
			return Node{}, stageerr.New(stage, stageerr.KindStructuralMismatch,
				"%s step %d (%s): %s is %s at line %d, want %s", p.Name, i, step.Name, step.Select, next.Kind(), next.Line(), strings.Join(step.Kinds, "|"))
		}
		cur = next
	}
	return cur, nil
}
