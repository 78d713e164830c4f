// Package sdl prints recovered declarations as GraphQL schema text.
package sdl

import (
	"strings"

	"github.com/ogulcanaydogan/gqlrecover/pkg/types"
)

type Options struct {
	// ScalarNames prints a scalar reference as its name (ID, String)
	// instead of the SCALAR placeholder.
	ScalarNames bool
}

// TypeRef renders a type reference: NON_NULL X as X!, LIST X as [X],
// scalars as SCALAR and other leaves as their name.
func TypeRef(t types.TypeModifier, opts Options) string {
	var b strings.Builder
	writeRef(&b, t, opts)
	return b.String()
}

func writeRef(b *strings.Builder, t types.TypeModifier, opts Options) {
	switch t.Kind {
	case types.KindNonNull:
		if t.Inner != nil {
			writeRef(b, *t.Inner, opts)
		}
		b.WriteByte('!')
	case types.KindList:
		b.WriteByte('[')
		if t.Inner != nil {
			writeRef(b, *t.Inner, opts)
		}
		b.WriteByte(']')
	case types.KindScalar:
		if opts.ScalarNames && t.Name != "" {
			b.WriteString(t.Name)
			return
		}
		b.WriteString(string(types.KindScalar))
	default:
		if t.Name == "" {
			b.WriteString(string(t.Kind))
			return
		}
		b.WriteString(t.Name)
	}
}

// Declaration renders one declaration followed by a newline.
func Declaration(t types.SchemaType, opts Options) string {
	switch d := t.(type) {
	case types.UnionType:
		return "union " + d.Name + " = " + strings.Join(d.PossibleTypes, " | ") + "\n"
	case types.ObjectType:
		return block("type", d.Name, fieldLines(d.Fields, opts))
	case types.InterfaceType:
		return block("interface", d.Name, fieldLines(d.Fields, opts))
	case types.InputObjectType:
		return block("input", d.Name, fieldLines(d.Fields, opts))
	case types.EnumType:
		return block("enum", d.Name, d.Values)
	case types.ScalarType:
		return "scalar " + d.Name + "\n"
	default:
		return ""
	}
}

func fieldLines(fields []types.Field, opts Options) []string {
	lines := make([]string, len(fields))
	for i, f := range fields {
		lines[i] = f.Name + ": " + TypeRef(f.Type, opts)
	}
	return lines
}

func block(keyword, name string, lines []string) string {
	return keyword + " " + name + " {\n\t" + strings.Join(lines, "\n\t") + "\n}\n"
}

// Render concatenates the declarations in order.
func Render(decls types.SchemaTypes, opts Options) string {
	var b strings.Builder
	for _, d := range decls {
		b.WriteString(Declaration(d, opts))
	}
	return b.String()
}
