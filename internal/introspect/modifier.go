package introspect

import (
	"github.com/ogulcanaydogan/gqlrecover/internal/jsast"
	"github.com/ogulcanaydogan/gqlrecover/internal/stageerr"
	"github.com/ogulcanaydogan/gqlrecover/pkg/types"
)

// MaxTypeDepth bounds the nesting of NON_NULL and LIST wrappers. Real
// schemas stay below five.
const MaxTypeDepth = 32

// ResolveTypeModifier interprets a nested {kind, name, ofType} object as
// a type reference.
func ResolveTypeModifier(obj jsast.Node) (types.TypeModifier, error) {
	return resolve(obj, 0)
}

func resolve(obj jsast.Node, depth int) (types.TypeModifier, error) {
	if depth >= MaxTypeDepth {
		return types.TypeModifier{}, stageerr.New(stage, stageerr.KindMalformedType, "type reference at line %d nests deeper than %d", obj.Line(), MaxTypeDepth)
	}
	props := obj.Properties()
	kind, ok := stringProp(props, "kind")
	if !ok {
		return types.TypeModifier{}, stageerr.New(stage, stageerr.KindMalformedType, "type reference at line %d: kind is missing or not a string literal", obj.Line())
	}
	k := types.TypeKind(kind)
	if k.Wrapper() {
		of, ok := props["ofType"]
		if !ok || of.Kind() != jsast.KindObject {
			return types.TypeModifier{}, stageerr.New(stage, stageerr.KindMalformedType, "%s at line %d: ofType is missing or not an object", k, obj.Line())
		}
		inner, err := resolve(of, depth+1)
		if err != nil {
			return types.TypeModifier{}, err
		}
		return types.TypeModifier{Kind: k, Inner: &inner}, nil
	}
	name, _ := stringProp(props, "name")
	if k.NamedLeaf() && name == "" {
		return types.TypeModifier{}, stageerr.New(stage, stageerr.KindMalformedType, "%s at line %d has no name", k, obj.Line())
	}
	return types.Named(k, name), nil
}
