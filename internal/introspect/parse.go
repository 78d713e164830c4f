// Package introspect reads the introspection types array embedded in a
// chunk into schema declarations.
package introspect

import (
	"log/slog"

	"github.com/ogulcanaydogan/gqlrecover/internal/jsast"
	"github.com/ogulcanaydogan/gqlrecover/internal/stageerr"
	"github.com/ogulcanaydogan/gqlrecover/pkg/types"
)

const stage = "introspect"

type Options struct {
	// IncludeAllKinds keeps SCALAR, ENUM, INTERFACE and INPUT_OBJECT
	// declarations. By default only OBJECT and UNION are kept.
	IncludeAllKinds bool
	Logger          *slog.Logger
}

// Parse converts each object literal of the types array, in order.
// Elements that are not object literals are skipped.
func Parse(array jsast.Node, opts Options) (types.SchemaTypes, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if array.Kind() != jsast.KindArray {
		return nil, stageerr.New(stage, stageerr.KindUnexpectedShape, "types is %s, want an array", array.Kind())
	}
	var out types.SchemaTypes
	dropped := 0
	for i, el := range array.NamedChildren() {
		if el.Kind() != jsast.KindObject {
			continue
		}
		t, err := parseType(i, el, opts)
		if err != nil {
			return nil, err
		}
		if t == nil {
			dropped++
			continue
		}
		out = append(out, t)
	}
	logger.Info("parsed types", "stage", stage, "kept", len(out), "dropped", dropped)
	return out, nil
}

func parseType(i int, obj jsast.Node, opts Options) (types.SchemaType, error) {
	props := obj.Properties()
	kind, ok := stringProp(props, "kind")
	if !ok {
		return nil, stageerr.New(stage, stageerr.KindUnexpectedShape, "types[%d] at line %d: kind is missing or not a string literal", i, obj.Line())
	}
	k := types.TypeKind(kind)
	switch k {
	case types.KindObject, types.KindUnion:
	case types.KindScalar, types.KindEnum, types.KindInterface, types.KindInputObject:
		if !opts.IncludeAllKinds {
			return nil, nil
		}
	default:
		return nil, nil
	}

	name, ok := stringProp(props, "name")
	if !ok {
		return nil, stageerr.New(stage, stageerr.KindUnexpectedShape, "types[%d] %s at line %d: name is missing or not a string literal", i, k, obj.Line())
	}
	where := func(list string) string { return name + "." + list }

	switch k {
	case types.KindUnion:
		names, err := namedList(props, "possibleTypes", where("possibleTypes"), true)
		if err != nil {
			return nil, err
		}
		return types.UnionType{Name: name, PossibleTypes: names}, nil
	case types.KindObject:
		fields, err := fieldList(props, "fields", where("fields"), true)
		if err != nil {
			return nil, err
		}
		return types.ObjectType{Name: name, Fields: fields}, nil
	case types.KindScalar:
		return types.ScalarType{Name: name}, nil
	case types.KindEnum:
		values, err := namedList(props, "enumValues", where("enumValues"), false)
		if err != nil {
			return nil, err
		}
		return types.EnumType{Name: name, Values: values}, nil
	case types.KindInterface:
		fields, err := fieldList(props, "fields", where("fields"), false)
		if err != nil {
			return nil, err
		}
		return types.InterfaceType{Name: name, Fields: fields}, nil
	default:
		fields, err := fieldList(props, "inputFields", where("inputFields"), false)
		if err != nil {
			return nil, err
		}
		return types.InputObjectType{Name: name, Fields: fields}, nil
	}
}

// objectList returns the object elements of an array property. A
// required list must be present; an optional one may also be null.
func objectList(props map[string]jsast.Node, key, where string, required bool) ([]jsast.Node, error) {
	v, ok := props[key]
	if !ok || v.Kind() == jsast.KindNull {
		if required {
			return nil, stageerr.New(stage, stageerr.KindUnexpectedShape, "%s is missing", where)
		}
		return nil, nil
	}
	if v.Kind() != jsast.KindArray {
		return nil, stageerr.New(stage, stageerr.KindUnexpectedShape, "%s is %s at line %d, want an array", where, v.Kind(), v.Line())
	}
	elems := v.NamedChildren()
	for j, el := range elems {
		if el.Kind() != jsast.KindObject {
			return nil, stageerr.New(stage, stageerr.KindUnexpectedShape, "%s[%d] is %s at line %d, want an object", where, j, el.Kind(), el.Line())
		}
	}
	return elems, nil
}

func namedList(props map[string]jsast.Node, key, where string, required bool) ([]string, error) {
	elems, err := objectList(props, key, where, required)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(elems))
	for j, el := range elems {
		n, ok := stringProp(el.Properties(), "name")
		if !ok {
			return nil, stageerr.New(stage, stageerr.KindUnexpectedShape, "%s[%d] at line %d has no string name", where, j, el.Line())
		}
		names = append(names, n)
	}
	return names, nil
}

func fieldList(props map[string]jsast.Node, key, where string, required bool) ([]types.Field, error) {
	elems, err := objectList(props, key, where, required)
	if err != nil {
		return nil, err
	}
	fields := make([]types.Field, 0, len(elems))
	for j, el := range elems {
		fp := el.Properties()
		n, ok := stringProp(fp, "name")
		if !ok {
			return nil, stageerr.New(stage, stageerr.KindUnexpectedShape, "%s[%d] at line %d has no string name", where, j, el.Line())
		}
		ref, ok := fp["type"]
		if !ok || ref.Kind() != jsast.KindObject {
			return nil, stageerr.New(stage, stageerr.KindUnexpectedShape, "%s[%d] %s: type is missing or not an object", where, j, n)
		}
		tm, err := ResolveTypeModifier(ref)
		if err != nil {
			return nil, err
		}
		fields = append(fields, types.Field{Name: n, Type: tm})
	}
	return fields, nil
}

func stringProp(props map[string]jsast.Node, key string) (string, bool) {
	v, ok := props[key]
	if !ok || v.Kind() != jsast.KindString {
		return "", false
	}
	return v.StringValue()
}
