// Package manifest recovers the Next.js build manifest without evaluating
// it and indexes the chunk paths it lists.
package manifest

import (
	"context"
	"log/slog"

	"github.com/ogulcanaydogan/gqlrecover/internal/fetch"
	"github.com/ogulcanaydogan/gqlrecover/internal/jsast"
	"github.com/ogulcanaydogan/gqlrecover/internal/stageerr"
	"github.com/ogulcanaydogan/gqlrecover/pkg/types"
)

const stage = "manifest"

type Resolver struct {
	getter  fetch.Getter
	baseURL string
	logger  *slog.Logger
}

func NewResolver(getter fetch.Getter, baseURL string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{getter: getter, baseURL: baseURL, logger: logger}
}

// URL is the location of the manifest module for one build.
func URL(baseURL string, id types.BuildID) string {
	return fetch.URL(baseURL, "_next/static/"+string(id)+"/_buildManifest.js")
}

func (r *Resolver) Resolve(ctx context.Context, id types.BuildID) (types.AssetManifest, error) {
	url := URL(r.baseURL, id)
	src, err := r.getter.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	m, err := Evaluate(ctx, src)
	if err != nil {
		return nil, err
	}
	r.logger.Info("resolved manifest", "stage", stage, "url", url, "keys", len(m))
	return m, nil
}

// Evaluate statically evaluates a manifest module of the form
//
//	self.__BUILD_MANIFEST = function(a, b) { return {"/": [a, "x.js"]} }("p.js", "q.js")
//
// by binding parameters to the literal arguments and resolving the
// returned object's array properties.
func Evaluate(ctx context.Context, src string) (types.AssetManifest, error) {
	tree, err := jsast.Parse(ctx, stage, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	call, err := topLevelCall(tree.Root())
	if err != nil {
		return nil, err
	}
	fn, ok := call.Field("function")
	fn = jsast.Unparen(fn)
	if !ok || !fn.Is(jsast.FunctionKinds...) {
		return nil, stageerr.New(stage, stageerr.KindStructuralMismatch, "callee is %s, want a function literal", fn.Kind())
	}

	env := bindArguments(parameterNames(fn), call)

	ret, err := returnedObject(fn)
	if err != nil {
		return nil, err
	}

	out := make(types.AssetManifest)
	for _, prop := range ret.NamedChildren() {
		if prop.Kind() != jsast.KindPair {
			continue
		}
		keyNode, _ := prop.Field("key")
		if keyNode.Kind() != jsast.KindString {
			continue
		}
		key, _ := keyNode.StringValue()
		value, _ := prop.Field("value")
		value = jsast.Unparen(value)
		if value.Kind() != jsast.KindArray {
			continue
		}
		paths := make([]string, 0, len(value.NamedChildren()))
		for _, el := range value.NamedChildren() {
			p, err := resolveElement(el, env, key)
			if err != nil {
				return nil, err
			}
			paths = append(paths, p)
		}
		out[key] = paths
	}
	return out, nil
}

func topLevelCall(root jsast.Node) (jsast.Node, error) {
	for _, stmt := range root.NamedChildren() {
		if stmt.Kind() != jsast.KindExpressionStatement {
			continue
		}
		expr, _ := stmt.NamedChild(0)
		expr = jsast.Unparen(expr)
		if expr.Kind() == jsast.KindString {
			continue
		}
		if expr.Kind() == "sequence_expression" {
			expr, _ = expr.NamedChild(0)
			expr = jsast.Unparen(expr)
		}
		if expr.Kind() == jsast.KindAssignment {
			expr, _ = expr.Field("right")
			expr = jsast.Unparen(expr)
		}
		if expr.Kind() != jsast.KindCallExpression {
			return jsast.Node{}, stageerr.New(stage, stageerr.KindStructuralMismatch, "first statement is %s, want a call expression", expr.Kind())
		}
		return expr, nil
	}
	return jsast.Node{}, stageerr.New(stage, stageerr.KindStructuralMismatch, "no top-level expression statement")
}

// parameterNames lists the callee's parameters positionally; destructured
// parameters get an empty name and never bind.
func parameterNames(fn jsast.Node) []string {
	if single, ok := fn.Field("parameter"); ok {
		return []string{single.Text()}
	}
	params, ok := fn.Field("parameters")
	if !ok {
		return nil
	}
	var names []string
	for _, p := range params.NamedChildren() {
		switch p.Kind() {
		case jsast.KindIdentifier:
			names = append(names, p.Text())
		case jsast.KindAssignmentPattern:
			left, _ := p.Field("left")
			if left.Kind() == jsast.KindIdentifier {
				names = append(names, left.Text())
			} else {
				names = append(names, "")
			}
		default:
			names = append(names, "")
		}
	}
	return names
}

func bindArguments(params []string, call jsast.Node) map[string]string {
	env := make(map[string]string, len(params))
	args, _ := call.Field("arguments")
	for i, arg := range args.NamedChildren() {
		if i >= len(params) || params[i] == "" {
			continue
		}
		if v, ok := arg.LiteralValue(); ok {
			env[params[i]] = v
		}
	}
	return env
}

func returnedObject(fn jsast.Node) (jsast.Node, error) {
	body, ok := fn.Field("body")
	if !ok {
		return jsast.Node{}, stageerr.New(stage, stageerr.KindStructuralMismatch, "callee has no body")
	}
	if body.Kind() != jsast.KindStatementBlock {
		// Arrow function with an expression body.
		obj := jsast.Unparen(body)
		if obj.Kind() != jsast.KindObject {
			return jsast.Node{}, stageerr.New(stage, stageerr.KindStructuralMismatch, "arrow body is %s, want an object literal", obj.Kind())
		}
		return obj, nil
	}
	for _, stmt := range body.NamedChildren() {
		if stmt.Kind() != jsast.KindReturnStatement {
			continue
		}
		v, ok := stmt.NamedChild(0)
		v = jsast.Unparen(v)
		if !ok || v.Kind() != jsast.KindObject {
			return jsast.Node{}, stageerr.New(stage, stageerr.KindStructuralMismatch, "return value is %s, want an object literal", v.Kind())
		}
		return v, nil
	}
	return jsast.Node{}, stageerr.New(stage, stageerr.KindStructuralMismatch, "callee has no return statement")
}

func resolveElement(el jsast.Node, env map[string]string, key string) (string, error) {
	switch el.Kind() {
	case jsast.KindIdentifier:
		v, ok := env[el.Text()]
		if !ok {
			return "", stageerr.New(stage, stageerr.KindUnexpectedShape, "%q: identifier %s is not bound to a literal argument", key, el.Text())
		}
		return v, nil
	case jsast.KindString:
		v, _ := el.StringValue()
		return v, nil
	default:
		return "", stageerr.New(stage, stageerr.KindUnexpectedShape, "%q: element %s at line %d is neither an identifier nor a string", key, el.Kind(), el.Line())
	}
}
