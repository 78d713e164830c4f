// Package operations recovers the GraphQL documents compiled into a chunk
// as tagged-template helper functions.
package operations

import (
	"log/slog"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/ogulcanaydogan/gqlrecover/internal/jsast"
	"github.com/ogulcanaydogan/gqlrecover/pkg/types"
)

const stage = "operations"

// Sentinel is the leading token of the first statement after the data
// section, e.g. `!function(e){...}(s||(s={}))`.
const Sentinel = "!"

// Element reaches the document literal of one helper:
//
//	function r() { let e = (0, a._)(["\n  query Foo {...}\n"]); ... }
var Element = jsast.Path{
	Name: "operation",
	Steps: []jsast.Step{
		{Name: "helper", Select: jsast.Self(), Kinds: []string{jsast.KindFunctionDeclaration}},
		{Name: "helper body", Select: jsast.Field("body"), Kinds: []string{jsast.KindStatementBlock}},
		{Name: "declaration", Select: jsast.Child(0), Kinds: []string{jsast.KindLexicalDeclaration, jsast.KindVariableDeclaration}},
		{Name: "declarator", Select: jsast.Child(0), Kinds: []string{jsast.KindVariableDeclarator}},
		{Name: "tag call", Select: jsast.Field("value"), Kinds: []string{jsast.KindCallExpression}},
		{Name: "tag arguments", Select: jsast.Field("arguments"), Kinds: []string{jsast.KindArguments}},
		{Name: "strings", Select: jsast.Child(0), Kinds: []string{jsast.KindArray}},
		{Name: "document", Select: jsast.Child(0), Kinds: []string{jsast.KindString, jsast.KindTemplateString}},
	},
}

// Extract returns one document per element before the sentinel, in
// order. Elements at or after the sentinel are not inspected. A list
// without a sentinel is read to its end.
func Extract(elements []jsast.Node, logger *slog.Logger) ([]types.OperationDocument, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var docs []types.OperationDocument
	for _, el := range elements {
		if el.FirstToken() == Sentinel {
			break
		}
		lit, err := Element.Walk(stage, el)
		if err != nil {
			return nil, err
		}
		raw := lit.Text()
		if lit.Kind() == jsast.KindTemplateString {
			raw = lit.RawStringContent()
		}
		text := Normalize(raw)
		kind, name := Header(text)
		docs = append(docs, types.OperationDocument{Text: text, Kind: kind, Name: name})
	}
	logger.Info("extracted operations", "stage", stage, "documents", len(docs))
	return docs, nil
}

// Normalize turns the source text of a compiled template into the
// document text: double quotes are dropped, `\n` escapes become
// newlines, each two-space indent becomes a tab, and the result is
// trimmed. Quotes inside the document are dropped too.
func Normalize(raw string) string {
	s := strings.ReplaceAll(raw, `"`, "")
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, "  ", "\t")
	return strings.TrimSpace(s)
}

// Header returns the kind and name of the first definition in a
// document. Anonymous queries such as `{ me { id } }` have kind query
// and no name. Text the GraphQL parser rejects is classified by its
// leading keywords instead.
func Header(text string) (kind, name string) {
	doc, err := parser.ParseQuery(&ast.Source{Input: text})
	if err != nil {
		return scanHeader(text)
	}
	var (
		op   *ast.OperationDefinition
		frag *ast.FragmentDefinition
	)
	if len(doc.Operations) > 0 {
		op = doc.Operations[0]
	}
	if len(doc.Fragments) > 0 {
		frag = doc.Fragments[0]
	}
	switch {
	case op != nil && (frag == nil || offset(op.Position) <= offset(frag.Position)):
		return string(op.Operation), op.Name
	case frag != nil:
		return types.OperationFragment, frag.Name
	default:
		return types.OperationQuery, ""
	}
}

func offset(p *ast.Position) int {
	if p == nil {
		return 0
	}
	return p.Start
}

// scanHeader reads the keyword and name ahead of the first selection,
// argument list or directive, ignoring # comments.
func scanHeader(text string) (kind, name string) {
	var head strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		if i := strings.IndexAny(line, "{(@"); i >= 0 {
			head.WriteString(line[:i])
			break
		}
		head.WriteString(line)
		head.WriteByte(' ')
	}
	fields := strings.Fields(head.String())
	if len(fields) == 0 {
		return types.OperationQuery, ""
	}
	switch fields[0] {
	case types.OperationQuery, types.OperationMutation, types.OperationSubscription, types.OperationFragment:
		kind = fields[0]
	default:
		return types.OperationQuery, ""
	}
	if len(fields) > 1 && fields[1] != "on" {
		name = fields[1]
	}
	return kind, name
}

// Join concatenates documents with a blank line between them.
func Join(docs []types.OperationDocument) string {
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}
	return strings.Join(texts, "\n\n")
}
