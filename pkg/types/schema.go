package types

// TypeKind is the introspection kind of a type or type reference.
type TypeKind string

const (
	KindNonNull     TypeKind = "NON_NULL"
	KindList        TypeKind = "LIST"
	KindScalar      TypeKind = "SCALAR"
	KindObject      TypeKind = "OBJECT"
	KindUnion       TypeKind = "UNION"
	KindEnum        TypeKind = "ENUM"
	KindInterface   TypeKind = "INTERFACE"
	KindInputObject TypeKind = "INPUT_OBJECT"
)

// Wrapper reports whether the kind wraps another type reference.
func (k TypeKind) Wrapper() bool {
	return k == KindNonNull || k == KindList
}

// NamedLeaf reports whether a leaf of this kind must carry a name.
func (k TypeKind) NamedLeaf() bool {
	return k == KindObject || k == KindUnion
}

// TypeModifier is one node of a type reference such as [Foo]!.
//
// NON_NULL and LIST nodes always carry Inner; leaves never do.
type TypeModifier struct {
	Kind  TypeKind      `json:"kind"`
	Name  string        `json:"name,omitempty"`
	Inner *TypeModifier `json:"of_type,omitempty"`
}

func NonNull(inner TypeModifier) TypeModifier {
	return TypeModifier{Kind: KindNonNull, Inner: &inner}
}

func List(inner TypeModifier) TypeModifier {
	return TypeModifier{Kind: KindList, Inner: &inner}
}

func Named(kind TypeKind, name string) TypeModifier {
	return TypeModifier{Kind: kind, Name: name}
}

type Field struct {
	Name string       `json:"name"`
	Type TypeModifier `json:"type"`
}

// SchemaType is one recovered type declaration.
type SchemaType interface {
	TypeName() string
	TypeKind() TypeKind
}

type ObjectType struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

func (t ObjectType) TypeName() string   { return t.Name }
func (t ObjectType) TypeKind() TypeKind { return KindObject }

type UnionType struct {
	Name          string   `json:"name"`
	PossibleTypes []string `json:"possible_types"`
}

func (t UnionType) TypeName() string   { return t.Name }
func (t UnionType) TypeKind() TypeKind { return KindUnion }

type ScalarType struct {
	Name string `json:"name"`
}

func (t ScalarType) TypeName() string   { return t.Name }
func (t ScalarType) TypeKind() TypeKind { return KindScalar }

type EnumType struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

func (t EnumType) TypeName() string   { return t.Name }
func (t EnumType) TypeKind() TypeKind { return KindEnum }

type InterfaceType struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

func (t InterfaceType) TypeName() string   { return t.Name }
func (t InterfaceType) TypeKind() TypeKind { return KindInterface }

type InputObjectType struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

func (t InputObjectType) TypeName() string   { return t.Name }
func (t InputObjectType) TypeKind() TypeKind { return KindInputObject }

// SchemaTypes keeps the source array order of the introspection data.
type SchemaTypes []SchemaType

// CountByKind tallies the declarations per kind.
func (s SchemaTypes) CountByKind() map[TypeKind]int {
	out := make(map[TypeKind]int)
	for _, t := range s {
		out[t.TypeKind()]++
	}
	return out
}
