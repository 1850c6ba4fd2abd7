// types.go — the static type model used by the ambient checker.
//
// Two types are compatible iff either is Any or they are structurally
// equal. Unknown exists only as an inference placeholder and never
// compares equal to anything but itself.
package aslang

import "strings"

// TypeKind tags a static type.
type TypeKind int

const (
	TypeNumber TypeKind = iota
	TypeString
	TypeBoolean
	TypeArray
	TypeFunction
	TypeAny
	TypeVoid
	TypeUnknown
)

// Type is a structural static type. Elem is set for arrays; Params and
// Ret for function types.
type Type struct {
	Kind   TypeKind
	Elem   *Type
	Params []Type
	Ret    *Type
}

var (
	NumberType  = Type{Kind: TypeNumber}
	StringType  = Type{Kind: TypeString}
	BooleanType = Type{Kind: TypeBoolean}
	AnyType     = Type{Kind: TypeAny}
	VoidType    = Type{Kind: TypeVoid}
	UnknownType = Type{Kind: TypeUnknown}
)

// ArrayOf builds Array(elem).
func ArrayOf(elem Type) Type {
	e := elem
	return Type{Kind: TypeArray, Elem: &e}
}

// FuncOf builds Function{params -> ret}.
func FuncOf(params []Type, ret Type) Type {
	r := ret
	return Type{Kind: TypeFunction, Params: params, Ret: &r}
}

// Equal reports structural equality.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case TypeArray:
		return t.Elem.Equal(*o.Elem)
	case TypeFunction:
		if len(t.Params) != len(o.Params) {
			return false
		}
		for i := range t.Params {
			if !t.Params[i].Equal(o.Params[i]) {
				return false
			}
		}
		return t.Ret.Equal(*o.Ret)
	default:
		return true
	}
}

// Compatible reports whether a value of type o may flow where t is
// expected: either side Any, or structural equality.
func (t Type) Compatible(o Type) bool {
	if t.Kind == TypeAny || o.Kind == TypeAny {
		return true
	}
	return t.Equal(o)
}

func (t Type) String() string {
	switch t.Kind {
	case TypeNumber:
		return "Number"
	case TypeString:
		return "String"
	case TypeBoolean:
		return "Boolean"
	case TypeArray:
		return "Array<" + t.Elem.String() + ">"
	case TypeFunction:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.String()
		}
		return "fn(" + strings.Join(parts, ", ") + ") -> " + t.Ret.String()
	case TypeAny:
		return "Any"
	case TypeVoid:
		return "Void"
	case TypeUnknown:
		return "Unknown"
	default:
		return "?"
	}
}
