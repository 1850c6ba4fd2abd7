// value.go — the runtime value model shared by the VM and its callers.
//
// Values are a small tagged union: Number, String, Boolean, Array, None.
// Arrays are boxed behind a pointer so SetIndex mutates the array seen
// by the bound variable. Equality is structural and deep; arrays compare
// elementwise.
package aslang

import (
	"strconv"
	"strings"
)

// ValueTag discriminates the runtime value union.
type ValueTag uint8

const (
	VTNone ValueTag = iota
	VTNumber
	VTString
	VTBool
	VTArray
)

// Value is a runtime datum. Data holds float64, string, bool or
// *ArrayObject depending on Tag; nil for VTNone.
type Value struct {
	Tag  ValueTag
	Data any
}

// ArrayObject boxes the element slice so arrays mutate in place.
type ArrayObject struct {
	Elems []Value
}

// None is the unit value.
var None = Value{Tag: VTNone}

func Num(n float64) Value { return Value{Tag: VTNumber, Data: n} }
func Str(s string) Value  { return Value{Tag: VTString, Data: s} }
func Bool(b bool) Value   { return Value{Tag: VTBool, Data: b} }

func Arr(elems []Value) Value {
	return Value{Tag: VTArray, Data: &ArrayObject{Elems: elems}}
}

// AsNumber returns the numeric payload; ok is false for other tags.
func (v Value) AsNumber() (float64, bool) {
	if v.Tag != VTNumber {
		return 0, false
	}
	return v.Data.(float64), true
}

// AsArray returns the boxed array; ok is false for other tags.
func (v Value) AsArray() (*ArrayObject, bool) {
	if v.Tag != VTArray {
		return nil, false
	}
	return v.Data.(*ArrayObject), true
}

// TypeName names the tag for diagnostics.
func (v Value) TypeName() string {
	switch v.Tag {
	case VTNumber:
		return "Number"
	case VTString:
		return "String"
	case VTBool:
		return "Boolean"
	case VTArray:
		return "Array"
	default:
		return "None"
	}
}

// FormatValue renders a value the way output prints it: numbers without
// trailing zeros, strings without quotes, booleans as true/false, arrays
// as [e1, e2, ...], None as "none".
func FormatValue(v Value) string {
	switch v.Tag {
	case VTNumber:
		return strconv.FormatFloat(v.Data.(float64), 'f', -1, 64)
	case VTString:
		return v.Data.(string)
	case VTBool:
		return strconv.FormatBool(v.Data.(bool))
	case VTArray:
		arr := v.Data.(*ArrayObject)
		var b strings.Builder
		b.WriteByte('[')
		for i, elem := range arr.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(FormatValue(elem))
		}
		b.WriteByte(']')
		return b.String()
	default:
		return "none"
	}
}

// ValuesEqual is deep structural equality.
func ValuesEqual(a, b Value) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case VTNumber:
		return a.Data.(float64) == b.Data.(float64)
	case VTString:
		return a.Data.(string) == b.Data.(string)
	case VTBool:
		return a.Data.(bool) == b.Data.(bool)
	case VTArray:
		x, y := a.Data.(*ArrayObject), b.Data.(*ArrayObject)
		if len(x.Elems) != len(y.Elems) {
			return false
		}
		for i := range x.Elems {
			if !ValuesEqual(x.Elems[i], y.Elems[i]) {
				return false
			}
		}
		return true
	default: // VTNone
		return true
	}
}

// Truthy implements the conditional-jump rule: a value counts as true
// only when it is Boolean(true) or a non-zero Number.
func Truthy(v Value) bool {
	switch v.Tag {
	case VTBool:
		return v.Data.(bool)
	case VTNumber:
		return v.Data.(float64) != 0
	default:
		return false
	}
}
