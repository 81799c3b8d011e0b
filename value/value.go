// Package value implements the dynamically-typed value variant shared between
// Go code and the JavaScript runtime.
//
// A Value is a tagged union over the JavaScript type lattice: undefined, null,
// boolean, number, string, array, object, and function. Unlike goja.Value, a
// Value (other than the function variant) is plain Go data and may be built,
// inspected, and passed between goroutines freely; conversion to and from the
// runtime's representation happens only on the event loop goroutine, via
// ToGoja and FromGoja.
//
// Arithmetic and comparison are exposed as named functions (Add, LessThan,
// ...) that dispatch on the type tag and return an *OpError when the operand
// types do not admit the operation.
package value

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dop251/goja"
)

// Type identifies the variant stored in a Value.
type Type uint8

const (
	TypeUndefined Type = iota
	TypeNull
	TypeBoolean
	TypeNumber
	TypeString
	TypeArray
	TypeObject
	TypeFunction
)

// String returns the JavaScript name of the type.
func (t Type) String() string {
	switch t {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeArray:
		return "array"
	case TypeObject:
		return "object"
	case TypeFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Value is one dynamically-typed JavaScript value.
//
// The zero Value is undefined. Values are immutable once constructed; the
// array and object variants share their backing storage when copied.
type Value struct {
	typ Type
	b   bool
	n   float64
	s   string
	arr []Value
	obj map[string]Value
	// fn is an opaque handle to a JavaScript function. It is only valid on
	// the event loop goroutine of the runtime that produced it.
	fn goja.Value
}

// Undefined returns the undefined value.
func Undefined() Value { return Value{} }

// Null returns the null value.
func Null() Value { return Value{typ: TypeNull} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{typ: TypeBoolean, b: b} }

// Number returns a number value.
func Number(n float64) Value { return Value{typ: TypeNumber, n: n} }

// Int returns a number value holding an integer.
func Int(n int64) Value { return Value{typ: TypeNumber, n: float64(n)} }

// Str returns a string value.
func Str(s string) Value { return Value{typ: TypeString, s: s} }

// Array returns an array value holding the given elements.
func Array(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{typ: TypeArray, arr: elems}
}

// Strings returns an array value holding the given strings.
func Strings(elems ...string) Value {
	vs := make([]Value, len(elems))
	for i, s := range elems {
		vs[i] = Str(s)
	}
	return Value{typ: TypeArray, arr: vs}
}

// Object returns an object value with the given fields. The map is used
// directly, not copied.
func Object(fields map[string]Value) Value {
	if fields == nil {
		fields = map[string]Value{}
	}
	return Value{typ: TypeObject, obj: fields}
}

// Function wraps a JavaScript function handle. The handle is only usable on
// the event loop goroutine that owns it.
func Function(fn goja.Value) Value { return Value{typ: TypeFunction, fn: fn} }

// Type returns the variant tag.
func (v Value) Type() Type { return v.typ }

// Type tests, mirroring the runtime's own type predicates.

func (v Value) IsUndefined() bool { return v.typ == TypeUndefined }
func (v Value) IsNull() bool      { return v.typ == TypeNull }
func (v Value) IsBoolean() bool   { return v.typ == TypeBoolean }
func (v Value) IsNumber() bool    { return v.typ == TypeNumber }
func (v Value) IsString() bool    { return v.typ == TypeString }
func (v Value) IsArray() bool     { return v.typ == TypeArray }
func (v Value) IsObject() bool    { return v.typ == TypeObject }
func (v Value) IsFunction() bool  { return v.typ == TypeFunction }

// Bool extracts the boolean payload.
func (v Value) Bool() (bool, error) {
	if v.typ != TypeBoolean {
		return false, &ConversionError{Want: TypeBoolean, Got: v.typ}
	}
	return v.b, nil
}

// Float64 extracts the number payload.
func (v Value) Float64() (float64, error) {
	if v.typ != TypeNumber {
		return 0, &ConversionError{Want: TypeNumber, Got: v.typ}
	}
	return v.n, nil
}

// Int64 extracts the number payload, truncating toward zero.
func (v Value) Int64() (int64, error) {
	if v.typ != TypeNumber {
		return 0, &ConversionError{Want: TypeNumber, Got: v.typ}
	}
	return int64(v.n), nil
}

// Str extracts the string payload.
func (v Value) Str() (string, error) {
	if v.typ != TypeString {
		return "", &ConversionError{Want: TypeString, Got: v.typ}
	}
	return v.s, nil
}

// Elems returns the elements of an array value.
func (v Value) Elems() ([]Value, error) {
	if v.typ != TypeArray {
		return nil, &ConversionError{Want: TypeArray, Got: v.typ}
	}
	return v.arr, nil
}

// Fields returns the fields of an object value.
func (v Value) Fields() (map[string]Value, error) {
	if v.typ != TypeObject {
		return nil, &ConversionError{Want: TypeObject, Got: v.typ}
	}
	return v.obj, nil
}

// Callable returns the wrapped function handle. Only valid on the owning
// event loop goroutine.
func (v Value) Callable() (goja.Value, error) {
	if v.typ != TypeFunction {
		return nil, &ConversionError{Want: TypeFunction, Got: v.typ}
	}
	return v.fn, nil
}

// StringSlice extracts an array of strings.
func (v Value) StringSlice() ([]string, error) {
	elems, err := v.Elems()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(elems))
	for i, e := range elems {
		s, err := e.Str()
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = s
	}
	return out, nil
}

// String renders the value the way JavaScript's String() conversion would.
func (v Value) String() string {
	switch v.typ {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		return strconv.FormatBool(v.b)
	case TypeNumber:
		return formatNumber(v.n)
	case TypeString:
		return v.s
	case TypeArray:
		parts := make([]string, len(v.arr))
		for i, e := range v.arr {
			parts[i] = e.String()
		}
		return strings.Join(parts, ",")
	case TypeObject:
		return "[object Object]"
	case TypeFunction:
		return "function"
	default:
		return "unknown"
	}
}

// formatNumber renders a float the way JavaScript does for finite values:
// integral values print without a fractional part.
func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Equal reports loose equality in the style of JavaScript's ==: same-type
// values compare by contents, null and undefined equate, and mixed
// number/string/boolean operands compare numerically.
func (v Value) Equal(o Value) bool {
	if v.typ == o.typ {
		return v.StrictEqual(o)
	}
	if (v.typ == TypeNull && o.typ == TypeUndefined) ||
		(v.typ == TypeUndefined && o.typ == TypeNull) {
		return true
	}
	ln, lok := v.numeric()
	rn, rok := o.numeric()
	return lok && rok && ln == rn
}

// numeric applies JavaScript's ToNumber to the coercible primitive variants.
func (v Value) numeric() (float64, bool) {
	switch v.typ {
	case TypeNumber:
		return v.n, true
	case TypeBoolean:
		if v.b {
			return 1, true
		}
		return 0, true
	case TypeString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// StrictEqual reports same-type, deep equality in the style of ===. Detached
// arrays and objects compare by contents, since no object identity survives
// extraction; function values compare by handle identity.
func (v Value) StrictEqual(o Value) bool {
	if v.typ != o.typ {
		return false
	}
	switch v.typ {
	case TypeUndefined, TypeNull:
		return true
	case TypeBoolean:
		return v.b == o.b
	case TypeNumber:
		return v.n == o.n
	case TypeString:
		return v.s == o.s
	case TypeArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].StrictEqual(o.arr[i]) {
				return false
			}
		}
		return true
	case TypeObject:
		if len(v.obj) != len(o.obj) {
			return false
		}
		for k, ve := range v.obj {
			oe, ok := o.obj[k]
			if !ok || !ve.StrictEqual(oe) {
				return false
			}
		}
		return true
	case TypeFunction:
		return v.fn == o.fn
	default:
		return false
	}
}
