package value

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"github.com/dop251/goja"
)

// Marshaler is implemented by Go types that control their own conversion to a
// runtime value. The bridge prefers this over generic conversion when
// rendering call arguments. MarshalJS is always invoked on the event loop
// goroutine.
type Marshaler interface {
	MarshalJS(vm *goja.Runtime) (goja.Value, error)
}

// Unmarshaler is implemented by Go types that control their own conversion
// from a runtime value. UnmarshalJS is always invoked on the event loop
// goroutine.
type Unmarshaler interface {
	UnmarshalJS(vm *goja.Runtime, v goja.Value) error
}

// TypeOf reports the variant tag a runtime value would convert to.
func TypeOf(v goja.Value) Type {
	if v == nil || goja.IsUndefined(v) {
		return TypeUndefined
	}
	if goja.IsNull(v) {
		return TypeNull
	}
	if _, ok := goja.AssertFunction(v); ok {
		return TypeFunction
	}
	if obj, ok := v.(*goja.Object); ok {
		if obj.ClassName() == "Array" {
			return TypeArray
		}
		return TypeObject
	}
	if t := v.ExportType(); t != nil {
		switch t.Kind() {
		case reflect.Bool:
			return TypeBoolean
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			return TypeNumber
		case reflect.String:
			return TypeString
		}
	}
	return TypeObject
}

// ToGoja converts a Value to its runtime representation. Must be called on
// the event loop goroutine.
func ToGoja(vm *goja.Runtime, v Value) (goja.Value, error) {
	switch v.typ {
	case TypeUndefined:
		return goja.Undefined(), nil
	case TypeNull:
		return goja.Null(), nil
	case TypeBoolean:
		return vm.ToValue(v.b), nil
	case TypeNumber:
		return vm.ToValue(v.n), nil
	case TypeString:
		return vm.ToValue(v.s), nil
	case TypeArray:
		elems := make([]interface{}, len(v.arr))
		for i, e := range v.arr {
			gv, err := ToGoja(vm, e)
			if err != nil {
				return nil, fmt.Errorf("array element %d: %w", i, err)
			}
			elems[i] = gv
		}
		return vm.NewArray(elems...), nil
	case TypeObject:
		obj := vm.NewObject()
		for k, e := range v.obj {
			gv, err := ToGoja(vm, e)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", k, err)
			}
			if err := obj.Set(k, gv); err != nil {
				return nil, fmt.Errorf("field %q: %w", k, err)
			}
		}
		return obj, nil
	case TypeFunction:
		if v.fn == nil {
			return goja.Undefined(), nil
		}
		return v.fn, nil
	default:
		return nil, fmt.Errorf("unsupported value type %d", v.typ)
	}
}

// FromGoja converts a runtime value to a Value. Must be called on the event
// loop goroutine. Function values keep an opaque handle that remains
// loop-affine; everything else becomes plain Go data.
func FromGoja(vm *goja.Runtime, gv goja.Value) (Value, error) {
	switch TypeOf(gv) {
	case TypeUndefined:
		return Undefined(), nil
	case TypeNull:
		return Null(), nil
	case TypeBoolean:
		return Bool(gv.ToBoolean()), nil
	case TypeNumber:
		return Number(gv.ToFloat()), nil
	case TypeString:
		return Str(gv.String()), nil
	case TypeFunction:
		return Function(gv), nil
	case TypeArray:
		obj := gv.(*goja.Object)
		n := obj.Get("length").ToInteger()
		elems := make([]Value, 0, n)
		for i := int64(0); i < n; i++ {
			ev, err := FromGoja(vm, obj.Get(strconv.FormatInt(i, 10)))
			if err != nil {
				return Value{}, fmt.Errorf("array element %d: %w", i, err)
			}
			elems = append(elems, ev)
		}
		return Array(elems...), nil
	case TypeObject:
		obj, ok := gv.(*goja.Object)
		if !ok {
			return Value{}, fmt.Errorf("unsupported runtime value %v", gv)
		}
		fields := make(map[string]Value)
		for _, k := range obj.Keys() {
			fv, err := FromGoja(vm, obj.Get(k))
			if err != nil {
				return Value{}, fmt.Errorf("field %q: %w", k, err)
			}
			fields[k] = fv
		}
		return Object(fields), nil
	default:
		return Value{}, fmt.Errorf("unsupported runtime value %v", gv)
	}
}

// MarshalJSON renders the value as JSON. Undefined and function values render
// as null, matching JSON.stringify's treatment inside arrays.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.toNative())
}

// UnmarshalJSON parses JSON into the value.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = fromNative(raw)
	return nil
}

func (v Value) toNative() interface{} {
	switch v.typ {
	case TypeBoolean:
		return v.b
	case TypeNumber:
		return v.n
	case TypeString:
		return v.s
	case TypeArray:
		out := make([]interface{}, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.toNative()
		}
		return out
	case TypeObject:
		out := make(map[string]interface{}, len(v.obj))
		for k, e := range v.obj {
			out[k] = e.toNative()
		}
		return out
	default:
		return nil
	}
}

func fromNative(raw interface{}) Value {
	switch t := raw.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case float64:
		return Number(t)
	case string:
		return Str(t)
	case []interface{}:
		elems := make([]Value, len(t))
		for i, e := range t {
			elems[i] = fromNative(e)
		}
		return Array(elems...)
	case map[string]interface{}:
		fields := make(map[string]Value, len(t))
		for k, e := range t {
			fields[k] = fromNative(e)
		}
		return Object(fields)
	default:
		return Undefined()
	}
}
