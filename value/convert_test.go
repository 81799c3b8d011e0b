package value

import (
	"encoding/json"
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/require"
)

func TestTypeOf(t *testing.T) {
	t.Parallel()
	vm := goja.New()

	require.Equal(t, TypeUndefined, TypeOf(nil))
	require.Equal(t, TypeUndefined, TypeOf(goja.Undefined()))
	require.Equal(t, TypeNull, TypeOf(goja.Null()))
	require.Equal(t, TypeBoolean, TypeOf(vm.ToValue(true)))
	require.Equal(t, TypeNumber, TypeOf(vm.ToValue(3)))
	require.Equal(t, TypeNumber, TypeOf(vm.ToValue(3.5)))
	require.Equal(t, TypeString, TypeOf(vm.ToValue("s")))
	require.Equal(t, TypeArray, TypeOf(vm.NewArray(1, 2)))
	require.Equal(t, TypeObject, TypeOf(vm.NewObject()))

	fn, err := vm.RunString(`(function () {})`)
	require.NoError(t, err)
	require.Equal(t, TypeFunction, TypeOf(fn))
}

func TestRuntimeRoundTrip(t *testing.T) {
	t.Parallel()
	vm := goja.New()

	for _, tc := range []struct {
		name string
		give Value
	}{
		{"undefined", Undefined()},
		{"null", Null()},
		{"boolean", Bool(true)},
		{"integer", Int(42)},
		{"fraction", Number(-1.25)},
		{"string", Str("plain")},
		{"string with NUL and unicode", Str("a\x00bü\U0001F600")},
		{"strings", Strings("a", "b", "c")},
		{"nested array", Array(Int(1), Array(Str("x")), Null())},
		{"object", Object(map[string]Value{
			"n":    Int(7),
			"s":    Str("v"),
			"list": Strings("p", "q"),
		})},
	} {
		t.Run(tc.name, func(t *testing.T) {
			gv, err := ToGoja(vm, tc.give)
			require.NoError(t, err)
			got, err := FromGoja(vm, gv)
			require.NoError(t, err)
			require.True(t, tc.give.Equal(got), "round trip changed %v to %v", tc.give, got)
		})
	}
}

func TestFromGoja_Function(t *testing.T) {
	t.Parallel()
	vm := goja.New()
	fn, err := vm.RunString(`(function (x) { return x + 1 })`)
	require.NoError(t, err)

	v, err := FromGoja(vm, fn)
	require.NoError(t, err)
	require.True(t, v.IsFunction())

	handle, err := v.Callable()
	require.NoError(t, err)
	callable, ok := goja.AssertFunction(handle)
	require.True(t, ok)
	res, err := callable(goja.Undefined(), vm.ToValue(41))
	require.NoError(t, err)
	require.Equal(t, int64(42), res.ToInteger())
}

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()

	give := Object(map[string]Value{
		"b":    Bool(false),
		"n":    Number(2.5),
		"s":    Str("x"),
		"arr":  Array(Int(1), Null()),
		"null": Null(),
	})
	data, err := json.Marshal(give)
	require.NoError(t, err)

	var got Value
	require.NoError(t, json.Unmarshal(data, &got))
	require.True(t, give.Equal(got))
}

func TestJSONMarshal_UndefinedAndFunctionAsNull(t *testing.T) {
	t.Parallel()
	data, err := json.Marshal(Array(Undefined(), Int(1)))
	require.NoError(t, err)
	require.JSONEq(t, `[null, 1]`, string(data))
}
