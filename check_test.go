package gojacallback

import (
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/goja-callback/value"
)

func TestCheckArgs(t *testing.T) {
	t.Parallel()
	vm := goja.New()
	call := func(args ...goja.Value) goja.FunctionCall {
		return goja.FunctionCall{Arguments: args}
	}

	t.Run("matching", func(t *testing.T) {
		err := CheckArgs(call(vm.ToValue("x"), vm.ToValue(3)), "doThing",
			value.TypeString, value.TypeNumber)
		require.NoError(t, err)
	})

	t.Run("extra trailing arguments permitted", func(t *testing.T) {
		err := CheckArgs(call(vm.ToValue("x"), vm.ToValue(3)), "doThing",
			value.TypeString)
		require.NoError(t, err)
	})

	t.Run("arity failure", func(t *testing.T) {
		err := CheckArgs(call(vm.ToValue("x")), "doThing",
			value.TypeString, value.TypeNumber)
		require.EqualError(t, err, "doThing requires 2 arguments")
		var am *ArgumentMismatchError
		require.ErrorAs(t, err, &am)
		require.Zero(t, am.Position)
		require.Equal(t, 2, am.Count)
	})

	t.Run("type mismatch names 1-based position", func(t *testing.T) {
		err := CheckArgs(call(vm.ToValue("x"), vm.ToValue("y")), "doThing",
			value.TypeString, value.TypeNumber)
		require.EqualError(t, err,
			"Argument type mismatch: doThing requires type number at position 2")
		var am *ArgumentMismatchError
		require.ErrorAs(t, err, &am)
		require.Equal(t, 2, am.Position)
		require.Equal(t, value.TypeNumber, am.Want)
	})

	t.Run("null and undefined are distinct", func(t *testing.T) {
		require.NoError(t, CheckArgs(call(goja.Null()), "f", value.TypeNull))
		require.NoError(t, CheckArgs(call(goja.Undefined()), "f", value.TypeUndefined))
		require.Error(t, CheckArgs(call(goja.Null()), "f", value.TypeUndefined))
	})
}

func TestCheckLength(t *testing.T) {
	t.Parallel()
	vm := goja.New()
	fc := goja.FunctionCall{Arguments: []goja.Value{vm.ToValue(1), vm.ToValue(2)}}
	require.NoError(t, CheckLength(fc, "pair", 2))
	require.EqualError(t, CheckLength(fc, "pair", 3), "pair requires 3 arguments")
	require.EqualError(t, CheckLength(fc, "pair", 1), "pair requires 1 arguments")
}

func TestFromArgument(t *testing.T) {
	t.Parallel()
	rt := testRuntime(t)
	require.NoError(t, rt.LoadScript("reg.js", `
		function register(name, fn) { globalThis[name] = fn }
	`))

	got := make(chan error, 1)
	require.NoError(t, rt.RunOnLoopSync(func(vm *goja.Runtime) error {
		register := func(fc goja.FunctionCall) goja.Value {
			cb, err := FromArgument[int64](rt, fc, 0, "register")
			got <- err
			if err == nil {
				t.Cleanup(cb.Stop)
			}
			return goja.Undefined()
		}
		return vm.Set("goRegister", register)
	}))

	require.NoError(t, rt.LoadScript("use.js", `goRegister(x => x + 1)`))
	require.NoError(t, <-got)

	require.NoError(t, rt.LoadScript("bad.js", `goRegister("not a function")`))
	err := <-got
	require.EqualError(t, err,
		"Argument type mismatch: register requires type function at position 1")

	require.NoError(t, rt.LoadScript("few.js", `goRegister()`))
	err = <-got
	require.EqualError(t, err, "register requires 1 arguments")
}
