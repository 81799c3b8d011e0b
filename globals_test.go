package gojacallback

import (
	"fmt"
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/require"
)

func TestConsole(t *testing.T) {
	t.Parallel()
	rt := testRuntime(t)
	require.NoError(t, rt.RunOnLoopSync(func(vm *goja.Runtime) error {
		if err := ConsoleLog(vm, vm.ToValue("log line"), vm.ToValue(1)); err != nil {
			return err
		}
		if err := ConsoleWarn(vm, vm.ToValue("warn line")); err != nil {
			return err
		}
		return ConsoleError(vm, vm.ToValue("error line"))
	}))
}

func TestJSONHelpers(t *testing.T) {
	t.Parallel()
	rt := testRuntime(t)
	var rendered string
	require.NoError(t, rt.RunOnLoopSync(func(vm *goja.Runtime) error {
		v, err := JSONParse(vm, `{"a":[1,2,3],"b":"x"}`)
		if err != nil {
			return err
		}
		if rendered, err = JSONStringify(vm, v); err != nil {
			return err
		}
		if _, err := JSONParse(vm, `{not json`); err == nil {
			return fmt.Errorf("JSONParse of malformed input must fail")
		}
		return nil
	}))
	require.JSONEq(t, `{"a":[1,2,3],"b":"x"}`, rendered)
}
