package gojacallback

import (
	"fmt"

	"github.com/dop251/goja"
)

// Convenience wrappers over the runtime's global objects. All of these must
// be called on the event loop goroutine; they take the VM directly so they
// compose with RunOnLoop callbacks and native module functions.

// Require loads a module through the runtime's CommonJS require binding.
func Require(vm *goja.Runtime, name string) (*goja.Object, error) {
	req, ok := goja.AssertFunction(vm.GlobalObject().Get("require"))
	if !ok {
		return nil, fmt.Errorf("require is not available in this runtime")
	}
	v, err := req(goja.Undefined(), vm.ToValue(name))
	if err != nil {
		return nil, fmt.Errorf("require(%q): %w", name, err)
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, fmt.Errorf("require(%q): module did not export an object", name)
	}
	return obj, nil
}

// ConsoleLog calls console.log with the given arguments.
func ConsoleLog(vm *goja.Runtime, args ...goja.Value) error {
	return callGlobalMethod(vm, "console", "log", args...)
}

// ConsoleWarn calls console.warn with the given arguments.
func ConsoleWarn(vm *goja.Runtime, args ...goja.Value) error {
	return callGlobalMethod(vm, "console", "warn", args...)
}

// ConsoleError calls console.error with the given arguments.
func ConsoleError(vm *goja.Runtime, args ...goja.Value) error {
	return callGlobalMethod(vm, "console", "error", args...)
}

// JSONStringify renders a runtime value through the global JSON.stringify.
func JSONStringify(vm *goja.Runtime, v goja.Value) (string, error) {
	res, err := callGlobalFunc(vm, "JSON", "stringify", v)
	if err != nil {
		return "", err
	}
	return res.String(), nil
}

// JSONParse parses a JSON string through the global JSON.parse.
func JSONParse(vm *goja.Runtime, s string) (goja.Value, error) {
	return callGlobalFunc(vm, "JSON", "parse", vm.ToValue(s))
}

func callGlobalMethod(vm *goja.Runtime, objName, fnName string, args ...goja.Value) error {
	_, err := callGlobalFunc(vm, objName, fnName, args...)
	return err
}

func callGlobalFunc(vm *goja.Runtime, objName, fnName string, args ...goja.Value) (goja.Value, error) {
	objVal := vm.GlobalObject().Get(objName)
	obj, ok := objVal.(*goja.Object)
	if !ok {
		return nil, fmt.Errorf("global %s is not an object", objName)
	}
	fn, ok := goja.AssertFunction(obj.Get(fnName))
	if !ok {
		return nil, fmt.Errorf("%s.%s is not a function", objName, fnName)
	}
	res, err := fn(objVal, args...)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", objName, fnName, err)
	}
	return res, nil
}
