package gojacallback

import (
	"github.com/dop251/goja"

	"github.com/joeycumines/goja-callback/value"
)

// CheckArgs validates the leading arguments of a native call against the
// given types, returning an ArgumentMismatchError naming the offending
// position on the first mismatch. Extra trailing arguments are permitted;
// too few are an arity failure.
func CheckArgs(fc goja.FunctionCall, funcName string, types ...value.Type) error {
	if len(fc.Arguments) < len(types) {
		return &ArgumentMismatchError{Func: funcName, Count: len(types)}
	}
	for i, want := range types {
		if value.TypeOf(fc.Argument(i)) != want {
			return &ArgumentMismatchError{Func: funcName, Position: i + 1, Want: want}
		}
	}
	return nil
}

// CheckLength validates the exact argument count of a native call.
func CheckLength(fc goja.FunctionCall, funcName string, n int) error {
	if len(fc.Arguments) != n {
		return &ArgumentMismatchError{Func: funcName, Count: n}
	}
	return nil
}
