package gojacallback

import (
	"fmt"

	"github.com/dop251/goja"
)

// NewPromise runs fn on a fresh background goroutine and returns a
// JavaScript promise settled on the event loop when fn finishes: resolved
// with the converted return value, or rejected with an Error carrying the
// returned error's message. A panic inside fn is captured and rejects the
// promise. One call, one promise; the task owns itself and needs no cleanup
// from the caller.
//
// NewPromise must be called on the event loop goroutine (typically from a
// native module function), since it touches the VM to create the promise.
// The result conversion honors value.Marshaler and the value variant, like
// argument rendering does.
func NewPromise[T any](rt *Runtime, vm *goja.Runtime, fn func() (T, error)) goja.Value {
	promise, resolve, reject := vm.NewPromise()
	go func() {
		var (
			out T
			err error
		)
		func() {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("panic in promise task: %v", r)
				}
			}()
			out, err = fn()
		}()

		if !rt.RunOnLoop(func(vm *goja.Runtime) {
			if err != nil {
				reject(vm.NewGoError(err))
				return
			}
			gv, mErr := renderOne(vm, out)
			if mErr != nil {
				reject(vm.NewGoError(mErr))
				return
			}
			resolve(gv)
		}) {
			// The loop is gone; the promise can never settle. Surface the
			// outcome on the diagnostic stream rather than dropping it.
			logDiag().Error("promise task result dropped: event loop terminated",
				"error", err)
		}
	}()
	return vm.ToValue(promise)
}

// NewVoidPromise is NewPromise for tasks without a result: the promise
// resolves with undefined on success.
func NewVoidPromise(rt *Runtime, vm *goja.Runtime, fn func() error) goja.Value {
	promise, resolve, reject := vm.NewPromise()
	go func() {
		var err error
		func() {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("panic in promise task: %v", r)
				}
			}()
			err = fn()
		}()

		if !rt.RunOnLoop(func(vm *goja.Runtime) {
			if err != nil {
				reject(vm.NewGoError(err))
				return
			}
			resolve(goja.Undefined())
		}) {
			logDiag().Error("promise task result dropped: event loop terminated",
				"error", err)
		}
	}()
	return vm.ToValue(promise)
}
