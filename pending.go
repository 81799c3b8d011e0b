package gojacallback

import (
	"sync"

	"github.com/dop251/goja"

	"github.com/joeycumines/goja-callback/value"
)

// MarshalFunc converts one call's Go arguments to runtime values, replacing
// the generic per-argument conversion. It is invoked on the event loop
// goroutine.
type MarshalFunc func(vm *goja.Runtime, args []any) ([]goja.Value, error)

// pendingCall is one queued invocation: an argument snapshot plus its two
// continuations. It is created on the calling goroutine, moved through the
// bridge queue, and settled exactly once by the dispatch callback on the
// event loop (or by the bridge when dispatch becomes impossible).
type pendingCall struct {
	bridge  string
	args    []any
	marshal MarshalFunc

	once sync.Once
	// complete converts the runtime result and fires the success
	// continuation; a returned error is routed to onError instead.
	complete func(vm *goja.Runtime, result goja.Value) error
	onError  func(error)
}

// render produces the runtime argument handles, preferring the custom
// marshaler when one was supplied.
func (pc *pendingCall) render(vm *goja.Runtime) ([]goja.Value, error) {
	if pc.marshal != nil {
		return pc.marshal(vm, pc.args)
	}
	return renderArgs(vm, pc.args)
}

// fail settles the call with an error. Panics out of the error continuation
// are recovered and logged; they must never cross into loop code.
func (pc *pendingCall) fail(err error) {
	pc.once.Do(func() {
		defer pc.recoverContinuation()
		pc.onError(err)
	})
}

// deliver settles the call with a runtime result, converting it and firing
// the success continuation; conversion failures go to the error continuation.
func (pc *pendingCall) deliver(vm *goja.Runtime, result goja.Value) {
	pc.once.Do(func() {
		defer pc.recoverContinuation()
		if err := pc.complete(vm, result); err != nil {
			pc.onError(err)
		}
	})
}

func (pc *pendingCall) recoverContinuation() {
	if r := recover(); r != nil {
		logDiag().Error("continuation panicked during dispatch",
			"bridge", pc.bridge, "panic", r)
	}
}

// renderArgs is the generic argument conversion: an explicit Marshaler wins,
// then the value variant, then a raw runtime value, then goja's own
// reflection-based conversion.
func renderArgs(vm *goja.Runtime, args []any) ([]goja.Value, error) {
	out := make([]goja.Value, len(args))
	for i, a := range args {
		gv, err := renderOne(vm, a)
		if err != nil {
			return nil, err
		}
		out[i] = gv
	}
	return out, nil
}

func renderOne(vm *goja.Runtime, a any) (goja.Value, error) {
	switch t := a.(type) {
	case value.Marshaler:
		return t.MarshalJS(vm)
	case value.Value:
		return value.ToGoja(vm, t)
	case goja.Value:
		return t, nil
	default:
		return vm.ToValue(a), nil
	}
}
