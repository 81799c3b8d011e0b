package gojacallback

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dop251/goja"

	"github.com/joeycumines/goja-callback/internal/goroutineid"
	"github.com/joeycumines/goja-callback/value"
)

// Callback is a copyable, shared handle over one Bridge. All copies of a
// Callback share lifecycle state: stopping any copy stops them all, and
// every copy then fails fast with ErrInvalidState.
//
// The zero Callback is unset; every operation on it returns ErrInvalidState.
// R is the native result type the JavaScript return value converts to; use
// value.Value for dynamically-typed results, or a type implementing
// value.Unmarshaler to control conversion.
type Callback[R any] struct {
	w *wrapper
}

// wrapper is the shared front end behind every copy of a Callback. It
// guarantees the bridge is stopped at most once regardless of how many
// copies call Stop.
type wrapper struct {
	bridge  *Bridge
	stopped atomic.Bool
	stop    sync.Once
}

func (w *wrapper) doStop() {
	w.stopped.Store(true)
	w.stop.Do(w.bridge.Stop)
}

type options struct {
	name    string
	marshal MarshalFunc
}

// Option configures a Callback at construction.
type Option func(*options)

// WithName sets the function name used in errors and diagnostics.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithMarshaler installs a custom argument marshaler used in place of the
// generic per-argument conversion.
func WithMarshaler(m MarshalFunc) Option {
	return func(o *options) { o.marshal = m }
}

func resolveOptions(opts []Option) *options {
	o := &options{name: "callback"}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// New wraps a JavaScript value that must be callable. Returns an
// ArgumentMismatchError if it is not. fn is typically obtained inside a loop
// callback (e.g. a native module function receiving it as an argument).
func New[R any](rt *Runtime, fn goja.Value, opts ...Option) (Callback[R], error) {
	o := resolveOptions(opts)
	callable, ok := goja.AssertFunction(fn)
	if !ok {
		return Callback[R]{}, &ArgumentMismatchError{Func: o.name, Position: 1, Want: value.TypeFunction}
	}
	return Callback[R]{w: &wrapper{bridge: newBridge(rt, callable, o.name, o.marshal)}}, nil
}

// NewFromGlobal wraps a global JavaScript function resolved by name.
func NewFromGlobal[R any](rt *Runtime, name string, opts ...Option) (Callback[R], error) {
	fn, err := rt.GetCallable(name)
	if err != nil {
		return Callback[R]{}, err
	}
	opts = append([]Option{WithName(name)}, opts...)
	o := resolveOptions(opts)
	return Callback[R]{w: &wrapper{bridge: newBridge(rt, fn, o.name, o.marshal)}}, nil
}

// FromArgument extracts a function at a fixed argument position of a native
// call, failing with an ArgumentMismatchError when that position does not
// hold a function. funcName is the name reported in the error.
func FromArgument[R any](rt *Runtime, fc goja.FunctionCall, pos int, funcName string, opts ...Option) (Callback[R], error) {
	if len(fc.Arguments) <= pos {
		return Callback[R]{}, &ArgumentMismatchError{Func: funcName, Count: pos + 1}
	}
	arg := fc.Argument(pos)
	if value.TypeOf(arg) != value.TypeFunction {
		return Callback[R]{}, &ArgumentMismatchError{Func: funcName, Position: pos + 1, Want: value.TypeFunction}
	}
	opts = append([]Option{WithName(funcName)}, opts...)
	return New[R](rt, arg, opts...)
}

// OK reports whether the handle is initialized and not stopped.
func (c Callback[R]) OK() bool {
	return c.w != nil && !c.w.stopped.Load() && c.w.bridge.State() == BridgeRunning
}

// Stop stops the underlying bridge. Idempotent; all copies of this Callback
// observe the stop. The bridge drains calls already enqueued, then tears
// down; use Join or Completion to wait for that.
func (c Callback[R]) Stop() {
	if c.w != nil {
		c.w.doStop()
	}
}

// Join blocks until the bridge has fully torn down (dispatcher exited and
// finalizer run) or the context is done. It does not initiate a stop.
func (c Callback[R]) Join(ctx context.Context) error {
	if c.w == nil {
		return ErrInvalidState
	}
	_, err := c.w.bridge.Completion().Get(ctx)
	return err
}

// Completion returns the bridge's internal teardown future. ErrInvalidState
// if the handle is unset or already stopped.
func (c Callback[R]) Completion() (*Future[struct{}], error) {
	if c.w == nil || c.w.stopped.Load() {
		return nil, ErrInvalidState
	}
	return c.w.bridge.Completion(), nil
}

// Call enqueues an asynchronous invocation. Exactly one of onSuccess or
// onError fires, on the event loop goroutine, once the JavaScript function
// has run (or dispatch failed). Both continuations are required.
func (c Callback[R]) Call(onSuccess func(R), onError func(error), args ...any) error {
	if !c.OK() {
		return ErrInvalidState
	}
	if onSuccess == nil || onError == nil {
		return fmt.Errorf("%w: missing continuation", ErrInvalidState)
	}
	b := c.w.bridge
	return b.enqueue(&pendingCall{
		bridge:  b.label(),
		args:    args,
		marshal: b.marshal,
		onError: onError,
		complete: func(vm *goja.Runtime, result goja.Value) error {
			r, err := convertResult[R](vm, result)
			if err != nil {
				return newConversionError(b.label(), err)
			}
			onSuccess(r)
			return nil
		},
	})
}

// CallFuture enqueues an invocation and returns a future settled with the
// converted result or the dispatch error.
func (c Callback[R]) CallFuture(args ...any) (*Future[R], error) {
	d := NewDeferred[R]()
	if err := c.CallInto(d, args...); err != nil {
		return nil, err
	}
	return d.Future(), nil
}

// CallInto enqueues an invocation that settles a caller-supplied deferred,
// enabling callers to multiplex or wait on their own synchronization.
func (c Callback[R]) CallInto(d *Deferred[R], args ...any) error {
	if d == nil {
		return fmt.Errorf("%w: nil deferred", ErrInvalidState)
	}
	return c.Call(d.Resolve, d.Reject, args...)
}

// CallSync enqueues an invocation and blocks until the result is available,
// returning the converted value or the dispatch error. Must not be called
// from the event loop goroutine: the loop could never run the dispatched
// call while blocked here, so that case fails fast instead of deadlocking.
func (c Callback[R]) CallSync(ctx context.Context, args ...any) (R, error) {
	var zero R
	if !c.OK() {
		return zero, ErrInvalidState
	}
	if id := c.w.bridge.rt.loopGoroutineID.Load(); id > 0 && goroutineid.Get() == id {
		return zero, fmt.Errorf("%w: CallSync invoked on the event loop goroutine", ErrInvalidState)
	}
	fut, err := c.CallFuture(args...)
	if err != nil {
		return zero, err
	}
	return fut.Get(ctx)
}

// convertResult converts a runtime return value to the native result type:
// an explicit Unmarshaler wins, then the value variant, then undefined/null
// map to the zero value, then goja's reflection-based export.
func convertResult[R any](vm *goja.Runtime, result goja.Value) (R, error) {
	var out R
	if u, ok := any(&out).(value.Unmarshaler); ok {
		if err := u.UnmarshalJS(vm, result); err != nil {
			return out, err
		}
		return out, nil
	}
	if _, ok := any(out).(value.Value); ok {
		v, err := value.FromGoja(vm, result)
		if err != nil {
			return out, err
		}
		return any(v).(R), nil
	}
	if result == nil || goja.IsUndefined(result) || goja.IsNull(result) {
		return out, nil
	}
	if err := vm.ExportTo(result, &out); err != nil {
		return out, err
	}
	return out, nil
}
