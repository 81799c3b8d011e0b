package gojacallback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/eventloop"
	"github.com/dop251/goja_nodejs/require"

	"github.com/joeycumines/goja-callback/internal/goroutineid"
)

// Runtime owns a goja VM and the goja_nodejs event loop that serializes all
// access to it. It is the sole supported path to the VM: every goja
// operation must happen inside a function passed to RunOnLoop or one of its
// synchronous variants.
//
// The event loop goroutine is the "host thread" of this package: JavaScript
// values and functions are only valid there. Bridges created against a
// Runtime hand their queued calls to this loop.
type Runtime struct {
	loop     *eventloop.EventLoop
	registry *require.Registry

	// timeout bounds RunOnLoopSync waits. Zero disables the bound.
	timeout time.Duration

	// loopGoroutineID is captured once at startup and used to detect
	// re-entrant synchronous calls from the loop goroutine itself.
	loopGoroutineID atomic.Int64

	mu      sync.RWMutex
	started bool
	stopped bool

	ctx    context.Context
	cancel context.CancelFunc
}

// DefaultSyncTimeout bounds RunOnLoopSync waits unless overridden via
// SetTimeout.
const DefaultSyncTimeout = 5 * time.Second

// NewRuntime creates a Runtime with a fresh require registry. The event loop
// is started immediately; call Close to stop it. The provided context
// controls lifecycle: when it is cancelled the runtime closes.
func NewRuntime(ctx context.Context) (*Runtime, error) {
	return NewRuntimeWithRegistry(ctx, nil)
}

// NewRuntimeWithRegistry creates a Runtime sharing an existing require
// registry, allowing native module registrations to be reused across
// components. A nil registry creates a new one.
func NewRuntimeWithRegistry(ctx context.Context, registry *require.Registry) (*Runtime, error) {
	if registry == nil {
		registry = require.NewRegistry()
	}

	loop := eventloop.NewEventLoop(
		eventloop.WithRegistry(registry),
		eventloop.EnableConsole(true),
	)

	// The lifecycle context is independent of the parent so that stopped
	// state and Done() closure stay consistent; parent cancellation routes
	// through Close instead.
	childCtx, cancel := context.WithCancel(context.Background())

	rt := &Runtime{
		loop:     loop,
		registry: registry,
		ctx:      childCtx,
		cancel:   cancel,
		timeout:  DefaultSyncTimeout,
	}

	loop.Start()
	rt.mu.Lock()
	rt.started = true
	rt.mu.Unlock()

	// Capture the loop goroutine ID before anything else can run on it.
	done := make(chan struct{})
	ok := loop.RunOnLoop(func(vm *goja.Runtime) {
		rt.loopGoroutineID.Store(goroutineid.Get())
		close(done)
	})
	if !ok {
		cancel()
		return nil, errors.New("failed to initialize: event loop not running")
	}
	<-done

	if ctx.Done() != nil {
		context.AfterFunc(ctx, func() {
			_ = rt.Close()
		})
	}

	return rt, nil
}

// Registry returns the require registry used for native module registration.
func (rt *Runtime) Registry() *require.Registry {
	return rt.registry
}

// EventLoop returns the underlying event loop. Direct use bypasses the
// Runtime's lifecycle checks; prefer RunOnLoop and RunOnLoopSync.
func (rt *Runtime) EventLoop() *eventloop.EventLoop {
	return rt.loop
}

// Close stops the event loop and releases resources. It is safe to call
// multiple times. Pending loop jobs are allowed to complete.
func (rt *Runtime) Close() error {
	rt.mu.Lock()
	if rt.stopped {
		rt.mu.Unlock()
		return nil
	}
	rt.stopped = true
	rt.mu.Unlock()

	// Cancel before stopping the loop so goroutines blocked on Done unblock
	// even if the loop takes a while to drain.
	rt.cancel()
	rt.loop.Stop()
	return nil
}

// Done returns a channel closed when the runtime has been closed.
func (rt *Runtime) Done() <-chan struct{} {
	return rt.ctx.Done()
}

// IsRunning reports whether the runtime is started and not yet closed.
func (rt *Runtime) IsRunning() bool {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.started && !rt.stopped
}

// SetTimeout sets the bound on RunOnLoopSync waits. Zero disables it.
func (rt *Runtime) SetTimeout(timeout time.Duration) {
	rt.mu.Lock()
	rt.timeout = timeout
	rt.mu.Unlock()
}

// GetTimeout returns the current RunOnLoopSync bound.
func (rt *Runtime) GetTimeout() time.Duration {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.timeout
}

// RunOnLoop schedules fn on the event loop goroutine, reporting whether it
// was accepted. All goja.Runtime access must happen inside fn, and the VM
// must not escape it.
func (rt *Runtime) RunOnLoop(fn func(*goja.Runtime)) bool {
	rt.mu.RLock()
	if !rt.started || rt.stopped {
		rt.mu.RUnlock()
		return false
	}
	rt.mu.RUnlock()

	return rt.loop.RunOnLoop(fn)
}

// RunOnLoopSync schedules fn on the event loop and waits for it to finish,
// bounded by the configured timeout and unblocked early if the runtime
// closes.
func (rt *Runtime) RunOnLoopSync(fn func(*goja.Runtime) error) error {
	rt.mu.RLock()
	if !rt.started || rt.stopped {
		rt.mu.RUnlock()
		return ErrLoopTerminated
	}
	timeout := rt.timeout
	rt.mu.RUnlock()

	errCh := make(chan error, 1)
	if !rt.loop.RunOnLoop(func(vm *goja.Runtime) {
		errCh <- fn(vm)
	}) {
		return ErrLoopTerminated
	}

	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case err := <-errCh:
			return err
		case <-rt.Done():
			return ErrLoopTerminated
		case <-timer.C:
			return fmt.Errorf("operation timed out after %v", timeout)
		}
	}

	select {
	case err := <-errCh:
		return err
	case <-rt.Done():
		return ErrLoopTerminated
	}
}

// TryRunOnLoopSync runs fn like RunOnLoopSync, except that when called from
// the event loop goroutine itself it executes fn directly against currentVM
// to avoid deadlock. This matters for code paths re-entered from inside loop
// callbacks.
func (rt *Runtime) TryRunOnLoopSync(currentVM *goja.Runtime, fn func(*goja.Runtime) error) error {
	rt.mu.RLock()
	if !rt.started || rt.stopped {
		rt.mu.RUnlock()
		return ErrLoopTerminated
	}
	rt.mu.RUnlock()

	if id := rt.loopGoroutineID.Load(); id > 0 && goroutineid.Get() == id {
		return fn(currentVM)
	}

	return rt.RunOnLoopSync(fn)
}

// LoadScript compiles and runs JavaScript source on the loop.
func (rt *Runtime) LoadScript(name, code string) error {
	return rt.RunOnLoopSync(func(vm *goja.Runtime) error {
		prg, err := goja.Compile(name, code, true)
		if err != nil {
			return fmt.Errorf("failed to compile %s: %w", name, err)
		}
		if _, err := vm.RunProgram(prg); err != nil {
			return fmt.Errorf("failed to run %s: %w", name, err)
		}
		return nil
	})
}

// SetGlobal sets a global variable in the JavaScript runtime.
func (rt *Runtime) SetGlobal(name string, v any) error {
	return rt.RunOnLoopSync(func(vm *goja.Runtime) error {
		return vm.Set(name, v)
	})
}

// GetCallable resolves a global JavaScript function by name.
func (rt *Runtime) GetCallable(name string) (goja.Callable, error) {
	var result goja.Callable
	err := rt.RunOnLoopSync(func(vm *goja.Runtime) error {
		val := vm.Get(name)
		if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
			return fmt.Errorf("function %q not found", name)
		}
		fn, ok := goja.AssertFunction(val)
		if !ok {
			return fmt.Errorf("%q is not a callable function", name)
		}
		result = fn
		return nil
	})
	return result, err
}
