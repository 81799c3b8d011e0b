// Package gojacallback makes JavaScript functions hosted on a goja event
// loop safely callable from arbitrary goroutines, and bridges one-shot
// background work into JavaScript promises.
//
// goja.Runtime is not goroutine-safe: every value and function it owns must
// be touched only on the event loop goroutine. This package enforces that
// affinity with message passing rather than locks on runtime objects. Each
// registered function gets a Bridge: a dedicated dispatcher goroutine that
// drains a mutex-guarded FIFO queue of pending calls and hands each one to
// the loop via RunOnLoop. Results and errors travel back to the caller
// through continuations or futures, so callers never observe a JavaScript
// error as a panic.
//
// # Calling a JavaScript function from Go
//
//	rt, err := gojacallback.NewRuntime(ctx)
//	if err != nil { ... }
//	defer rt.Close()
//
//	if err := rt.LoadScript("inc.js", `function inc(x) { return x + 1 }`); err != nil { ... }
//
//	cb, err := gojacallback.NewFromGlobal[int64](rt, "inc")
//	if err != nil { ... }
//	defer cb.Stop()
//
//	// From any goroutine:
//	v, err := cb.CallSync(ctx, 41) // v == 42
//
// # Lifecycle
//
// A Callback is a copyable handle over a shared Bridge. Stop is idempotent
// and level-triggered: the dispatcher drains every call enqueued before the
// stop, then releases its hold on the loop, settles the bridge's completion
// future, and exits. Join (or the completion future) is the only safe signal
// that teardown has fully finished. Calls attempted after Stop fail fast
// with ErrInvalidState.
//
// # Promises
//
// NewPromise runs a Go function on a background goroutine and settles a
// JavaScript promise on the loop when it finishes, converting a returned
// error (or recovered panic) into a rejection.
package gojacallback
