package gojacallback

import (
	"fmt"
	"sync"

	"github.com/dop251/goja"
	"github.com/google/uuid"
)

// BridgeState tracks a bridge's teardown progress. Transitions are strictly
// ordered: Running -> Draining -> Released -> Joined.
type BridgeState int32

const (
	// BridgeRunning accepts new calls and dispatches queued ones.
	BridgeRunning BridgeState = iota
	// BridgeDraining no longer accepts calls; the dispatcher is flushing the
	// queue one final time.
	BridgeDraining
	// BridgeReleased marks the dispatcher's hold on the loop released; the
	// finalizer has been scheduled.
	BridgeReleased
	// BridgeJoined marks teardown complete: the dispatcher has exited and
	// the finalizer has observed it.
	BridgeJoined
)

func (s BridgeState) String() string {
	switch s {
	case BridgeRunning:
		return "running"
	case BridgeDraining:
		return "draining"
	case BridgeReleased:
		return "released"
	case BridgeJoined:
		return "joined"
	default:
		return "unknown"
	}
}

// Bridge coordinates one registered JavaScript function, its dispatcher
// goroutine, and its call queue. Arbitrary goroutines enqueue calls; the
// dispatcher is the queue's only consumer and hands each call to the event
// loop, where the function is invoked and the call's continuations fire.
//
// Stopping drains: every call enqueued before Stop is dispatched (or failed
// with ErrLoopTerminated if the loop is gone) before the dispatcher exits.
// Calls attempted after Stop fail fast with ErrInvalidState.
type Bridge struct {
	rt      *Runtime
	fn      goja.Callable
	name    string
	id      uuid.UUID
	marshal MarshalFunc

	mu    sync.Mutex
	cond  *sync.Cond
	queue []*pendingCall
	state BridgeState

	// done is closed when the dispatcher goroutine exits; the finalizer
	// waits on it before declaring the bridge joined.
	done       chan struct{}
	completion *Deferred[struct{}]
}

// newBridge spawns the dispatcher goroutine. fn must already be resolved on
// the loop (goja.Callable values may be held across goroutines as long as
// they are only invoked on the loop).
func newBridge(rt *Runtime, fn goja.Callable, name string, marshal MarshalFunc) *Bridge {
	b := &Bridge{
		rt:         rt,
		fn:         fn,
		name:       name,
		id:         uuid.New(),
		marshal:    marshal,
		done:       make(chan struct{}),
		completion: NewDeferred[struct{}](),
	}
	b.cond = sync.NewCond(&b.mu)
	go b.dispatch()
	return b
}

// label identifies the bridge in errors and diagnostics.
func (b *Bridge) label() string {
	return fmt.Sprintf("%s (bridge %s)", b.name, b.id)
}

// State returns the current lifecycle state.
func (b *Bridge) State() BridgeState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// enqueue appends a call in FIFO position and wakes the dispatcher.
func (b *Bridge) enqueue(pc *pendingCall) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != BridgeRunning {
		return ErrInvalidState
	}
	b.queue = append(b.queue, pc)
	b.cond.Signal()
	return nil
}

// Stop moves the bridge to draining. Idempotent, callable from any
// goroutine; it does not wait for teardown (see Done and Completion).
func (b *Bridge) Stop() {
	b.mu.Lock()
	if b.state == BridgeRunning {
		b.state = BridgeDraining
		b.cond.Broadcast()
	}
	b.mu.Unlock()
}

// Done returns a channel closed when the dispatcher goroutine has exited.
func (b *Bridge) Done() <-chan struct{} {
	return b.done
}

// Completion returns a future settled by the finalizer, on the event loop,
// once the dispatcher has been released and joined. It is the completion
// signal for full teardown.
func (b *Bridge) Completion() *Future[struct{}] {
	return b.completion.Future()
}

// dispatch is the dedicated consumer loop. It sleeps on the condition
// variable until there is work or a stop, drains the whole queue under the
// lock, then submits each call to the loop in FIFO order. On stop it drains
// once more, releases, and exits; close(done) is its very last action.
func (b *Bridge) dispatch() {
	defer close(b.done)
	for {
		b.mu.Lock()
		for len(b.queue) == 0 && b.state == BridgeRunning {
			b.cond.Wait()
		}
		batch := b.queue
		b.queue = nil
		stopping := b.state != BridgeRunning
		b.mu.Unlock()

		for _, pc := range batch {
			b.submit(pc)
		}

		if stopping {
			break
		}
	}
	b.release()
}

// submit hands one call to the event loop. The loop executes invoke on the
// loop goroutine; a refused hand-off (loop terminated) fails the call so it
// is never silently dropped.
func (b *Bridge) submit(pc *pendingCall) {
	if !b.rt.RunOnLoop(func(vm *goja.Runtime) {
		b.invoke(vm, pc)
	}) {
		logDiag().Error("call dropped by terminated event loop", "bridge", b.label())
		pc.fail(fmt.Errorf("%s: %w", b.label(), ErrLoopTerminated))
	}
}

// invoke runs on the event loop goroutine: render arguments, call the
// JavaScript function, convert the result, and settle the call. Every
// failure path settles via the error continuation; nothing escapes into the
// loop.
func (b *Bridge) invoke(vm *goja.Runtime, pc *pendingCall) {
	defer func() {
		if r := recover(); r != nil {
			pc.fail(newInvocationError(b.label(), fmt.Errorf("panic during dispatch: %v", r)))
		}
	}()

	handles, err := pc.render(vm)
	if err != nil {
		pc.fail(newConversionError(b.label(), err))
		return
	}

	result, err := b.fn(goja.Undefined(), handles...)
	if err != nil {
		pc.fail(newInvocationError(b.label(), err))
		return
	}

	pc.deliver(vm, result)
}

// release runs once, after the final drain: advance to Released and
// schedule the finalizer on the loop. The finalizer joins the dispatcher
// (waits for done) and settles the completion future, mirroring a host
// finalize callback that joins the worker thread before resolving. If the
// loop is already gone the finalizer runs on its own goroutine instead.
func (b *Bridge) release() {
	b.mu.Lock()
	b.state = BridgeReleased
	b.mu.Unlock()

	if !b.rt.RunOnLoop(func(vm *goja.Runtime) {
		b.finalize()
	}) {
		go b.finalize()
	}
}

// finalize joins the dispatcher and marks the bridge fully torn down.
// Waiting on done here is bounded: release is the dispatcher's final act
// before close(done).
func (b *Bridge) finalize() {
	<-b.done

	b.mu.Lock()
	b.state = BridgeJoined
	b.mu.Unlock()

	b.completion.Resolve(struct{}{})
}
