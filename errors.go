package gojacallback

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dop251/goja"

	"github.com/joeycumines/goja-callback/value"
)

// ErrInvalidState is returned when an operation is attempted on an unset,
// not-yet-initialized, or already-stopped handle or bridge.
var ErrInvalidState = errors.New("invalid state: callback is unset or stopped")

// ErrLoopTerminated is returned when the event loop stopped before a pending
// call could be dispatched or a result delivered.
var ErrLoopTerminated = errors.New("event loop terminated")

// ArgumentMismatchError reports a wrong arity or a wrong value type at a
// checked argument position. It is raised synchronously at the call site
// performing the check.
type ArgumentMismatchError struct {
	// Func is the name of the function whose arguments were checked.
	Func string
	// Position is the 1-based argument position, or 0 for an arity failure.
	Position int
	// Want is the required type; for arity failures, the required count is
	// carried in Count instead.
	Want value.Type
	// Count is the required argument count for arity failures.
	Count int
}

func (e *ArgumentMismatchError) Error() string {
	if e.Position == 0 {
		return fmt.Sprintf("%s requires %d arguments", e.Func, e.Count)
	}
	return fmt.Sprintf("Argument type mismatch: %s requires type %s at position %d",
		e.Func, e.Want, e.Position)
}

// InvocationError reports a JavaScript function that threw, or a value
// conversion that failed during dispatch. It is delivered only to error
// continuations and rejected futures, never propagated as a panic across the
// dispatch boundary.
type InvocationError struct {
	// Bridge identifies the originating bridge ("name (id)").
	Bridge string
	// Msg is the original error message.
	Msg string
	// Stack holds the call-stack frames, with the bridge's own frame
	// prepended for traceability.
	Stack []string
	// Err is the underlying error, if any.
	Err error
}

func (e *InvocationError) Error() string {
	if len(e.Stack) == 0 {
		return e.Msg
	}
	return e.Msg + "\n" + strings.Join(e.Stack, "\n")
}

func (e *InvocationError) Unwrap() error { return e.Err }

// newInvocationError builds an InvocationError from a dispatch failure,
// extracting the JavaScript stack when the error is a thrown exception.
func newInvocationError(bridge string, err error) *InvocationError {
	ie := &InvocationError{
		Bridge: bridge,
		Msg:    err.Error(),
		Err:    err,
		Stack:  []string{"\tat " + bridge},
	}
	var ex *goja.Exception
	if errors.As(err, &ex) {
		// Exception.String renders "message\n\tat frame..." - keep the first
		// line as the message and the rest as frames.
		lines := strings.Split(ex.String(), "\n")
		if len(lines) > 0 {
			ie.Msg = lines[0]
		}
		for _, l := range lines[1:] {
			if l != "" {
				ie.Stack = append(ie.Stack, l)
			}
		}
	}
	return ie
}

// newConversionError wraps a native/runtime value conversion failure for
// delivery to an error continuation.
func newConversionError(bridge string, err error) *InvocationError {
	return &InvocationError{
		Bridge: bridge,
		Msg:    "conversion failed: " + err.Error(),
		Err:    err,
		Stack:  []string{"\tat " + bridge},
	}
}
