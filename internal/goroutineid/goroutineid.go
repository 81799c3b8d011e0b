// Package goroutineid resolves the numeric ID of the calling goroutine.
//
// The event loop's goroutine ID is captured once at runtime initialization
// and compared against the caller's ID to decide whether a synchronous
// operation can execute directly or must be posted to the loop. The header
// format "goroutine N [state]:" has been stable since Go 1.5.
package goroutineid

import (
	"bytes"
	"runtime"
	"sync"
)

var stackBufPool = sync.Pool{
	New: func() any {
		b := make([]byte, 128)
		return &b
	},
}

var goroutinePrefix = []byte("goroutine ")

// Get returns the current goroutine's ID, or 0 if the stack header could not
// be parsed.
func Get() int64 {
	bufp := stackBufPool.Get().(*[]byte)
	defer stackBufPool.Put(bufp)
	buf := *bufp
	n := runtime.Stack(buf, false)
	return parseHeader(buf[:n])
}

// parseHeader extracts the goroutine ID from the first line of a stack trace.
func parseHeader(stack []byte) int64 {
	if !bytes.HasPrefix(stack, goroutinePrefix) {
		return 0
	}
	var id int64
	for _, b := range stack[len(goroutinePrefix):] {
		if b < '0' || b > '9' {
			break
		}
		id = id*10 + int64(b-'0')
	}
	return id
}
