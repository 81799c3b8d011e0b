package gojacallback

import (
	"log/slog"
	"sync/atomic"
)

// diagLogger is the package-level diagnostic logger. It is the last-resort
// sink for failures that cannot be routed to an error continuation, such as
// a continuation that itself panics during dispatch.
var diagLogger atomic.Pointer[slog.Logger]

// SetLogger replaces the package-level diagnostic logger. Passing nil
// restores slog.Default.
func SetLogger(l *slog.Logger) {
	diagLogger.Store(l)
}

func logDiag() *slog.Logger {
	if l := diagLogger.Load(); l != nil {
		return l
	}
	return slog.Default()
}
