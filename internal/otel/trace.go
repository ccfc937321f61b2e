package otel

import (
	"os"
	"sync/atomic"
)

// traceEnabled is read on every chat log message, written once at init and by tests.
var traceEnabled atomic.Bool

func init() {
	traceEnabled.Store(os.Getenv("CHATFOLLOW_TRACE") != "")
}

// TraceEnabled reports whether CHATFOLLOW_TRACE is set.
func TraceEnabled() bool {
	return traceEnabled.Load()
}

func setTraceEnabled(v bool) {
	traceEnabled.Store(v)
}
