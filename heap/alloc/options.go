package alloc

import (
	"io"
	"log/slog"
	"os"

	"github.com/joshuapare/heapkit/heap/verify"
)

// Runtime debug flag for allocation logging - controlled by HEAP_LOG_ALLOC env var.
var logAlloc = os.Getenv("HEAP_LOG_ALLOC") != ""

// CorruptionHook is invoked with the violation whenever Validate detects a
// corrupt arena. It must not call back into the allocator.
type CorruptionHook func(*verify.ValidationError)

// defaultCorruptionHook is installed when Options.OnCorruption is nil. It is
// nil except in builds tagged heapdebug.
var defaultCorruptionHook CorruptionHook

// Options configures an ImplicitAllocator. The zero value is usable.
type Options struct {
	// Logger receives debug events (splits, coalescing, failed fits) and
	// corruption reports. Nil discards everything unless HEAP_LOG_ALLOC is
	// set, in which case debug output goes to stderr.
	Logger *slog.Logger

	// Dirty is notified of every word the allocator writes. Use a
	// dirty.Tracker for file-backed arenas; nil disables tracking.
	Dirty DirtyTracker

	// OnCorruption is called when Validate fails.
	OnCorruption CorruptionHook

	// DeepValidate makes Validate walk the whole block chain in addition to
	// the used-bytes check.
	DeepValidate bool
}

func (o *Options) logger() *slog.Logger {
	if o != nil && o.Logger != nil {
		return o.Logger
	}
	if logAlloc {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
