//go:build heapdebug

package alloc

import (
	"runtime"

	"github.com/joshuapare/heapkit/heap/verify"
)

// Development builds (go build -tags heapdebug) stop in the debugger when
// Validate finds a corrupt arena.
func init() {
	defaultCorruptionHook = func(*verify.ValidationError) {
		runtime.Breakpoint()
	}
}
