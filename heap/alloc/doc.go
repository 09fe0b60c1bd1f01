// Package alloc provides block allocation over one fixed, caller-supplied arena.
//
// # Overview
//
// The arena is laid out as an implicit block chain: every block carries a
// one-word header and footer holding its size and an allocated bit, and the
// next block is found by adding the size to the current pointer. A permanently
// allocated prologue and epilogue bound the chain so that coalescing never has
// to special-case the first or last block.
//
// # Allocator Interface
//
// The core abstraction is the Allocator interface:
//
//   - Init(seg): lay out an empty arena over seg
//   - Alloc(n): first-fit allocation of at least n payload bytes
//   - Free(p): release a block and merge it with free neighbours
//   - Realloc(p, n): move a block into a new one of at least n bytes
//   - Validate(): cheap consistency check, optionally a full chain walk
//
// # Implementations
//
// ImplicitAllocator: the only implementation
//
//   - 16-byte minimum block, 8-byte payload alignment
//   - Split when the remainder is a full minimum block
//   - Immediate coalescing, four boundary-tag cases
//   - Optional dirty-range reporting for file-backed arenas (see heap/dirty)
//
// # Usage
//
//	a := alloc.NewImplicit(nil)
//	if err := a.Init(make([]byte, 4096)); err != nil {
//	    return err
//	}
//	p, err := a.Alloc(100)
//	if err != nil {
//	    return err
//	}
//	buf, _ := a.Payload(p)
//	copy(buf, data)
//	_ = a.Free(p)
//
// A file-backed arena written by an earlier run is adopted with Attach,
// which checks the chain and rebuilds the used counter without writing:
//
//	h, err := heap.Open(path)
//	if err != nil {
//	    return err
//	}
//	if err := a.Attach(h.Bytes()); err != nil {
//	    return err
//	}
//
// # Error Handling
//
// Alloc and Realloc return ErrNoSpace when no block fits; the arena never
// grows. Free and Realloc reject pointers that do not name an allocated block
// with ErrBadRef, ErrNotAllocated or ErrCorrupt instead of writing through them.
//
// # Thread Safety
//
// Allocators are NOT thread-safe. Callers must serialize access.
//
// # Debugging
//
// Set HEAP_LOG_ALLOC=1 to log splits, coalescing and failed fits to stderr.
// Builds tagged heapdebug stop in the debugger when Validate fails.
package alloc
