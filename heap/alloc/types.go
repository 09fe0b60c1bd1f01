package alloc

import "github.com/joshuapare/heapkit/heap"

// Ptr is a payload offset into the arena; heap.Nil is the null pointer.
type Ptr = heap.Ptr

// Allocator defines the operations a fixed-arena allocator provides.
//
// Implementations:
//   - ImplicitAllocator: first-fit over an implicit boundary-tag block chain
//
// The script replayer and heapctl work against this interface.
type Allocator interface {
	// Init lays out an empty arena over seg, discarding any previous state.
	// All pointers obtained before the call become invalid.
	Init(seg []byte) error

	// Alloc returns a pointer to at least n usable bytes. A zero-byte request
	// returns heap.Nil and no error.
	Alloc(n int) (Ptr, error)

	// Free releases a block. Freeing heap.Nil is a no-op.
	Free(p Ptr) error

	// Realloc resizes a block by moving it. On failure the original block is
	// left untouched and still valid.
	Realloc(p Ptr, n int) (Ptr, error)

	// Payload returns the usable bytes of an allocated block.
	Payload(p Ptr) ([]byte, error)

	// Validate runs the allocator's consistency check.
	Validate() bool

	// Size returns the arena size in bytes after rounding.
	Size() int
}
