// Package heap provides the arena layout shared by the allocator and the
// inspection tools.
//
// # Overview
//
// An arena is a single contiguous byte range laid out as an implicit,
// boundary-tagged block chain:
//
//	[pad][prologue hdr][prologue ftr][hdr | payload | ftr] ... [epilogue hdr]
//
// Every block carries the same (size, allocated) word in its header and its
// footer, so the chain can be walked forward through headers and backward
// through footers without any side structure.
//
// # Key Types
//
//   - Segment: a byte slice viewed as a block chain, with the block codec
//     (header, footer, next and previous block computations)
//   - Ptr: a payload offset into a Segment; Nil (0) is the null pointer
//   - Block and BlockIterator: decoded blocks and a forward walk over them
//   - Heap: a file-backed arena, memory-mapped on unix
//
// # Pointers
//
// Pointers are offsets, never raw addresses. Offset 0 is the alignment padding
// word and can never be a payload, which is what makes it usable as Nil.
// Every payload offset is a multiple of 8.
//
// # Thread Safety
//
// Nothing in this package is safe for concurrent mutation. Callers must
// serialize access to a Segment.
package heap
