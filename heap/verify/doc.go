// Package verify checks the structural invariants of a heap arena.
//
// # Overview
//
// The allocator keeps a cheap used-bytes counter; this package does the deep
// walk. It is used by the allocator's Check method, by tests after every
// mutation, and by heapctl to inspect arena images on disk.
//
// Invariants checked:
//   - Sentinels: the padding word is 0, prologue header and footer are
//     (8, allocated), the epilogue header is (0, allocated) and sits in the
//     last word of the arena
//   - Alignment: every payload offset and block size is a multiple of 8
//   - Minimum size: every real block is at least 16 bytes
//   - Boundary tags: header word == footer word for every block
//   - Coalescing: no two neighbouring blocks are both free
//   - Termination: the chain reaches the epilogue exactly at the arena end
//   - Conservation: real block sizes plus sentinel overhead equal the arena size
//   - Used bytes: the allocator's counter never exceeds the arena size
//
// # Quick Start
//
//	if err := verify.AllInvariants(seg); err != nil {
//	    var verr *verify.ValidationError
//	    if errors.As(err, &verr) {
//	        fmt.Printf("%s at 0x%X\n", verr.Kind, verr.Offset)
//	    }
//	}
//
// Every check returns a *ValidationError naming the violated invariant and
// the payload offset of the offending block (-1 when no block is involved).
// The first violation wins; the walk stops there.
package verify
