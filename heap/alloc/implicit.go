package alloc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/verify"
	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// ImplicitAllocator manages one fixed arena as an implicit block chain:
// no free list is kept, the fit finder walks every block in address order.
//
// - First-fit search, O(blocks) per allocation
// - Split when the remainder can stand alone as a minimum block
// - Immediate boundary-tag coalescing on free
// - used counter for the cheap consistency check.
//
// An ImplicitAllocator is not safe for concurrent use. Init invalidates every
// pointer handed out before it.
type ImplicitAllocator struct {
	seg  heap.Segment
	used int // bytes in use, including sentinel overhead

	dt           DirtyTracker
	log          *slog.Logger
	debug        bool // log at debug level; checked before building log args
	onCorruption CorruptionHook
	deep         bool

	stats Stats
}

// NewImplicit creates an allocator. It manages no arena until Init or Attach
// is called.
// opts may be nil.
func NewImplicit(opts *Options) *ImplicitAllocator {
	a := &ImplicitAllocator{
		log:          opts.logger(),
		onCorruption: defaultCorruptionHook,
	}
	if opts != nil {
		a.dt = opts.Dirty
		a.deep = opts.DeepValidate
		if opts.OnCorruption != nil {
			a.onCorruption = opts.OnCorruption
		}
	}
	a.debug = a.log.Enabled(context.Background(), slog.LevelDebug)
	return a
}

// Init lays out an empty arena over seg. The usable size is len(seg) rounded
// down to 8 bytes:
//
//	0x00     padding word
//	0x04     prologue header (8, allocated)
//	0x08     prologue footer (8, allocated)
//	0x0C     free block header (size-16, free)
//	size-8   free block footer
//	size-4   epilogue header (0, allocated)
//
// Calling Init again discards all previous state. On error the allocator is
// left uninitialized.
func (a *ImplicitAllocator) Init(seg []byte) error {
	a.seg = nil
	a.used = 0
	a.stats = Stats{InitCalls: a.stats.InitCalls + 1, AttachCalls: a.stats.AttachCalls}

	size, err := arenaSize(seg)
	if err != nil {
		return err
	}

	s := heap.Segment(seg[:size])
	format.PutWord(s, format.PaddingOffset, 0)
	format.PutWord(s, format.PrologueHeaderOffset, format.Pack(format.PrologueSize, true))
	format.PutWord(s, format.PrologueFooterOffset, format.Pack(format.PrologueSize, true))
	a.markDirty(format.PaddingOffset, format.FirstBlockOffset-format.WordSize)

	a.seg = s
	a.putBlock(heap.First, uint32(size-format.SentinelOverhead), false)
	format.PutWord(s, s.EpilogueOff(), format.Pack(format.EpilogueSize, true))
	a.markDirty(s.EpilogueOff(), format.WordSize)

	a.used = format.SentinelOverhead

	if a.debug {
		a.log.Debug("arena initialized", "size", size, "free", size-format.SentinelOverhead)
	}
	return nil
}

// Attach adopts an arena that an earlier Init laid out, such as a heap file
// reopened with heap.Open. Nothing is written: the block chain must pass
// every verify check, and the used counter is rebuilt from the allocated
// blocks. Pointers into seg handed out before remain valid.
//
// On error the allocator is left uninitialized.
func (a *ImplicitAllocator) Attach(seg []byte) error {
	a.seg = nil
	a.used = 0
	a.stats = Stats{InitCalls: a.stats.InitCalls, AttachCalls: a.stats.AttachCalls + 1}

	size, err := arenaSize(seg)
	if err != nil {
		return err
	}
	s := heap.Segment(seg[:size])
	if err := verify.AllInvariants(s); err != nil {
		return fmt.Errorf("alloc: attach: %w: %w", ErrCorrupt, err)
	}

	sum, err := heap.Summarize(s)
	if err != nil {
		return fmt.Errorf("alloc: attach: %w: %w", ErrCorrupt, err)
	}

	a.seg = s
	a.used = format.SentinelOverhead + sum.AllocatedBytes

	if a.debug {
		a.log.Debug("arena attached", "size", size, "used", a.used, "blocks", sum.AllocatedBlocks)
	}
	return nil
}

// arenaSize returns the usable size of seg, rounded down to 8 bytes.
func arenaSize(seg []byte) (int, error) {
	size := format.AlignDown8(len(seg))
	if size < format.MinArenaSize {
		return 0, fmt.Errorf("alloc: %d byte arena (need %d): %w", size, format.MinArenaSize, ErrArenaTooSmall)
	}
	if uint64(size) > format.MaxArenaSize {
		return 0, fmt.Errorf("alloc: %d byte arena (max %d): %w", size, uint64(format.MaxArenaSize), ErrArenaTooLarge)
	}
	return size, nil
}

// Alloc returns a pointer to a block with at least n payload bytes.
//
// A zero-byte request is a no-op returning heap.Nil and no error. When no
// free block fits, Alloc returns ErrNoSpace and leaves the arena unchanged.
func (a *ImplicitAllocator) Alloc(n int) (Ptr, error) {
	a.stats.AllocCalls++

	if a.seg == nil {
		return heap.Nil, ErrNotInitialized
	}
	if n == 0 {
		return heap.Nil, nil
	}
	if n < 0 {
		return heap.Nil, fmt.Errorf("alloc: request %d: %w", n, ErrBadSize)
	}

	// Anything larger than the whole block area can never fit; reject it
	// before the size arithmetic can overflow a word.
	total, ok := buf.AddOverflowSafe(n, format.BlockOverhead)
	if !ok || total > len(a.seg)-format.SentinelOverhead {
		a.stats.AllocFailures++
		return heap.Nil, fmt.Errorf("alloc: %d bytes exceeds %d byte arena: %w", n, len(a.seg), ErrNoSpace)
	}

	asize := uint32(format.AdjustedSize(n))
	bp := a.findFit(asize)
	if bp == heap.Nil {
		a.stats.AllocFailures++
		if a.debug {
			a.log.Debug("no fit", "request", n, "asize", asize, "used", a.used)
		}
		return heap.Nil, fmt.Errorf("alloc: %d bytes (block %d): %w", n, asize, ErrNoSpace)
	}

	a.place(bp, asize)

	placed := a.seg.Header(bp).Size()
	a.used += int(placed)
	a.stats.BytesAllocated += int64(placed)
	return bp, nil
}

// findFit returns the first free block of at least asize bytes, walking from
// the first real block to the epilogue, or heap.Nil when none qualifies.
func (a *ImplicitAllocator) findFit(asize uint32) Ptr {
	for bp := heap.First; int(bp) < len(a.seg); bp = a.seg.Next(bp) {
		hdr := a.seg.Header(bp)
		if hdr.Size() == 0 {
			break
		}
		a.stats.BlocksScanned++
		if !hdr.Allocated() && asize <= hdr.Size() {
			return bp
		}
	}
	return heap.Nil
}

// place marks asize bytes at the start of free block bp allocated, splitting
// off the rest as a new free block when it is at least a minimum block.
// Otherwise the whole block is consumed (up to 15 bytes of internal
// fragmentation).
func (a *ImplicitAllocator) place(bp Ptr, asize uint32) {
	csize := a.seg.Header(bp).Size()

	if csize-asize >= format.MinBlockSize {
		a.putBlock(bp, asize, true)
		rest := a.seg.Next(bp)
		a.putBlock(rest, csize-asize, false)
		a.stats.SplitCount++
		if a.debug {
			a.log.Debug("split", "block", uint32(bp), "size", csize, "alloc", asize, "remainder", csize-asize)
		}
		return
	}

	a.putBlock(bp, csize, true)
}

// Free releases the block at p and merges it with free neighbours.
// Freeing heap.Nil is a no-op.
func (a *ImplicitAllocator) Free(p Ptr) error {
	if p == heap.Nil {
		return nil
	}
	a.stats.FreeCalls++

	size, err := a.allocatedSize(p)
	if err != nil {
		return fmt.Errorf("alloc: free: %w", err)
	}

	a.used -= int(size)
	a.stats.BytesFreed += int64(size)
	a.putBlock(p, size, false)
	a.coalesce(p)
	return nil
}

// coalesce merges the free block at bp with its free neighbours and returns
// the payload pointer of the resulting block. The prologue and epilogue are
// permanently allocated, so the first and last blocks need no special cases.
func (a *ImplicitAllocator) coalesce(bp Ptr) Ptr {
	prev := a.seg.Prev(bp)
	next := a.seg.Next(bp)
	prevAlloc := a.seg.Footer(prev).Allocated()
	nextAlloc := a.seg.Header(next).Allocated()
	size := a.seg.Header(bp).Size()

	switch {
	case prevAlloc && nextAlloc:
		a.stats.CoalesceNone++
		return bp

	case prevAlloc && !nextAlloc:
		a.stats.CoalesceNext++
		size += a.seg.Header(next).Size()
		w := format.Pack(size, false)
		a.putHeader(bp, w)
		a.putFooter(bp, w)

	case !prevAlloc && nextAlloc:
		a.stats.CoalescePrev++
		size += a.seg.Header(prev).Size()
		w := format.Pack(size, false)
		a.putFooter(bp, w)
		a.putHeader(prev, w)
		bp = prev

	default:
		a.stats.CoalesceBoth++
		size += a.seg.Header(prev).Size() + a.seg.Footer(next).Size()
		w := format.Pack(size, false)
		a.putHeader(prev, w)
		a.putFooter(next, w)
		bp = prev
	}

	if a.debug {
		a.log.Debug("coalesced", "block", uint32(bp), "size", size)
	}
	return bp
}

// Realloc moves the block at p into a fresh block of at least n bytes,
// copying min(old payload, n) bytes, and frees the old block.
//
//   - n == 0 frees p and returns heap.Nil
//   - p == heap.Nil behaves like Alloc(n)
//
// If the new allocation fails the original block is untouched and still
// valid; the error is returned with heap.Nil.
func (a *ImplicitAllocator) Realloc(p Ptr, n int) (Ptr, error) {
	a.stats.ReallocCalls++

	if n == 0 {
		return heap.Nil, a.Free(p)
	}
	if p == heap.Nil {
		return a.Alloc(n)
	}
	if _, err := a.allocatedSize(p); err != nil {
		return heap.Nil, fmt.Errorf("alloc: realloc: %w", err)
	}

	np, err := a.Alloc(n)
	if err != nil {
		return heap.Nil, err
	}

	old := a.seg.Payload(p)
	copy(a.seg.Payload(np), old[:min(len(old), n)])

	if err := a.Free(p); err != nil {
		return heap.Nil, err
	}
	return np, nil
}

// Payload returns the usable bytes of the allocated block at p. The slice
// aliases the arena and may be longer than the size originally requested.
func (a *ImplicitAllocator) Payload(p Ptr) ([]byte, error) {
	if _, err := a.allocatedSize(p); err != nil {
		return nil, err
	}
	return a.seg.Payload(p), nil
}

// allocatedSize checks that p is the payload pointer of an allocated,
// well-formed block and returns its size.
func (a *ImplicitAllocator) allocatedSize(p Ptr) (uint32, error) {
	if a.seg == nil {
		return 0, ErrNotInitialized
	}
	if err := a.seg.CheckPtr(p); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBadRef, err)
	}
	hdr := a.seg.Header(p)
	if !hdr.Allocated() {
		return 0, fmt.Errorf("block 0x%X: %w", p, ErrNotAllocated)
	}
	if ftr := a.seg.Footer(p); ftr != hdr {
		return 0, fmt.Errorf("block 0x%X header %v footer %v: %w", p, hdr, ftr, ErrCorrupt)
	}
	return hdr.Size(), nil
}

// Size returns the arena size after rounding, or 0 before Init.
func (a *ImplicitAllocator) Size() int {
	return len(a.seg)
}

// Used returns the bytes-in-use counter, which includes the sentinel overhead.
func (a *ImplicitAllocator) Used() int {
	return a.used
}

// Segment returns the managed arena, or nil before Init.
func (a *ImplicitAllocator) Segment() heap.Segment {
	return a.seg
}

// Word writers. Every write is reported to the dirty tracker.

func (a *ImplicitAllocator) putBlock(bp Ptr, size uint32, allocated bool) {
	a.seg.SetBlock(bp, size, allocated)
	a.markDirty(a.seg.HeaderOff(bp), format.WordSize)
	a.markDirty(a.seg.FooterOff(bp), format.WordSize)
}

func (a *ImplicitAllocator) putHeader(bp Ptr, w format.Word) {
	a.seg.SetHeader(bp, w)
	a.markDirty(a.seg.HeaderOff(bp), format.WordSize)
}

func (a *ImplicitAllocator) putFooter(bp Ptr, w format.Word) {
	off := a.seg.FooterOff(bp)
	a.seg.SetFooter(bp, w)
	a.markDirty(off, format.WordSize)
}

func (a *ImplicitAllocator) markDirty(off, length int) {
	if a.dt != nil {
		a.dt.Add(off, length)
	}
}

var _ Allocator = (*ImplicitAllocator)(nil)
