package dirty

import (
	"context"
	"sort"

	"github.com/joshuapare/heapkit/heap"
)

const (
	// defaultRangeCapacity is the pre-allocated capacity for dirty ranges.
	defaultRangeCapacity = 64

	// standardPageSize is the typical OS page size (4KB).
	standardPageSize = 4096
)

// FlushMode controls durability guarantees for Flush.
type FlushMode int

const (
	// FlushAuto msyncs dirty pages and then fdatasyncs the file.
	// On macOS fsync is used since fdatasync does not exist.
	FlushAuto FlushMode = iota

	// FlushDataOnly only msyncs dirty pages. The caller is responsible for
	// syncing the file descriptor later.
	FlushDataOnly

	// FlushFull msyncs dirty pages and fdatasyncs, using F_FULLFSYNC on macOS.
	FlushFull
)

// Range represents a dirty byte range (offsets into the arena).
type Range struct {
	Off int64 // Offset in the arena
	Len int64 // Length in bytes
}

// Tracker accumulates dirty ranges and flushes them efficiently.
//
// NOT thread-safe. Only one goroutine should use it at a time.
type Tracker struct {
	h        *heap.Heap
	ranges   []Range // Raw ranges, coalesced at flush time
	pageSize int64
}

// NewTracker creates a dirty tracker for the given file-backed arena.
func NewTracker(h *heap.Heap) *Tracker {
	return &Tracker{
		h:        h,
		ranges:   make([]Range, 0, defaultRangeCapacity),
		pageSize: standardPageSize,
	}
}

// Add records a dirty range. It only appends; alignment and merging happen
// at flush time.
func (t *Tracker) Add(off, length int) {
	t.ranges = append(t.ranges, Range{
		Off: int64(off),
		Len: int64(length),
	})
}

// Len returns the number of raw ranges recorded since the last flush.
func (t *Tracker) Len() int {
	return len(t.ranges)
}

// Flush writes all dirty pages back to the backing file and, depending on
// mode, syncs the file descriptor. The recorded ranges are cleared on
// success.
//
// The context is checked before each phase. If cancelled midway, some pages
// may have been flushed while others have not; the ranges are kept so a later
// Flush retries them.
func (t *Tracker) Flush(ctx context.Context, mode FlushMode) error {
	if len(t.ranges) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data := t.h.Bytes()
	if len(data) == 0 {
		return nil
	}

	if err := t.flushRanges(ctx, data); err != nil {
		return err
	}

	if mode != FlushDataOnly {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fdatasync(t.h.FD(), mode == FlushFull); err != nil {
			return err
		}
	}

	t.ranges = t.ranges[:0]
	return nil
}

// Reset clears all tracked ranges.
func (t *Tracker) Reset() {
	t.ranges = t.ranges[:0]
}

// DebugRanges returns a copy of the raw, uncoalesced ranges.
func (t *Tracker) DebugRanges() []Range {
	result := make([]Range, len(t.ranges))
	copy(result, t.ranges)
	return result
}

// DebugCoalescedRanges returns the page-aligned, sorted and merged ranges
// that the next Flush will write.
func (t *Tracker) DebugCoalescedRanges() []Range {
	return t.coalesce()
}

// coalesce page-aligns all ranges, clamps them to the arena, sorts them, and
// merges overlapping or adjacent ranges.
func (t *Tracker) coalesce() []Range {
	if len(t.ranges) == 0 {
		return nil
	}

	limit := t.h.Size()
	aligned := make([]Range, len(t.ranges))
	for i, r := range t.ranges {
		start := (r.Off / t.pageSize) * t.pageSize

		end := r.Off + r.Len
		if end%t.pageSize != 0 {
			end = ((end / t.pageSize) + 1) * t.pageSize
		}
		if end > limit {
			end = limit
		}

		aligned[i] = Range{
			Off: start,
			Len: end - start,
		}
	}

	sort.Slice(aligned, func(i, j int) bool {
		return aligned[i].Off < aligned[j].Off
	})

	merged := make([]Range, 0, len(aligned))
	current := aligned[0]

	for i := 1; i < len(aligned); i++ {
		next := aligned[i]

		if next.Off <= current.Off+current.Len {
			end := max(current.Off+current.Len, next.Off+next.Len)
			current.Len = end - current.Off
		} else {
			merged = append(merged, current)
			current = next
		}
	}

	merged = append(merged, current)
	return merged
}
