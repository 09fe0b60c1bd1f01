package alloc

import "github.com/joshuapare/heapkit/heap"

// Stats holds allocator call counters. They are reset by Init and Attach.
type Stats struct {
	InitCalls         int   // Init() calls over the allocator's lifetime
	AttachCalls       int   // Attach() calls over the allocator's lifetime
	AllocCalls        int   // Alloc() calls, including those made by Realloc
	FreeCalls         int   // Free() calls with a non-nil pointer
	ReallocCalls      int   // Realloc() calls
	ValidateCalls     int   // Validate() calls
	AllocFailures     int   // Allocations rejected with ErrNoSpace
	CorruptionReports int   // Failed Validate() calls
	BytesAllocated    int64 // Total block bytes handed out (including overhead)
	BytesFreed        int64 // Total block bytes returned
	BlocksScanned     int64 // Blocks visited by the fit finder
	SplitCount        int   // Blocks split on placement
	CoalesceNone      int   // Frees with both neighbours allocated
	CoalesceNext      int   // Frees merged with the following block
	CoalescePrev      int   // Frees merged with the preceding block
	CoalesceBoth      int   // Frees merged with both neighbours
}

// Stats returns a copy of the current counters.
func (a *ImplicitAllocator) Stats() Stats {
	return a.stats
}

// Summary walks the block chain and reports block counts, free space and
// fragmentation.
func (a *ImplicitAllocator) Summary() (heap.Summary, error) {
	if a.seg == nil {
		return heap.Summary{}, ErrNotInitialized
	}
	return heap.Summarize(a.seg)
}
