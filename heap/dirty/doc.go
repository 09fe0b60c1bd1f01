// Package dirty tracks the byte ranges of a file-backed arena that the
// allocator has rewritten, and flushes them to disk.
//
// The allocator reports every header, footer and epilogue word it writes.
// At flush time the tracker page-aligns and merges those ranges and msyncs
// only the pages that changed.
//
// # Usage
//
//	h, err := heap.Create("arena.heap", 1<<20)
//	if err != nil {
//	    return err
//	}
//	dt := dirty.NewTracker(h)
//	a := alloc.NewImplicit(&alloc.Options{Dirty: dt})
//	if err := a.Init(h.Bytes()); err != nil {
//	    return err
//	}
//	// ... allocate and free ...
//	err = dt.Flush(ctx, dirty.FlushAuto)
package dirty
