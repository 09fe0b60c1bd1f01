package dirty

// DirtyTracker is the minimal interface for tracking dirty (modified) byte ranges.
// Components that only report writes (the allocator) depend on this instead of
// the concrete Tracker.
type DirtyTracker interface {
	// Add marks a byte range as dirty.
	// off is the offset from the start of the arena, length is the number of bytes.
	Add(off, length int)
}
