package alloc

import "errors"

var (
	// ErrNoSpace indicates that no free block large enough was found. The arena
	// never grows, so the request simply fails and the arena is unchanged.
	ErrNoSpace = errors.New("alloc: no free block large enough")

	// ErrBadRef indicates a pointer that cannot belong to this arena.
	ErrBadRef = errors.New("alloc: bad block reference")

	// ErrNotAllocated indicates an attempt to free or resize a block that is
	// already free (double free).
	ErrNotAllocated = errors.New("alloc: block is not allocated")

	// ErrCorrupt indicates a block whose header and footer disagree.
	ErrCorrupt = errors.New("alloc: corrupt block tags")

	// ErrBadSize indicates a negative request size.
	ErrBadSize = errors.New("alloc: negative request size")

	// ErrArenaTooSmall indicates an arena that cannot hold the sentinels plus one minimum block.
	ErrArenaTooSmall = errors.New("alloc: arena too small")

	// ErrArenaTooLarge indicates an arena whose size does not fit in a header word.
	ErrArenaTooLarge = errors.New("alloc: arena too large")

	// ErrNotInitialized indicates an operation before a successful Init.
	ErrNotInitialized = errors.New("alloc: arena not initialized")
)
