package heap

import "errors"

var (
	// ErrOutOfRange indicates an offset or block extent outside the segment.
	ErrOutOfRange = errors.New("heap: offset out of range")

	// ErrBrokenChain indicates a block chain that cannot be walked.
	ErrBrokenChain = errors.New("heap: broken block chain")

	// ErrTooSmall indicates a backing file or buffer too small to hold an arena.
	ErrTooSmall = errors.New("heap: arena too small")

	// ErrTooLarge indicates a backing file whose size does not fit in a header word.
	ErrTooLarge = errors.New("heap: arena too large")
)
