package script

import "errors"

var (
	// ErrSyntax indicates a malformed script line.
	ErrSyntax = errors.New("script: syntax error")

	// ErrUnknownEncoding indicates an encoding name the parser does not support.
	ErrUnknownEncoding = errors.New("script: unknown encoding")

	// ErrUnknownID indicates a realloc or free of an id with no live block.
	ErrUnknownID = errors.New("script: id has no live block")

	// ErrDuplicateID indicates an allocation for an id that is still live.
	ErrDuplicateID = errors.New("script: id already live")

	// ErrMisaligned indicates a payload pointer that is not 8-byte aligned.
	ErrMisaligned = errors.New("script: misaligned payload")

	// ErrOverlap indicates two live payloads sharing bytes.
	ErrOverlap = errors.New("script: overlapping payloads")

	// ErrPayloadDamaged indicates a payload whose contents changed while live.
	ErrPayloadDamaged = errors.New("script: payload contents damaged")

	// ErrInvalidHeap indicates that the allocator's consistency check failed.
	ErrInvalidHeap = errors.New("script: heap failed validation")
)
