package script

const (
	// ============================================================================
	// Script Format Tokens
	// ============================================================================

	// CommentPrefix marks a comment line
	CommentPrefix = "#"

	// OpAllocToken starts an allocation line: a <id> <size>
	OpAllocToken = "a"

	// OpReallocToken starts a reallocation line: r <id> <size>
	OpReallocToken = "r"

	// OpFreeToken starts a free line: f <id>
	OpFreeToken = "f"

	// ============================================================================
	// Scanner Limits
	// ============================================================================

	// ScannerInitialBufferSize is the initial line buffer size
	ScannerInitialBufferSize = 4 * 1024

	// ScannerMaxLineSize is the longest accepted script line
	ScannerMaxLineSize = 64 * 1024

	// InitialOpCapacity is the pre-allocated capacity for parsed operations
	InitialOpCapacity = 256
)
