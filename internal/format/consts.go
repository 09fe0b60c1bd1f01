// Package format houses the low-level word layout of a boundary-tag heap
// arena. Every block carries a header word before its payload and a footer
// word after it; both pack the block size together with an allocated flag.
// Higher-level packages never touch raw words directly, they go through the
// helpers defined here.
package format

const (
	// WordSize is the size of a header or footer word in bytes.
	WordSize = 4

	// DoubleWordSize is the alignment unit of the arena. Block sizes and
	// payload offsets are always multiples of this value.
	DoubleWordSize = 8

	// BlockOverhead is the number of bytes a block spends on its header and
	// footer (one word each).
	BlockOverhead = 2 * WordSize

	// MinBlockSize is the smallest legal block: header + footer + 8 bytes of
	// payload, rounded to the alignment unit.
	MinBlockSize = 2 * DoubleWordSize

	// PrologueSize is the size of the permanently allocated prologue block.
	PrologueSize = DoubleWordSize

	// EpilogueSize is the size recorded in the epilogue header.
	EpilogueSize = 0

	// PaddingOffset is the offset of the alignment padding word.
	PaddingOffset = 0

	// PrologueHeaderOffset is the offset of the prologue header word.
	PrologueHeaderOffset = WordSize

	// PrologueFooterOffset is the offset of the prologue footer word.
	PrologueFooterOffset = 2 * WordSize

	// FirstBlockOffset is the payload offset of the first real block.
	// Layout:
	//   0x00  padding word
	//   0x04  prologue header
	//   0x08  prologue footer
	//   0x0C  first block header
	//   0x10  first block payload
	FirstBlockOffset = 2 * DoubleWordSize

	// SentinelOverhead is the number of bytes consumed by the padding word,
	// the prologue block and the epilogue header.
	SentinelOverhead = WordSize + PrologueSize + WordSize

	// MinArenaSize is the smallest arena that holds the sentinels plus one
	// minimum block.
	MinArenaSize = SentinelOverhead + MinBlockSize

	// MaxArenaSize is the largest arena whose sizes still fit in a word.
	MaxArenaSize = 0xFFFFFFF8

	// AllocatedBit marks a header or footer word as allocated.
	AllocatedBit = 0x1

	// FlagMask covers the low bits of a word that are not part of the size.
	FlagMask = DoubleWordSize - 1

	// AlignmentMask is the bitmask used for aligning to 8-byte boundaries.
	AlignmentMask = DoubleWordSize - 1
)
