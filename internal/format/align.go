package format

import "golang.org/x/exp/constraints"

// Align8 returns n aligned up to the next 8-byte boundary.
//
// Example:
//
//	Align8(1)  = 8
//	Align8(8)  = 8
//	Align8(9)  = 16
//	Align8(16) = 16
func Align8[T constraints.Integer](n T) T {
	return (n + T(AlignmentMask)) &^ T(AlignmentMask)
}

// AlignDown8 returns n rounded down to an 8-byte boundary.
//
// Example:
//
//	AlignDown8(7)    = 0
//	AlignDown8(4099) = 4096
func AlignDown8[T constraints.Integer](n T) T {
	return n &^ T(AlignmentMask)
}

// AdjustedSize converts a payload request into a block size: the request plus
// header and footer, rounded up to the alignment unit, and never less than
// MinBlockSize. The caller must reject n <= 0 beforehand.
//
// Example:
//
//	AdjustedSize(1)   = 16
//	AdjustedSize(8)   = 16
//	AdjustedSize(9)   = 24
//	AdjustedSize(100) = 112
func AdjustedSize(n int) int {
	if n <= DoubleWordSize {
		return MinBlockSize
	}
	return Align8(n + BlockOverhead)
}
