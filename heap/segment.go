package heap

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// Ptr is a payload offset relative to the start of a Segment.
type Ptr uint32

// Nil is the null pointer. Offset 0 holds the padding word and is never a payload.
const Nil Ptr = 0

// First is the payload offset of the first real block in every arena.
const First Ptr = format.FirstBlockOffset

// Segment is a byte range laid out as a boundary-tag block chain.
//
// The codec methods assume bp points at the payload of a well-formed block;
// out-of-range offsets panic through the slice bounds checks. Use CheckPtr for
// pointers that come from outside the allocator.
type Segment []byte

// HeaderOff returns the offset of the header word of the block at bp.
func (s Segment) HeaderOff(bp Ptr) int {
	return int(bp) - format.WordSize
}

// FooterOff returns the offset of the footer word of the block at bp. The
// location depends on the size currently stored in the header.
func (s Segment) FooterOff(bp Ptr) int {
	return int(bp) + int(s.Header(bp).Size()) - format.DoubleWordSize
}

// Header returns the header word of the block at bp.
func (s Segment) Header(bp Ptr) format.Word {
	return format.ReadWord(s, s.HeaderOff(bp))
}

// Footer returns the footer word of the block at bp.
func (s Segment) Footer(bp Ptr) format.Word {
	return format.ReadWord(s, s.FooterOff(bp))
}

// SetHeader overwrites the header word of the block at bp.
func (s Segment) SetHeader(bp Ptr, w format.Word) {
	format.PutWord(s, s.HeaderOff(bp), w)
}

// SetFooter overwrites the footer word of the block at bp. The footer is
// placed according to the size in the header, so rewrite the header first
// when a block changes size.
func (s Segment) SetFooter(bp Ptr, w format.Word) {
	format.PutWord(s, s.FooterOff(bp), w)
}

// SetBlock writes matching header and footer words for a block of size bytes.
func (s Segment) SetBlock(bp Ptr, size uint32, allocated bool) {
	w := format.Pack(size, allocated)
	s.SetHeader(bp, w)
	s.SetFooter(bp, w)
}

// Next returns the payload offset of the block following bp.
func (s Segment) Next(bp Ptr) Ptr {
	return bp + Ptr(s.Header(bp).Size())
}

// Prev returns the payload offset of the block preceding bp, found through
// that block's footer.
func (s Segment) Prev(bp Ptr) Ptr {
	return bp - Ptr(format.ReadWord(s, int(bp)-format.DoubleWordSize).Size())
}

// Payload returns the payload bytes of the block at bp, aliasing s.
func (s Segment) Payload(bp Ptr) []byte {
	return s[bp:s.FooterOff(bp)]
}

// EpilogueOff returns the offset where the epilogue header of an initialized
// segment lives.
func (s Segment) EpilogueOff() int {
	return len(s) - format.WordSize
}

// CheckPtr reports whether bp can be the payload pointer of a block in s:
// inside the real-block area, 8-byte aligned, with a header size that keeps
// the whole block inside the segment.
func (s Segment) CheckPtr(bp Ptr) error {
	if bp < First || int(bp) >= s.EpilogueOff() {
		return fmt.Errorf("heap: pointer 0x%X outside block area [0x%X, 0x%X): %w",
			bp, First, s.EpilogueOff(), ErrOutOfRange)
	}
	if bp%format.DoubleWordSize != 0 {
		return fmt.Errorf("heap: pointer 0x%X: %w", bp, format.ErrMisaligned)
	}
	size := s.Header(bp).Size()
	if size < format.MinBlockSize || int(bp)+int(size)-format.WordSize > s.EpilogueOff() {
		return fmt.Errorf("heap: block at 0x%X has bad size %d: %w", bp, size, ErrOutOfRange)
	}
	return nil
}
