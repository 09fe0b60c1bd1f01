package heap

import (
	"fmt"
	"io"

	"github.com/joshuapare/heapkit/internal/format"
)

// Block is a decoded block of a Segment.
type Block struct {
	Ptr       Ptr         // Payload offset
	Size      uint32      // Total size including header and footer
	Allocated bool        // True when the header carries the allocated bit
	Header    format.Word // Raw header word
	Footer    format.Word // Raw footer word (as located by the header size)
}

// PayloadSize returns the number of usable payload bytes.
func (b Block) PayloadSize() int {
	return int(b.Size) - format.BlockOverhead
}

// End returns the payload offset of the following block.
func (b Block) End() Ptr {
	return b.Ptr + Ptr(b.Size)
}

func (b Block) String() string {
	return fmt.Sprintf("block@0x%X %v", b.Ptr, b.Header)
}

// BlockIterator walks the real blocks of a Segment from the first block up
// to the epilogue. It only refuses to continue when the next read would leave
// the segment; structural checks belong to the verify package.
type BlockIterator struct {
	seg  Segment
	off  Ptr
	done bool
}

// Blocks returns an iterator positioned at the first real block.
func (s Segment) Blocks() *BlockIterator {
	return &BlockIterator{
		seg: s,
		off: First,
	}
}

// Offset returns the payload offset the iterator will decode next. After
// io.EOF it is the position of the epilogue's would-be payload.
func (it *BlockIterator) Offset() Ptr {
	return it.off
}

// Next decodes the next block. It returns io.EOF at the epilogue marker.
func (it *BlockIterator) Next() (Block, error) {
	if it.done {
		return Block{}, io.EOF
	}

	hdrOff := it.seg.HeaderOff(it.off)
	if hdrOff < 0 || hdrOff+format.WordSize > len(it.seg) {
		it.done = true
		return Block{}, fmt.Errorf("heap: header at 0x%X past segment end (len=%d): %w",
			hdrOff, len(it.seg), ErrBrokenChain)
	}

	hdr := format.ReadWord(it.seg, hdrOff)
	if hdr.Size() == 0 {
		it.done = true
		if hdr.Allocated() {
			return Block{}, io.EOF
		}
		return Block{}, fmt.Errorf("heap: zero-size free block at 0x%X: %w", it.off, ErrBrokenChain)
	}

	ftrOff := int(it.off) + int(hdr.Size()) - format.DoubleWordSize
	if ftrOff < hdrOff || ftrOff+format.WordSize > len(it.seg) {
		it.done = true
		return Block{}, fmt.Errorf("heap: block at 0x%X (size %d) exceeds segment (len=%d): %w",
			it.off, hdr.Size(), len(it.seg), ErrBrokenChain)
	}

	if uint64(it.off)+uint64(hdr.Size()) > uint64(^Ptr(0)) {
		it.done = true
		return Block{}, fmt.Errorf("heap: block at 0x%X (size %d) wraps the offset space: %w",
			it.off, hdr.Size(), ErrBrokenChain)
	}

	b := Block{
		Ptr:       it.off,
		Size:      hdr.Size(),
		Allocated: hdr.Allocated(),
		Header:    hdr,
		Footer:    format.ReadWord(it.seg, ftrOff),
	}
	it.off = b.End()
	return b, nil
}
