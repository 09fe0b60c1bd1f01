package format

import "fmt"

// Word is a header or footer word.
//
// Layout (little-endian uint32):
//
//	bits 31..3  block size (always a multiple of 8)
//	bits  2..1  zero
//	bit      0  allocated flag
type Word uint32

// Pack combines a block size and an allocated flag into a single word.
// size must be a multiple of DoubleWordSize.
func Pack(size uint32, allocated bool) Word {
	w := Word(size &^ FlagMask)
	if allocated {
		w |= AllocatedBit
	}
	return w
}

// Size returns the size bits of the word with the flag bits masked off.
func (w Word) Size() uint32 {
	return uint32(w) &^ FlagMask
}

// Allocated reports whether the allocated bit is set.
func (w Word) Allocated() bool {
	return w&AllocatedBit != 0
}

// IsEpilogue reports whether w is the epilogue marker.
func (w Word) IsEpilogue() bool {
	return w == Pack(EpilogueSize, true)
}

func (w Word) String() string {
	state := "free"
	if w.Allocated() {
		state = "alloc"
	}
	return fmt.Sprintf("%d/%s", w.Size(), state)
}

// ReadWord reads the word stored at off.
func ReadWord(b []byte, off int) Word {
	return Word(ReadU32(b, off))
}

// PutWord stores w at off.
func PutWord(b []byte, off int, w Word) {
	PutU32(b, off, uint32(w))
}
