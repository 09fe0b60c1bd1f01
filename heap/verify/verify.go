package verify

import (
	"errors"
	"fmt"
	"io"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/internal/format"
)

// reservedBits are the flag bits other than the allocated bit; they are
// always zero in a well-formed word.
const reservedBits = format.FlagMask &^ format.AllocatedBit

// Kind names the invariant a ValidationError reports.
type Kind string

const (
	KindArena        Kind = "Arena"
	KindSentinel     Kind = "Sentinel"
	KindAlignment    Kind = "Alignment"
	KindMinSize      Kind = "MinSize"
	KindTagMismatch  Kind = "TagMismatch"
	KindAdjacentFree Kind = "AdjacentFree"
	KindChain        Kind = "Chain"
	KindConservation Kind = "Conservation"
	KindUsedBytes    Kind = "UsedBytes"
)

// ValidationError describes a single invariant violation.
type ValidationError struct {
	Kind    Kind
	Message string
	Offset  int // Payload offset of the offending block, -1 if N/A
	Details map[string]any
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", e.Kind, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// AllInvariants validates every structural invariant of an arena in one call.
// data is rounded down to the alignment unit the same way the allocator's
// Init does. Returns the first error encountered, or nil if all checks pass.
func AllInvariants(data []byte) error {
	if err := Arena(data); err != nil {
		return err
	}
	seg := heap.Segment(data[:format.AlignDown8(len(data))])
	if err := Sentinels(seg); err != nil {
		return err
	}
	return BlockChain(seg)
}

// Arena checks that data is large enough to hold an initialized arena.
func Arena(data []byte) error {
	size := format.AlignDown8(len(data))
	if size < format.MinArenaSize {
		return &ValidationError{
			Kind:    KindArena,
			Message: fmt.Sprintf("arena too small: %d bytes (need %d)", size, format.MinArenaSize),
			Offset:  -1,
		}
	}
	if uint64(size) > format.MaxArenaSize {
		return &ValidationError{
			Kind:    KindArena,
			Message: fmt.Sprintf("arena too large: %d bytes (max %d)", size, uint64(format.MaxArenaSize)),
			Offset:  -1,
		}
	}
	return nil
}

// Sentinels checks the padding word, the prologue block and the epilogue marker.
func Sentinels(seg heap.Segment) error {
	prologue := format.Pack(format.PrologueSize, true)

	if pad := format.ReadWord(seg, format.PaddingOffset); pad != 0 {
		return &ValidationError{
			Kind:    KindSentinel,
			Message: fmt.Sprintf("padding word is 0x%08X, expected 0", uint32(pad)),
			Offset:  format.PaddingOffset,
		}
	}
	if hdr := format.ReadWord(seg, format.PrologueHeaderOffset); hdr != prologue {
		return &ValidationError{
			Kind:    KindSentinel,
			Message: fmt.Sprintf("prologue header is %v, expected %v", hdr, prologue),
			Offset:  format.PrologueHeaderOffset + format.WordSize,
		}
	}
	if ftr := format.ReadWord(seg, format.PrologueFooterOffset); ftr != prologue {
		return &ValidationError{
			Kind:    KindSentinel,
			Message: fmt.Sprintf("prologue footer is %v, expected %v", ftr, prologue),
			Offset:  format.PrologueHeaderOffset + format.WordSize,
		}
	}
	if epi := format.ReadWord(seg, seg.EpilogueOff()); !epi.IsEpilogue() {
		return &ValidationError{
			Kind:    KindSentinel,
			Message: fmt.Sprintf("epilogue header is %v, expected %v", epi, format.Pack(0, true)),
			Offset:  len(seg),
		}
	}
	return nil
}

// BlockChain walks the real blocks from the first block to the epilogue and
// checks alignment, minimum size, boundary tags, coalescing, termination and
// conservation.
func BlockChain(seg heap.Segment) error {
	it := seg.Blocks()
	prevFree := false
	var total int

	for {
		b, err := it.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return &ValidationError{
				Kind:    KindChain,
				Message: err.Error(),
				Offset:  int(it.Offset()),
			}
		}
		if err := checkBlock(b); err != nil {
			return err
		}
		if prevFree && !b.Allocated {
			return &ValidationError{
				Kind:    KindAdjacentFree,
				Message: fmt.Sprintf("free block of %d bytes follows another free block", b.Size),
				Offset:  int(b.Ptr),
			}
		}
		prevFree = !b.Allocated
		total += int(b.Size)
	}

	if end := int(it.Offset()); end != len(seg) {
		return &ValidationError{
			Kind:    KindChain,
			Message: fmt.Sprintf("epilogue reached at 0x%X, arena ends at 0x%X", end-format.WordSize, seg.EpilogueOff()),
			Offset:  end,
		}
	}

	if want := len(seg) - format.SentinelOverhead; total != want {
		return &ValidationError{
			Kind:    KindConservation,
			Message: fmt.Sprintf("block sizes sum to %d, expected %d", total, want),
			Offset:  -1,
			Details: map[string]any{
				"total":    total,
				"expected": want,
				"arena":    len(seg),
			},
		}
	}
	return nil
}

func checkBlock(b heap.Block) error {
	// The size field cannot encode a misaligned size, so a misaligned block
	// shows up as reserved bits set in its header.
	if b.Ptr%format.DoubleWordSize != 0 || uint32(b.Header)&reservedBits != 0 {
		return &ValidationError{
			Kind:    KindAlignment,
			Message: fmt.Sprintf("header 0x%X at misaligned block or with reserved bits set", uint32(b.Header)),
			Offset:  int(b.Ptr),
		}
	}
	if b.Size < format.MinBlockSize {
		return &ValidationError{
			Kind:    KindMinSize,
			Message: fmt.Sprintf("block size %d below minimum %d", b.Size, format.MinBlockSize),
			Offset:  int(b.Ptr),
		}
	}
	if b.Header != b.Footer {
		return &ValidationError{
			Kind:    KindTagMismatch,
			Message: fmt.Sprintf("header %v does not match footer %v", b.Header, b.Footer),
			Offset:  int(b.Ptr),
			Details: map[string]any{
				"header": uint32(b.Header),
				"footer": uint32(b.Footer),
			},
		}
	}
	return nil
}

// UsedBytes checks the allocator's used-bytes counter against the arena size.
func UsedBytes(used, arenaSize int) error {
	if used > arenaSize {
		return &ValidationError{
			Kind:    KindUsedBytes,
			Message: fmt.Sprintf("used %d bytes of a %d byte arena", used, arenaSize),
			Offset:  -1,
			Details: map[string]any{
				"used":  used,
				"arena": arenaSize,
			},
		}
	}
	return nil
}
