package heap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/format"
)

// testBlock describes one real block for buildSegment.
type testBlock struct {
	size      uint32
	allocated bool
}

// buildSegment lays out padding, prologue, the given blocks and the epilogue
// by hand. The block sizes must add up to size-16.
func buildSegment(t testing.TB, size int, blocks ...testBlock) Segment {
	t.Helper()

	seg := make(Segment, size)
	format.PutWord(seg, format.PaddingOffset, 0)
	format.PutWord(seg, format.PrologueHeaderOffset, format.Pack(format.PrologueSize, true))
	format.PutWord(seg, format.PrologueFooterOffset, format.Pack(format.PrologueSize, true))

	bp := First
	total := 0
	for _, b := range blocks {
		seg.SetBlock(bp, b.size, b.allocated)
		bp += Ptr(b.size)
		total += int(b.size)
	}
	require.Equal(t, size-format.SentinelOverhead, total, "blocks must fill the segment")
	format.PutWord(seg, seg.EpilogueOff(), format.Pack(0, true))
	return seg
}
