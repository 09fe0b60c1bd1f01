package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackRoundTrip(t *testing.T) {
	cases := []struct {
		size      uint32
		allocated bool
		raw       uint32
	}{
		{0, true, 0x1},
		{8, true, 0x9},
		{16, false, 0x10},
		{4080, false, 0xFF0},
		{MaxArenaSize, true, 0xFFFFFFF9},
	}
	for _, tc := range cases {
		w := Pack(tc.size, tc.allocated)
		require.Equal(t, tc.raw, uint32(w), "Pack(%d, %v)", tc.size, tc.allocated)
		require.Equal(t, tc.size, w.Size(), "size of 0x%X", tc.raw)
		require.Equal(t, tc.allocated, w.Allocated(), "allocated bit of 0x%X", tc.raw)
	}
}

func TestWordSizeMasksFlagBits(t *testing.T) {
	w := Word(0x17) // 16 | 0b111
	require.Equal(t, uint32(16), w.Size())
	require.True(t, w.Allocated())
}

func TestEpilogueMarker(t *testing.T) {
	require.True(t, Pack(0, true).IsEpilogue())
	require.False(t, Pack(0, false).IsEpilogue())
	require.False(t, Pack(8, true).IsEpilogue())
}

func TestPutReadWordLittleEndian(t *testing.T) {
	b := make([]byte, 8)
	PutWord(b, 4, Pack(24, true))
	require.Equal(t, []byte{0, 0, 0, 0, 0x19, 0, 0, 0}, b)
	require.Equal(t, Pack(24, true), ReadWord(b, 4))
}

func TestLayoutConstants(t *testing.T) {
	require.Equal(t, 16, SentinelOverhead)
	require.Equal(t, 32, MinArenaSize)
	require.Equal(t, PrologueFooterOffset+WordSize, FirstBlockOffset-WordSize,
		"first block header must follow the prologue footer")
}
