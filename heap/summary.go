package heap

import (
	"errors"
	"io"

	"github.com/joshuapare/heapkit/internal/format"
)

// Summary describes the block chain of an arena.
type Summary struct {
	ArenaSize       int     // Arena size in bytes
	AllocatedBlocks int     // Number of allocated real blocks
	FreeBlocks      int     // Number of free blocks
	AllocatedBytes  int     // Bytes in allocated blocks, including header and footer
	PayloadBytes    int     // Usable bytes in allocated blocks
	FreeBytes       int     // Bytes in free blocks, including header and footer
	LargestFree     int     // Size of the largest free block
	Utilization     float64 // AllocatedBytes / ArenaSize
	Fragmentation   float64 // 1 - LargestFree/FreeBytes, 0 when nothing is free
}

// Summarize walks the chain of an initialized segment.
func Summarize(seg Segment) (Summary, error) {
	s := Summary{ArenaSize: len(seg)}

	it := seg.Blocks()
	for {
		b, err := it.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return s, err
		}
		if b.Allocated {
			s.AllocatedBlocks++
			s.AllocatedBytes += int(b.Size)
			s.PayloadBytes += b.PayloadSize()
			continue
		}
		s.FreeBlocks++
		s.FreeBytes += int(b.Size)
		s.LargestFree = max(s.LargestFree, int(b.Size))
	}

	if s.ArenaSize > 0 {
		s.Utilization = float64(s.AllocatedBytes) / float64(s.ArenaSize)
	}
	if s.FreeBytes > 0 {
		s.Fragmentation = 1 - float64(s.LargestFree)/float64(s.FreeBytes)
	}
	return s, nil
}

// Overhead returns the bytes not available to callers: sentinels plus the
// header and footer of every real block.
func (s Summary) Overhead() int {
	return format.SentinelOverhead + (s.AllocatedBlocks+s.FreeBlocks)*format.BlockOverhead
}
