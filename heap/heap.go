package heap

import (
	"fmt"
	"os"

	"github.com/joshuapare/heapkit/internal/format"
)

// Heap is a file-backed arena, mapped read-write on unix and held in a byte
// slice elsewhere. The whole file is the arena; there is no extra header.
type Heap struct {
	f    *os.File
	data []byte
	size int64
}

// Bytes returns the arena bytes. The slice is invalidated by Close.
func (h *Heap) Bytes() []byte { return h.data }

// Segment returns the arena viewed as a block chain.
func (h *Heap) Segment() Segment { return Segment(h.data) }

// Size returns the arena size in bytes.
func (h *Heap) Size() int64 { return h.size }

// FD returns the backing file descriptor, or -1 for a closed heap.
func (h *Heap) FD() int {
	if h == nil || h.f == nil {
		return -1
	}
	return int(h.f.Fd())
}

// createFile creates (or truncates) path and sizes it for an arena of size
// bytes, rounded down to the alignment unit.
func createFile(path string, size int64) (*os.File, int64, error) {
	size = format.AlignDown8(size)
	if size < format.MinArenaSize {
		return nil, 0, fmt.Errorf("heap: create %s with %d bytes: %w", path, size, ErrTooSmall)
	}
	if size > format.MaxArenaSize {
		return nil, 0, fmt.Errorf("heap: create %s: size %d exceeds 0x%X: %w", path, size, uint64(format.MaxArenaSize), ErrTooLarge)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, 0, err
	}
	if err := f.Truncate(size); err != nil {
		_ = f.Close()
		return nil, 0, fmt.Errorf("heap: size %s: %w", path, err)
	}
	return f, size, nil
}

// openFile opens an existing arena image read-write.
func openFile(path string) (*os.File, int64, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, 0, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, err
	}
	sz := st.Size()
	if sz < format.MinArenaSize {
		_ = f.Close()
		return nil, 0, fmt.Errorf("heap: open %s (%d bytes): %w", path, sz, ErrTooSmall)
	}
	if format.AlignDown8(sz) > format.MaxArenaSize {
		_ = f.Close()
		return nil, 0, fmt.Errorf("heap: open %s (%d bytes) exceeds 0x%X: %w", path, sz, uint64(format.MaxArenaSize), ErrTooLarge)
	}
	return f, sz, nil
}
