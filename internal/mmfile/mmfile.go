// Package mmfile maps heap image files read-only for inspection.
package mmfile

import (
	"errors"
	"fmt"
	"os"

	"github.com/joshuapare/heapkit/internal/format"
)

var (
	// ErrTooSmall indicates a file that cannot hold an initialized arena.
	ErrTooSmall = errors.New("mmfile: image too small")

	// ErrTooLarge indicates a file whose size does not fit in a header word.
	ErrTooLarge = errors.New("mmfile: image too large")
)

// Image is a read-only view of a heap image file.
type Image struct {
	Path  string
	data  []byte
	unmap func() error
}

// Open maps the heap image at path. The returned bytes are rounded down to
// the alignment unit, matching what the allocator manages. Images larger
// than format.MaxArenaSize are rejected before mapping.
func Open(path string) (*Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("mmfile: %w", err)
	}
	if size := format.AlignDown8(info.Size()); size > format.MaxArenaSize {
		return nil, fmt.Errorf("mmfile: %s is %d bytes (max %d): %w",
			path, info.Size(), uint64(format.MaxArenaSize), ErrTooLarge)
	}

	data, unmap, err := mapFile(path)
	if err != nil {
		return nil, fmt.Errorf("mmfile: %s: %w", path, err)
	}
	if len(data) < format.MinArenaSize {
		_ = unmap()
		return nil, fmt.Errorf("mmfile: %s is %d bytes (need %d): %w", path, len(data), format.MinArenaSize, ErrTooSmall)
	}
	return &Image{
		Path:  path,
		data:  data[:format.AlignDown8(len(data))],
		unmap: unmap,
	}, nil
}

// Bytes returns the mapped image. The slice is invalid after Close.
func (m *Image) Bytes() []byte { return m.data }

// Close releases the mapping. It is safe to call more than once.
func (m *Image) Close() error {
	if m.unmap == nil {
		return nil
	}
	err := m.unmap()
	m.unmap = nil
	m.data = nil
	return err
}
