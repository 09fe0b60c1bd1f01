//go:build !linux && !darwin

package heap

import (
	"io"
	"os"
)

// Create makes a new arena file of size bytes (rounded down to 8) and loads it
// into memory. The content is written back on Close.
func Create(path string, size int64) (*Heap, error) {
	f, sz, err := createFile(path, size)
	if err != nil {
		return nil, err
	}
	return &Heap{f: f, data: make([]byte, sz), size: sz}, nil
}

// Open loads an existing arena image into memory on non-unix platforms.
func Open(path string) (*Heap, error) {
	f, sz, err := openFile(path)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, sz)
	if _, err := io.ReadFull(f, buf); err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Heap{f: f, data: buf, size: sz}, nil
}

func (h *Heap) Close() error {
	var err error
	if h.f != nil && h.data != nil {
		_, err = h.f.WriteAt(h.data, 0)
	}
	if h.f != nil {
		if cerr := h.f.Close(); err == nil {
			err = cerr
		}
		h.f = nil
	}
	h.data = nil
	return err
}

// Mapped reports whether Bytes aliases a shared file mapping.
func (h *Heap) Mapped() bool { return false }
