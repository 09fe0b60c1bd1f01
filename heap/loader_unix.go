//go:build linux || darwin

package heap

import (
	"fmt"
	"os"
	"syscall"
)

// Create makes a new arena file of size bytes (rounded down to 8) and maps it
// read-write. The file content starts zeroed; run the allocator's Init on
// Bytes before use.
func Create(path string, size int64) (*Heap, error) {
	f, sz, err := createFile(path, size)
	if err != nil {
		return nil, err
	}
	return mapFile(f, sz)
}

// Open maps an existing arena image read-write so it can be mutated in place.
func Open(path string) (*Heap, error) {
	f, sz, err := openFile(path)
	if err != nil {
		return nil, err
	}
	return mapFile(f, sz)
}

func mapFile(f *os.File, sz int64) (*Heap, error) {
	data, err := syscall.Mmap(
		int(f.Fd()),
		0,
		int(sz),
		syscall.PROT_READ|syscall.PROT_WRITE,
		syscall.MAP_SHARED,
	)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("mmap failed: %w", err)
	}
	return &Heap{
		f:    f,
		data: data,
		size: sz,
	}, nil
}

func (h *Heap) Close() error {
	var err error
	if h.data != nil {
		_ = syscall.Munmap(h.data)
		h.data = nil
	}
	if h.f != nil {
		err = h.f.Close()
		h.f = nil
	}
	return err
}

// Mapped reports whether Bytes aliases a shared file mapping.
func (h *Heap) Mapped() bool { return h.data != nil }
