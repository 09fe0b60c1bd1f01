//go:build linux

package dirty

import (
	"context"

	"golang.org/x/sys/unix"
)

// flushRanges msyncs each coalesced range. Linux accepts page-aligned
// sub-slices of a mapping.
func (t *Tracker) flushRanges(ctx context.Context, data []byte) error {
	for _, r := range t.coalesce() {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := int(r.Off)
		end := int(r.Off + r.Len)
		if end > len(data) || start >= end {
			continue
		}

		if err := unix.Msync(data[start:end], unix.MS_SYNC); err != nil {
			return err
		}
	}
	return nil
}

// fdatasync performs file descriptor sync. fullfsync is ignored on Linux.
func fdatasync(fd int, _ bool) error {
	return unix.Fdatasync(fd)
}
