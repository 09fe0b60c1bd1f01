//go:build !linux && !darwin

package dirty

import "context"

// flushRanges is a no-op: on these platforms the arena lives in a plain byte
// slice that heap.Heap writes back on Close.
func (t *Tracker) flushRanges(_ context.Context, _ []byte) error {
	return nil
}

func fdatasync(_ int, _ bool) error {
	return nil
}
