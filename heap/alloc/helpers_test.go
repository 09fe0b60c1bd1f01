package alloc

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/verify"
	"github.com/joshuapare/heapkit/internal/format"
)

// newTestAllocator returns an allocator initialized over a fresh arena of
// size bytes.
func newTestAllocator(t testing.TB, size int, opts *Options) *ImplicitAllocator {
	t.Helper()
	a := NewImplicit(opts)
	require.NoError(t, a.Init(make([]byte, size)))
	return a
}

// mustAlloc allocates n bytes and fails the test on error.
func mustAlloc(t testing.TB, a *ImplicitAllocator, n int) Ptr {
	t.Helper()
	p, err := a.Alloc(n)
	require.NoError(t, err, "Alloc(%d)", n)
	require.NotEqual(t, heap.Nil, p, "Alloc(%d) returned Nil", n)
	return p
}

// blockAt returns the header size and allocated flag of the block at bp.
func blockAt(a *ImplicitAllocator, bp Ptr) (uint32, bool) {
	h := a.Segment().Header(bp)
	return h.Size(), h.Allocated()
}

// layout returns the real blocks of the arena in address order.
func layout(t testing.TB, a *ImplicitAllocator) []heap.Block {
	t.Helper()
	var out []heap.Block
	it := a.Segment().Blocks()
	for {
		b, err := it.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		out = append(out, b)
	}
	require.Equal(t, a.Size(), int(it.Offset()), "chain must end at the epilogue")
	return out
}

// assertInvariants runs every structural check plus conservation of the
// used-bytes counter.
func assertInvariants(t testing.TB, a *ImplicitAllocator) {
	t.Helper()
	require.NoError(t, a.Check())
	require.NoError(t, verify.AllInvariants(a.Segment()))
	require.True(t, a.Validate())

	sum, err := a.Summary()
	require.NoError(t, err)
	require.Equal(t, a.Size(), format.SentinelOverhead+sum.AllocatedBytes+sum.FreeBytes, "conservation")
	require.Equal(t, format.SentinelOverhead+sum.AllocatedBytes, a.Used(), "used-bytes counter")
}

// fill writes a byte pattern derived from seed into the payload of p.
func fill(t testing.TB, a *ImplicitAllocator, p Ptr, n int, seed byte) {
	t.Helper()
	b, err := a.Payload(p)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(b), n)
	for i := range n {
		b[i] = seed + byte(i)
	}
}

// requirePattern checks the first n payload bytes of p against fill's pattern.
func requirePattern(t testing.TB, a *ImplicitAllocator, p Ptr, n int, seed byte) {
	t.Helper()
	b, err := a.Payload(p)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(b), n)
	for i := range n {
		require.Equal(t, seed+byte(i), b[i], "payload byte %d of block 0x%X", i, p)
	}
}

// recordingTracker records every dirty range reported to it.
type recordingTracker struct {
	ranges [][2]int
}

func (r *recordingTracker) Add(off, length int) {
	r.ranges = append(r.ranges, [2]int{off, length})
}

func (r *recordingTracker) covers(off int) bool {
	for _, rg := range r.ranges {
		if off >= rg[0] && off < rg[0]+rg[1] {
			return true
		}
	}
	return false
}
