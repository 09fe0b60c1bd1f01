package alloc

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/internal/format"
)

type liveBlock struct {
	n    int
	seed byte
}

// Test_Property_RandomOps performs random alloc/free/realloc and validates
// every invariant after each step.
func Test_Property_RandomOps(t *testing.T) {
	for _, seed := range []int64{1, 42, 2024} {
		a := newTestAllocator(t, 8192, &Options{DeepValidate: true})
		rng := rand.New(rand.NewSource(seed)) // Fixed seed for reproducibility
		live := make(map[Ptr]liveBlock)

		for i := range 2000 {
			switch op := rng.Intn(10); {
			case op < 5: // Allocate
				n := 1 + rng.Intn(300)
				p, err := a.Alloc(n)
				if err != nil {
					require.ErrorIs(t, err, ErrNoSpace, "seed %d step %d", seed, i)
					break
				}
				s := byte(rng.Intn(256))
				fill(t, a, p, n, s)
				live[p] = liveBlock{n: n, seed: s}

			case op < 8: // Free
				p, ok := pick(rng, live)
				if !ok {
					break
				}
				requirePattern(t, a, p, live[p].n, live[p].seed)
				require.NoError(t, a.Free(p), "seed %d step %d", seed, i)
				delete(live, p)

			default: // Realloc
				p, ok := pick(rng, live)
				if !ok {
					break
				}
				old := live[p]
				n := 1 + rng.Intn(400)
				q, err := a.Realloc(p, n)
				if err != nil {
					require.ErrorIs(t, err, ErrNoSpace, "seed %d step %d", seed, i)
					requirePattern(t, a, p, old.n, old.seed)
					break
				}
				keep := min(old.n, n)
				requirePattern(t, a, q, keep, old.seed)
				delete(live, p)
				fill(t, a, q, n, old.seed)
				live[q] = liveBlock{n: n, seed: old.seed}
			}

			assertInvariants(t, a)
			requireDisjoint(t, a, live)
		}

		for p, b := range live {
			requirePattern(t, a, p, b.n, b.seed)
			require.NoError(t, a.Free(p))
		}
		require.Len(t, layout(t, a), 1, "everything coalesces back into one block")
		require.Equal(t, format.SentinelOverhead, a.Used())
	}
}

// pick returns the lowest live pointer at a random rank so runs are
// reproducible regardless of map order.
func pick(rng *rand.Rand, live map[Ptr]liveBlock) (Ptr, bool) {
	if len(live) == 0 {
		return heap.Nil, false
	}
	ptrs := sortedPtrs(live)
	return ptrs[rng.Intn(len(ptrs))], true
}

func sortedPtrs(live map[Ptr]liveBlock) []Ptr {
	ptrs := make([]Ptr, 0, len(live))
	for p := range live {
		ptrs = append(ptrs, p)
	}
	sort.Slice(ptrs, func(i, j int) bool { return ptrs[i] < ptrs[j] })
	return ptrs
}

// requireDisjoint checks alignment and that no two live payloads overlap.
func requireDisjoint(t *testing.T, a *ImplicitAllocator, live map[Ptr]liveBlock) {
	t.Helper()
	end := 0
	for _, p := range sortedPtrs(live) {
		require.Zero(t, p%format.DoubleWordSize, "payload 0x%X misaligned", p)
		b, err := a.Payload(p)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(b), live[p].n)
		require.GreaterOrEqual(t, int(p), end, "payload 0x%X overlaps the previous one", p)
		end = int(p) + len(b)
	}
}
