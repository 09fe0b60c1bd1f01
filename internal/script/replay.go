package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/internal/format"
)

// Options configures Replay.
type Options struct {
	// Deep runs the allocator's full invariant walk after every operation
	// when it offers one (a Check() error method).
	Deep bool

	// StopOnNoSpace aborts the replay at the first allocation failure
	// instead of counting it and moving on.
	StopOnNoSpace bool

	// Logger receives one debug line per operation. Nil discards.
	Logger *slog.Logger
}

// Result summarizes a replay.
type Result struct {
	Ops             int     // Operations executed
	Allocs          int     // Successful allocations
	Reallocs        int     // Successful reallocations
	Frees           int     // Successful frees
	NoSpace         int     // Requests that failed with alloc.ErrNoSpace
	LiveBlocks      int     // Blocks still live at the end
	LiveBytes       int     // Requested bytes still live at the end
	PeakBytes       int     // Highest total of live requested bytes
	PeakUtilization float64 // PeakBytes / arena size
}

// checker is implemented by allocators with a full invariant walk.
type checker interface {
	Check() error
}

type liveBlock struct {
	p    alloc.Ptr
	size int
}

type replayer struct {
	a    alloc.Allocator
	opts Options
	log  *slog.Logger
	live map[int]liveBlock
	res  Result
}

// Replay runs s against a, which must already be initialized. Every payload
// is filled with a pattern derived from its id and verified before it is
// freed or moved; the heap is validated after each operation.
//
// The context is checked before each operation.
func Replay(ctx context.Context, a alloc.Allocator, s *Script, opts Options) (*Result, error) {
	r := &replayer{
		a:    a,
		opts: opts,
		log:  opts.Logger,
		live: make(map[int]liveBlock, s.IDs),
	}
	if r.log == nil {
		r.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	for _, op := range s.Ops {
		if err := ctx.Err(); err != nil {
			return &r.res, err
		}
		if err := r.step(op); err != nil {
			return &r.res, fmt.Errorf("script: line %d (%s %d): %w", op.Line, op.Kind, op.ID, err)
		}
		r.res.Ops++
		if err := r.validate(); err != nil {
			return &r.res, fmt.Errorf("script: line %d (%s %d): %w", op.Line, op.Kind, op.ID, err)
		}
	}

	r.res.LiveBlocks = len(r.live)
	r.res.LiveBytes = r.liveBytes()
	return &r.res, nil
}

func (r *replayer) step(op Op) error {
	r.log.Debug("op", "line", op.Line, "kind", op.Kind.String(), "id", op.ID, "size", op.Size)

	switch op.Kind {
	case OpAlloc:
		return r.alloc(op)
	case OpRealloc:
		return r.realloc(op)
	case OpFree:
		return r.free(op)
	default:
		return fmt.Errorf("%w: unknown operation %v", ErrSyntax, op.Kind)
	}
}

func (r *replayer) alloc(op Op) error {
	if _, ok := r.live[op.ID]; ok {
		return ErrDuplicateID
	}
	p, err := r.a.Alloc(op.Size)
	if errors.Is(err, alloc.ErrNoSpace) {
		return r.noSpace(err)
	}
	if err != nil {
		return err
	}
	if err := r.place(op.ID, p, op.Size); err != nil {
		return err
	}
	r.res.Allocs++
	return nil
}

func (r *replayer) realloc(op Op) error {
	old, ok := r.live[op.ID]
	if !ok {
		return ErrUnknownID
	}
	if err := r.verify(op.ID, old); err != nil {
		return err
	}

	p, err := r.a.Realloc(old.p, op.Size)
	if errors.Is(err, alloc.ErrNoSpace) {
		// The old block must survive a failed move untouched.
		if verr := r.verify(op.ID, old); verr != nil {
			return verr
		}
		return r.noSpace(err)
	}
	if err != nil {
		return err
	}

	delete(r.live, op.ID)
	keep := min(old.size, op.Size)
	if err := r.verify(op.ID, liveBlock{p: p, size: keep}); err != nil {
		return fmt.Errorf("moved prefix: %w", err)
	}
	if err := r.place(op.ID, p, op.Size); err != nil {
		return err
	}
	r.res.Reallocs++
	return nil
}

func (r *replayer) free(op Op) error {
	b, ok := r.live[op.ID]
	if !ok {
		return ErrUnknownID
	}
	if err := r.verify(op.ID, b); err != nil {
		return err
	}
	if err := r.a.Free(b.p); err != nil {
		return err
	}
	delete(r.live, op.ID)
	r.res.Frees++
	return nil
}

func (r *replayer) noSpace(err error) error {
	r.res.NoSpace++
	if r.opts.StopOnNoSpace {
		return err
	}
	return nil
}

// place checks a fresh block, fills it with the id pattern, and records it.
func (r *replayer) place(id int, p alloc.Ptr, size int) error {
	if p == heap.Nil {
		// Zero-byte requests hand back no block, so the id stays unbound.
		delete(r.live, id)
		return nil
	}
	if p%format.DoubleWordSize != 0 {
		return fmt.Errorf("%w: 0x%X", ErrMisaligned, p)
	}

	payload, err := r.a.Payload(p)
	if err != nil {
		return err
	}
	if len(payload) < size {
		return fmt.Errorf("%w: block 0x%X has %d bytes, asked for %d", ErrOverlap, p, len(payload), size)
	}
	if int(p)+size > r.a.Size() {
		return fmt.Errorf("%w: block 0x%X runs past the arena", ErrOverlap, p)
	}
	for other, b := range r.live {
		if b.p == heap.Nil {
			continue
		}
		if int(p) < int(b.p)+b.size && int(b.p) < int(p)+size {
			return fmt.Errorf("%w: 0x%X+%d and id %d at 0x%X+%d", ErrOverlap, p, size, other, b.p, b.size)
		}
	}

	for i := range size {
		payload[i] = patternByte(id, i)
	}
	r.live[id] = liveBlock{p: p, size: size}

	r.res.PeakBytes = max(r.res.PeakBytes, r.liveBytes())
	if n := r.a.Size(); n > 0 {
		r.res.PeakUtilization = float64(r.res.PeakBytes) / float64(n)
	}
	return nil
}

// verify checks that the first b.size payload bytes still hold the id pattern.
func (r *replayer) verify(id int, b liveBlock) error {
	if b.p == heap.Nil || b.size == 0 {
		return nil
	}
	payload, err := r.a.Payload(b.p)
	if err != nil {
		return err
	}
	for i := range b.size {
		if payload[i] != patternByte(id, i) {
			return fmt.Errorf("%w: block 0x%X byte %d", ErrPayloadDamaged, b.p, i)
		}
	}
	return nil
}

func (r *replayer) validate() error {
	if !r.a.Validate() {
		return ErrInvalidHeap
	}
	if !r.opts.Deep {
		return nil
	}
	if c, ok := r.a.(checker); ok {
		if err := c.Check(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidHeap, err)
		}
	}
	return nil
}

func (r *replayer) liveBytes() int {
	total := 0
	for _, b := range r.live {
		total += b.size
	}
	return total
}

// patternByte is the fill byte at offset i of the payload bound to id.
func patternByte(id, i int) byte {
	return byte(uint32(id)*2654435761>>24) + byte(i)
}
