package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/cmd/heapctl/logger"
	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/dirty"
	"github.com/joshuapare/heapkit/internal/script"
)

const defaultArenaSize = 1 << 20

var (
	replaySize     int64
	replayHeapFile string
	replayEncoding string
	replayDeep     bool
	replayStop     bool
	replayReuse    bool
)

func init() {
	cmd := newReplayCmd()
	cmd.Flags().Int64Var(&replaySize, "size", defaultArenaSize, "Arena size in bytes")
	cmd.Flags().StringVar(&replayHeapFile, "heap-file", "", "Back the arena with this file and flush it after each script")
	cmd.Flags().StringVar(&replayEncoding, "encoding", "utf-8", "Script encoding (utf-8, windows-1252)")
	cmd.Flags().BoolVar(&replayDeep, "deep", false, "Walk the whole block chain after every operation")
	cmd.Flags().BoolVar(&replayStop, "stop-on-nospace", false, "Fail at the first allocation that does not fit")
	cmd.Flags().BoolVar(&replayReuse, "reuse", false, "Replay on top of the existing --heap-file image instead of initializing it")
	rootCmd.AddCommand(cmd)
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <script>...",
		Short: "Replay allocation scripts against a fresh arena",
		Long: `The replay command runs each allocation script against a freshly
initialized arena. Every payload is filled with a pattern and checked before
it is freed or moved, and the heap is validated after every operation.

With --reuse, the arena in --heap-file is validated and adopted as it is,
and the scripts run on top of the blocks it already holds. Blocks left
live by one script stay allocated for the next.

Script format, one operation per line:
  a <id> <size>   allocate
  r <id> <size>   reallocate
  f <id>          free

Example:
  heapctl replay trace.script
  heapctl replay --size 65536 --deep a.script b.script
  heapctl replay --heap-file arena.heap trace.script
  heapctl replay --heap-file arena.heap --reuse more.script`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), args)
		},
	}
	return cmd
}

// ReplayReport is the per-script output of the replay command.
type ReplayReport struct {
	Script string        `json:"script"`
	Result script.Result `json:"result"`
	Stats  alloc.Stats   `json:"stats"`
	Used   int           `json:"used"`
}

func runReplay(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	enc, err := script.ParseEncoding(replayEncoding)
	if err != nil {
		return err
	}

	if replayReuse && replayHeapFile == "" {
		return fmt.Errorf("--reuse needs --heap-file")
	}

	arena, dt, closeArena, err := openArena(replaySize, replayHeapFile, replayReuse)
	if err != nil {
		return err
	}
	defer closeArena()

	opts := &alloc.Options{
		Logger:       logger.L,
		DeepValidate: replayDeep,
	}
	if dt != nil {
		opts.Dirty = dt
	}
	a := alloc.NewImplicit(opts)

	reports := make([]ReplayReport, 0, len(args))
	for _, path := range args {
		printVerbose("Replaying %s (%d byte arena)\n", path, len(arena))

		s, err := script.ParseFile(path, enc)
		if err != nil {
			return err
		}
		if err := attachOrInit(a, arena); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		res, err := script.Replay(ctx, a, s, script.Options{
			Deep:          replayDeep,
			StopOnNoSpace: replayStop,
			Logger:        logger.L,
		})
		if err != nil {
			logger.Error("replay failed", "script", path, "error", err)
			return fmt.Errorf("%s: %w", path, err)
		}
		if dt != nil {
			if err := dt.Flush(ctx, dirty.FlushAuto); err != nil {
				return fmt.Errorf("flush %s: %w", replayHeapFile, err)
			}
		}

		logger.Info("replay finished", "script", path, "ops", res.Ops, "nospace", res.NoSpace)
		reports = append(reports, ReplayReport{
			Script: path,
			Result: *res,
			Stats:  a.Stats(),
			Used:   a.Used(),
		})
	}

	if jsonOut {
		return printJSON(reports)
	}
	for _, r := range reports {
		printReplayReport(r)
	}
	return nil
}

func attachOrInit(a *alloc.ImplicitAllocator, arena []byte) error {
	if replayReuse {
		return a.Attach(arena)
	}
	return a.Init(arena)
}

// openArena returns either an in-memory arena or a mapped file with a dirty
// tracker for it. With reuse the file must already hold an arena.
func openArena(size int64, path string, reuse bool) ([]byte, *dirty.Tracker, func(), error) {
	if path == "" {
		if size <= 0 {
			return nil, nil, nil, fmt.Errorf("invalid arena size %d", size)
		}
		return make([]byte, size), nil, func() {}, nil
	}

	open := func() (*heap.Heap, error) { return heap.Create(path, size) }
	if reuse {
		open = func() (*heap.Heap, error) { return heap.Open(path) }
	}
	h, err := open()
	if err != nil {
		return nil, nil, nil, err
	}
	printVerbose("Heap file %s: %d bytes, mapped=%v\n", path, h.Size(), h.Mapped())
	closeFn := func() {
		if err := h.Close(); err != nil {
			logger.Warn("close heap file", "path", path, "error", err)
		}
	}
	return h.Bytes(), dirty.NewTracker(h), closeFn, nil
}

func printReplayReport(r ReplayReport) {
	res := r.Result
	printInfo("%s\n", r.Script)
	printInfo("  ops:          %d (%d alloc, %d realloc, %d free)\n", res.Ops, res.Allocs, res.Reallocs, res.Frees)
	printInfo("  no space:     %d\n", res.NoSpace)
	printInfo("  peak bytes:   %d (%.1f%% of arena)\n", res.PeakBytes, res.PeakUtilization*100)
	printInfo("  live at end:  %d blocks, %d bytes\n", res.LiveBlocks, res.LiveBytes)
	printInfo("  splits:       %d\n", r.Stats.SplitCount)
	printInfo("  coalesces:    %d next, %d prev, %d both\n",
		r.Stats.CoalesceNext, r.Stats.CoalescePrev, r.Stats.CoalesceBoth)
	printInfo("  blocks walked: %d\n", r.Stats.BlocksScanned)
	printVerbose("  used counter: %d\n", r.Used)
}
