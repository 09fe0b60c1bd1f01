package main

import (
	"encoding/hex"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/mmfile"
)

var (
	dumpFreeOnly bool
	dumpHex      int
)

func init() {
	cmd := newDumpCmd()
	cmd.Flags().BoolVar(&dumpFreeOnly, "free-only", false, "Only list free blocks")
	cmd.Flags().IntVar(&dumpHex, "hex", 0, "Show the first N payload bytes of allocated blocks")
	rootCmd.AddCommand(cmd)
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <image>",
		Short: "Print the block chain of a heap image",
		Long: `The dump command walks the block chain of a heap image from the first
block to the epilogue and prints each block's offset, size and state.

Example:
  heapctl dump arena.heap
  heapctl dump arena.heap --free-only
  heapctl dump arena.heap --hex 16 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args)
		},
	}
	return cmd
}

// DumpBlock is one block in dump output.
type DumpBlock struct {
	Offset    uint32 `json:"offset"`
	Size      uint32 `json:"size"`
	Allocated bool   `json:"allocated"`
	Payload   string `json:"payload,omitempty"`
}

func runDump(args []string) error {
	path := args[0]
	printVerbose("Mapping image: %s\n", path)

	img, err := mmfile.Open(path)
	if err != nil {
		return err
	}
	defer img.Close()

	seg := heap.Segment(img.Bytes())
	var blocks []DumpBlock
	it := seg.Blocks()
	var walkErr error
	for {
		b, err := it.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			walkErr = err
			break
		}
		if dumpFreeOnly && b.Allocated {
			continue
		}
		blocks = append(blocks, dumpBlock(seg, b))
	}

	if jsonOut {
		out := map[string]any{
			"file":   path,
			"size":   len(seg),
			"blocks": blocks,
		}
		if walkErr != nil {
			out["error"] = walkErr.Error()
		}
		if err := printJSON(out); err != nil {
			return err
		}
		return walkErr
	}

	printInfo("%s: %d byte arena\n\n", path, len(seg))
	printInfo("%-10s  %10s  %s\n", "OFFSET", "SIZE", "STATE")
	for _, b := range blocks {
		state := "free"
		if b.Allocated {
			state = "alloc"
		}
		printInfo("0x%08X  %10d  %s", b.Offset, b.Size, state)
		if b.Payload != "" {
			printInfo("  %s", b.Payload)
		}
		printInfo("\n")
	}
	if walkErr != nil {
		printInfo("\nchain broken at 0x%X: %v\n", it.Offset(), walkErr)
	}
	return walkErr
}

func dumpBlock(seg heap.Segment, b heap.Block) DumpBlock {
	d := DumpBlock{
		Offset:    uint32(b.Ptr),
		Size:      b.Size,
		Allocated: b.Allocated,
	}
	if dumpHex > 0 && b.Allocated {
		n := min(dumpHex, b.PayloadSize())
		if p, ok := buf.Slice(seg, int(b.Ptr), n); ok {
			d.Payload = hex.EncodeToString(p)
		}
	}
	return d
}
