package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/internal/mmfile"
)

func init() {
	rootCmd.AddCommand(newStatsCmd())
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <image>",
		Short: "Show block and fragmentation statistics",
		Long: `The stats command walks a heap image and reports block counts, allocated
and free bytes, the largest free block, utilization and fragmentation.

Example:
  heapctl stats arena.heap
  heapctl stats arena.heap --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(args)
		},
	}
	return cmd
}

func runStats(args []string) error {
	path := args[0]
	printVerbose("Mapping image: %s\n", path)

	img, err := mmfile.Open(path)
	if err != nil {
		return err
	}
	defer img.Close()

	s, err := heap.Summarize(heap.Segment(img.Bytes()))
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(s)
	}

	printInfo("%s\n\n", path)
	printInfo("Arena size:        %d bytes\n", s.ArenaSize)
	printInfo("Allocated blocks:  %d (%d bytes, %d payload)\n", s.AllocatedBlocks, s.AllocatedBytes, s.PayloadBytes)
	printInfo("Free blocks:       %d (%d bytes)\n", s.FreeBlocks, s.FreeBytes)
	printInfo("Largest free:      %d bytes\n", s.LargestFree)
	printInfo("Overhead:          %d bytes\n", s.Overhead())
	printInfo("Utilization:       %.1f%%\n", s.Utilization*100)
	printInfo("Fragmentation:     %.1f%%\n", s.Fragmentation*100)
	return nil
}
