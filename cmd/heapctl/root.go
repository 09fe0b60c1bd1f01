package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/cmd/heapctl/logger"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	logEnabled bool
	logDir     string

	closeLog = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "heapctl",
	Short: "Replay allocation scripts and inspect heap arena images",
	Long: `heapctl drives the boundary-tag allocator from allocation scripts and
inspects heap arena images: it dumps the block chain, checks every structural
invariant, and reports fragmentation statistics.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		fn, err := logger.Init(logger.Options{
			Enabled: logEnabled,
			LogDir:  logDir,
			Level:   level,
		})
		if err != nil {
			printError("failed to init logging: %v\n", err)
			return nil
		}
		closeLog = fn
		logger.Debug("command start", "cmd", cmd.Name(), "args", args)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&logEnabled, "log", false, "Write a JSON log file")
	rootCmd.PersistentFlags().
		StringVar(&logDir, "log-dir", "", "Directory for log files (default ~/.heapctl/logs)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
