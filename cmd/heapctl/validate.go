package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/verify"
	"github.com/joshuapare/heapkit/internal/mmfile"
)

func init() {
	rootCmd.AddCommand(newValidateCmd())
}

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <image>",
		Short: "Check every structural invariant of a heap image",
		Long: `The validate command checks a heap image for the prologue and epilogue
sentinels, matching header and footer tags, minimum block size, alignment,
adjacent free blocks, and that the block sizes add up to the arena size.

Example:
  heapctl validate arena.heap
  heapctl validate arena.heap --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args)
		},
	}
	return cmd
}

func runValidate(args []string) error {
	path := args[0]
	printVerbose("Validating image: %s\n", path)

	img, err := mmfile.Open(path)
	if err != nil {
		return err
	}
	defer img.Close()

	err = verify.AllInvariants(img.Bytes())

	result := map[string]any{
		"file":  path,
		"size":  len(img.Bytes()),
		"valid": err == nil,
	}
	var verr *verify.ValidationError
	if errors.As(err, &verr) {
		result["kind"] = string(verr.Kind)
		result["offset"] = verr.Offset
		result["message"] = verr.Message
	} else if err != nil {
		result["error"] = err.Error()
	}

	if jsonOut {
		if perr := printJSON(result); perr != nil {
			return perr
		}
		return err
	}

	printInfo("\nValidating %s...\n\n", path)
	if err != nil {
		printInfo("  ✗ %v\n", err)
		printInfo("\nResult: ✗ INVALID\n")
		return err
	}

	printInfo("  ✓ Sentinels valid\n")
	printInfo("  ✓ Block tags valid\n")
	printInfo("  ✓ No adjacent free blocks\n")
	printInfo("  ✓ Chain ends at epilogue\n")
	printInfo("\nResult: ✓ VALID\n")
	return nil
}
