package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/alloc"
)

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	// Save original stdout
	origStdout := os.Stdout

	// Create a pipe to capture output
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}

	// Redirect stdout to pipe
	os.Stdout = w

	// Run function
	fnErr := fn()

	// Close write end and restore stdout
	w.Close()
	os.Stdout = origStdout

	// Read captured output
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatalf("failed to read output: %v", err)
	}

	return buf.String(), fnErr
}

// resetFlags restores every global flag to its default.
func resetFlags(t *testing.T) {
	t.Helper()
	verbose, quiet, jsonOut = false, false, false
	replaySize, replayHeapFile, replayEncoding = defaultArenaSize, "", "utf-8"
	replayDeep, replayStop, replayReuse = false, false, false
	dumpFreeOnly, dumpHex = false, 0
}

// writeImage builds a 4 KiB heap image with the allocator and saves it.
// build may allocate and free blocks before the image is written.
func writeImage(t *testing.T, build func(a *alloc.ImplicitAllocator)) string {
	t.Helper()
	arena := make([]byte, 4096)
	a := alloc.NewImplicit(nil)
	require.NoError(t, a.Init(arena))
	if build != nil {
		build(a)
	}
	path := filepath.Join(t.TempDir(), "arena.heap")
	require.NoError(t, os.WriteFile(path, arena, 0o600))
	return path
}

// writeScript saves an allocation script and returns its path.
func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.script")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))
	return path
}

// assertJSON checks that output is valid JSON and decodes it into v.
func assertJSON(t *testing.T, output string, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(output), v), "invalid JSON output:\n%s", output)
}
