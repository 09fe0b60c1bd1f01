package script

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	input := `# two blocks, one moved
a 0 100
a 1 20   # trailing comment

r 0 300
f 1
f 0
`
	s, err := Parse(strings.NewReader(input), UTF8)
	require.NoError(t, err)
	require.Equal(t, 2, s.IDs)
	require.Equal(t, []Op{
		{Kind: OpAlloc, ID: 0, Size: 100, Line: 2},
		{Kind: OpAlloc, ID: 1, Size: 20, Line: 3},
		{Kind: OpRealloc, ID: 0, Size: 300, Line: 5},
		{Kind: OpFree, ID: 1, Line: 6},
		{Kind: OpFree, ID: 0, Line: 7},
	}, s.Ops)
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown op":     "x 1 2",
		"missing size":   "a 1",
		"extra operand":  "f 1 2",
		"negative id":    "a -1 8",
		"negative size":  "a 1 -8",
		"non-numeric id": "f one",
	}
	for name, line := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader("a 0 8\n"+line+"\n"), UTF8)
			require.ErrorIs(t, err, ErrSyntax)
			require.Contains(t, err.Error(), "line 2")
		})
	}
}

func TestParse_Windows1252(t *testing.T) {
	// "# caf\xe9" is "# café" in Windows-1252 and invalid UTF-8.
	input := "# caf\xe9 workload\na 0 16\nf 0\n"

	s, err := Parse(strings.NewReader(input), Windows1252)
	require.NoError(t, err)
	require.Len(t, s.Ops, 2)
}

func TestParseEncoding(t *testing.T) {
	for name, want := range map[string]Encoding{
		"":             UTF8,
		"utf-8":        UTF8,
		"UTF8":         UTF8,
		"windows-1252": Windows1252,
		"cp1252":       Windows1252,
		"latin1":       Windows1252,
	} {
		got, err := ParseEncoding(name)
		require.NoError(t, err, name)
		require.Equal(t, want, got, name)
	}

	_, err := ParseEncoding("ebcdic")
	require.ErrorIs(t, err, ErrUnknownEncoding)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.script")
	require.NoError(t, os.WriteFile(path, []byte("a 3 8\nf 3\n"), 0o600))

	s, err := ParseFile(path, UTF8)
	require.NoError(t, err)
	require.Equal(t, path, s.Name)
	require.Equal(t, 4, s.IDs)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing"), UTF8)
	require.Error(t, err)
}
