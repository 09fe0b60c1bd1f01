// Package script parses and replays allocation scripts against an allocator.
//
// A script has one operation per line:
//
//	a <id> <size>   allocate size bytes and bind the block to id
//	r <id> <size>   reallocate the block bound to id
//	f <id>          free the block bound to id
//
// Blank lines and lines starting with # are ignored.
package script

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Kind identifies a script operation.
type Kind byte

const (
	OpAlloc   Kind = 'a'
	OpRealloc Kind = 'r'
	OpFree    Kind = 'f'
)

func (k Kind) String() string {
	switch k {
	case OpAlloc:
		return "alloc"
	case OpRealloc:
		return "realloc"
	case OpFree:
		return "free"
	default:
		return fmt.Sprintf("Kind(%d)", byte(k))
	}
}

// Op is a single script operation.
type Op struct {
	Kind Kind
	ID   int
	Size int // unused for OpFree
	Line int // 1-based source line
}

// Script is a parsed allocation script.
type Script struct {
	Name string
	Ops  []Op
	IDs  int // highest id + 1
}

// Encoding selects how script bytes are decoded.
type Encoding int

const (
	// UTF8 reads the script as-is.
	UTF8 Encoding = iota

	// Windows1252 decodes the script from Windows-1252 (Latin-1) first.
	// Scripts exported by Windows tools often carry Latin-1 comments.
	Windows1252
)

func (e Encoding) String() string {
	if e == Windows1252 {
		return "windows-1252"
	}
	return "utf-8"
}

// ParseEncoding maps a user-facing encoding name to an Encoding.
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf8", "utf-8":
		return UTF8, nil
	case "windows-1252", "windows1252", "cp1252", "latin1", "latin-1":
		return Windows1252, nil
	default:
		return UTF8, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
}

// Parse reads a script from r.
func Parse(r io.Reader, enc Encoding) (*Script, error) {
	if enc == Windows1252 {
		r = transform.NewReader(r, charmap.Windows1252.NewDecoder())
	}

	s := &Script{Ops: make([]Op, 0, InitialOpCapacity)}

	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, ScannerInitialBufferSize)
	scanner.Buffer(buf, ScannerMaxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, CommentPrefix) {
			continue
		}

		op, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("script: line %d: %w", lineNo, err)
		}
		op.Line = lineNo
		s.Ops = append(s.Ops, op)
		s.IDs = max(s.IDs, op.ID+1)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("script: read: %w", err)
	}
	return s, nil
}

// ParseFile reads the script at path.
func ParseFile(path string, enc Encoding) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := Parse(f, enc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Name = path
	return s, nil
}

func parseLine(line string) (Op, error) {
	// Trailing comments are allowed after the operands.
	if i := strings.Index(line, CommentPrefix); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)

	var op Op
	var want int
	switch fields[0] {
	case OpAllocToken:
		op.Kind, want = OpAlloc, 3
	case OpReallocToken:
		op.Kind, want = OpRealloc, 3
	case OpFreeToken:
		op.Kind, want = OpFree, 2
	default:
		return op, fmt.Errorf("%w: unknown operation %q", ErrSyntax, fields[0])
	}
	if len(fields) != want {
		return op, fmt.Errorf("%w: %s takes %d operands, got %d", ErrSyntax, op.Kind, want-1, len(fields)-1)
	}

	id, err := parseNonNegative(fields[1], "id")
	if err != nil {
		return op, err
	}
	op.ID = id

	if want == 3 {
		size, err := parseNonNegative(fields[2], "size")
		if err != nil {
			return op, err
		}
		op.Size = size
	}
	return op, nil
}

func parseNonNegative(field, what string) (int, error) {
	v, err := strconv.Atoi(field)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: bad %s %q", ErrSyntax, what, field)
	}
	return v, nil
}
