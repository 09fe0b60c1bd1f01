package format

import "errors"

// ErrMisaligned indicates an offset or size that is not a multiple of the alignment unit.
var ErrMisaligned = errors.New("format: misaligned offset")
