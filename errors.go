package paged

import (
	"errors"
	"fmt"
	"io"
)

// ErrOutOfMemory is returned when the bounded page cache cannot satisfy a
// request because every slot it could reclaim is still pinned.
var ErrOutOfMemory = errors.New("paged: out of memory")

// ErrInvalidData is returned when decoded bytes don't describe a value the
// caller can use: invalid UTF-8 in a heap-backed string, a section whose
// record size exceeds the page length it was told to use, and similar.
var ErrInvalidData = errors.New("paged: invalid data")

// ErrUnexpectedEOF is returned when a read stops short of the bytes a codec
// expected to find, wrapping io.ErrUnexpectedEOF.
var ErrUnexpectedEOF = fmt.Errorf("paged: unexpected end of file: %w", io.ErrUnexpectedEOF)

func wrapf(format string, args ...any) error {
	return fmt.Errorf("paged: "+format, args...)
}
