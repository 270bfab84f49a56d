package paged

import "io"

// Options configures how a Cursor maps the logical page-based offsets
// used throughout this package onto byte offsets in the underlying
// stream. FirstPageOffset lets a caller prefix the stream with data of
// its own (a file header) before the first page of paged content begins.
type Options struct {
	PageLen         uint32
	FirstPageOffset uint32
}

// Cursor is the single read/seek point every decode operation goes
// through: flat decoding of page contents, and heap-relative decoding of
// the variable-length data those pages point into. Keeping both on one
// type (rather than splitting cursor and reader) matches how the format
// itself treats a "page" and its "heap" as one addressable byte space,
// just with two different units (entries vs. raw bytes) for offsets.
type Cursor struct {
	input         io.ReadSeeker
	currentOffset uint32
	opts          Options
}

// NewCursor wraps a seekable stream for decoding, using opts to resolve
// page- and heap-relative offsets into absolute stream offsets.
func NewCursor(input io.ReadSeeker, opts Options) *Cursor {
	return &Cursor{input: input, opts: opts}
}

// Options reports the cursor's configured page geometry.
func (c *Cursor) Options() Options {
	return c.opts
}

// Seek moves the cursor to an absolute byte offset from the start of the
// stream.
func (c *Cursor) Seek(offset uint32) error {
	if _, err := c.input.Seek(int64(offset), io.SeekStart); err != nil {
		return wrapf("seek: %w", err)
	}
	c.currentOffset = offset
	return nil
}

// Offset reports the cursor's current absolute byte offset.
func (c *Cursor) Offset() uint32 {
	return c.currentOffset
}

// Pad advances the cursor by n bytes without reading them, used to skip
// section padding between pages.
func (c *Cursor) Pad(n uint32) error {
	if n == 0 {
		return nil
	}
	return c.Seek(c.currentOffset + n)
}

// Read fills bytes entirely or returns a wrapped io error, advancing the
// cursor by len(bytes).
func (c *Cursor) Read(bytes []byte) error {
	if _, err := io.ReadFull(c.input, bytes); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return ErrUnexpectedEOF
		}
		return wrapf("read: %w", err)
	}
	c.currentOffset += uint32(len(bytes))
	return nil
}

// HeapByteOffset resolves an Entry's heap-relative Offset to an absolute
// stream offset, given the HeapSection it was written against. Exported
// so package reader's free functions (which need to seek to heap- and
// page-relative positions without going through a codec) can share this
// arithmetic instead of recomputing it.
func (c *Cursor) HeapByteOffset(heap HeapSection, offset Offset) uint32 {
	return c.opts.FirstPageOffset + heap.PageOffset*c.opts.PageLen + uint32(offset)
}

// PageByteOffset resolves a page index (counted from the file's first
// page) to an absolute stream offset.
func (c *Cursor) PageByteOffset(pageIndex uint32) uint32 {
	return c.opts.FirstPageOffset + pageIndex*c.opts.PageLen
}

// ReadFromHeap reads len(bytes) raw bytes from the heap at offset,
// restoring the cursor's prior position before returning.
func (c *Cursor) ReadFromHeap(heap HeapSection, offset Offset, bytes []byte) error {
	return c.withHeapOffset(heap, offset, func() error {
		return c.Read(bytes)
	})
}

// withHeapOffset seeks to offset within heap, runs fn, then restores the
// cursor's prior position regardless of fn's outcome - the save/seek/
// restore dance every heap-relative read goes through, centralized here
// so callers (ReadFromHeap, and decode.go's slice decoder) don't each
// re-derive it.
func (c *Cursor) withHeapOffset(heap HeapSection, offset Offset, fn func() error) error {
	saved := c.currentOffset
	if err := c.Seek(c.HeapByteOffset(heap, offset)); err != nil {
		return err
	}
	err := fn()
	if serr := c.Seek(saved); err == nil {
		err = serr
	}
	return err
}
