package paged

import "io"

// Offset is a byte position relative to the start of a Heap, recorded by
// Heap.Insert and later resolved against a HeapSection's page_offset to
// find the absolute stream position of the value it points to.
type Offset uint32

// EncodedSize implements Sized.
func (Offset) EncodedSize() uint32 { return 4 }

// EncodeFlat implements Encoder.
func (o Offset) EncodeFlat(ctx any, w io.Writer) (uint32, error) {
	return encodeU32(w, uint32(o))
}

// DecodeFlat implements FlatDecoder.
func (o *Offset) DecodeFlat(c *Cursor, ctx any) error {
	v, err := decodeU32(c)
	if err != nil {
		return err
	}
	*o = Offset(v)
	return nil
}

// Sized pairs an Offset with the byte length of the value it points to,
// the fixed-size on-page stub for any heap-spilled value.
func (o Offset) Sized(length uint32) Entry {
	return Entry{Offset: o, Len: length}
}

// Entry is the on-page stub left behind by a heap-spilled value: where it
// starts in the heap, and how many bytes (or, for slices, how many
// elements) it occupies.
type Entry struct {
	Offset Offset
	Len    uint32
}

// EncodedSize implements Sized. Always 8: two uint32 fields.
func (Entry) EncodedSize() uint32 { return 8 }

// EncodeFlat implements Encoder.
func (e Entry) EncodeFlat(ctx any, w io.Writer) (uint32, error) {
	if _, err := e.Offset.EncodeFlat(ctx, w); err != nil {
		return 0, err
	}
	if _, err := encodeU32(w, e.Len); err != nil {
		return 0, err
	}
	return e.EncodedSize(), nil
}

// DecodeFlat implements FlatDecoder.
func (e *Entry) DecodeFlat(c *Cursor, ctx any) error {
	if err := e.Offset.DecodeFlat(c, ctx); err != nil {
		return err
	}
	n, err := decodeU32(c)
	if err != nil {
		return err
	}
	e.Len = n
	return nil
}

// Heap is an append-only byte buffer a Writer fills while laying out a
// section whose records contain variable-length data: strings, slices,
// anything whose size isn't known until it's written. Insert records
// where a value's flat encoding starts; the returned Offset, paired with
// the value's length via Offset.Sized, becomes the fixed-size Entry that
// goes on the page in the value's place.
type Heap struct {
	data []byte
}

// NewHeap returns an empty heap ready to accept inserts.
func NewHeap() *Heap {
	return &Heap{}
}

// Len reports the heap's current size in bytes.
func (h *Heap) Len() uint32 {
	return uint32(len(h.data))
}

// Bytes returns the heap's accumulated contents. The returned slice
// aliases the heap's internal buffer and must not be retained across
// further inserts.
func (h *Heap) Bytes() []byte {
	return h.data
}

// heapWriter adapts Heap's backing slice to io.Writer for Insert.
type heapWriter struct {
	h *Heap
}

func (w heapWriter) Write(p []byte) (int, error) {
	w.h.data = append(w.h.data, p...)
	return len(p), nil
}

// Insert flat-encodes value onto the end of the heap and returns the
// Offset it was written at.
func (h *Heap) Insert(ctx any, value Encoder) (Offset, error) {
	offset := Offset(h.Len())
	if _, err := value.EncodeFlat(ctx, heapWriter{h}); err != nil {
		return 0, err
	}
	return offset, nil
}

// PageCount reports how many pages of length pageLen this heap occupies
// once padded up to a page boundary.
func (h *Heap) PageCount(pageLen uint32) uint32 {
	return ceilDiv(h.Len(), pageLen)
}

// Padding reports how many zero bytes must follow this heap's contents so
// the next section starts on a page boundary.
func (h *Heap) Padding(pageLen uint32) uint32 {
	shift := h.Len() % pageLen
	if shift == 0 {
		return 0
	}
	return pageLen - shift
}

// HeapSection records where a Heap ended up in the file once a Writer
// finalized it: its first page and how many pages it spans. A page's
// on-page entries resolve their heap Offsets against a HeapSection to
// find the absolute stream position of their variable-length data.
type HeapSection struct {
	PageOffset uint32
	PageCount  uint32
}

// EncodedSize implements Sized.
func (HeapSection) EncodedSize() uint32 { return 8 }

// EncodeFlat implements Encoder.
func (s HeapSection) EncodeFlat(ctx any, w io.Writer) (uint32, error) {
	if _, err := encodeU32(w, s.PageOffset); err != nil {
		return 0, err
	}
	if _, err := encodeU32(w, s.PageCount); err != nil {
		return 0, err
	}
	return s.EncodedSize(), nil
}

// EncodeOnHeap implements HeapEncoder by delegating to EncodeFlat:
// HeapSection never itself spills data to a heap.
func (s HeapSection) EncodeOnHeap(ctx any, h *Heap, w io.Writer) (uint32, error) {
	return s.EncodeFlat(ctx, w)
}

// DecodeFlat implements FlatDecoder.
func (s *HeapSection) DecodeFlat(c *Cursor, ctx any) error {
	po, err := decodeU32(c)
	if err != nil {
		return err
	}
	pc, err := decodeU32(c)
	if err != nil {
		return err
	}
	s.PageOffset, s.PageCount = po, pc
	return nil
}

// DecodeFromHeap implements HeapDecoder by delegating to DecodeFlat.
func (s *HeapSection) DecodeFromHeap(c *Cursor, ctx any, heap HeapSection) error {
	return s.DecodeFlat(c, ctx)
}

func ceilDiv(a, b uint32) uint32 {
	return (a + b - 1) / b
}
