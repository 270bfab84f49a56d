package paged

import "io"

// Section describes where a run of fixed-size T records lives in the
// file: its first page and how many records it holds. Section carries no
// reference to T at runtime (Go generics don't need the phantom-type
// trick Rust's PhantomData does), but T's EncodedSize still drives every
// geometry calculation below, so Section is only useful paired with a
// Sized T.
type Section[T Sized] struct {
	PageOffset uint32
	EntryCount uint32
}

// NewSection validates that T's flat encoding fits within one page before
// returning a Section descriptor for it, matching the precondition every
// other geometry method here silently assumes.
func NewSection[T Sized](pageOffset, entryCount, pageLen uint32) (Section[T], error) {
	var zero T
	if zero.EncodedSize() > pageLen {
		return Section[T]{}, wrapf("%w: record size %d exceeds page length %d", ErrInvalidData, zero.EncodedSize(), pageLen)
	}
	return Section[T]{PageOffset: pageOffset, EntryCount: entryCount}, nil
}

// EncodedSize implements Sized: a Section's own on-page representation is
// always two uint32 fields, regardless of what T is.
func (Section[T]) EncodedSize() uint32 { return 8 }

// EncodeFlat implements Encoder.
func (s Section[T]) EncodeFlat(ctx any, w io.Writer) (uint32, error) {
	if _, err := encodeU32(w, s.PageOffset); err != nil {
		return 0, err
	}
	if _, err := encodeU32(w, s.EntryCount); err != nil {
		return 0, err
	}
	return s.EncodedSize(), nil
}

// EncodeOnHeap implements HeapEncoder by delegating to EncodeFlat: a
// Section descriptor never itself spills to a heap.
func (s Section[T]) EncodeOnHeap(ctx any, h *Heap, w io.Writer) (uint32, error) {
	return s.EncodeFlat(ctx, w)
}

// DecodeFlat implements FlatDecoder.
func (s *Section[T]) DecodeFlat(c *Cursor, ctx any) error {
	po, err := decodeU32(c)
	if err != nil {
		return err
	}
	ec, err := decodeU32(c)
	if err != nil {
		return err
	}
	s.PageOffset, s.EntryCount = po, ec
	return nil
}

// DecodeFromHeap implements HeapDecoder by delegating to DecodeFlat.
func (s *Section[T]) DecodeFromHeap(c *Cursor, ctx any, heap HeapSection) error {
	return s.DecodeFlat(c, ctx)
}

func entrySize[T Sized]() uint32 {
	var zero T
	return zero.EncodedSize()
}

// EntriesPerPage reports how many T records fit in one page of the given
// length.
func EntriesPerPage[T Sized](pageLen uint32) uint32 {
	return pageLen / entrySize[T]()
}

// PageCount reports how many pages this section spans.
func (s Section[T]) PageCount(pageLen uint32) uint32 {
	return ceilDiv(s.EntryCount, EntriesPerPage[T](pageLen))
}

// PageSize reports how many entries live on the p'th page of this
// section (the last page may hold fewer than a full page's worth).
func (s Section[T]) PageSize(pageLen, p uint32) uint32 {
	perPage := EntriesPerPage[T](pageLen)
	past := perPage * p
	rest := s.EntryCount - past
	if perPage < rest {
		return perPage
	}
	return rest
}

// PageOfEntry maps a logical entry index within this section to the page
// it lives on and its index within that page.
func (s Section[T]) PageOfEntry(pageLen, i uint32) (page, local uint32) {
	perPage := EntriesPerPage[T](pageLen)
	return i / perPage, i % perPage
}

// OffsetOfPage reports the absolute page index (counted from the file's
// first page) of the p'th page of this section.
func (s Section[T]) OffsetOfPage(p uint32) uint32 {
	return s.PageOffset + p
}
