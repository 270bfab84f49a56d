package paged

import (
	"io"
	"iter"
)

// Writer lays out a file page by page: a sequence of fixed-size-record
// sections and heap side-channels, each padded up to a page boundary so
// every section and heap starts on one. Writer is single-threaded: it is
// not safe for concurrent use, and this package makes no attempt to
// arbitrate concurrent writers (see Non-goals).
type Writer struct {
	output   io.WriteSeeker
	pageLen  uint32
	pageCount uint32
}

// NewWriter returns a Writer that appends pages of pageLen bytes to output,
// starting at its current position.
func NewWriter(output io.WriteSeeker, pageLen uint32) *Writer {
	return &Writer{output: output, pageLen: pageLen}
}

// PageCount reports how many pages have been written so far.
func (w *Writer) PageCount() uint32 {
	return w.pageCount
}

// End returns the underlying stream, for callers that need to do their
// own bookkeeping (writing a file header referencing the sections just
// produced, for instance) once every section has been written.
func (w *Writer) End() io.WriteSeeker {
	return w.output
}

func (w *Writer) pad(n uint32) error {
	if n == 0 {
		return nil
	}
	_, err := w.output.Seek(int64(n), io.SeekCurrent)
	if err != nil {
		return wrapf("pad: %w", err)
	}
	return nil
}

// AddHeap appends heap's bytes (padded to a page boundary) and returns the
// HeapSection descriptor recording where it landed.
func (w *Writer) AddHeap(heap *Heap) (HeapSection, error) {
	pageOffset := w.pageCount
	pageCount := heap.PageCount(w.pageLen)
	if _, err := w.output.Write(heap.Bytes()); err != nil {
		return HeapSection{}, wrapf("write heap: %w", err)
	}
	if err := w.pad(heap.Padding(w.pageLen)); err != nil {
		return HeapSection{}, err
	}
	w.pageCount += pageCount
	return HeapSection{PageOffset: pageOffset, PageCount: pageCount}, nil
}

// BeginSection starts writing a new section of T records, spilling any
// variable-length data they carry onto heap as they're pushed.
func (w *Writer) BeginSection(heap *Heap) *SectionWriter {
	return &SectionWriter{
		w:          w,
		heap:       heap,
		pageOffset: w.pageCount,
		emptyPage:  true,
	}
}

// SectionWriter accumulates HeapEncoder values of one record type into a
// section, tracking the page-fill bookkeeping spec'd for sections: each
// page holds as many whole records as fit, the remainder is padded so
// every record starts cleanly within a single page (records never
// straddle a page boundary).
type SectionWriter struct {
	w          *Writer
	heap       *Heap
	pageOffset uint32
	byteLen    uint32
	entryCount uint32
	emptyPage  bool
}

// PageCount reports how many pages this section has used so far.
func (sw *SectionWriter) PageCount() uint32 {
	return ceilDiv(sw.byteLen, sw.w.pageLen)
}

func (sw *SectionWriter) padding() uint32 {
	shift := sw.byteLen % sw.w.pageLen
	if shift == 0 {
		return 0
	}
	return sw.w.pageLen - shift
}

// Push writes one record's on-page representation (spilling to the
// section's heap as needed) and pads to the next page boundary if the
// record that was just written wouldn't leave room for another one of
// the same size.
func Push[T HeapEncoder](sw *SectionWriter, ctx any, value T) error {
	n, err := value.EncodeOnHeap(ctx, sw.heap, sw.w.output)
	if err != nil {
		return wrapf("write record: %w", err)
	}

	if sw.emptyPage {
		sw.w.pageCount++
		sw.emptyPage = false
	}

	sw.byteLen += n
	sw.entryCount++

	padding := sw.padding()
	if padding < value.EncodedSize() {
		if err := sw.w.pad(padding); err != nil {
			return err
		}
		sw.byteLen += padding
		sw.emptyPage = true
	}

	return nil
}

// End finalizes the section, flushing any trailing partial page up to the
// page boundary first: a section's byte length (and therefore the stream
// position right after it) must always be a multiple of the page length,
// so whatever writes next (a heap, another section) lands page-aligned.
// Returns the Section descriptor a file header or parent record should
// retain to read it back.
func End[T Sized](sw *SectionWriter) (Section[T], error) {
	if !sw.emptyPage {
		padding := sw.padding()
		if err := sw.w.pad(padding); err != nil {
			return Section[T]{}, err
		}
		sw.byteLen += padding
		sw.emptyPage = true
	}
	return Section[T]{PageOffset: sw.pageOffset, EntryCount: sw.entryCount}, nil
}

// WriteSectionFromSlice writes every element of items as one section in a
// single call, a convenience for the common case of encoding an
// in-memory slice wholesale rather than pushing records one at a time.
func WriteSectionFromSlice[T HeapEncoder](w *Writer, heap *Heap, ctx any, items []T) (Section[T], error) {
	sw := w.BeginSection(heap)
	for _, item := range items {
		if err := Push(sw, ctx, item); err != nil {
			return Section[T]{}, err
		}
	}
	return End[T](sw)
}

// WriteSectionFromSeq is the iter.Seq counterpart of WriteSectionFromSlice,
// for callers producing records lazily (e.g. streaming them from another
// source) rather than holding them all in memory at once.
func WriteSectionFromSeq[T HeapEncoder](w *Writer, heap *Heap, ctx any, seq iter.Seq[T]) (Section[T], error) {
	sw := w.BeginSection(heap)
	var pushErr error
	seq(func(item T) bool {
		if err := Push(sw, ctx, item); err != nil {
			pushErr = err
			return false
		}
		return true
	})
	if pushErr != nil {
		return Section[T]{}, pushErr
	}
	return End[T](sw)
}
