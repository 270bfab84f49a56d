package reader

import (
	"io"
	"iter"
	"sync"

	"github.com/chirst/paged"
)

// Reader serves sections and heaps back out of an underlying seekable
// stream. Every method that touches the stream (a cache miss, or a
// direct heap decode) holds an internal mutex for the duration of one
// page's worth of I/O; the page cache is what lets most calls avoid
// taking that lock at all.
type Reader struct {
	mu     sync.Mutex
	cursor *paged.Cursor
	opts   paged.Options
}

// New wraps a seekable stream for reading, using opts to resolve
// page- and heap-relative offsets.
func New(input io.ReadSeeker, opts paged.Options) *Reader {
	return &Reader{cursor: paged.NewCursor(input, opts), opts: opts}
}

// GetPage loads (or fetches from cache) the page at pageIndex within
// section, decoding each of its on-page records against heap as needed.
// Go methods can't introduce a type parameter beyond their receiver's
// own, so this and the functions below are free functions over *Reader
// rather than methods, the same shape slices.Sort and friends use over a
// concrete receiver-less slice.
func GetPage[T any, PT interface {
	*T
	paged.HeapDecoder
}](r *Reader, section paged.Section[T], cache *Cache[T], ctx any, heap paged.HeapSection, pageIndex uint32) (*Ref[T, *Page[T]], error) {
	return cache.GetOrInsert(section.OffsetOfPage(pageIndex), func(page *Page[T]) error {
		r.mu.Lock()
		defer r.mu.Unlock()

		offset := r.cursor.PageByteOffset(section.OffsetOfPage(pageIndex))
		entryCount := section.PageSize(r.opts.PageLen, pageIndex)

		if err := r.cursor.Seek(offset); err != nil {
			return err
		}
		for i := uint32(0); i < entryCount; i++ {
			v, err := paged.DecodeFromHeap[T, PT](r.cursor, ctx, heap)
			if err != nil {
				return err
			}
			page.Push(v)
		}
		return nil
	})
}

// Get fetches the single record at entryIndex within section, pinning
// only the page it lives on (not the whole section) while the returned
// Ref is held.
func Get[T any, PT interface {
	*T
	paged.HeapDecoder
}](r *Reader, section paged.Section[T], cache *Cache[T], ctx any, heap paged.HeapSection, entryIndex uint32) (*Ref[T, *T], error) {
	pageIndex, local := section.PageOfEntry(r.opts.PageLen, entryIndex)
	page, err := GetPage[T, PT](r, section, cache, ctx, heap, pageIndex)
	if err != nil {
		return nil, err
	}
	ref, ok := EntryView(page, local)
	page.Release()
	if !ok {
		return nil, paged.ErrInvalidData
	}
	return ref, nil
}

// Pages iterates every page of section in order. Each page's Ref is
// released automatically once the loop body moves on or stops early.
func Pages[T any, PT interface {
	*T
	paged.HeapDecoder
}](r *Reader, section paged.Section[T], cache *Cache[T], ctx any, heap paged.HeapSection) iter.Seq2[*Ref[T, *Page[T]], error] {
	return func(yield func(*Ref[T, *Page[T]], error) bool) {
		pageCount := section.PageCount(r.opts.PageLen)
		for p := uint32(0); p < pageCount; p++ {
			page, err := GetPage[T, PT](r, section, cache, ctx, heap, p)
			if err != nil {
				yield(nil, err)
				return
			}
			cont := yield(page, nil)
			page.Release()
			if !cont {
				return
			}
		}
	}
}

// Iter ranges over every record of section in order, pinning only one
// page at a time.
func Iter[T any, PT interface {
	*T
	paged.HeapDecoder
}](r *Reader, section paged.Section[T], cache *Cache[T], ctx any, heap paged.HeapSection) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		for page, err := range Pages[T, PT](r, section, cache, ctx, heap) {
			if err != nil {
				yield(nil, err)
				return
			}
			for _, entry := range page.View().Iter() {
				if !yield(entry, nil) {
					return
				}
			}
		}
	}
}

// BinarySearchByKey finds the record in section whose key (extracted by
// cmp, comparing an entry against key the way a three-way Compare does)
// matches key, narrowing the search one page at a time. It returns
// (nil, nil) if no record matches.
func BinarySearchByKey[T any, PT interface {
	*T
	paged.HeapDecoder
}, K any](r *Reader, section paged.Section[T], cache *Cache[T], ctx any, heap paged.HeapSection, key K, cmp func(*T, K) int) (*Ref[T, *T], error) {
	pageLen := r.opts.PageLen
	min := uint32(0)
	max := section.PageCount(pageLen)
	if max == 0 {
		return nil, nil
	}
	pageIndex := max / 2

	for pageIndex < max {
		page, err := GetPage[T, PT](r, section, cache, ctx, heap, pageIndex)
		if err != nil {
			return nil, err
		}
		i, bracket := SearchPageByKey(page.View(), key, cmp)
		switch bracket {
		case BracketMatch:
			ref, ok := EntryView(page, i)
			page.Release()
			if !ok {
				return nil, paged.ErrInvalidData
			}
			return ref, nil
		case BracketGreater:
			page.Release()
			max = pageIndex
		case BracketLess:
			page.Release()
			min = pageIndex + 1
		case BracketNotPresent:
			page.Release()
			return nil, nil
		}
		pageIndex = (min + max) / 2
	}

	return nil, nil
}

// DecodeFromHeap decodes arbitrary heap-referenced data, for callers that
// hold a paged.Offset/paged.HeapSection pair outside of any section (a
// file header field, for instance) rather than through a page.
func DecodeFromHeap[T any, PT interface {
	*T
	paged.FlatDecoder
}](r *Reader, ctx any, heap paged.HeapSection, offset paged.Offset) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	saved := r.cursor.Offset()
	var zero T
	if err := r.cursor.Seek(r.cursor.HeapByteOffset(heap, offset)); err != nil {
		return zero, err
	}
	v, err := paged.DecodeFlat[T, PT](r.cursor, ctx)
	if err != nil {
		return zero, err
	}
	if err := r.cursor.Seek(saved); err != nil {
		return zero, err
	}
	return v, nil
}
