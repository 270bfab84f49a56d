// Package reader serves paged-format files back through a bounded,
// concurrent page cache: a Reader that decodes through a paged.Cursor, a
// Cache that pins pages in memory while they're in use, and Ref handles that
// project into a pinned page without letting it get reclaimed underneath
// the caller.
package reader

import "iter"

// Bracket is the four-way outcome of SearchPageByKey: either the
// key was found at an index, or the search narrows which neighboring
// page to look in next, or the page is known not to hold it at all.
type Bracket int

const (
	// BracketMatch means the key was found; the returned index is valid.
	BracketMatch Bracket = iota
	// BracketGreater means every entry on this page is greater than the
	// key: search an earlier page.
	BracketGreater
	// BracketLess means every entry on this page is less than the key:
	// search a later page.
	BracketLess
	// BracketNotPresent means the page is non-empty and brackets the key
	// between two adjacent entries, or is empty: the key is not present
	// anywhere in the file.
	BracketNotPresent
)

// Page is the in-memory contents of one on-disk page of T records, held
// in a Cache slot. Record order within a page always matches on-disk
// order, so binary search over a page mirrors binary search over the
// section as a whole.
type Page[T any] struct {
	entries []T
}

// Get returns a pointer to the i'th entry on this page, or nil if i is
// out of range.
func (p *Page[T]) Get(i uint32) (*T, bool) {
	if i >= uint32(len(p.entries)) {
		return nil, false
	}
	return &p.entries[i], true
}

// Len reports how many entries this page holds.
func (p *Page[T]) Len() uint32 {
	return uint32(len(p.entries))
}

// Push appends an entry, used while a page is being populated from disk.
func (p *Page[T]) Push(v T) {
	p.entries = append(p.entries, v)
}

// Iter ranges over this page's entries in on-disk order.
func (p *Page[T]) Iter() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		for i := range p.entries {
			if !yield(i, &p.entries[i]) {
				return
			}
		}
	}
}

// Clear empties the page so its backing slot can be reused for a
// different page index without reallocating.
func (p *Page[T]) Clear() {
	p.entries = p.entries[:0]
}

// SearchPageByKey searches this page's entries for one whose key
// (extracted by cmp, which returns <0/0/>0 the way a Compare function
// does, comparing an entry's key against key) compares equal, returning
// its index. If no entry matches, the Bracket return tells the caller
// which direction (an earlier or later page) to continue the search in,
// or that the key isn't present at all.
func SearchPageByKey[T any, K any](p *Page[T], key K, cmp func(*T, K) int) (uint32, Bracket) {
	n := len(p.entries)
	if n == 0 {
		return 0, BracketNotPresent
	}
	if cmp(&p.entries[0], key) > 0 {
		return 0, BracketGreater
	}
	if cmp(&p.entries[n-1], key) < 0 {
		return 0, BracketLess
	}
	lo, hi := 0, n
	for lo < hi {
		mid := (lo + hi) / 2
		c := cmp(&p.entries[mid], key)
		switch {
		case c == 0:
			return uint32(mid), BracketMatch
		case c < 0:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return 0, BracketNotPresent
}
