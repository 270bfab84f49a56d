package reader

import (
	"runtime"
	"sync/atomic"
)

// pin keeps a cache slot resident for as long as at least one Ref is
// holding it. release returns the slot to the cache's pool once the last
// Ref referencing it is released; it is idempotent against a slot that
// has already been released.
type pin struct {
	refs    atomic.Int32
	release func()
}

func newPin(release func()) *pin {
	return &pin{release: release}
}

func (p *pin) acquire() {
	p.refs.Add(1)
}

func (p *pin) drop() {
	if p.refs.Add(-1) == 0 {
		p.release()
	}
}

// Ref is a scoped borrow of a cache-resident page: it keeps the page
// pinned (preventing the cache from reclaiming it) for as long as the Ref
// is held, and projects a view V into it (the whole Page[T], a single
// entry, an iterator over its entries, ...) without copying.
//
// Release must be called once the caller is done; it is idempotent, so a
// deferred Release alongside an early return is always safe. Ref is
// always handed out as a pointer precisely so a runtime cleanup can be
// attached to that one heap allocation: construction registers a cleanup
// that releases the underlying pin if the caller never calls Release, the
// same backstop quay-claircore's weak-pointer cache uses, but that
// cleanup runs on the garbage collector's schedule and exists only to
// bound leaks from callers that forget — it is not the mechanism normal
// control flow should rely on.
type Ref[T, V any] struct {
	p        *pin
	view     V
	released *atomic.Bool
}

// newRef pins p on behalf of a fresh Ref over view and registers the GC
// backstop described above.
func newRef[T, V any](p *pin, view V) *Ref[T, V] {
	p.acquire()
	released := new(atomic.Bool)
	r := &Ref[T, V]{p: p, view: view, released: released}
	runtime.AddCleanup(r, func(released *atomic.Bool) {
		if released.CompareAndSwap(false, true) {
			p.drop()
		}
	}, released)
	return r
}

// Release ends this borrow, allowing the cache to reclaim the underlying
// page once no other Ref is pinning it. Calling Release more than once on
// the same Ref has no additional effect.
func (r *Ref[T, V]) Release() {
	if r.released.CompareAndSwap(false, true) {
		r.p.drop()
	}
}

// View returns the projected value this Ref borrows. The returned value
// (or any slice/pointer it aliases) is only valid while the Ref remains
// unreleased.
func (r *Ref[T, V]) View() V {
	return r.view
}

// MapRef re-projects an existing Ref's view through f into a new Ref over
// the same underlying pin. The mapped Ref takes its own count on that
// pin, so the original and the mapped Ref must each be released.
func MapRef[T, V, W any](r *Ref[T, V], f func(V) W) *Ref[T, W] {
	return newRef[T, W](r.p, f(r.view))
}

// EntryView narrows a Ref over a whole page down to a single entry by
// index, still pinning the same underlying page.
func EntryView[T any](r *Ref[T, *Page[T]], i uint32) (*Ref[T, *T], bool) {
	entry, ok := r.view.Get(i)
	if !ok {
		return nil, false
	}
	return newRef[T, *T](r.p, entry), true
}
