package reader

import (
	"bytes"
	"io"
	"sync"
	"testing"

	"github.com/chirst/paged"
)

// keyedRecord is a small fixed-size record (a uint32 key plus a uint32
// payload) used to exercise GetPage/Get/BinarySearchByKey end to end
// without any heap-spilled data.
type keyedRecord struct {
	key     uint32
	payload uint32
}

func (keyedRecord) EncodedSize() uint32 { return 8 }

func (r keyedRecord) EncodeFlat(ctx any, w io.Writer) (uint32, error) {
	if _, err := paged.EncodeU32(ctx, w, r.key); err != nil {
		return 0, err
	}
	if _, err := paged.EncodeU32(ctx, w, r.payload); err != nil {
		return 0, err
	}
	return r.EncodedSize(), nil
}

// EncodeOnHeap implements paged.HeapEncoder by delegating to EncodeFlat:
// keyedRecord never spills anything to a heap.
func (r keyedRecord) EncodeOnHeap(ctx any, h *paged.Heap, w io.Writer) (uint32, error) {
	return r.EncodeFlat(ctx, w)
}

func (r *keyedRecord) DecodeFlat(c *paged.Cursor, ctx any) error {
	key, err := paged.DecodeU32(c, ctx)
	if err != nil {
		return err
	}
	payload, err := paged.DecodeU32(c, ctx)
	if err != nil {
		return err
	}
	r.key, r.payload = key, payload
	return nil
}

func (r *keyedRecord) DecodeFromHeap(c *paged.Cursor, ctx any, heap paged.HeapSection) error {
	return r.DecodeFlat(c, ctx)
}

func keyedRecordCmp(r *keyedRecord, key uint32) int {
	switch {
	case r.key < key:
		return -1
	case r.key > key:
		return 1
	default:
		return 0
	}
}

// buildKeyedFile writes n records (keys 0..n-1, sorted) as one section at
// pageLen 32 (4 records per page) and returns the raw bytes plus the
// section descriptor.
func buildKeyedFile(t *testing.T, n int) ([]byte, paged.Section[keyedRecord]) {
	t.Helper()
	const pageLen = 32

	buf := &memBuffer{}
	w := paged.NewWriter(buf, pageLen)
	heap := paged.NewHeap()

	items := make([]keyedRecord, n)
	for i := range items {
		items[i] = keyedRecord{key: uint32(i), payload: uint32(i * 10)}
	}
	section, err := paged.WriteSectionFromSlice(w, heap, nil, items)
	if err != nil {
		t.Fatal(err)
	}
	return buf.data, section
}

// memBuffer is a minimal in-memory io.ReadWriteSeeker, mirroring the
// root package's own test helper of the same shape.
type memBuffer struct {
	data []byte
	pos  int64
}

func (b *memBuffer) Write(p []byte) (int, error) {
	end := b.pos + int64(len(p))
	if end > int64(len(b.data)) {
		grown := make([]byte, end)
		copy(grown, b.data)
		b.data = grown
	}
	copy(b.data[b.pos:end], p)
	b.pos = end
	return len(p), nil
}

func (b *memBuffer) Read(p []byte) (int, error) {
	if b.pos >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[b.pos:])
	b.pos += int64(n)
	return n, nil
}

func (b *memBuffer) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = b.pos + offset
	case io.SeekEnd:
		next = int64(len(b.data)) + offset
	}
	b.pos = next
	return next, nil
}

func TestGetAndBinarySearch(t *testing.T) {
	const pageLen = 32
	data, section := buildKeyedFile(t, 10)

	r := New(bytes.NewReader(data), paged.Options{PageLen: pageLen})
	cache := NewCache[keyedRecord]()

	ref, err := Get[keyedRecord, *keyedRecord](r, section, cache, nil, paged.HeapSection{}, 7)
	if err != nil {
		t.Fatal(err)
	}
	if ref.View().key != 7 || ref.View().payload != 70 {
		t.Fatalf("got %+v, want key=7 payload=70", ref.View())
	}
	ref.Release()

	found, err := BinarySearchByKey[keyedRecord, *keyedRecord, uint32](r, section, cache, nil, paged.HeapSection{}, 9, keyedRecordCmp)
	if err != nil {
		t.Fatal(err)
	}
	if found == nil {
		t.Fatal("expected a match for key 9")
	}
	if found.View().payload != 90 {
		t.Fatalf("got payload %d, want 90", found.View().payload)
	}
	found.Release()

	missing, err := BinarySearchByKey[keyedRecord, *keyedRecord, uint32](r, section, cache, nil, paged.HeapSection{}, 999, keyedRecordCmp)
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Fatal("expected no match for an absent key")
	}
}

func TestBinarySearchEmptySection(t *testing.T) {
	r := New(bytes.NewReader(nil), paged.Options{PageLen: 32})
	cache := NewCache[keyedRecord]()
	section := paged.Section[keyedRecord]{}

	got, err := BinarySearchByKey[keyedRecord, *keyedRecord, uint32](r, section, cache, nil, paged.HeapSection{}, 0, keyedRecordCmp)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatal("expected no match against an empty section")
	}
}

// TestConcurrentGetOrInsert exercises the scenario where two callers race
// to fetch the same page of an empty cache: both must observe the same
// entries, and exactly one slot should remain resident once both handles
// are released.
func TestConcurrentGetOrInsert(t *testing.T) {
	const pageLen = 32
	data, section := buildKeyedFile(t, 4)

	r := New(bytes.NewReader(data), paged.Options{PageLen: pageLen})
	cache := NewCache[keyedRecord]()

	var wg sync.WaitGroup
	refs := make([]*Ref[keyedRecord, *Page[keyedRecord]], 2)
	errs := make([]error, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			refs[i], errs[i] = GetPage[keyedRecord, *keyedRecord](r, section, cache, nil, paged.HeapSection{}, 0)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("goroutine %d: %v", i, err)
		}
	}

	a, b := refs[0].View(), refs[1].View()
	if a.Len() != b.Len() {
		t.Fatalf("page lengths differ: %d vs %d", a.Len(), b.Len())
	}
	for i := uint32(0); i < a.Len(); i++ {
		ea, _ := a.Get(i)
		eb, _ := b.Get(i)
		if *ea != *eb {
			t.Fatalf("entry %d differs: %+v vs %+v", i, *ea, *eb)
		}
	}

	if got := cache.Len(); got != 1 {
		t.Fatalf("resident slots while pinned: got %d, want 1", got)
	}

	refs[0].Release()
	refs[1].Release()

	if got := cache.Len(); got != 1 {
		t.Fatalf("resident slots after release: got %d, want 1", got)
	}
}

func TestCacheEvictionRespectsLivePins(t *testing.T) {
	const pageLen = 32
	data, section := buildKeyedFile(t, 8) // 2 pages at 4 records/page

	r := New(bytes.NewReader(data), paged.Options{PageLen: pageLen})
	cache := NewCache[keyedRecord](WithCapacity[keyedRecord](1))

	held, err := GetPage[keyedRecord, *keyedRecord](r, section, cache, nil, paged.HeapSection{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer held.Release()

	if _, err := GetPage[keyedRecord, *keyedRecord](r, section, cache, nil, paged.HeapSection{}, 1); err != paged.ErrOutOfMemory {
		t.Fatalf("got err %v, want ErrOutOfMemory while the only slot is pinned", err)
	}
}
