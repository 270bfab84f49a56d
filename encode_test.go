package paged

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIntegerRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if _, err := EncodeU32(nil, &buf, 0xDEADBEEF); err != nil {
		t.Fatal(err)
	}
	want := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got % X, want % X", buf.Bytes(), want)
	}

	c := NewCursor(bytes.NewReader(buf.Bytes()), Options{PageLen: 4096})
	got, err := DecodeU32(c, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0xDEADBEEF {
		t.Fatalf("got %#x, want %#x", got, uint32(0xDEADBEEF))
	}
}

func TestStringOnHeap(t *testing.T) {
	heap := NewHeap()
	var onPage bytes.Buffer

	if _, err := EncodeStringOnHeap(nil, heap, &onPage, "hi"); err != nil {
		t.Fatal(err)
	}

	wantOnPage := []byte{0, 0, 0, 0, 0, 0, 0, 2}
	if !bytes.Equal(onPage.Bytes(), wantOnPage) {
		t.Fatalf("on-page bytes: got % X, want % X", onPage.Bytes(), wantOnPage)
	}
	if !bytes.Equal(heap.Bytes(), []byte("hi")) {
		t.Fatalf("heap bytes: got % X, want %q", heap.Bytes(), "hi")
	}

	// Lay the on-page stub and the heap out back to back the way a Writer
	// would: page 0 holds the stub, page 1 begins the heap.
	const pageLen = 8
	full := make([]byte, pageLen)
	copy(full, onPage.Bytes())
	full = append(full, heap.Bytes()...)
	full = append(full, make([]byte, pageLen-len(heap.Bytes()))...)

	c := NewCursor(bytes.NewReader(full), Options{PageLen: pageLen})
	heapSection := HeapSection{PageOffset: 1, PageCount: heap.PageCount(pageLen)}

	got, err := DecodeStringFromHeap(c, nil, heapSection)
	if err != nil {
		t.Fatal(err)
	}
	if got != "hi" {
		t.Fatalf("got %q, want %q", got, "hi")
	}
}

func TestOptionPadding(t *testing.T) {
	var none bytes.Buffer
	if _, err := EncodeOptionFlat[uint64](nil, &none, nil, 8, EncodeU64); err != nil {
		t.Fatal(err)
	}
	wantNone := []byte{0, 0, 0, 0, 0, 0, 0, 0, 0}
	if !bytes.Equal(none.Bytes(), wantNone) {
		t.Fatalf("None: got % X, want % X", none.Bytes(), wantNone)
	}

	one := uint64(1)
	var some bytes.Buffer
	if _, err := EncodeOptionFlat(nil, &some, &one, 8, EncodeU64); err != nil {
		t.Fatal(err)
	}
	wantSome := []byte{1, 0, 0, 0, 0, 0, 0, 0, 1}
	if !bytes.Equal(some.Bytes(), wantSome) {
		t.Fatalf("Some(1): got % X, want % X", some.Bytes(), wantSome)
	}

	c := NewCursor(bytes.NewReader(some.Bytes()), Options{PageLen: 4096})
	got, err := DecodeOptionFlat[uint64](c, nil, 8, DecodeU64)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || *got != 1 {
		t.Fatalf("got %v, want pointer to 1", got)
	}
	if diff := cmp.Diff(uint64(1), *got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestOptionNoneRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if _, err := EncodeOptionFlat[uint64](nil, &buf, nil, 8, EncodeU64); err != nil {
		t.Fatal(err)
	}
	c := NewCursor(bytes.NewReader(buf.Bytes()), Options{PageLen: 4096})
	got, err := DecodeOptionFlat[uint64](c, nil, 8, DecodeU64)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}
