package paged

import "io"

// Sized is implemented by any type with a fixed, statically known flat
// encoding length. The built-in descriptor types (Offset, Entry, Section,
// HeapSection) implement it with a constant; generated record types
// implement it the same way. Integers, options and pairs are encoded
// through codec functions instead and do not implement Sized.
type Sized interface {
	// EncodedSize returns the number of bytes this value's flat encoding
	// occupies. For a given Go type, every value must return the same
	// number; EncodedSize is only a method (rather than a package-level
	// constant) because Go has no per-type associated constants outside
	// of generated code that can hard-code a literal.
	EncodedSize() uint32
}

// Encoder writes a value's flat, ENCODED_SIZE-byte representation. Every
// value of a type implementing Encoder must write exactly EncodedSize()
// bytes and spill nothing to a heap.
type Encoder interface {
	Sized
	EncodeFlat(ctx any, w io.Writer) (uint32, error)
}

// HeapEncoder writes a value's on-page representation, spilling
// variable-length data into the given Heap and leaving a fixed-size stub
// (an Entry, typically) in the page bytes. Every type that only ever needs
// a flat encoding can implement HeapEncoder by ignoring the heap argument
// and delegating to its flat encoding, which is exactly what Section and
// HeapSection below do.
type HeapEncoder interface {
	Sized
	EncodeOnHeap(ctx any, h *Heap, w io.Writer) (uint32, error)
}

// FlatDecoder populates a zero value of its type from a flat encoding. It
// takes a pointer receiver so the generic DecodeFlat function below can
// allocate a zero T and decode into it, mirroring the pointer-receiver
// idiom encoding/json and encoding/gob use for Unmarshal.
type FlatDecoder interface {
	DecodeFlat(c *Cursor, ctx any) error
}

// HeapDecoder populates a zero value of its type from a page's on-page
// stub plus the heap section it points into.
type HeapDecoder interface {
	DecodeFlat(c *Cursor, ctx any) error
	DecodeFromHeap(c *Cursor, ctx any, heap HeapSection) error
}

// decodeFlat is the shared implementation behind the generic DecodeFlat
// free function: allocate a zero T, decode into it through the pointer
// receiver, return the populated value.
func decodeFlat[T any, PT interface {
	*T
	FlatDecoder
}](c *Cursor, ctx any) (T, error) {
	var v T
	if err := PT(&v).DecodeFlat(c, ctx); err != nil {
		return v, err
	}
	return v, nil
}

// DecodeFlat allocates a T and decodes its flat encoding from c. T's
// pointer type must implement FlatDecoder; this is Go's stand-in for
// Rust's associated-function `Decode::decode`, which constructs Self
// without an existing receiver to call a method on.
func DecodeFlat[T any, PT interface {
	*T
	FlatDecoder
}](c *Cursor, ctx any) (T, error) {
	return decodeFlat[T, PT](c, ctx)
}

// DecodeFromHeap allocates a T and decodes its on-page stub plus any heap
// data it references, the heap-aware analogue of DecodeFlat.
func DecodeFromHeap[T any, PT interface {
	*T
	HeapDecoder
}](c *Cursor, ctx any, heap HeapSection) (T, error) {
	var v T
	if err := PT(&v).DecodeFromHeap(c, ctx, heap); err != nil {
		return v, err
	}
	return v, nil
}
