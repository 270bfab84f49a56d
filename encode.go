package paged

import (
	"encoding/binary"
	"io"
	"unicode/utf8"
)

// FlatEncodeFunc is an explicit codec function value, the stand-in this
// package uses wherever a generic combinator (Option, slices, pairs)
// needs "any type with a flat encoding" but the type in question is a
// builtin (uint32, string, ...) that cannot carry methods of its own.
// Generated record types don't need this: they implement Encoder/HeapEncoder
// directly and are passed as values, not as codec functions.
type FlatEncodeFunc[T any] func(ctx any, w io.Writer, v T) (uint32, error)

// FlatDecodeFunc is the decode-side counterpart of FlatEncodeFunc.
type FlatDecodeFunc[T any] func(c *Cursor, ctx any) (T, error)

func encodeU8(w io.Writer, v uint8) (uint32, error) {
	if _, err := w.Write([]byte{v}); err != nil {
		return 0, wrapf("encode u8: %w", err)
	}
	return 1, nil
}

func encodeU16(w io.Writer, v uint16) (uint32, error) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	if _, err := w.Write(buf[:]); err != nil {
		return 0, wrapf("encode u16: %w", err)
	}
	return 2, nil
}

func encodeU32(w io.Writer, v uint32) (uint32, error) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	if _, err := w.Write(buf[:]); err != nil {
		return 0, wrapf("encode u32: %w", err)
	}
	return 4, nil
}

func encodeU64(w io.Writer, v uint64) (uint32, error) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	if _, err := w.Write(buf[:]); err != nil {
		return 0, wrapf("encode u64: %w", err)
	}
	return 8, nil
}

// Go's primitive integer types can't carry the Sized/Encoder/FlatDecoder
// methods, so integers are encoded through the EncodeU8/EncodeI8/... codec
// functions below (and decoded through DecodeU8/DecodeI8/... in
// decode.go). Record types encode their own integer fields by calling
// EncodeU32 etc. directly; this package defines no integer wrapper types,
// so a bare integer cannot itself be a Section's record type.

// EncodeU8 flat-encodes a uint8: a single byte, big-endian is moot at this
// width but kept for symmetry with the wider widths.
func EncodeU8(ctx any, w io.Writer, v uint8) (uint32, error) { return encodeU8(w, v) }

// EncodeU16 flat-encodes a uint16, big-endian.
func EncodeU16(ctx any, w io.Writer, v uint16) (uint32, error) { return encodeU16(w, v) }

// EncodeU32 flat-encodes a uint32, big-endian.
func EncodeU32(ctx any, w io.Writer, v uint32) (uint32, error) { return encodeU32(w, v) }

// EncodeU64 flat-encodes a uint64, big-endian.
func EncodeU64(ctx any, w io.Writer, v uint64) (uint32, error) { return encodeU64(w, v) }

// EncodeI8 flat-encodes an int8.
func EncodeI8(ctx any, w io.Writer, v int8) (uint32, error) { return encodeU8(w, uint8(v)) }

// EncodeI16 flat-encodes an int16, big-endian.
func EncodeI16(ctx any, w io.Writer, v int16) (uint32, error) { return encodeU16(w, uint16(v)) }

// EncodeI32 flat-encodes an int32, big-endian.
func EncodeI32(ctx any, w io.Writer, v int32) (uint32, error) { return encodeU32(w, uint32(v)) }

// EncodeI64 flat-encodes an int64, big-endian.
func EncodeI64(ctx any, w io.Writer, v int64) (uint32, error) { return encodeU64(w, uint64(v)) }

func pad(w io.Writer, n uint32) (uint32, error) {
	if n == 0 {
		return 0, nil
	}
	buf := make([]byte, n)
	if _, err := w.Write(buf); err != nil {
		return 0, wrapf("pad: %w", err)
	}
	return n, nil
}

// EncodeOptionFlat flat-encodes an Option-shaped value as a one-byte
// discriminant (0 absent, 1 present) followed by elemSize bytes: either
// the element's flat encoding, or that many zero bytes. ENCODED_SIZE for
// this shape is always 1+elemSize, regardless of which arm is taken, so
// Option[T] never changes a record's layout based on its contents.
func EncodeOptionFlat[T any](ctx any, w io.Writer, v *T, elemSize uint32, encode FlatEncodeFunc[T]) (uint32, error) {
	if v == nil {
		n, err := encodeU8(w, 0)
		if err != nil {
			return 0, err
		}
		p, err := pad(w, elemSize)
		if err != nil {
			return 0, err
		}
		return n + p, nil
	}
	n, err := encodeU8(w, 1)
	if err != nil {
		return 0, err
	}
	m, err := encode(ctx, w, *v)
	if err != nil {
		return 0, err
	}
	return n + m, nil
}

// EncodePairFlat flat-encodes two values back to back using their
// respective codec functions.
func EncodePairFlat[A, B any](ctx any, w io.Writer, a A, b B, encodeA FlatEncodeFunc[A], encodeB FlatEncodeFunc[B]) (uint32, error) {
	na, err := encodeA(ctx, w, a)
	if err != nil {
		return 0, err
	}
	nb, err := encodeB(ctx, w, b)
	if err != nil {
		return 0, err
	}
	return na + nb, nil
}

// EncodeStringOnHeap writes str's bytes to the heap and returns the Entry
// stub (heap offset + byte length) a record's on-page bytes hold in its
// place.
func EncodeStringOnHeap(ctx any, h *Heap, w io.Writer, str string) (uint32, error) {
	offset, err := h.insertBytes([]byte(str))
	if err != nil {
		return 0, err
	}
	entry := offset.Sized(uint32(len(str)))
	return entry.EncodeFlat(ctx, w)
}

// insertBytes is the raw-bytes counterpart of Heap.Insert, used by the
// string combinator, which already has its payload assembled rather than
// an Encoder value to delegate to.
func (h *Heap) insertBytes(p []byte) (Offset, error) {
	offset := Offset(h.Len())
	h.data = append(h.data, p...)
	return offset, nil
}

// EncodeSliceOnHeap writes each element of items to the heap (flat-encoded
// back to back via elemEncode) and returns the Entry stub (heap offset +
// element count) a record's on-page bytes hold in its place.
func EncodeSliceOnHeap[T any](ctx any, h *Heap, w io.Writer, items []T, elemEncode FlatEncodeFunc[T]) (uint32, error) {
	offset := Offset(h.Len())
	hw := heapWriter{h}
	for _, item := range items {
		if _, err := elemEncode(ctx, hw, item); err != nil {
			return 0, err
		}
	}
	entry := offset.Sized(uint32(len(items)))
	return entry.EncodeFlat(ctx, w)
}

// validUTF8 reports whether p is valid UTF-8, used by string decoding to
// produce ErrInvalidData instead of a mangled Go string.
func validUTF8(p []byte) bool {
	return utf8.Valid(p)
}
