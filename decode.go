package paged

func decodeU8(c *Cursor) (uint8, error) {
	var buf [1]byte
	if err := c.Read(buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func decodeU16(c *Cursor) (uint16, error) {
	var buf [2]byte
	if err := c.Read(buf[:]); err != nil {
		return 0, err
	}
	return uint16(buf[0])<<8 | uint16(buf[1]), nil
}

func decodeU32(c *Cursor) (uint32, error) {
	var buf [4]byte
	if err := c.Read(buf[:]); err != nil {
		return 0, err
	}
	return uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3]), nil
}

func decodeU64(c *Cursor) (uint64, error) {
	var buf [8]byte
	if err := c.Read(buf[:]); err != nil {
		return 0, err
	}
	var v uint64
	for _, b := range buf {
		v = v<<8 | uint64(b)
	}
	return v, nil
}

// DecodeU8 flat-decodes a uint8.
func DecodeU8(c *Cursor, ctx any) (uint8, error) { return decodeU8(c) }

// DecodeU16 flat-decodes a big-endian uint16.
func DecodeU16(c *Cursor, ctx any) (uint16, error) { return decodeU16(c) }

// DecodeU32 flat-decodes a big-endian uint32.
func DecodeU32(c *Cursor, ctx any) (uint32, error) { return decodeU32(c) }

// DecodeU64 flat-decodes a big-endian uint64.
func DecodeU64(c *Cursor, ctx any) (uint64, error) { return decodeU64(c) }

// DecodeI8 flat-decodes an int8.
func DecodeI8(c *Cursor, ctx any) (int8, error) {
	v, err := decodeU8(c)
	return int8(v), err
}

// DecodeI16 flat-decodes a big-endian int16.
func DecodeI16(c *Cursor, ctx any) (int16, error) {
	v, err := decodeU16(c)
	return int16(v), err
}

// DecodeI32 flat-decodes a big-endian int32.
func DecodeI32(c *Cursor, ctx any) (int32, error) {
	v, err := decodeU32(c)
	return int32(v), err
}

// DecodeI64 flat-decodes a big-endian int64.
func DecodeI64(c *Cursor, ctx any) (int64, error) {
	v, err := decodeU64(c)
	return int64(v), err
}

// DecodeOptionFlat is the decode counterpart of EncodeOptionFlat: reads the
// one-byte discriminant, then either elemSize bytes via decode, or
// elemSize bytes discarded as padding, depending on which arm was written.
func DecodeOptionFlat[T any](c *Cursor, ctx any, elemSize uint32, decode FlatDecodeFunc[T]) (*T, error) {
	tag, err := decodeU8(c)
	if err != nil {
		return nil, err
	}
	if tag == 0 {
		if err := c.Pad(elemSize); err != nil {
			return nil, err
		}
		return nil, nil
	}
	v, err := decode(c, ctx)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// DecodePairFlat is the decode counterpart of EncodePairFlat.
func DecodePairFlat[A, B any](c *Cursor, ctx any, decodeA FlatDecodeFunc[A], decodeB FlatDecodeFunc[B]) (A, B, error) {
	var zeroB B
	a, err := decodeA(c, ctx)
	if err != nil {
		var zeroA A
		return zeroA, zeroB, err
	}
	b, err := decodeB(c, ctx)
	if err != nil {
		return a, zeroB, err
	}
	return a, b, nil
}

// DecodeStringFromHeap reads the on-page Entry stub, then reads that many
// bytes from the heap at the stub's offset and validates them as UTF-8.
func DecodeStringFromHeap(c *Cursor, ctx any, heap HeapSection) (string, error) {
	var entry Entry
	if err := entry.DecodeFlat(c, ctx); err != nil {
		return "", err
	}
	buf := make([]byte, entry.Len)
	if err := c.ReadFromHeap(heap, entry.Offset, buf); err != nil {
		return "", err
	}
	if !validUTF8(buf) {
		return "", ErrInvalidData
	}
	return string(buf), nil
}

// DecodeSliceFromHeap reads the on-page Entry stub, then reads entry.Len
// flat-encoded elements back to back from the heap at the stub's offset.
func DecodeSliceFromHeap[T any, PT interface {
	*T
	FlatDecoder
}](c *Cursor, ctx any, heap HeapSection) ([]T, error) {
	var entry Entry
	if err := entry.DecodeFlat(c, ctx); err != nil {
		return nil, err
	}
	result := make([]T, 0, entry.Len)
	err := c.withHeapOffset(heap, entry.Offset, func() error {
		for i := uint32(0); i < entry.Len; i++ {
			v, err := DecodeFlat[T, PT](c, ctx)
			if err != nil {
				return err
			}
			result = append(result, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
