// Package codegen implements the non-parsing half of the generator
// contract described alongside the codec interfaces: given field sizes a
// generator has already extracted from a struct or enum declaration, it
// computes the resulting ENCODED_SIZE/padding plan and validates the
// attribute schema that customizes code generation. Parsing a Go struct's
// declaration itself (walking go/ast, resolving a field's own codec) is
// out of scope; this package starts one step after that.
package codegen

// FieldShape is the size information a generator needs about one field:
// its own flat ENCODED_SIZE, however that was computed for its type.
type FieldShape struct {
	Name string
	Size uint32
}

// ProductSize computes a struct's ENCODED_SIZE as the sum of its fields'
// sizes, the layout every non-enum record type uses.
func ProductSize(fields []FieldShape) uint32 {
	var total uint32
	for _, f := range fields {
		total += f.Size
	}
	return total
}

// SumSize computes an enum-like (tagged-union) type's ENCODED_SIZE as
// 1 (the discriminant byte) plus the widest variant's own product size,
// so every variant's encoding - regardless of which one is active - fits
// in the same number of bytes. widest is returned alongside total so a
// generator can compute, for a given variant, how many trailing padding
// bytes (widest - that variant's own product size) its encoder must emit
// after writing the variant's fields.
func SumSize(variants [][]FieldShape) (total uint32, widest uint32) {
	for _, fields := range variants {
		if size := ProductSize(fields); size > widest {
			widest = size
		}
	}
	return 1 + widest, widest
}
