package codegen

import "testing"

func TestProductSize(t *testing.T) {
	got := ProductSize([]FieldShape{{Name: "a", Size: 4}, {Name: "b", Size: 8}})
	if got != 12 {
		t.Fatalf("got %d, want 12", got)
	}
}

func TestSumSize(t *testing.T) {
	total, widest := SumSize([][]FieldShape{
		{{Name: "0", Size: 4}},
		{{Name: "0", Size: 4}},
	})
	if widest != 4 {
		t.Fatalf("widest: got %d, want 4", widest)
	}
	if total != 5 {
		t.Fatalf("total: got %d, want 5", total)
	}
}

func TestSumSizeUnevenVariants(t *testing.T) {
	total, widest := SumSize([][]FieldShape{
		{{Name: "0", Size: 4}},
		{{Name: "0", Size: 8}, {Name: "1", Size: 2}},
	})
	if widest != 10 {
		t.Fatalf("widest: got %d, want 10", widest)
	}
	if total != 11 {
		t.Fatalf("total: got %d, want 11", total)
	}
}

func TestParseAttributeTag(t *testing.T) {
	attrs, err := ParseAttributeTag("unsized, bounds(T: Ord, U: Clone), context(C: Clone + Debug)")
	if err != nil {
		t.Fatal(err)
	}
	if !attrs.Unsized {
		t.Fatal("expected Unsized")
	}
	if len(attrs.EncodeBounds) != 2 || attrs.EncodeBounds[0] != "T: Ord" {
		t.Fatalf("encode bounds: got %v", attrs.EncodeBounds)
	}
	if len(attrs.DecodeBounds) != 2 {
		t.Fatalf("decode bounds: got %v", attrs.DecodeBounds)
	}
	if attrs.Context == nil || attrs.Context.Name != "C" {
		t.Fatalf("context: got %v", attrs.Context)
	}
	if len(attrs.Context.Bounds) != 2 || attrs.Context.Bounds[1] != "Debug" {
		t.Fatalf("context bounds: got %v", attrs.Context.Bounds)
	}
}

func TestParseAttributeTagHeapOnly(t *testing.T) {
	attrs, err := ParseAttributeTag("heap")
	if err != nil {
		t.Fatal(err)
	}
	if !attrs.HeapOnly {
		t.Fatal("expected HeapOnly")
	}
}

func TestParseAttributeTagUnknown(t *testing.T) {
	if _, err := ParseAttributeTag("bogus"); err == nil {
		t.Fatal("expected an error for an unknown attribute")
	}
}

func TestParseAttributeTagMissingBounds(t *testing.T) {
	if _, err := ParseAttributeTag("bounds"); err == nil {
		t.Fatal("expected an error for bounds without a list")
	}
}

func TestValidateContextExtendsExisting(t *testing.T) {
	ctx := ContextParam{Name: "T", Bounds: []string{"Ord"}}
	_, extends := ValidateContext([]string{"T", "U"}, ctx)
	if !extends {
		t.Fatal("expected ValidateContext to report an extension of an existing parameter")
	}

	fresh := ContextParam{Name: "C"}
	_, extendsFresh := ValidateContext([]string{"T", "U"}, fresh)
	if extendsFresh {
		t.Fatal("expected ValidateContext to report a fresh parameter")
	}
}
