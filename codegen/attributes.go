package codegen

import (
	"fmt"
	"strings"
)

// AttributeError reports a malformed or unknown codec attribute.
// Attribute is the attribute name under dispute (e.g. "bounds"); Reason
// describes what's wrong with it. Source-position information (which
// file, which line) is the caller's responsibility to attach, since this
// package only ever sees the isolated attribute-tag text, not the
// surrounding source.
type AttributeError struct {
	Attribute string
	Reason    string
}

func (e *AttributeError) Error() string {
	return fmt.Sprintf("codegen: attribute %q: %s", e.Attribute, e.Reason)
}

// ContextParam describes a generic context parameter a generated codec
// should thread through: either a fresh type parameter to introduce
// (Name plus Bounds), or, when Name already names one of the type's own
// declared generics, the additional Bounds to require of it.
type ContextParam struct {
	Name   string
	Bounds []string
}

// Attributes is the parsed form of one type's `unsized`/`heap`/
// `bounds(...)`/`encode_bounds(...)`/`decode_bounds(...)`/
// `encode_sized_bounds(...)`/`context(...)` attribute tag.
type Attributes struct {
	// Unsized marks a type whose flat encoding has no fixed ENCODED_SIZE
	// (skips generating EncodeSized/Encoder, generates only EncodeOnHeap).
	Unsized bool
	// HeapOnly marks a type that must always be written through
	// EncodeOnHeap, even in contexts that would otherwise accept a flat
	// Encoder (it has no meaningful on-page representation by itself).
	HeapOnly bool
	// EncodeBounds are extra where-predicates (as opaque strings; this
	// package doesn't validate Go syntax, that's the generator's job)
	// required on the generated Encoder implementation.
	EncodeBounds []string
	// EncodeSizedBounds are extra where-predicates required on the
	// generated Sized implementation.
	EncodeSizedBounds []string
	// DecodeBounds are extra where-predicates required on the generated
	// FlatDecoder/HeapDecoder implementation.
	DecodeBounds []string
	// Context, if set, is the generic context parameter the generated
	// codec should thread through ctx any as its concrete type.
	Context *ContextParam
}

// ParseAttributeTag parses one already-isolated attribute tag body (the
// comma-separated list a generator would have sliced out of a struct tag
// or directive comment, e.g. `unsized, bounds(T: Ord), context(C: Clone)`),
// not a whole Go source file or declaration: this package never walks an
// AST. Returns an *AttributeError wrapping an unknown attribute name or a
// malformed bounds/context list.
func ParseAttributeTag(tag string) (Attributes, error) {
	var attrs Attributes

	for _, item := range splitTopLevel(tag, ',') {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		name, arg, hasArg := cutAttr(item)
		switch name {
		case "unsized":
			if hasArg {
				return attrs, &AttributeError{Attribute: name, Reason: "takes no argument"}
			}
			attrs.Unsized = true

		case "heap":
			if hasArg {
				return attrs, &AttributeError{Attribute: name, Reason: "takes no argument"}
			}
			attrs.HeapOnly = true

		case "bounds":
			bounds, err := parseBoundsList(name, arg, hasArg)
			if err != nil {
				return attrs, err
			}
			attrs.EncodeBounds = append(attrs.EncodeBounds, bounds...)
			attrs.EncodeSizedBounds = append(attrs.EncodeSizedBounds, bounds...)
			attrs.DecodeBounds = append(attrs.DecodeBounds, bounds...)

		case "encode_bounds":
			bounds, err := parseBoundsList(name, arg, hasArg)
			if err != nil {
				return attrs, err
			}
			attrs.EncodeBounds = append(attrs.EncodeBounds, bounds...)

		case "decode_bounds":
			bounds, err := parseBoundsList(name, arg, hasArg)
			if err != nil {
				return attrs, err
			}
			attrs.DecodeBounds = append(attrs.DecodeBounds, bounds...)

		case "encode_sized_bounds":
			bounds, err := parseBoundsList(name, arg, hasArg)
			if err != nil {
				return attrs, err
			}
			attrs.EncodeSizedBounds = append(attrs.EncodeSizedBounds, bounds...)

		case "context":
			if !hasArg {
				return attrs, &AttributeError{Attribute: name, Reason: "missing context parameter"}
			}
			ctx, err := parseContext(arg)
			if err != nil {
				return attrs, err
			}
			attrs.Context = &ctx

		default:
			return attrs, &AttributeError{Attribute: name, Reason: "unknown attribute"}
		}
	}

	return attrs, nil
}

// parseBoundsList parses a parenthesized, comma-separated where-predicate
// list, e.g. "(T: Ord, U: Clone)".
func parseBoundsList(attrName, arg string, hasArg bool) ([]string, error) {
	if !hasArg {
		return nil, &AttributeError{Attribute: attrName, Reason: "missing bounds list"}
	}
	var bounds []string
	for _, b := range splitTopLevel(arg, ',') {
		b = strings.TrimSpace(b)
		if b == "" {
			return nil, &AttributeError{Attribute: attrName, Reason: "empty bound in list"}
		}
		bounds = append(bounds, b)
	}
	if len(bounds) == 0 {
		return nil, &AttributeError{Attribute: attrName, Reason: "missing bounds"}
	}
	return bounds, nil
}

// parseContext parses a single "Name: Bound1 + Bound2" context parameter.
func parseContext(arg string) (ContextParam, error) {
	name, boundsPart, ok := strings.Cut(arg, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return ContextParam{}, &AttributeError{Attribute: "context", Reason: "missing type parameter name"}
	}
	if !ok {
		return ContextParam{Name: name}, nil
	}
	var bounds []string
	for _, b := range strings.Split(boundsPart, "+") {
		b = strings.TrimSpace(b)
		if b != "" {
			bounds = append(bounds, b)
		}
	}
	return ContextParam{Name: name, Bounds: bounds}, nil
}

// ValidateContext resolves a type's context attribute against the
// generic parameter names it already declares. If ctx.Name matches one of
// existing, extendsExisting is true and the generator should append
// ctx.Bounds to that parameter's own where-clause rather than introducing
// a new type parameter; otherwise ctx introduces a fresh generic.
func ValidateContext(existing []string, ctx ContextParam) (_ ContextParam, extendsExisting bool) {
	for _, name := range existing {
		if name == ctx.Name {
			return ctx, true
		}
	}
	return ctx, false
}

// cutAttr splits "name(arg)" into ("name", "arg", true), or a bare "name"
// into ("name", "", false).
func cutAttr(item string) (name, arg string, hasArg bool) {
	open := strings.IndexByte(item, '(')
	if open < 0 {
		return strings.TrimSpace(item), "", false
	}
	if !strings.HasSuffix(item, ")") {
		return strings.TrimSpace(item[:open]), strings.TrimSpace(item[open+1:]), true
	}
	return strings.TrimSpace(item[:open]), strings.TrimSpace(item[open+1 : len(item)-1]), true
}

// splitTopLevel splits s on sep, but not inside parentheses, so
// "bounds(T: Ord, U: Clone), heap" splits into the bounds(...) attribute
// whole and "heap", not four fragments.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
