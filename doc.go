// Package paged stores very large homogeneous lists of fixed-size records on
// disk, page by page, with a side heap for the variable-length data those
// records point into. A Writer lays out sections and heaps; a reader.Reader
// serves them back through a bounded, concurrent page cache.
package paged
