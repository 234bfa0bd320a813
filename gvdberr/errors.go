// Package gvdberr defines the closed error taxonomy shared by the GVDB
// reader and writer. Every failure produced by this module wraps one of the
// sentinel values below, so callers can branch with errors.Is instead of
// string matching.
package gvdberr

import (
	"errors"
	"fmt"
)

var (
	// ErrIO signals an underlying byte-source failure (short read, file open).
	ErrIO = errors.New("gvdb: io error")

	// ErrUTF8 signals that key bytes were not valid UTF-8 where text was required.
	ErrUTF8 = errors.New("gvdb: invalid utf8")

	// ErrInvalidData signals structural corruption without a finer diagnosis:
	// bad header signature, a parent cycle, a wrong remainder size.
	ErrInvalidData = errors.New("gvdb: invalid data")

	// ErrDataOffset signals a pointer or index outside the available byte range.
	ErrDataOffset = errors.New("gvdb: offset out of range")

	// ErrDataAlignment signals an aligned dereference at a misaligned offset.
	ErrDataAlignment = errors.New("gvdb: misaligned offset")

	// ErrDataError signals corruption with a specific explanation attached.
	ErrDataError = errors.New("gvdb: data error")

	// ErrKeyNotFound signals that a requested key is absent.
	ErrKeyNotFound = errors.New("gvdb: key not found")

	// ErrVariant signals that the external variant codec rejected a payload.
	ErrVariant = errors.New("gvdb: variant error")

	// ErrConsistency signals the writer was asked to encode something it can't.
	ErrConsistency = errors.New("gvdb: consistency error")

	// ErrUnimplemented signals an intentionally unsupported code path.
	ErrUnimplemented = errors.New("gvdb: unimplemented")
)

// IO wraps an underlying I/O failure, optionally naming the file involved.
func IO(filename string, cause error) error {
	if filename == "" {
		return fmt.Errorf("%w: %v", ErrIO, cause)
	}
	return fmt.Errorf("%w: %s: %v", ErrIO, filename, cause)
}

// DataOffset reports a pointer or index that exceeds the available range.
func DataOffset(what string, offset, limit uint32) error {
	return fmt.Errorf("%w: %s at %d exceeds limit %d", ErrDataOffset, what, offset, limit)
}

// DataAlignment reports an aligned dereference at a misaligned offset.
func DataAlignment(offset uint32, alignment int) error {
	return fmt.Errorf("%w: offset %d not aligned to %d bytes", ErrDataAlignment, offset, alignment)
}

// DataError reports corruption with an explicit explanation.
func DataError(msg string) error {
	return fmt.Errorf("%w: %s", ErrDataError, msg)
}

// DataErrorf is DataError with printf-style formatting.
func DataErrorf(format string, args ...any) error {
	return DataError(fmt.Sprintf(format, args...))
}

// KeyError reports that key is absent.
func KeyError(key string) error {
	return fmt.Errorf("%w: %q", ErrKeyNotFound, key)
}

// Variant wraps a payload decode/encode failure from the external codec.
func Variant(cause error) error {
	return fmt.Errorf("%w: %v", ErrVariant, cause)
}

// Consistency reports that the writer's inputs can't be encoded as given.
func Consistency(msg string) error {
	return fmt.Errorf("%w: %s", ErrConsistency, msg)
}

// Unimplemented reports an intentionally unsupported code path.
func Unimplemented(msg string) error {
	return fmt.Errorf("%w: %s", ErrUnimplemented, msg)
}
