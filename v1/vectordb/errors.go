package vectordb

import (
	"errors"
	"fmt"
)

var (
	// ErrArityMismatch is returned when the parallel arrays of a Batch differ in length.
	ErrArityMismatch = errors.New("vectordb: batch arrays have different lengths")

	// ErrCollectionNotFound is returned when a collection does not exist.
	ErrCollectionNotFound = errors.New("vectordb: collection not found")

	// ErrDimensionMismatch is returned when a vector does not match the
	// dimension of its collection.
	ErrDimensionMismatch = errors.New("vectordb: vector dimension mismatch")
)

// NotFound wraps ErrCollectionNotFound with the collection name.
func NotFound(name string) error {
	return fmt.Errorf("%w: %q", ErrCollectionNotFound, name)
}

// DimensionMismatch wraps ErrDimensionMismatch with both dimensions.
func DimensionMismatch(name string, want, got int) error {
	return fmt.Errorf("%w: collection %q expects %d, got %d", ErrDimensionMismatch, name, want, got)
}
