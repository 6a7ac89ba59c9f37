package source

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when an object does not exist.
//
// Implementations return an error satisfying errors.Is(err, ErrNotFound).
var ErrNotFound = os.ErrNotExist

// Store is a flat namespace of immutable objects.
type Store interface {
	// Open opens an object for reading.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// Put writes an object atomically, replacing any previous content.
	Put(ctx context.Context, name string, data []byte) error
}
