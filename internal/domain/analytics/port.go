package analytics

import (
	"context"
	"errors"
)

var (
	// ErrNotFound means no payload exists for the requested file.
	ErrNotFound = errors.New("analytics payload not found")
	// ErrMalformed means the payload could not be decoded.
	ErrMalformed = errors.New("malformed analytics payload")
)

// Source port (read-only provider of pre-computed payloads)
type Source interface {
	Load(ctx context.Context, filename string) (*Payload, error)
}

// Lister is implemented by sources that can enumerate their payloads.
type Lister interface {
	Filenames(ctx context.Context, limit int) ([]string, error)
}
