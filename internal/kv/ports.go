// Package kv defines the key-value blob store the ledger persists into.
package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by Load when nothing was ever saved under the key.
	ErrNotFound = errors.New("key not found")
	// ErrInvalidKey is returned for keys a backend cannot address safely.
	ErrInvalidKey = errors.New("invalid key")
)

// Ports for outbound adapters.
type (
	// Store keeps opaque blobs under string keys. Save replaces the whole value.
	Store interface {
		Load(ctx context.Context, key string) ([]byte, error)
		Save(ctx context.Context, key string, value []byte) error
	}

	// Closer is implemented by stores that hold connections or file handles.
	Closer interface {
		Close() error
	}
)

// ValidateKey accepts non-empty keys made of letters, digits, dash, underscore and dot,
// not starting with a dot.
func ValidateKey(key string) error {
	if key == "" || strings.HasPrefix(key, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return nil
}
