// Package storage provides the durable key/value backends the client uses the
// way a browser uses local storage: small string values under well-known keys.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by GetItem when the key is absent.
var ErrNotFound = errors.New("storage: key not found")

// Storage is a string key/value store. Implementations must treat removing a
// missing key as success so concurrent expiry checks stay idempotent.
type Storage interface {
	GetItem(ctx context.Context, key string) (string, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}
