// Package audio stores synthesized speech under opaque handles for later
// playback. Handles are URL-path safe and independent of the conversation
// log; pruning assets only degrades the affected turns to text-only.
package audio

import (
	"context"
	"errors"
)

var (
	// ErrNotFound signals an unknown or since-deleted handle. It is absence,
	// not failure: resolving a well-formed unknown handle is not an error
	// condition beyond this sentinel.
	ErrNotFound = errors.New("audio asset not found")

	ErrPersistence = errors.New("audio persistence failed")
)

// Resolver maps synthesized audio bytes to retrievable handles.
type Resolver interface {
	Store(ctx context.Context, data []byte, contentType string) (string, error)
	Resolve(ctx context.Context, handle string) ([]byte, string, error)
	Close() error
}
