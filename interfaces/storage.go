package interfaces

import (
	"context"
	"errors"
	"time"
)

// StorageClient is the boundary to the content-addressed storage network.
// The vhost registry persists its durable record through this interface:
// the serialized mapping is stored as a content-addressed blob and referenced
// by a mutable, signed name record.
type StorageClient interface {
	// FetchByPath retrieves the bytes behind a content path, either
	// immutable ("/ipfs/<cid>") or mutable ("/ipns/<name>").
	FetchByPath(ctx context.Context, path string) ([]byte, error)

	// AddContent stores data as a content-addressed blob and returns its CID.
	AddContent(ctx context.Context, data []byte) (string, error)

	// PublishName re-points the mutable name record at the given CID.
	PublishName(ctx context.Context, cid string, opts PublishOptions) error

	// Available reports whether the storage node is reachable.
	Available(ctx context.Context) bool
}

// PublishOptions controls how a name record is published.
type PublishOptions struct {
	// Key identifies the private key the record is signed with.
	Key string

	// Lifetime is the validity window of the published record.
	Lifetime time.Duration
}

var (
	// ErrContentNotFound indicates the requested content path does not resolve.
	ErrContentNotFound = errors.New("content not found")

	// ErrBackendUnavailable indicates the storage node is not reachable.
	ErrBackendUnavailable = errors.New("storage backend unavailable")
)
