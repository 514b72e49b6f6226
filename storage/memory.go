package storage

import (
	"context"
	"strings"
	"sync"

	"github.com/ruteri/ipfs-vhost-gateway/cidutil"
	"github.com/ruteri/ipfs-vhost-gateway/interfaces"
)

// MemoryClient is an in-memory interfaces.StorageClient for tests and
// offline development. Blobs are keyed by a real CID so the rest of the
// system sees valid content addresses.
type MemoryClient struct {
	mu    sync.Mutex
	blobs map[string][]byte // cid -> content
	names map[string]string // key name -> cid

	// Fault injection for tests.
	FailFetch   error
	FailAdd     error
	FailPublish error
	Down        bool
}

// NewMemoryClient creates an empty in-memory storage client.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		blobs: make(map[string][]byte),
		names: make(map[string]string),
	}
}

// FetchByPath resolves "/ipfs/<cid>" directly and "/ipns/<key>" through the
// name records, mirroring the paths the registry uses.
func (c *MemoryClient) FetchByPath(ctx context.Context, path string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Down {
		return nil, interfaces.ErrBackendUnavailable
	}
	if c.FailFetch != nil {
		return nil, c.FailFetch
	}

	var cid string
	switch {
	case strings.HasPrefix(path, "/ipns/"):
		name := strings.TrimPrefix(path, "/ipns/")
		resolved, ok := c.names[name]
		if !ok {
			return nil, interfaces.ErrContentNotFound
		}
		cid = resolved
	case strings.HasPrefix(path, "/ipfs/"):
		cid = strings.TrimPrefix(path, "/ipfs/")
	default:
		cid = path
	}

	data, ok := c.blobs[cid]
	if !ok {
		return nil, interfaces.ErrContentNotFound
	}
	return data, nil
}

// AddContent stores data under its derived CIDv1.
func (c *MemoryClient) AddContent(ctx context.Context, data []byte) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Down {
		return "", interfaces.ErrBackendUnavailable
	}
	if c.FailAdd != nil {
		return "", c.FailAdd
	}

	cid := cidutil.CIDv1RawSHA256(data)
	c.blobs[cid] = append([]byte(nil), data...)
	return cid, nil
}

// PublishName points the record for opts.Key at cid.
func (c *MemoryClient) PublishName(ctx context.Context, cid string, opts interfaces.PublishOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Down {
		return interfaces.ErrBackendUnavailable
	}
	if c.FailPublish != nil {
		return c.FailPublish
	}

	c.names[opts.Key] = cid
	return nil
}

// Available reports the injected availability state.
func (c *MemoryClient) Available(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.Down
}

// Resolve returns the CID a name record currently points at, for assertions.
func (c *MemoryClient) Resolve(name string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cid, ok := c.names[name]
	return cid, ok
}
