package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	shell "github.com/ipfs/go-ipfs-api"
	"github.com/ruteri/ipfs-vhost-gateway/interfaces"
)

// IPFSClient implements interfaces.StorageClient against an IPFS node's
// HTTP API. Content blobs are stored via add, the durable record pointer is
// maintained as an IPNS name record.
type IPFSClient struct {
	shell       *shell.Shell
	apiAddr     string
	log         *slog.Logger
	locationURI string
}

// NewIPFSClient creates a storage client connected to the IPFS API at apiAddr
// (host:port or multiaddr, as accepted by go-ipfs-api).
func NewIPFSClient(apiAddr string, log *slog.Logger) *IPFSClient {
	return &IPFSClient{
		shell:       shell.NewShell(apiAddr),
		apiAddr:     apiAddr,
		log:         log,
		locationURI: fmt.Sprintf("ipfs://%s/", apiAddr),
	}
}

// FetchByPath retrieves the bytes behind an immutable ("/ipfs/<cid>") or
// mutable ("/ipns/<name>") content path. Returns ErrContentNotFound when the
// path does not resolve and ErrBackendUnavailable when the node is down.
func (c *IPFSClient) FetchByPath(ctx context.Context, path string) ([]byte, error) {
	start := time.Now()

	if !c.shell.IsUp() {
		c.log.Warn("IPFS node unavailable", slog.String("api", c.apiAddr))
		return nil, interfaces.ErrBackendUnavailable
	}

	reader, err := c.shell.Cat(path)
	if err != nil {
		if strings.Contains(err.Error(), "no link named") || strings.Contains(err.Error(), "could not resolve name") {
			c.log.Debug("Content not found in IPFS",
				slog.String("path", path),
				slog.Duration("duration", time.Since(start)))
			return nil, interfaces.ErrContentNotFound
		}

		c.log.Error("Failed to fetch data from IPFS",
			slog.String("path", path),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return nil, fmt.Errorf("failed to fetch data from IPFS: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		c.log.Error("Failed to read data from IPFS",
			slog.String("path", path),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return nil, fmt.Errorf("failed to read data from IPFS: %w", err)
	}

	c.log.Debug("Fetched content from IPFS",
		slog.String("path", path),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))

	return data, nil
}

// AddContent stores data as a content-addressed blob and returns its CID.
func (c *IPFSClient) AddContent(ctx context.Context, data []byte) (string, error) {
	if !c.shell.IsUp() {
		return "", interfaces.ErrBackendUnavailable
	}

	cid, err := c.shell.Add(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to add data to IPFS: %w", err)
	}

	c.log.Debug("Stored content in IPFS",
		slog.String("cid", cid),
		slog.Int("size", len(data)))

	return cid, nil
}

// PublishName re-points the IPNS record signed by opts.Key at the given CID.
func (c *IPFSClient) PublishName(ctx context.Context, cid string, opts interfaces.PublishOptions) error {
	if !c.shell.IsUp() {
		return interfaces.ErrBackendUnavailable
	}

	start := time.Now()
	resp, err := c.shell.PublishWithDetails("/ipfs/"+cid, opts.Key, opts.Lifetime, opts.Lifetime, false)
	if err != nil {
		return fmt.Errorf("failed to publish name record: %w", err)
	}

	c.log.Debug("Published name record",
		slog.String("name", resp.Name),
		slog.String("cid", cid),
		slog.String("key", opts.Key),
		slog.Duration("duration", time.Since(start)))

	return nil
}

// Available reports whether the IPFS node is reachable.
func (c *IPFSClient) Available(ctx context.Context) bool {
	return c.shell.IsUp()
}

// LocationURI returns the URI identifying this storage client.
func (c *IPFSClient) LocationURI() string {
	return c.locationURI
}
