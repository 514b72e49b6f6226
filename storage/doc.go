// Package storage provides interfaces.StorageClient implementations: an
// IPFS-backed client for production and an in-memory client for tests.
package storage

import "github.com/ruteri/ipfs-vhost-gateway/interfaces"

var (
	_ interfaces.StorageClient = (*IPFSClient)(nil)
	_ interfaces.StorageClient = (*MemoryClient)(nil)
)
