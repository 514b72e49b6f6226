// Package interfaces defines the core types and interfaces for the vhost
// gateway, separating the contract between components from implementations.
package interfaces

import (
	"errors"
	"sort"
)

// ReservedVhostNames are names that can never be registered as vhosts:
// the control-plane path prefix, the literal host segment used for raw
// content access, and the loopback hostname.
var ReservedVhostNames = map[string]bool{
	"api":       true,
	"ipfs":      true,
	"localhost": true,
}

// VhostName is a human-friendly, case-sensitive site name. It doubles as a
// hostname label and as the first path segment for path-based addressing.
type VhostName string

// Valid reports whether the name is non-empty and not reserved.
func (n VhostName) Valid() bool {
	return n != "" && !ReservedVhostNames[string(n)]
}

// String returns the name as a plain string.
func (n VhostName) String() string {
	return string(n)
}

// VhostEntry binds a vhost name to the CID it serves.
type VhostEntry struct {
	Name string `json:"name"`
	CID  string `json:"cid"`
}

// Mapping is a vhost name to CID map. Its JSON form is exactly the durable
// record format: a flat object with names as keys and CID strings as values.
type Mapping map[string]string

// Clone returns a shallow copy of the mapping. The current snapshot is
// replaced wholesale and never mutated in place, so every mutation starts
// from a clone.
func (m Mapping) Clone() Mapping {
	next := make(Mapping, len(m))
	for name, cid := range m {
		next[name] = cid
	}
	return next
}

// Entries returns the mapping as a slice of entries sorted by name.
func (m Mapping) Entries() []VhostEntry {
	entries := make([]VhostEntry, 0, len(m))
	for name, cid := range m {
		entries = append(entries, VhostEntry{Name: name, CID: cid})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

var (
	// ErrNotFound indicates the requested vhost does not exist.
	ErrNotFound = errors.New("vhost not found")

	// ErrNameReserved indicates the vhost name collides with the reserved name set.
	ErrNameReserved = errors.New("vhost name not allowed")

	// ErrInvalidCID indicates the supplied string is not a well-formed CID.
	ErrInvalidCID = errors.New("invalid CID")
)
