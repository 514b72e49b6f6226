// Package cidutil provides pure helpers for converting between CID
// representations. Subdomain-based content addressing needs CIDs in their
// canonical version-1 base32 form, since DNS labels are case-insensitive
// and limited to a safe character set.
package cidutil

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multihash"
)

// IsValid reports whether s parses as a CID. It never panics; any parse
// failure simply means "not a CID".
func IsValid(s string) bool {
	_, err := cid.Decode(s)
	return err == nil
}

// ToSubdomainSafe converts a CID into a string usable as a DNS label:
// version-1, base32, lowercase, no padding. A CID already in that form is
// returned unchanged, so the conversion is idempotent.
func ToSubdomainSafe(s string) (string, error) {
	c, err := cid.Decode(s)
	if err != nil {
		return "", err
	}
	if c.Version() == 0 {
		c = cid.NewCidV1(c.Type(), c.Hash())
	}
	return c.StringOfBase(multibase.Base32)
}

// CIDv1RawSHA256 derives a CIDv1 (raw codec, sha2-256) for data. Used by the
// in-memory storage client so tests operate on real, parseable CIDs.
func CIDv1RawSHA256(data []byte) string {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		// unreachable with SHA2_256 and default length
		return ""
	}
	return cid.NewCidV1(cid.Raw, sum).String()
}
