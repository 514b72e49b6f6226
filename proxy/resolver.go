package proxy

import (
	"net"
	"strings"

	"github.com/ruteri/ipfs-vhost-gateway/interfaces"
)

// ResolveHost determines which vhost a request's Host header targets. Any
// port suffix is stripped first. IP-literal hosts never resolve, since they
// cannot carry a subdomain-style identifier. Otherwise the leftmost label
// (up to the first dot) must be a key of the mapping.
func ResolveHost(hostHeader string, m interfaces.Mapping) (string, bool) {
	host := hostHeader
	if h, _, err := net.SplitHostPort(hostHeader); err == nil {
		host = h
	}
	if net.ParseIP(host) != nil {
		return "", false
	}

	label, _, _ := strings.Cut(host, ".")
	if _, ok := m[label]; ok {
		return label, true
	}
	return "", false
}

// ResolvePath determines which vhost a request path targets: the path must
// equal "/<name>" or start with "/<name>/". A bare prefix substring is not a
// match, so "/ab" never resolves to vhost "a". The scan is O(vhosts) per
// request, acceptable since the mapping is small and snapshot-local.
func ResolvePath(path string, m interfaces.Mapping) (string, bool) {
	for name := range m {
		prefix := "/" + name
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return name, true
		}
	}
	return "", false
}
