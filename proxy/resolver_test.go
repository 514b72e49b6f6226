package proxy

import (
	"testing"

	"github.com/ruteri/ipfs-vhost-gateway/interfaces"
	"github.com/stretchr/testify/assert"
)

const (
	cidA = "bafybeictjmxvlw7xuzubam2wuzjruwknbdmnprehzlliba4azjhan7f2fa"
	cidB = "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"
)

func testMapping() interfaces.Mapping {
	return interfaces.Mapping{"a": cidA, "b": cidB}
}

func TestResolveHost(t *testing.T) {
	m := testMapping()

	tests := []struct {
		host     string
		expected string
		ok       bool
	}{
		{"a.example.com", "a", true},
		{"a.example.com:8080", "a", true},
		{"a", "a", true},
		{"b.gateway.local", "b", true},
		{"c.example.com", "", false},
		{"example.com", "", false},
		{"127.0.0.1", "", false},
		{"127.0.0.1:8080", "", false},
		{"[::1]:8080", "", false},
		{"::1", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		name, ok := ResolveHost(tt.host, m)
		assert.Equal(t, tt.ok, ok, "host %q", tt.host)
		assert.Equal(t, tt.expected, name, "host %q", tt.host)
	}
}

func TestResolveHost_EmptySnapshot(t *testing.T) {
	_, ok := ResolveHost("a.example.com", interfaces.Mapping{})
	assert.False(t, ok)
}

func TestResolvePath(t *testing.T) {
	m := testMapping()

	tests := []struct {
		path     string
		expected string
		ok       bool
	}{
		{"/a", "a", true},
		{"/a/", "a", true},
		{"/a/index.html", "a", true},
		{"/b/deep/nested/file.css", "b", true},
		{"/ab", "", false}, // label match, not prefix substring
		{"/c", "", false},
		{"/", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		name, ok := ResolvePath(tt.path, m)
		assert.Equal(t, tt.ok, ok, "path %q", tt.path)
		assert.Equal(t, tt.expected, name, "path %q", tt.path)
	}
}
