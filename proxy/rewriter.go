package proxy

import (
	"errors"
	"net"
	"net/url"
	"strings"

	"github.com/ruteri/ipfs-vhost-gateway/cidutil"
	"github.com/ruteri/ipfs-vhost-gateway/interfaces"
)

// RewriteKind classifies the rewriter's decision for a request.
type RewriteKind int

const (
	// PassThrough forwards the request unchanged: no vhost resolved, or the
	// request is already in canonical "/ipfs/<cid>/..." form.
	PassThrough RewriteKind = iota

	// PathRewrite moves the resolved content address into the outbound path.
	PathRewrite

	// HostRewrite moves the resolved content address into the outbound Host,
	// for gateways that support subdomain addressing.
	HostRewrite
)

func (k RewriteKind) String() string {
	switch k {
	case PathRewrite:
		return "path"
	case HostRewrite:
		return "host"
	default:
		return "passthrough"
	}
}

// Rewrite is the outbound addressing decision for one request. Path is
// always the outbound request path; Host is set only for HostRewrite.
type Rewrite struct {
	Kind RewriteKind
	Path string
	Host string
}

// Rewriter turns a resolved vhost into the addressing scheme the downstream
// gateway expects.
type Rewriter struct {
	gateway    *url.URL
	subdomains bool
}

// NewRewriter creates a rewriter for the given gateway base address. Gateways
// addressed by a DNS name are assumed to support subdomain addressing;
// IP-addressed gateways cannot host content-identifying subdomains and get
// path rewrites only.
func NewRewriter(gatewayURL string) (*Rewriter, error) {
	u, err := url.Parse(gatewayURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.New("gateway address must include scheme and host")
	}

	return &Rewriter{
		gateway:    u,
		subdomains: net.ParseIP(u.Hostname()) == nil,
	}, nil
}

// Gateway returns the parsed gateway base address.
func (rw *Rewriter) Gateway() *url.URL {
	return rw.gateway
}

// SupportsSubdomains reports whether the gateway accepts
// "<cid>.ipfs.<host>" addressing.
func (rw *Rewriter) SupportsSubdomains() bool {
	return rw.subdomains
}

// Decide resolves the request against the snapshot and produces the outbound
// rewrite. Host-based resolution is always attempted before path-based: the
// hostname already disambiguates the content, so a path that happens to
// collide with another vhost name is left untouched.
//
// A vhost whose CID vanished from the snapshot between resolution and
// rewrite (snapshot replaced under registry churn) degrades to pass-through
// rather than erroring.
func (rw *Rewriter) Decide(hostHeader, path string, m interfaces.Mapping) Rewrite {
	if name, ok := ResolveHost(hostHeader, m); ok {
		if decision, ok := rw.rewriteFor(name, path, m); ok {
			return decision
		}
	}

	if name, ok := ResolvePath(path, m); ok {
		rest := strings.TrimPrefix(path, "/"+name)
		if decision, ok := rw.rewriteFor(name, rest, m); ok {
			return decision
		}
	}

	return Rewrite{Kind: PassThrough, Path: path}
}

// rewriteFor builds the rewrite for a resolved vhost. rest is the content's
// application-internal path: the full request path for host-based
// resolution, the remainder after the "/<name>" prefix for path-based.
func (rw *Rewriter) rewriteFor(name, rest string, m interfaces.Mapping) (Rewrite, bool) {
	cid, ok := m[name]
	if !ok {
		return Rewrite{}, false
	}

	if rw.subdomains {
		safe, err := cidutil.ToSubdomainSafe(cid)
		if err != nil {
			return Rewrite{}, false
		}
		if rest == "" {
			rest = "/"
		}
		return Rewrite{
			Kind: HostRewrite,
			Host: safe + ".ipfs." + rw.gateway.Host,
			Path: rest,
		}, true
	}

	return Rewrite{
		Kind: PathRewrite,
		Path: "/ipfs/" + cid + rest,
	}, true
}
