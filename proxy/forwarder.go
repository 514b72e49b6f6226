package proxy

import (
	"log/slog"
	"net/http"
	"net/http/httputil"

	"github.com/VictoriaMetrics/metrics"
	"github.com/ruteri/ipfs-vhost-gateway/interfaces"
)

var (
	forwardedCounter   = metrics.GetOrCreateCounter("vhost_proxy_requests_total")
	forwardErrCounter  = metrics.GetOrCreateCounter("vhost_proxy_forward_errors_total")
	passThroughCounter = metrics.GetOrCreateCounter(`vhost_proxy_rewrites_total{kind="passthrough"}`)
	pathRewriteCounter = metrics.GetOrCreateCounter(`vhost_proxy_rewrites_total{kind="path"}`)
	hostRewriteCounter = metrics.GetOrCreateCounter(`vhost_proxy_rewrites_total{kind="host"}`)
)

// SnapshotSource provides the current vhost mapping. Satisfied by
// registry.VhostRegistry.
type SnapshotSource interface {
	Snapshot() interfaces.Mapping
}

// Forwarder is the reverse proxy that sends rewritten requests to the
// downstream gateway. Resolution and rewriting happen per request against
// the snapshot current at that instant.
type Forwarder struct {
	rewriter *Rewriter
	source   SnapshotSource
	proxy    *httputil.ReverseProxy
	log      *slog.Logger
}

// NewForwarder creates a forwarder sending all traffic to the rewriter's
// gateway.
func NewForwarder(rewriter *Rewriter, source SnapshotSource, log *slog.Logger) *Forwarder {
	f := &Forwarder{
		rewriter: rewriter,
		source:   source,
		log:      log,
	}

	f.proxy = &httputil.ReverseProxy{
		Director: f.director,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			forwardErrCounter.Inc()
			log.Error("Failed to forward request to gateway",
				slog.String("host", r.Host),
				slog.String("path", r.URL.Path),
				"err", err)
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("failed to reach content gateway\n"))
		},
	}
	return f
}

func (f *Forwarder) director(req *http.Request) {
	gateway := f.rewriter.Gateway()
	decision := f.rewriter.Decide(req.Host, req.URL.Path, f.source.Snapshot())

	req.URL.Scheme = gateway.Scheme
	req.URL.Host = gateway.Host

	switch decision.Kind {
	case HostRewrite:
		hostRewriteCounter.Inc()
		req.Host = decision.Host
		req.URL.Path = decision.Path
		req.URL.RawPath = ""
	case PathRewrite:
		pathRewriteCounter.Inc()
		req.Host = gateway.Host
		req.URL.Path = decision.Path
		req.URL.RawPath = ""
	default:
		// Pass through with host and path unmodified, e.g. for requests
		// already in canonical /ipfs/<cid> form.
		passThroughCounter.Inc()
	}

	f.log.Debug("Forwarding request",
		slog.String("rewrite", decision.Kind.String()),
		slog.String("outboundHost", req.Host),
		slog.String("outboundPath", req.URL.Path))
}

// ServeHTTP implements http.Handler.
func (f *Forwarder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	forwardedCounter.Inc()
	f.proxy.ServeHTTP(w, r)
}
