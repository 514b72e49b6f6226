package proxy

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/ruteri/ipfs-vhost-gateway/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	m interfaces.Mapping
}

func (s staticSource) Snapshot() interfaces.Mapping { return s.m }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestForwarder_PathRewriteEndToEnd(t *testing.T) {
	var gotPath, gotHost string
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotHost = r.Host
		w.Write([]byte("content"))
	}))
	defer gateway.Close()

	// httptest serves on an IP literal, so the gateway is path-only.
	rw, err := NewRewriter(gateway.URL)
	require.NoError(t, err)
	require.False(t, rw.SupportsSubdomains())

	f := NewForwarder(rw, staticSource{interfaces.Mapping{"hello": cidA}}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/hello/index.html", nil)
	req.Host = "gateway.local"
	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, req)

	resp := rec.Result()
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "content", string(body))
	assert.Equal(t, "/ipfs/"+cidA+"/index.html", gotPath)

	gatewayURL, err := url.Parse(gateway.URL)
	require.NoError(t, err)
	assert.Equal(t, gatewayURL.Host, gotHost)
}

func TestForwarder_PassThroughEndToEnd(t *testing.T) {
	var gotPath, gotHost string
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotHost = r.Host
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()

	rw, err := NewRewriter(gateway.URL)
	require.NoError(t, err)

	f := NewForwarder(rw, staticSource{testMapping()}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/unmapped/thing", nil)
	req.Host = "example.com"
	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/unmapped/thing", gotPath, "pass-through must not modify the path")
	assert.Equal(t, "example.com", gotHost, "pass-through must not modify the host")
}

func TestForwarder_GatewayUnreachable(t *testing.T) {
	// A closed port: the forward fails and the client sees a plain 500.
	rw, err := NewRewriter("http://127.0.0.1:1")
	require.NoError(t, err)

	f := NewForwarder(rw, staticSource{interfaces.Mapping{}}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
}

func TestForwarder_SubdomainDirector(t *testing.T) {
	rw, err := NewRewriter("http://gw.example.com")
	require.NoError(t, err)

	f := NewForwarder(rw, staticSource{interfaces.Mapping{"hello": cidA}}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/app/page.html", nil)
	req.Host = "hello.example.com"
	f.director(req)

	assert.Equal(t, cidA+".ipfs.gw.example.com", req.Host)
	assert.Equal(t, "/app/page.html", req.URL.Path)
	assert.Equal(t, "gw.example.com", req.URL.Host)
	assert.Equal(t, "http", req.URL.Scheme)
}
