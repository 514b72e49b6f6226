// Package metrics exposes Prometheus-format metrics on a dedicated listen address.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	vmetrics "github.com/VictoriaMetrics/metrics"
)

// MetricsServer serves the /metrics endpoint.
type MetricsServer struct {
	namespace string
	srv       *http.Server
}

// New creates a metrics server for the given namespace, listening on addr.
func New(namespace, addr string) (*MetricsServer, error) {
	if namespace == "" {
		return nil, fmt.Errorf("metrics namespace must not be empty")
	}

	s := &MetricsServer{namespace: namespace}

	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		vmetrics.WritePrometheus(w, true)
	})

	s.srv = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s, nil
}

func (s *MetricsServer) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
