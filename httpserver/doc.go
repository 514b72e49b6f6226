/*
Package httpserver implements the HTTP front of the vhost gateway.

A single listener serves two kinds of traffic:

 1. The control API, under the reserved /api prefix, for managing vhost
    bindings.
 2. Everything else, which is resolved and rewritten by the proxy package
    and forwarded to the content gateway.

# Control API Endpoints

  - GET /api/vhosts - List all vhost bindings
  - GET /api/vhosts/{name} - Get a single binding
  - POST /api/vhosts - Create a binding ({"name": ..., "cid": ...})
  - PUT /api/vhosts/{name} - Re-point an existing binding ({"cid": ...})
  - DELETE /api/vhosts/{name} - Remove a binding

Mutations are published to the durable record before a success status is
returned. Validation failures map to 4xx codes with a JSON error body;
publish failures map to 500.

# Diagnostics

  - GET /livez - Liveness check
  - GET /readyz - Readiness check
  - GET /drain - Gracefully mark server as not ready
  - GET /undrain - Mark server as ready

Optional pprof endpoints are mounted under /debug when enabled. TLS
termination is enabled by configuring a certificate and key file pair.
*/
package httpserver
