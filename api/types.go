// Package api defines the wire types and error codes of the vhost control
// API, shared between the server and its clients.
package api

// ControlPathPrefix is the reserved path prefix the control API lives under.
// Requests outside it are proxied to the content gateway.
const ControlPathPrefix = "/api"

// CreateVhostRequest is the body of POST /api/vhosts.
type CreateVhostRequest struct {
	Name string `json:"name"`
	CID  string `json:"cid"`
}

// UpdateVhostRequest is the body of PUT /api/vhosts/{name}.
type UpdateVhostRequest struct {
	CID string `json:"cid"`
}

// ErrorResponse is the body of all non-2xx control API responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Control API error codes.
const (
	ErrorCodeNotFound       = "not_found"
	ErrorCodeNameNotAllowed = "name_not_allowed"
	ErrorCodeInvalidCID     = "invalid_cid"
	ErrorCodeBadRequest     = "bad_request"
	ErrorCodePublishFailed  = "publish_failed"
)
