package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ruteri/ipfs-vhost-gateway/api"
	"github.com/ruteri/ipfs-vhost-gateway/interfaces"
)

// maxBodySize is the maximum allowed request body size (1MB).
const maxBodySize = 1024 * 1024

// Handler processes control API requests: list/get/create/update/delete of
// vhost bindings. Mutations are durably published before a success status is
// returned; a publish failure surfaces as a 500 rather than a silent
// success.
type Handler struct {
	registry interfaces.VhostController
	log      *slog.Logger
}

// NewHandler creates a control API handler backed by the given registry.
func NewHandler(registry interfaces.VhostController, log *slog.Logger) *Handler {
	return &Handler{
		registry: registry,
		log:      log,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, api.ErrorResponse{Error: code})
}

// writeMutationError maps registry errors to control API responses.
func (h *Handler) writeMutationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, interfaces.ErrNameReserved):
		writeError(w, http.StatusUnauthorized, api.ErrorCodeNameNotAllowed)
	case errors.Is(err, interfaces.ErrInvalidCID):
		writeError(w, http.StatusBadRequest, api.ErrorCodeInvalidCID)
	case errors.Is(err, interfaces.ErrNotFound):
		writeError(w, http.StatusNotFound, api.ErrorCodeNotFound)
	default:
		h.log.Error("Vhost mutation failed", "err", err)
		writeError(w, http.StatusInternalServerError, api.ErrorCodePublishFailed)
	}
}

// HandleListVhosts handles GET /api/vhosts.
func (h *Handler) HandleListVhosts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.List(r.Context()))
}

// HandleGetVhost handles GET /api/vhosts/{name}.
func (h *Handler) HandleGetVhost(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	entry, err := h.registry.Get(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusNotFound, api.ErrorCodeNotFound)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// HandleCreateVhost handles POST /api/vhosts.
func (h *Handler) HandleCreateVhost(w http.ResponseWriter, r *http.Request) {
	var req api.CreateVhostRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, api.ErrorCodeBadRequest)
		return
	}

	if err := h.registry.Create(r.Context(), req.Name, req.CID); err != nil {
		h.writeMutationError(w, err)
		return
	}

	h.log.Info("Vhost created", slog.String("name", req.Name), slog.String("cid", req.CID))
	writeJSON(w, http.StatusCreated, interfaces.VhostEntry{Name: req.Name, CID: req.CID})
}

// HandleUpdateVhost handles PUT /api/vhosts/{name}.
func (h *Handler) HandleUpdateVhost(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req api.UpdateVhostRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, api.ErrorCodeBadRequest)
		return
	}

	if err := h.registry.Update(r.Context(), name, req.CID); err != nil {
		h.writeMutationError(w, err)
		return
	}

	h.log.Info("Vhost updated", slog.String("name", name), slog.String("cid", req.CID))
	writeJSON(w, http.StatusCreated, interfaces.VhostEntry{Name: name, CID: req.CID})
}

// HandleDeleteVhost handles DELETE /api/vhosts/{name}.
func (h *Handler) HandleDeleteVhost(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := h.registry.Delete(r.Context(), name); err != nil {
		h.writeMutationError(w, err)
		return
	}

	h.log.Info("Vhost deleted", slog.String("name", name))
	w.WriteHeader(http.StatusOK)
}
