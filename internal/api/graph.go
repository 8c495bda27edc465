package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/echonotes/internal/graph"
)

// Graph handles GET /api/graph.
//
//	@Summary		Get the note graph and connector state
//	@Tags			graph
//	@Produce		json
//	@Success		200	{object}	dashboard.GraphState
//	@Security		BearerAuth
//	@Router			/graph [get]
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.shell.Graph())
}

// CreateEdge handles POST /api/graph/edges.
func (h *Handler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	var req EdgeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := graph.ParseConnectionType(string(req.Type))
	if err != nil {
		writeError(w, "create edge", err)
		return
	}
	e, err := h.shell.Connect(req.Source, req.Target, t)
	if err != nil {
		writeError(w, "create edge", err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// UpdateEdge handles PATCH /api/graph/edges/{id}.
func (h *Handler) UpdateEdge(w http.ResponseWriter, r *http.Request) {
	var req EdgeTypeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	e, err := h.shell.ChangeEdgeType(chi.URLParam(r, "id"), req.Type)
	if err != nil {
		writeError(w, "update edge", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// DeleteEdge handles DELETE /api/graph/edges/{id}.
func (h *Handler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	if err := h.shell.RemoveEdge(chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete edge", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StartConnecting handles POST /api/graph/connect.
func (h *Handler) StartConnecting(w http.ResponseWriter, r *http.Request) {
	var req ConnectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := graph.ParseConnectionType(string(req.Type))
	if err != nil {
		writeError(w, "start connecting", err)
		return
	}
	st, err := h.shell.StartConnecting(req.Source, t)
	if err != nil {
		writeError(w, "start connecting", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// CancelConnecting handles POST /api/graph/cancel.
func (h *Handler) CancelConnecting(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": h.shell.CancelConnecting()})
}

// ClickNode handles POST /api/graph/nodes/{id}/click.
func (h *Handler) ClickNode(w http.ResponseWriter, r *http.Request) {
	res, err := h.shell.ClickNode(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "click node", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// MoveNode handles PUT /api/graph/nodes/{id}/position.
func (h *Handler) MoveNode(w http.ResponseWriter, r *http.Request) {
	var req PositionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.shell.MoveNode(chi.URLParam(r, "id"), req); err != nil {
		writeError(w, "move node", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
