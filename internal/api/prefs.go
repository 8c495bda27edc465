package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/echonotes/internal/settings"
	"github.com/starford/echonotes/internal/theme"
	"github.com/starford/echonotes/internal/workspaces"
)

// Theme handles GET /api/theme.
func (h *Handler) Theme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.shell.ActiveTheme(r.Context()))
}

// SetTheme handles PUT /api/theme.
//
//	@Summary		Set the dashboard background color
//	@Tags			theme
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ThemeRequest	true	"Base color and opacity percent"
//	@Success		200		{object}	ThemeResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/theme [put]
func (h *Handler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req ThemeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	opacity := 100.0
	if req.Opacity != nil {
		opacity = *req.Opacity
	}
	a, err := h.shell.SetThemeColor(r.Context(), req.Color, opacity)
	if err != nil {
		writeError(w, "set theme", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// ResetTheme handles POST /api/theme/reset.
func (h *Handler) ResetTheme(w http.ResponseWriter, r *http.Request) {
	a, err := h.shell.ResetTheme(r.Context())
	if err != nil {
		writeError(w, "reset theme", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// ThemePresets handles GET /api/theme/presets.
func (h *Handler) ThemePresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, PresetsResponse{Presets: theme.Presets, Default: theme.DefaultColor})
}

// Categories handles GET /api/categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": h.shell.Categories(r.Context())})
}

// CreateCategory handles POST /api/categories.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.shell.AddCategory(r.Context(), req.Name)
	if err != nil {
		writeError(w, "create category", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// DeleteCategory handles DELETE /api/categories/{id}.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.shell.RemoveCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Settings handles GET /api/settings.
func (h *Handler) Settings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.shell.Settings(r.Context()))
}

// SetSetting handles PUT /api/settings/{key}, where key is a flag name such
// as enableDragDrop.
func (h *Handler) SetSetting(w http.ResponseWriter, r *http.Request) {
	f, ok := settings.ParseFlag(chi.URLParam(r, "key"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("unknown setting"))
		return
	}
	var req SettingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	snap, err := h.shell.SetFlag(r.Context(), f, req.Value)
	if err != nil {
		writeError(w, "set setting", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Workspaces handles GET /api/workspaces.
func (h *Handler) Workspaces(w http.ResponseWriter, r *http.Request) {
	list, err := h.workspaces.List(r.Context())
	if err != nil {
		writeError(w, "list workspaces", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"workspaces": list})
}

// CreateWorkspace handles POST /api/workspaces.
//
//	@Summary		Create a workspace
//	@Tags			workspaces
//	@Accept			json
//	@Produce		json
//	@Param			body	body		workspaces.Input	true	"Workspace to create"
//	@Success		201		{object}	models.Workspace
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/workspaces [post]
func (h *Handler) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var req workspaces.Input
	if !decodeJSON(w, r, &req) {
		return
	}
	ws, err := h.workspaces.Create(r.Context(), req)
	if err != nil {
		writeError(w, "create workspace", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"workspace": ws})
}
