package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/echonotes/internal/dashboard"
	"github.com/starford/echonotes/internal/workspaces"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(shell *dashboard.Shell, ws *workspaces.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(shell, ws)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/selected", h.Selected)
	r.Route("/notes/{id}", func(r chi.Router) {
		r.Get("/", h.GetNote)
		r.Put("/", h.UpdateNote)
		r.Delete("/", h.DeleteNote)
		r.Post("/trash", h.TrashNote)
		r.Post("/restore", h.RestoreNote)
		r.Post("/select", h.SelectNote)
		r.Put("/folder", h.MoveNote)
	})
	r.Put("/view/trash", h.ShowTrash)
	r.Post("/dnd/drop", h.Drop)
	r.Get("/folders", h.Folders)

	// Graph.
	r.Get("/graph", h.Graph)
	r.Post("/graph/edges", h.CreateEdge)
	r.Patch("/graph/edges/{id}", h.UpdateEdge)
	r.Delete("/graph/edges/{id}", h.DeleteEdge)
	r.Post("/graph/connect", h.StartConnecting)
	r.Post("/graph/cancel", h.CancelConnecting)
	r.Post("/graph/nodes/{id}/click", h.ClickNode)
	r.Put("/graph/nodes/{id}/position", h.MoveNode)

	// Preferences.
	r.Get("/theme", h.Theme)
	r.Put("/theme", h.SetTheme)
	r.Post("/theme/reset", h.ResetTheme)
	r.Get("/theme/presets", h.ThemePresets)
	r.Get("/categories", h.Categories)
	r.Post("/categories", h.CreateCategory)
	r.Delete("/categories/{id}", h.DeleteCategory)
	r.Get("/settings", h.Settings)
	r.Put("/settings/{key}", h.SetSetting)

	// Workspaces.
	r.Get("/workspaces", h.Workspaces)
	r.Post("/workspaces", h.CreateWorkspace)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
