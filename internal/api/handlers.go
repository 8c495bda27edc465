package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/echonotes/internal/apperr"
	"github.com/starford/echonotes/internal/dashboard"
	"github.com/starford/echonotes/internal/models"
	"github.com/starford/echonotes/internal/notes"
	"github.com/starford/echonotes/internal/workspaces"
)

// Handler holds API route handlers.
type Handler struct {
	shell      *dashboard.Shell
	workspaces *workspaces.Service
}

// NewHandler creates a new Handler.
func NewHandler(shell *dashboard.Shell, ws *workspaces.Service) *Handler {
	return &Handler{shell: shell, workspaces: ws}
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List notes of the active or trash partition
//	@Tags			notes
//	@Produce		json
//	@Param			trash	query		bool	false	"List the trash instead of active notes"
//	@Param			q		query		string	false	"Case-insensitive filter over title, content and tags"
//	@Param			folder	query		string	false	"Restrict to active notes of a folder; rejected together with trash"
//	@Success		200		{object}	NoteListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	trash, _ := strconv.ParseBool(q.Get("trash"))
	query := q.Get("q")

	var list []models.Note
	if folder := q.Get("folder"); folder != "" {
		if trash {
			writeJSON(w, http.StatusBadRequest, errorBody("folder and trash cannot be combined"))
			return
		}
		inFolder, err := h.shell.FolderNotes(folder)
		if err != nil {
			writeError(w, "list notes", err)
			return
		}
		for _, n := range inFolder {
			if notes.Matches(n, query) {
				list = append(list, n)
			}
		}
	} else {
		list = h.shell.ListNotes(trash, query)
	}
	if list == nil {
		list = []models.Note{}
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: list, Total: len(list)})
}

// GetNote handles GET /api/notes/{id}.
//
//	@Summary		Get a single note
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		string	true	"Note id"
//	@Success		200	{object}	NoteDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	n, err := h.shell.Note(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get note", err)
		return
	}
	w.Header().Set("ETag", strconv.Quote(noteChecksum(n)))
	writeJSON(w, http.StatusOK, noteDetail(n))
}

// CreateNote handles POST /api/notes.
//
//	@Summary		Create a note at the head of the list
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateNoteRequest	true	"Note to create"
//	@Success		201		{object}	NoteDetail
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	n, err := h.shell.CreateNote(r.Context(), req)
	if err != nil {
		writeError(w, "create note", err)
		return
	}
	writeJSON(w, http.StatusCreated, noteDetail(n))
}

// UpdateNote handles PUT /api/notes/{id}.
//
//	@Summary		Save a note with optimistic concurrency
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			id			path	string				true	"Note id"
//	@Param			If-Match	header	string				false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body	UpdateNoteRequest	true	"Edited fields"
//	@Success		200		{object}	NoteDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [put]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)
	var check func(models.Note) error
	if ifMatch != "" {
		check = func(cur models.Note) error {
			if !checksumMatches(cur, ifMatch) {
				return fmt.Errorf("note %s: %w", id, apperr.ErrConflict)
			}
			return nil
		}
	}

	n, err := h.shell.SaveNoteIf(r.Context(), id, req, check)
	if err != nil {
		writeError(w, "update note", err)
		return
	}
	writeJSON(w, http.StatusOK, noteDetail(n))
}

// TrashNote handles POST /api/notes/{id}/trash.
func (h *Handler) TrashNote(w http.ResponseWriter, r *http.Request) {
	n, err := h.shell.TrashNote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "trash note", err)
		return
	}
	writeJSON(w, http.StatusOK, noteDetail(n))
}

// RestoreNote handles POST /api/notes/{id}/restore.
func (h *Handler) RestoreNote(w http.ResponseWriter, r *http.Request) {
	n, err := h.shell.RestoreNote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "restore note", err)
		return
	}
	writeJSON(w, http.StatusOK, noteDetail(n))
}

// DeleteNote handles DELETE /api/notes/{id}. Only trashed notes can be
// deleted.
//
//	@Summary		Permanently delete a trashed note
//	@Tags			notes
//	@Param			id	path	string	true	"Note id"
//	@Success		204	"Note deleted"
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.shell.DeleteNote(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveNote handles PUT /api/notes/{id}/folder.
func (h *Handler) MoveNote(w http.ResponseWriter, r *http.Request) {
	var req MoveNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	n, moved, err := h.shell.MoveNoteToFolder(r.Context(), chi.URLParam(r, "id"), req.FolderID)
	if err != nil {
		writeError(w, "move note", err)
		return
	}
	writeJSON(w, http.StatusOK, MoveNoteResponse{Note: n, Moved: moved})
}

// SelectNote handles POST /api/notes/{id}/select.
func (h *Handler) SelectNote(w http.ResponseWriter, r *http.Request) {
	n, err := h.shell.SelectNote(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "select note", err)
		return
	}
	writeJSON(w, http.StatusOK, noteDetail(n))
}

// Selected handles GET /api/notes/selected.
func (h *Handler) Selected(w http.ResponseWriter, r *http.Request) {
	n, ok := h.shell.Selected()
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("no note selected"))
		return
	}
	writeJSON(w, http.StatusOK, noteDetail(n))
}

// ShowTrash handles PUT /api/view/trash.
func (h *Handler) ShowTrash(w http.ResponseWriter, r *http.Request) {
	var req TrashViewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp := TrashViewResponse{Show: req.Show}
	if n, ok := h.shell.ShowTrash(req.Show); ok {
		d := noteDetail(n)
		resp.Selected = &d
	}
	writeJSON(w, http.StatusOK, resp)
}

// Drop handles POST /api/dnd/drop.
func (h *Handler) Drop(w http.ResponseWriter, r *http.Request) {
	var req DropRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	act, err := h.shell.DragEnd(r.Context(), req.ActiveID, req.OverID, req.OverFolderID)
	if err != nil {
		writeError(w, "drop", err)
		return
	}
	writeJSON(w, http.StatusOK, DropResponse{Action: act})
}

// Folders handles GET /api/folders.
func (h *Handler) Folders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"folders": h.shell.Folders(r.URL.Query().Get("q")),
	})
}
