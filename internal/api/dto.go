package api

import (
	"github.com/starford/echonotes/internal/checksum"
	"github.com/starford/echonotes/internal/dashboard"
	"github.com/starford/echonotes/internal/graph"
	"github.com/starford/echonotes/internal/models"
	"github.com/starford/echonotes/internal/parser"
	"github.com/starford/echonotes/internal/theme"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest = models.NoteInput

// UpdateNoteRequest is the request body for an editor save.
type UpdateNoteRequest = models.NoteEdit

// NoteDetail is a note plus the checksum of its vault file, used as ETag.
type NoteDetail struct {
	models.Note
	Checksum string `json:"checksum" example:"abc123..."`
}

func noteDetail(n models.Note) NoteDetail {
	return NoteDetail{Note: n, Checksum: noteChecksum(n)}
}

// noteChecksum hashes the encoded vault file of n.
func noteChecksum(n models.Note) string {
	data, err := parser.Encode(n)
	if err != nil {
		return ""
	}
	return checksum.Sum(data)
}

// checksumMatches reports whether the encoded file of n still hashes to want.
func checksumMatches(n models.Note, want string) bool {
	data, err := parser.Encode(n)
	return err == nil && checksum.Match(data, want)
}

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []models.Note `json:"notes" validate:"required"`
	Total int           `json:"total" example:"7" validate:"required"`
}

// MoveNoteRequest assigns a note to a folder.
type MoveNoteRequest struct {
	FolderID string `json:"folderId" example:"2" validate:"required"`
}

// MoveNoteResponse reports the note after a move.
type MoveNoteResponse struct {
	Note  models.Note `json:"note"`
	Moved bool        `json:"moved"`
}

// DropRequest describes the end of a drag gesture.
type DropRequest struct {
	ActiveID     string `json:"activeId" example:"101"`
	OverID       string `json:"overId" example:"folder-2"`
	OverFolderID string `json:"overFolderId,omitempty" example:"2"`
}

// DropResponse reports what a drop did.
type DropResponse struct {
	Action dashboard.DropAction `json:"action" example:"move"`
}

// EdgeRequest creates an edge directly.
type EdgeRequest struct {
	Source string               `json:"source" example:"101" validate:"required"`
	Target string               `json:"target" example:"102" validate:"required"`
	Type   graph.ConnectionType `json:"type" example:"reference"`
}

// EdgeTypeRequest restyles an edge.
type EdgeTypeRequest struct {
	Type graph.ConnectionType `json:"type" example:"bidirectional" validate:"required"`
}

// ConnectRequest enters connect mode.
type ConnectRequest struct {
	Source string               `json:"source" example:"101" validate:"required"`
	Type   graph.ConnectionType `json:"type" example:"subordinate"`
}

// PositionRequest pins a node.
type PositionRequest = graph.Position

// ThemeRequest sets the theme color. Opacity is a percentage and defaults
// to 100.
type ThemeRequest struct {
	Color   string   `json:"color" example:"#0f766e" validate:"required"`
	Opacity *float64 `json:"opacity,omitempty" example:"80"`
}

// PresetsResponse lists the background picker colors.
type PresetsResponse struct {
	Presets []string `json:"presets"`
	Default string   `json:"default"`
}

// CategoryRequest creates a custom category.
type CategoryRequest struct {
	Name string `json:"name" example:"Ideas" validate:"required"`
}

// TrashViewRequest switches the note list between trash and active notes.
type TrashViewRequest struct {
	Show bool `json:"show" example:"false"`
}

// TrashViewResponse reports the selection left after a view switch.
type TrashViewResponse struct {
	Show     bool        `json:"show"`
	Selected *NoteDetail `json:"selected"`
}

// SettingRequest sets a boolean flag.
type SettingRequest struct {
	Value bool `json:"value"`
}

// ThemeResponse is the active theme.
type ThemeResponse = theme.Active
