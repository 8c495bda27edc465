// Package models defines the domain types for EchoNotes.
package models

import (
	"time"
	"unicode/utf8"
)

// JustNow is the display timestamp given to freshly created or saved notes.
const JustNow = "Just now"

// ExcerptLength is the number of characters of content kept in an excerpt.
const ExcerptLength = 100

// Note is a user-authored Markdown document.
type Note struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Excerpt   string   `json:"excerpt"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
	Updated   string   `json:"updated"`
	IsInTrash bool     `json:"isInTrash"`
	FolderID  string   `json:"folderId,omitempty"`
}

// Clone returns a copy of n that shares no slices with it.
func (n Note) Clone() Note {
	if n.Tags != nil {
		n.Tags = append([]string(nil), n.Tags...)
	}
	return n
}

// NoteInput carries the user-supplied fields of a new note.
type NoteInput struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Excerpt  string   `json:"excerpt"`
	Tags     []string `json:"tags"`
	FolderID string   `json:"folderId,omitempty"`
}

// NoteEdit carries the editable fields of an existing note.
type NoteEdit struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// Excerpt returns the first ExcerptLength characters of content, followed by
// an ellipsis when the content was truncated.
func Excerpt(content string) string {
	if utf8.RuneCountInString(content) <= ExcerptLength {
		return content
	}
	runes := []rune(content)
	return string(runes[:ExcerptLength]) + "..."
}

// Folder is a named grouping of notes. Membership lives on Note.FolderID.
type Folder struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// FolderView is a folder together with the notes currently shown under it.
type FolderView struct {
	Folder
	Notes []Note `json:"notes"`
}

// FileMetadata is a lightweight description of a note file in the vault.
type FileMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Workspace is a top-level named container created before using the dashboard.
type Workspace struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	EmojiLogo   string    `json:"emojiLogo"`
	Banner      string    `json:"banner"`
	CreatedAt   time.Time `json:"createdAt"`
}
