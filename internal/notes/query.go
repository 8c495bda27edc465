package notes

import (
	"strings"

	"github.com/starford/echonotes/internal/models"
)

// FilterByTrashState returns the notes whose trash flag equals showTrash.
// The two views partition the collection.
func (s *Store) FilterByTrashState(showTrash bool) []models.Note {
	out := make([]models.Note, 0, len(s.notes))
	for _, n := range s.notes {
		if n.IsInTrash == showTrash {
			out = append(out, n.Clone())
		}
	}
	return out
}

// Active returns every note that is not in the trash.
func (s *Store) Active() []models.Note {
	return s.FilterByTrashState(false)
}

// Search returns notes whose title, content, or any tag contains query,
// ignoring case. An empty query matches everything.
func (s *Store) Search(query string) []models.Note {
	return filter(s.All(), query)
}

// List returns the notes of one trash view narrowed by query.
func (s *Store) List(showTrash bool, query string) []models.Note {
	return filter(s.FilterByTrashState(showTrash), query)
}

// Matches reports whether n matches query the way Search does.
func Matches(n models.Note, query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Content), q) {
		return true
	}
	for _, t := range n.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

func filter(in []models.Note, query string) []models.Note {
	if query == "" {
		return in
	}
	out := make([]models.Note, 0, len(in))
	for _, n := range in {
		if Matches(n, query) {
			out = append(out, n)
		}
	}
	return out
}

// Folders returns the configured folders.
func (s *Store) Folders() []models.Folder {
	return append([]models.Folder(nil), s.folders...)
}

// HasFolder reports whether id names a configured folder.
func (s *Store) HasFolder(id string) bool {
	for _, f := range s.folders {
		if f.ID == id {
			return true
		}
	}
	return false
}

// FolderNotes returns the active notes assigned to folderID.
func (s *Store) FolderNotes(folderID string) []models.Note {
	var out []models.Note
	for _, n := range s.notes {
		if !n.IsInTrash && n.FolderID == folderID {
			out = append(out, n.Clone())
		}
	}
	return out
}

// FolderTree returns the sidebar view of folders. With a query, each folder
// keeps only notes whose title or excerpt matches, and folders left empty
// are dropped.
func (s *Store) FolderTree(query string) []models.FolderView {
	q := strings.ToLower(query)
	out := make([]models.FolderView, 0, len(s.folders))
	for _, f := range s.folders {
		view := models.FolderView{Folder: f, Notes: []models.Note{}}
		for _, n := range s.FolderNotes(f.ID) {
			if q == "" ||
				strings.Contains(strings.ToLower(n.Title), q) ||
				strings.Contains(strings.ToLower(n.Excerpt), q) {
				view.Notes = append(view.Notes, n)
			}
		}
		if len(view.Notes) > 0 || query == "" {
			out = append(out, view)
		}
	}
	return out
}

// ParseTags splits a comma-separated tag field, trimming blanks.
func ParseTags(field string) []string {
	var out []string
	for _, t := range strings.Split(field, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
