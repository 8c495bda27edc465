// Package notes implements the in-memory Note Store behind the dashboard.
package notes

import (
	"slices"

	"github.com/google/uuid"

	"github.com/starford/echonotes/internal/models"
)

// IDFunc generates identifiers for new notes.
type IDFunc func() string

// NewID returns a fresh note identifier.
func NewID() string {
	return "note-" + uuid.NewString()
}

// Store is an ordered, newest-first collection of notes plus the current
// selection. It is not safe for concurrent use; callers serialize access.
type Store struct {
	notes    []models.Note
	folders  []models.Folder
	selected string
	newID    IDFunc
}

// Option configures a Store.
type Option func(*Store)

// WithIDFunc overrides the identifier generator.
func WithIDFunc(fn IDFunc) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

// WithFolders sets the folders notes can be assigned to.
func WithFolders(folders []models.Folder) Option {
	return func(s *Store) {
		s.folders = append([]models.Folder(nil), folders...)
	}
}

// NewStore creates a store holding initial in the given order. The first
// note, if any, starts selected.
func NewStore(initial []models.Note, opts ...Option) *Store {
	s := &Store{newID: NewID}
	for _, opt := range opts {
		opt(s)
	}
	for _, n := range initial {
		s.notes = append(s.notes, n.Clone())
	}
	if len(s.notes) > 0 {
		s.selected = s.notes[0].ID
	}
	return s
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.notes, func(n models.Note) bool { return n.ID == id })
}

// Get returns a copy of the note with the given id.
func (s *Store) Get(id string) (models.Note, bool) {
	i := s.index(id)
	if i < 0 {
		return models.Note{}, false
	}
	return s.notes[i].Clone(), true
}

// All returns a copy of every note in display order.
func (s *Store) All() []models.Note {
	out := make([]models.Note, len(s.notes))
	for i, n := range s.notes {
		out[i] = n.Clone()
	}
	return out
}

// Len returns the number of notes, trashed ones included.
func (s *Store) Len() int {
	return len(s.notes)
}

// Build returns the note Create would insert, with a fresh id, without
// inserting it.
func (s *Store) Build(in models.NoteInput) models.Note {
	return models.Note{
		ID:       s.newID(),
		Title:    in.Title,
		Excerpt:  models.Excerpt(in.Content),
		Content:  in.Content,
		Tags:     normalizeTags(in.Tags),
		Updated:  models.JustNow,
		FolderID: in.FolderID,
	}
}

// Insert puts n at the head of the collection and selects it.
func (s *Store) Insert(n models.Note) models.Note {
	n = n.Clone()
	s.notes = slices.Insert(s.notes, 0, n)
	s.selected = n.ID
	return n.Clone()
}

// Create adds a new active note at the head of the collection and selects it.
func (s *Store) Create(in models.NoteInput) models.Note {
	return s.Insert(s.Build(in))
}

// ApplyEdit returns n with an editor save applied.
func ApplyEdit(n models.Note, edit models.NoteEdit) models.Note {
	n.Title = edit.Title
	n.Content = edit.Content
	n.Excerpt = models.Excerpt(edit.Content)
	n.Tags = normalizeTags(edit.Tags)
	n.Updated = models.JustNow
	return n
}

// Update applies an editor save to the note with the given id.
func (s *Store) Update(id string, edit models.NoteEdit) (models.Note, bool) {
	i := s.index(id)
	if i < 0 {
		return models.Note{}, false
	}
	s.notes[i] = ApplyEdit(s.notes[i], edit)
	return s.notes[i].Clone(), true
}

// Trash moves a note to the trash. When it was selected, the selection moves
// to the first other active note, or is cleared.
func (s *Store) Trash(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.notes[i].IsInTrash = true
	if s.selected == id {
		s.selected = ""
		for _, n := range s.notes {
			if !n.IsInTrash && n.ID != id {
				s.selected = n.ID
				break
			}
		}
	}
	return true
}

// Restore takes a note out of the trash.
func (s *Store) Restore(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.notes[i].IsInTrash = false
	return true
}

// DeletePermanently removes a note. When it was selected, the selection moves
// to the first remaining note of any kind.
func (s *Store) DeletePermanently(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.notes = slices.Delete(s.notes, i, i+1)
	if s.selected == id {
		s.selected = ""
		if len(s.notes) > 0 {
			s.selected = s.notes[0].ID
		}
	}
	return true
}

// MoveToFolder reassigns a note's folder. moved is false when the note is
// missing or already in folderID.
func (s *Store) MoveToFolder(id, folderID string) (moved, found bool) {
	i := s.index(id)
	if i < 0 {
		return false, false
	}
	if s.notes[i].FolderID == folderID {
		return false, true
	}
	s.notes[i].FolderID = folderID
	return true, true
}

// Upsert replaces the note with the same id in place, or prepends it.
func (s *Store) Upsert(n models.Note) {
	n = n.Clone()
	if n.Excerpt == "" {
		n.Excerpt = models.Excerpt(n.Content)
	}
	if i := s.index(n.ID); i >= 0 {
		s.notes[i] = n
		return
	}
	s.notes = slices.Insert(s.notes, 0, n)
}

// Forget removes a note that disappeared from outside the dashboard.
func (s *Store) Forget(id string) bool {
	return s.DeletePermanently(id)
}

// Select makes id the current note.
func (s *Store) Select(id string) bool {
	if s.index(id) < 0 {
		return false
	}
	s.selected = id
	return true
}

// ClearSelection leaves no note selected.
func (s *Store) ClearSelection() {
	s.selected = ""
}

// Selected returns the current note, if any.
func (s *Store) Selected() (models.Note, bool) {
	if s.selected == "" {
		return models.Note{}, false
	}
	return s.Get(s.selected)
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
