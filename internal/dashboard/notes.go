package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/echonotes/internal/apperr"
	"github.com/starford/echonotes/internal/models"
	"github.com/starford/echonotes/internal/notes"
	"github.com/starford/echonotes/internal/settings"
)

// Drop targets recognised by DragEnd.
const (
	TrashArea    = "trash-area"
	FolderPrefix = "folder-"
)

// DropAction is what a drag-and-drop did.
type DropAction string

const (
	DropNone  DropAction = "none"
	DropTrash DropAction = "trash"
	DropMove  DropAction = "move"
)

const (
	msgTitleRequired = "Note title is required"
	msgNoteNotFound  = "Note not found"
	msgSaveFailed    = "Failed to save note"
)

func errNoteNotFound(id string) error {
	return fmt.Errorf("note %s: %w", id, apperr.ErrNotFound)
}

func validateTitle(title string) error {
	if err := validation.Validate(strings.TrimSpace(title), validation.Required); err != nil {
		return fmt.Errorf("%w: title: %v", apperr.ErrValidation, err)
	}
	return nil
}

// ListNotes returns the notes in the trash or active partition, filtered by
// query when it is not empty.
func (s *Shell) ListNotes(showTrash bool, query string) []models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.List(showTrash, query)
}

// Note returns the note with id.
func (s *Shell) Note(id string) (models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.store.Get(id)
	if !ok {
		return models.Note{}, errNoteNotFound(id)
	}
	return n, nil
}

// Selected returns the selected note, if any.
func (s *Shell) Selected() (models.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Selected()
}

// SelectNote makes id the selected note.
func (s *Shell) SelectNote(id string) (models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.store.Select(id) {
		return models.Note{}, errNoteNotFound(id)
	}
	n, _ := s.store.Get(id)
	return n, nil
}

// ShowTrash switches the note list between the trash and the active notes.
// Leaving the trash drops a selection that points into it. It returns the
// selection that remains.
func (s *Shell) ShowTrash(show bool) (models.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel, ok := s.store.Selected()
	if ok && !show && sel.IsInTrash {
		s.store.ClearSelection()
		return models.Note{}, false
	}
	return sel, ok
}

// Folders returns the sidebar folder tree for query.
func (s *Shell) Folders(query string) []models.FolderView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.FolderTree(query)
}

// FolderNotes returns the active notes in folder id.
func (s *Shell) FolderNotes(id string) ([]models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.store.HasFolder(id) {
		return nil, fmt.Errorf("folder %s: %w", id, apperr.ErrNotFound)
	}
	return s.store.FolderNotes(id), nil
}

// CreateNote adds a note at the head of the list and selects it.
func (s *Shell) CreateNote(ctx context.Context, in models.NoteInput) (models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validateTitle(in.Title); err != nil {
		return models.Note{}, s.reject(msgTitleRequired, err)
	}
	if in.FolderID != "" && !s.store.HasFolder(in.FolderID) {
		return models.Note{}, s.reject("Folder not found", fmt.Errorf("folder %s: %w", in.FolderID, apperr.ErrNotFound))
	}

	n := s.store.Build(in)
	if err := s.saveNote(ctx, n); err != nil {
		return models.Note{}, s.reject("Failed to create note", err)
	}
	n = s.store.Insert(n)
	s.noteChanged(models.NoteCreated, n.ID)
	s.success("New note created")
	return n, nil
}

// SaveNote applies an editor save after the configured save delay. The note
// is persisted first; the store only changes once that succeeds.
func (s *Shell) SaveNote(ctx context.Context, id string, edit models.NoteEdit) (models.Note, error) {
	return s.SaveNoteIf(ctx, id, edit, nil)
}

// SaveNoteIf is SaveNote with a precondition. check sees the current note
// under the lock, after the save delay; a non-nil result aborts the save.
func (s *Shell) SaveNoteIf(ctx context.Context, id string, edit models.NoteEdit, check func(models.Note) error) (models.Note, error) {
	if err := validateTitle(edit.Title); err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		return models.Note{}, s.reject(msgTitleRequired, err)
	}

	if s.cfg.SaveDelay > 0 {
		t := time.NewTimer(s.cfg.SaveDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			s.mu.Lock()
			defer s.mu.Unlock()
			return models.Note{}, s.reject(msgSaveFailed, ctx.Err())
		case <-t.C:
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.store.Get(id)
	if !ok {
		return models.Note{}, s.reject(msgNoteNotFound, errNoteNotFound(id))
	}
	if check != nil {
		if err := check(cur); err != nil {
			return models.Note{}, s.reject("Note was changed elsewhere", err)
		}
	}
	if err := s.saveNote(ctx, notes.ApplyEdit(cur, edit)); err != nil {
		return models.Note{}, s.reject(msgSaveFailed, err)
	}
	n, _ := s.store.Update(id, edit)
	s.noteChanged(models.NoteUpdated, id)
	s.success("Note saved")
	return n, nil
}

// TrashNote moves a note to the trash.
func (s *Shell) TrashNote(ctx context.Context, id string) (models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trash(ctx, id)
}

func (s *Shell) trash(ctx context.Context, id string) (models.Note, error) {
	cur, ok := s.store.Get(id)
	if !ok {
		return models.Note{}, s.reject(msgNoteNotFound, errNoteNotFound(id))
	}
	cur.IsInTrash = true
	if err := s.saveNote(ctx, cur); err != nil {
		return models.Note{}, s.reject(msgSaveFailed, err)
	}
	s.store.Trash(id)
	s.noteChanged(models.NoteUpdated, id)
	s.success("Note moved to trash")
	return cur, nil
}

// RestoreNote takes a note out of the trash.
func (s *Shell) RestoreNote(ctx context.Context, id string) (models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.store.Get(id)
	if !ok {
		return models.Note{}, s.reject(msgNoteNotFound, errNoteNotFound(id))
	}
	cur.IsInTrash = false
	if err := s.saveNote(ctx, cur); err != nil {
		return models.Note{}, s.reject(msgSaveFailed, err)
	}
	s.store.Restore(id)
	s.noteChanged(models.NoteUpdated, id)
	s.success("Note restored")
	return cur, nil
}

// DeleteNote removes a trashed note for good.
func (s *Shell) DeleteNote(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.store.Get(id)
	if !ok {
		return s.reject(msgNoteNotFound, errNoteNotFound(id))
	}
	if !cur.IsInTrash {
		return s.reject("Only notes in the trash can be deleted permanently",
			fmt.Errorf("%w: note %s is not in the trash", apperr.ErrValidation, id))
	}
	if err := s.deleteNote(ctx, id); err != nil {
		return s.reject("Failed to delete note", err)
	}
	s.store.DeletePermanently(id)
	s.noteChanged(models.NoteDeleted, id)
	s.success("Note permanently deleted")
	return nil
}

// MoveNoteToFolder assigns a note to folder. moved is false, with no toast,
// when the note already lives there.
func (s *Shell) MoveNoteToFolder(ctx context.Context, id, folder string) (n models.Note, moved bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.move(ctx, id, folder)
}

func (s *Shell) move(ctx context.Context, id, folder string) (models.Note, bool, error) {
	cur, ok := s.store.Get(id)
	if !ok {
		return models.Note{}, false, s.reject(msgNoteNotFound, errNoteNotFound(id))
	}
	if cur.FolderID == folder {
		return cur, false, nil
	}
	if !s.store.HasFolder(folder) {
		return models.Note{}, false, s.reject("Folder not found", fmt.Errorf("folder %s: %w", folder, apperr.ErrNotFound))
	}
	cur.FolderID = folder
	if err := s.saveNote(ctx, cur); err != nil {
		return models.Note{}, false, s.reject(msgSaveFailed, err)
	}
	s.store.MoveToFolder(id, folder)
	s.noteChanged(models.NoteUpdated, id)
	s.success("Note moved to folder")
	return cur, true, nil
}

// DragEnd handles a note dropped on a target. Dropping on TrashArea trashes
// the note; dropping on FolderPrefix+<id> moves it, overFolderID taking
// precedence over the id embedded in overID. Any other target does nothing.
func (s *Shell) DragEnd(ctx context.Context, activeID, overID, overFolderID string) (DropAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if activeID == "" || overID == "" {
		return DropNone, nil
	}
	if !s.settings.Flag(ctx, settings.EnableDragDrop) {
		return DropNone, s.reject("Drag and drop is disabled",
			fmt.Errorf("%w: drag and drop is disabled", apperr.ErrValidation))
	}

	switch {
	case overID == TrashArea:
		if _, err := s.trash(ctx, activeID); err != nil {
			return DropNone, err
		}
		return DropTrash, nil
	case strings.HasPrefix(overID, FolderPrefix):
		folder := overFolderID
		if folder == "" {
			folder = strings.TrimPrefix(overID, FolderPrefix)
		}
		_, moved, err := s.move(ctx, activeID, folder)
		if err != nil || !moved {
			return DropNone, err
		}
		return DropMove, nil
	}
	return DropNone, nil
}

// ReloadNote applies a note changed outside the app. No toast is emitted.
func (s *Shell) ReloadNote(n models.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, existed := s.store.Get(n.ID)
	s.store.Upsert(n)
	kind := models.NoteCreated
	if existed {
		kind = models.NoteUpdated
	}
	s.noteChanged(kind, n.ID)
}

// ForgetNote drops a note removed outside the app. No toast is emitted.
func (s *Shell) ForgetNote(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store.Forget(id) {
		s.noteChanged(models.NoteDeleted, id)
	}
}
