// Package vault persists notes as Markdown files and feeds external edits
// back into the dashboard.
package vault

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/starford/echonotes/internal/apperr"
	"github.com/starford/echonotes/internal/checksum"
	"github.com/starford/echonotes/internal/models"
	"github.com/starford/echonotes/internal/parser"
	"github.com/starford/echonotes/internal/storage"
)

type fileState struct {
	id       string
	checksum string
}

// Vault maps note ids to files. Notes created by the app live in <id>.md at
// the vault root; files found elsewhere keep their path.
type Vault struct {
	store storage.Provider
	log   *slog.Logger

	mu    sync.Mutex
	files map[string]fileState // path -> state
	byID  map[string]string    // id -> path
}

// New creates a vault over store. A nil logger uses slog.Default.
func New(store storage.Provider, log *slog.Logger) *Vault {
	if log == nil {
		log = slog.Default()
	}
	return &Vault{
		store: store,
		log:   log,
		files: make(map[string]fileState),
		byID:  make(map[string]string),
	}
}

// FileName returns the file a note with id is written to.
func FileName(id string) string {
	return id + ".md"
}

func stem(p string) string {
	return strings.TrimSuffix(path.Base(p), ".md")
}

// Load reads every note file, newest first. Files that cannot be read or
// parsed are logged and skipped, as are later files repeating an id.
func (v *Vault) Load(ctx context.Context) ([]models.Note, error) {
	metas, err := v.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("vault: load: %w", err)
	}
	slices.SortStableFunc(metas, func(a, b models.FileMetadata) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Path, b.Path)
	})

	v.mu.Lock()
	defer v.mu.Unlock()

	notes := make([]models.Note, 0, len(metas))
	for _, m := range metas {
		data, err := v.store.Read(ctx, m.Path)
		if err != nil {
			v.log.Warn("vault: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		n, err := parser.Decode(data, stem(m.Path))
		if err != nil {
			v.log.Warn("vault: skipping invalid note", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if _, dup := v.byID[n.ID]; dup {
			v.log.Warn("vault: duplicate note id", slog.String("path", m.Path), slog.String("id", n.ID))
			continue
		}
		if n.Updated == "" {
			n.Updated = m.UpdatedAt.Format(time.DateOnly)
		}
		v.track(m.Path, n.ID, checksum.Sum(data))
		notes = append(notes, n)
	}
	return notes, nil
}

func (v *Vault) track(p, id, sum string) {
	v.files[p] = fileState{id: id, checksum: sum}
	v.byID[id] = p
}

func (v *Vault) untrack(p string) (string, bool) {
	st, ok := v.files[p]
	if !ok {
		return "", false
	}
	delete(v.files, p)
	if v.byID[st.id] == p {
		delete(v.byID, st.id)
	}
	return st.id, true
}

// Save writes n to its file.
func (v *Vault) Save(ctx context.Context, n models.Note) error {
	data, err := parser.Encode(n)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	p, ok := v.byID[n.ID]
	if !ok {
		p = FileName(n.ID)
	}
	prev, hadPrev := v.files[p]
	// Record first so the watcher recognises the write as our own.
	v.track(p, n.ID, checksum.Sum(data))
	if err := v.store.Write(ctx, p, data); err != nil {
		if hadPrev {
			v.files[p] = prev
		} else {
			v.untrack(p)
		}
		return fmt.Errorf("vault: save %s: %w", n.ID, err)
	}
	return nil
}

// Delete removes the file of note id. A note without a file is not an error.
func (v *Vault) Delete(ctx context.Context, id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	p, ok := v.byID[id]
	if !ok {
		p = FileName(id)
	}
	if err := v.store.Delete(ctx, p); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return fmt.Errorf("vault: delete %s: %w", id, err)
	}
	v.untrack(p)
	return nil
}

// Empty reports whether the vault holds no note files.
func (v *Vault) Empty(ctx context.Context) (bool, error) {
	metas, err := v.store.List(ctx)
	if err != nil {
		return false, fmt.Errorf("vault: list: %w", err)
	}
	return len(metas) == 0, nil
}

// Seed writes notes into an empty vault and returns them.
func (v *Vault) Seed(ctx context.Context, notes []models.Note) ([]models.Note, error) {
	for _, n := range notes {
		if err := v.Save(ctx, n); err != nil {
			return nil, err
		}
	}
	v.log.Info("vault: seeded sample notes", slog.Int("count", len(notes)))
	return notes, nil
}
