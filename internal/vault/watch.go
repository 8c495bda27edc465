package vault

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/echonotes/internal/apperr"
	"github.com/starford/echonotes/internal/checksum"
	"github.com/starford/echonotes/internal/models"
	"github.com/starford/echonotes/internal/parser"
)

// DefaultDebounce is how long the watcher waits for a burst of file events to
// settle before applying them.
const DefaultDebounce = 200 * time.Millisecond

// Sink receives notes changed outside the app.
type Sink interface {
	ReloadNote(n models.Note)
	ForgetNote(id string)
}

// Watch starts an fsnotify watcher on root (the directory behind the vault's
// storage) and feeds external changes into sink until ctx is cancelled.
//
// Events are collected per path and applied once no new event has arrived
// for debounce. Files whose checksum matches the last one the vault read or
// wrote are skipped, so the app's own saves do not echo back.
func (v *Vault) Watch(ctx context.Context, root string, sink Sink, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}
	v.log.Info("watcher: started", slog.String("root", root))

	pending := make(map[string]struct{})
	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			v.log.Info("watcher: stopped")
			return nil

		case <-timer.C:
			for p := range pending {
				v.apply(ctx, p, sink)
			}
			clear(pending)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if strings.HasPrefix(info.Name(), ".") {
						continue
					}
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						v.log.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					v.pendingUnder(root, ev.Name, pending)
					timer.Reset(debounce)
					continue
				}
			}
			if !strings.HasSuffix(ev.Name, ".md") {
				continue
			}
			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil {
				continue
			}
			pending[filepath.ToSlash(rel)] = struct{}{}
			timer.Reset(debounce)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			v.log.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// apply brings the state of one path in line with the disk.
func (v *Vault) apply(ctx context.Context, p string, sink Sink) {
	data, err := v.store.Read(ctx, p)
	if errors.Is(err, apperr.ErrNotFound) {
		v.mu.Lock()
		id, ok := v.untrack(p)
		v.mu.Unlock()
		if ok {
			v.log.Debug("watcher: note removed", slog.String("path", p), slog.String("id", id))
			sink.ForgetNote(id)
		}
		return
	}
	if err != nil {
		v.log.Warn("watcher: read failed", slog.String("path", p), slog.String("error", err.Error()))
		return
	}

	sum := checksum.Sum(data)
	v.mu.Lock()
	prev, known := v.files[p]
	v.mu.Unlock()
	if known && prev.checksum == sum {
		return
	}

	n, err := parser.Decode(data, stem(p))
	if err != nil {
		v.log.Warn("watcher: skipping invalid note", slog.String("path", p), slog.String("error", err.Error()))
		return
	}
	if n.Updated == "" {
		n.Updated = models.JustNow
	}

	v.mu.Lock()
	if owner, taken := v.byID[n.ID]; taken && owner != p {
		v.mu.Unlock()
		v.log.Warn("watcher: duplicate note id", slog.String("path", p), slog.String("id", n.ID))
		return
	}
	if known && prev.id != n.ID {
		v.untrack(p)
	}
	v.track(p, n.ID, sum)
	v.mu.Unlock()

	if known && prev.id != n.ID {
		sink.ForgetNote(prev.id)
	}
	v.log.Debug("watcher: note reloaded", slog.String("path", p), slog.String("id", n.ID))
	sink.ReloadNote(n)
}

// pendingUnder marks every .md file below dir as pending.
func (v *Vault) pendingUnder(root, dir string, pending map[string]struct{}) {
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(p, ".md") {
			return nil
		}
		if rel, relErr := filepath.Rel(root, p); relErr == nil {
			pending[filepath.ToSlash(rel)] = struct{}{}
		}
		return nil
	})
}

// addDirsRecursive adds root and all its non-hidden subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
}
