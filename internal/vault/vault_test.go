package vault

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/echonotes/internal/models"
	"github.com/starford/echonotes/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestVault(t *testing.T) (string, *Vault) {
	t.Helper()
	dir, store := testutil.TestVault(t)
	return dir, New(store, quietLogger())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir, v := newTestVault(t)

	want := SampleNotes()
	if _, err := v.Seed(ctx, want); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "101.md")); err != nil {
		t.Fatalf("expected 101.md: %v", err)
	}

	got, err := New(v.store, quietLogger()).Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	byID := func(a, b models.Note) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	}
	slices.SortFunc(got, byID)
	slices.SortFunc(want, byID)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestLoadSkipsInvalidAndDuplicates(t *testing.T) {
	ctx := context.Background()
	dir, v := newTestVault(t)

	_ = os.WriteFile(filepath.Join(dir, "bad.md"), []byte("---\n: : {{\n---\nbody"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "a.md"), []byte("---\nid: same\n---\n# A\n"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "b.md"), []byte("---\nid: same\n---\n# B\n"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "plain.md"), []byte("# Plain\ntext"), 0o644)

	notes, err := v.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	ids := make([]string, 0, len(notes))
	for _, n := range notes {
		ids = append(ids, n.ID)
	}
	slices.Sort(ids)
	if diff := cmp.Diff([]string{"plain", "same"}, ids); diff != "" {
		t.Errorf("ids (-want +got):\n%s", diff)
	}
	for _, n := range notes {
		if n.Updated == "" {
			t.Errorf("%s: empty Updated", n.ID)
		}
	}
}

func TestSaveKeepsOriginalPathAndDelete(t *testing.T) {
	ctx := context.Background()
	dir, v := newTestVault(t)

	_ = os.MkdirAll(filepath.Join(dir, "sub"), 0o755)
	_ = os.WriteFile(filepath.Join(dir, "sub", "deep.md"), []byte("# Deep\n"), 0o644)
	notes, err := v.Load(ctx)
	if err != nil || len(notes) != 1 {
		t.Fatalf("load: %v %v", notes, err)
	}

	n := notes[0]
	n.Content = "# Deep\nedited\n"
	if err := v.Save(ctx, n); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "deep.md")); !os.IsNotExist(err) {
		t.Error("save should not create a second file at the root")
	}

	if err := v.Delete(ctx, n.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "sub", "deep.md")); !os.IsNotExist(err) {
		t.Error("file should be gone")
	}
	if err := v.Delete(ctx, "never-existed"); err != nil {
		t.Errorf("deleting a missing note: %v", err)
	}
}

type recordingSink struct {
	mu       sync.Mutex
	reloaded []models.Note
	forgot   []string
}

func (s *recordingSink) ReloadNote(n models.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloaded = append(s.reloaded, n)
}

func (s *recordingSink) ForgetNote(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forgot = append(s.forgot, id)
}

func (s *recordingSink) snapshot() ([]models.Note, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.reloaded), slices.Clone(s.forgot)
}

func eventually(t *testing.T, timeout time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Error(msg)
}

func TestWatch_ExternalEdits(t *testing.T) {
	dir, v := newTestVault(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := v.Save(ctx, models.Note{ID: "mine", Title: "Mine", Content: "x"}); err != nil {
		t.Fatal(err)
	}

	sink := &recordingSink{}
	done := make(chan error, 1)
	go func() { done <- v.Watch(ctx, dir, sink, 50*time.Millisecond) }()
	time.Sleep(100 * time.Millisecond)

	// Our own save must not echo back.
	if err := v.Save(ctx, models.Note{ID: "mine", Title: "Mine", Content: "y"}); err != nil {
		t.Fatal(err)
	}
	_ = os.WriteFile(filepath.Join(dir, "ext.md"), []byte("---\nid: ext\n---\n# External\n"), 0o644)

	eventually(t, 5*time.Second, func() bool {
		r, _ := sink.snapshot()
		return len(r) == 1 && r[0].ID == "ext" && r[0].Title == "External"
	}, "external file not reloaded")

	_ = os.Remove(filepath.Join(dir, "ext.md"))
	eventually(t, 5*time.Second, func() bool {
		_, f := sink.snapshot()
		return len(f) == 1 && f[0] == "ext"
	}, "removed file not forgotten")

	r, _ := sink.snapshot()
	for _, n := range r {
		if n.ID == "mine" {
			t.Error("own save echoed back through the watcher")
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("watcher did not stop")
	}
}

func TestSaveLoad_EditedNoteSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	_, v := newTestVault(t)

	n := models.Note{
		ID:      "n1",
		Title:   "Palette",
		Content: "use #ff4c4c for #todo items",
		Excerpt: models.Excerpt("use #ff4c4c for #todo items"),
		Updated: models.JustNow,
	}
	if err := v.Save(ctx, n); err != nil {
		t.Fatal(err)
	}

	got, err := New(v.store, quietLogger()).Load(ctx)
	if err != nil || len(got) != 1 {
		t.Fatalf("load: %v %v", got, err)
	}
	if len(got[0].Tags) != 0 {
		t.Errorf("tags grew on reload: %v", got[0].Tags)
	}
	if got[0].Updated == models.JustNow {
		t.Error("placeholder timestamp survived a restart")
	}
	if _, err := time.Parse(time.DateOnly, got[0].Updated); err != nil {
		t.Errorf("updated = %q, want the file date: %v", got[0].Updated, err)
	}
}
