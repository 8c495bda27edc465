package categories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/echonotes/internal/apperr"
	"github.com/starford/echonotes/internal/models"
	"github.com/starford/echonotes/internal/settings"
)

const key = settings.KeyCustomCategories

func fixedClock() func() time.Time {
	t := time.UnixMilli(1700000000000)
	return func() time.Time { return t }
}

func TestBuiltInsOnlyByDefault(t *testing.T) {
	repo := settings.NewRepository(settings.NewMemoryKV(), nil)
	m := NewManager(context.Background(), repo, key, nil)
	if diff := cmp.Diff(BuiltIn(), m.All()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestAddPersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	repo := settings.NewRepository(settings.NewMemoryKV(), nil)
	m := NewManager(ctx, repo, key, nil, WithClock(fixedClock()))

	a, err := m.Add(ctx, "  Ideas ")
	if err != nil {
		t.Fatal(err)
	}
	want := models.Category{ID: "custom-1700000000000", Name: "Ideas", Icon: "file-text", Color: "text-purple-400", IsCustom: true}
	if diff := cmp.Diff(want, a); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	b, err := m.Add(ctx, "Drafts")
	if err != nil {
		t.Fatal(err)
	}
	if b.ID == a.ID {
		t.Errorf("ids collide: %s", b.ID)
	}

	reloaded := NewManager(ctx, repo, key, nil)
	if diff := cmp.Diff(m.All(), reloaded.All()); diff != "" {
		t.Errorf("reload (-want +got):\n%s", diff)
	}
	if len(reloaded.All()) != 5 {
		t.Errorf("len = %d", len(reloaded.All()))
	}
}

func TestAddRejectsBlank(t *testing.T) {
	ctx := context.Background()
	m := NewManager(ctx, settings.NewRepository(settings.NewMemoryKV(), nil), key, nil)
	if _, err := m.Add(ctx, "   "); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v", err)
	}
	if len(m.All()) != len(BuiltIn()) {
		t.Error("blank category stored")
	}
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	repo := settings.NewRepository(settings.NewMemoryKV(), nil)
	m := NewManager(ctx, repo, key, nil, WithClock(fixedClock()))
	c, _ := m.Add(ctx, "Temp")

	if _, err := m.Remove(ctx, "all"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("built-in removal err = %v", err)
	}
	if _, err := m.Remove(ctx, "custom-1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown removal err = %v", err)
	}
	if _, err := m.Remove(ctx, c.ID); err != nil {
		t.Fatal(err)
	}
	if raw, _ := repo.Raw(ctx, key); raw != "[]" {
		t.Errorf("stored = %q, want []", raw)
	}
}

func TestMalformedStoredValue(t *testing.T) {
	ctx := context.Background()
	repo := settings.NewRepository(settings.NewMemoryKV(), nil)
	_ = repo.SetRaw(ctx, key, "{not json")
	m := NewManager(ctx, repo, key, nil)
	if len(m.All()) != 3 {
		t.Errorf("malformed value should leave built-ins only, got %v", m.All())
	}
}
