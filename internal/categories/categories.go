// Package categories manages the sidebar categories: three built-ins plus
// user-defined ones persisted as JSON.
package categories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/echonotes/internal/apperr"
	"github.com/starford/echonotes/internal/models"
)

const (
	customPrefix = "custom-"
	customIcon   = "file-text"
	customColor  = "text-purple-400"
)

// BuiltIn returns the fixed categories.
func BuiltIn() []models.Category {
	return []models.Category{
		{ID: "all", Name: "All Notes", Icon: "file-text", Color: "text-blue-400"},
		{ID: "recent", Name: "Recent", Icon: "book-open", Color: "text-green-400"},
		{ID: "favorites", Name: "Favorites", Icon: "bookmark", Color: "text-yellow-400"},
	}
}

// Blob is where custom categories are persisted.
type Blob interface {
	Raw(ctx context.Context, key string) (string, bool)
	SetRaw(ctx context.Context, key, value string) error
}

// Manager holds the custom categories.
type Manager struct {
	blob Blob
	key  string
	log  *slog.Logger
	now  func() time.Time

	custom []models.Category
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now for id generation.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager loads custom categories stored under key. A missing key or
// malformed JSON yields no custom categories.
func NewManager(ctx context.Context, blob Blob, key string, log *slog.Logger, opts ...Option) *Manager {
	if log == nil {
		log = slog.Default()
	}
	m := &Manager{blob: blob, key: key, log: log, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}

	raw, ok := blob.Raw(ctx, key)
	if !ok || raw == "" {
		return m
	}
	var stored []models.Category
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		log.Warn("categories: malformed stored value", slog.String("key", key), slog.String("error", err.Error()))
		return m
	}
	for _, c := range stored {
		if !strings.HasPrefix(c.ID, customPrefix) || strings.TrimSpace(c.Name) == "" {
			continue
		}
		c.IsCustom = true
		m.custom = append(m.custom, c)
	}
	return m
}

// All returns built-ins followed by custom categories.
func (m *Manager) All() []models.Category {
	return append(BuiltIn(), m.custom...)
}

func (m *Manager) nextID() string {
	ms := m.now().UnixMilli()
	id := customPrefix + strconv.FormatInt(ms, 10)
	// Two adds within the same millisecond must not collide.
	for slices.ContainsFunc(m.custom, func(c models.Category) bool { return c.ID == id }) {
		ms++
		id = customPrefix + strconv.FormatInt(ms, 10)
	}
	return id
}

// Add creates a custom category named name (trimmed).
func (m *Manager) Add(ctx context.Context, name string) (models.Category, error) {
	name = strings.TrimSpace(name)
	if err := validation.Validate(name, validation.Required, validation.RuneLength(1, 64)); err != nil {
		return models.Category{}, fmt.Errorf("%w: category name: %v", apperr.ErrValidation, err)
	}
	c := models.Category{
		ID:       m.nextID(),
		Name:     name,
		Icon:     customIcon,
		Color:    customColor,
		IsCustom: true,
	}
	next := append(slices.Clone(m.custom), c)
	if err := m.persist(ctx, next); err != nil {
		return models.Category{}, err
	}
	m.custom = next
	return c, nil
}

// Remove deletes the custom category id. Built-ins cannot be removed.
func (m *Manager) Remove(ctx context.Context, id string) (models.Category, error) {
	if slices.ContainsFunc(BuiltIn(), func(c models.Category) bool { return c.ID == id }) {
		return models.Category{}, fmt.Errorf("%w: built-in category %q cannot be removed", apperr.ErrValidation, id)
	}
	i := slices.IndexFunc(m.custom, func(c models.Category) bool { return c.ID == id })
	if i < 0 {
		return models.Category{}, fmt.Errorf("category %s: %w", id, apperr.ErrNotFound)
	}
	removed := m.custom[i]
	next := slices.Delete(slices.Clone(m.custom), i, i+1)
	if err := m.persist(ctx, next); err != nil {
		return models.Category{}, err
	}
	m.custom = next
	return removed, nil
}

func (m *Manager) persist(ctx context.Context, custom []models.Category) error {
	if custom == nil {
		custom = []models.Category{}
	}
	data, err := json.Marshal(custom)
	if err != nil {
		return fmt.Errorf("categories: encode: %w", err)
	}
	if err := m.blob.SetRaw(ctx, m.key, string(data)); err != nil {
		return fmt.Errorf("categories: persist: %w", err)
	}
	return nil
}
