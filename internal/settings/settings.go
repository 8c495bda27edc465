// Package settings is the typed key-value store behind dashboard preferences.
package settings

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
)

// Storage keys. They match what the browser client persists so an exported
// key-value dump can be moved between the two.
const (
	KeyThemeColor             = "dashboard-bg-color"
	KeyEnableCustomColors     = "dashboard-enable-custom-colors"
	KeyEnableDragDrop         = "dashboard-enable-drag-drop"
	KeyEnableCustomCategories = "dashboard-enable-custom-categories"
	KeyCustomCategories       = "custom-categories"
)

// KV is a persistent string map.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Flag names a boolean preference.
type Flag string

const (
	EnableCustomColors     Flag = "enableCustomColors"
	EnableDragDrop         Flag = "enableDragDrop"
	EnableCustomCategories Flag = "enableCustomCategories"
)

var flagKeys = map[Flag]string{
	EnableCustomColors:     KeyEnableCustomColors,
	EnableDragDrop:         KeyEnableDragDrop,
	EnableCustomCategories: KeyEnableCustomCategories,
}

// Flags lists every flag in display order.
func Flags() []Flag {
	return []Flag{EnableCustomColors, EnableDragDrop, EnableCustomCategories}
}

// ParseFlag maps a flag name to a Flag.
func ParseFlag(s string) (Flag, bool) {
	f := Flag(s)
	_, ok := flagKeys[f]
	return f, ok
}

// Key returns the storage key of f.
func (f Flag) Key() string { return flagKeys[f] }

// Change is delivered to subscribers after a successful write.
type Change struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Snapshot is the full set of typed settings.
type Snapshot struct {
	ThemeColor             string `json:"themeColor,omitempty"`
	EnableCustomColors     bool   `json:"enableCustomColors"`
	EnableDragDrop         bool   `json:"enableDragDrop"`
	EnableCustomCategories bool   `json:"enableCustomCategories"`
}

// Flag returns the value of f in the snapshot.
func (s Snapshot) Flag(f Flag) bool {
	switch f {
	case EnableCustomColors:
		return s.EnableCustomColors
	case EnableDragDrop:
		return s.EnableDragDrop
	case EnableCustomCategories:
		return s.EnableCustomCategories
	}
	return false
}

// Repository reads and writes typed settings over a KV.
type Repository struct {
	kv  KV
	log *slog.Logger

	mu     sync.RWMutex
	nextID int
	subs   map[int]func(Change)
}

// NewRepository creates a repository over kv. A nil logger uses slog.Default.
func NewRepository(kv KV, log *slog.Logger) *Repository {
	if log == nil {
		log = slog.Default()
	}
	return &Repository{kv: kv, log: log, subs: make(map[int]func(Change))}
}

// Subscribe registers fn for every successful write. The returned function
// removes the subscription.
func (r *Repository) Subscribe(fn func(Change)) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.subs[id] = fn
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subs, id)
			r.mu.Unlock()
		})
	}
}

func (r *Repository) notify(c Change) {
	r.mu.RLock()
	handlers := make([]func(Change), 0, len(r.subs))
	for _, fn := range r.subs {
		handlers = append(handlers, fn)
	}
	r.mu.RUnlock()

	for _, fn := range handlers {
		fn(c)
	}
}

// Raw returns the stored value of key. Read errors are logged and reported
// as a missing key.
func (r *Repository) Raw(ctx context.Context, key string) (string, bool) {
	v, ok, err := r.kv.Get(ctx, key)
	if err != nil {
		r.log.Warn("settings read failed", slog.String("key", key), slog.String("error", err.Error()))
		return "", false
	}
	return v, ok
}

// SetRaw stores value under key and notifies subscribers.
func (r *Repository) SetRaw(ctx context.Context, key, value string) error {
	if err := r.kv.Set(ctx, key, value); err != nil {
		return err
	}
	r.notify(Change{Key: key, Value: value})
	return nil
}

// Flag returns the value of f. Missing or malformed values read as true.
func (r *Repository) Flag(ctx context.Context, f Flag) bool {
	v, ok := r.Raw(ctx, f.Key())
	if !ok {
		return true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.log.Warn("malformed settings flag", slog.String("key", f.Key()), slog.String("value", v))
		return true
	}
	return b
}

// SetFlag stores f as "true" or "false".
func (r *Repository) SetFlag(ctx context.Context, f Flag, v bool) error {
	return r.SetRaw(ctx, f.Key(), strconv.FormatBool(v))
}

// ThemeColor returns the persisted theme color, if any. The value is not
// validated here.
func (r *Repository) ThemeColor(ctx context.Context) (string, bool) {
	return r.Raw(ctx, KeyThemeColor)
}

// SetThemeColor persists the theme color.
func (r *Repository) SetThemeColor(ctx context.Context, color string) error {
	return r.SetRaw(ctx, KeyThemeColor, color)
}

// Snapshot reads every typed setting.
func (r *Repository) Snapshot(ctx context.Context) Snapshot {
	color, _ := r.ThemeColor(ctx)
	return Snapshot{
		ThemeColor:             color,
		EnableCustomColors:     r.Flag(ctx, EnableCustomColors),
		EnableDragDrop:         r.Flag(ctx, EnableDragDrop),
		EnableCustomCategories: r.Flag(ctx, EnableCustomCategories),
	}
}

// MemoryKV is a KV kept in process memory.
type MemoryKV struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewMemoryKV creates an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{m: make(map[string]string)}
}

func (kv *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	kv.mu.RLock()
	defer kv.mu.RUnlock()
	v, ok := kv.m[key]
	return v, ok, nil
}

func (kv *MemoryKV) Set(_ context.Context, key, value string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.m[key] = value
	return nil
}
