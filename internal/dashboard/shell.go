// Package dashboard composes the note store, graph, categories, settings and
// theme into the state behind one user's dashboard.
//
// Every operation runs under a single mutex, so the Shell behaves like the
// single event loop of an interactive client: mutations never interleave.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/echonotes/internal/categories"
	"github.com/starford/echonotes/internal/graph"
	"github.com/starford/echonotes/internal/links"
	"github.com/starford/echonotes/internal/models"
	"github.com/starford/echonotes/internal/notes"
	"github.com/starford/echonotes/internal/settings"
	"github.com/starford/echonotes/internal/theme"
)

// Notifier delivers user-facing toasts.
type Notifier interface {
	Notify(t models.Toast)
}

// Events receives state change notifications.
type Events interface {
	NoteChanged(kind, id string)
	GraphChanged()
	SettingsChanged(key, value string)
	ThemeChanged(a theme.Active)
}

// Persister stores notes outside the process.
type Persister interface {
	Save(ctx context.Context, n models.Note) error
	Delete(ctx context.Context, id string) error
}

// Config tunes the Shell.
type Config struct {
	// SaveDelay is the pause before an editor save is applied.
	SaveDelay time.Duration
	// SaveTimeout bounds one persistence call including its retries.
	SaveTimeout time.Duration
	// SaveRetries is the number of extra attempts after a failed write.
	SaveRetries int
	// DefaultColor is the theme base used when custom colors are off or the
	// stored color is unusable.
	DefaultColor string
	// IndexThreshold switches link extraction to the inverted index once the
	// active note count exceeds it. Zero always uses the plain scan.
	IndexThreshold int
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		SaveDelay:      500 * time.Millisecond,
		SaveTimeout:    5 * time.Second,
		SaveRetries:    2,
		DefaultColor:   theme.DefaultColor,
		IndexThreshold: 200,
	}
}

// retryBackoff is the pause before the n-th retry, scaled linearly.
const retryBackoff = 50 * time.Millisecond

// Shell is the dashboard state.
type Shell struct {
	mu sync.Mutex

	cfg      Config
	log      *slog.Logger
	store    *notes.Store
	graph    *graph.Graph
	conn     graph.Connector
	cats     *categories.Manager
	settings *settings.Repository
	persist  Persister
	notifier Notifier
	events   Events

	graphDirty  bool
	unsubscribe func()
}

// Option configures a Shell.
type Option func(*Shell)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Shell) {
		s.log = l
	}
}

// WithPersister sets where notes are written. Without one the Shell keeps
// notes in memory only.
func WithPersister(p Persister) Option {
	return func(s *Shell) {
		s.persist = p
	}
}

// WithNotifier sets the toast sink.
func WithNotifier(n Notifier) Option {
	return func(s *Shell) {
		s.notifier = n
	}
}

// WithEvents sets the change notification sink.
func WithEvents(e Events) Option {
	return func(s *Shell) {
		s.events = e
	}
}

// WithLayout sets the graph layout, mainly to make positions deterministic.
func WithLayout(l *graph.Layout) Option {
	return func(s *Shell) {
		s.graph = graph.New(graph.WithLayout(l), graph.WithExtractor(s.extractLinks))
	}
}

// New creates a Shell over store and the settings repository.
func New(ctx context.Context, store *notes.Store, repo *settings.Repository, cfg Config, opts ...Option) *Shell {
	if cfg.DefaultColor == "" {
		cfg.DefaultColor = theme.DefaultColor
	}
	s := &Shell{
		cfg:        cfg,
		store:      store,
		settings:   repo,
		notifier:   nopNotifier{},
		events:     nopEvents{},
		graphDirty: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.graph == nil {
		s.graph = graph.New(graph.WithExtractor(s.extractLinks))
	}
	s.cats = categories.NewManager(ctx, repo, settings.KeyCustomCategories, s.log)
	s.unsubscribe = repo.Subscribe(s.onSettingsChange)
	return s
}

// Close detaches the Shell from the settings repository.
func (s *Shell) Close() {
	s.unsubscribe()
}

func (s *Shell) extractLinks(ns []models.Note) []links.Link {
	if s.cfg.IndexThreshold > 0 && len(ns) > s.cfg.IndexThreshold {
		return links.NewIndex(ns).Extract()
	}
	return links.Extract(ns)
}

// syncGraph rebuilds the graph from the active notes if they changed.
func (s *Shell) syncGraph() {
	if !s.graphDirty {
		return
	}
	s.graph.Rebuild(s.store.Active())
	s.graphDirty = false
}

func (s *Shell) noteChanged(kind, id string) {
	s.graphDirty = true
	s.events.NoteChanged(kind, id)
}

func (s *Shell) success(msg string) {
	s.notifier.Notify(models.Toast{Level: models.ToastSuccess, Message: msg})
}

func (s *Shell) info(msg, description string) {
	s.notifier.Notify(models.Toast{Level: models.ToastInfo, Message: msg, Description: description})
}

// reject emits the error toast for a refused mutation and returns err.
func (s *Shell) reject(msg string, err error) error {
	t := models.Toast{Level: models.ToastError, Message: msg}
	if msg != err.Error() {
		t.Description = err.Error()
	}
	s.notifier.Notify(t)
	return err
}

// write runs op against the persister, retrying failures up to
// cfg.SaveRetries times. Callers hold s.mu, so cfg.SaveTimeout bounds the
// whole write, retries included, and with it how long a slow vault can block
// other operations. Cancellation and the deadline are not retried.
func (s *Shell) write(ctx context.Context, what string, op func(ctx context.Context) error) error {
	if s.cfg.SaveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.SaveTimeout)
		defer cancel()
	}
	var err error
	for attempt := 0; attempt <= s.cfg.SaveRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("dashboard: persist %s: %w", what, ctx.Err())
			case <-time.After(time.Duration(attempt) * retryBackoff):
			}
		}
		err = op(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return fmt.Errorf("dashboard: persist %s: %w", what, ctx.Err())
		}
		s.log.Warn("dashboard: persist failed",
			slog.String("target", what),
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()))
	}
	return fmt.Errorf("dashboard: persist %s: %w", what, err)
}

func (s *Shell) saveNote(ctx context.Context, n models.Note) error {
	if s.persist == nil {
		return nil
	}
	return s.write(ctx, n.ID, func(ctx context.Context) error { return s.persist.Save(ctx, n) })
}

func (s *Shell) deleteNote(ctx context.Context, id string) error {
	if s.persist == nil {
		return nil
	}
	return s.write(ctx, id, func(ctx context.Context) error { return s.persist.Delete(ctx, id) })
}

type nopNotifier struct{}

func (nopNotifier) Notify(models.Toast) {}

type nopEvents struct{}

func (nopEvents) NoteChanged(string, string)     {}
func (nopEvents) GraphChanged()                  {}
func (nopEvents) SettingsChanged(string, string) {}
func (nopEvents) ThemeChanged(theme.Active)      {}
