// Package workspaces creates and lists the named workspaces a user sets up
// before opening the dashboard.
package workspaces

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/rivo/uniseg"

	"github.com/starford/echonotes/internal/apperr"
	"github.com/starford/echonotes/internal/models"
)

// Store persists workspaces.
type Store interface {
	InsertWorkspace(ctx context.Context, w models.Workspace) error
	ListWorkspaces(ctx context.Context) ([]models.Workspace, error)
}

// Input is a workspace creation request.
type Input struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	EmojiLogo   string `json:"emojiLogo"`
	Banner      string `json:"banner"`
}

func (in *Input) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.EmojiLogo = strings.TrimSpace(in.EmojiLogo)
}

// Validate checks the request. Name and description are required and the
// logo must be exactly one emoji.
func (in Input) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required.Error("name is required"), validation.RuneLength(1, 120)),
		validation.Field(&in.Description, validation.Required.Error("description is required")),
		validation.Field(&in.EmojiLogo, validation.Required, validation.By(singleEmoji)),
	)
}

var errNotEmoji = validation.NewError("validation_is_emoji", "must be a single emoji")

func singleEmoji(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if uniseg.GraphemeClusterCount(s) != 1 {
		return errNotEmoji
	}
	keycap := strings.ContainsRune(s, 0x20E3)
	for _, r := range s {
		if keycap && (r == '#' || r == '*' || (r >= '0' && r <= '9')) {
			continue
		}
		if !isEmojiRune(r) {
			return errNotEmoji
		}
	}
	return nil
}

// isEmojiRune accepts pictographs and the joiners and modifiers that combine
// them into one emoji.
func isEmojiRune(r rune) bool {
	switch {
	case r == 0x200D, r == 0x20E3: // zero width joiner, keycap
		return true
	case r >= 0xFE00 && r <= 0xFE0F: // variation selectors
		return true
	case r >= 0x1F1E6 && r <= 0x1F1FF: // regional indicators
		return true
	case r >= 0x1F3FB && r <= 0x1F3FF: // skin tones
		return true
	case r >= 0xE0020 && r <= 0xE007F: // tag sequences
		return true
	case r >= 0x1F000 && r <= 0x1FAFF:
		return true
	case r >= 0x2600 && r <= 0x27BF:
		return true
	case r >= 0x2300 && r <= 0x23FF, r >= 0x2B00 && r <= 0x2BFF:
		return true
	case r == 0x00A9, r == 0x00AE, r == 0x203C, r == 0x2049, r == 0x2122, r == 0x2139, r == 0x3030, r == 0x303D:
		return true
	}
	return false
}

// Service creates and lists workspaces.
type Service struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
	newID func() string
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithIDFunc sets the id generator.
func WithIDFunc(fn func() string) Option {
	return func(s *Service) {
		s.newID = fn
	}
}

// NewService creates a Service over store.
func NewService(store Store, log *slog.Logger, opts ...Option) *Service {
	s := &Service{store: store, log: log, now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

// Create validates in and stores a new workspace.
func (s *Service) Create(ctx context.Context, in Input) (models.Workspace, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return models.Workspace{}, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	w := models.Workspace{
		ID:          s.newID(),
		Name:        in.Name,
		Description: in.Description,
		EmojiLogo:   in.EmojiLogo,
		Banner:      in.Banner,
		CreatedAt:   s.now().UTC().Truncate(time.Millisecond),
	}
	if err := s.store.InsertWorkspace(ctx, w); err != nil {
		return models.Workspace{}, err
	}
	s.log.Info("workspace created", slog.String("id", w.ID), slog.String("name", w.Name))
	return w, nil
}

// List returns every workspace, oldest first. It never returns nil.
func (s *Service) List(ctx context.Context) ([]models.Workspace, error) {
	list, err := s.store.ListWorkspaces(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Workspace{}
	}
	return list, nil
}
