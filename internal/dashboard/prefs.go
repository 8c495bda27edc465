package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/echonotes/internal/apperr"
	"github.com/starford/echonotes/internal/categories"
	"github.com/starford/echonotes/internal/models"
	"github.com/starford/echonotes/internal/settings"
	"github.com/starford/echonotes/internal/theme"
)

// ActiveTheme resolves the theme currently in effect. With custom colors off,
// or with an unusable stored color, it is the default base at full opacity.
func (s *Shell) ActiveTheme(ctx context.Context) theme.Active {
	return s.activeTheme(ctx)
}

// activeTheme reads only the settings repository, so it is safe to call
// from a settings subscription while the Shell mutex is held.
func (s *Shell) activeTheme(ctx context.Context) theme.Active {
	color := s.cfg.DefaultColor
	if s.settings.Flag(ctx, settings.EnableCustomColors) {
		if stored, ok := s.settings.ThemeColor(ctx); ok && stored != "" {
			color = stored
		}
	}
	a, err := theme.Resolve(color)
	if err == nil {
		return a
	}
	s.log.Warn("dashboard: unusable theme color", slog.String("color", color), slog.String("error", err.Error()))
	a, _ = theme.Resolve(theme.DefaultColor)
	return a
}

// SetThemeColor stores base at opacityPercent as the theme color.
func (s *Shell) SetThemeColor(ctx context.Context, base string, opacityPercent float64) (theme.Active, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.settings.Flag(ctx, settings.EnableCustomColors) {
		return theme.Active{}, s.reject("Custom colors are disabled",
			fmt.Errorf("%w: custom colors are disabled", apperr.ErrValidation))
	}
	color, err := theme.EncodeThemeColor(base, opacityPercent)
	if err != nil {
		return theme.Active{}, s.reject("Invalid theme color", err)
	}
	if err := s.settings.SetThemeColor(ctx, color); err != nil {
		return theme.Active{}, s.reject("Failed to save theme", err)
	}
	s.notifier.Notify(models.Toast{
		Level:       models.ToastSuccess,
		Message:     "Theme updated",
		Description: "Your dashboard theme has been updated.",
	})
	return s.activeTheme(ctx), nil
}

// ResetTheme restores the default theme color.
func (s *Shell) ResetTheme(ctx context.Context) (theme.Active, error) {
	return s.SetThemeColor(ctx, s.cfg.DefaultColor, 100)
}

// Settings returns every typed setting.
func (s *Shell) Settings(ctx context.Context) settings.Snapshot {
	return s.settings.Snapshot(ctx)
}

// SetFlag toggles a feature flag. Subscribers, and through them the event
// sink, hear about the change.
func (s *Shell) SetFlag(ctx context.Context, f settings.Flag, v bool) (settings.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.settings.SetFlag(ctx, f, v); err != nil {
		return settings.Snapshot{}, err
	}
	return s.settings.Snapshot(ctx), nil
}

func (s *Shell) onSettingsChange(c settings.Change) {
	s.events.SettingsChanged(c.Key, c.Value)
	if c.Key == settings.KeyThemeColor || c.Key == settings.KeyEnableCustomColors {
		s.events.ThemeChanged(s.activeTheme(context.Background()))
	}
}

// Categories returns the sidebar categories. Custom ones are hidden while
// the custom categories flag is off.
func (s *Shell) Categories(ctx context.Context) []models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.settings.Flag(ctx, settings.EnableCustomCategories) {
		return categories.BuiltIn()
	}
	return s.cats.All()
}

func (s *Shell) customCategoriesEnabled(ctx context.Context) error {
	if s.settings.Flag(ctx, settings.EnableCustomCategories) {
		return nil
	}
	return s.reject("Custom categories are disabled",
		fmt.Errorf("%w: custom categories are disabled", apperr.ErrValidation))
}

// AddCategory creates a custom category.
func (s *Shell) AddCategory(ctx context.Context, name string) (models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.customCategoriesEnabled(ctx); err != nil {
		return models.Category{}, err
	}
	c, err := s.cats.Add(ctx, name)
	if errors.Is(err, apperr.ErrValidation) {
		return models.Category{}, s.reject("Category name is required", err)
	}
	if err != nil {
		return models.Category{}, s.reject("Could not create category", err)
	}
	s.success(fmt.Sprintf("Category %q created", c.Name))
	return c, nil
}

// RemoveCategory deletes a custom category.
func (s *Shell) RemoveCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.customCategoriesEnabled(ctx); err != nil {
		return err
	}
	c, err := s.cats.Remove(ctx, id)
	if err != nil {
		return s.reject("Could not remove category", err)
	}
	s.success(fmt.Sprintf("Category %q removed", c.Name))
	return nil
}
