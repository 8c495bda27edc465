package theme

import (
	"fmt"
	"math"

	"github.com/starford/echonotes/internal/apperr"
)

// DefaultColor is the base color of the stock dark theme.
const DefaultColor = "#1A1A26"

// Fixed destructive colors, independent of the base.
const (
	Destructive           = "#ff4c4c"
	DestructiveForeground = "#f8f8f2"
)

// Brightness shifts, in percent, applied to the base color.
const (
	darkerShift     = -15
	lighterShift    = 10
	evenDarkerShift = -25
	accentShift     = 30
)

// Presets are the colors offered by the background picker.
var Presets = []string{
	"#1A1A26", "#292933", "#121212", "#0f172a", "#1e1b4b", "#312e81",
	"#1e3a8a", "#1e40af", "#0369a1",
	"#0f766e", "#134e4a", "#064e3b", "#166534", "#365314",
	"#422006", "#7c2d12", "#431407", "#4c0519", "#581c87",
}

// Palette is the full set of derived UI colors.
type Palette struct {
	Background               string `json:"background"`
	Foreground               string `json:"foreground"`
	Card                     string `json:"card"`
	CardForeground           string `json:"cardForeground"`
	Popover                  string `json:"popover"`
	PopoverForeground        string `json:"popoverForeground"`
	Primary                  string `json:"primary"`
	PrimaryForeground        string `json:"primaryForeground"`
	Secondary                string `json:"secondary"`
	SecondaryForeground      string `json:"secondaryForeground"`
	Muted                    string `json:"muted"`
	MutedForeground          string `json:"mutedForeground"`
	Accent                   string `json:"accent"`
	AccentForeground         string `json:"accentForeground"`
	Destructive              string `json:"destructive"`
	DestructiveForeground    string `json:"destructiveForeground"`
	Border                   string `json:"border"`
	Input                    string `json:"input"`
	Ring                     string `json:"ring"`
	SidebarBackground        string `json:"sidebarBackground"`
	SidebarForeground        string `json:"sidebarForeground"`
	SidebarPrimary           string `json:"sidebarPrimary"`
	SidebarPrimaryForeground string `json:"sidebarPrimaryForeground"`
	SidebarAccent            string `json:"sidebarAccent"`
	SidebarAccentForeground  string `json:"sidebarAccentForeground"`
	SidebarBorder            string `json:"sidebarBorder"`
	SidebarRing              string `json:"sidebarRing"`
}

// Var is a single CSS custom property assignment.
type Var struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Vars lists the palette as CSS custom properties in a fixed order.
func (p Palette) Vars() []Var {
	return []Var{
		{"--background", p.Background},
		{"--foreground", p.Foreground},
		{"--card", p.Card},
		{"--card-foreground", p.CardForeground},
		{"--popover", p.Popover},
		{"--popover-foreground", p.PopoverForeground},
		{"--primary", p.Primary},
		{"--primary-foreground", p.PrimaryForeground},
		{"--secondary", p.Secondary},
		{"--secondary-foreground", p.SecondaryForeground},
		{"--muted", p.Muted},
		{"--muted-foreground", p.MutedForeground},
		{"--accent", p.Accent},
		{"--accent-foreground", p.AccentForeground},
		{"--destructive", p.Destructive},
		{"--destructive-foreground", p.DestructiveForeground},
		{"--border", p.Border},
		{"--input", p.Input},
		{"--ring", p.Ring},
		{"--sidebar-background", p.SidebarBackground},
		{"--sidebar-foreground", p.SidebarForeground},
		{"--sidebar-primary", p.SidebarPrimary},
		{"--sidebar-primary-foreground", p.SidebarPrimaryForeground},
		{"--sidebar-accent", p.SidebarAccent},
		{"--sidebar-accent-foreground", p.SidebarAccentForeground},
		{"--sidebar-border", p.SidebarBorder},
		{"--sidebar-ring", p.SidebarRing},
	}
}

// DerivePalette computes the palette for base at the given opacity percent
// (0–100). An alpha suffix on base is ignored; opacityPercent governs.
func DerivePalette(base string, opacityPercent float64) (Palette, error) {
	if math.IsNaN(opacityPercent) || opacityPercent < 0 || opacityPercent > 100 {
		return Palette{}, fmt.Errorf("%w: opacity %v outside [0,100]", apperr.ErrValidation, opacityPercent)
	}
	c, _, err := ParseColor(base)
	if err != nil {
		return Palette{}, err
	}
	return derive(base[:7], c, opacityPercent/100), nil
}

// FromThemeColor derives the palette for a stored theme color, taking the
// opacity from its alpha suffix when present.
func FromThemeColor(color string) (Palette, error) {
	c, alpha, err := ParseColor(color)
	if err != nil {
		return Palette{}, err
	}
	return derive(color[:7], c, alpha), nil
}

// EncodeThemeColor appends opacityPercent as a two-digit alpha suffix to
// base, the format the background picker saves.
func EncodeThemeColor(base string, opacityPercent float64) (string, error) {
	if math.IsNaN(opacityPercent) || opacityPercent < 0 || opacityPercent > 100 {
		return "", fmt.Errorf("%w: opacity %v outside [0,100]", apperr.ErrValidation, opacityPercent)
	}
	if _, _, err := ParseColor(base); err != nil {
		return "", err
	}
	alpha := int(math.Floor(opacityPercent/100*255 + 0.5))
	return fmt.Sprintf("%s%02x", base[:7], alpha), nil
}

// OpacityPercent returns the opacity encoded in a theme color, 100 when the
// color carries no alpha suffix.
func OpacityPercent(color string) (float64, error) {
	_, alpha, err := ParseColor(color)
	if err != nil {
		return 0, err
	}
	return math.Round(alpha*1000) / 10, nil
}

func derive(baseHex string, base RGB, opacity float64) Palette {
	darkerRGB := base.adjust(darkerShift)
	darker := darkerRGB.Hex()
	lighter := base.adjust(lighterShift)
	evenDarker := base.adjust(evenDarkerShift)
	accent := base.adjust(accentShift).Hex()
	primary := base.complement().Hex()

	text, muted := LightText, LightMutedText
	if base.brightness() > brightnessLimit {
		text, muted = DarkText, DarkMutedText
	}

	return Palette{
		Background:               withOpacity(baseHex, base, opacity),
		Foreground:               text,
		Card:                     withOpacity(darker, darkerRGB, opacity),
		CardForeground:           text,
		Popover:                  withOpacity(darker, darkerRGB, opacity),
		PopoverForeground:        text,
		Primary:                  primary,
		PrimaryForeground:        text,
		Secondary:                withOpacity(lighter.Hex(), lighter, opacity),
		SecondaryForeground:      text,
		Muted:                    withOpacity(evenDarker.Hex(), evenDarker, opacity),
		MutedForeground:          muted,
		Accent:                   accent,
		AccentForeground:         text,
		Destructive:              Destructive,
		DestructiveForeground:    DestructiveForeground,
		Border:                   evenDarker.Hex(),
		Input:                    evenDarker.Hex(),
		Ring:                     primary,
		SidebarBackground:        withOpacity(evenDarker.Hex(), evenDarker, opacity),
		SidebarForeground:        text,
		SidebarPrimary:           primary,
		SidebarPrimaryForeground: text,
		SidebarAccent:            accent,
		SidebarAccentForeground:  text,
		SidebarBorder:            darker,
		SidebarRing:              primary,
	}
}

// Active is the resolved theme handed to the rendering layer. It replaces the
// previous one wholesale.
type Active struct {
	Color   string  `json:"color"`
	Base    string  `json:"base"`
	Opacity float64 `json:"opacity"`
	Palette Palette `json:"palette"`
	Vars    []Var   `json:"vars"`
}

// Resolve builds the active theme for a stored theme color.
func Resolve(color string) (Active, error) {
	p, err := FromThemeColor(color)
	if err != nil {
		return Active{}, err
	}
	opacity, err := OpacityPercent(color)
	if err != nil {
		return Active{}, err
	}
	return Active{
		Color:   color,
		Base:    color[:7],
		Opacity: opacity,
		Palette: p,
		Vars:    p.Vars(),
	}, nil
}
