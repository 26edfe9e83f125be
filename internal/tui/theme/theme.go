// Package theme defines the color palettes for the dashboard.
package theme

import (
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme is a complete color palette.
type Theme struct {
	// Base colors
	Base     lipgloss.Color // Background
	Surface0 lipgloss.Color // Surface
	Surface1 lipgloss.Color // Surface highlight
	Surface2 lipgloss.Color // Surface bright

	// Text colors
	Text    lipgloss.Color // Primary text
	Subtext lipgloss.Color // Secondary text
	Overlay lipgloss.Color // Dimmed text

	// Accent colors
	Pink     lipgloss.Color
	Mauve    lipgloss.Color
	Red      lipgloss.Color
	Peach    lipgloss.Color
	Yellow   lipgloss.Color
	Green    lipgloss.Color
	Teal     lipgloss.Color
	Sky      lipgloss.Color
	Blue     lipgloss.Color
	Lavender lipgloss.Color

	// Semantic colors
	Primary lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	// Domain colors
	Session lipgloss.Color // transcripts and sessions
	Team    lipgloss.Color // team and agent panes
	Tracker lipgloss.Color // remote tracker tabs
	Worker  lipgloss.Color // spawned processes
}

// CatppuccinMocha is the default dark theme.
var CatppuccinMocha = Theme{
	Base:     lipgloss.Color("#1e1e2e"),
	Surface0: lipgloss.Color("#313244"),
	Surface1: lipgloss.Color("#45475a"),
	Surface2: lipgloss.Color("#585b70"),

	Text:    lipgloss.Color("#cdd6f4"),
	Subtext: lipgloss.Color("#a6adc8"),
	Overlay: lipgloss.Color("#6c7086"),

	Pink:     lipgloss.Color("#f5c2e7"),
	Mauve:    lipgloss.Color("#cba6f7"),
	Red:      lipgloss.Color("#f38ba8"),
	Peach:    lipgloss.Color("#fab387"),
	Yellow:   lipgloss.Color("#f9e2af"),
	Green:    lipgloss.Color("#a6e3a1"),
	Teal:     lipgloss.Color("#94e2d5"),
	Sky:      lipgloss.Color("#89dceb"),
	Blue:     lipgloss.Color("#89b4fa"),
	Lavender: lipgloss.Color("#b4befe"),

	Primary: lipgloss.Color("#89b4fa"),
	Success: lipgloss.Color("#a6e3a1"),
	Warning: lipgloss.Color("#f9e2af"),
	Error:   lipgloss.Color("#f38ba8"),
	Info:    lipgloss.Color("#89dceb"),

	Session: lipgloss.Color("#cba6f7"),
	Team:    lipgloss.Color("#94e2d5"),
	Tracker: lipgloss.Color("#89b4fa"),
	Worker:  lipgloss.Color("#fab387"),
}

// CatppuccinLatte is the light variant.
var CatppuccinLatte = Theme{
	Base:     lipgloss.Color("#eff1f5"),
	Surface0: lipgloss.Color("#ccd0da"),
	Surface1: lipgloss.Color("#bcc0cc"),
	Surface2: lipgloss.Color("#acb0be"),

	Text:    lipgloss.Color("#4c4f69"),
	Subtext: lipgloss.Color("#6c6f85"),
	Overlay: lipgloss.Color("#7c7f93"),

	Pink:     lipgloss.Color("#ea76cb"),
	Mauve:    lipgloss.Color("#8839ef"),
	Red:      lipgloss.Color("#d20f39"),
	Peach:    lipgloss.Color("#fe640b"),
	Yellow:   lipgloss.Color("#df8e1d"),
	Green:    lipgloss.Color("#40a02b"),
	Teal:     lipgloss.Color("#179299"),
	Sky:      lipgloss.Color("#04a5e5"),
	Blue:     lipgloss.Color("#1e66f5"),
	Lavender: lipgloss.Color("#7287fd"),

	Primary: lipgloss.Color("#1e66f5"),
	Success: lipgloss.Color("#40a02b"),
	Warning: lipgloss.Color("#df8e1d"),
	Error:   lipgloss.Color("#d20f39"),
	Info:    lipgloss.Color("#04a5e5"),

	Session: lipgloss.Color("#8839ef"),
	Team:    lipgloss.Color("#179299"),
	Tracker: lipgloss.Color("#1e66f5"),
	Worker:  lipgloss.Color("#fe640b"),
}

// Plain uses terminal defaults everywhere; picked when NO_COLOR is set.
var Plain = Theme{}

// NoColorEnabled reports whether color output should be disabled. Respects
// the NO_COLOR standard; ASSOC_NO_COLOR overrides it in either direction.
func NoColorEnabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ASSOC_NO_COLOR"))) {
	case "0", "false", "no", "off":
		return false
	case "1", "true", "yes", "on":
		return true
	}
	_, set := os.LookupEnv("NO_COLOR")
	return set
}

// FromName returns a theme by name.
func FromName(name string) Theme {
	if NoColorEnabled() {
		return Plain
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "plain", "none", "no-color", "nocolor":
		return Plain
	case "latte", "light":
		return CatppuccinLatte
	case "mocha", "dark":
		return CatppuccinMocha
	default:
		return autoTheme()
	}
}

// Current returns the active theme based on ASSOC_THEME.
func Current() Theme {
	return FromName(os.Getenv("ASSOC_THEME"))
}

// detectDarkBackground is a variable for testability.
var detectDarkBackground = func() bool {
	return termenv.NewOutput(os.Stdout).HasDarkBackground()
}

var (
	cachedAutoTheme Theme
	autoThemeOnce   sync.Once
)

func autoTheme() Theme {
	autoThemeOnce.Do(func() {
		cachedAutoTheme = CatppuccinMocha
		defer func() {
			if recover() != nil {
				cachedAutoTheme = CatppuccinMocha
			}
		}()
		if !detectDarkBackground() {
			cachedAutoTheme = CatppuccinLatte
		}
	})
	return cachedAutoTheme
}
