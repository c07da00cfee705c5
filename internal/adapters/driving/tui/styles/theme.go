// Package styles provides colour themes and styling for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/alexandria/internal/core/domain"
)

// Theme defines the colour palette for the TUI.
type Theme struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Border     lipgloss.Color
	Bar        lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#B4637A"), // Rose
		Secondary:  lipgloss.Color("#56949F"), // Teal
		Foreground: lipgloss.Color("#E0DEF4"),
		Muted:      lipgloss.Color("#6E6A86"),
		Success:    lipgloss.Color("#9CCFD8"),
		Warning:    lipgloss.Color("#F6C177"),
		Error:      lipgloss.Color("#EB6F92"),
		Border:     lipgloss.Color("#403D52"),
		Bar:        lipgloss.Color("#1F1D2E"),
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Normal     lipgloss.Style
	Muted      lipgloss.Style
	Selected   lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
	Warning    lipgloss.Style
	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style
	Border     lipgloss.Style

	// kinds holds one badge style per chunk kind.
	kinds map[domain.ChunkKind]lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	badge := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Subtitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),

		Normal: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Foreground).
			Background(theme.Primary),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error),

		Success: lipgloss.NewStyle().
			Foreground(theme.Success),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Warning),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(theme.Bar).
			Padding(0, 1),

		Help: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Border: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border),

		kinds: map[domain.ChunkKind]lipgloss.Style{
			domain.ChunkKindOverview: badge(theme.Primary),
			domain.ChunkKindEndpoint: badge(theme.Secondary),
			domain.ChunkKindSchema:   badge(theme.Warning),
			domain.ChunkKindGlossary: badge(theme.Success),
			domain.ChunkKindUseCase:  badge(theme.Success),
			domain.ChunkKindGuide:    badge(theme.Foreground),
		},
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Kind renders a bracketed chunk kind badge.
func (s *Styles) Kind(kind domain.ChunkKind) string {
	style, ok := s.kinds[kind]
	if !ok {
		style = s.Muted
	}
	return style.Render("[" + kind.String() + "]")
}
