package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ngmaloney/reefcast/internal/scoring"
)

var (
	colorPrimary = lipgloss.Color("#00BFFF") // Deep sky blue
	colorDanger  = lipgloss.Color("#FF6B6B") // Red for alerts
	colorWarning = lipgloss.Color("#FFD93D") // Yellow for warnings
	colorSuccess = lipgloss.Color("#6BCF7F") // Green
	colorMuted   = lipgloss.Color("#6C757D") // Gray
	colorBorder  = lipgloss.Color("#4A90E2") // Border blue
	colorOrange  = lipgloss.Color("#FF8C42")
	colorLime    = lipgloss.Color("#A3D977")
)

// Styles is the palette a renderer draws with. The plain palette renders
// text unchanged.
type Styles struct {
	Title   lipgloss.Style
	Section lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Danger  lipgloss.Style
	Box     lipgloss.Style
	Grades  map[scoring.Grade]lipgloss.Style
}

// ColorStyles is the terminal palette
func ColorStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(colorPrimary).
			Padding(0, 1),
		Section: lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true),
		Label: lipgloss.NewStyle().
			Foreground(colorMuted).
			Bold(true),
		Muted: lipgloss.NewStyle().
			Foreground(colorMuted),
		Success: lipgloss.NewStyle().
			Foreground(colorSuccess),
		Warning: lipgloss.NewStyle().
			Foreground(colorWarning).
			Bold(true),
		Danger: lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1),
		Grades: map[scoring.Grade]lipgloss.Style{
			scoring.GradeA: lipgloss.NewStyle().Foreground(colorSuccess).Bold(true),
			scoring.GradeB: lipgloss.NewStyle().Foreground(colorLime).Bold(true),
			scoring.GradeC: lipgloss.NewStyle().Foreground(colorWarning).Bold(true),
			scoring.GradeD: lipgloss.NewStyle().Foreground(colorOrange).Bold(true),
			scoring.GradeF: lipgloss.NewStyle().Foreground(colorDanger).Bold(true),
		},
	}
}

// PlainStyles renders without escapes, for files, pipes and tests
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Title:   plain,
		Section: plain,
		Label:   plain,
		Muted:   plain,
		Success: plain,
		Warning: plain,
		Danger:  plain,
		Box:     plain,
		Grades:  map[scoring.Grade]lipgloss.Style{},
	}
}

// Grade renders a letter grade in its colour
func (s Styles) Grade(g scoring.Grade) string {
	if style, ok := s.Grades[g]; ok {
		return style.Render(string(g))
	}
	return string(g)
}
