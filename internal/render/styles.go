package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/comigor/sentiment-go/internal/prediction"
)

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	quote      lipgloss.Style
	score      lipgloss.Style
	section    lipgloss.Style
	empty      lipgloss.Style
	meta       lipgloss.Style
	barBracket lipgloss.Style
	barEmpty   lipgloss.Style
	errorText  lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		quote:      lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("252")),
		score:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("141")),
		section:    lipgloss.NewStyle().MarginTop(1),
		empty:      lipgloss.NewStyle().Faint(true),
		meta:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		barBracket: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		barEmpty:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		errorText:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
	}
}

var labelColors = map[prediction.Label]lipgloss.Color{
	prediction.Positive: lipgloss.Color("#10b981"),
	prediction.Neutral:  lipgloss.Color("#3b82f6"),
	prediction.Negative: lipgloss.Color("#ef4444"),
}

func labelStyle(l prediction.Label) lipgloss.Style {
	c, ok := labelColors[l]
	if !ok {
		c = lipgloss.Color("245")
	}
	return lipgloss.NewStyle().Bold(true).Foreground(c)
}

func badge(l prediction.Label) string {
	c, ok := labelColors[l]
	if !ok {
		c = lipgloss.Color("245")
	}
	return lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("0")).Background(c).Render(string(l))
}
