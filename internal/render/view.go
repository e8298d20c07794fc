// Package render draws results and history for terminal front ends.
package render

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/comigor/sentiment-go/internal/prediction"
)

const barWidth = 24

// Result draws the result card: label, analyzed text, headline confidence and
// the per-label breakdown.
func Result(r prediction.Result) string {
	return renderResult(r, newStyles())
}

// History draws per-label statistics followed by the recent analyses.
func History(history []prediction.Result, now time.Time) string {
	return renderHistory(history, now, newStyles())
}

// Error draws a failed submission.
func Error(err error) string {
	return newStyles().errorText.Render("✗ " + err.Error())
}

func renderResult(r prediction.Result, s styles) string {
	lines := []string{
		lipgloss.JoinHorizontal(lipgloss.Center, s.title.Render("Prediction Results "), badge(r.Sentiment)),
		s.quote.Render(fmt.Sprintf("%q", r.Text)),
		s.section.Render(s.header.Render("Confidence Score")),
		s.score.Render(prediction.FormatPercent(r.TopConfidence(), 1)),
		s.section.Render(s.header.Render("Confidence Breakdown")),
	}
	for _, l := range prediction.Labels {
		lines = append(lines, breakdownLine(l, r.Confidence.Of(l), s))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func breakdownLine(l prediction.Label, p float64, s styles) string {
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		labelStyle(l).Width(10).Render(string(l)),
		renderBar(l, p, s),
		" ",
		s.meta.Render(prediction.FormatPercent(p, 1)),
	)
}

func renderBar(l prediction.Label, p float64, s styles) string {
	filled := int(math.Round(clamp(p, 0, 1) * barWidth))
	fill := labelStyle(l).Render(strings.Repeat("█", filled))
	rest := s.barEmpty.Render(strings.Repeat("░", barWidth-filled))
	return s.barBracket.Render("[") + fill + rest + s.barBracket.Render("]")
}

func renderHistory(history []prediction.Result, now time.Time, s styles) string {
	lines := []string{
		s.title.Render("Prediction History"),
		s.header.Render(fmt.Sprintf("analyses: %d", len(history))),
	}
	if len(history) == 0 {
		lines = append(lines, s.empty.Render("No analyses yet."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	stats := prediction.Summarize(history)
	cells := make([]string, 0, len(stats.Labels))
	for _, ls := range stats.Labels {
		cell := lipgloss.JoinVertical(lipgloss.Center,
			labelStyle(ls.Label).Render(fmt.Sprintf("%d", ls.Count)),
			ls.Label.Title(),
			s.meta.Render(fmt.Sprintf("%.0f%%", ls.Percent)),
		)
		cells = append(cells, lipgloss.NewStyle().Width(14).Align(lipgloss.Center).Render(cell))
	}
	lines = append(lines, s.section.Render(lipgloss.JoinHorizontal(lipgloss.Top, cells...)))

	lines = append(lines, s.section.Render(s.header.Render("Recent Analyses")))
	for _, r := range history {
		lines = append(lines, historyLine(r, now, s))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func historyLine(r prediction.Result, now time.Time, s styles) string {
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		labelStyle(r.Sentiment).Width(10).Render(string(r.Sentiment)),
		s.meta.Width(10).Render(prediction.TimeAgo(r.CreatedAt(), now)),
		s.meta.Width(18).Render(prediction.FormatPercent(r.TopConfidence(), 1)+" confidence"),
		truncate(r.Text, 48),
	)
}

func truncate(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n-1]) + "…"
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
