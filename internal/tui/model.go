// Package tui is the terminal front end: a textarea bound to the session
// draft, a submit key and the rendered result and history.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/comigor/sentiment-go/internal/render"
	"github.com/comigor/sentiment-go/internal/session"
)

type submittedMsg struct {
	err error
}

// Model is the bubbletea model around one session.
type Model struct {
	ctrl    *session.Controller
	input   textarea.Model
	spinner spinner.Model
	// submitting covers the gap between dispatching the submit command and
	// the controller entering Submitting.
	submitting bool
	err        error
	now        func() time.Time
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	metaStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpStyle  = lipgloss.NewStyle().Faint(true)
	buttonOn   = lipgloss.NewStyle().Bold(true).Padding(0, 2).Foreground(lipgloss.Color("255")).Background(lipgloss.Color("63"))
	buttonOff  = lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("245")).Background(lipgloss.Color("236"))
)

// New creates a model bound to ctrl. The textarea starts with the session draft.
func New(ctrl *session.Controller) Model {
	ta := textarea.New()
	ta.Placeholder = "Enter your text here... Try phrases like 'I love this product!' or 'This is disappointing.'"
	ta.SetWidth(72)
	ta.SetHeight(5)
	ta.ShowLineNumbers = false
	ta.SetValue(ctrl.Snapshot().Draft)
	ta.Focus()

	return Model{
		ctrl:    ctrl,
		input:   ta,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		now:     time.Now,
	}
}

// Run starts the program on the terminal.
func Run(ctrl *session.Controller) error {
	_, err := tea.NewProgram(New(ctrl), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) loading() bool {
	return m.submitting || m.ctrl.View().Loading
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "ctrl+s":
			if m.loading() || !m.ctrl.View().CanSubmit {
				return m, nil
			}
			m.submitting = true
			m.err = nil
			return m, tea.Batch(m.spinner.Tick, m.submit())
		}
		if m.loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if err := m.ctrl.SetDraft(m.input.Value()); err != nil {
			m.err = err
		}
		return m, cmd

	case submittedMsg:
		m.submitting = false
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		if !m.loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.input.SetWidth(min(msg.Width-2, 100))
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return submittedMsg{err: ctrl.Submit(context.Background())}
	}
}

func (m Model) View() string {
	v := m.ctrl.View()
	sections := []string{
		titleStyle.Render("Darija Sentiment Analysis"),
		metaStyle.Render("Analyze the emotional tone of your text"),
		"",
		m.input.View(),
	}

	counts := fmt.Sprintf("%d characters", v.CharCount)
	if v.CharCount > 0 {
		counts += fmt.Sprintf(" · %d words", v.WordCount)
	}
	sections = append(sections, metaStyle.Render(counts), "")

	if m.loading() {
		sections = append(sections, buttonOff.Render(m.spinner.View()+" "+session.SubmittingLabel))
	} else if v.CanSubmit {
		sections = append(sections, buttonOn.Render(session.SubmitLabel))
	} else {
		sections = append(sections, buttonOff.Render(session.SubmitLabel))
	}

	if m.err != nil {
		sections = append(sections, "", render.Error(m.err))
	}
	if v.Current != nil {
		sections = append(sections, "", render.Result(*v.Current))
	}
	if len(v.History) > 0 {
		sections = append(sections, "", render.History(v.History, m.now()))
	}
	sections = append(sections, "", helpStyle.Render("ctrl+s analyze · esc quit"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
