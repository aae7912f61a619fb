package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobpipe/internal/model"
)

// loadTimeout bounds a single repository load.
const loadTimeout = 2 * time.Minute

// ErrCancelled is returned by RunLoader when the user aborts with ctrl+c.
var ErrCancelled = errors.New("cancelled")

// LoadFunc fetches the jobs shown in the audit view.
type LoadFunc func(ctx context.Context) ([]model.Job, error)

type loadedMsg struct {
	jobs []model.Job
	err  error
}

type loaderModel struct {
	label   string
	load    LoadFunc
	spinner spinner.Model
	jobs    []model.Job
	err     error
	done    bool
}

func newLoader(label string, load LoadFunc) loaderModel {
	return loaderModel{
		label: label,
		load:  load,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(accent)),
		),
	}
}

func (m loaderModel) Init() tea.Cmd {
	load := m.load
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		jobs, err := load(ctx)
		return loadedMsg{jobs: jobs, err: err}
	})
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.jobs, m.err, m.done = msg.jobs, msg.err, true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.err, m.done = ErrCancelled, true
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s Loading %s...\n", m.spinner.View(), m.label)
}

// RunLoader renders an inline spinner while load runs and returns its result.
func RunLoader(label string, load LoadFunc) ([]model.Job, error) {
	result, err := tea.NewProgram(newLoader(label, load)).Run()
	if err != nil {
		return nil, err
	}
	final := result.(loaderModel)
	return final.jobs, final.err
}
