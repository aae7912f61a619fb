package audit

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobpipe/internal/model"
)

var (
	pickerTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(1, 0, 1, 2)
	pickerRowStyle   = lipgloss.NewStyle().PaddingLeft(4)
	pickerFocusStyle = lipgloss.NewStyle().PaddingLeft(2).Bold(true).Foreground(accent)
	pickerEmptyStyle = pickerRowStyle.Foreground(muted)
	pickerHelpStyle  = lipgloss.NewStyle().Padding(1, 0, 0, 2)
)

// StatusOption is one entry in the status picker. A nil Status selects
// every stored job.
type StatusOption struct {
	Label  string
	Status *model.JobStatus
	Count  int
}

// StatusOptions lists "all jobs" followed by every lifecycle status, with
// the stored count for each.
func StatusOptions(counts map[model.JobStatus]int) []StatusOption {
	total := 0
	for _, n := range counts {
		total += n
	}
	opts := []StatusOption{{Label: "all jobs", Count: total}}
	for _, st := range model.JobStatuses() {
		opts = append(opts, StatusOption{Label: string(st), Status: &st, Count: counts[st]})
	}
	return opts
}

const (
	noChoice = -1
	quitted  = -2
)

type pickerModel struct {
	options []StatusOption
	cursor  int
	chosen  int
	help    help.Model
}

func newPicker(options []StatusOption) pickerModel {
	return pickerModel{options: options, chosen: noChoice, help: help.New()}
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, keys.Quit):
		m.chosen = quitted
		return m, tea.Quit
	case key.Matches(km, keys.Select):
		m.chosen = m.cursor
		return m, tea.Quit
	case key.Matches(km, keys.Up):
		m.cursor = clamp(m.cursor-1, 0, max(len(m.options)-1, 0))
	case key.Matches(km, keys.Down):
		m.cursor = clamp(m.cursor+1, 0, max(len(m.options)-1, 0))
	}
	return m, nil
}

func (m pickerModel) View() string {
	var b strings.Builder
	b.WriteString(pickerTitleStyle.Render("Job Audit: select a status"))
	b.WriteByte('\n')

	for i, o := range m.options {
		row := fmt.Sprintf("%s (%d)", o.Label, o.Count)
		switch {
		case i == m.cursor:
			b.WriteString(pickerFocusStyle.Render("> " + row))
		case o.Count == 0:
			b.WriteString(pickerEmptyStyle.Render(row))
		default:
			b.WriteString(pickerRowStyle.Render(row))
		}
		b.WriteByte('\n')
	}

	b.WriteString(pickerHelpStyle.Render(m.help.ShortHelpView(keys.pickerHelp())))
	return b.String()
}

// RunStatusPicker shows the status selector and returns the index of the
// chosen option, or -1 when the user quits.
func RunStatusPicker(options []StatusOption) (int, error) {
	result, err := tea.NewProgram(newPicker(options)).Run()
	if err != nil {
		return noChoice, err
	}
	if idx := result.(pickerModel).chosen; idx >= 0 {
		return idx, nil
	}
	return noChoice, nil
}
