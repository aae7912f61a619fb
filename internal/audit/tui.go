package audit

import (
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobpipe/internal/filter"
	"github.com/amishk599/jobpipe/internal/model"
)

// Previewer renders the response a job would receive.
type Previewer interface {
	Preview(job model.Job) (*model.JobResponse, bool)
}

type screen int

const (
	screenList screen = iota
	screenDetail
)

const (
	storedPane = iota
	eligiblePane
)

type auditModel struct {
	panes     [2]pane
	focus     int
	screen    screen
	detail    detailView
	previewer Previewer
	help      help.Model

	width, height int
	sized         bool
	wantQuit      bool
}

func newAuditModel(stored, eligible []model.Job, previewer Previewer) auditModel {
	return auditModel{
		panes: [2]pane{
			storedPane:   newPane("Stored Jobs", stored),
			eligiblePane: newPane("Eligible Jobs", eligible),
		},
		previewer: previewer,
		help:      help.New(),
	}
}

func (m auditModel) Init() tea.Cmd { return nil }

func (m auditModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.wantQuit = true
			return m, tea.Quit
		}
		if m.screen == screenDetail {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m *auditModel) resize(width, height int) {
	m.width, m.height, m.sized = width, height, true

	// Two bordered panes and a one column gap; header, borders and the
	// status bar take four rows.
	paneW, paneH := max((width-5)/2, 20), max(height-4, 5)
	for i := range m.panes {
		m.panes[i].resize(paneW, paneH)
	}
	m.refreshPanes()

	m.detail.resize(width-4, height-4)
	if m.screen == screenDetail {
		m.refreshDetail()
	}
}

func (m *auditModel) refreshPanes() {
	for i := range m.panes {
		m.panes[i].refresh(i == m.focus)
	}
}

func (m *auditModel) refreshDetail() {
	m.detail.vp.SetContent(m.detail.render(m.previewer, m.width))
}

func (m auditModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := &m.panes[m.focus]
	switch {
	case key.Matches(msg, keys.Back):
		return m, tea.Quit
	case key.Matches(msg, keys.Switch):
		m.focus = 1 - m.focus
	case key.Matches(msg, keys.Up):
		p.move(-1)
	case key.Matches(msg, keys.Down):
		p.move(1)
	case key.Matches(msg, keys.Select):
		job, ok := p.selected()
		if !ok {
			return m, nil
		}
		m.screen = screenDetail
		m.detail = newDetailView(job, m.width-4, m.height-4)
		m.refreshDetail()
		return m, nil
	default:
		// pgup/pgdn/home/end scroll the focused pane.
		var cmd tea.Cmd
		p.vp, cmd = p.vp.Update(msg)
		return m, cmd
	}
	m.refreshPanes()
	return m, nil
}

func (m auditModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := &m.detail
	switch {
	case key.Matches(msg, keys.Back):
		m.screen = screenList
		return m, nil
	case key.Matches(msg, keys.Browser):
		if d.job.URL == "" {
			return m, nil
		}
		return m, openURL(d.job.URL)
	case key.Matches(msg, keys.Desc):
		if d.job.Description != "" {
			d.showDesc = !d.showDesc
			m.refreshDetail()
			d.vp.GotoTop()
		}
		return m, nil
	case key.Matches(msg, keys.Preview):
		if m.previewer != nil {
			d.showPreview = !d.showPreview
			m.refreshDetail()
		}
		return m, nil
	}

	var cmd tea.Cmd
	d.vp, cmd = d.vp.Update(msg)
	return m, cmd
}

func (m auditModel) View() string {
	switch {
	case !m.sized:
		return "Initializing..."
	case m.screen == screenDetail:
		return m.detailScreen()
	}
	return m.listScreen()
}

func (m auditModel) listScreen() string {
	var headers, bodies [2]string
	for i, p := range m.panes {
		focused := i == m.focus
		label := paneHeader(focused).Render(fmt.Sprintf(" %s (%d)", p.title, len(p.jobs)))
		headers[i] = lipgloss.NewStyle().Width(p.vp.Width + 2).Render(label)
		bodies[i] = paneBorder(focused).Width(p.vp.Width).Render(p.vp.View())
	}

	stored, elig := len(m.panes[storedPane].jobs), len(m.panes[eligiblePane].jobs)
	summary := fmt.Sprintf("%d stored | %d eligible | %d not eligible", stored, elig, stored-elig)

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, headers[0], " ", headers[1]),
		lipgloss.JoinHorizontal(lipgloss.Top, bodies[0], " ", bodies[1]),
		m.statusBar(summary, keys.listHelp()),
	)
}

func (m auditModel) detailScreen() string {
	bindings := keys.detailHelp(m.detail.job.Description != "", m.previewer != nil)
	return lipgloss.JoinVertical(lipgloss.Left,
		detailTitleStyle.Render("Job Details"),
		paneBorder(true).Width(m.width-2).Render(m.detail.vp.View()),
		m.statusBar("", bindings),
	)
}

func (m auditModel) statusBar(summary string, bindings []key.Binding) string {
	text := m.help.ShortHelpView(bindings)
	if summary != "" {
		text = summary + "    " + text
	}
	return statusBarStyle.Width(m.width).Render(text)
}

// sortJobsByDate orders newest first by posted date, falling back to the
// scrape time for jobs without one.
func sortJobsByDate(jobs []model.Job) {
	listed := func(j model.Job) time.Time {
		if j.PostedDate != nil {
			return *j.PostedDate
		}
		return j.ScrapedDate
	}
	slices.SortStableFunc(jobs, func(a, b model.Job) int {
		return listed(b).Compare(listed(a))
	})
}

func eligible(jobs []model.Job, criteria filter.Criteria) []model.Job {
	var out []model.Job
	for _, j := range jobs {
		if criteria.Match(j) {
			out = append(out, j)
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

// RunAuditTUI opens the split view of stored jobs next to the ones that
// meet criteria. A nil previewer hides the response preview. It reports
// whether the user quit (q, ctrl+c) as opposed to going back to the picker
// (esc).
func RunAuditTUI(jobs []model.Job, criteria filter.Criteria, previewer Previewer) (bool, error) {
	sortJobsByDate(jobs)

	m := newAuditModel(jobs, eligible(jobs, criteria), previewer)
	result, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return false, err
	}
	return result.(auditModel).wantQuit, nil
}
