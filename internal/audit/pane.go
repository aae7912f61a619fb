package audit

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"

	"github.com/amishk599/jobpipe/internal/model"
)

// rowHeight is the number of lines one job takes in a pane: title,
// subtitle and a blank separator.
const rowHeight = 3

// pane is one scrollable job list of the split view.
type pane struct {
	title  string
	jobs   []model.Job
	cursor int
	vp     viewport.Model
}

func newPane(title string, jobs []model.Job) pane {
	return pane{title: title, jobs: jobs, vp: viewport.New(0, 0)}
}

func (p *pane) resize(width, height int) {
	p.vp.Width, p.vp.Height = width, height
}

// move shifts the cursor and scrolls so the selected row stays visible.
func (p *pane) move(delta int) {
	p.cursor = clamp(p.cursor+delta, 0, max(len(p.jobs)-1, 0))

	top := p.cursor * rowHeight
	bottom := top + rowHeight - 1
	switch {
	case top < p.vp.YOffset:
		p.vp.SetYOffset(top)
	case bottom >= p.vp.YOffset+p.vp.Height:
		p.vp.SetYOffset(bottom - p.vp.Height + 1)
	}
}

func (p *pane) selected() (model.Job, bool) {
	if len(p.jobs) == 0 {
		return model.Job{}, false
	}
	return p.jobs[p.cursor], true
}

func (p *pane) refresh(focused bool) {
	p.vp.SetContent(p.rows(focused))
}

func (p *pane) rows(focused bool) string {
	if len(p.jobs) == 0 {
		return emptyPaneStyle.Render("  (no jobs)")
	}

	rows := make([]string, 0, len(p.jobs))
	for i, j := range p.jobs {
		title, sub, marker := rowTitleStyle, rowSubStyle, "  "
		if focused && i == p.cursor {
			title, sub, marker = focusTitleStyle, focusSubStyle, "> "
		}

		posted := "n/a"
		if j.PostedDate != nil {
			posted = j.PostedDate.Format(time.DateOnly)
		}
		meta := strings.Join([]string{j.Company, orDash(j.Location), posted}, " · ")

		rows = append(rows, marker+title.Render(j.Title)+"\n"+marker+sub.Render(meta))
	}
	return strings.Join(rows, "\n\n")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
