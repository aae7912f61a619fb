package audit

import (
	"cmp"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/jobpipe/internal/model"
)

// detailView is the full-screen view of a single job.
type detailView struct {
	job         model.Job
	vp          viewport.Model
	showDesc    bool
	showPreview bool
}

func newDetailView(job model.Job, width, height int) detailView {
	return detailView{job: job, vp: viewport.New(width, height)}
}

func (d *detailView) resize(width, height int) {
	d.vp.Width, d.vp.Height = width, height
}

func (d detailView) render(previewer Previewer, width int) string {
	j := d.job
	wrap := max(width-8, 20)

	var b strings.Builder
	field := func(label, value string) {
		if value != "" {
			b.WriteString(labelStyle.Render(label) + value + "\n")
		}
	}
	section := func(title string) {
		rule := "── " + title + " " + strings.Repeat("─", max(wrap-len(title)-4, 3))
		b.WriteString("\n" + dividerStyle.Render(rule) + "\n\n")
	}
	hint := func(text string) {
		b.WriteString("\n" + hintStyle.Render("  "+text) + "\n")
	}

	status := string(j.Status)
	if j.Status == model.StatusError {
		status = errorStyle.Render(status)
	}
	scraped := ""
	if !j.ScrapedDate.IsZero() {
		scraped = j.ScrapedDate.Local().Format("2006-01-02 15:04 MST")
	}

	groups := [][][2]string{
		{{"Title", j.Title}, {"Company", j.Company}, {"Location", j.Location}, {"Status", status}},
		{
			{"Job Type", j.JobType},
			{"Remote", j.RemoteType},
			{"Experience", j.ExperienceLevel},
			{"Salary", formatSalary(j)},
			{"Skills", strings.Join(j.RequiredSkills, ", ")},
			{"Preferred", strings.Join(j.PreferredSkills, ", ")},
		},
		{{"Posted", localDate(j.PostedDate)}, {"Scraped", scraped}, {"Deadline", localDate(j.Deadline)}},
		{{"Source", j.SourcePlatform}, {"Job ID", j.ID}, {"External ID", j.ExternalID}, {"Job URL", j.URL}},
	}
	for i, group := range groups {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, f := range group {
			field(f[0], f[1])
		}
	}

	if j.Requirements != "" {
		section("Requirements")
		b.WriteString(bodyStyle.Render(wordWrap(j.Requirements, wrap)) + "\n")
	}

	if previewer != nil {
		switch resp, ok := previewer.Preview(j); {
		case !d.showPreview:
			hint("press p to preview the response")
		case !ok:
			section("Response Preview")
			b.WriteString(hintStyle.Render("  job does not meet the response criteria") + "\n")
		default:
			section("Response Preview")
			field("Subject", resp.Subject)
			b.WriteString("\n" + bodyStyle.Render(resp.Body) + "\n")
		}
	}

	if j.Description != "" {
		if d.showDesc {
			section("Job Description")
			b.WriteString(bodyStyle.Render(wordWrap(j.Description, wrap)) + "\n")
		} else {
			hint("press r to read the job description")
		}
	}

	return b.String()
}

func localDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Local().Format(time.DateOnly)
}

func formatSalary(j model.Job) string {
	currency := cmp.Or(j.SalaryCurrency, "USD")
	switch lo, hi := j.SalaryMin, j.SalaryMax; {
	case lo != nil && hi != nil:
		return fmt.Sprintf("%s %.0f - %.0f", currency, *lo, *hi)
	case lo != nil:
		return fmt.Sprintf("%s %.0f+", currency, *lo)
	case hi != nil:
		return fmt.Sprintf("%s up to %.0f", currency, *hi)
	}
	return ""
}

// wordWrap breaks text on whitespace so no line exceeds width, except for
// single words longer than width.
func wordWrap(text string, width int) string {
	var b strings.Builder
	col := 0
	for _, w := range strings.Fields(text) {
		switch {
		case col == 0:
		case col+1+len(w) > width:
			b.WriteByte('\n')
			col = 0
		default:
			b.WriteByte(' ')
			col++
		}
		b.WriteString(w)
		col += len(w)
	}
	return b.String()
}

// openURL hands url to the platform's browser launcher without waiting.
func openURL(url string) tea.Cmd {
	return func() tea.Msg {
		var cmd *exec.Cmd
		switch runtime.GOOS {
		case "darwin":
			cmd = exec.Command("open", url)
		case "windows":
			cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
		default:
			cmd = exec.Command("xdg-open", url)
		}
		_ = cmd.Start()
		return nil
	}
}
