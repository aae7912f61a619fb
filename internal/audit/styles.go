package audit

import "github.com/charmbracelet/lipgloss"

var (
	accent   = lipgloss.Color("39")
	muted    = lipgloss.Color("240")
	subtle   = lipgloss.Color("245")
	light    = lipgloss.Color("252")
	bright   = lipgloss.Color("15")
	selected = lipgloss.Color("24")
	danger   = lipgloss.Color("196")
	barBg    = lipgloss.Color("236")
)

var (
	rowTitleStyle   = lipgloss.NewStyle().Bold(true)
	rowSubStyle     = lipgloss.NewStyle().Foreground(subtle)
	focusTitleStyle = rowTitleStyle.Foreground(bright).Background(selected)
	focusSubStyle   = lipgloss.NewStyle().Foreground(light).Background(selected)
	emptyPaneStyle  = lipgloss.NewStyle().Foreground(muted)

	statusBarStyle   = lipgloss.NewStyle().Padding(0, 1).Foreground(light).Background(barBg)
	detailTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(bright).MarginBottom(1)
	labelStyle       = lipgloss.NewStyle().Bold(true).Foreground(accent).Width(16)
	dividerStyle     = lipgloss.NewStyle().Foreground(muted)
	hintStyle        = lipgloss.NewStyle().Foreground(subtle).Italic(true)
	bodyStyle        = lipgloss.NewStyle().Foreground(light)
	errorStyle       = lipgloss.NewStyle().Foreground(danger)
)

func focusColor(focused bool) lipgloss.Color {
	if focused {
		return accent
	}
	return muted
}

func paneBorder(focused bool) lipgloss.Style {
	return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(focusColor(focused))
}

func paneHeader(focused bool) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(focusColor(focused))
}
