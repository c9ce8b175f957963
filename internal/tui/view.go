package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/parry/internal/keys"
	"github.com/verte-zerg/parry/internal/model"
	"github.com/verte-zerg/parry/internal/parry"
	"github.com/verte-zerg/parry/internal/stats"
)

var (
	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Background(lipgloss.Color("#A8071A")).
			Bold(true).
			Padding(1, 6).
			Border(lipgloss.ThickBorder(), true).
			BorderForeground(lipgloss.Color("#FF4D4F"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	armedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	punchStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	summaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.window.Visible() {
		return m.renderPunch()
	}
	return m.renderStatus()
}

func (m *Model) renderPunch() string {
	banner := bannerStyle.Render("PUNCH!")
	hint := hintStyle.Render(fmt.Sprintf("press %s to parry", keys.Display(m.tracker.Key())))
	barWidth := lipgloss.Width(banner)
	m.bar.Width = barWidth
	bar := m.bar.ViewAs(m.machine.WindowFraction(m.now))
	content := lipgloss.JoinVertical(lipgloss.Center, banner, "", bar, "", hint)
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderStatus() string {
	state := armedStyle.Render("armed")
	if m.machine.Phase() == parry.PhasePunching {
		state = punchStyle.Render("PUNCH!")
	}
	line := statusLine(m.log.Summary())
	if m.width > 0 {
		// Leave room for the state label and separator.
		line = runewidth.Truncate(line, maxInt(m.width-lipgloss.Width(state)-3, 1), "…")
	}
	status := state + " · " + summaryStyle.Render(line)
	return status + "\n" + footerStyle.Render(m.help.View(m.keys))
}

func statusLine(s model.Summary) string {
	if s.Total == 0 {
		return "waiting for the first punch"
	}
	return stats.FormatSummary(s)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
