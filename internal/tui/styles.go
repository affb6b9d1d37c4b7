package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/tailorin/internal/panel"
)

var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39")) // bright blue

	inactiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")) // dim gray

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("39"))

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Width(10)

	focusedLabelStyle = labelStyle.
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	youStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	assistantStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	errorEntryStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	selectedEntryStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("236"))
)

var statusColors = map[panel.StatusKind]lipgloss.Color{
	panel.StatusIdle:     lipgloss.Color("245"),
	panel.StatusProgress: lipgloss.Color("33"),
	panel.StatusSuccess:  lipgloss.Color("42"),
	panel.StatusWarning:  lipgloss.Color("214"),
	panel.StatusError:    lipgloss.Color("196"),
}

// namedColors maps panel.Tier color names to terminal colors.
var namedColors = map[string]lipgloss.Color{
	"green":  lipgloss.Color("42"),
	"orange": lipgloss.Color("214"),
	"red":    lipgloss.Color("196"),
}

func renderStatus(s panel.Status) string {
	if s.Text == "" {
		return ""
	}
	return lipgloss.NewStyle().Foreground(statusColors[s.Kind]).Render(s.Text)
}

// renderMatch paints only the percentage in the tier color.
func renderMatch(m *panel.Match) string {
	if m == nil {
		return ""
	}
	pct := lipgloss.NewStyle().Bold(true).Foreground(namedColors[m.Tier.Color()]).Render(m.Percent())
	return m.Tier.Icon() + " Match Score: " + pct + " → " + m.Reason
}
