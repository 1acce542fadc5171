package tui

import "github.com/charmbracelet/lipgloss"

// Theme 定义 TUI 主题色彩和样式
// Theme defines TUI colors and styles
type Theme struct {
	Primary lipgloss.Color
	Danger  lipgloss.Color
	Warning lipgloss.Color
	Success lipgloss.Color
	Muted   lipgloss.Color
	Text    lipgloss.Color
	TextDim lipgloss.Color
	Border  lipgloss.Color

	TitleStyle     lipgloss.Style
	StatsStyle     lipgloss.Style
	StatusBarStyle lipgloss.Style
	PanelStyle     lipgloss.Style
	ErrorStyle     lipgloss.Style
	SuccessStyle   lipgloss.Style
	MutedStyle     lipgloss.Style
	BadgeStyle     lipgloss.Style
}

// DarkTheme is the default dark theme
func DarkTheme() Theme {
	t := Theme{
		Primary: lipgloss.Color("#7C3AED"),
		Danger:  lipgloss.Color("#EF4444"),
		Warning: lipgloss.Color("#F59E0B"),
		Success: lipgloss.Color("#10B981"),
		Muted:   lipgloss.Color("#6B7280"),
		Text:    lipgloss.Color("#E5E7EB"),
		TextDim: lipgloss.Color("#9CA3AF"),
		Border:  lipgloss.Color("#374151"),
	}

	t.TitleStyle = lipgloss.NewStyle().
		Foreground(t.Primary).
		Bold(true).
		Padding(0, 1)

	t.StatsStyle = lipgloss.NewStyle().
		Foreground(t.TextDim).
		Padding(0, 1)

	t.StatusBarStyle = lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(lipgloss.Color("#111827"))

	t.PanelStyle = lipgloss.NewStyle().
		Foreground(t.Text).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.Border)

	t.ErrorStyle = lipgloss.NewStyle().
		Foreground(t.Danger).
		Bold(true)

	t.SuccessStyle = lipgloss.NewStyle().
		Foreground(t.Success)

	t.MutedStyle = lipgloss.NewStyle().
		Foreground(t.Muted)

	t.BadgeStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(t.Warning).
		Bold(true).
		Padding(0, 1)

	return t
}
