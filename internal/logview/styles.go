package logview

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFD700")).
			Background(lipgloss.Color("#1a1a2e")).
			Padding(0, 2)

	followStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Padding(0, 2)

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAA00")).
			Padding(0, 2)

	hotkeysStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#555555")).
			Padding(0, 2)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#555555"))

	rawStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	levelStyles = map[string]lipgloss.Style{
		"debug":   lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		"info":    lipgloss.NewStyle().Foreground(lipgloss.Color("#5599FF")),
		"warn":    lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAA00")),
		"warning": lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAA00")),
		"error":   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444")),
		"fatal":   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true),
	}

	levelDefault = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
)

func levelStyle(level string) lipgloss.Style {
	if s, ok := levelStyles[level]; ok {
		return s
	}
	return levelDefault
}
