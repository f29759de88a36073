package logview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
)

func newViewport(w, h int) viewport.Model {
	if h < 1 {
		h = 1
	}
	return viewport.New(w, h)
}

func (m model) View() string {
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.footerView())
	return b.String()
}

func (m model) headerView() string {
	header := headerStyle.Render(fmt.Sprintf(" %s ", m.title))
	mode := followStyle.Render("following")
	if !m.follow {
		mode = pausedStyle.Render("paused")
	}
	if m.eof {
		mode = pausedStyle.Render("stream ended")
	}
	return header + mode
}

func (m model) footerView() string {
	return hotkeysStyle.Render("f follow · g/G top/bottom · ↑/↓ scroll · q quit")
}

func (m model) renderEntries() string {
	var b strings.Builder
	for _, e := range m.entries {
		b.WriteString(renderEntry(e))
		b.WriteString("\n")
	}
	return b.String()
}

func renderEntry(e Entry) string {
	if e.Raw != "" || e.Message == "" {
		return rawStyle.Render(e.Raw)
	}

	ts := ""
	if !e.Time.IsZero() {
		ts = timeStyle.Render(e.Time.Format("15:04:05")) + " "
	}
	level := levelStyle(e.Level).Render(fmt.Sprintf("%-5s", strings.ToUpper(e.Level)))
	return fmt.Sprintf("%s%s %s", ts, level, e.Message)
}
