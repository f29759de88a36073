package logview

import (
	tea "github.com/charmbracelet/bubbletea"
)

// chromeHeight is the header plus footer rows around the viewport.
const chromeHeight = 2

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = newViewport(msg.Width, msg.Height-chromeHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - chromeHeight
		}
		m.viewport.SetContent(m.renderEntries())
		if m.follow {
			m.viewport.GotoBottom()
		}
		return m, nil

	case entryMsg:
		m.entries = append(m.entries, Entry(msg))
		if len(m.entries) > maxEntries {
			m.entries = m.entries[len(m.entries)-maxEntries:]
		}
		if m.ready {
			m.viewport.SetContent(m.renderEntries())
			if m.follow {
				m.viewport.GotoBottom()
			}
		}
		return m, waitForEntry(m.lines)

	case eofMsg:
		m.eof = true
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "f":
			m.follow = !m.follow
			if m.follow && m.ready {
				m.viewport.GotoBottom()
			}
			return m, nil
		case "g":
			if m.ready {
				m.viewport.GotoTop()
			}
			m.follow = false
			return m, nil
		case "G":
			if m.ready {
				m.viewport.GotoBottom()
			}
			return m, nil
		}
		// Scrolling keys pause follow so the view stays put.
		switch msg.String() {
		case "up", "down", "pgup", "pgdown", "k", "j":
			m.follow = false
		}
	}

	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}
