package logview

import (
	"os"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// maxEntries bounds memory when following a chatty node for a long time.
const maxEntries = 5000

// model is the Bubble Tea model for the log viewer.
type model struct {
	title    string
	lines    <-chan Entry
	viewport viewport.Model
	entries  []Entry
	follow   bool
	eof      bool
	ready    bool
	width    int
	height   int
}

func newModel(title string, lines <-chan Entry) model {
	// Get initial terminal size so the first render isn't at width=0
	w, h, _ := term.GetSize(int(os.Stdout.Fd()))
	if w == 0 {
		w = 80
	}
	if h == 0 {
		h = 24
	}

	return model{
		title:  title,
		lines:  lines,
		follow: true,
		width:  w,
		height: h,
	}
}

func (m model) Init() tea.Cmd {
	return waitForEntry(m.lines)
}

// entryMsg carries the next parsed log line.
type entryMsg Entry

// eofMsg is sent when the log stream ends.
type eofMsg struct{}

// waitForEntry blocks on the line channel and turns it into a message.
func waitForEntry(lines <-chan Entry) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-lines
		if !ok {
			return eofMsg{}
		}
		return entryMsg(e)
	}
}
