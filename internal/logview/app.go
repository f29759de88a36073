package logview

import (
	"bufio"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// Run renders a followed log stream in a full-screen viewer until the user
// quits. The reader is closed on exit, which also stops the underlying tail.
func Run(r io.ReadCloser, title string) error {
	lines := make(chan Entry, 64)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			lines <- ParseLine(scanner.Text())
		}
	}()

	p := tea.NewProgram(newModel(title, lines), tea.WithAltScreen())
	_, err := p.Run()
	r.Close()
	if err != nil {
		return fmt.Errorf("log viewer error: %w", err)
	}
	return nil
}
