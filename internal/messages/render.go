package messages

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	entryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6B7280")).
			Padding(0, 1)
)

// Render writes the messages panel for log to w. Nothing is written when the
// log is empty.
func Render(w io.Writer, log *Log) error {
	entries := log.Messages()
	if len(entries) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Messages"))
	for _, e := range entries {
		b.WriteString("\n")
		b.WriteString(entryStyle.Render(e))
	}

	_, err := fmt.Fprintln(w, panelStyle.Render(b.String()))
	return err
}
