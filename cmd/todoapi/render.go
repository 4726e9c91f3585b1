package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jpalmerr/todoapi/internal/store"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	doneStyle    = lipgloss.NewStyle().Faint(true).Strikethrough(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)

	boxChecked   = "☑"
	boxUnchecked = "☐"
)

const progressWidth = 28

// renderTodo formats one todo as a single line.
func renderTodo(t store.Todo) string {
	box := pendingStyle.Render(boxUnchecked)
	text := t.Text
	if t.Done {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(text)
	}
	id := accentStyle.Render(fmt.Sprintf("#%d", t.ID))
	created := mutedStyle.Render(t.CreatedAt.Local().Format("2006-01-02 15:04"))
	return fmt.Sprintf("%s %s %s  %s", box, id, text, created)
}

// renderStats returns the summary line for a list.
func renderStats(todos []store.Todo) string {
	done := 0
	for _, t := range todos {
		if t.Done {
			done++
		}
	}
	return fmt.Sprintf("Total: %d | Completed: %d | Remaining: %d", len(todos), done, len(todos)-done)
}

// progressBar draws a fixed-width completion bar.
func progressBar(done, total, width int) string {
	if total == 0 {
		total = 1
	}
	if width <= 0 {
		width = progressWidth
	}
	filled := done * width / total
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + fmt.Sprintf("] %d/%d", done, total)
}

// printList writes todos inside a bordered panel followed by the stats line.
func printList(w io.Writer, todos []store.Todo) {
	lines := []string{titleStyle.Render("Todos")}
	if len(todos) == 0 {
		lines = append(lines, mutedStyle.Render("nothing to do"))
	}
	done := 0
	for _, t := range todos {
		lines = append(lines, renderTodo(t))
		if t.Done {
			done++
		}
	}
	lines = append(lines, "", progressBar(done, len(todos), progressWidth))

	fmt.Fprintln(w, panelStyle.Render(strings.Join(lines, "\n")))
	fmt.Fprintln(w, mutedStyle.Render(renderStats(todos)))
}

func printOK(w io.Writer, msg string) {
	fmt.Fprintln(w, successStyle.Render("✔ "+msg))
}
