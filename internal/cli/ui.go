package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED")).
		Background(lipgloss.Color("#1F2937")).
		Padding(0, 1).
		MarginBottom(1)

	panelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#3B82F6")).
		Padding(0, 2)

	keyStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280"))

	agentStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981")).
		Bold(true)

	interruptedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F59E0B")).
		Bold(true)

	errorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#EF4444")).
		Bold(true)

	successStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981"))

	infoStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#3B82F6"))
)

// DisplayWelcomeBanner shows the chat banner
func DisplayWelcomeBanner(w io.Writer, model string) {
	fmt.Fprintln(w, titleStyle.Render("FinAgentGo morning brief"))
	lines := []string{
		"Ask for a pre-market brief, movers, commodities or yields.",
		keyStyle.Render("model: ") + model,
		keyStyle.Render("type ") + "exit" + keyStyle.Render(" to leave"),
	}
	fmt.Fprintln(w, panelStyle.Render(strings.Join(lines, "\n")))
}

// DisplayKeyValues prints aligned key/value rows inside a panel.
func DisplayKeyValues(w io.Writer, heading string, rows [][2]string) {
	width := 0
	for _, r := range rows {
		width = max(width, len(r[0]))
	}
	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(keyStyle.Render(fmt.Sprintf("%-*s", width, r[0])))
		b.WriteString("  ")
		b.WriteString(r[1])
	}
	fmt.Fprintln(w, titleStyle.Render(heading))
	fmt.Fprintln(w, panelStyle.Render(b.String()))
}

func DisplayError(w io.Writer, err error) {
	fmt.Fprintln(w, errorStyle.Render("Error: "+err.Error()))
}

func DisplayInfo(w io.Writer, message string) {
	fmt.Fprintln(w, infoStyle.Render(message))
}

func DisplaySuccess(w io.Writer, message string) {
	fmt.Fprintln(w, successStyle.Render(message))
}
