// Package render formats completion results for the terminal.
package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ANSI color codes
const (
	ColorCyan   = lipgloss.Color("12") // Directories
	ColorYellow = lipgloss.Color("11") // Tree keys in dumps
	ColorGray   = lipgloss.Color("8")  // Dim/secondary
)

var (
	// DirStyle is used for candidates naming a directory
	DirStyle = lipgloss.NewStyle().Foreground(ColorCyan).Bold(true)

	// KeyStyle is used for keyed nodes in tree dumps
	KeyStyle = lipgloss.NewStyle().Foreground(ColorYellow)

	// DimStyle is used for secondary information such as structural nodes
	DimStyle = lipgloss.NewStyle().Foreground(ColorGray)
)

// StyledCandidate returns a candidate with styling applied.
func StyledCandidate(c string) string {
	if strings.HasSuffix(c, "/") {
		return DirStyle.Render(c)
	}
	return c
}

// StyledDumpLine colors one line of a tree dump.
func StyledDumpLine(line string) string {
	trimmed := strings.TrimLeft(line, " ")
	indent := line[:len(line)-len(trimmed)]
	switch {
	case trimmed == "":
		return line
	case strings.HasPrefix(trimmed, "\""):
		return indent + KeyStyle.Render(trimmed)
	case strings.HasPrefix(trimmed, "(") || strings.HasPrefix(trimmed, "<") || strings.HasPrefix(trimmed, "branch"):
		return indent + DimStyle.Render(trimmed)
	}
	return line
}
