package pretty

import (
	"os"
	"strings"

	"github.com/joshyorko/depclean/common"
	"golang.org/x/term"
)

// TerminalWidth returns stdout width in columns, 80 when unknown.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		common.Trace("Failed to get terminal width, using fallback: %v", err)
		return 80
	}
	return width
}

// Ellipsis cuts text to at most width runes.
func Ellipsis(text string, width int) string {
	runes := []rune(text)
	if width < 1 || len(runes) <= width {
		return text
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}

// Rule is a horizontal separator line of given width.
func Rule(width int) string {
	if width < 1 {
		width = TerminalWidth()
	}
	return Faint + strings.Repeat("─", width) + Reset
}
