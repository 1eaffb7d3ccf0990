package interactive

import "github.com/charmbracelet/lipgloss"

// Theme is the color palette of the review screen.
type Theme struct {
	Primary   lipgloss.AdaptiveColor
	Success   lipgloss.AdaptiveColor
	Warning   lipgloss.AdaptiveColor
	Error     lipgloss.AdaptiveColor
	Text      lipgloss.AdaptiveColor
	TextMuted lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
}

func DefaultTheme() Theme {
	return Theme{
		Primary:   lipgloss.AdaptiveColor{Dark: "#82aaff", Light: "#2e7de9"},
		Success:   lipgloss.AdaptiveColor{Dark: "#c3e88d", Light: "#587539"},
		Warning:   lipgloss.AdaptiveColor{Dark: "#ffcb6b", Light: "#8c6c3e"},
		Error:     lipgloss.AdaptiveColor{Dark: "#ff5370", Light: "#f52a65"},
		Text:      lipgloss.AdaptiveColor{Dark: "#bfc7d5", Light: "#4c505e"},
		TextMuted: lipgloss.AdaptiveColor{Dark: "#697098", Light: "#8990a3"},
		Border:    lipgloss.AdaptiveColor{Dark: "#5c6370", Light: "#c4c8da"},
		Highlight: lipgloss.AdaptiveColor{Dark: "#3a3f58", Light: "#e1e2e7"},
	}
}
