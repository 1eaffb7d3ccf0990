package interactive

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/joshyorko/depclean/pretty"
)

type Styles struct {
	Title    lipgloss.Style
	Subtle   lipgloss.Style
	Remove   lipgloss.Style
	Keep     lipgloss.Style
	Exempt   lipgloss.Style
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style
	Table    table.Styles
}

func NewStyles(theme Theme) Styles {
	tableStyles := table.DefaultStyles()
	tableStyles.Header = tableStyles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		BorderBottom(true).
		Bold(true)
	tableStyles.Selected = tableStyles.Selected.
		Foreground(theme.Primary).
		Background(theme.Highlight).
		Bold(true)

	return Styles{
		Title:    lipgloss.NewStyle().Foreground(theme.Primary).Bold(true),
		Subtle:   lipgloss.NewStyle().Foreground(theme.TextMuted),
		Remove:   lipgloss.NewStyle().Foreground(theme.Error),
		Keep:     lipgloss.NewStyle().Foreground(theme.Success),
		Exempt:   lipgloss.NewStyle().Foreground(theme.Warning),
		HelpKey:  lipgloss.NewStyle().Foreground(theme.Text).Bold(true),
		HelpDesc: lipgloss.NewStyle().Foreground(theme.TextMuted),
		Table:    tableStyles,
	}
}

func (it Styles) Decision(decision string) lipgloss.Style {
	switch decision {
	case pretty.DecisionRemove:
		return it.Remove
	case pretty.DecisionExempt:
		return it.Exempt
	default:
		return it.Keep
	}
}
