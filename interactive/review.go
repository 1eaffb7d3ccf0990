package interactive

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joshyorko/depclean/pretty"
	"github.com/joshyorko/depclean/sbom"
)

const (
	ReasonRoot   = "document root"
	ReasonManual = "manual"

	minimumHeight = 5
	chromeHeight  = 7
)

// ReviewRow is one package with what pruning would do to it.
type ReviewRow struct {
	SPDXID   string `json:"spdxId"`
	Name     string `json:"name"`
	Version  string `json:"version,omitempty"`
	Decision string `json:"decision"`
	Reason   string `json:"reason,omitempty"`
}

func (it ReviewRow) matches(needle string) bool {
	if len(needle) == 0 {
		return true
	}
	for _, field := range []string{it.Name, it.Version, it.Decision, it.Reason} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// BuildRows classifies every package of the document in document order.
func BuildRows(doc *sbom.Document, spec sbom.RemovalSpec, matcher *sbom.Matcher) []ReviewRow {
	if doc == nil {
		return nil
	}
	if matcher == nil {
		matcher = sbom.DefaultMatcher()
	}
	graph := sbom.NewGraph(doc)
	roots := graph.Roots()
	rows := make([]ReviewRow, 0, len(doc.Packages))
	for _, pkg := range doc.Packages {
		row := ReviewRow{
			SPDXID:   pkg.SPDXID,
			Name:     pkg.Name,
			Version:  pkg.VersionInfo,
			Decision: pretty.DecisionKeep,
		}
		remove, reason := matcher.Classify(pkg, spec, graph)
		switch {
		case roots[pkg.SPDXID]:
			row.Decision, row.Reason = pretty.DecisionExempt, ReasonRoot
		case remove:
			row.Decision, row.Reason = pretty.DecisionRemove, reason
		}
		rows = append(rows, row)
	}
	return rows
}

// Review is the bubbletea model of the removal review screen.
type Review struct {
	rows      []ReviewRow
	visible   []int
	table     table.Model
	filter    textinput.Model
	help      help.Model
	keys      KeyMap
	styles    Styles
	filtering bool
	saved     bool
	done      bool
}

func NewReview(rows []ReviewRow) *Review {
	styles := NewStyles(DefaultTheme())
	filter := textinput.New()
	filter.Prompt = "/"
	filter.Placeholder = "name, version or reason"
	filter.CharLimit = 80

	grid := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(minimumHeight),
	)
	grid.SetStyles(styles.Table)

	result := &Review{
		rows:   rows,
		table:  grid,
		filter: filter,
		help:   help.New(),
		keys:   DefaultKeyMap(),
		styles: styles,
	}
	result.refresh()
	return result
}

func columns(width int) []table.Column {
	name := width - 10 - 16 - 28 - 8
	if name < 16 {
		name = 16
	}
	return []table.Column{
		{Title: "Decision", Width: 10},
		{Title: "Name", Width: name},
		{Title: "Version", Width: 16},
		{Title: "Reason", Width: 28},
	}
}

func (it *Review) Init() tea.Cmd {
	return nil
}

func (it *Review) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		it.table.SetColumns(columns(msg.Width))
		it.table.SetWidth(msg.Width)
		height := msg.Height - chromeHeight
		if height < minimumHeight {
			height = minimumHeight
		}
		it.table.SetHeight(height)
		return it, nil
	case tea.KeyMsg:
		if it.filtering {
			return it.updateFilter(msg)
		}
		return it.updateBrowse(msg)
	}
	return it, nil
}

func (it *Review) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, it.keys.Apply):
		it.filtering = false
		it.filter.Blur()
		it.table.Focus()
		return it, nil
	case key.Matches(msg, it.keys.Cancel):
		it.clearFilter()
		return it, nil
	}
	var cmd tea.Cmd
	it.filter, cmd = it.filter.Update(msg)
	it.refresh()
	return it, cmd
}

func (it *Review) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, it.keys.Quit):
		it.done = true
		return it, tea.Quit
	case key.Matches(msg, it.keys.Save):
		it.saved, it.done = true, true
		return it, tea.Quit
	case key.Matches(msg, it.keys.Toggle):
		it.toggle()
		return it, nil
	case key.Matches(msg, it.keys.Filter):
		it.filtering = true
		it.table.Blur()
		return it, it.filter.Focus()
	case key.Matches(msg, it.keys.Cancel):
		it.clearFilter()
		return it, nil
	}
	var cmd tea.Cmd
	it.table, cmd = it.table.Update(msg)
	return it, cmd
}

func (it *Review) clearFilter() {
	it.filtering = false
	it.filter.SetValue("")
	it.filter.Blur()
	it.table.Focus()
	it.refresh()
}

func (it *Review) toggle() {
	cursor := it.table.Cursor()
	if cursor < 0 || cursor >= len(it.visible) {
		return
	}
	row := &it.rows[it.visible[cursor]]
	switch row.Decision {
	case pretty.DecisionExempt:
		return
	case pretty.DecisionRemove:
		row.Decision = pretty.DecisionKeep
	default:
		row.Decision = pretty.DecisionRemove
	}
	row.Reason = ReasonManual
	it.refresh()
}

func (it *Review) refresh() {
	needle := strings.ToLower(strings.TrimSpace(it.filter.Value()))
	it.visible = it.visible[:0]
	rows := make([]table.Row, 0, len(it.rows))
	for at, row := range it.rows {
		if !row.matches(needle) {
			continue
		}
		it.visible = append(it.visible, at)
		rows = append(rows, table.Row{marker(row.Decision), row.Name, row.Version, row.Reason})
	}
	cursor := it.table.Cursor()
	it.table.SetRows(rows)
	if cursor >= len(rows) {
		cursor = len(rows) - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	it.table.SetCursor(cursor)
}

func marker(decision string) string {
	switch decision {
	case pretty.DecisionRemove:
		return "[x] remove"
	case pretty.DecisionExempt:
		return "[-] root"
	default:
		return "[ ] keep"
	}
}

func (it *Review) View() string {
	if it.done {
		return ""
	}
	lines := []string{
		it.styles.Title.Render("Review packages to prune"),
		it.table.View(),
	}
	if it.filtering || len(it.filter.Value()) > 0 {
		lines = append(lines, it.filter.View())
	} else {
		lines = append(lines, "")
	}
	lines = append(lines, it.status())
	if it.filtering {
		lines = append(lines, it.help.ShortHelpView(it.keys.filtering()))
	} else {
		lines = append(lines, it.help.ShortHelpView(it.keys.browsing()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (it *Review) status() string {
	remove, keep, exempt := it.counts()
	return fmt.Sprintf("%s  %s  %s  %s",
		it.styles.Decision(pretty.DecisionRemove).Render(fmt.Sprintf("%d remove", remove)),
		it.styles.Decision(pretty.DecisionKeep).Render(fmt.Sprintf("%d keep", keep)),
		it.styles.Decision(pretty.DecisionExempt).Render(fmt.Sprintf("%d root", exempt)),
		it.styles.Subtle.Render(fmt.Sprintf("showing %d of %d", len(it.visible), len(it.rows))))
}

func (it *Review) counts() (remove, keep, exempt int) {
	for _, row := range it.rows {
		switch row.Decision {
		case pretty.DecisionRemove:
			remove++
		case pretty.DecisionExempt:
			exempt++
		default:
			keep++
		}
	}
	return remove, keep, exempt
}

// Saved is true when the review ended with a save.
func (it *Review) Saved() bool {
	return it.saved
}

// Rows are the reviewed rows with any manual changes applied.
func (it *Review) Rows() []ReviewRow {
	return it.rows
}

// Removals are the names marked for removal, ready for a removal list.
func (it *Review) Removals() sbom.NameSet {
	result := sbom.NewNameSet()
	for _, row := range it.rows {
		if row.Decision == pretty.DecisionRemove {
			result.Add(row.Name)
		}
	}
	return result
}

// MergedRemovals applies the decisions onto a loaded removal list. Names
// flipped to keep leave the list, removed names join it, and names the
// reviewed document never mentions stay untouched.
func (it *Review) MergedRemovals(loaded sbom.NameSet) sbom.NameSet {
	result := sbom.NewNameSet()
	for name := range loaded {
		result.Add(name)
	}
	for _, row := range it.rows {
		if row.Decision == pretty.DecisionKeep {
			delete(result, row.Name)
		}
	}
	for name := range it.Removals() {
		result.Add(name)
	}
	return result
}

func (it *Review) Summary() string {
	remove, keep, exempt := it.counts()
	return fmt.Sprintf("%d to remove, %d kept, %d roots exempt", remove, keep, exempt)
}

// RunReview shows the review screen until the user saves or quits.
func RunReview(rows []ReviewRow) (*Review, error) {
	model := NewReview(rows)
	final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err != nil {
		return nil, err
	}
	review, ok := final.(*Review)
	if !ok {
		return model, nil
	}
	return review, nil
}
