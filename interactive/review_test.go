package interactive_test

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joshyorko/depclean/hamlet"
	"github.com/joshyorko/depclean/interactive"
	"github.com/joshyorko/depclean/pretty"
	"github.com/joshyorko/depclean/sbom"
)

func reviewDocument() *sbom.Document {
	return &sbom.Document{
		SPDXID:            sbom.DocumentID,
		Name:              "app",
		DocumentDescribes: []string{"SPDXRef-app"},
		Packages: []*sbom.Package{
			{SPDXID: "SPDXRef-app", Name: "app", VersionInfo: "1.0.0"},
			{SPDXID: "SPDXRef-requests", Name: "requests", VersionInfo: "2.31.0"},
			{SPDXID: "SPDXRef-pytest", Name: "pytest", VersionInfo: "7.4.0"},
			{SPDXID: "SPDXRef-pytest-cov", Name: "pytest-cov", VersionInfo: "4.1.0"},
		},
		Relationships: []*sbom.Relationship{
			{Element: "SPDXRef-app", Related: "SPDXRef-requests", Type: "DEPENDS_ON"},
			{Element: "SPDXRef-app", Related: "SPDXRef-pytest", Type: "DEPENDS_ON"},
		},
	}
}

func runes(text string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)}
}

var (
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	down  = tea.KeyMsg{Type: tea.KeyDown}
	esc   = tea.KeyMsg{Type: tea.KeyEscape}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
)

func TestBuildingRowsClassifiesPackages(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	spec := sbom.RemovalSpec{ExplicitNames: sbom.NewNameSet(), AutoDetect: true}
	rows := interactive.BuildRows(reviewDocument(), spec, nil)
	must_be.Length(rows, 4)
	must_be.Equal(pretty.DecisionExempt, rows[0].Decision)
	must_be.Equal(interactive.ReasonRoot, rows[0].Reason)
	must_be.Equal(pretty.DecisionKeep, rows[1].Decision)
	must_be.Equal(pretty.DecisionRemove, rows[2].Decision)
	must_be.True(strings.HasPrefix(rows[2].Reason, sbom.ReasonHeuristic))
	must_be.Equal(pretty.DecisionRemove, rows[3].Decision)

	explicit := sbom.RemovalSpec{ExplicitNames: sbom.NewNameSet("requests", "app")}
	rows = interactive.BuildRows(reviewDocument(), explicit, nil)
	must_be.Equal(pretty.DecisionExempt, rows[0].Decision)
	must_be.Equal(pretty.DecisionRemove, rows[1].Decision)
	must_be.Equal(sbom.ReasonExplicit, rows[1].Reason)
	wont_be.Equal(pretty.DecisionRemove, rows[2].Decision)

	must_be.Nil(interactive.BuildRows(nil, explicit, nil))
}

func TestReviewTogglesAndSaves(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	spec := sbom.RemovalSpec{ExplicitNames: sbom.NewNameSet(), AutoDetect: true}
	review := interactive.NewReview(interactive.BuildRows(reviewDocument(), spec, nil))
	must_be.Length(review.Removals(), 2)
	must_be.True(strings.Contains(review.View(), "Review packages to prune"))

	review.Update(space)
	must_be.Equal(pretty.DecisionExempt, review.Rows()[0].Decision)

	review.Update(down)
	review.Update(space)
	must_be.Equal(pretty.DecisionRemove, review.Rows()[1].Decision)
	must_be.Equal(interactive.ReasonManual, review.Rows()[1].Reason)
	must_be.True(review.Removals().Has("requests"))

	review.Update(runes("/"))
	for _, letter := range "cov" {
		review.Update(runes(string(letter)))
	}
	review.Update(enter)
	review.Update(space)
	must_be.Equal(pretty.DecisionKeep, review.Rows()[3].Decision)
	wont_be.True(review.Removals().Has("pytest-cov"))

	review.Update(esc)
	must_be.True(strings.Contains(review.View(), "showing 4 of 4"))

	must_be.Equal("2 to remove, 1 kept, 1 roots exempt", review.Summary())
	wont_be.True(review.Saved())
	_, cmd := review.Update(runes("s"))
	wont_be.Nil(cmd)
	must_be.True(review.Saved())
	must_be.Equal([]string{"pytest", "requests"}, review.Removals().Sorted())
}

func TestReviewQuitsWithoutSaving(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	review := interactive.NewReview(interactive.BuildRows(reviewDocument(), sbom.RemovalSpec{}, nil))
	must_be.Length(review.Removals(), 0)

	review.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	_, cmd := review.Update(runes("q"))
	wont_be.Nil(cmd)
	wont_be.True(review.Saved())
	must_be.Equal("", review.View())
}

func TestTypingIntoFilterDoesNotSave(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	spec := sbom.RemovalSpec{ExplicitNames: sbom.NewNameSet(), AutoDetect: true}
	review := interactive.NewReview(interactive.BuildRows(reviewDocument(), spec, nil))
	review.Update(runes("/"))
	review.Update(runes("s"))
	wont_be.True(review.Saved())
	must_be.True(strings.Contains(review.View(), "showing"))
}

func TestSavingMergesIntoLoadedList(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	loaded := sbom.NewNameSet("pytest", "mocha", "left-pad", "app")
	review := interactive.NewReview(interactive.BuildRows(reviewDocument(), sbom.RemovalSpec{ExplicitNames: loaded}, nil))
	must_be.Equal([]string{"app", "left-pad", "mocha", "pytest"}, review.MergedRemovals(loaded).Sorted())

	review.Update(down)
	review.Update(space)
	review.Update(down)
	review.Update(space)
	must_be.Equal(pretty.DecisionRemove, review.Rows()[1].Decision)
	must_be.Equal(pretty.DecisionKeep, review.Rows()[2].Decision)

	merged := review.MergedRemovals(loaded)
	must_be.Equal([]string{"app", "left-pad", "mocha", "requests"}, merged.Sorted())
	wont_be.True(merged.Has("pytest"))
	must_be.Length(loaded, 4)
}
