package catalog

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/xcawolfe/gwt/internal/style"
)

// View wraps a Catalog with a scrollable viewport, following the same
// viewport-per-panel pattern the teacher's activity feed uses.
type View struct {
	catalog  *Catalog
	viewport viewport.Model
}

// NewView returns a View over catalog.
func NewView(catalog *Catalog) *View {
	return &View{catalog: catalog, viewport: viewport.New(0, 0)}
}

// SetSize updates the viewport dimensions and the catalog's visible height.
func (v *View) SetSize(width, height int) {
	v.viewport.Width = width
	v.viewport.Height = height
	v.catalog.SetVisibleHeight(height)
	v.refresh()
}

// Update handles a bubbletea message, advancing the spinner on tick
// messages and delegating scroll keys to the embedded viewport.
func (v *View) Update(msg tea.Msg) tea.Cmd {
	if _, ok := msg.(SpinnerTickMsg); ok {
		v.catalog.TickSpinner()
		v.refresh()
		return nil
	}
	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return cmd
}

// SpinnerTickMsg drives the ~250ms spinner/status refresh.
type SpinnerTickMsg struct{}

// refresh re-renders the viewport content from the current catalog state.
func (v *View) refresh() {
	v.viewport.SetContent(v.Render())
}

// Render produces the catalog table for the current filtered set. Kept
// separate from View() so tests can assert on content without a live
// bubbletea program.
func (v *View) Render() string {
	if len(v.catalog.FilteredIndices()) == 0 {
		return style.Dim.Render("  (no branches match)")
	}

	table := style.NewTable(
		style.Column{Name: "", Width: 1},
		style.Column{Name: "BRANCH", Width: 30},
		style.Column{Name: "SAFETY", Width: 10},
	)

	for displayIdx, branchIdx := range v.catalog.FilteredIndices() {
		b := v.catalog.Branches()[branchIdx]
		cursor := " "
		if displayIdx == v.catalog.Selected() {
			cursor = ">"
		}
		table.AddRow(cursor, decoratedName(b), safetyLabel(Classify(b)))
	}
	return table.Render()
}

func decoratedName(b BranchItem) string {
	name := b.Name
	if b.IsRemote {
		name += " (remote)"
	}
	if b.HasChanges {
		name += " *"
	}
	return name
}

func safetyLabel(s Safety) string {
	switch s {
	case SafetySafe:
		return style.Green.Render("safe")
	case SafetyUncommitted:
		return style.Yellow.Render("uncommitted")
	case SafetyUnpushed:
		return style.Yellow.Render("unpushed")
	case SafetyUnmerged:
		return style.Yellow.Render("unmerged")
	case SafetyPending:
		return style.Dim.Render("...")
	case SafetyUnsafe:
		return style.Red.Render("unsafe")
	default:
		return style.Gray.Render("?")
	}
}

// StatusLine renders the aggregated running/waiting/stopped summary using
// only non-zero segments, per the agent supervisor's status-bar contract.
func StatusLine(running, waiting, stopped int) string {
	var parts []string
	if running > 0 {
		parts = append(parts, fmt.Sprintf("running: %d", running))
	}
	if waiting > 0 {
		parts = append(parts, fmt.Sprintf("waiting: %d", waiting))
	}
	if stopped > 0 {
		parts = append(parts, fmt.Sprintf("stopped: %d", stopped))
	}
	return strings.Join(parts, " | ")
}
