package cmd

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/xcawolfe/gwt/internal/agent"
	"github.com/xcawolfe/gwt/internal/history"
	"github.com/xcawolfe/gwt/internal/style"
	"github.com/xcawolfe/gwt/internal/wizard"
)

// handleWizardKey routes a keypress while the wizard overlay is open. Text
// entry steps (BranchNameInput) consume printable runes directly; every
// other step treats up/down as SelectPrev/SelectNext and enter as Confirm.
func (a *appModel) handleWizardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	w := a.wiz

	if msg.Type == tea.KeyEsc {
		if !w.PrevStep() {
			a.wiz = nil
		}
		return a, nil
	}

	if w.Step == wizard.StepBranchNameInput {
		switch msg.Type {
		case tea.KeyEnter:
			return a.confirmWizard()
		case tea.KeyBackspace:
			w.DeleteChar()
			return a, nil
		case tea.KeyLeft:
			w.CursorLeft()
			return a, nil
		case tea.KeyRight:
			w.CursorRight()
			return a, nil
		case tea.KeyRunes:
			for _, r := range msg.Runes {
				w.InsertChar(r)
			}
			return a, nil
		}
		return a, nil
	}

	switch msg.Type {
	case tea.KeyUp:
		w.SelectPrev()
		return a, nil
	case tea.KeyDown:
		w.SelectNext()
		return a, nil
	case tea.KeyEnter:
		if w.ConsumeEnterBlock() {
			return a, nil
		}
		return a.confirmWizard()
	}

	if w.Step == wizard.StepVersionSelect {
		w.FetchVersionsForAgent(newCLIVersionSource())
	}
	return a, nil
}

func (a *appModel) confirmWizard() (tea.Model, tea.Cmd) {
	w := a.wiz
	result, err := w.Confirm()
	if err != nil {
		a.statusMsg = err.Error()
		return a, nil
	}
	if w.Step == wizard.StepVersionSelect {
		w.FetchVersionsForAgent(newCLIVersionSource())
	}
	if result != wizard.Complete {
		return a, nil
	}

	branch := w.Branch
	if w.IsNewBranch {
		branch = w.FullBranchName()
	}
	spec := w.LaunchSpec(branch)
	a.wiz = nil

	pane, err := a.sup.Attach(spec)
	if err != nil {
		a.statusMsg = err.Error()
		return a, nil
	}
	a.recordHistory(branch, spec)
	a.statusMsg = fmt.Sprintf("launched %s on %s", pane.AgentName, branch)
	a.epoch++
	return a, a.loadBranchesCmd()
}

func (a *appModel) recordHistory(branch string, spec agent.LaunchSpec) {
	store, err := history.Open(history.DefaultPath(a.repoRoot))
	if err != nil {
		return
	}
	_ = store.Upsert(history.QuickStartEntry{
		Branch:          branch,
		ToolID:          spec.Agent.ID,
		ToolLabel:       spec.Agent.DisplayName,
		Model:           spec.Model,
		ReasoningTier:   spec.ReasoningTier,
		Version:         spec.Version,
		SkipPermissions: spec.SkipPermissions,
	})
}

// renderWizard draws the current wizard step as a simple boxed list, in the
// teacher's table-free overlay style (plain lipgloss styling, no bubbles
// list component, since the wizard owns no rendering state of its own).
func renderWizard(w *wizard.State) string {
	var b strings.Builder
	b.WriteString(style.Bold.Render(wizardStepTitle(w.Step)))
	b.WriteString("\n")

	switch w.Step {
	case wizard.StepQuickStart:
		renderQuickStart(&b, w)
	case wizard.StepBranchTypeSelect:
		for i, t := range wizard.AllBranchTypes() {
			renderOption(&b, t.Prefix(), int(w.BranchType) == i)
		}
	case wizard.StepBranchNameInput:
		b.WriteString(fmt.Sprintf("  %s▏\n", w.NewBranchName))
	case wizard.StepAgentSelect:
		for i, ag := range w.Agents {
			renderOption(&b, ag.DisplayName, i == w.AgentIndex)
		}
	case wizard.StepModelSelect:
		for i, m := range w.Agent.Models {
			renderOption(&b, m.Label, i == w.ModelIndex)
		}
	case wizard.StepReasoningLevel:
		for i, t := range w.ReasoningTiers {
			renderOption(&b, t, i == w.ReasoningIndex)
		}
	case wizard.StepVersionSelect:
		for i, v := range w.VersionOptions {
			renderOption(&b, v.Label, i == w.VersionIndex)
		}
	case wizard.StepExecutionMode:
		for i, label := range []string{"normal", "continue", "resume"} {
			renderOption(&b, label, i == w.ExecutionModeIndex)
		}
	case wizard.StepSkipPermissions:
		label := "no"
		if w.SkipPermissions {
			label = "yes"
		}
		b.WriteString(fmt.Sprintf("  skip permission prompts: %s\n", label))
	}

	b.WriteString(style.Dim.Render("enter: confirm  esc: back  up/down: select"))
	return b.String()
}

func renderQuickStart(b *strings.Builder, w *wizard.State) {
	i := 0
	for _, e := range w.QuickStartEntries {
		renderOption(b, fmt.Sprintf("Resume %s with previous settings", e.ToolID), i == w.QuickStartIndex)
		i++
		renderOption(b, fmt.Sprintf("Start new %s with previous settings", e.ToolID), i == w.QuickStartIndex)
		i++
	}
	renderOption(b, "Choose different settings…", i == w.QuickStartIndex)
}

func renderOption(b *strings.Builder, label string, selected bool) {
	cursor := " "
	if selected {
		cursor = ">"
	}
	fmt.Fprintf(b, " %s %s\n", cursor, label)
}

func wizardStepTitle(step wizard.Step) string {
	switch step {
	case wizard.StepQuickStart:
		return "Quick start"
	case wizard.StepBranchTypeSelect:
		return "Branch type"
	case wizard.StepBranchNameInput:
		return "Branch name"
	case wizard.StepAgentSelect:
		return "Agent"
	case wizard.StepModelSelect:
		return "Model"
	case wizard.StepReasoningLevel:
		return "Reasoning level"
	case wizard.StepVersionSelect:
		return "Version"
	case wizard.StepExecutionMode:
		return "Execution mode"
	case wizard.StepSkipPermissions:
		return "Skip permissions"
	default:
		return ""
	}
}
