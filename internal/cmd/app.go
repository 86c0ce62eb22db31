package cmd

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/xcawolfe/gwt/internal/agent"
	"github.com/xcawolfe/gwt/internal/bridge"
	"github.com/xcawolfe/gwt/internal/catalog"
	"github.com/xcawolfe/gwt/internal/gitx"
	"github.com/xcawolfe/gwt/internal/history"
	"github.com/xcawolfe/gwt/internal/style"
	"github.com/xcawolfe/gwt/internal/tools"
	"github.com/xcawolfe/gwt/internal/wizard"
)

// appKeys is the top-level key binding set. Wizard-overlay keys are handled
// separately by wizardKeys, mirroring the teacher's per-panel KeyMap split.
type appKeys struct {
	Up, Down       key.Binding
	Enter          key.Binding
	NewBranch      key.Binding
	Filter         key.Binding
	Tab            key.Binding
	Terminate      key.Binding
	ToggleViewMode key.Binding
	Quit           key.Binding
}

func defaultAppKeys() appKeys {
	return appKeys{
		Up:             key.NewBinding(key.WithKeys("up", "k")),
		Down:           key.NewBinding(key.WithKeys("down", "j")),
		Enter:          key.NewBinding(key.WithKeys("enter")),
		NewBranch:      key.NewBinding(key.WithKeys("n")),
		Filter:         key.NewBinding(key.WithKeys("/")),
		Tab:            key.NewBinding(key.WithKeys("tab")),
		Terminate:      key.NewBinding(key.WithKeys("x")),
		ToggleViewMode: key.NewBinding(key.WithKeys("v")),
		Quit:           key.NewBinding(key.WithKeys("q", "ctrl+c")),
	}
}

// appModel is the root interactive model: it composes the branch catalog,
// the agent supervisor, and (when open) a wizard overlay, per §2's
// single-UI-thread scheduling model.
type appModel struct {
	repoRoot string
	git      *gitx.Git
	sup      *agent.Supervisor
	toolsCfg *tools.Config

	cat  *catalog.Catalog
	view *catalog.View
	keys appKeys

	wiz *wizard.State

	width, height int
	epoch         uint64
	confirmQuit   bool
	statusMsg     string
	frame         int
	filterBuf     string
}

func newAppModel(repoRoot string, git *gitx.Git, sup *agent.Supervisor, toolsCfg *tools.Config) *appModel {
	cat := catalog.New()
	return &appModel{
		repoRoot: repoRoot,
		git:      git,
		sup:      sup,
		toolsCfg: toolsCfg,
		cat:      cat,
		view:     catalog.NewView(cat),
		keys:     defaultAppKeys(),
	}
}

func (a *appModel) Init() tea.Cmd {
	return tea.Batch(a.loadBranchesCmd(), tickSpinner(), tickPoll())
}

type branchesLoadedMsg struct {
	epoch    uint64
	branches []catalog.BranchItem
	err      error
}

type safetyResultMsg struct {
	epoch                  uint64
	branch                 string
	unpushed, unmerged     int
	hasChanges, knownSafe  bool
}

type spinnerTickMsg struct{}
type pollTickMsg struct{}

// hookEventMsg wraps a hook event relayed from an agent's own `gwt hook
// <Event>` invocation over the bridge socket (see cmd/run.go's
// forwardBridgeEvents). A Stop event is the only one that currently
// changes UI state: it nudges the matching pane's status rather than
// waiting for the next scrollback poll.
type hookEventMsg struct{ event bridge.Event }

func tickSpinner() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg { return spinnerTickMsg{} })
}

func tickPoll() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(time.Time) tea.Msg { return pollTickMsg{} })
}

func (a *appModel) loadBranchesCmd() tea.Cmd {
	epoch := a.epoch
	git := a.git
	return func() tea.Msg {
		branches, err := loadBranches(git)
		return branchesLoadedMsg{epoch: epoch, branches: branches, err: err}
	}
}

func (a *appModel) probeSafetyCmd(branch string) tea.Cmd {
	epoch := a.epoch
	git := a.git
	return func() tea.Msg {
		unpushed, unmerged, hasChanges := probeSafety(git, branch)
		return safetyResultMsg{epoch: epoch, branch: branch, unpushed: unpushed, unmerged: unmerged, hasChanges: hasChanges, knownSafe: true}
	}
}

func (a *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.view.SetSize(msg.Width, msg.Height-2)
		return a, nil

	case branchesLoadedMsg:
		if msg.epoch != a.epoch {
			return a, nil // stale epoch, per §5 cancellation
		}
		if msg.err != nil {
			a.statusMsg = msg.err.Error()
			return a, nil
		}
		a.cat.SetBranches(msg.branches)
		cmds := make([]tea.Cmd, 0, len(msg.branches))
		for _, b := range msg.branches {
			if !b.IsRemote {
				cmds = append(cmds, a.probeSafetyCmd(b.Name))
			}
		}
		return a, tea.Batch(cmds...)

	case safetyResultMsg:
		if msg.epoch != a.epoch {
			return a, nil
		}
		a.cat.ApplySafetyUpdate(msg.branch, msg.unpushed, msg.unmerged, msg.unpushed == 0 && msg.unmerged == 0 && !msg.hasChanges)
		a.cat.ApplyWorktreeUpdate(msg.branch, hasWorktreeFor(a.cat, msg.branch), msg.hasChanges)
		return a, nil

	case spinnerTickMsg:
		a.frame++
		if cmd := a.view.Update(catalog.SpinnerTickMsg{}); cmd != nil {
			return a, tea.Batch(cmd, tickSpinner())
		}
		return a, tickSpinner()

	case pollTickMsg:
		_ = a.sup.PollStatus()
		return a, tickPoll()

	case hookEventMsg:
		if msg.event.Event == "Stop" && msg.event.Branch != "" {
			a.statusMsg = msg.event.Branch + ": agent signaled Stop"
			_ = a.sup.PollStatus()
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

func hasWorktreeFor(c *catalog.Catalog, branch string) bool {
	for _, b := range c.Branches() {
		if b.Name == branch {
			return b.HasWorktree
		}
	}
	return false
}

func (a *appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.wiz != nil {
		return a.handleWizardKey(msg)
	}

	if a.cat.FilterMode() {
		return a.handleFilterKey(msg)
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		if a.confirmQuit || !a.sup.HasAgents() {
			a.sup.DestroyAll()
			return a, tea.Quit
		}
		a.confirmQuit = true
		a.statusMsg = "agents are running — press q again to quit and stop them"
		return a, nil
	case key.Matches(msg, a.keys.Up):
		a.confirmQuit = false
		a.cat.MoveUp()
		return a, nil
	case key.Matches(msg, a.keys.Down):
		a.confirmQuit = false
		a.cat.MoveDown()
		return a, nil
	case key.Matches(msg, a.keys.Filter):
		a.cat.SetFilterMode(true)
		return a, nil
	case key.Matches(msg, a.keys.ToggleViewMode):
		a.cycleViewMode()
		return a, nil
	case key.Matches(msg, a.keys.NewBranch):
		a.openWizardForNewBranch()
		return a, nil
	case key.Matches(msg, a.keys.Tab):
		a.cycleForeground()
		return a, nil
	case key.Matches(msg, a.keys.Terminate):
		a.terminateSelected()
		return a, nil
	case key.Matches(msg, a.keys.Enter):
		a.openWizardForSelected()
		return a, nil
	}
	return a, nil
}

func (a *appModel) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		a.cat.SetFilterMode(false)
		return a, nil
	case tea.KeyBackspace:
		if len(a.filterBuf) > 0 {
			a.filterBuf = a.filterBuf[:len(a.filterBuf)-1]
			a.cat.SetFilter(a.filterBuf)
		}
		return a, nil
	case tea.KeyRunes:
		a.filterBuf += string(msg.Runes)
		a.cat.SetFilter(a.filterBuf)
		return a, nil
	}
	return a, nil
}

func (a *appModel) cycleViewMode() {
	switch a.cat.ViewMode() {
	case catalog.ViewAll:
		a.cat.SetViewMode(catalog.ViewLocal)
	case catalog.ViewLocal:
		a.cat.SetViewMode(catalog.ViewRemote)
	default:
		a.cat.SetViewMode(catalog.ViewAll)
	}
}

func (a *appModel) selectedBranchName() (string, bool) {
	b := a.cat.SelectedBranch()
	if b == nil {
		return "", false
	}
	return b.Name, true
}

func (a *appModel) openWizardForSelected() {
	branch, ok := a.selectedBranchName()
	if !ok {
		return
	}
	entries := a.historyFor(branch)
	a.wiz = wizard.OpenForBranch(branch, a.toolsCfg.Agents, entries)
}

func (a *appModel) openWizardForNewBranch() {
	a.wiz = wizard.OpenForNewBranch(a.toolsCfg.Agents)
}

func (a *appModel) historyFor(branch string) []history.QuickStartEntry {
	store, err := history.Open(history.DefaultPath(a.repoRoot))
	if err != nil {
		return nil
	}
	return store.ForBranch(branch)
}

func (a *appModel) cycleForeground() {
	panes := a.sup.Panes()
	if len(panes) == 0 {
		return
	}
	var ids []string
	activeIdx := -1
	for i, p := range panes {
		ids = append(ids, p.ID)
		if !p.IsBackground {
			activeIdx = i
		}
	}
	next := ids[(activeIdx+1)%len(ids)]
	if err := a.sup.SwitchForeground(next); err != nil {
		a.statusMsg = err.Error()
	}
}

func (a *appModel) terminateSelected() {
	branch, ok := a.selectedBranchName()
	if !ok {
		return
	}
	for _, p := range a.sup.Panes() {
		if p.Branch == branch {
			if err := a.sup.Terminate(p.ID); err != nil {
				a.statusMsg = err.Error()
			}
			return
		}
	}
}

func (a *appModel) View() string {
	var b strings.Builder
	b.WriteString(a.view.Render())
	b.WriteString("\n")

	running, waiting, stopped := a.sup.StatusCounts()
	if line := catalog.StatusLine(running, waiting, stopped); line != "" {
		b.WriteString(style.Dim.Render(line))
		b.WriteString("\n")
	}
	if a.statusMsg != "" {
		b.WriteString(style.Warning.Render(a.statusMsg))
		b.WriteString("\n")
	}

	if a.wiz != nil {
		b.WriteString("\n")
		b.WriteString(renderWizard(a.wiz))
	}

	b.WriteString(style.Dim.Render("enter: agent  n: new branch  tab: switch  x: stop  /: filter  v: view  q: quit"))
	return b.String()
}
