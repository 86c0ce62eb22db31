package cmd

import (
	"fmt"

	"github.com/xcawolfe/gwt/internal/agent"
	"github.com/xcawolfe/gwt/internal/gitx"
	"github.com/xcawolfe/gwt/internal/mux"
)

// buildHeadlessSupervisor assembles the same Supervisor runApp hands to the
// interactive TUI, for the one-shot, non-interactive subcommands
// (list/launch/attach/stop): it ensures the tmux control session exists,
// picks its first pane as the control pane, and reattaches any panes left
// over from a prior `gwt` process before returning. Unlike runApp it never
// registers hooks/bridges or starts the bridge listener, since a one-shot
// invocation exits before anything could dial it.
func buildHeadlessSupervisor(root string) (*agent.Supervisor, *gitx.Git, error) {
	git := gitx.NewGit(root)

	m := mux.New(sessionName(root))
	if err := m.EnsureSession(root); err != nil {
		return nil, nil, fmt.Errorf("starting tmux session: %w", err)
	}
	panes, err := m.ListPanes()
	if err != nil {
		return nil, nil, fmt.Errorf("listing tmux panes: %w", err)
	}
	controlPane := ""
	if len(panes) > 0 {
		controlPane = panes[0].ID
	}

	sup := agent.NewSupervisor(m, newGitResolver(root), controlPane, defaultPromptPredicate)
	if err := reattachOrphans(sup, git); err != nil {
		return nil, nil, fmt.Errorf("reattaching orphans: %w", err)
	}
	if err := sup.PollStatus(); err != nil {
		return nil, nil, fmt.Errorf("polling pane status: %w", err)
	}
	return sup, git, nil
}

// findPaneByBranch returns the AgentPane currently attached to branch, if
// any.
func findPaneByBranch(sup *agent.Supervisor, branch string) *agent.AgentPane {
	for _, p := range sup.Panes() {
		if p.Branch == branch {
			return p
		}
	}
	return nil
}
