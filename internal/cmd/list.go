package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xcawolfe/gwt/internal/agent"
	"github.com/xcawolfe/gwt/internal/catalog"
	"github.com/xcawolfe/gwt/internal/style"
)

var listCmd = &cobra.Command{
	Use:     "list",
	GroupID: GroupWorkspace,
	Short:   "Print the branch catalog non-interactively: worktree, safety, and agent status per branch",
	RunE:    runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}

	sup, git, err := buildHeadlessSupervisor(root)
	if err != nil {
		return err
	}

	branches, err := loadBranches(git)
	if err != nil {
		return fmt.Errorf("loading branches: %w", err)
	}
	for i, b := range branches {
		unpushed, unmerged, hasChanges := probeSafety(git, b.Name)
		branches[i].Unpushed = unpushed
		branches[i].Unmerged = unmerged
		branches[i].HasChanges = hasChanges
		branches[i].Safe = unpushed == 0 && unmerged == 0 && !hasChanges
		branches[i].SafetyKnown = true
	}

	table := style.NewTable(
		style.Column{Name: "BRANCH", Width: 32},
		style.Column{Name: "WORKTREE", Width: 10},
		style.Column{Name: "SAFETY", Width: 14},
		style.Column{Name: "AGENT", Width: 24},
	)
	for _, b := range branches {
		worktree := ""
		if b.HasWorktree {
			worktree = "yes"
		}
		agentCol := ""
		if p := findPaneByBranch(sup, b.Name); p != nil {
			agentCol = fmt.Sprintf("%s (%s)", p.AgentName, statusLabel(p.Status))
		}
		table.AddRow(b.Name, worktree, safetyText(catalog.Classify(b)), agentCol)
	}
	fmt.Fprintln(cmd.OutOrStdout(), table.Render())
	return nil
}

func statusLabel(s agent.Status) string {
	switch s {
	case agent.StatusRunning:
		return "running"
	case agent.StatusWaitingInput:
		return "waiting"
	case agent.StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

func safetyText(s catalog.Safety) string {
	switch s {
	case catalog.SafetySafe:
		return "safe"
	case catalog.SafetyUncommitted:
		return "uncommitted"
	case catalog.SafetyUnpushed:
		return "unpushed"
	case catalog.SafetyUnmerged:
		return "unmerged"
	case catalog.SafetyPending:
		return "..."
	case catalog.SafetyUnsafe:
		return "unsafe"
	default:
		return "?"
	}
}
