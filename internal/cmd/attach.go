package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var attachCmd = &cobra.Command{
	Use:     "attach <branch>",
	GroupID: GroupAgents,
	Short:   "Bring a branch's agent pane to the tmux foreground, enforcing the single-foreground invariant",
	Args:    cobra.ExactArgs(1),
	RunE:    runAttach,
}

func init() {
	rootCmd.AddCommand(attachCmd)
}

func runAttach(cmd *cobra.Command, args []string) error {
	branch := args[0]
	root, err := repoRoot()
	if err != nil {
		return err
	}

	sup, _, err := buildHeadlessSupervisor(root)
	if err != nil {
		return err
	}

	pane := findPaneByBranch(sup, branch)
	if pane == nil {
		return fmt.Errorf("no agent attached to branch %q", branch)
	}
	if err := sup.SwitchForeground(pane.ID); err != nil {
		return fmt.Errorf("switching foreground: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "attached %s (%s)\n", pane.AgentName, branch)
	return nil
}
