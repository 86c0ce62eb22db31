package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:     "stop <branch>",
	GroupID: GroupAgents,
	Short:   "Terminate the agent attached to a branch, gracefully then forcibly",
	Args:    cobra.ExactArgs(1),
	RunE:    runStop,
}

func init() {
	rootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
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
	if err := sup.Terminate(pane.ID); err != nil {
		return fmt.Errorf("terminating agent: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "stopped %s (%s)\n", pane.AgentName, branch)
	return nil
}
