package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xcawolfe/gwt/internal/history"
)

var historyCmd = &cobra.Command{
	Use:     "history <branch>",
	GroupID: GroupWorkspace,
	Short:   "List persisted quick-start launch history for a branch",
	Args:    cobra.ExactArgs(1),
	RunE:    runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	branch := args[0]
	root, err := repoRoot()
	if err != nil {
		return err
	}

	store, err := history.Open(history.DefaultPath(root))
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}

	entries := store.ForBranch(branch)
	if len(entries) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "(no launch history for %s)\n", branch)
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  model=%s version=%s skip-permissions=%v  %s\n",
			e.LaunchedAt.Format("2006-01-02 15:04"), e.ToolLabel, e.Model, e.Version, e.SkipPermissions, e.SessionID)
	}
	return nil
}
