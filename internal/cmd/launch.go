package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xcawolfe/gwt/internal/agent"
	"github.com/xcawolfe/gwt/internal/history"
	"github.com/xcawolfe/gwt/internal/tools"
)

var (
	launchModel           string
	launchReasoningTier   string
	launchVersion         string
	launchSkipPermissions bool
	launchContinue        bool
	launchResume          bool
)

var launchCmd = &cobra.Command{
	Use:     "launch <branch> <agent-id>",
	GroupID: GroupAgents,
	Short:   "Attach a configured agent to a branch non-interactively, bypassing the wizard",
	Args:    cobra.ExactArgs(2),
	RunE:    runLaunch,
}

func init() {
	launchCmd.Flags().StringVar(&launchModel, "model", "", "Model id from the agent's model catalog")
	launchCmd.Flags().StringVar(&launchReasoningTier, "reasoning-tier", "", "Reasoning tier id, for agents that support tiers")
	launchCmd.Flags().StringVar(&launchVersion, "version", string(agent.VersionInstalled), "Agent version: \"installed\", \"latest\", or a concrete version string")
	launchCmd.Flags().BoolVar(&launchSkipPermissions, "skip-permissions", false, "Launch with the agent's permission-skip argument")
	launchCmd.Flags().BoolVar(&launchContinue, "continue", false, "Launch in the agent's continue-session mode")
	launchCmd.Flags().BoolVar(&launchResume, "resume", false, "Launch in the agent's resume-session mode")
	rootCmd.AddCommand(launchCmd)
}

func runLaunch(cmd *cobra.Command, args []string) error {
	branch, agentID := args[0], args[1]
	root, err := repoRoot()
	if err != nil {
		return err
	}

	toolsCfg, err := tools.LoadMerged(root)
	if err != nil {
		return fmt.Errorf("loading tools config: %w", err)
	}
	toolAgent, ok := toolsCfg.ByID(agentID)
	if !ok {
		return fmt.Errorf("no configured agent with id %q (see gwt tools list)", agentID)
	}

	mode := agent.ModeNormal
	switch {
	case launchContinue:
		mode = agent.ModeContinue
	case launchResume:
		mode = agent.ModeResume
	}

	spec := agent.NewLaunchSpec(branch, toolAgent.ToSupervisorAgent(), mode, launchSkipPermissions)
	spec.Model = launchModel
	spec.ReasoningTier = launchReasoningTier
	spec.Version = launchVersion

	sup, _, err := buildHeadlessSupervisor(root)
	if err != nil {
		return err
	}

	pane, err := sup.Attach(spec)
	if err != nil {
		return fmt.Errorf("attaching agent: %w", err)
	}

	store, err := history.Open(history.DefaultPath(root))
	if err == nil {
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

	fmt.Fprintf(cmd.OutOrStdout(), "launched %s on %s\n", pane.AgentName, branch)
	return nil
}
