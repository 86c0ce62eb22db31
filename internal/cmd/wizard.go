package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/xcawolfe/gwt/internal/bridge"
	"github.com/xcawolfe/gwt/internal/hooks"
	"github.com/xcawolfe/gwt/internal/style"
	"github.com/xcawolfe/gwt/internal/tools"
	"github.com/xcawolfe/gwt/internal/wizard"
)

var wizardNewBranch bool

var wizardCmd = &cobra.Command{
	Use:     "wizard [branch]",
	GroupID: GroupAgents,
	Short:   "Open the agent-launch wizard directly for a branch, skipping the catalog view",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runWizard,
}

func init() {
	wizardCmd.Flags().BoolVar(&wizardNewBranch, "new", false, "Open the wizard's new-branch flow instead of targeting an existing branch")
	rootCmd.AddCommand(wizardCmd)
}

func runWizard(cmd *cobra.Command, args []string) error {
	if !wizardNewBranch && len(args) == 0 {
		return fmt.Errorf("gwt wizard requires a branch argument, or --new to create one")
	}

	root, err := repoRoot()
	if err != nil {
		return err
	}

	registerHooksAndBridges()
	defer hooks.CleanupStaleBridges()

	toolsCfg, err := tools.LoadMerged(root)
	if err != nil {
		return fmt.Errorf("loading tools config: %w", err)
	}

	sup, git, err := buildHeadlessSupervisor(root)
	if err != nil {
		return err
	}

	model := newAppModel(root, git, sup, toolsCfg)
	if wizardNewBranch {
		model.openWizardForNewBranch()
	} else {
		branch := args[0]
		model.wiz = wizard.OpenForBranch(branch, toolsCfg.Agents, model.historyFor(branch))
	}

	bridgeSrv, err := bridge.Listen(root)
	if err != nil {
		style.PrintWarning("starting bridge listener: %v", err)
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	if bridgeSrv != nil {
		defer bridgeSrv.Close()
		go forwardBridgeEvents(bridgeSrv, p)
	}

	_, err = p.Run()
	return err
}
