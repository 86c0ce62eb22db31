package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xcawolfe/gwt/internal/doctor"
)

var (
	doctorFix     bool
	doctorVerbose bool
)

var doctorCmd = &cobra.Command{
	Use:     "doctor",
	GroupID: GroupDiag,
	Short:   "Run health checks on the workspace",
	Long: `Run diagnostic checks against the current repository and its gwt state.

Checks:
  - orphan-worktrees        Detect worktrees whose directory was deleted outside git (fixable)
  - prunable-worktrees      Detect clean, merged worktrees ready to remove
  - orphan-panes            Detect multiplexer panes whose process has already exited (fixable)
  - stale-hook-registration Detect a hook pointed at an ephemeral binary path (fixable)
  - stale-bridge-entries    Detect leftover gwt-agent-bridge entries in agent config files (fixable)
  - tools-schema            Detect tools.toml/tools.json schema drift or invalid entries (fixable)

Use --fix to attempt automatic fixes for issues that support it.`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Attempt to automatically fix issues")
	doctorCmd.Flags().BoolVarP(&doctorVerbose, "verbose", "v", false, "Show check details")
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}

	d := doctor.NewDoctor()
	d.Register(doctor.NewOrphanWorktreeCheck())
	d.Register(doctor.NewUnmergedPrunableWorktreeCheck())
	d.Register(doctor.NewOrphanPaneCheck(sessionName(root)))
	d.Register(doctor.NewStaleHookCheck())
	d.Register(doctor.NewBridgeCleanupCheck())
	d.Register(doctor.NewToolsSchemaCheck(root))

	ctx := &doctor.Context{RepoRoot: root, Verbose: doctorVerbose}

	var report *doctor.Report
	if doctorFix {
		report = d.Fix(ctx)
	} else {
		report = d.Run(ctx)
	}

	report.PrintSummary(os.Stdout, doctorVerbose)
	if report.HasErrors() {
		return fmt.Errorf("doctor found %d error(s)", report.Summary.Errors)
	}
	return nil
}
