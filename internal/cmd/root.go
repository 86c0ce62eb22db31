// Package cmd wires gwt's internal packages into the cobra command tree:
// the interactive branch/agent console plus scripting-friendly subcommands
// for hooks, tools, diagnostics, and history.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xcawolfe/gwt/internal/style"
)

// GroupID constants group subcommands under `gwt help`, following the
// teacher's GroupWorkspace/GroupAgents/GroupDiag split.
const (
	GroupWorkspace = "workspace"
	GroupAgents    = "agents"
	GroupDiag      = "diag"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "gwt",
	Short:         "Run one coding agent per git branch, side by side",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupWorkspace, Title: "Workspace:"},
		&cobra.Group{ID: GroupAgents, Title: "Agents:"},
		&cobra.Group{ID: GroupDiag, Title: "Diagnostics:"},
	)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed diagnostic output")
	cobra.OnInitialize(func() { style.SetVerbose(verbose) })
}

// Execute runs the root command and returns the process exit code. `gwt
// hook <Event>` distinguishes a malformed event (exit 2) from every other
// internal error (exit 1); every other subcommand only ever exits 0 or 1.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, style.Red.Render(err.Error()))
		var malformed *hookExitMalformed
		if errors.As(err, &malformed) {
			return 2
		}
		return 1
	}
	return 0
}

// repoRoot resolves the git repository root for the current working
// directory, the way every subcommand below locates the workspace it
// operates on.
func repoRoot() (string, error) {
	out, err := exec.Command("git", "rev-parse", "--show-toplevel").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("not inside a git repository: %s", strings.TrimSpace(string(out)))
	}
	return strings.TrimSpace(string(out)), nil
}
