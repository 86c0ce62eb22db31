package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xcawolfe/gwt/internal/bridge"
)

// bridgeCmd is the process each agent's own config registers as the
// "gwt-agent-bridge" MCP server entry (§4.E). Its transport is the concrete
// choice documented in DESIGN.md's Open Question resolution: a
// per-repo Unix-domain socket, not a full MCP stdio protocol, since §9
// leaves the bridge transport unspecified beyond the registrar's file
// shape. It blocks printing every event forwarded by `gwt hook <Event>`
// until the repo's socket is closed.
var bridgeCmd = &cobra.Command{
	Use:     "bridge",
	GroupID: GroupAgents,
	Short:   "Run the message-bus bridge listener (invoked by agents via MCP registration, not users)",
	RunE:    runBridge,
}

func init() {
	rootCmd.AddCommand(bridgeCmd)
}

func runBridge(cmd *cobra.Command, args []string) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}

	srv, err := bridge.Listen(root)
	if err != nil {
		return fmt.Errorf("starting bridge listener: %w", err)
	}
	defer srv.Close()

	for ev := range srv.Events() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ev.Event, ev.Branch)
	}
	return nil
}
