package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/xcawolfe/gwt/internal/bridge"
)

// hookExitMalformed is returned by cobra's RunE as a sentinel the caller
// inspects via errors.As to set the process exit code to 2, per §6's "hook
// <Event>" exit-code contract (0 success, 2 malformed event, 1 internal
// error). cobra itself only distinguishes "error" from "no error", so
// Execute in root.go special-cases this type.
type hookExitMalformed struct{ reason string }

func (e *hookExitMalformed) Error() string { return e.reason }

// hookPayload is the subset of an agent hook's JSON payload gwt reads: every
// event carries at minimum a session/cwd pair agents use to identify which
// branch they're running against.
type hookPayload struct {
	Branch  string          `json:"branch,omitempty"`
	Session string          `json:"session_id,omitempty"`
	Cwd     string          `json:"cwd,omitempty"`
	Raw     json.RawMessage `json:"-"`
}

var hookCmd = &cobra.Command{
	Use:     "hook <Event>",
	GroupID: GroupAgents,
	Short:   "Forward an agent hook event to the running gwt session (invoked by agents, not users)",
	Args:    cobra.ExactArgs(1),
	RunE:    runHook,
}

func init() {
	rootCmd.AddCommand(hookCmd)
}

func runHook(cmd *cobra.Command, args []string) error {
	event := args[0]

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("reading hook payload: %w", err)
	}

	var payload hookPayload
	if len(data) > 0 {
		if err := json.Unmarshal(data, &payload); err != nil {
			return &hookExitMalformed{reason: fmt.Sprintf("malformed hook payload: %v", err)}
		}
	}
	payload.Raw = data

	root, err := repoRoot()
	if err != nil {
		root = payload.Cwd
	}
	if root == "" {
		return &hookExitMalformed{reason: "unable to resolve a repository root for this hook event"}
	}

	ev := bridge.Event{
		Event:      event,
		Branch:     payload.Branch,
		Payload:    data,
		ReceivedAt: time.Now(),
	}
	if err := bridge.Send(root, ev); err != nil {
		return fmt.Errorf("forwarding hook event: %w", err)
	}
	return nil
}
