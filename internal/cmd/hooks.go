package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xcawolfe/gwt/internal/capability"
	"github.com/xcawolfe/gwt/internal/hooks"
)

var hooksCmd = &cobra.Command{
	Use:     "hooks",
	GroupID: GroupDiag,
	Short:   "Inspect and repair gwt's event-hook and MCP-bridge registrations in agent config files",
}

var hooksInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Force-register gwt's hooks and bridges in every known agent config",
	RunE:  runHooksInstall,
}

var hooksListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show gwt's current hook/bridge registration state per agent config",
	RunE:  runHooksList,
}

var hooksSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Re-register any agent config whose gwt entries point at a stale executable path",
	RunE:  runHooksSync,
}

func init() {
	hooksCmd.AddCommand(hooksInstallCmd, hooksListCmd, hooksSyncCmd)
	rootCmd.AddCommand(hooksCmd)
}

// hookTarget names one agent config file this command audits, alongside
// the check/register functions for its particular on-disk shape (Claude's
// settings.json hook blocks vs. the three MCP-bridge files).
type hookTarget struct {
	name       string
	pathFn     func() (string, error)
	registered func(path string) (bool, error)
	reregister func(path, exePath string) (bool, error)
}

func hookTargets() []hookTarget {
	return []hookTarget{
		{
			name:       "claude settings",
			pathFn:     hooks.ClaudeSettingsPath,
			registered: hooks.IsRegistered,
			reregister: hooks.Reregister,
		},
		{
			name:       "claude bridge",
			pathFn:     hooks.ClaudeBridgePath,
			registered: hooks.HasJSONBridge,
		},
		{
			name:       "gemini bridge",
			pathFn:     hooks.GeminiBridgePath,
			registered: hooks.HasJSONBridge,
		},
		{
			name:       "codex bridge",
			pathFn:     hooks.CodexBridgePath,
			registered: hooks.HasCodexBridge,
		},
	}
}

func runHooksInstall(cmd *cobra.Command, args []string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolving executable path: %w", err)
	}
	if reason, temp := capability.IsTemporaryExecutionPath(exe); temp {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: running from an ephemeral path (%s); hooks will stop working once it is purged\n", reason)
	}

	if path, err := hooks.ClaudeSettingsPath(); err == nil {
		if err := hooks.Register(path, exe); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "claude settings: %v\n", err)
		}
	}

	entry := hooks.BridgeEntry{Command: exe, Args: []string{"bridge"}}
	if path, err := hooks.ClaudeBridgePath(); err == nil {
		if err := hooks.RegisterJSONBridge(path, entry); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "claude bridge: %v\n", err)
		}
	}
	if path, err := hooks.GeminiBridgePath(); err == nil {
		if err := hooks.RegisterJSONBridge(path, entry); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "gemini bridge: %v\n", err)
		}
	}
	if path, err := hooks.CodexBridgePath(); err == nil {
		if err := hooks.RegisterCodexBridge(path, entry); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "codex bridge: %v\n", err)
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), "hooks installed")
	return nil
}

func runHooksList(cmd *cobra.Command, args []string) error {
	for _, target := range hookTargets() {
		path, err := target.pathFn()
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%-16s (could not resolve path: %v)\n", target.name, err)
			continue
		}
		registered, err := target.registered(path)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s (error: %v)\n", target.name, path, err)
			continue
		}
		state := "not registered"
		if registered {
			state = "registered"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-16s %-40s %s\n", target.name, path, state)
	}
	return nil
}

// runHooksSync audits every known agent config for drift — a gwt entry
// present but pointing at an executable path other than the one currently
// running — and re-registers the hook configs where Reregister reports a
// rewrite. Bridge files are re-registered whenever they already hold a gwt
// entry, without comparing it, and are not counted as changed.
func runHooksSync(cmd *cobra.Command, args []string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolving executable path: %w", err)
	}

	changed := 0
	for _, target := range hookTargets() {
		path, err := target.pathFn()
		if err != nil {
			continue
		}
		if target.reregister == nil {
			// Bridge files have no drift concept of their own: RegisterJSONBridge
			// and RegisterCodexBridge always overwrite, so re-run them only when
			// the entry is already present (no-op otherwise leaves it unregistered).
			registered, err := target.registered(path)
			if err != nil || !registered {
				continue
			}
			entry := hooks.BridgeEntry{Command: exe, Args: []string{"bridge"}}
			var rerr error
			if target.name == "codex bridge" {
				rerr = hooks.RegisterCodexBridge(path, entry)
			} else {
				rerr = hooks.RegisterJSONBridge(path, entry)
			}
			if rerr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", target.name, rerr)
			}
			continue
		}

		rewrote, err := target.reregister(path, exe)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", target.name, err)
			continue
		}
		if rewrote {
			changed++
			fmt.Fprintf(cmd.OutOrStdout(), "%s: re-registered (stale executable path)\n", target.name)
		}
	}
	if changed == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no drift detected")
	}
	return nil
}
