package cmd

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/xcawolfe/gwt/internal/agent"
	"github.com/xcawolfe/gwt/internal/bridge"
	"github.com/xcawolfe/gwt/internal/capability"
	"github.com/xcawolfe/gwt/internal/gitx"
	"github.com/xcawolfe/gwt/internal/hooks"
	"github.com/xcawolfe/gwt/internal/mux"
	"github.com/xcawolfe/gwt/internal/style"
	"github.com/xcawolfe/gwt/internal/tools"
)

// promptMarkers are scrollback suffixes that typically precede an agent
// waiting on the user, used as the default PromptPredicate. Agent-specific
// tools can supply a richer predicate; this default stays generic since the
// supervisor itself is agnostic to prompt shape (§4.D).
var promptMarkers = []string{"? ", "❯ ", "> ", ": "}

func defaultPromptPredicate(scrollback string) bool {
	trimmed := strings.TrimRight(scrollback, "\n")
	if trimmed == "" {
		return false
	}
	lastLine := trimmed
	if i := strings.LastIndexByte(trimmed, '\n'); i >= 0 {
		lastLine = trimmed[i+1:]
	}
	for _, marker := range promptMarkers {
		if strings.HasSuffix(lastLine, marker) {
			return true
		}
	}
	return false
}

func init() {
	rootCmd.RunE = runApp
}

// runApp boots the interactive console: it registers hooks/bridges for the
// binary's current path, opens (or creates) the control tmux session,
// reattaches any orphaned panes from a prior run, and hands off to the
// bubbletea program. This is the only command that owns the terminal.
func runApp(cmd *cobra.Command, args []string) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}

	hooks.CleanupStaleBridges()
	registerHooksAndBridges()
	defer hooks.CleanupStaleBridges()

	toolsCfg, err := tools.LoadMerged(root)
	if err != nil {
		return fmt.Errorf("loading tools config: %w", err)
	}

	git := gitx.NewGit(root)

	m := mux.New(sessionName(root))
	if err := m.EnsureSession(root); err != nil {
		return fmt.Errorf("starting tmux session: %w", err)
	}
	panes, err := m.ListPanes()
	if err != nil {
		return fmt.Errorf("listing tmux panes: %w", err)
	}
	controlPane := ""
	if len(panes) > 0 {
		controlPane = panes[0].ID
	}

	sup := agent.NewSupervisor(m, newGitResolver(root), controlPane, defaultPromptPredicate)
	if err := reattachOrphans(sup, git); err != nil {
		style.PrintWarning("orphan reattachment: %v", err)
	}

	bridgeSrv, err := bridge.Listen(root)
	if err != nil {
		style.PrintWarning("starting bridge listener: %v", err)
	}

	model := newAppModel(root, git, sup, toolsCfg)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if bridgeSrv != nil {
		defer bridgeSrv.Close()
		go forwardBridgeEvents(bridgeSrv, p)
	}

	_, err = p.Run()
	return err
}

// forwardBridgeEvents relays hook events received over the bridge socket
// into the bubbletea program as messages, so a running agent's own `gwt
// hook <Event>` invocations can nudge the UI (e.g. a Stop event hinting the
// pane is now idle) without the supervisor having to poll scrollback alone.
func forwardBridgeEvents(srv *bridge.Server, p *tea.Program) {
	for ev := range srv.Events() {
		p.Send(hookEventMsg{event: ev})
	}
}

// reattachOrphans maps every known worktree's path to its branch name and
// asks the supervisor to adopt any already-running pane rooted there,
// per §4.D's orphan-reattachment contract.
func reattachOrphans(sup *agent.Supervisor, git *gitx.Git) error {
	worktrees, err := git.ListWorktrees()
	if err != nil {
		return err
	}
	byBranch := make(map[string]string, len(worktrees))
	for _, w := range worktrees {
		if w.Branch != "" {
			byBranch[w.Branch] = w.Path
		}
	}
	return sup.ReattachOrphans(byBranch)
}

// registerHooksAndBridges registers gwt's own event hooks and MCP bridge
// entries in every recognized agent's config file, skipping re-registration
// when the file already points at the current binary (§4.E). A missing
// Claude settings file is left alone. Failures are logged per-target and
// never abort startup.
func registerHooksAndBridges() {
	exe, err := os.Executable()
	if err != nil {
		style.PrintWarning("resolving executable path: %v", err)
		return
	}
	if reason, temp := capability.IsTemporaryExecutionPath(exe); temp {
		style.PrintWarning("running from an ephemeral path (%s); hooks will stop working once it is purged", reason)
	}

	if claudeSettings, err := hooks.ClaudeSettingsPath(); err == nil {
		if _, statErr := os.Stat(claudeSettings); statErr == nil {
			registered, err := hooks.IsRegistered(claudeSettings)
			if err == nil && !registered {
				err = hooks.Register(claudeSettings, exe)
			} else if err == nil {
				_, err = hooks.Reregister(claudeSettings, exe)
			}
			if err != nil {
				style.PrintWarning("registering Claude hooks: %v", err)
			}
		}
	}

	registerBridge(hooks.ClaudeBridgePath, exe)
	registerBridge(hooks.GeminiBridgePath, exe)
	registerCodexBridge(exe)
}

func registerBridge(pathFn func() (string, error), exe string) {
	path, err := pathFn()
	if err != nil {
		return
	}
	entry := hooks.BridgeEntry{Command: exe, Args: []string{"bridge"}}
	if err := hooks.RegisterJSONBridge(path, entry); err != nil {
		style.PrintWarning("registering bridge in %s: %v", path, err)
	}
}

func registerCodexBridge(exe string) {
	path, err := hooks.CodexBridgePath()
	if err != nil {
		return
	}
	entry := hooks.BridgeEntry{Command: exe, Args: []string{"bridge"}}
	if err := hooks.RegisterCodexBridge(path, entry); err != nil {
		style.PrintWarning("registering Codex bridge in %s: %v", path, err)
	}
}
