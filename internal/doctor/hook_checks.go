package doctor

import (
	"fmt"
	"os"

	"github.com/xcawolfe/gwt/internal/capability"
	"github.com/xcawolfe/gwt/internal/hooks"
)

// StaleHookCheck warns when gwt hooks are registered while the currently
// running binary sits on an ephemeral path that a cache purge will remove.
// It does not compare the executable paths recorded in the hook entries with
// the running binary; its Fix runs hooks.Reregister, which rewrites entries
// that point at a different executable.
type StaleHookCheck struct {
	settingsPath func() (string, error)
	exePath      func() (string, error)
}

// NewStaleHookCheck builds a check against Claude Code's own settings file,
// the only hook target §4.E registers against today.
func NewStaleHookCheck() *StaleHookCheck {
	return &StaleHookCheck{
		settingsPath: hooks.ClaudeSettingsPath,
		exePath:      os.Executable,
	}
}

func (c *StaleHookCheck) Name() string { return "stale-hook-registration" }

func (c *StaleHookCheck) Description() string {
	return "Detect registered hooks while running from an ephemeral executable path"
}

func (c *StaleHookCheck) Run(ctx *Context) *Result {
	path, err := c.settingsPath()
	if err != nil {
		return &Result{Name: c.Name(), Status: StatusError, Message: fmt.Sprintf("resolving settings path: %v", err)}
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Result{Name: c.Name(), Status: StatusOK, Message: "no settings file to check"}
	}

	registered, err := hooks.IsRegistered(path)
	if err != nil {
		return &Result{Name: c.Name(), Status: StatusError, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}
	if !registered {
		return &Result{Name: c.Name(), Status: StatusOK, Message: "hooks not registered, nothing to check"}
	}

	exePath, err := c.exePath()
	if err != nil {
		return &Result{Name: c.Name(), Status: StatusError, Message: fmt.Sprintf("resolving current executable: %v", err)}
	}
	if tag, ephemeral := capability.IsTemporaryExecutionPath(exePath); ephemeral {
		return &Result{
			Name:    c.Name(),
			Status:  StatusWarning,
			Message: fmt.Sprintf("running from an ephemeral path (%s); hooks will break once the cache is purged", tag),
		}
	}

	return &Result{Name: c.Name(), Status: StatusOK, Message: "hook registration points at a stable path"}
}

func (c *StaleHookCheck) Fix(ctx *Context) error {
	path, err := c.settingsPath()
	if err != nil {
		return err
	}
	exePath, err := c.exePath()
	if err != nil {
		return err
	}
	_, err = hooks.Reregister(path, exePath)
	return err
}

// BridgeCleanupCheck detects a leftover MCP bridge entry from a previous
// run that crashed before its startup cleanup pass ran.
type BridgeCleanupCheck struct {
	stale []string
}

func NewBridgeCleanupCheck() *BridgeCleanupCheck { return &BridgeCleanupCheck{} }

func (c *BridgeCleanupCheck) Name() string { return "stale-bridge-entries" }

func (c *BridgeCleanupCheck) Description() string {
	return "Detect leftover gwt-agent-bridge entries in agent config files"
}

func (c *BridgeCleanupCheck) Run(ctx *Context) *Result {
	c.stale = nil
	c.checkTarget("Claude", hooks.ClaudeBridgePath, hooks.HasJSONBridge)
	c.checkTarget("Gemini", hooks.GeminiBridgePath, hooks.HasJSONBridge)
	c.checkCodexTarget()

	if len(c.stale) == 0 {
		return &Result{Name: c.Name(), Status: StatusOK, Message: "no stale bridge entries"}
	}
	return &Result{
		Name:    c.Name(),
		Status:  StatusWarning,
		Message: fmt.Sprintf("%d stale bridge entr(y/ies) found", len(c.stale)),
		Details: c.stale,
	}
}

func (c *BridgeCleanupCheck) checkTarget(label string, pathFn func() (string, error), hasFn func(string) (bool, error)) {
	path, err := pathFn()
	if err != nil {
		return
	}
	has, err := hasFn(path)
	if err == nil && has {
		c.stale = append(c.stale, label+": "+path)
	}
}

func (c *BridgeCleanupCheck) checkCodexTarget() {
	path, err := hooks.CodexBridgePath()
	if err != nil {
		return
	}
	has, err := hooks.HasCodexBridge(path)
	if err == nil && has {
		c.stale = append(c.stale, "Codex: "+path)
	}
}

func (c *BridgeCleanupCheck) Fix(ctx *Context) error {
	hooks.CleanupStaleBridges()
	return nil
}
