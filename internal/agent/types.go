// Package agent supervises agent panes: attaching a CustomAgent to a
// worktree, inferring pane status, enforcing the single-foreground
// invariant, and tearing panes down on exit.
package agent

import (
	"time"

	"github.com/google/uuid"
)

// Status is the inferred state of an agent pane.
type Status int

const (
	StatusUnknown Status = iota
	StatusRunning
	StatusWaitingInput
	StatusStopped
)

// Mode selects which CustomAgent invocation form to launch with.
type Mode int

const (
	ModeNormal Mode = iota
	ModeContinue
	ModeResume
)

// ModelOption is one entry in a CustomAgent's model catalog, carried through
// from internal/tools so BuildArgv can resolve a LaunchSpec's chosen model
// id to its CLI argument.
type ModelOption struct {
	ID  string
	Arg string
}

// CustomAgent describes one configured coding-agent integration, matching
// the on-disk ToolsConfig shape in internal/tools.
type CustomAgent struct {
	ID                 string
	DisplayName        string
	Command            string
	DefaultArgs        []string
	NormalArgs         []string
	ContinueArgs       []string
	ResumeArgs         []string
	PermissionSkipArgs []string
	Env                map[string]string
	Models             []ModelOption
	// ReasoningArgs maps a reasoning tier name (e.g. "low", "medium", "high")
	// to the argv that selects it. Only Codex-like agents populate this;
	// BuildArgv is a no-op for a LaunchSpec's ReasoningTier otherwise.
	ReasoningArgs map[string][]string
}

// modelArg returns the CLI argument for id, or "" if id is unset or unknown.
func (a CustomAgent) modelArg(id string) string {
	if id == "" {
		return ""
	}
	for _, m := range a.Models {
		if m.ID == id {
			return m.Arg
		}
	}
	return ""
}

// ArgsForMode returns the mode-specific argument set, falling back to
// NormalArgs and then to DefaultArgs if the mode has none configured.
func (a CustomAgent) ArgsForMode(mode Mode) []string {
	switch mode {
	case ModeContinue:
		if len(a.ContinueArgs) > 0 {
			return a.ContinueArgs
		}
	case ModeResume:
		if len(a.ResumeArgs) > 0 {
			return a.ResumeArgs
		}
	}
	if len(a.NormalArgs) > 0 {
		return a.NormalArgs
	}
	return a.DefaultArgs
}

// VersionSelector names which build of an agent a LaunchSpec should run:
// the one already on PATH, the literal "latest", or a concrete version
// string fetched from the agent's package registry.
type VersionSelector string

const (
	VersionInstalled VersionSelector = "installed"
	VersionLatest    VersionSelector = "latest"
)

// LaunchSpec describes one request to attach an agent to a branch. Model and
// ReasoningTier are optional identifiers resolved against the CustomAgent's
// own catalogs; Version is either one of the VersionSelector constants or a
// concrete version string.
type LaunchSpec struct {
	ID              string
	Branch          string
	Agent           CustomAgent
	Model           string
	ReasoningTier   string
	Version         string
	Mode            Mode
	SkipPermissions bool
}

// NewLaunchSpec returns a LaunchSpec with a freshly generated ID.
func NewLaunchSpec(branch string, a CustomAgent, mode Mode, skipPermissions bool) LaunchSpec {
	return LaunchSpec{
		ID:              uuid.NewString(),
		Branch:          branch,
		Agent:           a,
		Version:         string(VersionInstalled),
		Mode:            mode,
		SkipPermissions: skipPermissions,
	}
}

// AgentPane records one attached agent's pane.
type AgentPane struct {
	ID               string
	Branch           string
	AgentName        string
	PaneID           string
	PID              int
	WorktreePath     string
	IsBackground     bool
	BackgroundWindow string
	Status           Status
	LaunchTime       time.Time
}

func newAgentPane(branch, agentName, paneID string, pid int, worktreePath string) *AgentPane {
	return &AgentPane{
		ID:           uuid.NewString(),
		Branch:       branch,
		AgentName:    agentName,
		PaneID:       paneID,
		PID:          pid,
		WorktreePath: worktreePath,
		IsBackground: true,
		LaunchTime:   time.Now(),
	}
}

// BuildArgv assembles the full argv for launching spec: the mode-specific
// args, the chosen model's argv (if spec.Model resolves against the agent's
// model catalog), the chosen reasoning tier's argv (if the agent supports
// tiers), then permission-skip args iff requested.
func BuildArgv(spec LaunchSpec) []string {
	argv := append([]string{spec.Agent.Command}, spec.Agent.ArgsForMode(spec.Mode)...)
	if arg := spec.Agent.modelArg(spec.Model); arg != "" {
		argv = append(argv, arg)
	}
	if spec.ReasoningTier != "" {
		if tierArgs, ok := spec.Agent.ReasoningArgs[spec.ReasoningTier]; ok {
			argv = append(argv, tierArgs...)
		}
	}
	if spec.SkipPermissions {
		argv = append(argv, spec.Agent.PermissionSkipArgs...)
	}
	return argv
}
