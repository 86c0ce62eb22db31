package agent

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xcawolfe/gwt/internal/mux"
	"github.com/xcawolfe/gwt/internal/style"
)

// ErrDuplicateLaunch is returned when an attach would create a second
// running pane for the same (branch, agent) pair.
var ErrDuplicateLaunch = errors.New("agent already running for this branch")

// WorktreeResolver resolves or creates the worktree a branch should launch
// into. Implemented by internal/gitx in production.
type WorktreeResolver interface {
	ResolveWorktree(branch string) (path string, err error)
}

// PaneMultiplexer is the subset of internal/mux's Mux that the supervisor
// needs, declared as an interface so tests can fake it.
type PaneMultiplexer interface {
	SplitPane(target, workDir, command string) (string, error)
	KillPane(id string) error
	Hide(paneID string) (string, error)
	Show(windowRef, targetPaneID string) error
	SendKeysRaw(paneID, keys string) error
	CapturePane(paneID string, lines int) (string, error)
	ListPanes() ([]mux.Pane, error)
}

// PromptPredicate recognizes a "waiting for input" prompt in scrollback.
// Detection is agent-defined; the supervisor is agnostic to the pattern.
type PromptPredicate func(scrollback string) bool

// agentPrefixes maps a pane's foreground command to a display agent name,
// used both for status inference and orphan reattachment.
var agentPrefixes = []string{"claude", "codex", "aider", "cursor", "cline", "copilot", "gemini", "gpt"}

// Supervisor owns the set of attached agent panes for one control session.
type Supervisor struct {
	mu sync.Mutex

	mux           PaneMultiplexer
	worktrees     WorktreeResolver
	controlPane   string
	panes         map[string]*AgentPane // keyed by AgentPane.ID
	promptMatch   PromptPredicate
	PollInterval  time.Duration
	terminateWait time.Duration
}

// NewSupervisor returns a Supervisor bound to a multiplexer and worktree
// resolver, rooted at the given control pane.
func NewSupervisor(m PaneMultiplexer, resolver WorktreeResolver, controlPane string, promptMatch PromptPredicate) *Supervisor {
	return &Supervisor{
		mux:           m,
		worktrees:     resolver,
		controlPane:   controlPane,
		panes:         make(map[string]*AgentPane),
		promptMatch:   promptMatch,
		PollInterval:  250 * time.Millisecond,
		terminateWait: 5 * time.Second,
	}
}

// Panes returns a snapshot of all currently tracked panes.
func (s *Supervisor) Panes() []*AgentPane {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*AgentPane, 0, len(s.panes))
	for _, p := range s.panes {
		out = append(out, p)
	}
	return out
}

// Attach resolves the worktree, assembles argv, splits a pane for it, and
// records a new background AgentPane. It rejects duplicate (branch, agent)
// launches against any currently running pane.
func (s *Supervisor) Attach(spec LaunchSpec) (*AgentPane, error) {
	s.mu.Lock()
	for _, p := range s.panes {
		if p.Branch == spec.Branch && p.AgentName == spec.Agent.ID && p.Status != StatusStopped {
			s.mu.Unlock()
			return nil, ErrDuplicateLaunch
		}
	}
	s.mu.Unlock()

	worktreePath, err := s.worktrees.ResolveWorktree(spec.Branch)
	if err != nil {
		return nil, fmt.Errorf("resolving worktree for %s: %w", spec.Branch, err)
	}

	argv := BuildArgv(spec)
	command := strings.Join(argv, " ")

	paneID, err := s.mux.SplitPane(s.controlPane, worktreePath, command)
	if err != nil {
		return nil, fmt.Errorf("splitting pane: %w", err)
	}

	pane := newAgentPane(spec.Branch, spec.Agent.ID, paneID, 0, worktreePath)

	s.mu.Lock()
	s.panes[pane.ID] = pane
	s.mu.Unlock()
	return pane, nil
}

// PollStatus refreshes the inferred status of every tracked pane using the
// multiplexer's current_command and, where the pane is foreground, its
// scrollback.
func (s *Supervisor) PollStatus() error {
	livePanes, err := s.mux.ListPanes()
	if err != nil {
		return err
	}
	byID := make(map[string]mux.Pane, len(livePanes))
	for _, p := range livePanes {
		byID[p.ID] = p
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ap := range s.panes {
		live, stillThere := byID[ap.PaneID]
		ap.Status = s.inferStatus(ap, live, stillThere)
	}
	return nil
}

func (s *Supervisor) inferStatus(ap *AgentPane, live mux.Pane, stillThere bool) Status {
	if !stillThere {
		return StatusStopped
	}
	ap.PID = live.PID

	known := isKnownAgentCommand(live.CurrentCommand)
	if !known {
		return StatusUnknown
	}

	if ap.IsBackground || s.promptMatch == nil {
		return StatusRunning
	}

	scrollback, err := s.mux.CapturePane(ap.PaneID, 30)
	if err != nil {
		return StatusRunning
	}
	if s.promptMatch(scrollback) {
		return StatusWaitingInput
	}
	return StatusRunning
}

func isKnownAgentCommand(cmd string) bool {
	for _, prefix := range agentPrefixes {
		if strings.HasPrefix(strings.ToLower(cmd), prefix) {
			return true
		}
	}
	return false
}

// SwitchForeground makes targetID the sole foreground pane. It hides the
// currently foreground pane first, then shows the target. If hiding
// succeeds but showing fails, the previous pane stays hidden and the error
// is returned so the caller can retry the show step.
func (s *Supervisor) SwitchForeground(targetID string) error {
	s.mu.Lock()
	var current *AgentPane
	for _, p := range s.panes {
		if !p.IsBackground {
			current = p
			break
		}
	}
	target, ok := s.panes[targetID]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown pane %s", targetID)
	}
	if current != nil && current.ID == target.ID {
		return nil
	}

	if current != nil {
		windowRef, err := s.mux.Hide(current.PaneID)
		if err != nil {
			return fmt.Errorf("hiding current pane: %w", err)
		}
		s.mu.Lock()
		current.IsBackground = true
		current.BackgroundWindow = windowRef
		s.mu.Unlock()
	}

	if err := s.mux.Show(target.BackgroundWindow, s.controlPane); err != nil {
		return fmt.Errorf("showing target pane: %w", err)
	}
	s.mu.Lock()
	target.IsBackground = false
	target.BackgroundWindow = ""
	s.mu.Unlock()
	return nil
}

// Display is the rendered color/icon pair for a pane at spinner frame f.
type Display struct {
	Color style.Color
	Icon  rune
}

// DisplayFor derives the color/icon for a pane's current status at spinner
// frame f, per the supervisor's display rules.
func DisplayFor(p *AgentPane, f int) Display {
	switch p.Status {
	case StatusRunning:
		if p.IsBackground {
			return Display{Color: style.ColorDim, Icon: style.Icon(style.BackgroundFrames, f)}
		}
		return Display{Color: style.ColorGreen, Icon: style.Icon(style.ForegroundFrames, f)}
	case StatusWaitingInput:
		icon := ' '
		if style.BlinkVisible(f) {
			icon = '?'
		}
		return Display{Color: style.ColorYellow, Icon: icon}
	case StatusStopped:
		return Display{Color: style.ColorRed, Icon: '#'}
	default:
		return Display{Color: style.ColorGray, Icon: '~'}
	}
}

// StatusCounts aggregates {running, waiting, stopped} across all panes.
// Unknown panes are not counted, matching the status-bar contract.
func (s *Supervisor) StatusCounts() (running, waiting, stopped int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.panes {
		switch p.Status {
		case StatusRunning:
			running++
		case StatusWaitingInput:
			waiting++
		case StatusStopped:
			stopped++
		}
	}
	return
}

// HasAgents reports whether any pane is currently tracked, used to decide
// whether application exit must prompt for confirmation.
func (s *Supervisor) HasAgents() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.panes) > 0
}

// Terminate gracefully stops a pane: Ctrl-C to the pane, SIGTERM to the
// pid, a grace window, then SIGKILL and pane kill if it hasn't exited.
// "No such process" from the signal step is not an error.
func (s *Supervisor) Terminate(id string) error {
	s.mu.Lock()
	pane, ok := s.panes[id]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown pane %s", id)
	}

	_ = s.mux.SendKeysRaw(pane.PaneID, "C-c")
	if pane.PID > 0 {
		if err := mux.SendSignal(pane.PID, mux.SignalTerm); err != nil {
			return fmt.Errorf("sending SIGTERM: %w", err)
		}
	}

	deadline := time.Now().Add(s.terminateWait)
	for time.Now().Before(deadline) {
		if !stillRunning(s.mux, pane.PaneID) {
			break
		}
		time.Sleep(200 * time.Millisecond)
	}

	if stillRunning(s.mux, pane.PaneID) {
		if pane.PID > 0 {
			if err := mux.SendSignal(pane.PID, mux.SignalKill); err != nil {
				return fmt.Errorf("sending SIGKILL: %w", err)
			}
		}
		if err := s.mux.KillPane(pane.PaneID); err != nil {
			return fmt.Errorf("killing pane: %w", err)
		}
	}

	s.mu.Lock()
	delete(s.panes, id)
	s.mu.Unlock()
	return nil
}

func stillRunning(m PaneMultiplexer, paneID string) bool {
	panes, err := m.ListPanes()
	if err != nil {
		return false
	}
	for _, p := range panes {
		if p.ID == paneID {
			return true
		}
	}
	return false
}

// DestroyAll terminates every tracked pane, used after a confirmed "quit".
// Panes whose pid has already exited are removed silently.
func (s *Supervisor) DestroyAll() {
	for _, p := range s.Panes() {
		_ = s.Terminate(p.ID)
	}
}

// ReattachOrphans lists all panes in the session, excludes the control
// pane, and matches each remaining pane's current_path against the given
// worktree paths (branch name -> worktree path). For each match it
// synthesizes an AgentPane with a best-effort agent name, an unrecoverable
// launch instant of "now", and Unknown status.
func (s *Supervisor) ReattachOrphans(worktreePaths map[string]string) error {
	panes, err := s.mux.ListPanes()
	if err != nil {
		return err
	}

	byPath := make(map[string]string, len(worktreePaths))
	for branch, path := range worktreePaths {
		byPath[normalizePath(path)] = branch
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range panes {
		if p.ID == s.controlPane {
			continue
		}
		branch, ok := byPath[normalizePath(p.CurrentPath)]
		if !ok {
			continue
		}
		if s.alreadyTrackedLocked(p.ID) {
			continue
		}
		ap := newAgentPane(branch, inferAgentName(p.CurrentCommand), p.ID, p.PID, p.CurrentPath)
		ap.Status = StatusUnknown
		s.panes[ap.ID] = ap
	}
	return nil
}

func (s *Supervisor) alreadyTrackedLocked(paneID string) bool {
	for _, p := range s.panes {
		if p.PaneID == paneID {
			return true
		}
	}
	return false
}

func normalizePath(p string) string {
	return strings.TrimRight(p, "/")
}

// inferAgentName maps a pane's foreground command to a display agent name
// using a prefix-match table. Unrecognized commands keep the raw command
// string; empty commands map to "unknown".
func inferAgentName(cmd string) string {
	if cmd == "" {
		return "unknown"
	}
	lower := strings.ToLower(cmd)
	for _, prefix := range agentPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return prefix
		}
	}
	return cmd
}
