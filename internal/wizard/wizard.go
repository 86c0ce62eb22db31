// Package wizard drives the multi-step agent-launch selection flow: pick an
// agent, model, reasoning tier (when supported), version, execution mode,
// and permission-bypass setting, with a "quick start" shortcut that
// reconstitutes a prior launch from persisted per-branch history. It is a
// pure state machine — no rendering — matching the host-application split
// the git façade and multiplexer adapter already follow.
package wizard

import (
	"fmt"
	"sort"

	"github.com/xcawolfe/gwt/internal/agent"
	"github.com/xcawolfe/gwt/internal/history"
	"github.com/xcawolfe/gwt/internal/tools"
)

// Step identifies one node in the wizard's step graph.
type Step int

const (
	StepQuickStart Step = iota
	StepBranchTypeSelect
	StepBranchNameInput
	StepAgentSelect
	StepModelSelect
	StepReasoningLevel
	StepVersionSelect
	StepExecutionMode
	StepSkipPermissions
)

// ConfirmResult reports what a confirm action did: advance to the next step,
// or complete the wizard (the host should materialize a LaunchSpec).
type ConfirmResult int

const (
	Advance ConfirmResult = iota
	Complete
)

// QuickStartAction is the choice a user makes on a single Quick Start entry.
type QuickStartAction int

const (
	ResumeWithPrevious QuickStartAction = iota
	StartNewWithPrevious
	ChooseDifferent
)

// BranchType is the new-branch prefix chosen in BranchTypeSelect.
type BranchType int

const (
	BranchFeature BranchType = iota
	BranchBugfix
	BranchHotfix
	BranchRelease
)

// Prefix returns the branch-name prefix for t, per §4.G's branch-name
// composition rule.
func (t BranchType) Prefix() string {
	switch t {
	case BranchBugfix:
		return "bugfix/"
	case BranchHotfix:
		return "hotfix/"
	case BranchRelease:
		return "release/"
	default:
		return "feature/"
	}
}

// AllBranchTypes lists the selectable branch types in display order.
func AllBranchTypes() []BranchType {
	return []BranchType{BranchFeature, BranchBugfix, BranchHotfix, BranchRelease}
}

// reasoningTierOrder is the canonical display order for reasoning tiers; a
// given agent only offers the subset present in its ReasoningArgs map.
var reasoningTierOrder = []string{"low", "medium", "high", "xhigh"}

// VersionOption is one selectable entry in VersionSelect.
type VersionOption struct {
	Label       string
	Value       string
	Description string
}

// InstalledVersion is the result of probing an agent's installed build.
type InstalledVersion struct {
	Version string
	Path    string
}

// RegistryVersion is one version entry from an agent's package registry,
// already resolved to a comparable publish instant by the caller.
type RegistryVersion struct {
	Version      string
	IsPrerelease bool
	PublishedAt  string // RFC3339, or empty if unknown
}

// VersionSource supplies the external data VersionSelect needs: the
// installed build (if any) and recent registry releases. Implementations
// talk to the outside world; State never does.
type VersionSource interface {
	DetectInstalled(a tools.CustomAgent) (*InstalledVersion, error)
	FetchRegistryVersions(a tools.CustomAgent) ([]RegistryVersion, error)
}

const maxRegistryVersions = 10

// State is the full wizard state for one open wizard session.
type State struct {
	Step Step

	IsNewBranch bool
	Branch      string

	HasQuickStart     bool
	QuickStartEntries []history.QuickStartEntry
	QuickStartIndex   int

	Agents     []tools.CustomAgent
	AgentIndex int
	Agent      tools.CustomAgent

	ModelIndex int
	Model      string

	ReasoningTiers []string
	ReasoningIndex int
	ReasoningTier  string

	versionsFetched bool
	VersionOptions  []VersionOption
	VersionIndex    int
	Version         string

	ExecutionModeIndex int
	ExecutionMode      agent.Mode

	SkipPermissions bool

	BranchType    BranchType
	NewBranchName string
	Cursor        int

	// blockNextEnter implements FR-074: a one-shot flag set right after
	// auto-entering VersionSelect, consumed by the first Enter after that.
	blockNextEnter bool
}

// OpenForBranch starts the wizard for an existing branch. When history is
// non-empty the wizard opens on QuickStart; otherwise it opens directly on
// AgentSelect.
func OpenForBranch(branch string, agents []tools.CustomAgent, entries []history.QuickStartEntry) *State {
	s := &State{
		Branch:      branch,
		IsNewBranch: false,
		Agents:      agents,
	}
	s.resetSelections()
	if len(entries) == 0 {
		s.Step = StepAgentSelect
		s.HasQuickStart = false
	} else {
		s.Step = StepQuickStart
		s.HasQuickStart = true
		s.QuickStartEntries = entries
	}
	return s
}

// OpenForNewBranch starts the wizard for the "new branch" flow, which
// prepends BranchTypeSelect and BranchNameInput ahead of AgentSelect.
func OpenForNewBranch(agents []tools.CustomAgent) *State {
	s := &State{
		IsNewBranch: true,
		Agents:      agents,
	}
	s.resetSelections()
	s.Step = StepBranchTypeSelect
	return s
}

func (s *State) resetSelections() {
	s.AgentIndex = 0
	if len(s.Agents) > 0 {
		s.Agent = s.Agents[0]
	}
	s.ModelIndex = 0
	s.Model = ""
	if len(s.Agent.Models) > 0 {
		s.Model = s.Agent.Models[0].ID
	}
	s.setReasoningTiers()
	s.ReasoningIndex = 0
	if len(s.ReasoningTiers) > 0 {
		s.ReasoningTier = s.ReasoningTiers[0]
	}
	s.Version = string(agent.VersionLatest)
	s.VersionOptions = []VersionOption{{Label: "latest", Value: string(agent.VersionLatest)}}
	s.VersionIndex = 0
	s.versionsFetched = false
	s.ExecutionModeIndex = 0
	s.ExecutionMode = agent.ModeNormal
	s.SkipPermissions = false
	s.BranchType = BranchFeature
	s.NewBranchName = ""
	s.Cursor = 0
	s.QuickStartIndex = 0
}

func (s *State) setReasoningTiers() {
	s.ReasoningTiers = nil
	for _, tier := range reasoningTierOrder {
		if _, ok := s.Agent.ReasoningArgs[tier]; ok {
			s.ReasoningTiers = append(s.ReasoningTiers, tier)
		}
	}
}

func (s *State) agentSupportsReasoning() bool {
	return s.Agent.SupportsReasoningTiers()
}

// quickStartOptionCount is 2N+1: per-tool Resume/StartNew pairs, plus one
// "choose different settings" option.
func (s *State) quickStartOptionCount() int {
	if len(s.QuickStartEntries) == 0 {
		return 0
	}
	return len(s.QuickStartEntries)*2 + 1
}

// SelectedQuickStartAction reports which action/tool index QuickStartIndex
// currently points at, and ok=false when "choose different settings" (or no
// history at all) is selected.
func (s *State) SelectedQuickStartAction() (action QuickStartAction, toolIndex int, ok bool) {
	if len(s.QuickStartEntries) == 0 {
		return 0, 0, false
	}
	chooseDifferentIndex := len(s.QuickStartEntries) * 2
	if s.QuickStartIndex >= chooseDifferentIndex {
		return 0, 0, false
	}
	toolIndex = s.QuickStartIndex / 2
	if s.QuickStartIndex%2 == 0 {
		action = ResumeWithPrevious
	} else {
		action = StartNewWithPrevious
	}
	return action, toolIndex, true
}

// ApplyQuickStartSelection copies a persisted history entry's settings into
// the wizard state and sets the execution mode per action, per §4.G's
// QuickStart rule. It is the "apply_quick_start_selection" step of Testable
// Property #8: afterward every LaunchSpec field the entry carried is
// populated.
func (s *State) ApplyQuickStartSelection(toolIndex int, action QuickStartAction) error {
	if toolIndex < 0 || toolIndex >= len(s.QuickStartEntries) {
		return fmt.Errorf("quick start tool index %d out of range", toolIndex)
	}
	entry := s.QuickStartEntries[toolIndex]

	found := false
	for _, a := range s.Agents {
		if a.ID == entry.ToolID {
			s.Agent = a
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("quick start references unknown tool %q", entry.ToolID)
	}
	s.setReasoningTiers()

	if entry.Model != "" {
		s.Model = entry.Model
	}
	if entry.ReasoningTier != "" {
		s.ReasoningTier = entry.ReasoningTier
	}
	if entry.Version != "" {
		s.Version = entry.Version
	}
	s.SkipPermissions = entry.SkipPermissions

	switch action {
	case ResumeWithPrevious:
		s.ExecutionMode = agent.ModeResume
	default:
		s.ExecutionMode = agent.ModeNormal
	}
	return nil
}

// nextStepAfter computes the successor of from, applying the Codex-only
// ReasoningLevel sub-step skip. It does not mutate s beyond reading
// agentSupportsReasoning, so PrevStep can reuse it to decide where "back"
// from VersionSelect lands.
func (s *State) nextStepAfter(from Step) Step {
	switch from {
	case StepBranchTypeSelect:
		return StepBranchNameInput
	case StepBranchNameInput:
		return StepAgentSelect
	case StepAgentSelect:
		return StepModelSelect
	case StepModelSelect:
		if s.agentSupportsReasoning() {
			return StepReasoningLevel
		}
		return StepVersionSelect
	case StepReasoningLevel:
		return StepVersionSelect
	case StepVersionSelect:
		return StepExecutionMode
	case StepExecutionMode:
		return StepSkipPermissions
	default:
		return StepSkipPermissions
	}
}

// NextStep advances the state machine by one edge, without the QuickStart
// short-circuit Confirm applies. Used by callers that want to step forward
// without treating the current step as a confirmation (rare outside tests).
func (s *State) NextStep() {
	if s.Step == StepQuickStart {
		s.Step = StepAgentSelect
		return
	}
	next := s.nextStepAfter(s.Step)
	if next == StepModelSelect && s.Step == StepAgentSelect {
		s.onEnterModelSelect()
	}
	if next == StepVersionSelect {
		s.onEnterVersionSelect()
	}
	s.Step = next
}

// PrevStep moves the state machine backward by one edge. It reports false
// when "back" should close the wizard entirely (from QuickStart, or from an
// un-historied AgentSelect on an existing branch, or from BranchTypeSelect).
func (s *State) PrevStep() bool {
	switch s.Step {
	case StepQuickStart, StepBranchTypeSelect:
		return false
	case StepBranchNameInput:
		s.Step = StepBranchTypeSelect
	case StepAgentSelect:
		switch {
		case s.IsNewBranch:
			s.Step = StepBranchNameInput
		case s.HasQuickStart:
			s.Step = StepQuickStart
		default:
			return false
		}
	case StepModelSelect:
		s.Step = StepAgentSelect
	case StepReasoningLevel:
		s.Step = StepModelSelect
	case StepVersionSelect:
		if s.agentSupportsReasoning() {
			s.Step = StepReasoningLevel
		} else {
			s.Step = StepModelSelect
		}
	case StepExecutionMode:
		s.Step = StepVersionSelect
	case StepSkipPermissions:
		s.Step = StepExecutionMode
	}
	return true
}

func (s *State) onEnterModelSelect() {
	if len(s.Agent.Models) > 0 {
		s.Model = s.Agent.Models[0].ID
		s.ModelIndex = 0
	}
	s.versionsFetched = false
}

func (s *State) onEnterVersionSelect() {
	s.blockNextEnter = true
}

// Confirm handles a confirm action at the current step: QuickStart applies
// its selection and either completes immediately (Resume/StartNew) or
// advances to AgentSelect (ChooseDifferent / no history); every other step
// either advances or, from the terminal step, completes.
func (s *State) Confirm() (ConfirmResult, error) {
	s.blockNextEnter = false

	if s.Step == StepQuickStart {
		action, toolIndex, ok := s.SelectedQuickStartAction()
		if !ok {
			s.Step = StepAgentSelect
			return Advance, nil
		}
		if err := s.ApplyQuickStartSelection(toolIndex, action); err != nil {
			return Advance, err
		}
		s.Step = StepSkipPermissions
		return Complete, nil
	}

	if s.IsComplete() {
		return Complete, nil
	}
	s.NextStep()
	return Advance, nil
}

// IsComplete reports whether the current step is the terminal step.
func (s *State) IsComplete() bool {
	return s.Step == StepSkipPermissions
}

// ConsumeEnterBlock reports whether a buffered Enter should be swallowed
// (FR-074) and clears the one-shot flag regardless of its prior value, since
// the flag also clears on any other input.
func (s *State) ConsumeEnterBlock() bool {
	blocked := s.blockNextEnter
	s.blockNextEnter = false
	return blocked
}

// FetchVersionsForAgent lazily builds VersionSelect's candidate list for the
// current agent: (i) the installed version if detected, (ii) "latest", then
// (iii) up to 10 recent registry releases sorted by publish date descending.
// A registry fetch failure leaves only (i) and (ii) rather than erroring.
func (s *State) FetchVersionsForAgent(src VersionSource) {
	if s.versionsFetched {
		return
	}
	s.versionsFetched = true

	var options []VersionOption
	if installed, err := src.DetectInstalled(s.Agent); err == nil && installed != nil {
		options = append(options, VersionOption{
			Label:       fmt.Sprintf("installed (%s)", installed.Version),
			Value:       string(agent.VersionInstalled),
			Description: installed.Path,
		})
	}
	options = append(options, VersionOption{
		Label:       "latest",
		Value:       string(agent.VersionLatest),
		Description: "Always use the latest version",
	})

	if versions, err := src.FetchRegistryVersions(s.Agent); err == nil {
		sort.SliceStable(versions, func(i, j int) bool {
			return versions[i].PublishedAt > versions[j].PublishedAt
		})
		if len(versions) > maxRegistryVersions {
			versions = versions[:maxRegistryVersions]
		}
		for _, v := range versions {
			label := v.Version
			if v.IsPrerelease {
				label += " (pre)"
			}
			options = append(options, VersionOption{Label: label, Value: v.Version, Description: publishedDate(v.PublishedAt)})
		}
	}

	s.VersionOptions = options
	s.VersionIndex = 0
	if len(options) > 0 {
		s.Version = options[0].Value
	}
}

func publishedDate(rfc3339 string) string {
	for i, c := range rfc3339 {
		if c == 'T' {
			return rfc3339[:i]
		}
	}
	return rfc3339
}

// SelectNext moves the in-step selection cursor forward by one, wrapping
// never: selection saturates at the last option.
func (s *State) SelectNext() {
	s.blockNextEnter = false
	switch s.Step {
	case StepQuickStart:
		if max := s.quickStartOptionCount() - 1; s.QuickStartIndex < max {
			s.QuickStartIndex++
		}
	case StepAgentSelect:
		if s.AgentIndex < len(s.Agents)-1 {
			s.AgentIndex++
			s.Agent = s.Agents[s.AgentIndex]
		}
	case StepModelSelect:
		if s.ModelIndex < len(s.Agent.Models)-1 {
			s.ModelIndex++
			s.Model = s.Agent.Models[s.ModelIndex].ID
		}
	case StepReasoningLevel:
		if s.ReasoningIndex < len(s.ReasoningTiers)-1 {
			s.ReasoningIndex++
			s.ReasoningTier = s.ReasoningTiers[s.ReasoningIndex]
		}
	case StepVersionSelect:
		if s.VersionIndex < len(s.VersionOptions)-1 {
			s.VersionIndex++
			s.Version = s.VersionOptions[s.VersionIndex].Value
		}
	case StepExecutionMode:
		modes := executionModes()
		if s.ExecutionModeIndex < len(modes)-1 {
			s.ExecutionModeIndex++
			s.ExecutionMode = modes[s.ExecutionModeIndex]
		}
	case StepSkipPermissions:
		s.SkipPermissions = !s.SkipPermissions
	case StepBranchTypeSelect:
		types := AllBranchTypes()
		if int(s.BranchType) < len(types)-1 {
			s.BranchType = types[int(s.BranchType)+1]
		}
	}
}

// SelectPrev is SelectNext's mirror image.
func (s *State) SelectPrev() {
	s.blockNextEnter = false
	switch s.Step {
	case StepQuickStart:
		if s.QuickStartIndex > 0 {
			s.QuickStartIndex--
		}
	case StepAgentSelect:
		if s.AgentIndex > 0 {
			s.AgentIndex--
			s.Agent = s.Agents[s.AgentIndex]
		}
	case StepModelSelect:
		if s.ModelIndex > 0 {
			s.ModelIndex--
			s.Model = s.Agent.Models[s.ModelIndex].ID
		}
	case StepReasoningLevel:
		if s.ReasoningIndex > 0 {
			s.ReasoningIndex--
			s.ReasoningTier = s.ReasoningTiers[s.ReasoningIndex]
		}
	case StepVersionSelect:
		if s.VersionIndex > 0 {
			s.VersionIndex--
			s.Version = s.VersionOptions[s.VersionIndex].Value
		}
	case StepExecutionMode:
		modes := executionModes()
		if s.ExecutionModeIndex > 0 {
			s.ExecutionModeIndex--
			s.ExecutionMode = modes[s.ExecutionModeIndex]
		}
	case StepSkipPermissions:
		s.SkipPermissions = !s.SkipPermissions
	case StepBranchTypeSelect:
		if int(s.BranchType) > 0 {
			s.BranchType--
		}
	}
}

func executionModes() []agent.Mode {
	return []agent.Mode{agent.ModeNormal, agent.ModeContinue, agent.ModeResume}
}

// InsertChar appends a rune at the cursor in BranchNameInput; a no-op in any
// other step.
func (s *State) InsertChar(c rune) {
	if s.Step != StepBranchNameInput {
		return
	}
	s.blockNextEnter = false
	runes := []rune(s.NewBranchName)
	runes = append(runes[:s.Cursor], append([]rune{c}, runes[s.Cursor:]...)...)
	s.NewBranchName = string(runes)
	s.Cursor++
}

// DeleteChar removes the rune before the cursor in BranchNameInput.
func (s *State) DeleteChar() {
	if s.Step != StepBranchNameInput || s.Cursor == 0 {
		return
	}
	s.blockNextEnter = false
	runes := []rune(s.NewBranchName)
	runes = append(runes[:s.Cursor-1], runes[s.Cursor:]...)
	s.NewBranchName = string(runes)
	s.Cursor--
}

// CursorLeft moves the branch-name-input cursor left by one.
func (s *State) CursorLeft() {
	if s.Cursor > 0 {
		s.Cursor--
	}
}

// CursorRight moves the branch-name-input cursor right by one.
func (s *State) CursorRight() {
	if s.Cursor < len([]rune(s.NewBranchName)) {
		s.Cursor++
	}
}

// FullBranchName composes the final branch name for the new-branch flow:
// the selected BranchType's prefix followed by the typed name.
func (s *State) FullBranchName() string {
	return s.BranchType.Prefix() + s.NewBranchName
}

// LaunchSpec materializes the terminal wizard state into an agent.LaunchSpec.
// Callers should only call this when IsComplete() is true.
func (s *State) LaunchSpec(branch string) agent.LaunchSpec {
	spec := agent.NewLaunchSpec(branch, s.Agent.ToSupervisorAgent(), s.ExecutionMode, s.SkipPermissions)
	spec.Model = s.Model
	spec.ReasoningTier = s.ReasoningTier
	if s.Version != "" {
		spec.Version = s.Version
	}
	return spec
}
