// Package tools loads and merges gwt's custom agent definitions: the global
// store at ~/.gwt/tools.{toml,json} and the repo-local store at
// <repo>/.gwt/tools.{toml,json}, per §4.F. TOML is canonical; a legacy JSON
// file is read once and auto-migrated to TOML.
package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/BurntSushi/toml"

	"github.com/xcawolfe/gwt/internal/agent"
	"github.com/xcawolfe/gwt/internal/style"
)

// SchemaVersion is written into newly created tools.toml files.
const SchemaVersion = "1.0.0"

var idPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// Model is one entry in a CustomAgent's model catalog.
type Model struct {
	ID    string `toml:"id" json:"id"`
	Label string `toml:"label" json:"label"`
	Arg   string `toml:"arg" json:"arg"`
	// Tier is a presentation-only grouping hint ("fast"/"balanced"/"deep")
	// for the wizard's ModelSelect step; it never changes LaunchSpec shape.
	Tier string `toml:"tier,omitempty" json:"tier,omitempty"`
}

// ModeArgs groups the per-execution-mode argv overrides.
type ModeArgs struct {
	Normal   []string `toml:"normal,omitempty" json:"normal,omitempty"`
	Continue []string `toml:"continue,omitempty" json:"continue,omitempty"`
	Resume   []string `toml:"resume,omitempty" json:"resume,omitempty"`
}

// CustomAgent is the on-disk shape of one configured coding-agent
// integration, matching §3's CustomAgent entity.
type CustomAgent struct {
	ID                 string            `toml:"id" json:"id"`
	DisplayName        string            `toml:"display_name" json:"displayName"`
	Type               string            `toml:"type" json:"type"` // "command" | "path" | "bunx"
	Command            string            `toml:"command" json:"command"`
	DefaultArgs        []string          `toml:"default_args,omitempty" json:"defaultArgs,omitempty"`
	ModeArgs           ModeArgs          `toml:"mode_args" json:"modeArgs"`
	PermissionSkipArgs []string          `toml:"permission_skip_args,omitempty" json:"permissionSkipArgs,omitempty"`
	Env                map[string]string `toml:"env,omitempty" json:"env,omitempty"`
	Models             []Model           `toml:"models,omitempty" json:"models,omitempty"`
	// ReasoningArgs maps a reasoning tier name to the argv that selects it.
	// Only Codex-like agents populate this; see §4.G's per-agent sub-step skip.
	ReasoningArgs  map[string][]string `toml:"reasoning_args,omitempty" json:"reasoningArgs,omitempty"`
	VersionCommand string              `toml:"version_command,omitempty" json:"versionCommand,omitempty"`
	// RegistryURL, when set, points at the package registry the wizard's
	// VersionSelect step queries for recent releases (§6 "Version registry").
	RegistryURL string `toml:"registry_url,omitempty" json:"registryUrl,omitempty"`
}

// Validate checks the field-level requirements of §4.F: non-empty id
// matching [A-Za-z0-9-]+, non-empty display name, non-empty command.
func (a CustomAgent) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("agent id must not be empty")
	}
	if !idPattern.MatchString(a.ID) {
		return fmt.Errorf("agent id %q must match [A-Za-z0-9-]+", a.ID)
	}
	if a.DisplayName == "" {
		return fmt.Errorf("agent %q: display name must not be empty", a.ID)
	}
	if a.Command == "" {
		return fmt.Errorf("agent %q: command must not be empty", a.ID)
	}
	return nil
}

// ToSupervisorAgent converts the on-disk shape into internal/agent's launch
// shape, resolving mode-specific argv.
func (a CustomAgent) ToSupervisorAgent() agent.CustomAgent {
	var models []agent.ModelOption
	for _, m := range a.Models {
		models = append(models, agent.ModelOption{ID: m.ID, Arg: m.Arg})
	}
	return agent.CustomAgent{
		ID:                 a.ID,
		DisplayName:        a.DisplayName,
		Command:            a.Command,
		DefaultArgs:        a.DefaultArgs,
		NormalArgs:         a.ModeArgs.Normal,
		ContinueArgs:       a.ModeArgs.Continue,
		ResumeArgs:         a.ModeArgs.Resume,
		PermissionSkipArgs: a.PermissionSkipArgs,
		Env:                a.Env,
		Models:             models,
		ReasoningArgs:      a.ReasoningArgs,
	}
}

// SupportsReasoningTiers reports whether this agent has any configured
// reasoning-tier argv, the predicate §4.G uses to decide whether the
// wizard's ReasoningLevel sub-step is visited for this agent.
func (a CustomAgent) SupportsReasoningTiers() bool {
	return len(a.ReasoningArgs) > 0
}

// Config is the full tools.toml/tools.json document: a required schema
// version plus the list of custom agents.
type Config struct {
	Version string        `toml:"version" json:"version"`
	Agents  []CustomAgent `toml:"custom_coding_agents" json:"customCodingAgents"`
}

// ByID returns the agent with the given id, or ok=false.
func (c *Config) ByID(id string) (CustomAgent, bool) {
	for _, a := range c.Agents {
		if a.ID == id {
			return a, true
		}
	}
	return CustomAgent{}, false
}

// Add appends a new agent, rejecting a duplicate id.
func (c *Config) Add(a CustomAgent) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if _, ok := c.ByID(a.ID); ok {
		return fmt.Errorf("agent %q already exists", a.ID)
	}
	c.Agents = append(c.Agents, a)
	return nil
}

// Update replaces an existing agent by id, erroring if it doesn't exist.
func (c *Config) Update(a CustomAgent) error {
	if err := a.Validate(); err != nil {
		return err
	}
	for i := range c.Agents {
		if c.Agents[i].ID == a.ID {
			c.Agents[i] = a
			return nil
		}
	}
	return fmt.Errorf("agent %q not found", a.ID)
}

// Remove deletes an agent by id. A missing id is a silent no-op.
func (c *Config) Remove(id string) {
	kept := c.Agents[:0:0]
	for _, a := range c.Agents {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	c.Agents = kept
}

func tomlPath(dir string) string { return filepath.Join(dir, "tools.toml") }
func jsonPath(dir string) string { return filepath.Join(dir, "tools.json") }

// Load reads the tools config at dir (either ~/.gwt or <repo>/.gwt),
// preferring tools.toml. If only a legacy tools.json is present, it is
// parsed, rewritten atomically as tools.toml, and returned. A file with a
// missing or empty schema version is ignored (logged, not an error), same
// as a directory with neither file.
func Load(dir string) (*Config, error) {
	if cfg, err := loadTOML(tomlPath(dir)); err != nil {
		return nil, err
	} else if cfg != nil {
		return cfg, nil
	}

	cfg, err := loadJSON(jsonPath(dir))
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return &Config{}, nil
	}
	if err := writeTOMLAtomic(tomlPath(dir), cfg); err != nil {
		style.PrintWarning("migrating %s to TOML: %v", jsonPath(dir), err)
	}
	return cfg, nil
}

func loadTOML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.Version == "" {
		style.PrintWarning("%s has no schema version; ignoring", path)
		return nil, nil
	}
	return &cfg, nil
}

func loadJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	cfg, err := decodeLegacyJSON(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.Version == "" {
		style.PrintWarning("%s has no schema version; ignoring", path)
		return nil, nil
	}
	return cfg, nil
}

// Save writes cfg to dir as tools.toml, atomically via temp-file + rename.
func Save(dir string, cfg *Config) error {
	if cfg.Version == "" {
		cfg.Version = SchemaVersion
	}
	return writeTOMLAtomic(tomlPath(dir), cfg)
}

func writeTOMLAtomic(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tools-*.toml.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	enc := toml.NewEncoder(tmp)
	if err := enc.Encode(cfg); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}

// Merge overlays local on top of global, local entries overriding global
// ones by id. Agents that fail Validate() are dropped with a warning.
func Merge(global, local *Config) *Config {
	merged := &Config{Version: SchemaVersion}
	byID := map[string]CustomAgent{}
	var order []string

	addAll := func(cfg *Config) {
		if cfg == nil {
			return
		}
		for _, a := range cfg.Agents {
			if err := a.Validate(); err != nil {
				style.PrintWarning("dropping invalid agent %q: %v", a.ID, err)
				continue
			}
			if _, exists := byID[a.ID]; !exists {
				order = append(order, a.ID)
			}
			byID[a.ID] = a
		}
	}
	addAll(global)
	addAll(local)

	for _, id := range order {
		merged.Agents = append(merged.Agents, byID[id])
	}
	return merged
}

// GlobalDir returns ~/.gwt.
func GlobalDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".gwt"), nil
}

// LocalDir returns <repoRoot>/.gwt.
func LocalDir(repoRoot string) string {
	return filepath.Join(repoRoot, ".gwt")
}

// LoadMerged loads the global store and, if repoRoot is non-empty, the
// repo-local store, and merges them per §4.F's priority rule.
func LoadMerged(repoRoot string) (*Config, error) {
	globalDir, err := GlobalDir()
	if err != nil {
		return nil, err
	}
	global, err := Load(globalDir)
	if err != nil {
		return nil, err
	}
	if repoRoot == "" {
		return global, nil
	}
	local, err := Load(LocalDir(repoRoot))
	if err != nil {
		return nil, err
	}
	return Merge(global, local), nil
}
