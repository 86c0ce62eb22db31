package doctor

import (
	"fmt"

	"github.com/xcawolfe/gwt/internal/tools"
)

// ToolsSchemaCheck detects a tools.toml/tools.json pair (global and
// per-repo) whose schema version has drifted from the version this binary
// writes, and agent entries that no longer validate against the current
// schema.
type ToolsSchemaCheck struct {
	repoRoot string
}

func NewToolsSchemaCheck(repoRoot string) *ToolsSchemaCheck {
	return &ToolsSchemaCheck{repoRoot: repoRoot}
}

func (c *ToolsSchemaCheck) Name() string { return "tools-schema" }

func (c *ToolsSchemaCheck) Description() string {
	return "Detect outdated tools.toml schema versions and invalid agent entries"
}

func (c *ToolsSchemaCheck) Run(ctx *Context) *Result {
	var details []string

	if dir, err := tools.GlobalDir(); err == nil {
		details = append(details, c.inspect("global", dir)...)
	}
	if c.repoRoot != "" {
		details = append(details, c.inspect("local", tools.LocalDir(c.repoRoot))...)
	}

	if len(details) == 0 {
		return &Result{Name: c.Name(), Status: StatusOK, Message: "tools configuration is current"}
	}
	return &Result{
		Name:    c.Name(),
		Status:  StatusWarning,
		Message: fmt.Sprintf("%d tools configuration issue(s) found", len(details)),
		Details: details,
	}
}

func (c *ToolsSchemaCheck) inspect(label, dir string) []string {
	cfg, err := tools.Load(dir)
	if err != nil {
		return []string{fmt.Sprintf("%s (%s): %v", label, dir, err)}
	}
	if cfg == nil {
		return nil
	}

	var issues []string
	if cfg.Version != "" && cfg.Version != tools.SchemaVersion {
		issues = append(issues, fmt.Sprintf("%s (%s): schema %s, expected %s", label, dir, cfg.Version, tools.SchemaVersion))
	}
	for _, a := range cfg.Agents {
		if err := a.Validate(); err != nil {
			issues = append(issues, fmt.Sprintf("%s (%s): agent %q invalid: %v", label, dir, a.ID, err))
		}
	}
	return issues
}

// Fix rewrites both configuration files with the current schema version,
// leaving invalid entries for the user to resolve by hand.
func (c *ToolsSchemaCheck) Fix(ctx *Context) error {
	if dir, err := tools.GlobalDir(); err == nil {
		if err := c.rewrite(dir); err != nil {
			return err
		}
	}
	if c.repoRoot != "" {
		if err := c.rewrite(tools.LocalDir(c.repoRoot)); err != nil {
			return err
		}
	}
	return nil
}

func (c *ToolsSchemaCheck) rewrite(dir string) error {
	cfg, err := tools.Load(dir)
	if err != nil || cfg == nil {
		return nil
	}
	if cfg.Version == tools.SchemaVersion {
		return nil
	}
	cfg.Version = tools.SchemaVersion
	return tools.Save(dir, cfg)
}
