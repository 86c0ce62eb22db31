package doctor

import (
	"testing"

	"github.com/xcawolfe/gwt/internal/tools"
)

func TestToolsSchemaCheckOKWhenEmpty(t *testing.T) {
	repo := t.TempDir()
	check := NewToolsSchemaCheck(repo)

	result := check.Run(&Context{RepoRoot: repo})
	if result.Status != StatusOK {
		t.Fatalf("expected ok, got %v (%s)", result.Status, result.Message)
	}
}

func TestToolsSchemaCheckFlagsDriftedVersion(t *testing.T) {
	repo := t.TempDir()
	localDir := tools.LocalDir(repo)
	cfg := &tools.Config{
		Version: "0.1.0",
		Agents: []tools.CustomAgent{
			{ID: "myagent", DisplayName: "My Agent", Command: "myagent"},
		},
	}
	if err := tools.Save(localDir, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	check := NewToolsSchemaCheck(repo)
	result := check.Run(&Context{RepoRoot: repo})
	if result.Status != StatusWarning {
		t.Fatalf("expected warning for drifted schema, got %v (%s)", result.Status, result.Message)
	}

	if err := check.Fix(&Context{RepoRoot: repo}); err != nil {
		t.Fatalf("Fix: %v", err)
	}

	result = check.Run(&Context{RepoRoot: repo})
	if result.Status != StatusOK {
		t.Fatalf("expected ok after fix, got %v (%s)", result.Status, result.Message)
	}
}

func TestToolsSchemaCheckFlagsInvalidAgent(t *testing.T) {
	repo := t.TempDir()
	localDir := tools.LocalDir(repo)
	cfg := &tools.Config{
		Version: tools.SchemaVersion,
		Agents: []tools.CustomAgent{
			{ID: "", DisplayName: "Missing ID"},
		},
	}
	if err := tools.Save(localDir, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	check := NewToolsSchemaCheck(repo)
	result := check.Run(&Context{RepoRoot: repo})
	if result.Status != StatusWarning {
		t.Fatalf("expected warning for invalid agent, got %v (%s)", result.Status, result.Message)
	}
}
