package hooks

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRegisterJSONBridgePreservesSiblings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	initial := `{"mcpServers": {"other-tool": {"command": "other"}}, "unrelatedTopLevel": true}`
	if err := os.WriteFile(path, []byte(initial), 0644); err != nil {
		t.Fatal(err)
	}

	entry := BridgeEntry{Command: "gwt", Args: []string{"bridge"}}
	if err := RegisterJSONBridge(path, entry); err != nil {
		t.Fatalf("RegisterJSONBridge: %v", err)
	}

	data, _ := os.ReadFile(path)
	content := string(data)
	if !strings.Contains(content, "other-tool") {
		t.Error("expected sibling mcpServers entry to survive")
	}
	if !strings.Contains(content, "unrelatedTopLevel") {
		t.Error("expected unrelated top-level key to survive")
	}
	if !strings.Contains(content, BridgeEntryKey) {
		t.Error("expected bridge entry to be written")
	}

	has, err := HasJSONBridge(path)
	if err != nil || !has {
		t.Errorf("HasJSONBridge = %v, %v, want true, nil", has, err)
	}
}

func TestRegisterJSONBridgeIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	entry := BridgeEntry{Command: "/usr/local/bin/gwt", Args: []string{"bridge"}}
	if err := RegisterJSONBridge(path, entry); err != nil {
		t.Fatal(err)
	}
	if err := RegisterJSONBridge(path, entry); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if strings.Count(string(data), BridgeEntryKey) != 1 {
		t.Errorf("expected exactly one bridge entry key, content: %s", data)
	}
}

func TestRegisterJSONBridgeRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not valid json"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := RegisterJSONBridge(path, BridgeEntry{Command: "gwt"}); err == nil {
		t.Fatal("expected error on malformed existing file")
	}
	data, _ := os.ReadFile(path)
	if string(data) != "{not valid json" {
		t.Error("expected malformed file to be left untouched")
	}
}

func TestUnregisterJSONBridgeRemovesOnlyOurKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	initial := `{"mcpServers": {"other-tool": {"command": "other"}, "gwt-agent-bridge": {"command": "gwt"}}}`
	os.WriteFile(path, []byte(initial), 0644)

	if err := UnregisterJSONBridge(path); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "gwt-agent-bridge") {
		t.Error("expected gwt-agent-bridge entry to be removed")
	}
	if !strings.Contains(string(data), "other-tool") {
		t.Error("expected sibling entry to survive")
	}
}

func TestRegisterCodexBridgePreservesSiblingTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	initial := "[mcp_servers.other]\ncommand = \"other\"\n"
	os.WriteFile(path, []byte(initial), 0644)

	if err := RegisterCodexBridge(path, BridgeEntry{Command: "gwt", Args: []string{"bridge"}}); err != nil {
		t.Fatalf("RegisterCodexBridge: %v", err)
	}
	data, _ := os.ReadFile(path)
	content := string(data)
	if !strings.Contains(content, "[mcp_servers.other]") {
		t.Error("expected sibling table to survive")
	}
	if !strings.Contains(content, "gwt-agent-bridge") {
		t.Error("expected bridge table to be written")
	}

	has, err := HasCodexBridge(path)
	if err != nil || !has {
		t.Errorf("HasCodexBridge = %v, %v, want true, nil", has, err)
	}
}

func TestCleanupStaleBridgesIsBestEffort(t *testing.T) {
	// CleanupStaleBridges resolves real home-directory paths; it must not
	// panic even when none of the target files exist.
	CleanupStaleBridges()
}
