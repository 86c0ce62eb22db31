package hooks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/xcawolfe/gwt/internal/lock"
	"github.com/xcawolfe/gwt/internal/style"
)

// BridgeEntryKey is the fixed key every bridge entry is written under.
const BridgeEntryKey = "gwt-agent-bridge"

// BridgeEntry describes the MCP server entry gwt installs into an agent's
// own config so the agent can talk to gwt's message bus.
type BridgeEntry struct {
	Command string
	Args    []string
	Env     map[string]string
}

// ClaudeBridgePath returns <home>/.claude.json.
func ClaudeBridgePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".claude.json"), nil
}

// GeminiBridgePath returns <home>/.gemini/settings.json.
func GeminiBridgePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".gemini", "settings.json"), nil
}

// CodexBridgePath returns <home>/.codex/config.toml.
func CodexBridgePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".codex", "config.toml"), nil
}

// jsonMCPEntry is the on-disk shape of one mcpServers entry in Claude's and
// Gemini's JSON config files.
type jsonMCPEntry struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// RegisterJSONBridge inserts entry under mcpServers[BridgeEntryKey] in the
// JSON file at path (Claude's .claude.json or Gemini's settings.json),
// preserving every sibling entry and every unrelated top-level key. Creates
// parent directories as needed. Rejects with an error rather than
// overwriting a file whose existing JSON fails to parse.
func RegisterJSONBridge(path string, entry BridgeEntry) error {
	release, err := lock.Acquire(lockPath(path))
	if err != nil {
		return err
	}
	defer release()

	root, err := loadJSONBridgeRoot(path)
	if err != nil {
		return err
	}

	servers := mcpServersMap(root)
	servers[BridgeEntryKey] = jsonMCPEntry{Command: entry.Command, Args: entry.Args, Env: entry.Env}
	root["mcpServers"] = servers

	return writeSettings(path, root)
}

// UnregisterJSONBridge removes only the BridgeEntryKey entry from the JSON
// file's mcpServers map, leaving every other key untouched. A missing file
// or a file with no mcpServers map is a silent no-op.
func UnregisterJSONBridge(path string) error {
	release, err := lock.Acquire(lockPath(path))
	if err != nil {
		return err
	}
	defer release()

	root, err := loadJSONBridgeRoot(path)
	if err != nil {
		return err
	}
	if root == nil {
		return nil
	}
	servers, ok := root["mcpServers"].(map[string]any)
	if !ok {
		return nil
	}
	delete(servers, BridgeEntryKey)
	root["mcpServers"] = servers
	return writeSettings(path, root)
}

// HasJSONBridge reports whether path already carries the gwt bridge entry.
func HasJSONBridge(path string) (bool, error) {
	root, err := loadJSONBridgeRootIfExists(path)
	if err != nil || root == nil {
		return false, err
	}
	servers, ok := root["mcpServers"].(map[string]any)
	if !ok {
		return false, nil
	}
	_, ok = servers[BridgeEntryKey]
	return ok, nil
}

func mcpServersMap(root map[string]any) map[string]any {
	servers, ok := root["mcpServers"].(map[string]any)
	if !ok {
		servers = map[string]any{}
	}
	return servers
}

func loadJSONBridgeRoot(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%s holds invalid JSON, refusing to overwrite: %w", path, err)
	}
	if root == nil {
		root = map[string]any{}
	}
	return root, nil
}

func loadJSONBridgeRootIfExists(path string) (map[string]any, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	return loadJSONBridgeRoot(path)
}

// RegisterCodexBridge inserts entry under [mcp_servers.gwt-agent-bridge] in
// Codex's config.toml, preserving all other top-level keys and tables.
func RegisterCodexBridge(path string, entry BridgeEntry) error {
	release, err := lock.Acquire(lockPath(path))
	if err != nil {
		return err
	}
	defer release()

	root, err := loadCodexRaw(path)
	if err != nil {
		return err
	}

	servers, _ := root["mcp_servers"].(map[string]any)
	if servers == nil {
		servers = map[string]any{}
	}
	entryTable := map[string]any{"command": entry.Command}
	if len(entry.Args) > 0 {
		entryTable["args"] = entry.Args
	}
	servers[BridgeEntryKey] = entryTable
	root["mcp_servers"] = servers

	return writeCodexRaw(path, root)
}

// UnregisterCodexBridge removes only the gwt-agent-bridge table from Codex's
// config.toml. A missing file is a silent no-op.
func UnregisterCodexBridge(path string) error {
	release, err := lock.Acquire(lockPath(path))
	if err != nil {
		return err
	}
	defer release()

	root, err := loadCodexRawIfExists(path)
	if err != nil {
		return err
	}
	if root == nil {
		return nil
	}
	servers, ok := root["mcp_servers"].(map[string]any)
	if !ok {
		return nil
	}
	delete(servers, BridgeEntryKey)
	root["mcp_servers"] = servers
	return writeCodexRaw(path, root)
}

// HasCodexBridge reports whether Codex's config.toml already carries the
// gwt bridge entry.
func HasCodexBridge(path string) (bool, error) {
	root, err := loadCodexRawIfExists(path)
	if err != nil || root == nil {
		return false, err
	}
	servers, ok := root["mcp_servers"].(map[string]any)
	if !ok {
		return false, nil
	}
	_, ok = servers[BridgeEntryKey]
	return ok, nil
}

func loadCodexRaw(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var root map[string]any
	if _, err := toml.Decode(string(data), &root); err != nil {
		return nil, fmt.Errorf("%s holds invalid TOML, refusing to overwrite: %w", path, err)
	}
	if root == nil {
		root = map[string]any{}
	}
	return root, nil
}

func loadCodexRawIfExists(path string) (map[string]any, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	return loadCodexRaw(path)
}

func writeCodexRaw(path string, root map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(root)
}

// CleanupStaleBridges iterates every known bridge target and removes the
// gwt-agent-bridge entry wherever present, per §4.E's startup best-effort
// cleanup pass. A failure on one target is logged and does not prevent
// cleaning the others.
func CleanupStaleBridges() {
	if path, err := ClaudeBridgePath(); err == nil {
		if err := UnregisterJSONBridge(path); err != nil {
			logCleanupWarning(path, err)
		}
	}
	if path, err := GeminiBridgePath(); err == nil {
		if err := UnregisterJSONBridge(path); err != nil {
			logCleanupWarning(path, err)
		}
	}
	if path, err := CodexBridgePath(); err == nil {
		if err := UnregisterCodexBridge(path); err != nil {
			logCleanupWarning(path, err)
		}
	}
}

func logCleanupWarning(path string, err error) {
	style.PrintWarning("cleaning up stale bridge entry in %s: %v", path, err)
}
