// Package hooks registers gwt as an event-hook and MCP bridge target inside
// each coding agent's own configuration file, per §4.E.
package hooks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xcawolfe/gwt/internal/capability"
	"github.com/xcawolfe/gwt/internal/lock"
)

// HookEventsWithMatcher are the events Claude Code requires a "matcher"
// field for.
var HookEventsWithMatcher = []string{"PreToolUse", "PostToolUse"}

// HookEventsWithoutMatcher are the events that carry no matcher field.
var HookEventsWithoutMatcher = []string{"UserPromptSubmit", "Notification", "Stop"}

// AllHookEvents returns every event gwt registers a hook for.
func AllHookEvents() []string {
	return append(append([]string{}, HookEventsWithMatcher...), HookEventsWithoutMatcher...)
}

// ClaudeSettingsPath returns the default location of Claude Code's
// settings.json.
func ClaudeSettingsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".claude", "settings.json"), nil
}

// lockPath derives the advisory-lock sidecar path for a target config file.
func lockPath(configPath string) string {
	return configPath + ".gwt.lock"
}

func loadSettings(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if root == nil {
		root = map[string]any{}
	}
	return root, nil
}

func writeSettings(path string, root map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	data, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0644)
}

func hookEntries(root map[string]any) map[string]any {
	hooks, _ := root["hooks"].(map[string]any)
	if hooks == nil {
		hooks = map[string]any{}
		root["hooks"] = hooks
	}
	return hooks
}

// commandsFromEventValue extracts every hook command string referenced by
// one event's entry, in either the new array-of-entries format or the
// legacy bare-string format.
func commandsFromEventValue(value any) []string {
	var out []string
	switch v := value.(type) {
	case string:
		out = append(out, v)
	case []any:
		for _, entry := range v {
			m, ok := entry.(map[string]any)
			if !ok {
				if s, ok := entry.(string); ok {
					out = append(out, s)
				}
				continue
			}
			inner, _ := m["hooks"].([]any)
			for _, h := range inner {
				hm, ok := h.(map[string]any)
				if !ok {
					continue
				}
				if cmd, ok := hm["command"].(string); ok {
					out = append(out, cmd)
				}
			}
		}
	}
	return out
}

func gwtHookEntry(event, exePath string) map[string]any {
	entry := map[string]any{
		"hooks": []any{
			map[string]any{"type": "command", "command": fmt.Sprintf("%s hook %s", exePath, event)},
		},
	}
	for _, e := range HookEventsWithMatcher {
		if e == event {
			entry["matcher"] = "*"
			break
		}
	}
	return entry
}

func isOurEntry(entry any) bool {
	m, ok := entry.(map[string]any)
	if !ok {
		if s, ok := entry.(string); ok {
			return capability.IsGwtHookCommand(s)
		}
		return false
	}
	inner, _ := m["hooks"].([]any)
	for _, h := range inner {
		hm, ok := h.(map[string]any)
		if !ok {
			continue
		}
		if cmd, ok := hm["command"].(string); ok && capability.IsGwtHookCommand(cmd) {
			return true
		}
	}
	return false
}

// Register installs gwt's event hooks in path, overwriting any previous
// gwt entries and leaving user-authored entries untouched. Idempotent.
func Register(path, exePath string) error {
	release, err := lock.Acquire(lockPath(path))
	if err != nil {
		return err
	}
	defer release()

	root, err := loadSettings(path)
	if err != nil {
		return err
	}
	applyRegistration(root, exePath)
	return writeSettings(path, root)
}

func applyRegistration(root map[string]any, exePath string) {
	hooks := hookEntries(root)
	for _, event := range AllHookEvents() {
		existing, _ := hooks[event].([]any)
		kept := existing[:0:0]
		for _, entry := range existing {
			if !isOurEntry(entry) {
				kept = append(kept, entry)
			}
		}
		kept = append(kept, gwtHookEntry(event, exePath))
		hooks[event] = kept
	}
}

// IsRegistered reports whether path already carries at least one gwt hook
// entry, for any event.
func IsRegistered(path string) (bool, error) {
	root, err := loadSettingsIfExists(path)
	if err != nil || root == nil {
		return false, err
	}
	hooks := hookEntries(root)
	for _, event := range AllHookEvents() {
		value := hooks[event]
		for _, cmd := range commandsFromEventValue(value) {
			if capability.IsGwtHookCommand(cmd) {
				return true, nil
			}
		}
	}
	return false, nil
}

// hasAnyGwtHooks reports whether root holds at least one gwt hook entry for
// any event, without touching disk.
func hasAnyGwtHooks(root map[string]any) bool {
	hooks := hookEntries(root)
	for _, event := range AllHookEvents() {
		for _, cmd := range commandsFromEventValue(hooks[event]) {
			if capability.IsGwtHookCommand(cmd) {
				return true
			}
		}
	}
	return false
}

func loadSettingsIfExists(path string) (map[string]any, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	return loadSettings(path)
}

// hasExpectedHooks reports whether every hook event holds at least one gwt
// hook and all of its gwt hooks have an executable identity matching exePath.
func hasExpectedHooks(root map[string]any, exePath string) bool {
	hooks := hookEntries(root)
	for _, event := range AllHookEvents() {
		commands := commandsFromEventValue(hooks[event])
		var ours []string
		for _, c := range commands {
			if capability.IsGwtHookCommand(c) {
				ours = append(ours, c)
			}
		}
		if len(ours) == 0 {
			return false
		}
		for _, c := range ours {
			if !capability.IsExpectedGwtHookCommand(c, event, exePath) {
				return false
			}
		}
	}
	return true
}

// Unregister removes every gwt hook entry from path. A missing file is a
// silent no-op.
func Unregister(path string) error {
	release, err := lock.Acquire(lockPath(path))
	if err != nil {
		return err
	}
	defer release()

	root, err := loadSettingsIfExists(path)
	if err != nil {
		return err
	}
	if root == nil {
		return nil
	}

	hooks := hookEntries(root)
	for _, event := range AllHookEvents() {
		existing, ok := hooks[event].([]any)
		if !ok {
			if s, ok := hooks[event].(string); ok && capability.IsGwtHookCommand(s) {
				delete(hooks, event)
			}
			continue
		}
		kept := existing[:0:0]
		for _, entry := range existing {
			if !isOurEntry(entry) {
				kept = append(kept, entry)
			}
		}
		if len(kept) == 0 {
			delete(hooks, event)
		} else {
			hooks[event] = kept
		}
	}
	return writeSettings(path, root)
}

// Reregister re-registers gwt's hooks at path if the file already holds our
// hooks but some hook event has no gwt hook or at least one points at a
// different executable identity than exePath. Returns true iff it rewrote
// the file. A missing file, or one
// that holds no gwt hooks at all, is left untouched.
func Reregister(path, exePath string) (bool, error) {
	release, err := lock.Acquire(lockPath(path))
	if err != nil {
		return false, err
	}
	defer release()

	root, err := loadSettingsIfExists(path)
	if err != nil {
		return false, err
	}
	if root == nil {
		return false, nil
	}

	if !hasAnyGwtHooks(root) {
		return false, nil
	}
	if hasExpectedHooks(root, exePath) {
		return false, nil
	}

	applyRegistration(root, exePath)
	if err := writeSettings(path, root); err != nil {
		return false, err
	}
	return true, nil
}
