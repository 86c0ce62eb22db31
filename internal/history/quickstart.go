// Package history persists per-branch launch history (§4.H's
// QuickStartEntry) and derives tag-delimited release summaries from commit
// subjects. The quick-start store is a JSON-file-backed map, tolerant of a
// missing file on first read, following the teacher's
// internal/session.BuildPrefixRegistryFromFile idiom.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

// QuickStartEntry is one per-(branch, tool) launch memory.
type QuickStartEntry struct {
	ID              string    `json:"id"`
	Branch          string    `json:"branch"`
	ToolID          string    `json:"toolId"`
	ToolLabel       string    `json:"toolLabel"`
	Model           string    `json:"model,omitempty"`
	ReasoningTier   string    `json:"reasoningTier,omitempty"`
	Version         string    `json:"version,omitempty"`
	SessionID       string    `json:"sessionId,omitempty"`
	SkipPermissions bool      `json:"skipPermissions"`
	LaunchedAt      time.Time `json:"launchedAt"`
}

// Store is a JSON-file-backed, per-branch launch history.
type Store struct {
	path    string
	entries []QuickStartEntry
}

// Open loads the store at path, which is created lazily on first Save. A
// missing file is not an error; it yields an empty store.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return s, nil
}

// ForBranch returns every entry for branch, most-recently-launched first.
func (s *Store) ForBranch(branch string) []QuickStartEntry {
	var out []QuickStartEntry
	for _, e := range s.entries {
		if e.Branch == branch {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LaunchedAt.After(out[j].LaunchedAt) })
	return out
}

// Upsert records a successful launch, keyed by (branch, tool id). An
// existing entry for the same pair is replaced and re-timestamped; this is
// not just an append, since §4.H calls the operation an upsert.
func (s *Store) Upsert(e QuickStartEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.LaunchedAt = time.Now()

	for i := range s.entries {
		if s.entries[i].Branch == e.Branch && s.entries[i].ToolID == e.ToolID {
			s.entries[i] = e
			return s.save()
		}
	}
	s.entries = append(s.entries, e)
	return s.save()
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(s.path), err)
	}
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	return os.WriteFile(s.path, data, 0644)
}

// DefaultPath returns <repoRoot>/.gwt/history.json.
func DefaultPath(repoRoot string) string {
	return filepath.Join(repoRoot, ".gwt", "history.json")
}
