package cmd

import (
	"strings"

	"github.com/xcawolfe/gwt/internal/catalog"
	"github.com/xcawolfe/gwt/internal/gitx"
)

// loadBranches builds the initial BranchItem set from the git façade: every
// local and remote branch, annotated with worktree presence. Safety
// (unpushed/unmerged counts) is intentionally left pending here — callers
// that want it call probeSafety per branch, mirroring §5's "safety probes
// arrive asynchronously" split.
func loadBranches(g *gitx.Git) ([]catalog.BranchItem, error) {
	branches, err := g.ListBranchesScoped("", gitx.ScopeAll)
	if err != nil {
		return nil, err
	}

	worktrees, err := g.ListWorktrees()
	if err != nil {
		return nil, err
	}
	withWorktree := make(map[string]bool, len(worktrees))
	for _, w := range worktrees {
		if w.Branch != "" {
			withWorktree[w.Branch] = true
		}
	}

	head, _ := g.CurrentBranch()

	items := make([]catalog.BranchItem, 0, len(branches))
	for _, b := range branches {
		items = append(items, catalog.BranchItem{
			Name:        b.Name,
			IsRemote:    b.IsRemote,
			IsHead:      !b.IsRemote && b.Name == head,
			HasWorktree: withWorktree[b.Name],
			LastCommit:  b.Timestamp,
		})
	}
	return items, nil
}

// probeSafety computes a branch's unpushed/unmerged commit counts and
// uncommitted-changes flag against upstream/main, the data
// apply_safety_update folds into the catalog.
func probeSafety(g *gitx.Git, branch string) (unpushed, unmerged int, hasChanges bool) {
	base, err := g.Upstream()
	if err != nil || base == "" {
		base = "main"
	}

	unpushed, _ = g.RevListCount(base + ".." + branch)
	unmerged, _ = g.RevListCount(branch + ".." + base)

	for _, w := range worktreesOrEmpty(g) {
		if w.Branch == branch {
			wg := gitx.NewGit(w.Path)
			dirty, err := wg.HasUncommittedChanges()
			hasChanges = err == nil && dirty
			break
		}
	}
	return unpushed, unmerged, hasChanges
}

func worktreesOrEmpty(g *gitx.Git) []gitx.Worktree {
	w, err := g.ListWorktrees()
	if err != nil {
		return nil
	}
	return w
}

// trimTrailingSlash mirrors §4.D's orphan-reattachment path comparison.
func trimTrailingSlash(p string) string {
	return strings.TrimRight(p, "/")
}
