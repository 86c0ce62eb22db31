package doctor

import (
	"fmt"
	"os"

	"github.com/xcawolfe/gwt/internal/gitx"
)

// OrphanWorktreeCheck detects worktree entries git still tracks whose
// directory has been deleted outside of git (e.g. `rm -rf` rather than
// `git worktree remove`). Fixable via `git worktree prune`.
type OrphanWorktreeCheck struct {
	orphans []gitx.Worktree
}

func NewOrphanWorktreeCheck() *OrphanWorktreeCheck { return &OrphanWorktreeCheck{} }

func (c *OrphanWorktreeCheck) Name() string { return "orphan-worktrees" }

func (c *OrphanWorktreeCheck) Description() string {
	return "Detect worktree entries whose directory no longer exists on disk"
}

func (c *OrphanWorktreeCheck) Run(ctx *Context) *Result {
	g := gitx.NewGit(ctx.RepoRoot)
	worktrees, err := g.ListWorktrees()
	if err != nil {
		return &Result{Name: c.Name(), Status: StatusError, Message: fmt.Sprintf("listing worktrees: %v", err)}
	}

	c.orphans = nil
	for _, w := range worktrees {
		if _, err := os.Stat(w.Path); os.IsNotExist(err) {
			c.orphans = append(c.orphans, w)
		}
	}

	if len(c.orphans) == 0 {
		return &Result{Name: c.Name(), Status: StatusOK, Message: "no orphaned worktrees"}
	}

	var paths []string
	for _, w := range c.orphans {
		paths = append(paths, w.Path)
	}
	return &Result{
		Name:    c.Name(),
		Status:  StatusWarning,
		Message: fmt.Sprintf("%d orphaned worktree(s) found", len(c.orphans)),
		Details: paths,
	}
}

func (c *OrphanWorktreeCheck) Fix(ctx *Context) error {
	g := gitx.NewGit(ctx.RepoRoot)
	return g.PruneWorktrees()
}

// UnmergedPrunableWorktreeCheck flags worktrees whose branch has already
// been merged into the current HEAD and whose working tree has no
// uncommitted changes — safe-to-remove leftovers from finished work. Unlike
// OrphanWorktreeCheck, this never auto-fixes: removal is destructive to a
// branch that might still be wanted, so it only reports.
type UnmergedPrunableWorktreeCheck struct{}

func NewUnmergedPrunableWorktreeCheck() *UnmergedPrunableWorktreeCheck {
	return &UnmergedPrunableWorktreeCheck{}
}

func (c *UnmergedPrunableWorktreeCheck) Name() string { return "prunable-worktrees" }

func (c *UnmergedPrunableWorktreeCheck) Description() string {
	return "Detect worktrees whose branch is fully merged and clean"
}

func (c *UnmergedPrunableWorktreeCheck) Run(ctx *Context) *Result {
	g := gitx.NewGit(ctx.RepoRoot)
	worktrees, err := g.ListWorktrees()
	if err != nil {
		return &Result{Name: c.Name(), Status: StatusError, Message: fmt.Sprintf("listing worktrees: %v", err)}
	}

	var prunable []string
	for i, w := range worktrees {
		// The main working tree is listed first and is never removable.
		if i == 0 || w.Branch == "" {
			continue
		}
		if _, err := os.Stat(w.Path); err != nil {
			continue
		}
		wg := gitx.NewGit(w.Path)
		dirty, err := wg.HasUncommittedChanges()
		if err != nil || dirty {
			continue
		}
		// Nothing in branch is un-absorbed into HEAD: fully merged.
		ahead, err := g.RevListCount("HEAD.." + w.Branch)
		if err != nil || ahead != 0 {
			continue
		}
		prunable = append(prunable, w.Path+" ("+w.Branch+")")
	}

	if len(prunable) == 0 {
		return &Result{Name: c.Name(), Status: StatusOK, Message: "no fully-merged clean worktrees"}
	}
	return &Result{
		Name:    c.Name(),
		Status:  StatusWarning,
		Message: fmt.Sprintf("%d worktree(s) look safe to remove", len(prunable)),
		Details: prunable,
	}
}
