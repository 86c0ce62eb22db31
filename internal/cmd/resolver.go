package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xcawolfe/gwt/internal/gitx"
)

// gitResolver adapts internal/gitx to agent.WorktreeResolver: it reuses an
// existing worktree for a branch if one exists, otherwise creates one under
// <repoRoot>/.gwt/worktrees/<branch>, creating the branch itself if it
// doesn't already exist.
type gitResolver struct {
	repoRoot string
	git      *gitx.Git
}

func newGitResolver(repoRoot string) *gitResolver {
	return &gitResolver{repoRoot: repoRoot, git: gitx.NewGit(repoRoot)}
}

func (r *gitResolver) ResolveWorktree(branch string) (string, error) {
	worktrees, err := r.git.ListWorktrees()
	if err != nil {
		return "", fmt.Errorf("listing worktrees: %w", err)
	}
	for _, w := range worktrees {
		if w.Branch == branch {
			return w.Path, nil
		}
	}

	path := filepath.Join(r.repoRoot, ".gwt", "worktrees", sanitizeBranchForPath(branch))

	branches, err := r.git.ListBranches(branch)
	if err != nil {
		return "", fmt.Errorf("listing branches: %w", err)
	}
	for _, b := range branches {
		if !b.IsRemote && b.Name == branch {
			if err := r.git.WorktreeAdd(path, branch); err != nil {
				return "", fmt.Errorf("adding worktree for %s: %w", branch, err)
			}
			return path, nil
		}
	}

	if err := r.git.WorktreeAddFromRef(path, branch, "HEAD"); err != nil {
		return "", fmt.Errorf("creating branch %s: %w", branch, err)
	}
	return path, nil
}

func sanitizeBranchForPath(branch string) string {
	return strings.ReplaceAll(branch, "/", "-")
}

// sessionName derives a stable tmux session name from the repository root,
// so separate clones don't collide in the same tmux server.
func sessionName(repoRoot string) string {
	return "gwt-" + sanitizeBranchForPath(filepath.Base(repoRoot))
}
