package doctor

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func initTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	runCmd(t, dir, "git", "init")
	runCmd(t, dir, "git", "config", "user.email", "test@test.com")
	runCmd(t, dir, "git", "config", "user.name", "Test User")
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Test\n"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	runCmd(t, dir, "git", "add", ".")
	runCmd(t, dir, "git", "commit", "-m", "initial")
	return dir
}

func runCmd(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out)
	}
}

func TestOrphanWorktreeCheckDetectsDeletedDirectory(t *testing.T) {
	repo := initTestRepo(t)
	wtPath := filepath.Join(t.TempDir(), "wt")
	runCmd(t, repo, "git", "worktree", "add", "-b", "feature/x", wtPath)

	if err := os.RemoveAll(wtPath); err != nil {
		t.Fatalf("removing worktree dir: %v", err)
	}

	check := NewOrphanWorktreeCheck()
	ctx := &Context{RepoRoot: repo}

	result := check.Run(ctx)
	if result.Status != StatusWarning {
		t.Fatalf("expected warning, got %v (%s)", result.Status, result.Message)
	}

	if err := check.Fix(ctx); err != nil {
		t.Fatalf("Fix: %v", err)
	}

	result = check.Run(ctx)
	if result.Status != StatusOK {
		t.Fatalf("expected ok after prune, got %v (%s)", result.Status, result.Message)
	}
}

func TestOrphanWorktreeCheckOKWhenNoneOrphaned(t *testing.T) {
	repo := initTestRepo(t)
	check := NewOrphanWorktreeCheck()

	result := check.Run(&Context{RepoRoot: repo})
	if result.Status != StatusOK {
		t.Fatalf("expected ok, got %v (%s)", result.Status, result.Message)
	}
}

func TestUnmergedPrunableWorktreeCheckFlagsMergedClean(t *testing.T) {
	repo := initTestRepo(t)
	wtPath := filepath.Join(t.TempDir(), "wt")
	runCmd(t, repo, "git", "worktree", "add", "-b", "feature/done", wtPath)

	check := NewUnmergedPrunableWorktreeCheck()
	result := check.Run(&Context{RepoRoot: repo})
	if result.Status != StatusWarning {
		t.Fatalf("expected warning for merged clean worktree, got %v (%s)", result.Status, result.Message)
	}
}

func TestUnmergedPrunableWorktreeCheckSkipsDirtyWorktree(t *testing.T) {
	repo := initTestRepo(t)
	wtPath := filepath.Join(t.TempDir(), "wt")
	runCmd(t, repo, "git", "worktree", "add", "-b", "feature/dirty", wtPath)
	if err := os.WriteFile(filepath.Join(wtPath, "scratch.txt"), []byte("wip"), 0644); err != nil {
		t.Fatalf("write scratch file: %v", err)
	}

	check := NewUnmergedPrunableWorktreeCheck()
	result := check.Run(&Context{RepoRoot: repo})
	if result.Status != StatusOK {
		t.Fatalf("expected ok for dirty worktree, got %v (%s)", result.Status, result.Message)
	}
}
