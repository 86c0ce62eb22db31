package gitx

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
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

func TestIsRepo(t *testing.T) {
	dir := t.TempDir()
	g := NewGit(dir)

	if g.IsRepo() {
		t.Fatal("expected IsRepo false for empty dir")
	}

	runCmd(t, dir, "git", "init")
	if !g.IsRepo() {
		t.Fatal("expected IsRepo true after git init")
	}
}

func TestCurrentBranch(t *testing.T) {
	dir := initTestRepo(t)
	g := NewGit(dir)

	branch, err := g.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if branch != "main" && branch != "master" {
		t.Errorf("branch = %q, want main or master", branch)
	}
}

func TestNotARepo(t *testing.T) {
	dir := t.TempDir()
	g := NewGit(dir)

	_, err := g.CurrentBranch()
	gitErr, ok := err.(*GitError)
	if !ok {
		t.Fatalf("expected *GitError, got %T: %v", err, err)
	}
	if gitErr.Stderr == "" {
		t.Error("expected non-empty stderr for observation")
	}
}

func TestUnbornHEADRevListCount(t *testing.T) {
	dir := t.TempDir()
	runCmd(t, dir, "git", "init")
	g := NewGit(dir)

	n, err := g.RevListCount("HEAD")
	if err != nil {
		t.Fatalf("RevListCount on unborn HEAD: %v", err)
	}
	if n != 0 {
		t.Errorf("count = %d, want 0 for unborn HEAD", n)
	}
}

func TestStatus(t *testing.T) {
	dir := initTestRepo(t)
	g := NewGit(dir)

	status, err := g.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.Clean {
		t.Error("expected clean status")
	}

	if err := os.WriteFile(filepath.Join(dir, "new.txt"), []byte("new"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	status, err = g.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Clean {
		t.Error("expected dirty status")
	}
	if len(status.Untracked) != 1 {
		t.Errorf("untracked = %d, want 1", len(status.Untracked))
	}
}

func TestHasUncommittedChanges(t *testing.T) {
	dir := initTestRepo(t)
	g := NewGit(dir)

	has, err := g.HasUncommittedChanges()
	if err != nil {
		t.Fatalf("HasUncommittedChanges: %v", err)
	}
	if has {
		t.Error("expected clean repo to report no changes")
	}

	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("modified"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	has, err = g.HasUncommittedChanges()
	if err != nil {
		t.Fatalf("HasUncommittedChanges: %v", err)
	}
	if !has {
		t.Error("expected modified repo to report changes")
	}
}

func TestCheckoutAndListBranches(t *testing.T) {
	dir := initTestRepo(t)
	g := NewGit(dir)

	if err := g.CreateBranch("feature"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if err := g.Checkout("feature"); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	branch, _ := g.CurrentBranch()
	if branch != "feature" {
		t.Errorf("branch = %q, want feature", branch)
	}

	branches, err := g.ListBranches("")
	if err != nil {
		t.Fatalf("ListBranches: %v", err)
	}
	var names []string
	for _, b := range branches {
		names = append(names, b.Name)
	}
	if !contains(names, "feature") {
		t.Errorf("branches = %v, want to contain feature", names)
	}
}

func TestDiffNumstatAndNameStatus(t *testing.T) {
	dir := initTestRepo(t)
	g := NewGit(dir)

	before, err := g.Rev("HEAD")
	if err != nil {
		t.Fatalf("Rev: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Test\nmore\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	runCmd(t, dir, "git", "add", ".")
	runCmd(t, dir, "git", "commit", "-m", "edit readme")

	entries, err := g.DiffNumstat(before, "HEAD")
	if err != nil {
		t.Fatalf("DiffNumstat: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "README.md" {
		t.Fatalf("entries = %+v, want one README.md entry", entries)
	}
	if entries[0].Added != 1 {
		t.Errorf("added = %d, want 1", entries[0].Added)
	}

	nameStatus, err := g.DiffNameStatus(before, "HEAD")
	if err != nil {
		t.Fatalf("DiffNameStatus: %v", err)
	}
	if len(nameStatus) != 1 || nameStatus[0].Status != "M" {
		t.Fatalf("nameStatus = %+v, want one M entry", nameStatus)
	}
}

func TestDiffTruncation(t *testing.T) {
	dir := initTestRepo(t)
	g := NewGit(dir)

	before, err := g.Rev("HEAD")
	if err != nil {
		t.Fatalf("Rev: %v", err)
	}

	var lines strings.Builder
	for i := 0; i < 1500; i++ {
		lines.WriteString("line\n")
	}
	if err := os.WriteFile(filepath.Join(dir, "big.txt"), []byte(lines.String()), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	runCmd(t, dir, "git", "add", ".")
	runCmd(t, dir, "git", "commit", "-m", "add big file")

	diff, err := g.Diff(before, "HEAD", "big.txt")
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if !diff.Truncated {
		t.Error("expected Truncated=true for a 1500+ line diff")
	}
}

func TestCheckConflicts(t *testing.T) {
	dir := initTestRepo(t)
	g := NewGit(dir)
	mainBranch, _ := g.CurrentBranch()

	if err := g.CreateBranch("feature"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if err := g.Checkout("feature"); err != nil {
		t.Fatalf("Checkout feature: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Feature\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	runCmd(t, dir, "git", "add", ".")
	runCmd(t, dir, "git", "commit", "-m", "feature change")

	if err := g.Checkout(mainBranch); err != nil {
		t.Fatalf("Checkout main: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Main\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	runCmd(t, dir, "git", "add", ".")
	runCmd(t, dir, "git", "commit", "-m", "main change")

	conflicts, err := g.CheckConflicts("feature", mainBranch)
	if err != nil {
		t.Fatalf("CheckConflicts: %v", err)
	}
	if !contains(conflicts, "README.md") {
		t.Errorf("conflicts = %v, want README.md", conflicts)
	}

	branch, _ := g.CurrentBranch()
	if branch != mainBranch {
		t.Errorf("branch after CheckConflicts = %q, want %q", branch, mainBranch)
	}
	status, _ := g.Status()
	if !status.Clean {
		t.Error("expected clean working tree after CheckConflicts")
	}
}

func TestWorktreeLifecycle(t *testing.T) {
	dir := initTestRepo(t)
	g := NewGit(dir)
	mainBranch, _ := g.CurrentBranch()

	wtPath := filepath.Join(t.TempDir(), "wt")
	if err := g.WorktreeAddFromRef(wtPath, "wt-branch", mainBranch); err != nil {
		t.Fatalf("WorktreeAddFromRef: %v", err)
	}

	worktrees, err := g.ListWorktrees()
	if err != nil {
		t.Fatalf("ListWorktrees: %v", err)
	}
	found := false
	for _, w := range worktrees {
		if w.Branch == "wt-branch" {
			found = true
		}
	}
	if !found {
		t.Errorf("worktrees = %+v, want wt-branch present", worktrees)
	}

	if err := g.WorktreeRemove(wtPath, true); err != nil {
		t.Fatalf("WorktreeRemove: %v", err)
	}
}

func TestUpstreamFallsBackToMain(t *testing.T) {
	dir := initTestRepo(t)
	g := NewGit(dir)

	upstream, err := g.Upstream()
	if err != nil {
		t.Fatalf("Upstream: %v", err)
	}
	if upstream != "main" {
		t.Errorf("upstream = %q, want main (no upstream configured)", upstream)
	}
}

func TestLog(t *testing.T) {
	dir := initTestRepo(t)
	g := NewGit(dir)

	entries, err := g.Log("HEAD", 0, 10)
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if len(entries[0].Hash) != 40 {
		t.Errorf("hash length = %d, want 40", len(entries[0].Hash))
	}
	if entries[0].Subject != "initial" {
		t.Errorf("subject = %q, want initial", entries[0].Subject)
	}
}

func contains(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}
