package catalog

import "testing"

func names(c *Catalog) []string {
	var out []string
	for _, i := range c.FilteredIndices() {
		out = append(out, c.Branches()[i].Name)
	}
	return out
}

func TestOrderingHeadFirst(t *testing.T) {
	c := New()
	c.SetBranches([]BranchItem{
		{Name: "feature-b"},
		{Name: "feature-a", IsHead: true},
	})
	got := names(c)
	if got[0] != "feature-a" {
		t.Errorf("first = %q, want feature-a (HEAD)", got[0])
	}
}

func TestOrderingMainBeforeDevelop(t *testing.T) {
	c := New()
	c.SetBranches([]BranchItem{
		{Name: "develop"},
		{Name: "main"},
	})
	got := names(c)
	if got[0] != "main" || got[1] != "develop" {
		t.Errorf("order = %v, want [main develop]", got)
	}
}

func TestOrderingDevelopOnlyWhenMainPresent(t *testing.T) {
	c := New()
	c.SetBranches([]BranchItem{
		{Name: "develop"},
		{Name: "zzz"},
	})
	got := names(c)
	// Without main/master present, develop has no special priority and
	// falls to alphabetical ordering among non-worktree, timestamp-less items.
	if got[0] != "develop" {
		t.Errorf("got %v, want develop first alphabetically (no main present)", got)
	}
}

func TestOrderingWorktreeBeforeTimestampOnly(t *testing.T) {
	c := New()
	c.SetBranches([]BranchItem{
		{Name: "no-worktree", LastCommit: 1000},
		{Name: "has-worktree", HasWorktree: true, LastCommit: 1},
	})
	got := names(c)
	if got[0] != "has-worktree" {
		t.Errorf("got %v, want has-worktree first (worktree rank beats timestamp)", got)
	}
}

func TestOrderingDescendingTimestampMissingSortsLast(t *testing.T) {
	c := New()
	c.SetBranches([]BranchItem{
		{Name: "no-ts"},
		{Name: "newer", LastCommit: 200},
		{Name: "older", LastCommit: 100},
	})
	got := names(c)
	want := []string{"newer", "older", "no-ts"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestOrderingLocalBeforeRemote(t *testing.T) {
	c := New()
	c.SetBranches([]BranchItem{
		{Name: "dup", IsRemote: true},
		{Name: "dup", IsRemote: false},
	})
	idx := c.FilteredIndices()
	if c.Branches()[idx[0]].IsRemote {
		t.Error("expected local branch to sort before remote counterpart")
	}
}

func TestOrderingAlphabeticalTiebreakerCaseInsensitive(t *testing.T) {
	c := New()
	c.SetBranches([]BranchItem{
		{Name: "Banana"},
		{Name: "apple"},
	})
	got := names(c)
	if got[0] != "apple" || got[1] != "Banana" {
		t.Errorf("got %v, want case-insensitive [apple Banana]", got)
	}
}

func TestFilterViewModeLocal(t *testing.T) {
	c := New()
	c.SetBranches([]BranchItem{
		{Name: "local-only"},
		{Name: "remote-only", IsRemote: true},
	})
	c.SetViewMode(ViewLocal)
	got := names(c)
	if len(got) != 1 || got[0] != "local-only" {
		t.Errorf("got %v, want [local-only]", got)
	}
}

func TestFilterViewModeRemoteKeepsWorktreeLocal(t *testing.T) {
	c := New()
	c.SetBranches([]BranchItem{
		{Name: "remote-tracked", IsRemote: true},
		{Name: "local-with-worktree", HasWorktree: true},
		{Name: "plain-local"},
	})
	c.SetViewMode(ViewRemote)
	got := names(c)
	if contains(got, "plain-local") {
		t.Errorf("got %v, plain-local should be excluded under Remote view", got)
	}
	if !contains(got, "local-with-worktree") {
		t.Errorf("got %v, local-with-worktree should be kept under Remote view", got)
	}
}

func TestFilterSubstringMatchesNameOrPRTitle(t *testing.T) {
	c := New()
	c.SetBranches([]BranchItem{
		{Name: "fix-login"},
		{Name: "unrelated"},
	})
	c.ApplyPRTitles(map[string]string{"unrelated": "Fix Login Bug"})
	c.SetFilter("login")
	got := names(c)
	if len(got) != 2 {
		t.Errorf("got %v, want both branches matched (name + PR title)", got)
	}
}

func TestScrollInvariantAfterMove(t *testing.T) {
	c := New()
	var branches []BranchItem
	for i := 0; i < 20; i++ {
		branches = append(branches, BranchItem{Name: string(rune('a' + i))})
	}
	c.SetBranches(branches)
	c.SetVisibleHeight(5)

	for i := 0; i < 10; i++ {
		c.MoveDown()
	}
	sel := c.Selected()
	if sel < c.Offset() || sel >= c.Offset()+5 {
		t.Errorf("invariant violated: selected=%d offset=%d height=5", sel, c.Offset())
	}
}

func TestScrollInvariantPulledBackOnShrink(t *testing.T) {
	c := New()
	var branches []BranchItem
	for i := 0; i < 20; i++ {
		branches = append(branches, BranchItem{Name: string(rune('a' + i))})
	}
	c.SetBranches(branches)
	c.SetVisibleHeight(10)
	for i := 0; i < 15; i++ {
		c.MoveDown()
	}
	selectedBefore := c.Selected()

	c.SetVisibleHeight(3)
	if c.Selected() != selectedBefore {
		t.Errorf("selection changed on shrink: got %d, want %d", c.Selected(), selectedBefore)
	}
	sel := c.Selected()
	if sel < c.Offset() || sel >= c.Offset()+3 {
		t.Errorf("invariant violated after shrink: selected=%d offset=%d height=3", sel, c.Offset())
	}
}

func TestCursorBoundsEmptyFilteredSet(t *testing.T) {
	c := New()
	c.SetBranches([]BranchItem{{Name: "only-branch"}})
	c.SetFilter("nomatch")
	if c.Selected() != -1 {
		t.Errorf("Selected() = %d, want -1 for empty filtered set", c.Selected())
	}
	if len(c.FilteredIndices()) != 0 {
		t.Errorf("expected empty filtered set")
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
