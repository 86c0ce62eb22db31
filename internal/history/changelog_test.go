package history

import (
	"errors"
	"fmt"
	"testing"

	"github.com/xcawolfe/gwt/internal/gitx"
)

type fakeGit struct {
	tags        []string
	counts      map[string]int
	revs        map[string]string
	logsByRange map[string][]gitx.LogEntry
}

func (f *fakeGit) Tags() ([]string, error) { return f.tags, nil }

func (f *fakeGit) RevListCount(rangeExpr string) (int, error) {
	return f.counts[rangeExpr], nil
}

func (f *fakeGit) Rev(rev string) (string, error) {
	if oid, ok := f.revs[rev]; ok {
		return oid, nil
	}
	return "", fmt.Errorf("unknown revision %q", rev)
}

func (f *fakeGit) Log(rev string, skip, limit int) ([]gitx.LogEntry, error) {
	return f.logsByRange[rev], nil
}

func TestListProjectVersionsUnbornHead(t *testing.T) {
	g := &fakeGit{counts: map[string]int{"HEAD": 0}}
	items, err := ListProjectVersions(g, 10)
	if err != nil {
		t.Fatalf("ListProjectVersions: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected exactly one item for unborn HEAD, got %d", len(items))
	}
	if items[0].ID != UnreleasedID || items[0].RangeTo != "HEAD" || items[0].CommitCount != 0 {
		t.Errorf("unexpected item: %+v", items[0])
	}
}

func TestListProjectVersionsTagRanges(t *testing.T) {
	g := &fakeGit{
		tags: []string{"v2.0.0", "v1.0.0"},
		counts: map[string]int{
			"v2.0.0..HEAD": 3,
			"v1.0.0..v2.0.0": 5,
			"v1.0.0":         2,
		},
	}
	items, err := ListProjectVersions(g, 10)
	if err != nil {
		t.Fatalf("ListProjectVersions: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected unreleased + 2 tags, got %d: %+v", len(items), items)
	}
	if items[0].ID != UnreleasedID || items[0].CommitCount != 3 {
		t.Errorf("unreleased item = %+v", items[0])
	}
	if items[1].ID != "v2.0.0" || items[1].RangeFrom != "v1.0.0" || items[1].CommitCount != 5 {
		t.Errorf("v2.0.0 item = %+v", items[1])
	}
	if items[2].ID != "v1.0.0" || items[2].RangeFrom != "" || items[2].CommitCount != 2 {
		t.Errorf("v1.0.0 item = %+v", items[2])
	}
}

func TestListProjectVersionsRespectsLimit(t *testing.T) {
	g := &fakeGit{
		tags:   []string{"v3.0.0", "v2.0.0", "v1.0.0"},
		counts: map[string]int{},
	}
	items, err := ListProjectVersions(g, 2)
	if err != nil {
		t.Fatalf("ListProjectVersions: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected limit of 2 items, got %d", len(items))
	}
}

func TestBuildSimpleChangelogGroupsAndOrders(t *testing.T) {
	subjects := []string{
		"fix(mux): avoid double split",
		"feat(wizard): add reasoning tier step",
		"chore: bump deps",
		"docs: clarify readme",
		"some untagged commit message",
	}
	out := buildSimpleChangelog(subjects)

	featIdx := indexOf(out, "### Features")
	fixIdx := indexOf(out, "### Bug Fixes")
	docsIdx := indexOf(out, "### Documentation")
	choreIdx := indexOf(out, "### Miscellaneous Tasks")
	otherIdx := indexOf(out, "### Other")

	if featIdx < 0 || fixIdx < 0 || docsIdx < 0 || choreIdx < 0 || otherIdx < 0 {
		t.Fatalf("missing expected group headers in:\n%s", out)
	}
	if !(featIdx < fixIdx && fixIdx < docsIdx && docsIdx < choreIdx && choreIdx < otherIdx) {
		t.Errorf("groups out of canonical order:\n%s", out)
	}
}

func TestNormalizeSubjectForChangelogRewritesScope(t *testing.T) {
	got := normalizeSubjectForChangelog("feat(wizard): add reasoning tier step")
	want := "**wizard:** add reasoning tier step"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNormalizeSubjectForChangelogLeavesUnscopedConventional(t *testing.T) {
	got := normalizeSubjectForChangelog("chore: bump deps")
	if got != "bump deps" {
		t.Errorf("got %q, want %q", got, "bump deps")
	}
}

func TestNormalizeSubjectForChangelogLeavesNonConventionalVerbatim(t *testing.T) {
	in := "quick hack to fix the demo"
	if got := normalizeSubjectForChangelog(in); got != in {
		t.Errorf("got %q, want verbatim %q", got, in)
	}
}

func TestBuildSimpleChangelogCapsGroupWithSentinel(t *testing.T) {
	var subjects []string
	for i := 0; i < maxChangelogLinesPerGroup+5; i++ {
		subjects = append(subjects, fmt.Sprintf("feat: change number %d", i))
	}
	out := buildSimpleChangelog(subjects)
	if !contains(out, "(+5 more)") {
		t.Errorf("expected overflow sentinel in output:\n%s", out)
	}
}

func TestBuildSimpleChangelogEmptyInput(t *testing.T) {
	if got := buildSimpleChangelog(nil); got != "(No commits)" {
		t.Errorf("got %q, want %q", got, "(No commits)")
	}
}

func TestChangelogCachesByResolvedOID(t *testing.T) {
	g := &fakeGit{
		revs: map[string]string{"v1.0.0": "aaa", "v2.0.0": "bbb"},
		logsByRange: map[string][]gitx.LogEntry{
			"v1.0.0..v2.0.0": {{Subject: "feat: first"}},
		},
	}
	cache := NewChangelogCache()

	out1, err := Changelog(g, cache, "main", "v2.0.0", "v1.0.0", "v2.0.0")
	if err != nil {
		t.Fatalf("Changelog: %v", err)
	}
	if !contains(out1, "first") {
		t.Fatalf("expected rendered changelog to mention first commit: %s", out1)
	}

	// Mutate the backing log so a cache hit is distinguishable from a fresh read.
	g.logsByRange["v1.0.0..v2.0.0"] = []gitx.LogEntry{{Subject: "feat: second"}}
	out2, err := Changelog(g, cache, "main", "v2.0.0", "v1.0.0", "v2.0.0")
	if err != nil {
		t.Fatalf("Changelog (cached): %v", err)
	}
	if out1 != out2 {
		t.Errorf("expected cached result to be reused, got %q vs %q", out1, out2)
	}
}

func TestChangelogUnbornHeadYieldsEmptyChangelog(t *testing.T) {
	g := &fakeGit{}
	out, err := Changelog(g, nil, "main", UnreleasedID, "", "HEAD")
	if err != nil {
		t.Fatalf("Changelog: %v", err)
	}
	if out != "(No commits)" {
		t.Errorf("got %q, want %q", out, "(No commits)")
	}
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}

func contains(s, substr string) bool {
	return indexOf(s, substr) >= 0
}

func TestValidateGeneratedSummaryAcceptsWellFormed(t *testing.T) {
	summary := "## Summary\nDid some stuff.\n\n## Highlights\n- added X\n- fixed Y\n"
	if err := ValidateGeneratedSummary(summary); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestValidateGeneratedSummaryRejectsMissingHighlightsBullet(t *testing.T) {
	summary := "## Summary\nDid some stuff.\n\n## Highlights\n"
	if err := ValidateGeneratedSummary(summary); !errors.Is(err, ErrIncompleteSummary) {
		t.Errorf("expected ErrIncompleteSummary, got %v", err)
	}
}

func TestValidateGeneratedSummaryRejectsMissingSummaryHeading(t *testing.T) {
	summary := "## Highlights\n- added X\n"
	if err := ValidateGeneratedSummary(summary); !errors.Is(err, ErrIncompleteSummary) {
		t.Errorf("expected ErrIncompleteSummary, got %v", err)
	}
}
