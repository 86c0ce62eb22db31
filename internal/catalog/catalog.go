// Package catalog maintains the branch/worktree catalog: ordering, filtering,
// incremental safety/PR annotations, and the selection/scroll invariants the
// list view depends on.
package catalog

import (
	"strings"
)

// ViewMode narrows the catalog to a subset of branches.
type ViewMode int

const (
	ViewAll ViewMode = iota
	ViewLocal
	ViewRemote
)

// BranchItem is one row of the catalog.
type BranchItem struct {
	Name         string
	IsRemote     bool
	IsHead       bool
	HasWorktree  bool
	LastCommit   int64 // unix seconds, 0 if unknown
	Unpushed     int
	Unmerged     int
	SafetyKnown  bool
	Safe         bool
	HasChanges   bool
	PRTitle      string
	PRTitleKnown bool
}

// Catalog holds the full branch set plus derived/view state.
type Catalog struct {
	branches        []BranchItem
	filteredIndices []int

	selected      int
	offset        int
	visibleHeight int

	filter     string
	filterMode bool
	viewMode   ViewMode

	multiSelected map[string]bool
	spinnerFrame  int
	filterVersion uint64
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		multiSelected: make(map[string]bool),
		viewMode:      ViewAll,
	}
}

// SetBranches replaces the full branch set and rebuilds the filtered view.
func (c *Catalog) SetBranches(branches []BranchItem) {
	c.branches = branches
	c.rebuild()
}

// Branches returns the full unfiltered set.
func (c *Catalog) Branches() []BranchItem {
	return c.branches
}

// FilteredIndices returns the indices into Branches() currently visible.
func (c *Catalog) FilteredIndices() []int {
	return c.filteredIndices
}

// Selected returns the currently selected index into FilteredIndices(), or
// -1 if the filtered set is empty.
func (c *Catalog) Selected() int {
	if len(c.filteredIndices) == 0 {
		return -1
	}
	return c.selected
}

// SelectedBranch returns the currently selected branch, or nil if none.
func (c *Catalog) SelectedBranch() *BranchItem {
	idx := c.Selected()
	if idx < 0 {
		return nil
	}
	return &c.branches[c.filteredIndices[idx]]
}

// Offset returns the current viewport scroll offset.
func (c *Catalog) Offset() int { return c.offset }

// SetVisibleHeight updates the viewport height and re-applies the scroll
// invariant: if the viewport shrinks, offset is pulled back without
// changing the selection.
func (c *Catalog) SetVisibleHeight(height int) {
	c.visibleHeight = height
	c.clampScroll()
}

// SetFilter updates the substring filter and rebuilds the filtered view.
func (c *Catalog) SetFilter(filter string) {
	c.filter = filter
	c.rebuild()
}

// SetFilterMode toggles whether filter-entry mode is active (purely a UI
// state flag; does not itself affect filtering).
func (c *Catalog) SetFilterMode(active bool) {
	c.filterMode = active
}

// FilterMode reports whether filter-entry mode is active.
func (c *Catalog) FilterMode() bool { return c.filterMode }

// SetViewMode updates the view scope and rebuilds the filtered view.
func (c *Catalog) SetViewMode(mode ViewMode) {
	c.viewMode = mode
	c.rebuild()
}

// ViewMode returns the current view scope.
func (c *Catalog) ViewMode() ViewMode { return c.viewMode }

// FilterVersion returns a monotonic counter incremented on every rebuild,
// so callers can detect whether a previously-computed render is stale.
func (c *Catalog) FilterVersion() uint64 { return c.filterVersion }

// MoveDown moves the selection cursor down by one, if possible, and
// restores the scroll invariant.
func (c *Catalog) MoveDown() {
	if len(c.filteredIndices) == 0 {
		return
	}
	if c.selected < len(c.filteredIndices)-1 {
		c.selected++
	}
	c.clampScroll()
}

// MoveUp moves the selection cursor up by one, if possible, and restores
// the scroll invariant.
func (c *Catalog) MoveUp() {
	if len(c.filteredIndices) == 0 {
		return
	}
	if c.selected > 0 {
		c.selected--
	}
	c.clampScroll()
}

// ToggleMultiSelect toggles the given branch name's membership in the
// multi-selection set.
func (c *Catalog) ToggleMultiSelect(name string) {
	if c.multiSelected[name] {
		delete(c.multiSelected, name)
	} else {
		c.multiSelected[name] = true
	}
}

// IsMultiSelected reports whether name is in the multi-selection set.
func (c *Catalog) IsMultiSelected(name string) bool {
	return c.multiSelected[name]
}

// TickSpinner advances the spinner frame counter by one, called once per
// render period (~250ms).
func (c *Catalog) TickSpinner() {
	c.spinnerFrame++
}

// SpinnerFrame returns the current spinner frame counter.
func (c *Catalog) SpinnerFrame() int { return c.spinnerFrame }

// clampScroll restores offset <= selected < offset + visibleHeight without
// changing the selection.
func (c *Catalog) clampScroll() {
	if c.visibleHeight <= 0 {
		return
	}
	if c.selected < c.offset {
		c.offset = c.selected
	}
	if c.selected >= c.offset+c.visibleHeight {
		c.offset = c.selected - c.visibleHeight + 1
	}
	if c.offset < 0 {
		c.offset = 0
	}
}

// rebuild recomputes filteredIndices from branches applying view-mode and
// substring filtering, then reorders per the catalog's ordering rules, then
// clamps the selection cursor and scroll offset.
func (c *Catalog) rebuild() {
	var indices []int
	for i, b := range c.branches {
		if !c.passesViewMode(b) {
			continue
		}
		if !c.passesFilter(b) {
			continue
		}
		indices = append(indices, i)
	}

	order(c.branches, indices, c.hasMainInFiltered(indices))
	c.filteredIndices = indices
	c.filterVersion++

	if len(c.filteredIndices) == 0 {
		c.selected = 0
	} else if c.selected >= len(c.filteredIndices) {
		c.selected = len(c.filteredIndices) - 1
	}
	c.clampScroll()
}

func (c *Catalog) passesViewMode(b BranchItem) bool {
	switch c.viewMode {
	case ViewLocal:
		return !b.IsRemote
	case ViewRemote:
		return b.IsRemote || b.HasWorktree
	default:
		return true
	}
}

func (c *Catalog) passesFilter(b BranchItem) bool {
	if c.filter == "" {
		return true
	}
	needle := strings.ToLower(c.filter)
	if strings.Contains(strings.ToLower(b.Name), needle) {
		return true
	}
	if b.PRTitleKnown && strings.Contains(strings.ToLower(b.PRTitle), needle) {
		return true
	}
	return false
}

func (c *Catalog) hasMainInFiltered(indices []int) bool {
	for _, i := range indices {
		if isMainOrMaster(c.branches[i].Name) {
			return true
		}
	}
	return false
}

func isMainOrMaster(name string) bool {
	return name == "main" || name == "master"
}

func isDevelopOrDev(name string) bool {
	return name == "develop" || name == "dev"
}

// order applies the catalog's 7-step stable ordering to indices in place.
func order(branches []BranchItem, indices []int, mainPresent bool) {
	rank := func(i int) int {
		b := branches[i]
		switch {
		case b.IsHead:
			return 0
		case isMainOrMaster(b.Name):
			return 1
		case isDevelopOrDev(b.Name) && mainPresent:
			return 2
		case b.HasWorktree:
			return 3
		default:
			return 4
		}
	}

	less := func(a, b int) bool {
		ra, rb := rank(a), rank(b)
		if ra != rb {
			return ra < rb
		}
		ba, bb := branches[a], branches[b]
		if ba.LastCommit != bb.LastCommit {
			if ba.LastCommit == 0 {
				return false
			}
			if bb.LastCommit == 0 {
				return true
			}
			return ba.LastCommit > bb.LastCommit
		}
		if ba.IsRemote != bb.IsRemote {
			return !ba.IsRemote
		}
		return strings.ToLower(ba.Name) < strings.ToLower(bb.Name)
	}

	// Stable insertion sort: the branch set is small enough (hundreds, not
	// thousands) that O(n^2) is not a concern, and stability matters for
	// the tiebreaker chain above.
	for i := 1; i < len(indices); i++ {
		for j := i; j > 0 && less(indices[j], indices[j-1]); j-- {
			indices[j], indices[j-1] = indices[j-1], indices[j]
		}
	}
}

// ApplySafetyUpdate updates the named pending branch's safety fields.
func (c *Catalog) ApplySafetyUpdate(name string, unpushed, unmerged int, safe bool) {
	for i := range c.branches {
		if c.branches[i].Name == name {
			if c.branches[i].SafetyKnown {
				return
			}
			c.branches[i].Unpushed = unpushed
			c.branches[i].Unmerged = unmerged
			c.branches[i].Safe = safe
			c.branches[i].SafetyKnown = true
			return
		}
	}
}

// ApplyWorktreeUpdate sets a branch's HasWorktree/HasChanges state. It does
// not touch the probed safety fields; Classify reads the new values the next
// time the branch's safety is displayed.
func (c *Catalog) ApplyWorktreeUpdate(name string, hasWorktree bool, hasChanges bool) {
	for i := range c.branches {
		if c.branches[i].Name == name {
			c.branches[i].HasWorktree = hasWorktree
			c.branches[i].HasChanges = hasChanges
			return
		}
	}
}

// ApplyPRTitles annotates branches with known PR titles and triggers a
// rebuild so the filter can match against them.
func (c *Catalog) ApplyPRTitles(titles map[string]string) {
	for i := range c.branches {
		if title, ok := titles[c.branches[i].Name]; ok {
			c.branches[i].PRTitle = title
			c.branches[i].PRTitleKnown = true
		}
	}
	c.rebuild()
}

// Safety classifies a branch's safety-to-delete state for display. It is a
// pure function of (IsRemote, HasWorktree, HasChanges, Unpushed, Unmerged,
// SafetyKnown, Safe), per
// §3's priority order: Remote, Uncommitted changes, Unpushed commits,
// Unmerged commits, Safe, Pending, else Unsafe.
type Safety int

const (
	SafetyUnknown Safety = iota
	SafetyUncommitted
	SafetyUnpushed
	SafetyUnmerged
	SafetySafe
	SafetyPending
	SafetyUnsafe
)

// Classify returns a branch item's display safety classification, computed
// in the fixed priority order §3 specifies. A remote branch with no local
// worktree has no cleanup decision to make and always reports Unknown.
func Classify(b BranchItem) Safety {
	if b.IsRemote && !b.HasWorktree {
		return SafetyUnknown
	}
	if b.HasChanges {
		return SafetyUncommitted
	}
	if b.Unpushed > 0 {
		return SafetyUnpushed
	}
	if b.Unmerged > 0 {
		return SafetyUnmerged
	}
	if b.SafetyKnown && b.Safe {
		return SafetySafe
	}
	if !b.SafetyKnown {
		return SafetyPending
	}
	return SafetyUnsafe
}
