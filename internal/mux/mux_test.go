package mux

import "testing"

func TestEqualSplitSizesExactDivision(t *testing.T) {
	sizes := EqualSplitSizes(100, 4)
	want := []int{25, 25, 25, 25}
	assertIntSlice(t, sizes, want)
}

func TestEqualSplitSizesRemainderGoesToLeadingSlots(t *testing.T) {
	sizes := EqualSplitSizes(10, 3)
	want := []int{4, 3, 3}
	assertIntSlice(t, sizes, want)

	sum := 0
	for _, s := range sizes {
		sum += s
	}
	if sum != 10 {
		t.Errorf("sum = %d, want 10", sum)
	}
}

func TestEqualSplitSizesZeroSlots(t *testing.T) {
	if sizes := EqualSplitSizes(100, 0); sizes != nil {
		t.Errorf("sizes = %v, want nil", sizes)
	}
}

func TestColumnsGroupsByLeftSortedLeftToRightThenTopToBottom(t *testing.T) {
	geos := []Geometry{
		{ID: "%3", Left: 50, Top: 10},
		{ID: "%1", Left: 0, Top: 0},
		{ID: "%4", Left: 50, Top: 0},
		{ID: "%2", Left: 0, Top: 10},
	}

	cols := Columns(geos)
	if len(cols) != 2 {
		t.Fatalf("columns = %d, want 2", len(cols))
	}
	if cols[0][0].ID != "%1" || cols[0][1].ID != "%2" {
		t.Errorf("column 0 = %v, want [%%1 %%2] top-to-bottom", cols[0])
	}
	if cols[1][0].ID != "%4" || cols[1][1].ID != "%3" {
		t.Errorf("column 1 = %v, want [%%4 %%3] top-to-bottom", cols[1])
	}
}

func TestColumnsEmpty(t *testing.T) {
	if cols := Columns(nil); len(cols) != 0 {
		t.Errorf("columns = %v, want empty", cols)
	}
}

func assertIntSlice(t *testing.T, got, want []int) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
