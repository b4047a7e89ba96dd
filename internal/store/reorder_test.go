package store

import (
	"testing"
	"time"
)

func TestPlanReorderRanks_PrefixAdjacentBounds_DoesNotJump(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// "y" < "y0" is a prefix-adjacent pair with no in-between rank available.
	// Reordering into that gap must not produce a rank that sorts after "y0"
	// (which would show up as a jump past the intended position).
	sibs := []RankedRef{
		{ID: "a", Rank: "y", CreatedAt: now},
		{ID: "b", Rank: "y0", CreatedAt: now.Add(time.Second)},
		{ID: "x", Rank: "h", CreatedAt: now.Add(2 * time.Second)},
	}

	// After removing x, siblings are [a, b]. Insert x after a => insertAt=1.
	res, err := PlanReorderRanks(sibs, "x", 1)
	if err != nil {
		t.Fatalf("PlanReorderRanks unexpected err: %v", err)
	}
	if len(res.RankByID) == 0 {
		t.Fatalf("expected rank updates, got none")
	}

	rank := map[string]string{"a": "y", "b": "y0", "x": "h"}
	for id, r := range res.RankByID {
		rank[id] = r
	}
	if !(rank["a"] < rank["x"] && rank["x"] < rank["b"]) {
		t.Fatalf("expected a < x < b after reorder, got a=%q x=%q b=%q", rank["a"], rank["x"], rank["b"])
	}
}

func TestPlanReorderRanks_NoOpMoveNeedsNoUpdates(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sibs := []RankedRef{
		{ID: "a", Rank: "h", CreatedAt: now},
		{ID: "b", Rank: "m", CreatedAt: now},
		{ID: "c", Rank: "t", CreatedAt: now},
	}

	res, err := PlanReorderRanks(sibs, "b", 1)
	if err != nil {
		t.Fatalf("PlanReorderRanks: %v", err)
	}
	if len(res.RankByID) != 0 {
		t.Fatalf("expected no updates for no-op move, got %v", res.RankByID)
	}
}

func TestPlanReorderRanks_MoveToFront(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sibs := []RankedRef{
		{ID: "a", Rank: "h", CreatedAt: now},
		{ID: "b", Rank: "m", CreatedAt: now},
		{ID: "c", Rank: "t", CreatedAt: now},
	}

	res, err := PlanReorderRanks(sibs, "c", 0)
	if err != nil {
		t.Fatalf("PlanReorderRanks: %v", err)
	}
	r, ok := res.RankByID["c"]
	if !ok {
		t.Fatalf("expected a new rank for c, got %v", res.RankByID)
	}
	if !(r < "h") {
		t.Fatalf("expected c's new rank to sort before %q, got %q", "h", r)
	}
}

func TestSortRankedRefs_RankThenCreatedAtThenID(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	refs := []RankedRef{
		{ID: "b", Rank: "m", CreatedAt: now},
		{ID: "a", Rank: "m", CreatedAt: now},
		{ID: "late", Rank: "", CreatedAt: now.Add(time.Hour)},
		{ID: "c", Rank: "h", CreatedAt: now},
	}
	SortRankedRefs(refs)

	got := []string{refs[0].ID, refs[1].ID, refs[2].ID, refs[3].ID}
	want := []string{"c", "a", "b", "late"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}
