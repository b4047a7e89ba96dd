package store

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// RankedRef is one sibling in a reorder plan. Pillars, areas, projects,
// and tasks all reorder the same way, so the planner works on these
// instead of concrete entities.
type RankedRef struct {
	ID        string
	Rank      string
	CreatedAt time.Time
}

// ReorderResult lists the rank rewrites that realize an index move.
// RankByID holds only siblings whose ranks change; WindowIDs, in final
// order, names the rows rewritten when the planner had to rebalance.
type ReorderResult struct {
	RankByID     map[string]string
	WindowIDs    []string
	UsedFallback bool
}

// SortRankedRefs sorts siblings in place: by rank when both sides carry
// one, with CreatedAt then ID breaking ties and standing in for missing
// ranks. This is the display order everywhere.
func SortRankedRefs(refs []RankedRef) {
	sort.SliceStable(refs, func(i, j int) bool {
		return rankedLess(refs[i], refs[j])
	})
}

func rankedLess(a, b RankedRef) bool {
	ra, rb := strings.TrimSpace(a.Rank), strings.TrimSpace(b.Rank)
	if ra != "" && rb != "" && ra != rb {
		return ra < rb
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// PlanReorderRanks plans the rank updates that move one sibling to
// insertAt, where insertAt indexes the sibling list with the moved row
// already removed. The fast path touches only the moved row; when the
// slot's neighbor ranks are unusable (duplicates, no room between), the
// smallest surrounding window with usable outer bounds is reranked.
func PlanReorderRanks(sibs []RankedRef, movedID string, insertAt int) (ReorderResult, error) {
	movedID = strings.TrimSpace(movedID)
	if movedID == "" {
		return ReorderResult{}, errors.New("missing moved id")
	}
	if len(sibs) == 0 {
		return ReorderResult{RankByID: map[string]string{}}, nil
	}

	order := append([]RankedRef(nil), sibs...)
	SortRankedRefs(order)

	movedIdx := -1
	for i := range order {
		if strings.TrimSpace(order[i].ID) == movedID {
			movedIdx = i
			break
		}
	}
	if movedIdx < 0 {
		return ReorderResult{}, errors.New("moved row not in sibling set")
	}
	moved := order[movedIdx]

	rest := append(append([]RankedRef(nil), order[:movedIdx]...), order[movedIdx+1:]...)
	insertAt = clampIndex(insertAt, len(rest))
	if insertAt == clampIndex(movedIdx, len(rest)) {
		// Same slot; nothing to rewrite.
		return ReorderResult{RankByID: map[string]string{}}, nil
	}
	// Moving up displaces the rows after the slot, so a rebalance should
	// spread right rather than pull in earlier siblings.
	rightFirst := insertAt < clampIndex(movedIdx, len(rest))

	final := make([]RankedRef, 0, len(order))
	final = append(final, rest[:insertAt]...)
	final = append(final, moved)
	final = append(final, rest[insertAt:]...)

	// Fast path: rerank just the moved row between its new neighbors.
	if lower, upper := boundsAt(final, insertAt, insertAt); lower == "" || upper == "" || lower < upper {
		taken := rankSetExcluding(final, map[string]bool{movedID: true})
		if r, err := RankBetweenUnique(taken, lower, upper); err == nil {
			if strings.TrimSpace(moved.Rank) == r {
				return ReorderResult{RankByID: map[string]string{}}, nil
			}
			return ReorderResult{RankByID: map[string]string{movedID: r}}, nil
		}
	}

	// Rebalance the smallest window around the slot with usable bounds.
	lo, hi := rebalanceWindow(final, insertAt, rightFirst)
	lower, upper := boundsAt(final, lo, hi)

	window := map[string]bool{}
	for i := lo; i <= hi; i++ {
		window[strings.TrimSpace(final[i].ID)] = true
	}
	taken := rankSetExcluding(final, window)

	res := ReorderResult{
		RankByID:     map[string]string{},
		WindowIDs:    make([]string, 0, hi-lo+1),
		UsedFallback: true,
	}
	prev := lower
	for i := lo; i <= hi; i++ {
		id := strings.TrimSpace(final[i].ID)
		if id == "" {
			continue
		}
		r, err := RankBetweenUnique(taken, prev, upper)
		if err != nil {
			return ReorderResult{}, err
		}
		taken[r] = true
		res.RankByID[id] = r
		res.WindowIDs = append(res.WindowIDs, id)
		prev = r
	}
	return res, nil
}

// boundsAt returns the trimmed ranks flanking the window [lo, hi].
// Either side is empty at the edge of the sibling list.
func boundsAt(refs []RankedRef, lo, hi int) (lower, upper string) {
	if lo > 0 {
		lower = strings.TrimSpace(refs[lo-1].Rank)
	}
	if hi+1 < len(refs) {
		upper = strings.TrimSpace(refs[hi+1].Rank)
	}
	return lower, upper
}

func rankSetExcluding(refs []RankedRef, exclude map[string]bool) map[string]bool {
	taken := make(map[string]bool, len(refs))
	for _, ref := range refs {
		if exclude[strings.TrimSpace(ref.ID)] {
			continue
		}
		if r := normalizeRank(ref.Rank); r != "" {
			taken[r] = true
		}
	}
	return taken
}

func clampIndex(i, max int) int {
	switch {
	case i < 0:
		return 0
	case i > max:
		return max
	}
	return i
}

// rebalanceWindow finds the smallest contiguous window containing slot
// whose outer bounds are open-ended or leave room between them. Among
// equal sizes, rightFirst decides which side of the slot the window
// grows toward.
func rebalanceWindow(final []RankedRef, slot int, rightFirst bool) (int, int) {
	n := len(final)
	if slot < 0 || slot >= n {
		return 0, n - 1
	}

	usable := func(lo, hi int) bool {
		lower, upper := boundsAt(final, lo, hi)
		if lower == "" || upper == "" {
			return true
		}
		if lower >= upper {
			return false
		}
		// Ordered bounds can still be prefix-adjacent ("y" < "y0") with
		// no room between; probe once. One rank of space is enough: a
		// generated rank is never prefix-adjacent to the upper bound,
		// so the rest of the window fits.
		_, err := RankBetween(lower, upper)
		return err == nil
	}

	for size := 1; size <= n; size++ {
		first := slot - size + 1
		if first < 0 {
			first = 0
		}
		last := slot
		if last > n-size {
			last = n - size
		}
		if rightFirst {
			for lo := last; lo >= first; lo-- {
				if usable(lo, lo+size-1) {
					return lo, lo + size - 1
				}
			}
		} else {
			for lo := first; lo <= last; lo++ {
				if usable(lo, lo+size-1) {
					return lo, lo + size - 1
				}
			}
		}
	}
	return 0, n - 1
}
