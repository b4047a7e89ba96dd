package store

import (
	"errors"
	"fmt"
	"strings"
)

// Sibling order (pillars within a user, areas within a pillar, and so
// on) is kept as lowercase base36 strings compared lexicographically.
// Inserting between two neighbors picks a midpoint digit, so a reorder
// never rewrites the rest of the sibling set.
const rankAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

const rankMaxLen = 256

func normalizeRank(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// digitAt reads position i of a normalized rank, falling back to def
// past the end. ok is false on a character outside the alphabet.
func digitAt(s string, i, def int) (d int, ok bool) {
	if i >= len(s) {
		return def, true
	}
	d = strings.IndexByte(rankAlphabet, s[i])
	return d, d >= 0
}

// RankBetween returns a rank strictly between a and b. Empty a means no
// lower bound, empty b no upper bound. Fails when the bounds are out of
// order or adjacent (nothing sorts between "y" and "y0": end-of-string
// precedes every digit).
func RankBetween(a, b string) (string, error) {
	a, b = normalizeRank(a), normalizeRank(b)
	if a != "" && b != "" && a >= b {
		return "", fmt.Errorf("rank bounds out of order: %q >= %q", a, b)
	}

	within := func(r string) bool {
		return r != "" && (a == "" || a < r) && (b == "" || r < b)
	}

	var prefix strings.Builder
	for i := 0; i < rankMaxLen; i++ {
		da, ok := digitAt(a, i, 0)
		if !ok {
			return "", fmt.Errorf("rank %q: invalid character", a)
		}
		db, ok := digitAt(b, i, len(rankAlphabet)-1)
		if !ok {
			return "", fmt.Errorf("rank %q: invalid character", b)
		}

		switch {
		case da == db:
			prefix.WriteByte(rankAlphabet[da])

		case db-da > 1:
			prefix.WriteByte(rankAlphabet[(da+db)/2])
			if r := prefix.String(); within(r) {
				return r, nil
			}
			return "", errors.New("no space between ranks")

		default:
			// Adjacent digits: extending a with the minimal digit stays
			// above a and, since b already differs here, below b.
			if r := a + "0"; within(r) {
				return r, nil
			}
			return "", errors.New("no space between ranks")
		}
	}
	return "", errors.New("rank bounds too long")
}

// RankBetweenUnique returns a rank between lower and upper that is not
// in taken. Sibling ranks must stay unique: a duplicate would make the
// relative order of two rows depend on slice position, which duplicate
// and reorder cannot tolerate.
func RankBetweenUnique(taken map[string]bool, lower, upper string) (string, error) {
	lo := normalizeRank(lower)
	up := normalizeRank(upper)
	for i := 0; i < rankMaxLen; i++ {
		r, err := RankBetween(lo, up)
		if err != nil {
			return "", err
		}
		if !taken[r] {
			return r, nil
		}
		// Taken: tighten the lower bound past the collision and retry.
		lo = r
	}
	return "", errors.New("no unique rank available")
}
