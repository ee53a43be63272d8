package collision

import (
	"github.com/opd-ai/go-collide/pkg/geometry"
	"github.com/opd-ai/go-collide/pkg/narrow"
	"github.com/opd-ai/go-collide/pkg/spatial"
)

// Brute tests every pair of objs with tester, or narrow.Collide when
// tester is nil. Pairs keep the order of objs.
func Brute(objs []geometry.Shape, tester spatial.Tester) []spatial.Pair {
	if tester == nil {
		tester = narrow.Collide
	}
	var out []spatial.Pair
	for i := range objs {
		for j := i + 1; j < len(objs); j++ {
			if tester(objs[i], objs[j]) {
				out = append(out, spatial.Pair{A: objs[i], B: objs[j]})
			}
		}
	}
	return out
}

// PairKey identifies a pair regardless of orientation.
type PairKey [2]geometry.Shape

// PairSet collects pairs keyed by identity, oriented by their position in
// objs. Shapes missing from objs sort first.
func PairSet(objs []geometry.Shape, pairs []spatial.Pair) map[PairKey]int {
	pos := make(map[geometry.Shape]int, len(objs))
	for i, o := range objs {
		pos[o] = i
	}
	set := make(map[PairKey]int, len(pairs))
	for _, p := range pairs {
		a, b := p.A, p.B
		if pos[b] < pos[a] {
			a, b = b, a
		}
		set[PairKey{a, b}]++
	}
	return set
}

// SamePairs reports whether two pair lists hold the same distinct pairs.
func SamePairs(objs []geometry.Shape, x, y []spatial.Pair) bool {
	sx, sy := PairSet(objs, x), PairSet(objs, y)
	if len(sx) != len(sy) {
		return false
	}
	for k := range sx {
		if _, ok := sy[k]; !ok {
			return false
		}
	}
	return true
}
