// Package cluster implements the Cluster Reducer (spec.md §4.3): bins
// candidates into a square grid of configurable spacing and keeps one
// elevation-maximum survivor per occupied bin, so that nearby local maxima
// on the same hillside don't all surface as distinct viewpoints.
package cluster

import (
	"github.com/sytelus/highpoint/internal/candidates"
	"github.com/sytelus/highpoint/internal/visibility"
)

// Survivor pairs one detected candidate with its visibility metrics; it is
// the unit CR, DS and RK all operate on.
type Survivor struct {
	Candidate candidates.Candidate
	Metrics   visibility.Metrics
}

type binKey struct{ bx, by int }

// Reduce bins survivors by floor(x/gridM), floor(y/gridM) and keeps the
// tallest candidate per bin. Ties are broken by greater MaxDistanceM, then
// lower (row, col) (spec.md §4.3). Output order is unspecified by the
// spec; Reduce returns survivors in bin-discovery order for determinism.
func Reduce(survivors []Survivor, gridM float64) []Survivor {
	best := make(map[binKey]Survivor, len(survivors))
	var order []binKey

	for _, s := range survivors {
		key := binKey{
			bx: floorDiv(s.Candidate.X, gridM),
			by: floorDiv(s.Candidate.Y, gridM),
		}
		incumbent, ok := best[key]
		if !ok {
			best[key] = s
			order = append(order, key)
			continue
		}
		if better(s, incumbent) {
			best[key] = s
		}
	}

	out := make([]Survivor, 0, len(order))
	for _, key := range order {
		out = append(out, best[key])
	}
	return out
}

// better reports whether candidate a should replace incumbent b within the
// same bin, per spec.md §4.3's tie-break chain: greater elevation_m, then
// greater max_distance_m, then lower (row, col).
func better(a, b Survivor) bool {
	if a.Candidate.ElevationM != b.Candidate.ElevationM {
		return a.Candidate.ElevationM > b.Candidate.ElevationM
	}
	if a.Metrics.MaxDistanceM != b.Metrics.MaxDistanceM {
		return a.Metrics.MaxDistanceM > b.Metrics.MaxDistanceM
	}
	if a.Candidate.Row != b.Candidate.Row {
		return a.Candidate.Row < b.Candidate.Row
	}
	return a.Candidate.Col < b.Candidate.Col
}

func floorDiv(v, step float64) int {
	q := v / step
	f := int(q)
	if q < 0 && float64(f) != q {
		f--
	}
	return f
}
