package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sytelus/highpoint/internal/candidates"
	"github.com/sytelus/highpoint/internal/visibility"
)

func survivor(row, col int, x, y, elevation, maxDist float64) Survivor {
	return Survivor{
		Candidate: candidates.Candidate{Row: row, Col: col, X: x, Y: y, ElevationM: elevation},
		Metrics:   visibility.Metrics{MaxDistanceM: maxDist},
	}
}

// TestReduce_TwoHillsCloseTogether mirrors spec.md §8 scenario S5: two
// peaks about 78m apart fall into the same 250m bin, and the higher one wins.
func TestReduce_TwoHillsCloseTogether(t *testing.T) {
	low := survivor(10, 10, 100, 100, 300, 5000)
	high := survivor(11, 12, 150, 160, 320, 4000)

	out := Reduce([]Survivor{low, high}, 250)

	require.Len(t, out, 1)
	assert.Equal(t, 320.0, out[0].Candidate.ElevationM)
}

func TestReduce_DistinctBinsSurviveIndependently(t *testing.T) {
	a := survivor(0, 0, 10, 10, 300, 1000)
	b := survivor(0, 0, 1000, 1000, 310, 1000)

	out := Reduce([]Survivor{a, b}, 250)
	assert.Len(t, out, 2)
}

func TestReduce_TiesBreakByMaxDistanceThenRowCol(t *testing.T) {
	same1 := survivor(5, 5, 10, 10, 300, 2000)
	same2 := survivor(4, 4, 20, 20, 300, 3000) // same elevation, longer view wins
	out := Reduce([]Survivor{same1, same2}, 250)
	require.Len(t, out, 1)
	assert.Equal(t, 3000.0, out[0].Metrics.MaxDistanceM)

	tie1 := survivor(5, 5, 10, 10, 300, 3000)
	tie2 := survivor(4, 6, 20, 20, 300, 3000) // same elevation and view, lower row wins
	out = Reduce([]Survivor{tie1, tie2}, 250)
	require.Len(t, out, 1)
	assert.Equal(t, 4, out[0].Candidate.Row)
}

func TestReduce_HandlesNegativeCoordinatesForBinning(t *testing.T) {
	a := survivor(0, 0, -10, -10, 300, 1000)
	b := survivor(0, 0, -260, -10, 310, 1000) // one bin to the west at gridM=250
	out := Reduce([]Survivor{a, b}, 250)
	assert.Len(t, out, 2)
}

func TestReduce_EmptyInput(t *testing.T) {
	out := Reduce(nil, 250)
	assert.Empty(t, out)
}
