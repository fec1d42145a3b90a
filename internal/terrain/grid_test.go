package terrain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatGrid(t *testing.T, rows, cols int, value, cellSize float64) *Grid {
	t.Helper()
	elevations := make([]float64, rows*cols)
	for i := range elevations {
		elevations[i] = value
	}
	g, err := NewGrid(elevations, rows, cols, 0, 0, cellSize)
	require.NoError(t, err)
	return g
}

func TestNewGrid_RejectsInvalidInputs(t *testing.T) {
	_, err := NewGrid([]float64{1, 2, 3, 4}, 2, 2, 0, 0, 0)
	assert.Error(t, err, "zero cell size must be rejected")

	_, err = NewGrid([]float64{1, 2, 3}, 2, 2, 0, 0, 10)
	assert.Error(t, err, "mismatched elevations length must be rejected")

	_, err = NewGrid([]float64{}, 0, 0, 0, 0, 10)
	assert.Error(t, err, "empty grid must be rejected")
}

func TestGrid_SampleBilinear(t *testing.T) {
	// 2x2 grid with distinct corners lets us verify interpolation weights.
	g, err := NewGrid([]float64{0, 10, 20, 30}, 2, 2, 0, 0, 10)
	require.NoError(t, err)

	v, ok := g.Sample(0, 0)
	require.True(t, ok)
	assert.InDelta(t, 0, v, 1e-9)

	v, ok = g.Sample(10, 10)
	require.True(t, ok)
	assert.InDelta(t, 30, v, 1e-9)

	// Midpoint averages all four corners equally.
	v, ok = g.Sample(5, 5)
	require.True(t, ok)
	assert.InDelta(t, 15, v, 1e-9)
}

func TestGrid_SampleClampsToInterior(t *testing.T) {
	g := flatGrid(t, 3, 3, 100, 10)
	v, ok := g.Sample(-500, -500)
	require.True(t, ok)
	assert.Equal(t, 100.0, v)

	v, ok = g.Sample(10000, 10000)
	require.True(t, ok)
	assert.Equal(t, 100.0, v)
}

func TestGrid_SampleAllNoData(t *testing.T) {
	g, err := NewGrid([]float64{NoData, NoData, NoData, NoData}, 2, 2, 0, 0, 10)
	require.NoError(t, err)
	_, ok := g.Sample(5, 5)
	assert.False(t, ok, "a cell surrounded entirely by no-data has no sample")
}

func TestGrid_Smoothed_PreservesFlatPlain(t *testing.T) {
	g := flatGrid(t, 5, 5, 100, 10)
	smoothed := g.Smoothed()
	for _, v := range smoothed {
		assert.InDelta(t, 100, v, 1e-9)
	}
}

func TestGrid_Resampled_Coarsen(t *testing.T) {
	g := flatGrid(t, 10, 10, 50, 10)
	coarse, err := g.Resampled(2.0)
	require.NoError(t, err)
	assert.Equal(t, 20.0, coarse.CellSizeM())
	assert.Equal(t, 5, coarse.Rows())
	assert.Equal(t, 5, coarse.Cols())
}

func TestGrid_Resampled_RejectsNonPositiveFactor(t *testing.T) {
	g := flatGrid(t, 3, 3, 1, 10)
	_, err := g.Resampled(0)
	assert.Error(t, err)
	_, err = g.Resampled(-1)
	assert.Error(t, err)
}
