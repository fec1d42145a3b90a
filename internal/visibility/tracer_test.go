package visibility

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sytelus/highpoint/internal/terrain"
)

func baseOptions() Options {
	return Options{
		ObserverEyeHeightM:  2,
		ObstructionStartM:   40,
		ObstructionHeightM:  2, // equal to eye height: threshold 0, moat trivially clears
		MinVisibilityM:      100,
		MinFOVDeg:           0,
		AzimuthDeg:          0,
		AzimuthToleranceDeg: 180,
		RaysFullCircle:      8,
		MaxVisibilityM:      2000,
	}
}

// conicalSlope builds a 401x401, 10m grid sloping down from a center peak
// at a constant 10% grade, with no near-field cliff: elevation(d) =
// 1000 - 0.1*d. A constant downslope keeps the horizon angle monotonically
// increasing with distance, so the entire ray should stay visible out to
// max_visibility_m.
func conicalSlope(t *testing.T) (*terrain.Grid, Observer) {
	t.Helper()
	const n = 401
	const cellSize = 10.0
	elevations := make([]float64, n*n)
	cx, cy := float64(n/2), float64(n/2)
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			dx := (float64(col) - cx) * cellSize
			dy := (float64(row) - cy) * cellSize
			d := dx*dx + dy*dy
			elevations[row*n+col] = 1000 - 0.1*math.Sqrt(d)
		}
	}
	g, err := terrain.NewGrid(elevations, n, n, 0, 0, cellSize)
	require.NoError(t, err)
	x, y := g.CellCenter(n/2, n/2)
	return g, Observer{X: x, Y: y, ElevationM: 1000}
}

func TestTrace_ConstantDownslope_RemainsVisibleThroughoutRange(t *testing.T) {
	grid, observer := conicalSlope(t)
	opts := baseOptions()

	metrics, err := Trace(grid, observer, opts)
	require.NoError(t, err)

	require.True(t, metrics.Survives())
	assert.Equal(t, opts.RaysFullCircle, metrics.ClearedRayCount)
	for _, r := range metrics.Rays {
		assert.True(t, r.ClearedMoat)
		assert.Greater(t, r.MaxDistanceM, 1000.0, "a constant downslope should stay visible nearly to max_visibility_m")
	}
	assert.InDelta(t, 360.0, metrics.FOVDeg, 1e-9, "full circle should meet the visibility requirement")
}

func TestTrace_FlatTerrain_ObstructionTallerThanEyeHeight_NeverClearsMoat(t *testing.T) {
	const n = 21
	elevations := make([]float64, n*n)
	for i := range elevations {
		elevations[i] = 500
	}
	grid, err := terrain.NewGrid(elevations, n, n, 0, 0, 10)
	require.NoError(t, err)
	x, y := grid.CellCenter(n/2, n/2)
	observer := Observer{X: x, Y: y, ElevationM: 500}

	opts := baseOptions()
	opts.ObserverEyeHeightM = 2
	opts.ObstructionHeightM = 10 // > eye height: the moat can never be cleared on flat ground

	metrics, err := Trace(grid, observer, opts)
	require.NoError(t, err)

	assert.False(t, metrics.Survives(), "a candidate with no local relief must be discarded")
	assert.Equal(t, 0, metrics.ClearedRayCount)
	for _, r := range metrics.Rays {
		assert.False(t, r.ClearedMoat)
		assert.Equal(t, 0.0, r.MaxDistanceM)
	}
}

func TestTrace_NoDataTerminatesRayAtLastValidStep(t *testing.T) {
	const n = 101
	const cellSize = 10.0
	elevations := make([]float64, n*n)
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			if col >= 80 {
				elevations[row*n+col] = terrain.NoData
			} else {
				elevations[row*n+col] = 1000
			}
		}
	}
	grid, err := terrain.NewGrid(elevations, n, n, 0, 0, cellSize)
	require.NoError(t, err)
	x, y := grid.CellCenter(50, 10) // x=100, y=500
	observer := Observer{X: x, Y: y, ElevationM: 1000}

	opts := baseOptions()
	opts.RaysFullCircle = 4 // azimuths 0 (N), 90 (E), 180 (S), 270 (W)
	opts.MaxVisibilityM = 900

	metrics, err := Trace(grid, observer, opts)
	require.NoError(t, err)

	eastRay := metrics.Rays[1]
	assert.InDelta(t, 90.0, eastRay.AzimuthDeg, 1e-9)
	assert.True(t, eastRay.ClearedMoat)
	// NoData begins exactly at x=800 (d=700 from x=100); the ray must stop
	// one step short of it, not continue past.
	assert.InDelta(t, 690.0, eastRay.MaxDistanceM, 1e-6)
}

func TestTrace_RejectsNilGrid(t *testing.T) {
	_, err := Trace(nil, Observer{}, baseOptions())
	assert.Error(t, err)
}

func TestTrace_RejectsTooFewRays(t *testing.T) {
	opts := baseOptions()
	opts.RaysFullCircle = 2
	g, observer := conicalSlope(t)
	_, err := Trace(g, observer, opts)
	assert.Error(t, err)
}
