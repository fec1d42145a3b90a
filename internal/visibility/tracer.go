// Package visibility implements the Visibility Tracer (spec.md §4.2): for
// each candidate, N radial rays are cast across the terrain grid, a
// synthetic near-field obstruction model is applied, and a per-ray and
// aggregate VisibilityMetrics record is produced.
//
// This is the dominant-cost, dominant-complexity stage (spec.md §2 budgets
// it at ~35%).
package visibility

import (
	"math"
	"sort"

	"github.com/sytelus/highpoint/internal/errs"
	"github.com/sytelus/highpoint/internal/terrain"
)

// Observer is the minimal candidate shape the tracer needs: a projected
// position and an elevation to cast rays from.
type Observer struct {
	X, Y       float64
	ElevationM float64
}

// Options configures a trace run. All fields come directly from spec.md
// §3's VisibilityRequest.
type Options struct {
	ObserverEyeHeightM  float64
	ObstructionStartM   float64
	ObstructionHeightM  float64
	MinVisibilityM      float64
	MinFOVDeg           float64
	AzimuthDeg          float64
	AzimuthToleranceDeg float64
	RaysFullCircle      int
	MaxVisibilityM      float64
}

// RayResult is one ray's outcome (spec.md §3).
type RayResult struct {
	AzimuthDeg   float64
	MaxDistanceM float64
	ClearedMoat  bool
}

// Metrics aggregates every ray cast from one candidate (spec.md §3).
type Metrics struct {
	Rays            []RayResult
	MaxDistanceM    float64
	MeanDistanceM   float64
	MedianDistanceM float64
	ClearedRayCount int
	FOVDeg          float64
}

// Survives reports whether at least one ray cleared the moat (spec.md
// §4.2, "Candidate rejection").
func (m Metrics) Survives() bool { return m.ClearedRayCount > 0 }

// Trace casts opts.RaysFullCircle rays from observer across grid and
// returns the aggregate metrics.
func Trace(grid *terrain.Grid, observer Observer, opts Options) (Metrics, error) {
	if grid == nil {
		return Metrics{}, errs.Invalid("visibility: terrain grid is required")
	}
	if opts.RaysFullCircle < 4 {
		return Metrics{}, errs.Invalid("visibility: rays_full_circle must be >= 4")
	}

	cellSize := grid.CellSizeM()
	maxSteps := int(math.Floor(opts.MaxVisibilityM / cellSize))
	moatSteps := int(math.Floor(opts.ObstructionStartM / cellSize))

	n := opts.RaysFullCircle
	azStep := 360.0 / float64(n)

	rays := make([]RayResult, n)
	var inSectorDistances []float64
	var meetingRequirement int

	for i := 0; i < n; i++ {
		azimuth := float64(i) * azStep
		rays[i] = traceRay(grid, observer, azimuth, cellSize, maxSteps, moatSteps, opts)

		if inSector(azimuth, opts.AzimuthDeg, opts.AzimuthToleranceDeg) {
			inSectorDistances = append(inSectorDistances, rays[i].MaxDistanceM)
			if rays[i].MaxDistanceM >= opts.MinVisibilityM {
				meetingRequirement++
			}
		}
	}

	metrics := Metrics{Rays: rays}
	for _, r := range rays {
		if r.MaxDistanceM > metrics.MaxDistanceM {
			metrics.MaxDistanceM = r.MaxDistanceM
		}
		if r.ClearedMoat {
			metrics.ClearedRayCount++
		}
	}
	metrics.MeanDistanceM, metrics.MedianDistanceM = meanMedian(inSectorDistances)
	metrics.FOVDeg = azStep * float64(meetingRequirement)

	return metrics, nil
}

// traceRay casts one ray at azimuthDeg (clockwise from north, i.e. +y) and
// returns its RayResult per spec.md §4.2's authoritative algorithm.
func traceRay(grid *terrain.Grid, observer Observer, azimuthDeg, cellSize float64, maxSteps, moatSteps int, opts Options) RayResult {
	rad := azimuthDeg * math.Pi / 180
	sinT, cosT := math.Sin(rad), math.Cos(rad)

	eObs := observer.ElevationM + opts.ObserverEyeHeightM

	// Clearance pre-check: scan moat samples (d <= obstruction_start_m,
	// including s=0) for at least one sufficient bare-terrain drop.
	cleared := false
	for s := 0; s <= moatSteps; s++ {
		d := float64(s) * cellSize
		x := observer.X + d*sinT
		y := observer.Y + d*cosT
		bare, ok := grid.Sample(x, y)
		if !ok {
			continue
		}
		drop := observer.ElevationM - bare
		if drop >= opts.ObstructionHeightM-opts.ObserverEyeHeightM {
			cleared = true
			break
		}
	}
	if !cleared {
		return RayResult{AzimuthDeg: azimuthDeg, MaxDistanceM: 0, ClearedMoat: false}
	}

	// Horizon-angle walk: a sample at distance d is visible iff its
	// elevation angle is >= the largest elevation angle seen at any
	// closer distance. The farthest visible sample sets max_distance_m.
	alphaMax := math.Inf(-1)
	maxDistance := 0.0

	for s := 1; s <= maxSteps; s++ {
		d := float64(s) * cellSize
		x := observer.X + d*sinT
		y := observer.Y + d*cosT
		bare, ok := grid.Sample(x, y)
		if !ok {
			// No-data: terminate the ray at the previous valid step.
			break
		}

		canopy := bare
		if d > opts.ObstructionStartM {
			canopy += opts.ObstructionHeightM
		}

		alpha := (canopy - eObs) / d
		if alpha >= alphaMax {
			maxDistance = d
		}
		if alpha > alphaMax {
			alphaMax = alpha
		}
	}

	return RayResult{AzimuthDeg: azimuthDeg, MaxDistanceM: maxDistance, ClearedMoat: true}
}

// inSector reports whether azimuth lies within [center-tolerance,
// center+tolerance] on the 360-degree circle (spec.md §4.2, "Sector
// metrics").
func inSector(azimuth, center, tolerance float64) bool {
	diff := math.Abs(azimuth - center)
	if diff > 180 {
		diff = 360 - diff
	}
	return diff <= tolerance
}

func meanMedian(values []float64) (mean, median float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(len(values))

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		median = sorted[mid]
	} else {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}
	return mean, median
}
