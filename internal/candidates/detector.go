// Package candidates implements the Candidate Detector (spec.md §4.1):
// scanning a smoothed terrain grid for strict local maxima, reporting each
// one's unsmoothed elevation and window prominence. No minimum-elevation
// threshold is applied: every non-no-data local maximum is reported.
package candidates

import (
	"math"

	"github.com/sytelus/highpoint/internal/errs"
	"github.com/sytelus/highpoint/internal/terrain"
)

// Candidate is a DEM cell identified as a local maximum (spec.md §3,
// TerrainCandidate).
type Candidate struct {
	Row, Col     int
	X, Y         float64
	ElevationM   float64
	ProminenceM  float64
}

// Options configures detection. NeighborhoodRadiusCells defaults to 3 when
// zero, matching spec.md §4.1's stated default.
type Options struct {
	NeighborhoodRadiusCells int
	ResolutionScale         float64 // 0 or 1 means no resampling
}

// Detect scans grid for strict local maxima within a (2k+1)x(2k+1) window,
// after an optional resample and a Gaussian smoothing pass used only for
// peak selection (spec.md §4.1 steps 1-3). Elevation and prominence are
// read from the unsmoothed (but possibly resampled) grid, per step 4-5.
func Detect(grid *terrain.Grid, opts Options) ([]Candidate, error) {
	if grid == nil {
		return nil, errs.Invalid("candidates: terrain grid is required")
	}
	k := opts.NeighborhoodRadiusCells
	if k <= 0 {
		k = 3
	}

	working := grid
	if opts.ResolutionScale > 0 && opts.ResolutionScale != 1 {
		resampled, err := grid.Resampled(opts.ResolutionScale)
		if err != nil {
			return nil, err
		}
		working = resampled
	}

	smoothed := working.Smoothed()
	rows, cols := working.Rows(), working.Cols()

	var out []Candidate
	for row := k; row < rows-k; row++ {
		for col := k; col < cols-k; col++ {
			if terrain.IsNoData(working.At(row, col)) {
				continue
			}
			ok, prominence := isLocalMax(working, smoothed, row, col, k)
			if !ok {
				continue
			}
			x, y := working.CellCenter(row, col)
			out = append(out, Candidate{
				Row:         row,
				Col:         col,
				X:           x,
				Y:           y,
				ElevationM:  working.At(row, col),
				ProminenceM: prominence,
			})
		}
	}
	return out, nil
}

// isLocalMax reports whether the smoothed value at (row, col) equals the
// window maximum and strictly exceeds at least one neighbor (spec.md
// §4.1 step 3, with plateau ties broken by only ever emitting the
// lowest-index cell that attains the window max, enforced here by
// requiring (row, col) to be the first cell, in row-major order, to
// reach the maximum).
func isLocalMax(working *terrain.Grid, smoothed []float64, row, col, k int) (bool, float64) {
	cols := working.Cols()
	center := smoothed[row*cols+col]

	windowMax := math.Inf(-1)
	windowMin := math.Inf(1)
	strictlyExceedsSomeone := false
	firstAtMaxRow, firstAtMaxCol := -1, -1

	for dr := -k; dr <= k; dr++ {
		for dc := -k; dc <= k; dc++ {
			r, c := row+dr, col+dc
			if !working.InBounds(r, c) {
				continue
			}
			sv := smoothed[r*cols+c]
			if terrain.IsNoData(sv) {
				// Treat as -inf for the max, per spec.md §4.1 Failure policy.
				continue
			}
			if sv > windowMax {
				windowMax = sv
				firstAtMaxRow, firstAtMaxCol = r, c
			}
			if dr != 0 || dc != 0 {
				if center > sv {
					strictlyExceedsSomeone = true
				}
			}
			uv := working.At(r, c)
			if !terrain.IsNoData(uv) && uv < windowMin {
				windowMin = uv
			}
		}
	}

	if windowMax == math.Inf(-1) {
		return false, 0
	}
	if center != windowMax {
		return false, 0
	}
	if !strictlyExceedsSomeone {
		return false, 0
	}
	// Plateau tiebreak: only the lowest (row, col) attaining the window
	// max is emitted as the candidate.
	if firstAtMaxRow != row || firstAtMaxCol != col {
		return false, 0
	}
	if windowMin == math.Inf(1) {
		windowMin = working.At(row, col)
	}
	prominence := working.At(row, col) - windowMin
	return true, prominence
}
