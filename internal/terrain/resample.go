package terrain

import (
	"math"

	"github.com/sytelus/highpoint/internal/errs"
)

// Smoothed returns a new elevation buffer the same shape as g, with a
// separable 3x3 Gaussian kernel (sigma approx 1 cell) applied. No-data
// cells are excluded from the weighted average rather than treated as
// zero, matching spec.md §4.1 step 2 ("lightweight smoothing... to
// suppress single-pixel spikes") without bleeding NoData into neighbors.
func (g *Grid) Smoothed() []float64 {
	kernel := gaussianKernel3x3(1.0)
	out := make([]float64, len(g.elevations))
	for row := 0; row < g.rows; row++ {
		for col := 0; col < g.cols; col++ {
			if IsNoData(g.At(row, col)) {
				out[row*g.cols+col] = NoData
				continue
			}
			var sum, weight float64
			for dr := -1; dr <= 1; dr++ {
				for dc := -1; dc <= 1; dc++ {
					r, c := row+dr, col+dc
					if !g.InBounds(r, c) {
						continue
					}
					v := g.At(r, c)
					if IsNoData(v) {
						continue
					}
					w := kernel[dr+1][dc+1]
					sum += v * w
					weight += w
				}
			}
			if weight == 0 {
				out[row*g.cols+col] = NoData
			} else {
				out[row*g.cols+col] = sum / weight
			}
		}
	}
	return out
}

func gaussianKernel3x3(sigma float64) [3][3]float64 {
	var kernel [3][3]float64
	var total float64
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			v := math.Exp(-float64(dr*dr+dc*dc) / (2 * sigma * sigma))
			kernel[dr+1][dc+1] = v
			total += v
		}
	}
	for dr := 0; dr < 3; dr++ {
		for dc := 0; dc < 3; dc++ {
			kernel[dr][dc] /= total
		}
	}
	return kernel
}

// Resampled returns a new Grid scaled by factor: values below 1 sharpen
// (more cells, finer spacing), values above 1 coarsen (fewer cells,
// wider spacing), per spec.md §4.1 step 1. Sampling uses bilinear
// interpolation over the source grid; target points past the source edge
// are clamped to it, and target cells with no valid interpolation corner
// are written as NoData.
func (g *Grid) Resampled(factor float64) (*Grid, error) {
	if factor <= 0 {
		return nil, errs.Invalid("terrain: resolution_scale must be positive")
	}
	if factor == 1 {
		cp := make([]float64, len(g.elevations))
		copy(cp, g.elevations)
		return &Grid{elevations: cp, rows: g.rows, cols: g.cols, originX: g.originX, originY: g.originY, cellSizeM: g.cellSizeM}, nil
	}

	newCellSize := g.cellSizeM * factor
	newRows := maxInt(1, int(math.Round(float64(g.rows)/factor)))
	newCols := maxInt(1, int(math.Round(float64(g.cols)/factor)))

	out := make([]float64, newRows*newCols)
	for row := 0; row < newRows; row++ {
		for col := 0; col < newCols; col++ {
			x := g.originX + float64(col)*newCellSize
			y := g.originY + float64(row)*newCellSize
			v, ok := g.Sample(x, y)
			if !ok {
				out[row*newCols+col] = NoData
			} else {
				out[row*newCols+col] = v
			}
		}
	}
	return &Grid{
		elevations: out,
		rows:       newRows,
		cols:       newCols,
		originX:    g.originX,
		originY:    g.originY,
		cellSizeM:  newCellSize,
	}, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

