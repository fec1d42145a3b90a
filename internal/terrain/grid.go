// Package terrain holds the immutable digital-elevation-model raster and
// the sampling primitives (bilinear interpolation, resampling, smoothing)
// that the rest of the pipeline builds on (spec.md §3, §4.1).
package terrain

import (
	"math"

	"github.com/sytelus/highpoint/internal/errs"
)

// NoData marks a missing elevation sample. Callers that load real DEM
// tiles are expected to strip their native sentinel (commonly -9999 or
// NaN) into this value before handing a Grid to the pipeline (see
// spec.md §6, "DEM loader").
const NoData = math.MinInt32

// Grid is an immutable projected elevation raster: a dense 2-D array of
// meters with a fixed cell size and an affine origin. It never mutates
// after construction.
type Grid struct {
	elevations []float64 // row-major, length Rows*Cols
	rows, cols int
	originX    float64
	originY    float64
	cellSizeM  float64
}

// NewGrid validates and constructs a Grid. elevations must have exactly
// rows*cols entries in row-major order; originX/originY are the projected
// coordinates of cell (0,0)'s center.
func NewGrid(elevations []float64, rows, cols int, originX, originY, cellSizeM float64) (*Grid, error) {
	if cellSizeM <= 0 {
		return nil, errs.Invalid("terrain: cell_size_m must be positive")
	}
	if rows <= 0 || cols <= 0 {
		return nil, errs.Invalid("terrain: grid must have at least one row and column")
	}
	if len(elevations) != rows*cols {
		return nil, errs.Invalidf("terrain: elevations length %d does not match rows*cols %d", len(elevations), rows*cols)
	}
	return &Grid{
		elevations: elevations,
		rows:       rows,
		cols:       cols,
		originX:    originX,
		originY:    originY,
		cellSizeM:  cellSizeM,
	}, nil
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// CellSizeM returns the uniform cell size in meters.
func (g *Grid) CellSizeM() float64 { return g.cellSizeM }

// IsNoData reports whether v is the no-data sentinel or NaN.
func IsNoData(v float64) bool {
	return math.IsNaN(v) || v == NoData
}

// At returns the raw elevation at (row, col) with no bounds checking: an
// out-of-range index panics or reads a different cell, so callers check
// InBounds or clamp the index first.
func (g *Grid) At(row, col int) float64 {
	return g.elevations[row*g.cols+col]
}

// InBounds reports whether (row, col) is a valid cell index.
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

// CellCenter returns the projected coordinates of the center of (row, col).
func (g *Grid) CellCenter(row, col int) (x, y float64) {
	return g.originX + float64(col)*g.cellSizeM, g.originY + float64(row)*g.cellSizeM
}

// Origin returns the projected coordinates of cell (0,0)'s center.
func (g *Grid) Origin() (x, y float64) { return g.originX, g.originY }

// RowColToXY is an alias of CellCenter kept for readability at call sites
// that think in terms of "where does this ray sample land".
func (g *Grid) RowColToXY(row, col float64) (x, y float64) {
	return g.originX + col*g.cellSizeM, g.originY + row*g.cellSizeM
}

// XYToRowCol converts projected coordinates to fractional row/col indices.
func (g *Grid) XYToRowCol(x, y float64) (row, col float64) {
	return (y - g.originY) / g.cellSizeM, (x - g.originX) / g.cellSizeM
}

// Sample performs bilinear interpolation at projected coordinates (x, y),
// clamping the sample point to the valid interior per spec.md §3's
// invariant. It returns (value, ok); ok is false when every corner of the
// interpolation cell that carries a non-zero weight is no-data.
func (g *Grid) Sample(x, y float64) (float64, bool) {
	row, col := g.XYToRowCol(x, y)
	return g.SampleRowCol(row, col)
}

// SampleRowCol performs bilinear interpolation at fractional (row, col),
// clamping to the interior [0, rows-1] x [0, cols-1].
func (g *Grid) SampleRowCol(row, col float64) (float64, bool) {
	if row < 0 {
		row = 0
	} else if row > float64(g.rows-1) {
		row = float64(g.rows - 1)
	}
	if col < 0 {
		col = 0
	} else if col > float64(g.cols-1) {
		col = float64(g.cols - 1)
	}

	r0 := int(math.Floor(row))
	c0 := int(math.Floor(col))
	r1 := r0 + 1
	c1 := c0 + 1
	if r1 > g.rows-1 {
		r1 = g.rows - 1
	}
	if c1 > g.cols-1 {
		c1 = g.cols - 1
	}

	fr := row - float64(r0)
	fc := col - float64(c0)

	v00 := g.At(r0, c0)
	v01 := g.At(r0, c1)
	v10 := g.At(r1, c0)
	v11 := g.At(r1, c1)

	var sum, weight float64
	accumulate := func(v, w float64) {
		if IsNoData(v) {
			return
		}
		sum += v * w
		weight += w
	}
	accumulate(v00, (1-fr)*(1-fc))
	accumulate(v01, (1-fr)*fc)
	accumulate(v10, fr*(1-fc))
	accumulate(v11, fr*fc)

	if weight == 0 {
		return 0, false
	}
	return sum / weight, true
}
