// Package highpoint identifies drivable scenic viewpoints from a digital
// elevation model and a drivable-road vector layer: it detects candidate
// summits, casts rays to score their visibility, reduces redundant
// candidates, scores how far each is from the road network, and returns a
// ranked list of ScoredCandidate records.
//
// The package is a deterministic library; RunPipeline is single-threaded
// and RunPipelineParallel is the opt-in concurrent variant. It never
// performs I/O: callers load the DEM and road network themselves (see
// NewTerrainGrid and RoadSegment) and pass a validated VisibilityRequest
// describing the run.
package highpoint

import (
	"context"

	"github.com/sytelus/highpoint/internal/config"
	"github.com/sytelus/highpoint/internal/errs"
	"github.com/sytelus/highpoint/internal/pipeline"
	"github.com/sytelus/highpoint/internal/roads"
	"github.com/sytelus/highpoint/internal/terrain"
)

// TerrainGrid is an immutable projected elevation raster (spec.md §3).
type TerrainGrid = terrain.Grid

// NoData marks a missing elevation sample.
const NoData = terrain.NoData

// NewTerrainGrid constructs a TerrainGrid from a row-major elevation
// array. elevations must have exactly rows*cols entries; originX/originY
// are the projected coordinates of cell (0,0)'s center.
func NewTerrainGrid(elevations []float64, rows, cols int, originX, originY, cellSizeM float64) (*TerrainGrid, error) {
	return terrain.NewGrid(elevations, rows, cols, originX, originY, cellSizeM)
}

// Point is a projected-coordinate pair in the pipeline's CRS.
type Point = roads.Point

// RoadSegment is an ordered polyline of at least two projected points
// (spec.md §3).
type RoadSegment = roads.Segment

// VisibilityRequest is the frozen per-run config snapshot (spec.md §3).
type VisibilityRequest = config.VisibilityRequest

// DefaultVisibilityRequest returns the spec's stated defaults. Callers
// typically start from this and override the fields their caller cares
// about.
func DefaultVisibilityRequest() VisibilityRequest {
	return config.Default()
}

// LoadVisibilityRequestYAML decodes and validates a YAML-encoded
// VisibilityRequest, defaulting any field the document omits.
func LoadVisibilityRequestYAML(data []byte) (VisibilityRequest, error) {
	return config.LoadYAML(data)
}

// ScoredCandidate bundles a candidate's position, visibility metrics,
// road access, and composite score (spec.md §3).
type ScoredCandidate = pipeline.Record

// StageCounts reports how many records survived each pipeline stage.
type StageCounts = pipeline.StageCounts

// PipelineOutput is the result of a RunPipeline call (spec.md §6).
type PipelineOutput = pipeline.Output

// Sentinel error kinds surfaced by RunPipeline (spec.md §7). Use
// errors.Is against ErrInvalidInput/ErrCancelled/ErrInternal, and
// errors.As against *EmptyPipelineError to recover which stage emptied.
var (
	ErrInvalidInput = errs.ErrInvalidInput
	ErrCancelled    = errs.ErrCancelled
	ErrInternal     = errs.ErrInternal
)

// EmptyPipelineError reports that the pipeline completed but a named
// stage produced zero survivors (spec.md §7). It is not a fatal error:
// RunPipeline returns it alongside an empty PipelineOutput.
type EmptyPipelineError = errs.EmptyPipelineError

// RunPipeline is the engine's single entry point (spec.md §6): it
// sequences candidate detection, visibility tracing, cluster reduction,
// drivability scoring and composite ranking over grid and roads, per
// req, and returns the ranked ScoredCandidate list.
//
// RunPipeline never mutates grid, roads, or req. It checks ctx for
// cancellation between stages; a cancelled context yields ErrCancelled.
func RunPipeline(ctx context.Context, grid *TerrainGrid, roadSegments []RoadSegment, req VisibilityRequest) (PipelineOutput, error) {
	network, err := roads.NewNetwork(roadSegments)
	if err != nil {
		return PipelineOutput{}, err
	}
	return pipeline.Run(ctx, grid, network, pipeline.Options{Request: req})
}

// RunPipelineParallel behaves like RunPipeline but fans the Visibility
// Tracer out across candidates using a bounded worker pool (spec.md §5:
// an implementation freedom, not a requirement). Output ordering is
// identical to RunPipeline's for the same inputs.
func RunPipelineParallel(ctx context.Context, grid *TerrainGrid, roadSegments []RoadSegment, req VisibilityRequest) (PipelineOutput, error) {
	network, err := roads.NewNetwork(roadSegments)
	if err != nil {
		return PipelineOutput{}, err
	}
	return pipeline.Run(ctx, grid, network, pipeline.Options{Request: req, Parallel: true})
}
