// Package pipeline implements the Pipeline Orchestrator (spec.md §4.6): it
// sequences Candidate Detection -> Visibility Tracing -> Cluster Reduction
// -> Drivability Scoring -> Composite Ranking, short-circuiting with a
// non-fatal EmptyPipeline outcome whenever a stage produces zero
// survivors, and assembles the final ScoredCandidate list.
package pipeline

import (
	"context"
	"runtime"
	"runtime/debug"

	prefaberrors "github.com/dpup/prefab/errors"
	"github.com/dpup/prefab/logging"
	"golang.org/x/sync/errgroup"

	"github.com/sytelus/highpoint/internal/candidates"
	"github.com/sytelus/highpoint/internal/cluster"
	"github.com/sytelus/highpoint/internal/config"
	"github.com/sytelus/highpoint/internal/drivability"
	"github.com/sytelus/highpoint/internal/errs"
	"github.com/sytelus/highpoint/internal/ranking"
	"github.com/sytelus/highpoint/internal/roads"
	"github.com/sytelus/highpoint/internal/terrain"
	"github.com/sytelus/highpoint/internal/visibility"
)

// Record is one ranked, fully-scored viewpoint (spec.md §3, ScoredCandidate).
type Record struct {
	Row, Col             int
	X, Y                 float64
	ElevationM           float64
	ProminenceM          float64
	MaxDistanceM         float64
	MeanDistanceM        float64
	MedianDistanceM      float64
	FOVDeg               float64
	ClearedRayCount      int
	AccessX, AccessY     float64
	DistanceM            float64
	WalkMinutes          float64
	DriveMinutesEstimate float64
	Score                float64
}

// StageCounts reports how many records survived each stage, for
// diagnostics and the status object spec.md §6 calls out.
type StageCounts struct {
	Candidates  int
	Visibility  int
	Cluster     int
	Drivability int
}

// Output is the pipeline's result (spec.md §6, PipelineOutput).
type Output struct {
	Records Records
	Counts  StageCounts
}

// Records is a ranked slice of Record.
type Records []Record

// Options bundles the validated request with the one execution freedom
// spec.md §5 grants implementations: whether to fan VT out across
// candidates. Ordering of the final output is unaffected either way.
type Options struct {
	Request  config.VisibilityRequest
	Parallel bool
}

// Run sequences CD -> VT -> CR -> DS -> RK over grid and network (spec.md
// §4.6). It checks ctx for cancellation between every stage.
func Run(ctx context.Context, grid *terrain.Grid, network *roads.Network, opts Options) (Output, error) {
	ctx = logging.EnsureLogger(ctx)
	req := opts.Request
	if err := req.Validate(); err != nil {
		return Output{}, err
	}
	if grid == nil {
		return Output{}, errs.Invalid("pipeline: terrain grid is required")
	}
	if network == nil {
		return Output{}, errs.Invalid("pipeline: road network is required")
	}

	if err := checkCancelled(ctx); err != nil {
		return Output{}, err
	}

	detected, err := candidates.Detect(grid, candidates.Options{
		NeighborhoodRadiusCells: 3,
		ResolutionScale:         req.ResolutionScale,
	})
	if err != nil {
		return Output{}, err
	}
	if len(detected) == 0 {
		return Output{}, errs.NewEmptyPipeline(errs.StageCandidates)
	}
	logging.Infow(ctx, "highpoint: candidate detection complete", "count", len(detected))

	if err := checkCancelled(ctx); err != nil {
		return Output{}, err
	}

	survivors, err := traceAll(ctx, grid, detected, req, opts.Parallel)
	if err != nil {
		return Output{}, err
	}
	if len(survivors) == 0 {
		return Output{}, errs.NewEmptyPipeline(errs.StageVisibility)
	}
	logging.Infow(ctx, "highpoint: visibility tracing complete", "survivors", len(survivors))

	if err := checkCancelled(ctx); err != nil {
		return Output{}, err
	}

	clustered := cluster.Reduce(survivors, req.ClusterGridM)
	if len(clustered) == 0 {
		return Output{}, errs.NewEmptyPipeline(errs.StageCluster)
	}
	logging.Infow(ctx, "highpoint: cluster reduction complete", "survivors", len(clustered))

	if err := checkCancelled(ctx); err != nil {
		return Output{}, err
	}

	drivOpts := drivability.Options{
		WalkingSpeedKmh:    req.WalkingSpeedKmh,
		DrivingSpeedKmh:    req.DrivingSpeedKmh,
		MaxWalkMinutes:     req.MaxWalkMinutes,
		MaxDriveMinutesSet: req.MaxDriveMinutes != nil,
	}
	if req.MaxDriveMinutes != nil {
		drivOpts.MaxDriveMinutes = *req.MaxDriveMinutes
	}

	type scoredEntry struct {
		candidate candidates.Candidate
		metrics   visibility.Metrics
		access    drivability.Result
	}
	var withAccess []scoredEntry
	for _, s := range clustered {
		access, ok := drivability.Evaluate(network, s.Candidate.X, s.Candidate.Y, drivOpts)
		if !ok {
			continue
		}
		withAccess = append(withAccess, scoredEntry{candidate: s.Candidate, metrics: s.Metrics, access: access})
	}
	if len(withAccess) == 0 {
		return Output{}, errs.NewEmptyPipeline(errs.StageDrivability)
	}
	logging.Infow(ctx, "highpoint: drivability scoring complete", "survivors", len(withAccess))

	if err := checkCancelled(ctx); err != nil {
		return Output{}, err
	}

	scored := make([]ranking.Scored[Record], 0, len(withAccess))
	for _, e := range withAccess {
		record := Record{
			Row:                  e.candidate.Row,
			Col:                  e.candidate.Col,
			X:                    e.candidate.X,
			Y:                    e.candidate.Y,
			ElevationM:           e.candidate.ElevationM,
			ProminenceM:          e.candidate.ProminenceM,
			MaxDistanceM:         e.metrics.MaxDistanceM,
			MeanDistanceM:        e.metrics.MeanDistanceM,
			MedianDistanceM:      e.metrics.MedianDistanceM,
			FOVDeg:               e.metrics.FOVDeg,
			ClearedRayCount:      e.metrics.ClearedRayCount,
			AccessX:              e.access.AccessX,
			AccessY:              e.access.AccessY,
			DistanceM:            e.access.DistanceM,
			WalkMinutes:          e.access.WalkMinutes,
			DriveMinutesEstimate: e.access.DriveMinutesEstimate,
		}
		record.Score = ranking.Score(ranking.Input{
			Row:            record.Row,
			Col:            record.Col,
			ElevationM:     record.ElevationM,
			MaxDistanceM:   record.MaxDistanceM,
			FOVDeg:         record.FOVDeg,
			WalkMinutes:    record.WalkMinutes,
			MinVisibilityM: req.MinVisibilityM,
			MinFOVDeg:      req.MinFOVDeg,
			MaxWalkMinutes: req.MaxWalkMinutes,
		})
		record.Score = roundToUnit(record.Score)

		scored = append(scored, ranking.Scored[Record]{
			Value:        record,
			Score:        record.Score,
			MaxDistanceM: record.MaxDistanceM,
			ElevationM:   record.ElevationM,
			Row:          record.Row,
			Col:          record.Col,
		})
	}

	ranked := ranking.Rank(scored, req.ResultsLimit)
	out := make(Records, len(ranked))
	for i, r := range ranked {
		out[i] = r.Value
	}

	return Output{
		Records: out,
		Counts: StageCounts{
			Candidates:  len(detected),
			Visibility:  len(survivors),
			Cluster:     len(clustered),
			Drivability: len(withAccess),
		},
	}, nil
}

// traceAll runs the Visibility Tracer over every candidate, keeping only
// those that survive (spec.md §4.2, "Candidate rejection"). When parallel
// is set, candidates are traced concurrently via errgroup (at most
// GOMAXPROCS at a time) and results are
// re-collected in the original candidate order before returning, per
// spec.md §5's determinism requirement.
func traceAll(ctx context.Context, grid *terrain.Grid, detected []candidates.Candidate, req config.VisibilityRequest, parallel bool) ([]cluster.Survivor, error) {
	visOpts := visibility.Options{
		ObserverEyeHeightM:  req.ObserverEyeHeightM,
		ObstructionStartM:   req.ObstructionStartM,
		ObstructionHeightM:  req.ObstructionHeightM,
		MinVisibilityM:      req.MinVisibilityM,
		MinFOVDeg:           req.MinFOVDeg,
		AzimuthDeg:          req.AzimuthDeg,
		AzimuthToleranceDeg: req.AzimuthToleranceDeg,
		RaysFullCircle:      req.RaysFullCircle,
		MaxVisibilityM:      req.MaxVisibilityM,
	}

	if !parallel {
		var survivors []cluster.Survivor
		for _, c := range detected {
			if err := checkCancelled(ctx); err != nil {
				return nil, err
			}
			metrics, err := visibility.Trace(grid, visibility.Observer{X: c.X, Y: c.Y, ElevationM: c.ElevationM}, visOpts)
			if err != nil {
				return nil, err
			}
			if metrics.Survives() {
				survivors = append(survivors, cluster.Survivor{Candidate: c, Metrics: metrics})
			}
		}
		return survivors, nil
	}

	results := make([]*visibility.Metrics, len(detected))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.GOMAXPROCS(0))
	for i, c := range detected {
		i, c := i, c
		group.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					parsed, _ := prefaberrors.ParseStack(debug.Stack())
					logging.Errorw(gctx, "highpoint: recovered from panic tracing candidate",
						"row", c.Row, "col", c.Col, "error", r, "error.stack_trace", parsed.MinimalStack(3, 5))
					err = errs.Internal("pipeline: visibility tracer panicked")
				}
			}()
			if gctx.Err() != nil {
				return errs.ErrCancelled
			}
			metrics, traceErr := visibility.Trace(grid, visibility.Observer{X: c.X, Y: c.Y, ElevationM: c.ElevationM}, visOpts)
			if traceErr != nil {
				return traceErr
			}
			results[i] = &metrics
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	survivors := make([]cluster.Survivor, 0, len(detected))
	for i, m := range results {
		if m != nil && m.Survives() {
			survivors = append(survivors, cluster.Survivor{Candidate: detected[i], Metrics: *m})
		}
	}
	return survivors, nil
}

func checkCancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return errs.ErrCancelled
	default:
		return nil
	}
}

// roundToUnit clamps score into [0, 1], guarding against floating-point
// overshoot at the edges (spec.md §8 invariant 2).
func roundToUnit(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
