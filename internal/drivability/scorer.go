// Package drivability implements the Drivability Scorer (spec.md §4.4):
// for each candidate it finds the nearest point on the road network and
// converts that distance into walk/drive time estimates, rejecting
// candidates that fall outside the caller's time budget.
package drivability

import (
	"github.com/sytelus/highpoint/internal/roads"
)

// Options carries the request-level parameters the scorer needs (spec.md
// §3, VisibilityRequest).
type Options struct {
	WalkingSpeedKmh    float64
	DrivingSpeedKmh    float64
	MaxWalkMinutes     float64
	MaxDriveMinutes    float64 // ignored unless MaxDriveMinutesSet
	MaxDriveMinutesSet bool
}

// sinuosityFactor accounts for typical road curvature not captured by a
// straight-line distance estimate (spec.md §4.4, a fixed design constant).
const sinuosityFactor = 1.35

// Result is the evaluated access outcome for one candidate.
type Result struct {
	AccessX, AccessY     float64
	DistanceM            float64
	WalkMinutes          float64
	DriveMinutesEstimate float64
}

// Evaluate returns the drivability result for (x, y) against net, and
// whether the candidate should be kept. ok is false when there is no road
// in net, or when the computed time exceeds the configured budget.
func Evaluate(net *roads.Network, x, y float64, opts Options) (Result, bool) {
	ap, found := net.Nearest(x, y)
	if !found {
		return Result{}, false
	}

	walkMinutes := (ap.Distance / 1000) / opts.WalkingSpeedKmh * 60
	driveMinutes := (ap.Distance * sinuosityFactor / 1000) / opts.DrivingSpeedKmh * 60

	result := Result{
		AccessX:              ap.X,
		AccessY:              ap.Y,
		DistanceM:            ap.Distance,
		WalkMinutes:          walkMinutes,
		DriveMinutesEstimate: driveMinutes,
	}

	if walkMinutes > opts.MaxWalkMinutes {
		return result, false
	}
	if opts.MaxDriveMinutesSet && driveMinutes > opts.MaxDriveMinutes {
		return result, false
	}
	return result, true
}
