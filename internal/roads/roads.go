// Package roads holds the immutable drivable-road vector layer and the
// nearest-point-on-polyline search that the drivability scorer builds on.
// Inputs arrive already projected to meters (spec.md §3), so the nearest-
// point search is exact planar vector math rather than spherical
// trigonometry.
package roads

import (
	"math"

	"github.com/sytelus/highpoint/internal/errs"
)

// Point is a projected-coordinate primitive shared across the pipeline.
type Point struct {
	X, Y float64
}

// Segment is one drivable road, given as an ordered polyline of at least
// two projected points (spec.md §3, RoadSegment).
type Segment struct {
	Points []Point
}

// Network is an immutable, read-only-after-load collection of road
// segments in the pipeline's projected CRS.
type Network struct {
	segments []Segment
}

// NewNetwork validates and wraps segments. Each segment must have at
// least two points; the network itself may be empty (an empty road
// network simply means every candidate fails drivability downstream).
func NewNetwork(segments []Segment) (*Network, error) {
	for i, seg := range segments {
		if len(seg.Points) < 2 {
			return nil, errs.Invalidf("roads: segment %d has fewer than 2 points", i)
		}
	}
	cp := make([]Segment, len(segments))
	copy(cp, segments)
	return &Network{segments: cp}, nil
}

// Len returns the number of segments.
func (n *Network) Len() int { return len(n.segments) }

// AccessPoint is the result of a nearest-point-on-network search.
type AccessPoint struct {
	X, Y     float64
	Distance float64
}

// Nearest finds the closest point on any segment to (x, y) via a linear
// scan over every sub-segment of every road, matching perpendicular
// projection clamped to the sub-segment's endpoints (spec.md §4.4).
// Ties at identical distance are broken by input order: the first
// segment (and the first sub-segment within it) encountered wins, so the
// scan never updates best on a merely-equal distance.
//
// Nearest returns ok=false when the network has no segments.
func (n *Network) Nearest(x, y float64) (AccessPoint, bool) {
	bestDistSq := math.Inf(1)
	var best AccessPoint
	found := false

	for _, seg := range n.segments {
		for i := 0; i < len(seg.Points)-1; i++ {
			start := seg.Points[i]
			end := seg.Points[i+1]
			px, py := closestPointOnSegment(x, y, start.X, start.Y, end.X, end.Y)
			dx := px - x
			dy := py - y
			distSq := dx*dx + dy*dy
			if distSq < bestDistSq {
				bestDistSq = distSq
				best = AccessPoint{X: px, Y: py, Distance: math.Sqrt(distSq)}
				found = true
			}
		}
	}
	return best, found
}

// closestPointOnSegment projects (px, py) onto the segment (ax,ay)-(bx,by),
// clamping the projection parameter to [0, 1] so the result always lies on
// the segment, not its infinite extension.
func closestPointOnSegment(px, py, ax, ay, bx, by float64) (x, y float64) {
	dx := bx - ax
	dy := by - ay
	lengthSq := dx*dx + dy*dy
	if lengthSq == 0 {
		return ax, ay
	}
	t := ((px-ax)*dx + (py-ay)*dy) / lengthSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return ax + t*dx, ay + t*dy
}
