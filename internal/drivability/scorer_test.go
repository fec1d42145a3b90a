package drivability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sytelus/highpoint/internal/roads"
)

func straightRoad(t *testing.T) *roads.Network {
	t.Helper()
	net, err := roads.NewNetwork([]roads.Segment{
		{Points: []roads.Point{{X: 0, Y: 0}, {X: 1000, Y: 0}}},
	})
	require.NoError(t, err)
	return net
}

func TestEvaluate_ComputesWalkAndDriveMinutes(t *testing.T) {
	net := straightRoad(t)
	opts := Options{WalkingSpeedKmh: 4.5, DrivingSpeedKmh: 40, MaxWalkMinutes: 60}

	result, ok := Evaluate(net, 500, 100, opts)
	require.True(t, ok)

	assert.InDelta(t, 100, result.DistanceM, 1e-9)
	wantWalk := (100.0 / 1000) / 4.5 * 60
	wantDrive := (100.0 * 1.35 / 1000) / 40 * 60
	assert.InDelta(t, wantWalk, result.WalkMinutes, 1e-9)
	assert.InDelta(t, wantDrive, result.DriveMinutesEstimate, 1e-9)
}

func TestEvaluate_RejectsWhenWalkExceedsBudget(t *testing.T) {
	net := straightRoad(t)
	opts := Options{WalkingSpeedKmh: 4.5, DrivingSpeedKmh: 40, MaxWalkMinutes: 1}

	_, ok := Evaluate(net, 500, 5000, opts)
	assert.False(t, ok)
}

func TestEvaluate_RejectsWhenDriveExceedsBudgetIfSet(t *testing.T) {
	net := straightRoad(t)
	opts := Options{
		WalkingSpeedKmh:    4.5,
		DrivingSpeedKmh:    40,
		MaxWalkMinutes:     600,
		MaxDriveMinutes:    1,
		MaxDriveMinutesSet: true,
	}

	_, ok := Evaluate(net, 500, 5000, opts)
	assert.False(t, ok)
}

func TestEvaluate_IgnoresDriveBudgetWhenUnset(t *testing.T) {
	net := straightRoad(t)
	opts := Options{WalkingSpeedKmh: 4.5, DrivingSpeedKmh: 40, MaxWalkMinutes: 600}

	_, ok := Evaluate(net, 500, 5000, opts)
	assert.True(t, ok)
}

func TestEvaluate_NoRoadsReturnsNotFound(t *testing.T) {
	net, err := roads.NewNetwork(nil)
	require.NoError(t, err)
	opts := Options{WalkingSpeedKmh: 4.5, DrivingSpeedKmh: 40, MaxWalkMinutes: 600}

	_, ok := Evaluate(net, 0, 0, opts)
	assert.False(t, ok)
}
