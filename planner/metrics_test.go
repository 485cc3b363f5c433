package planner

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeStraightLine(t *testing.T) {
	route := []Waypoint{
		{X: 0, Y: 0, Z: 100},
		{X: 100, Y: 0, Z: 100},
		{X: 200, Y: 0, Z: 100},
		{X: 300, Y: 0, Z: 100},
	}

	s := Summarize(route)

	assert.InDelta(t, 300, s.PathLength, 1e-9)
	assert.InDelta(t, 300, s.StraightLineDistance, 1e-9)
	assert.InDelta(t, 1.0, s.PathEfficiency, 1e-9)
	assert.InDelta(t, 0.0, s.AvgCurvature, 1e-9)
	assert.InDelta(t, 0.0, s.MaxCurvature, 1e-9)
	assert.InDelta(t, 1.0, s.SmoothnessScore, 1e-9)
	assert.InDelta(t, 100, s.AvgVelocity, 1e-9)
	assert.InDelta(t, 100, s.MinAltitude, 1e-9)
	assert.InDelta(t, 100, s.MaxAltitude, 1e-9)
	assert.InDelta(t, 100, s.AvgAltitude, 1e-9)
}

func TestSummarizeRightAngleTurn(t *testing.T) {
	route := []Waypoint{
		{X: 0, Y: 0, Z: 100},
		{X: 100, Y: 0, Z: 100},
		{X: 100, Y: 100, Z: 100},
	}

	s := Summarize(route)

	assert.InDelta(t, 200, s.PathLength, 1e-9)
	assert.InDelta(t, math.Sqrt(2)*100, s.StraightLineDistance, 1e-9)
	// one 90 degree turn over a 100m inbound segment
	assert.InDelta(t, math.Pi/2/100, s.AvgCurvature, 1e-9)
	assert.InDelta(t, math.Pi/2/100, s.MaxCurvature, 1e-9)
}

func TestSummarizeDegenerateInputs(t *testing.T) {
	t.Run("empty route", func(t *testing.T) {
		assert.Equal(t, Summary{}, Summarize(nil))
	})
	t.Run("single point", func(t *testing.T) {
		s := Summarize([]Waypoint{{X: 1, Y: 2, Z: 300}})
		assert.Equal(t, 0.0, s.PathLength)
		assert.Equal(t, 0.0, s.PathEfficiency)
		assert.Equal(t, 300.0, s.MinAltitude)
		assert.Equal(t, 300.0, s.AvgAltitude)
	})
	t.Run("repeated points skip curvature", func(t *testing.T) {
		route := []Waypoint{
			{X: 0, Y: 0, Z: 100},
			{X: 0, Y: 0, Z: 100},
			{X: 100, Y: 0, Z: 100},
		}
		s := Summarize(route)
		assert.Equal(t, 0.0, s.AvgCurvature)
		assert.InDelta(t, 1.0, s.SmoothnessScore, 1e-9)
	})
}

func TestCollisionHelpers(t *testing.T) {
	obstacles := []Obstacle{{Center: Waypoint{X: 50, Y: 0, Z: 100}, Radius: 20}}

	t.Run("segment through an obstacle", func(t *testing.T) {
		assert.True(t, SegmentCollides(
			Waypoint{X: 0, Y: 0, Z: 100},
			Waypoint{X: 100, Y: 0, Z: 100},
			obstacles,
		))
	})
	t.Run("segment clear of obstacles", func(t *testing.T) {
		assert.False(t, SegmentCollides(
			Waypoint{X: 0, Y: 100, Z: 100},
			Waypoint{X: 100, Y: 100, Z: 100},
			obstacles,
		))
	})
	t.Run("no obstacles never collides", func(t *testing.T) {
		assert.False(t, SegmentCollides(Waypoint{}, Waypoint{X: 1}, nil))
	})
	t.Run("route collision", func(t *testing.T) {
		route := []Waypoint{
			{X: 0, Y: 0, Z: 100},
			{X: 100, Y: 0, Z: 100},
			{X: 200, Y: 0, Z: 100},
		}
		assert.True(t, RouteCollides(route, obstacles))
	})
	t.Run("clearance", func(t *testing.T) {
		route := []Waypoint{{X: 0, Y: 0, Z: 100}}
		assert.InDelta(t, 30, MinClearance(route, obstacles), 1e-9)
		assert.Equal(t, 0.0, MinClearance(route, nil))
	})
}

func TestWaypointOps(t *testing.T) {
	a := Waypoint{X: 1, Y: 2, Z: 3}
	b := Waypoint{X: 4, Y: 6, Z: 3}

	assert.Equal(t, Waypoint{X: 5, Y: 8, Z: 6}, a.Add(b))
	assert.Equal(t, Waypoint{X: 3, Y: 4, Z: 0}, b.Sub(a))
	assert.InDelta(t, 5, b.Sub(a).Norm(), 1e-9)
	assert.InDelta(t, 5, a.DistanceTo(b), 1e-9)
	assert.Equal(t, Waypoint{X: 2, Y: 4, Z: 6}, a.Scale(2))
	assert.InDelta(t, 25, a.Dot(b), 1e-9)
	assert.Equal(t, a, a.Lerp(b, 0))
	assert.Equal(t, b, a.Lerp(b, 1))

	bounds := DefaultBounds()
	clamped := bounds.Clamp(Waypoint{X: -5000, Y: 5000, Z: 0})
	assert.Equal(t, Waypoint{X: -1000, Y: 1000, Z: 50}, clamped)
	assert.True(t, bounds.Contains(clamped))
}
