package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCubicSplineInterpolatesKnots(t *testing.T) {
	ts := []float64{0, 0.25, 0.5, 0.75, 1}
	vals := []float64{1, -2, 0, 4, 3}

	for _, clamped := range []bool{false, true} {
		s := newCubicSpline(ts, vals, clamped)
		for i := range ts {
			assert.InDelta(t, vals[i], s.eval(ts[i]), 1e-9)
		}
	}
}

func TestCubicSplineIsLinearForTwoKnots(t *testing.T) {
	s := newCubicSpline([]float64{0, 1}, []float64{10, 20}, false)

	assert.InDelta(t, 10, s.eval(0), 1e-9)
	assert.InDelta(t, 15, s.eval(0.5), 1e-9)
	assert.InDelta(t, 20, s.eval(1), 1e-9)
}

func TestCubicSplineReproducesLine(t *testing.T) {
	// a spline through collinear knots is the line itself
	ts := []float64{0, 0.2, 0.4, 0.6, 0.8, 1}
	vals := make([]float64, len(ts))
	for i, tv := range ts {
		vals[i] = 3*tv + 1
	}

	s := newCubicSpline(ts, vals, false)
	for _, tv := range []float64{0.1, 0.33, 0.5, 0.77, 0.95} {
		assert.InDelta(t, 3*tv+1, s.eval(tv), 1e-9)
	}
}

func TestInterpolateSplinePinsEndpoints(t *testing.T) {
	waypoints := []Waypoint{
		{X: 0, Y: 0, Z: 100},
		{X: 100, Y: 50, Z: 150},
		{X: 200, Y: -25, Z: 120},
		{X: 300, Y: 0, Z: 100},
	}

	route := interpolateSpline(waypoints, 40, false)
	require.Len(t, route, 40)
	assert.Equal(t, waypoints[0], route[0])
	assert.Equal(t, waypoints[len(waypoints)-1], route[len(route)-1])
}

func TestDubinsShortRouteFallsBackToSpline(t *testing.T) {
	g := NewGenerator(5)
	start := Waypoint{X: 0, Y: 0, Z: 100}
	end := Waypoint{X: 50, Y: 0, Z: 100}

	// the endpoints are closer than twice the turn radius
	route := g.DubinsRoute(start, end, defaultTurnRadius, 30)
	require.Len(t, route, 30)
	assert.Equal(t, start, route[0])
	assert.Equal(t, end, route[len(route)-1])
}
