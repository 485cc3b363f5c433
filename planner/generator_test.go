package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorDeterminism(t *testing.T) {
	for method, factory := range RouteFactories() {
		t.Run(method, func(t *testing.T) {
			opts := RouteOptions{
				Start:   Waypoint{X: -500, Y: -500, Z: 100},
				End:     Waypoint{X: 500, Y: 500, Z: 200},
				Samples: 50,
			}

			first, err := factory.Generate(NewGenerator(42), opts)
			require.NoError(t, err)
			second, err := factory.Generate(NewGenerator(42), opts)
			require.NoError(t, err)

			assert.Equal(t, first, second)
		})
	}
}

func TestRouteShape(t *testing.T) {
	start := Waypoint{X: -800, Y: 200, Z: 75}
	end := Waypoint{X: 750, Y: -300, Z: 400}

	for method, factory := range RouteFactories() {
		t.Run(method, func(t *testing.T) {
			route, err := factory.Generate(NewGenerator(7), RouteOptions{
				Start:   start,
				End:     end,
				Samples: 50,
			})
			require.NoError(t, err)

			require.Len(t, route, 50)
			assert.Equal(t, start, route[0])
			assert.Equal(t, end, route[len(route)-1])
		})
	}
}

func TestRouteOptionsValidation(t *testing.T) {
	t.Run("too few samples", func(t *testing.T) {
		opts := RouteOptions{Start: Waypoint{X: 1}, End: Waypoint{X: 2}, Samples: 1}
		assert.Error(t, opts.Validate())
	})
	t.Run("identical endpoints", func(t *testing.T) {
		opts := RouteOptions{Start: Waypoint{X: 1}, End: Waypoint{X: 1}, Samples: 10}
		assert.Error(t, opts.Validate())
	})
	t.Run("valid", func(t *testing.T) {
		opts := RouteOptions{Start: Waypoint{X: 1}, End: Waypoint{X: 2}, Samples: 10}
		assert.NoError(t, opts.Validate())
	})
}

func TestRandomWaypointStaysInBounds(t *testing.T) {
	g := NewGenerator(13)
	bounds := g.Bounds()

	for i := 0; i < 1000; i++ {
		assert.True(t, bounds.Contains(g.RandomWaypoint()))
	}
}

func TestRandomRoutePairSeparation(t *testing.T) {
	g := NewGenerator(99)

	for i := 0; i < 100; i++ {
		start, end := g.RandomRoutePair(200)
		assert.True(t, start.DistanceTo(end) >= 200)
	}
}

func TestSampleObstacles(t *testing.T) {
	g := NewGenerator(3)
	start := Waypoint{X: -900, Y: -900, Z: 100}
	end := Waypoint{X: 900, Y: 900, Z: 100}

	obstacles := g.SampleObstacles(25, start, end)
	require.Len(t, obstacles, 25)

	for _, obs := range obstacles {
		assert.True(t, obs.Center.DistanceTo(start) > obstacleSafeRadius)
		assert.True(t, obs.Center.DistanceTo(end) > obstacleSafeRadius)
		assert.True(t, obs.Radius >= minObstacleRadius)
		assert.True(t, obs.Radius <= maxObstacleRadius)
	}
}

func TestInvalidBoundsFallBackToDefault(t *testing.T) {
	g := NewGeneratorWithBounds(1, Bounds{MinX: 10, MaxX: -10})
	assert.Equal(t, DefaultBounds(), g.Bounds())
}

func TestRouteFactoryLookup(t *testing.T) {
	assert.NotNil(t, RouteFactoryFromMethod(RouteBezier))
	assert.Nil(t, RouteFactoryFromMethod("great-circle"))
	assert.True(t, ValidRouteMethod(RouteDubins))
	assert.False(t, ValidRouteMethod(""))

	for _, method := range DefaultRouteMethods() {
		assert.True(t, ValidRouteMethod(method))
	}
}
