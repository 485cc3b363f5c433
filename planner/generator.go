package planner

import (
	"math/rand"

	"github.com/pkg/errors"
)

const (
	// obstacles never spawn closer than this to a route endpoint.
	obstacleSafeRadius = 150.0

	minObstacleRadius = 30.0
	maxObstacleRadius = 80.0
)

// Generator produces synthetic routes within a bounded mission volume. The
// zero value is not usable; construct one with NewGenerator. A Generator
// owns its random source and is not safe for concurrent use, callers that
// generate in parallel should construct one Generator per goroutine.
type Generator struct {
	bounds Bounds
	rng    *rand.Rand
}

// NewGenerator returns a generator seeded with the given value over the
// default mission volume. Generators with equal seeds and bounds produce
// identical routes.
func NewGenerator(seed int64) *Generator {
	return NewGeneratorWithBounds(seed, DefaultBounds())
}

func NewGeneratorWithBounds(seed int64, bounds Bounds) *Generator {
	if !bounds.IsValid() {
		bounds = DefaultBounds()
	}

	return &Generator{
		bounds: bounds,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

func (g *Generator) Bounds() Bounds { return g.bounds }

// RandomWaypoint returns a waypoint uniformly distributed in the mission
// volume.
func (g *Generator) RandomWaypoint() Waypoint {
	return Waypoint{
		X: g.bounds.MinX + g.rng.Float64()*(g.bounds.MaxX-g.bounds.MinX),
		Y: g.bounds.MinY + g.rng.Float64()*(g.bounds.MaxY-g.bounds.MinY),
		Z: g.bounds.MinZ + g.rng.Float64()*(g.bounds.MaxZ-g.bounds.MinZ),
	}
}

// RandomRoutePair returns a start and end waypoint separated by at least
// minSeparation. The end is redrawn until the separation holds.
func (g *Generator) RandomRoutePair(minSeparation float64) (Waypoint, Waypoint) {
	start := g.RandomWaypoint()
	end := g.RandomWaypoint()
	for start.DistanceTo(end) < minSeparation {
		end = g.RandomWaypoint()
	}

	return start, end
}

// SampleObstacles returns n spherical obstacles placed away from the start
// and end regions of a route.
func (g *Generator) SampleObstacles(n int, start, end Waypoint) []Obstacle {
	obstacles := make([]Obstacle, 0, n)

	for i := 0; i < n; i++ {
		var center Waypoint
		for {
			center = g.RandomWaypoint()
			if center.DistanceTo(start) > obstacleSafeRadius && center.DistanceTo(end) > obstacleSafeRadius {
				break
			}
		}

		radius := minObstacleRadius + g.rng.Float64()*(maxObstacleRadius-minObstacleRadius)
		obstacles = append(obstacles, Obstacle{Center: center, Radius: radius})
	}

	return obstacles
}

// perturbed returns the base point with gaussian noise added and clamped to
// the mission volume. The altitude component gets a reduced share of the
// noise so routes stay flyable.
func (g *Generator) perturbed(base Waypoint, sigma, altitudeScale float64) Waypoint {
	noisy := Waypoint{
		X: base.X + g.rng.NormFloat64()*sigma,
		Y: base.Y + g.rng.NormFloat64()*sigma,
		Z: base.Z + g.rng.NormFloat64()*sigma*altitudeScale,
	}

	return g.bounds.Clamp(noisy)
}

////////////////////////////////////////////////////////////////////////
//
// Route Factories

const (
	RouteBezier = "bezier"
	RouteSpline = "spline"
	RouteDubins = "dubins"
	RouteRRT    = "rrt"
)

// RouteOptions collects the per-route parameters shared by all route
// factories.
type RouteOptions struct {
	Start     Waypoint
	End       Waypoint
	Samples   int
	Obstacles []Obstacle
}

func (opts *RouteOptions) Validate() error {
	if opts.Samples < 2 {
		return errors.New("routes must have at least two samples")
	}
	if opts.Start == opts.End {
		return errors.New("route endpoints must be distinct")
	}

	return nil
}

// RouteFactory generates one family of routes. Factories are stateless;
// all randomness comes from the Generator they are invoked with.
type RouteFactory interface {
	Method() string
	Generate(*Generator, RouteOptions) ([]Waypoint, error)
}

var routeFactoryMap = map[string]RouteFactory{
	RouteBezier: &bezierFactory{},
	RouteSpline: &splineFactory{},
	RouteDubins: &dubinsFactory{},
	RouteRRT:    &rrtFactory{},
}

func RouteFactories() map[string]RouteFactory { return routeFactoryMap }

func RouteFactoryFromMethod(method string) RouteFactory {
	return routeFactoryMap[method]
}

// DefaultRouteMethods is the method rotation used for dataset builds. The
// rrt family is excluded because it is only meaningful with obstacles.
func DefaultRouteMethods() []string {
	return []string{RouteBezier, RouteSpline, RouteDubins}
}

func ValidRouteMethod(method string) bool {
	_, ok := routeFactoryMap[method]
	return ok
}
