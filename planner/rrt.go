package planner

const (
	rrtMaxIterations           = 100
	rrtStepSize                = 50.0
	rrtGoalBias                = 0.2
	collisionCheckSubdivisions = 10
)

type rrtFactory struct{}

func (f *rrtFactory) Method() string { return RouteRRT }

func (f *rrtFactory) Generate(g *Generator, opts RouteOptions) ([]Waypoint, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return g.RRTRoute(opts.Start, opts.End, opts.Obstacles, opts.Samples), nil
}

// RRTRoute generates a route by growing a rapidly-exploring random tree
// from the start toward the goal, stepping around spherical obstacles, and
// smoothing the resulting path with a clamped spline.
func (g *Generator) RRTRoute(start, end Waypoint, obstacles []Obstacle, samples int) []Waypoint {
	tree := []Waypoint{start}

	for i := 0; i < rrtMaxIterations; i++ {
		var target Waypoint
		if g.rng.Float64() < rrtGoalBias {
			target = end
		} else {
			target = g.RandomWaypoint()
		}

		nearest := nearestWaypoint(tree, target)
		step := target.Sub(nearest)
		distance := step.Norm()

		next := target
		if distance > rrtStepSize {
			next = nearest.Add(step.Scale(rrtStepSize / distance))
		}

		if SegmentCollides(nearest, next, obstacles) {
			continue
		}
		tree = append(tree, next)

		if next.DistanceTo(end) < rrtStepSize {
			tree = append(tree, end)
			break
		}
	}

	// force the goal connection when the iteration budget ran out short
	// of the target.
	if tree[len(tree)-1].DistanceTo(end) > rrtStepSize {
		tree = append(tree, end)
	}

	if len(tree) < 4 {
		tree = []Waypoint{start, start.Lerp(end, 0.5), end}
	}

	return interpolateSpline(tree, samples, true)
}

func nearestWaypoint(tree []Waypoint, target Waypoint) Waypoint {
	nearest := tree[0]
	best := nearest.DistanceTo(target)

	for _, p := range tree[1:] {
		if d := p.DistanceTo(target); d < best {
			nearest = p
			best = d
		}
	}

	return nearest
}

// SegmentCollides reports whether the segment between p1 and p2 passes
// through any of the obstacles, checked at a fixed number of subdivisions.
func SegmentCollides(p1, p2 Waypoint, obstacles []Obstacle) bool {
	if len(obstacles) == 0 {
		return false
	}

	for i := 0; i < collisionCheckSubdivisions; i++ {
		alpha := float64(i) / float64(collisionCheckSubdivisions-1)
		point := p1.Lerp(p2, alpha)
		for _, obs := range obstacles {
			if obs.Contains(point) {
				return true
			}
		}
	}

	return false
}

// RouteCollides reports whether any segment of the route passes through any
// of the obstacles.
func RouteCollides(route []Waypoint, obstacles []Obstacle) bool {
	for i := 0; i < len(route)-1; i++ {
		if SegmentCollides(route[i], route[i+1], obstacles) {
			return true
		}
	}

	return false
}

// MinClearance returns the smallest distance from any route waypoint to an
// obstacle boundary. Negative values indicate penetration.
func MinClearance(route []Waypoint, obstacles []Obstacle) float64 {
	if len(obstacles) == 0 || len(route) == 0 {
		return 0
	}

	min := route[0].DistanceTo(obstacles[0].Center) - obstacles[0].Radius
	for _, p := range route {
		for _, obs := range obstacles {
			if clearance := p.DistanceTo(obs.Center) - obs.Radius; clearance < min {
				min = clearance
			}
		}
	}

	return min
}
