package planner

const defaultTurnRadius = 100.0

type dubinsFactory struct{}

func (f *dubinsFactory) Method() string { return RouteDubins }

func (f *dubinsFactory) Generate(g *Generator, opts RouteOptions) ([]Waypoint, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return g.DubinsRoute(opts.Start, opts.End, defaultTurnRadius, opts.Samples), nil
}

// DubinsRoute generates a simplified Dubins-style route: a straight segment
// with smooth turn-in and turn-out regions sized by the turn radius. When
// the endpoints are too close for the turn pattern the route degrades to a
// short spline.
func (g *Generator) DubinsRoute(start, end Waypoint, turnRadius float64, samples int) []Waypoint {
	direction := end.Sub(start)
	distance := direction.Norm()

	if distance < 2*turnRadius {
		return g.SplineRoute(start, end, 2, samples)
	}

	unit := direction.Scale(1 / distance)
	turnIn := start.Add(unit.Scale(turnRadius))
	turnOut := end.Sub(unit.Scale(turnRadius))

	return interpolateSpline([]Waypoint{start, turnIn, turnOut, end}, samples, false)
}
