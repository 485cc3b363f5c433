package planner

import "math"

const (
	bezierControlPoints     = 3
	bezierPerturbationSigma = 100.0
	bezierAltitudeScale     = 0.5
)

type bezierFactory struct{}

func (f *bezierFactory) Method() string { return RouteBezier }

func (f *bezierFactory) Generate(g *Generator, opts RouteOptions) ([]Waypoint, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return g.BezierRoute(opts.Start, opts.End, bezierControlPoints, opts.Samples), nil
}

// BezierRoute generates a route as a Bézier curve through randomly
// perturbed control points spaced between the endpoints.
func (g *Generator) BezierRoute(start, end Waypoint, controlPoints, samples int) []Waypoint {
	points := make([]Waypoint, 0, controlPoints+2)
	points = append(points, start)

	for i := 0; i < controlPoints; i++ {
		alpha := float64(i+1) / float64(controlPoints+1)
		base := start.Lerp(end, alpha)
		points = append(points, g.perturbed(base, bezierPerturbationSigma, bezierAltitudeScale))
	}

	points = append(points, end)

	route := make([]Waypoint, samples)
	for i := 0; i < samples; i++ {
		t := float64(i) / float64(samples-1)
		route[i] = evalBezier(points, t)
	}

	// the Bernstein weights sum to one, so the endpoints are exact up to
	// floating point error; pin them so downstream anchoring checks hold.
	route[0] = start
	route[samples-1] = end

	return route
}

// evalBezier evaluates the curve at t using the Bernstein polynomial basis.
func evalBezier(controlPoints []Waypoint, t float64) Waypoint {
	n := len(controlPoints) - 1

	var point Waypoint
	for i, cp := range controlPoints {
		point = point.Add(cp.Scale(bernstein(i, n, t)))
	}

	return point
}

func bernstein(i, n int, t float64) float64 {
	return binomial(n, i) * math.Pow(t, float64(i)) * math.Pow(1-t, float64(n-i))
}

func binomial(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}

	out := 1.0
	for i := 0; i < k; i++ {
		out *= float64(n-i) / float64(i+1)
	}

	return out
}
