package planner

const (
	splineIntermediateWaypoints = 5
	splinePerturbationSigma     = 50.0
	splineAltitudeScale         = 0.3
)

type splineFactory struct{}

func (f *splineFactory) Method() string { return RouteSpline }

func (f *splineFactory) Generate(g *Generator, opts RouteOptions) ([]Waypoint, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return g.SplineRoute(opts.Start, opts.End, splineIntermediateWaypoints, opts.Samples), nil
}

// SplineRoute generates a route by cubic-spline interpolation through
// randomly perturbed waypoints spaced between the endpoints.
func (g *Generator) SplineRoute(start, end Waypoint, intermediate, samples int) []Waypoint {
	waypoints := make([]Waypoint, 0, intermediate+2)
	waypoints = append(waypoints, start)

	for i := 0; i < intermediate; i++ {
		alpha := float64(i+1) / float64(intermediate+1)
		base := start.Lerp(end, alpha)
		waypoints = append(waypoints, g.perturbed(base, splinePerturbationSigma, splineAltitudeScale))
	}

	waypoints = append(waypoints, end)

	return interpolateSpline(waypoints, samples, false)
}

// interpolateSpline fits one cubic spline per axis over a uniform parameter
// in [0, 1] and samples it densely. With clamped set, the spline has zero
// first derivative at both ends.
func interpolateSpline(waypoints []Waypoint, samples int, clamped bool) []Waypoint {
	n := len(waypoints)

	ts := make([]float64, n)
	xs := make([]float64, n)
	ys := make([]float64, n)
	zs := make([]float64, n)
	for i, w := range waypoints {
		ts[i] = float64(i) / float64(n-1)
		xs[i] = w.X
		ys[i] = w.Y
		zs[i] = w.Z
	}

	sx := newCubicSpline(ts, xs, clamped)
	sy := newCubicSpline(ts, ys, clamped)
	sz := newCubicSpline(ts, zs, clamped)

	route := make([]Waypoint, samples)
	for i := 0; i < samples; i++ {
		t := float64(i) / float64(samples-1)
		route[i] = Waypoint{X: sx.eval(t), Y: sy.eval(t), Z: sz.eval(t)}
	}

	route[0] = waypoints[0]
	route[samples-1] = waypoints[n-1]

	return route
}

// cubicSpline holds the piecewise polynomial coefficients for a single
// axis: S_i(t) = a_i + b_i dt + c_i dt^2 + d_i dt^3 on [ts_i, ts_i+1].
type cubicSpline struct {
	ts []float64
	a  []float64
	b  []float64
	c  []float64
	d  []float64
}

// newCubicSpline fits a cubic spline through (ts, vals) with ts strictly
// increasing. Natural boundary conditions by default, clamped (zero slope
// at both ends) when requested.
func newCubicSpline(ts, vals []float64, clamped bool) *cubicSpline {
	n := len(ts)
	s := &cubicSpline{
		ts: append([]float64{}, ts...),
		a:  append([]float64{}, vals...),
		b:  make([]float64, n),
		c:  make([]float64, n),
		d:  make([]float64, n),
	}

	if n < 3 {
		// a straight segment
		if n == 2 {
			s.b[0] = (vals[1] - vals[0]) / (ts[1] - ts[0])
		}
		return s
	}

	h := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		h[i] = ts[i+1] - ts[i]
	}

	alpha := make([]float64, n)
	for i := 1; i < n-1; i++ {
		alpha[i] = 3*(s.a[i+1]-s.a[i])/h[i] - 3*(s.a[i]-s.a[i-1])/h[i-1]
	}

	l := make([]float64, n)
	mu := make([]float64, n)
	z := make([]float64, n)

	if clamped {
		alpha[0] = 3 * (s.a[1] - s.a[0]) / h[0]
		alpha[n-1] = -3 * (s.a[n-1] - s.a[n-2]) / h[n-2]

		l[0] = 2 * h[0]
		mu[0] = 0.5
		z[0] = alpha[0] / l[0]
	} else {
		l[0] = 1
	}

	for i := 1; i < n-1; i++ {
		l[i] = 2*(ts[i+1]-ts[i-1]) - h[i-1]*mu[i-1]
		mu[i] = h[i] / l[i]
		z[i] = (alpha[i] - h[i-1]*z[i-1]) / l[i]
	}

	if clamped {
		l[n-1] = h[n-2] * (2 - mu[n-2])
		z[n-1] = (alpha[n-1] - h[n-2]*z[n-2]) / l[n-1]
		s.c[n-1] = z[n-1]
	} else {
		l[n-1] = 1
	}

	for j := n - 2; j >= 0; j-- {
		s.c[j] = z[j] - mu[j]*s.c[j+1]
		s.b[j] = (s.a[j+1]-s.a[j])/h[j] - h[j]*(s.c[j+1]+2*s.c[j])/3
		s.d[j] = (s.c[j+1] - s.c[j]) / (3 * h[j])
	}

	return s
}

func (s *cubicSpline) eval(t float64) float64 {
	n := len(s.ts)
	if n == 1 {
		return s.a[0]
	}

	// locate the segment containing t; ts is small so a linear scan is
	// fine here.
	i := n - 2
	for j := 0; j < n-1; j++ {
		if t < s.ts[j+1] {
			i = j
			break
		}
	}

	dt := t - s.ts[i]
	return s.a[i] + dt*(s.b[i]+dt*(s.c[i]+dt*s.d[i]))
}
