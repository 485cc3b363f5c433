package planner

import "math"

// degenerate segments shorter than this are skipped in curvature
// calculations.
const minSegmentLength = 1e-6

// Summary holds the quality metrics for a single route.
type Summary struct {
	PathLength           float64 `bson:"path_length" json:"path_length" yaml:"path_length"`
	StraightLineDistance float64 `bson:"straight_line_distance" json:"straight_line_distance" yaml:"straight_line_distance"`
	PathEfficiency       float64 `bson:"path_efficiency" json:"path_efficiency" yaml:"path_efficiency"`
	AvgCurvature         float64 `bson:"avg_curvature" json:"avg_curvature" yaml:"avg_curvature"`
	MaxCurvature         float64 `bson:"max_curvature" json:"max_curvature" yaml:"max_curvature"`
	SmoothnessScore      float64 `bson:"smoothness_score" json:"smoothness_score" yaml:"smoothness_score"`
	AvgVelocity          float64 `bson:"avg_velocity" json:"avg_velocity" yaml:"avg_velocity"`
	MinAltitude          float64 `bson:"min_altitude" json:"min_altitude" yaml:"min_altitude"`
	MaxAltitude          float64 `bson:"max_altitude" json:"max_altitude" yaml:"max_altitude"`
	AvgAltitude          float64 `bson:"avg_altitude" json:"avg_altitude" yaml:"avg_altitude"`
}

// Summarize computes the quality metrics for a route. Curvature is the turn
// angle between consecutive segments divided by the incoming segment
// length, in radians per meter; the smoothness score is 1/(1+avgCurvature)
// so that straighter routes score closer to one.
func Summarize(route []Waypoint) Summary {
	out := Summary{}
	if len(route) == 0 {
		return out
	}

	for i := 0; i < len(route)-1; i++ {
		out.PathLength += route[i].DistanceTo(route[i+1])
	}
	out.StraightLineDistance = route[0].DistanceTo(route[len(route)-1])
	if out.PathLength > 0 {
		out.PathEfficiency = out.StraightLineDistance / out.PathLength
	}

	var curvatures []float64
	for i := 1; i < len(route)-1; i++ {
		v1 := route[i].Sub(route[i-1])
		v2 := route[i+1].Sub(route[i])

		norm1 := v1.Norm()
		norm2 := v2.Norm()
		if norm1 <= minSegmentLength || norm2 <= minSegmentLength {
			continue
		}

		cosAngle := v1.Dot(v2) / (norm1 * norm2)
		cosAngle = math.Min(math.Max(cosAngle, -1), 1)
		curvatures = append(curvatures, math.Acos(cosAngle)/norm1)
	}

	for _, c := range curvatures {
		out.AvgCurvature += c
		if c > out.MaxCurvature {
			out.MaxCurvature = c
		}
	}
	if len(curvatures) > 0 {
		out.AvgCurvature /= float64(len(curvatures))
	}
	out.SmoothnessScore = 1.0 / (1.0 + out.AvgCurvature)

	if len(route) > 1 {
		out.AvgVelocity = out.PathLength / float64(len(route)-1)
	}

	out.MinAltitude = route[0].Z
	out.MaxAltitude = route[0].Z
	for _, p := range route {
		out.MinAltitude = math.Min(out.MinAltitude, p.Z)
		out.MaxAltitude = math.Max(out.MaxAltitude, p.Z)
		out.AvgAltitude += p.Z
	}
	out.AvgAltitude /= float64(len(route))

	return out
}
