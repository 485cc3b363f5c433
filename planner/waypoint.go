package planner

import "math"

// Waypoint is a single position in the mission volume, in meters.
type Waypoint struct {
	X float64 `bson:"x" json:"x" yaml:"x"`
	Y float64 `bson:"y" json:"y" yaml:"y"`
	Z float64 `bson:"z" json:"z" yaml:"z"`
}

func (w Waypoint) Add(other Waypoint) Waypoint {
	return Waypoint{X: w.X + other.X, Y: w.Y + other.Y, Z: w.Z + other.Z}
}

func (w Waypoint) Sub(other Waypoint) Waypoint {
	return Waypoint{X: w.X - other.X, Y: w.Y - other.Y, Z: w.Z - other.Z}
}

func (w Waypoint) Scale(f float64) Waypoint {
	return Waypoint{X: w.X * f, Y: w.Y * f, Z: w.Z * f}
}

func (w Waypoint) Dot(other Waypoint) float64 {
	return w.X*other.X + w.Y*other.Y + w.Z*other.Z
}

// Norm returns the euclidean length of the waypoint treated as a vector.
func (w Waypoint) Norm() float64 {
	return math.Sqrt(w.X*w.X + w.Y*w.Y + w.Z*w.Z)
}

func (w Waypoint) DistanceTo(other Waypoint) float64 {
	return other.Sub(w).Norm()
}

// Lerp interpolates linearly between w and other. An alpha of 0 returns w
// and an alpha of 1 returns other.
func (w Waypoint) Lerp(other Waypoint, alpha float64) Waypoint {
	return w.Scale(1 - alpha).Add(other.Scale(alpha))
}

// Obstacle is a spherical exclusion zone.
type Obstacle struct {
	Center Waypoint `bson:"center" json:"center" yaml:"center"`
	Radius float64  `bson:"radius" json:"radius" yaml:"radius"`
}

func (o Obstacle) Contains(p Waypoint) bool {
	return p.DistanceTo(o.Center) < o.Radius
}

// Bounds describes the axis-aligned volume routes are generated within.
type Bounds struct {
	MinX float64 `bson:"min_x" json:"min_x" yaml:"min_x"`
	MaxX float64 `bson:"max_x" json:"max_x" yaml:"max_x"`
	MinY float64 `bson:"min_y" json:"min_y" yaml:"min_y"`
	MaxY float64 `bson:"max_y" json:"max_y" yaml:"max_y"`
	MinZ float64 `bson:"min_z" json:"min_z" yaml:"min_z"`
	MaxZ float64 `bson:"max_z" json:"max_z" yaml:"max_z"`
}

// DefaultBounds returns the standard mission volume: a 2km square footprint
// with altitude between 50 and 500 meters.
func DefaultBounds() Bounds {
	return Bounds{
		MinX: -1000, MaxX: 1000,
		MinY: -1000, MaxY: 1000,
		MinZ: 50, MaxZ: 500,
	}
}

func (b Bounds) IsValid() bool {
	return b.MinX < b.MaxX && b.MinY < b.MaxY && b.MinZ < b.MaxZ
}

func (b Bounds) Contains(p Waypoint) bool {
	return p.X >= b.MinX && p.X <= b.MaxX &&
		p.Y >= b.MinY && p.Y <= b.MaxY &&
		p.Z >= b.MinZ && p.Z <= b.MaxZ
}

// Clamp returns the closest point to p inside the bounds.
func (b Bounds) Clamp(p Waypoint) Waypoint {
	return Waypoint{
		X: math.Min(math.Max(p.X, b.MinX), b.MaxX),
		Y: math.Min(math.Max(p.Y, b.MinY), b.MaxY),
		Z: math.Min(math.Max(p.Z, b.MinZ), b.MaxZ),
	}
}
