// Package geom holds the small amount of vector math shared by the agent
// subsystems. Z is up; the ground plane is XY.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Up is the world vertical axis.
var Up = mgl64.Vec3{0, 0, 1}

// Flat drops the vertical component.
func Flat(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v[0], v[1], 0}
}

// Dist returns the Euclidean distance between a and b.
func Dist(a, b mgl64.Vec3) float64 {
	return b.Sub(a).Len()
}

// FlatDist returns the ground-plane distance between a and b.
func FlatDist(a, b mgl64.Vec3) float64 {
	return math.Hypot(b[0]-a[0], b[1]-a[1])
}

// Normalize returns v scaled to unit length, or the zero vector when v is
// too short to have a direction.
func Normalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < 1e-9 {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

// HeadingTo returns the angle in radians from a toward b on the ground plane.
func HeadingTo(a, b mgl64.Vec3) float64 {
	return math.Atan2(b[1]-a[1], b[0]-a[0])
}

// Heading returns the ground-plane angle of a direction vector.
func Heading(dir mgl64.Vec3) float64 {
	return math.Atan2(dir[1], dir[0])
}

// FromHeading returns the unit ground vector for a heading.
func FromHeading(h float64) mgl64.Vec3 {
	return mgl64.Vec3{math.Cos(h), math.Sin(h), 0}
}

// NormalizeAngle wraps an angle to [-pi, pi].
func NormalizeAngle(a float64) float64 {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return 0
	}
	a = math.Mod(a, 2*math.Pi)
	if a > math.Pi {
		a -= 2 * math.Pi
	} else if a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// Bearing returns the unsigned ground-plane angle between forward and the
// direction from origin to p, in radians.
func Bearing(origin, forward, p mgl64.Vec3) float64 {
	to := Flat(p.Sub(origin))
	if to.Len() < 1e-9 {
		return 0
	}
	return math.Abs(NormalizeAngle(HeadingTo(mgl64.Vec3{}, to) - Heading(forward)))
}

// TurnToward rotates heading toward target by at most rate radians.
func TurnToward(heading, target, rate float64) float64 {
	diff := NormalizeAngle(target - heading)
	if math.Abs(diff) <= rate {
		return NormalizeAngle(target)
	}
	if diff > 0 {
		return NormalizeAngle(heading + rate)
	}
	return NormalizeAngle(heading - rate)
}

// Left returns the ground-plane perpendicular 90 degrees counter-clockwise.
func Left(dir mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{-dir[1], dir[0], 0}
}

// Right returns the ground-plane perpendicular 90 degrees clockwise.
func Right(dir mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{dir[1], -dir[0], 0}
}

// Rotate rotates dir around the vertical axis by angle radians.
func Rotate(dir mgl64.Vec3, angle float64) mgl64.Vec3 {
	c, s := math.Cos(angle), math.Sin(angle)
	return mgl64.Vec3{dir[0]*c - dir[1]*s, dir[0]*s + dir[1]*c, dir[2]}
}

// PathLength sums the segment lengths of a polyline.
func PathLength(pts []mgl64.Vec3) float64 {
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += Dist(pts[i-1], pts[i])
	}
	return total
}

// Variance returns the mean squared distance of pts from their centroid.
func Variance(pts []mgl64.Vec3) float64 {
	if len(pts) == 0 {
		return 0
	}
	var c mgl64.Vec3
	for _, p := range pts {
		c = c.Add(p)
	}
	c = c.Mul(1 / float64(len(pts)))
	sum := 0.0
	for _, p := range pts {
		d := p.Sub(c)
		sum += d.Dot(d)
	}
	return sum / float64(len(pts))
}

// Clamp01 clamps v to [0,1]; NaN maps to 0.
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// Clamp clamps v to [lo,hi]; NaN maps to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
