package steering

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/jobendik/laser-sub002/internal/geom"
)

// probeAngles is the obstacle fan relative to the desired heading.
var probeAngles = [...]float64{
	0,
	math.Pi / 6, -math.Pi / 6,
	math.Pi / 3, -math.Pi / 3,
	math.Pi / 2, -math.Pi / 2,
}

// avoidance casts the probe fan and returns the summed repulsion. A hit at
// distance d contributes 1 - d/radius away from the probe direction.
func (e *Executor) avoidance(pos, desired mgl64.Vec3) mgl64.Vec3 {
	var force mgl64.Vec3
	if e.tracer == nil || desired.Len() == 0 || e.avoidRadius <= 0 {
		return force
	}
	origin := pos.Add(geom.Up.Mul(e.cfg.TraceHeight))
	for _, a := range probeAngles {
		ray := geom.Rotate(desired, a)
		tr := e.tracer.Trace(origin, origin.Add(ray.Mul(e.avoidRadius)))
		if !tr.Hit || tr.Entity == e.self {
			continue
		}
		strength := 1 - tr.Distance/e.avoidRadius
		if strength <= 0 {
			continue
		}
		force = force.Sub(ray.Mul(strength))
	}
	return force
}

// separation pushes away from every neighbour closer than minDist, harder
// the closer it is.
func separation(pos mgl64.Vec3, neighbors []mgl64.Vec3, minDist float64) mgl64.Vec3 {
	var force mgl64.Vec3
	if minDist <= 0 {
		return force
	}
	for _, n := range neighbors {
		away := geom.Flat(pos.Sub(n))
		d := away.Len()
		if d < 1e-9 || d >= minDist {
			continue
		}
		force = force.Add(away.Mul((1 - d/minDist) / d))
	}
	return force
}
