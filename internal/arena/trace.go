package arena

import (
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/jobendik/laser-sub002/internal/world"
)

// Trace implements world.Tracer. Buildings block below their roof, smoke
// blocks at any height, and characters are upright cylinders. A character
// whose cylinder contains the trace origin is skipped so agents never hit
// themselves.
func (a *Arena) Trace(from, to mgl64.Vec3) world.TraceResult {
	res := world.TraceResult{Entity: world.NoEntity}
	length := to.Sub(from).Len()
	if length < 1e-9 {
		return res
	}
	best := math.Inf(1)
	bb, err := segmentBox(from, to, a.cfg.CharacterRadius)
	if err != nil {
		return res
	}

	for _, s := range a.static.SearchIntersect(bb) {
		b := s.(*Building)
		t, ok := segmentAABB(from, to, b.Min, b.Max)
		if !ok || t >= best {
			continue
		}
		z := from[2] + (to[2]-from[2])*t
		if z > b.Max[2] || z < b.Min[2] {
			continue
		}
		best = t
		res.Entity = world.NoEntity
	}
	for _, sm := range a.smoke {
		if t, ok := segmentCircle(from, to, sm.center, sm.radius); ok && t < best {
			best = t
			res.Entity = world.NoEntity
		}
	}
	for _, s := range a.charTree.SearchIntersect(bb) {
		c := s.(*Character)
		if !c.Alive() {
			continue
		}
		p := c.Pose.Position
		if inCylinder(from, p, a.cfg.CharacterRadius, a.cfg.CharacterHeight) {
			continue
		}
		t, ok := segmentCircle(from, to, p, a.cfg.CharacterRadius)
		if !ok || t >= best {
			continue
		}
		z := from[2] + (to[2]-from[2])*t
		if z < p[2] || z > p[2]+a.cfg.CharacterHeight {
			continue
		}
		best = t
		res.Entity = c.ID
	}

	if math.IsInf(best, 1) {
		return res
	}
	res.Hit = true
	res.Point = from.Add(to.Sub(from).Mul(best))
	res.Distance = best * length
	return res
}

// segmentBox is the XY bounding box of a segment grown by pad.
func segmentBox(from, to mgl64.Vec3, pad float64) (rtreego.Rect, error) {
	minX, maxX := math.Min(from[0], to[0])-pad, math.Max(from[0], to[0])+pad
	minY, maxY := math.Min(from[1], to[1])-pad, math.Max(from[1], to[1])+pad
	return rtreego.NewRect(rtreego.Point{minX, minY}, []float64{maxX - minX, maxY - minY})
}

// segmentAABB returns the first parameter t in [0,1] where the XY segment
// enters the box footprint.
func segmentAABB(from, to, min, max mgl64.Vec3) (float64, bool) {
	tMin, tMax := 0.0, 1.0
	for axis := 0; axis < 2; axis++ {
		o, d := from[axis], to[axis]-from[axis]
		if math.Abs(d) < 1e-12 {
			if o < min[axis] || o > max[axis] {
				return 0, false
			}
			continue
		}
		inv := 1 / d
		t1 := (min[axis] - o) * inv
		t2 := (max[axis] - o) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}
	return tMin, true
}

// segmentCircle returns the first parameter t in [0,1] where the XY segment
// enters the circle. A segment starting inside reports t=0.
func segmentCircle(from, to, center mgl64.Vec3, r float64) (float64, bool) {
	ox, oy := from[0]-center[0], from[1]-center[1]
	dx, dy := to[0]-from[0], to[1]-from[1]
	qa := dx*dx + dy*dy
	qc := ox*ox + oy*oy - r*r
	if qc <= 0 {
		return 0, true
	}
	if qa < 1e-12 {
		return 0, false
	}
	qb := 2 * (ox*dx + oy*dy)
	disc := qb*qb - 4*qa*qc
	if disc < 0 {
		return 0, false
	}
	t := (-qb - math.Sqrt(disc)) / (2 * qa)
	if t < 0 || t > 1 {
		return 0, false
	}
	return t, true
}

func inCylinder(p, base mgl64.Vec3, r, h float64) bool {
	dx, dy := p[0]-base[0], p[1]-base[1]
	return dx*dx+dy*dy <= r*r && p[2] >= base[2]-1e-9 && p[2] <= base[2]+h
}
