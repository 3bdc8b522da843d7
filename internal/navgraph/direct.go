package navgraph

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/jobendik/laser-sub002/internal/geom"
	"github.com/jobendik/laser-sub002/internal/world"
)

// maxDetourSteps bounds how far sideways DirectPath looks for a way round.
const maxDetourSteps = 8

// DirectPath is the fallback used when graph search fails: a straight line to
// the destination where each blocked stretch is replaced by one lateral detour
// point. The side that clears with the smaller sideways offset lies closer to
// the destination and wins; when both clear at the same offset the detours
// are equidistant and the left of travel is taken. The destination is always
// the last waypoint.
func DirectPath(from, to mgl64.Vec3, step float64, walk world.Walkability) []mgl64.Vec3 {
	if step <= 0 {
		step = DefaultCellSize
	}
	delta := to.Sub(from)
	length := delta.Len()
	if length < 1e-9 || walk == nil {
		return []mgl64.Vec3{to}
	}
	dir := delta.Mul(1 / length)
	side := geom.Normalize(geom.Left(dir))
	n := int(math.Ceil(length / step))
	sample := func(i int) mgl64.Vec3 {
		d := math.Min(float64(i)*step, length)
		return from.Add(dir.Mul(d))
	}

	var out []mgl64.Vec3
	for i := 1; i < n; {
		if walk.IsWalkable(sample(i)) {
			i++
			continue
		}
		j := i
		for j < n && !walk.IsWalkable(sample(j)) {
			j++
		}
		mid := from.Add(dir.Mul((float64(i+j) / 2) * step))
		if p, ok := detourPoint(mid, side, step, walk); ok {
			out = append(out, p)
		}
		i = j + 1
	}
	return append(out, to)
}

// detourPoint steps sideways from mid until one side is walkable. Both
// candidates at a step are equidistant from any point on the line, so the
// first step that clears decides and left wins a tie.
func detourPoint(mid, side mgl64.Vec3, step float64, walk world.Walkability) (mgl64.Vec3, bool) {
	for k := 1; k <= maxDetourSteps; k++ {
		off := side.Mul(float64(k) * step)
		if left := mid.Add(off); walk.IsWalkable(left) {
			return left, true
		}
		if right := mid.Sub(off); walk.IsWalkable(right) {
			return right, true
		}
	}
	return mgl64.Vec3{}, false
}
