package navgraph

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/jobendik/laser-sub002/internal/world"
)

// ClearFunc reports whether an agent can travel straight from a to b.
type ClearFunc func(a, b mgl64.Vec3) bool

// Smooth string-pulls a path: from the current anchor it extends the segment
// forward while clear(anchor, next) holds, then jumps to the furthest point
// reached. The first and last waypoints are always kept.
func Smooth(path []mgl64.Vec3, clear ClearFunc) []mgl64.Vec3 {
	if len(path) <= 2 || clear == nil {
		return append([]mgl64.Vec3(nil), path...)
	}
	out := []mgl64.Vec3{path[0]}
	last := len(path) - 1
	for i := 0; i < last; {
		j := i + 1
		for j < last && clear(path[i], path[j+1]) {
			j++
		}
		out = append(out, path[j])
		i = j
	}
	return out
}

// SampledClear builds a ClearFunc that samples walkability along the segment
// every step units.
func SampledClear(walk world.Walkability, step float64) ClearFunc {
	if step <= 0 {
		step = DefaultCellSize / 2
	}
	return func(a, b mgl64.Vec3) bool {
		d := b.Sub(a)
		l := d.Len()
		n := int(math.Ceil(l / step))
		for i := 1; i < n; i++ {
			if !walk.IsWalkable(a.Add(d.Mul(float64(i) / float64(n)))) {
				return false
			}
		}
		return walk.IsWalkable(b)
	}
}
