package combat

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/jobendik/laser-sub002/internal/geom"
)

// LeadPoint predicts where a moving target will be when a projectile fired
// now arrives. Hitscan weapons (speed <= 0) aim at the target itself.
func LeadPoint(target, velocity mgl64.Vec3, distance, projectileSpeed float64) mgl64.Vec3 {
	if projectileSpeed <= 0 {
		return target
	}
	return target.Add(velocity.Mul(distance / projectileSpeed))
}

// Spread perturbs an aim point by maxSpread*(1-accuracy) in a random
// direction. The vertical component is scaled by vertical.
func Spread(aim mgl64.Vec3, accuracy, maxSpread, vertical float64, rng *rand.Rand) mgl64.Vec3 {
	mag := maxSpread * (1 - geom.Clamp01(accuracy))
	if mag <= 0 || rng == nil {
		return aim
	}
	theta := rng.Float64() * 2 * math.Pi
	phi := (rng.Float64()*2 - 1) * math.Pi / 2
	h := mag * math.Cos(phi)
	return aim.Add(mgl64.Vec3{math.Cos(theta) * h, math.Sin(theta) * h, mag * math.Sin(phi) * vertical})
}
