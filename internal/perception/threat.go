package perception

import (
	"math"

	"github.com/jobendik/laser-sub002/internal/geom"
	"github.com/jobendik/laser-sub002/internal/world"
)

// weaponThreat is the per-class multiplier used in threat scoring.
var weaponThreat = [...]float64{
	world.WeaponMelee:   0.8,
	world.WeaponPistol:  1.0,
	world.WeaponShotgun: 1.2,
	world.WeaponSMG:     1.3,
	world.WeaponRifle:   1.5,
	world.WeaponSniper:  1.8,
}

// WeaponThreat returns the multiplier for a weapon class.
func WeaponThreat(c world.WeaponClass) float64 {
	if c < 0 || int(c) >= len(weaponThreat) {
		return 1
	}
	return weaponThreat[c]
}

// ThreatInput is everything the threat score depends on.
type ThreatInput struct {
	Distance   float64
	SightRange float64
	Health     float64 // 0-1
	Weapon     world.WeaponClass
	Visible    bool
	SinceSeen  float64 // seconds since last sighting
	Recent     float64 // recency window
}

// ThreatScore rates how dangerous a tracked target is.
func ThreatScore(in ThreatInput) float64 {
	dist := 0.1
	if in.SightRange > 0 {
		dist = math.Max(0.1, 1-in.Distance/in.SightRange)
	}
	health := 0.5 + 0.5*geom.Clamp01(in.Health)
	visible := 1.0
	if in.Visible {
		visible = 1.5
	}
	recency := 1.0
	if in.SinceSeen <= in.Recent {
		recency = 1.3
	}
	return dist * health * WeaponThreat(in.Weapon) * visible * recency
}
