package combat

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/jobendik/laser-sub002/internal/geom"
	"github.com/jobendik/laser-sub002/internal/world"
)

// grenadeProfile is the fixed data for one grenade kind.
type grenadeProfile struct {
	Fuse   float64 // seconds; the throw leads the target by this much
	Radius float64 // effect radius
}

var grenadeTable = [...]grenadeProfile{
	world.GrenadeFrag:  {Fuse: 3.0, Radius: 5},
	world.GrenadeSmoke: {Fuse: 1.5, Radius: 6},
	world.GrenadeFlash: {Fuse: 1.5, Radius: 7},
}

// GrenadeProfile returns the fuse and radius of a kind.
func GrenadeProfile(k world.GrenadeKind) (fuse, radius float64) {
	if k < 0 || int(k) >= len(grenadeTable) {
		return 0, 0
	}
	p := grenadeTable[k]
	return p.Fuse, p.Radius
}

// GrenadeThrow is a decided throw.
type GrenadeThrow struct {
	Kind world.GrenadeKind
	At   mgl64.Vec3
}

// preferredGrenade picks a kind: smoke to cover a wounded retreat, flash up
// close, frag otherwise.
func (e *Engine) preferredGrenade(d float64, health float64) world.GrenadeKind {
	switch {
	case e.seekingCover && health < e.cfg.LowHealth:
		return world.GrenadeSmoke
	case d < e.cfg.FlashRange:
		return world.GrenadeFlash
	default:
		return world.GrenadeFrag
	}
}

// considerGrenade decides whether to throw at the target this evaluation.
func (e *Engine) considerGrenade(now float64, self world.Pose, t TargetView, visibleCount int) (GrenadeThrow, bool) {
	if now-e.lastGrenade < e.cfg.GrenadeCooldown {
		return GrenadeThrow{}, false
	}
	d := geom.Dist(self.Position, t.Position)
	if d > e.cfg.GrenadeRange {
		return GrenadeThrow{}, false
	}
	if !e.w.InCover(t.ID) && visibleCount < 2 {
		return GrenadeThrow{}, false
	}
	if e.rng.Float64() >= e.cfg.GrenadeChance {
		return GrenadeThrow{}, false
	}
	kind, ok := e.availableGrenade(e.preferredGrenade(d, e.w.Health(e.self)))
	if !ok {
		return GrenadeThrow{}, false
	}
	fuse, _ := GrenadeProfile(kind)
	at := t.Position.Add(e.w.Velocity(t.ID).Mul(fuse))
	if !e.w.ThrowGrenade(e.self, kind, at) {
		return GrenadeThrow{}, false
	}
	e.lastGrenade = now
	return GrenadeThrow{Kind: kind, At: at}, true
}

// availableGrenade falls back to frag, then to anything carried.
func (e *Engine) availableGrenade(want world.GrenadeKind) (world.GrenadeKind, bool) {
	if e.w.Grenades(e.self, want) > 0 {
		return want, true
	}
	for k := world.GrenadeFrag; int(k) < len(grenadeTable); k++ {
		if e.w.Grenades(e.self, k) > 0 {
			return k, true
		}
	}
	return want, false
}
