package arena

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/jobendik/laser-sub002/internal/combat"
	"github.com/jobendik/laser-sub002/internal/geom"
	"github.com/jobendik/laser-sub002/internal/world"
)

// EventKind tags something physical that happened in the arena.
type EventKind int

const (
	EventShot EventKind = iota
	EventHit
	EventKilled
	EventReloaded
	EventGrenadeThrown
	EventDetonation
)

func (k EventKind) String() string {
	switch k {
	case EventShot:
		return "shot"
	case EventHit:
		return "hit"
	case EventKilled:
		return "killed"
	case EventReloaded:
		return "reloaded"
	case EventGrenadeThrown:
		return "grenade_thrown"
	case EventDetonation:
		return "detonation"
	default:
		return "unknown"
	}
}

// Event is one arena occurrence, drained by the simulation each tick.
type Event struct {
	Kind     EventKind
	Source   world.EntityID
	Target   world.EntityID
	Position mgl64.Vec3
	Aim      mgl64.Vec3
	Weapon   string
	Grenade  world.GrenadeKind
	Amount   float64
	Time     float64
}

type liveGrenade struct {
	owner   world.EntityID
	kind    world.GrenadeKind
	at      mgl64.Vec3
	detonAt float64
}

type smokeCloud struct {
	center  mgl64.Vec3
	radius  float64
	expires float64
}

func (a *Arena) emit(ev Event) {
	ev.Time = a.now
	a.events = append(a.events, ev)
}

// DrainEvents returns and clears everything recorded since the last call.
func (a *Arena) DrainEvents() []Event {
	out := a.events
	a.events = nil
	return out
}

// Smoke returns active smoke clouds as centre and radius pairs.
func (a *Arena) Smoke() ([]mgl64.Vec3, []float64) {
	centers := make([]mgl64.Vec3, len(a.smoke))
	radii := make([]float64, len(a.smoke))
	for i, s := range a.smoke {
		centers[i], radii[i] = s.center, s.radius
	}
	return centers, radii
}

func (a *Arena) throw(owner world.EntityID, kind world.GrenadeKind, at mgl64.Vec3) {
	fuse, _ := combat.GrenadeProfile(kind)
	a.grenades = append(a.grenades, liveGrenade{owner: owner, kind: kind, at: at, detonAt: a.now + fuse})
	a.emit(Event{Kind: EventGrenadeThrown, Source: owner, Target: world.NoEntity, Position: at, Grenade: kind})
}

// detonate resolves every grenade whose fuse has run out. Frags damage by
// distance falloff, smoke starts blocking traces, flashes only make noise.
func (a *Arena) detonate(now float64) {
	kept := a.grenades[:0]
	var due []liveGrenade
	for _, g := range a.grenades {
		if now >= g.detonAt {
			due = append(due, g)
			continue
		}
		kept = append(kept, g)
	}
	a.grenades = kept
	for _, g := range due {
		_, radius := combat.GrenadeProfile(g.kind)
		a.emit(Event{Kind: EventDetonation, Source: g.owner, Target: world.NoEntity, Position: g.at, Grenade: g.kind})
		switch g.kind {
		case world.GrenadeFrag:
			for _, id := range a.Within(g.at, radius) {
				d := geom.FlatDist(g.at, a.chars[id].Pose.Position)
				a.Damage(id, g.owner, a.cfg.FragDamage*(1-d/radius))
			}
		case world.GrenadeSmoke:
			a.smoke = append(a.smoke, smokeCloud{center: g.at, radius: radius, expires: now + a.cfg.SmokeDuration})
		}
	}
}

func (a *Arena) clearSmoke(now float64) {
	kept := a.smoke[:0]
	for _, s := range a.smoke {
		if now < s.expires {
			kept = append(kept, s)
		}
	}
	a.smoke = kept
}
