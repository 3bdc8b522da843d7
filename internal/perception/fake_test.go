package perception

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/jobendik/laser-sub002/internal/geom"
	"github.com/jobendik/laser-sub002/internal/world"
)

type fakeChar struct {
	pose    world.Pose
	team    int
	health  float64
	weapon  world.Weapon
	gone    bool
	blocked bool // a wall sits right in front of anyone looking at it
}

// fakeWorld is an open field; characters can be individually hidden.
type fakeWorld struct {
	chars map[world.EntityID]*fakeChar
	order []world.EntityID
	// wallAt, when > 0, makes every blocked trace stop this far out.
	wallAt float64
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{chars: map[world.EntityID]*fakeChar{}, wallAt: 1}
}

func (w *fakeWorld) add(id world.EntityID, team int, pos, fwd mgl64.Vec3) *fakeChar {
	c := &fakeChar{
		pose:   world.Pose{Position: pos, Forward: fwd},
		team:   team,
		health: 1,
		weapon: world.Weapon{Class: world.WeaponRifle},
	}
	w.chars[id] = c
	w.order = append(w.order, id)
	return c
}

func (w *fakeWorld) Trace(from, to mgl64.Vec3) world.TraceResult {
	for _, id := range w.order {
		c := w.chars[id]
		if !c.blocked || c.gone {
			continue
		}
		if geom.FlatDist(to, c.pose.Position) < 0.01 {
			dir := geom.Normalize(to.Sub(from))
			return world.TraceResult{Hit: true, Point: from.Add(dir.Mul(w.wallAt)), Distance: w.wallAt, Entity: world.NoEntity}
		}
	}
	return world.TraceResult{Entity: world.NoEntity}
}

func (w *fakeWorld) CandidateTargets(self world.EntityID, radius float64) []world.EntityID {
	me := w.chars[self]
	var out []world.EntityID
	for _, id := range w.order {
		c := w.chars[id]
		if id == self || c.gone || c.team == me.team {
			continue
		}
		if geom.Dist(me.pose.Position, c.pose.Position) <= radius {
			out = append(out, id)
		}
	}
	return out
}

func (w *fakeWorld) Exists(id world.EntityID) bool {
	c, ok := w.chars[id]
	return ok && !c.gone
}
func (w *fakeWorld) Pose(id world.EntityID) world.Pose     { return w.chars[id].pose }
func (w *fakeWorld) Team(id world.EntityID) int            { return w.chars[id].team }
func (w *fakeWorld) Health(id world.EntityID) float64      { return w.chars[id].health }
func (w *fakeWorld) Velocity(world.EntityID) mgl64.Vec3    { return mgl64.Vec3{} }
func (w *fakeWorld) Weapon(id world.EntityID) world.Weapon { return w.chars[id].weapon }
func (w *fakeWorld) InCover(world.EntityID) bool           { return false }

// instantConfig runs a perception tick on every Update.
func instantConfig() Config {
	cfg := DefaultConfig()
	cfg.UpdateInterval = 0
	return cfg
}

func hasEvent(rep Report, kind EventKind) bool {
	for _, ev := range rep.Events {
		if ev.Kind == kind {
			return true
		}
	}
	return false
}
