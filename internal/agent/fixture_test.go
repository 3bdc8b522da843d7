package agent

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/jobendik/laser-sub002/internal/arena"
	"github.com/jobendik/laser-sub002/internal/world"
)

const dt = 1.0 / 60.0

type recorder struct {
	got []Notification
}

func (r *recorder) Notify(n Notification) { r.got = append(r.got, n) }

func (r *recorder) of(agent world.EntityID, kind NotificationKind) []Notification {
	var out []Notification
	for _, n := range r.got {
		if n.Agent == agent && n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

func (r *recorder) first(agent world.EntityID, kind NotificationKind) int {
	for i, n := range r.got {
		if n.Agent == agent && n.Kind == kind {
			return i
		}
	}
	return -1
}

func rifle() world.Weapon {
	return world.Weapon{
		ID: "rifle", Class: world.WeaponRifle,
		MaxRange: 80, OptimalRange: 30, EffectiveRange: 40,
		MaxSpread: 1, Accuracy: 1, ReloadTime: 2,
	}
}

func loadout() arena.Loadout {
	return arena.Loadout{Weapons: []world.Weapon{rifle()}, Magazine: 30}
}

type fixture struct {
	arena *arena.Arena
	reg   *Registry
	rec   *recorder
	now   float64
}

func newFixture() *fixture {
	a := arena.New(arena.DefaultConfig())
	return &fixture{arena: a, reg: NewRegistry(a), rec: &recorder{}}
}

// body spawns a character nobody drives.
func (f *fixture) body(team int, pos, fwd mgl64.Vec3) world.EntityID {
	return f.arena.Spawn(team, "body", pos, fwd, loadout())
}

func (f *fixture) agent(team int, pos, fwd mgl64.Vec3) *Agent {
	id := f.arena.Spawn(team, "agent", pos, fwd, loadout())
	a := New(id, f.arena, nil, DefaultConfig(), rand.New(rand.NewSource(int64(id))), f.rec) // #nosec G404 -- deterministic test seed
	f.reg.Add(a)
	return a
}

func (f *fixture) step(ticks int) {
	for i := 0; i < ticks; i++ {
		f.now += dt
		f.arena.Advance(f.now)
		for id, r := range f.reg.Tick(f.now, dt) {
			f.arena.Move(id, r.Delta, r.Heading, dt)
		}
	}
}
