package combat

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/jobendik/laser-sub002/internal/world"
)

type fakeChar struct {
	pose     world.Pose
	health   float64
	velocity mgl64.Vec3
	inCover  bool
	weapons  []world.Weapon
	current  int
	ammo     int
	grenades map[world.GrenadeKind]int
}

// fakeWorld is an open field with optional cover points and a wall flag.
type fakeWorld struct {
	chars    map[world.EntityID]*fakeChar
	walled   bool // every trace hits static geometry halfway
	cover    []mgl64.Vec3
	shots    []mgl64.Vec3
	reloads  int
	switches []string
	throws   []world.GrenadeKind
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{chars: map[world.EntityID]*fakeChar{}}
}

func rifle() world.Weapon {
	return world.Weapon{
		ID: "rifle", Class: world.WeaponRifle,
		MaxRange: 80, OptimalRange: 30, EffectiveRange: 40,
		MaxSpread: 1, Accuracy: 1, ReloadTime: 2,
	}
}

func (w *fakeWorld) add(id world.EntityID, pos, fwd mgl64.Vec3) *fakeChar {
	c := &fakeChar{
		pose:     world.Pose{Position: pos, Forward: fwd},
		health:   1,
		weapons:  []world.Weapon{rifle()},
		ammo:     30,
		grenades: map[world.GrenadeKind]int{},
	}
	w.chars[id] = c
	return c
}

func (w *fakeWorld) Trace(from, to mgl64.Vec3) world.TraceResult {
	if !w.walled {
		return world.TraceResult{Entity: world.NoEntity}
	}
	mid := from.Add(to.Sub(from).Mul(0.5))
	return world.TraceResult{Hit: true, Point: mid, Distance: mid.Sub(from).Len(), Entity: world.NoEntity}
}

func (w *fakeWorld) Exists(id world.EntityID) bool {
	c, ok := w.chars[id]
	return ok && c.health > 0
}
func (w *fakeWorld) Pose(id world.EntityID) world.Pose        { return w.chars[id].pose }
func (w *fakeWorld) Team(world.EntityID) int                  { return 0 }
func (w *fakeWorld) Health(id world.EntityID) float64         { return w.chars[id].health }
func (w *fakeWorld) Velocity(id world.EntityID) mgl64.Vec3    { return w.chars[id].velocity }
func (w *fakeWorld) Weapon(id world.EntityID) world.Weapon    { return w.chars[id].weapons[0] }
func (w *fakeWorld) InCover(id world.EntityID) bool           { return w.chars[id].inCover }
func (w *fakeWorld) Weapons(id world.EntityID) []world.Weapon { return w.chars[id].weapons }

func (w *fakeWorld) Current(id world.EntityID) (world.Weapon, bool) {
	c := w.chars[id]
	if c.current < 0 || c.current >= len(c.weapons) {
		return world.Weapon{}, false
	}
	return c.weapons[c.current], true
}

func (w *fakeWorld) SwitchWeapon(id world.EntityID, weaponID string) bool {
	c := w.chars[id]
	for i, wp := range c.weapons {
		if wp.ID == weaponID {
			c.current = i
			w.switches = append(w.switches, weaponID)
			return true
		}
	}
	return false
}

func (w *fakeWorld) FireWeapon(id world.EntityID, aim mgl64.Vec3) {
	w.chars[id].ammo--
	w.shots = append(w.shots, aim)
}

func (w *fakeWorld) HasAmmo(id world.EntityID) bool { return w.chars[id].ammo > 0 }

func (w *fakeWorld) RequestReload(id world.EntityID) {
	w.chars[id].ammo = 30
	w.reloads++
}

func (w *fakeWorld) Grenades(id world.EntityID, k world.GrenadeKind) int {
	return w.chars[id].grenades[k]
}

func (w *fakeWorld) ThrowGrenade(id world.EntityID, k world.GrenadeKind, _ mgl64.Vec3) bool {
	c := w.chars[id]
	if c.grenades[k] <= 0 {
		return false
	}
	c.grenades[k]--
	w.throws = append(w.throws, k)
	return true
}

func (w *fakeWorld) NearestCover(from mgl64.Vec3, maxDist float64) (mgl64.Vec3, bool) {
	for _, p := range w.cover {
		if p.Sub(from).Len() <= maxDist {
			return p, true
		}
	}
	return mgl64.Vec3{}, false
}

type fakeSquad map[world.EntityID]int

func (s fakeSquad) Engaging(target, _ world.EntityID) int { return s[target] }

// duel places a shooter at the origin facing +x and an enemy at dist.
func duel(dist float64) (*fakeWorld, *Engine) {
	w := newFakeWorld()
	w.add(0, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0})
	w.add(1, mgl64.Vec3{dist, 0, 0}, mgl64.Vec3{0, 1, 0})
	cfg := DefaultConfig()
	cfg.BaseAccuracy = 1
	e := New(cfg, 0, w, rand.New(rand.NewSource(1))) // #nosec G404 -- deterministic test seed
	return w, e
}

const dt = 1.0 / 60.0
