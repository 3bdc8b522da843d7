package arena

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobendik/laser-sub002/internal/world"
)

func testRifle() world.Weapon {
	return world.Weapon{
		ID: "rifle", Class: world.WeaponRifle,
		MaxRange: 80, OptimalRange: 30, EffectiveRange: 40,
		MaxSpread: 1, Accuracy: 1, ReloadTime: 2,
	}
}

func testLoadout() Loadout {
	return Loadout{
		Weapons:  []world.Weapon{testRifle()},
		Magazine: 3,
		Grenades: map[world.GrenadeKind]int{world.GrenadeFrag: 1, world.GrenadeSmoke: 1},
	}
}

func TestTraceHitsBuildingBelowRoof(t *testing.T) {
	a := New(DefaultConfig())
	_, ok := a.AddBuilding(mgl64.Vec3{10, -5, 0}, mgl64.Vec3{12, 5, 3})
	require.True(t, ok)

	tr := a.Trace(mgl64.Vec3{0, 0, 1}, mgl64.Vec3{20, 0, 1})
	require.True(t, tr.Hit)
	assert.Equal(t, world.NoEntity, tr.Entity)
	assert.InDelta(t, 10, tr.Distance, 1e-9)
	assert.InDelta(t, 10, tr.Point[0], 1e-9)

	over := a.Trace(mgl64.Vec3{0, 0, 5}, mgl64.Vec3{20, 0, 5})
	assert.False(t, over.Hit, "trace above the roof should pass")
}

func TestAddBuildingRejectsDegenerateBox(t *testing.T) {
	a := New(DefaultConfig())
	_, ok := a.AddBuilding(mgl64.Vec3{1, 1, 0}, mgl64.Vec3{1, 5, 3})
	assert.False(t, ok)
	assert.Empty(t, a.Buildings())
}

func TestTraceHitsCharacterButSkipsShooter(t *testing.T) {
	a := New(DefaultConfig())
	shooter := a.Spawn(0, "s", mgl64.Vec3{5, 5, 0}, mgl64.Vec3{1, 0, 0}, testLoadout())
	target := a.Spawn(1, "t", mgl64.Vec3{15, 5, 0}, mgl64.Vec3{-1, 0, 0}, testLoadout())

	eye := a.Pose(shooter).Position.Add(mgl64.Vec3{0, 0, 1.6})
	tr := a.Trace(eye, mgl64.Vec3{30, 5, 1.6})
	require.True(t, tr.Hit)
	assert.Equal(t, target, tr.Entity)
	assert.InDelta(t, 9.6, tr.Distance, 1e-6)
}

func TestTraceNearestHitWins(t *testing.T) {
	a := New(DefaultConfig())
	_, _ = a.AddBuilding(mgl64.Vec3{20, 0, 0}, mgl64.Vec3{22, 10, 4})
	behind := a.Spawn(1, "t", mgl64.Vec3{25, 5, 0}, mgl64.Vec3{}, testLoadout())
	front := a.Spawn(1, "u", mgl64.Vec3{10, 5, 0}, mgl64.Vec3{}, testLoadout())

	tr := a.Trace(mgl64.Vec3{0, 5, 1}, mgl64.Vec3{30, 5, 1})
	require.True(t, tr.Hit)
	assert.Equal(t, front, tr.Entity)
	assert.NotEqual(t, behind, tr.Entity)
}

func TestWalkability(t *testing.T) {
	a := New(DefaultConfig())
	_, _ = a.AddBuilding(mgl64.Vec3{10, 10, 0}, mgl64.Vec3{20, 20, 3})

	assert.True(t, a.IsWalkable(mgl64.Vec3{5, 5, 0}))
	assert.False(t, a.IsWalkable(mgl64.Vec3{15, 15, 0}))
	assert.False(t, a.IsWalkable(mgl64.Vec3{-1, 5, 0}))
	assert.False(t, a.IsWalkable(mgl64.Vec3{5, 121, 0}))
}

func TestMoveSlidesAlongWalls(t *testing.T) {
	a := New(DefaultConfig())
	_, _ = a.AddBuilding(mgl64.Vec3{10, 0, 0}, mgl64.Vec3{12, 50, 3})
	id := a.Spawn(0, "s", mgl64.Vec3{9.5, 5, 0}, mgl64.Vec3{1, 0, 0}, testLoadout())

	a.Move(id, mgl64.Vec3{1, 1, 0}, 0, 0.1)
	p := a.Pose(id).Position
	assert.InDelta(t, 9.5, p[0], 1e-9, "x blocked by the wall")
	assert.InDelta(t, 6, p[1], 1e-9, "y slides")
	assert.InDelta(t, 10, a.Velocity(id).Len(), 1e-9)
}

func TestCandidateTargetsAndWithin(t *testing.T) {
	a := New(DefaultConfig())
	self := a.Spawn(0, "a", mgl64.Vec3{10, 10, 0}, mgl64.Vec3{}, testLoadout())
	ally := a.Spawn(0, "b", mgl64.Vec3{12, 10, 0}, mgl64.Vec3{}, testLoadout())
	near := a.Spawn(1, "c", mgl64.Vec3{20, 10, 0}, mgl64.Vec3{}, testLoadout())
	far := a.Spawn(1, "d", mgl64.Vec3{90, 10, 0}, mgl64.Vec3{}, testLoadout())

	assert.Equal(t, []world.EntityID{near}, a.CandidateTargets(self, 50))
	assert.ElementsMatch(t, []world.EntityID{self, ally}, a.Within(mgl64.Vec3{11, 10, 0}, 3))

	a.Damage(near, far, 1)
	assert.False(t, a.Exists(near))
	assert.Empty(t, a.CandidateTargets(self, 50), "dead characters are not candidates")
}

func TestNearestCoverAndInCover(t *testing.T) {
	a := New(DefaultConfig())
	a.AddCover(mgl64.Vec3{30, 30, 0})
	a.AddCover(mgl64.Vec3{10, 12, 0})

	p, ok := a.NearestCover(mgl64.Vec3{10, 10, 0}, 5)
	require.True(t, ok)
	assert.Equal(t, mgl64.Vec3{10, 12, 0}, p)
	_, ok = a.NearestCover(mgl64.Vec3{60, 60, 0}, 5)
	assert.False(t, ok)

	id := a.Spawn(0, "s", mgl64.Vec3{10, 11, 0}, mgl64.Vec3{}, testLoadout())
	assert.True(t, a.InCover(id))
}

func TestFireReloadCycle(t *testing.T) {
	a := New(DefaultConfig())
	shooter := a.Spawn(0, "s", mgl64.Vec3{5, 5, 0}, mgl64.Vec3{1, 0, 0}, testLoadout())
	target := a.Spawn(1, "t", mgl64.Vec3{15, 5, 0}, mgl64.Vec3{-1, 0, 0}, testLoadout())

	for i := 0; i < 3; i++ {
		require.True(t, a.HasAmmo(shooter))
		a.FireWeapon(shooter, mgl64.Vec3{15, 5, 1.2})
	}
	assert.False(t, a.HasAmmo(shooter))
	assert.InDelta(t, 1-3*a.Config().Damage, a.Health(target), 1e-9)

	a.RequestReload(shooter)
	a.Advance(1)
	assert.False(t, a.HasAmmo(shooter), "still reloading")
	a.Advance(2.1)
	assert.True(t, a.HasAmmo(shooter))

	var kinds []EventKind
	for _, ev := range a.DrainEvents() {
		kinds = append(kinds, ev.Kind)
	}
	assert.Contains(t, kinds, EventShot)
	assert.Contains(t, kinds, EventHit)
	assert.Contains(t, kinds, EventReloaded)
	assert.Empty(t, a.DrainEvents())
}

func TestFragDamagesAndSmokeBlocks(t *testing.T) {
	a := New(DefaultConfig())
	thrower := a.Spawn(0, "s", mgl64.Vec3{5, 5, 0}, mgl64.Vec3{1, 0, 0}, testLoadout())
	victim := a.Spawn(1, "t", mgl64.Vec3{20, 5, 0}, mgl64.Vec3{-1, 0, 0}, testLoadout())

	require.True(t, a.ThrowGrenade(thrower, world.GrenadeFrag, mgl64.Vec3{20, 6, 0}))
	assert.False(t, a.ThrowGrenade(thrower, world.GrenadeFrag, mgl64.Vec3{20, 6, 0}), "none left")
	a.Advance(3.1)
	assert.Less(t, a.Health(victim), 1.0)

	require.True(t, a.ThrowGrenade(thrower, world.GrenadeSmoke, mgl64.Vec3{12, 5, 0}))
	a.Advance(5)
	tr := a.Trace(mgl64.Vec3{5, 5, 1.6}, mgl64.Vec3{20, 5, 1.2})
	require.True(t, tr.Hit)
	assert.Equal(t, world.NoEntity, tr.Entity, "smoke hides the victim")

	a.Advance(20)
	tr = a.Trace(mgl64.Vec3{5, 5, 1.6}, mgl64.Vec3{20, 5, 1.2})
	assert.Equal(t, victim, tr.Entity, "smoke has cleared")
}
