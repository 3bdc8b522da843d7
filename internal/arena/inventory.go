package arena

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/jobendik/laser-sub002/internal/geom"
	"github.com/jobendik/laser-sub002/internal/world"
)

func (a *Arena) Weapons(id world.EntityID) []world.Weapon {
	if c, ok := a.chars[id]; ok {
		return c.weapons
	}
	return nil
}

func (a *Arena) Current(id world.EntityID) (world.Weapon, bool) {
	c, ok := a.chars[id]
	if !ok || c.current < 0 || c.current >= len(c.weapons) {
		return world.Weapon{}, false
	}
	return c.weapons[c.current], true
}

// SwitchWeapon equips the weapon with the given id. Switching cancels a
// reload in progress.
func (a *Arena) SwitchWeapon(id world.EntityID, weaponID string) bool {
	c, ok := a.chars[id]
	if !ok || !c.Alive() {
		return false
	}
	for i, w := range c.weapons {
		if w.ID == weaponID {
			c.current = i
			c.reloading = false
			return true
		}
	}
	return false
}

// FireWeapon spends a round and resolves a hitscan shot from the eye toward
// aim, out to the weapon's max range. The first character on the line takes
// damage.
func (a *Arena) FireWeapon(id world.EntityID, aim mgl64.Vec3) {
	c, ok := a.chars[id]
	if !ok || !c.Alive() || c.reloading || c.Ammo() <= 0 {
		return
	}
	c.ammo[c.current]--
	w := c.weapons[c.current]
	eye := c.Pose.Position.Add(geom.Up.Mul(a.cfg.EyeHeight))
	dir := geom.Normalize(aim.Sub(eye))
	end := eye.Add(dir.Mul(w.MaxRange))
	a.emit(Event{Kind: EventShot, Source: id, Target: world.NoEntity, Position: eye, Aim: aim, Weapon: w.ID})
	tr := a.Trace(eye, end)
	if tr.Hit && tr.Entity != world.NoEntity {
		a.Damage(tr.Entity, id, a.cfg.Damage)
	}
}

func (a *Arena) HasAmmo(id world.EntityID) bool {
	c, ok := a.chars[id]
	return ok && !c.reloading && c.Ammo() > 0
}

// RequestReload starts refilling the current weapon; the magazine is full
// once its reload time has passed on the arena clock.
func (a *Arena) RequestReload(id world.EntityID) {
	c, ok := a.chars[id]
	if !ok || !c.Alive() || c.reloading || c.current >= len(c.weapons) {
		return
	}
	c.reloading = true
	c.reloadUntil = a.now + c.weapons[c.current].ReloadTime
}

func (a *Arena) Grenades(id world.EntityID, kind world.GrenadeKind) int {
	if c, ok := a.chars[id]; ok {
		return c.grenades[kind]
	}
	return 0
}

// ThrowGrenade spends one grenade; it lands at `at` and detonates after the
// kind's fuse.
func (a *Arena) ThrowGrenade(id world.EntityID, kind world.GrenadeKind, at mgl64.Vec3) bool {
	c, ok := a.chars[id]
	if !ok || !c.Alive() || c.grenades[kind] <= 0 {
		return false
	}
	c.grenades[kind]--
	a.throw(id, kind, at)
	return true
}
