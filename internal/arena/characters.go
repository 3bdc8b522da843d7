package arena

import (
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/jobendik/laser-sub002/internal/geom"
	"github.com/jobendik/laser-sub002/internal/world"
)

// Loadout is what a character spawns with.
type Loadout struct {
	Weapons  []world.Weapon
	Magazine int // rounds per magazine, shared by every weapon
	Grenades map[world.GrenadeKind]int
}

// Character is one body in the arena.
type Character struct {
	ID       world.EntityID
	Team     int
	Label    string
	Pose     world.Pose
	Velocity mgl64.Vec3
	Health   float64

	weapons     []world.Weapon
	ammo        []int
	current     int
	magazine    int
	grenades    map[world.GrenadeKind]int
	reloading   bool
	reloadUntil float64
	inCover     bool
	rect        rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (c *Character) Bounds() rtreego.Rect { return c.rect }

// Alive reports whether the character still has health.
func (c *Character) Alive() bool { return c.Health > 0 }

// Ammo returns rounds left in the current weapon.
func (c *Character) Ammo() int {
	if c.current < 0 || c.current >= len(c.ammo) {
		return 0
	}
	return c.ammo[c.current]
}

// Spawn adds a character and returns its id. A zero forward faces +X.
func (a *Arena) Spawn(team int, label string, pos, forward mgl64.Vec3, l Loadout) world.EntityID {
	id := a.nextID
	a.nextID++
	fwd := geom.Normalize(geom.Flat(forward))
	if fwd.Len() == 0 {
		fwd = mgl64.Vec3{1, 0, 0}
	}
	c := &Character{
		ID:       id,
		Team:     team,
		Label:    label,
		Pose:     world.Pose{Position: pos, Forward: fwd},
		Health:   1,
		weapons:  append([]world.Weapon(nil), l.Weapons...),
		magazine: l.Magazine,
		grenades: make(map[world.GrenadeKind]int, len(l.Grenades)),
	}
	c.ammo = make([]int, len(c.weapons))
	for i := range c.ammo {
		c.ammo[i] = l.Magazine
	}
	for k, n := range l.Grenades {
		c.grenades[k] = n
	}
	a.chars[id] = c
	a.order = append(a.order, id)
	a.refresh()
	return id
}

// Remove deletes a character outright.
func (a *Arena) Remove(id world.EntityID) {
	if _, ok := a.chars[id]; !ok {
		return
	}
	delete(a.chars, id)
	for i, v := range a.order {
		if v == id {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	a.refresh()
}

// Character returns the body for id.
func (a *Arena) Character(id world.EntityID) (*Character, bool) {
	c, ok := a.chars[id]
	return c, ok
}

// Characters returns every character, dead or alive, in spawn order.
func (a *Arena) Characters() []*Character {
	out := make([]*Character, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.chars[id])
	}
	return out
}

// Alive counts living characters on team.
func (a *Arena) Alive(team int) int {
	n := 0
	for _, id := range a.order {
		if c := a.chars[id]; c.Team == team && c.Alive() {
			n++
		}
	}
	return n
}

// Move displaces a character by delta over dt, sliding along blocked axes,
// and sets its facing to heading.
func (a *Arena) Move(id world.EntityID, delta mgl64.Vec3, heading, dt float64) {
	c, ok := a.chars[id]
	if !ok || !c.Alive() {
		return
	}
	from := c.Pose.Position
	to := from.Add(delta)
	if !a.IsWalkable(to) {
		to = from
		if x := from.Add(mgl64.Vec3{delta[0], 0, 0}); a.IsWalkable(x) {
			to = x
		}
		if y := to.Add(mgl64.Vec3{0, delta[1], 0}); a.IsWalkable(y) {
			to = y
		}
	}
	c.Pose.Position = to
	c.Pose.Forward = geom.FromHeading(heading)
	if dt > 0 {
		c.Velocity = to.Sub(from).Mul(1 / dt)
	}
}

// Damage removes health and emits hit and kill events.
func (a *Arena) Damage(id, source world.EntityID, amount float64) {
	c, ok := a.chars[id]
	if !ok || !c.Alive() || amount <= 0 {
		return
	}
	c.Health -= amount
	a.emit(Event{Kind: EventHit, Source: source, Target: id, Position: c.Pose.Position, Amount: amount})
	if c.Health <= 0 {
		c.Health = 0
		c.Velocity = mgl64.Vec3{}
		a.emit(Event{Kind: EventKilled, Source: source, Target: id, Position: c.Pose.Position})
	}
}

// Exists implements world.Characters. Dead characters do not exist.
func (a *Arena) Exists(id world.EntityID) bool {
	c, ok := a.chars[id]
	return ok && c.Alive()
}

func (a *Arena) Pose(id world.EntityID) world.Pose {
	if c, ok := a.chars[id]; ok {
		return c.Pose
	}
	return world.Pose{}
}

func (a *Arena) Team(id world.EntityID) int {
	if c, ok := a.chars[id]; ok {
		return c.Team
	}
	return -1
}

func (a *Arena) Health(id world.EntityID) float64 {
	if c, ok := a.chars[id]; ok {
		return c.Health
	}
	return 0
}

func (a *Arena) Velocity(id world.EntityID) mgl64.Vec3 {
	if c, ok := a.chars[id]; ok {
		return c.Velocity
	}
	return mgl64.Vec3{}
}

func (a *Arena) Weapon(id world.EntityID) world.Weapon {
	w, _ := a.Current(id)
	return w
}

func (a *Arena) InCover(id world.EntityID) bool {
	c, ok := a.chars[id]
	return ok && c.inCover
}

// Within implements world.Neighborhood over living characters, ordered by id.
func (a *Arena) Within(center mgl64.Vec3, radius float64) []world.EntityID {
	return a.search(center, radius, func(*Character) bool { return true })
}

// CandidateTargets implements world.TargetSource: living opponents of self
// within radius, ordered by id.
func (a *Arena) CandidateTargets(self world.EntityID, radius float64) []world.EntityID {
	c, ok := a.chars[self]
	if !ok {
		return nil
	}
	return a.search(c.Pose.Position, radius, func(o *Character) bool {
		return o.ID != self && o.Team != c.Team
	})
}

func (a *Arena) search(center mgl64.Vec3, radius float64, keep func(*Character) bool) []world.EntityID {
	bb, err := squareAround(center, radius)
	if err != nil {
		return nil
	}
	var out []world.EntityID
	for _, s := range a.charTree.SearchIntersect(bb) {
		o := s.(*Character)
		if !o.Alive() || !keep(o) || geom.FlatDist(center, o.Pose.Position) > radius {
			continue
		}
		out = append(out, o.ID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
