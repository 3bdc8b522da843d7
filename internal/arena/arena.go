// Package arena is a small reference world: axis-aligned buildings, cover
// points and characters with inventories. It implements every contract in
// package world and is what the headless runner, the viewer and the
// scenario tests drive agents against.
package arena

import (
	"github.com/dhconnelly/rtreego"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/jobendik/laser-sub002/internal/geom"
	"github.com/jobendik/laser-sub002/internal/world"
)

const (
	treeMinChildren = 5
	treeMaxChildren = 25
	pointTolerance  = 0.01
)

// Config holds the arena's physical constants.
type Config struct {
	Width, Height   float64 // playable XY extent starting at the origin
	CharacterRadius float64
	CharacterHeight float64
	EyeHeight       float64
	CoverRadius     float64 // a character this close to a cover point is in cover
	Damage          float64 // health removed per hit
	FragDamage      float64 // health removed at the centre of a frag blast
	SmokeDuration   float64 // seconds a smoke cloud blocks traces
}

// DefaultConfig returns a 120x120 arena.
func DefaultConfig() Config {
	return Config{
		Width:           120,
		Height:          120,
		CharacterRadius: 0.4,
		CharacterHeight: 1.8,
		EyeHeight:       1.6,
		CoverRadius:     1.5,
		Damage:          0.2,
		FragDamage:      0.8,
		SmokeDuration:   8,
	}
}

// Building is a solid box. Min and Max span the XY footprint; Max[2] is the
// roof height.
type Building struct {
	Min, Max mgl64.Vec3
	rect     rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (b *Building) Bounds() rtreego.Rect { return b.rect }

// Contains reports whether the XY point lies inside the footprint.
func (b *Building) Contains(p mgl64.Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] && p[1] >= b.Min[1] && p[1] <= b.Max[1]
}

type coverPoint struct {
	pos  mgl64.Vec3
	rect rtreego.Rect
}

func (c *coverPoint) Bounds() rtreego.Rect { return c.rect }

var _ world.World = (*Arena)(nil)

// Arena is the mutable world state. It is not safe for concurrent use.
type Arena struct {
	cfg Config
	now float64

	buildings []*Building
	static    *rtreego.Rtree
	cover     []*coverPoint
	coverTree *rtreego.Rtree

	chars    map[world.EntityID]*Character
	order    []world.EntityID
	charTree *rtreego.Rtree
	nextID   world.EntityID
	smoke    []smokeCloud
	grenades []liveGrenade
	events   []Event
}

// New returns an empty arena.
func New(cfg Config) *Arena {
	return &Arena{
		cfg:       cfg,
		static:    rtreego.NewTree(2, treeMinChildren, treeMaxChildren),
		coverTree: rtreego.NewTree(2, treeMinChildren, treeMaxChildren),
		charTree:  rtreego.NewTree(2, treeMinChildren, treeMaxChildren),
		chars:     make(map[world.EntityID]*Character),
		nextID:    1,
	}
}

// Config returns the arena constants.
func (a *Arena) Config() Config { return a.cfg }

// Now returns the last time passed to Advance.
func (a *Arena) Now() float64 { return a.now }

// AddBuilding places a box spanning min..max. Degenerate boxes are ignored.
func (a *Arena) AddBuilding(min, max mgl64.Vec3) (*Building, bool) {
	if max[0] <= min[0] || max[1] <= min[1] || max[2] <= min[2] {
		return nil, false
	}
	rect, err := rtreego.NewRect(rtreego.Point{min[0], min[1]}, []float64{max[0] - min[0], max[1] - min[1]})
	if err != nil {
		return nil, false
	}
	b := &Building{Min: min, Max: max, rect: rect}
	a.buildings = append(a.buildings, b)
	a.static.Insert(b)
	return b, true
}

// Buildings returns every building in insertion order.
func (a *Arena) Buildings() []*Building { return a.buildings }

// AddCover registers a cover point.
func (a *Arena) AddCover(p mgl64.Vec3) {
	c := &coverPoint{pos: p, rect: rtreego.Point{p[0], p[1]}.ToRect(pointTolerance)}
	a.cover = append(a.cover, c)
	a.coverTree.Insert(c)
}

// CoverPoints returns every cover point.
func (a *Arena) CoverPoints() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(a.cover))
	for i, c := range a.cover {
		out[i] = c.pos
	}
	return out
}

// NearestCover implements world.CoverFinder.
func (a *Arena) NearestCover(from mgl64.Vec3, maxDist float64) (mgl64.Vec3, bool) {
	if len(a.cover) == 0 {
		return mgl64.Vec3{}, false
	}
	nn, ok := a.coverTree.NearestNeighbor(rtreego.Point{from[0], from[1]}).(*coverPoint)
	if !ok || nn == nil {
		return mgl64.Vec3{}, false
	}
	if geom.FlatDist(from, nn.pos) > maxDist {
		return mgl64.Vec3{}, false
	}
	return nn.pos, true
}

// IsWalkable implements world.Walkability: inside the arena bounds and not
// inside a building.
func (a *Arena) IsWalkable(p mgl64.Vec3) bool {
	if p[0] < 0 || p[1] < 0 || p[0] > a.cfg.Width || p[1] > a.cfg.Height {
		return false
	}
	q := rtreego.Point{p[0], p[1]}.ToRect(pointTolerance)
	for _, s := range a.static.SearchIntersect(q) {
		if s.(*Building).Contains(p) {
			return false
		}
	}
	return true
}

// Advance moves the arena clock to now: reloads finish, grenades detonate,
// smoke clears and the character index is rebuilt.
func (a *Arena) Advance(now float64) {
	a.now = now
	for _, id := range a.order {
		c := a.chars[id]
		if c.reloading && now >= c.reloadUntil {
			c.reloading = false
			c.ammo[c.current] = c.magazine
			a.emit(Event{Kind: EventReloaded, Source: id, Target: world.NoEntity, Position: c.Pose.Position})
		}
	}
	a.detonate(now)
	a.clearSmoke(now)
	a.refresh()
}

// refresh rebuilds the character tree and cover flags.
func (a *Arena) refresh() {
	a.charTree = rtreego.NewTree(2, treeMinChildren, treeMaxChildren)
	for _, id := range a.order {
		c := a.chars[id]
		if !c.Alive() {
			continue
		}
		c.rect = rtreego.Point{c.Pose.Position[0], c.Pose.Position[1]}.ToRect(a.cfg.CharacterRadius)
		a.charTree.Insert(c)
		_, c.inCover = a.NearestCover(c.Pose.Position, a.cfg.CoverRadius)
	}
}

// squareAround returns the XY box of half-size r centred on p.
func squareAround(p mgl64.Vec3, r float64) (rtreego.Rect, error) {
	if r <= 0 {
		r = pointTolerance
	}
	return rtreego.NewRect(rtreego.Point{p[0] - r, p[1] - r}, []float64{2 * r, 2 * r})
}
