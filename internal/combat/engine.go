// Package combat decides what an agent shoots at, with which weapon and
// tactic, and when to pull the trigger.
package combat

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/jobendik/laser-sub002/internal/geom"
	"github.com/jobendik/laser-sub002/internal/world"
)

// World is the slice of the world combat reads and drives.
type World interface {
	world.Tracer
	world.Characters
	world.Inventory
	world.CoverFinder
}

// Squad answers target-report sharing questions.
type Squad interface {
	// Engaging counts squadmates other than self engaged with target.
	Engaging(target, self world.EntityID) int
}

// Decision is everything one combat update produced.
type Decision struct {
	Target        world.EntityID
	Engaged       bool // engagement began this update
	Disengaged    bool // engagement ended this update
	TargetChanged bool
	Switched      string // weapon id switched to, if any

	Fire bool
	Aim  mgl64.Vec3

	Reload  bool
	Move    *MoveRequest
	Grenade *GrenadeThrow
}

// Engine is the combat state of one agent.
type Engine struct {
	cfg   Config
	self  world.EntityID
	w     World
	rng   *rand.Rand
	squad Squad

	target         world.EntityID
	engaged        bool
	lastTargetSeen float64

	weapon      world.Weapon
	hasWeapon   bool
	bracket     RangeBracket
	fire        fireControl
	reloadUntil float64
	accuracy    float64

	suppression float64
	lastDamage  float64
	lastUpdate  float64

	lastTactic   float64
	seekingCover bool
	inCover      bool
	coverPoint   mgl64.Vec3
	flanking     bool
	flankUntil   float64
	advancing    bool
	advanceUntil float64
	lastGrenade  float64
}

// New returns a combat engine. rng drives every probabilistic gate.
func New(cfg Config, self world.EntityID, w World, rng *rand.Rand) *Engine {
	return &Engine{
		cfg:         cfg,
		self:        self,
		w:           w,
		rng:         rng,
		target:      world.NoEntity,
		bracket:     -1,
		fire:        newFireControl(),
		lastDamage:  math.Inf(-1),
		lastTactic:  math.Inf(-1),
		lastGrenade: math.Inf(-1),
	}
}

// SetSquad wires target-report sharing.
func (e *Engine) SetSquad(s Squad) { e.squad = s }

// SetConfig swaps the tuning, e.g. after a difficulty change.
func (e *Engine) SetConfig(cfg Config) { e.cfg = cfg }

// Config returns the current tuning.
func (e *Engine) Config() Config { return e.cfg }

// Update runs one combat tick. visible is Perception's currently visible
// target list.
func (e *Engine) Update(now float64, visible []world.EntityID) Decision {
	dt := now - e.lastUpdate
	e.lastUpdate = now
	if dt > 0 {
		e.suppression = math.Max(0, e.suppression-e.cfg.SuppressionDecay*dt)
	}

	var d Decision
	self := e.w.Pose(e.self)
	t, found := e.selectTarget(visible, self)
	if !found {
		d.Target = e.target
		if e.engaged && now-e.lastTargetSeen > e.cfg.DisengageAfter {
			d.Target = e.Disengage()
			d.Disengaged = true
		} else if e.engaged {
			e.fire.interrupt()
		}
		return d
	}

	e.lastTargetSeen = now
	if !e.engaged {
		e.engaged = true
		d.Engaged = true
	}
	if t.ID != e.target {
		e.target = t.ID
		d.TargetChanged = true
		e.fire.reset()
	}
	d.Target = t.ID

	dist := geom.Dist(self.Position, t.Position)
	if b := e.cfg.BracketFor(dist); d.TargetChanged || b != e.bracket || !e.hasWeapon {
		e.bracket = b
		d.Switched = e.selectWeapon(b)
	}
	if cur, ok := e.w.Current(e.self); ok {
		e.weapon, e.hasWeapon = cur, true
	}

	e.expireTactics(now, self)
	if now-e.lastTactic >= e.cfg.TacticInterval {
		e.lastTactic = now
		if mv, ok := e.evaluateTactics(now, self, t); ok {
			d.Move = &mv
		}
		if g, ok := e.considerGrenade(now, self, t, len(visible)); ok {
			d.Grenade = &g
		}
	}

	e.fireControl(now, self, t, dist, &d)
	return d
}

func (e *Engine) selectWeapon(b RangeBracket) string {
	w, ok := e.cfg.PickWeapon(e.w.Weapons(e.self), b)
	if !ok {
		return ""
	}
	if cur, has := e.w.Current(e.self); has && cur.ID == w.ID {
		return ""
	}
	if !e.w.SwitchWeapon(e.self, w.ID) {
		return ""
	}
	e.weapon, e.hasWeapon = w, true
	return w.ID
}

// fireControl checks the firing preconditions and steps the burst machine.
func (e *Engine) fireControl(now float64, self world.Pose, t TargetView, dist float64, d *Decision) {
	if !e.hasWeapon || e.weapon.MaxRange <= 0 {
		return
	}
	if now < e.reloadUntil {
		return
	}
	if !e.w.HasAmmo(e.self) {
		e.w.RequestReload(e.self)
		e.reloadUntil = now + e.weapon.ReloadTime
		e.fire.interrupt()
		d.Reload = true
		return
	}
	if dist > e.weapon.MaxRange || !e.clearShot(self, t) {
		e.fire.interrupt()
		return
	}

	e.accuracy = Accuracy(AccuracyInput{
		Base:           e.cfg.BaseAccuracy,
		Distance:       dist,
		EffectiveRange: e.weapon.EffectiveRange,
		Speed:          e.w.Velocity(e.self).Len(),
		Suppression:    e.suppression,
		Health:         e.w.Health(e.self),
		WeaponAccuracy: e.weapon.Accuracy,
		InCover:        e.inCover || e.w.InCover(e.self),
	})
	if !e.fire.step(now, e.accuracy, e.cfg.BurstCooldown(), e.cfg.MaxBurst, e.rng) {
		return
	}
	mass := t.Position.Add(geom.Up.Mul(e.cfg.AimHeight))
	lead := LeadPoint(mass, e.w.Velocity(t.ID), dist, e.weapon.ProjectileSpeed)
	aim := Spread(lead, e.accuracy, e.weapon.MaxSpread, e.cfg.VerticalSpread, e.rng)
	e.w.FireWeapon(e.self, aim)
	d.Fire = true
	d.Aim = aim
}

// clearShot requires an unobstructed line from our eye to the target.
func (e *Engine) clearShot(self world.Pose, t TargetView) bool {
	lift := geom.Up.Mul(e.cfg.EyeHeight)
	tr := e.w.Trace(self.Position.Add(lift), t.Position.Add(lift))
	return !tr.Hit || tr.Entity == t.ID
}

// Disengage ends the engagement, clearing burst state and target references.
// It returns the target that was engaged.
func (e *Engine) Disengage() world.EntityID {
	old := e.target
	e.engaged = false
	e.target = world.NoEntity
	e.bracket = -1
	e.fire.reset()
	e.flanking = false
	e.advancing = false
	e.seekingCover = false
	return old
}

// ReportSuppressed raises suppression by amount, capped at 1.
func (e *Engine) ReportSuppressed(amount float64) {
	e.suppression = geom.Clamp01(e.suppression + amount)
}

// ReportDamage marks the agent as recently hit.
func (e *Engine) ReportDamage(now float64) {
	e.lastDamage = now
	e.ReportSuppressed(e.cfg.DamageSuppress)
}

// Target returns the engaged target.
func (e *Engine) Target() (world.EntityID, bool) { return e.target, e.engaged }

// Engaged reports whether the agent is in an engagement.
func (e *Engine) Engaged() bool { return e.engaged }

// FireState returns the burst machine state and the rounds fired in the
// current burst.
func (e *Engine) FireState() (FireState, int) { return e.fire.state, e.fire.burstCount }

// ShotsFired returns the lifetime round count.
func (e *Engine) ShotsFired() int { return e.fire.shots }

// LastAccuracy returns the accuracy used for the latest fire decision.
func (e *Engine) LastAccuracy() float64 { return e.accuracy }

// Suppression returns the current suppression level.
func (e *Engine) Suppression() float64 { return e.suppression }

// Weapon returns the weapon combat believes is in hand.
func (e *Engine) Weapon() (world.Weapon, bool) { return e.weapon, e.hasWeapon }

// InCover reports whether the agent has reached a cover point.
func (e *Engine) InCover() bool { return e.inCover }

// Reloading reports whether a reload is in progress.
func (e *Engine) Reloading(now float64) bool { return now < e.reloadUntil }
