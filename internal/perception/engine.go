// Package perception maintains one agent's belief about nearby targets and
// ambient events and drives its alert-level state machine.
package perception

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/jobendik/laser-sub002/internal/geom"
	"github.com/jobendik/laser-sub002/internal/world"
)

// NoTarget is returned when nothing is tracked.
const NoTarget = world.NoEntity

// Sensors is the slice of the world perception reads.
type Sensors interface {
	world.Tracer
	world.TargetSource
	world.Characters
}

// TargetRecord is the tracking entry for one target.
type TargetRecord struct {
	TargetID          world.EntityID
	FirstSeen         float64
	LastSeen          float64
	LastKnownPosition mgl64.Vec3
	TimesLost         int
	Threat            float64
	Visible           bool // seen on the latest perception tick
}

// LastKnownPosition is stored the moment a target drops out of sight.
type LastKnownPosition struct {
	Position   mgl64.Vec3
	Timestamp  float64
	Confidence float64
}

// EventKind enumerates what a perception tick can report.
type EventKind int

const (
	EventTargetFound EventKind = iota
	EventTargetLost
	EventAlertChanged
	EventSearchStarted
	EventSearchEnded
)

func (k EventKind) String() string {
	switch k {
	case EventTargetFound:
		return "target_found"
	case EventTargetLost:
		return "target_lost"
	case EventAlertChanged:
		return "alert_changed"
	case EventSearchStarted:
		return "search_started"
	case EventSearchEnded:
		return "search_ended"
	default:
		return "unknown"
	}
}

// Event is one perception outcome for the owning agent to act on.
type Event struct {
	Kind   EventKind
	Target world.EntityID
	Old    AlertLevel
	New    AlertLevel
	Point  mgl64.Vec3
	Stale  bool // target entity is gone; no search follows
	Cause  string
}

// Report collects everything produced since the previous Update.
type Report struct {
	Events    []Event
	Broadcast *AlertMessage
}

// Engine is the perception state of one agent.
type Engine struct {
	cfg     Config
	mods    Modifiers
	self    world.EntityID
	sensors Sensors

	records   []*TargetRecord // first-seen order; ties resolve to the earliest
	index     map[world.EntityID]*TargetRecord
	lastKnown map[world.EntityID]LastKnownPosition
	best      world.EntityID

	alert           AlertLevel
	lastAlertChange float64

	searching     bool
	searchTarget  mgl64.Vec3
	searchStarted float64

	investigations      []InvestigationPoint
	nextInvestigationID int
	sounds              []HeardSound

	now         float64
	lastTick    float64
	lastCleanup float64

	pending   []Event
	broadcast *AlertMessage
}

// New returns a perception engine for self.
func New(cfg Config, mods Modifiers, self world.EntityID, sensors Sensors) *Engine {
	return &Engine{
		cfg:       cfg,
		mods:      mods,
		self:      self,
		sensors:   sensors,
		index:     make(map[world.EntityID]*TargetRecord),
		lastKnown: make(map[world.EntityID]LastKnownPosition),
		best:      NoTarget,
		lastTick:  -1,
	}
}

// Config returns the base configuration.
func (e *Engine) Config() Config { return e.cfg }

// SetConfig swaps the base configuration, e.g. after a tuning reload.
func (e *Engine) SetConfig(cfg Config) { e.cfg = cfg }

// SetModifiers replaces the difficulty/environment multipliers.
func (e *Engine) SetModifiers(m Modifiers) { e.mods = m }

// EffectiveSightRange is the sight range after modifiers.
func (e *Engine) EffectiveSightRange() float64 {
	return e.cfg.SightRange * e.mods.sight()
}

// EffectiveSightAngle is the full cone width in degrees after modifiers.
func (e *Engine) EffectiveSightAngle() float64 {
	return e.cfg.SightAngle * e.mods.angle()
}

// CanSeeTarget runs the sight test against one target from the agent's
// current pose.
func (e *Engine) CanSeeTarget(id world.EntityID) bool {
	if !e.sensors.Exists(id) {
		return false
	}
	return e.canSee(e.sensors.Pose(e.self), id)
}

func (e *Engine) canSee(self world.Pose, id world.EntityID) bool {
	target := e.sensors.Pose(id).Position
	if geom.Dist(self.Position, target) > e.EffectiveSightRange() {
		return false
	}
	half := e.EffectiveSightAngle() / 2 * math.Pi / 180
	if geom.Bearing(self.Position, self.Forward, target) > half {
		return false
	}
	eye := self.Position.Add(geom.Up.Mul(e.cfg.EyeHeight))
	aim := target.Add(geom.Up.Mul(e.cfg.TargetHeight))
	tr := e.sensors.Trace(eye, aim)
	if !tr.Hit || tr.Entity == id {
		return true
	}
	return tr.Distance >= geom.Dist(eye, aim)-e.cfg.CoverLeakTolerance
}

// Update runs a perception tick when one is due, advances the search and
// alert timers, and returns everything that happened since the last call.
func (e *Engine) Update(now float64) Report {
	e.now = now
	if e.lastTick < 0 || now-e.lastTick >= e.cfg.UpdateInterval-1e-9 {
		e.lastTick = now
		e.tick(now)
	}
	if e.searching && now-e.searchStarted > e.cfg.SearchDuration {
		e.endSearch("timeout")
	}
	e.maybeDeescalate(now)
	if now-e.lastCleanup >= e.cfg.CleanupInterval {
		e.lastCleanup = now
		e.cleanup(now)
	}
	rep := Report{Events: e.pending, Broadcast: e.broadcast}
	e.pending = nil
	e.broadcast = nil
	return rep
}

func (e *Engine) tick(now float64) {
	self := e.sensors.Pose(e.self)
	seen := make(map[world.EntityID]bool)
	for _, id := range e.sensors.CandidateTargets(e.self, e.EffectiveSightRange()) {
		if id == e.self || seen[id] || !e.sensors.Exists(id) || !e.canSee(self, id) {
			continue
		}
		seen[id] = true
		pos := e.sensors.Pose(id).Position
		if r, ok := e.index[id]; ok {
			r.LastSeen = now
			r.LastKnownPosition = pos
			r.TimesLost = 0
			r.Visible = true
			delete(e.lastKnown, id)
			continue
		}
		r := &TargetRecord{TargetID: id, FirstSeen: now, LastSeen: now, LastKnownPosition: pos, Visible: true}
		e.records = append(e.records, r)
		e.index[id] = r
		e.emit(Event{Kind: EventTargetFound, Target: id, Point: pos})
	}

	prevBest := e.best
	kept := e.records[:0]
	for _, r := range e.records {
		if seen[r.TargetID] {
			kept = append(kept, r)
			continue
		}
		if !e.sensors.Exists(r.TargetID) {
			e.forget(r.TargetID)
			e.emit(Event{Kind: EventTargetLost, Target: r.TargetID, Point: r.LastKnownPosition, Stale: true})
			continue
		}
		r.Visible = false
		if r.TimesLost == 0 {
			e.lastKnown[r.TargetID] = LastKnownPosition{Position: r.LastKnownPosition, Timestamp: r.LastSeen, Confidence: 1}
		}
		r.TimesLost++
		if r.TimesLost > e.cfg.LostThreshold || now-r.LastSeen > e.cfg.MemoryDuration {
			delete(e.index, r.TargetID)
			e.emit(Event{Kind: EventTargetLost, Target: r.TargetID, Point: r.LastKnownPosition})
			if r.TargetID == prevBest {
				e.StartSearch(r.LastKnownPosition, now)
			}
			continue
		}
		kept = append(kept, r)
	}
	for i := len(kept); i < len(e.records); i++ {
		e.records[i] = nil
	}
	e.records = kept

	e.best = NoTarget
	bestScore := math.Inf(-1)
	var visibleAt *mgl64.Vec3
	for _, r := range e.records {
		r.Threat = ThreatScore(ThreatInput{
			Distance:   geom.Dist(self.Position, r.LastKnownPosition),
			SightRange: e.EffectiveSightRange(),
			Health:     e.sensors.Health(r.TargetID),
			Weapon:     e.sensors.Weapon(r.TargetID).Class,
			Visible:    r.Visible,
			SinceSeen:  now - r.LastSeen,
			Recent:     e.cfg.RecentWindow,
		})
		if r.Threat > bestScore {
			bestScore = r.Threat
			e.best = r.TargetID
		}
		if r.Visible && visibleAt == nil {
			p := r.LastKnownPosition
			visibleAt = &p
		}
	}

	switch {
	case visibleAt != nil:
		if e.searching {
			e.endSearch("reacquired")
		}
		e.escalate(Combat, *visibleAt, "sight", now)
	case len(e.records) > 0:
		e.escalate(Alert, e.records[0].LastKnownPosition, "memory", now)
	}
}

func (e *Engine) forget(id world.EntityID) {
	delete(e.index, id)
	delete(e.lastKnown, id)
	if e.best == id {
		e.best = NoTarget
	}
}

func (e *Engine) cleanup(now float64) {
	for id, lk := range e.lastKnown {
		if now-lk.Timestamp > e.cfg.MemoryDuration {
			delete(e.lastKnown, id)
		}
	}
	sounds := e.sounds[:0]
	for _, s := range e.sounds {
		if now-s.HeardAt <= e.cfg.SoundMemory {
			sounds = append(sounds, s)
		}
	}
	e.sounds = sounds
	e.pruneInvestigations(now)
}

func (e *Engine) emit(ev Event) {
	e.pending = append(e.pending, ev)
}

// StartSearch makes the agent hunt for a lost target at p.
func (e *Engine) StartSearch(p mgl64.Vec3, now float64) {
	e.searching = true
	e.searchTarget = p
	e.searchStarted = now
	e.emit(Event{Kind: EventSearchStarted, Target: NoTarget, Point: p})
}

// EndSearch abandons the current search.
func (e *Engine) EndSearch() {
	if e.searching {
		e.endSearch("ended")
	}
}

func (e *Engine) endSearch(cause string) {
	e.searching = false
	e.emit(Event{Kind: EventSearchEnded, Target: NoTarget, Point: e.searchTarget, Cause: cause})
}

// Searching returns the search target while a search is running.
func (e *Engine) Searching() (mgl64.Vec3, bool) {
	return e.searchTarget, e.searching
}

// AlertLevel returns the current alert level.
func (e *Engine) AlertLevel() AlertLevel { return e.alert }

// BestTarget returns the highest-threat tracked target.
func (e *Engine) BestTarget() (world.EntityID, bool) {
	return e.best, e.best != NoTarget
}

// Record returns a copy of one tracking entry.
func (e *Engine) Record(id world.EntityID) (TargetRecord, bool) {
	r, ok := e.index[id]
	if !ok {
		return TargetRecord{}, false
	}
	return *r, true
}

// Records returns copies of every tracking entry in first-seen order.
func (e *Engine) Records() []TargetRecord {
	out := make([]TargetRecord, 0, len(e.records))
	for _, r := range e.records {
		out = append(out, *r)
	}
	return out
}

// VisibleTargets returns the ids seen on the latest perception tick.
func (e *Engine) VisibleTargets() []world.EntityID {
	var out []world.EntityID
	for _, r := range e.records {
		if r.Visible {
			out = append(out, r.TargetID)
		}
	}
	return out
}

// LastKnown returns where a lost target was last seen. Confidence fades
// linearly over the memory duration.
func (e *Engine) LastKnown(id world.EntityID) (LastKnownPosition, bool) {
	lk, ok := e.lastKnown[id]
	if !ok {
		return lk, false
	}
	if e.cfg.MemoryDuration > 0 {
		lk.Confidence = geom.Clamp01(1 - (e.now-lk.Timestamp)/e.cfg.MemoryDuration)
	}
	return lk, true
}
