// Package steering owns an agent's active path and turns it into per-tick
// displacement: waypoint advance, obstacle avoidance, separation, fallback
// directions, stuck recovery and formation following.
package steering

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/jobendik/laser-sub002/internal/geom"
	"github.com/jobendik/laser-sub002/internal/navgraph"
	"github.com/jobendik/laser-sub002/internal/world"
)

// Config tunes one executor.
type Config struct {
	Speed              float64 // units/s at full walk
	WaypointRadius     float64 // advance to the next waypoint inside this
	ArrivalRadius      float64 // final waypoint counts as reached inside this
	AvoidanceRadius    float64 // length of the obstacle probe fan
	SeparationDistance float64 // formation members closer than this push apart
	TraceHeight        float64 // probes are cast this far above the feet

	StuckSampleInterval float64 // seconds between position samples
	StuckSamples        int     // rolling history length
	StuckVariance       float64 // below this the agent is not moving
	StuckDuration       float64 // seconds of low variance before stuck

	RepathThreshold float64 // formation slot drift that triggers a new path
	SlotSpacing     float64 // gap between formation slots
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		Speed:               4.0,
		WaypointRadius:      0.75,
		ArrivalRadius:       1.5,
		AvoidanceRadius:     2.5,
		SeparationDistance:  1.5,
		TraceHeight:         0.5,
		StuckSampleInterval: 0.25,
		StuckSamples:        12,
		StuckVariance:       0.05,
		StuckDuration:       3.0,
		RepathThreshold:     2.0,
		SlotSpacing:         2.0,
	}
}

// StepResult is what one tick of movement produced.
type StepResult struct {
	Delta       mgl64.Vec3
	Completed   bool // final waypoint reached this tick
	Destination mgl64.Vec3
	Stuck       bool // recovery already spent; caller must pick a new goal
	Replanned   bool // stuck recovery replanned with a widened probe
}

// Executor moves one agent along its path. It is not safe for concurrent
// use; each agent owns its own.
type Executor struct {
	cfg    Config
	graph  *navgraph.Graph
	tracer world.Tracer
	walk   world.Walkability
	self   world.EntityID

	path        []mgl64.Vec3
	index       int
	destination mgl64.Vec3
	active      bool
	usedGraph   bool

	avoidRadius  float64
	stuck        stuckDetector
	retried      bool
	widenedUntil float64

	formation *FormationState
}

// NewExecutor builds an executor. graph may be nil, in which case every
// request uses the direct-path fallback.
func NewExecutor(cfg Config, graph *navgraph.Graph, tracer world.Tracer, walk world.Walkability, self world.EntityID) *Executor {
	return &Executor{
		cfg:         cfg,
		graph:       graph,
		tracer:      tracer,
		walk:        walk,
		self:        self,
		avoidRadius: cfg.AvoidanceRadius,
		stuck:       newStuckDetector(cfg),
	}
}

// SetDestination replaces the active path with a new one from `from` to
// dest. It reports whether graph search produced the route; false means the
// direct-path fallback is in use.
func (e *Executor) SetDestination(from, dest mgl64.Vec3) bool {
	e.retried = false
	e.restoreRadius()
	e.stuck.reset()
	return e.plan(from, dest)
}

func (e *Executor) plan(from, dest mgl64.Vec3) bool {
	e.destination = dest
	e.index = 0
	e.active = true
	e.usedGraph = false

	if e.graph != nil {
		if nodes, ok := e.graph.FindPath(from, dest); ok {
			full := make([]mgl64.Vec3, 0, len(nodes)+2)
			full = append(full, from)
			full = append(full, nodes...)
			full = append(full, dest)
			smoothed := navgraph.Smooth(full, e.clear)
			e.path = smoothed[1:]
			e.usedGraph = true
			return true
		}
	}
	step := navgraph.DefaultCellSize
	if e.graph != nil {
		step = e.graph.CellSize()
	}
	if e.walk != nil {
		e.path = navgraph.DirectPath(from, dest, step, e.walk)
	} else {
		e.path = []mgl64.Vec3{dest}
	}
	return false
}

// clear is the smoothing predicate: static geometry must not block the
// segment and every sampled point must be walkable.
func (e *Executor) clear(a, b mgl64.Vec3) bool {
	if e.tracer != nil {
		lift := geom.Up.Mul(e.cfg.TraceHeight)
		if tr := e.tracer.Trace(a.Add(lift), b.Add(lift)); tr.Hit && tr.Entity == world.NoEntity {
			return false
		}
	}
	if e.walk == nil {
		return true
	}
	step := navgraph.DefaultCellSize / 2
	if e.graph != nil {
		step = e.graph.CellSize() / 2
	}
	return navgraph.SampledClear(e.walk, step)(a, b)
}

// Stop clears the active path.
func (e *Executor) Stop() {
	e.path = nil
	e.index = 0
	e.active = false
	e.retried = false
	e.restoreRadius()
}

// Active reports whether a path is being followed.
func (e *Executor) Active() bool { return e.active }

// Destination returns the goal of the active path.
func (e *Executor) Destination() mgl64.Vec3 { return e.destination }

// Path returns the remaining waypoints.
func (e *Executor) Path() []mgl64.Vec3 {
	if !e.active || e.index >= len(e.path) {
		return nil
	}
	return e.path[e.index:]
}

// UsedGraph reports whether the active path came from graph search.
func (e *Executor) UsedGraph() bool { return e.usedGraph }

// AvoidanceRadius returns the current probe length.
func (e *Executor) AvoidanceRadius() float64 { return e.avoidRadius }

func (e *Executor) restoreRadius() {
	e.avoidRadius = e.cfg.AvoidanceRadius
	e.widenedUntil = 0
}

// Step advances along the path by one tick. neighbors are the positions of
// nearby formation members; they are ignored unless the agent is in a
// formation.
func (e *Executor) Step(pos mgl64.Vec3, dt, now float64, neighbors []mgl64.Vec3) StepResult {
	var res StepResult
	if !e.active || len(e.path) == 0 {
		return res
	}
	if e.widenedUntil > 0 && now >= e.widenedUntil {
		e.restoreRadius()
	}

	last := len(e.path) - 1
	for e.index < last && geom.FlatDist(pos, e.path[e.index]) <= e.cfg.WaypointRadius {
		e.index++
	}
	if e.index == last && geom.FlatDist(pos, e.path[last]) <= e.cfg.ArrivalRadius {
		res.Completed = true
		res.Destination = e.destination
		e.Stop()
		return res
	}

	desired := geom.Normalize(geom.Flat(e.path[e.index].Sub(pos)))
	sum := desired.Add(e.avoidance(pos, desired))
	if e.formation != nil {
		sum = sum.Add(separation(pos, neighbors, e.cfg.SeparationDistance))
	}
	dir := geom.Normalize(geom.Flat(sum))
	if dir.Len() == 0 {
		dir = desired
	}
	res.Delta = e.walkableDelta(pos, dir, e.cfg.Speed*dt)

	e.stuck.sample(pos, now)
	if e.stuck.stuck(now) {
		e.stuck.reset()
		if !e.retried {
			e.retried = true
			e.avoidRadius = e.cfg.AvoidanceRadius * 2
			e.widenedUntil = now + e.cfg.StuckDuration
			e.plan(pos, e.destination)
			res.Replanned = true
		} else {
			res.Stuck = true
			res.Destination = e.destination
			e.Stop()
		}
	}
	return res
}

// walkableDelta scales dir to a step and, if the step lands somewhere
// unwalkable, tries left, right and reverse in that order.
func (e *Executor) walkableDelta(pos, dir mgl64.Vec3, dist float64) mgl64.Vec3 {
	delta := dir.Mul(dist)
	if e.walk == nil || e.walk.IsWalkable(pos.Add(delta)) {
		return delta
	}
	for _, alt := range [3]mgl64.Vec3{geom.Left(dir), geom.Right(dir), dir.Mul(-1)} {
		d := alt.Mul(dist)
		if e.walk.IsWalkable(pos.Add(d)) {
			return d
		}
	}
	return mgl64.Vec3{}
}
