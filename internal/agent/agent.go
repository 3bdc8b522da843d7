// Package agent ties one combatant's perception, combat cognition and
// navigation together and runs them in that order every tick.
package agent

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/jobendik/laser-sub002/internal/combat"
	"github.com/jobendik/laser-sub002/internal/geom"
	"github.com/jobendik/laser-sub002/internal/navgraph"
	"github.com/jobendik/laser-sub002/internal/perception"
	"github.com/jobendik/laser-sub002/internal/steering"
	"github.com/jobendik/laser-sub002/internal/world"
)

// Goal is what the agent is currently walking for.
type Goal int

const (
	GoalIdle Goal = iota
	GoalCombat
	GoalSearch
	GoalInvestigate
	GoalFormation
	GoalPatrol
)

func (g Goal) String() string {
	switch g {
	case GoalIdle:
		return "idle"
	case GoalCombat:
		return "combat"
	case GoalSearch:
		return "search"
	case GoalInvestigate:
		return "investigate"
	case GoalFormation:
		return "formation"
	case GoalPatrol:
		return "patrol"
	default:
		return "unknown"
	}
}

// TickResult is the displacement and facing the world should apply.
type TickResult struct {
	Delta   mgl64.Vec3
	Heading float64
}

// Agent is one autonomous combatant. It owns exactly one perception engine,
// one combat engine and one path executor.
type Agent struct {
	id       world.EntityID
	cfg      Config
	w        world.World
	listener Listener
	registry *Registry

	perception *perception.Engine
	combat     *combat.Engine
	nav        *steering.Executor

	goal          Goal
	tactic        combat.Tactic
	investigation int
	searchArrived bool
	patrol        []mgl64.Vec3
	patrolIndex   int

	heading float64
}

// New builds an agent for an existing world entity. graph may be nil.
func New(id world.EntityID, w world.World, graph *navgraph.Graph, cfg Config, rng *rand.Rand, l Listener) *Agent {
	a := &Agent{
		id:         id,
		cfg:        cfg,
		w:          w,
		listener:   l,
		perception: perception.New(cfg.Perception, cfg.Modifiers, id, w),
		combat:     combat.New(cfg.Combat, id, w, rng),
		nav:        steering.NewExecutor(cfg.Steering, graph, w, w, id),
	}
	if w.Exists(id) {
		a.heading = geom.Heading(w.Pose(id).Forward)
	}
	return a
}

// ID returns the entity this agent drives.
func (a *Agent) ID() world.EntityID { return a.id }

// Perception exposes the perception engine.
func (a *Agent) Perception() *perception.Engine { return a.perception }

// Combat exposes the combat engine.
func (a *Agent) Combat() *combat.Engine { return a.combat }

// Navigation exposes the path executor.
func (a *Agent) Navigation() *steering.Executor { return a.nav }

// Goal returns what the agent is walking for.
func (a *Agent) Goal() Goal { return a.goal }

// Heading returns the facing angle in radians.
func (a *Agent) Heading() float64 { return a.heading }

// SetListener replaces the notification sink.
func (a *Agent) SetListener(l Listener) { a.listener = l }

// SetPatrol gives the agent a waypoint loop for quiet periods.
func (a *Agent) SetPatrol(points []mgl64.Vec3) {
	a.patrol = append([]mgl64.Vec3(nil), points...)
	a.patrolIndex = 0
}

// ApplyConfig swaps tuning on a live agent.
func (a *Agent) ApplyConfig(cfg Config) {
	a.cfg = cfg
	a.perception.SetConfig(cfg.Perception)
	a.perception.SetModifiers(cfg.Modifiers)
	a.combat.SetConfig(cfg.Combat)
}

func (a *Agent) notify(n Notification) {
	if a.listener == nil {
		return
	}
	n.Agent = a.id
	a.listener.Notify(n)
}

// HearSound feeds a world sound to perception.
func (a *Agent) HearSound(ev perception.SoundEvent, now float64) {
	a.perception.HearSound(ev, now)
}

// ReportDamage tells the agent it was hit from the given position.
func (a *Agent) ReportDamage(from mgl64.Vec3, now float64) {
	a.combat.ReportDamage(now)
	a.perception.Raise(perception.Alert, from, "damage", now)
}

// ReportSuppressed raises the agent's suppression.
func (a *Agent) ReportSuppressed(amount float64) {
	a.combat.ReportSuppressed(amount)
}

// Tick runs perception, combat and navigation for one simulation step.
// A removed entity yields a zero result.
func (a *Agent) Tick(now, dt float64) TickResult {
	if !a.w.Exists(a.id) {
		return TickResult{Heading: a.heading}
	}
	a.runPerception(now)
	dec := a.runCombat(now)
	pose := a.w.Pose(a.id)
	if !a.combat.Engaged() {
		a.chooseQuietGoal(now, pose.Position)
	}
	delta := a.runNavigation(now, dt, pose.Position)
	a.turn(dt, pose.Position, delta, dec)
	return TickResult{Delta: delta, Heading: a.heading}
}

func (a *Agent) runPerception(now float64) {
	rep := a.perception.Update(now)
	for _, ev := range rep.Events {
		n := Notification{Target: ev.Target, Point: ev.Point, Reason: ev.Cause, Time: now}
		switch ev.Kind {
		case perception.EventTargetFound:
			n.Kind = TargetFound
		case perception.EventTargetLost:
			n.Kind = TargetLost
			if ev.Stale {
				n.Reason = "removed"
			}
		case perception.EventAlertChanged:
			n.Kind = AlertLevelChanged
			n.Old, n.New = ev.Old, ev.New
		case perception.EventSearchStarted:
			n.Kind = SearchStarted
			a.searchArrived = false
		case perception.EventSearchEnded:
			n.Kind = SearchEnded
			if a.goal == GoalSearch {
				a.goal = GoalIdle
				a.nav.Stop()
			}
		default:
			continue
		}
		a.notify(n)
	}
	if rep.Broadcast != nil && a.registry != nil {
		a.registry.Broadcast(*rep.Broadcast)
	}
}

func (a *Agent) runCombat(now float64) combat.Decision {
	dec := a.combat.Update(now, a.perception.VisibleTargets())
	if dec.Engaged {
		a.notify(Notification{Kind: CombatEngaged, Target: dec.Target, Time: now})
	}
	if dec.Disengaged {
		a.notify(Notification{Kind: CombatDisengaged, Target: dec.Target, Time: now})
		if a.goal == GoalCombat {
			a.goal = GoalIdle
			a.nav.Stop()
		}
	}
	if a.registry != nil {
		target, engaged := a.combat.Target()
		a.registry.setEngagement(a.id, target, engaged)
	}
	if dec.Switched != "" {
		a.notify(Notification{Kind: WeaponSwitched, Target: dec.Target, Reason: dec.Switched, Time: now})
	}
	if dec.Reload {
		a.notify(Notification{Kind: ReloadRequested, Target: world.NoEntity, Time: now})
	}
	if dec.Fire {
		a.notify(Notification{Kind: FireRequested, Target: dec.Target, Point: dec.Aim, Time: now})
	}
	if dec.Grenade != nil {
		a.notify(Notification{Kind: GrenadeRequested, Target: dec.Target, Point: dec.Grenade.At, Reason: dec.Grenade.Kind.String(), Time: now})
	}
	if dec.Move != nil {
		a.moveTo(now, dec.Move.Destination, GoalCombat, dec.Move.Tactic.String())
		a.tactic = dec.Move.Tactic
	}
	return dec
}

// chooseQuietGoal picks a destination while not engaged: search first,
// then investigation, then formation, then patrol.
func (a *Agent) chooseQuietGoal(now float64, pos mgl64.Vec3) {
	if at, ok := a.perception.Searching(); ok {
		if a.goal != GoalSearch && !a.searchArrived {
			a.moveTo(now, at, GoalSearch, "search")
		}
		return
	}
	if a.perception.AlertLevel() > perception.Unaware {
		if p, ok := a.perception.NextInvestigation(now); ok {
			if a.goal != GoalInvestigate || a.investigation != p.ID {
				a.investigation = p.ID
				a.moveTo(now, p.Position, GoalInvestigate, "investigate:"+p.Kind.String())
			}
			return
		}
	}
	if a.goal == GoalInvestigate || a.goal == GoalSearch || a.goal == GoalCombat {
		if a.nav.Active() {
			return
		}
		a.goal = GoalIdle
	}
	if st, ok := a.nav.Formation(); ok {
		if !a.w.Exists(st.LeaderID) {
			a.leaveFormation()
		} else {
			lp := a.w.Pose(st.LeaderID)
			if slot, moved := a.nav.FollowSlot(pos, lp.Position, lp.Forward); moved {
				a.goal = GoalFormation
				a.notify(Notification{Kind: MoveRequested, Target: st.LeaderID, Point: slot, Reason: "formation", Time: now})
			}
			return
		}
	}
	if len(a.patrol) > 0 && a.goal != GoalPatrol {
		next := a.patrol[a.patrolIndex]
		if geom.FlatDist(pos, next) <= a.cfg.Steering.ArrivalRadius {
			a.patrolIndex = (a.patrolIndex + 1) % len(a.patrol)
			return
		}
		a.moveTo(now, next, GoalPatrol, "patrol")
	}
}

func (a *Agent) moveTo(now float64, dest mgl64.Vec3, goal Goal, reason string) {
	a.goal = goal
	a.nav.SetDestination(a.w.Pose(a.id).Position, dest)
	a.notify(Notification{Kind: MoveRequested, Target: world.NoEntity, Point: dest, Reason: reason, Time: now})
}

func (a *Agent) leaveFormation() {
	a.nav.LeaveFormation()
	if a.registry != nil {
		a.registry.leaveGroup(a.id)
	}
	if a.goal == GoalFormation {
		a.goal = GoalIdle
		a.nav.Stop()
	}
}

// separationNeighbors lists the positions of the leader and fellow followers
// within separation distance. Agents outside the group are ignored.
func (a *Agent) separationNeighbors(pos mgl64.Vec3) []mgl64.Vec3 {
	st, ok := a.nav.Formation()
	if !ok {
		return nil
	}
	members := map[world.EntityID]bool{st.LeaderID: true}
	if a.registry != nil {
		for _, id := range a.registry.Group(st.LeaderID) {
			members[id] = true
		}
	}
	var out []mgl64.Vec3
	for _, id := range a.w.Within(pos, st.Separation) {
		if id != a.id && members[id] {
			out = append(out, a.w.Pose(id).Position)
		}
	}
	return out
}

func (a *Agent) runNavigation(now, dt float64, pos mgl64.Vec3) mgl64.Vec3 {
	res := a.nav.Step(pos, dt, now, a.separationNeighbors(pos))
	if res.Completed {
		a.notify(Notification{Kind: PathingComplete, Target: world.NoEntity, Point: res.Destination, Reason: a.goal.String(), Time: now})
		a.goalReached()
	}
	if res.Stuck {
		a.notify(Notification{Kind: Stuck, Target: world.NoEntity, Point: res.Destination, Reason: a.goal.String(), Time: now})
		a.goalReached()
	}
	return res.Delta
}

// goalReached settles the goal after the path ends, whether it arrived or
// gave up stuck; either way the next tick picks something new.
func (a *Agent) goalReached() {
	switch a.goal {
	case GoalCombat:
		a.combat.MoveFinished(a.tactic)
		a.tactic = combat.TacticNone
	case GoalInvestigate:
		a.perception.MarkInvestigated(a.investigation)
	case GoalSearch:
		a.searchArrived = true
	case GoalPatrol:
		if len(a.patrol) > 0 {
			a.patrolIndex = (a.patrolIndex + 1) % len(a.patrol)
		}
	}
	if a.goal != GoalSearch {
		a.goal = GoalIdle
	}
}

// turn rotates the heading at a bounded rate: toward an engaged target,
// else along the movement, else sweeping while searching.
func (a *Agent) turn(dt float64, pos, delta mgl64.Vec3, dec combat.Decision) {
	rate := a.cfg.TurnRate * dt
	switch {
	case a.combat.Engaged() && a.w.Exists(dec.Target):
		a.heading = geom.TurnToward(a.heading, geom.HeadingTo(pos, a.w.Pose(dec.Target).Position), rate)
	case geom.Flat(delta).Len() > 1e-9:
		a.heading = geom.TurnToward(a.heading, geom.Heading(delta), rate)
	case a.goal == GoalSearch && a.searchArrived:
		a.heading = geom.NormalizeAngle(a.heading + a.cfg.ScanRate*dt)
	}
}
