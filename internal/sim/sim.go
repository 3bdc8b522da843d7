// Package sim is the headless simulation harness: an arena, a squad
// registry and a fixed 60Hz clock, built from functional options and
// recording everything the agents report into a SimLog.
package sim

import (
	"fmt"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/jobendik/laser-sub002/internal/agent"
	"github.com/jobendik/laser-sub002/internal/arena"
	"github.com/jobendik/laser-sub002/internal/config"
	"github.com/jobendik/laser-sub002/internal/geom"
	"github.com/jobendik/laser-sub002/internal/navgraph"
	"github.com/jobendik/laser-sub002/internal/steering"
	"github.com/jobendik/laser-sub002/internal/world"
)

// TickRate is the simulation frequency in Hz.
const TickRate = 60

// Dt is the duration of one tick in seconds.
const Dt = 1.0 / TickRate

const (
	TeamRed  = 0
	TeamBlue = 1
)

// teamLabel returns a short string for a team.
func teamLabel(team int) string {
	switch team {
	case TeamRed:
		return "red"
	case TeamBlue:
		return "blue"
	default:
		return "--"
	}
}

// Sim is a headless run. Tests and the headless report drive it directly;
// the viewer wraps one.
type Sim struct {
	Arena    *arena.Arena
	Graph    *navgraph.Graph
	Registry *Registry
	SimLog   *SimLog
	Tuning   config.Tuning

	arenaCfg  arena.Config
	cellSize  float64
	seed      int64
	rng       *rand.Rand
	tick      int
	labels    map[world.EntityID]string
	byLabel   map[string]world.EntityID
	listeners agent.Listeners
	stats     Stats
	pending   []func() // arena setup deferred until the arena exists
}

// Registry is the agent registry type the harness drives.
type Registry = agent.Registry

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra simOptionKind = iota // arena size, buildings, seed, tuning; applied first
	simOptAgent                      // spawn agents; applied after the nav graph is built
	simOptGroup                      // formations and patrols; applied after agents exist
)

// Option is a builder function applied to a Sim during construction.
type Option struct {
	kind simOptionKind
	fn   func(*Sim)
}

// WithArenaSize sets the playfield dimensions.
func WithArenaSize(w, h float64) Option {
	return Option{simOptInfra, func(s *Sim) {
		s.arenaCfg.Width = w
		s.arenaCfg.Height = h
	}}
}

// WithBuilding adds a box obstacle spanning (x,y)..(x+w,y+h) of the given
// height.
func WithBuilding(x, y, w, h, height float64) Option {
	return Option{simOptInfra, func(s *Sim) {
		s.pending = append(s.pending, func() {
			s.Arena.AddBuilding(mgl64.Vec3{x, y, 0}, mgl64.Vec3{x + w, y + h, height})
		})
	}}
}

// WithCover registers a cover point.
func WithCover(x, y float64) Option {
	return Option{simOptInfra, func(s *Sim) {
		s.pending = append(s.pending, func() { s.Arena.AddCover(mgl64.Vec3{x, y, 0}) })
	}}
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) Option {
	return Option{simOptInfra, func(s *Sim) {
		s.seed = seed
		s.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- deterministic simulation
	}}
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) Option {
	return Option{simOptInfra, func(s *Sim) {
		s.SimLog = NewSimLog(v)
	}}
}

// WithTuning replaces the default tuning.
func WithTuning(t config.Tuning) Option {
	return Option{simOptInfra, func(s *Sim) {
		s.Tuning = t
	}}
}

// WithGridGraph builds a navigation grid of the given cell size over the
// arena once buildings are placed. Without it agents use direct paths.
func WithGridGraph(cell float64) Option {
	return Option{simOptInfra, func(s *Sim) {
		s.cellSize = cell
	}}
}

// WithListener adds a notification listener alongside the SimLog.
func WithListener(l agent.Listener) Option {
	return Option{simOptInfra, func(s *Sim) {
		s.listeners = append(s.listeners, l)
	}}
}

// WithAgent spawns an agent at (x,y) facing heading (radians) carrying the
// named weapon presets. The first weapon is equipped.
func WithAgent(team int, label string, x, y, heading float64, weapons ...string) Option {
	return Option{simOptAgent, func(s *Sim) {
		s.addAgent(team, label, mgl64.Vec3{x, y, 0}, heading, weapons, nil)
	}}
}

// WithGrenadier is WithAgent plus a grenade pouch.
func WithGrenadier(team int, label string, x, y, heading float64, grenades map[world.GrenadeKind]int, weapons ...string) Option {
	return Option{simOptAgent, func(s *Sim) {
		s.addAgent(team, label, mgl64.Vec3{x, y, 0}, heading, weapons, grenades)
	}}
}

// WithFormation makes the labelled followers follow leader.
func WithFormation(kind steering.FormationKind, leader string, followers ...string) Option {
	return Option{simOptGroup, func(s *Sim) {
		lid, ok := s.byLabel[leader]
		if !ok {
			return
		}
		var ids []world.EntityID
		for _, f := range followers {
			if id, ok := s.byLabel[f]; ok {
				ids = append(ids, id)
			}
		}
		s.Registry.FormGroup(lid, ids, kind)
	}}
}

// WithPatrol gives the labelled agent a patrol loop.
func WithPatrol(label string, points ...[2]float64) Option {
	return Option{simOptGroup, func(s *Sim) {
		a, ok := s.AgentByLabel(label)
		if !ok {
			return
		}
		route := make([]mgl64.Vec3, len(points))
		for i, p := range points {
			route[i] = mgl64.Vec3{p[0], p[1], 0}
		}
		a.SetPatrol(route)
	}}
}

// New constructs a Sim from the given options in ordered passes:
//  1. Infrastructure (arena size, seed, tuning, buildings, cover)
//  2. Navigation graph
//  3. Agents
//  4. Formations and patrols
func New(opts ...Option) *Sim {
	s := &Sim{
		SimLog:   NewSimLog(false),
		Tuning:   config.Default(),
		arenaCfg: arena.DefaultConfig(),
		seed:     1,
		rng:      rand.New(rand.NewSource(1)), // #nosec G404 -- deterministic default
		labels:   make(map[world.EntityID]string),
		byLabel:  make(map[string]world.EntityID),
		stats:    Stats{FirstContact: -1, FirstKill: -1},
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(s)
		}
	}
	s.Arena = arena.New(s.arenaCfg)
	for _, fn := range s.pending {
		fn()
	}
	s.pending = nil
	s.Registry = agent.NewRegistry(s.Arena)
	s.buildGraph()
	for _, o := range opts {
		if o.kind == simOptAgent {
			o.fn(s)
		}
	}
	for _, o := range opts {
		if o.kind == simOptGroup {
			o.fn(s)
		}
	}
	return s
}

func (s *Sim) buildGraph() {
	if s.cellSize <= 0 {
		return
	}
	// Cells are sampled at their centre, so keep clear of walls by a body
	// radius on each side.
	pad := s.arenaCfg.CharacterRadius
	walk := world.WalkFunc(func(p mgl64.Vec3) bool {
		for _, d := range [...]mgl64.Vec3{{pad, 0, 0}, {-pad, 0, 0}, {0, pad, 0}, {0, -pad, 0}} {
			if !s.Arena.IsWalkable(p.Add(d)) {
				return false
			}
		}
		return true
	})
	bounds := navgraph.Bounds{Max: mgl64.Vec3{s.arenaCfg.Width, s.arenaCfg.Height, 0}}
	s.Graph = navgraph.BuildGrid(bounds, s.cellSize, walk)
}

func (s *Sim) addAgent(team int, label string, pos mgl64.Vec3, heading float64, weapons []string, grenades map[world.GrenadeKind]int) {
	l := arena.Loadout{Magazine: 30, Grenades: grenades}
	for _, id := range weapons {
		if w, ok := s.Tuning.Weapon(id); ok {
			l.Weapons = append(l.Weapons, w)
		}
	}
	if len(l.Weapons) == 0 {
		if w, ok := s.Tuning.Weapon("rifle"); ok {
			l.Weapons = append(l.Weapons, w)
		}
	}
	id := s.Arena.Spawn(team, label, pos, geom.FromHeading(heading), l)
	s.labels[id] = label
	s.byLabel[label] = id
	rng := rand.New(rand.NewSource(s.rng.Int63())) // #nosec G404 -- per-agent stream from the run seed
	a := agent.New(id, s.Arena, s.Graph, s.Tuning.AgentConfig(), rng, s)
	s.Registry.Add(a)
}

// Seed returns the run seed.
func (s *Sim) Seed() int64 { return s.seed }

// CurrentTick returns the current simulation tick.
func (s *Sim) CurrentTick() int { return s.tick }

// Now returns simulated seconds.
func (s *Sim) Now() float64 { return float64(s.tick) * Dt }

// Label returns the label of an entity, or "--".
func (s *Sim) Label(id world.EntityID) string {
	if l, ok := s.labels[id]; ok {
		return l
	}
	return "--"
}

// AgentByLabel finds an agent by its label.
func (s *Sim) AgentByLabel(label string) (*agent.Agent, bool) {
	id, ok := s.byLabel[label]
	if !ok {
		return nil, false
	}
	return s.Registry.Agent(id)
}

// AddListener attaches another notification listener.
func (s *Sim) AddListener(l agent.Listener) {
	s.listeners = append(s.listeners, l)
}

// Stats returns the running tallies.
func (s *Sim) Stats() Stats { return s.stats }

// ArenaConfig returns the arena dimensions and body sizes the run uses.
func (s *Sim) ArenaConfig() arena.Config { return s.arenaCfg }

// ApplyTuning swaps tuning on every live agent. Loadouts already handed out
// keep their weapons.
func (s *Sim) ApplyTuning(t config.Tuning) {
	s.Tuning = t
	cfg := t.AgentConfig()
	for _, a := range s.Registry.Agents() {
		a.ApplyConfig(cfg)
	}
}

// RunTicks advances the simulation n ticks.
func (s *Sim) RunTicks(n int) {
	for i := 0; i < n; i++ {
		s.Step()
	}
}

// RunUntil advances the simulation up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (s *Sim) RunUntil(predicate func(*Sim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		s.Step()
		if predicate(s) {
			return s.tick
		}
	}
	return -1
}

// Step runs one tick: the arena clock advances, every agent thinks and
// moves, then arena events become sounds, damage and suppression for the
// agents.
func (s *Sim) Step() {
	s.tick++
	now := s.Now()
	s.Arena.Advance(now)
	results := s.Registry.Tick(now, Dt)
	for _, a := range s.Registry.Agents() {
		id := a.ID()
		r, ok := results[id]
		if !ok {
			continue
		}
		s.Arena.Move(id, r.Delta, r.Heading, Dt)
		if s.SimLog.verbose {
			p := s.Arena.Pose(id).Position
			s.SimLog.AddVerbose(s.tick, s.Label(id), teamLabel(s.Arena.Team(id)), "move", "position",
				fmt.Sprintf("(%.1f,%.1f)", p[0], p[1]), 0)
		}
	}
	s.applyEvents(now)
}
