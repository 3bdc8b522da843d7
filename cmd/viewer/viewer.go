package main

import (
	"math"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"github.com/jobendik/laser-sub002/internal/arena"
	"github.com/jobendik/laser-sub002/internal/config"
	"github.com/jobendik/laser-sub002/internal/geom"
	"github.com/jobendik/laser-sub002/internal/sim"
	"github.com/jobendik/laser-sub002/internal/world"
)

const (
	hudHeight   = 150
	maxSpeed    = 8
	statusTicks = 180
	pickRadius  = 2.0 // metres
)

// Viewer is the ebiten game driving one scenario.
type Viewer struct {
	scenario sim.Scenario
	seed     int64
	tuning   config.Tuning
	watcher  *TuningWatcher

	sim  *sim.Sim
	log  *ThoughtLog
	face text.Face

	scale    float64 // pixels per metre
	paused   bool
	speed    int // ticks per frame
	selected world.EntityID

	status      string
	statusUntil int
	frame       int

	prevKeys  map[ebiten.Key]bool
	prevMouse bool
}

// NewViewer builds the scenario and the viewer state. watcher may be nil.
func NewViewer(sc sim.Scenario, seed int64, tuning config.Tuning, scale float64, watcher *TuningWatcher) *Viewer {
	v := &Viewer{
		scenario: sc,
		seed:     seed,
		tuning:   tuning,
		watcher:  watcher,
		face:     text.NewGoXFace(basicfont.Face7x13),
		scale:    scale,
		speed:    1,
		selected: world.NoEntity,
		prevKeys: map[ebiten.Key]bool{},
	}
	v.restart()
	return v
}

func (v *Viewer) restart() {
	v.sim = v.scenario.Build(sim.WithSeed(v.seed), sim.WithTuning(v.tuning))
	v.log = NewThoughtLog(v.sim)
	v.sim.AddListener(v.log)
	if _, ok := v.sim.Registry.Agent(v.selected); !ok {
		v.selected = world.NoEntity
	}
	log.Info("scenario loaded", "scenario", v.scenario.Name, "seed", v.seed, "agents", v.sim.Registry.Len())
}

func (v *Viewer) flash(msg string) {
	v.status = msg
	v.statusUntil = v.frame + statusTicks
}

// Update implements ebiten.Game.
func (v *Viewer) Update() error {
	v.frame++
	v.pollTuning()
	v.handleInput()
	if v.paused {
		return nil
	}
	for i := 0; i < v.speed; i++ {
		v.sim.Step()
	}
	return nil
}

func (v *Viewer) pollTuning() {
	if v.watcher == nil {
		return
	}
	select {
	case t := <-v.watcher.Updates:
		v.tuning = t
		v.sim.ApplyTuning(t)
		log.Info("tuning reloaded", "difficulty", t.Difficulty)
		v.flash("tuning reloaded (" + t.Difficulty + ")")
	case err := <-v.watcher.Errors:
		log.Warn("tuning reload failed", "err", err)
		v.flash("tuning error: " + err.Error())
	default:
	}
}

// edge reports a key going down this frame.
func (v *Viewer) edge(cur map[ebiten.Key]bool, k ebiten.Key) bool {
	cur[k] = ebiten.IsKeyPressed(k)
	return cur[k] && !v.prevKeys[k]
}

func (v *Viewer) handleInput() {
	cur := map[ebiten.Key]bool{}

	if v.edge(cur, ebiten.KeySpace) {
		v.paused = !v.paused
	}
	// Period steps one tick while paused.
	if v.edge(cur, ebiten.KeyPeriod) && v.paused {
		v.sim.Step()
	}
	if v.edge(cur, ebiten.KeyEqual) {
		v.speed = clampSpeed(v.speed * 2)
	}
	if v.edge(cur, ebiten.KeyMinus) {
		v.speed = clampSpeed(v.speed / 2)
	}
	if v.edge(cur, ebiten.KeyR) {
		v.restart()
		v.flash("restarted")
	}
	if v.edge(cur, ebiten.KeyN) {
		v.seed++
		v.restart()
		v.flash("next seed")
	}
	if v.edge(cur, ebiten.KeyTab) {
		v.selected = nextSelection(agentIDs(v.sim), v.selected)
	}
	if v.edge(cur, ebiten.KeyC) {
		v.copyReport()
	}
	v.prevKeys = cur

	mouse := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	if mouse && !v.prevMouse {
		mx, my := ebiten.CursorPosition()
		p := v.toWorld(mx, my)
		if id, ok := pickAgent(v.sim.Arena.Characters(), p, pickRadius); ok {
			v.selected = id
		} else {
			v.selected = world.NoEntity
		}
	}
	v.prevMouse = mouse
}

func (v *Viewer) copyReport() {
	a, ok := v.sim.Registry.Agent(v.selected)
	if !ok {
		v.flash("select an agent first (Tab or click)")
		return
	}
	if err := clipboard.WriteAll(a.DebugReport(v.sim.Now())); err != nil {
		log.Warn("clipboard", "err", err)
		v.flash("clipboard unavailable")
		return
	}
	v.flash("debug report for " + v.sim.Label(v.selected) + " copied")
}

func clampSpeed(s int) int {
	if s < 1 {
		return 1
	}
	if s > maxSpeed {
		return maxSpeed
	}
	return s
}

func agentIDs(s *sim.Sim) []world.EntityID {
	agents := s.Registry.Agents()
	out := make([]world.EntityID, 0, len(agents))
	for _, a := range agents {
		if s.Arena.Exists(a.ID()) {
			out = append(out, a.ID())
		}
	}
	return out
}

// nextSelection cycles through ids, wrapping to none after the last one.
func nextSelection(ids []world.EntityID, cur world.EntityID) world.EntityID {
	if len(ids) == 0 {
		return world.NoEntity
	}
	if cur == world.NoEntity {
		return ids[0]
	}
	for i, id := range ids {
		if id == cur {
			if i+1 < len(ids) {
				return ids[i+1]
			}
			return world.NoEntity
		}
	}
	return ids[0]
}

// pickAgent returns the living character closest to p within radius.
func pickAgent(chars []*arena.Character, p mgl64.Vec3, radius float64) (world.EntityID, bool) {
	best, bestD := world.NoEntity, math.Inf(1)
	for _, c := range chars {
		if !c.Alive() {
			continue
		}
		d := geom.FlatDist(c.Pose.Position, p)
		if d <= radius && d < bestD {
			best, bestD = c.ID, d
		}
	}
	return best, best != world.NoEntity
}

func (v *Viewer) toScreen(p mgl64.Vec3) (float32, float32) {
	return float32(p[0] * v.scale), float32(p[1] * v.scale)
}

func (v *Viewer) toWorld(x, y int) mgl64.Vec3 {
	return mgl64.Vec3{float64(x) / v.scale, float64(y) / v.scale, 0}
}

func (v *Viewer) fieldSize() (int, int) {
	cfg := v.sim.ArenaConfig()
	return int(math.Ceil(cfg.Width * v.scale)), int(math.Ceil(cfg.Height * v.scale))
}

// Layout implements ebiten.Game.
func (v *Viewer) Layout(_, _ int) (int, int) {
	w, h := v.fieldSize()
	return w + logPanelWidth, h + hudHeight
}
