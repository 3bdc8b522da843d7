package main

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/jobendik/laser-sub002/internal/agent"
	"github.com/jobendik/laser-sub002/internal/arena"
	"github.com/jobendik/laser-sub002/internal/perception"
	"github.com/jobendik/laser-sub002/internal/sim"
)

const coneSteps = 16

var (
	colBackground = color.RGBA{R: 28, G: 34, B: 26, A: 255}
	colGrid       = color.RGBA{R: 38, G: 46, B: 36, A: 255}
	colBuilding   = color.RGBA{R: 92, G: 88, B: 80, A: 255}
	colLowWall    = color.RGBA{R: 130, G: 120, B: 96, A: 255}
	colCover      = color.RGBA{R: 90, G: 140, B: 80, A: 255}
	colSmoke      = color.NRGBA{R: 190, G: 190, B: 190, A: 110}
	colPath       = color.NRGBA{R: 240, G: 220, B: 120, A: 160}
	colSelected   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colDead       = color.RGBA{R: 90, G: 90, B: 90, A: 255}
)

func teamColor(team int) color.RGBA {
	if team == sim.TeamRed {
		return color.RGBA{R: 210, G: 70, B: 70, A: 255}
	}
	return color.RGBA{R: 70, G: 110, B: 210, A: 255}
}

// alertColor is the ring drawn around an agent; Unaware draws none.
func alertColor(level perception.AlertLevel) (color.NRGBA, bool) {
	switch level {
	case perception.Suspicious:
		return color.NRGBA{R: 240, G: 220, B: 60, A: 220}, true
	case perception.Alert:
		return color.NRGBA{R: 250, G: 150, B: 40, A: 230}, true
	case perception.Combat:
		return color.NRGBA{R: 255, G: 50, B: 50, A: 240}, true
	}
	return color.NRGBA{}, false
}

func drawText(dst *ebiten.Image, face text.Face, s string, x, y int, c color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(c)
	text.Draw(dst, s, face, op)
}

// Draw implements ebiten.Game.
func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(colBackground)
	w, h := v.fieldSize()

	v.drawGrid(screen, w, h)
	v.drawArena(screen)
	for _, c := range v.sim.Arena.Characters() {
		a, ok := v.sim.Registry.Agent(c.ID)
		if !c.Alive() || !ok {
			continue
		}
		v.drawCone(screen, c, a)
	}
	for _, c := range v.sim.Arena.Characters() {
		a, _ := v.sim.Registry.Agent(c.ID)
		v.drawAgent(screen, c, a)
	}

	v.log.Draw(screen, v.face, w, h+hudHeight)
	v.drawHUD(screen, w, h)
}

func (v *Viewer) drawGrid(screen *ebiten.Image, w, h int) {
	step := float32(10 * v.scale)
	for x := float32(0); x <= float32(w); x += step {
		vector.StrokeLine(screen, x, 0, x, float32(h), 1, colGrid, false)
	}
	for y := float32(0); y <= float32(h); y += step {
		vector.StrokeLine(screen, 0, y, float32(w), y, 1, colGrid, false)
	}
}

func (v *Viewer) drawArena(screen *ebiten.Image) {
	cfg := v.sim.ArenaConfig()
	for _, b := range v.sim.Arena.Buildings() {
		x0, y0 := v.toScreen(b.Min)
		x1, y1 := v.toScreen(b.Max)
		col := colBuilding
		if b.Max[2] < cfg.EyeHeight {
			col = colLowWall
		}
		vector.FillRect(screen, x0, y0, x1-x0, y1-y0, col, false)
		vector.StrokeRect(screen, x0, y0, x1-x0, y1-y0, 1, color.Black, false)
	}
	for _, p := range v.sim.Arena.CoverPoints() {
		x, y := v.toScreen(p)
		vector.FillRect(screen, x-3, y-3, 6, 6, colCover, false)
	}
	centers, radii := v.sim.Arena.Smoke()
	for i, c := range centers {
		x, y := v.toScreen(c)
		vector.FillCircle(screen, x, y, float32(radii[i]*v.scale), colSmoke, true)
	}
}

func (v *Viewer) drawCone(screen *ebiten.Image, c *arena.Character, a *agent.Agent) {
	p := a.Perception()
	reach := p.EffectiveSightRange() * v.scale
	half := p.EffectiveSightAngle() / 2 * math.Pi / 180
	heading := a.Heading()

	sx, sy := v.toScreen(c.Pose.Position)
	var path vector.Path
	path.MoveTo(sx, sy)
	for i := 0; i <= coneSteps; i++ {
		ang := heading - half + 2*half*float64(i)/coneSteps
		path.LineTo(sx+float32(math.Cos(ang)*reach), sy+float32(math.Sin(ang)*reach))
	}
	path.Close()

	tc := teamColor(c.Team)
	tint := color.NRGBA{R: tc.R, G: tc.G, B: tc.B, A: 22}
	if level := p.AlertLevel(); level >= perception.Alert {
		tint.A = 40
	}
	op := &vector.DrawPathOptions{AntiAlias: true}
	op.ColorScale.ScaleWithColor(tint)
	vector.FillPath(screen, &path, &vector.FillOptions{}, op)
}

func (v *Viewer) drawAgent(screen *ebiten.Image, c *arena.Character, a *agent.Agent) {
	x, y := v.toScreen(c.Pose.Position)
	r := float32(v.sim.ArenaConfig().CharacterRadius * v.scale)
	if r < 3 {
		r = 3
	}
	if !c.Alive() || a == nil {
		vector.StrokeLine(screen, x-r, y-r, x+r, y+r, 2, colDead, false)
		vector.StrokeLine(screen, x-r, y+r, x+r, y-r, 2, colDead, false)
		return
	}

	// Remaining path.
	prevX, prevY := x, y
	for _, wp := range a.Navigation().Path() {
		wx, wy := v.toScreen(wp)
		vector.StrokeLine(screen, prevX, prevY, wx, wy, 1, colPath, false)
		vector.FillCircle(screen, wx, wy, 2, colPath, false)
		prevX, prevY = wx, wy
	}

	// Engagement line.
	if target, engaged := a.Combat().Target(); engaged && v.sim.Arena.Exists(target) {
		tx, ty := v.toScreen(v.sim.Arena.Pose(target).Position)
		vector.StrokeLine(screen, x, y, tx, ty, 1, color.NRGBA{R: 255, G: 80, B: 80, A: 120}, false)
	}

	if col, ok := alertColor(a.Perception().AlertLevel()); ok {
		vector.StrokeCircle(screen, x, y, r+4, 2, col, true)
	}
	vector.FillCircle(screen, x, y, r, teamColor(c.Team), true)
	hx := x + float32(math.Cos(a.Heading()))*(r+6)
	hy := y + float32(math.Sin(a.Heading()))*(r+6)
	vector.StrokeLine(screen, x, y, hx, hy, 2, color.White, true)

	// Health bar.
	vector.FillRect(screen, x-r, y-r-6, 2*r, 3, color.RGBA{R: 60, G: 0, B: 0, A: 255}, false)
	vector.FillRect(screen, x-r, y-r-6, 2*r*float32(c.Health), 3, color.RGBA{R: 80, G: 220, B: 80, A: 255}, false)

	drawText(screen, v.face, c.Label, int(x+r+2), int(y-r-4), color.White)
	if c.ID == v.selected {
		vector.StrokeCircle(screen, x, y, r+8, 1, colSelected, true)
	}
}

func (v *Viewer) drawHUD(screen *ebiten.Image, w, h int) {
	vector.FillRect(screen, 0, float32(h), float32(w), hudHeight, color.RGBA{R: 12, G: 14, B: 12, A: 255}, false)
	vector.StrokeLine(screen, 0, float32(h), float32(w), float32(h), 1, color.RGBA{R: 50, G: 70, B: 50, A: 255}, false)

	s := v.sim
	st := s.Stats()
	state := "running"
	if v.paused {
		state = "paused"
	}
	if _, done := s.Winner(); done {
		state = s.Outcome(v.scenario.Name).WinnerLabel() + " wins"
	}
	lines := []string{
		fmt.Sprintf("%s  seed=%d  difficulty=%s  tick=%d  t=%.1fs  x%d  %s",
			v.scenario.Name, v.seed, v.tuning.Difficulty, s.CurrentTick(), s.Now(), v.speed, state),
		fmt.Sprintf("red  alive=%d shots=%d hits=%d kills=%d    blue alive=%d shots=%d hits=%d kills=%d",
			s.Arena.Alive(sim.TeamRed), st.Shots[0], st.Hits[0], st.Kills[0],
			s.Arena.Alive(sim.TeamBlue), st.Shots[1], st.Hits[1], st.Kills[1]),
		"SPACE pause  . step  +/- speed  R restart  N next seed  TAB/click select  C copy report",
	}
	if a, ok := s.Registry.Agent(v.selected); ok && s.Arena.Exists(v.selected) {
		report := strings.Split(strings.TrimSpace(a.DebugReport(s.Now())), "\n")
		if len(report) > 6 {
			report = report[:6]
		}
		lines = append(lines, report...)
	}
	if v.frame < v.statusUntil {
		lines = append(lines, "> "+v.status)
	}
	y := h + 6
	for _, l := range lines {
		drawText(screen, v.face, l, 8, y, color.RGBA{R: 200, G: 210, B: 200, A: 255})
		y += 14
	}
}
