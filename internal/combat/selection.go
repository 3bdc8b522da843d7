package combat

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/jobendik/laser-sub002/internal/geom"
	"github.com/jobendik/laser-sub002/internal/world"
)

// facingDot is the cosine of roughly 36 degrees.
const facingDot = 0.8

// TargetView is what target selection knows about one enemy.
type TargetView struct {
	ID       world.EntityID
	Position mgl64.Vec3
	Forward  mgl64.Vec3
	Health   float64 // 0-1
	CanSeeUs bool
}

// ScoreTarget ranks an enemy for engagement. Closer, weaker, watching and
// aiming targets score higher.
func ScoreTarget(self mgl64.Vec3, t TargetView) float64 {
	score := 100 - 0.5*geom.Dist(self, t.Position) + 0.3*(100-geom.Clamp01(t.Health)*100)
	if t.CanSeeUs {
		score += 20
	}
	toUs := geom.Normalize(geom.Flat(self.Sub(t.Position)))
	if geom.Normalize(geom.Flat(t.Forward)).Dot(toUs) > facingDot {
		score += 30
	}
	return score
}

// view builds a TargetView from the world.
func (e *Engine) view(id world.EntityID, self world.Pose) TargetView {
	p := e.w.Pose(id)
	return TargetView{
		ID:       id,
		Position: p.Position,
		Forward:  p.Forward,
		Health:   e.w.Health(id),
		CanSeeUs: e.canSeeUs(p, self.Position),
	}
}

// canSeeUs reports whether a target facing our half-space has a clear trace
// to us.
func (e *Engine) canSeeUs(target world.Pose, self mgl64.Vec3) bool {
	dir := geom.Normalize(geom.Flat(self.Sub(target.Position)))
	if geom.Flat(target.Forward).Dot(dir) <= 0 {
		return false
	}
	lift := geom.Up.Mul(e.cfg.EyeHeight)
	tr := e.w.Trace(target.Position.Add(lift), self.Add(lift))
	return !tr.Hit || tr.Entity == e.self
}

// selectTarget returns the best-scoring live entry of visible. Ties keep
// the earliest entry.
func (e *Engine) selectTarget(visible []world.EntityID, self world.Pose) (TargetView, bool) {
	var best TargetView
	found := false
	bestScore := 0.0
	for _, id := range visible {
		if id == e.self || !e.w.Exists(id) {
			continue
		}
		v := e.view(id, self)
		s := ScoreTarget(self.Position, v)
		if !found || s > bestScore {
			best, bestScore, found = v, s, true
		}
	}
	return best, found
}
