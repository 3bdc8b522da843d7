package combat

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/jobendik/laser-sub002/internal/geom"
	"github.com/jobendik/laser-sub002/internal/world"
)

// Tactic names the movement a combat decision asks for.
type Tactic int

const (
	TacticNone Tactic = iota
	TacticSeekCover
	TacticFlank
	TacticAdvance
)

func (t Tactic) String() string {
	switch t {
	case TacticNone:
		return "none"
	case TacticSeekCover:
		return "seek_cover"
	case TacticFlank:
		return "flank"
	case TacticAdvance:
		return "advance"
	default:
		return "unknown"
	}
}

// MoveRequest asks navigation to take the agent somewhere.
type MoveRequest struct {
	Destination mgl64.Vec3
	Tactic      Tactic
}

// expireTactics clears in-progress flags whose timeout has passed and drops
// the cover flag once the agent has wandered off its cover point.
func (e *Engine) expireTactics(now float64, self world.Pose) {
	if e.flanking && now >= e.flankUntil {
		e.flanking = false
	}
	if e.advancing && now >= e.advanceUntil {
		e.advancing = false
	}
	if e.inCover && geom.FlatDist(self.Position, e.coverPoint) > e.cfg.LeaveCoverRadius {
		e.inCover = false
	}
	if e.seekingCover && geom.FlatDist(self.Position, e.coverPoint) <= e.cfg.InCoverRadius {
		e.seekingCover = false
		e.inCover = true
	}
}

// wantsCover reports whether health, recent damage or suppression calls
// for cover.
func (e *Engine) wantsCover(now float64) bool {
	return e.w.Health(e.self) < e.cfg.LowHealth ||
		now-e.lastDamage <= e.cfg.RecentDamage ||
		e.suppression > e.cfg.SuppressedAt
}

// evaluateTactics picks at most one movement: cover first, then flank,
// then advance.
func (e *Engine) evaluateTactics(now float64, self world.Pose, t TargetView) (MoveRequest, bool) {
	if e.wantsCover(now) && !e.inCover && !e.seekingCover && !e.w.InCover(e.self) {
		if p, ok := e.w.NearestCover(self.Position, e.cfg.CoverSearch); ok {
			e.seekingCover = true
			e.coverPoint = p
			return MoveRequest{Destination: p, Tactic: TacticSeekCover}, true
		}
	}
	if e.seekingCover {
		return MoveRequest{}, false
	}

	toTarget := geom.Flat(t.Position.Sub(self.Position))
	d := toTarget.Len()
	dir := geom.Normalize(toTarget)
	if dir.Len() == 0 {
		return MoveRequest{}, false
	}

	if !e.flanking && e.squad != nil && e.squad.Engaging(t.ID, e.self) > 0 && e.rng.Float64() < e.cfg.FlankChance {
		side := geom.Left(dir)
		if e.rng.Intn(2) == 1 {
			side = geom.Right(dir)
		}
		dest := self.Position.Add(dir.Mul(d * 0.5)).Add(side.Mul(e.cfg.FlankOffset))
		e.flanking = true
		e.flankUntil = now + e.cfg.FlankTimeout
		return MoveRequest{Destination: dest, Tactic: TacticFlank}, true
	}

	if !e.advancing && !e.flanking && e.hasWeapon && e.weapon.OptimalRange > 0 &&
		d > e.cfg.AdvanceFactor*e.weapon.OptimalRange && e.directLine(self.Position, t) {
		dest := self.Position.Add(toTarget.Mul(e.cfg.AdvanceFraction))
		e.advancing = true
		e.advanceUntil = now + e.cfg.AdvanceTimeout
		return MoveRequest{Destination: dest, Tactic: TacticAdvance}, true
	}
	return MoveRequest{}, false
}

// directLine reports whether nothing static lies between us and the target.
func (e *Engine) directLine(from mgl64.Vec3, t TargetView) bool {
	lift := geom.Up.Mul(e.cfg.EyeHeight)
	tr := e.w.Trace(from.Add(lift), t.Position.Add(lift))
	return !tr.Hit || tr.Entity == t.ID
}

// MoveFinished tells combat that a requested move has ended, so the
// matching in-progress flag can clear before its timeout.
func (e *Engine) MoveFinished(t Tactic) {
	switch t {
	case TacticSeekCover:
		if e.seekingCover {
			e.seekingCover = false
			e.inCover = true
		}
	case TacticFlank:
		e.flanking = false
	case TacticAdvance:
		e.advancing = false
	}
}
