package steering

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/jobendik/laser-sub002/internal/geom"
	"github.com/jobendik/laser-sub002/internal/world"
)

// FormationKind identifies the shape of a group formation.
type FormationKind int

const (
	FormationLine    FormationKind = iota // side-by-side perpendicular to heading
	FormationColumn                       // single file behind leader
	FormationWedge                        // V-shape, leader at point
	FormationEchelon                      // diagonal line offset to one flank
)

func (k FormationKind) String() string {
	switch k {
	case FormationLine:
		return "line"
	case FormationColumn:
		return "column"
	case FormationWedge:
		return "wedge"
	case FormationEchelon:
		return "echelon"
	default:
		return "unknown"
	}
}

// ParseFormationKind maps a config name back to a kind.
func ParseFormationKind(s string) (FormationKind, bool) {
	for k := FormationLine; k <= FormationEchelon; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return FormationLine, false
}

// FormationOffsets returns the local (forward, right) offsets for each slot
// in a formation of count members. Slot 0 is the leader.
func FormationOffsets(kind FormationKind, count int, spacing float64) [][2]float64 {
	if count <= 0 {
		return nil
	}
	offsets := make([][2]float64, count)
	for i := 1; i < count; i++ {
		offsets[i] = FormationOffset(kind, i, spacing)
	}
	return offsets
}

// FormationOffset returns the (forward, right) offset of one slot.
func FormationOffset(kind FormationKind, index int, spacing float64) [2]float64 {
	if index <= 0 {
		return [2]float64{}
	}
	rank := float64((index + 1) / 2)
	side := rank * spacing
	if index%2 == 1 {
		side = -side
	}
	switch kind {
	case FormationLine:
		return [2]float64{0, side}
	case FormationColumn:
		return [2]float64{-float64(index) * spacing, 0}
	case FormationWedge:
		return [2]float64{-rank * spacing, side}
	case FormationEchelon:
		return [2]float64{-float64(index) * spacing * 0.7, float64(index) * spacing * 0.7}
	}
	return [2]float64{}
}

// SlotPosition converts a local (forward, right) offset into a world
// position given the leader's position and facing.
func SlotPosition(leader, forward mgl64.Vec3, offset [2]float64) mgl64.Vec3 {
	fwd := geom.Normalize(geom.Flat(forward))
	if fwd.Len() == 0 {
		fwd = mgl64.Vec3{1, 0, 0}
	}
	right := geom.Right(fwd)
	return leader.Add(fwd.Mul(offset[0])).Add(right.Mul(offset[1]))
}

// FormationState is a follower's membership in a group.
type FormationState struct {
	LeaderID   world.EntityID
	Kind       FormationKind
	Index      int
	Offset     [2]float64
	Separation float64
}

// JoinFormation makes the executor follow a slot behind leader.
func (e *Executor) JoinFormation(leader world.EntityID, kind FormationKind, index int) FormationState {
	st := FormationState{
		LeaderID:   leader,
		Kind:       kind,
		Index:      index,
		Offset:     FormationOffset(kind, index, e.cfg.SlotSpacing),
		Separation: e.cfg.SeparationDistance,
	}
	e.formation = &st
	return st
}

// LeaveFormation clears formation membership.
func (e *Executor) LeaveFormation() { e.formation = nil }

// Formation returns the current membership, if any.
func (e *Executor) Formation() (FormationState, bool) {
	if e.formation == nil {
		return FormationState{}, false
	}
	return *e.formation, true
}

// FollowSlot keeps the follower heading for its slot. A new path is only
// requested when idle away from the slot, or when the slot has drifted
// further than RepathThreshold from the current destination. It reports
// whether a new path was planned.
func (e *Executor) FollowSlot(pos, leaderPos, leaderForward mgl64.Vec3) (mgl64.Vec3, bool) {
	if e.formation == nil {
		return mgl64.Vec3{}, false
	}
	slot := SlotPosition(leaderPos, leaderForward, e.formation.Offset)
	if e.active {
		if geom.FlatDist(e.destination, slot) <= e.cfg.RepathThreshold {
			return slot, false
		}
	} else if geom.FlatDist(pos, slot) <= e.cfg.ArrivalRadius {
		return slot, false
	}
	e.SetDestination(pos, slot)
	return slot, true
}
