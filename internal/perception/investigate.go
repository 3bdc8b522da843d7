package perception

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// InvestigationKind says what produced an investigation point.
type InvestigationKind int

const (
	InvestigateGunshot InvestigationKind = iota
	InvestigateFootstep
	InvestigateExplosion
	InvestigateReload
	InvestigateInteraction
	InvestigateAllyAlert
)

func (k InvestigationKind) String() string {
	switch k {
	case InvestigateGunshot:
		return "gunshot"
	case InvestigateFootstep:
		return "footstep"
	case InvestigateExplosion:
		return "explosion"
	case InvestigateReload:
		return "reload"
	case InvestigateInteraction:
		return "interaction"
	case InvestigateAllyAlert:
		return "ally_alert"
	default:
		return "unknown"
	}
}

// allyAlertPriority sits between a gunshot and an explosion.
const allyAlertPriority = 12

func priorityOf(k InvestigationKind) int {
	switch k {
	case InvestigateGunshot:
		return soundTable[SoundGunshot].priority
	case InvestigateFootstep:
		return soundTable[SoundFootstep].priority
	case InvestigateExplosion:
		return soundTable[SoundExplosion].priority
	case InvestigateReload:
		return soundTable[SoundReload].priority
	case InvestigateInteraction:
		return soundTable[SoundInteraction].priority
	case InvestigateAllyAlert:
		return allyAlertPriority
	}
	return 0
}

// InvestigationPoint is a place worth walking to.
type InvestigationPoint struct {
	ID           int
	Position     mgl64.Vec3
	Kind         InvestigationKind
	CreatedAt    float64
	Priority     int
	Investigated bool
}

// AddInvestigation queues a point. The list stays sorted by priority,
// highest first, with insertion order kept among equals, and is truncated
// to the configured cap.
func (e *Engine) AddInvestigation(pos mgl64.Vec3, kind InvestigationKind, now float64) InvestigationPoint {
	e.nextInvestigationID++
	p := InvestigationPoint{
		ID:        e.nextInvestigationID,
		Position:  pos,
		Kind:      kind,
		CreatedAt: now,
		Priority:  priorityOf(kind),
	}
	e.investigations = append(e.investigations, p)
	sort.SliceStable(e.investigations, func(i, j int) bool {
		return e.investigations[i].Priority > e.investigations[j].Priority
	})
	if limit := e.cfg.InvestigationCap; limit > 0 && len(e.investigations) > limit {
		e.investigations = e.investigations[:limit]
	}
	return p
}

// NextInvestigation returns the highest-priority point that is neither
// investigated nor expired.
func (e *Engine) NextInvestigation(now float64) (InvestigationPoint, bool) {
	for _, p := range e.investigations {
		if p.Investigated || e.expired(p, now) {
			continue
		}
		return p, true
	}
	return InvestigationPoint{}, false
}

// MarkInvestigated flags a point as resolved.
func (e *Engine) MarkInvestigated(id int) bool {
	for i := range e.investigations {
		if e.investigations[i].ID == id {
			e.investigations[i].Investigated = true
			return true
		}
	}
	return false
}

// Investigations returns a copy of the queue.
func (e *Engine) Investigations() []InvestigationPoint {
	return append([]InvestigationPoint(nil), e.investigations...)
}

func (e *Engine) expired(p InvestigationPoint, now float64) bool {
	return now-p.CreatedAt > e.cfg.InvestigationTTL
}

func (e *Engine) pruneInvestigations(now float64) {
	kept := e.investigations[:0]
	for _, p := range e.investigations {
		if p.Investigated || e.expired(p, now) {
			continue
		}
		kept = append(kept, p)
	}
	e.investigations = kept
}
