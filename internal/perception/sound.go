package perception

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/jobendik/laser-sub002/internal/geom"
	"github.com/jobendik/laser-sub002/internal/world"
)

// SoundType is the taxonomy of audible events.
type SoundType int

const (
	SoundGunshot SoundType = iota
	SoundFootstep
	SoundExplosion
	SoundReload
	SoundInteraction
)

func (s SoundType) String() string {
	switch s {
	case SoundGunshot:
		return "gunshot"
	case SoundFootstep:
		return "footstep"
	case SoundExplosion:
		return "explosion"
	case SoundReload:
		return "reload"
	case SoundInteraction:
		return "interaction"
	default:
		return "unknown"
	}
}

// ThreatClass grades how alarming a sound is.
type ThreatClass int

const (
	ThreatLow ThreatClass = iota
	ThreatMedium
	ThreatHigh
	ThreatCritical
)

func (c ThreatClass) String() string {
	switch c {
	case ThreatLow:
		return "low"
	case ThreatMedium:
		return "medium"
	case ThreatHigh:
		return "high"
	case ThreatCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// soundProfile is the fixed per-type data for a sound.
type soundProfile struct {
	rangeScale float64 // multiplier on Config.HearingRange
	class      ThreatClass
	priority   int // investigation priority
	kind       InvestigationKind
}

var soundTable = [...]soundProfile{
	SoundGunshot:     {rangeScale: 2.0, class: ThreatHigh, priority: 10, kind: InvestigateGunshot},
	SoundFootstep:    {rangeScale: 0.3, class: ThreatLow, priority: 3, kind: InvestigateFootstep},
	SoundExplosion:   {rangeScale: 3.0, class: ThreatCritical, priority: 15, kind: InvestigateExplosion},
	SoundReload:      {rangeScale: 0.5, class: ThreatMedium, priority: 8, kind: InvestigateReload},
	SoundInteraction: {rangeScale: 0.4, class: ThreatLow, priority: 5, kind: InvestigateInteraction},
}

func profileOf(t SoundType) (soundProfile, bool) {
	if t < 0 || int(t) >= len(soundTable) {
		return soundProfile{}, false
	}
	return soundTable[t], true
}

// Class returns the threat class of a sound type.
func (s SoundType) Class() ThreatClass {
	p, _ := profileOf(s)
	return p.class
}

// SoundEvent is a transient audible event in the world.
type SoundEvent struct {
	Type        SoundType
	Position    mgl64.Vec3
	Source      world.EntityID
	Investigate bool // listeners may queue an investigation point
}

// HeardSound is a sound an agent actually perceived.
type HeardSound struct {
	Event      SoundEvent
	Confidence float64
	Class      ThreatClass
	HeardAt    float64
}

// minInvestigateConfidence gates queuing an investigation point.
const minInvestigateConfidence = 0.3

// EffectiveHearingRange returns the detection range for one sound type.
func (e *Engine) EffectiveHearingRange(t SoundType) float64 {
	p, ok := profileOf(t)
	if !ok {
		return 0
	}
	return e.cfg.HearingRange * p.rangeScale * e.mods.hearing()
}

// HearSound processes one sound event. Events beyond the effective range,
// or emitted by the agent itself, are ignored.
func (e *Engine) HearSound(ev SoundEvent, now float64) (HeardSound, bool) {
	p, ok := profileOf(ev.Type)
	if !ok || ev.Source == e.self {
		return HeardSound{}, false
	}
	rng := e.EffectiveHearingRange(ev.Type)
	if rng <= 0 {
		return HeardSound{}, false
	}
	d := geom.Dist(e.sensors.Pose(e.self).Position, ev.Position)
	if d > rng {
		return HeardSound{}, false
	}
	h := HeardSound{
		Event:      ev,
		Confidence: geom.Clamp01(1 - d/rng),
		Class:      p.class,
		HeardAt:    now,
	}
	e.sounds = append(e.sounds, h)

	switch p.class {
	case ThreatCritical:
		e.escalate(Combat, ev.Position, ev.Type.String(), now)
	case ThreatHigh:
		e.escalate(Alert, ev.Position, ev.Type.String(), now)
	case ThreatMedium:
		e.escalate(Suspicious, ev.Position, ev.Type.String(), now)
	case ThreatLow:
		if e.alert == Unaware {
			e.escalate(Suspicious, ev.Position, ev.Type.String(), now)
		}
	}

	if ev.Investigate && h.Confidence > minInvestigateConfidence {
		e.AddInvestigation(ev.Position, p.kind, now)
	}
	return h, true
}

// RecentSounds returns the sounds still held in memory.
func (e *Engine) RecentSounds() []HeardSound {
	return append([]HeardSound(nil), e.sounds...)
}
