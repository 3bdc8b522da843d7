package combat

import "math/rand"

// FireState is the fire-control state machine.
type FireState int

const (
	FireIdle FireState = iota
	FireBurst
	FireCooldown
)

func (s FireState) String() string {
	switch s {
	case FireIdle:
		return "idle"
	case FireBurst:
		return "burst"
	case FireCooldown:
		return "cooldown"
	default:
		return "unknown"
	}
}

// fireControl runs Idle -> Burst -> Cooldown -> Idle.
type fireControl struct {
	state      FireState
	burstCount int
	lastShot   float64
	shots      int // lifetime rounds, for reporting
}

func newFireControl() fireControl {
	return fireControl{lastShot: -1e9}
}

// step decides whether to fire one round this tick. The probabilistic gate
// rng < accuracy must pass to open a burst and again before every follow-up
// round; a failed follow-up ends the burst early.
func (f *fireControl) step(now, accuracy, cooldown float64, maxBurst int, rng *rand.Rand) bool {
	if maxBurst <= 0 {
		return false
	}
	if f.state != FireBurst {
		// A reset on target change or disengage keeps lastShot, so the
		// cooldown still holds for the next burst.
		if now-f.lastShot <= cooldown {
			return false
		}
		f.state = FireIdle
		if f.burstCount != 0 || rng.Float64() >= accuracy {
			return false
		}
		f.state = FireBurst
	} else if rng.Float64() >= accuracy {
		f.interrupt()
		return false
	}

	f.burstCount++
	f.shots++
	f.lastShot = now
	if f.burstCount >= maxBurst {
		f.interrupt()
	}
	return true
}

// interrupt ends a running burst and starts the cooldown.
func (f *fireControl) interrupt() {
	if f.state == FireBurst {
		f.state = FireCooldown
	}
	f.burstCount = 0
}

func (f *fireControl) reset() {
	f.state = FireIdle
	f.burstCount = 0
}
