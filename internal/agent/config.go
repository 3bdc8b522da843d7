package agent

import (
	"math"

	"github.com/jobendik/laser-sub002/internal/combat"
	"github.com/jobendik/laser-sub002/internal/perception"
	"github.com/jobendik/laser-sub002/internal/steering"
)

// Config bundles the tuning of every component an agent owns.
type Config struct {
	Perception perception.Config
	Modifiers  perception.Modifiers
	Combat     combat.Config
	Steering   steering.Config
	TurnRate   float64 // radians per second
	ScanRate   float64 // radians per second while sweeping a search area
}

// DefaultConfig returns stock tuning for every component.
func DefaultConfig() Config {
	return Config{
		Perception: perception.DefaultConfig(),
		Modifiers:  perception.NeutralModifiers(),
		Combat:     combat.DefaultConfig(),
		Steering:   steering.DefaultConfig(),
		TurnRate:   2 * math.Pi,
		ScanRate:   math.Pi / 2,
	}
}
