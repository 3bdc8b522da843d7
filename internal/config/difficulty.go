package config

import (
	"math"

	"github.com/jobendik/laser-sub002/internal/agent"
	"github.com/jobendik/laser-sub002/internal/combat"
	"github.com/jobendik/laser-sub002/internal/perception"
	"github.com/jobendik/laser-sub002/internal/steering"
	"github.com/jobendik/laser-sub002/internal/world"
)

// Difficulty is one preset.
type Difficulty struct {
	Name         string
	BaseAccuracy float64
	MaxBurst     int
	SightRange   float64 // multiplier
	SightAngle   float64 // multiplier
	Hearing      float64 // multiplier
}

var presets = []Difficulty{
	{Name: "easy", BaseAccuracy: 0.5, MaxBurst: 2, SightRange: 0.8, SightAngle: 0.9, Hearing: 0.8},
	{Name: "normal", BaseAccuracy: 0.7, MaxBurst: 3, SightRange: 1, SightAngle: 1, Hearing: 1},
	{Name: "hard", BaseAccuracy: 0.85, MaxBurst: 4, SightRange: 1.15, SightAngle: 1.1, Hearing: 1.2},
	{Name: "veteran", BaseAccuracy: 0.95, MaxBurst: 5, SightRange: 1.3, SightAngle: 1.2, Hearing: 1.4},
}

// Preset looks up a difficulty by name.
func Preset(name string) (Difficulty, bool) {
	for _, d := range presets {
		if d.Name == name {
			return d, true
		}
	}
	return Difficulty{}, false
}

// Presets lists the difficulty names from easiest to hardest.
func Presets() []string {
	out := make([]string, len(presets))
	for i, d := range presets {
		out[i] = d.Name
	}
	return out
}

func (t Tuning) difficulty() Difficulty {
	if d, ok := Preset(t.Difficulty); ok {
		return d
	}
	d, _ := Preset("normal")
	return d
}

// PerceptionConfig builds the base perception config.
func (t Tuning) PerceptionConfig() perception.Config {
	c := perception.DefaultConfig()
	p := t.Perception
	c.SightRange = p.SightRange
	c.SightAngle = p.SightAngle
	c.HearingRange = p.HearingRange
	c.EyeHeight = p.EyeHeight
	c.TargetHeight = p.TargetHeight
	c.CoverLeakTolerance = p.CoverLeakTolerance
	c.UpdateInterval = p.UpdateInterval
	c.LostThreshold = p.LostThreshold
	c.MemoryDuration = p.MemoryDuration
	c.SoundMemory = p.SoundMemory
	c.AlertCooldown = p.AlertCooldown
	c.BroadcastRadius = p.BroadcastRadius
	c.SearchDuration = p.SearchDuration
	c.InvestigationCap = p.InvestigationCap
	c.InvestigationTTL = p.InvestigationTTL
	return c
}

// Modifiers builds the perception multipliers from difficulty and
// environment.
func (t Tuning) Modifiers() perception.Modifiers {
	d := t.difficulty()
	return perception.Modifiers{
		Difficulty:  perception.Difficulty{Range: d.SightRange, Angle: d.SightAngle, Hearing: d.Hearing},
		Environment: perception.Environment{Lighting: t.Perception.Lighting, Weather: t.Perception.Weather, Noise: t.Perception.Noise},
	}
}

// CombatConfig builds the combat config for a named difficulty. An unknown
// name falls back to the file's own difficulty.
func (t Tuning) CombatConfig(difficulty string) combat.Config {
	d, ok := Preset(difficulty)
	if !ok {
		d = t.difficulty()
	}
	c := combat.DefaultConfig()
	k := t.Combat
	c.BaseAccuracy = d.BaseAccuracy
	c.MaxBurst = d.MaxBurst
	c.CloseRange = k.CloseRange
	c.LongRange = k.LongRange
	c.TacticInterval = k.TacticInterval
	c.LowHealth = k.LowHealth
	c.SuppressedAt = k.SuppressedAt
	c.CoverSearch = k.CoverSearch
	c.FlankChance = k.FlankChance
	c.FlankOffset = k.FlankOffset
	c.AdvanceFactor = k.AdvanceFactor
	c.GrenadeCooldown = k.GrenadeCooldown
	c.GrenadeRange = k.GrenadeRange
	c.GrenadeChance = k.GrenadeChance
	c.DisengageAfter = k.DisengageAfter
	c.EyeHeight = t.Perception.EyeHeight
	return c
}

// SteeringConfig builds the path executor config.
func (t Tuning) SteeringConfig() steering.Config {
	c := steering.DefaultConfig()
	n := t.Navigation
	c.Speed = n.Speed
	c.WaypointRadius = n.WaypointRadius
	c.ArrivalRadius = n.ArrivalRadius
	c.AvoidanceRadius = n.AvoidanceRadius
	c.SeparationDistance = n.SeparationDistance
	c.StuckDuration = n.StuckDuration
	c.SlotSpacing = n.SlotSpacing
	return c
}

// AgentConfig bundles every component config for the file's difficulty.
func (t Tuning) AgentConfig() agent.Config {
	return agent.Config{
		Perception: t.PerceptionConfig(),
		Modifiers:  t.Modifiers(),
		Combat:     t.CombatConfig(t.Difficulty),
		Steering:   t.SteeringConfig(),
		TurnRate:   t.Agent.TurnRate * math.Pi / 180,
		ScanRate:   t.Agent.ScanRate * math.Pi / 180,
	}
}

// WorldWeapons converts the weapon presets, skipping unknown classes.
func (t Tuning) WorldWeapons() []world.Weapon {
	out := make([]world.Weapon, 0, len(t.Weapons))
	for _, w := range t.Weapons {
		class, ok := world.ParseWeaponClass(w.Class)
		if !ok {
			continue
		}
		out = append(out, world.Weapon{
			ID:              w.ID,
			Class:           class,
			MaxRange:        w.MaxRange,
			OptimalRange:    w.OptimalRange,
			EffectiveRange:  w.EffectiveRange,
			ProjectileSpeed: w.ProjectileSpeed,
			MaxSpread:       w.MaxSpread,
			Accuracy:        w.Accuracy,
			ReloadTime:      w.ReloadTime,
		})
	}
	return out
}

// Weapon finds one preset by id.
func (t Tuning) Weapon(id string) (world.Weapon, bool) {
	for _, w := range t.WorldWeapons() {
		if w.ID == id {
			return w, true
		}
	}
	return world.Weapon{}, false
}
