package combat

import "github.com/jobendik/laser-sub002/internal/world"

// Config tunes combat cognition for one agent.
type Config struct {
	BaseAccuracy float64 // difficulty baseline, 0-1
	MaxBurst     int     // rounds per burst

	CloseRange  float64 // below this is the close bracket
	LongRange   float64 // above this is the long bracket
	Preferences [bracketCount][]world.WeaponClass

	TacticInterval   float64 // seconds between tactic evaluations
	LowHealth        float64 // below this ratio the agent wants cover
	SuppressedAt     float64 // suppression above this wants cover
	RecentDamage     float64 // seconds a hit counts as recent
	CoverSearch      float64 // max distance to look for cover
	InCoverRadius    float64 // within this of a cover point counts as in cover
	LeaveCoverRadius float64 // further than this from the cover point clears it

	FlankChance  float64
	FlankOffset  float64
	FlankTimeout float64

	AdvanceFactor   float64 // advance beyond this multiple of optimal range
	AdvanceFraction float64 // share of the distance covered per advance
	AdvanceTimeout  float64

	GrenadeCooldown float64
	GrenadeRange    float64
	GrenadeChance   float64
	FlashRange      float64 // flashbangs are preferred inside this

	SuppressionDecay float64 // per second
	DamageSuppress   float64 // suppression added by a hit
	DisengageAfter   float64 // seconds without a target before disengaging
	VerticalSpread   float64 // share of spread kept on the vertical axis
	EyeHeight        float64
	AimHeight        float64 // aim point above the target's feet
}

// DefaultConfig returns the "normal" difficulty tuning.
func DefaultConfig() Config {
	return Config{
		BaseAccuracy: 0.7,
		MaxBurst:     3,

		CloseRange:  15,
		LongRange:   50,
		Preferences: DefaultPreferences(),

		TacticInterval:   1,
		LowHealth:        0.5,
		SuppressedAt:     0.5,
		RecentDamage:     2,
		CoverSearch:      20,
		InCoverRadius:    1.5,
		LeaveCoverRadius: 3,

		FlankChance:  0.3,
		FlankOffset:  10,
		FlankTimeout: 10,

		AdvanceFactor:   1.5,
		AdvanceFraction: 0.3,
		AdvanceTimeout:  8,

		GrenadeCooldown: 15,
		GrenadeRange:    30,
		GrenadeChance:   0.3,
		FlashRange:      12,

		SuppressionDecay: 0.2,
		DamageSuppress:   0.2,
		DisengageAfter:   3,
		VerticalSpread:   0.5,
		EyeHeight:        1.6,
		AimHeight:        1.2,
	}
}

// BurstCooldown is the pause after a burst. Bigger bursts rest longer.
func (c Config) BurstCooldown() float64 {
	return 0.4 + 0.2*float64(c.MaxBurst)
}
