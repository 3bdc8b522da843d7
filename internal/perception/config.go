package perception

// Config holds the base sensing parameters of one agent.
type Config struct {
	SightRange         float64 // units
	SightAngle         float64 // degrees, full cone width
	HearingRange       float64 // units, before per-sound scaling
	EyeHeight          float64 // trace origin above the feet
	TargetHeight       float64 // trace end above the target's feet
	CoverLeakTolerance float64 // hit this close to the target still counts as seen

	UpdateInterval  float64 // seconds between perception ticks
	LostThreshold   int     // unseen perception ticks tolerated before dropping
	MemoryDuration  float64 // seconds a sighting is remembered
	SoundMemory     float64 // seconds a heard sound is remembered
	RecentWindow    float64 // seconds within which a sighting counts as recent
	CleanupInterval float64 // seconds between memory purges

	AlertCooldown   float64 // seconds before stepping down one alert level
	BroadcastRadius float64 // allies inside this hear an alert broadcast
	SearchDuration  float64 // seconds a search lasts without resolution

	InvestigationCap int     // max queued investigation points
	InvestigationTTL float64 // seconds before a point expires
}

// DefaultConfig returns the stock perception tuning.
func DefaultConfig() Config {
	return Config{
		SightRange:         50,
		SightAngle:         120,
		HearingRange:       40,
		EyeHeight:          1.6,
		TargetHeight:       1.2,
		CoverLeakTolerance: 0.5,

		UpdateInterval:  0.1,
		LostThreshold:   3,
		MemoryDuration:  30,
		SoundMemory:     10,
		RecentWindow:    5,
		CleanupInterval: 5,

		AlertCooldown:   15,
		BroadcastRadius: 25,
		SearchDuration:  20,

		InvestigationCap: 10,
		InvestigationTTL: 60,
	}
}

// Difficulty scales the senses per difficulty preset.
type Difficulty struct {
	Range   float64
	Angle   float64
	Hearing float64
}

// Environment scales the senses per ambient conditions. 1 is neutral.
type Environment struct {
	Lighting float64 // darkness < 1 < floodlit
	Weather  float64 // fog/rain < 1
	Noise    float64 // loud surroundings < 1
}

// Modifiers bundles every multiplier applied on top of Config.
type Modifiers struct {
	Difficulty  Difficulty
	Environment Environment
}

// NeutralModifiers leaves every base value unchanged.
func NeutralModifiers() Modifiers {
	return Modifiers{
		Difficulty:  Difficulty{Range: 1, Angle: 1, Hearing: 1},
		Environment: Environment{Lighting: 1, Weather: 1, Noise: 1},
	}
}

func (m Modifiers) sight() float64 {
	return m.Difficulty.Range * m.Environment.Lighting * m.Environment.Weather
}

func (m Modifiers) angle() float64 { return m.Difficulty.Angle }

func (m Modifiers) hearing() float64 {
	return m.Difficulty.Hearing * m.Environment.Noise
}
