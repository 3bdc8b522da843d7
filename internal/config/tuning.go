// Package config loads agent tuning from YAML and maps it onto the
// component configs, with difficulty presets layered on top.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/jobendik/laser-sub002/internal/combat"
	"github.com/jobendik/laser-sub002/internal/perception"
	"github.com/jobendik/laser-sub002/internal/steering"
	"github.com/jobendik/laser-sub002/internal/world"
)

// Tuning is the whole tuning file.
type Tuning struct {
	Difficulty string     `yaml:"difficulty"`
	Perception Perception `yaml:"perception"`
	Combat     Combat     `yaml:"combat"`
	Navigation Navigation `yaml:"navigation"`
	Agent      Agent      `yaml:"agent"`
	Weapons    []Weapon   `yaml:"weapons"`
}

type Perception struct {
	SightRange         float64 `yaml:"sight_range"`
	SightAngle         float64 `yaml:"sight_angle"`
	HearingRange       float64 `yaml:"hearing_range"`
	EyeHeight          float64 `yaml:"eye_height"`
	TargetHeight       float64 `yaml:"target_height"`
	CoverLeakTolerance float64 `yaml:"cover_leak_tolerance"`
	UpdateInterval     float64 `yaml:"update_interval"`
	LostThreshold      int     `yaml:"lost_threshold"`
	MemoryDuration     float64 `yaml:"memory_duration"`
	SoundMemory        float64 `yaml:"sound_memory"`
	AlertCooldown      float64 `yaml:"alert_cooldown"`
	BroadcastRadius    float64 `yaml:"broadcast_radius"`
	SearchDuration     float64 `yaml:"search_duration"`
	InvestigationCap   int     `yaml:"investigation_cap"`
	InvestigationTTL   float64 `yaml:"investigation_ttl"`

	Lighting float64 `yaml:"lighting"`
	Weather  float64 `yaml:"weather"`
	Noise    float64 `yaml:"noise"`
}

type Combat struct {
	CloseRange      float64 `yaml:"close_range"`
	LongRange       float64 `yaml:"long_range"`
	TacticInterval  float64 `yaml:"tactic_interval"`
	LowHealth       float64 `yaml:"low_health"`
	SuppressedAt    float64 `yaml:"suppressed_at"`
	CoverSearch     float64 `yaml:"cover_search"`
	FlankChance     float64 `yaml:"flank_chance"`
	FlankOffset     float64 `yaml:"flank_offset"`
	AdvanceFactor   float64 `yaml:"advance_factor"`
	GrenadeCooldown float64 `yaml:"grenade_cooldown"`
	GrenadeRange    float64 `yaml:"grenade_range"`
	GrenadeChance   float64 `yaml:"grenade_chance"`
	DisengageAfter  float64 `yaml:"disengage_after"`
}

type Navigation struct {
	Speed              float64 `yaml:"speed"`
	WaypointRadius     float64 `yaml:"waypoint_radius"`
	ArrivalRadius      float64 `yaml:"arrival_radius"`
	AvoidanceRadius    float64 `yaml:"avoidance_radius"`
	SeparationDistance float64 `yaml:"separation_distance"`
	StuckDuration      float64 `yaml:"stuck_duration"`
	SlotSpacing        float64 `yaml:"slot_spacing"`
	LevelFile          string  `yaml:"level_file"` // optional navigation graph
}

type Agent struct {
	TurnRate float64 `yaml:"turn_rate"` // degrees per second
	ScanRate float64 `yaml:"scan_rate"` // degrees per second
}

// Weapon is one weapon preset in the tuning file.
type Weapon struct {
	ID              string  `yaml:"id"`
	Class           string  `yaml:"class"`
	MaxRange        float64 `yaml:"max_range"`
	OptimalRange    float64 `yaml:"optimal_range"`
	EffectiveRange  float64 `yaml:"effective_range"`
	ProjectileSpeed float64 `yaml:"projectile_speed"`
	MaxSpread       float64 `yaml:"max_spread"`
	Accuracy        float64 `yaml:"accuracy"`
	ReloadTime      float64 `yaml:"reload_time"`
}

// Default mirrors the stock component configs on normal difficulty.
func Default() Tuning {
	p := perception.DefaultConfig()
	c := combat.DefaultConfig()
	s := steering.DefaultConfig()
	return Tuning{
		Difficulty: "normal",
		Perception: Perception{
			SightRange:         p.SightRange,
			SightAngle:         p.SightAngle,
			HearingRange:       p.HearingRange,
			EyeHeight:          p.EyeHeight,
			TargetHeight:       p.TargetHeight,
			CoverLeakTolerance: p.CoverLeakTolerance,
			UpdateInterval:     p.UpdateInterval,
			LostThreshold:      p.LostThreshold,
			MemoryDuration:     p.MemoryDuration,
			SoundMemory:        p.SoundMemory,
			AlertCooldown:      p.AlertCooldown,
			BroadcastRadius:    p.BroadcastRadius,
			SearchDuration:     p.SearchDuration,
			InvestigationCap:   p.InvestigationCap,
			InvestigationTTL:   p.InvestigationTTL,
			Lighting:           1,
			Weather:            1,
			Noise:              1,
		},
		Combat: Combat{
			CloseRange:      c.CloseRange,
			LongRange:       c.LongRange,
			TacticInterval:  c.TacticInterval,
			LowHealth:       c.LowHealth,
			SuppressedAt:    c.SuppressedAt,
			CoverSearch:     c.CoverSearch,
			FlankChance:     c.FlankChance,
			FlankOffset:     c.FlankOffset,
			AdvanceFactor:   c.AdvanceFactor,
			GrenadeCooldown: c.GrenadeCooldown,
			GrenadeRange:    c.GrenadeRange,
			GrenadeChance:   c.GrenadeChance,
			DisengageAfter:  c.DisengageAfter,
		},
		Navigation: Navigation{
			Speed:              s.Speed,
			WaypointRadius:     s.WaypointRadius,
			ArrivalRadius:      s.ArrivalRadius,
			AvoidanceRadius:    s.AvoidanceRadius,
			SeparationDistance: s.SeparationDistance,
			StuckDuration:      s.StuckDuration,
			SlotSpacing:        s.SlotSpacing,
		},
		Agent:   Agent{TurnRate: 360, ScanRate: 90},
		Weapons: defaultWeapons(),
	}
}

func defaultWeapons() []Weapon {
	return []Weapon{
		{ID: "pistol", Class: "pistol", MaxRange: 40, OptimalRange: 10, EffectiveRange: 20, MaxSpread: 1.5, Accuracy: 0.9, ReloadTime: 1.5},
		{ID: "shotgun", Class: "shotgun", MaxRange: 25, OptimalRange: 6, EffectiveRange: 12, MaxSpread: 2, Accuracy: 0.8, ReloadTime: 2.5},
		{ID: "smg", Class: "smg", MaxRange: 50, OptimalRange: 12, EffectiveRange: 25, MaxSpread: 1.5, Accuracy: 0.85, ReloadTime: 2},
		{ID: "rifle", Class: "rifle", MaxRange: 80, OptimalRange: 30, EffectiveRange: 40, MaxSpread: 1, Accuracy: 1, ReloadTime: 2},
		{ID: "sniper", Class: "sniper", MaxRange: 150, OptimalRange: 60, EffectiveRange: 100, ProjectileSpeed: 800, MaxSpread: 0.5, Accuracy: 1.2, ReloadTime: 3},
	}
}

// Load reads a tuning file over Default. Fields missing from the file keep
// their default value.
func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, errors.Wrap(err, "read tuning")
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, errors.Wrapf(err, "parse tuning %s", path)
	}
	if err := t.Validate(); err != nil {
		return t, errors.Wrapf(err, "tuning %s", path)
	}
	return t, nil
}

// Validate reports every out-of-range value at once.
func (t Tuning) Validate() error {
	var problems []string
	bad := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}
	if _, ok := Preset(t.Difficulty); !ok {
		bad("unknown difficulty %q", t.Difficulty)
	}
	p := t.Perception
	if p.SightRange <= 0 {
		bad("perception.sight_range must be positive")
	}
	if p.SightAngle <= 0 || p.SightAngle > 360 {
		bad("perception.sight_angle must be in (0, 360]")
	}
	if p.UpdateInterval <= 0 {
		bad("perception.update_interval must be positive")
	}
	if p.LostThreshold < 0 {
		bad("perception.lost_threshold must not be negative")
	}
	if p.InvestigationCap <= 0 {
		bad("perception.investigation_cap must be positive")
	}
	c := t.Combat
	if c.CloseRange <= 0 || c.LongRange <= c.CloseRange {
		bad("combat ranges must satisfy 0 < close_range < long_range")
	}
	for name, v := range map[string]float64{
		"combat.low_health":     c.LowHealth,
		"combat.suppressed_at":  c.SuppressedAt,
		"combat.flank_chance":   c.FlankChance,
		"combat.grenade_chance": c.GrenadeChance,
	} {
		if v < 0 || v > 1 {
			bad("%s must be in [0, 1]", name)
		}
	}
	n := t.Navigation
	if n.Speed <= 0 {
		bad("navigation.speed must be positive")
	}
	if n.ArrivalRadius <= 0 || n.WaypointRadius <= 0 {
		bad("navigation radii must be positive")
	}
	seen := make(map[string]bool, len(t.Weapons))
	for i, w := range t.Weapons {
		if w.ID == "" {
			bad("weapons[%d] has no id", i)
		} else if seen[w.ID] {
			bad("weapons[%d] duplicates id %q", i, w.ID)
		}
		seen[w.ID] = true
		if _, ok := world.ParseWeaponClass(w.Class); !ok {
			bad("weapons[%d] has unknown class %q", i, w.Class)
		}
		if w.MaxRange <= 0 {
			bad("weapons[%d].max_range must be positive", i)
		}
	}
	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return errors.New(strings.Join(problems, "; "))
}
