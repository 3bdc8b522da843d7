package combat

import (
	"math"

	"github.com/jobendik/laser-sub002/internal/geom"
)

// AccuracyInput collects every factor of the hit-chance model.
type AccuracyInput struct {
	Base           float64 // difficulty baseline
	Distance       float64
	EffectiveRange float64
	Speed          float64 // shooter speed, units/s
	Suppression    float64 // 0-1
	Health         float64 // 0-1
	WeaponAccuracy float64 // 0 means unrated
	InCover        bool
}

// Accuracy is the product of independently clamped modifiers, clamped to
// [0,1]. NaN inputs collapse to the modifier's floor.
func Accuracy(in AccuracyInput) float64 {
	distance := 1.0
	switch {
	case in.EffectiveRange <= 0 || math.IsNaN(in.EffectiveRange):
		distance = 0.3
	case in.Distance > in.EffectiveRange:
		distance = geom.Clamp(in.EffectiveRange/in.Distance, 0.3, 1)
	}
	movement := geom.Clamp(1-in.Speed*0.1, 0.4, 1)
	suppression := geom.Clamp(1-in.Suppression*0.8, 0.2, 1)
	health := geom.Clamp(0.7+0.3*in.Health, 0.5, 1)
	weapon := 1.0
	if in.WeaponAccuracy != 0 {
		weapon = geom.Clamp(in.WeaponAccuracy, 0.1, 1.5)
	}
	stance := 1.0
	if in.InCover {
		stance = 1.2
	}
	return geom.Clamp01(in.Base * distance * movement * suppression * health * weapon * stance)
}
