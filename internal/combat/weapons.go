package combat

import "github.com/jobendik/laser-sub002/internal/world"

// RangeBracket buckets engagement distance.
type RangeBracket int

const (
	BracketClose RangeBracket = iota
	BracketMedium
	BracketLong
	bracketCount
)

func (b RangeBracket) String() string {
	switch b {
	case BracketClose:
		return "close"
	case BracketMedium:
		return "medium"
	case BracketLong:
		return "long"
	default:
		return "unknown"
	}
}

// DefaultPreferences lists weapon classes per bracket, best first.
func DefaultPreferences() [bracketCount][]world.WeaponClass {
	return [bracketCount][]world.WeaponClass{
		BracketClose:  {world.WeaponShotgun, world.WeaponSMG, world.WeaponPistol, world.WeaponRifle, world.WeaponMelee},
		BracketMedium: {world.WeaponRifle, world.WeaponSMG, world.WeaponSniper, world.WeaponPistol, world.WeaponShotgun},
		BracketLong:   {world.WeaponSniper, world.WeaponRifle, world.WeaponSMG, world.WeaponPistol},
	}
}

// BracketFor buckets a distance.
func (c Config) BracketFor(d float64) RangeBracket {
	switch {
	case d < c.CloseRange:
		return BracketClose
	case d > c.LongRange:
		return BracketLong
	default:
		return BracketMedium
	}
}

// PickWeapon scans the bracket's preference list and returns the first
// carried weapon of that class. Among weapons of the same class the one
// listed first in the inventory wins.
func (c Config) PickWeapon(available []world.Weapon, b RangeBracket) (world.Weapon, bool) {
	if b < 0 || b >= bracketCount {
		return world.Weapon{}, false
	}
	for _, class := range c.Preferences[b] {
		for _, w := range available {
			if w.Class == class {
				return w, true
			}
		}
	}
	return world.Weapon{}, false
}
