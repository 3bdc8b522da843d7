package world

// WeaponClass groups weapons by how they are used.
type WeaponClass int

const (
	WeaponMelee WeaponClass = iota
	WeaponPistol
	WeaponShotgun
	WeaponSMG
	WeaponRifle
	WeaponSniper
)

func (c WeaponClass) String() string {
	switch c {
	case WeaponMelee:
		return "melee"
	case WeaponPistol:
		return "pistol"
	case WeaponShotgun:
		return "shotgun"
	case WeaponSMG:
		return "smg"
	case WeaponRifle:
		return "rifle"
	case WeaponSniper:
		return "sniper"
	default:
		return "unknown"
	}
}

// ParseWeaponClass maps a config name back to a class.
func ParseWeaponClass(s string) (WeaponClass, bool) {
	for c := WeaponMelee; c <= WeaponSniper; c++ {
		if c.String() == s {
			return c, true
		}
	}
	return WeaponMelee, false
}

// Weapon describes one weapon an entity carries.
type Weapon struct {
	ID              string
	Class           WeaponClass
	MaxRange        float64 // beyond this the weapon cannot fire
	OptimalRange    float64 // preferred engagement distance
	EffectiveRange  float64 // accuracy falls off past this
	ProjectileSpeed float64 // units/s, 0 = hitscan
	MaxSpread       float64 // aim perturbation at zero accuracy
	Accuracy        float64 // weapon accuracy multiplier
	ReloadTime      float64 // seconds
}

// GrenadeKind is a throwable type.
type GrenadeKind int

const (
	GrenadeFrag GrenadeKind = iota
	GrenadeSmoke
	GrenadeFlash
)

func (k GrenadeKind) String() string {
	switch k {
	case GrenadeFrag:
		return "frag"
	case GrenadeSmoke:
		return "smoke"
	case GrenadeFlash:
		return "flash"
	default:
		return "unknown"
	}
}
