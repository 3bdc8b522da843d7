package perception

import (
	"math"
	"testing"

	"pgregory.net/rapid"

	"github.com/jobendik/laser-sub002/internal/world"
)

func TestThreatScore_Formula(t *testing.T) {
	got := ThreatScore(ThreatInput{
		Distance:   25,
		SightRange: 50,
		Health:     1,
		Weapon:     world.WeaponRifle,
		Visible:    true,
		SinceSeen:  0,
		Recent:     5,
	})
	want := 0.5 * 1.0 * 1.5 * 1.5 * 1.3
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("threat %.4f, want %.4f", got, want)
	}
	far := ThreatScore(ThreatInput{Distance: 500, SightRange: 50, Health: 0, Weapon: world.WeaponMelee, SinceSeen: 10, Recent: 5})
	if want := 0.1 * 0.5 * 0.8; math.Abs(far-want) > 1e-9 {
		t.Fatalf("floor threat %.4f, want %.4f", far, want)
	}
}

func TestThreatScore_CloserIsNeverLess(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := ThreatInput{
			SightRange: rapid.Float64Range(1, 200).Draw(t, "range"),
			Health:     rapid.Float64Range(0, 1).Draw(t, "health"),
			Weapon:     world.WeaponClass(rapid.IntRange(0, int(world.WeaponSniper)).Draw(t, "weapon")),
			Visible:    rapid.Bool().Draw(t, "visible"),
			SinceSeen:  rapid.Float64Range(0, 30).Draw(t, "since"),
			Recent:     5,
		}
		far := rapid.Float64Range(0, 300).Draw(t, "far")
		near := rapid.Float64Range(0, far).Draw(t, "near")
		in.Distance = far
		a := ThreatScore(in)
		in.Distance = near
		b := ThreatScore(in)
		if b < a {
			t.Fatalf("closer target scored %.5f < %.5f", b, a)
		}
	})
}
