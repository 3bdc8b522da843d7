package combat

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/jobendik/laser-sub002/internal/world"
)

func TestScoreTarget(t *testing.T) {
	self := mgl64.Vec3{}
	base := TargetView{Position: mgl64.Vec3{20, 0, 0}, Forward: mgl64.Vec3{0, 1, 0}, Health: 1}
	if got := ScoreTarget(self, base); got != 90 {
		t.Fatalf("base score %.1f, want 90", got)
	}
	hurt := base
	hurt.Health = 0.5
	if got := ScoreTarget(self, hurt); got != 105 {
		t.Fatalf("wounded score %.1f, want 105", got)
	}
	watching := base
	watching.CanSeeUs = true
	if got := ScoreTarget(self, watching); got != 110 {
		t.Fatalf("watching score %.1f, want 110", got)
	}
	aiming := base
	aiming.Forward = mgl64.Vec3{-1, 0, 0}
	if got := ScoreTarget(self, aiming); got != 120 {
		t.Fatalf("aiming score %.1f, want 120", got)
	}
	// 45 degrees off is outside the facing cone.
	wide := base
	wide.Forward = mgl64.Vec3{-1, 1, 0}
	if got := ScoreTarget(self, wide); got != 90 {
		t.Fatalf("off-axis score %.1f, want 90", got)
	}
}

func TestSelectTarget_PrefersThreatFacingUs(t *testing.T) {
	w, e := duel(20)
	// Target 2 is further but aiming straight at us.
	w.add(2, mgl64.Vec3{30, 0, 0}, mgl64.Vec3{-1, 0, 0})
	d := e.Update(dt, []world.EntityID{1, 2})
	if d.Target != 2 {
		t.Fatalf("expected target 2, got %d", d.Target)
	}
}

func TestSelectTarget_TieKeepsFirst(t *testing.T) {
	w, e := duel(20)
	w.add(2, mgl64.Vec3{0, 20, 0}, mgl64.Vec3{1, 0, 0})
	if d := e.Update(dt, []world.EntityID{1, 2}); d.Target != 1 {
		t.Fatalf("tie should keep the first visible, got %d", d.Target)
	}
}

func TestPickWeapon_ByBracket(t *testing.T) {
	cfg := DefaultConfig()
	inv := []world.Weapon{
		{ID: "pistol", Class: world.WeaponPistol},
		{ID: "smg", Class: world.WeaponSMG},
		{ID: "dmr", Class: world.WeaponSniper},
		{ID: "smg2", Class: world.WeaponSMG},
	}
	cases := []struct {
		dist float64
		want string
	}{
		{5, "smg"},
		{30, "smg"},
		{70, "dmr"},
	}
	for _, tc := range cases {
		w, ok := cfg.PickWeapon(inv, cfg.BracketFor(tc.dist))
		if !ok || w.ID != tc.want {
			t.Errorf("dist %.0f: picked %q, want %q", tc.dist, w.ID, tc.want)
		}
	}
	if _, ok := cfg.PickWeapon(nil, BracketClose); ok {
		t.Fatal("empty inventory has nothing to pick")
	}
}

func TestUpdate_SwitchesWeaponOnNewTarget(t *testing.T) {
	w, e := duel(8)
	w.chars[0].weapons = append(w.chars[0].weapons, world.Weapon{ID: "shotgun", Class: world.WeaponShotgun, MaxRange: 20, EffectiveRange: 10, Accuracy: 1})
	d := e.Update(dt, []world.EntityID{1})
	if d.Switched != "shotgun" || len(w.switches) != 1 {
		t.Fatalf("expected a switch to the shotgun, got %q", d.Switched)
	}
	if d := e.Update(2*dt, []world.EntityID{1}); d.Switched != "" {
		t.Fatal("no switch expected while the bracket holds")
	}
}
