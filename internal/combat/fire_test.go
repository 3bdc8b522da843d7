package combat

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"pgregory.net/rapid"

	"github.com/jobendik/laser-sub002/internal/world"
)

func TestBurst_ThreeRoundsThenCooldown(t *testing.T) {
	w, e := duel(20)
	visible := []world.EntityID{1}

	now := 0.0
	for i := 1; i <= 3; i++ {
		now += dt
		d := e.Update(now, visible)
		if !d.Fire {
			t.Fatalf("round %d not fired", i)
		}
	}
	if st, n := e.FireState(); st != FireCooldown || n != 0 {
		t.Fatalf("after a full burst: state=%s count=%d, want cooldown/0", st, n)
	}

	cooldown := e.Config().BurstCooldown()
	lastShot := now
	for now+dt-lastShot <= cooldown {
		now += dt
		if d := e.Update(now, visible); d.Fire {
			t.Fatalf("fired during cooldown at +%.3fs", now-lastShot)
		}
	}
	now += dt
	if d := e.Update(now, visible); !d.Fire {
		t.Fatal("a new burst should open after the cooldown")
	}
	if len(w.shots) != 4 {
		t.Fatalf("expected 4 rounds in total, got %d", len(w.shots))
	}
}

func TestBurst_CooldownHoldsAcrossTargetChange(t *testing.T) {
	w, e := duel(20)
	w.add(2, mgl64.Vec3{20, 5, 0}, mgl64.Vec3{0, 1, 0})

	now := 0.0
	for i := 0; i < 3; i++ {
		now += dt
		e.Update(now, []world.EntityID{1})
	}
	lastShot := now
	cooldown := e.Config().BurstCooldown()

	now += dt
	d := e.Update(now, []world.EntityID{2})
	if !d.TargetChanged || d.Target != 2 {
		t.Fatalf("expected a switch to 2, got %+v", d)
	}
	if d.Fire {
		t.Fatalf("opened a burst on the new target %.3fs after the last round", now-lastShot)
	}
	for now+dt-lastShot <= cooldown {
		now += dt
		if d := e.Update(now, []world.EntityID{2}); d.Fire {
			t.Fatalf("fired during cooldown at +%.3fs", now-lastShot)
		}
	}
	now += dt
	if d := e.Update(now, []world.EntityID{2}); !d.Fire {
		t.Fatal("expected the new target to be engaged once the cooldown ran out")
	}
}

func TestBurst_CooldownHoldsAcrossReengage(t *testing.T) {
	_, e := duel(20)
	now := 0.0
	for i := 0; i < 3; i++ {
		now += dt
		e.Update(now, []world.EntityID{1})
	}
	lastShot := now
	e.Disengage()

	now += dt
	if d := e.Update(now, []world.EntityID{1}); !d.Engaged || d.Fire {
		t.Fatalf("expected re-engagement without firing, got %+v", d)
	}
	now = lastShot + e.Config().BurstCooldown() + dt
	if d := e.Update(now, []world.EntityID{1}); !d.Fire {
		t.Fatal("expected a burst after the cooldown")
	}
}

func TestBurst_ZeroAccuracyNeverFires(t *testing.T) {
	f := newFireControl()
	rng := rand.New(rand.NewSource(3)) // #nosec G404 -- deterministic test seed
	for i := 0; i < 600; i++ {
		if f.step(float64(i)*dt, 0, 1, 3, rng) {
			t.Fatal("the gate must never open at zero accuracy")
		}
	}
}

func TestBurst_NeverExceedsMaxWithoutCooldown(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		acc := rapid.Float64Range(0, 1).Draw(t, "accuracy")
		maxBurst := rapid.IntRange(1, 6).Draw(t, "maxBurst")
		seed := rapid.Int64().Draw(t, "seed")
		rng := rand.New(rand.NewSource(seed)) // #nosec G404 -- deterministic test seed
		cooldown := 0.4 + 0.2*float64(maxBurst)

		f := newFireControl()
		run := 0
		lastShot := -1e9
		for i := 0; i < 2000; i++ {
			now := float64(i) * dt
			if f.step(now, acc, cooldown, maxBurst, rng) {
				if run == 0 && now-lastShot <= cooldown {
					t.Fatalf("burst opened %.3fs after the previous one", now-lastShot)
				}
				run++
				lastShot = now
				if run > maxBurst {
					t.Fatalf("fired %d rounds in one burst, max %d", run, maxBurst)
				}
			} else if f.state != FireBurst {
				run = 0
			}
		}
	})
}

func TestFire_ReloadsWhenEmpty(t *testing.T) {
	w, e := duel(20)
	w.chars[0].ammo = 0
	d := e.Update(dt, []world.EntityID{1})
	if !d.Reload || d.Fire || w.reloads != 1 {
		t.Fatalf("expected a reload request, got %+v reloads=%d", d, w.reloads)
	}
	if !e.Reloading(dt + 1) {
		t.Fatal("reload should take the weapon's reload time")
	}
	for now := 2 * dt; now < dt+2; now += dt {
		if d := e.Update(now, []world.EntityID{1}); d.Fire {
			t.Fatalf("fired mid-reload at %.2fs", now)
		}
	}
	if d := e.Update(dt+2.01, []world.EntityID{1}); !d.Fire {
		t.Fatal("should fire once the reload completes")
	}
}

func TestFire_NeedsLineOfSightAndRange(t *testing.T) {
	w, e := duel(20)
	w.walled = true
	if d := e.Update(dt, []world.EntityID{1}); d.Fire {
		t.Fatal("fired through a wall")
	}

	_, far := duel(100)
	if d := far.Update(dt, []world.EntityID{1}); d.Fire {
		t.Fatal("fired beyond the weapon's max range")
	}
}

func TestDisengage_AfterThreeSeconds(t *testing.T) {
	_, e := duel(20)
	d := e.Update(dt, []world.EntityID{1})
	if !d.Engaged || d.Target != 1 {
		t.Fatalf("expected engagement with 1, got %+v", d)
	}
	if d := e.Update(2, nil); d.Disengaged {
		t.Fatal("disengaged too early")
	}
	d = e.Update(3.1, nil)
	if !d.Disengaged || d.Target != 1 {
		t.Fatalf("expected disengage from 1, got %+v", d)
	}
	if _, engaged := e.Target(); engaged {
		t.Fatal("target reference should be cleared")
	}
	if st, n := e.FireState(); st != FireIdle || n != 0 {
		t.Fatal("burst state should be cleared on disengage")
	}
}

func TestSuppression_DecaysLinearly(t *testing.T) {
	_, e := duel(20)
	e.Update(0, nil)
	e.ReportSuppressed(1)
	e.Update(2.5, nil)
	if s := e.Suppression(); s < 0.49 || s > 0.51 {
		t.Fatalf("suppression %.3f, want 0.5", s)
	}
	e.Update(10, nil)
	if e.Suppression() != 0 {
		t.Fatal("suppression should floor at 0")
	}
}
