package perception

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func listener() (*fakeWorld, *Engine) {
	w := newFakeWorld()
	w.add(0, 0, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0})
	return w, New(instantConfig(), NeutralModifiers(), 0, w)
}

func TestHearSound_ExplosionFromUnawareLandsOnCombat(t *testing.T) {
	_, e := listener()
	h, ok := e.HearSound(SoundEvent{Type: SoundExplosion, Position: mgl64.Vec3{30, 0, 0}, Source: 7}, 0)
	if !ok {
		t.Fatal("explosion at 30 units should be heard")
	}
	if h.Class != ThreatCritical {
		t.Fatalf("explosion class %s", h.Class)
	}
	if e.AlertLevel() != Combat {
		t.Fatalf("expected combat, got %s", e.AlertLevel())
	}
	rep := e.Update(0)
	if rep.Broadcast == nil || rep.Broadcast.Position != (mgl64.Vec3{30, 0, 0}) {
		t.Fatalf("expected broadcast at the explosion, got %+v", rep.Broadcast)
	}
	var changes int
	for _, ev := range rep.Events {
		if ev.Kind == EventAlertChanged {
			changes++
			if ev.Old != Unaware || ev.New != Combat {
				t.Fatalf("transition %s -> %s", ev.Old, ev.New)
			}
		}
	}
	if changes != 1 {
		t.Fatalf("expected a single jump, got %d changes", changes)
	}
}

func TestHearSound_ClassFloors(t *testing.T) {
	_, e := listener()
	e.HearSound(SoundEvent{Type: SoundFootstep, Position: mgl64.Vec3{5, 0, 0}, Source: 7}, 0)
	if e.AlertLevel() != Suspicious {
		t.Fatalf("footstep from unaware should give suspicious, got %s", e.AlertLevel())
	}
	e.HearSound(SoundEvent{Type: SoundGunshot, Position: mgl64.Vec3{20, 0, 0}, Source: 7}, 1)
	if e.AlertLevel() != Alert {
		t.Fatalf("gunshot should raise to alert, got %s", e.AlertLevel())
	}
	e.HearSound(SoundEvent{Type: SoundReload, Position: mgl64.Vec3{5, 0, 0}, Source: 7}, 2)
	if e.AlertLevel() != Alert {
		t.Fatal("a medium sound must never lower the alert level")
	}
}

func TestHearSound_RangeAndConfidence(t *testing.T) {
	_, e := listener()
	// Footstep range is 40 * 0.3 = 12.
	if _, ok := e.HearSound(SoundEvent{Type: SoundFootstep, Position: mgl64.Vec3{13, 0, 0}, Source: 7}, 0); ok {
		t.Fatal("footstep beyond its range should be ignored")
	}
	if e.AlertLevel() != Unaware {
		t.Fatal("ignored sounds must not escalate")
	}
	h, ok := e.HearSound(SoundEvent{Type: SoundFootstep, Position: mgl64.Vec3{6, 0, 0}, Source: 7}, 0)
	if !ok || h.Confidence < 0.49 || h.Confidence > 0.51 {
		t.Fatalf("confidence %.3f, want 0.5", h.Confidence)
	}
	if _, ok := e.HearSound(SoundEvent{Type: SoundGunshot, Source: 0}, 0); ok {
		t.Fatal("own sounds are ignored")
	}
}

func TestHearSound_InvestigationQueue(t *testing.T) {
	_, e := listener()
	e.HearSound(SoundEvent{Type: SoundFootstep, Position: mgl64.Vec3{2, 0, 0}, Source: 7, Investigate: true}, 0)
	e.HearSound(SoundEvent{Type: SoundExplosion, Position: mgl64.Vec3{3, 0, 0}, Source: 7, Investigate: true}, 0)
	e.HearSound(SoundEvent{Type: SoundGunshot, Position: mgl64.Vec3{4, 0, 0}, Source: 7, Investigate: false}, 0)
	// Low confidence: 75 of 80 units away.
	e.HearSound(SoundEvent{Type: SoundGunshot, Position: mgl64.Vec3{75, 0, 0}, Source: 7, Investigate: true}, 0)

	pts := e.Investigations()
	if len(pts) != 2 {
		t.Fatalf("expected 2 points, got %+v", pts)
	}
	if pts[0].Priority != 15 || pts[1].Priority != 3 {
		t.Fatalf("queue not sorted by priority: %+v", pts)
	}
	next, ok := e.NextInvestigation(1)
	if !ok || next.Kind != InvestigateExplosion {
		t.Fatalf("next investigation %+v", next)
	}
	e.MarkInvestigated(next.ID)
	if next, _ = e.NextInvestigation(1); next.Kind != InvestigateFootstep {
		t.Fatalf("after marking, next should be the footstep, got %s", next.Kind)
	}
	if _, ok := e.NextInvestigation(61); ok {
		t.Fatal("points should expire after 60s")
	}
}

func TestInvestigationQueue_CappedAtTen(t *testing.T) {
	_, e := listener()
	for i := 0; i < 12; i++ {
		e.AddInvestigation(mgl64.Vec3{float64(i), 0, 0}, InvestigateFootstep, 0)
	}
	e.AddInvestigation(mgl64.Vec3{99, 0, 0}, InvestigateExplosion, 0)
	pts := e.Investigations()
	if len(pts) != 10 {
		t.Fatalf("expected cap of 10, got %d", len(pts))
	}
	if pts[0].Kind != InvestigateExplosion {
		t.Fatal("highest priority should sort first")
	}
	if pts[1].Position[0] != 0 {
		t.Fatal("equal priorities should keep insertion order")
	}
}

func TestAlert_DeescalatesOneStepPerCooldown(t *testing.T) {
	_, e := listener()
	e.HearSound(SoundEvent{Type: SoundGunshot, Position: mgl64.Vec3{10, 0, 0}, Source: 7}, 0)
	if e.AlertLevel() != Alert {
		t.Fatalf("setup: expected alert, got %s", e.AlertLevel())
	}
	steps := []struct {
		now  float64
		want AlertLevel
	}{
		{10, Alert},
		{15.5, Suspicious},
		{20, Suspicious},
		{31, Unaware},
		{60, Unaware},
	}
	for _, s := range steps {
		e.Update(s.now)
		if e.AlertLevel() != s.want {
			t.Fatalf("t=%.1f: alert %s, want %s", s.now, e.AlertLevel(), s.want)
		}
	}
}

func TestAlert_NoDeescalationWhileSearching(t *testing.T) {
	_, e := listener()
	e.HearSound(SoundEvent{Type: SoundGunshot, Position: mgl64.Vec3{10, 0, 0}, Source: 7}, 0)
	e.StartSearch(mgl64.Vec3{10, 0, 0}, 0)
	e.Update(16)
	if e.AlertLevel() != Alert {
		t.Fatal("searching agents must not calm down")
	}
}

func TestReceiveAlert(t *testing.T) {
	_, e := listener()
	e.ReceiveAlert(AlertMessage{From: 3, Position: mgl64.Vec3{8, 8, 0}, Level: Combat, Cause: "sight"}, 0)
	if e.AlertLevel() != Suspicious {
		t.Fatalf("ally alert should raise to suspicious, got %s", e.AlertLevel())
	}
	rep := e.Update(0)
	if rep.Broadcast != nil {
		t.Fatal("receiving an alert must not re-broadcast")
	}
	pts := e.Investigations()
	if len(pts) != 1 || pts[0].Kind != InvestigateAllyAlert || pts[0].Priority != 12 {
		t.Fatalf("unexpected investigation queue %+v", pts)
	}
	e.ReceiveAlert(AlertMessage{From: 0, Position: mgl64.Vec3{1, 1, 0}}, 1)
	if len(e.Investigations()) != 1 {
		t.Fatal("own broadcasts are ignored")
	}
}

func TestCleanup_PurgesOldSounds(t *testing.T) {
	_, e := listener()
	e.HearSound(SoundEvent{Type: SoundFootstep, Position: mgl64.Vec3{2, 0, 0}, Source: 7}, 0)
	e.Update(5)
	if len(e.RecentSounds()) != 1 {
		t.Fatal("sound purged too early")
	}
	e.Update(11)
	if len(e.RecentSounds()) != 0 {
		t.Fatal("sounds older than 10s should be purged at cleanup")
	}
}
