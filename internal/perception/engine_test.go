package perception

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/jobendik/laser-sub002/internal/world"
)

func TestUpdate_FirstSightingCreatesRecordAndEscalates(t *testing.T) {
	w := newFakeWorld()
	w.add(0, 0, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0})
	w.add(1, 1, mgl64.Vec3{10, 0, 0}, mgl64.Vec3{-1, 0, 0})
	e := New(instantConfig(), NeutralModifiers(), 0, w)

	rep := e.Update(0)
	if !hasEvent(rep, EventTargetFound) {
		t.Fatal("expected a target found event")
	}
	if e.AlertLevel() != Combat {
		t.Fatalf("visible enemy should put the agent in combat, got %s", e.AlertLevel())
	}
	if rep.Broadcast == nil || rep.Broadcast.Level != Combat {
		t.Fatal("entering combat should broadcast")
	}
	if best, ok := e.BestTarget(); !ok || best != 1 {
		t.Fatalf("best target = %d, want 1", best)
	}
	rep = e.Update(0.1)
	if hasEvent(rep, EventTargetFound) {
		t.Fatal("refreshing a tracked target must not re-announce it")
	}
}

func TestUpdate_LostForFourTicksStartsSearch(t *testing.T) {
	w := newFakeWorld()
	w.add(0, 0, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0})
	tgt := w.add(1, 1, mgl64.Vec3{10, 0, 0}, mgl64.Vec3{-1, 0, 0})
	e := New(instantConfig(), NeutralModifiers(), 0, w)
	e.Update(0)

	lkp := tgt.pose.Position
	tgt.blocked = true
	tgt.pose.Position = mgl64.Vec3{12, 3, 0}

	for tick := 1; tick <= 3; tick++ {
		e.Update(float64(tick) * 0.1)
		r, ok := e.Record(1)
		if !ok {
			t.Fatalf("record dropped after only %d lost ticks", tick)
		}
		if r.TimesLost != tick || r.Visible {
			t.Fatalf("tick %d: timesLost=%d visible=%v", tick, r.TimesLost, r.Visible)
		}
	}
	if lk, ok := e.LastKnown(1); !ok || lk.Position != lkp {
		t.Fatalf("last known position %v, want %v", lk.Position, lkp)
	}

	rep := e.Update(0.4)
	if _, ok := e.Record(1); ok {
		t.Fatal("record should be removed on the fourth lost tick")
	}
	if !hasEvent(rep, EventTargetLost) || !hasEvent(rep, EventSearchStarted) {
		t.Fatalf("expected lost and search events, got %+v", rep.Events)
	}
	at, searching := e.Searching()
	if !searching || at != lkp {
		t.Fatalf("searching=%v at %v, want true at %v", searching, at, lkp)
	}
}

func TestUpdate_ReacquireResetsLostCount(t *testing.T) {
	w := newFakeWorld()
	w.add(0, 0, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0})
	tgt := w.add(1, 1, mgl64.Vec3{10, 0, 0}, mgl64.Vec3{-1, 0, 0})
	e := New(instantConfig(), NeutralModifiers(), 0, w)
	e.Update(0)
	tgt.blocked = true
	e.Update(0.1)
	e.Update(0.2)
	tgt.blocked = false
	e.Update(0.3)
	r, _ := e.Record(1)
	if r.TimesLost != 0 || !r.Visible {
		t.Fatalf("reacquired target: timesLost=%d visible=%v", r.TimesLost, r.Visible)
	}
	if _, ok := e.LastKnown(1); ok {
		t.Fatal("last known position should clear on reacquisition")
	}
}

func TestUpdate_RemovedEntityDroppedWithoutSearch(t *testing.T) {
	w := newFakeWorld()
	w.add(0, 0, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0})
	tgt := w.add(1, 1, mgl64.Vec3{10, 0, 0}, mgl64.Vec3{-1, 0, 0})
	e := New(instantConfig(), NeutralModifiers(), 0, w)
	e.Update(0)
	tgt.gone = true
	rep := e.Update(0.1)

	var lost *Event
	for i := range rep.Events {
		if rep.Events[i].Kind == EventTargetLost {
			lost = &rep.Events[i]
		}
	}
	if lost == nil || !lost.Stale {
		t.Fatalf("expected a stale lost event, got %+v", rep.Events)
	}
	if _, searching := e.Searching(); searching {
		t.Fatal("a removed entity must not trigger a search")
	}
	if _, ok := e.BestTarget(); ok {
		t.Fatal("no target should remain")
	}
}

func TestUpdate_TiesFavourFirstSeen(t *testing.T) {
	w := newFakeWorld()
	w.add(0, 0, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0})
	w.add(1, 1, mgl64.Vec3{10, 2, 0}, mgl64.Vec3{-1, 0, 0})
	w.add(2, 1, mgl64.Vec3{10, -2, 0}, mgl64.Vec3{-1, 0, 0})
	e := New(instantConfig(), NeutralModifiers(), 0, w)
	e.Update(0)
	if best, _ := e.BestTarget(); best != 1 {
		t.Fatalf("equal threats should resolve to the first seen, got %d", best)
	}
	if got := e.VisibleTargets(); len(got) != 2 {
		t.Fatalf("expected both targets visible, got %v", got)
	}
}

func TestUpdate_HigherThreatWins(t *testing.T) {
	w := newFakeWorld()
	w.add(0, 0, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0})
	w.add(1, 1, mgl64.Vec3{30, 0, 0}, mgl64.Vec3{-1, 0, 0})
	sniper := w.add(2, 1, mgl64.Vec3{30, 2, 0}, mgl64.Vec3{-1, 0, 0})
	sniper.weapon.Class = world.WeaponSniper
	e := New(instantConfig(), NeutralModifiers(), 0, w)
	e.Update(0)
	if best, _ := e.BestTarget(); best != 2 {
		t.Fatalf("sniper should be the best target, got %d", best)
	}
}

func TestUpdate_RespectsPerceptionInterval(t *testing.T) {
	w := newFakeWorld()
	w.add(0, 0, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0})
	e := New(DefaultConfig(), NeutralModifiers(), 0, w)
	e.Update(0)
	w.add(1, 1, mgl64.Vec3{10, 0, 0}, mgl64.Vec3{-1, 0, 0})
	if rep := e.Update(1.0 / 60); hasEvent(rep, EventTargetFound) {
		t.Fatal("perception ran before its interval elapsed")
	}
	if rep := e.Update(0.1); !hasEvent(rep, EventTargetFound) {
		t.Fatal("perception should run once the interval has elapsed")
	}
}

func TestSearch_TimesOut(t *testing.T) {
	w := newFakeWorld()
	w.add(0, 0, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0})
	e := New(instantConfig(), NeutralModifiers(), 0, w)
	e.StartSearch(mgl64.Vec3{5, 5, 0}, 0)
	e.Update(10)
	if _, s := e.Searching(); !s {
		t.Fatal("search ended early")
	}
	rep := e.Update(20.5)
	if _, s := e.Searching(); s || !hasEvent(rep, EventSearchEnded) {
		t.Fatal("search should time out after its duration")
	}
}

func TestUpdate_RecordExpiresAfterMemoryDuration(t *testing.T) {
	w := newFakeWorld()
	w.add(0, 0, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0})
	tgt := w.add(1, 1, mgl64.Vec3{10, 0, 0}, mgl64.Vec3{-1, 0, 0})
	cfg := instantConfig()
	e := New(cfg, NeutralModifiers(), 0, w)
	e.Update(0)

	// One lost tick only, but it comes after the memory has run out.
	tgt.blocked = true
	rep := e.Update(cfg.MemoryDuration + 1)
	if _, ok := e.Record(1); ok {
		t.Fatal("record older than the memory duration should be dropped")
	}
	if !hasEvent(rep, EventTargetLost) {
		t.Fatalf("expected a target lost event, got %+v", rep.Events)
	}
}

func TestCleanup_PurgesOldSightings(t *testing.T) {
	w := newFakeWorld()
	w.add(0, 0, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0})
	tgt := w.add(1, 1, mgl64.Vec3{10, 0, 0}, mgl64.Vec3{-1, 0, 0})
	cfg := instantConfig()
	e := New(cfg, NeutralModifiers(), 0, w)
	e.Update(0)

	tgt.blocked = true
	for tick := 1; tick <= 4; tick++ {
		e.Update(float64(tick) * 0.1)
	}
	if _, ok := e.Record(1); ok {
		t.Fatal("record should be gone after four lost ticks")
	}

	e.Update(cfg.MemoryDuration - 1)
	lk, ok := e.LastKnown(1)
	if !ok {
		t.Fatal("sighting memory purged too early")
	}
	if lk.Confidence <= 0 || lk.Confidence >= 1 {
		t.Fatalf("confidence %.3f should have faded but not vanished", lk.Confidence)
	}

	e.Update(cfg.MemoryDuration + cfg.CleanupInterval)
	if _, ok := e.LastKnown(1); ok {
		t.Fatal("sighting memory older than the memory duration should be purged")
	}
}
