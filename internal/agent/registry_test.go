package agent

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/jobendik/laser-sub002/internal/perception"
	"github.com/jobendik/laser-sub002/internal/steering"
	"github.com/jobendik/laser-sub002/internal/world"
)

func TestAlertBroadcastReachesNearbyAllyNextTick(t *testing.T) {
	f := newFixture()
	spotter := f.agent(0, mgl64.Vec3{10, 50, 0}, mgl64.Vec3{1, 0, 0})
	// Faces away from the enemy and stands within broadcast range.
	ally := f.agent(0, mgl64.Vec3{10, 60, 0}, mgl64.Vec3{-1, 0, 0})
	far := f.agent(0, mgl64.Vec3{10, 110, 0}, mgl64.Vec3{-1, 0, 0})
	enemy := f.agent(1, mgl64.Vec3{30, 50, 0}, mgl64.Vec3{0, -1, 0})

	f.step(1)
	if spotter.Perception().AlertLevel() != perception.Combat {
		t.Fatalf("spotter should be in combat, got %s", spotter.Perception().AlertLevel())
	}
	if ally.Perception().AlertLevel() != perception.Unaware {
		t.Fatalf("broadcast should lag one tick")
	}

	f.step(1)
	if ally.Perception().AlertLevel() != perception.Suspicious {
		t.Fatalf("ally should be suspicious, got %s", ally.Perception().AlertLevel())
	}
	invs := ally.Perception().Investigations()
	if len(invs) != 1 || invs[0].Kind != perception.InvestigateAllyAlert {
		t.Fatalf("expected one ally-alert investigation, got %+v", invs)
	}
	if far.Perception().AlertLevel() != perception.Unaware {
		t.Fatalf("agent outside the broadcast radius should stay unaware")
	}
	if enemy.Perception().AlertLevel() == perception.Suspicious {
		t.Fatalf("alerts must not cross teams")
	}
}

func TestEngagingCountsTeammates(t *testing.T) {
	f := newFixture()
	a := f.agent(0, mgl64.Vec3{10, 50, 0}, mgl64.Vec3{1, 0, 0})
	b := f.agent(0, mgl64.Vec3{10, 54, 0}, mgl64.Vec3{1, 0, 0})
	enemy := f.body(1, mgl64.Vec3{30, 52, 0}, mgl64.Vec3{-1, 0, 0})

	f.step(2)

	if n := f.reg.Engaging(enemy, a.ID()); n != 1 {
		t.Fatalf("a should see one teammate engaging, got %d", n)
	}
	if n := f.reg.Engaging(enemy, b.ID()); n != 1 {
		t.Fatalf("b should see one teammate engaging, got %d", n)
	}
	if n := f.reg.Engaging(world.EntityID(999), a.ID()); n != 0 {
		t.Fatalf("unknown target should have no engagers, got %d", n)
	}
}

func TestFormationFollowsLeader(t *testing.T) {
	f := newFixture()
	leader := f.agent(0, mgl64.Vec3{20, 20, 0}, mgl64.Vec3{1, 0, 0})
	follower := f.agent(0, mgl64.Vec3{10, 10, 0}, mgl64.Vec3{1, 0, 0})
	if n := f.reg.FormGroup(leader.ID(), []world.EntityID{leader.ID(), follower.ID()}, steering.FormationLine); n != 1 {
		t.Fatalf("expected one follower to join, got %d", n)
	}

	f.step(60 * 6)

	st, ok := follower.Navigation().Formation()
	if !ok {
		t.Fatalf("follower lost its formation")
	}
	lp := f.arena.Pose(leader.ID())
	slot := steering.SlotPosition(lp.Position, lp.Forward, st.Offset)
	if d := f.arena.Pose(follower.ID()).Position.Sub(slot).Len(); d > 2 {
		t.Fatalf("follower is %.2f from its slot", d)
	}
}

func TestSeparationOnlyFromGroupMembers(t *testing.T) {
	f := newFixture()
	leader := f.agent(0, mgl64.Vec3{20, 20, 0}, mgl64.Vec3{1, 0, 0})
	follower := f.agent(0, mgl64.Vec3{18, 20, 0}, mgl64.Vec3{1, 0, 0})
	mate := f.agent(0, mgl64.Vec3{18, 21, 0}, mgl64.Vec3{1, 0, 0})
	outsider := f.agent(0, mgl64.Vec3{18, 19, 0}, mgl64.Vec3{1, 0, 0})
	f.reg.FormGroup(leader.ID(), []world.EntityID{follower.ID(), mate.ID()}, steering.FormationLine)

	st, _ := follower.Navigation().Formation()
	got := follower.separationNeighbors(f.arena.Pose(follower.ID()).Position)
	if len(got) != 1 || got[0] != f.arena.Pose(mate.ID()).Position {
		t.Fatalf("expected only the fellow follower within %.1fm, got %v", st.Separation, got)
	}
	for _, p := range got {
		if p == f.arena.Pose(outsider.ID()).Position {
			t.Fatal("a teammate outside the group must not push the follower")
		}
	}
	if n := outsider.separationNeighbors(f.arena.Pose(outsider.ID()).Position); n != nil {
		t.Fatalf("an agent outside any formation has no separation neighbours, got %v", n)
	}
}

func TestStaleLeaderClearsFormation(t *testing.T) {
	f := newFixture()
	leader := f.agent(0, mgl64.Vec3{20, 20, 0}, mgl64.Vec3{1, 0, 0})
	follower := f.agent(0, mgl64.Vec3{10, 10, 0}, mgl64.Vec3{1, 0, 0})
	f.reg.FormGroup(leader.ID(), []world.EntityID{follower.ID()}, steering.FormationWedge)
	f.step(10)

	f.arena.Damage(leader.ID(), world.NoEntity, 1)
	f.step(2)

	if _, ok := follower.Navigation().Formation(); ok {
		t.Fatalf("formation should clear once the leader is gone")
	}
	if len(f.reg.Group(leader.ID())) != 0 {
		t.Fatalf("registry still lists followers of a dead leader")
	}
}

func TestRegistryRemove(t *testing.T) {
	f := newFixture()
	leader := f.agent(0, mgl64.Vec3{20, 20, 0}, mgl64.Vec3{1, 0, 0})
	a := f.agent(0, mgl64.Vec3{10, 10, 0}, mgl64.Vec3{1, 0, 0})
	b := f.agent(0, mgl64.Vec3{12, 10, 0}, mgl64.Vec3{1, 0, 0})
	f.reg.FormGroup(leader.ID(), []world.EntityID{a.ID(), b.ID()}, steering.FormationColumn)

	f.reg.Remove(leader.ID())

	if f.reg.Len() != 2 {
		t.Fatalf("expected two agents left, got %d", f.reg.Len())
	}
	for _, ag := range []*Agent{a, b} {
		if _, ok := ag.Navigation().Formation(); ok {
			t.Fatalf("agent %d still in formation", ag.ID())
		}
	}
	if _, ok := f.reg.Agent(leader.ID()); ok {
		t.Fatalf("removed agent still registered")
	}
}
