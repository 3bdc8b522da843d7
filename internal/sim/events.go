package sim

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/jobendik/laser-sub002/internal/agent"
	"github.com/jobendik/laser-sub002/internal/arena"
	"github.com/jobendik/laser-sub002/internal/combat"
	"github.com/jobendik/laser-sub002/internal/geom"
	"github.com/jobendik/laser-sub002/internal/perception"
	"github.com/jobendik/laser-sub002/internal/world"
)

const (
	nearMissRadius   = 2.5  // shots passing this close suppress
	nearMissSuppress = 0.15 // suppression per near miss
	blastSuppress    = 0.4  // suppression inside twice a frag radius
)

// Stats are running tallies per team.
type Stats struct {
	Shots          [2]int
	Hits           [2]int
	Kills          [2]int
	Grenades       [2]int
	Notifications  int
	FirstContact   int // tick, -1 before any sighting
	FirstKill      int // tick, -1 before any kill
	StuckEvents    int
	PathsCompleted int
}

func (st *Stats) team(t int) int {
	if t < 0 || t > 1 {
		return 0
	}
	return t
}

// notificationKeys maps each notification to its SimLog category and key.
var notificationKeys = map[agent.NotificationKind][2]string{
	agent.TargetFound:       {"vision", "target_found"},
	agent.TargetLost:        {"vision", "target_lost"},
	agent.AlertLevelChanged: {"alert", "change"},
	agent.CombatEngaged:     {"combat", "engaged"},
	agent.CombatDisengaged:  {"combat", "disengaged"},
	agent.FireRequested:     {"combat", "fire"},
	agent.GrenadeRequested:  {"combat", "grenade"},
	agent.ReloadRequested:   {"combat", "reload"},
	agent.WeaponSwitched:    {"combat", "weapon_switch"},
	agent.MoveRequested:     {"move", "request"},
	agent.PathingComplete:   {"move", "complete"},
	agent.Stuck:             {"move", "stuck"},
	agent.SearchStarted:     {"search", "start"},
	agent.SearchEnded:       {"search", "end"},
}

// Notify implements agent.Listener: every notification lands in the SimLog,
// updates the tallies and is forwarded to extra listeners.
func (s *Sim) Notify(n agent.Notification) {
	s.stats.Notifications++
	keys, ok := notificationKeys[n.Kind]
	if !ok {
		keys = [2]string{"misc", n.Kind.String()}
	}
	label := s.Label(n.Agent)
	team := teamLabel(s.Arena.Team(n.Agent))
	var value string
	num := 0.0
	switch n.Kind {
	case agent.TargetFound:
		value = fmt.Sprintf("spotted %s at (%.0f,%.0f)", s.Label(n.Target), n.Point[0], n.Point[1])
		if s.stats.FirstContact < 0 {
			s.stats.FirstContact = s.tick
		}
	case agent.TargetLost:
		value = fmt.Sprintf("lost %s at (%.0f,%.0f)", s.Label(n.Target), n.Point[0], n.Point[1])
		if n.Reason != "" {
			value += " " + n.Reason
		}
	case agent.AlertLevelChanged:
		value = fmt.Sprintf("%s → %s (%s)", n.Old, n.New, n.Reason)
		num = float64(n.New)
	case agent.FireRequested:
		value = fmt.Sprintf("at %s (%.1f,%.1f)", s.Label(n.Target), n.Point[0], n.Point[1])
	case agent.Stuck:
		s.stats.StuckEvents++
		value = fmt.Sprintf("%s at (%.1f,%.1f)", n.Reason, n.Point[0], n.Point[1])
	case agent.PathingComplete:
		s.stats.PathsCompleted++
		value = fmt.Sprintf("%s at (%.1f,%.1f)", n.Reason, n.Point[0], n.Point[1])
	case agent.MoveRequested, agent.SearchStarted, agent.SearchEnded, agent.GrenadeRequested:
		value = fmt.Sprintf("%s (%.1f,%.1f)", n.Reason, n.Point[0], n.Point[1])
	default:
		value = n.Reason
		if n.Target != world.NoEntity {
			value = s.Label(n.Target) + " " + value
		}
	}
	s.SimLog.Add(s.tick, label, team, keys[0], keys[1], value, num)
	s.listeners.Notify(n)
}

// applyEvents turns this tick's arena events into what the agents sense.
func (s *Sim) applyEvents(now float64) {
	for _, ev := range s.Arena.DrainEvents() {
		srcTeam := s.stats.team(s.Arena.Team(ev.Source))
		switch ev.Kind {
		case arena.EventShot:
			s.stats.Shots[srcTeam]++
			s.broadcastSound(perception.SoundGunshot, ev.Position, ev.Source, now)
			s.suppressNearMisses(ev)
		case arena.EventHit:
			s.stats.Hits[srcTeam]++
			s.SimLog.Add(s.tick, s.Label(ev.Target), teamLabel(s.Arena.Team(ev.Target)), "damage", "hit",
				fmt.Sprintf("by %s", s.Label(ev.Source)), ev.Amount)
			if a, ok := s.Registry.Agent(ev.Target); ok {
				from := ev.Position
				if ev.Source != world.NoEntity {
					from = s.Arena.Pose(ev.Source).Position
				}
				a.ReportDamage(from, now)
			}
		case arena.EventKilled:
			s.stats.Kills[srcTeam]++
			if s.stats.FirstKill < 0 {
				s.stats.FirstKill = s.tick
			}
			s.SimLog.Add(s.tick, s.Label(ev.Target), teamLabel(s.Arena.Team(ev.Target)), "damage", "killed",
				fmt.Sprintf("by %s", s.Label(ev.Source)), 0)
		case arena.EventReloaded:
			s.broadcastSound(perception.SoundReload, ev.Position, ev.Source, now)
		case arena.EventGrenadeThrown:
			s.stats.Grenades[srcTeam]++
			s.SimLog.Add(s.tick, s.Label(ev.Source), teamLabel(s.Arena.Team(ev.Source)), "combat", "grenade_thrown",
				fmt.Sprintf("%s at (%.1f,%.1f)", ev.Grenade, ev.Position[0], ev.Position[1]), 0)
		case arena.EventDetonation:
			s.broadcastSound(perception.SoundExplosion, ev.Position, ev.Source, now)
			if ev.Grenade == world.GrenadeFrag {
				_, radius := combat.GrenadeProfile(ev.Grenade)
				for _, id := range s.Arena.Within(ev.Position, 2*radius) {
					if a, ok := s.Registry.Agent(id); ok {
						a.ReportSuppressed(blastSuppress)
					}
				}
			}
		}
	}
}

func (s *Sim) broadcastSound(kind perception.SoundType, at mgl64.Vec3, source world.EntityID, now float64) {
	ev := perception.SoundEvent{Type: kind, Position: geom.Flat(at), Source: source, Investigate: true}
	for _, a := range s.Registry.Agents() {
		if a.ID() == source || !s.Arena.Exists(a.ID()) {
			continue
		}
		a.HearSound(ev, now)
	}
}

// suppressNearMisses pins down every opponent of the shooter whose body
// the round passed close to.
func (s *Sim) suppressNearMisses(ev arena.Event) {
	team := s.Arena.Team(ev.Source)
	dir := geom.Normalize(geom.Flat(ev.Aim.Sub(ev.Position)))
	if dir.Len() == 0 {
		return
	}
	from := geom.Flat(ev.Position)
	for _, a := range s.Registry.Agents() {
		id := a.ID()
		if !s.Arena.Exists(id) || s.Arena.Team(id) == team {
			continue
		}
		p := geom.Flat(s.Arena.Pose(id).Position)
		along := p.Sub(from).Dot(dir)
		if along <= 0 {
			continue
		}
		closest := from.Add(dir.Mul(along))
		if closest.Sub(p).Len() <= nearMissRadius {
			a.ReportSuppressed(nearMissSuppress)
		}
	}
}

// Winner reports the surviving team once the other is wiped out.
func (s *Sim) Winner() (int, bool) {
	red, blue := s.Arena.Alive(TeamRed), s.Arena.Alive(TeamBlue)
	switch {
	case red > 0 && blue == 0:
		return TeamRed, true
	case blue > 0 && red == 0:
		return TeamBlue, true
	}
	return -1, false
}
