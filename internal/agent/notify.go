package agent

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/jobendik/laser-sub002/internal/perception"
	"github.com/jobendik/laser-sub002/internal/world"
)

// NotificationKind enumerates the intents and state changes an agent
// reports to the rest of the game.
type NotificationKind int

const (
	TargetFound NotificationKind = iota
	TargetLost
	AlertLevelChanged
	CombatEngaged
	CombatDisengaged
	PathingComplete
	FireRequested
	MoveRequested
	GrenadeRequested
	ReloadRequested
	WeaponSwitched
	SearchStarted
	SearchEnded
	Stuck
)

func (k NotificationKind) String() string {
	switch k {
	case TargetFound:
		return "target_found"
	case TargetLost:
		return "target_lost"
	case AlertLevelChanged:
		return "alert_changed"
	case CombatEngaged:
		return "combat_engaged"
	case CombatDisengaged:
		return "combat_disengaged"
	case PathingComplete:
		return "pathing_complete"
	case FireRequested:
		return "fire"
	case MoveRequested:
		return "move"
	case GrenadeRequested:
		return "grenade"
	case ReloadRequested:
		return "reload"
	case WeaponSwitched:
		return "weapon_switch"
	case SearchStarted:
		return "search_started"
	case SearchEnded:
		return "search_ended"
	case Stuck:
		return "stuck"
	default:
		return "unknown"
	}
}

// Notification is one event emitted by an agent.
type Notification struct {
	Kind   NotificationKind
	Agent  world.EntityID
	Target world.EntityID
	Old    perception.AlertLevel
	New    perception.AlertLevel
	Point  mgl64.Vec3
	Reason string
	Time   float64
}

// Listener receives agent notifications.
type Listener interface {
	Notify(n Notification)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(n Notification)

// Notify implements Listener.
func (f ListenerFunc) Notify(n Notification) { f(n) }

// Listeners fans one notification out to several listeners in order.
type Listeners []Listener

// Notify implements Listener.
func (ls Listeners) Notify(n Notification) {
	for _, l := range ls {
		if l != nil {
			l.Notify(n)
		}
	}
}
