package perception

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/jobendik/laser-sub002/internal/world"
)

// AlertLevel is an agent's escalating awareness.
type AlertLevel int

const (
	Unaware AlertLevel = iota
	Suspicious
	Alert
	Combat
)

func (a AlertLevel) String() string {
	switch a {
	case Unaware:
		return "unaware"
	case Suspicious:
		return "suspicious"
	case Alert:
		return "alert"
	case Combat:
		return "combat"
	default:
		return "unknown"
	}
}

// AlertMessage is what an agent shouts to nearby allies when it enters
// Alert or Combat.
type AlertMessage struct {
	From     world.EntityID
	Team     int        // sender team
	Origin   mgl64.Vec3 // where the sender stands
	Position mgl64.Vec3 // the stimulus that raised the alert
	Level    AlertLevel
	Cause    string
	Time     float64
}

// escalate raises the alert level. Lower or equal requests are ignored.
func (e *Engine) escalate(level AlertLevel, stimulus mgl64.Vec3, cause string, now float64) {
	if level <= e.alert {
		return
	}
	old := e.alert
	e.alert = level
	e.lastAlertChange = now
	e.emit(Event{Kind: EventAlertChanged, Target: NoTarget, Old: old, New: level, Point: stimulus, Cause: cause})
	if level >= Alert {
		e.broadcast = &AlertMessage{
			From:     e.self,
			Team:     e.sensors.Team(e.self),
			Origin:   e.sensors.Pose(e.self).Position,
			Position: stimulus,
			Level:    level,
			Cause:    cause,
			Time:     now,
		}
	}
}

// maybeDeescalate steps down one level once the cooldown has passed with no
// tracked target and no search running.
func (e *Engine) maybeDeescalate(now float64) {
	if e.alert == Unaware || len(e.records) > 0 || e.searching {
		return
	}
	if now-e.lastAlertChange <= e.cfg.AlertCooldown {
		return
	}
	old := e.alert
	e.alert--
	e.lastAlertChange = now
	e.emit(Event{Kind: EventAlertChanged, Target: NoTarget, Old: old, New: e.alert, Cause: "cooldown"})
}

// ReceiveAlert handles an ally's broadcast: raise to at least Suspicious and
// queue the reported position for investigation.
func (e *Engine) ReceiveAlert(msg AlertMessage, now float64) {
	if msg.From == e.self {
		return
	}
	e.escalate(Suspicious, msg.Position, "ally:"+msg.Cause, now)
	e.AddInvestigation(msg.Position, InvestigateAllyAlert, now)
}

// Raise escalates to at least level because of an outside stimulus, such as
// being shot.
func (e *Engine) Raise(level AlertLevel, stimulus mgl64.Vec3, cause string, now float64) {
	e.escalate(level, stimulus, cause, now)
}
