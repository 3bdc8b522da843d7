package sim

import (
	"github.com/charmbracelet/log"

	"github.com/jobendik/laser-sub002/internal/agent"
	"github.com/jobendik/laser-sub002/internal/world"
)

// LogSink writes notifications to a charmbracelet logger at debug level,
// labelled the way the SimLog labels agents.
type LogSink struct {
	logger *log.Logger
	sim    *Sim
}

// NewLogSink returns a sink on logger. sim may be nil, in which case raw
// entity ids are logged.
func NewLogSink(logger *log.Logger, sim *Sim) *LogSink {
	return &LogSink{logger: logger, sim: sim}
}

// Notify implements agent.Listener.
func (l *LogSink) Notify(n agent.Notification) {
	kv := []any{"t", n.Time, "agent", l.label(n.Agent)}
	switch n.Kind {
	case agent.AlertLevelChanged:
		kv = append(kv, "from", n.Old.String(), "to", n.New.String())
	case agent.MoveRequested, agent.PathingComplete, agent.Stuck, agent.SearchStarted, agent.SearchEnded, agent.GrenadeRequested:
		kv = append(kv, "x", n.Point[0], "y", n.Point[1])
	default:
		kv = append(kv, "target", l.label(n.Target))
	}
	if n.Reason != "" {
		kv = append(kv, "reason", n.Reason)
	}
	l.logger.Debug(n.Kind.String(), kv...)
}

func (l *LogSink) label(id world.EntityID) any {
	if l.sim == nil {
		return int(id)
	}
	return l.sim.Label(id)
}
