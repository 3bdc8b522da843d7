package agent

import (
	"github.com/jobendik/laser-sub002/internal/perception"
	"github.com/jobendik/laser-sub002/internal/steering"
	"github.com/jobendik/laser-sub002/internal/world"
)

// Registry is the set of live agents sharing a world. It relays alert
// broadcasts between teammates and answers squad questions for combat.
type Registry struct {
	w      world.World
	agents map[world.EntityID]*Agent
	order  []world.EntityID

	queued   []perception.AlertMessage
	engaging map[world.EntityID]world.EntityID
	groups   map[world.EntityID][]world.EntityID // leader -> followers
}

// NewRegistry returns an empty registry over w.
func NewRegistry(w world.World) *Registry {
	return &Registry{
		w:        w,
		agents:   make(map[world.EntityID]*Agent),
		engaging: make(map[world.EntityID]world.EntityID),
		groups:   make(map[world.EntityID][]world.EntityID),
	}
}

// Add registers a and gives its combat engine squad awareness.
func (r *Registry) Add(a *Agent) {
	if _, ok := r.agents[a.id]; !ok {
		r.order = append(r.order, a.id)
	}
	r.agents[a.id] = a
	a.registry = r
	a.combat.SetSquad(r)
}

// Remove drops an agent and releases its followers from formation.
func (r *Registry) Remove(id world.EntityID) {
	a, ok := r.agents[id]
	if !ok {
		return
	}
	delete(r.agents, id)
	delete(r.engaging, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	for _, f := range r.Group(id) {
		if fa, ok := r.agents[f]; ok {
			fa.leaveFormation()
		}
	}
	delete(r.groups, id)
	r.leaveGroup(id)
	a.registry = nil
}

// Agent looks up a registered agent.
func (r *Registry) Agent(id world.EntityID) (*Agent, bool) {
	a, ok := r.agents[id]
	return a, ok
}

// Agents returns agents in registration order.
func (r *Registry) Agents() []*Agent {
	out := make([]*Agent, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.agents[id])
	}
	return out
}

// Len returns the number of registered agents.
func (r *Registry) Len() int { return len(r.order) }

// Broadcast queues an alert for delivery on the next Deliver.
func (r *Registry) Broadcast(msg perception.AlertMessage) {
	r.queued = append(r.queued, msg)
}

// Deliver hands queued alerts to every same-team agent within the
// receiver's broadcast radius of the sender, then clears the queue.
func (r *Registry) Deliver(now float64) int {
	delivered := 0
	msgs := r.queued
	r.queued = nil
	for _, msg := range msgs {
		for _, id := range r.order {
			a := r.agents[id]
			if id == msg.From || !r.w.Exists(id) || r.w.Team(id) != msg.Team {
				continue
			}
			radius := a.perception.Config().BroadcastRadius
			pos := r.w.Pose(id).Position
			if pos.Sub(msg.Origin).Len() > radius {
				continue
			}
			a.perception.ReceiveAlert(msg, now)
			delivered++
		}
	}
	return delivered
}

// Tick delivers last tick's alerts and then runs every live agent once in
// registration order.
func (r *Registry) Tick(now, dt float64) map[world.EntityID]TickResult {
	r.Deliver(now)
	out := make(map[world.EntityID]TickResult, len(r.order))
	for _, id := range append([]world.EntityID(nil), r.order...) {
		if !r.w.Exists(id) {
			continue
		}
		out[id] = r.agents[id].Tick(now, dt)
	}
	return out
}

func (r *Registry) setEngagement(self, target world.EntityID, engaged bool) {
	if engaged {
		r.engaging[self] = target
		return
	}
	delete(r.engaging, self)
}

// Engaging counts teammates of self, other than self, engaged with target.
func (r *Registry) Engaging(target, self world.EntityID) int {
	team := r.w.Team(self)
	n := 0
	for id, t := range r.engaging {
		if id == self || t != target || !r.w.Exists(id) || r.w.Team(id) != team {
			continue
		}
		n++
	}
	return n
}

// FormGroup makes members follow leader in the given formation. Slot
// indices follow the order of members, starting at 1.
func (r *Registry) FormGroup(leader world.EntityID, members []world.EntityID, kind steering.FormationKind) int {
	joined := 0
	for _, id := range members {
		a, ok := r.agents[id]
		if !ok || id == leader {
			continue
		}
		r.leaveGroup(id)
		joined++
		a.nav.JoinFormation(leader, kind, joined)
		r.groups[leader] = append(r.groups[leader], id)
	}
	return joined
}

// Group returns the followers of leader.
func (r *Registry) Group(leader world.EntityID) []world.EntityID {
	return append([]world.EntityID(nil), r.groups[leader]...)
}

func (r *Registry) leaveGroup(id world.EntityID) {
	for leader, fs := range r.groups {
		for i, f := range fs {
			if f == id {
				r.groups[leader] = append(fs[:i], fs[i+1:]...)
				break
			}
		}
		if len(r.groups[leader]) == 0 {
			delete(r.groups, leader)
		}
	}
}
