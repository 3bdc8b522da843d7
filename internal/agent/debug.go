package agent

import (
	"fmt"
	"strings"
)

// DebugReport renders a plain-text snapshot of the agent's cognition for
// copying out of the viewer or a failing test.
func (a *Agent) DebugReport(now float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- agent %d debug report t=%.2f ---\n", a.id, now)
	if !a.w.Exists(a.id) {
		b.WriteString("(entity removed)\n")
		return b.String()
	}
	pose := a.w.Pose(a.id)
	fmt.Fprintf(&b, "team=%d pos=(%.1f,%.1f) heading=%.2f health=%.2f\n",
		a.w.Team(a.id), pose.Position[0], pose.Position[1], a.heading, a.w.Health(a.id))

	p := a.perception
	fmt.Fprintf(&b, "alert=%s", p.AlertLevel())
	if at, ok := p.Searching(); ok {
		fmt.Fprintf(&b, " searching=(%.1f,%.1f)", at[0], at[1])
	}
	b.WriteByte('\n')
	recs := p.Records()
	if len(recs) > 0 {
		b.WriteString("targets:\n")
		for _, r := range recs {
			tag := ""
			if r.Visible {
				tag = " visible"
			}
			fmt.Fprintf(&b, "  - id=%d threat=%.2f lost=%d last=(%.1f,%.1f) seen=%.2f%s\n",
				r.TargetID, r.Threat, r.TimesLost, r.LastKnownPosition[0], r.LastKnownPosition[1], r.LastSeen, tag)
		}
	}
	for _, inv := range p.Investigations() {
		if inv.Investigated {
			continue
		}
		fmt.Fprintf(&b, "  ? %s prio=%d at=(%.1f,%.1f)\n", inv.Kind, inv.Priority, inv.Position[0], inv.Position[1])
	}

	c := a.combat
	if t, ok := c.Target(); ok {
		st, burst := c.FireState()
		fmt.Fprintf(&b, "combat: target=%d fire=%s burst=%d shots=%d acc=%.2f supp=%.2f cover=%v\n",
			t, st, burst, c.ShotsFired(), c.LastAccuracy(), c.Suppression(), c.InCover())
	} else {
		fmt.Fprintf(&b, "combat: idle supp=%.2f\n", c.Suppression())
	}

	n := a.nav
	fmt.Fprintf(&b, "goal=%s nav_active=%v graph=%v waypoints=%d avoid=%.1f",
		a.goal, n.Active(), n.UsedGraph(), len(n.Path()), n.AvoidanceRadius())
	if st, ok := n.Formation(); ok {
		fmt.Fprintf(&b, " formation=%s leader=%d slot=%d", st.Kind, st.LeaderID, st.Index)
	}
	b.WriteByte('\n')
	return b.String()
}
