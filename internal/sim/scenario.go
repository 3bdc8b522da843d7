package sim

import (
	"math"
	"sort"

	"github.com/jobendik/laser-sub002/internal/steering"
	"github.com/jobendik/laser-sub002/internal/world"
)

// Scenario is a named starting layout for headless runs and the viewer.
type Scenario struct {
	Name        string
	Description string
	Options     func() []Option
}

var scenarios = map[string]Scenario{
	"duel": {
		Name:        "duel",
		Description: "one rifleman per side across open ground",
		Options: func() []Option {
			return []Option{
				WithAgent(TeamRed, "R0", 20, 60, 0, "rifle", "pistol"),
				WithAgent(TeamBlue, "B0", 60, 60, math.Pi, "rifle", "pistol"),
			}
		},
	},
	"ambush": {
		Name:        "ambush",
		Description: "a red patrol walks past a blue team waiting behind a wall",
		Options: func() []Option {
			return []Option{
				WithBuilding(50, 40, 4, 30, 4),
				WithCover(48, 42),
				WithCover(48, 68),
				WithAgent(TeamRed, "R0", 15, 30, 0, "smg"),
				WithAgent(TeamRed, "R1", 12, 30, 0, "rifle"),
				WithFormation(steering.FormationColumn, "R0", "R1"),
				WithPatrol("R0", [2]float64{100, 30}, [2]float64{15, 30}),
				WithAgent(TeamBlue, "B0", 58, 50, math.Pi, "rifle"),
				WithAgent(TeamBlue, "B1", 58, 60, math.Pi, "shotgun", "pistol"),
			}
		},
	},
	"squad-assault": {
		Name:        "squad-assault",
		Description: "a red wedge advances on blue defenders dug in at cover",
		Options: func() []Option {
			frags := map[world.GrenadeKind]int{world.GrenadeFrag: 1, world.GrenadeSmoke: 1, world.GrenadeFlash: 1}
			return []Option{
				WithCover(80, 52),
				WithCover(80, 60),
				WithCover(80, 68),
				WithBuilding(77, 48, 1, 8, 1.2),
				WithBuilding(77, 64, 1, 8, 1.2),
				WithGrenadier(TeamRed, "R0", 15, 60, 0, frags, "rifle", "pistol"),
				WithGrenadier(TeamRed, "R1", 12, 55, 0, frags, "smg", "pistol"),
				WithAgent(TeamRed, "R2", 12, 65, 0, "rifle"),
				WithAgent(TeamRed, "R3", 9, 60, 0, "shotgun", "pistol"),
				WithFormation(steering.FormationWedge, "R0", "R1", "R2", "R3"),
				WithPatrol("R0", [2]float64{70, 60}),
				WithAgent(TeamBlue, "B0", 81, 52, math.Pi, "rifle"),
				WithAgent(TeamBlue, "B1", 81, 60, math.Pi, "sniper", "pistol"),
				WithAgent(TeamBlue, "B2", 81, 68, math.Pi, "rifle"),
			}
		},
	},
	"urban": {
		Name:        "urban",
		Description: "three a side through a block of buildings on a nav grid",
		Options: func() []Option {
			opts := []Option{WithGridGraph(2)}
			for _, b := range [][4]float64{
				{30, 20, 12, 16}, {30, 52, 12, 16}, {30, 84, 12, 16},
				{64, 20, 12, 16}, {64, 52, 12, 16}, {64, 84, 12, 16},
			} {
				opts = append(opts, WithBuilding(b[0], b[1], b[2], b[3], 6))
			}
			return append(opts,
				WithAgent(TeamRed, "R0", 10, 40, 0, "smg", "pistol"),
				WithAgent(TeamRed, "R1", 10, 60, 0, "rifle"),
				WithAgent(TeamRed, "R2", 10, 80, 0, "shotgun", "pistol"),
				WithPatrol("R0", [2]float64{110, 44}),
				WithPatrol("R1", [2]float64{110, 76}),
				WithPatrol("R2", [2]float64{110, 108}),
				WithAgent(TeamBlue, "B0", 110, 40, math.Pi, "smg", "pistol"),
				WithAgent(TeamBlue, "B1", 110, 60, math.Pi, "rifle"),
				WithAgent(TeamBlue, "B2", 110, 80, math.Pi, "shotgun", "pistol"),
				WithPatrol("B0", [2]float64{10, 44}),
				WithPatrol("B1", [2]float64{10, 76}),
				WithPatrol("B2", [2]float64{10, 12}),
			)
		},
	},
}

// Scenarios returns every scenario name, sorted.
func Scenarios() []string {
	out := make([]string, 0, len(scenarios))
	for name := range scenarios {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// LookupScenario finds a scenario by name.
func LookupScenario(name string) (Scenario, bool) {
	sc, ok := scenarios[name]
	return sc, ok
}

// Build creates a Sim for the scenario; extra options apply after the
// scenario's own.
func (sc Scenario) Build(extra ...Option) *Sim {
	return New(append(sc.Options(), extra...)...)
}

// Outcome summarizes one finished run.
type Outcome struct {
	Scenario  string
	Seed      int64
	Ticks     int
	Winner    int // TeamRed, TeamBlue or -1
	Survivors [2]int
	Stats     Stats
}

// WinnerLabel returns "red", "blue" or "draw".
func (o Outcome) WinnerLabel() string {
	if o.Winner < 0 {
		return "draw"
	}
	return teamLabel(o.Winner)
}

// Run plays the scenario for up to maxTicks, stopping early once a team is
// wiped out.
func (sc Scenario) Run(maxTicks int, extra ...Option) (Outcome, *Sim) {
	s := sc.Build(extra...)
	s.RunUntil(func(s *Sim) bool {
		_, done := s.Winner()
		return done
	}, maxTicks)
	return s.Outcome(sc.Name), s
}

// Outcome summarizes the run so far.
func (s *Sim) Outcome(scenario string) Outcome {
	winner, _ := s.Winner()
	return Outcome{
		Scenario:  scenario,
		Seed:      s.seed,
		Ticks:     s.tick,
		Winner:    winner,
		Survivors: [2]int{s.Arena.Alive(TeamRed), s.Arena.Alive(TeamBlue)},
		Stats:     s.stats,
	}
}
