package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/jobendik/laser-sub002/internal/config"
	"github.com/jobendik/laser-sub002/internal/sim"
	"github.com/jobendik/laser-sub002/internal/store"
)

type runStats struct {
	runIndex int
	seed     int64
	runID    string
	outcome  sim.Outcome

	firstContactTick int
	firstEngageTick  int
	firstSearchTick  int
	firstKillTick    int
	firstStuckTick   int

	alertChanges  int
	targetsFound  int
	targetsLost   int
	engagements   int
	searches      int
	moveRequests  int
	weaponChanges int
	reloads       int

	combatReaction []int // per agent, ticks from first escalation to combat

	killed   map[string]struct{}
	affected map[string]struct{} // agents that got stuck at least once
}

type options struct {
	runs     int
	ticks    int
	seedBase int64
	seedStep int64
	scenario string
	tuning   string
	db       string
	dump     string
	verbose  bool
}

func main() {
	var o options
	flag.IntVar(&o.runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&o.ticks, "ticks", 3600, "max ticks per run")
	flag.Int64Var(&o.seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&o.seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&o.scenario, "scenario", "squad-assault", "scenario name ("+strings.Join(sim.Scenarios(), ", ")+")")
	flag.StringVar(&o.tuning, "tuning", "", "YAML tuning file")
	flag.StringVar(&o.db, "db", "", "record runs in this SQLite database")
	flag.StringVar(&o.dump, "dump", "", "write a zstd event dump per run into this directory")
	flag.BoolVar(&o.verbose, "v", false, "log every agent notification")
	flag.Parse()

	if o.verbose {
		log.SetLevel(log.DebugLevel)
	}
	if err := run(o); err != nil {
		log.Error("headless report failed", "err", err)
		os.Exit(1)
	}
}

func run(o options) error {
	if o.runs <= 0 {
		return errors.New("-runs must be > 0")
	}
	if o.ticks <= 0 {
		return errors.New("-ticks must be > 0")
	}
	sc, ok := sim.LookupScenario(o.scenario)
	if !ok {
		return errors.Errorf("unsupported scenario %q (supported: %s)", o.scenario, strings.Join(sim.Scenarios(), ", "))
	}
	tuning := config.Default()
	if o.tuning != "" {
		t, err := config.Load(o.tuning)
		if err != nil {
			return err
		}
		tuning = t
	}

	var db *store.RunStore
	if o.db != "" {
		s, err := store.Open(o.db)
		if err != nil {
			return err
		}
		defer s.Close()
		db = s
	}

	batch := uuid.NewString()
	fmt.Printf("=== Headless Combat Report ===\n")
	fmt.Printf("scenario=%s difficulty=%s runs=%d ticks=%d seed_base=%d seed_step=%d batch=%s\n\n",
		sc.Name, tuning.Difficulty, o.runs, o.ticks, o.seedBase, o.seedStep, batch)

	all := make([]runStats, 0, o.runs)
	for i := 0; i < o.runs; i++ {
		seed := o.seedBase + int64(i)*o.seedStep
		rs, err := runScenario(sc, i+1, seed, o, tuning)
		if err != nil {
			return err
		}
		all = append(all, rs)
		printRun(rs)
		if db != nil {
			if err := db.Record(context.Background(), toRun(batch, rs)); err != nil {
				return err
			}
		}
		log.Info("run complete", "run", rs.runIndex, "seed", seed, "winner", rs.outcome.WinnerLabel(), "ticks", rs.outcome.Ticks)
	}

	printAggregate(all)
	if db != nil {
		return printHistory(db)
	}
	return nil
}

func runScenario(sc sim.Scenario, runIndex int, seed int64, o options, tuning config.Tuning) (runStats, error) {
	s := sc.Build(sim.WithSeed(seed), sim.WithTuning(tuning))
	if o.verbose {
		logger := log.WithPrefix(fmt.Sprintf("%s#%d", sc.Name, runIndex))
		s.AddListener(sim.NewLogSink(logger, s))
	}

	runID := uuid.NewString()
	var dump *sim.Dump
	var dumpFile *os.File
	if o.dump != "" {
		if err := os.MkdirAll(o.dump, 0o755); err != nil {
			return runStats{}, errors.Wrap(err, "create dump dir")
		}
		path := filepath.Join(o.dump, fmt.Sprintf("%s-%d.jsonl.zst", sc.Name, seed))
		f, err := os.Create(path)
		if err != nil {
			return runStats{}, errors.Wrapf(err, "create dump %s", path)
		}
		d, err := sim.NewDump(f)
		if err != nil {
			_ = f.Close()
			return runStats{}, err
		}
		dump, dumpFile = d, f
		runID = d.RunID()
		s.AddListener(d)
	}

	s.RunUntil(func(s *sim.Sim) bool {
		_, done := s.Winner()
		return done
	}, o.ticks)

	if dump != nil {
		err := dump.Close()
		if cerr := dumpFile.Close(); err == nil {
			err = errors.Wrap(cerr, "close dump")
		}
		if err != nil {
			return runStats{}, err
		}
		log.Debug("dump written", "file", dumpFile.Name(), "records", dump.Records())
	}

	rs := collectStats(s.SimLog.Entries())
	rs.runIndex = runIndex
	rs.seed = seed
	rs.runID = runID
	rs.outcome = s.Outcome(sc.Name)
	for _, a := range s.Registry.Agents() {
		if n, ok := s.SimLog.TicksToCombat(s.Label(a.ID())); ok {
			rs.combatReaction = append(rs.combatReaction, n)
		}
	}
	return rs, nil
}

func collectStats(entries []sim.SimLogEntry) runStats {
	rs := runStats{
		killed:   map[string]struct{}{},
		affected: map[string]struct{}{},
	}
	for _, e := range entries {
		switch e.Category {
		case "alert":
			rs.alertChanges++
		case "vision":
			switch e.Key {
			case "target_found":
				rs.targetsFound++
			case "target_lost":
				rs.targetsLost++
			}
		case "combat":
			switch e.Key {
			case "engaged":
				rs.engagements++
			case "weapon_switch":
				rs.weaponChanges++
			case "reload":
				rs.reloads++
			}
		case "search":
			if e.Key == "start" {
				rs.searches++
			}
		case "move":
			switch e.Key {
			case "request":
				rs.moveRequests++
			case "stuck":
				rs.affected[e.Agent] = struct{}{}
			}
		case "damage":
			if e.Key == "killed" {
				rs.killed[e.Agent] = struct{}{}
			}
		}
	}
	rs.firstContactTick = firstTick(entries, "vision", "target_found", "")
	rs.firstEngageTick = firstTick(entries, "combat", "engaged", "")
	rs.firstSearchTick = firstTick(entries, "search", "start", "")
	rs.firstKillTick = firstTick(entries, "damage", "killed", "")
	rs.firstStuckTick = firstTick(entries, "move", "stuck", "")
	return rs
}

func firstTick(entries []sim.SimLogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

// detectStalemate flags runs where both sides kept most of their people and
// barely traded fire.
func detectStalemate(rs runStats) (bool, string) {
	o := rs.outcome
	if o.Winner >= 0 {
		return false, "decisive"
	}
	red, blue := o.Survivors[sim.TeamRed], o.Survivors[sim.TeamBlue]
	total := red + blue + o.Stats.Kills[sim.TeamRed] + o.Stats.Kills[sim.TeamBlue]
	if total == 0 {
		return false, "empty"
	}
	survival := float64(red+blue) / float64(total)
	var reasons []string
	if survival >= 0.6 {
		reasons = append(reasons, fmt.Sprintf("high_mutual_survival=%.2f", survival))
	}
	if rs.firstContactTick < 0 {
		reasons = append(reasons, "no_contact")
	} else if rs.engagements > 0 && o.Stats.Hits[sim.TeamRed]+o.Stats.Hits[sim.TeamBlue] == 0 {
		reasons = append(reasons, "no_hits")
	}
	if len(reasons) == 0 {
		return false, fmt.Sprintf("attrition survival=%.2f", survival)
	}
	return survival >= 0.6, strings.Join(reasons, ",")
}

func accuracy(hits, shots int) float64 {
	if shots <= 0 {
		return 0
	}
	return float64(hits) / float64(shots) * 100
}

func toRun(batch string, rs runStats) store.Run {
	o := rs.outcome
	return store.Run{
		ID:           rs.runID,
		Batch:        batch,
		Scenario:     o.Scenario,
		Seed:         rs.seed,
		Ticks:        o.Ticks,
		Winner:       o.WinnerLabel(),
		Survivors:    o.Survivors,
		Shots:        o.Stats.Shots,
		Hits:         o.Stats.Hits,
		Kills:        o.Stats.Kills,
		FirstContact: o.Stats.FirstContact,
		FirstKill:    o.Stats.FirstKill,
	}
}

func printRun(rs runStats) {
	o := rs.outcome
	st := o.Stats
	fmt.Printf("--- Run %d (seed=%d id=%s) ---\n", rs.runIndex, rs.seed, rs.runID)
	fmt.Printf("outcome: winner=%s ticks=%d survivors red=%d blue=%d\n",
		o.WinnerLabel(), o.Ticks, o.Survivors[sim.TeamRed], o.Survivors[sim.TeamBlue])
	fmt.Printf("phase_markers: contact=%d engage=%d search=%d first_kill=%d first_stuck=%d\n",
		rs.firstContactTick, rs.firstEngageTick, rs.firstSearchTick, rs.firstKillTick, rs.firstStuckTick)
	fmt.Printf("event_totals: alert_change=%d target_found=%d target_lost=%d engaged=%d search=%d move=%d weapon_switch=%d reload=%d\n",
		rs.alertChanges, rs.targetsFound, rs.targetsLost, rs.engagements, rs.searches, rs.moveRequests, rs.weaponChanges, rs.reloads)
	fmt.Printf("fire: red shots=%d hits=%d (%.0f%%) kills=%d grenades=%d | blue shots=%d hits=%d (%.0f%%) kills=%d grenades=%d\n",
		st.Shots[0], st.Hits[0], accuracy(st.Hits[0], st.Shots[0]), st.Kills[0], st.Grenades[0],
		st.Shots[1], st.Hits[1], accuracy(st.Hits[1], st.Shots[1]), st.Kills[1], st.Grenades[1])
	fmt.Printf("reaction: agents_in_combat=%d avg_ticks_to_combat=%s\n",
		len(rs.combatReaction), avgTickString(rs.combatReaction))
	fmt.Printf("navigation: paths_completed=%d stuck=%d stuck_agents=%s\n",
		st.PathsCompleted, st.StuckEvents, joinSet(rs.affected))
	fmt.Printf("killed: %s\n", joinSet(rs.killed))
	stalemate, reason := detectStalemate(rs)
	fmt.Printf("stalemate=%t (%s)\n\n", stalemate, reason)
}

func printAggregate(all []runStats) {
	wins := map[string]int{}
	totalShots := [2]int{}
	totalHits := [2]int{}
	totalKills := [2]int{}
	totalStuck := 0
	totalSearch := 0
	totalTicks := 0
	stalemates := 0

	contactTicks := make([]int, 0, len(all))
	engageTicks := make([]int, 0, len(all))
	killTicks := make([]int, 0, len(all))
	deaths := map[string]int{}

	for _, rs := range all {
		o := rs.outcome
		wins[o.WinnerLabel()]++
		for t := 0; t < 2; t++ {
			totalShots[t] += o.Stats.Shots[t]
			totalHits[t] += o.Stats.Hits[t]
			totalKills[t] += o.Stats.Kills[t]
		}
		totalStuck += o.Stats.StuckEvents
		totalSearch += rs.searches
		totalTicks += o.Ticks
		if s, _ := detectStalemate(rs); s {
			stalemates++
		}
		if rs.firstContactTick >= 0 {
			contactTicks = append(contactTicks, rs.firstContactTick)
		}
		if rs.firstEngageTick >= 0 {
			engageTicks = append(engageTicks, rs.firstEngageTick)
		}
		if rs.firstKillTick >= 0 {
			killTicks = append(killTicks, rs.firstKillTick)
		}
		for label := range rs.killed {
			deaths[label]++
		}
	}

	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d wins: red=%d blue=%d draw=%d stalemates=%d avg_ticks=%.1f\n",
		len(all), wins["red"], wins["blue"], wins["draw"], stalemates, avg(totalTicks, len(all)))
	fmt.Printf("avg_fire_per_run: red_shots=%.1f red_kills=%.1f blue_shots=%.1f blue_kills=%.1f\n",
		avg(totalShots[0], len(all)), avg(totalKills[0], len(all)), avg(totalShots[1], len(all)), avg(totalKills[1], len(all)))
	fmt.Printf("accuracy: red=%.1f%% blue=%.1f%%\n", accuracy(totalHits[0], totalShots[0]), accuracy(totalHits[1], totalShots[1]))
	fmt.Printf("avg_per_run: stuck=%.1f search=%.1f\n", avg(totalStuck, len(all)), avg(totalSearch, len(all)))
	fmt.Printf("phase_marker_avg_ticks: first_contact=%s first_engage=%s first_kill=%s\n",
		avgTickString(contactTicks), avgTickString(engageTicks), avgTickString(killTicks))

	fmt.Println("\n=== Casualties by agent ===")
	labels := make([]string, 0, len(deaths))
	for label := range deaths {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		fmt.Printf("  %s  died=%d/%d\n", label, deaths[label], len(all))
	}
	if len(labels) == 0 {
		fmt.Println("  none")
	}
}

func printHistory(db *store.RunStore) error {
	tallies, err := db.Tallies(context.Background())
	if err != nil {
		return err
	}
	fmt.Println("\n=== Recorded history ===")
	for _, t := range tallies {
		fmt.Printf("  %-14s runs=%d red=%d blue=%d draw=%d avg_ticks=%.1f\n",
			t.Scenario, t.Runs, t.Red, t.Blue, t.Draws, t.AvgTicks)
	}
	return nil
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func joinSet(s map[string]struct{}) string {
	if len(s) == 0 {
		return "none"
	}
	labels := make([]string, 0, len(s))
	for k := range s {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	return strings.Join(labels, ",")
}
