package main

import (
	"flag"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/jobendik/laser-sub002/internal/config"
	"github.com/jobendik/laser-sub002/internal/sim"
)

func main() {
	var scenario string
	var seed int64
	var tuningPath string
	var scale float64

	flag.StringVar(&scenario, "scenario", "squad-assault", "scenario name ("+strings.Join(sim.Scenarios(), ", ")+")")
	flag.Int64Var(&seed, "seed", 42, "RNG seed")
	flag.StringVar(&tuningPath, "tuning", "", "YAML tuning file, reloaded on save")
	flag.Float64Var(&scale, "scale", 7, "pixels per metre")
	flag.Parse()

	sc, ok := sim.LookupScenario(scenario)
	if !ok {
		log.Fatal("unknown scenario", "scenario", scenario, "supported", strings.Join(sim.Scenarios(), ", "))
	}
	if scale <= 0 {
		log.Fatal("-scale must be > 0")
	}

	tuning := config.Default()
	var watcher *TuningWatcher
	if tuningPath != "" {
		t, err := config.Load(tuningPath)
		if err != nil {
			log.Fatal("load tuning", "err", err)
		}
		tuning = t
		w, err := NewTuningWatcher(tuningPath)
		if err != nil {
			log.Warn("tuning hot reload disabled", "err", err)
		} else {
			watcher = w
		}
	}

	v := NewViewer(sc, seed, tuning, scale, watcher)
	w, h := v.Layout(0, 0)
	ebiten.SetWindowTitle("Laser Sub: " + sc.Name)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	err := ebiten.RunGame(v)
	if watcher != nil {
		_ = watcher.Close()
	}
	if err != nil {
		log.Error("viewer exited", "err", err)
		os.Exit(1)
	}
}
