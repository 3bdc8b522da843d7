package main

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/jobendik/laser-sub002/internal/agent"
	"github.com/jobendik/laser-sub002/internal/sim"
	"github.com/jobendik/laser-sub002/internal/world"
)

const (
	logPanelWidth = 340
	logMaxEntries = 80
	logLineHeight = 13
)

// ThoughtEntry is a single line in the thought log.
type ThoughtEntry struct {
	Tick    int
	Label   string // e.g. "R1", "B3"
	Team    int
	Message string
}

// ThoughtLog is a ring buffer of agent notifications rendered on-screen.
type ThoughtLog struct {
	entries []ThoughtEntry
	head    int
	count   int
	sim     *sim.Sim
}

// NewThoughtLog creates a thought log with a fixed capacity. s labels the
// agents; it may be nil.
func NewThoughtLog(s *sim.Sim) *ThoughtLog {
	return &ThoughtLog{
		entries: make([]ThoughtEntry, logMaxEntries),
		sim:     s,
	}
}

// Add appends an entry to the log.
func (tl *ThoughtLog) Add(tick int, label string, team int, msg string) {
	tl.entries[tl.head] = ThoughtEntry{
		Tick:    tick,
		Label:   label,
		Team:    team,
		Message: msg,
	}
	tl.head = (tl.head + 1) % logMaxEntries
	if tl.count < logMaxEntries {
		tl.count++
	}
}

// Recent returns entries in chronological order (oldest first).
func (tl *ThoughtLog) Recent() []ThoughtEntry {
	result := make([]ThoughtEntry, tl.count)
	for i := 0; i < tl.count; i++ {
		idx := (tl.head - tl.count + i + logMaxEntries) % logMaxEntries
		result[i] = tl.entries[idx]
	}
	return result
}

// Notify implements agent.Listener. Movement chatter is skipped.
func (tl *ThoughtLog) Notify(n agent.Notification) {
	var msg string
	switch n.Kind {
	case agent.MoveRequested, agent.PathingComplete, agent.FireRequested:
		return
	case agent.AlertLevelChanged:
		msg = fmt.Sprintf("%s -> %s (%s)", n.Old, n.New, n.Reason)
	case agent.TargetFound, agent.TargetLost, agent.CombatEngaged:
		msg = fmt.Sprintf("%s %s", n.Kind, tl.label(n.Target))
	case agent.Stuck, agent.SearchStarted, agent.SearchEnded, agent.GrenadeRequested:
		msg = fmt.Sprintf("%s (%.0f,%.0f)", n.Kind, n.Point[0], n.Point[1])
	default:
		msg = n.Kind.String()
		if n.Reason != "" {
			msg += " " + n.Reason
		}
	}
	tick, team := 0, 0
	if tl.sim != nil {
		tick = tl.sim.CurrentTick()
		team = tl.sim.Arena.Team(n.Agent)
	}
	tl.Add(tick, tl.label(n.Agent), team, msg)
}

func (tl *ThoughtLog) label(id world.EntityID) string {
	if tl.sim != nil {
		return tl.sim.Label(id)
	}
	return fmt.Sprint(int(id))
}

// Draw renders the thought log panel on the right side of the screen.
func (tl *ThoughtLog) Draw(screen *ebiten.Image, face text.Face, panelX int, panelH int) {
	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), float32(panelH), color.RGBA{R: 10, G: 12, B: 10, A: 248}, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1.0, color.RGBA{R: 50, G: 70, B: 50, A: 255}, false)

	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), 18, color.RGBA{R: 20, G: 30, B: 20, A: 255}, false)
	drawText(screen, face, "THOUGHT LOG", panelX+8, 3, color.White)
	vector.StrokeLine(screen, float32(panelX), 18, float32(panelX+logPanelWidth), 18, 1.0, color.RGBA{R: 50, G: 80, B: 50, A: 200}, false)

	entries := tl.Recent()

	// Newest at the bottom.
	maxVisible := (panelH - 24) / logLineHeight
	startIdx := 0
	if len(entries) > maxVisible {
		startIdx = len(entries) - maxVisible
	}

	visible := entries[startIdx:]
	recent := 3

	y := 22
	for i, e := range visible {
		isRecent := i >= len(visible)-recent
		if isRecent {
			vector.FillRect(screen, float32(panelX+2), float32(y), float32(logPanelWidth-4), float32(logLineHeight), color.RGBA{R: 30, G: 40, B: 30, A: 160}, false)
		}
		textCol := color.RGBA{R: 170, G: 170, B: 170, A: 255}
		if isRecent {
			textCol = color.RGBA{R: 255, G: 255, B: 255, A: 255}
		}
		vector.FillRect(screen, float32(panelX+5), float32(y+4), 3, 5, teamColor(e.Team), false)

		line := fmt.Sprintf("%5d [%s] %s", e.Tick, e.Label, e.Message)
		drawText(screen, face, line, panelX+12, y, textCol)
		y += logLineHeight
	}
}
