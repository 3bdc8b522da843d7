package steering

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/jobendik/laser-sub002/internal/geom"
)

// minStuckSamples is how much history is needed before judging.
const minStuckSamples = 4

// stuckDetector keeps a rolling window of sampled positions and flags an
// agent whose positions stop spreading out for a sustained time.
type stuckDetector struct {
	interval  float64
	capacity  int
	threshold float64
	duration  float64

	samples    []mgl64.Vec3
	next       int
	lastSample float64
	lowSince   float64 // -1 while moving
}

func newStuckDetector(cfg Config) stuckDetector {
	capacity := cfg.StuckSamples
	if capacity < minStuckSamples {
		capacity = minStuckSamples
	}
	return stuckDetector{
		interval:   cfg.StuckSampleInterval,
		capacity:   capacity,
		threshold:  cfg.StuckVariance,
		duration:   cfg.StuckDuration,
		lastSample: -1,
		lowSince:   -1,
	}
}

func (s *stuckDetector) reset() {
	s.samples = s.samples[:0]
	s.next = 0
	s.lastSample = -1
	s.lowSince = -1
}

func (s *stuckDetector) sample(pos mgl64.Vec3, now float64) {
	if s.lastSample >= 0 && now-s.lastSample < s.interval {
		return
	}
	s.lastSample = now
	if len(s.samples) < s.capacity {
		s.samples = append(s.samples, pos)
	} else {
		s.samples[s.next] = pos
		s.next = (s.next + 1) % s.capacity
	}
	if len(s.samples) < minStuckSamples {
		return
	}
	if geom.Variance(s.samples) < s.threshold {
		if s.lowSince < 0 {
			s.lowSince = now
		}
	} else {
		s.lowSince = -1
	}
}

func (s *stuckDetector) stuck(now float64) bool {
	return s.lowSince >= 0 && now-s.lowSince >= s.duration
}
