// Package observ measures how long each scan phase takes.
package observ

import (
	"sync"
	"time"
)

// Phase is one measured step of a scan: load, cache or lex.
type Phase struct {
	Name string
	Dur  time.Duration
	Note string
}

// Timer collects phases in the order they finish. Safe for concurrent use;
// a nil Timer records nothing.
type Timer struct {
	mu     sync.Mutex
	phases []Phase
}

func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 3)} }

// Record appends a phase measured elsewhere.
func (t *Timer) Record(name string, dur time.Duration, note string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.phases = append(t.phases, Phase{Name: name, Dur: dur, Note: note})
	t.mu.Unlock()
}

// Track starts the clock for name; calling the result records the phase.
// Only the first call counts.
func (t *Timer) Track(name string) func(note string) {
	if t == nil {
		return func(string) {}
	}
	start := time.Now()
	var once sync.Once
	return func(note string) {
		once.Do(func() { t.Record(name, time.Since(start), note) })
	}
}

// PhaseReport is the serialised form of a Phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report is what --timings prints per file.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	if t == nil {
		return Report{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	var (
		rep   Report
		total time.Duration
	)
	for _, p := range t.phases {
		total += p.Dur
		rep.Phases = append(rep.Phases, PhaseReport{Name: p.Name, DurationMS: millis(p.Dur), Note: p.Note})
	}
	rep.TotalMS = millis(total)
	return rep
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
