package trace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Tracer receives events. Implementations must be safe for concurrent use:
// directory runs emit from every worker.
type Tracer interface {
	Emit(ev Event)
	Level() Level
	Close() error
}

type nopTracer struct{}

func (nopTracer) Emit(Event)   {}
func (nopTracer) Level() Level { return LevelOff }
func (nopTracer) Close() error { return nil }

// Nop discards everything.
var Nop Tracer = nopTracer{}

// Enabled reports whether t keeps any event at all.
func Enabled(t Tracer) bool {
	return t != nil && t.Level() > LevelOff
}

// Mode selects where a Recorder keeps events.
type Mode uint8

const (
	ModeStream Mode = iota + 1 // write each event as it arrives
	ModeRing                   // keep the last N events, dump on failure
	ModeBoth
)

func (m Mode) String() string {
	switch m {
	case ModeStream:
		return "stream"
	case ModeRing:
		return "ring"
	case ModeBoth:
		return "both"
	}
	return "unknown"
}

// ParseMode converts a flag value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stream":
		return ModeStream, nil
	case "ring":
		return ModeRing, nil
	case "both":
		return ModeBoth, nil
	}
	return 0, fmt.Errorf("invalid trace mode: %q (expected: stream|ring|both)", s)
}

// DefaultRingSize is used when Config.RingSize is not positive.
const DefaultRingSize = 4096

// Config describes a tracer built by Open.
type Config struct {
	Level      Level
	Mode       Mode
	Format     Format
	Output     io.Writer // wins over OutputPath
	OutputPath string    // "" or "-" means stderr
	RingSize   int
}

// Open builds the tracer described by cfg. LevelOff yields Nop.
func Open(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	if cfg.Mode == 0 {
		return nil, errors.New("trace: storage mode is required")
	}
	rec := &Recorder{level: cfg.Level, format: cfg.Format}
	if cfg.Mode == ModeRing || cfg.Mode == ModeBoth {
		size := cfg.RingSize
		if size <= 0 {
			size = DefaultRingSize
		}
		rec.ring = make([]Event, size)
	}
	if cfg.Mode == ModeStream || cfg.Mode == ModeBoth {
		switch {
		case cfg.Output != nil:
			rec.out = cfg.Output
		case cfg.OutputPath == "" || cfg.OutputPath == "-":
			rec.out = os.Stderr
		default:
			f, err := os.Create(cfg.OutputPath)
			if err != nil {
				return nil, fmt.Errorf("failed to open trace output: %w", err)
			}
			rec.out, rec.closer = f, f
		}
		if rec.format == FormatAuto {
			rec.format = formatForPath(cfg.OutputPath)
		}
	}
	return rec, nil
}

// Recorder streams events to a writer, keeps the most recent ones in a ring,
// or both.
type Recorder struct {
	mu     sync.Mutex
	level  Level
	seq    uint64
	out    io.Writer
	closer io.Closer
	format Format
	ring   []Event
	head   int
	filled bool
	werr   error
}

// NewRecorder streams to w. Pass a nil w and a positive ringSize for a
// ring-only recorder.
func NewRecorder(level Level, w io.Writer, format Format, ringSize int) *Recorder {
	rec := &Recorder{level: level, out: w, format: format}
	if ringSize > 0 {
		rec.ring = make([]Event, ringSize)
	}
	return rec
}

// Emit filters ev by level, numbers it and stores it.
func (r *Recorder) Emit(ev Event) {
	if !r.level.Allows(&ev) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	ev.Seq = r.seq
	if r.ring != nil {
		r.ring[r.head] = ev
		r.head = (r.head + 1) % len(r.ring)
		r.filled = r.filled || r.head == 0
	}
	if r.out != nil && r.werr == nil {
		// первая ошибка записи выключает поток, сканирование продолжается
		_, r.werr = r.out.Write(encode(&ev, r.format))
	}
}

// Level returns the filter level.
func (r *Recorder) Level() Level { return r.level }

// Streaming reports whether events are written as they arrive.
func (r *Recorder) Streaming() bool { return r.out != nil }

// Recent returns the ring contents, oldest first.
func (r *Recorder) Recent() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ring == nil {
		return nil
	}
	if !r.filled {
		return append([]Event(nil), r.ring[:r.head]...)
	}
	out := make([]Event, 0, len(r.ring))
	out = append(out, r.ring[r.head:]...)
	return append(out, r.ring[:r.head]...)
}

// DumpRecent writes the ring contents to w in the text format.
func (r *Recorder) DumpRecent(w io.Writer) error {
	for _, ev := range r.Recent() {
		if _, err := w.Write(encode(&ev, FormatText)); err != nil {
			return err
		}
	}
	return nil
}

// Close reports the first write error and closes an owned output file.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.werr
	if r.closer != nil {
		err = errors.Join(err, r.closer.Close())
		r.closer = nil
	}
	r.out = nil
	return err
}
