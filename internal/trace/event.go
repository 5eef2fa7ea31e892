package trace

import (
	"fmt"
	"strings"
	"time"
)

// Level controls which events a Recorder keeps.
type Level uint8

const (
	LevelOff   Level = iota
	LevelError       // scan failures only
	LevelPhase       // runs and phases (load, cache, lex)
	LevelFile        // plus one span per file of a directory run
	LevelDebug       // plus per-file token statistics
)

var levelNames = []string{"off", "error", "phase", "file", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel accepts the names printed by Level.String; "detail" is an alias of "file".
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "detail" {
		return LevelFile, nil
	}
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames, "|"))
}

// Allows reports whether an event passes the level filter.
func (l Level) Allows(ev *Event) bool {
	switch l {
	case LevelOff:
		return false
	case LevelError:
		return ev.Failure
	case LevelPhase:
		return ev.Failure || ev.Scope <= ScopePhase
	case LevelFile:
		return ev.Failure || ev.Scope <= ScopeFile
	}
	return true
}

// Scope is the granularity of an event; lower is coarser.
type Scope uint8

const (
	ScopeRun   Scope = iota + 1 // a whole tokenize call
	ScopePhase                  // load, cache, lex
	ScopeFile                   // one file inside a directory run
	ScopeToken                  // scan failures and token statistics
)

func (s Scope) String() string {
	switch s {
	case ScopeRun:
		return "run"
	case ScopePhase:
		return "phase"
	case ScopeFile:
		return "file"
	case ScopeToken:
		return "token"
	}
	return "unknown"
}

// Kind distinguishes span boundaries from instant events.
type Kind uint8

const (
	KindBegin Kind = iota + 1
	KindEnd
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindBegin:
		return "begin"
	case KindEnd:
		return "end"
	case KindPoint:
		return "point"
	}
	return "unknown"
}

// Attr is an ordered key/value pair attached to an event.
type Attr struct {
	Key   string
	Value string
}

// Event is one trace record. Seq is assigned by the Recorder that keeps it.
type Event struct {
	Time    time.Time
	Seq     uint64
	Kind    Kind
	Scope   Scope
	Span    uint64
	Parent  uint64
	Name    string
	Detail  string
	Elapsed time.Duration // end events only
	Failure bool
	Attrs   []Attr
}

// Attr returns the value of key, if present.
func (ev *Event) Attr(key string) (string, bool) {
	for _, a := range ev.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}
