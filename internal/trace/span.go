package trace

import (
	"sync/atomic"
	"time"
)

var lastSpanID atomic.Uint64

// Span is an open interval between a begin and an end event. A nil *Span
// is inert, so callers never check whether tracing is on.
type Span struct {
	tracer Tracer
	id     uint64
	parent uint64
	scope  Scope
	name   string
	start  time.Time
	attrs  []Attr
}

// Begin emits a begin event and returns the span, or nil when t drops
// events of this scope.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if !Enabled(t) || !t.Level().Allows(&Event{Scope: scope}) {
		return nil
	}
	s := &Span{
		tracer: t,
		id:     lastSpanID.Add(1),
		parent: parent,
		scope:  scope,
		name:   name,
		start:  time.Now(),
	}
	t.Emit(Event{
		Time:   s.start,
		Kind:   KindBegin,
		Scope:  scope,
		Span:   s.id,
		Parent: parent,
		Name:   name,
	})
	return s
}

// ID returns the span ID, 0 for a nil span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Set attaches key=value to the end event.
func (s *Span) Set(key, value string) *Span {
	if s != nil {
		s.attrs = append(s.attrs, Attr{Key: key, Value: value})
	}
	return s
}

// End emits the end event and returns the span duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil {
		return 0
	}
	now := time.Now()
	elapsed := now.Sub(s.start)
	s.tracer.Emit(Event{
		Time:    now,
		Kind:    KindEnd,
		Scope:   s.scope,
		Span:    s.id,
		Parent:  s.parent,
		Name:    s.name,
		Detail:  detail,
		Elapsed: elapsed,
		Attrs:   s.attrs,
	})
	return elapsed
}

// Point emits an instant event under parent.
func Point(t Tracer, scope Scope, name, detail string, parent uint64, attrs ...Attr) {
	if !Enabled(t) {
		return
	}
	t.Emit(Event{
		Time:   time.Now(),
		Kind:   KindPoint,
		Scope:  scope,
		Parent: parent,
		Name:   name,
		Detail: detail,
		Attrs:  attrs,
	})
}

// Fail records a scan failure; failures pass every level except off.
func Fail(t Tracer, name string, err error, parent uint64) {
	if !Enabled(t) || err == nil {
		return
	}
	t.Emit(Event{
		Time:    time.Now(),
		Kind:    KindPoint,
		Scope:   ScopeToken,
		Parent:  parent,
		Name:    name,
		Detail:  err.Error(),
		Failure: true,
	})
}
