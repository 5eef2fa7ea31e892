package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func names(events []Event) []string {
	out := make([]string, len(events))
	for i, ev := range events {
		out[i] = ev.Kind.String() + ":" + ev.Name
	}
	return out
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{"off": LevelOff, "Error": LevelError, "phase": LevelPhase, "file": LevelFile, "detail": LevelFile, " debug ": LevelDebug}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected an error for an unknown level")
	}
	if _, err := ParseMode("disk"); err == nil {
		t.Error("expected an error for an unknown mode")
	}
	if f, err := ParseFormat("json"); err != nil || f != FormatNDJSON {
		t.Errorf("ParseFormat = %v, %v", f, err)
	}
}

func TestLevelFilter(t *testing.T) {
	rec := NewRecorder(LevelPhase, nil, FormatText, 16)
	run := Begin(rec, ScopeRun, "tokenize", 0)
	lex := Begin(rec, ScopePhase, "lex", run.ID())
	file := Begin(rec, ScopeFile, "a.js", lex.ID())
	if file != nil {
		t.Fatalf("file span opened at phase level")
	}
	file.Set("tokens", "3").End("")
	Point(rec, ScopeToken, "kinds", "", lex.ID())
	Fail(rec, "scan-error", errors.New("boom"), lex.ID())
	lex.End("")
	run.End("ok")

	want := []string{"begin:tokenize", "begin:lex", "point:scan-error", "end:lex", "end:tokenize"}
	if diff := cmp.Diff(want, names(rec.Recent())); diff != "" {
		t.Fatalf("events (-want +got):\n%s", diff)
	}
}

func TestErrorLevelKeepsOnlyFailures(t *testing.T) {
	rec := NewRecorder(LevelError, nil, FormatText, 4)
	Begin(rec, ScopeRun, "tokenize", 0).End("")
	Fail(rec, "scan-error", errors.New("boom"), 0)
	Fail(rec, "ignored", nil, 0)
	got := rec.Recent()
	if len(got) != 1 || !got[0].Failure || got[0].Detail != "boom" {
		t.Fatalf("events = %+v", got)
	}
}

func TestStreamNDJSON(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(LevelDebug, &buf, FormatNDJSON, 0)
	span := Begin(rec, ScopeFile, "a.js", 7)
	span.Set("tokens", "3").Set("cached", "false").End("done")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	var end jsonEvent
	if err := json.Unmarshal([]byte(lines[1]), &end); err != nil {
		t.Fatal(err)
	}
	if end.Kind != "end" || end.Scope != "file" || end.Parent != 7 || end.Seq != 2 || end.Detail != "done" {
		t.Fatalf("end = %+v", end)
	}
	if diff := cmp.Diff(map[string]string{"tokens": "3", "cached": "false"}, end.Attrs); diff != "" {
		t.Fatalf("attrs (-want +got):\n%s", diff)
	}
	if rec.Recent() != nil {
		t.Fatalf("stream-only recorder kept a ring")
	}
}

func TestTextFormat(t *testing.T) {
	ev := &Event{Seq: 3, Kind: KindPoint, Scope: ScopeToken, Name: "kinds", Detail: "a.js", Attrs: []Attr{{"variable", "2"}, {"operator", "1"}}}
	want := "#3 token * kinds (a.js) variable=\"2\" operator=\"1\"\n"
	if got := string(encodeText(ev)); got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
	fail := &Event{Seq: 4, Kind: KindPoint, Scope: ScopeToken, Name: "scan-error", Failure: true}
	if got := string(encodeText(fail)); got != "#4 token ! scan-error\n" {
		t.Fatalf("failure text = %q", got)
	}
}

func TestRingWraps(t *testing.T) {
	rec := NewRecorder(LevelDebug, nil, FormatText, 3)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(rec, ScopePhase, name, "", 0)
	}
	got := rec.Recent()
	if diff := cmp.Diff([]string{"point:c", "point:d", "point:e"}, names(got)); diff != "" {
		t.Fatalf("ring (-want +got):\n%s", diff)
	}
	if got[0].Seq != 3 || got[2].Seq != 5 {
		t.Fatalf("seq = %d..%d", got[0].Seq, got[2].Seq)
	}
	var buf bytes.Buffer
	if err := rec.DumpRecent(&buf); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "\n") != 3 || !strings.HasPrefix(buf.String(), "#3 phase * c") {
		t.Fatalf("dump:\n%s", buf.String())
	}
}

func TestConcurrentEmit(t *testing.T) {
	rec := NewRecorder(LevelDebug, nil, FormatText, 1000)
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				Begin(rec, ScopeFile, "f", 0).End("")
			}
		}()
	}
	wg.Wait()
	events := rec.Recent()
	if len(events) != 1000 {
		t.Fatalf("events = %d", len(events))
	}
	for i, ev := range events {
		if ev.Seq != uint64(i+1) {
			t.Fatalf("seq gap at %d: %d", i, ev.Seq)
		}
	}
}

type failingWriter struct{ calls int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.calls++
	return 0, errors.New("disk full")
}

func TestWriteErrorStopsStream(t *testing.T) {
	w := &failingWriter{}
	rec := NewRecorder(LevelDebug, w, FormatText, 0)
	Point(rec, ScopeRun, "a", "", 0)
	Point(rec, ScopeRun, "b", "", 0)
	if w.calls != 1 {
		t.Fatalf("writes after failure: %d", w.calls)
	}
	if err := rec.Close(); err == nil {
		t.Fatal("Close must report the write error")
	}
}

func TestOpen(t *testing.T) {
	tr, err := Open(Config{Level: LevelOff})
	if err != nil || Enabled(tr) {
		t.Fatalf("Open(off) = %v, %v", tr, err)
	}
	if _, err := Open(Config{Level: LevelPhase}); err == nil {
		t.Fatal("expected an error without a storage mode")
	}

	path := filepath.Join(t.TempDir(), "run.ndjson")
	tr, err = Open(Config{Level: LevelPhase, Mode: ModeBoth, OutputPath: path, RingSize: 2})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	Begin(tr, ScopeRun, "tokenize", 0).End("")
	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "{") || strings.Count(string(data), "\n") != 2 {
		t.Fatalf("file:\n%s", data)
	}
	rec := tr.(*Recorder)
	if len(rec.Recent()) != 2 || rec.Streaming() {
		t.Fatalf("ring/streaming state after close: %d %v", len(rec.Recent()), rec.Streaming())
	}
}

func TestNilSpanAndContext(t *testing.T) {
	var span *Span
	if span.ID() != 0 || span.Set("k", "v") != nil || span.End("") != 0 {
		t.Fatal("nil span must be inert")
	}
	if Begin(Nop, ScopeRun, "x", 0) != nil {
		t.Fatal("Nop must not open spans")
	}
	if FromContext(context.Background()) != Nop {
		t.Fatal("missing tracer must resolve to Nop")
	}
	rec := NewRecorder(LevelPhase, nil, FormatText, 1)
	ctx := WithSpan(WithTracer(context.Background(), rec), 42)
	if FromContext(ctx) != Tracer(rec) || SpanFrom(ctx) != 42 {
		t.Fatal("tracer or span not propagated")
	}
	if SpanFrom(context.Background()) != 0 {
		t.Fatal("missing span must be 0")
	}
}

func TestEventAttr(t *testing.T) {
	ev := Event{Attrs: []Attr{{"path", "a.js"}}}
	if v, ok := ev.Attr("path"); !ok || v != "a.js" {
		t.Fatalf("Attr = %q, %v", v, ok)
	}
	if _, ok := ev.Attr("missing"); ok {
		t.Fatal("unexpected attr")
	}
}
