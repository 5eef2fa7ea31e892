package driver

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"jsphp/internal/config"
	"jsphp/internal/diag"
	"jsphp/internal/lexer"
	"jsphp/internal/token"
	"jsphp/internal/trace"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func types(toks []token.Token) []string {
	out := make([]string, len(toks))
	for i, tok := range toks {
		out[i] = tok.Type
	}
	return out
}

func TestTokenize(t *testing.T) {
	path := writeFile(t, t.TempDir(), "main.js", "a = 1;\n")
	res, err := Tokenize(context.Background(), path, config.Default(), Options{})
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if res.Err != nil {
		t.Fatalf("scan error: %v", res.Err)
	}
	want := []string{"variable", "=", "number", ";"}
	if diff := cmp.Diff(want, types(res.Tokens)); diff != "" {
		t.Fatalf("types mismatch (-want +got):\n%s", diff)
	}
	if res.Bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", res.Bag.Items())
	}
	if res.Cached || res.Timing != nil {
		t.Fatalf("cache/timing set without options: %+v", res)
	}
}

func TestTokenizeMissingFile(t *testing.T) {
	_, err := Tokenize(context.Background(), filepath.Join(t.TempDir(), "nope.js"), config.Default(), Options{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want ErrNotExist", err)
	}
}

func TestTokenizeUnknownBuilder(t *testing.T) {
	path := writeFile(t, t.TempDir(), "main.js", "a")
	cfg := config.Default()
	cfg.TokenBuilder = "no-such-builder"
	_, err := Tokenize(context.Background(), path, cfg, Options{})
	var cfgErr *config.Error
	if !errors.As(err, &cfgErr) || cfgErr.Code != diag.CfgUnknownBuilder {
		t.Fatalf("err = %v, want CfgUnknownBuilder", err)
	}
}

func TestTokenizeDisallowed(t *testing.T) {
	path := writeFile(t, t.TempDir(), "main.js", "x = 1\nif (x) y")
	cfg := config.Default().WithDisallow("keyword")
	res, err := Tokenize(context.Background(), path, cfg, Options{})
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	var dis *lexer.DisallowedTokenError
	if !errors.As(res.Err, &dis) {
		t.Fatalf("Err = %v, want DisallowedTokenError", res.Err)
	}
	if got := types(res.Tokens); len(got) != 4 {
		t.Fatalf("tokens before failure = %v", got)
	}
	if !res.Bag.HasErrors() || res.Bag.Items()[0].Code != diag.LexDisallowedToken {
		t.Fatalf("bag = %+v", res.Bag.Items())
	}
}

func TestTokenizeTimings(t *testing.T) {
	path := writeFile(t, t.TempDir(), "main.js", "a")
	res, err := Tokenize(context.Background(), path, config.Default(), Options{Timings: true, MaxDiagnostics: 1})
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if res.Timing == nil || len(res.Timing.Phases) != 2 {
		t.Fatalf("timing = %+v", res.Timing)
	}
	if res.Timing.Phases[0].Name != "load" || res.Timing.Phases[1].Name != "lex" {
		t.Fatalf("phases = %+v", res.Timing.Phases)
	}
	items := res.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.ObsTimings || len(items[0].Notes) != 1 {
		t.Fatalf("bag = %+v", items)
	}
	if !strings.HasPrefix(items[0].Message, "tokenized "+path+": 1 tokens in ") {
		t.Fatalf("message = %q", items[0].Message)
	}
	var got scanSummary
	if err := json.Unmarshal([]byte(items[0].Notes[0].Msg), &got); err != nil {
		t.Fatalf("note: %v", err)
	}
	if got.Path != path || got.Tokens != 1 || got.Cached || got.Failed {
		t.Fatalf("summary = %+v", got)
	}
}

func TestScanSummaryMessage(t *testing.T) {
	tests := []struct {
		summary scanSummary
		want    string
	}{
		{scanSummary{Path: "a.js", Tokens: 3, TotalMS: 1.5}, "tokenized a.js: 3 tokens in 1.50 ms"},
		{scanSummary{Path: "a.js", Tokens: 3, Cached: true}, "tokenized a.js: 3 tokens in 0.00 ms (cached)"},
		{scanSummary{Tokens: 1, Failed: true}, "tokenized <input>: 1 tokens in 0.00 ms (stopped on error)"},
	}
	for _, tt := range tests {
		if got := tt.summary.message(); got != tt.want {
			t.Errorf("message() = %q, want %q", got, tt.want)
		}
	}
}

func TestTimingDiagnosticOverflow(t *testing.T) {
	bag := diag.NewBag(0)
	reportScanTimings(bag, 0, scanSummary{TotalMS: 1})
	if bag.Len() != 1 {
		t.Fatalf("timing diagnostic dropped from a full bag")
	}
}

func TestTokenizeCache(t *testing.T) {
	cache, err := NewTokenCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewTokenCache: %v", err)
	}
	path := writeFile(t, t.TempDir(), "main.js", "const x = 'a' // c\n")
	opts := Options{Cache: cache}

	first, err := Tokenize(context.Background(), path, config.Default(), opts)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if first.Cached {
		t.Fatalf("first run served from cache")
	}
	second, err := Tokenize(context.Background(), path, config.Default(), opts)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if !second.Cached {
		t.Fatalf("second run missed the cache")
	}
	if diff := cmp.Diff(first.Tokens, second.Tokens); diff != "" {
		t.Fatalf("cached tokens differ (-fresh +cached):\n%s", diff)
	}

	// another builder must not reuse the entry
	cfg := config.Default()
	cfg.TokenBuilder = "raw"
	third, err := Tokenize(context.Background(), path, cfg, opts)
	if err != nil {
		t.Fatalf("third: %v", err)
	}
	if third.Cached {
		t.Fatalf("raw builder hit the default builder entry")
	}

	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	fourth, err := Tokenize(context.Background(), path, config.Default(), opts)
	if err != nil {
		t.Fatalf("fourth: %v", err)
	}
	if fourth.Cached {
		t.Fatalf("hit after DropAll")
	}
}

func TestTokenizeCacheSkipsFailures(t *testing.T) {
	cache, err := NewTokenCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewTokenCache: %v", err)
	}
	path := writeFile(t, t.TempDir(), "main.js", "if (a) b")
	cfg := config.Default().WithDisallow("keyword")
	for i := range 2 {
		res, err := Tokenize(context.Background(), path, cfg, Options{Cache: cache})
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if res.Cached || res.Err == nil {
			t.Fatalf("run %d: cached=%v err=%v", i, res.Cached, res.Err)
		}
	}
}

func TestTokenizeTrace(t *testing.T) {
	path := writeFile(t, t.TempDir(), "main.js", "a = b + 1;")
	rec := trace.NewRecorder(trace.LevelDebug, nil, trace.FormatText, 64)
	ctx := trace.WithSpan(trace.WithTracer(context.Background(), rec), 99)

	res, err := Tokenize(ctx, path, config.Default(), Options{})
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if res.Err != nil {
		t.Fatalf("scan error: %v", res.Err)
	}

	var got []string
	var kinds *trace.Event
	events := rec.Recent()
	for i := range events {
		ev := &events[i]
		got = append(got, ev.Kind.String()+":"+ev.Name)
		if ev.Name == "kinds" {
			kinds = ev
		}
	}
	want := []string{
		"begin:tokenize", "begin:load", "end:load",
		"begin:lex", "point:kinds", "end:lex", "end:tokenize",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("events (-want +got):\n%s", diff)
	}
	if events[0].Parent != 99 {
		t.Fatalf("run span parent = %d", events[0].Parent)
	}
	if v, _ := kinds.Attr("variable"); v != "2" {
		t.Fatalf("kinds attrs = %+v", kinds.Attrs)
	}
	if v, _ := kinds.Attr("operator"); v != "3" {
		t.Fatalf("kinds attrs = %+v", kinds.Attrs)
	}
}

func TestTokenizeTraceFailure(t *testing.T) {
	path := writeFile(t, t.TempDir(), "main.js", "if (a) b")
	rec := trace.NewRecorder(trace.LevelError, nil, trace.FormatText, 8)
	ctx := trace.WithTracer(context.Background(), rec)
	if _, err := Tokenize(ctx, path, config.Default().WithDisallow("keyword"), Options{}); err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	events := rec.Recent()
	if len(events) != 1 || !events[0].Failure || events[0].Name != "scan-error" {
		t.Fatalf("events = %+v", events)
	}
}
