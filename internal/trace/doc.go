// Package trace records what a scan run spends its time on.
//
// The driver opens a run span per Tokenize/TokenizeDir call, phase spans for
// load, cache and lex, and in directory runs one file span per worker item.
// Scan failures are recorded with Fail and survive every level but off.
//
//	jsphp --trace=- --trace-level=file tokenize src/
//	jsphp --trace=run.ndjson tokenize app.js
//	jsphp --trace-mode=ring --trace-level=debug tokenize src/
//
// A Recorder either streams events (text or NDJSON, chosen by the output
// extension), keeps the last N in a ring that the CLI dumps when the command
// fails, or does both.
//
//	ctx = trace.WithTracer(ctx, rec)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePhase, "lex", parent)
//	defer span.End("")
package trace
