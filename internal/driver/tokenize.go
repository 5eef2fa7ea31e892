package driver

import (
	"context"
	"fmt"
	"strconv"

	"jsphp/internal/config"
	"jsphp/internal/diag"
	"jsphp/internal/lexer"
	"jsphp/internal/observ"
	"jsphp/internal/source"
	"jsphp/internal/token"
	"jsphp/internal/trace"
)

// Options controls a tokenize run. The zero value is usable.
type Options struct {
	MaxDiagnostics int          // per-file diagnostic limit; <= 0 selects 100
	Jobs           int          // TokenizeDir workers; <= 0 selects GOMAXPROCS
	Cache          *TokenCache  // nil disables caching
	Progress       ProgressSink // nil disables progress events
	Timings        bool         // append an OBS6001 diagnostic per file
}

func (o Options) maxDiagnostics() int {
	if o.MaxDiagnostics <= 0 {
		return 100
	}
	return o.MaxDiagnostics
}

type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token // scanned before Err, without EOF
	Bag     *diag.Bag
	Err     error // scan failure; also present in Bag
	Cached  bool
	Timing  *observ.Report
}

// Tokenize loads path and scans it with cfg. Load and configuration failures
// are returned as errors; scan failures are reported in the result.
func Tokenize(ctx context.Context, path string, cfg config.Config, opts Options) (*TokenizeResult, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeRun, "tokenize", trace.SpanFrom(ctx))
	defer span.End("")
	span.Set("path", path)

	timer := observ.NewTimer()
	fs := source.NewFileSet()

	loadSpan := trace.Begin(tracer, trace.ScopePhase, "load", span.ID())
	done := timer.Track("load")
	fileID, err := fs.Load(path)
	done("")
	loadSpan.End("")
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	file := fs.Get(fileID)

	bag := diag.NewBag(opts.maxDiagnostics())
	out, err := tokenizeFile(ctx, span.ID(), file, cfg, opts.Cache, bag, timer)
	if err != nil {
		return nil, err
	}

	res := &TokenizeResult{
		FileSet: fs,
		File:    file,
		Tokens:  out.tokens,
		Bag:     bag,
		Err:     out.err,
		Cached:  out.cached,
	}
	if opts.Timings {
		report := timer.Report()
		res.Timing = &report
		reportScanTimings(bag, file.ID, newScanSummary(path, out, report))
	}
	span.Set("tokens", strconv.Itoa(len(out.tokens)))
	return res, nil
}

type fileOutcome struct {
	tokens []token.Token
	err    error
	cached bool
}

// tokenizeFile serves a file from the cache or scans it, filling the cache on success.
// The returned error is a configuration error; scan errors live in fileOutcome.err.
func tokenizeFile(ctx context.Context, parent uint64, file *source.File, cfg config.Config, cache *TokenCache, bag *diag.Bag, timer *observ.Timer) (fileOutcome, error) {
	tracer := trace.FromContext(ctx)
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: bag})

	lexOpts, err := cfg.LexerOptions(reporter)
	if err != nil {
		return fileOutcome{}, err
	}

	var key Digest
	if cache != nil {
		cacheSpan := trace.Begin(tracer, trace.ScopePhase, "cache", parent)
		done := timer.Track("cache")
		key = CacheKey(file, cfg)
		var stream CachedStream
		hit, getErr := cache.Get(key, &stream)
		if getErr != nil {
			diag.ReportWarning(reporter, diag.IOCacheError, source.Span{File: file.ID}, "token cache read failed: "+getErr.Error()).Emit()
		}
		if hit {
			if toks, ok := decodeTokens(file.ID, &stream); ok {
				done("hit")
				cacheSpan.End("hit")
				return fileOutcome{tokens: toks, cached: true}, nil
			}
		}
		done("miss")
		cacheSpan.End("miss")
	}

	lexSpan := trace.Begin(tracer, trace.ScopePhase, "lex", parent)
	done := timer.Track("lex")
	toks, scanErr := lexer.New(file, lexOpts).All()
	done(strconv.Itoa(len(toks)) + " tokens")
	if scanErr != nil {
		trace.Fail(tracer, "scan-error", scanErr, lexSpan.ID())
	}
	if tracer.Level() >= trace.LevelDebug {
		trace.Point(tracer, trace.ScopeToken, "kinds", file.Path, lexSpan.ID(), kindCounts(toks)...)
	}
	lexSpan.End("")

	if cache != nil && scanErr == nil {
		if err := cache.Put(key, encodeTokens(file.Path, toks)); err != nil {
			diag.ReportWarning(reporter, diag.IOCacheError, source.Span{File: file.ID}, "token cache write failed: "+err.Error()).Emit()
		}
	}
	return fileOutcome{tokens: toks, err: scanErr}, nil
}

// kindCounts counts tokens per kind in order of first appearance.
func kindCounts(toks []token.Token) []trace.Attr {
	index := make(map[token.Kind]int)
	var (
		attrs  []trace.Attr
		counts []int
	)
	for _, tok := range toks {
		i, ok := index[tok.Kind]
		if !ok {
			i = len(attrs)
			index[tok.Kind] = i
			attrs = append(attrs, trace.Attr{Key: tok.Kind.String()})
			counts = append(counts, 0)
		}
		counts[i]++
	}
	for i := range attrs {
		attrs[i].Value = strconv.Itoa(counts[i])
	}
	return attrs
}
