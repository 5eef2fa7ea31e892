package lexer

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"jsphp/internal/diag"
	"jsphp/internal/pattern"
	"jsphp/internal/source"
	"jsphp/internal/token"
)

// State is the lifecycle stage of a Lexer.
type State uint8

const (
	// Scanning: input remains and no error occurred.
	Scanning State = iota
	// Exhausted: all input consumed; Next returns EOF.
	Exhausted
	// Failed: a scan error occurred; Next returns the same error.
	Failed
)

func (s State) String() string {
	switch s {
	case Scanning:
		return "scanning"
	case Exhausted:
		return "exhausted"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// emitter turns a successful match into a token.
type emitter func(lx *Lexer, p *pattern.Pattern, m match) token.Token

// match is a consumed chunk with its significant part.
type match struct {
	raw  string
	text string // raw without surrounding whitespace
	span source.Span
	line uint32
}

// emitters dispatches on the emission mode of the winning pattern.
var emitters = [...]emitter{
	token.ModeValue: (*Lexer).valueToken,
	token.ModeType:  (*Lexer).typeToken,
}

// Lexer scans one file with a fixed pattern table. It is not safe for concurrent use.
type Lexer struct {
	file     *source.File
	cursor   Cursor
	opts     Options
	patterns []pattern.Pattern
	disallow map[string]struct{}
	builder  token.Builder
	line     uint32
	near     Mark // start of the consumed window
	state    State
	err      error
	path     *string
}

// New creates a lexer over the trimmed content of file.
// The lexer keeps its own copy of the sorted patterns; later table changes do
// not affect it. A pattern with an unknown mode makes the lexer fail up front.
func New(file *source.File, opts Options) *Lexer {
	lx := &Lexer{
		file:     file,
		cursor:   NewCursorIn(file, file.Trimmed()),
		opts:     opts,
		patterns: opts.Patterns.Sorted(),
		disallow: make(map[string]struct{}, len(opts.Disallow)),
		builder:  opts.Builder,
		line:     1,
	}
	for _, kind := range opts.Disallow {
		if kind = token.KindName(kind); kind != "" {
			lx.disallow[kind] = struct{}{}
		}
	}
	lx.near = lx.cursor.Mark()
	if lx.builder == nil {
		lx.builder = token.DefaultBuilder{}
	}
	if lx.cursor.EOF() {
		lx.state = Exhausted
	}
	for i := range lx.patterns {
		if p := &lx.patterns[i]; int(p.Mode) >= len(emitters) {
			err := &PatternModeError{Pattern: p.String(), Mode: p.Mode}
			_ = lx.fail(err, err.Code(), source.Span{File: file.ID, Start: lx.cursor.Off, End: lx.cursor.Off})
			break
		}
	}
	return lx
}

// FromString creates a lexer over an in-memory snippet. name may be empty.
func FromString(name, input string, opts Options) *Lexer {
	fs := source.NewFileSet()
	id := fs.AddVirtual(name, []byte(input))
	return New(fs.Get(id), opts)
}

// Next returns the next token. At end of input it returns an EOF token and a nil error.
// After a failure every call returns the same error.
func (lx *Lexer) Next() (token.Token, error) {
	switch lx.state {
	case Failed:
		return token.Token{}, lx.err
	case Exhausted:
		return lx.eof(), nil
	}

	rest := lx.cursor.Rest()
	for i := range lx.patterns {
		p := &lx.patterns[i]
		lead, n, ok := p.Locate(rest)
		if !ok {
			continue
		}
		m := lx.consume(rest[:n], lead)
		if _, banned := lx.disallow[p.Kind.String()]; banned {
			err := &DisallowedTokenError{
				Kind:     p.Kind,
				Text:     m.text,
				Span:     m.span,
				Location: lx.Location(),
			}
			return token.Token{}, lx.fail(err, err.Code(), m.span)
		}
		tok := emitters[p.Mode](lx, p, m)
		if lx.cursor.EOF() {
			lx.state = Exhausted
		}
		return tok, nil
	}

	sp := source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Limit}
	err := &UnrecognizedInputError{
		Preview:  preview(rest),
		Span:     sp,
		Location: lx.Location(),
	}
	return token.Token{}, lx.fail(err, err.Code(), sp)
}

// All drains the lexer. Tokens scanned before a failure are returned with the error.
// The trailing EOF token is not included.
func (lx *Lexer) All() ([]token.Token, error) {
	var out []token.Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return out, err
		}
		if tok.IsEOF() {
			return out, nil
		}
		out = append(out, tok)
	}
}

// consume advances past chunk and updates the line counter and the consumed window.
// lead is the length of the skipped whitespace in front of the match.
//
// The window is the text consumed since near. A chunk with more than one
// significant character restarts it, shorter chunks extend it; consumed
// chunks are contiguous, so only the start offset is kept.
func (lx *Lexer) consume(chunk string, lead int) match {
	mark := lx.cursor.Mark()
	m := match{
		raw:  chunk,
		text: strings.TrimSpace(chunk),
		line: lx.line + countLines(chunk[:lead]),
	}
	lx.cursor.Advance(len(chunk))
	m.span = lx.cursor.SpanFrom(mark)
	if len(m.text) > 1 {
		lx.near = mark
	}
	lx.line += countLines(chunk)
	return m
}

func countLines(s string) uint32 {
	n, err := safecast.Conv[uint32](strings.Count(s, "\n"))
	if err != nil {
		panic(fmt.Errorf("line count overflow: %w", err))
	}
	return n
}

func (lx *Lexer) typeToken(p *pattern.Pattern, m match) token.Token {
	return lx.builder.Build(token.BuildSpec{
		Type: m.text,
		Kind: p.Kind,
		Mode: token.ModeType,
		Raw:  m.raw,
		Span: m.span,
		Line: m.line,
	})
}

func (lx *Lexer) valueToken(p *pattern.Pattern, m match) token.Token {
	return lx.builder.Build(token.BuildSpec{
		Type:  p.Kind.String(),
		Kind:  p.Kind,
		Mode:  token.ModeValue,
		Value: p.ValuePrefix + m.text,
		Raw:   m.raw,
		Span:  m.span,
		Line:  m.line,
	})
}

func (lx *Lexer) eof() token.Token {
	return token.Token{
		Type: token.EOF.String(),
		Kind: token.EOF,
		Span: source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off},
		Line: lx.line,
	}
}

func (lx *Lexer) fail(err error, code diag.Code, sp source.Span) error {
	lx.state = Failed
	lx.err = err
	lx.report(code, sp, err.Error())
	return err
}

// Location reports the source path, the current line and the consumed window.
func (lx *Lexer) Location() Location {
	return Location{Path: lx.sourcePath(), Line: lx.line, Near: lx.Consumed()}
}

func (lx *Lexer) sourcePath() string {
	if lx.path != nil {
		return *lx.path
	}
	p := lx.file.Path
	if p != "" && !lx.file.Virtual() {
		if abs, err := source.AbsolutePath(p); err == nil {
			p = abs
		}
	}
	lx.path = &p
	return p
}

// Line returns the current 1-based line.
func (lx *Lexer) Line() uint32 { return lx.line }

// Consumed returns the trimmed consumed window.
func (lx *Lexer) Consumed() string { return strings.TrimSpace(lx.cursor.Since(lx.near)) }

// Remaining returns the unscanned input.
func (lx *Lexer) Remaining() string { return lx.cursor.Rest() }

// State returns the lifecycle stage.
func (lx *Lexer) State() State { return lx.state }

// Err returns the sticky error, if any.
func (lx *Lexer) Err() error { return lx.err }

// File returns the scanned file.
func (lx *Lexer) File() *source.File { return lx.file }
