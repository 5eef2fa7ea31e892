package pattern

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"jsphp/internal/token"
)

// Pattern is an immutable lexical rule.
type Pattern struct {
	Priority     int
	Kind         token.Kind
	Expr         string   // regex fragment as compiled; literals are already escaped
	Literals     []string // source literals for list patterns, nil otherwise
	Mode         token.Mode
	ValuePrefix  string // prepended to the stored value of value tokens
	WordBoundary bool   // reject matches that stop in the middle of a word

	re *regexp.Regexp
}

// Option tweaks a pattern at construction time.
type Option func(*Pattern)

// AsType makes the pattern emit type tokens.
func AsType() Option { return func(p *Pattern) { p.Mode = token.ModeType } }

// AsValue makes the pattern emit value tokens.
func AsValue() Option { return func(p *Pattern) { p.Mode = token.ModeValue } }

// WithPrefix sets the value prefix.
func WithPrefix(prefix string) Option { return func(p *Pattern) { p.ValuePrefix = prefix } }

// WholeWord rejects matches that end inside an identifier, so "in" does not split "index".
func WholeWord() Option { return func(p *Pattern) { p.WordBoundary = true } }

// New builds a pattern from a raw regular expression fragment.
// The emission mode defaults to the kind's mode.
func New(priority int, kind token.Kind, expr string, opts ...Option) (Pattern, error) {
	if expr == "" {
		return Pattern{}, fmt.Errorf("pattern %s/%d: empty expression", kind, priority)
	}
	p := Pattern{Priority: priority, Kind: kind, Expr: expr, Mode: kind.Mode()}
	for _, opt := range opts {
		opt(&p)
	}
	re, err := compile(expr, false)
	if err != nil {
		return Pattern{}, fmt.Errorf("pattern %s/%d: %w", kind, priority, err)
	}
	p.re = re
	return p, nil
}

// Literals builds a pattern matching any of the given literal strings.
// Each literal is escaped and the alternatives are matched leftmost-longest,
// so the order inside the list does not matter.
func Literals(priority int, kind token.Kind, literals []string, opts ...Option) (Pattern, error) {
	if len(literals) == 0 {
		return Pattern{}, fmt.Errorf("pattern %s/%d: empty literal list", kind, priority)
	}
	quoted := make([]string, 0, len(literals))
	for _, lit := range literals {
		if lit == "" {
			return Pattern{}, fmt.Errorf("pattern %s/%d: empty literal", kind, priority)
		}
		quoted = append(quoted, regexp.QuoteMeta(lit))
	}
	p := Pattern{
		Priority: priority,
		Kind:     kind,
		Expr:     strings.Join(quoted, "|"),
		Literals: append([]string(nil), literals...),
		Mode:     kind.Mode(),
	}
	for _, opt := range opts {
		opt(&p)
	}
	re, err := compile(p.Expr, true)
	if err != nil {
		return Pattern{}, fmt.Errorf("pattern %s/%d: %w", kind, priority, err)
	}
	p.re = re
	return p, nil
}

// MustNew is like New but panics on error. Intended for static catalogues.
func MustNew(priority int, kind token.Kind, expr string, opts ...Option) Pattern {
	p, err := New(priority, kind, expr, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// MustLiterals is like Literals but panics on error.
func MustLiterals(priority int, kind token.Kind, literals []string, opts ...Option) Pattern {
	p, err := Literals(priority, kind, literals, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// compile anchors expr at the input start after optional whitespace.
// Group 1 is the significant part of the match.
func compile(expr string, longest bool) (*regexp.Regexp, error) {
	re, err := regexp.Compile(`^\s*(` + expr + `)`)
	if err != nil {
		return nil, err
	}
	if longest {
		re.Longest()
	}
	return re, nil
}

// Match tries the pattern at the start of input.
// n is the length of the consumed chunk, leading whitespace included.
// Matches with an empty significant part never succeed.
func (p Pattern) Match(input string) (n int, ok bool) {
	_, n, ok = p.Locate(input)
	return n, ok
}

// Locate is like Match and also reports where the significant part starts.
func (p Pattern) Locate(input string) (lead, n int, ok bool) {
	if p.re == nil {
		return 0, 0, false
	}
	loc := p.re.FindStringSubmatchIndex(input)
	if loc == nil || loc[3] <= loc[2] {
		return 0, 0, false
	}
	end := loc[1]
	if p.WordBoundary && splitsWord(input, end) {
		return 0, 0, false
	}
	return loc[2], end, true
}

// WithValuePrefix returns a copy of p with the value prefix replaced.
func (p Pattern) WithValuePrefix(prefix string) Pattern {
	p.ValuePrefix = prefix
	return p
}

// Compiled reports whether the pattern was built through a constructor.
func (p Pattern) Compiled() bool { return p.re != nil }

func (p Pattern) String() string {
	return fmt.Sprintf("%d %s(%s) /%s/", p.Priority, p.Kind, p.Mode, p.Expr)
}

func splitsWord(input string, end int) bool {
	if end <= 0 || end >= len(input) {
		return false
	}
	last, _ := utf8.DecodeLastRuneInString(input[:end])
	next, _ := utf8.DecodeRuneInString(input[end:])
	return isWordRune(last) && isWordRune(next)
}

func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '$', r == '\\':
		return true
	}
	return r >= 0x7f && r != utf8.RuneError
}
