package token

import (
	"fmt"

	"jsphp/internal/source"
)

// Data is the payload of a token. Value tokens carry at least "value".
type Data map[string]string

// Token is a single scanned token. Tokens are immutable once built.
type Token struct {
	Type string // literal text for type tokens, kind name for value tokens
	Kind Kind
	Mode Mode
	Data Data
	Span source.Span // consumed chunk, leading whitespace included
	Line uint32      // 1-based line of the first significant character
}

// Value returns Data["value"] or "" when absent.
func (t Token) Value() string {
	if t.Data == nil {
		return ""
	}
	return t.Data["value"]
}

// IsEOF reports whether the token signals end of input.
func (t Token) IsEOF() bool { return t.Kind == EOF }

// IsType reports whether the token type is its own literal text.
func (t Token) IsType() bool { return t.Kind != EOF && t.Mode == ModeType }

// Text returns the consumed chunk of f the token was built from.
func (t Token) Text(f *source.File) string {
	if f == nil || f.ID != t.Span.File || int(t.Span.End) > len(f.Content) {
		return ""
	}
	return f.Slice(t.Span)
}

// Is reports whether the token has the given type.
func (t Token) Is(typ string) bool { return t.Type == typ }

func (t Token) String() string {
	switch {
	case t.Kind == EOF:
		return "EOF"
	case t.Mode == ModeType:
		return fmt.Sprintf("type:%q (%s)", t.Type, t.Kind)
	default:
		return fmt.Sprintf("value:%q (%s)", t.Value(), t.Type)
	}
}
