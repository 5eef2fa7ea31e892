package token

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"jsphp/internal/source"
)

// BuildSpec carries everything a Builder may use to assemble a token.
type BuildSpec struct {
	Type  string // token type: trimmed literal or kind name
	Kind  Kind
	Mode  Mode
	Value string // trimmed (and prefixed) matched text; empty for type tokens
	Raw   string // exact consumed chunk, leading whitespace included
	Span  source.Span
	Line  uint32
}

// Builder assembles tokens for the lexer. Implementations must not retain the request.
type Builder interface {
	Build(req BuildSpec) Token
}

// BuilderFunc adapts a function to Builder.
type BuilderFunc func(req BuildSpec) Token

func (f BuilderFunc) Build(req BuildSpec) Token { return f(req) }

// DefaultBuilder produces tokens with a "value" entry for value tokens and no data otherwise.
type DefaultBuilder struct{}

func (DefaultBuilder) Build(req BuildSpec) Token {
	tok := Token{
		Type: req.Type,
		Kind: req.Kind,
		Mode: req.Mode,
		Span: req.Span,
		Line: req.Line,
	}
	if req.Mode == ModeValue {
		tok.Data = Data{"value": req.Value}
	}
	return tok
}

// RawBuilder behaves like DefaultBuilder and also keeps the untrimmed chunk under "raw".
type RawBuilder struct{}

func (RawBuilder) Build(req BuildSpec) Token {
	tok := DefaultBuilder{}.Build(req)
	if tok.Data == nil {
		tok.Data = Data{}
	}
	tok.Data["raw"] = req.Raw
	return tok
}

var (
	buildersMu sync.RWMutex
	builders   = map[string]Builder{
		"default": DefaultBuilder{},
		"raw":     RawBuilder{},
	}
)

// RegisterBuilder makes b available under name for configuration lookup.
func RegisterBuilder(name string, b Builder) error {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || b == nil {
		return fmt.Errorf("token: invalid builder registration %q", name)
	}
	buildersMu.Lock()
	defer buildersMu.Unlock()
	if _, ok := builders[key]; ok {
		return fmt.Errorf("token: builder %q already registered", key)
	}
	builders[key] = b
	return nil
}

// LookupBuilder returns the builder registered under name; "" selects "default".
func LookupBuilder(name string) (Builder, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = "default"
	}
	buildersMu.RLock()
	defer buildersMu.RUnlock()
	b, ok := builders[key]
	return b, ok
}

// BuilderNames lists registered builder names in sorted order.
func BuilderNames() []string {
	buildersMu.RLock()
	defer buildersMu.RUnlock()
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
