// Package config holds the scanner configuration: the pattern table, the
// disallow list, the token builder and the naming options used by code
// generators downstream of the lexer.
package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"jsphp/internal/diag"
	"jsphp/internal/lexer"
	"jsphp/internal/pattern"
	"jsphp/internal/token"
)

const (
	DefaultVarPrefix   = "__jpv_"
	DefaultConstPrefix = "__JPC_"
)

// Config is a value; mutators return modified copies.
type Config struct {
	Patterns     pattern.Table
	Disallow     []string
	TokenBuilder string
	VarPrefix    string
	ConstPrefix  string
	Helpers      map[string]string
}

// Default returns the JavaScript configuration.
func Default() Config {
	return Config{
		Patterns:    pattern.Default(),
		VarPrefix:   DefaultVarPrefix,
		ConstPrefix: DefaultConstPrefix,
	}
}

// AddPattern appends patterns to the table.
func (c Config) AddPattern(patterns ...pattern.Pattern) Config {
	c.Patterns = c.Patterns.Add(patterns...)
	return c
}

// RemovePatterns drops the patterns for which drop returns true.
func (c Config) RemovePatterns(drop func(pattern.Pattern) bool) Config {
	c.Patterns = c.Patterns.Remove(drop)
	return c
}

// RemoveKinds drops every pattern of the named kinds.
func (c Config) RemoveKinds(names ...string) Config {
	drop := make(map[string]struct{}, len(names))
	for _, name := range names {
		drop[token.KindName(name)] = struct{}{}
	}
	return c.RemovePatterns(func(p pattern.Pattern) bool {
		_, ok := drop[p.Kind.String()]
		return ok
	})
}

// WithDisallow replaces the disallow list. Names are normalised with token.KindName and deduplicated.
func (c Config) WithDisallow(kinds ...string) Config {
	c.Disallow = normalizeKinds(kinds)
	return c
}

// WithHelper remaps a helper name.
func (c Config) WithHelper(key, name string) Config {
	helpers := maps.Clone(c.Helpers)
	if helpers == nil {
		helpers = make(map[string]string, 1)
	}
	helpers[key] = name
	c.Helpers = helpers
	return c
}

// HelperName returns the remapped name for key, or key itself.
func (c Config) HelperName(key string) string {
	if name, ok := c.Helpers[key]; ok && name != "" {
		return name
	}
	return key
}

// Prefixed returns a configuration whose variable and constant patterns
// prepend VarPrefix and ConstPrefix to their values.
func (c Config) Prefixed() Config {
	all := c.Patterns.All()
	for i, p := range all {
		switch p.Kind {
		case token.Variable:
			all[i] = p.WithValuePrefix(c.VarPrefix)
		case token.Constant:
			all[i] = p.WithValuePrefix(c.ConstPrefix)
		}
	}
	c.Patterns = pattern.NewTable(all...)
	return c
}

// Builder resolves TokenBuilder in the builder registry.
func (c Config) Builder() (token.Builder, error) {
	b, ok := token.LookupBuilder(c.TokenBuilder)
	if !ok {
		return nil, &Error{
			Code: diag.CfgUnknownBuilder,
			Msg:  fmt.Sprintf("unknown token builder %q (known: %s)", c.TokenBuilder, strings.Join(token.BuilderNames(), ", ")),
		}
	}
	return b, nil
}

// LexerOptions assembles lexer options; reporter may be nil.
func (c Config) LexerOptions(reporter diag.Reporter) (lexer.Options, error) {
	b, err := c.Builder()
	if err != nil {
		return lexer.Options{}, err
	}
	return lexer.Options{
		Patterns: c.Patterns,
		Disallow: slices.Clone(c.Disallow),
		Builder:  b,
		Reporter: reporter,
	}, nil
}

// ParseDisallow accepts a space separated string or a list of strings.
func ParseDisallow(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		return normalizeKinds(strings.Fields(val)), nil
	case []string:
		return normalizeKinds(val), nil
	case []any:
		out := make([]string, 0, len(val))
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("disallow[%d]: expected string, got %T", i, item)
			}
			out = append(out, s)
		}
		return normalizeKinds(out), nil
	}
	return nil, fmt.Errorf("disallow: expected string or list, got %T", v)
}

func normalizeKinds(kinds []string) []string {
	out := make([]string, 0, len(kinds))
	for _, k := range kinds {
		if k = token.KindName(k); k != "" && !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	return out
}
