package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"jsphp/internal/diag"
	"jsphp/internal/pattern"
	"jsphp/internal/token"
)

// FileName is the configuration file looked up by Find.
const FileName = "jsphp.toml"

type fileConfig struct {
	Lexer    lexerSection      `toml:"lexer"`
	Helpers  map[string]string `toml:"helpers"`
	Patterns []patternSection  `toml:"patterns"`
}

type lexerSection struct {
	Defaults     *bool    `toml:"defaults"`
	Disallow     any      `toml:"disallow"`
	Remove       []string `toml:"remove"`
	TokenBuilder string   `toml:"token_builder"`
	VarPrefix    *string  `toml:"var_prefix"`
	ConstPrefix  *string  `toml:"const_prefix"`
	PrefixValues bool     `toml:"prefix_values"`
}

type patternSection struct {
	Priority  int      `toml:"priority"`
	Kind      string   `toml:"kind"`
	Regex     string   `toml:"regex"`
	Literals  []string `toml:"literals"`
	Type      *bool    `toml:"type"`
	Prefix    string   `toml:"prefix"`
	WholeWord bool     `toml:"whole_word"`
}

// Find walks up from startDir looking for jsphp.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads and decodes a configuration file.
func Load(path string) (Config, error) {
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &Error{Code: diag.IOLoadFileError, Path: path, Msg: "failed to read config", Err: err}
	}
	return decode(data, path)
}

// Decode parses configuration from TOML text.
func Decode(data []byte) (Config, error) {
	return decode(data, "")
}

func decode(data []byte, path string) (Config, error) {
	var raw fileConfig
	meta, err := toml.Decode(string(data), &raw)
	if err != nil {
		return Config{}, &Error{Code: diag.CfgDecodeError, Path: path, Msg: "failed to parse TOML", Err: err}
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, &Error{Code: diag.CfgDecodeError, Path: path, Msg: "unknown keys: " + strings.Join(keys, ", ")}
	}

	cfg := Default()
	if raw.Lexer.Defaults != nil && !*raw.Lexer.Defaults {
		cfg.Patterns = pattern.Table{}
	}
	if len(raw.Lexer.Remove) > 0 {
		cfg = cfg.RemoveKinds(raw.Lexer.Remove...)
	}

	disallow, err := ParseDisallow(raw.Lexer.Disallow)
	if err != nil {
		return Config{}, &Error{Code: diag.CfgDecodeError, Path: path, Msg: "[lexer].disallow", Err: err}
	}
	cfg.Disallow = disallow

	if name := strings.TrimSpace(raw.Lexer.TokenBuilder); name != "" {
		cfg.TokenBuilder = name
		if _, err := cfg.Builder(); err != nil {
			var cerr *Error
			if errors.As(err, &cerr) {
				cerr.Path = path
			}
			return Config{}, err
		}
	}
	if raw.Lexer.VarPrefix != nil {
		cfg.VarPrefix = *raw.Lexer.VarPrefix
	}
	if raw.Lexer.ConstPrefix != nil {
		cfg.ConstPrefix = *raw.Lexer.ConstPrefix
	}
	for key, name := range raw.Helpers {
		cfg = cfg.WithHelper(key, name)
	}

	extra := make([]pattern.Pattern, 0, len(raw.Patterns))
	for i, ps := range raw.Patterns {
		p, err := ps.build()
		if err != nil {
			code := diag.CfgInvalidPattern
			if errors.Is(err, errUnknownKind) {
				code = diag.CfgUnknownKind
			}
			return Config{}, &Error{Code: code, Path: path, Msg: fmt.Sprintf("patterns[%d]", i), Err: err}
		}
		extra = append(extra, p)
	}
	cfg = cfg.AddPattern(extra...)

	if raw.Lexer.PrefixValues {
		cfg = cfg.Prefixed()
	}
	return cfg, nil
}

var errUnknownKind = errors.New("invalid kind")

func (ps patternSection) build() (pattern.Pattern, error) {
	mode := token.ModeValue
	kind, known := token.Lookup(ps.Kind)
	if known {
		mode = kind.Mode()
	}
	if ps.Type != nil {
		mode = token.ModeValue
		if *ps.Type {
			mode = token.ModeType
		}
	}
	if !known {
		var err error
		if kind, err = token.Register(ps.Kind, mode); err != nil {
			return pattern.Pattern{}, fmt.Errorf("%w: %w", errUnknownKind, err)
		}
	}
	if kind == token.Invalid || kind == token.EOF {
		return pattern.Pattern{}, fmt.Errorf("%w: %q is reserved", errUnknownKind, ps.Kind)
	}

	opts := []pattern.Option{pattern.AsValue()}
	if mode == token.ModeType {
		opts[0] = pattern.AsType()
	}
	if ps.Prefix != "" {
		opts = append(opts, pattern.WithPrefix(ps.Prefix))
	}
	if ps.WholeWord {
		opts = append(opts, pattern.WholeWord())
	}

	switch {
	case ps.Regex != "" && len(ps.Literals) > 0:
		return pattern.Pattern{}, errors.New("regex and literals are mutually exclusive")
	case len(ps.Literals) > 0:
		return pattern.Literals(ps.Priority, kind, ps.Literals, opts...)
	default:
		return pattern.New(ps.Priority, kind, ps.Regex, opts...)
	}
}

// Starter is written by "jsphp init".
const Starter = `# jsphp scanner configuration

[lexer]
# start from the built-in JavaScript patterns
defaults = true
# kinds that abort scanning, e.g. "keyword regexp"
disallow = []
# kinds whose built-in patterns are dropped
remove = []
# "default" or "raw"
token_builder = "default"
var_prefix = "__jpv_"
const_prefix = "__JPC_"
prefix_values = false

[helpers]
# dot = "dotHelper"

# [[patterns]]
# priority = 45
# kind = "arrow"
# regex = "->"
# type = true
`
