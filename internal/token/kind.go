package token

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Kind is the lexical category a pattern belongs to.
type Kind uint8

const (
	// Invalid marks the zero value; no pattern produces it.
	Invalid Kind = iota
	// EOF marks the end of the scanned input.
	EOF

	Newline
	Comment
	String
	Regexp
	Number
	Lambda
	Operator
	Keyword
	Constant
	Variable

	firstCustom
)

// Mode selects how a successful match is turned into a token.
type Mode uint8

const (
	// ModeValue stores the matched text as payload; the token type is the kind name.
	ModeValue Mode = iota
	// ModeType uses the matched text itself as the token type.
	ModeType
)

func (m Mode) String() string {
	switch m {
	case ModeType:
		return "type"
	case ModeValue:
		return "value"
	}
	return "unknown"
}

type kindInfo struct {
	name string
	mode Mode
}

var (
	registryMu sync.RWMutex
	kinds      = []kindInfo{
		Invalid:  {"invalid", ModeValue},
		EOF:      {"eof", ModeValue},
		Newline:  {"newline", ModeValue},
		Comment:  {"comment", ModeValue},
		String:   {"string", ModeValue},
		Regexp:   {"regexp", ModeValue},
		Number:   {"number", ModeValue},
		Lambda:   {"lambda", ModeType},
		Operator: {"operator", ModeType},
		Keyword:  {"keyword", ModeType},
		Constant: {"constant", ModeValue},
		Variable: {"variable", ModeValue},
	}
	kindIndex = buildKindIndex()
)

func buildKindIndex() map[string]Kind {
	idx := make(map[string]Kind, len(kinds))
	for i, k := range kinds {
		idx[k.name] = Kind(i)
	}
	return idx
}

// KindName is the canonical spelling of a kind name: trimmed, NFC and
// lower-cased. Every place that compares kind names goes through it.
func KindName(name string) string {
	// Caser хранит состояние, поэтому создаётся на каждый вызов
	return cases.Lower(language.Und).String(norm.NFC.String(strings.TrimSpace(name)))
}

// Register adds a new kind with the given emission mode and returns it.
// Registering an existing name with the same mode returns the existing kind;
// a conflicting mode is an error. Names are case-insensitive.
// Register is meant to be called while configuration is built, before scanning.
func Register(name string, mode Mode) (Kind, error) {
	key := KindName(name)
	if key == "" {
		return Invalid, fmt.Errorf("token: empty kind name")
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if k, ok := kindIndex[key]; ok {
		if k == Invalid || k == EOF {
			return Invalid, fmt.Errorf("token: kind %q is reserved", key)
		}
		if kinds[k].mode != mode {
			return Invalid, fmt.Errorf("token: kind %q already registered as %s", key, kinds[k].mode)
		}
		return k, nil
	}
	if len(kinds) > int(^Kind(0)) {
		return Invalid, fmt.Errorf("token: too many kinds, cannot register %q", key)
	}
	k := Kind(len(kinds))
	kinds = append(kinds, kindInfo{name: key, mode: mode})
	kindIndex[key] = k
	return k, nil
}

// Lookup resolves a kind by name, ignoring case.
func Lookup(name string) (Kind, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	k, ok := kindIndex[KindName(name)]
	return k, ok
}

func (k Kind) info() (kindInfo, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if int(k) >= len(kinds) {
		return kindInfo{}, false
	}
	return kinds[k], true
}

func (k Kind) String() string {
	if info, ok := k.info(); ok {
		return info.name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Mode reports how tokens of this kind are emitted by default.
func (k Kind) Mode() Mode {
	info, _ := k.info()
	return info.mode
}

// Builtin reports whether k is one of the predeclared kinds.
func (k Kind) Builtin() bool {
	return k < firstCustom
}

// IsEOF reports whether the kind marks the end of input.
func (k Kind) IsEOF() bool { return k == EOF }
