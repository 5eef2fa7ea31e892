package lexer

import (
	"errors"
	"fmt"

	"jsphp/internal/diag"
	"jsphp/internal/source"
	"jsphp/internal/token"
)

var (
	// ErrDisallowedToken is matched by every *DisallowedTokenError.
	ErrDisallowedToken = errors.New("disallowed token")
	// ErrUnrecognizedInput is matched by every *UnrecognizedInputError.
	ErrUnrecognizedInput = errors.New("unrecognized input")
	// ErrInvalidPattern is matched by every *PatternModeError.
	ErrInvalidPattern = errors.New("invalid pattern")
)

// previewLimit caps the input excerpt carried by UnrecognizedInputError, in characters.
const previewLimit = 100

// DisallowedTokenError reports a match whose kind is in the disallow list.
// The offending chunk is already consumed, so Location points past it.
type DisallowedTokenError struct {
	Kind     token.Kind
	Text     string // trimmed matched text
	Span     source.Span
	Location Location
}

func (e *DisallowedTokenError) Error() string {
	return fmt.Sprintf("%s is disallowed. %s", e.Kind, e.Location)
}

func (e *DisallowedTokenError) Unwrap() error { return ErrDisallowedToken }

func (e *DisallowedTokenError) Code() diag.Code { return diag.LexDisallowedToken }

// UnrecognizedInputError reports that no pattern matches the remaining input.
type UnrecognizedInputError struct {
	Preview  string // first characters of the remaining input
	Span     source.Span
	Location Location
}

func (e *UnrecognizedInputError) Error() string {
	return fmt.Sprintf("Unknown pattern found at: %s %s", e.Preview, e.Location)
}

func (e *UnrecognizedInputError) Unwrap() error { return ErrUnrecognizedInput }

func (e *UnrecognizedInputError) Code() diag.Code { return diag.LexUnrecognizedInput }

// PatternModeError reports a pattern whose emission mode no handler knows.
// The lexer fails on construction and never scans.
type PatternModeError struct {
	Pattern string
	Mode    token.Mode
}

func (e *PatternModeError) Error() string {
	return fmt.Sprintf("pattern %s has unknown mode %d", e.Pattern, uint8(e.Mode))
}

func (e *PatternModeError) Unwrap() error { return ErrInvalidPattern }

func (e *PatternModeError) Code() diag.Code { return diag.CfgInvalidPattern }

// preview returns at most previewLimit characters of s.
func preview(s string) string {
	n := 0
	for i := range s {
		if n == previewLimit {
			return s[:i]
		}
		n++
	}
	return s
}
