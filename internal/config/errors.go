package config

import (
	"jsphp/internal/diag"
)

// Error is a configuration problem. Path is empty for in-memory configuration.
type Error struct {
	Code diag.Code
	Path string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Path != "" {
		return e.Path + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }
