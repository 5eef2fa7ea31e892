package lexer

import (
	"jsphp/internal/diag"
	"jsphp/internal/pattern"
	"jsphp/internal/source"
	"jsphp/internal/token"
)

// Options configures a Lexer. The zero value scans with an empty table,
// so every non-empty input fails; use pattern.Default() for JavaScript.
type Options struct {
	Patterns pattern.Table
	Disallow []string      // kind names, case-insensitive
	Builder  token.Builder // nil selects token.DefaultBuilder
	Reporter diag.Reporter // может быть nil
}

func (lx *Lexer) report(code diag.Code, sp source.Span, msg string) {
	if lx.opts.Reporter != nil {
		diag.ReportError(lx.opts.Reporter, code, sp, msg).Emit()
	}
}
