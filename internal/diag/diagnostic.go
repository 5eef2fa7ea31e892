package diag

import "jsphp/internal/source"

// Severity orders diagnostics: SevError > SevWarning > SevInfo.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

var severityNames = [...]string{SevInfo: "INFO", SevWarning: "WARNING", SevError: "ERROR"}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "UNKNOWN"
}

// Note is a secondary span with its own message.
type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is one reported problem.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Primary: primary, Message: msg}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

// WithNote returns a copy of d with one more note.
func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes[:len(d.Notes):len(d.Notes)], Note{Span: sp, Msg: msg})
	return d
}

// dedupKey identifies a diagnostic for deduplication: code and primary span, optionally
// narrowed by severity and message.
type dedupKey struct {
	code Code
	sev  Severity
	span source.Span
	msg  string
}

func (d Diagnostic) key(exact bool) dedupKey {
	k := dedupKey{code: d.Code, span: d.Primary}
	if exact {
		k.sev, k.msg = d.Severity, d.Message
	}
	return k
}
