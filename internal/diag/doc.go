// Package diag defines the diagnostic model shared by the lexer, the config
// loader and the driver.
//
// # Purpose
//
//   - Provide deterministic, serialisable records for scan failures, config
//     problems, cache warnings and timing reports.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting layers.
//
// Package diag does not perform any formatting or IO. Rendering lives in
// internal/diagfmt, collection per file lives in internal/driver.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity: Info, Warning or Error (severity.go).
//   - Code: compact numeric identifier with a stable string form (codes.go),
//     e.g. LEX1006 for a disallowed token.
//   - Message: short human text. Lexer messages keep the exact wording the
//     scan error carries.
//   - Primary: the source.Span pointing to the issue.
//   - Notes: optional secondary spans/messages. Timing diagnostics carry their
//     JSON payload as a note.
//
// # Emitting diagnostics
//
// Producers use a Reporter. ReportError/ReportWarning/ReportInfo return a
// ReportBuilder that can chain WithNote before Emit. BagReporter aggregates
// into a Bag, which supports sorting, deduplication and filtering;
// DedupReporter drops repeats of the same code at the same span.
//
// Rendering lives in diagfmt: Pretty, JSON and the one-line Short format.
package diag
