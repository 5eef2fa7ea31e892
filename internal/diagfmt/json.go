package diagfmt

import (
	"encoding/json"
	"io"
	"strings"

	"jsphp/internal/diag"
	"jsphp/internal/source"
)

// PositionJSON is one end of a span. Line and Col are 1-based and only set
// when positions are requested.
type PositionJSON struct {
	Offset uint32 `json:"offset"`
	Line   uint32 `json:"line,omitempty"`
	Col    uint32 `json:"col,omitempty"`
}

// LocationJSON is a resolved span.
type LocationJSON struct {
	File  string       `json:"file"`
	Start PositionJSON `json:"start"`
	End   PositionJSON `json:"end"`
}

// NoteJSON is a secondary message.
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// DiagnosticJSON is the wire form of a diag.Diagnostic.
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Title    string       `json:"title"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// DiagnosticsOutput is the document written by JSON.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Errors      int              `json:"errors"`
	Warnings    int              `json:"warnings"`
}

type locator struct {
	fs        *source.FileSet
	mode      PathMode
	positions bool
}

func (l locator) locate(span source.Span) LocationJSON {
	loc := LocationJSON{
		File:  formatPath(l.fs, l.fs.Get(span.File), l.mode),
		Start: PositionJSON{Offset: span.Start},
		End:   PositionJSON{Offset: span.End},
	}
	if l.positions {
		start, end := l.fs.Resolve(span)
		loc.Start.Line, loc.Start.Col = start.Line, start.Col
		loc.End.Line, loc.End.Col = end.Line, end.Col
	}
	return loc
}

// BuildDiagnosticsOutput converts the bag without serialising it. Timing
// diagnostics always keep their notes, which carry the payload.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	if opts.Max > 0 && opts.Max < len(items) {
		items = items[:opts.Max]
	}
	loc := locator{fs: fs, mode: opts.PathMode, positions: opts.IncludePositions}

	out := DiagnosticsOutput{Diagnostics: make([]DiagnosticJSON, 0, len(items))}
	for _, d := range items {
		entry := DiagnosticJSON{
			Severity: strings.ToLower(d.Severity.String()),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Location: loc.locate(d.Primary),
		}
		if opts.IncludeNotes || d.Code == diag.ObsTimings {
			for _, n := range d.Notes {
				entry.Notes = append(entry.Notes, NoteJSON{Message: n.Msg, Location: loc.locate(n.Span)})
			}
		}
		switch d.Severity {
		case diag.SevError:
			out.Errors++
		case diag.SevWarning:
			out.Warnings++
		}
		out.Diagnostics = append(out.Diagnostics, entry)
	}
	out.Count = len(out.Diagnostics)
	return out
}

// JSON writes the bag as one indented document.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDiagnosticsOutput(bag, fs, opts))
}
