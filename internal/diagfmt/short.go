package diagfmt

import (
	"cmp"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"jsphp/internal/diag"
	"jsphp/internal/source"
)

// ShortLine is one rendered line of the short format.
type ShortLine struct {
	Severity string // error|warning|info|note
	Code     string
	Path     string
	Line     uint32
	Col      uint32
	Message  string
}

func (l ShortLine) String() string {
	return fmt.Sprintf("%s %s %s:%d:%d %s", l.Severity, l.Code, l.Path, l.Line, l.Col, l.Message)
}

// ShortLines flattens diagnostics (and optionally their notes) into lines
// sorted by path, position, severity, code and message.
func ShortLines(items []diag.Diagnostic, fs *source.FileSet, opts ShortOpts) []ShortLine {
	if fs == nil {
		return nil
	}
	var lines []ShortLine
	add := func(sev, code string, sp source.Span, msg string) {
		f := fs.Get(sp.File)
		path := filepath.ToSlash(displayPath(formatPath(fs, f, opts.PathMode)))
		start, _ := fs.Resolve(sp)
		lines = append(lines, ShortLine{Severity: sev, Code: code, Path: path, Line: start.Line, Col: start.Col, Message: oneLine(msg)})
	}
	for _, d := range items {
		code := d.Code.ID()
		add(strings.ToLower(d.Severity.String()), code, d.Primary, d.Message)
		if opts.IncludeNotes {
			for _, n := range d.Notes {
				add("note", code, n.Span, n.Msg)
			}
		}
	}
	slices.SortStableFunc(lines, func(a, b ShortLine) int {
		return cmp.Or(
			cmp.Compare(a.Path, b.Path),
			cmp.Compare(a.Line, b.Line),
			cmp.Compare(a.Col, b.Col),
			cmp.Compare(a.Severity, b.Severity),
			cmp.Compare(a.Code, b.Code),
			cmp.Compare(a.Message, b.Message),
		)
	})
	return lines
}

// Short prints one line per diagnostic.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts ShortOpts) error {
	if bag == nil {
		return nil
	}
	for _, l := range ShortLines(bag.Items(), fs, opts) {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

func oneLine(msg string) string {
	return strings.Join(strings.Fields(msg), " ")
}
