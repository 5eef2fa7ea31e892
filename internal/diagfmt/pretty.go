package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"jsphp/internal/diag"
	"jsphp/internal/source"
)

type palette struct {
	err, warn, info, note, gutter, caret, bold *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		note:   mk(color.FgBlue, color.Bold),
		gutter: mk(color.FgBlue),
		caret:  mk(color.FgRed, color.Bold),
		bold:   mk(color.Bold),
	}
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil || fs == nil {
		return
	}
	pal := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		f := fs.Get(d.Primary.File)
		start, end := fs.Resolve(d.Primary)
		path := displayPath(formatPath(fs, f, opts.PathMode))

		fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
			path, start.Line, start.Col,
			pal.severity(d.Severity).Sprint(d.Severity.String()),
			pal.bold.Sprint(d.Code.ID()),
			d.Message,
		)
		writeExcerpt(w, f, start, end, opts, pal)

		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			nf := fs.Get(n.Span.File)
			ns, _ := fs.Resolve(n.Span)
			fmt.Fprintf(w, "  %s %s:%d:%d: %s\n",
				pal.note.Sprint("note:"),
				displayPath(formatPath(fs, nf, opts.PathMode)), ns.Line, ns.Col, n.Msg)
		}
	}
}

func writeExcerpt(w io.Writer, f *source.File, start, end source.LineCol, opts PrettyOpts, pal palette) {
	first := uint32(1)
	if ctx := uint32(max(opts.Context, 0)); start.Line > ctx {
		first = start.Line - ctx
	}
	gutterWidth := len(fmt.Sprint(start.Line))

	for ln := first; ln <= start.Line; ln++ {
		text := expandTabs(f.GetLine(ln))
		if opts.Width > 0 {
			text = runewidth.Truncate(text, int(opts.Width), "…")
		}
		fmt.Fprintf(w, "%s %s\n", pal.gutter.Sprintf("%*d |", gutterWidth, ln), text)
	}

	raw := f.GetLine(start.Line)
	prefix := runeSlice(raw, int(start.Col)-1)
	width := 1
	if end.Line == start.Line && end.Col > start.Col {
		seg := runeSlice(raw[len(prefix):], int(end.Col-start.Col))
		width = max(runewidth.StringWidth(expandTabs(seg)), 1)
	}
	pad := strings.Repeat(" ", runewidth.StringWidth(expandTabs(prefix)))
	marker := "^" + strings.Repeat("~", max(width-1, 0))
	fmt.Fprintf(w, "%s %s%s\n", pal.gutter.Sprintf("%*s |", gutterWidth, ""), pad, pal.caret.Sprint(marker))
}

// runeSlice returns the prefix of s that covers n bytes, cut at a rune boundary.
func runeSlice(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if n >= len(s) {
		return s
	}
	for n > 0 && !utf8RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func utf8RuneStart(b byte) bool { return b&0xC0 != 0x80 }

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}
