package diagfmt

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"jsphp/internal/diag"
	"jsphp/internal/source"
)

func TestShortLines(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")
	user := fs.Add("/workspace/src/sample.js", []byte("a\nb\n"), 0)
	dep := fs.Add("/workspace/node_modules/dep/index.js", []byte("x\n"), 0)

	items := []diag.Diagnostic{
		diag.NewError(diag.LexUnrecognizedInput, source.Span{File: user, Start: 0, End: 1}, "first line\nsecond").
			WithNote(source.Span{File: dep}, "dependency note").
			WithNote(source.Span{File: user, Start: 2, End: 3}, "note line"),
		diag.New(diag.SevWarning, diag.IOCacheError, source.Span{File: user, Start: 2, End: 3}, "cache"),
	}

	got := ShortLines(items, fs, ShortOpts{IncludeNotes: true, PathMode: PathModeRelative})
	var rendered []string
	for _, l := range got {
		rendered = append(rendered, l.String())
	}
	want := []string{
		"note LEX1007 node_modules/dep/index.js:1:1 dependency note",
		"error LEX1007 src/sample.js:1:1 first line second",
		"note LEX1007 src/sample.js:2:1 note line",
		"warning IO4002 src/sample.js:2:1 cache",
	}
	if diff := cmp.Diff(want, rendered); diff != "" {
		t.Fatalf("lines (-want +got):\n%s", diff)
	}

	bare := ShortLines(items, fs, ShortOpts{PathMode: PathModeBasename})
	if len(bare) != 2 || bare[0].Path != "sample.js" {
		t.Fatalf("notes must be dropped without IncludeNotes: %+v", bare)
	}
}

func TestShort(t *testing.T) {
	bag, fs := sampleBag()
	var buf bytes.Buffer
	if err := Short(&buf, bag, fs, ShortOpts{}); err != nil {
		t.Fatal(err)
	}
	want := "info OBS6001 sample.js:1:1 timings\nerror LEX1006 sample.js:2:1 keyword is disallowed.\n"
	if got := buf.String(); got != want {
		t.Fatalf("short output:\n%s", got)
	}
	if err := Short(&buf, nil, fs, ShortOpts{}); err != nil {
		t.Fatal(err)
	}
}
