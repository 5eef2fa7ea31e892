package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"jsphp/internal/diag"
	"jsphp/internal/source"
)

func sampleBag() (*diag.Bag, *source.FileSet) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("sample.js", []byte("a\nif b"))
	bag := diag.NewBag(4)
	bag.Add(diag.NewError(diag.LexDisallowedToken, source.Span{File: id, Start: 2, End: 4}, "keyword is disallowed.").
		WithNote(source.Span{File: id, Start: 0, End: 1}, "previous token"))
	bag.Add(diag.New(diag.SevInfo, diag.ObsTimings, source.Span{File: id}, "timings").
		WithNote(source.Span{File: id}, "lex: 1ms"))
	return bag, fs
}

func TestBuildDiagnosticsOutput(t *testing.T) {
	bag, fs := sampleBag()
	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{IncludePositions: true})
	if out.Count != 2 || out.Errors != 1 || out.Warnings != 0 {
		t.Fatalf("counts = %d/%d/%d", out.Count, out.Errors, out.Warnings)
	}
	want := DiagnosticJSON{
		Severity: "error",
		Code:     "LEX1006",
		Title:    "Disallowed token",
		Message:  "keyword is disallowed.",
		Location: LocationJSON{
			File:  "sample.js",
			Start: PositionJSON{Offset: 2, Line: 2, Col: 1},
			End:   PositionJSON{Offset: 4, Line: 2, Col: 3},
		},
	}
	if diff := cmp.Diff(want, out.Diagnostics[0]); diff != "" {
		t.Fatalf("diagnostic mismatch (-want +got):\n%s", diff)
	}
	if len(out.Diagnostics[1].Notes) != 1 {
		t.Fatal("timing notes are always included")
	}
}

func TestBuildDiagnosticsOutputMaxAndNotes(t *testing.T) {
	bag, fs := sampleBag()
	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 1, IncludeNotes: true})
	if out.Count != 1 || len(out.Diagnostics[0].Notes) != 1 {
		t.Fatalf("unexpected output %+v", out)
	}
	if out.Diagnostics[0].Location.Start.Line != 0 {
		t.Fatal("positions must be omitted unless requested")
	}
}

func TestJSONEncodes(t *testing.T) {
	bag, fs := sampleBag()
	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{}); err != nil {
		t.Fatal(err)
	}
	var decoded DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if decoded.Count != 2 || decoded.Diagnostics[0].Location.End.Offset != 4 {
		t.Fatalf("decoded = %+v", decoded)
	}
}

func TestParsePathMode(t *testing.T) {
	for _, mode := range []PathMode{PathModeAuto, PathModeAbsolute, PathModeRelative, PathModeBasename} {
		got, err := ParsePathMode(mode.String())
		if err != nil || got != mode {
			t.Errorf("ParsePathMode(%q) = %v, %v", mode, got, err)
		}
	}
	if got, err := ParsePathMode(""); err != nil || got != PathModeAuto {
		t.Errorf("empty mode = %v, %v", got, err)
	}
	if _, err := ParsePathMode("short"); err == nil {
		t.Error("expected an error")
	}
}
