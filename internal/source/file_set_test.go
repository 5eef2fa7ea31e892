package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("test.js", []byte("hello world"), 0)
	id2 := fs.Add("test.js", []byte("hello universe"), 0)
	if id1 != 0 || id2 != 1 {
		t.Fatalf("expected ids 0 and 1, got %d and %d", id1, id2)
	}

	latest, ok := fs.GetLatest("test.js")
	if !ok || latest != id2 {
		t.Fatalf("GetLatest = %d, %v; want %d, true", latest, ok, id2)
	}

	// старая версия остаётся доступной
	if got := string(fs.Get(id1).Content); got != "hello world" {
		t.Errorf("first version content = %q", got)
	}
	if fs.Len() != 2 {
		t.Errorf("Len() = %d, want 2", fs.Len())
	}
}

func TestAddVirtualLineIdx(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.js", []byte("a\nb\n"))
	file := fs.Get(id)

	expected := []uint32{1, 3}
	if len(file.LineIdx) != len(expected) {
		t.Fatalf("LineIdx = %v, want %v", file.LineIdx, expected)
	}
	for i, val := range expected {
		if file.LineIdx[i] != val {
			t.Errorf("LineIdx[%d] = %d, want %d", i, file.LineIdx[i], val)
		}
	}
	if !file.Virtual() {
		t.Error("expected FileVirtual flag to be set")
	}
}

func TestAnonymousVirtualFileIsNotIndexed(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("", []byte("x"))
	if fs.Get(id).Path != "" {
		t.Fatalf("expected empty path, got %q", fs.Get(id).Path)
	}
	if _, ok := fs.GetLatest(""); ok {
		t.Fatal("anonymous file must not be indexed")
	}
}

func TestCRLFNormalization(t *testing.T) {
	normalized, changed := normalizeCRLF([]byte("a\r\nb\r\nc\r"))
	if !changed {
		t.Fatal("expected CRLF normalization to be detected")
	}
	if string(normalized) != "a\nb\nc\r" {
		t.Fatalf("normalized = %q", normalized)
	}

	same, changed := normalizeCRLF([]byte("plain\n"))
	if changed || string(same) != "plain\n" {
		t.Fatalf("unexpected change: %q, %v", same, changed)
	}
}

func TestBOMRemoval(t *testing.T) {
	withoutBOM, hadBOM := removeBOM([]byte{0xEF, 0xBB, 0xBF, 'x', '\n'})
	if !hadBOM {
		t.Fatal("expected BOM to be detected")
	}
	if string(withoutBOM) != "x\n" {
		t.Fatalf("content without BOM = %q", withoutBOM)
	}
}

func TestResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("r.js", []byte("ab\ncd\n\nα"))

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{2, LineCol{1, 3}}, // сам '\n' принадлежит строке, которую завершает
		{3, LineCol{2, 1}},
		{4, LineCol{2, 2}},
		{6, LineCol{3, 1}},
		{7, LineCol{4, 1}},
	}
	for _, tt := range tests {
		start, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
		if start != tt.want {
			t.Errorf("Resolve(%d) = %+v, want %+v", tt.off, start, tt.want)
		}
	}
}

func TestTrimmed(t *testing.T) {
	tests := []struct {
		content    string
		start, end uint32
	}{
		{"a+1", 0, 3},
		{"  \n x => x \t\n", 4, 10},
		{"", 0, 0},
		{" \n\t ", 4, 4},
	}
	fs := NewFileSet()
	for _, tt := range tests {
		f := fs.Get(fs.AddVirtual("", []byte(tt.content)))
		sp := f.Trimmed()
		if sp.Start != tt.start || sp.End != tt.end {
			t.Errorf("Trimmed(%q) = %d..%d, want %d..%d", tt.content, sp.Start, sp.End, tt.start, tt.end)
		}
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("l.js", []byte("first\nsecond\nthird")))

	cases := map[uint32]string{0: "", 1: "first", 2: "second", 3: "third", 4: ""}
	for n, want := range cases {
		if got := f.GetLine(n); got != want {
			t.Errorf("GetLine(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestLoadNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bom.js")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFa\r\nb"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "a\nb" {
		t.Errorf("content = %q, want %q", f.Content, "a\nb")
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Errorf("flags = %b, want BOM and CRLF bits", f.Flags)
	}
	if f.Virtual() {
		t.Error("loaded file must not be virtual")
	}

	if _, err := fs.Load(filepath.Join(dir, "missing.js")); err == nil {
		t.Error("expected error for missing file")
	}
}
