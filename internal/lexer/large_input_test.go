package lexer_test

import (
	"strings"
	"testing"
	"time"

	"jsphp/internal/diag"
	"jsphp/internal/lexer"
	"jsphp/internal/pattern"
	"jsphp/internal/source"
	"jsphp/internal/token"
)

// Мегабайт ввода должен сканироваться за линейное время
func TestLargeInputScansInLinearTime(t *testing.T) {
	const repeats = 350_000
	content := strings.Repeat("ab+", repeats)
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("large.js", []byte(content))
	file := fs.Get(fileID)

	bag := diag.NewBag(4)
	lx := lexer.New(file, lexer.Options{Patterns: pattern.Default(), Reporter: &diag.BagReporter{Bag: bag}})

	start := time.Now()
	count := 0
	for {
		tok, err := lx.Next()
		if err != nil {
			t.Fatalf("unexpected error after %d tokens: %v", count, err)
		}
		if tok.IsEOF() {
			break
		}
		want := token.Variable
		if count%2 == 1 {
			want = token.Operator
		}
		if tok.Kind != want {
			t.Fatalf("token %d: kind %s, want %s", count, tok.Kind, want)
		}
		count++
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Fatalf("scanning %d bytes took %s", len(content), elapsed)
	}

	if count != 2*repeats {
		t.Fatalf("expected %d tokens, got %d", 2*repeats, count)
	}
	if bag.HasErrors() {
		t.Fatalf("did not expect diagnostics, got %v", bag.Items())
	}
	if got := lx.Consumed(); got != "ab+" {
		t.Fatalf("Consumed() = %q, want the last window only", got)
	}
	if lx.Line() != 1 {
		t.Fatalf("Line() = %d, want 1", lx.Line())
	}
}
