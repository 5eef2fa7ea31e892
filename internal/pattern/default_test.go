package pattern_test

import (
	"testing"

	"jsphp/internal/pattern"
	"jsphp/internal/token"
)

// first returns the first pattern of the default table matching input.
func first(t *testing.T, input string) (pattern.Pattern, string) {
	t.Helper()
	for _, p := range pattern.Default().Sorted() {
		if n, ok := p.Match(input); ok {
			return p, input[:n]
		}
	}
	t.Fatalf("no default pattern matches %q", input)
	return pattern.Pattern{}, ""
}

func TestDefaultCatalogue(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
		chunk string
	}{
		{"\nx", token.Newline, "\n"},
		{"// note\nx", token.Comment, "// note\n"},
		{"// tail", token.Comment, "// tail"},
		{"/* a\nb */x", token.Comment, "/* a\nb */"},
		{`"a\"b" + 1`, token.String, `"a\"b"`},
		{`'it\'s'`, token.String, `'it\'s'`},
		{"/ab+c/gi.test(s)", token.Regexp, "/ab+c/gi"},
		{"0x1F;", token.Number, "0x1F"},
		{"1.5e-3)", token.Number, "1.5e-3"},
		{".5", token.Number, ".5"},
		{"=> x", token.Lambda, "=>"},
		{"typeof x", token.Operator, "typeof"},
		{">>>= 1", token.Operator, ">>>="},
		{">>> 1", token.Operator, ">>>"},
		{"=== b", token.Operator, "==="},
		{"+= 1", token.Operator, "+="},
		{"+1", token.Operator, "+"},
		{"async () => 1", token.Keyword, "async"},
		{"as x", token.Keyword, "as"},
		{"yield* g", token.Keyword, "yield*"},
		{"index", token.Variable, "index"},
		{"typeofx", token.Variable, "typeofx"},
		{"true;", token.Constant, "true"},
		{"trueish", token.Variable, "trueish"},
		{"Math.PI", token.Constant, "Math.PI"},
		{"Math.floor", token.Variable, "Math"},
		{"FOO_BAR", token.Constant, "FOO_BAR"},
		{"Foo", token.Variable, "Foo"},
		{"$el", token.Variable, "$el"},
		{"héllo", token.Variable, "héllo"},
		{"= 1", token.Operator, "="},
		{"#", token.Operator, "#"},
	}
	for _, tt := range tests {
		p, chunk := first(t, tt.input)
		if p.Kind != tt.kind || chunk != tt.chunk {
			t.Errorf("%q: got %s %q, want %s %q", tt.input, p.Kind, chunk, tt.kind, tt.chunk)
		}
	}
}

func TestDefaultVariableHasNoPrefix(t *testing.T) {
	for _, p := range pattern.Default().All() {
		if p.Kind == token.Variable && p.ValuePrefix != "" {
			t.Fatalf("variable pattern carries prefix %q", p.ValuePrefix)
		}
	}
}

func TestKeywordsReturnsCopy(t *testing.T) {
	kw := pattern.Keywords()
	kw[0] = "changed"
	if pattern.Keywords()[0] == "changed" {
		t.Fatal("Keywords must return a copy")
	}
}
