package token_test

import (
	"testing"

	"jsphp/internal/source"
	"jsphp/internal/token"
)

func TestDefaultBuilder(t *testing.T) {
	sp := source.Span{Start: 0, End: 3}
	val := token.DefaultBuilder{}.Build(token.BuildSpec{
		Type: "number", Kind: token.Number, Mode: token.ModeValue, Value: "12", Raw: " 12", Span: sp, Line: 1,
	})
	if val.Value() != "12" || val.Span != sp || val.Line != 1 {
		t.Errorf("unexpected value token %+v", val)
	}
	if _, ok := val.Data["raw"]; ok {
		t.Error("default builder must not keep raw text")
	}

	typ := token.DefaultBuilder{}.Build(token.BuildSpec{Type: "if", Kind: token.Keyword, Mode: token.ModeType})
	if typ.Data != nil {
		t.Errorf("type token data = %v, want nil", typ.Data)
	}
}

func TestRawBuilderKeepsChunk(t *testing.T) {
	tok := token.RawBuilder{}.Build(token.BuildSpec{Type: "+", Kind: token.Operator, Mode: token.ModeType, Raw: "  +"})
	if tok.Data["raw"] != "  +" {
		t.Errorf("raw = %q", tok.Data["raw"])
	}
}

func TestBuilderRegistry(t *testing.T) {
	if b, ok := token.LookupBuilder(""); !ok || b != (token.DefaultBuilder{}) {
		t.Fatalf("empty name should select the default builder, got %v %v", b, ok)
	}
	if _, ok := token.LookupBuilder("RAW"); !ok {
		t.Fatal("raw builder should be registered")
	}

	upper := token.BuilderFunc(func(req token.BuildSpec) token.Token {
		tok := token.DefaultBuilder{}.Build(req)
		tok.Type = "X" + tok.Type
		return tok
	})
	if err := token.RegisterBuilder("prefixing-test", upper); err != nil {
		t.Fatalf("RegisterBuilder: %v", err)
	}
	if err := token.RegisterBuilder("prefixing-test", upper); err == nil {
		t.Fatal("expected duplicate registration error")
	}
	b, ok := token.LookupBuilder("prefixing-test")
	if !ok {
		t.Fatal("registered builder not found")
	}
	if got := b.Build(token.BuildSpec{Type: "+", Mode: token.ModeType}).Type; got != "X+" {
		t.Errorf("custom builder type = %q", got)
	}
}
