package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/mattn/go-runewidth"

	"jsphp/internal/source"
	"jsphp/internal/token"
)

type TokenOutput struct {
	Type  string            `json:"type"`
	Kind  string            `json:"kind"`
	Value *string           `json:"value,omitempty"`
	Data  map[string]string `json:"data,omitempty"` // остальные поля кроме value
	Line  uint32            `json:"line"`
	Span  source.Span       `json:"span"`
}

func tokenOutput(tok token.Token) TokenOutput {
	out := TokenOutput{
		Type: tok.Type,
		Kind: tok.Kind.String(),
		Line: tok.Line,
		Span: tok.Span,
	}
	for k, v := range tok.Data {
		if k == "value" {
			val := v
			out.Value = &val
			continue
		}
		if out.Data == nil {
			out.Data = make(map[string]string, len(tok.Data))
		}
		out.Data[k] = v
	}
	return out
}

// typeColumn is the display width of the type column.
const typeColumn = 12

// FormatTokensPretty выводит токены в человекочитаемом формате
func FormatTokensPretty(w io.Writer, tokens []token.Token, fs *source.FileSet) error {
	for i, tok := range tokens {
		if tok.IsEOF() {
			break
		}
		startPos, endPos := fs.Resolve(tok.Span)

		if _, err := fmt.Fprintf(w, "%4d: %-9s %s", i+1, tok.Kind, runewidth.FillRight(tok.Type, typeColumn)); err != nil {
			return err
		}
		if tok.Mode == token.ModeValue {
			fmt.Fprintf(w, " %q", tok.Value())
		}
		fmt.Fprintf(w, " line %d at %d:%d-%d:%d", tok.Line, startPos.Line, startPos.Col, endPos.Line, endPos.Col)

		extra := slices.Sorted(maps.Keys(tok.Data))
		for _, k := range extra {
			if k != "value" {
				fmt.Fprintf(w, " %s=%q", k, tok.Data[k])
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// TokensOutput converts tokens for JSON output, stopping at EOF.
func TokensOutput(tokens []token.Token) []TokenOutput {
	output := make([]TokenOutput, 0, len(tokens))
	for _, tok := range tokens {
		if tok.IsEOF() {
			break
		}
		output = append(output, tokenOutput(tok))
	}
	return output
}

// FormatTokensJSON выводит токены в JSON формате
func FormatTokensJSON(w io.Writer, tokens []token.Token) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(TokensOutput(tokens))
}

// FileTokensOutput groups the tokens of one file in directory output.
type FileTokensOutput struct {
	Path   string        `json:"path"`
	Tokens []TokenOutput `json:"tokens"`
	Cached bool          `json:"cached,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// FormatFileTokensJSON writes one JSON array with an entry per file.
func FormatFileTokensJSON(w io.Writer, files []FileTokensOutput) error {
	if files == nil {
		files = []FileTokensOutput{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(files)
}
