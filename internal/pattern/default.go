package pattern

import "jsphp/internal/token"

// identifier character classes; \x{7f}-\x{10FFFF} admits any non-ASCII letter
const (
	identStart = `a-zA-Z\\\x{7f}-\x{10FFFF}$_`
	identRest  = `a-zA-Z0-9\\_\x{7f}-\x{10FFFF}$`
	upperRest  = `A-Z0-9\\_\x{7f}-\x{10FFFF}`
)

var keywords = []string{
	"as", "async", "await", "break", "case", "catch", "class", "const",
	"continue", "debugger", "default", "do", "else", "enum", "export",
	"extends", "finally", "for", "from", "function", "get", "if",
	"implements", "import", "in", "instanceof", "interface", "let", "new",
	"of", "package", "private", "protected", "public", "return", "set",
	"static", "super", "switch", "throw", "try", "var", "while", "with",
	"yield", "yield*",
}

// Keywords returns the default keyword list.
func Keywords() []string {
	out := make([]string, len(keywords))
	copy(out, keywords)
	return out
}

// Default returns the JavaScript catalogue.
func Default() Table {
	return NewTable(
		MustNew(10, token.Newline, `\n`),
		MustNew(20, token.Comment, `//[^\n]*\n?|/\*[\s\S]*?\*/`),
		MustNew(30, token.String, `"(?:\\[\s\S]|[^"\\])*"|'(?:\\[\s\S]|[^'\\])*'`),
		MustNew(35, token.Regexp, `/(?:\\.|[^/\\\n])+/[gimsuy]*`),
		MustNew(40, token.Number, `0[bB][01]+|0[oO][0-7]+|0[xX][0-9a-fA-F]+|(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?`),
		MustNew(50, token.Lambda, `=>`),
		MustLiterals(60, token.Operator, []string{"delete", "typeof", "void"}, WholeWord()),
		MustLiterals(70, token.Operator, []string{">>>=", "<<=", ">>=", "**="}),
		MustLiterals(80, token.Operator, []string{"++", "--", "&&", "||", "**", ">>>", "<<", ">>"}),
		MustLiterals(90, token.Operator, []string{"===", "!==", ">=", "<=", "<>", "!=", "==", ">", "<"}),
		MustNew(100, token.Operator, `[|^&%/*+\-]=`),
		MustNew(110, token.Operator, `[\[\]{}():./*~!^|&%?,;+\-]`),
		MustLiterals(120, token.Keyword, keywords, WholeWord()),
		MustNew(130, token.Constant, `null|undefined|Infinity|NaN|true|false|Math\.[A-Z][A-Z0-9_]*|[A-Z][`+upperRest+`]*|[\\\x{7f}-\x{10FFFF}_][`+upperRest+`]*[A-Z][`+upperRest+`]*`, WholeWord()),
		MustNew(130, token.Variable, `[`+identStart+`][`+identRest+`]*`),
		MustNew(140, token.Operator, `[\s\S]`),
	)
}
