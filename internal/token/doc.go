// Package token defines lexical token kinds, the token record and the builders
// that assemble tokens for the lexer.
// Invariants:
//   - A type token's Type is its own trimmed matched text ("if", "+", "=>").
//   - A value token's Type is its kind name and Data["value"] holds the trimmed text.
//   - Token.Span covers the whole consumed chunk, leading whitespace included, so
//     concatenating spans in emission order rebuilds the scanned input.
//   - Kinds are a closed set extended only through Register at startup.
package token
