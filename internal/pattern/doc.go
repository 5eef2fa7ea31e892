// Package pattern holds the lexical pattern table that drives the lexer.
//
// A Pattern pairs a priority with a kind and a regular expression fragment.
// The lexer walks the table in ascending priority and the first pattern that
// matches at the current position wins, whatever the match length. Callers
// resolve ambiguity by priority: ">>>=" must sit at a lower priority number
// than ">>" if both could match.
//
// Tables are values. Add, Remove and Keep return new tables and never touch
// the receiver, so a table handed to a lexer cannot change under it.
package pattern
