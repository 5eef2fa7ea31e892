package pattern

import (
	"cmp"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"slices"

	"jsphp/internal/token"
)

// Table is an immutable collection of patterns.
// The zero value is an empty table.
type Table struct {
	patterns []Pattern // insertion order
	sorted   []Pattern // ascending priority, insertion order on ties
}

// NewTable builds a table from patterns in the given order.
func NewTable(patterns ...Pattern) Table {
	return makeTable(slices.Clone(patterns))
}

func makeTable(patterns []Pattern) Table {
	sorted := slices.Clone(patterns)
	slices.SortStableFunc(sorted, func(a, b Pattern) int {
		return cmp.Compare(a.Priority, b.Priority)
	})
	return Table{patterns: patterns, sorted: sorted}
}

// Add returns a new table with patterns appended after the existing ones.
func (t Table) Add(patterns ...Pattern) Table {
	if len(patterns) == 0 {
		return t
	}
	next := make([]Pattern, 0, len(t.patterns)+len(patterns))
	next = append(next, t.patterns...)
	next = append(next, patterns...)
	return makeTable(next)
}

// Remove returns a new table without the patterns for which drop returns true.
func (t Table) Remove(drop func(Pattern) bool) Table {
	return t.Keep(func(p Pattern) bool { return !drop(p) })
}

// Keep returns a new table with only the patterns for which keep returns true.
func (t Table) Keep(keep func(Pattern) bool) Table {
	next := make([]Pattern, 0, len(t.patterns))
	for _, p := range t.patterns {
		if keep(p) {
			next = append(next, p)
		}
	}
	return makeTable(next)
}

// Sorted returns a copy of the patterns in scan order.
func (t Table) Sorted() []Pattern { return slices.Clone(t.sorted) }

// All returns a copy of the patterns in insertion order.
func (t Table) All() []Pattern { return slices.Clone(t.patterns) }

func (t Table) Len() int { return len(t.patterns) }

// Kinds lists the distinct kinds of the table in scan order.
func (t Table) Kinds() []token.Kind {
	seen := make(map[token.Kind]struct{}, len(t.sorted))
	out := make([]token.Kind, 0, len(t.sorted))
	for _, p := range t.sorted {
		if _, ok := seen[p.Kind]; ok {
			continue
		}
		seen[p.Kind] = struct{}{}
		out = append(out, p.Kind)
	}
	return out
}

// Fingerprint hashes the table in scan order. Two tables with the same
// fingerprint scan any input identically.
func (t Table) Fingerprint() string {
	h := sha256.New()
	var buf [8]byte
	writeStr := func(s string) {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(s)))
		h.Write(buf[:])
		h.Write([]byte(s))
	}
	for _, p := range t.sorted {
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(p.Priority)))
		h.Write(buf[:])
		writeStr(p.Kind.String())
		writeStr(p.Mode.String())
		writeStr(p.Expr)
		writeStr(p.ValuePrefix)
		if p.Literals != nil {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
		if p.WordBoundary {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
