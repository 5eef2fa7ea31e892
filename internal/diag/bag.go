package diag

import (
	"cmp"
	"math"
	"slices"
)

// Bag collects diagnostics up to a fixed limit.
type Bag struct {
	items []Diagnostic
	max   uint16
}

// NewBag создаёт Bag с лимитом limit (обрезается до [0, math.MaxUint16]).
func NewBag(limit int) *Bag {
	limit = min(max(limit, 0), math.MaxUint16)
	return &Bag{
		items: make([]Diagnostic, 0, min(limit, 64)),
		max:   uint16(limit),
	}
}

// Add reports false when the bag is full and d was dropped.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= int(b.max) {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) HasErrors() bool { return b.atLeast(SevError) }

// HasWarnings is true for warnings and errors alike.
func (b *Bag) HasWarnings() bool { return b.atLeast(SevWarning) }

func (b *Bag) atLeast(sev Severity) bool {
	return slices.ContainsFunc(b.items, func(d Diagnostic) bool { return d.Severity >= sev })
}

func (b *Bag) Len() int { return len(b.items) }

// Items возвращает внутренний срез, менять его нельзя.
func (b *Bag) Items() []Diagnostic { return b.items }

// Merge appends other and raises the limit so nothing is lost.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	if total := min(len(b.items)+len(other.items), math.MaxUint16); total > int(b.max) {
		b.max = uint16(total)
	}
	b.items = append(b.items, other.items...)
}

// Sort orders by file, start, end, then severity (errors first) and code.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		return cmp.Or(
			cmp.Compare(x.Primary.File, y.Primary.File),
			cmp.Compare(x.Primary.Start, y.Primary.Start),
			cmp.Compare(x.Primary.End, y.Primary.End),
			cmp.Compare(y.Severity, x.Severity),
			cmp.Compare(x.Code, y.Code),
		)
	})
}

// Dedup keeps the first diagnostic per code and primary span.
func (b *Bag) Dedup() {
	seen := make(map[dedupKey]struct{}, len(b.items))
	b.Filter(func(d Diagnostic) bool {
		k := d.key(false)
		if _, dup := seen[k]; dup {
			return false
		}
		seen[k] = struct{}{}
		return true
	})
}

// Filter оставляет только диагностики, для которых keep возвращает true.
func (b *Bag) Filter(keep func(Diagnostic) bool) {
	b.items = slices.DeleteFunc(b.items, func(d Diagnostic) bool { return !keep(d) })
}
