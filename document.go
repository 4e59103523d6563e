package medspan

import (
	"cmp"
	"fmt"
	"slices"
)

// assemble wraps extracted spans and the original text into a Document.
// Entities are sorted by Start, then Stop, then Label so output order is
// deterministic regardless of which backend produced the spans, and every
// entity's Text is verified against the live rune slice of the source.
//
// A verification failure means an offset-conversion bug upstream. That is a
// programmer error, not a recoverable condition, so assemble panics with
// enough detail to pinpoint the span.
func assemble(text string, ents []Entity) *Document {
	sorted := make([]Entity, len(ents))
	copy(sorted, ents)
	slices.SortStableFunc(sorted, func(a, b Entity) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Stop, b.Stop); c != 0 {
			return c
		}
		return cmp.Compare(string(a.Label), string(b.Label))
	})

	total := runeLen(text)
	for _, e := range sorted {
		if e.Start < 1 || e.Stop < e.Start || e.Stop > total {
			panic(fmt.Sprintf("medspan: entity span out of range: %s over %d runes", e, total))
		}
		if got := sliceRunes(text, e.Start, e.Stop); got != e.Text {
			panic(fmt.Sprintf("medspan: entity text mismatch: %s, source slice is %q", e, got))
		}
	}

	return &Document{Text: text, Entities: sorted}
}
