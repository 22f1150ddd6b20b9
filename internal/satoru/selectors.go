package satoru

import (
	"fmt"

	"satoruIndexer/internal/felt"
	"satoruIndexer/internal/model"
)

// SelectorTable maps selector words to the variants of one enum. Tables are
// built once at package init and never modified.
type SelectorTable[T comparable] struct {
	name      string
	variants  map[string]T
	selectors map[T]string
}

func newSelectorTable[T comparable](name string, ordered []T) *SelectorTable[T] {
	t := &SelectorTable[T]{
		name:      name,
		variants:  make(map[string]T, len(ordered)),
		selectors: make(map[T]string, len(ordered)),
	}
	for i, v := range ordered {
		word := fmt.Sprintf("%0*x", felt.WordLength, i)
		t.variants[word] = v
		t.selectors[v] = word
	}
	return t
}

var (
	OrderTypes                = newSelectorTable("OrderType", model.OrderTypes())
	DecreasePositionSwapTypes = newSelectorTable("DecreasePositionSwapType", model.DecreasePositionSwapTypes())
	SecondaryOrderTypes       = newSelectorTable("SecondaryOrderType", model.SecondaryOrderTypes())
)

// Name returns the enum name of the table.
func (t *SelectorTable[T]) Name() string { return t.name }

// Len returns the number of mapped variants.
func (t *SelectorTable[T]) Len() int { return len(t.variants) }

// Resolve returns the variant bound to a selector word. Unmapped or malformed
// selectors resolve to ok=false.
func (t *SelectorTable[T]) Resolve(word string) (T, bool) {
	var zero T
	canonical, ok := felt.Canonical(word)
	if !ok {
		return zero, false
	}
	v, ok := t.variants[canonical]
	return v, ok
}

// Selector returns the canonical selector word of a variant.
func (t *SelectorTable[T]) Selector(v T) (string, bool) {
	word, ok := t.selectors[v]
	return word, ok
}

// Field resolves a single-word field of a frame through the table.
func (t *SelectorTable[T]) Field(f felt.Frame, name string) *T {
	word, ok := f.Word(name)
	if !ok {
		return nil
	}
	v, ok := t.Resolve(word)
	if !ok {
		return nil
	}
	return &v
}
