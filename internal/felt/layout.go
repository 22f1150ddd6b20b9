package felt

import (
	"fmt"
	"math/big"
)

// Kind is the encoding of a field within a payload.
type Kind uint8

const (
	// KindWord occupies a single word.
	KindWord Kind = iota
	// KindUint128 occupies two words, high half first.
	KindUint128
	// KindArray is a length word followed by that many element words.
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindWord:
		return "word"
	case KindUint128:
		return "uint128"
	case KindArray:
		return "array"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Field is a named slot in an event layout.
type Field struct {
	Name string
	Kind Kind
}

// Word declares a single-word field.
func Word(name string) Field { return Field{Name: name, Kind: KindWord} }

// Uint128 declares a (high, low) word pair.
func Uint128(name string) Field { return Field{Name: name, Kind: KindUint128} }

// Array declares a length-prefixed array of words.
func Array(name string) Field { return Field{Name: name, Kind: KindArray} }

// Layout is the ordered field declaration of one event payload. Field
// positions are never hard-coded: they are derived from the declaration when a
// payload is resolved, so every array shifts all fields declared after it.
type Layout struct {
	name   string
	fields []Field
	index  map[string]int
}

// NewLayout validates and builds a layout.
func NewLayout(name string, fields ...Field) (*Layout, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("layout %s: no fields", name)
	}

	index := make(map[string]int, len(fields))
	for i, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("layout %s: field %d has no name", name, i)
		}
		if f.Kind > KindArray {
			return nil, fmt.Errorf("layout %s: field %s has unknown kind %s", name, f.Name, f.Kind)
		}
		if _, dup := index[f.Name]; dup {
			return nil, fmt.Errorf("layout %s: duplicate field %s", name, f.Name)
		}
		index[f.Name] = i
	}

	return &Layout{
		name:   name,
		fields: append([]Field(nil), fields...),
		index:  index,
	}, nil
}

// MustLayout is NewLayout for package-level declarations.
func MustLayout(name string, fields ...Field) *Layout {
	l, err := NewLayout(name, fields...)
	if err != nil {
		panic(err)
	}
	return l
}

// FixedWidth is the number of words consumed when every array is empty.
func (l *Layout) FixedWidth() int {
	width := 0
	for _, f := range l.fields {
		switch f.Kind {
		case KindUint128:
			width += 2
		default:
			width++
		}
	}
	return width
}

type slot struct {
	start  int
	width  int
	length int
}

// Resolve computes the start index of every field for a payload. Words are
// canonicalized first, so 0x-prefixed, upper case or short felts read the same
// as their 64-digit form; words that are not felts are kept as is and read
// absent. A missing or unparseable length word counts as zero. Lengths are
// bounded by the payload size, so a corrupt length pushes later fields past the
// end (absent) instead of overflowing.
func (l *Layout) Resolve(words []string) Frame {
	words = canonicalWords(words)
	slots := make([]slot, len(l.fields))
	limit := len(words)
	pos := 0

	for i, f := range l.fields {
		switch f.Kind {
		case KindWord:
			slots[i] = slot{start: pos, width: 1}
		case KindUint128:
			slots[i] = slot{start: pos, width: 2}
		case KindArray:
			n := 0
			if pos < limit {
				if length, ok := ToLength(words[pos]); ok {
					n = boundLength(length, limit)
				}
			}
			slots[i] = slot{start: pos, width: 1 + n, length: n}
		}
		pos += slots[i].width
	}

	return Frame{layout: l, words: words, slots: slots, consumed: pos}
}

func canonicalWords(words []string) []string {
	if words == nil {
		return nil
	}
	out := make([]string, len(words))
	for i, w := range words {
		if c, ok := Canonical(w); ok {
			out[i] = c
			continue
		}
		out[i] = w
	}
	return out
}

func boundLength(length uint64, limit int) int {
	if length > uint64(limit) {
		return limit
	}
	return int(length)
}

// Frame is a payload resolved against a layout.
type Frame struct {
	layout   *Layout
	words    []string
	slots    []slot
	consumed int
}

// Index returns the resolved start index of a field.
func (f Frame) Index(name string) (int, bool) {
	i, ok := f.layout.index[name]
	if !ok {
		return 0, false
	}
	return f.slots[i].start, true
}

// Length returns the declared element count of an array field.
func (f Frame) Length(name string) (int, bool) {
	s, ok := f.slot(name, KindArray)
	if !ok {
		return 0, false
	}
	return s.length, true
}

// Consumed is the total number of words the layout spans for this payload.
func (f Frame) Consumed() int { return f.consumed }

// Complete reports whether the payload holds every word the layout spans.
func (f Frame) Complete() bool { return f.consumed <= len(f.words) }

func (f Frame) slot(name string, kind Kind) (slot, bool) {
	i, ok := f.layout.index[name]
	if !ok || f.layout.fields[i].Kind != kind {
		return slot{}, false
	}
	return f.slots[i], true
}

func (f Frame) at(i int) (string, bool) {
	if i < 0 || i >= len(f.words) {
		return "", false
	}
	return f.words[i], true
}

// Word returns the word of a single-word field in canonical form when it is a
// felt, verbatim otherwise.
func (f Frame) Word(name string) (string, bool) {
	s, ok := f.slot(name, KindWord)
	if !ok {
		return "", false
	}
	return f.at(s.start)
}

// Felt returns a single-word field as 0x-prefixed hex.
func (f Frame) Felt(name string) *string {
	word, ok := f.Word(name)
	if !ok {
		return nil
	}
	v, ok := ToFelt(word)
	if !ok {
		return nil
	}
	return &v
}

// Address returns a single-word field as a contract address.
func (f Frame) Address(name string) *string {
	word, ok := f.Word(name)
	if !ok {
		return nil
	}
	v, ok := ToAddress(word)
	if !ok {
		return nil
	}
	return &v
}

// Int64 returns a single-word field as a signed integer.
func (f Frame) Int64(name string) *int64 {
	word, ok := f.Word(name)
	if !ok {
		return nil
	}
	v, ok := ToInt64(word)
	if !ok {
		return nil
	}
	return &v
}

// Bool returns a single-word field as a boolean.
func (f Frame) Bool(name string) *bool {
	word, ok := f.Word(name)
	if !ok {
		return nil
	}
	v := ToBool(word)
	return &v
}

// ShortString returns a single-word field as a Cairo short string.
func (f Frame) ShortString(name string) *string {
	word, ok := f.Word(name)
	if !ok {
		return nil
	}
	v, ok := ToShortString(word)
	if !ok {
		return nil
	}
	return &v
}

// Uint128 returns a (high, low) field as an arbitrary-precision integer.
func (f Frame) Uint128(name string) *big.Int {
	s, ok := f.slot(name, KindUint128)
	if !ok {
		return nil
	}
	high, ok := f.at(s.start)
	if !ok {
		return nil
	}
	low, ok := f.at(s.start + 1)
	if !ok {
		return nil
	}
	v, ok := ToUint128(high, low)
	if !ok {
		return nil
	}
	return v
}

// Felts returns the elements of an array field that are present in the
// payload. Elements that are not valid hex are dropped. The result is never nil
// for a declared array field.
func (f Frame) Felts(name string) []string {
	return f.array(name, ToFelt)
}

// Addresses is Felts for arrays of contract addresses.
func (f Frame) Addresses(name string) []string {
	return f.array(name, ToAddress)
}

func (f Frame) array(name string, conv func(string) (string, bool)) []string {
	s, ok := f.slot(name, KindArray)
	if !ok {
		return nil
	}
	out := make([]string, 0, s.length)
	for i := s.start + 1; i <= s.start+s.length; i++ {
		word, ok := f.at(i)
		if !ok {
			break
		}
		if v, ok := conv(word); ok {
			out = append(out, v)
		}
	}
	return out
}
