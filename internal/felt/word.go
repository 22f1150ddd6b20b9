// Package felt decodes the flat word payloads of Starknet events.
//
// A word is a field element rendered as 64 lowercase hex characters without a
// prefix. Every conversion here is total: a word that cannot be converted yields
// ok=false and callers treat the field as absent.
package felt

import (
	"bytes"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// WordLength is the number of hex characters in a canonical word.
const WordLength = 64

var (
	zeroWord = strings.Repeat("0", WordLength)
	oneWord  = strings.Repeat("0", WordLength-1) + "1"
)

// Canonical normalizes a felt string (optional 0x prefix, any case, unpadded)
// into a canonical word.
func Canonical(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	if s == "" || len(s) > WordLength || !isHex(s) {
		return "", false
	}
	s = strings.ToLower(s)
	return zeroWord[:WordLength-len(s)] + s, true
}

// SplitWords splits the comma-joined wire form of an event payload. Empty
// entries are kept so that positions never shift.
func SplitWords(data string) []string {
	if strings.TrimSpace(data) == "" {
		return nil
	}
	parts := strings.Split(data, ",")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}

// ToFelt renders a word as 0x-prefixed, left-padded lowercase hex.
func ToFelt(word string) (string, bool) {
	if word == "" || len(word) > WordLength || !isHex(word) {
		return "", false
	}
	return common.HexToHash(word).Hex(), true
}

// ToAddress renders a contract address word. Starknet addresses are felts, so
// the full 32-byte width is kept.
func ToAddress(word string) (string, bool) {
	return ToFelt(word)
}

// ToInt64 parses a word as a radix-16 signed 64-bit integer.
func ToInt64(word string) (int64, bool) {
	if !isHex(word) {
		return 0, false
	}
	v, err := strconv.ParseInt(word, 16, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ToBool reports whether the word encodes 1. The zero word and every other
// value decode to false.
func ToBool(word string) bool {
	return word == oneWord
}

// ToUint128 rebuilds a 128-bit value split across two words as
// (high << 64) + low. Each half must parse as an unsigned 64-bit hex integer.
func ToUint128(high, low string) (*big.Int, bool) {
	h, err := strconv.ParseUint(high, 16, 64)
	if err != nil {
		return nil, false
	}
	l, err := strconv.ParseUint(low, 16, 64)
	if err != nil {
		return nil, false
	}

	v := new(big.Int).SetUint64(h)
	v.Lsh(v, 64)
	return v.Add(v, new(big.Int).SetUint64(l)), true
}

// ToShortString decodes a Cairo short string (ASCII packed into a felt).
func ToShortString(word string) (string, bool) {
	if word == "" || len(word) > WordLength || !isHex(word) {
		return "", false
	}
	raw := bytes.TrimLeft(common.FromHex(word), "\x00")
	for _, b := range raw {
		if b < 0x20 || b > 0x7e {
			return "", false
		}
	}
	return string(raw), true
}

// ToLength parses an array length word.
func ToLength(word string) (uint64, bool) {
	if !isHex(word) {
		return 0, false
	}
	n, err := strconv.ParseUint(word, 16, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
