package indexer

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"satoruIndexer/internal/felt"
)

// ParseAddresses validates contract addresses and returns them in canonical
// word form. Duplicates are dropped.
func ParseAddresses(inputs []string) ([]string, error) {
	return parseFelts("address", inputs)
}

// ParseKeys validates event keys and returns them in canonical word form.
// Duplicates are dropped.
func ParseKeys(inputs []string) ([]string, error) {
	return parseFelts("event key", inputs)
}

func parseFelts(kind string, inputs []string) ([]string, error) {
	out := make([]string, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))
	for _, input := range inputs {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		word, ok := felt.Canonical(input)
		if !ok {
			return nil, fmt.Errorf("invalid %s: %s", kind, input)
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		out = append(out, word)
	}
	return out, nil
}

// rpcFelt renders a canonical word the way node filters expect: 0x-prefixed
// without leading zeros.
func rpcFelt(word string) string {
	v, ok := new(big.Int).SetString(word, 16)
	if !ok {
		return word
	}
	return hexutil.EncodeBig(v)
}
