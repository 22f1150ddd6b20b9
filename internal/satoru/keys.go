package satoru

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// EventKey returns the Starknet selector of an event name: keccak256 of the
// name truncated to 250 bits, as 64 lowercase hex characters.
func EventKey(name string) string {
	digest := crypto.Keccak256([]byte(name))
	digest[0] &= 0x03
	return common.Bytes2Hex(digest)
}
