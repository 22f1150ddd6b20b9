package felt

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLayout = MustLayout("Test",
	Word("key"),
	Word("account"),
	Array("path"),
	Uint128("amount"),
	Word("block"),
	Word("flag"),
)

func TestLayoutRejectsBadDeclarations(t *testing.T) {
	_, err := NewLayout("Empty")
	require.Error(t, err)

	_, err = NewLayout("Dup", Word("a"), Word("a"))
	require.Error(t, err)

	_, err = NewLayout("Unnamed", Word(""))
	require.Error(t, err)

	_, err = NewLayout("Kind", Field{Name: "x", Kind: Kind(9)})
	require.Error(t, err)

	assert.Panics(t, func() { MustLayout("Dup", Word("a"), Word("a")) })
}

func TestLayoutFixedWidth(t *testing.T) {
	assert.Equal(t, 7, testLayout.FixedWidth())
}

func TestResolveShiftsFieldsAfterArray(t *testing.T) {
	words := []string{
		word("aa"), word("bb"),
		word("2"), word("c1"), word("c2"),
		word("1"), word("0"),
		word("10"),
		word("1"),
	}
	frame := testLayout.Resolve(words)

	idx, ok := frame.Index("amount")
	require.True(t, ok)
	assert.Equal(t, 3+2, idx, "nominal index plus array length")

	idx, ok = frame.Index("block")
	require.True(t, ok)
	assert.Equal(t, 5+2, idx)

	n, ok := frame.Length("path")
	require.True(t, ok)
	assert.Equal(t, 2, n)

	assert.Equal(t, []string{"0x" + word("c1"), "0x" + word("c2")}, frame.Addresses("path"))
	assert.Equal(t, "18446744073709551616", frame.Uint128("amount").String())
	require.NotNil(t, frame.Int64("block"))
	assert.Equal(t, int64(16), *frame.Int64("block"))
	require.NotNil(t, frame.Bool("flag"))
	assert.True(t, *frame.Bool("flag"))

	assert.Equal(t, testLayout.FixedWidth()+2, frame.Consumed())
	assert.True(t, frame.Complete())
}

func TestResolveZeroLengthArray(t *testing.T) {
	words := []string{word("aa"), word("bb"), word("0"), word("0"), word("5"), word("7"), word("0")}
	frame := testLayout.Resolve(words)

	assert.Empty(t, frame.Addresses("path"))
	assert.NotNil(t, frame.Addresses("path"))

	idx, _ := frame.Index("amount")
	assert.Equal(t, 3, idx)
	assert.Equal(t, "5", frame.Uint128("amount").String())
	assert.Equal(t, int64(7), *frame.Int64("block"))
	assert.False(t, *frame.Bool("flag"))
	assert.Equal(t, len(words), frame.Consumed())
}

func TestResolveUnparseableLengthCountsAsZero(t *testing.T) {
	words := []string{word("aa"), word("bb"), "garbage", word("0"), word("5"), word("7"), word("1")}
	frame := testLayout.Resolve(words)

	n, ok := frame.Length("path")
	require.True(t, ok)
	assert.Equal(t, 0, n)
	assert.Equal(t, "5", frame.Uint128("amount").String())
	assert.True(t, *frame.Bool("flag"))
}

func TestResolveMissingLengthWord(t *testing.T) {
	frame := testLayout.Resolve([]string{word("aa")})

	assert.NotNil(t, frame.Felt("key"))
	assert.Nil(t, frame.Address("account"))
	assert.Empty(t, frame.Addresses("path"))
	assert.Nil(t, frame.Uint128("amount"))
	assert.Nil(t, frame.Int64("block"))
	assert.Nil(t, frame.Bool("flag"))
	assert.False(t, frame.Complete())
}

func TestResolveHugeLengthIsBounded(t *testing.T) {
	words := []string{word("aa"), word("bb"), word("ffffffffffffffff"), word("c1"), word("1"), word("0")}
	frame := testLayout.Resolve(words)

	assert.Equal(t, []string{"0x" + word("c1"), "0x" + word("1"), "0x" + word("0")}, frame.Addresses("path"))
	assert.Nil(t, frame.Uint128("amount"))
	assert.Nil(t, frame.Int64("block"))
	assert.False(t, frame.Complete())
}

func TestResolveAccumulatesMultipleArrays(t *testing.T) {
	layout := MustLayout("TwoArrays",
		Word("key"),
		Array("first"),
		Array("second"),
		Word("tail"),
	)
	words := []string{
		word("aa"),
		word("2"), word("b1"), word("b2"),
		word("3"), word("c1"), word("c2"), word("c3"),
		word("ff"),
	}
	frame := layout.Resolve(words)

	idx, _ := frame.Index("second")
	assert.Equal(t, 2+2, idx)
	idx, _ = frame.Index("tail")
	assert.Equal(t, 3+2+3, idx)
	assert.Len(t, frame.Felts("second"), 3)
	assert.Equal(t, int64(255), *frame.Int64("tail"))
	assert.Equal(t, layout.FixedWidth()+5, frame.Consumed())
}

func TestFrameKindMismatchIsAbsent(t *testing.T) {
	frame := testLayout.Resolve([]string{word("aa"), word("bb"), word("0"), word("1"), word("2")})

	assert.Nil(t, frame.Uint128("key"))
	assert.Nil(t, frame.Int64("amount"))
	assert.Nil(t, frame.Addresses("key"))
	_, ok := frame.Length("key")
	assert.False(t, ok)
	_, ok = frame.Index("missing")
	assert.False(t, ok)
}

func TestResolveCanonicalizesPrefixedWords(t *testing.T) {
	words := []string{
		"0xAA", "0xbb",
		"0x1", "0xC1",
		"0x1", "0x0",
		"0x10",
		"0x1",
	}
	frame := testLayout.Resolve(words)

	assert.Equal(t, "0x"+word("aa"), *frame.Felt("key"))
	assert.Equal(t, "0x"+word("bb"), *frame.Address("account"))
	assert.Equal(t, []string{"0x" + word("c1")}, frame.Addresses("path"))
	assert.Equal(t, 0, frame.Uint128("amount").Cmp(new(big.Int).Lsh(big.NewInt(1), 64)))
	assert.Equal(t, int64(16), *frame.Int64("block"))
	assert.True(t, *frame.Bool("flag"))

	w, ok := frame.Word("key")
	require.True(t, ok)
	assert.Equal(t, word("aa"), w)
	assert.Equal(t, "0xAA", words[0], "input slice is not modified")
}
