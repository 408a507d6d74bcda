package domain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name     string
		parts    []string
		expected string
	}{
		{
			name:     "single part",
			parts:    []string{"0xabc"},
			expected: "0xabc",
		},
		{
			name:     "multiple parts",
			parts:    []string{"0xabc", "0xdef", "7"},
			expected: "0xabc-0xdef-7",
		},
		{
			name:     "no parts",
			parts:    nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Key(tt.parts...))
			// pure function
			assert.Equal(t, Key(tt.parts...), Key(tt.parts...))
		})
	}
}

func TestTypedKeys(t *testing.T) {
	content := "0x00000000000000000000000000000000000000c0"
	owner := "0x00000000000000000000000000000000000000aa"
	id := big.NewInt(7)

	assert.Equal(t, content+"-7", AssetKey(content, id))
	assert.Equal(t, content+"-"+owner+"-7", AssetBalanceKey(content, owner, id))
	assert.Equal(t, content+"-"+owner+"-7", AssetFeeKey(content, owner, id))
	assert.Equal(t, content+"-"+owner, ContractFeeKey(content, owner))
	assert.Equal(t, content+"-"+owner, MinterKey(content, owner))
	assert.Equal(t, "0xe-1", OrderKey("0xe", big.NewInt(1)))
	assert.Equal(t, "0xe-1-0xhash-3", OrderFillKey("0xe-1", "0xhash", 3))
	assert.Equal(t, "0xe-1-2", OrderClaimKey("0xe-1", 2))
	assert.Equal(t, "0xa-0xt-19000", AccountDayKey("0xa", "0xt", 19000))
	assert.Equal(t, "0xt-19000", TokenDayKey("0xt", 19000))
	assert.Equal(t, "0xhash-0xc-7", ChildTxKey("0xhash", "0xc", "7"))
}

func TestKeysDoNotCollide(t *testing.T) {
	a := "0x00000000000000000000000000000000000000aa"
	b := "0x00000000000000000000000000000000000000bb"

	seen := map[string]bool{}
	for _, owner := range []string{a, b} {
		for _, id := range []int64{1, 11, 111} {
			k := AssetBalanceKey(a, owner, big.NewInt(id))
			assert.False(t, seen[k], "duplicate key %s", k)
			seen[k] = true
		}
	}

	// large token ids stay base-10
	large, _ := new(big.Int).SetString("115792089237316195423570985008687907853269984665640564039457584007913129639935", 10)
	assert.Equal(t, a+"-"+large.String(), AssetKey(a, large))
}

func TestDayBucket(t *testing.T) {
	assert.Equal(t, int64(0), DayBucket(0))
	assert.Equal(t, int64(0), DayBucket(86399))
	assert.Equal(t, int64(1), DayBucket(86400))
	assert.Equal(t, int64(19723), DayBucket(1704067200))
}
