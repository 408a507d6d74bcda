package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPosition_After(t *testing.T) {
	tests := []struct {
		name     string
		p        Position
		o        Position
		expected bool
	}{
		{name: "later block", p: Position{Block: 11, LogIndex: 0}, o: Position{Block: 10, LogIndex: 5}, expected: true},
		{name: "same block later log", p: Position{Block: 10, LogIndex: 6}, o: Position{Block: 10, LogIndex: 5}, expected: true},
		{name: "same position", p: Position{Block: 10, LogIndex: 5}, o: Position{Block: 10, LogIndex: 5}, expected: false},
		{name: "earlier block", p: Position{Block: 9, LogIndex: 9}, o: Position{Block: 10, LogIndex: 0}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.p.After(tt.o))
		})
	}
}

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t, "0x742d35cc6634c0532925a3b844bc9e7595f0beb0", NormalizeAddress("0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb0"))
	assert.True(t, IsZeroAddress("0x0000000000000000000000000000000000000000"))
	assert.False(t, IsZeroAddress("0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb0"))
}

func TestKindForInterfaceID(t *testing.T) {
	kind, ok := KindForInterfaceID("0xeef64103")
	assert.True(t, ok)
	assert.Equal(t, KindExchange, kind)

	kind, ok = KindForInterfaceID("0x29a264aa")
	assert.True(t, ok)
	assert.Equal(t, KindErc20Escrow, kind)

	_, ok = KindForInterfaceID("0xdeadbeef")
	assert.False(t, ok)
}

func TestIsRootKind(t *testing.T) {
	assert.True(t, IsRootKind(KindRegistry))
	assert.True(t, IsRootKind(KindAddressResolver))
	assert.True(t, IsRootKind(KindToken))
	assert.False(t, IsRootKind(KindExchange))
	assert.False(t, IsValidContractKind("Unknown"))
}
