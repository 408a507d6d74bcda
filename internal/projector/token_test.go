package projector_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-projector/internal/domain"
	"github.com/feral-file/ff-projector/internal/store/schema"
)

func tokenTransfer(from, to string, value int64) domain.Fields {
	return domain.Fields{"from": from, "to": to, "value": n(value)}
}

func tokenBalance(t *testing.T, h *harness, owner string) string {
	t.Helper()
	return get[schema.TokenBalance](t, h, domain.TokenBalanceKey(rawrAddr, owner)).Amount.String()
}

func TestTokenCreated(t *testing.T) {
	h := newHarness(t)
	h.watch(rawrAddr, domain.KindToken)

	h.mustApply(rawrAddr, "TokenCreated", domain.Fields{"id": n(255), "name": "Rawr", "symbol": "RAWR", "supply": n(1000)})

	token := get[schema.FungibleToken](t, h, rawrAddr)
	assert.Equal(t, "0xff", token.TokenID)
	assert.Equal(t, "Rawr", token.Name)
	assert.Equal(t, "RAWR", token.Symbol)
	assert.Equal(t, day0, token.CreatedAt)

	supply := get[schema.TokenSupply](t, h, rawrAddr)
	assert.Equal(t, "1000", supply.InitialSupply.String())
	assert.True(t, supply.CurrentSupply.IsZero())
}

func TestTokenTransfer_MintTransferBurn(t *testing.T) {
	h := newHarness(t)
	h.watch(rawrAddr, domain.KindToken)

	h.mustApply(rawrAddr, "Transfer", tokenTransfer(zero, alice, 100))
	h.nextBlock(12)
	h.mustApply(rawrAddr, "Transfer", tokenTransfer(alice, bob, 40))
	h.mustApply(rawrAddr, "Transfer", tokenTransfer(bob, carol, 40))

	assert.Equal(t, "60", tokenBalance(t, h, alice))
	assert.Equal(t, "0", tokenBalance(t, h, bob))
	assert.Equal(t, "40", tokenBalance(t, h, carol))
	assert.Equal(t, int64(2), get[schema.FungibleToken](t, h, rawrAddr).OwnersCount)
	assert.True(t, exists[schema.Account](t, h, carol))

	h.nextBlock(12)
	h.mustApply(rawrAddr, "Transfer", tokenTransfer(carol, zero, 40))

	supply := get[schema.TokenSupply](t, h, rawrAddr)
	assert.Equal(t, "60", supply.CurrentSupply.String())
	assert.Equal(t, int64(1), supply.NumberOfMints)
	assert.Equal(t, int64(1), supply.NumberOfBurns)
	assert.Equal(t, day0, supply.LastMintAt)
	assert.Equal(t, day0+24, supply.LastBurnAt)
	assert.Equal(t, int64(1), get[schema.FungibleToken](t, h, rawrAddr).OwnersCount)
	assert.False(t, exists[schema.TokenBalance](t, h, domain.TokenBalanceKey(rawrAddr, zero)))

	// zero value transfers change nothing
	h.mustApply(rawrAddr, "Transfer", tokenTransfer(zero, dave, 0))
	assert.False(t, exists[schema.TokenBalance](t, h, domain.TokenBalanceKey(rawrAddr, dave)))
	assert.Equal(t, int64(1), get[schema.TokenSupply](t, h, rawrAddr).NumberOfMints)
}

func TestTokenTransfer_SelfTransferKeepsOwners(t *testing.T) {
	h := newHarness(t)
	h.watch(rawrAddr, domain.KindToken)

	h.mustApply(rawrAddr, "Transfer", tokenTransfer(zero, alice, 10))
	h.mustApply(rawrAddr, "Transfer", tokenTransfer(alice, alice, 10))

	assert.Equal(t, "10", tokenBalance(t, h, alice))
	assert.Equal(t, int64(1), get[schema.FungibleToken](t, h, rawrAddr).OwnersCount)
}

func TestTokenTransfer_ZeroToZeroNetsOut(t *testing.T) {
	h := newHarness(t)
	h.watch(rawrAddr, domain.KindToken)

	h.mustApply(rawrAddr, "Transfer", tokenTransfer(zero, alice, 5))
	h.mustApply(rawrAddr, "Transfer", tokenTransfer(zero, zero, 50))

	supply := get[schema.TokenSupply](t, h, rawrAddr)
	assert.Equal(t, "5", supply.CurrentSupply.String())
	assert.Equal(t, int64(2), supply.NumberOfMints)
	assert.Equal(t, int64(1), supply.NumberOfBurns)
	assert.False(t, exists[schema.TokenBalance](t, h, domain.TokenBalanceKey(rawrAddr, zero)))
	assert.Equal(t, int64(1), get[schema.FungibleToken](t, h, rawrAddr).OwnersCount)
}

func TestTokenTransfer_Failures(t *testing.T) {
	h := newHarness(t)
	h.watch(rawrAddr, domain.KindToken)

	err := h.apply(rawrAddr, "Transfer", tokenTransfer(alice, bob, 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingEntity))
	assert.False(t, exists[schema.TokenBalance](t, h, domain.TokenBalanceKey(rawrAddr, bob)))

	h.mustApply(rawrAddr, "Transfer", tokenTransfer(zero, alice, 5))
	err = h.apply(rawrAddr, "Transfer", tokenTransfer(alice, bob, 6))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnderflow))
	assert.Equal(t, "5", tokenBalance(t, h, alice))

	err = h.apply(rawrAddr, "Transfer", tokenTransfer(alice, zero, 6))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnderflow))
	assert.Equal(t, "5", get[schema.TokenSupply](t, h, rawrAddr).CurrentSupply.String())
}
