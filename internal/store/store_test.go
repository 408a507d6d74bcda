package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/feral-file/ff-projector/internal/domain"
	"github.com/feral-file/ff-projector/internal/store/schema"
)

const (
	testContent = "0x00000000000000000000000000000000000000c0"
	testOwner   = "0x00000000000000000000000000000000000000aa"
)

// =============================================================================
// Test: Entities
// =============================================================================

func testGetAndSave(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("missing entity", func(t *testing.T) {
		var asset schema.Asset
		found, err := store.Get(ctx, &asset, "nonexistent")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("save then load", func(t *testing.T) {
		asset := schema.NewAsset(testContent+"-7", testContent, "7")
		asset.MaxSupply = schema.NewUint256(100)
		asset.Tags = datatypes.JSONSlice[string]{"sword", "rare"}
		require.NoError(t, store.Save(ctx, asset))

		var loaded schema.Asset
		found, err := store.Get(ctx, &loaded, asset.ID)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "100", loaded.MaxSupply.String())
		assert.True(t, loaded.CurrentSupply.IsZero())
		assert.Equal(t, []string{"sword", "rare"}, []string(loaded.Tags))
		assert.Empty(t, loaded.AssetRoyalties)
	})

	t.Run("save overwrites every column", func(t *testing.T) {
		account := schema.NewAccount(testOwner)
		account.UniqueAssetsCount = 3
		account.Volume = schema.NewUint256(500)
		require.NoError(t, store.Save(ctx, account))

		// counters going back to zero must be persisted
		account.UniqueAssetsCount = 0
		account.Volume = schema.NewUint256(0)
		require.NoError(t, store.Save(ctx, account))

		var loaded schema.Account
		found, err := store.Get(ctx, &loaded, testOwner)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, int64(0), loaded.UniqueAssetsCount)
		assert.True(t, loaded.Volume.IsZero())
	})

	t.Run("large quantities", func(t *testing.T) {
		max, err := schema.ParseUint256("115792089237316195423570985008687907853269984665640564039457584007913129639935")
		require.NoError(t, err)

		balance := schema.NewAssetBalance(testContent+"-"+testOwner+"-1", testContent+"-1", testContent, testOwner, "1")
		balance.Amount = max
		require.NoError(t, store.Save(ctx, balance))

		var loaded schema.AssetBalance
		found, err := store.Get(ctx, &loaded, balance.ID)
		require.NoError(t, err)
		require.True(t, found)
		assert.True(t, loaded.Amount.Eq(max))
	})
}

func testDelete(t *testing.T, store Store) {
	ctx := context.Background()

	minter := &schema.Minter{ID: testContent + "-" + testOwner, Content: testContent, Account: testOwner}
	require.NoError(t, store.Save(ctx, minter))

	require.NoError(t, store.Delete(ctx, &schema.Minter{}, minter.ID))

	var loaded schema.Minter
	found, err := store.Get(ctx, &loaded, minter.ID)
	require.NoError(t, err)
	assert.False(t, found)

	// deleting a missing entity is not an error
	require.NoError(t, store.Delete(ctx, &schema.Minter{}, minter.ID))
}

func testFindAndCount(t *testing.T, store Store) {
	ctx := context.Background()

	for _, id := range []string{"3", "1", "2"} {
		fee := schema.NewContractFee(testContent+"-0x"+id, testContent, "0x"+id)
		fee.Rate = schema.NewUint256(10)
		require.NoError(t, store.Save(ctx, fee))
	}
	other := schema.NewContractFee("0xother-0x1", "0xother", "0x1")
	require.NoError(t, store.Save(ctx, other))

	var fees []schema.ContractFee
	require.NoError(t, store.Find(ctx, &fees, map[string]interface{}{"content": testContent}))
	require.Len(t, fees, 3)
	assert.Equal(t, testContent+"-0x1", fees[0].ID)
	assert.Equal(t, testContent+"-0x3", fees[2].ID)

	count, err := store.Count(ctx, &schema.ContractFee{}, map[string]interface{}{"content": testContent})
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	count, err = store.Count(ctx, &schema.ContractFee{}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}

func testWithTx(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("commit", func(t *testing.T) {
		err := store.WithTx(ctx, func(tx Store) error {
			return tx.Save(ctx, schema.NewRegistry("0xcommitted"))
		})
		require.NoError(t, err)

		var r schema.Registry
		found, err := store.Get(ctx, &r, "0xcommitted")
		require.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("rollback", func(t *testing.T) {
		boom := errors.New("boom")
		err := store.WithTx(ctx, func(tx Store) error {
			if err := tx.Save(ctx, schema.NewRegistry("0xrolledback")); err != nil {
				return err
			}
			if err := tx.SetEventCursor(ctx, domain.ChainEthereumMainnet, domain.Position{Block: 99}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		var r schema.Registry
		found, err := store.Get(ctx, &r, "0xrolledback")
		require.NoError(t, err)
		assert.False(t, found)

		cursor, err := store.GetEventCursor(ctx, domain.ChainEthereumMainnet)
		require.NoError(t, err)
		assert.Nil(t, cursor)
	})
}

// =============================================================================
// Test: Cursors & Watched Contracts
// =============================================================================

func testBlockCursor(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("get non-existent cursor returns 0", func(t *testing.T) {
		cursor, err := store.GetBlockCursor(ctx, "test_chain_nonexistent")
		require.NoError(t, err)
		assert.Equal(t, uint64(0), cursor)
	})

	t.Run("set and get cursor", func(t *testing.T) {
		chain := domain.ChainEthereumMainnet
		require.NoError(t, store.SetBlockCursor(ctx, chain, 100))
		require.NoError(t, store.SetBlockCursor(ctx, chain, 200))

		cursor, err := store.GetBlockCursor(ctx, chain)
		require.NoError(t, err)
		assert.Equal(t, uint64(200), cursor)
	})
}

func testEventCursor(t *testing.T, store Store) {
	ctx := context.Background()
	chain := domain.ChainEthereumSepolia

	cursor, err := store.GetEventCursor(ctx, chain)
	require.NoError(t, err)
	assert.Nil(t, cursor)

	require.NoError(t, store.SetEventCursor(ctx, chain, domain.Position{Block: 12, LogIndex: 3}))
	require.NoError(t, store.SetEventCursor(ctx, chain, domain.Position{Block: 12, LogIndex: 4}))

	cursor, err = store.GetEventCursor(ctx, chain)
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.Equal(t, domain.Position{Block: 12, LogIndex: 4}, *cursor)
}

func testWatchedContracts(t *testing.T, store Store) {
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &schema.WatchedContract{ID: "0xbb", Kind: domain.KindExchange, DiscoveredAtBlock: 5}))
	require.NoError(t, store.Save(ctx, &schema.WatchedContract{ID: "0xaa", Kind: domain.KindRegistry}))

	contracts, err := store.ListWatchedContracts(ctx)
	require.NoError(t, err)
	require.Len(t, contracts, 2)
	assert.Equal(t, "0xaa", contracts[0].ID)
	assert.Equal(t, domain.KindExchange, contracts[1].Kind)
	assert.Equal(t, uint64(5), contracts[1].DiscoveredAtBlock)
}

func testKeyValueStore(t *testing.T, store Store) {
	ctx := context.Background()

	value, err := store.GetKeyValue(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, store.SetKeyValue(ctx, "k", "v1"))
	require.NoError(t, store.SetKeyValue(ctx, "k", "v2"))

	value, err = store.GetKeyValue(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", value)
}

// RunStoreTests runs all store tests against the given store factory
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store) {
	tests := []struct {
		name string
		fn   func(*testing.T, Store)
	}{
		{"GetAndSave", testGetAndSave},
		{"Delete", testDelete},
		{"FindAndCount", testFindAndCount},
		{"WithTx", testWithTx},
		{"BlockCursor", testBlockCursor},
		{"EventCursor", testEventCursor},
		{"WatchedContracts", testWatchedContracts},
		{"KeyValueStore", testKeyValueStore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, initDB(t))
		})
	}
}

func TestNormalizeConnectionPoolSettings(t *testing.T) {
	open, idle, life, idleTime := NormalizeConnectionPoolSettings(0, 0, 0, 0)
	assert.Equal(t, 20, open)
	assert.Equal(t, 5, idle)
	assert.NotZero(t, life)
	assert.NotZero(t, idleTime)

	open, idle, _, _ = NormalizeConnectionPoolSettings(2, 10, 0, 0)
	assert.Equal(t, 2, open)
	assert.Equal(t, 2, idle)
}
