package registry_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-projector/internal/domain"
	"github.com/feral-file/ff-projector/internal/logger"
	"github.com/feral-file/ff-projector/internal/mocks"
	"github.com/feral-file/ff-projector/internal/registry"
	"github.com/feral-file/ff-projector/internal/store"
	"github.com/feral-file/ff-projector/internal/store/schema"
	"github.com/feral-file/ff-projector/internal/store/storetest"
)

const (
	storageAddr  = "0x00000000000000000000000000000000000000a1"
	exchangeAddr = "0x00000000000000000000000000000000000000e1"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func setupRegistry(t *testing.T) (registry.Registry, *mocks.MockWatcher, store.Store) {
	ctrl := gomock.NewController(t)
	watcher := mocks.NewMockWatcher(ctrl)
	return registry.New(watcher), watcher, store.NewGormStore(storetest.NewSQLite(t))
}

func TestEnsureWatching_OnlyOnce(t *testing.T) {
	reg, watcher, s := setupRegistry(t)
	ctx := context.Background()

	calls := 0
	watcher.EXPECT().
		BeginWatching(gomock.Any(), storageAddr, domain.KindContentStorage).
		DoAndReturn(func(ctx context.Context, address string, kind domain.ContractKind) error {
			calls++
			return nil
		}).
		Times(1)

	created, err := reg.EnsureWatching(ctx, s, storageAddr, domain.KindContentStorage, 10)
	require.NoError(t, err)
	assert.True(t, created)

	// second call in the same event hits the staged set
	created, err = reg.EnsureWatching(ctx, s, storageAddr, domain.KindContentStorage, 10)
	require.NoError(t, err)
	assert.False(t, created)

	reg.Commit()

	// and after commit, the committed set
	created, err = reg.EnsureWatching(ctx, s, "0x00000000000000000000000000000000000000A1", domain.KindContentStorage, 11)
	require.NoError(t, err)
	assert.False(t, created)

	assert.Equal(t, 1, calls)

	var watched schema.WatchedContract
	found, err := s.Get(ctx, &watched, storageAddr)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, domain.KindContentStorage, watched.Kind)
	assert.Equal(t, uint64(10), watched.DiscoveredAtBlock)
}

func TestEnsureWatching_KnownInStore(t *testing.T) {
	reg, _, s := setupRegistry(t)
	ctx := context.Background()

	// persisted by an earlier run but not loaded into memory
	require.NoError(t, s.Save(ctx, &schema.WatchedContract{ID: exchangeAddr, Kind: domain.KindExchange}))

	created, err := reg.EnsureWatching(ctx, s, exchangeAddr, domain.KindExchange, 20)
	require.NoError(t, err)
	assert.False(t, created)

	kind, ok := reg.KindOf(exchangeAddr)
	assert.True(t, ok)
	assert.Equal(t, domain.KindExchange, kind)
}

func TestEnsureWatching_Rollback(t *testing.T) {
	reg, watcher, s := setupRegistry(t)
	ctx := context.Background()

	watcher.EXPECT().BeginWatching(gomock.Any(), exchangeAddr, domain.KindExchange).Return(nil)

	boom := errors.New("handler failed")
	err := s.WithTx(ctx, func(tx store.Store) error {
		if _, err := reg.EnsureWatching(ctx, tx, exchangeAddr, domain.KindExchange, 5); err != nil {
			return err
		}
		_, ok := reg.KindOf(exchangeAddr)
		assert.True(t, ok, "staged address is visible to the event in flight")
		return boom
	})
	require.ErrorIs(t, err, boom)
	reg.Rollback()

	_, ok := reg.KindOf(exchangeAddr)
	assert.False(t, ok)
	assert.Empty(t, reg.Addresses())

	var watched schema.WatchedContract
	found, err := s.Get(ctx, &watched, exchangeAddr)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestEnsureWatching_WatcherError(t *testing.T) {
	reg, watcher, s := setupRegistry(t)
	ctx := context.Background()

	watcher.EXPECT().BeginWatching(gomock.Any(), exchangeAddr, domain.KindExchange).Return(errors.New("unavailable"))

	_, err := reg.EnsureWatching(ctx, s, exchangeAddr, domain.KindExchange, 5)
	assert.Error(t, err)

	_, ok := reg.KindOf(exchangeAddr)
	assert.False(t, ok)
}

func TestSeedAndLoad(t *testing.T) {
	reg, _, s := setupRegistry(t)
	ctx := context.Background()

	roots := []registry.Root{
		{Address: "0x00000000000000000000000000000000000000F0", Kind: domain.KindRegistry},
		{Address: "0x00000000000000000000000000000000000000f1", Kind: domain.KindAddressResolver},
	}
	require.NoError(t, reg.Seed(ctx, s, roots, 100))
	// seeding twice is a no-op
	require.NoError(t, reg.Seed(ctx, s, roots, 200))

	assert.Equal(t, []string{
		"0x00000000000000000000000000000000000000f0",
		"0x00000000000000000000000000000000000000f1",
	}, reg.Addresses())

	contracts, err := s.ListWatchedContracts(ctx)
	require.NoError(t, err)
	require.Len(t, contracts, 2)
	assert.Equal(t, uint64(100), contracts[0].DiscoveredAtBlock)

	reloaded := registry.New(nil)
	require.NoError(t, reloaded.Load(ctx, s))
	kind, ok := reloaded.KindOf("0x00000000000000000000000000000000000000f1")
	assert.True(t, ok)
	assert.Equal(t, domain.KindAddressResolver, kind)
}

func TestSeed_RejectsNonRootKind(t *testing.T) {
	reg, _, s := setupRegistry(t)

	err := reg.Seed(context.Background(), s, []registry.Root{{Address: exchangeAddr, Kind: domain.KindExchange}}, 0)
	assert.Error(t, err)
}
