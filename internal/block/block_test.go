package block_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-projector/internal/block"
	"github.com/feral-file/ff-projector/internal/logger"
	"github.com/feral-file/ff-projector/internal/mocks"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

// testBlockProviderMocks contains all the mocks needed for testing the block provider
type testBlockProviderMocks struct {
	ctrl     *gomock.Controller
	fetcher  *mocks.MockBlockFetcher
	clock    *mocks.MockClock
	provider block.BlockProvider
}

// setupTest creates all the mocks and block provider for testing
func setupTest(t *testing.T, cfg block.Config) *testBlockProviderMocks {
	ctrl := gomock.NewController(t)

	tm := &testBlockProviderMocks{
		ctrl:    ctrl,
		fetcher: mocks.NewMockBlockFetcher(ctrl),
		clock:   mocks.NewMockClock(ctrl),
	}
	tm.provider = block.NewBlockProvider(tm.fetcher, cfg, tm.clock)

	return tm
}

var defaultConfig = block.Config{
	TTL:         10 * time.Second,
	StaleWindow: 2 * time.Minute,
}

func TestBlockProvider_GetLatestBlock_UsesCacheWithinTTL(t *testing.T) {
	tm := setupTest(t, defaultConfig)
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tm.clock.EXPECT().Now().Return(now)
	tm.fetcher.EXPECT().FetchLatestBlock(ctx).Return(uint64(1000), nil)

	blockNum, err := tm.provider.GetLatestBlock(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), blockNum)

	// within TTL, the fetcher is not called again
	tm.clock.EXPECT().Now().Return(now.Add(5 * time.Second))

	blockNum, err = tm.provider.GetLatestBlock(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), blockNum)
}

func TestBlockProvider_GetLatestBlock_RefreshesAfterTTL(t *testing.T) {
	tm := setupTest(t, defaultConfig)
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tm.clock.EXPECT().Now().Return(now)
	tm.fetcher.EXPECT().FetchLatestBlock(ctx).Return(uint64(1000), nil)
	_, err := tm.provider.GetLatestBlock(ctx)
	require.NoError(t, err)

	tm.clock.EXPECT().Now().Return(now.Add(11 * time.Second))
	tm.fetcher.EXPECT().FetchLatestBlock(ctx).Return(uint64(1001), nil)

	blockNum, err := tm.provider.GetLatestBlock(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1001), blockNum)
}

func TestBlockProvider_GetLatestBlock_StaleFallback(t *testing.T) {
	tm := setupTest(t, defaultConfig)
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tm.clock.EXPECT().Now().Return(now)
	tm.fetcher.EXPECT().FetchLatestBlock(ctx).Return(uint64(1000), nil)
	_, err := tm.provider.GetLatestBlock(ctx)
	require.NoError(t, err)

	// fetch fails inside the stale window, the cached head is served
	tm.clock.EXPECT().Now().Return(now.Add(time.Minute))
	tm.fetcher.EXPECT().FetchLatestBlock(ctx).Return(uint64(0), errors.New("rpc down"))

	blockNum, err := tm.provider.GetLatestBlock(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), blockNum)

	// outside the stale window the error surfaces
	tm.clock.EXPECT().Now().Return(now.Add(3 * time.Minute))
	tm.fetcher.EXPECT().FetchLatestBlock(ctx).Return(uint64(0), errors.New("rpc down"))

	_, err = tm.provider.GetLatestBlock(ctx)
	assert.Error(t, err)
}

func TestBlockProvider_GetLatestBlock_NoCacheError(t *testing.T) {
	tm := setupTest(t, defaultConfig)
	ctx := context.Background()

	tm.clock.EXPECT().Now().Return(time.Now())
	tm.fetcher.EXPECT().FetchLatestBlock(ctx).Return(uint64(0), errors.New("rpc down"))

	_, err := tm.provider.GetLatestBlock(ctx)
	assert.Error(t, err)
}

func TestBlockProvider_GetBlockTimestamp(t *testing.T) {
	tm := setupTest(t, defaultConfig)
	ctx := context.Background()

	tm.fetcher.EXPECT().FetchBlockTimestamp(ctx, uint64(10)).Return(int64(1700000000), nil).Times(1)

	for i := 0; i < 3; i++ {
		ts, err := tm.provider.GetBlockTimestamp(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(1700000000), ts)
	}

	tm.fetcher.EXPECT().FetchBlockTimestamp(ctx, uint64(11)).Return(int64(0), errors.New("rpc down"))
	_, err := tm.provider.GetBlockTimestamp(ctx, 11)
	assert.Error(t, err)
}

func TestBlockProvider_GetBlockTimestamp_EvictsOldest(t *testing.T) {
	tm := setupTest(t, block.Config{MaxCachedTimestamps: 2})
	ctx := context.Background()

	tm.fetcher.EXPECT().FetchBlockTimestamp(ctx, uint64(1)).Return(int64(100), nil).Times(2)
	tm.fetcher.EXPECT().FetchBlockTimestamp(ctx, uint64(2)).Return(int64(200), nil).Times(1)
	tm.fetcher.EXPECT().FetchBlockTimestamp(ctx, uint64(3)).Return(int64(300), nil).Times(1)

	for _, n := range []uint64{1, 2, 3, 2, 3} {
		_, err := tm.provider.GetBlockTimestamp(ctx, n)
		require.NoError(t, err)
	}

	// block 1 was evicted when block 3 was cached
	ts, err := tm.provider.GetBlockTimestamp(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100), ts)
}

func TestBlockProvider_Prune(t *testing.T) {
	tm := setupTest(t, defaultConfig)
	ctx := context.Background()

	tm.fetcher.EXPECT().FetchBlockTimestamp(ctx, uint64(5)).Return(int64(500), nil).Times(2)
	tm.fetcher.EXPECT().FetchBlockTimestamp(ctx, uint64(9)).Return(int64(900), nil).Times(1)

	_, err := tm.provider.GetBlockTimestamp(ctx, 5)
	require.NoError(t, err)
	_, err = tm.provider.GetBlockTimestamp(ctx, 9)
	require.NoError(t, err)

	tm.provider.Prune(6)

	_, err = tm.provider.GetBlockTimestamp(ctx, 9)
	require.NoError(t, err)
	_, err = tm.provider.GetBlockTimestamp(ctx, 5)
	require.NoError(t, err)
}
