package ratelimit_test

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-projector/internal/logger"
	"github.com/feral-file/ff-projector/internal/mocks"
	"github.com/feral-file/ff-projector/internal/ratelimit"
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

const healthInterval = time.Hour

// testLimiterMocks contains all the mocks needed for testing the limiter
type testLimiterMocks struct {
	ctrl             *gomock.Controller
	redisClient      *mocks.MockRedisClient
	redisRateLimiter *mocks.MockRedisRateLimiter
	clock            *mocks.MockClock
}

func setupTestLimiter(t *testing.T) *testLimiterMocks {
	ctrl := gomock.NewController(t)
	return &testLimiterMocks{
		ctrl:             ctrl,
		redisClient:      mocks.NewMockRedisClient(ctrl),
		redisRateLimiter: mocks.NewMockRedisRateLimiter(ctrl),
		clock:            mocks.NewMockClock(ctrl),
	}
}

func testConfig() ratelimit.Config {
	return ratelimit.Config{
		Providers: map[string]ratelimit.ProviderConfig{
			ratelimit.ProviderIPFS: {RequestsPerSecond: 100, Burst: 10},
		},
		HealthCheckInterval: healthInterval,
	}
}

// newDistributed builds a limiter over the redis mocks. The health check never fires.
func newDistributed(t *testing.T, tm *testLimiterMocks, pingErr error) ratelimit.Limiter {
	tm.redisClient.EXPECT().NewRateLimiter().Return(tm.redisRateLimiter)
	tm.redisClient.EXPECT().Ping(gomock.Any()).Return(pingErr)
	tm.clock.EXPECT().After(healthInterval).Return(make(chan time.Time)).AnyTimes()

	l := ratelimit.NewLimiter(testConfig(), tm.redisClient, tm.clock)
	t.Cleanup(l.Close)
	return l
}

func TestWait_LocalOnly(t *testing.T) {
	tm := setupTestLimiter(t)
	l := ratelimit.NewLimiter(testConfig(), nil, tm.clock)
	defer l.Close()
	ctx := context.Background()

	for range 10 {
		require.NoError(t, l.Wait(ctx, ratelimit.ProviderIPFS))
	}

	// providers without a budget are not limited
	assert.NoError(t, l.Wait(ctx, ratelimit.ProviderHTTP))
}

func TestWait_CancelledContext(t *testing.T) {
	tm := setupTestLimiter(t)
	l := ratelimit.NewLimiter(testConfig(), nil, tm.clock)
	defer l.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Wait(ctx, ratelimit.ProviderIPFS), context.Canceled)
}

func TestWait_Distributed(t *testing.T) {
	tm := setupTestLimiter(t)
	l := newDistributed(t, tm, nil)

	tm.redisRateLimiter.EXPECT().
		Allow(gomock.Any(), "ff-projector:limiter:ipfs", redis_rate.PerSecond(100)).
		Return(&redis_rate.Result{Allowed: 1, Remaining: 99}, nil)

	assert.NoError(t, l.Wait(context.Background(), ratelimit.ProviderIPFS))
}

func TestWait_DistributedRetriesAfterThrottle(t *testing.T) {
	tm := setupTestLimiter(t)
	l := newDistributed(t, tm, nil)

	ready := make(chan time.Time, 1)
	ready <- time.Now()
	gomock.InOrder(
		tm.redisRateLimiter.EXPECT().
			Allow(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&redis_rate.Result{Allowed: 0, RetryAfter: 200 * time.Millisecond}, nil),
		tm.redisRateLimiter.EXPECT().
			Allow(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&redis_rate.Result{Allowed: 1}, nil),
	)
	tm.clock.EXPECT().
		After(gomock.Not(healthInterval)).
		DoAndReturn(func(d time.Duration) <-chan time.Time {
			assert.GreaterOrEqual(t, d, 100*time.Millisecond)
			assert.LessOrEqual(t, d, 300*time.Millisecond)
			return ready
		})

	assert.NoError(t, l.Wait(context.Background(), ratelimit.ProviderIPFS))
}

func TestWait_RedisErrorFallsBackToLocal(t *testing.T) {
	tm := setupTestLimiter(t)
	l := newDistributed(t, tm, nil)
	ctx := context.Background()

	tm.redisRateLimiter.EXPECT().
		Allow(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("connection reset")).
		Times(1)

	require.NoError(t, l.Wait(ctx, ratelimit.ProviderIPFS))
	// redis stays marked unavailable until the health check succeeds
	require.NoError(t, l.Wait(ctx, ratelimit.ProviderIPFS))
}

func TestWait_RedisUnavailableAtStart(t *testing.T) {
	tm := setupTestLimiter(t)
	l := newDistributed(t, tm, errors.New("connection refused"))

	tm.redisRateLimiter.EXPECT().Allow(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	assert.NoError(t, l.Wait(context.Background(), ratelimit.ProviderIPFS))
}

func TestHealthCheckRestoresDistributedLimiting(t *testing.T) {
	tm := setupTestLimiter(t)

	tick := make(chan time.Time)
	pinged := make(chan struct{})
	tm.redisClient.EXPECT().NewRateLimiter().Return(tm.redisRateLimiter)
	gomock.InOrder(
		tm.redisClient.EXPECT().Ping(gomock.Any()).Return(errors.New("connection refused")),
		tm.redisClient.EXPECT().Ping(gomock.Any()).DoAndReturn(func(ctx context.Context) error {
			close(pinged)
			return nil
		}),
	)
	tm.clock.EXPECT().After(healthInterval).Return(tick).AnyTimes()

	l := ratelimit.NewLimiter(testConfig(), tm.redisClient, tm.clock)
	defer l.Close()

	tick <- time.Now()
	<-pinged

	var distributed atomic.Bool
	tm.redisRateLimiter.EXPECT().
		Allow(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error) {
			distributed.Store(true)
			return &redis_rate.Result{Allowed: 1}, nil
		}).
		MinTimes(1)

	// the flag is stored right after the ping returns, until then waits are served locally
	require.Eventually(t, func() bool {
		assert.NoError(t, l.Wait(context.Background(), ratelimit.ProviderIPFS))
		return distributed.Load()
	}, time.Second, 10*time.Millisecond)
}
