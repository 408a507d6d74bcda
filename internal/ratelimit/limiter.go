package ratelimit

import (
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/feral-file/ff-projector/internal/adapter"
	"github.com/feral-file/ff-projector/internal/logger"
)

// Providers throttled by the metadata fetcher
const (
	ProviderIPFS    = "ipfs"
	ProviderArweave = "arweave"
	ProviderHTTP    = "http"
)

// ProviderConfig is the request budget of one provider
type ProviderConfig struct {
	RequestsPerSecond int `mapstructure:"requests_per_second"`
	Burst             int `mapstructure:"burst"`
}

// Config holds the limiter configuration
type Config struct {
	Providers map[string]ProviderConfig
	// RedisKeyPrefix namespaces the distributed counters
	RedisKeyPrefix string
	// LocalFallbackMultiplier scales the local rate while redis is unreachable
	LocalFallbackMultiplier float64
	// HealthCheckInterval is how often an unreachable redis is probed
	HealthCheckInterval time.Duration
}

// Limiter throttles outbound requests per provider
//
//go:generate mockgen -source=limiter.go -destination=../mocks/ratelimit_limiter.go -package=mocks -mock_names=Limiter=MockRateLimiter
type Limiter interface {
	// Wait blocks until a request to provider may be sent. Unknown providers are not limited.
	Wait(ctx context.Context, provider string) error

	// Close stops the redis health check
	Close()
}

type limiter struct {
	config         Config
	limiters       map[string]*providerLimiter
	redis          adapter.RedisClient
	distributed    adapter.RedisRateLimiter
	clock          adapter.Clock
	redisAvailable atomic.Bool
	done           chan struct{}
	closeOnce      sync.Once
}

// providerLimiter holds the rate limiting state for a single provider
type providerLimiter struct {
	name      string
	config    ProviderConfig
	local     *rate.Limiter
	preFilter *rate.Limiter
}

// NewLimiter creates a limiter. With a nil redis client every provider is limited locally.
func NewLimiter(cfg Config, rc adapter.RedisClient, clock adapter.Clock) Limiter {
	setDefaults(&cfg)

	l := &limiter{
		config:   cfg,
		limiters: make(map[string]*providerLimiter, len(cfg.Providers)),
		redis:    rc,
		clock:    clock,
		done:     make(chan struct{}),
	}

	localMultiplier := 1.0
	if rc != nil {
		localMultiplier = cfg.LocalFallbackMultiplier
	}
	for name, pc := range cfg.Providers {
		localRate := max(float64(pc.RequestsPerSecond)*localMultiplier, 1.0)
		l.limiters[name] = &providerLimiter{
			name:   name,
			config: pc,
			local:  rate.NewLimiter(rate.Limit(localRate), pc.Burst),
			// bounds this process's calls to redis
			preFilter: rate.NewLimiter(rate.Limit(pc.RequestsPerSecond), pc.Burst),
		}
	}

	if rc != nil {
		l.distributed = rc.NewRateLimiter()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rc.Ping(ctx)
		cancel()
		if err != nil {
			logger.Warn("Redis unavailable, rate limiting locally", zap.Error(err))
		}
		l.redisAvailable.Store(err == nil)

		go l.monitorRedisHealth()
	}

	logger.Info("Rate limiter initialized",
		zap.Int("providers", len(l.limiters)),
		zap.Bool("distributed", rc != nil),
	)
	return l
}

func setDefaults(cfg *Config) {
	providers := make(map[string]ProviderConfig, len(cfg.Providers))
	for name, pc := range cfg.Providers {
		if pc.RequestsPerSecond <= 0 {
			continue
		}
		if pc.Burst <= 0 {
			pc.Burst = pc.RequestsPerSecond
		}
		providers[name] = pc
	}
	cfg.Providers = providers

	if cfg.RedisKeyPrefix == "" {
		cfg.RedisKeyPrefix = "ff-projector:limiter:"
	}
	if cfg.LocalFallbackMultiplier <= 0 {
		cfg.LocalFallbackMultiplier = 0.5
	}
	if cfg.HealthCheckInterval <= 0 {
		cfg.HealthCheckInterval = 10 * time.Second
	}
}

func (l *limiter) Wait(ctx context.Context, provider string) error {
	pl, ok := l.limiters[provider]
	if !ok {
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if l.distributed == nil || !l.redisAvailable.Load() {
			return pl.local.Wait(ctx)
		}

		allowed, retryAfter, err := l.tryDistributed(ctx, pl)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.redisAvailable.Store(false)
			logger.WarnCtx(ctx, "Redis rate limiter error, falling back to local",
				zap.String("provider", pl.name),
				zap.Error(err),
			)
			continue
		}
		if allowed {
			return nil
		}

		// Spread retries over 50-150% of retryAfter
		jitter := time.Duration(float64(retryAfter) * (0.5 + rand.Float64())) //nolint:gosec,G404
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.clock.After(jitter):
		}
	}
}

// tryDistributed asks redis for a token. It returns whether the request may proceed and how long to wait otherwise.
func (l *limiter) tryDistributed(ctx context.Context, pl *providerLimiter) (bool, time.Duration, error) {
	if err := pl.preFilter.Wait(ctx); err != nil {
		return false, 0, err
	}

	res, err := l.distributed.Allow(ctx, l.config.RedisKeyPrefix+pl.name, redis_rate.PerSecond(pl.config.RequestsPerSecond))
	if err != nil {
		return false, 0, err
	}
	if res.Allowed == 0 {
		logger.DebugCtx(ctx, "Rate limit token unavailable, waiting",
			zap.String("provider", pl.name),
			zap.Duration("retry_after", res.RetryAfter),
		)
		retryAfter := res.RetryAfter
		if retryAfter <= 0 {
			retryAfter = 100 * time.Millisecond
		}
		return false, retryAfter, nil
	}
	return true, 0, nil
}

// monitorRedisHealth probes redis periodically and restores distributed limiting once it answers
func (l *limiter) monitorRedisHealth() {
	for {
		select {
		case <-l.done:
			return
		case <-l.clock.After(l.config.HealthCheckInterval):
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := l.redis.Ping(ctx)
		cancel()

		available := err == nil
		if !l.redisAvailable.Swap(available) && available {
			logger.Info("Redis connection restored, rate limiting is distributed again")
		}
	}
}

func (l *limiter) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
	})
}
