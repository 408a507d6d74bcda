package block

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-projector/internal/adapter"
	"github.com/feral-file/ff-projector/internal/logger"
)

// defaultMaxCachedTimestamps bounds the timestamp cache when Config leaves it unset
const defaultMaxCachedTimestamps = 10_000

// head is the cached chain head
type head struct {
	number    uint64
	fetchedAt time.Time
}

// BlockProvider provides cached access to the chain head and block timestamps.
// Timestamps of confirmed blocks never change, so they are cached until pruned.
//
//go:generate mockgen -source=block.go -destination=../mocks/block_provider.go -package=mocks -mock_names=BlockProvider=MockBlockProvider
type BlockProvider interface {
	// GetLatestBlock returns the latest block number, potentially from cache
	GetLatestBlock(ctx context.Context) (uint64, error)

	// GetBlockTimestamp returns the unix timestamp of a block, potentially from cache
	GetBlockTimestamp(ctx context.Context, blockNumber uint64) (int64, error)

	// Prune drops cached timestamps of blocks below the given number
	Prune(below uint64)
}

// BlockFetcher is the interface for fetching block information from the blockchain
//
//go:generate mockgen -source=block.go -destination=../mocks/block_provider.go -package=mocks -mock_names=BlockFetcher=MockBlockFetcher
type BlockFetcher interface {
	// FetchLatestBlock fetches the latest block number
	FetchLatestBlock(ctx context.Context) (uint64, error)

	// FetchBlockTimestamp fetches the unix timestamp of a block
	FetchBlockTimestamp(ctx context.Context, blockNumber uint64) (int64, error)
}

// Config holds configuration for the BlockProvider
type Config struct {
	// TTL is how long to cache the head block number
	TTL time.Duration

	// StaleWindow is how long a stale head may be served when fetching fails
	StaleWindow time.Duration

	// MaxCachedTimestamps caps the number of cached block timestamps
	MaxCachedTimestamps int
}

type blockProvider struct {
	fetcher BlockFetcher
	config  Config
	clock   adapter.Clock

	mu         sync.RWMutex
	head       *head
	timestamps map[uint64]int64
}

// NewBlockProvider creates a new BlockProvider with caching
func NewBlockProvider(fetcher BlockFetcher, config Config, clock adapter.Clock) BlockProvider {
	if config.MaxCachedTimestamps <= 0 {
		config.MaxCachedTimestamps = defaultMaxCachedTimestamps
	}
	return &blockProvider{
		fetcher:    fetcher,
		config:     config,
		clock:      clock,
		timestamps: make(map[uint64]int64),
	}
}

// GetLatestBlock returns the latest block number, using cache if valid
func (p *blockProvider) GetLatestBlock(ctx context.Context) (uint64, error) {
	p.mu.RLock()
	cached := p.head
	p.mu.RUnlock()

	now := p.clock.Now()

	if cached != nil && now.Sub(cached.fetchedAt) < p.config.TTL {
		logger.DebugCtx(ctx, "Using cached block number", zap.Uint64("block_number", cached.number))
		return cached.number, nil
	}

	blockNumber, err := p.fetcher.FetchLatestBlock(ctx)
	if err != nil {
		if cached != nil && now.Sub(cached.fetchedAt) < p.config.StaleWindow {
			logger.WarnCtx(ctx, "Using stale block number", zap.Uint64("block_number", cached.number), zap.Error(err))
			return cached.number, nil
		}
		return 0, fmt.Errorf("failed to fetch latest block and no valid cache available: %w", err)
	}

	p.mu.Lock()
	p.head = &head{number: blockNumber, fetchedAt: now}
	p.mu.Unlock()

	return blockNumber, nil
}

// GetBlockTimestamp returns the timestamp of a block, caching it on first fetch
func (p *blockProvider) GetBlockTimestamp(ctx context.Context, blockNumber uint64) (int64, error) {
	p.mu.RLock()
	ts, ok := p.timestamps[blockNumber]
	p.mu.RUnlock()
	if ok {
		return ts, nil
	}

	ts, err := p.fetcher.FetchBlockTimestamp(ctx, blockNumber)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch timestamp of block %d: %w", blockNumber, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.timestamps) >= p.config.MaxCachedTimestamps {
		p.evictOldest()
	}
	p.timestamps[blockNumber] = ts

	return ts, nil
}

// evictOldest drops the lowest cached block. Callers must hold the write lock.
func (p *blockProvider) evictOldest() {
	first := true
	var oldest uint64
	for n := range p.timestamps {
		if first || n < oldest {
			oldest = n
			first = false
		}
	}
	delete(p.timestamps, oldest)
}

// Prune drops cached timestamps of blocks below the given number
func (p *blockProvider) Prune(below uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for n := range p.timestamps {
		if n < below {
			delete(p.timestamps, n)
		}
	}
}
