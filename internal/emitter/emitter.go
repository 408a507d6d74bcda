package emitter

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-projector/internal/adapter"
	"github.com/feral-file/ff-projector/internal/domain"
	"github.com/feral-file/ff-projector/internal/logger"
	"github.com/feral-file/ff-projector/internal/metrics"
	"github.com/feral-file/ff-projector/internal/projector"
	"github.com/feral-file/ff-projector/internal/providers/ethereum"
	"github.com/feral-file/ff-projector/internal/registry"
	"github.com/feral-file/ff-projector/internal/store"
)

// ErrHalted is returned by Run after a fatal projection error
var ErrHalted = errors.New("projection halted")

// Config holds the configuration for the block loop
type Config struct {
	Chain domain.Chain
	// StartBlock is used when no cursor was saved yet, zero starts near the head
	StartBlock uint64
	// Confirmations keeps the loop this many blocks behind the head
	Confirmations uint64
	// BatchSize is the number of blocks fetched per range
	BatchSize uint64
	// PollInterval is how long to wait when caught up or when the source fails
	PollInterval time.Duration
}

// Emitter drives the projection from the log source, one block range at a time
//
//go:generate mockgen -source=emitter.go -destination=../mocks/emitter.go -package=mocks -mock_names=Emitter=MockEmitter
type Emitter interface {
	// Run processes blocks until ctx is cancelled or an event fails to apply
	Run(ctx context.Context) error
	// Status returns a snapshot of the loop's progress
	Status() Status
	// Close closes the log source
	Close()
}

type emitter struct {
	config      Config
	source      ethereum.Source
	store       store.Store
	registry    registry.Registry
	projector   projector.Projector
	discoveries *Discoveries
	clock       adapter.Clock
	status      *statusTracker

	// cursor is the position of the last applied event
	cursor *domain.Position
}

// NewEmitter creates the block loop. discoveries must be the watcher the registry reports to.
func NewEmitter(
	cfg Config,
	source ethereum.Source,
	st store.Store,
	reg registry.Registry,
	proj projector.Projector,
	discoveries *Discoveries,
	clock adapter.Clock,
) Emitter {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 5 * time.Second
	}
	return &emitter{
		config:      cfg,
		source:      source,
		store:       st,
		registry:    reg,
		projector:   proj,
		discoveries: discoveries,
		clock:       clock,
		status:      newStatusTracker(cfg.Chain, clock),
	}
}

// Run starts the block loop
func (e *emitter) Run(ctx context.Context) error {
	chain := string(e.config.Chain)

	next, err := e.startBlock(ctx)
	if err != nil {
		return err
	}
	if e.cursor, err = e.store.GetEventCursor(ctx, e.config.Chain); err != nil {
		return fmt.Errorf("failed to get event cursor: %w", err)
	}
	if e.cursor != nil {
		e.status.setCursor(*e.cursor)
	}

	logger.Info("Starting block loop",
		zap.String("chain", chain),
		zap.Uint64("block", next),
		zap.Int("watched", len(e.registry.Addresses())))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		head, err := e.source.LatestBlock(ctx)
		if err != nil {
			logger.Warn("Failed to get latest block", zap.String("chain", chain), zap.Error(err))
			if err := e.wait(ctx); err != nil {
				return err
			}
			continue
		}
		metrics.ChainLatestBlock.WithLabelValues(chain).Set(float64(head))
		e.status.setHead(head)

		if head < e.config.Confirmations || next > head-e.config.Confirmations {
			if err := e.wait(ctx); err != nil {
				return err
			}
			continue
		}

		to := next + e.config.BatchSize - 1
		if safe := head - e.config.Confirmations; to > safe {
			to = safe
		}

		if err := e.processRange(ctx, next, to); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var fatal *fatalError
			if errors.As(err, &fatal) {
				e.halt(fatal.err)
				return fmt.Errorf("%w: %v", ErrHalted, fatal.err)
			}
			logger.Warn("Failed to process block range",
				zap.String("chain", chain),
				zap.Uint64("from", next),
				zap.Uint64("to", to),
				zap.Error(err))
			if err := e.wait(ctx); err != nil {
				return err
			}
			continue
		}

		if err := e.store.SetBlockCursor(ctx, e.config.Chain, to); err != nil {
			return fmt.Errorf("failed to save block cursor: %w", err)
		}
		metrics.CursorBlock.WithLabelValues(chain).Set(float64(to))
		e.status.setCursorBlock(to)
		next = to + 1
	}
}

// startBlock resumes after the saved block cursor, or starts from the configured block or the safe head
func (e *emitter) startBlock(ctx context.Context) (uint64, error) {
	chain := string(e.config.Chain)

	lastBlock, err := e.store.GetBlockCursor(ctx, e.config.Chain)
	if err != nil {
		return 0, fmt.Errorf("failed to get block cursor: %w", err)
	}
	if lastBlock > 0 {
		logger.Info("Resuming from last processed block", zap.String("chain", chain), zap.Uint64("block", lastBlock+1))
		e.status.setCursorBlock(lastBlock)
		return lastBlock + 1, nil
	}

	if e.config.StartBlock > 0 {
		logger.Info("Starting from configured block", zap.String("chain", chain), zap.Uint64("block", e.config.StartBlock))
		return e.config.StartBlock, nil
	}

	head, err := e.source.LatestBlock(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block number: %w", err)
	}
	start := uint64(0)
	if head > e.config.Confirmations {
		start = head - e.config.Confirmations
	}
	logger.Info("Starting from latest block", zap.String("chain", chain), zap.Uint64("block", start))
	return start, nil
}

// fatalError marks a failure of the projection itself, as opposed to the log source
type fatalError struct {
	err error
}

func (f *fatalError) Error() string {
	return f.err.Error()
}

// processRange applies every event of [from, to] emitted by watched contracts.
// Contracts discovered mid-range have their logs of the same range merged into the queue.
func (e *emitter) processRange(ctx context.Context, from, to uint64) error {
	queue, err := e.fetch(ctx, e.registry.Addresses(), from, to)
	if err != nil {
		return fmt.Errorf("failed to fetch events: %w", err)
	}

	for len(queue) > 0 {
		event := queue[0]
		queue = queue[1:]

		position := event.Position()
		if e.cursor != nil && !position.After(*e.cursor) {
			continue
		}

		if err := e.projector.Apply(ctx, event); err != nil {
			e.discoveries.Drain()
			return &fatalError{err: err}
		}
		e.cursor = &position
		e.status.setCursor(position)

		discovered := e.discoveries.Drain()
		if len(discovered) == 0 {
			continue
		}
		more, err := e.fetch(ctx, discovered, from, to)
		if err != nil {
			return fmt.Errorf("failed to fetch events of discovered contracts: %w", err)
		}
		queue = merge(queue, more, position)
	}
	return nil
}

// fetch reads the events of addresses in [from, to]. A log that cannot be decoded halts the
// projection, since retrying the range would fail on it again.
func (e *emitter) fetch(ctx context.Context, addresses []string, from, to uint64) ([]*domain.Event, error) {
	events, err := e.source.Events(ctx, addresses, from, to)
	if err != nil {
		if errors.Is(err, domain.ErrMalformedEvent) {
			return nil, &fatalError{err: err}
		}
		return nil, err
	}
	return events, nil
}

// merge adds the events positioned after `after` to queue, keeping canonical order
func merge(queue, more []*domain.Event, after domain.Position) []*domain.Event {
	for _, event := range more {
		if event.Position().After(after) {
			queue = append(queue, event)
		}
	}
	sort.SliceStable(queue, func(i, j int) bool {
		return queue[j].Position().After(queue[i].Position())
	})
	return queue
}

func (e *emitter) halt(err error) {
	logger.Error(err, zap.String("message", "Projection halted"), zap.String("chain", string(e.config.Chain)))
	metrics.Halted.WithLabelValues(string(e.config.Chain)).Set(1)
	e.status.halt(err)
}

func (e *emitter) wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-e.clock.After(e.config.PollInterval):
		return nil
	}
}

// Status returns a snapshot of the loop's progress
func (e *emitter) Status() Status {
	return e.status.snapshot()
}

// Close closes the log source
func (e *emitter) Close() {
	e.source.Close()
}
