package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/feral-file/ff-projector/internal/domain"
	"github.com/feral-file/ff-projector/internal/logger"
	"github.com/feral-file/ff-projector/internal/store"
	"github.com/feral-file/ff-projector/internal/store/schema"
)

// Watcher starts delivering events from a newly discovered contract
//
//go:generate mockgen -source=registry.go -destination=../mocks/watcher.go -package=mocks -mock_names=Watcher=MockWatcher
type Watcher interface {
	// BeginWatching registers address so its future events reach the projector as kind
	BeginWatching(ctx context.Context, address string, kind domain.ContractKind) error
}

// Root is a statically configured contract the projection starts from
type Root struct {
	Address string
	Kind    domain.ContractKind
}

// Registry tracks which contracts are watched and the kind each one is dispatched as
type Registry interface {
	// EnsureWatching records address as kind and begins watching it, exactly once per address.
	// The row is written through tx so it commits or rolls back with the event.
	// It reports whether the address was newly discovered.
	EnsureWatching(ctx context.Context, tx store.Store, address string, kind domain.ContractKind, discoveredAt uint64) (bool, error)
	// KindOf returns the kind of a watched address, including addresses staged by the event in flight
	KindOf(address string) (domain.ContractKind, bool)
	// Commit promotes addresses staged by the current event
	Commit()
	// Rollback drops addresses staged by the current event
	Rollback()
	// Load restores the watched set from the store
	Load(ctx context.Context, s store.Store) error
	// Seed records the configured root contracts
	Seed(ctx context.Context, s store.Store, roots []Root, startBlock uint64) error
	// Addresses returns every watched address, sorted
	Addresses() []string
}

type registry struct {
	mu      sync.RWMutex
	kinds   map[string]domain.ContractKind
	staged  map[string]domain.ContractKind
	watcher Watcher
}

// New creates an empty registry that reports discoveries to watcher
func New(watcher Watcher) Registry {
	return &registry{
		kinds:   make(map[string]domain.ContractKind),
		staged:  make(map[string]domain.ContractKind),
		watcher: watcher,
	}
}

// EnsureWatching records and watches a newly discovered contract
func (r *registry) EnsureWatching(ctx context.Context, tx store.Store, address string, kind domain.ContractKind, discoveredAt uint64) (bool, error) {
	address = domain.NormalizeAddress(address)

	if existing, ok := r.KindOf(address); ok {
		if existing != kind {
			logger.WarnCtx(ctx, "Contract already watched with a different kind",
				zap.String("address", address),
				zap.String("kind", string(existing)),
				zap.String("requestedKind", string(kind)))
		}
		return false, nil
	}

	var watched schema.WatchedContract
	found, err := tx.Get(ctx, &watched, address)
	if err != nil {
		return false, fmt.Errorf("failed to check watched contract: %w", err)
	}
	if found {
		r.stage(address, watched.Kind)
		return false, nil
	}

	watched = schema.WatchedContract{
		ID:                address,
		Kind:              kind,
		DiscoveredAtBlock: discoveredAt,
	}
	if err := tx.Save(ctx, &watched); err != nil {
		return false, fmt.Errorf("failed to record watched contract: %w", err)
	}

	if err := r.watcher.BeginWatching(ctx, address, kind); err != nil {
		return false, fmt.Errorf("failed to begin watching %s: %w", address, err)
	}
	r.stage(address, kind)

	logger.InfoCtx(ctx, "Began watching contract",
		zap.String("address", address),
		zap.String("kind", string(kind)),
		zap.Uint64("block", discoveredAt))

	return true, nil
}

func (r *registry) stage(address string, kind domain.ContractKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.staged[address] = kind
}

// KindOf returns the kind of a watched address
func (r *registry) KindOf(address string) (domain.ContractKind, bool) {
	address = domain.NormalizeAddress(address)

	r.mu.RLock()
	defer r.mu.RUnlock()
	if kind, ok := r.kinds[address]; ok {
		return kind, true
	}
	kind, ok := r.staged[address]
	return kind, ok
}

// Commit promotes staged addresses
func (r *registry) Commit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for address, kind := range r.staged {
		r.kinds[address] = kind
	}
	r.staged = make(map[string]domain.ContractKind)
}

// Rollback drops staged addresses
func (r *registry) Rollback() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.staged = make(map[string]domain.ContractKind)
}

// Load restores the watched set from the store
func (r *registry) Load(ctx context.Context, s store.Store) error {
	contracts, err := s.ListWatchedContracts(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range contracts {
		r.kinds[c.ID] = c.Kind
	}

	logger.InfoCtx(ctx, "Loaded watched contracts", zap.Int("count", len(contracts)))
	return nil
}

// Seed records the configured root contracts that are not watched yet
func (r *registry) Seed(ctx context.Context, s store.Store, roots []Root, startBlock uint64) error {
	for _, root := range roots {
		if !domain.IsRootKind(root.Kind) {
			return fmt.Errorf("contract kind %s cannot be a root", root.Kind)
		}
		address := domain.NormalizeAddress(root.Address)

		var watched schema.WatchedContract
		found, err := s.Get(ctx, &watched, address)
		if err != nil {
			return err
		}
		if !found {
			watched = schema.WatchedContract{ID: address, Kind: root.Kind, DiscoveredAtBlock: startBlock}
			if err := s.Save(ctx, &watched); err != nil {
				return err
			}
		}

		r.mu.Lock()
		r.kinds[address] = watched.Kind
		r.mu.Unlock()
	}
	return nil
}

// Addresses returns every committed watched address
func (r *registry) Addresses() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	addresses := make([]string, 0, len(r.kinds))
	for address := range r.kinds {
		addresses = append(addresses, address)
	}
	sort.Strings(addresses)
	return addresses
}
