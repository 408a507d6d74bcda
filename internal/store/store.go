package store

import (
	"context"

	"github.com/feral-file/ff-projector/internal/domain"
	"github.com/feral-file/ff-projector/internal/store/schema"
)

// Store defines the interface for entity store operations.
// Entities are any of the models in the schema package, addressed by their string ID.
type Store interface {
	// Get loads the entity with the given id into dst and reports whether it exists
	Get(ctx context.Context, dst interface{}, id string) (bool, error)
	// Save inserts or fully overwrites an entity
	Save(ctx context.Context, entity interface{}) error
	// Delete removes the entity of model's type with the given id, if present
	Delete(ctx context.Context, model interface{}, id string) error
	// Find loads every entity matching conds into dst, ordered by id
	Find(ctx context.Context, dst interface{}, conds map[string]interface{}) error
	// Count returns the number of entities of model's type matching conds
	Count(ctx context.Context, model interface{}, conds map[string]interface{}) (int64, error)
	// WithTx runs fn against a store bound to a single database transaction
	WithTx(ctx context.Context, fn func(tx Store) error) error

	// GetBlockCursor retrieves the last fully processed block number for a chain
	GetBlockCursor(ctx context.Context, chain domain.Chain) (uint64, error)
	// SetBlockCursor stores the last fully processed block number for a chain
	SetBlockCursor(ctx context.Context, chain domain.Chain, blockNumber uint64) error
	// GetEventCursor retrieves the position of the last applied event, nil if none
	GetEventCursor(ctx context.Context, chain domain.Chain) (*domain.Position, error)
	// SetEventCursor stores the position of the last applied event
	SetEventCursor(ctx context.Context, chain domain.Chain, position domain.Position) error

	// SetKeyValue sets a key-value pair in the key-value store
	SetKeyValue(ctx context.Context, key string, value string) error
	// GetKeyValue retrieves a value by key, empty if absent
	GetKeyValue(ctx context.Context, key string) (string, error)

	// ListWatchedContracts returns every watched contract ordered by address
	ListWatchedContracts(ctx context.Context) ([]schema.WatchedContract, error)

	// Migrate creates or updates every table
	Migrate(ctx context.Context) error
}
