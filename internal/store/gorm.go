package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/feral-file/ff-projector/internal/domain"
	"github.com/feral-file/ff-projector/internal/store/schema"
)

type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new store over a gorm connection (postgres or sqlite)
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// If any of the pool settings are 0, reasonable defaults are used:
//   - MaxOpenConns: 20 (if 0)
//   - MaxIdleConns: 5 (if 0)
//   - ConnMaxLifetime: 5 minutes (if 0)
//   - ConnMaxIdleTime: 10 minutes (if 0)
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	// Ensure MaxIdleConns doesn't exceed MaxOpenConns
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// Get loads the entity with the given id into dst
func (s *gormStore) Get(ctx context.Context, dst interface{}, id string) (bool, error) {
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(dst).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get %T %s: %w", dst, id, err)
	}
	return true, nil
}

// Save upserts an entity, overwriting every column on conflict
func (s *gormStore) Save(ctx context.Context, entity interface{}) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(entity).Error
	if err != nil {
		return fmt.Errorf("failed to save %T: %w", entity, err)
	}
	return nil
}

// Delete removes an entity by id
func (s *gormStore) Delete(ctx context.Context, model interface{}, id string) error {
	err := s.db.WithContext(ctx).Where("id = ?", id).Delete(model).Error
	if err != nil {
		return fmt.Errorf("failed to delete %T %s: %w", model, id, err)
	}
	return nil
}

// Find loads every entity matching conds
func (s *gormStore) Find(ctx context.Context, dst interface{}, conds map[string]interface{}) error {
	q := s.db.WithContext(ctx)
	if len(conds) > 0 {
		q = q.Where(conds)
	}
	if err := q.Order("id").Find(dst).Error; err != nil {
		return fmt.Errorf("failed to find %T: %w", dst, err)
	}
	return nil
}

// Count counts the entities matching conds
func (s *gormStore) Count(ctx context.Context, model interface{}, conds map[string]interface{}) (int64, error) {
	var count int64
	q := s.db.WithContext(ctx).Model(model)
	if len(conds) > 0 {
		q = q.Where(conds)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count %T: %w", model, err)
	}
	return count, nil
}

// WithTx runs fn in a transaction, rolling back when fn returns an error
func (s *gormStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func blockCursorKey(chain domain.Chain) string {
	return fmt.Sprintf("block_cursor:%s", chain)
}

func eventCursorKey(chain domain.Chain) string {
	return fmt.Sprintf("event_cursor:%s", chain)
}

// GetBlockCursor retrieves the last processed block number for a chain
func (s *gormStore) GetBlockCursor(ctx context.Context, chain domain.Chain) (uint64, error) {
	value, err := s.GetKeyValue(ctx, blockCursorKey(chain))
	if err != nil {
		return 0, fmt.Errorf("failed to get block cursor: %w", err)
	}
	if value == "" {
		return 0, nil // Return 0 if no cursor exists
	}

	blockNumber, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse block cursor: %w", err)
	}

	return blockNumber, nil
}

// SetBlockCursor stores the last processed block number for a chain
func (s *gormStore) SetBlockCursor(ctx context.Context, chain domain.Chain, blockNumber uint64) error {
	if err := s.SetKeyValue(ctx, blockCursorKey(chain), strconv.FormatUint(blockNumber, 10)); err != nil {
		return fmt.Errorf("failed to set block cursor: %w", err)
	}
	return nil
}

// GetEventCursor retrieves the position of the last applied event.
// The value is stored as "block:logIndex".
func (s *gormStore) GetEventCursor(ctx context.Context, chain domain.Chain) (*domain.Position, error) {
	value, err := s.GetKeyValue(ctx, eventCursorKey(chain))
	if err != nil {
		return nil, fmt.Errorf("failed to get event cursor: %w", err)
	}
	if value == "" {
		return nil, nil
	}

	block, logIndex, ok := strings.Cut(value, ":")
	if !ok {
		return nil, fmt.Errorf("malformed event cursor %q", value)
	}
	b, err := strconv.ParseUint(block, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse event cursor block: %w", err)
	}
	l, err := strconv.ParseUint(logIndex, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("failed to parse event cursor log index: %w", err)
	}

	return &domain.Position{Block: b, LogIndex: uint(l)}, nil
}

// SetEventCursor stores the position of the last applied event
func (s *gormStore) SetEventCursor(ctx context.Context, chain domain.Chain, position domain.Position) error {
	value := fmt.Sprintf("%d:%d", position.Block, position.LogIndex)
	if err := s.SetKeyValue(ctx, eventCursorKey(chain), value); err != nil {
		return fmt.Errorf("failed to set event cursor: %w", err)
	}
	return nil
}

// SetKeyValue sets a key-value pair in the key-value store
func (s *gormStore) SetKeyValue(ctx context.Context, key string, value string) error {
	kv := schema.KeyValueStore{
		Key:   key,
		Value: value,
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&kv).Error
	if err != nil {
		return fmt.Errorf("failed to set key-value: %w", err)
	}

	return nil
}

// GetKeyValue retrieves a value by key from the key-value store
func (s *gormStore) GetKeyValue(ctx context.Context, key string) (string, error) {
	var kv schema.KeyValueStore
	err := s.db.WithContext(ctx).Where(&schema.KeyValueStore{Key: key}).Take(&kv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get key-value: %w", err)
	}

	return kv.Value, nil
}

// ListWatchedContracts returns every watched contract
func (s *gormStore) ListWatchedContracts(ctx context.Context) ([]schema.WatchedContract, error) {
	var contracts []schema.WatchedContract
	if err := s.db.WithContext(ctx).Order("id").Find(&contracts).Error; err != nil {
		return nil, fmt.Errorf("failed to list watched contracts: %w", err)
	}
	return contracts, nil
}

// Migrate creates or updates every table
func (s *gormStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(schema.Models()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
