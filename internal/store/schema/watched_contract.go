package schema

import (
	"time"

	"github.com/feral-file/ff-projector/internal/domain"
)

// WatchedContract represents the watched_contracts table - every contract whose events are projected
type WatchedContract struct {
	// ID is the contract address
	ID string `gorm:"column:id;primaryKey;type:text"`
	// Kind selects the event handlers for the contract
	Kind domain.ContractKind `gorm:"column:kind;not null;type:text"`
	// DiscoveredAtBlock is the block of the event that discovered the contract, or the start block for roots
	DiscoveredAtBlock uint64 `gorm:"column:discovered_at_block;not null;default:0"`
	// CreatedAt is when this watch entry was created
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the table name for the WatchedContract model
func (WatchedContract) TableName() string {
	return "watched_contracts"
}
