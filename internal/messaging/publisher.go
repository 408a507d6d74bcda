package messaging

import (
	"context"

	"github.com/feral-file/ff-projector/internal/domain"
)

// Change describes one event that was committed to the projection
type Change struct {
	// ID is a ulid assigned when the change is published
	ID             string              `json:"id"`
	Chain          domain.Chain        `json:"chain"`
	Kind           domain.ContractKind `json:"kind"`
	Event          string              `json:"event"`
	Contract       string              `json:"contract"`
	TxHash         string              `json:"tx_hash"`
	BlockNumber    uint64              `json:"block_number"`
	BlockTimestamp int64               `json:"block_timestamp"`
	LogIndex       uint                `json:"log_index"`
	// Discovered lists contracts the event added to the watch set
	Discovered []string `json:"discovered,omitempty"`
}

// Publisher defines the interface for publishing projection changes to a message queue
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// Publish publishes a committed change
	Publish(ctx context.Context, change *Change) error
	// Close closes the connection
	Close()
}
