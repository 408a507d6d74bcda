package emitter

import (
	"context"
	"sync"

	"github.com/feral-file/ff-projector/internal/domain"
)

// Discoveries queues contracts discovered while an event is applied, so the
// block range in flight can be re-fetched for them. It is the registry's Watcher.
type Discoveries struct {
	mu        sync.Mutex
	addresses []string
}

// NewDiscoveries creates an empty discovery queue
func NewDiscoveries() *Discoveries {
	return &Discoveries{}
}

// BeginWatching queues address for the range being processed
func (d *Discoveries) BeginWatching(_ context.Context, address string, _ domain.ContractKind) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.addresses = append(d.addresses, address)
	return nil
}

// Drain returns and clears the queued addresses
func (d *Discoveries) Drain() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	addresses := d.addresses
	d.addresses = nil
	return addresses
}
