package emitter

import (
	"sync"
	"time"

	"github.com/feral-file/ff-projector/internal/adapter"
	"github.com/feral-file/ff-projector/internal/domain"
)

// Status is a snapshot of the block loop
type Status struct {
	Chain domain.Chain `json:"chain"`
	// Head is the latest block reported by the chain
	Head uint64 `json:"head"`
	// CursorBlock is the last block range fully applied
	CursorBlock uint64 `json:"cursor_block"`
	// Cursor is the position of the last applied event
	Cursor *domain.Position `json:"cursor,omitempty"`
	Halted bool             `json:"halted"`
	// Reason is the error that halted the projection
	Reason    string    `json:"reason,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

type statusTracker struct {
	mu     sync.RWMutex
	clock  adapter.Clock
	status Status
}

func newStatusTracker(chain domain.Chain, clock adapter.Clock) *statusTracker {
	return &statusTracker{clock: clock, status: Status{Chain: chain}}
}

func (s *statusTracker) update(fn func(*Status)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.status)
	s.status.UpdatedAt = s.clock.Now()
}

func (s *statusTracker) setHead(head uint64) {
	s.update(func(st *Status) { st.Head = head })
}

func (s *statusTracker) setCursorBlock(block uint64) {
	s.update(func(st *Status) { st.CursorBlock = block })
}

func (s *statusTracker) setCursor(position domain.Position) {
	s.update(func(st *Status) {
		p := position
		st.Cursor = &p
	})
}

func (s *statusTracker) halt(err error) {
	s.update(func(st *Status) {
		st.Halted = true
		st.Reason = err.Error()
	})
}

func (s *statusTracker) snapshot() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.status
	if st.Cursor != nil {
		c := *st.Cursor
		st.Cursor = &c
	}
	return st
}
