package eventbus

import (
	"sync"

	"github.com/google/uuid"
)

// MemoryDedup is an in-process Dedup used by tests and by local runs
// without a database-backed processed_events table.
type MemoryDedup struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemoryDedup() *MemoryDedup {
	return &MemoryDedup{seen: make(map[string]struct{})}
}

func key(consumerName string, eventID uuid.UUID) string {
	return consumerName + ":" + eventID.String()
}

func (d *MemoryDedup) Seen(consumerName string, eventID uuid.UUID) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.seen[key(consumerName, eventID)]
	return ok, nil
}

func (d *MemoryDedup) MarkSeen(consumerName string, eventID uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen[key(consumerName, eventID)] = struct{}{}
	return nil
}

var _ Dedup = (*MemoryDedup)(nil)
