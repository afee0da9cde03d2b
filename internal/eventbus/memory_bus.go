package eventbus

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// subscription pairs a handler with the consumer name used for dedup
// bookkeeping by whoever constructs the bus's backing store.
type subscription struct {
	consumerName string
	handler      Handler
}

// MemoryBus is an in-process Bus used by tests and by single-binary local
// runs. Publish dispatches synchronously to every subscriber of the topic,
// so there is no reordering and no redelivery to simulate; tests that need
// at-least-once semantics should drive handlers directly instead.
type MemoryBus struct {
	mu   sync.Mutex
	subs map[string][]subscription
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string][]subscription)}
}

func (b *MemoryBus) Publish(ctx context.Context, topic string, payload []byte) error {
	evt := Event{ID: uuid.New(), Topic: topic, OccurredAt: time.Now(), Payload: payload}
	b.mu.Lock()
	handlers := append([]subscription(nil), b.subs[topic]...)
	b.mu.Unlock()
	for _, s := range handlers {
		if err := s.handler(ctx, evt); err != nil {
			return err
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(topic, consumerName string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[topic] = append(b.subs[topic], subscription{consumerName: consumerName, handler: h})
}

func (b *MemoryBus) Run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (b *MemoryBus) Close() error { return nil }
