package eventbus

import "github.com/google/uuid"

// Dedup is the processed-events ledger consumers use to make otherwise
// at-least-once delivery idempotent. A consumer checks Seen before acting
// on an event and calls MarkSeen after its side effect succeeds. The two
// are separate writes, not one transaction, so a crash between them lets a
// redelivery repeat the side effect.
type Dedup interface {
	Seen(consumerName string, eventID uuid.UUID) (bool, error)
	MarkSeen(consumerName string, eventID uuid.UUID) error
}
