package model

import "time"

// QueueStatus is the lifecycle tag of a deferred work item.
type QueueStatus string

// Queue item states.
const (
	QueuePending  QueueStatus = "pending"
	QueueInFlight QueueStatus = "in_flight"
	QueueFailed   QueueStatus = "failed"
)

// QueueItem is one durable record of a deferred action. The payload is opaque
// to the queue; only the status tag and retry count ever change after insert.
// The item id doubles as the idempotency key when the sync engine applies it
// against the remote store.
type QueueItem struct {
	CreatedAt  time.Time
	ID         string
	Status     QueueStatus
	Payload    []byte
	RetryCount int
}
