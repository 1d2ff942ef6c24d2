// Package service defines the interfaces between the portal core and its
// collaborators: the remote review store, the identity provider, and the
// durable work queue.
package service

import (
	"context"
	"time"

	"github.com/Sai-Pat/Saksham-Web-sub000/internal/model"
)

// Store is the remote data store the review core reads and writes. Review
// writes commit the entity change and any notification in one unit; callers
// never observe a status change without its side effect.
type Store interface {
	// Application reads
	GetApplication(ctx context.Context, id string) (*model.Application, error)
	ListApplications(ctx context.Context) ([]model.Application, error)

	// Document reads
	GetDocument(ctx context.Context, id string) (*model.Document, error)
	ListDocuments(ctx context.Context, applicationID string) ([]model.Document, error)

	// Review writes, each atomic with its optional notification
	SaveDocumentReview(ctx context.Context, doc *model.Document, note *model.Notification) error
	SaveApplicationReview(ctx context.Context, app *model.Application, note *model.Notification) error

	// Notification reads
	ListNotifications(ctx context.Context, applicantID string) ([]model.Notification, error)

	// ApplyFieldVisit records a field visit idempotently: re-applying the
	// same key has no further effect and returns nil.
	ApplyFieldVisit(ctx context.Context, key string, visit model.FieldVisit) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// WorkQueue is the persistent local queue of deferred actions. Every mutation
// is committed durably before the call returns.
type WorkQueue interface {
	Enqueue(ctx context.Context, payload []byte) (*model.QueueItem, error)
	PeekAll(ctx context.Context) ([]model.QueueItem, error)
	Remove(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	SetStatus(ctx context.Context, id string, status model.QueueStatus, retryCount int) error
	PendingCount(ctx context.Context) (int, error)
	Close() error
}

// IdentityProvider is the authentication collaborator the access gate
// consults. Current may contact a remote identity service; a lookup failure
// degrades to a no-role session at the gate, never to a default role.
type IdentityProvider interface {
	Current(ctx context.Context) (*model.Session, error)
	// OnChange registers a callback fired on sign-in, sign-out or token
	// refresh. Callbacks must be fast and must not call back into the
	// provider.
	OnChange(fn func())
}

// RetryOptions configures retry behavior for remote operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// ItemFailure records a queue item dropped during a drain because the remote
// store rejected it permanently.
type ItemFailure struct {
	Err    error
	ItemID string
}

// DrainResult summarizes one sync engine drain.
type DrainResult struct {
	Failures  []ItemFailure
	Applied   int
	Remaining int
}
