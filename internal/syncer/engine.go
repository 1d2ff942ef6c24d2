// Package syncer implements the sync engine that drains the persistent local
// queue against the remote store.
package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Sai-Pat/Saksham-Web-sub000/internal/common"
	"github.com/Sai-Pat/Saksham-Web-sub000/internal/model"
	"github.com/Sai-Pat/Saksham-Web-sub000/internal/service"
)

// Engine drains queued field actions in FIFO order. Each item is applied with
// an idempotency key equal to its queue id, so a retry after an unobserved
// success has no duplicate effect. At most one drain runs per device at a
// time; a concurrent Drain call is a no-op against the active drain.
type Engine struct {
	queue     service.WorkQueue
	store     service.Store
	logger    *slog.Logger
	progress  func(done, total int)
	retryOpts service.RetryOptions
	mu        sync.Mutex
}

// Config holds configuration options for the sync engine.
type Config struct {
	// Progress, if set, is called after each item is processed.
	Progress  func(done, total int)
	RetryOpts service.RetryOptions
}

// New creates a sync engine over the given queue and store.
func New(queue service.WorkQueue, store service.Store, cfg Config) *Engine {
	return &Engine{
		queue:     queue,
		store:     store,
		retryOpts: cfg.RetryOpts,
		progress:  cfg.Progress,
		logger:    slog.Default().With("component", "syncer"),
	}
}

// Drain applies queued items in order. A transient failure halts the drain
// at the failing item, leaving it and everything after it queued for the
// next drain. A permanent failure removes the item and surfaces it in the
// result. Cancellation is cooperative: the drain stops between items, never
// mid-item. A drain that processes zero items is not an error.
func (e *Engine) Drain(ctx context.Context) (service.DrainResult, error) {
	if !e.mu.TryLock() {
		e.logger.Debug("drain already in progress, skipping")
		return service.DrainResult{}, nil
	}
	defer e.mu.Unlock()

	items, err := e.queue.PeekAll(ctx)
	if err != nil {
		return service.DrainResult{}, fmt.Errorf("failed to read queue: %w", err)
	}

	result := service.DrainResult{Remaining: len(items)}
	if len(items) == 0 {
		return result, nil
	}

	e.logger.Info("draining queue", "items", len(items))

	for i, item := range items {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if err := e.queue.SetStatus(ctx, item.ID, model.QueueInFlight, item.RetryCount); err != nil {
			e.logger.Warn("failed to mark item in-flight", "item_id", item.ID, "error", err)
		}

		applyErr := e.applyItem(ctx, item)
		if applyErr == nil {
			if err := e.queue.Remove(ctx, item.ID); err != nil {
				return result, fmt.Errorf("failed to remove applied item %s: %w", item.ID, err)
			}
			result.Applied++
			result.Remaining--
			e.report(i+1, len(items))
			continue
		}

		if isPermanent(applyErr) {
			// Confirmed permanent: drop the item but never silently.
			if err := e.queue.Remove(ctx, item.ID); err != nil {
				return result, fmt.Errorf("failed to remove failed item %s: %w", item.ID, err)
			}
			result.Remaining--
			result.Failures = append(result.Failures, service.ItemFailure{ItemID: item.ID, Err: applyErr})
			e.logger.Error("dropped permanently failed item", "item_id", item.ID, "error", applyErr)
			e.report(i+1, len(items))
			continue
		}

		// Transient or ambiguous: halting here preserves FIFO order for
		// items touching the same application.
		if err := e.queue.SetStatus(ctx, item.ID, model.QueueFailed, item.RetryCount+1); err != nil {
			e.logger.Warn("failed to mark item failed", "item_id", item.ID, "error", err)
		}
		e.logger.Warn("drain halted on transient failure",
			"item_id", item.ID,
			"applied", result.Applied,
			"remaining", result.Remaining,
			"error", applyErr)
		return result, fmt.Errorf("drain halted at item %s: %w", item.ID, applyErr)
	}

	e.logger.Info("drain complete",
		"applied", result.Applied,
		"dropped", len(result.Failures))

	return result, nil
}

// applyItem decodes one queued payload and applies it with retry. The item id
// is the idempotency key.
func (e *Engine) applyItem(ctx context.Context, item model.QueueItem) error {
	var visit model.FieldVisit
	if err := json.Unmarshal(item.Payload, &visit); err != nil {
		return common.Permanent(fmt.Errorf("%w: malformed payload: %v", common.ErrInvalidArgument, err))
	}

	return common.WithRetry(ctx, func() error {
		return e.store.ApplyFieldVisit(ctx, item.ID, visit)
	}, e.retryOpts)
}

// isPermanent reports whether err is a confirmed non-retryable failure.
// Ambiguous errors count as transient so the item stays queued.
func isPermanent(err error) bool {
	var retryableErr *common.RetryableError
	return errors.As(err, &retryableErr) && !retryableErr.Retryable
}

func (e *Engine) report(done, total int) {
	if e.progress != nil {
		e.progress(done, total)
	}
}
