// Package workflow orchestrates reviewer actions: it consults the access
// gate, then routes each action either synchronously to the review state
// machine or, for connectivity-tolerant field data, through the persistent
// local queue for a later drain.
package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Sai-Pat/Saksham-Web-sub000/internal/common"
	"github.com/Sai-Pat/Saksham-Web-sub000/internal/gate"
	"github.com/Sai-Pat/Saksham-Web-sub000/internal/model"
	"github.com/Sai-Pat/Saksham-Web-sub000/internal/review"
	"github.com/Sai-Pat/Saksham-Web-sub000/internal/service"
	"github.com/Sai-Pat/Saksham-Web-sub000/internal/syncer"
)

// Controller drives interactive reviewer actions. Every operation authorizes
// first; if the gate denies, the caller sees ErrUnauthorized and no side
// effect occurs.
type Controller struct {
	gate    *gate.Gate
	machine *review.Machine
	queue   service.WorkQueue
	syncer  *syncer.Engine
	logger  *slog.Logger
}

// New creates a workflow controller.
func New(g *gate.Gate, machine *review.Machine, queue service.WorkQueue, engine *syncer.Engine) *Controller {
	return &Controller{
		gate:    g,
		machine: machine,
		queue:   queue,
		syncer:  engine,
		logger:  slog.Default().With("component", "workflow"),
	}
}

// ListApplications returns every application for the review worklist.
func (c *Controller) ListApplications(ctx context.Context) ([]model.Application, error) {
	if _, err := c.gate.Require(ctx, model.RoleOfficer); err != nil {
		return nil, err
	}
	return c.machine.Applications(ctx)
}

// CheckDocuments returns the documents of an application for review.
func (c *Controller) CheckDocuments(ctx context.Context, applicationID string) ([]model.Document, error) {
	if _, err := c.gate.Require(ctx, model.RoleOfficer); err != nil {
		return nil, err
	}
	return c.machine.Documents(ctx, applicationID)
}

// Application returns the aggregate for display.
func (c *Controller) Application(ctx context.Context, applicationID string) (*model.Application, error) {
	if _, err := c.gate.Require(ctx, model.RoleOfficer); err != nil {
		return nil, err
	}
	return c.machine.Application(ctx, applicationID)
}

// TransitionDocument applies a document review transition synchronously.
func (c *Controller) TransitionDocument(ctx context.Context, documentID string, target model.DocumentStatus, reason string) (*model.Document, error) {
	session, err := c.gate.Require(ctx, model.RoleOfficer)
	if err != nil {
		return nil, err
	}
	return c.machine.TransitionDocument(ctx, documentID, target, reason, session.Subject)
}

// ApproveApplication records the reviewer's approval. Unverified documents do
// not block approval; that looseness is policy here, so the controller only
// warns about them.
func (c *Controller) ApproveApplication(ctx context.Context, applicationID string) (*model.Application, error) {
	session, err := c.gate.Require(ctx, model.RoleOfficer)
	if err != nil {
		return nil, err
	}

	app, err := c.machine.Application(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if unverified := app.UnverifiedDocuments(); len(unverified) > 0 {
		c.logger.Warn("approving application with unverified documents",
			"application_id", applicationID,
			"unverified", len(unverified))
	}

	return c.machine.ApproveApplication(ctx, applicationID, session.Subject)
}

// RejectApplication rejects the aggregate with a reason.
func (c *Controller) RejectApplication(ctx context.Context, applicationID, reason string) (*model.Application, error) {
	session, err := c.gate.Require(ctx, model.RoleOfficer)
	if err != nil {
		return nil, err
	}
	return c.machine.RejectApplication(ctx, applicationID, reason, session.Subject)
}

// ReleaseFunds performs the terminal fund-release transition. Admin only.
func (c *Controller) ReleaseFunds(ctx context.Context, applicationID string) (*model.Application, error) {
	session, err := c.gate.Require(ctx, model.RoleAdmin)
	if err != nil {
		return nil, err
	}
	return c.machine.ReleaseFunds(ctx, applicationID, session.Subject)
}

// EnqueueFieldPhoto records a field-visit photo for deferred sync. It appends
// durably to the local queue and returns immediately; it never blocks the
// caller on the sync engine.
func (c *Controller) EnqueueFieldPhoto(ctx context.Context, visit model.FieldVisit) (*model.QueueItem, error) {
	session, err := c.gate.Require(ctx, model.RoleOfficer)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(visit.ApplicationID) == "" {
		return nil, fmt.Errorf("%w: field visit requires an application id", common.ErrInvalidArgument)
	}
	if strings.TrimSpace(visit.PhotoURL) == "" {
		return nil, fmt.Errorf("%w: field visit requires a photo", common.ErrInvalidArgument)
	}
	if visit.CapturedAt.IsZero() {
		visit.CapturedAt = time.Now()
	}
	visit.CapturedBy = session.Subject

	payload, err := json.Marshal(visit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidArgument, err)
	}

	item, err := c.queue.Enqueue(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue field photo: %w", err)
	}

	c.logger.Info("field photo queued",
		"item_id", item.ID,
		"application_id", visit.ApplicationID)

	return item, nil
}

// SyncNow triggers an explicit drain of the local queue.
func (c *Controller) SyncNow(ctx context.Context) (service.DrainResult, error) {
	if _, err := c.gate.Require(ctx, model.RoleOfficer); err != nil {
		return service.DrainResult{}, err
	}
	return c.syncer.Drain(ctx)
}

// PendingCount reports how many deferred actions await sync.
func (c *Controller) PendingCount(ctx context.Context) (int, error) {
	return c.queue.PendingCount(ctx)
}
