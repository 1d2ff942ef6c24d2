// Package review implements the document and application review state
// machine. It owns every write to Document and Application state and is the
// only creator of notifications; transitions commit their side effects
// atomically through the store or not at all.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Sai-Pat/Saksham-Web-sub000/internal/common"
	"github.com/Sai-Pat/Saksham-Web-sub000/internal/model"
	"github.com/Sai-Pat/Saksham-Web-sub000/internal/service"
	"github.com/google/uuid"
)

// Machine executes review transitions against the remote store. It is
// policy-agnostic: authorization happens at the workflow layer before any
// method here is called, and document completeness is workflow policy too.
type Machine struct {
	store  service.Store
	logger *slog.Logger
	now    func() time.Time
}

// New creates a review state machine over the given store.
func New(store service.Store) *Machine {
	return &Machine{
		store:  store,
		logger: slog.Default().With("component", "review"),
		now:    time.Now,
	}
}

// Applications returns every application.
func (m *Machine) Applications(ctx context.Context) ([]model.Application, error) {
	return m.store.ListApplications(ctx)
}

// Application returns the aggregate with its documents.
func (m *Machine) Application(ctx context.Context, applicationID string) (*model.Application, error) {
	return m.store.GetApplication(ctx, applicationID)
}

// Documents returns the documents of an application.
func (m *Machine) Documents(ctx context.Context, applicationID string) ([]model.Document, error) {
	return m.store.ListDocuments(ctx, applicationID)
}

// TransitionDocument moves a document to target. Transitions into rejected
// require a non-empty reason and emit exactly one notification on the edge
// into rejected; re-rejecting an already rejected document overwrites the
// reason without a second notification. Transitioning into attention clears
// the reason; attention to attention is a no-op.
func (m *Machine) TransitionDocument(ctx context.Context, documentID string, target model.DocumentStatus, reason, actor string) (*model.Document, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("%w: unknown document status %q", common.ErrInvalidArgument, target)
	}
	reason = strings.TrimSpace(reason)
	if target == model.DocRejected && reason == "" {
		return nil, fmt.Errorf("%w: rejection requires a reason", common.ErrInvalidArgument)
	}

	doc, err := m.store.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if doc.Status == model.DocAttention && target == model.DocAttention {
		return doc, nil
	}
	if !legalTransition(doc.Status, target) {
		return nil, fmt.Errorf("%w: no transition from %q to %q", common.ErrPreconditionFailed, doc.Status, target)
	}

	enteredRejected := target == model.DocRejected && doc.Status != model.DocRejected

	doc.Status = target
	if target == model.DocRejected {
		doc.RejectionReason = reason
	} else {
		doc.RejectionReason = ""
	}
	doc.LastModifiedAt = m.now()
	doc.LastModifiedBy = actor

	var note *model.Notification
	if enteredRejected {
		app, appErr := m.store.GetApplication(ctx, doc.ApplicationID)
		if appErr != nil {
			return nil, appErr
		}
		note = &model.Notification{
			ID:          uuid.NewString(),
			ApplicantID: app.ApplicantID,
			Title:       "Document needs your attention",
			Message:     fmt.Sprintf("Your %s document was rejected: %s", doc.Type, reason),
			DocumentID:  doc.ID,
			CreatedAt:   doc.LastModifiedAt,
		}
	}

	if err := m.store.SaveDocumentReview(ctx, doc, note); err != nil {
		return nil, err
	}

	m.logger.Info("document transitioned",
		"document_id", doc.ID,
		"status", doc.Status,
		"notified", note != nil,
		"actor", actor)

	return doc, nil
}

// legalTransition reports whether a document may move from current to target.
// Attention fans out to verified or rejected, either of those reopens back to
// attention, and a rejected document may be re-rejected with a new reason.
func legalTransition(current, target model.DocumentStatus) bool {
	switch current {
	case model.DocAttention:
		return true
	case model.DocVerified:
		return target == model.DocAttention
	case model.DocRejected:
		return target == model.DocAttention || target == model.DocRejected
	}
	return false
}

// ApproveApplication sets the human approval flag. It deliberately does not
// check that every document is verified; that looseness is preserved as
// workflow policy. Approving a fund-released application is rejected.
func (m *Machine) ApproveApplication(ctx context.Context, applicationID, actor string) (*model.Application, error) {
	app, err := m.store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.FundsReleased {
		return nil, fmt.Errorf("%w: funds already released for %s", common.ErrAlreadyTerminal, applicationID)
	}

	app.HumanApproved = true
	app.Rejected = false
	app.RejectionReason = ""

	if err := m.store.SaveApplicationReview(ctx, app, nil); err != nil {
		return nil, err
	}

	m.logger.Info("application approved", "application_id", app.ID, "actor", actor)
	return app, nil
}

// RejectApplication rejects the aggregate with a non-empty reason, notifying
// the applicant on the edge into rejected.
func (m *Machine) RejectApplication(ctx context.Context, applicationID, reason, actor string) (*model.Application, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection requires a reason", common.ErrInvalidArgument)
	}

	app, err := m.store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.FundsReleased {
		return nil, fmt.Errorf("%w: funds already released for %s", common.ErrAlreadyTerminal, applicationID)
	}

	enteredRejected := !app.Rejected

	app.Rejected = true
	app.RejectionReason = reason
	app.HumanApproved = false

	var note *model.Notification
	if enteredRejected {
		note = &model.Notification{
			ID:          uuid.NewString(),
			ApplicantID: app.ApplicantID,
			Title:       "Application rejected",
			Message:     reason,
			CreatedAt:   m.now(),
		}
	}

	if err := m.store.SaveApplicationReview(ctx, app, note); err != nil {
		return nil, err
	}

	m.logger.Info("application rejected", "application_id", app.ID, "actor", actor)
	return app, nil
}

// ReleaseFunds marks the terminal fund-release transition. It requires both
// approval flags and fails with ErrAlreadyTerminal on a second attempt; the
// terminal state is never silently ignored or reset.
func (m *Machine) ReleaseFunds(ctx context.Context, applicationID, actor string) (*model.Application, error) {
	app, err := m.store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	if app.FundsReleased {
		return nil, fmt.Errorf("%w: funds already released for %s", common.ErrAlreadyTerminal, applicationID)
	}
	if !app.AIApproved || !app.HumanApproved {
		return nil, fmt.Errorf("%w: fund release requires ai and human approval (ai=%t human=%t)",
			common.ErrPreconditionFailed, app.AIApproved, app.HumanApproved)
	}

	app.FundsReleased = true

	if err := m.store.SaveApplicationReview(ctx, app, nil); err != nil {
		return nil, err
	}

	m.logger.Info("funds released", "application_id", app.ID, "actor", actor)
	return app, nil
}
