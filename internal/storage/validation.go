package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Sai-Pat/Saksham-Web-sub000/internal/model"
)

// Validation errors.
var (
	ErrNilContext          = errors.New("context cannot be nil")
	ErrEmptyString         = errors.New("string parameter cannot be empty")
	ErrNilParameter        = errors.New("parameter cannot be nil")
	ErrInvalidDocument     = errors.New("invalid document")
	ErrInvalidApplication  = errors.New("invalid application")
	ErrInvalidNotification = errors.New("invalid notification")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateDocument validates a document before a review write.
func validateDocument(doc *model.Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document", ErrNilParameter)
	}
	if doc.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidDocument)
	}
	if doc.ApplicationID == "" {
		return fmt.Errorf("%w: missing application ID", ErrInvalidDocument)
	}
	if !doc.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidDocument, doc.Status)
	}
	if doc.Status == model.DocRejected && strings.TrimSpace(doc.RejectionReason) == "" {
		return fmt.Errorf("%w: rejected without reason", ErrInvalidDocument)
	}
	if doc.Status != model.DocRejected && doc.RejectionReason != "" {
		return fmt.Errorf("%w: reason present on non-rejected document", ErrInvalidDocument)
	}
	return nil
}

// validateApplication validates an application before a review write.
func validateApplication(app *model.Application) error {
	if app == nil {
		return fmt.Errorf("%w: application", ErrNilParameter)
	}
	if app.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidApplication)
	}
	if app.ApplicantID == "" {
		return fmt.Errorf("%w: missing applicant ID", ErrInvalidApplication)
	}
	if app.FundsReleased && !(app.AIApproved && app.HumanApproved) {
		return fmt.Errorf("%w: funds released without dual approval", ErrInvalidApplication)
	}
	if app.Rejected && strings.TrimSpace(app.RejectionReason) == "" {
		return fmt.Errorf("%w: rejected without reason", ErrInvalidApplication)
	}
	return nil
}

// validateNotification validates a notification before insert.
func validateNotification(note *model.Notification) error {
	if note == nil {
		return fmt.Errorf("%w: notification", ErrNilParameter)
	}
	if note.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidNotification)
	}
	if note.ApplicantID == "" {
		return fmt.Errorf("%w: missing applicant ID", ErrInvalidNotification)
	}
	if note.Message == "" {
		return fmt.Errorf("%w: missing message", ErrInvalidNotification)
	}
	return nil
}
