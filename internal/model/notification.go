package model

import "time"

// Notification is an append-only record emitted when a reviewer rejects a
// document or an application. The portal core only creates notifications;
// marking them read belongs to the applicant-facing surface.
type Notification struct {
	CreatedAt   time.Time
	ID          string
	ApplicantID string
	Title       string
	Message     string
	DocumentID  string // empty for application-level notifications
	Read        bool
}
