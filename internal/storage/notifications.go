package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Sai-Pat/Saksham-Web-sub000/internal/model"
)

// ListNotifications returns all notifications for an applicant, newest first.
func (s *SQLiteStore) ListNotifications(ctx context.Context, applicantID string) ([]model.Notification, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(applicantID, "applicantID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, applicant_id, title, message, COALESCE(document_id, ''), read, created_at
		FROM notifications WHERE applicant_id = ? ORDER BY created_at DESC
	`, applicantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var notes []model.Notification
	for rows.Next() {
		var note model.Notification
		if scanErr := rows.Scan(
			&note.ID, &note.ApplicantID, &note.Title, &note.Message,
			&note.DocumentID, &note.Read, &note.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", scanErr)
		}
		notes = append(notes, note)
	}

	return notes, rows.Err()
}

// insertNotificationTx appends a notification inside an open transaction.
func insertNotificationTx(ctx context.Context, tx *sql.Tx, note *model.Notification) error {
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now()
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO notifications (id, applicant_id, title, message, document_id, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		note.ID, note.ApplicantID, note.Title, note.Message,
		note.DocumentID, note.Read, note.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	return nil
}
